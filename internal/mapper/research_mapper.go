package mapper

import (
	"encoding/json"
	"time"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ResearchMapper struct{}

func NewResearchMapper() *ResearchMapper {
	return &ResearchMapper{}
}

// Session Mappers

func (m *ResearchMapper) SessionToEntity(s *model.ResearchSession) *entity.ResearchSession {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	var snapshot *entity.StateSnapshot
	if len(s.StateSnapshot) > 0 {
		var decoded entity.StateSnapshot
		if err := json.Unmarshal(s.StateSnapshot, &decoded); err == nil {
			snapshot = &decoded
		}
	}

	var graph map[string]interface{}
	if len(s.KnowledgeGraph) > 0 {
		_ = json.Unmarshal(s.KnowledgeGraph, &graph)
	}

	return &entity.ResearchSession{
		Id:                s.Id,
		UserId:            s.UserId,
		WorkspaceId:       s.WorkspaceId,
		Title:             s.Title,
		Description:       s.Description,
		Question:          s.Question,
		Status:            s.Status,
		CurrentStep:       s.CurrentStep,
		StateSnapshot:     snapshot,
		ReportPlan:        s.ReportPlan,
		FinalReport:       s.FinalReport,
		KnowledgeGraph:    graph,
		ErrorMessage:      s.ErrorMessage,
		EstimatedDuration: s.EstimatedDuration,
		ActualDuration:    s.ActualDuration,
		StartedAt:         s.StartedAt,
		PausedAt:          s.PausedAt,
		CompletedAt:       s.CompletedAt,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         updatedAt,
		DeletedAt:         deletedAt,
		IsDeleted:         s.DeletedAt.Valid,
	}
}

func (m *ResearchMapper) SessionToModel(s *entity.ResearchSession) *model.ResearchSession {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	}

	var snapshot datatypes.JSON
	if s.StateSnapshot != nil {
		if raw, err := json.Marshal(s.StateSnapshot); err == nil {
			snapshot = datatypes.JSON(raw)
		}
	}

	var graph datatypes.JSON
	if s.KnowledgeGraph != nil {
		if raw, err := json.Marshal(s.KnowledgeGraph); err == nil {
			graph = datatypes.JSON(raw)
		}
	}

	out := &model.ResearchSession{
		Id:                s.Id,
		UserId:            s.UserId,
		WorkspaceId:       s.WorkspaceId,
		Title:             s.Title,
		Description:       s.Description,
		Question:          s.Question,
		Status:            s.Status,
		CurrentStep:       s.CurrentStep,
		StateSnapshot:     snapshot,
		ReportPlan:        s.ReportPlan,
		FinalReport:       s.FinalReport,
		KnowledgeGraph:    graph,
		ErrorMessage:      s.ErrorMessage,
		EstimatedDuration: s.EstimatedDuration,
		ActualDuration:    s.ActualDuration,
		StartedAt:         s.StartedAt,
		PausedAt:          s.PausedAt,
		CompletedAt:       s.CompletedAt,
		CreatedAt:         s.CreatedAt,
		DeletedAt:         deletedAt,
	}
	if s.UpdatedAt != nil {
		out.UpdatedAt = *s.UpdatedAt
	}
	return out
}

// Task Mappers

func (m *ResearchMapper) TaskToEntity(t *model.ResearchTask) *entity.ResearchTask {
	if t == nil {
		return nil
	}

	var updatedAt *time.Time
	if !t.UpdatedAt.IsZero() {
		u := t.UpdatedAt
		updatedAt = &u
	}

	var result map[string]interface{}
	if len(t.Result) > 0 {
		_ = json.Unmarshal(t.Result, &result)
	}

	return &entity.ResearchTask{
		Id:              t.Id,
		SessionId:       t.SessionId,
		Query:           t.Query,
		Goal:            t.Goal,
		Type:            t.Type,
		Priority:        t.Priority,
		Status:          t.Status,
		Result:          result,
		Analysis:        t.Analysis,
		Learnings:       t.Learnings,
		ExecutionTimeMs: t.ExecutionTimeMs,
		RetryCount:      t.RetryCount,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

func (m *ResearchMapper) TaskToModel(t *entity.ResearchTask) *model.ResearchTask {
	if t == nil {
		return nil
	}

	var result datatypes.JSON
	if t.Result != nil {
		if raw, err := json.Marshal(t.Result); err == nil {
			result = datatypes.JSON(raw)
		}
	}

	out := &model.ResearchTask{
		Id:              t.Id,
		SessionId:       t.SessionId,
		Query:           t.Query,
		Goal:            t.Goal,
		Type:            t.Type,
		Priority:        t.Priority,
		Status:          t.Status,
		Result:          result,
		Analysis:        t.Analysis,
		Learnings:       t.Learnings,
		ExecutionTimeMs: t.ExecutionTimeMs,
		RetryCount:      t.RetryCount,
		CreatedAt:       t.CreatedAt,
	}
	if t.UpdatedAt != nil {
		out.UpdatedAt = *t.UpdatedAt
	}
	return out
}

// Source Mappers

func (m *ResearchMapper) SourceToEntity(s *model.ResearchSource) *entity.ResearchSource {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		u := s.UpdatedAt
		updatedAt = &u
	}

	var tags []string
	if len(s.Tags) > 0 {
		_ = json.Unmarshal(s.Tags, &tags)
	}

	return &entity.ResearchSource{
		Id:            s.Id,
		SessionId:     s.SessionId,
		TaskId:        s.TaskId,
		URL:           s.URL,
		Title:         s.Title,
		Content:       s.Content,
		Summary:       s.Summary,
		Type:          s.Type,
		Relevance:     s.Relevance,
		Quality:       s.Quality,
		Credibility:   s.Credibility,
		CitedInReport: s.CitedInReport,
		CitationCount: s.CitationCount,
		Tags:          tags,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *ResearchMapper) SourceToModel(s *entity.ResearchSource) *model.ResearchSource {
	if s == nil {
		return nil
	}

	var tags datatypes.JSON
	if s.Tags != nil {
		if raw, err := json.Marshal(s.Tags); err == nil {
			tags = datatypes.JSON(raw)
		}
	}

	out := &model.ResearchSource{
		Id:            s.Id,
		SessionId:     s.SessionId,
		TaskId:        s.TaskId,
		URL:           s.URL,
		Title:         s.Title,
		Content:       s.Content,
		Summary:       s.Summary,
		Type:          s.Type,
		Relevance:     s.Relevance,
		Quality:       s.Quality,
		Credibility:   s.Credibility,
		CitedInReport: s.CitedInReport,
		CitationCount: s.CitationCount,
		Tags:          tags,
		CreatedAt:     s.CreatedAt,
	}
	if s.UpdatedAt != nil {
		out.UpdatedAt = *s.UpdatedAt
	}
	return out
}
