package mapper

import (
	"encoding/json"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/model"

	"gorm.io/datatypes"
)

type HistoryMapper struct{}

func NewHistoryMapper() *HistoryMapper {
	return &HistoryMapper{}
}

func (m *HistoryMapper) ToEntity(h *model.SessionHistory) *entity.SessionHistory {
	if h == nil {
		return nil
	}

	var snapshot map[string]interface{}
	if len(h.Snapshot) > 0 {
		_ = json.Unmarshal(h.Snapshot, &snapshot)
	}

	var diff map[string]interface{}
	if len(h.Diff) > 0 {
		_ = json.Unmarshal(h.Diff, &diff)
	}

	return &entity.SessionHistory{
		Id:              h.Id,
		SessionId:       h.SessionId,
		Version:         h.Version,
		ChangeType:      h.ChangeType,
		Snapshot:        snapshot,
		Diff:            diff,
		ParentVersionId: h.ParentVersionId,
		StepName:        h.StepName,
		IsBookmarked:    h.IsBookmarked,
		CreatedAt:       h.CreatedAt,
	}
}

func (m *HistoryMapper) ToModel(h *entity.SessionHistory) *model.SessionHistory {
	if h == nil {
		return nil
	}

	var snapshot datatypes.JSON
	if h.Snapshot != nil {
		if raw, err := json.Marshal(h.Snapshot); err == nil {
			snapshot = datatypes.JSON(raw)
		}
	}

	var diff datatypes.JSON
	if h.Diff != nil {
		if raw, err := json.Marshal(h.Diff); err == nil {
			diff = datatypes.JSON(raw)
		}
	}

	return &model.SessionHistory{
		Id:              h.Id,
		SessionId:       h.SessionId,
		Version:         h.Version,
		ChangeType:      h.ChangeType,
		Snapshot:        snapshot,
		Diff:            diff,
		ParentVersionId: h.ParentVersionId,
		StepName:        h.StepName,
		IsBookmarked:    h.IsBookmarked,
		CreatedAt:       h.CreatedAt,
	}
}
