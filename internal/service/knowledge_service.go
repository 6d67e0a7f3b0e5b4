package service

import (
	"context"
	"time"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/entity"
	"ai-research-be/internal/pkg/apperror"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IKnowledgeService interface {
	Link(ctx context.Context, userId uuid.UUID, req *dto.LinkKnowledgeRequest) (*dto.KnowledgeLinkResponse, error)
	List(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.KnowledgeLinkResponse, error)
	Touch(ctx context.Context, userId uuid.UUID, sessionId, linkId uuid.UUID) error
	Unlink(ctx context.Context, userId uuid.UUID, sessionId, linkId uuid.UUID) error
}

type knowledgeService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewKnowledgeService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IKnowledgeService {
	return &knowledgeService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

// Link registers a knowledge-base reference for a session. Linking the same
// target again refreshes the link and counts as an access instead of
// creating a duplicate. The unique index on the target backstops the
// read-then-insert: a concurrent insert surfaces as a conflict and the
// retry takes the refresh path.
func (s *knowledgeService) Link(ctx context.Context, userId uuid.UUID, req *dto.LinkKnowledgeRequest) (*dto.KnowledgeLinkResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := s.assertOwned(ctx, uow, userId, req.SessionId); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		existing, err := uow.KnowledgeLinkRepository().FindOne(ctx,
			specification.BySessionID{SessionID: req.SessionId},
			specification.ByKnowledgeBaseID{KnowledgeBaseID: req.KnowledgeBaseId},
			specification.ByDocumentID{DocumentID: req.DocumentId},
		)
		if err != nil {
			return nil, err
		}

		if existing != nil {
			existing.LinkType = req.LinkType
			if req.UsageContext != "" {
				existing.UsageContext = req.UsageContext
			}
			if req.Relevance > 0 {
				existing.Relevance = req.Relevance
			}
			if err := uow.KnowledgeLinkRepository().Update(ctx, existing); err != nil {
				return nil, err
			}
			if err := uow.KnowledgeLinkRepository().Touch(ctx, existing.Id); err != nil {
				return nil, err
			}
			refreshed, err := uow.KnowledgeLinkRepository().FindOne(ctx, specification.ByID{ID: existing.Id})
			if err != nil {
				return nil, err
			}
			return s.toResponse(refreshed), nil
		}

		link := &entity.KnowledgeLink{
			Id:              uuid.New(),
			SessionId:       req.SessionId,
			KnowledgeBaseId: req.KnowledgeBaseId,
			DocumentId:      req.DocumentId,
			LinkType:        req.LinkType,
			UsageContext:    req.UsageContext,
			Relevance:       req.Relevance,
			CreatedAt:       time.Now(),
		}
		if err := uow.KnowledgeLinkRepository().Create(ctx, link); err != nil {
			if apperror.IsKind(err, apperror.KindConcurrencyConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}

		s.logger.Info("Knowledge", "Knowledge link created", map[string]interface{}{
			"session_id":        req.SessionId,
			"knowledge_base_id": req.KnowledgeBaseId,
		})

		return s.toResponse(link), nil
	}

	return nil, lastErr
}

func (s *knowledgeService) List(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.KnowledgeLinkResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := s.assertOwned(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}

	links, err := uow.KnowledgeLinkRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.KnowledgeLinkResponse, len(links))
	for i, link := range links {
		result[i] = s.toResponse(link)
	}
	return result, nil
}

func (s *knowledgeService) Touch(ctx context.Context, userId uuid.UUID, sessionId, linkId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	link, err := s.findLink(ctx, uow, userId, sessionId, linkId)
	if err != nil {
		return err
	}
	return uow.KnowledgeLinkRepository().Touch(ctx, link.Id)
}

func (s *knowledgeService) Unlink(ctx context.Context, userId uuid.UUID, sessionId, linkId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	link, err := s.findLink(ctx, uow, userId, sessionId, linkId)
	if err != nil {
		return err
	}
	return uow.KnowledgeLinkRepository().Delete(ctx, link.Id)
}

func (s *knowledgeService) findLink(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId, linkId uuid.UUID) (*entity.KnowledgeLink, error) {
	if err := s.assertOwned(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}

	link, err := uow.KnowledgeLinkRepository().FindOne(ctx,
		specification.ByID{ID: linkId},
		specification.BySessionID{SessionID: sessionId},
	)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, apperror.NotFound("knowledge link %s not found", linkId)
	}
	return link, nil
}

func (s *knowledgeService) assertOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) error {
	session, err := uow.SessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if session == nil {
		return apperror.NotFound("research session %s not found", sessionId)
	}
	return nil
}

func (s *knowledgeService) toResponse(link *entity.KnowledgeLink) *dto.KnowledgeLinkResponse {
	return &dto.KnowledgeLinkResponse{
		Id:              link.Id,
		SessionId:       link.SessionId,
		KnowledgeBaseId: link.KnowledgeBaseId,
		DocumentId:      link.DocumentId,
		LinkType:        link.LinkType,
		UsageContext:    link.UsageContext,
		Relevance:       link.Relevance,
		AccessCount:     link.AccessCount,
		LastAccessedAt:  link.LastAccessedAt,
		CreatedAt:       link.CreatedAt,
	}
}
