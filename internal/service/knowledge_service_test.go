package service

import (
	"context"
	"testing"

	"ai-research-be/internal/constant"
	"ai-research-be/internal/dto"
	"ai-research-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type knowledgeFixture struct {
	*lifecycleFixture
	knowledge IKnowledgeService
}

func newKnowledgeFixture() *knowledgeFixture {
	base := newLifecycleFixture()
	return &knowledgeFixture{
		lifecycleFixture: base,
		knowledge:        NewKnowledgeService(base.factory, testLogger{}),
	}
}

func TestLinkCreatesKnowledgeLink(t *testing.T) {
	f := newKnowledgeFixture()
	userId := uuid.New()
	sessionId := f.createSession(t, userId)
	kbId := uuid.New()

	link, err := f.knowledge.Link(context.Background(), userId, &dto.LinkKnowledgeRequest{
		SessionId:       sessionId,
		KnowledgeBaseId: kbId,
		LinkType:        constant.LinkTypeSource,
		UsageContext:    "cited in section 2",
		Relevance:       0.8,
	})
	assert.NoError(t, err)
	assert.Equal(t, sessionId, link.SessionId)
	assert.Equal(t, kbId, link.KnowledgeBaseId)
	assert.Nil(t, link.DocumentId)
	assert.Equal(t, 0, link.AccessCount)
}

func TestLinkSameTargetRefreshesInsteadOfDuplicating(t *testing.T) {
	f := newKnowledgeFixture()
	userId := uuid.New()
	sessionId := f.createSession(t, userId)
	kbId := uuid.New()
	ctx := context.Background()

	first, err := f.knowledge.Link(ctx, userId, &dto.LinkKnowledgeRequest{
		SessionId:       sessionId,
		KnowledgeBaseId: kbId,
		LinkType:        constant.LinkTypeSource,
		Relevance:       0.5,
	})
	assert.NoError(t, err)

	second, err := f.knowledge.Link(ctx, userId, &dto.LinkKnowledgeRequest{
		SessionId:       sessionId,
		KnowledgeBaseId: kbId,
		LinkType:        constant.LinkTypeReference,
		Relevance:       0.9,
	})
	assert.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, constant.LinkTypeReference, second.LinkType)
	assert.Equal(t, 0.9, second.Relevance)
	assert.Equal(t, 1, second.AccessCount)
	assert.NotNil(t, second.LastAccessedAt)

	links, err := f.knowledge.List(ctx, userId, sessionId)
	assert.NoError(t, err)
	assert.Len(t, links, 1)
}

func TestLinksToDifferentDocumentsAreDistinct(t *testing.T) {
	f := newKnowledgeFixture()
	userId := uuid.New()
	sessionId := f.createSession(t, userId)
	kbId := uuid.New()
	docId := uuid.New()
	ctx := context.Background()

	// Base-level link (no document) and a document-level link to the same
	// knowledge base must coexist.
	_, err := f.knowledge.Link(ctx, userId, &dto.LinkKnowledgeRequest{
		SessionId:       sessionId,
		KnowledgeBaseId: kbId,
		LinkType:        constant.LinkTypeContext,
	})
	assert.NoError(t, err)

	_, err = f.knowledge.Link(ctx, userId, &dto.LinkKnowledgeRequest{
		SessionId:       sessionId,
		KnowledgeBaseId: kbId,
		DocumentId:      &docId,
		LinkType:        constant.LinkTypeSource,
	})
	assert.NoError(t, err)

	links, err := f.knowledge.List(ctx, userId, sessionId)
	assert.NoError(t, err)
	assert.Len(t, links, 2)
}

// Two requests for the same target can both miss the existence check; the
// unique index turns the loser's insert into a conflict and the retry lands
// on the refresh path instead of erroring or duplicating.
func TestLinkRetriesWhenInsertLosesRace(t *testing.T) {
	f := newKnowledgeFixture()
	userId := uuid.New()
	sessionId := f.createSession(t, userId)
	kbId := uuid.New()
	ctx := context.Background()

	first, err := f.knowledge.Link(ctx, userId, &dto.LinkKnowledgeRequest{
		SessionId:       sessionId,
		KnowledgeBaseId: kbId,
		LinkType:        constant.LinkTypeSource,
	})
	assert.NoError(t, err)

	// Hide the existing link from the next lookup so the service takes the
	// insert path and collides with it.
	f.factory.uow.knowledge.missFinds = 1

	second, err := f.knowledge.Link(ctx, userId, &dto.LinkKnowledgeRequest{
		SessionId:       sessionId,
		KnowledgeBaseId: kbId,
		LinkType:        constant.LinkTypeReference,
	})
	assert.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)

	links, err := f.knowledge.List(ctx, userId, sessionId)
	assert.NoError(t, err)
	assert.Len(t, links, 1)
}

func TestTouchIncrementsAccessCount(t *testing.T) {
	f := newKnowledgeFixture()
	userId := uuid.New()
	sessionId := f.createSession(t, userId)
	ctx := context.Background()

	link, err := f.knowledge.Link(ctx, userId, &dto.LinkKnowledgeRequest{
		SessionId:       sessionId,
		KnowledgeBaseId: uuid.New(),
		LinkType:        constant.LinkTypeOutput,
	})
	assert.NoError(t, err)

	assert.NoError(t, f.knowledge.Touch(ctx, userId, sessionId, link.Id))
	assert.NoError(t, f.knowledge.Touch(ctx, userId, sessionId, link.Id))

	links, err := f.knowledge.List(ctx, userId, sessionId)
	assert.NoError(t, err)
	assert.Len(t, links, 1)
	assert.Equal(t, 2, links[0].AccessCount)
	assert.NotNil(t, links[0].LastAccessedAt)
}

func TestUnlinkRemovesLink(t *testing.T) {
	f := newKnowledgeFixture()
	userId := uuid.New()
	sessionId := f.createSession(t, userId)
	ctx := context.Background()

	link, err := f.knowledge.Link(ctx, userId, &dto.LinkKnowledgeRequest{
		SessionId:       sessionId,
		KnowledgeBaseId: uuid.New(),
		LinkType:        constant.LinkTypeSource,
	})
	assert.NoError(t, err)

	assert.NoError(t, f.knowledge.Unlink(ctx, userId, sessionId, link.Id))

	links, err := f.knowledge.List(ctx, userId, sessionId)
	assert.NoError(t, err)
	assert.Empty(t, links)

	err = f.knowledge.Touch(ctx, userId, sessionId, link.Id)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestKnowledgeOperationsRejectForeignSession(t *testing.T) {
	f := newKnowledgeFixture()
	owner := uuid.New()
	sessionId := f.createSession(t, owner)
	stranger := uuid.New()
	ctx := context.Background()

	_, err := f.knowledge.Link(ctx, stranger, &dto.LinkKnowledgeRequest{
		SessionId:       sessionId,
		KnowledgeBaseId: uuid.New(),
		LinkType:        constant.LinkTypeSource,
	})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	_, err = f.knowledge.List(ctx, stranger, sessionId)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
