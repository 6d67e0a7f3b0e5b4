package service

import (
	"context"
	"testing"

	"ai-research-be/internal/constant"
	"ai-research-be/internal/dto"
	"ai-research-be/internal/pkg/apperror"
	"ai-research-be/pkg/executor"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type historyFixture struct {
	*lifecycleFixture
	history IHistoryService
}

func newHistoryFixture() *historyFixture {
	base := newLifecycleFixture()
	return &historyFixture{
		lifecycleFixture: base,
		history:          NewHistoryService(base.factory, base.svc, nil, testLogger{}),
	}
}

// completedSession drives a session through a full run so it has a few
// versions worth of history to work with.
func (f *historyFixture) completedSession(t *testing.T, userId uuid.UUID) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	id := f.createSession(t, userId)
	_, err := f.svc.Start(ctx, userId, id)
	assert.NoError(t, err)
	assert.NoError(t, f.svc.CompleteRun(ctx, id, &executor.Result{
		ReportPlan:  "1. Overview",
		FinalReport: "# Report v1",
	}))
	return id
}

func TestHistoryListNewestFirst(t *testing.T) {
	f := newHistoryFixture()
	userId := uuid.New()
	id := f.completedSession(t, userId)

	entries, err := f.history.List(context.Background(), userId, id, false, 0)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, 2, entries[0].Version)
	assert.Equal(t, 1, entries[1].Version)
}

func TestHistoryListFilters(t *testing.T) {
	f := newHistoryFixture()
	userId := uuid.New()
	id := f.completedSession(t, userId)
	ctx := context.Background()

	assert.NoError(t, f.history.ToggleBookmark(ctx, userId, &dto.ToggleBookmarkRequest{
		SessionId:  id,
		Version:    1,
		Bookmarked: true,
	}))

	bookmarked, err := f.history.List(ctx, userId, id, true, 0)
	assert.NoError(t, err)
	assert.Len(t, bookmarked, 1)
	assert.Equal(t, 1, bookmarked[0].Version)

	limited, err := f.history.List(ctx, userId, id, false, 1)
	assert.NoError(t, err)
	assert.Len(t, limited, 1)
	// The cap keeps the newest versions.
	assert.Equal(t, 2, limited[0].Version)
}

func TestHistoryListRejectsForeignSession(t *testing.T) {
	f := newHistoryFixture()
	id := f.completedSession(t, uuid.New())

	_, err := f.history.List(context.Background(), uuid.New(), id, false, 0)
	assert.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestToggleBookmark(t *testing.T) {
	f := newHistoryFixture()
	userId := uuid.New()
	id := f.completedSession(t, userId)
	ctx := context.Background()

	assert.NoError(t, f.history.ToggleBookmark(ctx, userId, &dto.ToggleBookmarkRequest{
		SessionId:  id,
		Version:    2,
		Bookmarked: true,
	}))

	entries, err := f.history.List(ctx, userId, id, false, 0)
	assert.NoError(t, err)
	for _, entry := range entries {
		assert.Equal(t, entry.Version == 2, entry.IsBookmarked)
	}

	assert.NoError(t, f.history.ToggleBookmark(ctx, userId, &dto.ToggleBookmarkRequest{
		SessionId: id,
		Version:   2,
	}))
	entries, err = f.history.List(ctx, userId, id, false, 0)
	assert.NoError(t, err)
	assert.False(t, entries[0].IsBookmarked)
}

func TestToggleBookmarkUnknownVersion(t *testing.T) {
	f := newHistoryFixture()
	userId := uuid.New()
	id := f.completedSession(t, userId)

	err := f.history.ToggleBookmark(context.Background(), userId, &dto.ToggleBookmarkRequest{
		SessionId:  id,
		Version:    42,
		Bookmarked: true,
	})
	assert.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestRestoreAppendsNewVersion(t *testing.T) {
	f := newHistoryFixture()
	userId := uuid.New()
	id := f.completedSession(t, userId)
	ctx := context.Background()

	detail, err := f.history.Restore(ctx, userId, &dto.RestoreVersionRequest{
		SessionId: id,
		Version:   1,
	})
	assert.NoError(t, err)
	// Version 1 is the start transition; its active status collapses to
	// paused and the report is not written yet.
	assert.Equal(t, constant.SessionStatusPaused, detail.Status)
	assert.Empty(t, detail.FinalReport)
	// Timestamps follow the restored status, not the pre-restore session.
	assert.NotNil(t, detail.PausedAt)
	assert.Nil(t, detail.CompletedAt)

	entries, err := f.history.List(ctx, userId, id, false, 0)
	assert.NoError(t, err)
	assert.Len(t, entries, 3)

	restored := entries[0]
	assert.Equal(t, 3, restored.Version)
	assert.Equal(t, constant.ChangeTypeRestore, restored.ChangeType)
	assert.Equal(t, "restored", restored.StepName)
	assert.NotNil(t, restored.ParentVersionId)
	assert.Equal(t, entries[2].Id, *restored.ParentVersionId)
	assert.EqualValues(t, 1, restored.Diff["restored_version"])
}

func TestRestoreAsBranch(t *testing.T) {
	f := newHistoryFixture()
	userId := uuid.New()
	id := f.completedSession(t, userId)
	ctx := context.Background()

	detail, err := f.history.Restore(ctx, userId, &dto.RestoreVersionRequest{
		SessionId: id,
		Version:   2,
		Branch:    true,
	})
	assert.NoError(t, err)
	// Version 2 is the completed snapshot.
	assert.Equal(t, constant.SessionStatusCompleted, detail.Status)
	assert.NotNil(t, detail.CompletedAt)
	assert.Nil(t, detail.PausedAt)

	entries, err := f.history.List(ctx, userId, id, false, 0)
	assert.NoError(t, err)
	assert.Equal(t, constant.ChangeTypeBranch, entries[0].ChangeType)
}

func TestRestoreBlockedWhileRunning(t *testing.T) {
	f := newHistoryFixture()
	userId := uuid.New()
	id := f.createSession(t, userId)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, userId, id)
	assert.NoError(t, err)

	_, err = f.history.Restore(ctx, userId, &dto.RestoreVersionRequest{
		SessionId: id,
		Version:   1,
	})
	assert.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
}

// A snapshot taken mid-run records an active status. Restoring it must not
// revive the run, so the status collapses to paused.
func TestRestoreOfActiveSnapshotCollapsesToPaused(t *testing.T) {
	f := newHistoryFixture()
	userId := uuid.New()
	id := f.createSession(t, userId)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, userId, id)
	assert.NoError(t, err)
	assert.NoError(t, f.svc.CompleteRun(ctx, id, &executor.Result{FinalReport: "# Report"}))

	// Version 1 is the start transition, status "thinking".
	detail, err := f.history.Restore(ctx, userId, &dto.RestoreVersionRequest{
		SessionId: id,
		Version:   1,
	})
	assert.NoError(t, err)
	assert.Equal(t, constant.SessionStatusPaused, detail.Status)
	assert.NotNil(t, detail.PausedAt)
}

// The state snapshot is stored in history as a plain map. Restoring must
// rebuild the typed structure, continuation context included.
func TestRestoreRebuildsStateSnapshot(t *testing.T) {
	f := newHistoryFixture()
	userId := uuid.New()
	id := f.completedSession(t, userId)
	ctx := context.Background()

	_, err := f.svc.Continue(ctx, userId, &dto.ContinueResearchRequest{
		Id:       id,
		Question: "follow-up question",
	})
	assert.NoError(t, err)
	_, err = f.svc.Pause(ctx, userId, id)
	assert.NoError(t, err)

	// Version 3 is the continuation transition; its snapshot carries the
	// continuation context.
	detail, err := f.history.Restore(ctx, userId, &dto.RestoreVersionRequest{
		SessionId: id,
		Version:   3,
	})
	assert.NoError(t, err)
	assert.Equal(t, constant.SessionStatusPaused, detail.Status)
	assert.NotNil(t, detail.StateSnapshot)
	assert.NotNil(t, detail.StateSnapshot.Continuation)
	assert.Contains(t, detail.StateSnapshot.Continuation.Context, "follow-up question")
	assert.Equal(t, "1. Overview", detail.StateSnapshot.Continuation.PreviousPlan)
}

func TestRestoreUnknownVersion(t *testing.T) {
	f := newHistoryFixture()
	userId := uuid.New()
	id := f.completedSession(t, userId)

	_, err := f.history.Restore(context.Background(), userId, &dto.RestoreVersionRequest{
		SessionId: id,
		Version:   99,
	})
	assert.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
