package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/entity"
	"ai-research-be/internal/pkg/apperror"
	"ai-research-be/internal/repository/contract"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// In-memory repository fakes that keep the same concurrency semantics as
// the Postgres implementations: guarded session updates fail when the
// expected status no longer matches, history appends reject duplicate
// versions, task transitions are dropped outside the allowed set.

type testLogger struct{}

func (testLogger) Debug(module, message string, details map[string]interface{}) {}
func (testLogger) Info(module, message string, details map[string]interface{})  {}
func (testLogger) Warn(module, message string, details map[string]interface{})  {}
func (testLogger) Error(module, message string, details map[string]interface{}) {}
func (testLogger) Sync() error                                                  { return nil }

// --- session repo ---

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.ResearchSession

	// conflictsLeft makes the next N guarded updates fail as if a concurrent
	// writer won the race.
	conflictsLeft int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entity.ResearchSession)}
}

func copySession(s *entity.ResearchSession) *entity.ResearchSession {
	cp := *s
	if s.StateSnapshot != nil {
		snap := *s.StateSnapshot
		cp.StateSnapshot = &snap
	}
	return &cp
}

func (r *fakeSessionRepo) matches(s *entity.ResearchSession, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if s.Id != sp.ID {
				return false
			}
		case specification.UserOwnedBy:
			if s.UserId != sp.UserID {
				return false
			}
		case specification.ByStatus:
			if s.Status != sp.Status {
				return false
			}
		}
	}
	return true
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ResearchSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Id] = copySession(session)
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.ResearchSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Id] = copySession(session)
	return nil
}

func (r *fakeSessionRepo) UpdateGuarded(ctx context.Context, session *entity.ResearchSession, expectedStatus string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		return apperror.ConcurrencyConflict("simulated guard failure")
	}
	stored, ok := r.sessions[session.Id]
	if !ok || stored.Status != expectedStatus {
		return apperror.ConcurrencyConflict("session %s left status %s before the update landed", session.Id, expectedStatus)
	}
	r.sessions[session.Id] = copySession(session)
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ResearchSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if r.matches(s, specs) {
			return copySession(s), nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ResearchSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ResearchSession
	for _, s := range r.sessions {
		if r.matches(s, specs) {
			out = append(out, copySession(s))
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

// --- task repo ---

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*entity.ResearchTask
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uuid.UUID]*entity.ResearchTask)}
}

func (r *fakeTaskRepo) matches(t *entity.ResearchTask, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if t.Id != sp.ID {
				return false
			}
		case specification.BySessionID:
			if t.SessionId != sp.SessionID {
				return false
			}
		case specification.ByStatus:
			if t.Status != sp.Status {
				return false
			}
		}
	}
	return true
}

func (r *fakeTaskRepo) Create(ctx context.Context, task *entity.ResearchTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *task
	r.tasks[task.Id] = &cp
	return nil
}

func (r *fakeTaskRepo) CreateBulk(ctx context.Context, tasks []*entity.ResearchTask) error {
	for _, t := range tasks {
		if err := r.Create(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeTaskRepo) TransitionStatus(ctx context.Context, id uuid.UUID, newStatus string, allowedFrom []string, updates map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return false, nil
	}
	allowed := false
	for _, s := range allowedFrom {
		if task.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, nil
	}
	task.Status = newStatus
	for k, v := range updates {
		switch k {
		case "retry_count":
			task.RetryCount = v.(int)
		case "analysis":
			task.Analysis = v.(string)
		case "learnings":
			task.Learnings = v.(string)
		case "execution_time_ms":
			task.ExecutionTimeMs = v.(int)
		case "result":
			if raw, ok := v.(datatypes.JSON); ok {
				var m map[string]interface{}
				_ = json.Unmarshal(raw, &m)
				task.Result = m
			}
		}
	}
	return true, nil
}

func (r *fakeTaskRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ResearchTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tasks {
		if r.matches(t, specs) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeTaskRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ResearchTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ResearchTask
	for _, t := range r.tasks {
		if r.matches(t, specs) {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

func (r *fakeTaskRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeTaskRepo) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tasks {
		if t.SessionId == sessionId {
			delete(r.tasks, id)
		}
	}
	return nil
}

// --- source repo ---

type fakeSourceRepo struct {
	mu      sync.Mutex
	sources map[uuid.UUID]*entity.ResearchSource
}

func newFakeSourceRepo() *fakeSourceRepo {
	return &fakeSourceRepo{sources: make(map[uuid.UUID]*entity.ResearchSource)}
}

func (r *fakeSourceRepo) matches(s *entity.ResearchSource, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if s.Id != sp.ID {
				return false
			}
		case specification.BySessionID:
			if s.SessionId != sp.SessionID {
				return false
			}
		case specification.ByURL:
			if s.URL != sp.URL {
				return false
			}
		case specification.CitedOnly:
			if !s.CitedInReport {
				return false
			}
		}
	}
	return true
}

func (r *fakeSourceRepo) Upsert(ctx context.Context, source *entity.ResearchSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sources {
		if existing.SessionId == source.SessionId && existing.URL == source.URL {
			existing.TaskId = source.TaskId
			existing.Title = source.Title
			existing.Content = source.Content
			existing.Summary = source.Summary
			existing.Type = source.Type
			existing.Relevance = source.Relevance
			existing.Quality = source.Quality
			existing.Credibility = source.Credibility
			existing.Tags = source.Tags
			*source = *existing
			return nil
		}
	}
	cp := *source
	r.sources[source.Id] = &cp
	return nil
}

func (r *fakeSourceRepo) MarkCited(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sources[id]; ok {
		s.CitedInReport = true
		s.CitationCount++
	}
	return nil
}

func (r *fakeSourceRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ResearchSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sources {
		if r.matches(s, specs) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeSourceRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ResearchSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ResearchSource
	for _, s := range r.sources {
		if r.matches(s, specs) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeSourceRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeSourceRepo) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sources {
		if s.SessionId == sessionId {
			delete(r.sources, id)
		}
	}
	return nil
}

// --- history repo ---

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []*entity.SessionHistory
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{}
}

func (r *fakeHistoryRepo) matches(h *entity.SessionHistory, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if h.Id != sp.ID {
				return false
			}
		case specification.BySessionID:
			if h.SessionId != sp.SessionID {
				return false
			}
		case specification.ByVersion:
			if h.Version != sp.Version {
				return false
			}
		case specification.BookmarkedOnly:
			if !h.IsBookmarked {
				return false
			}
		}
	}
	return true
}

func (r *fakeHistoryRepo) NextVersion(ctx context.Context, sessionId uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, h := range r.entries {
		if h.SessionId == sessionId && h.Version > max {
			max = h.Version
		}
	}
	return max + 1, nil
}

func (r *fakeHistoryRepo) Append(ctx context.Context, entry *entity.SessionHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.entries {
		if h.SessionId == entry.SessionId && h.Version == entry.Version {
			return apperror.ConcurrencyConflict("version %d of session %s was claimed concurrently", entry.Version, entry.SessionId)
		}
	}
	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *fakeHistoryRepo) SetBookmark(ctx context.Context, id uuid.UUID, bookmarked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.entries {
		if h.Id == id {
			h.IsBookmarked = bookmarked
		}
	}
	return nil
}

func (r *fakeHistoryRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SessionHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.entries {
		if r.matches(h, specs) {
			cp := *h
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeHistoryRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SessionHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.SessionHistory
	for _, h := range r.entries {
		if r.matches(h, specs) {
			cp := *h
			out = append(out, &cp)
		}
	}
	desc := false
	for _, spec := range specs {
		if ob, ok := spec.(specification.OrderBy); ok && ob.Field == "version" {
			desc = ob.Desc
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].Version > out[j].Version
		}
		return out[i].Version < out[j].Version
	})
	for _, spec := range specs {
		if lim, ok := spec.(specification.Limit); ok && lim.Limit > 0 && len(out) > lim.Limit {
			out = out[:lim.Limit]
		}
	}
	return out, nil
}

func (r *fakeHistoryRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeHistoryRepo) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.entries[:0]
	for _, h := range r.entries {
		if h.SessionId != sessionId {
			kept = append(kept, h)
		}
	}
	r.entries = kept
	return nil
}

// --- knowledge repo ---

type fakeKnowledgeRepo struct {
	mu    sync.Mutex
	links map[uuid.UUID]*entity.KnowledgeLink

	// missFinds makes the next N FindOne calls return nothing, simulating
	// the window where a concurrent writer has inserted but this reader
	// looked before the insert.
	missFinds int
}

func newFakeKnowledgeRepo() *fakeKnowledgeRepo {
	return &fakeKnowledgeRepo{links: make(map[uuid.UUID]*entity.KnowledgeLink)}
}

func (r *fakeKnowledgeRepo) matches(l *entity.KnowledgeLink, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if l.Id != sp.ID {
				return false
			}
		case specification.BySessionID:
			if l.SessionId != sp.SessionID {
				return false
			}
		case specification.ByKnowledgeBaseID:
			if l.KnowledgeBaseId != sp.KnowledgeBaseID {
				return false
			}
		case specification.ByDocumentID:
			if sp.DocumentID == nil {
				if l.DocumentId != nil {
					return false
				}
			} else if l.DocumentId == nil || *l.DocumentId != *sp.DocumentID {
				return false
			}
		}
	}
	return true
}

func (r *fakeKnowledgeRepo) Create(ctx context.Context, link *entity.KnowledgeLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.links {
		if existing.SessionId == link.SessionId &&
			existing.KnowledgeBaseId == link.KnowledgeBaseId &&
			sameDocument(existing.DocumentId, link.DocumentId) {
			return apperror.ConcurrencyConflict("knowledge link for this target already exists")
		}
	}
	cp := *link
	r.links[link.Id] = &cp
	return nil
}

func sameDocument(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (r *fakeKnowledgeRepo) Update(ctx context.Context, link *entity.KnowledgeLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *link
	r.links[link.Id] = &cp
	return nil
}

func (r *fakeKnowledgeRepo) Touch(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.links[id]; ok {
		l.AccessCount++
		now := time.Now()
		l.LastAccessedAt = &now
	}
	return nil
}

func (r *fakeKnowledgeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.links, id)
	return nil
}

func (r *fakeKnowledgeRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.missFinds > 0 {
		r.missFinds--
		return nil, nil
	}
	for _, l := range r.links {
		if r.matches(l, specs) {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeKnowledgeRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.KnowledgeLink
	for _, l := range r.links {
		if r.matches(l, specs) {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeKnowledgeRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeKnowledgeRepo) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, l := range r.links {
		if l.SessionId == sessionId {
			delete(r.links, id)
		}
	}
	return nil
}

// --- unit of work ---

type fakeUnitOfWork struct {
	sessions  *fakeSessionRepo
	tasks     *fakeTaskRepo
	sources   *fakeSourceRepo
	history   *fakeHistoryRepo
	knowledge *fakeKnowledgeRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) SessionRepository() contract.SessionRepository { return u.sessions }
func (u *fakeUnitOfWork) TaskRepository() contract.TaskRepository       { return u.tasks }
func (u *fakeUnitOfWork) SourceRepository() contract.SourceRepository   { return u.sources }
func (u *fakeUnitOfWork) HistoryRepository() contract.HistoryRepository { return u.history }
func (u *fakeUnitOfWork) KnowledgeLinkRepository() contract.KnowledgeLinkRepository {
	return u.knowledge
}

type fakeUowFactory struct {
	uow *fakeUnitOfWork
}

func newFakeUowFactory() *fakeUowFactory {
	return &fakeUowFactory{uow: &fakeUnitOfWork{
		sessions:  newFakeSessionRepo(),
		tasks:     newFakeTaskRepo(),
		sources:   newFakeSourceRepo(),
		history:   newFakeHistoryRepo(),
		knowledge: newFakeKnowledgeRepo(),
	}}
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

// --- publisher / sender fakes ---

type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *fakePublisher) published() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]byte(nil), p.payloads...)
}

type fakeSender struct {
	mu     sync.Mutex
	events []dto.StreamEvent
}

func (s *fakeSender) Send(sessionID uuid.UUID, event dto.StreamEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *fakeSender) sent() []dto.StreamEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]dto.StreamEvent(nil), s.events...)
}
