package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// RunRegistry tracks sessions with an executor run in flight on this
// instance, and carries the cancellation flag Pause raises. The executor
// polls Cancelled between steps.
type RunRegistry struct {
	cache *cache.Cache
}

func NewRunRegistry() *RunRegistry {
	// Entries expire after 2 hours in case a run dies without cleanup,
	// purged every 10 minutes
	c := cache.New(2*time.Hour, 10*time.Minute)
	return &RunRegistry{
		cache: c,
	}
}

func (r *RunRegistry) MarkActive(sessionId uuid.UUID) {
	r.cache.Set(sessionId.String(), false, cache.DefaultExpiration)
}

func (r *RunRegistry) IsActive(sessionId uuid.UUID) bool {
	_, found := r.cache.Get(sessionId.String())
	return found
}

func (r *RunRegistry) RequestCancel(sessionId uuid.UUID) {
	r.cache.Set(sessionId.String(), true, cache.DefaultExpiration)
}

func (r *RunRegistry) Cancelled(sessionId uuid.UUID) bool {
	if x, found := r.cache.Get(sessionId.String()); found {
		return x.(bool)
	}
	return false
}

func (r *RunRegistry) Clear(sessionId uuid.UUID) {
	r.cache.Delete(sessionId.String())
}
