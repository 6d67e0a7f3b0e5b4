package entity

import (
	"time"

	"github.com/google/uuid"
)

// SessionHistory is one immutable snapshot in a session's version chain.
// Entries are append-only; only IsBookmarked may change after the fact.
type SessionHistory struct {
	Id        uuid.UUID
	SessionId uuid.UUID

	// Version numbers form a strictly increasing 1..N sequence per session.
	Version    int
	ChangeType string

	Snapshot map[string]interface{}
	Diff     map[string]interface{}

	// ParentVersionId links restore/branch entries to the entry they were
	// created from.
	ParentVersionId *uuid.UUID

	StepName     string
	IsBookmarked bool

	CreatedAt time.Time
}
