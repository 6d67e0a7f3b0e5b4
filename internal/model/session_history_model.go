package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SessionHistory rows are append-only. The (session_id, version) unique index
// serializes version allocation: a concurrent append that claims a taken
// version fails with a duplicate-key error and is retried with a fresh read.
type SessionHistory struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_history_session_version"`

	Version    int    `gorm:"not null;uniqueIndex:idx_history_session_version"`
	ChangeType string `gorm:"type:varchar(50);not null"`

	Snapshot datatypes.JSON `gorm:"type:jsonb;not null"`
	Diff     datatypes.JSON `gorm:"type:jsonb"`

	ParentVersionId *uuid.UUID `gorm:"type:uuid"`

	StepName     string `gorm:"type:varchar(100)"`
	IsBookmarked bool   `gorm:"default:false"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (SessionHistory) TableName() string {
	return "session_histories"
}
