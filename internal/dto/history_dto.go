package dto

import (
	"time"

	"github.com/google/uuid"
)

type HistoryEntryResponse struct {
	Id              uuid.UUID              `json:"id"`
	Version         int                    `json:"version"`
	ChangeType      string                 `json:"change_type"`
	Snapshot        map[string]interface{} `json:"snapshot,omitempty"`
	Diff            map[string]interface{} `json:"diff,omitempty"`
	ParentVersionId *uuid.UUID             `json:"parent_version_id,omitempty"`
	StepName        string                 `json:"step_name,omitempty"`
	IsBookmarked    bool                   `json:"is_bookmarked"`
	CreatedAt       time.Time              `json:"created_at"`
}

type RestoreVersionRequest struct {
	SessionId uuid.UUID `json:"-"`
	Version   int       `json:"version" validate:"required,min=1"`

	// Branch restores into a new lineage instead of overwriting the tip.
	Branch bool `json:"branch,omitempty"`
}

type ToggleBookmarkRequest struct {
	SessionId  uuid.UUID `json:"-"`
	Version    int       `json:"version" validate:"required,min=1"`
	Bookmarked bool      `json:"bookmarked"`
}
