package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ResearchSource enforces upsert-by-URL through the composite unique index:
// rediscovering a URL within a session updates the existing row.
type ResearchSource struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_source_session_url"`
	TaskId    *uuid.UUID `gorm:"type:uuid;index"`

	URL     string `gorm:"type:text;not null;uniqueIndex:idx_source_session_url"`
	Title   string `gorm:"type:varchar(512)"`
	Content string `gorm:"type:text"`
	Summary string `gorm:"type:text"`
	Type    string `gorm:"type:varchar(50)"`

	Relevance   float64 `gorm:"default:0"`
	Quality     float64 `gorm:"default:0"`
	Credibility float64 `gorm:"default:0"`

	CitedInReport bool           `gorm:"default:false"`
	CitationCount int            `gorm:"default:0"`
	Tags          datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ResearchSource) TableName() string {
	return "research_sources"
}
