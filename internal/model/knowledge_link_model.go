package model

import (
	"time"

	"github.com/google/uuid"
)

type KnowledgeLink struct {
	Id              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId       uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_knowledge_link_target"`
	KnowledgeBaseId uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_knowledge_link_target"`
	DocumentId      *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_knowledge_link_target"`

	LinkType     string  `gorm:"type:varchar(50);not null"`
	UsageContext string  `gorm:"type:text"`
	Relevance    float64 `gorm:"default:0"`

	AccessCount    int `gorm:"default:0"`
	LastAccessedAt *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (KnowledgeLink) TableName() string {
	return "knowledge_links"
}
