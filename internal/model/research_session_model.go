package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ResearchSession struct {
	Id          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID  `gorm:"type:uuid;not null;index"` // User ownership for data isolation
	WorkspaceId *uuid.UUID `gorm:"type:uuid;index"`

	Title       string `gorm:"type:varchar(255);not null"`
	Description string `gorm:"type:text"`
	Question    string `gorm:"type:text;not null"`

	Status      string `gorm:"type:varchar(50);not null;default:'draft';index"`
	CurrentStep string `gorm:"type:varchar(100)"`

	StateSnapshot  datatypes.JSON `gorm:"type:jsonb"`
	ReportPlan     string         `gorm:"type:text"`
	FinalReport    string         `gorm:"type:text"`
	KnowledgeGraph datatypes.JSON `gorm:"type:jsonb"`
	ErrorMessage   string         `gorm:"type:text"`

	EstimatedDuration int `gorm:"default:0"`
	ActualDuration    int `gorm:"default:0"`

	StartedAt   *time.Time
	PausedAt    *time.Time
	CompletedAt *time.Time

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (ResearchSession) TableName() string {
	return "research_sessions"
}
