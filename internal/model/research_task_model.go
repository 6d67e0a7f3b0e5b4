package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ResearchTask struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId uuid.UUID `gorm:"type:uuid;not null;index"`

	Query    string `gorm:"type:text;not null"`
	Goal     string `gorm:"type:text"`
	Type     string `gorm:"type:varchar(50)"`
	Priority int    `gorm:"default:0"`

	Status          string         `gorm:"type:varchar(50);not null;default:'pending';index"`
	Result          datatypes.JSON `gorm:"type:jsonb"`
	Analysis        string         `gorm:"type:text"`
	Learnings       string         `gorm:"type:text"`
	ExecutionTimeMs int            `gorm:"default:0"`
	RetryCount      int            `gorm:"default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ResearchTask) TableName() string {
	return "research_tasks"
}
