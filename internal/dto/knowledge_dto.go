package dto

import (
	"time"

	"github.com/google/uuid"
)

type LinkKnowledgeRequest struct {
	SessionId       uuid.UUID  `json:"-"`
	KnowledgeBaseId uuid.UUID  `json:"knowledge_base_id" validate:"required"`
	DocumentId      *uuid.UUID `json:"document_id,omitempty"`
	LinkType        string     `json:"link_type" validate:"required,oneof=source context output reference"`
	UsageContext    string     `json:"usage_context,omitempty"`
	Relevance       float64    `json:"relevance,omitempty" validate:"min=0,max=1"`
}

type KnowledgeLinkResponse struct {
	Id              uuid.UUID  `json:"id"`
	SessionId       uuid.UUID  `json:"session_id"`
	KnowledgeBaseId uuid.UUID  `json:"knowledge_base_id"`
	DocumentId      *uuid.UUID `json:"document_id,omitempty"`
	LinkType        string     `json:"link_type"`
	UsageContext    string     `json:"usage_context,omitempty"`
	Relevance       float64    `json:"relevance"`
	AccessCount     int        `json:"access_count"`
	LastAccessedAt  *time.Time `json:"last_accessed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
