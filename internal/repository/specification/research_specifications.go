package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

type ByStatuses struct {
	Statuses []string
}

func (s ByStatuses) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ?", s.Statuses)
}

type ByURL struct {
	URL string
}

func (s ByURL) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("url = ?", s.URL)
}

type ByVersion struct {
	Version int
}

func (s ByVersion) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("version = ?", s.Version)
}

type BookmarkedOnly struct{}

func (s BookmarkedOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_bookmarked = ?", true)
}

type CitedOnly struct{}

func (s CitedOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("cited_in_report = ?", true)
}

type ByKnowledgeBaseID struct {
	KnowledgeBaseID uuid.UUID
}

func (s ByKnowledgeBaseID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("knowledge_base_id = ?", s.KnowledgeBaseID)
}

// ByDocumentID matches a specific document or the collection-level link when nil.
type ByDocumentID struct {
	DocumentID *uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	if s.DocumentID == nil {
		return db.Where("document_id IS NULL")
	}
	return db.Where("document_id = ?", s.DocumentID)
}
