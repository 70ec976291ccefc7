package model

import (
	"time"

	"github.com/google/uuid"
)

// ReviewModel mirrors the 'reviews' table. The composite unique index on
// (tenant_id, source, external_id) is the last line of defense against
// duplicate ingestion of the same platform review.
type ReviewModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	TenantID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_source_identity"`
	AccountID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Source          string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_reviews_source_identity"`
	ExternalID      string    `gorm:"type:varchar(512);not null;uniqueIndex:idx_reviews_source_identity"`
	Rating          int       `gorm:"not null;default:0"`
	Text            string    `gorm:"type:text"`
	ReviewerName    string    `gorm:"type:varchar(255)"`
	GenerationCount int       `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Reply *ReplyModel `gorm:"foreignKey:ReviewID"`
}

// TableName explicitly sets the table name for GORM.
func (ReviewModel) TableName() string {
	return "reviews"
}

// ReplyModel mirrors the 'replies' table, one row per review.
type ReplyModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	ReviewID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Text      string    `gorm:"type:text;not null"`
	Status    string    `gorm:"type:varchar(16);not null"`
	PostedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (ReplyModel) TableName() string {
	return "replies"
}
