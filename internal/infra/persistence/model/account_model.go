package model

import (
	"time"

	"github.com/google/uuid"
)

// ExternalAccountModel mirrors the 'external_accounts' table. A tenant can
// hold at most one connection per platform account.
type ExternalAccountModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	TenantID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_accounts_provider_identity"`
	Provider          string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_accounts_provider_identity"`
	ProviderAccountID string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_accounts_provider_identity"`
	Email             string    `gorm:"type:varchar(255)"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Credential *CredentialModel `gorm:"foreignKey:AccountID"`
}

// TableName explicitly sets the table name for GORM.
func (ExternalAccountModel) TableName() string {
	return "external_accounts"
}

// CredentialModel mirrors the 'credentials' table. AccountID references
// external_accounts.id; the unique index keeps one pair per account.
type CredentialModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	AccountID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	AccessToken  string    `gorm:"type:text;not null"`
	RefreshToken string    `gorm:"type:text;not null"`
	Scope        string    `gorm:"type:text"`
	ExpiresAt    time.Time `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (CredentialModel) TableName() string {
	return "credentials"
}
