package model

import (
	"time"

	"github.com/google/uuid"
)

// GenerationQuotaModel mirrors the 'generation_quotas' table, one rolling
// daily counter per tenant. The day column makes stale rows detectable so
// the counter resets lazily instead of via a scheduled job.
type GenerationQuotaModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Day       string    `gorm:"type:varchar(10);not null"`
	Count     int       `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (GenerationQuotaModel) TableName() string {
	return "generation_quotas"
}
