package entity

import (
	"time"

	"github.com/google/uuid"
)

// GenerationQuota is the per-tenant rolling daily counter for AI reply
// generation. The counter is lazily reset on the first check of a new
// calendar day before any comparison.
type GenerationQuota struct {
	TenantID uuid.UUID
	Day      string // UTC calendar day in "2006-01-02" format.
	Count    int
}

// QuotaDay formats the UTC calendar day the quota rows are keyed by.
func QuotaDay(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}

// NextQuotaReset returns the next UTC midnight, reported as retry-after when
// the daily ceiling is hit.
func NextQuotaReset(now time.Time) time.Time {
	return now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
}

// Stale reports whether the counter belongs to an earlier day and must be
// reset before use.
func (q *GenerationQuota) Stale(now time.Time) bool {
	return q.Day != QuotaDay(now)
}
