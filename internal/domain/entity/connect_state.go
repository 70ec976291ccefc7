package entity

import (
	"time"

	"github.com/google/uuid"
)

// ConnectState is the payload carried through the delegated-authorization
// redirect. It is never persisted; it lives only inside the signed state
// token for the duration of one round-trip.
type ConnectState struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	AccountID  uuid.UUID `json:"account_id,omitempty"` // Set when re-authorizing an existing connection.
	ReturnPath string    `json:"return_path,omitempty"`
	IssuedAt   int64     `json:"issued_at"` // Unix seconds, enables staleness checks by the consumer.
}

// Age returns how long ago the state was issued.
func (s *ConnectState) Age(now time.Time) time.Duration {
	return now.Sub(time.Unix(s.IssuedAt, 0))
}
