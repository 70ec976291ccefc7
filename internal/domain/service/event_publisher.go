package service

import (
	"context"
)

// SyncEvent summarizes one completed review sync for downstream consumers.
type SyncEvent struct {
	RequestID string   `json:"request_id,omitempty"` // For distributed tracing
	TenantID  string   `json:"tenant_id"`
	AccountID string   `json:"account_id"`
	Provider  string   `json:"provider"`
	Imported  int      `json:"imported"`
	Updated   int      `json:"updated"`
	Skipped   int      `json:"skipped"`
	ReviewIDs []string `json:"review_ids,omitempty"` // IDs of the newly imported reviews
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishSyncEvent publishes a sync summary for async processing
	PublishSyncEvent(ctx context.Context, event *SyncEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
