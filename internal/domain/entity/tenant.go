// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Tenant represents one customer workspace of the platform. Every external
// account, review and reply belongs to exactly one tenant.
type Tenant struct {
	ID           uuid.UUID // The unique ID for this tenant.
	Name         string    // Display name shown in the dashboard.
	Email        string    // Login email, unique across tenants.
	PasswordHash string    // Stores the bcrypt-hashed password for the login entry point.

	// DeviceToken is the tenant's registered push token. Empty when the
	// tenant has not enabled push notifications.
	DeviceToken string

	CreatedAt time.Time
}
