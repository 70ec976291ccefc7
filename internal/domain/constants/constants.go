// Package constants holds shared domain-level constants.
package constants

const (
	// PubSubProviderLocal publishes sync events to a local HTTP endpoint.
	PubSubProviderLocal = "local"
	// PubSubProviderGoogle publishes sync events to Google Cloud Pub/Sub.
	PubSubProviderGoogle = "google"
)

const (
	// EnvDevelop is the local development environment. Push auth verification
	// is skipped there.
	EnvDevelop = "develop"
)
