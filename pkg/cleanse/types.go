// Package cleanse is the client library for the progress sync server.
// It keeps a locally persisted copy of the UserProgress aggregate, applies
// mutations to it synchronously, and pushes the whole aggregate upstream
// with fire-and-forget semantics: the caller never waits on the network
// and push failures are logged, not surfaced.
package cleanse

import "time"

// Config configures a Client.
type Config struct {
	// ServerURL is the base URL of the sync server. Empty means offline.
	ServerURL string

	// LocalPath is the path of the local state database.
	LocalPath string

	// UserID is the identity under which progress is synced.
	UserID string

	// Optional profile fields sent on Initialize.
	Email     string
	FirstName string
	LastName  string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// OfflineMode disables all network calls.
	OfflineMode bool

	// AutoSync enables the background push loop.
	AutoSync bool

	// SyncInterval is the background push cadence. Defaults to 5 minutes.
	SyncInterval time.Duration
}
