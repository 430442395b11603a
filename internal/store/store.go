package store

import (
	"context"

	"github.com/hyperengineering/regimen/internal/types"
)

// Store defines the interface contract for all progress persistence.
//
// SaveProgress decomposes the aggregate into four normalized record
// sets (progress row, journal rows, biofeedback rows, day rows) and
// upserts each independently; GetProgress recomposes them. The four
// writes are intentionally not wrapped in one transaction: the first
// failure aborts the request and earlier upserts stay committed.
type Store interface {
	UpsertUser(ctx context.Context, req types.SetupUserRequest) (*types.User, error)
	GetProgress(ctx context.Context, userID string) (*types.UserProgress, error)
	SaveProgress(ctx context.Context, userID string, progress types.UserProgress) error
	SaveJournalEntry(ctx context.Context, userID string, entry types.JournalEntry) error
	SaveBiofeedbackEntry(ctx context.Context, userID string, entry types.BiofeedbackEntry) error
	SaveDayEntry(ctx context.Context, userID string, entry types.DayEntry) error
	GetStats(ctx context.Context) (*types.StoreStats, error)
	BackupTo(ctx context.Context, path string) error
	Close() error
}
