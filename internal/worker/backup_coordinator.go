// Package worker contains background loops run alongside the HTTP server.
package worker

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hyperengineering/regimen/internal/backup"
)

// BackupCapableStore represents a store that can write a consistent
// backup of itself to a file.
type BackupCapableStore interface {
	BackupTo(ctx context.Context, path string) error
}

// BackupCoordinator periodically writes a database backup and ships it
// to remote storage.
type BackupCoordinator struct {
	store    BackupCapableStore
	uploader backup.Uploader
	interval time.Duration

	// tempDir overrides the staging directory for tests.
	tempDir string
}

// NewBackupCoordinator creates a coordinator backing up the given store
// every interval.
func NewBackupCoordinator(store BackupCapableStore, uploader backup.Uploader, interval time.Duration) *BackupCoordinator {
	return &BackupCoordinator{
		store:    store,
		uploader: uploader,
		interval: interval,
	}
}

// Run starts the coordinator loop. It performs one backup immediately,
// then repeats on the interval until the context is cancelled.
func (c *BackupCoordinator) Run(ctx context.Context) {
	slog.Info("worker started", "worker", "backup-coordinator", "interval", c.interval.String())

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.backup(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped", "worker", "backup-coordinator", "reason", "context_cancelled")
			return
		case <-ticker.C:
			c.backup(ctx)
		}
	}
}

// backup stages a consistent copy of the database and uploads it.
// Failures are logged, not propagated; the next tick retries.
func (c *BackupCoordinator) backup(ctx context.Context) {
	dir := c.tempDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "regimen-backup.db")

	// VACUUM INTO refuses to overwrite an existing file
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Error("backup staging cleanup failed", "error", err, "path", path)
		return
	}

	if err := c.store.BackupTo(ctx, path); err != nil {
		slog.Error("backup generation failed", "error", err)
		return
	}
	defer os.Remove(path)

	if err := c.uploader.Upload(ctx, path); err != nil {
		slog.Error("backup upload failed", "error", err)
		return
	}

	slog.Info("backup completed", "path", path)
}
