package worker

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"
)

type mockBackupStore struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockBackupStore) BackupTo(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	return os.WriteFile(path, []byte("backup"), 0644)
}

func (m *mockBackupStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockUploader struct {
	mu    sync.Mutex
	calls int
	paths []string
	err   error
}

func (m *mockUploader) Upload(ctx context.Context, filePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.paths = append(m.paths, filePath)
	return m.err
}

func (m *mockUploader) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestBackupCoordinator_RunsImmediatelyAndStops(t *testing.T) {
	store := &mockBackupStore{}
	uploader := &mockUploader{}
	c := NewBackupCoordinator(store, uploader, time.Hour)
	c.tempDir = t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	// The first backup happens before the first tick
	deadline := time.After(2 * time.Second)
	for uploader.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("no backup performed before deadline")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("coordinator did not stop on context cancellation")
	}

	if store.count() != 1 || uploader.count() != 1 {
		t.Errorf("calls: store=%d uploader=%d, want 1 each", store.count(), uploader.count())
	}
}

func TestBackupCoordinator_GenerationFailureSkipsUpload(t *testing.T) {
	store := &mockBackupStore{err: errors.New("database locked")}
	uploader := &mockUploader{}
	c := NewBackupCoordinator(store, uploader, time.Hour)
	c.tempDir = t.TempDir()

	c.backup(context.Background())

	if uploader.count() != 0 {
		t.Errorf("upload must be skipped when generation fails, got %d calls", uploader.count())
	}
}

func TestBackupCoordinator_UploadFailureIsSwallowed(t *testing.T) {
	store := &mockBackupStore{}
	uploader := &mockUploader{err: errors.New("network down")}
	c := NewBackupCoordinator(store, uploader, time.Hour)
	c.tempDir = t.TempDir()

	// Must not panic or propagate; next tick would retry
	c.backup(context.Background())

	if uploader.count() != 1 {
		t.Errorf("expected one attempted upload, got %d", uploader.count())
	}
}
