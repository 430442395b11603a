package backup

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperengineering/regimen/internal/config"
)

type mockS3Client struct {
	calls    int
	bucket   string
	object   string
	filePath string
	err      error
}

func (m *mockS3Client) FPutObject(ctx context.Context, bucket, objectName, filePath string) error {
	m.calls++
	m.bucket = bucket
	m.object = objectName
	m.filePath = filePath
	return m.err
}

func TestS3Uploader_Upload(t *testing.T) {
	mock := &mockS3Client{}
	u := &S3Uploader{client: mock, bucket: "my-backups"}

	if err := u.Upload(context.Background(), "/tmp/regimen.db"); err != nil {
		t.Fatal(err)
	}

	if mock.calls != 1 || mock.bucket != "my-backups" || mock.filePath != "/tmp/regimen.db" {
		t.Errorf("unexpected upload call: %+v", mock)
	}
	if mock.object != "backups/regimen.db" {
		t.Errorf("object key = %q", mock.object)
	}
}

func TestS3Uploader_UploadError(t *testing.T) {
	mock := &mockS3Client{err: errors.New("access denied")}
	u := &S3Uploader{client: mock, bucket: "my-backups"}

	if err := u.Upload(context.Background(), "/tmp/regimen.db"); err == nil {
		t.Error("expected wrapped upload error")
	}
}

func TestNewUploader_EmptyBucketReturnsNoop(t *testing.T) {
	u, err := NewUploader(config.BackupConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := u.(*NoopUploader); !ok {
		t.Errorf("expected NoopUploader, got %T", u)
	}

	// Noop accepts anything silently
	if err := u.Upload(context.Background(), "whatever"); err != nil {
		t.Errorf("noop upload returned %v", err)
	}
}
