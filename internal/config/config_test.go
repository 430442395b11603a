package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := newDefaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Path != "data/regimen.db" {
		t.Errorf("default db path = %q", cfg.Database.Path)
	}
	if time.Duration(cfg.Backup.Interval) != 6*time.Hour {
		t.Errorf("default backup interval = %v", time.Duration(cfg.Backup.Interval))
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("default log config = %+v", cfg.Log)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "regimen.yaml")
	yaml := `
server:
  port: 9090
  read_timeout: 10s
database:
  path: /tmp/test.db
cors:
  allowed_origins:
    - https://app.example.com
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if time.Duration(cfg.Server.ReadTimeout) != 10*time.Second {
		t.Errorf("read timeout = %v", time.Duration(cfg.Server.ReadTimeout))
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "https://app.example.com" {
		t.Errorf("allowed origins = %v", cfg.CORS.AllowedOrigins)
	}
	// Unset values keep defaults
	if time.Duration(cfg.Server.WriteTimeout) != 30*time.Second {
		t.Errorf("write timeout = %v, want default", time.Duration(cfg.Server.WriteTimeout))
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("REGIMEN_PORT", "7777")
	t.Setenv("REGIMEN_DB_PATH", "/tmp/env.db")
	t.Setenv("REGIMEN_LOG_LEVEL", "warn")
	t.Setenv("REGIMEN_BACKUP_INTERVAL", "1h")

	cfg := newDefaults()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 7777 {
		t.Errorf("port = %d, want 7777", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/env.db" {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if time.Duration(cfg.Backup.Interval) != time.Hour {
		t.Errorf("backup interval = %v", time.Duration(cfg.Backup.Interval))
	}
}

func TestInvalidDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "regimen.yaml")
	if err := os.WriteFile(path, []byte("server:\n  read_timeout: nonsense\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestValidate_BackupRequiresCredentials(t *testing.T) {
	cfg := newDefaults()
	cfg.Backup.Bucket = "backups"
	cfg.Backup.Endpoint = "s3.example.com"

	if err := cfg.validate(); err == nil {
		t.Error("expected error for bucket without credentials")
	}

	cfg.Backup.AccessKey = "ak"
	cfg.Backup.SecretKey = "sk"
	if err := cfg.validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_Port(t *testing.T) {
	cfg := newDefaults()
	cfg.Server.Port = 0

	if err := cfg.validate(); err == nil {
		t.Error("expected error for port 0")
	}
}
