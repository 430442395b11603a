package cleanse

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/hyperengineering/regimen/internal/types"
)

// stateKey is the single named key the serialized aggregate lives under.
const stateKey = "cleanse-progress"

// LocalStore persists the aggregate on the client device.
type LocalStore struct {
	db       *sql.DB
	deviceID string
}

// NewLocalStore opens (and if needed creates) the local state database.
func NewLocalStore(dbPath string) (*LocalStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	s := &LocalStore{
		db:       db,
		deviceID: ulid.Make().String(),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

func (s *LocalStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate local store: %w", err)
	}
	return nil
}

// Load reads the persisted aggregate. ok is false when no aggregate has
// been saved yet.
func (s *LocalStore) Load() (progress types.UserProgress, ok bool, err error) {
	var value string
	err = s.db.QueryRow(`SELECT value FROM state WHERE key = ?`, stateKey).Scan(&value)
	if err == sql.ErrNoRows {
		return types.UserProgress{}, false, nil
	}
	if err != nil {
		return types.UserProgress{}, false, fmt.Errorf("load state: %w", err)
	}

	if err := json.Unmarshal([]byte(value), &progress); err != nil {
		return types.UserProgress{}, false, fmt.Errorf("decode state: %w", err)
	}
	return progress, true, nil
}

// Save overwrites the persisted aggregate.
func (s *LocalStore) Save(progress types.UserProgress) error {
	value, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(`
		INSERT INTO state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, stateKey, string(value), now)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// DeviceID identifies this store instance in logs.
func (s *LocalStore) DeviceID() string {
	return s.deviceID
}
