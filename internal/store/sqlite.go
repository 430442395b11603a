package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/hyperengineering/regimen/internal/protocol"
	"github.com/hyperengineering/regimen/internal/types"
)

// SQLiteStore is the SQLite-backed progress database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore instance.
// It initializes the database with WAL mode, applies pragmas, and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Pragmas apply per connection; a single pooled connection keeps
	// them in force for every statement. SQLite allows one writer
	// anyway.
	db.SetMaxOpenConns(1)

	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// enablePragmas sets SQLite pragmas for optimal performance and safety.
func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertUser inserts or refreshes a user profile row keyed by the
// external identity id. Profile fields overwrite on conflict.
func (s *SQLiteStore) UpsertUser(ctx context.Context, req types.SetupUserRequest) (*types.User, error) {
	if req.UserID == "" {
		return nil, ErrMissingUser
	}

	if err := s.ensureUser(ctx, req.UserID); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET email = ?, first_name = ?, last_name = ?, updated_at = ?
		WHERE external_id = ?
	`, req.Email, req.FirstName, req.LastName, now, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	return s.getUser(ctx, req.UserID)
}

// ensureUser creates a bare users row for userID if one does not exist
// yet. Saves arrive for users who never called setup, matching the
// client's setup-is-optional flow, so every save entry point guarantees
// the referenced row first.
func (s *SQLiteStore) ensureUser(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUser
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, external_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, userID, userID, now, now)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) getUser(ctx context.Context, externalID string) (*types.User, error) {
	var (
		u                    types.User
		email, first, last   sql.NullString
		createdAt, updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, external_id, email, first_name, last_name, created_at, updated_at
		FROM users WHERE external_id = ?
	`, externalID).Scan(&u.ID, &u.ExternalID, &email, &first, &last, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	u.Email = email.String
	u.FirstName = first.String
	u.LastName = last.String
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	u.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &u, nil
}

// GetProgress recomposes the aggregate from the four record sets.
// A user with no progress row gets the day-1 defaults with empty maps.
func (s *SQLiteStore) GetProgress(ctx context.Context, userID string) (*types.UserProgress, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}

	progress := types.NewUserProgress(time.Now())

	var completedDays string
	err := s.db.QueryRowContext(ctx, `
		SELECT start_date, current_day, completed_days
		FROM user_progress WHERE user_id = ?
	`, userID).Scan(&progress.StartDate, &progress.CurrentDay, &completedDays)
	switch {
	case err == sql.ErrNoRows:
		// No row yet: keep defaults
	case err != nil:
		return nil, fmt.Errorf("query progress row: %w", err)
	default:
		if err := json.Unmarshal([]byte(completedDays), &progress.CompletedDays); err != nil {
			return nil, fmt.Errorf("decode completed days: %w", err)
		}
		if progress.CompletedDays == nil {
			progress.CompletedDays = []int{}
		}
	}

	if err := s.loadJournalEntries(ctx, userID, progress.JournalEntries); err != nil {
		return nil, err
	}
	if err := s.loadBiofeedbackEntries(ctx, userID, progress.BiofeedbackEntries); err != nil {
		return nil, err
	}
	if err := s.loadDayEntries(ctx, userID, progress.DayEntries); err != nil {
		return nil, err
	}

	return &progress, nil
}

func (s *SQLiteStore) loadJournalEntries(ctx context.Context, userID string, into map[string]types.JournalEntry) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, physical, emotional, cognitive, spiritual,
		       die_off_symptoms, die_off_intensity, die_off_mitigation, meals
		FROM journal_entries WHERE user_id = ? ORDER BY date DESC
	`, userID)
	if err != nil {
		return fmt.Errorf("query journal entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e         types.JournalEntry
			intensity sql.NullInt64
			mealsJSON string
		)
		if err := rows.Scan(&e.Date, &e.Physical, &e.Emotional, &e.Cognitive, &e.Spiritual,
			&e.DieOffSymptoms, &intensity, &e.DieOffMitigation, &mealsJSON); err != nil {
			return fmt.Errorf("scan journal entry: %w", err)
		}
		if intensity.Valid {
			v := int(intensity.Int64)
			e.DieOffIntensity = &v
		}
		if err := json.Unmarshal([]byte(mealsJSON), &e.Meals); err != nil {
			return fmt.Errorf("decode meals: %w", err)
		}
		if e.Meals == nil {
			e.Meals = []types.MealEntry{}
		}
		into[e.Date] = e
	}
	return rows.Err()
}

func (s *SQLiteStore) loadBiofeedbackEntries(ctx context.Context, userID string, into map[string]types.BiofeedbackEntry) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, hrv, resting_hr, temp_delta, vo2_max, active_cals,
		       deep_sleep, rem_sleep, brain_fog, mood, libido, energy, notes
		FROM biofeedback_entries WHERE user_id = ? ORDER BY date DESC
	`, userID)
	if err != nil {
		return fmt.Errorf("query biofeedback entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e                              types.BiofeedbackEntry
			hrv, tempDelta, vo2, deep, rem sql.NullFloat64
			restingHR, activeCals          sql.NullInt64
			brainFog, mood, libido, energy sql.NullInt64
			notes                          sql.NullString
		)
		if err := rows.Scan(&e.Date, &hrv, &restingHR, &tempDelta, &vo2, &activeCals,
			&deep, &rem, &brainFog, &mood, &libido, &energy, &notes); err != nil {
			return fmt.Errorf("scan biofeedback entry: %w", err)
		}
		e.HRV = nullFloat(hrv)
		e.RestingHR = nullInt(restingHR)
		e.TempDelta = nullFloat(tempDelta)
		e.VO2Max = nullFloat(vo2)
		e.ActiveCals = nullInt(activeCals)
		e.DeepSleep = nullFloat(deep)
		e.RemSleep = nullFloat(rem)
		e.BrainFog = nullInt(brainFog)
		e.Mood = nullInt(mood)
		e.Libido = nullInt(libido)
		e.Energy = nullInt(energy)
		e.Notes = notes.String
		into[e.Date] = e
	}
	return rows.Err()
}

func (s *SQLiteStore) loadDayEntries(ctx context.Context, userID string, into map[int]types.DayEntry) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day, completed, die_off_score, tasks
		FROM day_entries WHERE user_id = ? ORDER BY day
	`, userID)
	if err != nil {
		return fmt.Errorf("query day entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e         types.DayEntry
			score     sql.NullInt64
			tasksJSON string
		)
		if err := rows.Scan(&e.Day, &e.Completed, &score, &tasksJSON); err != nil {
			return fmt.Errorf("scan day entry: %w", err)
		}
		e.DieOffScore = nullInt(score)
		if err := json.Unmarshal([]byte(tasksJSON), &e.Tasks); err != nil {
			return fmt.Errorf("decode tasks: %w", err)
		}
		// Week, phase and title are pure functions of the day number;
		// they are derived on read rather than stored.
		e.Week = protocol.Week(e.Day)
		e.Phase = protocol.Phase(e.Day)
		e.Title = protocol.Title(e.Day)
		into[e.Day] = e
	}
	return rows.Err()
}

// SaveProgress decomposes the aggregate and upserts every record set.
// The first failing upsert aborts the save; earlier upserts stay
// committed.
func (s *SQLiteStore) SaveProgress(ctx context.Context, userID string, progress types.UserProgress) error {
	if userID == "" {
		return ErrMissingUser
	}

	if err := s.ensureUser(ctx, userID); err != nil {
		return err
	}

	if err := s.upsertProgressRow(ctx, userID, progress); err != nil {
		return err
	}

	for _, date := range sortedKeys(progress.JournalEntries) {
		if err := s.upsertJournalRow(ctx, userID, progress.JournalEntries[date]); err != nil {
			return err
		}
	}
	for _, date := range sortedKeys(progress.BiofeedbackEntries) {
		if err := s.upsertBiofeedbackRow(ctx, userID, progress.BiofeedbackEntries[date]); err != nil {
			return err
		}
	}
	for _, day := range sortedDays(progress.DayEntries) {
		if err := s.upsertDayRow(ctx, userID, progress.DayEntries[day]); err != nil {
			return err
		}
	}

	return nil
}

func (s *SQLiteStore) upsertProgressRow(ctx context.Context, userID string, progress types.UserProgress) error {
	completedDays, err := marshalOrEmptyList(progress.CompletedDays)
	if err != nil {
		return fmt.Errorf("encode completed days: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_progress (id, user_id, start_date, current_day, completed_days, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			start_date = excluded.start_date,
			current_day = excluded.current_day,
			completed_days = excluded.completed_days,
			updated_at = excluded.updated_at
	`, ulid.Make().String(), userID, progress.StartDate, progress.CurrentDay, completedDays, now, now)
	if err != nil {
		return fmt.Errorf("upsert progress row: %w", err)
	}
	return nil
}

// SaveJournalEntry upserts one journal row keyed by (user, date). All
// columns overwrite on conflict; fields omitted from the entry null out
// the stored value.
func (s *SQLiteStore) SaveJournalEntry(ctx context.Context, userID string, entry types.JournalEntry) error {
	if err := s.ensureUser(ctx, userID); err != nil {
		return err
	}
	return s.upsertJournalRow(ctx, userID, entry)
}

func (s *SQLiteStore) upsertJournalRow(ctx context.Context, userID string, entry types.JournalEntry) error {
	meals, err := marshalOrEmptyList(entry.Meals)
	if err != nil {
		return fmt.Errorf("encode meals: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO journal_entries (id, user_id, date, physical, emotional, cognitive, spiritual,
			die_off_symptoms, die_off_intensity, die_off_mitigation, meals, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			physical = excluded.physical,
			emotional = excluded.emotional,
			cognitive = excluded.cognitive,
			spiritual = excluded.spiritual,
			die_off_symptoms = excluded.die_off_symptoms,
			die_off_intensity = excluded.die_off_intensity,
			die_off_mitigation = excluded.die_off_mitigation,
			meals = excluded.meals
	`, ulid.Make().String(), userID, entry.Date, entry.Physical, entry.Emotional, entry.Cognitive,
		entry.Spiritual, entry.DieOffSymptoms, intArg(entry.DieOffIntensity), entry.DieOffMitigation, meals, now)
	if err != nil {
		return fmt.Errorf("upsert journal entry: %w", err)
	}
	return nil
}

// SaveBiofeedbackEntry upserts one biofeedback row keyed by (user, date)
// with full-column overwrite semantics.
func (s *SQLiteStore) SaveBiofeedbackEntry(ctx context.Context, userID string, entry types.BiofeedbackEntry) error {
	if err := s.ensureUser(ctx, userID); err != nil {
		return err
	}
	return s.upsertBiofeedbackRow(ctx, userID, entry)
}

func (s *SQLiteStore) upsertBiofeedbackRow(ctx context.Context, userID string, entry types.BiofeedbackEntry) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO biofeedback_entries (id, user_id, date, hrv, resting_hr, temp_delta, vo2_max,
			active_cals, deep_sleep, rem_sleep, brain_fog, mood, libido, energy, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			hrv = excluded.hrv,
			resting_hr = excluded.resting_hr,
			temp_delta = excluded.temp_delta,
			vo2_max = excluded.vo2_max,
			active_cals = excluded.active_cals,
			deep_sleep = excluded.deep_sleep,
			rem_sleep = excluded.rem_sleep,
			brain_fog = excluded.brain_fog,
			mood = excluded.mood,
			libido = excluded.libido,
			energy = excluded.energy,
			notes = excluded.notes
	`, ulid.Make().String(), userID, entry.Date, floatArg(entry.HRV), intArg(entry.RestingHR),
		floatArg(entry.TempDelta), floatArg(entry.VO2Max), intArg(entry.ActiveCals),
		floatArg(entry.DeepSleep), floatArg(entry.RemSleep), intArg(entry.BrainFog),
		intArg(entry.Mood), intArg(entry.Libido), intArg(entry.Energy), entry.Notes, now)
	if err != nil {
		return fmt.Errorf("upsert biofeedback entry: %w", err)
	}
	return nil
}

// SaveDayEntry upserts one calendar row keyed by (user, day).
func (s *SQLiteStore) SaveDayEntry(ctx context.Context, userID string, entry types.DayEntry) error {
	if err := s.ensureUser(ctx, userID); err != nil {
		return err
	}
	return s.upsertDayRow(ctx, userID, entry)
}

func (s *SQLiteStore) upsertDayRow(ctx context.Context, userID string, entry types.DayEntry) error {
	if entry.Day < 1 || entry.Day > types.ProtocolDays {
		return fmt.Errorf("day %d: %w", entry.Day, ErrInvalidDay)
	}

	tasks, err := marshalOrEmptyList(entry.Tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO day_entries (id, user_id, day, completed, die_off_score, tasks, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, day) DO UPDATE SET
			completed = excluded.completed,
			die_off_score = excluded.die_off_score,
			tasks = excluded.tasks
	`, ulid.Make().String(), userID, entry.Day, entry.Completed, intArg(entry.DieOffScore), tasks, now)
	if err != nil {
		return fmt.Errorf("upsert day entry: %w", err)
	}
	return nil
}

// GetStats returns aggregate store statistics.
func (s *SQLiteStore) GetStats(ctx context.Context) (*types.StoreStats, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	return &types.StoreStats{UserCount: count}, nil
}

// BackupTo writes a consistent copy of the database to path. VACUUM INTO
// produces a defragmented standalone database file even under WAL mode.
func (s *SQLiteStore) BackupTo(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return fmt.Errorf("vacuum into %s: %w", path, err)
	}
	return nil
}

// marshalOrEmptyList marshals v, mapping a nil slice to a JSON empty list.
func marshalOrEmptyList[T any](v []T) (string, error) {
	if v == nil {
		return "[]", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedDays[T any](m map[int]T) []int {
	days := make([]int, 0, len(m))
	for d := range m {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

func intArg(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatArg(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
