package cleanse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/hyperengineering/regimen/internal/protocol"
	"github.com/hyperengineering/regimen/internal/types"
)

// ErrClosed is returned by operations on a shut-down client.
var ErrClosed = errors.New("client is closed")

// Client keeps the local and remote copies of one user's aggregate
// eventually consistent, prioritizing UI responsiveness over durability:
// mutations apply to local state synchronously and the push upstream is
// spawned without a join point.
type Client struct {
	config Config
	store  *LocalStore
	syncer *Syncer

	mu       sync.RWMutex
	progress types.UserProgress
	closed   bool

	pushes   sync.WaitGroup
	syncDone chan struct{}
}

// New creates a new Client. Local state is loaded if present, otherwise
// a fresh aggregate with the full 28-day template calendar is created.
func New(config Config) (*Client, error) {
	if config.LocalPath == "" {
		return nil, errors.New("LocalPath is required")
	}
	if config.UserID == "" {
		return nil, errors.New("UserID is required")
	}

	if config.SyncInterval == 0 {
		config.SyncInterval = 5 * time.Minute
	}

	store, err := NewLocalStore(config.LocalPath)
	if err != nil {
		return nil, err
	}

	progress, ok, err := store.Load()
	if err != nil {
		store.Close()
		return nil, err
	}
	if !ok {
		progress = defaultProgress(time.Now())
		if err := store.Save(progress); err != nil {
			store.Close()
			return nil, err
		}
	}

	return &Client{
		config:   config,
		store:    store,
		syncer:   NewSyncer(config.ServerURL, config.APIKey, config.UserID),
		progress: progress,
		syncDone: make(chan struct{}),
	}, nil
}

// defaultProgress is the aggregate a device starts with before any
// remote state exists: day 1, today, the full template calendar.
func defaultProgress(now time.Time) types.UserProgress {
	progress := types.NewUserProgress(now)
	for _, entry := range protocol.Calendar() {
		progress.DayEntries[entry.Day] = entry
	}
	return progress
}

// Initialize registers the user and hydrates local state from the
// server. A failed pull leaves local state untouched (stale-local-wins);
// the error is logged, never returned.
func (c *Client) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	if !c.config.OfflineMode && c.config.ServerURL != "" {
		if err := c.syncer.SetupUser(ctx, c.config.Email, c.config.FirstName, c.config.LastName); err != nil {
			slog.Warn("user setup failed", "error", err, "user_id", c.config.UserID)
		}

		remote, err := c.syncer.Pull(ctx)
		if err != nil {
			slog.Warn("remote pull failed, keeping local state", "error", err, "user_id", c.config.UserID)
		} else {
			c.progress = *remote
			if err := c.store.Save(c.progress); err != nil {
				return fmt.Errorf("persist pulled state: %w", err)
			}
		}
	}

	if c.config.AutoSync && !c.config.OfflineMode {
		go c.syncLoop()
	}

	return nil
}

// Progress returns a snapshot copy of the current aggregate.
func (c *Client) Progress() types.UserProgress {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneProgress(c.progress)
}

// Update applies a mutation to the aggregate, recomputes the derived
// completion state, persists locally, and pushes upstream without
// waiting. The returned error covers local persistence only; push
// failures are logged.
func (c *Client) Update(mutate func(*types.UserProgress)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	mutate(&c.progress)
	normalize(&c.progress)

	if err := c.store.Save(c.progress); err != nil {
		return err
	}

	c.pushAsync(cloneProgress(c.progress))
	return nil
}

// normalize enforces the derived-state invariant at the single mutation
// entry point: each day's completed flag follows its tasks, and
// completedDays is exactly the set of completed days.
func normalize(progress *types.UserProgress) {
	completed := make([]int, 0, len(progress.DayEntries))
	for day, entry := range progress.DayEntries {
		entry.Completed = protocol.DayCompleted(entry.Tasks)
		progress.DayEntries[day] = entry
		if entry.Completed {
			completed = append(completed, day)
		}
	}
	sort.Ints(completed)
	progress.CompletedDays = completed
}

// pushAsync spawns a fire-and-forget push of the given snapshot. There
// is no ordering guarantee between overlapping pushes; the last write to
// finish wins server-side. The caller must hold c.mu with closed
// checked false, which orders the Add before any Shutdown Flush.
func (c *Client) pushAsync(snapshot types.UserProgress) {
	if c.config.OfflineMode || c.config.ServerURL == "" {
		return
	}

	c.pushes.Add(1)
	go func() {
		defer c.pushes.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := c.syncer.Push(ctx, snapshot); err != nil {
			slog.Warn("progress push failed", "error", err, "user_id", c.config.UserID)
		}
	}()
}

// Flush blocks until all in-flight pushes have completed.
func (c *Client) Flush() {
	c.pushes.Wait()
}

// syncLoop periodically pushes the current aggregate as a safety net for
// pushes lost to transient failures.
func (c *Client) syncLoop() {
	ticker := time.NewTicker(c.config.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.syncDone:
			return
		case <-ticker.C:
			c.mu.RLock()
			if c.closed {
				c.mu.RUnlock()
				return
			}
			c.pushAsync(cloneProgress(c.progress))
			c.mu.RUnlock()
		}
	}
}

// Shutdown stops background sync, performs a final synchronous push, and
// closes the local store.
func (c *Client) Shutdown() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.syncDone)
	snapshot := cloneProgress(c.progress)
	c.mu.Unlock()

	c.Flush()

	if !c.config.OfflineMode && c.config.ServerURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := c.syncer.Push(ctx, snapshot); err != nil {
			slog.Warn("final push failed", "error", err, "user_id", c.config.UserID)
		}
	}

	return c.store.Close()
}

// SetCurrentDay moves the user's active protocol day. The day is not
// advanced automatically anywhere else.
func (c *Client) SetCurrentDay(day int) error {
	if day < 1 || day > types.ProtocolDays {
		return fmt.Errorf("day %d outside protocol range", day)
	}
	return c.Update(func(p *types.UserProgress) {
		p.CurrentDay = day
	})
}

// ToggleTask flips one task's completed flag. The day entry is seeded
// from the template if this device has never touched it.
func (c *Client) ToggleTask(day int, taskID string) error {
	if day < 1 || day > types.ProtocolDays {
		return fmt.Errorf("day %d outside protocol range", day)
	}
	return c.Update(func(p *types.UserProgress) {
		entry, ok := p.DayEntries[day]
		if !ok {
			entry = protocol.NewDayEntry(day)
		}
		for i := range entry.Tasks {
			if entry.Tasks[i].ID == taskID {
				entry.Tasks[i].Completed = !entry.Tasks[i].Completed
				break
			}
		}
		p.DayEntries[day] = entry
	})
}

// SetDieOffScore records the die-off score for a protocol day.
func (c *Client) SetDieOffScore(day int, score int) error {
	if day < 1 || day > types.ProtocolDays {
		return fmt.Errorf("day %d outside protocol range", day)
	}
	return c.Update(func(p *types.UserProgress) {
		entry, ok := p.DayEntries[day]
		if !ok {
			entry = protocol.NewDayEntry(day)
		}
		entry.DieOffScore = &score
		p.DayEntries[day] = entry
	})
}

// SaveJournalEntry upserts the journal entry for its date.
func (c *Client) SaveJournalEntry(entry types.JournalEntry) error {
	if entry.Date == "" {
		return errors.New("journal entry date is required")
	}
	return c.Update(func(p *types.UserProgress) {
		p.JournalEntries[entry.Date] = entry
	})
}

// SaveBiofeedbackEntry upserts the biofeedback entry for its date.
func (c *Client) SaveBiofeedbackEntry(entry types.BiofeedbackEntry) error {
	if entry.Date == "" {
		return errors.New("biofeedback entry date is required")
	}
	return c.Update(func(p *types.UserProgress) {
		p.BiofeedbackEntries[entry.Date] = entry
	})
}

// cloneProgress deep-copies the aggregate so snapshots never share maps
// or task slices with the live copy.
func cloneProgress(p types.UserProgress) types.UserProgress {
	out := p

	out.CompletedDays = append([]int(nil), p.CompletedDays...)

	out.JournalEntries = make(map[string]types.JournalEntry, len(p.JournalEntries))
	for k, v := range p.JournalEntries {
		v.Meals = append([]types.MealEntry(nil), v.Meals...)
		out.JournalEntries[k] = v
	}

	out.BiofeedbackEntries = make(map[string]types.BiofeedbackEntry, len(p.BiofeedbackEntries))
	for k, v := range p.BiofeedbackEntries {
		out.BiofeedbackEntries[k] = v
	}

	out.DayEntries = make(map[int]types.DayEntry, len(p.DayEntries))
	for k, v := range p.DayEntries {
		v.Tasks = append([]types.Task(nil), v.Tasks...)
		out.DayEntries[k] = v
	}

	return out
}
