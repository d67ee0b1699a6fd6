package botflow

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/petrijr/botflow/internal/persistence"
	"github.com/petrijr/botflow/pkg/api"
)

// Re-export run record types so callers don't need internal/persistence.

type (
	RunRecord = persistence.RunRecord
	RunFilter = persistence.RunFilter
	RunStatus = persistence.RunStatus
)

const (
	RunCompleted = persistence.RunCompleted
	RunAborted   = persistence.RunAborted
)

// ErrRunNotFound is returned by History.Run for unknown run IDs.
var ErrRunNotFound = persistence.ErrRunNotFound

// History is a plugin that records one RunRecord per flow run (run id,
// flow name, terminal status, timestamps, and the full result sequence)
// into a backing store at flow finish.
//
// It is telemetry, not checkpointing: records are written once and never
// drive execution. A run counts as aborted when it stopped short of the
// declared step count or its last result is a failure.
type History struct {
	store persistence.RunStore

	mu      sync.Mutex
	started map[string]time.Time
}

// NewMemoryHistory records runs in memory. Records do not survive the
// process; useful for tests and development.
func NewMemoryHistory() *History {
	return newHistory(persistence.NewInMemoryRunStore())
}

// NewSQLiteHistory records runs in a SQLite database. The caller supplies
// an *sql.DB opened with a SQLite driver (for example "modernc.org/sqlite")
// and keeps ownership of it.
func NewSQLiteHistory(db *sql.DB) (*History, error) {
	store, err := persistence.NewSQLiteRunStore(db)
	if err != nil {
		return nil, err
	}
	return newHistory(store), nil
}

// NewRedisHistory records runs in Redis under the "botflow:" key prefix.
func NewRedisHistory(client *redis.Client) *History {
	return newHistory(persistence.NewRedisRunStore(client, ""))
}

func newHistory(store persistence.RunStore) *History {
	return &History{
		store:   store,
		started: make(map[string]time.Time),
	}
}

var _ api.Plugin = (*History)(nil)

func (h *History) Name() string { return "history" }

func (h *History) OnFlowStart(ctx context.Context, flow api.FlowInfo) error {
	h.mu.Lock()
	h.started[flow.RunID] = time.Now()
	h.mu.Unlock()
	return nil
}

func (h *History) OnFlowFinish(ctx context.Context, flow api.FlowInfo, results []api.StepResult) error {
	h.mu.Lock()
	startedAt, ok := h.started[flow.RunID]
	delete(h.started, flow.RunID)
	h.mu.Unlock()
	if !ok {
		startedAt = time.Now()
	}

	status := persistence.RunCompleted
	if len(results) < flow.Steps {
		status = persistence.RunAborted
	} else if n := len(results); n > 0 && results[n-1].Status == api.StatusFailure {
		status = persistence.RunAborted
	}

	return h.store.SaveRun(ctx, &persistence.RunRecord{
		ID:         flow.RunID,
		Flow:       flow.Name,
		Status:     status,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Results:    results,
	})
}

// Run fetches a recorded run by its run id.
func (h *History) Run(ctx context.Context, id string) (*RunRecord, error) {
	return h.store.GetRun(ctx, id)
}

// List returns recorded runs matching the filter, oldest first.
func (h *History) List(ctx context.Context, filter RunFilter) ([]*RunRecord, error) {
	return h.store.ListRuns(ctx, filter)
}
