package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/petrijr/botflow/pkg/api"
)

// ErrRunNotFound is returned when a run record is not found.
var ErrRunNotFound = errors.New("run not found")

// RunStatus is the terminal state of one recorded flow run.
type RunStatus string

const (
	// RunCompleted means every declared step was given its turn.
	RunCompleted RunStatus = "completed"
	// RunAborted means the run stopped early on a failed step.
	RunAborted RunStatus = "aborted"
)

// RunRecord is the persisted summary of one flow run.
type RunRecord struct {
	ID         string
	Flow       string
	Status     RunStatus
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []api.StepResult
}

// RunFilter selects run records from a store. Zero values mean "no filter"
// for that field.
type RunFilter struct {
	Flow   string
	Status RunStatus
}

// RunStore persists flow run records.
type RunStore interface {
	SaveRun(ctx context.Context, rec *RunRecord) error
	GetRun(ctx context.Context, id string) (*RunRecord, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*RunRecord, error)
}

func (f RunFilter) matches(rec *RunRecord) bool {
	if f.Flow != "" && rec.Flow != f.Flow {
		return false
	}
	if f.Status != "" && rec.Status != f.Status {
		return false
	}
	return true
}
