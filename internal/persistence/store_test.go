package persistence

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrijr/botflow/pkg/api"
)

func sampleRecord(id, flow string, status RunStatus, started time.Time) *RunRecord {
	return &RunRecord{
		ID:         id,
		Flow:       flow,
		Status:     status,
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
		Results: []api.StepResult{
			{
				Step:     "Login",
				Status:   api.StatusSuccess,
				Output:   map[string]any{"usuario": "admin"},
				Duration: time.Second,
				Attempts: 1,
			},
			{
				Step:     "Download",
				Status:   api.StatusFailure,
				Err:      errors.New("connection reset"),
				Duration: 2 * time.Second,
				Attempts: 3,
			},
		},
	}
}

// testStoreRoundTrip exercises the RunStore contract shared by every
// backend: save, fetch by id, filtered listing, and the not-found error.
func testStoreRoundTrip(t *testing.T, store RunStore) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	records := []*RunRecord{
		sampleRecord("run-1", "report", RunCompleted, base),
		sampleRecord("run-2", "report", RunAborted, base.Add(time.Minute)),
		sampleRecord("run-3", "cleanup", RunCompleted, base.Add(2*time.Minute)),
	}
	for _, rec := range records {
		require.NoError(t, store.SaveRun(ctx, rec))
	}

	got, err := store.GetRun(ctx, "run-2")
	require.NoError(t, err)
	assert.Equal(t, "run-2", got.ID)
	assert.Equal(t, "report", got.Flow)
	assert.Equal(t, RunAborted, got.Status)
	assert.True(t, got.StartedAt.Equal(base.Add(time.Minute)))

	require.Len(t, got.Results, 2)
	assert.Equal(t, map[string]any{"usuario": "admin"}, got.Results[0].Output)
	assert.Equal(t, api.StatusFailure, got.Results[1].Status)
	assert.EqualError(t, got.Results[1].Err, "connection reset")
	assert.Equal(t, 3, got.Results[1].Attempts)
	assert.Equal(t, 2*time.Second, got.Results[1].Duration)

	_, err = store.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	all, err := store.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].StartedAt.Before(all[i-1].StartedAt), "listing must be ordered by start time")
	}

	byFlow, err := store.ListRuns(ctx, RunFilter{Flow: "report"})
	require.NoError(t, err)
	assert.Len(t, byFlow, 2)

	byStatus, err := store.ListRuns(ctx, RunFilter{Status: RunAborted})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "run-2", byStatus[0].ID)

	both, err := store.ListRuns(ctx, RunFilter{Flow: "cleanup", Status: RunCompleted})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "run-3", both[0].ID)

	none, err := store.ListRuns(ctx, RunFilter{Flow: "cleanup", Status: RunAborted})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func manyRecords(n int, flow string, base time.Time) []*RunRecord {
	out := make([]*RunRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, sampleRecord(
			fmt.Sprintf("run-%03d", i),
			flow,
			RunCompleted,
			base.Add(time.Duration(i)*time.Second),
		))
	}
	return out
}
