package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// LogPlugin writes one structured log record per lifecycle event using
// log/slog. Every record carries the run id as correlation id, so the
// records of one run can be grepped out of interleaved output.
type LogPlugin struct {
	Logger *slog.Logger
}

// NewLogPlugin creates a plugin that logs flow and step lifecycle events
// with the provided slog.Logger. If logger is nil, slog.Default() is used.
func NewLogPlugin(logger *slog.Logger) *LogPlugin {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPlugin{Logger: logger}
}

func (p *LogPlugin) Name() string { return "log" }

func (p *LogPlugin) OnFlowStart(ctx context.Context, flow FlowInfo) error {
	p.Logger.InfoContext(ctx, "flow_start",
		slog.String("flow", flow.Name),
		slog.String("correlation_id", flow.RunID),
		slog.Int("total_steps", flow.Steps),
	)
	return nil
}

func (p *LogPlugin) OnFlowFinish(ctx context.Context, flow FlowInfo, results []StepResult) error {
	p.Logger.InfoContext(ctx, "flow_finished",
		slog.String("flow", flow.Name),
		slog.String("correlation_id", flow.RunID),
		slog.Int("steps_executed", len(results)),
	)
	return nil
}

func (p *LogPlugin) OnStepStart(ctx context.Context, flow FlowInfo, step Step, fc Context) error {
	p.Logger.DebugContext(ctx, "step_start",
		slog.String("flow", flow.Name),
		slog.String("correlation_id", flow.RunID),
		slog.String("step", step.Name()),
	)
	return nil
}

func (p *LogPlugin) OnStepFinish(ctx context.Context, flow FlowInfo, step Step, result StepResult, fc Context) error {
	level := slog.LevelInfo
	if result.Status == StatusFailure {
		level = slog.LevelError
	}
	p.Logger.Log(ctx, level, "step_completed",
		slog.String("flow", flow.Name),
		slog.String("correlation_id", flow.RunID),
		slog.String("step", step.Name()),
		slog.String("status", string(result.Status)),
		slog.Int("attempts", result.Attempts),
		slog.Duration("duration", result.Duration),
		slog.Any("error", result.Err),
	)
	return nil
}

func (p *LogPlugin) OnStepError(ctx context.Context, flow FlowInfo, step Step, err error, fc Context) error {
	p.Logger.ErrorContext(ctx, "step_failed",
		slog.String("flow", flow.Name),
		slog.String("correlation_id", flow.RunID),
		slog.String("step", step.Name()),
		slog.Any("error", err),
	)
	return nil
}

// MetricsPlugin collects simple counters and aggregate step durations.
// It is safe for reuse across sequential runs of one flow.
type MetricsPlugin struct {
	NopPlugin

	runsStarted   atomic.Int64
	runsCompleted atomic.Int64
	runsFailed    atomic.Int64

	stepsSucceeded    atomic.Int64
	stepsFailed       atomic.Int64
	stepsSkipped      atomic.Int64
	totalStepDuration atomic.Int64 // nanoseconds
}

// MetricsSnapshot is an immutable snapshot of MetricsPlugin counters.
type MetricsSnapshot struct {
	RunsStarted   int64
	RunsCompleted int64
	RunsFailed    int64

	StepsSucceeded  int64
	StepsFailed     int64
	StepsSkipped    int64
	AvgStepDuration time.Duration
}

func (m *MetricsPlugin) Name() string { return "metrics" }

func (m *MetricsPlugin) OnFlowStart(ctx context.Context, flow FlowInfo) error {
	m.runsStarted.Add(1)
	return nil
}

func (m *MetricsPlugin) OnFlowFinish(ctx context.Context, flow FlowInfo, results []StepResult) error {
	// Skipped steps never reach OnStepFinish, so count them here.
	failed := false
	for _, r := range results {
		switch r.Status {
		case StatusFailure:
			failed = true
		case StatusSkipped:
			m.stepsSkipped.Add(1)
		}
	}
	if failed {
		m.runsFailed.Add(1)
	} else {
		m.runsCompleted.Add(1)
	}
	return nil
}

func (m *MetricsPlugin) OnStepFinish(ctx context.Context, flow FlowInfo, step Step, result StepResult, fc Context) error {
	switch result.Status {
	case StatusSuccess:
		m.stepsSucceeded.Add(1)
		m.totalStepDuration.Add(result.Duration.Nanoseconds())
	case StatusFailure:
		m.stepsFailed.Add(1)
	}
	return nil
}

func (m *MetricsPlugin) OnStepStart(ctx context.Context, flow FlowInfo, step Step, fc Context) error {
	return nil
}

// Snapshot returns the counters as they stand now. Average duration covers
// successful steps only.
func (m *MetricsPlugin) Snapshot() MetricsSnapshot {
	succeeded := m.stepsSucceeded.Load()
	totalNs := m.totalStepDuration.Load()

	var avg time.Duration
	if succeeded > 0 {
		avg = time.Duration(totalNs / succeeded)
	}

	return MetricsSnapshot{
		RunsStarted:     m.runsStarted.Load(),
		RunsCompleted:   m.runsCompleted.Load(),
		RunsFailed:      m.runsFailed.Load(),
		StepsSucceeded:  succeeded,
		StepsFailed:     m.stepsFailed.Load(),
		StepsSkipped:    m.stepsSkipped.Load(),
		AvgStepDuration: avg,
	}
}
