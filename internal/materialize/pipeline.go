package materialize

import (
	"context"
	"log/slog"
	"time"

	"github.com/torclang/torc/internal/graph"
	"github.com/torclang/torc/internal/platform"
)

// Config configures a materialization pipeline run.
type Config struct {
	// Platform is the materialization target.
	Platform platform.Platform
	// Gate configures the verification gate.
	Gate GateConfig
	// Transforms holds registered lowerings and transform passes. Nil
	// means no transforms.
	Transforms *TransformRegistry
	// EnforceResourceFit halts on resource overflow instead of only
	// reporting it.
	EnforceResourceFit bool
	// Logger receives pipeline progress. Nil means slog.Default().
	Logger *slog.Logger
}

// Output is the result of a successful pipeline run.
type Output struct {
	// Graph is the canonicalized, transformed graph ready for code
	// emission.
	Graph *graph.Graph
	// Report carries statistics from every stage.
	Report MaterializationReport
}

// Materialize runs the full pipeline: canonicalize, verification
// gate, transforms, schedule, layout, and resource fitting. The input
// graph is modified in place and returned in the output.
func Materialize(ctx context.Context, g *graph.Graph, cfg Config) (*Output, error) {
	if cfg.Platform.Name == "" {
		return nil, NewMissingConfigError("platform")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	logger.Info("materialization starting",
		"target", cfg.Platform.Name,
		"nodes", g.NodeCount())

	canonStats, err := Canonicalize(g)
	if err != nil {
		return nil, err
	}

	if _, err := GateOrHalt(ctx, g, cfg.Gate); err != nil {
		return nil, err
	}

	var transformStats []TransformStats
	if cfg.Transforms != nil {
		transformStats = cfg.Transforms.ApplyAll(g, cfg.Platform)
	}

	schedule, err := ComputeSchedule(g)
	if err != nil {
		return nil, err
	}

	layout, err := EstimateLayout(g, cfg.Platform)
	if err != nil {
		return nil, err
	}

	resources := CheckResourceFit(layout, cfg.Platform)
	if cfg.EnforceResourceFit {
		if err := RequireFit(resources); err != nil {
			logger.Warn("resource fitting failed", "violations", resources.Violations)
			return nil, err
		}
	}

	report := MaterializationReport{
		Target:             cfg.Platform.Name,
		DurationMs:         uint64(time.Since(start).Milliseconds()),
		Canonicalization:   canonStats,
		VerificationPassed: true,
		Transforms:         transformStats,
		ScheduleDepth:      schedule.SequentialDepth,
		MaxParallelism:     schedule.MaxParallelism,
		Resources:          &resources,
	}

	logger.Info("materialization finished",
		"target", cfg.Platform.Name,
		"duration_ms", report.DurationMs,
		"schedule_depth", report.ScheduleDepth)

	return &Output{Graph: g, Report: report}, nil
}
