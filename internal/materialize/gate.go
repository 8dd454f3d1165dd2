package materialize

import (
	"context"

	"github.com/torclang/torc/internal/graph"
	"github.com/torclang/torc/internal/verify"
)

// GateConfig configures the verification gate that guards
// materialization.
type GateConfig struct {
	// Profile selects verification depth.
	Profile verify.Profile
	// Strict treats pending obligations as blocking. When false, only
	// failed obligations block.
	Strict bool
	// MaxWaivers halts when more obligations are waived than allowed.
	// Nil means unlimited.
	MaxWaivers *int
	// Options are extra engine options (solver, proof store, logger).
	Options []verify.EngineOption
}

// DevelopmentGate is lenient: pending obligations are allowed through.
func DevelopmentGate() GateConfig {
	return GateConfig{Profile: verify.DevelopmentProfile()}
}

// StrictGate blocks on pending obligations and allows no waivers.
func StrictGate() GateConfig {
	zero := 0
	return GateConfig{
		Profile:    verify.CertificationProfile(),
		Strict:     true,
		MaxWaivers: &zero,
	}
}

// GateDecision is the gate's verdict on whether materialization may
// proceed.
type GateDecision struct {
	// Passed is true when nothing blocks materialization.
	Passed bool
	// Report is the full verification report.
	Report *verify.Report
	// Failed, Pending, and Waived are the blocking-relevant counts.
	Failed  int
	Pending int
	Waived  int
}

// RunGate verifies the graph and decides whether materialization may
// proceed. Waiver budget is checked first, then failures, then (in
// strict mode) pending obligations.
func RunGate(ctx context.Context, g *graph.Graph, cfg GateConfig) (GateDecision, error) {
	opts := append([]verify.EngineOption{verify.WithProfile(cfg.Profile)}, cfg.Options...)
	engine := verify.NewEngine(opts...)

	report, err := engine.Verify(ctx, g)
	if err != nil {
		return GateDecision{}, err
	}

	decision := GateDecision{
		Report:  report,
		Failed:  report.Summary.Failed,
		Pending: report.Summary.Pending,
		Waived:  report.Summary.Waived,
	}

	if cfg.MaxWaivers != nil && decision.Waived > *cfg.MaxWaivers {
		return decision, nil
	}
	if decision.Failed > 0 {
		return decision, nil
	}
	if cfg.Strict && decision.Pending > 0 {
		return decision, nil
	}

	decision.Passed = true
	return decision, nil
}

// GateOrHalt runs the gate and converts a blocking decision into a
// verification error.
func GateOrHalt(ctx context.Context, g *graph.Graph, cfg GateConfig) (*verify.Report, error) {
	decision, err := RunGate(ctx, g, cfg)
	if err != nil {
		return nil, err
	}
	if !decision.Passed {
		return nil, NewVerificationFailedError(decision.Failed, decision.Pending)
	}
	return decision.Report, nil
}
