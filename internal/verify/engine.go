package verify

import (
	"context"
	"log/slog"

	"github.com/torclang/torc/internal/graph"
	"github.com/torclang/torc/internal/ir"
)

// Engine orchestrates a verification run: obligation collection, cache
// lookup, structural analysis, interval analysis, and optional external
// solving.
//
// Analyzer order is cheapest-first; each stage only sees obligations
// the previous stages left pending.
type Engine struct {
	profile Profile
	cache   *ProofCache
	store   *ProofStore
	solver  Solver
	logger  *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithProfile sets the verification profile. Default: development.
func WithProfile(p Profile) EngineOption {
	return func(e *Engine) { e.profile = p }
}

// WithSolver attaches an external solver, consulted per the profile's
// solver scope.
func WithSolver(s Solver) EngineOption {
	return func(e *Engine) { e.solver = s }
}

// WithProofStore attaches a persistent proof store so witnesses survive
// across processes.
func WithProofStore(s *ProofStore) EngineOption {
	return func(e *Engine) { e.store = s }
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a verification engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		profile: DevelopmentProfile(),
		cache:   NewProofCache(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Verify runs the full verification pipeline on a graph.
func (e *Engine) Verify(ctx context.Context, g *graph.Graph) (*Report, error) {
	registry := CollectFromGraph(g)
	e.logger.Info("verification starting",
		"profile", string(e.profile.Level),
		"obligations", registry.Len())

	// Cached proofs are reused except under certification, which
	// re-derives everything.
	if e.profile.Level != ProfileCertification {
		e.reuseCachedProofs(ctx, registry)
	}

	var structural []StructuralDiagnostic
	if e.profile.RunStructural {
		structural = AnalyzeStructure(g, registry)
		if len(structural) > 0 {
			e.logger.Warn("structural analysis found violations", "count", len(structural))
		}
	}

	if e.profile.RunInterval {
		e.runIntervalAnalysis(ctx, registry)
	}

	if e.solver != nil && e.profile.Solver != SolverSkip {
		if err := e.runSolver(ctx, registry); err != nil {
			return nil, err
		}
	}

	if e.profile.CheckWitnesses {
		e.recheckWitnesses(registry)
	}

	report := BuildReport(registry, e.cache.Statistics(), e.profile.Level, structural)
	e.logger.Info("verification finished",
		"verified", report.Summary.Verified,
		"pending", report.Summary.Pending,
		"failed", report.Summary.Failed)
	return report, nil
}

// reuseCachedProofs discharges pending obligations whose content hash
// already has a proof, consulting the in-memory cache first and the
// persistent store on a miss.
func (e *Engine) reuseCachedProofs(ctx context.Context, registry *ObligationRegistry) {
	for _, tracked := range registry.Pending() {
		if witness, ok := e.cache.Lookup(tracked.Obligation); ok {
			registry.UpdateStatus(tracked.ID, ir.Verified(witness))
			continue
		}
		if e.store == nil {
			continue
		}
		hash := tracked.Obligation.ContentHash().Hex()
		witness, ok, err := e.store.Lookup(ctx, hash)
		if err != nil {
			e.logger.Warn("proof store lookup failed", "error", err)
			continue
		}
		if ok {
			e.cache.Store(tracked.Obligation, *witness)
			registry.UpdateStatus(tracked.ID, ir.Verified(witness))
		}
	}
}

// runIntervalAnalysis pre-screens pending obligations with interval
// arithmetic. Proven obligations get a witness and are cached;
// disproven ones are marked failed with the counterexample logged.
func (e *Engine) runIntervalAnalysis(ctx context.Context, registry *ObligationRegistry) {
	pending := registry.Pending()
	results := AnalyzeIntervals(pending)

	for _, tracked := range pending {
		result, ok := results[tracked.ID]
		if !ok {
			continue
		}
		switch result.Outcome {
		case IntervalProven:
			witness := GenerateWitness(IntervalName, tracked.Obligation, nil)
			e.cache.Store(tracked.Obligation, *witness)
			e.persistWitness(ctx, tracked.Obligation, *witness)
			registry.UpdateStatus(tracked.ID, ir.Verified(witness))
		case IntervalDisproven:
			e.logger.Warn("obligation disproven by interval analysis",
				"obligation", tracked.Obligation.Description,
				"counterexample", result.Counterexample)
			registry.UpdateStatus(tracked.ID, ir.Failed())
		}
	}
}

// runSolver escalates remaining pending obligations to the external
// solver.
func (e *Engine) runSolver(ctx context.Context, registry *ObligationRegistry) error {
	for _, tracked := range registry.Pending() {
		solverCtx, cancel := context.WithTimeout(ctx, e.profile.SolverTimeout)
		result, err := e.solver.Check(solverCtx, tracked.Obligation)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.logger.Warn("solver check failed",
				"obligation", tracked.Obligation.Description,
				"error", err)
			continue
		}

		switch result.Verdict {
		case VerdictProven:
			witness := GenerateWitness(e.solver.Name(), tracked.Obligation, nil)
			e.cache.Store(tracked.Obligation, *witness)
			e.persistWitness(ctx, tracked.Obligation, *witness)
			registry.UpdateStatus(tracked.ID, ir.Verified(witness))
		case VerdictDisproven:
			e.logger.Warn("obligation disproven by solver",
				"obligation", tracked.Obligation.Description,
				"counterexample", result.Counterexample)
			registry.UpdateStatus(tracked.ID, ir.Failed())
		case VerdictTimeout:
			e.logger.Warn("solver timed out",
				"obligation", tracked.Obligation.Description,
				"timeout", e.profile.SolverTimeout)
		case VerdictUnknown:
			e.logger.Debug("solver inconclusive",
				"obligation", tracked.Obligation.Description,
				"reason", result.Reason)
		}
	}
	return nil
}

// recheckWitnesses demotes any verified obligation whose witness no
// longer matches its content. Certification runs require witnesses to
// re-verify independently.
func (e *Engine) recheckWitnesses(registry *ObligationRegistry) {
	for _, tracked := range registry.All() {
		if tracked.Obligation.Status.State != ir.StateVerified {
			continue
		}
		if !VerifyWitness(tracked.Obligation.Status.Witness, tracked.Obligation) {
			e.logger.Warn("witness failed re-check, demoting to pending",
				"obligation", tracked.Obligation.Description)
			registry.UpdateStatus(tracked.ID, ir.Pending())
		}
	}
}

func (e *Engine) persistWitness(ctx context.Context, ob ir.ProofObligation, w ir.ProofWitness) {
	if e.store == nil {
		return
	}
	if err := e.store.Store(ctx, ob.ContentHash().Hex(), w); err != nil {
		e.logger.Warn("proof store write failed", "error", err)
	}
}
