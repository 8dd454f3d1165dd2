// Package verify discharges proof obligations against a torc graph.
//
// A verification run collects obligations from graph validation,
// consults the proof cache, then escalates through progressively more
// expensive analyzers: structural checks, interval abstract
// interpretation, and an optional external solver. Results are
// summarized in a VerificationReport.
package verify

import (
	"github.com/torclang/torc/internal/graph"
	"github.com/torclang/torc/internal/ir"
)

// TrackedObligation is a proof obligation with registry metadata.
type TrackedObligation struct {
	// ID is sequential within the registry.
	ID uint64
	// Obligation is the underlying proof obligation.
	Obligation ir.ProofObligation
	// NodeID is the source node, if applicable.
	NodeID graph.NodeID
	// EdgeID is the source edge, if applicable.
	EdgeID graph.EdgeID
}

// RegistryStats counts obligations by discharge state.
type RegistryStats struct {
	Total    int
	Verified int
	Pending  int
	Failed   int
	Assumed  int
	Waived   int
}

// ObligationRegistry collects and tracks proof obligations from graph
// validation.
type ObligationRegistry struct {
	obligations []TrackedObligation
	nextID      uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *ObligationRegistry {
	return &ObligationRegistry{}
}

// CollectFromGraph collects all obligations from a graph by running
// type and contract validation. When type validation fails with errors
// (the structural analyzer reports those separately), contract
// obligations are still collected directly.
func CollectFromGraph(g *graph.Graph) *ObligationRegistry {
	registry := NewRegistry()

	obs, errs := g.ValidateTypes()
	if len(errs) > 0 {
		obs = g.ValidateContracts()
	}
	for _, ob := range obs {
		registry.Add(ob, "", "")
	}

	return registry
}

// Add appends an obligation with optional source metadata.
func (r *ObligationRegistry) Add(ob ir.ProofObligation, nodeID graph.NodeID, edgeID graph.EdgeID) uint64 {
	id := r.nextID
	r.nextID++
	r.obligations = append(r.obligations, TrackedObligation{
		ID:         id,
		Obligation: ob,
		NodeID:     nodeID,
		EdgeID:     edgeID,
	})
	return id
}

// All returns every tracked obligation.
func (r *ObligationRegistry) All() []TrackedObligation {
	return r.obligations
}

// Get returns the tracked obligation with the given id.
func (r *ObligationRegistry) Get(id uint64) (*TrackedObligation, bool) {
	for i := range r.obligations {
		if r.obligations[i].ID == id {
			return &r.obligations[i], true
		}
	}
	return nil, false
}

// Pending returns the obligations still awaiting discharge.
func (r *ObligationRegistry) Pending() []*TrackedObligation {
	var out []*TrackedObligation
	for i := range r.obligations {
		if r.obligations[i].Obligation.Status.State == ir.StatePending {
			out = append(out, &r.obligations[i])
		}
	}
	return out
}

// ByKind returns the obligations of the given kind.
func (r *ObligationRegistry) ByKind(kind ir.ObligationKind) []*TrackedObligation {
	var out []*TrackedObligation
	for i := range r.obligations {
		if r.obligations[i].Obligation.Kind == kind {
			out = append(out, &r.obligations[i])
		}
	}
	return out
}

// UpdateStatus sets the status of an obligation by id.
func (r *ObligationRegistry) UpdateStatus(id uint64, status ir.ProofStatus) {
	if tracked, ok := r.Get(id); ok {
		tracked.Obligation.Status = status
	}
}

// ApplyWaiver waives an obligation by id.
func (r *ObligationRegistry) ApplyWaiver(id uint64, waiver *ir.Waiver) {
	if tracked, ok := r.Get(id); ok {
		tracked.Obligation.Status = ir.Waived(waiver)
	}
}

// Statistics counts obligations per discharge state.
func (r *ObligationRegistry) Statistics() RegistryStats {
	stats := RegistryStats{Total: len(r.obligations)}
	for i := range r.obligations {
		switch r.obligations[i].Obligation.Status.State {
		case ir.StateVerified:
			stats.Verified++
		case ir.StatePending:
			stats.Pending++
		case ir.StateFailed:
			stats.Failed++
		case ir.StateAssumed:
			stats.Assumed++
		case ir.StateWaived:
			stats.Waived++
		}
	}
	return stats
}

// Len returns the total number of tracked obligations.
func (r *ObligationRegistry) Len() int { return len(r.obligations) }

// IsEmpty reports whether the registry has no obligations.
func (r *ObligationRegistry) IsEmpty() bool { return len(r.obligations) == 0 }
