package verify

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/torclang/torc/internal/ir"
)

// GenerateWitness creates a proof witness for a discharged obligation.
// The witness hash binds the obligation's predicate to the solver that
// proved it, so a witness cannot be replayed against a different
// obligation.
func GenerateWitness(solverName string, ob ir.ProofObligation, data []byte) *ir.ProofWitness {
	return &ir.ProofWitness{
		Hash:   witnessHash(solverName, ob),
		Solver: solverName,
		Data:   data,
	}
}

// VerifyWitness checks that a witness hash matches the obligation it
// claims to prove.
func VerifyWitness(w *ir.ProofWitness, ob ir.ProofObligation) bool {
	return w != nil && w.Hash == witnessHash(w.Solver, ob)
}

func witnessHash(solverName string, ob ir.ProofObligation) string {
	h := sha256.New()
	h.Write([]byte(ir.DomainWitness))
	h.Write([]byte{0})
	h.Write([]byte(ob.Predicate.String()))
	h.Write([]byte{0})
	h.Write([]byte(solverName))
	return hex.EncodeToString(h.Sum(nil))
}
