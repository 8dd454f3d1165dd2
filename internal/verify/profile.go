package verify

import "time"

// ProfileLevel is the level of verification rigor.
type ProfileLevel string

const (
	// ProfileDevelopment is fast iteration: structural + interval only.
	ProfileDevelopment ProfileLevel = "development"
	// ProfileIntegration is pre-merge: full analysis on changed
	// obligations.
	ProfileIntegration ProfileLevel = "integration"
	// ProfileCertification is exhaustive analysis with witness
	// re-checking.
	ProfileCertification ProfileLevel = "certification"
)

// SolverScope selects which obligations go to the external solver.
type SolverScope string

const (
	// SolverSkip runs no external solver.
	SolverSkip SolverScope = "skip"
	// SolverChangedOnly solves only obligations without a cached proof.
	SolverChangedOnly SolverScope = "changed_only"
	// SolverAll solves every pending obligation.
	SolverAll SolverScope = "all"
)

// Profile configures verification depth and scope.
type Profile struct {
	Level          ProfileLevel
	SolverTimeout  time.Duration
	RunStructural  bool
	RunInterval    bool
	Solver         SolverScope
	CheckWitnesses bool
}

// DevelopmentProfile is the fast-iteration profile: 10s timeout,
// structural + interval, no external solver.
func DevelopmentProfile() Profile {
	return Profile{
		Level:         ProfileDevelopment,
		SolverTimeout: 10 * time.Second,
		RunStructural: true,
		RunInterval:   true,
		Solver:        SolverSkip,
	}
}

// IntegrationProfile is the pre-merge profile: 60s timeout, solver on
// changed obligations.
func IntegrationProfile() Profile {
	return Profile{
		Level:         ProfileIntegration,
		SolverTimeout: 60 * time.Second,
		RunStructural: true,
		RunInterval:   true,
		Solver:        SolverChangedOnly,
	}
}

// CertificationProfile is the safety-certification profile: 600s
// timeout, exhaustive solving, witness re-checking, no cache reuse.
func CertificationProfile() Profile {
	return Profile{
		Level:          ProfileCertification,
		SolverTimeout:  600 * time.Second,
		RunStructural:  true,
		RunInterval:    true,
		Solver:         SolverAll,
		CheckWitnesses: true,
	}
}

// ProfileByName resolves a profile from its level name.
func ProfileByName(name string) (Profile, bool) {
	switch ProfileLevel(name) {
	case ProfileDevelopment:
		return DevelopmentProfile(), true
	case ProfileIntegration:
		return IntegrationProfile(), true
	case ProfileCertification:
		return CertificationProfile(), true
	default:
		return Profile{}, false
	}
}
