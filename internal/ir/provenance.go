package ir

import "fmt"

// AuthorKind distinguishes who authored a graph element.
type AuthorKind string

const (
	// AuthorAI is an AI model.
	AuthorAI AuthorKind = "ai"
	// AuthorHuman is a human engineer.
	AuthorHuman AuthorKind = "human"
	// AuthorToolchain is the torc toolchain itself, for generated code.
	AuthorToolchain AuthorKind = "toolchain"
)

// Author identifies the originator of a graph element.
type Author struct {
	Kind AuthorKind
	// Identity is the model name, human identity, or toolchain name.
	Identity string
	// Provider is set for AI authors.
	Provider string
	// Version is set for AI and toolchain authors.
	Version string
}

func (a Author) String() string {
	switch a.Kind {
	case AuthorAI:
		return fmt.Sprintf("ai:%s@%s/%s", a.Identity, a.Provider, a.Version)
	case AuthorToolchain:
		return fmt.Sprintf("torc-toolchain:%s", a.Version)
	default:
		return fmt.Sprintf("human:%s", a.Identity)
	}
}

// EditRecord is one modification to a graph element.
type EditRecord struct {
	// Timestamp is the ISO 8601 time of the edit.
	Timestamp string
	// Author made this edit.
	Author Author
	// Description of what changed and why.
	Description string
	// PreviousHash is the element's content hash before this edit.
	PreviousHash string
}

// RequirementLink ties a graph element to a requirement or design
// rationale, e.g. "REQ-CTRL-001".
type RequirementLink struct {
	ID          string
	Document    string
	Description string
}

// Provenance records who created a graph element, when, and why.
// Immutable once attached; edits append to History.
type Provenance struct {
	Created      string
	CreatedBy    Author
	Reason       string
	Requirements []RequirementLink
	History      []EditRecord
}

// AIAuthored builds a provenance record for an AI-authored element.
func AIAuthored(model, provider, version, reason string) *Provenance {
	return &Provenance{
		CreatedBy: Author{Kind: AuthorAI, Identity: model, Provider: provider, Version: version},
		Reason:    reason,
	}
}

// HumanAuthored builds a provenance record for a human-authored element.
func HumanAuthored(identity, reason string) *Provenance {
	return &Provenance{
		CreatedBy: Author{Kind: AuthorHuman, Identity: identity},
		Reason:    reason,
	}
}
