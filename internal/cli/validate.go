package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// CLI error codes.
const (
	ErrCodeLoadFailed       = "LOAD_FAILED"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeVerifyFailed     = "VERIFICATION_FAILED"
	ErrCodeMaterializeError = "MATERIALIZATION_FAILED"
)

// ValidationResult holds structural validation results.
type ValidationResult struct {
	Valid       bool     `json:"valid"`
	Nodes       int      `json:"nodes"`
	Edges       int      `json:"edges"`
	Obligations int      `json:"obligations"`
	Errors      []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <graph.json>",
		Short: "Validate graph structure without verification",
		Long: `Validate a graph file without running the verification engine.

Checks port types, linearity discipline, effect declarations, and edge
type compatibility, and reports the proof obligations the graph would
generate. Faster than verify for development feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	g, err := LoadGraph(path)
	if err != nil {
		formatter.Error(ErrCodeLoadFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading graph", err)
	}

	formatter.VerboseLog("Loaded graph: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())

	validationErrors := g.Validate()
	obligations, typeErrors := g.ValidateTypes()
	validationErrors = append(validationErrors, typeErrors...)

	result := ValidationResult{
		Valid:       len(validationErrors) == 0,
		Nodes:       g.NodeCount(),
		Edges:       g.EdgeCount(),
		Obligations: len(obligations),
	}
	for _, verr := range validationErrors {
		result.Errors = append(result.Errors, verr.Error())
	}

	if !result.Valid {
		if opts.Format == "json" {
			formatter.Error(ErrCodeValidationFailed,
				fmt.Sprintf("%d validation errors", len(result.Errors)), result)
		} else {
			fmt.Fprintf(formatter.Writer, "INVALID: %d error(s)\n", len(result.Errors))
			for _, msg := range result.Errors {
				fmt.Fprintf(formatter.Writer, "  - %s\n", msg)
			}
		}
		return NewExitError(ExitFailure, "graph validation failed")
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "VALID: %d nodes, %d edges", result.Nodes, result.Edges)
	if result.Obligations > 0 {
		fmt.Fprintf(&b, ", %d proof obligations pending verification", result.Obligations)
	}
	return formatter.Success(b.String())
}
