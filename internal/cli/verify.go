package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/torclang/torc/internal/compiler"
	"github.com/torclang/torc/internal/graph"
	"github.com/torclang/torc/internal/verify"
)

// profileAliases maps CLI spellings to profile names.
var profileAliases = map[string]string{
	"dev":           "development",
	"development":   "development",
	"integration":   "integration",
	"cert":          "certification",
	"certification": "certification",
}

// VerifyResult is the JSON payload for verify output.
type VerifyResult struct {
	Passed      bool   `json:"passed"`
	Profile     string `json:"profile"`
	Total       int    `json:"total"`
	Verified    int    `json:"verified"`
	Pending     int    `json:"pending"`
	Failed      int    `json:"failed"`
	Assumed     int    `json:"assumed"`
	Waived      int    `json:"waived"`
	CacheHits   int    `json:"cache_hits"`
	Diagnostics int    `json:"diagnostics"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		profileName   string
		contractsPath string
		proofDBPath   string
	)

	cmd := &cobra.Command{
		Use:   "verify <graph.json>",
		Short: "Verify a graph's proof obligations",
		Long: `Run the verification engine over a graph's proof obligations.

Obligations come from node contracts and edge type refinements. The
profile selects rigor: development is fast and lenient, integration
escalates to the solver, certification re-checks stored witnesses.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, args[0], profileName, contractsPath, proofDBPath, cmd)
		},
	}

	cmd.Flags().StringVar(&profileName, "profile", "dev",
		"verification profile (dev|integration|certification)")
	cmd.Flags().StringVar(&contractsPath, "contracts", "",
		"CUE contract file to attach before verifying")
	cmd.Flags().StringVar(&proofDBPath, "proof-db", "",
		"SQLite proof cache shared across runs")

	return cmd
}

func runVerify(opts *RootOptions, path, profileName, contractsPath, proofDBPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	profile, ok := verify.ProfileByName(profileAliases[profileName])
	if !ok {
		formatter.Error(ErrCodeVerifyFailed, "unknown profile "+profileName, nil)
		return NewExitError(ExitCommandError, "unknown profile "+profileName)
	}

	g, err := loadGraphWithContracts(path, contractsPath, formatter)
	if err != nil {
		return err
	}

	engineOpts := []verify.EngineOption{
		verify.WithProfile(profile),
		verify.WithLogger(commandLogger(opts, cmd)),
	}
	if proofDBPath != "" {
		store, err := verify.OpenStore(proofDBPath)
		if err != nil {
			formatter.Error(ErrCodeVerifyFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "opening proof db", err)
		}
		defer store.Close()
		engineOpts = append(engineOpts, verify.WithProofStore(store))
	}

	engine := verify.NewEngine(engineOpts...)
	report, err := engine.Verify(cmd.Context(), g)
	if err != nil {
		formatter.Error(ErrCodeVerifyFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "verification", err)
	}

	result := VerifyResult{
		Passed:      report.Passed(),
		Profile:     string(report.Profile),
		Total:       report.Summary.Total,
		Verified:    report.Summary.Verified,
		Pending:     report.Summary.Pending,
		Failed:      report.Summary.Failed,
		Assumed:     report.Summary.Assumed,
		Waived:      report.Summary.Waived,
		CacheHits:   report.Summary.CacheHits,
		Diagnostics: len(report.Diagnostics),
	}

	if opts.Format == "json" {
		if !result.Passed {
			formatter.Error(ErrCodeVerifyFailed,
				fmt.Sprintf("%d failed, %d pending", result.Failed, result.Pending), result)
			return NewExitError(ExitFailure, "verification failed")
		}
		return formatter.Success(result)
	}

	fmt.Fprint(formatter.Writer, report.String())
	if !result.Passed {
		return NewExitError(ExitFailure, "verification failed")
	}
	return nil
}

// loadGraphWithContracts loads a graph and, when a contract file is
// given, compiles and attaches its contracts.
func loadGraphWithContracts(path, contractsPath string, formatter *OutputFormatter) (*graph.Graph, error) {
	g, err := LoadGraph(path)
	if err != nil {
		formatter.Error(ErrCodeLoadFailed, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "loading graph", err)
	}

	if contractsPath != "" {
		set, err := compiler.CompileFile(contractsPath)
		if err != nil {
			formatter.Error(ErrCodeLoadFailed, err.Error(), nil)
			return nil, WrapExitError(ExitCommandError, "compiling contracts", err)
		}
		formatter.VerboseLog("Compiled %d contract(s) from %s", set.Len(), contractsPath)
		if err := compiler.ApplyContracts(g, set); err != nil {
			formatter.Error(ErrCodeLoadFailed, err.Error(), nil)
			return nil, WrapExitError(ExitCommandError, "attaching contracts", err)
		}
	}

	return g, nil
}

// commandLogger builds the engine logger: verbose runs log to stderr,
// quiet runs discard.
func commandLogger(opts *RootOptions, cmd *cobra.Command) *slog.Logger {
	if opts.Verbose {
		return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
