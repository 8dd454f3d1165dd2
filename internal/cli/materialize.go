package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/torclang/torc/internal/materialize"
	"github.com/torclang/torc/internal/platform"
	"github.com/torclang/torc/internal/verify"
)

// MaterializeResult is the JSON payload for materialize output.
type MaterializeResult struct {
	Target             string   `json:"target"`
	DurationMs         uint64   `json:"duration_ms"`
	NodesDeduplicated  int      `json:"nodes_deduplicated"`
	FinalNodeCount     int      `json:"final_node_count"`
	VerificationPassed bool     `json:"verification_passed"`
	ScheduleDepth      int      `json:"schedule_depth"`
	MaxParallelism     int      `json:"max_parallelism"`
	ResourcesFit       bool     `json:"resources_fit"`
	Violations         []string `json:"violations,omitempty"`
}

// NewMaterializeCommand creates the materialize command.
func NewMaterializeCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		platformName  string
		contractsPath string
		strict        bool
		enforceFit    bool
	)

	cmd := &cobra.Command{
		Use:   "materialize <graph.json>",
		Short: "Materialize a verified graph for a target platform",
		Long: `Run the materialization pipeline: canonicalize the graph, gate on
verification, apply transforms, schedule, estimate memory layout, and
check the result against the target platform's resources.

The platform is a preset name or a YAML descriptor file.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMaterialize(rootOpts, args[0], platformName, contractsPath, strict, enforceFit, cmd)
		},
	}

	cmd.Flags().StringVar(&platformName, "platform", "",
		"target platform: preset name or YAML descriptor path (required)")
	cmd.Flags().StringVar(&contractsPath, "contracts", "",
		"CUE contract file to attach before the verification gate")
	cmd.Flags().BoolVar(&strict, "strict", false,
		"block on pending obligations (certification gate)")
	cmd.Flags().BoolVar(&enforceFit, "enforce-fit", false,
		"halt on resource overflow instead of reporting it")
	cmd.MarkFlagRequired("platform")

	return cmd
}

func runMaterialize(opts *RootOptions, path, platformName, contractsPath string, strict, enforceFit bool, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	target, err := platform.Resolve(platformName)
	if err != nil {
		formatter.Error(ErrCodeMaterializeError, err.Error(), nil)
		return WrapExitError(ExitCommandError, "resolving platform", err)
	}

	g, err := loadGraphWithContracts(path, contractsPath, formatter)
	if err != nil {
		return err
	}

	gate := materialize.DevelopmentGate()
	if strict {
		gate = materialize.StrictGate()
	}
	gate.Options = append(gate.Options, verify.WithLogger(commandLogger(opts, cmd)))

	cfg := materialize.Config{
		Platform:           target,
		Gate:               gate,
		EnforceResourceFit: enforceFit,
		Logger:             commandLogger(opts, cmd),
	}

	out, err := materialize.Materialize(cmd.Context(), g, cfg)
	if err != nil {
		formatter.Error(ErrCodeMaterializeError, err.Error(), nil)
		if materialize.IsVerificationError(err) || materialize.IsResourceError(err) {
			return WrapExitError(ExitFailure, "materialization", err)
		}
		return WrapExitError(ExitCommandError, "materialization", err)
	}

	report := out.Report
	result := MaterializeResult{
		Target:             report.Target,
		DurationMs:         report.DurationMs,
		NodesDeduplicated:  report.Canonicalization.NodesDeduplicated,
		FinalNodeCount:     report.Canonicalization.FinalNodeCount,
		VerificationPassed: report.VerificationPassed,
		ScheduleDepth:      report.ScheduleDepth,
		MaxParallelism:     report.MaxParallelism,
		ResourcesFit:       true,
	}
	if report.Resources != nil {
		result.ResourcesFit = report.Resources.AllFit
		result.Violations = report.Resources.Violations
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprint(formatter.Writer, report.String())
	if !result.ResourcesFit {
		fmt.Fprintf(formatter.Writer, "WARNING: resource violations:\n  %s\n",
			strings.Join(result.Violations, "\n  "))
	}
	return nil
}
