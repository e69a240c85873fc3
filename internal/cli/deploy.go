package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/mktdeploy/internal/deploy"
	"github.com/roach88/mktdeploy/internal/journal"
)

// DeployOptions holds flags for the deploy command.
type DeployOptions struct {
	*RootOptions
	TargetFlags
	Journal     string // optional SQLite journal path
	FailPublish string // artifact whose publication the simulated network rejects

	// Clock and RunIDs override the system clock and UUIDv7 run IDs (for testing).
	Clock  deploy.Clock
	RunIDs deploy.RunIDGenerator
}

// NewDeployCommand creates the deploy command.
func NewDeployCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeployOptions{RootOptions: rootOpts}
	return newDeployCommand(opts)
}

func newDeployCommand(opts *DeployOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Publish MarketRegistry and Market, then initialize the market",
		Long: `Deploy publishes MarketRegistry, then Market, from the first account of
the target network. When the profile enables initialization, the market's
initiate entry point is called with the start time derived from the current
clock, the profile's duration and bounds, and the registry address.

Progress is printed as each step is confirmed. With --journal, the run and
each confirmed step are recorded in a SQLite journal.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Target, "target", "t", "", "path to the target file (.yaml, .toml or .cue)")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "profile name (overrides the target file)")
	cmd.Flags().StringVar(&opts.Network, "network", "", "network name (overrides the target file)")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal database")
	cmd.Flags().StringVar(&opts.FailPublish, "fail-publish", "", "make the network reject publication of this artifact")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func runDeploy(opts *DeployOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.Verbose, cmd.ErrOrStderr())

	resolved, code, err := resolveTarget(opts.TargetFlags)
	if err != nil {
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, fmt.Sprintf("%s: target %s", code, opts.Target), err)
	}
	formatter.VerboseLog("Target %s: network=%s profile=%s", opts.Target, resolved.Target.Network, resolved.Profile.Name)

	network, err := buildNetwork(resolved.Target, opts.FailPublish)
	if err != nil {
		return formatter.Fail(ExitCommandError, "invalid network options", err)
	}

	seqOpts := []deploy.SequencerOption{
		deploy.WithLogger(logger),
		deploy.WithOutput(progressWriter(formatter)),
	}
	if opts.Clock != nil {
		seqOpts = append(seqOpts, deploy.WithClock(opts.Clock))
	}
	if opts.RunIDs != nil {
		seqOpts = append(seqOpts, deploy.WithRunIDs(opts.RunIDs))
	}

	if opts.Journal != "" {
		logger.Debug("opening journal", "path", opts.Journal)
		j, err := journal.Open(opts.Journal)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				logger.Error("error closing journal", "error", closeErr)
			}
		}()
		seqOpts = append(seqOpts, deploy.WithObserver(j))
	}

	seq, err := deploy.New(network, resolved.Profile, seqOpts...)
	if err != nil {
		return formatter.Fail(ExitCommandError, "invalid profile", err)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := seq.Run(ctx, resolved.Target.Network)
	if err != nil {
		return formatter.Fail(ExitFailure, "deployment failed", err)
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	printResultSummary(formatter.Writer, result)
	return nil
}

// progressWriter is where the sequencer's progress lines go: stdout in text
// mode, stderr in verbose JSON mode, nowhere otherwise.
func progressWriter(f *OutputFormatter) io.Writer {
	if !f.JSON() {
		return f.Writer
	}
	if f.Verbose {
		return f.GetErrWriter()
	}
	return io.Discard
}

func printResultSummary(w io.Writer, r *deploy.Result) {
	if r.Init == nil {
		fmt.Fprintln(w, "Market is not initiated (profile disables initialization)")
	}
	fmt.Fprintf(w, "Run %s complete (network %s, profile %s)\n", r.RunID, r.Network, r.Profile)
}
