package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/roach88/mktdeploy/internal/journal"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Journal string // path to SQLite journal database
	RunID   string // show a single run
	Address string // find the run that published an address
	Limit   int    // maximum runs to list
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled deployment runs",
		Long: `History reads a journal written by deploy --journal.

Without --run it lists runs in the order they started. With --run it shows
one run with its publishes and initiate call. With --address it names the
run that published a contract address, which is how a leftover from a
failed run is traced back.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal database (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show only this run")
	cmd.Flags().StringVar(&opts.Address, "address", "", "show the run that published this contract address")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of runs to list (0 = all)")
	_ = cmd.MarkFlagRequired("journal")
	cmd.MarkFlagsMutuallyExclusive("run", "address")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	// Opening creates the database, which history must never do.
	if _, err := os.Stat(opts.Journal); err != nil {
		_ = formatter.Error(ErrCodeJournal, fmt.Sprintf("journal not found: %s", opts.Journal), nil)
		return WrapExitError(ExitCommandError, "journal not found", err)
	}

	j, err := journal.Open(opts.Journal)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	if opts.Address != "" {
		return findPublish(ctx, j, opts.Address, formatter)
	}

	if opts.RunID != "" {
		rec, err := j.GetRun(ctx, opts.RunID)
		if err != nil {
			if errors.Is(err, journal.ErrRunNotFound) {
				return formatter.Fail(ExitCommandError, fmt.Sprintf("run %s", opts.RunID), err)
			}
			return formatter.Fail(ExitCommandError, "read journal", err)
		}
		if formatter.JSON() {
			return formatter.Success(rec)
		}
		printRunRecord(formatter.Writer, rec)
		return nil
	}

	runs, err := j.ListRuns(ctx, opts.Limit)
	if err != nil {
		return formatter.Fail(ExitCommandError, "read journal", err)
	}
	if formatter.JSON() {
		return formatter.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs found in journal.")
		return nil
	}
	for _, r := range runs {
		printRunLine(formatter.Writer, r)
	}
	return nil
}

func findPublish(ctx context.Context, j *journal.Journal, address string, formatter *OutputFormatter) error {
	if !common.IsHexAddress(address) {
		_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("%q is not a hex address", address), nil)
		return NewExitError(ExitCommandError, "invalid address")
	}

	p, err := j.FindPublish(ctx, common.HexToAddress(address).Hex())
	if err != nil {
		return formatter.Fail(ExitCommandError, "read journal", err)
	}
	if formatter.JSON() {
		return formatter.Success(p)
	}
	fmt.Fprintf(formatter.Writer, "%s at %s was published by run %s (tx %s)\n", p.Artifact, p.Address, p.RunID, p.TxHash)
	return nil
}

func printRunLine(w io.Writer, r journal.Run) {
	fmt.Fprintf(w, "%s  %-9s  network=%s profile=%s", r.ID, r.Status, r.Network, r.Profile)
	if r.Error != "" {
		fmt.Fprintf(w, "  error=%q", r.Error)
	}
	fmt.Fprintln(w)
}

func printRunRecord(w io.Writer, rec *journal.RunRecord) {
	printRunLine(w, rec.Run)
	if rec.Sender != "" {
		fmt.Fprintf(w, "  sender:   %s\n", rec.Sender)
	}
	for _, p := range rec.Publishes {
		fmt.Fprintf(w, "  %s is deployed at: %s (tx %s)\n", p.Artifact, p.Address, p.TxHash)
	}
	if rec.Initiation != nil {
		fmt.Fprintf(w, "  initiate: %s (tx %s)\n", rec.Initiation.Params, rec.Initiation.TxHash)
		fmt.Fprintf(w, "  params:   %s\n", rec.Initiation.ParamsHash)
	}
}
