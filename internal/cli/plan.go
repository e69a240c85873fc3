package cli

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/roach88/mktdeploy/internal/deploy"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	TargetFlags

	// Clock overrides the system clock (for testing).
	Clock deploy.Clock
}

// Plan is what a deploy run against a fresh network would send.
type Plan struct {
	Network  string             `json:"network"`
	Profile  deploy.Profile     `json:"profile"`
	Sender   common.Address     `json:"sender"`
	Registry common.Address     `json:"registry"`
	Market   common.Address     `json:"market"`
	Init     *deploy.InitParams `json:"init,omitempty"`
	Calldata string             `json:"calldata,omitempty"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}
	return newPlanCommand(opts)
}

func newPlanCommand(opts *PlanOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the addresses and initiate arguments a deploy would use",
		Long: `Plan resolves the target and profile and prints the sender, the addresses
the registry and market would be published at, and the initiate arguments
computed from the current clock. Nothing is published.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Target, "target", "t", "", "path to the target file (.yaml, .toml or .cue)")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "profile name (overrides the target file)")
	cmd.Flags().StringVar(&opts.Network, "network", "", "network name (overrides the target file)")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func runPlan(opts *PlanOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	resolved, code, err := resolveTarget(opts.TargetFlags)
	if err != nil {
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, fmt.Sprintf("%s: target %s", code, opts.Target), err)
	}

	network, err := buildNetwork(resolved.Target, "")
	if err != nil {
		return formatter.Fail(ExitCommandError, "invalid network options", err)
	}
	accounts, err := network.Accounts(commandContext(cmd))
	if err != nil {
		return formatter.Fail(ExitCommandError, "list accounts", err)
	}
	if len(accounts) == 0 {
		return formatter.Fail(ExitCommandError, "no sender", deploy.ErrNoAccounts)
	}

	sender := accounts[0]
	plan := Plan{
		Network:  resolved.Target.Network,
		Profile:  resolved.Profile,
		Sender:   sender,
		Registry: network.PredictAddress(sender, 0),
		Market:   network.PredictAddress(sender, 1),
	}

	if resolved.Profile.Initialize {
		clock := opts.Clock
		if clock == nil {
			clock = deploy.SystemClock{}
		}
		params := resolved.Profile.Params(clock.Now(), plan.Registry)
		data, err := params.Calldata()
		if err != nil {
			return formatter.Fail(ExitCommandError, "encode initiate", err)
		}
		plan.Init = &params
		plan.Calldata = hexutil.Encode(data)
	}

	if formatter.JSON() {
		return formatter.Success(plan)
	}
	printPlan(formatter.Writer, plan)
	return nil
}

func printPlan(w io.Writer, p Plan) {
	fmt.Fprintf(w, "Network:  %s\n", p.Network)
	fmt.Fprintf(w, "Profile:  %s\n", describeProfile(p.Profile))
	fmt.Fprintf(w, "Sender:   %s\n", p.Sender.Hex())
	fmt.Fprintf(w, "%s will be deployed at: %s\n", deploy.ArtifactRegistry, p.Registry.Hex())
	fmt.Fprintf(w, "%s will be deployed at: %s\n", deploy.ArtifactMarket, p.Market.Hex())
	if p.Init == nil {
		fmt.Fprintln(w, "Market will not be initiated")
		return
	}
	fmt.Fprintf(w, "Market will be initiated with start time %d\n", p.Init.StartTime)
	fmt.Fprintf(w, "Calldata: %s\n", p.Calldata)
}
