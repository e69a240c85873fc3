package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/roach88/mktdeploy/internal/canon"
)

// Sequencer publishes the registry and market contracts and optionally
// initializes the market, one confirmed step at a time.
type Sequencer struct {
	dc       Context
	profile  Profile
	clock    Clock
	runIDs   RunIDGenerator
	observer Observer
	logger   *slog.Logger
	out      io.Writer
}

// SequencerOption configures a Sequencer.
type SequencerOption func(*Sequencer)

// WithClock sets the clock used to derive the start time.
func WithClock(c Clock) SequencerOption {
	return func(s *Sequencer) { s.clock = c }
}

// WithRunIDs sets the run ID generator.
func WithRunIDs(g RunIDGenerator) SequencerOption {
	return func(s *Sequencer) { s.runIDs = g }
}

// WithObserver sets the progress observer.
func WithObserver(o Observer) SequencerOption {
	return func(s *Sequencer) { s.observer = o }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) SequencerOption {
	return func(s *Sequencer) { s.logger = l }
}

// WithOutput sets where human-readable progress lines are written.
func WithOutput(w io.Writer) SequencerOption {
	return func(s *Sequencer) { s.out = w }
}

// New creates a Sequencer over dc using profile.
// The profile is validated here so that a bad profile never publishes anything.
func New(dc Context, profile Profile, opts ...SequencerOption) (*Sequencer, error) {
	if dc == nil {
		return nil, errors.New("deploy: nil deployment context")
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	s := &Sequencer{
		dc:       dc,
		profile:  profile.clone(),
		clock:    SystemClock{},
		runIDs:   UUIDv7Generator{},
		observer: NopObserver{},
		logger:   slog.Default(),
		out:      io.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Profile returns the profile the sequencer runs with.
func (s *Sequencer) Profile() Profile {
	return s.profile.clone()
}

// Stages returns the ordered pipeline for this sequencer's profile.
func (s *Sequencer) Stages() []Stage {
	stages := []Stage{
		{Name: "accounts", Run: s.resolveSender},
		{Name: "registry", Run: s.publishRegistry},
		{Name: "market", Run: s.publishMarket},
	}
	if s.profile.Initialize {
		stages = append(stages, Stage{Name: "initiate", Run: s.initiate})
	}
	return stages
}

// Run executes one deployment against network. Any failure aborts the run;
// nothing is retried or rolled back.
func (s *Sequencer) Run(ctx context.Context, network string) (*Result, error) {
	runID := s.runIDs.Generate()
	logger := s.logger.With("run_id", runID, "network", network, "profile", s.profile.Name)

	s.notify(logger, "run started", s.observer.RunStarted(ctx, RunInfo{
		RunID:     runID,
		Network:   network,
		Profile:   s.profile.clone(),
		StartedAt: s.clock.Now().UnixMilli(),
	}))
	logger.Info("deployment starting", "initialize", s.profile.Initialize)

	runner := &Runner{Stages: s.Stages(), Logger: logger}
	final, err := runner.Run(ctx, State{RunID: runID, Network: network, Logger: logger})

	// The caller's context may already be cancelled; the outcome is still recorded.
	s.notify(logger, "run finished", s.observer.RunFinished(context.WithoutCancel(ctx), runID, final.Sender, err))

	if err != nil {
		logger.Error("deployment failed", "error", err)
		return nil, err
	}

	logger.Info("deployment complete",
		"registry", final.Registry.Address.Hex(),
		"market", final.Market.Address.Hex(),
	)
	res := &Result{
		RunID:    runID,
		Network:  network,
		Profile:  s.profile.Name,
		Sender:   final.Sender,
		Registry: *final.Registry,
		Market:   *final.Market,
		Init:     final.Init,
		InitTx:   final.InitTx,
	}
	fp, err := canon.Fingerprint(canon.DomainRun, res.Fields())
	if err != nil {
		return nil, fmt.Errorf("fingerprint run %s: %w", runID, err)
	}
	res.Fingerprint = fp
	return res, nil
}

func (s *Sequencer) resolveSender(ctx context.Context, in State) (State, error) {
	accounts, err := s.dc.Accounts(ctx)
	if err != nil {
		return in, fmt.Errorf("list accounts: %w", err)
	}
	if len(accounts) == 0 {
		return in, ErrNoAccounts
	}
	in.Sender = accounts[0]
	s.printf("Deploying from %s\n", in.Sender.Hex())
	return in, nil
}

func (s *Sequencer) publishRegistry(ctx context.Context, in State) (State, error) {
	h, err := s.publish(ctx, in, ArtifactRegistry)
	if err != nil {
		return in, err
	}
	in.Registry = &h
	return in, nil
}

func (s *Sequencer) publishMarket(ctx context.Context, in State) (State, error) {
	h, err := s.publish(ctx, in, ArtifactMarket)
	if err != nil {
		return in, err
	}
	in.Market = &h
	return in, nil
}

func (s *Sequencer) publish(ctx context.Context, in State, artifact string) (Handle, error) {
	h, err := s.dc.Publish(ctx, in.Sender, artifact)
	if err != nil {
		return Handle{}, &PublishError{Artifact: artifact, Err: err}
	}
	if h.Address == (common.Address{}) {
		return Handle{}, &PublishError{Artifact: artifact, Err: errors.New("no address assigned")}
	}
	s.printf("%s is deployed at: %s\n", artifact, h.Address.Hex())
	s.notify(s.runLogger(in), "published", s.observer.Published(ctx, in.RunID, h))
	return h, nil
}

func (s *Sequencer) initiate(ctx context.Context, in State) (State, error) {
	if in.Registry == nil || in.Market == nil {
		return in, errors.New("initiate: registry and market must be published first")
	}

	params := s.profile.Params(s.clock.Now(), in.Registry.Address)
	data, err := params.Calldata()
	if err != nil {
		return in, &InitError{Params: params, Err: err}
	}

	tx, err := s.dc.Call(ctx, in.Sender, in.Market.Address, data)
	if err != nil {
		return in, &InitError{Params: params, Err: err}
	}

	in.Init = &params
	in.InitTx = &tx
	s.printf("Market is initiated with start time %d\n", params.StartTime)
	s.notify(s.runLogger(in), "initiated", s.observer.Initiated(ctx, in.RunID, params, tx))
	return in, nil
}

func (s *Sequencer) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Sequencer) runLogger(in State) *slog.Logger {
	if in.Logger != nil {
		return in.Logger
	}
	return s.logger
}

func (s *Sequencer) notify(logger *slog.Logger, event string, err error) {
	if err != nil {
		logger.Warn("observer failed", "event", event, "error", err)
	}
}
