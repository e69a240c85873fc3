package cli

import (
	"errors"
	"fmt"

	"github.com/roach88/mktdeploy/internal/chain"
	"github.com/roach88/mktdeploy/internal/config"
	"github.com/roach88/mktdeploy/internal/deploy"
)

// errPublishRejected is the failure injected by --fail-publish.
var errPublishRejected = errors.New("publish rejected by network")

// TargetFlags are the flags shared by commands that resolve a target file.
type TargetFlags struct {
	Target  string // path to the targets file
	Profile string // overrides the file's profile
	Network string // overrides the file's network
}

// resolvedTarget is a loaded target with its effective profile.
type resolvedTarget struct {
	Target  *config.Target
	Profile deploy.Profile
}

// resolveTarget loads the target file and applies flag overrides.
func resolveTarget(flags TargetFlags) (*resolvedTarget, string, error) {
	t, err := config.Load(flags.Target)
	if err != nil {
		return nil, ErrCodeTargetInvalid, err
	}
	if flags.Network != "" {
		t.Network = flags.Network
	}
	if flags.Profile != "" {
		t.Profile = flags.Profile
	}

	p, err := t.ResolveProfile()
	if err != nil {
		return nil, ErrCodeProfileInvalid, err
	}
	return &resolvedTarget{Target: t, Profile: p}, "", nil
}

// buildNetwork creates the simulated network for t. failPublish, when set,
// names an artifact whose publication the network rejects.
func buildNetwork(t *config.Target, failPublish string) (*chain.Network, error) {
	var opts []chain.Option
	switch {
	case len(t.Accounts) > 0:
		accounts, err := t.ParsedAccounts()
		if err != nil {
			return nil, err
		}
		opts = append(opts, chain.WithAccounts(accounts...))
	case t.Seed != "":
		opts = append(opts, chain.WithSeedAccounts(t.Seed, t.AccountCount))
	}

	if failPublish != "" {
		if failPublish != deploy.ArtifactRegistry && failPublish != deploy.ArtifactMarket {
			return nil, fmt.Errorf("--fail-publish: unknown artifact %q (want %s or %s)",
				failPublish, deploy.ArtifactRegistry, deploy.ArtifactMarket)
		}
		opts = append(opts, chain.FailPublish(failPublish, errPublishRejected))
	}
	return chain.NewNetwork(t.Network, opts...), nil
}
