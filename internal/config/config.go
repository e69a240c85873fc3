package config

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/roach88/mktdeploy/internal/deploy"
)

// DefaultAccountCount is the number of accounts derived from a seed when
// account_count is not set.
const DefaultAccountCount = 10

// Target is one deployment target file.
type Target struct {
	Network      string   `yaml:"network" toml:"network" json:"network"`
	Accounts     []string `yaml:"accounts,omitempty" toml:"accounts,omitempty" json:"accounts,omitempty"`
	Seed         string   `yaml:"seed,omitempty" toml:"seed,omitempty" json:"seed,omitempty"`
	AccountCount int      `yaml:"account_count,omitempty" toml:"account_count,omitempty" json:"account_count,omitempty"`
	Profile      string   `yaml:"profile,omitempty" toml:"profile,omitempty" json:"profile,omitempty"`

	// Overrides applied on top of the profile.
	Unit       *string `yaml:"unit,omitempty" toml:"unit,omitempty" json:"unit,omitempty"`
	Duration   *int64  `yaml:"duration,omitempty" toml:"duration,omitempty" json:"duration,omitempty"`
	Bound1     *int64  `yaml:"bound1,omitempty" toml:"bound1,omitempty" json:"bound1,omitempty"`
	Bound2     *int64  `yaml:"bound2,omitempty" toml:"bound2,omitempty" json:"bound2,omitempty"`
	Initialize *bool   `yaml:"initialize,omitempty" toml:"initialize,omitempty" json:"initialize,omitempty"`
}

// applyDefaults fills unset fields.
func (t *Target) applyDefaults() {
	if t.Profile == "" {
		t.Profile = deploy.DefaultProfile
	}
	if t.Seed != "" && t.AccountCount == 0 {
		t.AccountCount = DefaultAccountCount
	}
}

// Validate checks that required fields are set and values are valid.
func (t *Target) Validate() error {
	if t.Network == "" {
		return errors.New("network is required")
	}
	if t.AccountCount < 0 {
		return fmt.Errorf("account_count must be >= 0, got %d", t.AccountCount)
	}
	if len(t.Accounts) > 0 && t.Seed != "" {
		return errors.New("accounts and seed are mutually exclusive")
	}
	for i, a := range t.Accounts {
		if !common.IsHexAddress(a) {
			return fmt.Errorf("accounts[%d]: %q is not a hex address", i, a)
		}
	}
	if _, err := t.ResolveProfile(); err != nil {
		return err
	}
	return nil
}

// ParsedAccounts returns the listed accounts as addresses.
func (t *Target) ParsedAccounts() ([]common.Address, error) {
	out := make([]common.Address, 0, len(t.Accounts))
	for i, a := range t.Accounts {
		if !common.IsHexAddress(a) {
			return nil, fmt.Errorf("accounts[%d]: %q is not a hex address", i, a)
		}
		out = append(out, common.HexToAddress(a))
	}
	return out, nil
}

// ResolveProfile returns the named profile with the target's overrides applied.
func (t *Target) ResolveProfile() (deploy.Profile, error) {
	name := t.Profile
	if name == "" {
		name = deploy.DefaultProfile
	}
	p, err := deploy.LookupProfile(name)
	if err != nil {
		return deploy.Profile{}, err
	}

	if t.Unit != nil {
		u, err := deploy.ParseUnit(*t.Unit)
		if err != nil {
			return deploy.Profile{}, err
		}
		if t.Duration == nil && u != p.Unit {
			// Keep the profile's duration meaning the same span of time.
			d, err := deploy.Convert(p.Duration, p.Unit, u)
			if err != nil {
				return deploy.Profile{}, err
			}
			p.Duration = d
		}
		p.Unit = u
	}
	if t.Duration != nil {
		p.Duration = *t.Duration
	}
	if t.Bound1 != nil {
		p.Bound1 = *t.Bound1
	}
	if t.Bound2 != nil {
		b2 := *t.Bound2
		p.Bound2 = &b2
	}
	if t.Initialize != nil {
		p.Initialize = *t.Initialize
	}

	if err := p.Validate(); err != nil {
		return deploy.Profile{}, err
	}
	return p, nil
}
