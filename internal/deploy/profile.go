package deploy

import (
	"fmt"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Unit is the time unit the Market contract expects for start time and duration.
type Unit string

const (
	UnitSeconds      Unit = "seconds"
	UnitMilliseconds Unit = "milliseconds"
)

// ParseUnit accepts the canonical names and the short forms "s" and "ms".
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "seconds", "s":
		return UnitSeconds, nil
	case "milliseconds", "ms":
		return UnitMilliseconds, nil
	}
	return "", fmt.Errorf("%w: unknown unit %q", ErrInvalidProfile, s)
}

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	return u == UnitSeconds || u == UnitMilliseconds
}

// StartTime derives the start time from now.
// Seconds round up to the next whole second; milliseconds are taken as is.
func (u Unit) StartTime(now time.Time) int64 {
	ms := now.UnixMilli()
	if u == UnitMilliseconds {
		return ms
	}
	sec := ms / 1000
	if ms%1000 > 0 {
		sec++
	}
	return sec
}

// FromDuration expresses d in u. Durations that are not a whole number of
// units are rejected rather than truncated.
func (u Unit) FromDuration(d time.Duration) (int64, error) {
	step := u.step()
	if d%step != 0 {
		return 0, fmt.Errorf("%w: %s is not a whole number of %s", ErrInvalidProfile, d, u)
	}
	return int64(d / step), nil
}

// ToDuration converts v units to a time.Duration.
func (u Unit) ToDuration(v int64) time.Duration {
	return time.Duration(v) * u.step()
}

func (u Unit) step() time.Duration {
	if u == UnitMilliseconds {
		return time.Millisecond
	}
	return time.Second
}

// Convert re-expresses v from one unit in another without losing precision.
func Convert(v int64, from, to Unit) (int64, error) {
	return to.FromDuration(from.ToDuration(v))
}

// Profile selects the initialization behaviour of a run.
// Bound2 nil selects the legacy four-argument initiate.
type Profile struct {
	Name       string `json:"name"`
	Unit       Unit   `json:"unit"`
	Duration   int64  `json:"duration"`
	Bound1     int64  `json:"bound1"`
	Bound2     *int64 `json:"bound2,omitempty"`
	Initialize bool   `json:"initialize"`
}

// Validate checks the profile invariants.
func (p Profile) Validate() error {
	if !p.Unit.Valid() {
		return fmt.Errorf("%w: profile %q: unknown unit %q", ErrInvalidProfile, p.Name, p.Unit)
	}
	if p.Duration <= 0 {
		return fmt.Errorf("%w: profile %q: duration must be positive, got %d", ErrInvalidProfile, p.Name, p.Duration)
	}
	if p.Bound1 < 0 {
		return fmt.Errorf("%w: profile %q: bound1 must not be negative", ErrInvalidProfile, p.Name)
	}
	if p.Bound2 != nil && *p.Bound2 < 0 {
		return fmt.Errorf("%w: profile %q: bound2 must not be negative", ErrInvalidProfile, p.Name)
	}
	return nil
}

// Params builds the initiate arguments for a run started at now.
func (p Profile) Params(now time.Time, registry common.Address) InitParams {
	params := InitParams{
		Unit:      p.Unit,
		StartTime: p.Unit.StartTime(now),
		Duration:  p.Duration,
		Bound1:    p.Bound1,
		Registry:  registry,
	}
	if p.Bound2 != nil {
		b2 := *p.Bound2
		params.Bound2 = &b2
	}
	return params
}

// DefaultProfile names the profile used when none is configured.
const DefaultProfile = "v3"

func bound(v int64) *int64 { return &v }

// Built-in profiles. v1 is the original seconds-based four-argument call,
// v2 publishes without initializing, v3 initializes in milliseconds with both bounds.
var builtinProfiles = map[string]Profile{
	"v1": {Name: "v1", Unit: UnitSeconds, Duration: 3600, Bound1: 0, Initialize: true},
	"v2": {Name: "v2", Unit: UnitSeconds, Duration: 3600, Bound1: 1700, Bound2: bound(2000), Initialize: false},
	"v3": {Name: "v3", Unit: UnitMilliseconds, Duration: 3_600_000, Bound1: 1700, Bound2: bound(2000), Initialize: true},
}

// Profiles returns the built-in profiles ordered by name.
func Profiles() []Profile {
	out := make([]Profile, 0, len(builtinProfiles))
	for _, p := range builtinProfiles {
		out = append(out, p.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupProfile returns a copy of the named built-in profile.
func LookupProfile(name string) (Profile, error) {
	p, ok := builtinProfiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: unknown profile %q", ErrInvalidProfile, name)
	}
	return p.clone(), nil
}

func (p Profile) clone() Profile {
	if p.Bound2 != nil {
		p.Bound2 = bound(*p.Bound2)
	}
	return p
}
