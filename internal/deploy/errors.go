package deploy

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAccounts is returned when the deployment context has no funded account.
	ErrNoAccounts = errors.New("no funded accounts available")

	// ErrInvalidProfile is returned for profiles that violate their invariants.
	ErrInvalidProfile = errors.New("invalid profile")
)

// PublishError reports a failed artifact publication. The run stops here;
// artifacts published earlier in the run stay on chain.
type PublishError struct {
	Artifact string
	Err      error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s: %v", e.Artifact, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// InitError reports a failed initiate call together with the parameters sent.
type InitError struct {
	Params InitParams
	Err    error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initiate market (start=%d duration=%d registry=%s): %v",
		e.Params.StartTime, e.Params.Duration, e.Params.Registry.Hex(), e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// IsPublishError reports whether err is or wraps a PublishError.
func IsPublishError(err error) bool {
	var pe *PublishError
	return errors.As(err, &pe)
}

// IsInitError reports whether err is or wraps an InitError.
func IsInitError(err error) bool {
	var ie *InitError
	return errors.As(err, &ie)
}
