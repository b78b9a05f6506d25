// Package provider defines the contract between the runner and the
// integrations that fulfill action events on external platforms.
package provider

import (
	"context"
	"errors"

	"fitagent/internal/store"
)

// Outcome errors returned by Execute. The first two are permanent: the
// runner disables the event and it is never retried. The rest are
// transient: the event stays pending and is retried on the next run.
var (
	// ErrNoCredentials means the user never configured a login for the
	// platform. Permanent.
	ErrNoCredentials = errors.New("no credentials configured")
	// ErrInvalidCredentials means the platform rejected the login. Permanent.
	ErrInvalidCredentials = errors.New("credentials rejected by platform")
	// ErrLoginFailed covers unexpected page state, CAPTCHAs and other
	// login failures that may resolve themselves. Transient.
	ErrLoginFailed = errors.New("login failed")
	// ErrTargetNotFound means the booking target doesn't exist (yet).
	// Transient: the slot may appear before the next run.
	ErrTargetNotFound = errors.New("booking target not found")
	// ErrActionFailed means the remote action did not confirm. Transient.
	ErrActionFailed = errors.New("remote action failed")
)

// Provider executes action events against one external platform.
// Execute returns nil on success or one of the outcome errors above;
// any other error is treated as transient.
type Provider interface {
	Name() string
	Execute(ctx context.Context, event store.ExecutableActionEvent) error
}

// Permanent reports whether an execution error means the event should be
// disabled rather than retried.
func Permanent(err error) bool {
	return errors.Is(err, ErrNoCredentials) || errors.Is(err, ErrInvalidCredentials)
}
