// Package automation abstracts the browser-automation capability used by
// providers that book classes through a website. The driver itself is a
// black box to the rest of the system; everything here can fail and the
// caller maps failures onto execution outcomes.
package automation

import (
	"context"
	"errors"
)

// ErrElementNotFound is returned by Find when no element matches
var ErrElementNotFound = errors.New("element not found")

// Driver opens browser sessions
type Driver interface {
	OpenSession(ctx context.Context, headless bool) (Session, error)
}

// Session is one live browser session. Close must be called on every
// exit path; sessions leak OS processes otherwise.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Find(ctx context.Context, selector string) (Element, error)
	Close() error
}

// Element is a located page element
type Element interface {
	Click(ctx context.Context) error
	TypeText(ctx context.Context, text string) error
	ReadText(ctx context.Context) (string, error)
}
