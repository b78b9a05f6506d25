// Package fitzone books classes on the FitZone studio website through
// the browser-automation driver. The site has no API; the flow is the
// same one a member clicks through: log in, open the day's schedule,
// reserve the slot.
package fitzone

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitagent/internal/automation"
	"fitagent/internal/provider"
	"fitagent/internal/store"
)

// Page selectors. These track the studio site's markup and are the first
// thing to check when runs start failing with login errors.
const (
	selUsername     = `input[name="username"]`
	selPassword     = `input[name="password"]`
	selLoginSubmit  = `button[type="submit"]`
	selLoginError   = `.login-error`
	selAccountMenu  = `.account-menu`
	selConfirmation = `.reservation-confirmed`
)

// Provider books classes on FitZone
type Provider struct {
	driver   automation.Driver
	baseURL  string
	headless bool

	// Bounded poll for slots that appear shortly before their time
	pollAttempts int
	pollInterval time.Duration
}

// New creates a FitZone provider
func New(driver automation.Driver, baseURL string, headless bool) *Provider {
	return &Provider{
		driver:       driver,
		baseURL:      baseURL,
		headless:     headless,
		pollAttempts: 3,
		pollInterval: 10 * time.Second,
	}
}

// Name identifies this provider in the store
func (p *Provider) Name() string { return "fitzone" }

// Execute reserves the event's class slot. The session is always closed,
// whichever path exits.
func (p *Provider) Execute(ctx context.Context, e store.ExecutableActionEvent) error {
	if e.Credential == nil {
		return provider.ErrNoCredentials
	}

	sess, err := p.driver.OpenSession(ctx, p.headless)
	if err != nil {
		return fmt.Errorf("%w: opening session: %v", provider.ErrLoginFailed, err)
	}
	defer sess.Close()

	if err := p.login(ctx, sess, e.Credential); err != nil {
		return err
	}

	slot, err := p.findSlot(ctx, sess, e)
	if err != nil {
		return err
	}

	return p.reserve(ctx, sess, slot)
}

func (p *Provider) login(ctx context.Context, sess automation.Session, cred *store.PlatformCredential) error {
	if err := sess.Navigate(ctx, p.baseURL+"/login"); err != nil {
		return fmt.Errorf("%w: opening login page: %v", provider.ErrLoginFailed, err)
	}

	username, err := sess.Find(ctx, selUsername)
	if err != nil {
		return fmt.Errorf("%w: locating username field: %v", provider.ErrLoginFailed, err)
	}
	password, err := sess.Find(ctx, selPassword)
	if err != nil {
		return fmt.Errorf("%w: locating password field: %v", provider.ErrLoginFailed, err)
	}
	submit, err := sess.Find(ctx, selLoginSubmit)
	if err != nil {
		return fmt.Errorf("%w: locating submit button: %v", provider.ErrLoginFailed, err)
	}

	if err := username.TypeText(ctx, cred.Username); err != nil {
		return fmt.Errorf("%w: %v", provider.ErrLoginFailed, err)
	}
	if err := password.TypeText(ctx, cred.Password); err != nil {
		return fmt.Errorf("%w: %v", provider.ErrLoginFailed, err)
	}
	if err := submit.Click(ctx); err != nil {
		return fmt.Errorf("%w: submitting login: %v", provider.ErrLoginFailed, err)
	}

	// A visible login error banner means the site rejected the
	// credentials; that is permanent until the user fixes them.
	if banner, err := sess.Find(ctx, selLoginError); err == nil {
		msg, _ := banner.ReadText(ctx)
		return fmt.Errorf("%w: %s", provider.ErrInvalidCredentials, msg)
	}

	if _, err := sess.Find(ctx, selAccountMenu); err != nil {
		return fmt.Errorf("%w: no account menu after login", provider.ErrLoginFailed)
	}
	return nil
}

// findSlot opens the schedule for the event's day and polls a bounded
// number of times for the class slot.
func (p *Provider) findSlot(ctx context.Context, sess automation.Session, e store.ExecutableActionEvent) (automation.Element, error) {
	scheduleURL := fmt.Sprintf("%s/schedule?date=%s", p.baseURL, e.ScheduledAt.Format("2006-01-02"))
	if err := sess.Navigate(ctx, scheduleURL); err != nil {
		return nil, fmt.Errorf("opening schedule: %w", err)
	}

	selSlot := fmt.Sprintf(`[data-class=%q][data-time=%q]`, e.Arguments, e.ScheduledAt.Format("15:04"))

	for attempt := 0; attempt < p.pollAttempts; attempt++ {
		slot, err := sess.Find(ctx, selSlot)
		if err == nil {
			return slot, nil
		}
		if !errors.Is(err, automation.ErrElementNotFound) {
			return nil, fmt.Errorf("locating slot: %w", err)
		}

		select {
		case <-time.After(p.pollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("%w: %s at %s", provider.ErrTargetNotFound, e.Arguments, e.ScheduledAt.Format("15:04"))
}

func (p *Provider) reserve(ctx context.Context, sess automation.Session, slot automation.Element) error {
	if err := slot.Click(ctx); err != nil {
		return fmt.Errorf("%w: clicking slot: %v", provider.ErrActionFailed, err)
	}

	if _, err := sess.Find(ctx, selConfirmation); err != nil {
		return fmt.Errorf("%w: no confirmation after reserving", provider.ErrActionFailed)
	}
	return nil
}
