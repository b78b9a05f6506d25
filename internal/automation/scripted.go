package automation

import (
	"context"
	"fmt"
	"sync"
)

// ScriptedDriver is an in-memory Driver for tests: a set of pages keyed
// by URL, each a map of selector to element. It records sessions so tests
// can assert every one was closed.
type ScriptedDriver struct {
	Pages map[string]Page
	// OpenErr, when set, makes OpenSession fail
	OpenErr error

	mu       sync.Mutex
	sessions []*ScriptedSession
}

// Page maps selectors to elements
type Page map[string]*ScriptedElement

// ScriptedElement is a fake page element
type ScriptedElement struct {
	Text string
	// OnClick, when set, runs on every click; booking flows use it to
	// mutate the page set (e.g. reveal a confirmation banner).
	OnClick func()
	// HiddenFinds makes the element miss that many Find calls before it
	// appears, for exercising poll loops.
	HiddenFinds int

	Clicks int
	Typed  []string
}

// OpenSession opens a scripted session
func (d *ScriptedDriver) OpenSession(ctx context.Context, headless bool) (Session, error) {
	if d.OpenErr != nil {
		return nil, d.OpenErr
	}
	s := &ScriptedSession{driver: d}
	d.mu.Lock()
	d.sessions = append(d.sessions, s)
	d.mu.Unlock()
	return s, nil
}

// AllClosed reports whether every opened session was closed
func (d *ScriptedDriver) AllClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.sessions {
		if !s.closed {
			return false
		}
	}
	return true
}

// ScriptedSession is a fake Session over the driver's page set
type ScriptedSession struct {
	driver  *ScriptedDriver
	current string
	closed  bool
}

func (s *ScriptedSession) Navigate(ctx context.Context, url string) error {
	if _, ok := s.driver.Pages[url]; !ok {
		return fmt.Errorf("no page scripted for %s", url)
	}
	s.current = url
	return nil
}

func (s *ScriptedSession) Find(ctx context.Context, selector string) (Element, error) {
	page, ok := s.driver.Pages[s.current]
	if !ok {
		return nil, fmt.Errorf("no current page")
	}
	el, ok := page[selector]
	if !ok {
		return nil, ErrElementNotFound
	}
	if el.HiddenFinds > 0 {
		el.HiddenFinds--
		return nil, ErrElementNotFound
	}
	return el, nil
}

func (s *ScriptedSession) Close() error {
	s.closed = true
	return nil
}

func (e *ScriptedElement) Click(ctx context.Context) error {
	e.Clicks++
	if e.OnClick != nil {
		e.OnClick()
	}
	return nil
}

func (e *ScriptedElement) TypeText(ctx context.Context, text string) error {
	e.Typed = append(e.Typed, text)
	return nil
}

func (e *ScriptedElement) ReadText(ctx context.Context) (string, error) {
	return e.Text, nil
}
