package runner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fitagent/internal/provider"
	"fitagent/internal/store"
)

// fakeProvider resolves each event's outcome from its arguments string.
type fakeProvider struct {
	mu       sync.Mutex
	calls    []int64
	outcomes map[string]error
}

func (p *fakeProvider) Name() string { return "fitzone" }

func (p *fakeProvider) Execute(ctx context.Context, e store.ExecutableActionEvent) error {
	p.mu.Lock()
	p.calls = append(p.calls, e.EventID)
	p.mu.Unlock()
	return p.outcomes[e.Arguments]
}

func (p *fakeProvider) attempted() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

var testNow = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

// seedEvents creates one pending event per arguments value, all scheduled
// inside the default fetch window.
func seedEvents(t *testing.T, db *store.DB, args ...string) map[string]int64 {
	t.Helper()

	userID, err := db.CreateUser("alice")
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	providerID, err := db.CreateActionProvider("fitzone", "")
	if err != nil {
		t.Fatalf("creating provider: %v", err)
	}
	actionID, err := db.CreateAction(&store.Action{
		ProviderID:        providerID,
		Name:              "reserve class",
		CreateBeforeHours: 168,
		DeleteAfterHours:  24,
	})
	if err != nil {
		t.Fatalf("creating action: %v", err)
	}

	var batch []store.NewActionEvent
	for i, a := range args {
		batch = append(batch, store.NewActionEvent{
			UserID:      userID,
			ActionID:    actionID,
			ScheduledAt: testNow.Add(time.Duration(i+1) * time.Hour),
			Arguments:   a,
		})
	}
	if _, err := db.CreateActionEventsIgnoreConflict(batch); err != nil {
		t.Fatalf("creating events: %v", err)
	}

	events, err := db.ExecutableActionEvents("fitzone", testNow, testNow.Add(7*24*time.Hour))
	if err != nil {
		t.Fatalf("fetching events: %v", err)
	}
	ids := make(map[string]int64, len(events))
	for _, e := range events {
		ids[e.Arguments] = e.EventID
	}
	return ids
}

func eventEnabled(t *testing.T, db *store.DB, id int64) bool {
	t.Helper()
	e, err := db.GetActionEvent(id)
	if err != nil {
		t.Fatalf("getting event %d: %v", id, err)
	}
	return e.Enabled
}

func TestRunOutcomeMapping(t *testing.T) {
	db := store.OpenTest(t)
	ids := seedEvents(t, db, "ok", "bad-creds", "no-creds", "captcha", "slot-gone", "no-confirm")

	prov := &fakeProvider{outcomes: map[string]error{
		"ok":         nil,
		"bad-creds":  provider.ErrInvalidCredentials,
		"no-creds":   provider.ErrNoCredentials,
		"captcha":    provider.ErrLoginFailed,
		"slot-gone":  provider.ErrTargetNotFound,
		"no-confirm": provider.ErrActionFailed,
	}}

	summary, err := New(db, prov, Config{}).Run(context.Background(), testNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Fetched != 6 {
		t.Errorf("expected 6 fetched, got %d", summary.Fetched)
	}
	if summary.Succeeded != 1 {
		t.Errorf("expected 1 success, got %d", summary.Succeeded)
	}
	if summary.Disabled != 3 { // success + invalid creds + no creds
		t.Errorf("expected 3 disabled, got %d", summary.Disabled)
	}
	if summary.Pending != 3 {
		t.Errorf("expected 3 pending, got %d", summary.Pending)
	}

	// Every event is in exactly one of the two states
	wantDisabled := map[string]bool{
		"ok": true, "bad-creds": true, "no-creds": true,
		"captcha": false, "slot-gone": false, "no-confirm": false,
	}
	for args, disabled := range wantDisabled {
		if got := !eventEnabled(t, db, ids[args]); got != disabled {
			t.Errorf("event %q: disabled = %v, want %v", args, got, disabled)
		}
	}
}

func TestRunBatchIsolation(t *testing.T) {
	// One event failing with an arbitrary error must not stop the rest of
	// the batch from being attempted and reconciled.
	db := store.OpenTest(t)
	ids := seedEvents(t, db, "boom", "ok-1", "ok-2")

	prov := &fakeProvider{outcomes: map[string]error{
		"boom": errors.New("webdriver session crashed"),
		"ok-1": nil,
		"ok-2": nil,
	}}

	summary, err := New(db, prov, Config{}).Run(context.Background(), testNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if prov.attempted() != 3 {
		t.Errorf("expected all 3 events attempted, got %d", prov.attempted())
	}
	if summary.Succeeded != 2 || summary.Pending != 1 {
		t.Errorf("expected 2 successes and 1 pending, got %+v", summary)
	}

	// The unknown error is treated as transient: retried next run
	if !eventEnabled(t, db, ids["boom"]) {
		t.Error("event with unknown error must stay pending")
	}

	// Re-running attempts only the still-pending event
	summary, err = New(db, prov, Config{}).Run(context.Background(), testNow)
	if err != nil {
		t.Fatalf("re-run: %v", err)
	}
	if summary.Fetched != 1 {
		t.Errorf("expected only the pending event fetched on re-run, got %d", summary.Fetched)
	}
}

func TestRunParallel(t *testing.T) {
	db := store.OpenTest(t)
	seedEvents(t, db, "a", "b", "c", "d", "e")

	prov := &fakeProvider{outcomes: map[string]error{}} // all succeed

	summary, err := New(db, prov, Config{Parallel: 4}).Run(context.Background(), testNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Succeeded != 5 || summary.Disabled != 5 {
		t.Errorf("expected all 5 events disabled after success, got %+v", summary)
	}
}

func TestRunEmptyWindow(t *testing.T) {
	db := store.OpenTest(t)
	if _, err := db.CreateActionProvider("fitzone", ""); err != nil {
		t.Fatalf("creating provider: %v", err)
	}

	prov := &fakeProvider{}
	summary, err := New(db, prov, Config{}).Run(context.Background(), testNow)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Fetched != 0 || prov.attempted() != 0 {
		t.Errorf("expected nothing fetched or attempted, got %+v", summary)
	}
}
