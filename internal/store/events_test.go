package store

import (
	"errors"
	"testing"
	"time"
)

// seedAction creates a user, provider, and action and returns their ids.
func seedAction(t *testing.T, db *DB, provider string, createBefore, deleteAfter int) (userID, providerID, actionID int64) {
	t.Helper()

	userID, err := db.CreateUser("alice")
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	providerID, err = db.CreateActionProvider(provider, "")
	if err != nil {
		t.Fatalf("creating provider: %v", err)
	}
	actionID, err = db.CreateAction(&Action{
		ProviderID:        providerID,
		Name:              "reserve class",
		CreateBeforeHours: createBefore,
		DeleteAfterHours:  deleteAfter,
	})
	if err != nil {
		t.Fatalf("creating action: %v", err)
	}
	return userID, providerID, actionID
}

func TestCreateActionEventsIgnoreConflict(t *testing.T) {
	db := OpenTest(t)
	userID, _, actionID := seedAction(t, db, "fitzone", 168, 24)

	at := time.Date(2026, 9, 7, 18, 0, 0, 0, time.UTC)
	events := []NewActionEvent{
		{UserID: userID, ActionID: actionID, ScheduledAt: at},
		{UserID: userID, ActionID: actionID, ScheduledAt: at.Add(7 * 24 * time.Hour)},
	}

	created, err := db.CreateActionEventsIgnoreConflict(events)
	if err != nil {
		t.Fatalf("creating events: %v", err)
	}
	if created != 2 {
		t.Errorf("expected 2 events created, got %d", created)
	}

	// Re-submitting the same batch must be a silent no-op, not an error
	created, err = db.CreateActionEventsIgnoreConflict(events)
	if err != nil {
		t.Fatalf("re-creating events: %v", err)
	}
	if created != 0 {
		t.Errorf("expected 0 events created on duplicate batch, got %d", created)
	}

	// A batch mixing one duplicate and one new event creates only the new one
	mixed := append(events[:1:1], NewActionEvent{
		UserID: userID, ActionID: actionID, ScheduledAt: at.Add(14 * 24 * time.Hour),
	})
	created, err = db.CreateActionEventsIgnoreConflict(mixed)
	if err != nil {
		t.Fatalf("creating mixed batch: %v", err)
	}
	if created != 1 {
		t.Errorf("expected 1 event created from mixed batch, got %d", created)
	}
}

func TestExecutableActionEvents(t *testing.T) {
	db := OpenTest(t)
	userID, providerID, actionID := seedAction(t, db, "fitzone", 168, 24)

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	inWindow := now.Add(24 * time.Hour)
	outOfWindow := now.Add(14 * 24 * time.Hour)

	_, err := db.CreateActionEventsIgnoreConflict([]NewActionEvent{
		{UserID: userID, ActionID: actionID, ScheduledAt: inWindow, Arguments: "wod"},
		{UserID: userID, ActionID: actionID, ScheduledAt: outOfWindow},
	})
	if err != nil {
		t.Fatalf("creating events: %v", err)
	}

	events, err := db.ExecutableActionEvents("fitzone", now, now.Add(7*24*time.Hour))
	if err != nil {
		t.Fatalf("fetching executable events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 executable event, got %d", len(events))
	}

	e := events[0]
	if !e.ScheduledAt.Equal(inWindow) {
		t.Errorf("expected scheduled at %v, got %v", inWindow, e.ScheduledAt)
	}
	if e.Arguments != "wod" {
		t.Errorf("expected arguments %q, got %q", "wod", e.Arguments)
	}
	if e.Credential != nil {
		t.Errorf("expected nil credential when none stored, got %+v", e.Credential)
	}

	// Store a credential and it shows up on the projection
	err = db.SavePlatformCredential(&PlatformCredential{
		UserID: userID, ProviderID: providerID, Username: "alice", Password: "secret",
	})
	if err != nil {
		t.Fatalf("saving credential: %v", err)
	}

	events, err = db.ExecutableActionEvents("fitzone", now, now.Add(7*24*time.Hour))
	if err != nil {
		t.Fatalf("re-fetching executable events: %v", err)
	}
	if events[0].Credential == nil || events[0].Credential.Username != "alice" {
		t.Errorf("expected credential for alice, got %+v", events[0].Credential)
	}

	// Disabled events are no longer fetched
	if _, err := db.DisableActionEvents([]int64{e.EventID}); err != nil {
		t.Fatalf("disabling event: %v", err)
	}
	events, err = db.ExecutableActionEvents("fitzone", now, now.Add(7*24*time.Hour))
	if err != nil {
		t.Fatalf("fetching after disable: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no executable events after disable, got %d", len(events))
	}
}

func TestDeletableAndHardDelete(t *testing.T) {
	db := OpenTest(t)
	userID, _, actionID := seedAction(t, db, "fitzone", 168, 24)

	at := time.Date(2026, 8, 1, 18, 0, 0, 0, time.UTC)
	_, err := db.CreateActionEventsIgnoreConflict([]NewActionEvent{
		{UserID: userID, ActionID: actionID, ScheduledAt: at},
	})
	if err != nil {
		t.Fatalf("creating event: %v", err)
	}

	// Nothing deletable before soft delete
	deletable, err := db.DeletableActionEvents()
	if err != nil {
		t.Fatalf("fetching deletable: %v", err)
	}
	if len(deletable) != 0 {
		t.Fatalf("expected no deletable events, got %d", len(deletable))
	}

	events, err := db.ExecutableActionEvents("fitzone", at.Add(-time.Hour), at.Add(time.Hour))
	if err != nil {
		t.Fatalf("fetching event: %v", err)
	}
	eventID := events[0].EventID

	if _, err := db.SoftDeleteActionEvents([]int64{eventID}); err != nil {
		t.Fatalf("soft deleting: %v", err)
	}

	deletable, err = db.DeletableActionEvents()
	if err != nil {
		t.Fatalf("fetching deletable after soft delete: %v", err)
	}
	if len(deletable) != 1 {
		t.Fatalf("expected 1 deletable event, got %d", len(deletable))
	}
	if deletable[0].DeleteAfter != 24*time.Hour {
		t.Errorf("expected 24h retention, got %v", deletable[0].DeleteAfter)
	}

	n, err := db.HardDeleteActionEvents([]int64{eventID})
	if err != nil {
		t.Fatalf("hard deleting: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 row deleted, got %d", n)
	}

	if _, err := db.GetActionEvent(eventID); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound after hard delete, got %v", err)
	}

	// Deleting an already-deleted id is a no-op
	n, err = db.HardDeleteActionEvents([]int64{eventID})
	if err != nil {
		t.Fatalf("re-deleting: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 rows deleted on repeat, got %d", n)
	}
}

func TestCreatableActionRules(t *testing.T) {
	db := OpenTest(t)
	userID, _, actionID := seedAction(t, db, "fitzone", 168, 24)

	enabled := &ActionRule{UserID: userID, ActionID: actionID, Weekday: 0, TimeOfDay: "18:00", Enabled: true}
	disabled := &ActionRule{UserID: userID, ActionID: actionID, Weekday: 2, TimeOfDay: "07:00", Enabled: false}

	if _, err := db.CreateActionRule(enabled); err != nil {
		t.Fatalf("creating rule: %v", err)
	}
	disabledID, err := db.CreateActionRule(disabled)
	if err != nil {
		t.Fatalf("creating disabled rule: %v", err)
	}
	deletedID, err := db.CreateActionRule(&ActionRule{
		UserID: userID, ActionID: actionID, Weekday: 4, TimeOfDay: "12:00", Enabled: true,
	})
	if err != nil {
		t.Fatalf("creating rule to delete: %v", err)
	}
	if err := db.SoftDeleteActionRule(deletedID); err != nil {
		t.Fatalf("soft deleting rule: %v", err)
	}

	creatable, err := db.CreatableActionRules()
	if err != nil {
		t.Fatalf("fetching creatable rules: %v", err)
	}
	if len(creatable) != 1 {
		t.Fatalf("expected only the enabled rule, got %d rules", len(creatable))
	}
	c := creatable[0]
	if c.Weekday != 0 || c.TimeOfDay != "18:00" {
		t.Errorf("unexpected rule projection: %+v", c)
	}
	if c.CreateBefore != 168*time.Hour {
		t.Errorf("expected 168h lead time, got %v", c.CreateBefore)
	}

	_ = disabledID
}
