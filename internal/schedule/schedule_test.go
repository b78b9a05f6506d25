package schedule

import (
	"testing"
	"time"

	"fitagent/internal/store"
)

// Monday 2026-09-07 is a fixed reference; its 18:00 occurrence is used
// throughout these tests.
var monday18 = time.Date(2026, 9, 7, 18, 0, 0, 0, time.UTC)

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		weekday   int
		timeOfDay string
		want      time.Time
	}{
		{
			name:      "later this week",
			now:       time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC), // Saturday
			weekday:   0,                                            // Monday
			timeOfDay: "18:00",
			want:      monday18,
		},
		{
			name:      "same day, time not yet passed",
			now:       time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC), // Monday morning
			weekday:   0,
			timeOfDay: "18:00",
			want:      monday18,
		},
		{
			name:      "same day, exactly at the occurrence",
			now:       monday18,
			weekday:   0,
			timeOfDay: "18:00",
			want:      monday18,
		},
		{
			name:      "same day, time already passed rolls a week",
			now:       time.Date(2026, 9, 7, 19, 0, 0, 0, time.UTC),
			weekday:   0,
			timeOfDay: "18:00",
			want:      monday18.AddDate(0, 0, 7),
		},
		{
			name:      "wraps over the weekend",
			now:       time.Date(2026, 9, 8, 9, 0, 0, 0, time.UTC), // Tuesday
			weekday:   0,
			timeOfDay: "18:00",
			want:      monday18.AddDate(0, 0, 7),
		},
		{
			name:      "sunday rule",
			now:       time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC), // Monday
			weekday:   6,
			timeOfDay: "08:30",
			want:      time.Date(2026, 9, 13, 8, 30, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextOccurrence(tt.now, tt.weekday, tt.timeOfDay)
			if err != nil {
				t.Fatalf("NextOccurrence: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextOccurrenceInvalid(t *testing.T) {
	if _, err := NextOccurrence(monday18, 7, "18:00"); err == nil {
		t.Error("expected error for weekday out of range")
	}
	if _, err := NextOccurrence(monday18, 0, "25:99"); err == nil {
		t.Error("expected error for malformed time of day")
	}
}

func TestExpandLeadTimeBoundary(t *testing.T) {
	rule := store.CreatableActionRule{
		RuleID:       1,
		UserID:       1,
		ActionID:     1,
		Weekday:      0,
		TimeOfDay:    "18:00",
		CreateBefore: 168 * time.Hour, // one week
	}
	boundary := monday18.Add(-168 * time.Hour)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"just before the window opens", boundary.Add(-time.Minute), 0},
		{"exactly at the boundary", boundary, 1},
		{"just after the window opens", boundary.Add(time.Minute), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := Expand(tt.now, []store.CreatableActionRule{rule})
			if err != nil {
				t.Fatalf("Expand: %v", err)
			}
			if len(events) != tt.want {
				t.Fatalf("expected %d events, got %d", tt.want, len(events))
			}
			if tt.want == 1 && !events[0].ScheduledAt.Equal(monday18) {
				t.Errorf("expected event at %v, got %v", monday18, events[0].ScheduledAt)
			}
		})
	}
}

func TestExpandWalksMultipleWeeks(t *testing.T) {
	// A three-week lead time with now on the first occurrence covers the
	// occurrence itself plus the next three Mondays.
	rule := store.CreatableActionRule{
		UserID:       1,
		ActionID:     1,
		Weekday:      0,
		TimeOfDay:    "18:00",
		CreateBefore: 3 * 168 * time.Hour,
	}

	events, err := Expand(monday18, []store.CreatableActionRule{rule})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	for i, e := range events {
		want := monday18.AddDate(0, 0, 7*i)
		if !e.ScheduledAt.Equal(want) {
			t.Errorf("event %d: expected %v, got %v", i, want, e.ScheduledAt)
		}
	}
}

func TestExpandRulesIdempotent(t *testing.T) {
	db := store.OpenTest(t)
	svc := NewService(db)

	seedRule(t, db, 0, "18:00", 168)

	// now = Monday 10:00 one week before a Monday 18:00 occurrence
	now := monday18.AddDate(0, 0, -7).Add(-8 * time.Hour)

	created, err := svc.ExpandRules(now)
	if err != nil {
		t.Fatalf("first expansion: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected exactly 1 event created, got %d", created)
	}

	// Running expansion again immediately creates zero additional events
	created, err = svc.ExpandRules(now)
	if err != nil {
		t.Fatalf("second expansion: %v", err)
	}
	if created != 0 {
		t.Errorf("expected 0 events on re-run, got %d", created)
	}

	events, err := db.UpcomingActionEvents(now, 14*24*time.Hour)
	if err != nil {
		t.Fatalf("listing events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(events))
	}
	if !events[0].ScheduledAt.Equal(monday18) {
		t.Errorf("expected event at %v, got %v", monday18, events[0].ScheduledAt)
	}
}

func TestGarbageCollectBoundary(t *testing.T) {
	db := store.OpenTest(t)
	svc := NewService(db)

	userID, _, actionID := seedRule(t, db, 0, "18:00", 168)

	past := monday18.AddDate(0, 0, -28)
	_, err := db.CreateActionEventsIgnoreConflict([]store.NewActionEvent{
		{UserID: userID, ActionID: actionID, ScheduledAt: past},
	})
	if err != nil {
		t.Fatalf("creating event: %v", err)
	}
	events, err := db.ExecutableActionEvents("fitzone", past.Add(-time.Hour), past.Add(time.Hour))
	if err != nil {
		t.Fatalf("fetching event: %v", err)
	}
	eventID := events[0].EventID

	// Not yet soft-deleted: GC never touches it no matter how old
	deleted, err := svc.GarbageCollect(past.Add(1000 * time.Hour))
	if err != nil {
		t.Fatalf("gc: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("gc touched a pending event")
	}

	if _, err := db.SoftDeleteActionEvents([]int64{eventID}); err != nil {
		t.Fatalf("soft deleting: %v", err)
	}

	// delete_after is 24h (seedRule); just before the boundary nothing happens
	deleted, err = svc.GarbageCollect(past.Add(24*time.Hour - time.Minute))
	if err != nil {
		t.Fatalf("gc before boundary: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected 0 deletions before the retention boundary, got %d", deleted)
	}

	// At the boundary the event is purged
	deleted, err = svc.GarbageCollect(past.Add(24 * time.Hour))
	if err != nil {
		t.Fatalf("gc at boundary: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deletion at the retention boundary, got %d", deleted)
	}

	// Re-running is a no-op
	deleted, err = svc.GarbageCollect(past.Add(48 * time.Hour))
	if err != nil {
		t.Fatalf("gc re-run: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected 0 deletions on re-run, got %d", deleted)
	}
}

// seedRule creates a user, the fitzone provider, an action, and one
// enabled rule. Returns the user and action ids.
func seedRule(t *testing.T, db *store.DB, weekday int, timeOfDay string, createBefore int) (userID, ruleID, actionID int64) {
	t.Helper()

	userID, err := db.CreateUser("alice")
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	providerID, err := db.CreateActionProvider("fitzone", "")
	if err != nil {
		t.Fatalf("creating provider: %v", err)
	}
	actionID, err = db.CreateAction(&store.Action{
		ProviderID:        providerID,
		Name:              "reserve class",
		CreateBeforeHours: createBefore,
		DeleteAfterHours:  24,
	})
	if err != nil {
		t.Fatalf("creating action: %v", err)
	}
	ruleID, err = db.CreateActionRule(&store.ActionRule{
		UserID:    userID,
		ActionID:  actionID,
		Weekday:   weekday,
		TimeOfDay: timeOfDay,
		Enabled:   true,
	})
	if err != nil {
		t.Fatalf("creating rule: %v", err)
	}
	return userID, ruleID, actionID
}
