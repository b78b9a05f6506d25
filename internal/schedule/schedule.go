// Package schedule expands recurring action rules into concrete dated
// action events ahead of their lead time, and purges soft-deleted events
// whose retention window has elapsed. Both jobs are idempotent: event
// creation ignores conflicts and deletion of a missing id is a no-op, so
// re-running after a failure is always safe.
package schedule

import (
	"fmt"
	"time"

	"fitagent/internal/store"
)

// Service runs the expansion and garbage collection jobs against the store.
type Service struct {
	db *store.DB
}

// NewService creates a scheduler service
func NewService(db *store.DB) *Service {
	return &Service{db: db}
}

// ExpandRules expands all enabled rules into events whose lead-time window
// has opened. Returns the number of events actually created (duplicates
// from earlier runs are silently skipped).
func (s *Service) ExpandRules(now time.Time) (int, error) {
	rules, err := s.db.CreatableActionRules()
	if err != nil {
		return 0, fmt.Errorf("fetching creatable rules: %w", err)
	}

	events, err := Expand(now, rules)
	if err != nil {
		return 0, err
	}

	created, err := s.db.CreateActionEventsIgnoreConflict(events)
	if err != nil {
		return 0, fmt.Errorf("creating events: %w", err)
	}
	return created, nil
}

// GarbageCollect hard-deletes soft-deleted events whose retention window
// has elapsed. Returns the number of events purged.
func (s *Service) GarbageCollect(now time.Time) (int, error) {
	deletable, err := s.db.DeletableActionEvents()
	if err != nil {
		return 0, fmt.Errorf("fetching deletable events: %w", err)
	}

	ids := CollectExpired(now, deletable)
	deleted, err := s.db.HardDeleteActionEvents(ids)
	if err != nil {
		return 0, fmt.Errorf("deleting events: %w", err)
	}
	return deleted, nil
}

// Expand computes the event creation requests for a set of rules.
// For each rule it walks occurrences week by week starting from the next
// one at or after now, emitting every occurrence d with now >= d - lead
// time. Occurrences strictly increase, so the walk stops at the first one
// outside the window.
func Expand(now time.Time, rules []store.CreatableActionRule) ([]store.NewActionEvent, error) {
	var events []store.NewActionEvent
	for _, r := range rules {
		first, err := NextOccurrence(now, r.Weekday, r.TimeOfDay)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", r.RuleID, err)
		}

		for d := first; !now.Before(d.Add(-r.CreateBefore)); d = d.AddDate(0, 0, 7) {
			events = append(events, store.NewActionEvent{
				UserID:      r.UserID,
				ActionID:    r.ActionID,
				ScheduledAt: d,
				Arguments:   r.Arguments,
			})
		}
	}
	return events, nil
}

// NextOccurrence returns the first occurrence of the given weekday and
// time of day strictly at or after now, wrapping 0-6 days ahead. A
// same-day occurrence whose time has already passed rolls to next week.
// Weekday is ISO-style (0 = Monday), timeOfDay is "15:04" in UTC.
func NextOccurrence(now time.Time, weekday int, timeOfDay string) (time.Time, error) {
	if weekday < 0 || weekday > 6 {
		return time.Time{}, fmt.Errorf("weekday %d out of range", weekday)
	}
	tod, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time of day %q: %w", timeOfDay, err)
	}

	now = now.UTC()
	daysAhead := (weekday - isoWeekday(now) + 7) % 7
	day := now.AddDate(0, 0, daysAhead)
	occurrence := time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, time.UTC)

	if occurrence.Before(now) {
		occurrence = occurrence.AddDate(0, 0, 7)
	}
	return occurrence, nil
}

// CollectExpired returns the ids of soft-deleted events whose retention
// window has elapsed: now >= scheduled time + delete_after.
func CollectExpired(now time.Time, deletable []store.DeletableActionEvent) []int64 {
	var ids []int64
	for _, d := range deletable {
		if !now.Before(d.ScheduledAt.Add(d.DeleteAfter)) {
			ids = append(ids, d.EventID)
		}
	}
	return ids
}

// isoWeekday maps Go's Sunday-based weekday to 0 = Monday ... 6 = Sunday
func isoWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
