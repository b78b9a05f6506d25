package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEventNotFound is returned when an action event doesn't exist
var ErrEventNotFound = errors.New("action event not found")

// CreateActionEventsIgnoreConflict inserts a batch of events in one
// transaction. An event whose (user, action, scheduled_at) tuple already
// exists is silently skipped; it never fails the batch. Returns the number
// of events actually inserted.
func (db *DB) CreateActionEventsIgnoreConflict(events []NewActionEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO action_events (user_id, action_id, scheduled_at, arguments, enabled, deleted)
		VALUES (?, ?, ?, ?, 1, 0)
		ON CONFLICT (user_id, action_id, scheduled_at) DO NOTHING
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	created := 0
	for _, e := range events {
		result, err := stmt.Exec(e.UserID, e.ActionID, e.ScheduledAt.UTC().Format(time.RFC3339), e.Arguments)
		if err != nil {
			return 0, fmt.Errorf("inserting event at %s: %w", e.ScheduledAt, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return 0, err
		}
		created += int(rows)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return created, nil
}

// GetActionEvent retrieves an event by ID
func (db *DB) GetActionEvent(id int64) (*ActionEvent, error) {
	row := db.QueryRow(`
		SELECT id, user_id, action_id, scheduled_at, arguments, enabled, deleted, updated_at
		FROM action_events
		WHERE id = ?
	`, id)

	var e ActionEvent
	var args sql.NullString
	var scheduledAt, updatedAt string
	var enabled, deleted int

	err := row.Scan(&e.ID, &e.UserID, &e.ActionID, &scheduledAt, &args, &enabled, &deleted, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}

	e.Arguments = args.String
	e.Enabled = enabled == 1
	e.Deleted = deleted == 1
	e.ScheduledAt, err = time.Parse(time.RFC3339, scheduledAt)
	if err != nil {
		return nil, fmt.Errorf("parsing scheduled_at: %w", err)
	}
	e.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return &e, nil
}

// ExecutableActionEvents returns one provider's due events: enabled,
// not soft-deleted, scheduled within [start, end], each joined with the
// owning user's platform credential if one is configured.
func (db *DB) ExecutableActionEvents(providerName string, start, end time.Time) ([]ExecutableActionEvent, error) {
	rows, err := db.Query(`
		SELECT e.id, e.user_id, e.action_id, a.name, p.name, e.scheduled_at, e.arguments,
			c.username, c.password, c.provider_id
		FROM action_events e
		JOIN actions a ON a.id = e.action_id
		JOIN action_providers p ON p.id = a.provider_id
		LEFT JOIN platform_credentials c
			ON c.user_id = e.user_id AND c.provider_id = a.provider_id
		WHERE p.name = ?
			AND e.enabled = 1 AND e.deleted = 0
			AND e.scheduled_at >= ? AND e.scheduled_at <= ?
		ORDER BY e.scheduled_at
	`, providerName, start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []ExecutableActionEvent
	for rows.Next() {
		var e ExecutableActionEvent
		var scheduledAt string
		var args, username, password sql.NullString
		var credProviderID sql.NullInt64

		err := rows.Scan(&e.EventID, &e.UserID, &e.ActionID, &e.ActionName, &e.ProviderName,
			&scheduledAt, &args, &username, &password, &credProviderID)
		if err != nil {
			return nil, err
		}

		e.Arguments = args.String
		e.ScheduledAt, err = time.Parse(time.RFC3339, scheduledAt)
		if err != nil {
			return nil, fmt.Errorf("parsing scheduled_at: %w", err)
		}
		if credProviderID.Valid {
			e.Credential = &PlatformCredential{
				UserID:     e.UserID,
				ProviderID: credProviderID.Int64,
				Username:   username.String,
				Password:   password.String,
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DisableActionEvents marks the given events enabled=0 in one atomic call
// so they are never fetched again. Returns the number of rows updated.
func (db *DB) DisableActionEvents(ids []int64) (int, error) {
	return db.execOnIDs(`
		UPDATE action_events
		SET enabled = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id IN (%s)
	`, ids)
}

// SoftDeleteActionEvents marks the given events deleted, making them
// eligible for garbage collection once their retention window elapses.
func (db *DB) SoftDeleteActionEvents(ids []int64) (int, error) {
	return db.execOnIDs(`
		UPDATE action_events
		SET deleted = 1, updated_at = CURRENT_TIMESTAMP
		WHERE id IN (%s)
	`, ids)
}

// DeletableActionEvents returns the garbage collector's input: soft-deleted
// events joined with their action's retention window.
func (db *DB) DeletableActionEvents() ([]DeletableActionEvent, error) {
	rows, err := db.Query(`
		SELECT e.id, e.scheduled_at, a.delete_after_hours
		FROM action_events e
		JOIN actions a ON a.id = e.action_id
		WHERE e.deleted = 1
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deletable []DeletableActionEvent
	for rows.Next() {
		var d DeletableActionEvent
		var scheduledAt string
		var hours int
		if err := rows.Scan(&d.EventID, &scheduledAt, &hours); err != nil {
			return nil, err
		}
		d.ScheduledAt, err = time.Parse(time.RFC3339, scheduledAt)
		if err != nil {
			return nil, fmt.Errorf("parsing scheduled_at: %w", err)
		}
		d.DeleteAfter = time.Duration(hours) * time.Hour
		deletable = append(deletable, d)
	}
	return deletable, rows.Err()
}

// HardDeleteActionEvents permanently removes events in one atomic call.
// Deleting an id that no longer exists is a no-op.
func (db *DB) HardDeleteActionEvents(ids []int64) (int, error) {
	return db.execOnIDs(`DELETE FROM action_events WHERE id IN (%s)`, ids)
}

// UpcomingActionEvents returns pending events scheduled in [now, now+window],
// joined with their action and provider names, for display.
func (db *DB) UpcomingActionEvents(now time.Time, window time.Duration) ([]ExecutableActionEvent, error) {
	rows, err := db.Query(`
		SELECT e.id, e.user_id, e.action_id, a.name, p.name, e.scheduled_at, e.arguments
		FROM action_events e
		JOIN actions a ON a.id = e.action_id
		JOIN action_providers p ON p.id = a.provider_id
		WHERE e.enabled = 1 AND e.deleted = 0
			AND e.scheduled_at >= ? AND e.scheduled_at <= ?
		ORDER BY e.scheduled_at
	`, now.UTC().Format(time.RFC3339), now.Add(window).UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []ExecutableActionEvent
	for rows.Next() {
		var e ExecutableActionEvent
		var scheduledAt string
		var args sql.NullString
		err := rows.Scan(&e.EventID, &e.UserID, &e.ActionID, &e.ActionName, &e.ProviderName, &scheduledAt, &args)
		if err != nil {
			return nil, err
		}
		e.Arguments = args.String
		e.ScheduledAt, err = time.Parse(time.RFC3339, scheduledAt)
		if err != nil {
			return nil, fmt.Errorf("parsing scheduled_at: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// execOnIDs runs a statement containing one IN (%s) clause against a batch
// of ids. Dynamic SQL because the placeholder count varies.
func (db *DB) execOnIDs(query string, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	result, err := db.Exec(fmt.Sprintf(query, strings.Join(placeholders, ",")), args...)
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}
