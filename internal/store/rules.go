package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrRuleNotFound is returned when an action rule doesn't exist
var ErrRuleNotFound = errors.New("action rule not found")

// CreateActionRule inserts a new rule and returns its id
func (db *DB) CreateActionRule(r *ActionRule) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO action_rules (user_id, action_id, weekday, time_of_day, arguments, enabled, deleted)
		VALUES (?, ?, ?, ?, ?, ?, 0)
	`, r.UserID, r.ActionID, r.Weekday, r.TimeOfDay, r.Arguments, boolToInt(r.Enabled))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetActionRule retrieves a rule by ID
func (db *DB) GetActionRule(id int64) (*ActionRule, error) {
	row := db.QueryRow(`
		SELECT id, user_id, action_id, weekday, time_of_day, arguments, enabled, deleted, updated_at
		FROM action_rules
		WHERE id = ?
	`, id)
	return scanRule(row)
}

// ListActionRules returns a user's non-deleted rules
func (db *DB) ListActionRules(userID int64) ([]ActionRule, error) {
	rows, err := db.Query(`
		SELECT id, user_id, action_id, weekday, time_of_day, arguments, enabled, deleted, updated_at
		FROM action_rules
		WHERE user_id = ? AND deleted = 0
		ORDER BY weekday, time_of_day
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []ActionRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *r)
	}
	return rules, rows.Err()
}

// UpdateActionRule updates a rule's schedule, arguments and enabled flag
func (db *DB) UpdateActionRule(r *ActionRule) error {
	result, err := db.Exec(`
		UPDATE action_rules
		SET weekday = ?, time_of_day = ?, arguments = ?, enabled = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted = 0
	`, r.Weekday, r.TimeOfDay, r.Arguments, boolToInt(r.Enabled), r.ID)
	if err != nil {
		return err
	}
	return requireRow(result, ErrRuleNotFound)
}

// SoftDeleteActionRule marks a rule deleted; it will no longer expand
func (db *DB) SoftDeleteActionRule(id int64) error {
	result, err := db.Exec(`
		UPDATE action_rules
		SET deleted = 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, id)
	if err != nil {
		return err
	}
	return requireRow(result, ErrRuleNotFound)
}

// CreatableActionRules returns the scheduler's expansion input: enabled,
// non-deleted rules joined with their action's lead time.
func (db *DB) CreatableActionRules() ([]CreatableActionRule, error) {
	rows, err := db.Query(`
		SELECT r.id, r.user_id, r.action_id, r.weekday, r.time_of_day, r.arguments,
			a.create_before_hours
		FROM action_rules r
		JOIN actions a ON a.id = r.action_id
		WHERE r.enabled = 1 AND r.deleted = 0
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var creatable []CreatableActionRule
	for rows.Next() {
		var c CreatableActionRule
		var hours int
		var args sql.NullString
		if err := rows.Scan(&c.RuleID, &c.UserID, &c.ActionID, &c.Weekday, &c.TimeOfDay, &args, &hours); err != nil {
			return nil, err
		}
		c.Arguments = args.String
		c.CreateBefore = time.Duration(hours) * time.Hour
		creatable = append(creatable, c)
	}
	return creatable, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*ActionRule, error) {
	var r ActionRule
	var args sql.NullString
	var enabled, deleted int
	var updatedAt string

	err := row.Scan(&r.ID, &r.UserID, &r.ActionID, &r.Weekday, &r.TimeOfDay, &args, &enabled, &deleted, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, err
	}

	r.Arguments = args.String
	r.Enabled = enabled == 1
	r.Deleted = deleted == 1
	r.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return &r, nil
}

func requireRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
