package store

import (
	"database/sql"
	"errors"
)

// ErrProviderNotFound is returned when an action provider doesn't exist
var ErrProviderNotFound = errors.New("action provider not found")

// ErrActionNotFound is returned when an action doesn't exist
var ErrActionNotFound = errors.New("action not found")

// CreateUser inserts a user and returns its id
func (db *DB) CreateUser(name string) (int64, error) {
	result, err := db.Exec(`INSERT INTO users (name) VALUES (?)`, name)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// CreateActionProvider inserts a provider and returns its id
func (db *DB) CreateActionProvider(name, description string) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO action_providers (name, description) VALUES (?, ?)
	`, name, description)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetActionProviderByName retrieves a provider by its unique name
func (db *DB) GetActionProviderByName(name string) (*ActionProvider, error) {
	row := db.QueryRow(`
		SELECT id, name, COALESCE(description, '') FROM action_providers WHERE name = ?
	`, name)

	var p ActionProvider
	err := row.Scan(&p.ID, &p.Name, &p.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProviderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateAction inserts an action and returns its id
func (db *DB) CreateAction(a *Action) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO actions (provider_id, name, description, create_before_hours, delete_after_hours)
		VALUES (?, ?, ?, ?, ?)
	`, a.ProviderID, a.Name, a.Description, a.CreateBeforeHours, a.DeleteAfterHours)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetAction retrieves an action by ID
func (db *DB) GetAction(id int64) (*Action, error) {
	row := db.QueryRow(`
		SELECT id, provider_id, name, COALESCE(description, ''), create_before_hours, delete_after_hours
		FROM actions
		WHERE id = ?
	`, id)

	var a Action
	err := row.Scan(&a.ID, &a.ProviderID, &a.Name, &a.Description, &a.CreateBeforeHours, &a.DeleteAfterHours)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
