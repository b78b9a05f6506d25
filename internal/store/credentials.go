package store

import (
	"database/sql"
	"errors"
)

// ErrNoCredential is returned when a user has no credential for a platform
var ErrNoCredential = errors.New("no platform credential stored")

// SavePlatformCredential stores or replaces a user's login for one provider
func (db *DB) SavePlatformCredential(c *PlatformCredential) error {
	_, err := db.Exec(`
		INSERT INTO platform_credentials (user_id, provider_id, username, password, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, provider_id) DO UPDATE SET
			username = excluded.username,
			password = excluded.password,
			updated_at = CURRENT_TIMESTAMP
	`, c.UserID, c.ProviderID, c.Username, c.Password)
	return err
}

// GetPlatformCredential retrieves a user's login for one provider
func (db *DB) GetPlatformCredential(userID, providerID int64) (*PlatformCredential, error) {
	row := db.QueryRow(`
		SELECT user_id, provider_id, username, password
		FROM platform_credentials
		WHERE user_id = ? AND provider_id = ?
	`, userID, providerID)

	var c PlatformCredential
	err := row.Scan(&c.UserID, &c.ProviderID, &c.Username, &c.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoCredential
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeletePlatformCredential removes a user's login for one provider
func (db *DB) DeletePlatformCredential(userID, providerID int64) error {
	_, err := db.Exec(`
		DELETE FROM platform_credentials WHERE user_id = ? AND provider_id = ?
	`, userID, providerID)
	return err
}
