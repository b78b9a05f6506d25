package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNoAuth is returned when no tracker authentication is stored for a user
var ErrNoAuth = errors.New("no tracker authentication stored")

// GetTrackerAuth retrieves a user's stored tracker tokens
func (db *DB) GetTrackerAuth(userID int64) (*TrackerAuth, error) {
	row := db.QueryRow(`
		SELECT user_id, athlete_id, access_token, refresh_token, expires_at
		FROM tracker_auth
		WHERE user_id = ?
	`, userID)

	var a TrackerAuth
	var expiresAt int64
	err := row.Scan(&a.UserID, &a.AthleteID, &a.AccessToken, &a.RefreshToken, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoAuth
	}
	if err != nil {
		return nil, err
	}
	a.ExpiresAt = time.Unix(expiresAt, 0)
	return &a, nil
}

// SaveTrackerAuth stores or updates a user's tracker tokens
func (db *DB) SaveTrackerAuth(a *TrackerAuth) error {
	_, err := db.Exec(`
		INSERT INTO tracker_auth (user_id, athlete_id, access_token, refresh_token, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP
	`, a.UserID, a.AthleteID, a.AccessToken, a.RefreshToken, a.ExpiresAt.Unix())
	return err
}

// UpdateTrackerTokens updates just the access and refresh tokens
func (db *DB) UpdateTrackerTokens(userID int64, accessToken, refreshToken string, expiresAt time.Time) error {
	result, err := db.Exec(`
		UPDATE tracker_auth
		SET access_token = ?, refresh_token = ?, expires_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?
	`, accessToken, refreshToken, expiresAt.Unix(), userID)
	if err != nil {
		return err
	}
	return requireRow(result, ErrNoAuth)
}
