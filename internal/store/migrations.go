package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// One row per external integration (booking site or tracker API)
		`CREATE TABLE IF NOT EXISTS action_providers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			description TEXT
		)`,

		// A bookable capability offered by one provider
		`CREATE TABLE IF NOT EXISTS actions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			provider_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			create_before_hours INTEGER NOT NULL,
			delete_after_hours INTEGER NOT NULL,
			FOREIGN KEY (provider_id) REFERENCES action_providers(id)
		)`,

		// Recurring weekly booking intents
		`CREATE TABLE IF NOT EXISTS action_rules (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			action_id INTEGER NOT NULL,
			weekday INTEGER NOT NULL CHECK (weekday BETWEEN 0 AND 6),
			time_of_day TEXT NOT NULL,
			arguments TEXT,
			enabled INTEGER NOT NULL DEFAULT 1,
			deleted INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (action_id) REFERENCES actions(id)
		)`,

		// Concrete dated occurrences expanded from rules.
		// The uniqueness constraint is what makes expansion idempotent.
		`CREATE TABLE IF NOT EXISTS action_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			action_id INTEGER NOT NULL,
			scheduled_at TEXT NOT NULL,
			arguments TEXT,
			enabled INTEGER NOT NULL DEFAULT 1,
			deleted INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, action_id, scheduled_at),
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (action_id) REFERENCES actions(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_action_events_scheduled ON action_events(scheduled_at)`,
		`CREATE INDEX IF NOT EXISTS idx_action_events_state ON action_events(enabled, deleted)`,

		// Login credentials per user per provider platform
		`CREATE TABLE IF NOT EXISTS platform_credentials (
			user_id INTEGER NOT NULL,
			provider_id INTEGER NOT NULL,
			username TEXT NOT NULL,
			password TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, provider_id),
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (provider_id) REFERENCES action_providers(id)
		)`,

		// OAuth tokens for the tracker platform (one row per user)
		`CREATE TABLE IF NOT EXISTS tracker_auth (
			user_id INTEGER PRIMARY KEY,
			athlete_id INTEGER NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,

		// Workout summaries pulled from the tracker platform
		`CREATE TABLE IF NOT EXISTS workouts (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			sport TEXT NOT NULL,
			started_at TEXT NOT NULL,
			distance REAL NOT NULL,
			moving_time INTEGER NOT NULL,
			elapsed_time INTEGER NOT NULL,
			elevation_gain REAL,
			route_id INTEGER,
			points_synced INTEGER DEFAULT 0,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (route_id) REFERENCES routes(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_workouts_user ON workouts(user_id, started_at)`,

		// Per-second GPS samples for a workout
		`CREATE TABLE IF NOT EXISTS workout_points (
			workout_id INTEGER NOT NULL,
			time_offset INTEGER NOT NULL,
			lat REAL,
			lng REAL,
			altitude REAL,
			distance REAL,
			PRIMARY KEY (workout_id, time_offset),
			FOREIGN KEY (workout_id) REFERENCES workouts(id) ON DELETE CASCADE
		)`,

		// Deduplicated named tracks shared by workouts on the same path
		`CREATE TABLE IF NOT EXISTS routes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			distance REAL NOT NULL,
			ascent REAL NOT NULL,
			descent REAL NOT NULL,
			deleted INTEGER NOT NULL DEFAULT 0,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,

		`CREATE TABLE IF NOT EXISTS route_points (
			route_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			lat REAL NOT NULL,
			lng REAL NOT NULL,
			elevation REAL NOT NULL,
			distance REAL NOT NULL,
			time_offset INTEGER NOT NULL,
			PRIMARY KEY (route_id, seq),
			FOREIGN KEY (route_id) REFERENCES routes(id) ON DELETE CASCADE
		)`,

		// Sync State (key-value store for incremental pull cursors)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
