package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrWorkoutNotFound is returned when a workout doesn't exist
var ErrWorkoutNotFound = errors.New("workout not found")

// UpsertWorkout inserts or updates a workout summary
func (db *DB) UpsertWorkout(w *Workout) error {
	_, err := db.Exec(`
		INSERT INTO workouts (
			id, user_id, name, sport, started_at, distance, moving_time,
			elapsed_time, elevation_gain, route_id, points_synced, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			sport = excluded.sport,
			started_at = excluded.started_at,
			distance = excluded.distance,
			moving_time = excluded.moving_time,
			elapsed_time = excluded.elapsed_time,
			elevation_gain = excluded.elevation_gain,
			updated_at = CURRENT_TIMESTAMP
	`,
		w.ID, w.UserID, w.Name, w.Sport,
		w.StartedAt.UTC().Format(time.RFC3339),
		w.Distance, w.MovingTime, w.ElapsedTime, w.ElevationGain,
		w.RouteID, boolToInt(w.PointsSynced),
	)
	return err
}

// ListWorkouts returns a user's workouts ordered by start date descending
func (db *DB) ListWorkouts(userID int64, limit int) ([]Workout, error) {
	rows, err := db.Query(`
		SELECT id, user_id, name, sport, started_at, distance, moving_time,
			elapsed_time, elevation_gain, route_id, points_synced
		FROM workouts
		WHERE user_id = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workouts []Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, *w)
	}
	return workouts, rows.Err()
}

// WorkoutsNeedingPoints returns GPS workouts whose samples haven't been
// fetched yet.
func (db *DB) WorkoutsNeedingPoints(userID int64, limit int) ([]Workout, error) {
	rows, err := db.Query(`
		SELECT id, user_id, name, sport, started_at, distance, moving_time,
			elapsed_time, elevation_gain, route_id, points_synced
		FROM workouts
		WHERE user_id = ? AND points_synced = 0
		ORDER BY started_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workouts []Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, *w)
	}
	return workouts, rows.Err()
}

// SaveWorkoutPoints replaces a workout's GPS samples and marks them synced
func (db *DB) SaveWorkoutPoints(workoutID int64, points []WorkoutPoint) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM workout_points WHERE workout_id = ?", workoutID); err != nil {
		return fmt.Errorf("deleting existing points: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO workout_points (workout_id, time_offset, lat, lng, altitude, distance)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.Exec(workoutID, p.TimeOffset, p.Lat, p.Lng, p.Altitude, p.Distance); err != nil {
			return fmt.Errorf("inserting workout point: %w", err)
		}
	}

	if _, err := tx.Exec(`
		UPDATE workouts SET points_synced = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, workoutID); err != nil {
		return fmt.Errorf("marking points synced: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// WorkoutPoints retrieves a workout's GPS samples ordered by time
func (db *DB) WorkoutPoints(workoutID int64) ([]WorkoutPoint, error) {
	rows, err := db.Query(`
		SELECT workout_id, time_offset, lat, lng, altitude, distance
		FROM workout_points
		WHERE workout_id = ?
		ORDER BY time_offset
	`, workoutID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []WorkoutPoint
	for rows.Next() {
		var p WorkoutPoint
		if err := rows.Scan(&p.WorkoutID, &p.TimeOffset, &p.Lat, &p.Lng, &p.Altitude, &p.Distance); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// SetWorkoutRoute links a workout to its deduplicated route
func (db *DB) SetWorkoutRoute(workoutID, routeID int64) error {
	result, err := db.Exec(`
		UPDATE workouts SET route_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, routeID, workoutID)
	if err != nil {
		return err
	}
	return requireRow(result, ErrWorkoutNotFound)
}

// WeeklyDistances returns total workout distance per ISO week for the last
// n weeks, oldest first. Weeks without workouts report zero.
func (db *DB) WeeklyDistances(userID int64, weeks int, now time.Time) ([]float64, error) {
	start := now.UTC().AddDate(0, 0, -7*weeks)
	rows, err := db.Query(`
		SELECT started_at, distance
		FROM workouts
		WHERE user_id = ? AND started_at >= ?
	`, userID, start.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make([]float64, weeks)
	for rows.Next() {
		var startedAt string
		var distance float64
		if err := rows.Scan(&startedAt, &distance); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, startedAt)
		if err != nil {
			continue
		}
		idx := weeks - 1 - int(now.UTC().Sub(t).Hours()/(24*7))
		if idx >= 0 && idx < weeks {
			totals[idx] += distance
		}
	}
	return totals, rows.Err()
}

func scanWorkout(rows *sql.Rows) (*Workout, error) {
	var w Workout
	var startedAt string
	var pointsSynced int64

	err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.Sport, &startedAt, &w.Distance,
		&w.MovingTime, &w.ElapsedTime, &w.ElevationGain, &w.RouteID, &pointsSynced)
	if err != nil {
		return nil, err
	}

	w.StartedAt, err = time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	w.PointsSynced = pointsSynced == 1
	return &w, nil
}
