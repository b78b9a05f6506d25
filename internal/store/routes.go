package store

import (
	"errors"
	"fmt"
)

// ErrRouteNotFound is returned when a route doesn't exist
var ErrRouteNotFound = errors.New("route not found")

// CreateRoute inserts a route and its track in one transaction and
// returns the new route id.
func (db *DB) CreateRoute(r *Route) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT INTO routes (user_id, name, distance, ascent, descent, deleted)
		VALUES (?, ?, ?, ?, ?, 0)
	`, r.UserID, r.Name, r.Distance, r.Ascent, r.Descent)
	if err != nil {
		return 0, fmt.Errorf("inserting route: %w", err)
	}

	routeID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO route_points (route_id, seq, lat, lng, elevation, distance, time_offset)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, p := range r.Points {
		if _, err := stmt.Exec(routeID, i, p.Lat, p.Lng, p.Elevation, p.Distance, p.TimeOffset); err != nil {
			return 0, fmt.Errorf("inserting route point %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return routeID, nil
}

// RoutesForUser returns a user's non-deleted routes with their full tracks,
// newest first.
func (db *DB) RoutesForUser(userID int64) ([]Route, error) {
	rows, err := db.Query(`
		SELECT id, user_id, name, distance, ascent, descent
		FROM routes
		WHERE user_id = ? AND deleted = 0
		ORDER BY id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []Route
	for rows.Next() {
		var r Route
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.Distance, &r.Ascent, &r.Descent); err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range routes {
		points, err := db.routePoints(routes[i].ID)
		if err != nil {
			return nil, fmt.Errorf("loading points for route %d: %w", routes[i].ID, err)
		}
		routes[i].Points = points
	}
	return routes, nil
}

// SoftDeleteRoute marks a route deleted
func (db *DB) SoftDeleteRoute(id int64) error {
	result, err := db.Exec(`UPDATE routes SET deleted = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result, ErrRouteNotFound)
}

func (db *DB) routePoints(routeID int64) ([]Position, error) {
	rows, err := db.Query(`
		SELECT lat, lng, elevation, distance, time_offset
		FROM route_points
		WHERE route_id = ?
		ORDER BY seq
	`, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []Position
	for rows.Next() {
		var p Position
		if err := rows.Scan(&p.Lat, &p.Lng, &p.Elevation, &p.Distance, &p.TimeOffset); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
