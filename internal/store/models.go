package store

import "time"

// User is an account whose rules and workouts we manage
type User struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// ActionProvider is an external integration (booking site or tracker API)
type ActionProvider struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
}

// Action describes a bookable capability offered by one action provider
type Action struct {
	ID          int64  `db:"id"`
	ProviderID  int64  `db:"provider_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	// Hours of lead time an event must be created ahead of its scheduled time
	CreateBeforeHours int `db:"create_before_hours"`
	// Hours after which a past, soft-deleted event may be purged
	DeleteAfterHours int `db:"delete_after_hours"`
}

// ActionRule is a user's recurring weekly intent to perform an Action.
// Weekday is ISO-style: 0 = Monday ... 6 = Sunday. TimeOfDay is "15:04" in UTC.
type ActionRule struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	ActionID  int64     `db:"action_id"`
	Weekday   int       `db:"weekday"`
	TimeOfDay string    `db:"time_of_day"`
	Arguments string    `db:"arguments"`
	Enabled   bool      `db:"enabled"`
	Deleted   bool      `db:"deleted"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ActionEvent is one concrete dated occurrence derived from a rule
type ActionEvent struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	ActionID    int64     `db:"action_id"`
	ScheduledAt time.Time `db:"scheduled_at"`
	Arguments   string    `db:"arguments"`
	Enabled     bool      `db:"enabled"`
	Deleted     bool      `db:"deleted"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// NewActionEvent is an event creation request produced by rule expansion
type NewActionEvent struct {
	UserID      int64
	ActionID    int64
	ScheduledAt time.Time
	Arguments   string
}

// CreatableActionRule is the scheduler's expansion input: an enabled,
// non-deleted rule joined with its action's lead time.
type CreatableActionRule struct {
	RuleID       int64
	UserID       int64
	ActionID     int64
	Weekday      int
	TimeOfDay    string
	Arguments    string
	CreateBefore time.Duration
}

// DeletableActionEvent is the garbage collector's input: a soft-deleted
// event joined with its action's retention window.
type DeletableActionEvent struct {
	EventID     int64
	ScheduledAt time.Time
	DeleteAfter time.Duration
}

// PlatformCredential is a user's login for one provider's platform
type PlatformCredential struct {
	UserID     int64  `db:"user_id"`
	ProviderID int64  `db:"provider_id"`
	Username   string `db:"username"`
	Password   string `db:"password"`
}

// ExecutableActionEvent is the runner's fetch result: an event joined with
// its action, provider and the owning user's credential (nil if the user
// never configured one). The projection is read-only; only the underlying
// ActionEvent row is ever mutated.
type ExecutableActionEvent struct {
	EventID      int64
	UserID       int64
	ActionID     int64
	ActionName   string
	ProviderName string
	ScheduledAt  time.Time
	Arguments    string
	Credential   *PlatformCredential
}

// TrackerAuth holds a user's OAuth tokens for the tracker platform
type TrackerAuth struct {
	UserID       int64     `db:"user_id"`
	AthleteID    int64     `db:"athlete_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// Workout is a tracker activity summary
type Workout struct {
	ID            int64     `db:"id"`
	UserID        int64     `db:"user_id"`
	Name          string    `db:"name"`
	Sport         string    `db:"sport"`
	StartedAt     time.Time `db:"started_at"`
	Distance      float64   `db:"distance"`    // meters
	MovingTime    int       `db:"moving_time"` // seconds
	ElapsedTime   int       `db:"elapsed_time"`
	ElevationGain *float64  `db:"elevation_gain"`
	RouteID       *int64    `db:"route_id"`
	PointsSynced  bool      `db:"points_synced"`
}

// WorkoutPoint is a single GPS sample from a workout's stream
type WorkoutPoint struct {
	WorkoutID  int64    `db:"workout_id"`
	TimeOffset int      `db:"time_offset"` // seconds
	Lat        *float64 `db:"lat"`
	Lng        *float64 `db:"lng"`
	Altitude   *float64 `db:"altitude"` // meters
	Distance   *float64 `db:"distance"` // cumulative meters
}

// Position is one point of a stored route's track
type Position struct {
	Lat        float64 `db:"lat"`
	Lng        float64 `db:"lng"`
	Elevation  float64 `db:"elevation"`
	Distance   float64 `db:"distance"` // cumulative meters
	TimeOffset int     `db:"time_offset"`
}

// Route is a named, deduplicated GPS track
type Route struct {
	ID       int64   `db:"id"`
	UserID   int64   `db:"user_id"`
	Name     string  `db:"name"`
	Distance float64 `db:"distance"`
	Ascent   float64 `db:"ascent"`
	Descent  float64 `db:"descent"`
	Points   []Position
}
