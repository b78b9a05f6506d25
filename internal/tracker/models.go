package tracker

import "time"

// Workout represents a workout summary from the tracker API
type Workout struct {
	ID            int64     `json:"id"`
	Athlete       Athlete   `json:"athlete"`
	Name          string    `json:"name"`
	SportType     string    `json:"sport_type"`
	StartDate     time.Time `json:"start_date"`
	Distance      float64   `json:"distance"`    // meters
	MovingTime    int       `json:"moving_time"` // seconds
	ElapsedTime   int       `json:"elapsed_time"`
	ElevationGain float64   `json:"total_elevation_gain"` // meters
	HasGPS        bool      `json:"has_gps"`
}

// Athlete represents a tracker athlete (minimal info in workout response)
type Athlete struct {
	ID int64 `json:"id"`
}

// Streams represents workout stream data from the API, keyed by type
// when key_by_type=true
type Streams struct {
	Time     *StreamData[int]        `json:"time"`
	LatLng   *StreamData[[2]float64] `json:"latlng"`
	Altitude *StreamData[float64]    `json:"altitude"`
	Distance *StreamData[float64]    `json:"distance"`
}

// StreamData represents a single stream type
type StreamData[T any] struct {
	Data         []T    `json:"data"`
	SeriesType   string `json:"series_type"`
	OriginalSize int    `json:"original_size"`
	Resolution   string `json:"resolution"`
}

// Len returns the length of the stream, or 0 if nil
func (s *Streams) Len() int {
	if s == nil || s.Time == nil {
		return 0
	}
	return len(s.Time.Data)
}

// HasGPS returns true if coordinate data exists
func (s *Streams) HasGPS() bool {
	return s != nil && s.LatLng != nil && len(s.LatLng.Data) > 0
}
