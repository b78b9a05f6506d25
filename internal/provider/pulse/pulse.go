// Package pulse fulfills "pull workout history" action events against the
// PulseTrack tracker API: it fetches new workout summaries and GPS
// streams for the event's user, then derives routes and deduplicates them
// against the user's stored ones.
package pulse

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"fitagent/internal/auth"
	"fitagent/internal/provider"
	"fitagent/internal/route"
	"fitagent/internal/store"
	"fitagent/internal/tracker"
)

const (
	perPage = 100
	// streamBatch bounds how many workouts get their streams pulled per
	// event execution; the rest catch up on later runs.
	streamBatch = 20
)

// Provider pulls workout history from PulseTrack
type Provider struct {
	db       *store.DB
	oauthCfg *oauth2.Config
	baseURL  string
}

// New creates a PulseTrack provider. An empty baseURL uses the
// production API.
func New(db *store.DB, oauthCfg *oauth2.Config, baseURL string) *Provider {
	return &Provider{db: db, oauthCfg: oauthCfg, baseURL: baseURL}
}

// Name identifies this provider in the store
func (p *Provider) Name() string { return "pulsetrack" }

// Execute pulls the event's user's workout history. Users who never
// connected their tracker account are a permanent failure; rejected or
// revoked tokens likewise. API trouble is transient and retried on the
// next run.
func (p *Provider) Execute(ctx context.Context, e store.ExecutableActionEvent) error {
	stored, err := p.db.GetTrackerAuth(e.UserID)
	if errors.Is(err, store.ErrNoAuth) {
		return provider.ErrNoCredentials
	}
	if err != nil {
		return fmt.Errorf("loading tracker auth: %w", err)
	}

	token := &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		Expiry:       stored.ExpiresAt,
	}
	tokenSource := auth.NewTokenSource(p.oauthCfg, token, func(newToken *oauth2.Token) error {
		return p.db.UpdateTrackerTokens(e.UserID, newToken.AccessToken, newToken.RefreshToken, newToken.Expiry)
	})

	client := tracker.NewClient(tokenSource, p.baseURL)
	if err := p.pull(ctx, client, e.UserID); err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.Is(err, tracker.ErrUnauthorized) || errors.As(err, &retrieveErr) {
			return fmt.Errorf("%w: %v", provider.ErrInvalidCredentials, err)
		}
		return err
	}
	return nil
}

// pull fetches new workout summaries, then streams for workouts that
// still need them, deriving and deduplicating a route per GPS workout.
func (p *Provider) pull(ctx context.Context, client *tracker.Client, userID int64) error {
	after, err := p.lastSync(userID)
	if err != nil {
		return err
	}

	page := 1
	for {
		workouts, err := client.GetWorkouts(ctx, after, page, perPage)
		if err != nil {
			return fmt.Errorf("fetching workouts page %d: %w", page, err)
		}
		if len(workouts) == 0 {
			break
		}

		for _, w := range workouts {
			if err := p.db.UpsertWorkout(&store.Workout{
				ID:            w.ID,
				UserID:        userID,
				Name:          w.Name,
				Sport:         w.SportType,
				StartedAt:     w.StartDate,
				Distance:      w.Distance,
				MovingTime:    w.MovingTime,
				ElapsedTime:   w.ElapsedTime,
				ElevationGain: &w.ElevationGain,
			}); err != nil {
				return fmt.Errorf("storing workout %d: %w", w.ID, err)
			}
		}

		if len(workouts) < perPage {
			break
		}
		page++
	}

	if err := p.setLastSync(userID); err != nil {
		return err
	}

	pending, err := p.db.WorkoutsNeedingPoints(userID, streamBatch)
	if err != nil {
		return fmt.Errorf("listing workouts needing points: %w", err)
	}

	for _, w := range pending {
		if err := p.pullStreams(ctx, client, &w); err != nil {
			return fmt.Errorf("workout %d: %w", w.ID, err)
		}
	}
	return nil
}

func (p *Provider) pullStreams(ctx context.Context, client *tracker.Client, w *store.Workout) error {
	streams, err := client.GetWorkoutStreams(ctx, w.ID)
	if err != nil {
		return fmt.Errorf("fetching streams: %w", err)
	}

	points := convertStreams(w.ID, streams)
	if err := p.db.SaveWorkoutPoints(w.ID, points); err != nil {
		return fmt.Errorf("saving points: %w", err)
	}

	if !streams.HasGPS() {
		return nil
	}
	return p.assignRoute(w, points)
}

// assignRoute links the workout to an equivalent stored route, creating
// a new one when nothing matches.
func (p *Provider) assignRoute(w *store.Workout, points []store.WorkoutPoint) error {
	track := route.DeriveTrack(points)
	if len(track.Points) == 0 {
		return nil
	}

	candidate := &store.Route{
		UserID:   w.UserID,
		Name:     w.Name,
		Distance: track.Distance,
		Ascent:   track.Ascent,
		Descent:  track.Descent,
		Points:   track.Points,
	}

	existing, err := p.db.RoutesForUser(w.UserID)
	if err != nil {
		return fmt.Errorf("loading routes: %w", err)
	}

	routeID, ok := route.FindEquivalent(candidate, existing)
	if !ok {
		routeID, err = p.db.CreateRoute(candidate)
		if err != nil {
			return fmt.Errorf("creating route: %w", err)
		}
	}
	return p.db.SetWorkoutRoute(w.ID, routeID)
}

func (p *Provider) lastSync(userID int64) (time.Time, error) {
	value, err := p.db.GetSyncState(syncKey(userID))
	if err != nil {
		return time.Time{}, fmt.Errorf("reading sync cursor: %w", err)
	}
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing sync cursor: %w", err)
	}
	return t, nil
}

func (p *Provider) setLastSync(userID int64) error {
	if err := p.db.SetSyncState(syncKey(userID), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("writing sync cursor: %w", err)
	}
	return nil
}

func syncKey(userID int64) string {
	return "pulse_last_sync_user_" + strconv.FormatInt(userID, 10)
}

// convertStreams flattens the per-type stream arrays into per-sample
// points, indexed by the time channel.
func convertStreams(workoutID int64, streams *tracker.Streams) []store.WorkoutPoint {
	n := streams.Len()
	points := make([]store.WorkoutPoint, 0, n)

	for i := 0; i < n; i++ {
		p := store.WorkoutPoint{
			WorkoutID:  workoutID,
			TimeOffset: streams.Time.Data[i],
		}
		if streams.LatLng != nil && i < len(streams.LatLng.Data) {
			lat, lng := streams.LatLng.Data[i][0], streams.LatLng.Data[i][1]
			p.Lat, p.Lng = &lat, &lng
		}
		if streams.Altitude != nil && i < len(streams.Altitude.Data) {
			alt := streams.Altitude.Data[i]
			p.Altitude = &alt
		}
		if streams.Distance != nil && i < len(streams.Distance.Data) {
			d := streams.Distance.Data[i]
			p.Distance = &d
		}
		points = append(points, p)
	}
	return points
}
