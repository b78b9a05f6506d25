// Package route decides whether two recorded GPS tracks follow the same
// physical path, so repeated workouts on the same loop share one stored
// route instead of creating duplicates.
package route

import (
	"math"

	"fitagent/internal/store"
)

// Tolerance bands for track comparison. A comparison tolerates up to
// 1/maxMisses of the track's points mismatching in total and up to
// 1/maxContMisses mismatching in a row; the realignment lookahead window
// is 1/maxContMisses of the track length.
const (
	maxMisses     = 10
	maxContMisses = 20
)

// FindEquivalent returns the id of the first stored route equivalent to
// the candidate. First match wins; there is no global best-match search.
func FindEquivalent(candidate *store.Route, existing []store.Route) (int64, bool) {
	for i := range existing {
		if Equivalent(candidate, &existing[i]) {
			return existing[i].ID, true
		}
	}
	return 0, false
}

// Equivalent reports whether two routes follow the same path within
// tolerance. Cheap aggregate filters reject structurally different routes
// before the point-by-point walk.
func Equivalent(candidate, other *store.Route) bool {
	if math.Abs(candidate.Distance-other.Distance) > candidate.Distance/maxMisses {
		return false
	}
	if absInt(len(candidate.Points)-len(other.Points)) > len(candidate.Points)/maxMisses {
		return false
	}
	return tracksMatch(candidate.Points, other.Points)
}

// tracksMatch walks both coordinate sequences with independent cursors.
// Matching points advance both cursors; a mismatch consumes miss budget
// and tries to realign the cursors within a bounded lookahead window.
// The walk aborts the moment either budget is exhausted or realignment
// fails.
func tracksMatch(a, b []store.Position) bool {
	n := len(a)
	if n == 0 {
		return len(b) == 0
	}

	missBudget := n / maxMisses
	contBudget := n / maxContMisses
	lookahead := n / maxContMisses

	i, j := 0, 0
	misses, contMisses := 0, 0

	for i < len(a) && j < len(b) {
		if samePoint(a[i], b[j]) {
			i++
			j++
			contMisses = 0
			continue
		}

		misses++
		contMisses++
		if misses > missBudget || contMisses > contBudget {
			return false
		}

		ni, nj, ok := realign(a, b, i, j, lookahead)
		if !ok {
			return false
		}
		i, j = ni, nj
	}

	return true
}

// realign searches up to window points ahead on each side for the next
// pair of equal coordinates, preferring the closest realignment.
func realign(a, b []store.Position, i, j, window int) (int, int, bool) {
	bestI, bestJ := -1, -1
	bestCost := 2*window + 1

	for di := 0; di <= window && i+di < len(a); di++ {
		for dj := 0; dj <= window && j+dj < len(b); dj++ {
			if di+dj >= bestCost {
				break
			}
			if samePoint(a[i+di], b[j+dj]) {
				bestI, bestJ = i+di, j+dj
				bestCost = di + dj
				break
			}
		}
	}

	if bestI < 0 {
		return 0, 0, false
	}
	return bestI, bestJ, true
}

// samePoint compares coordinates exactly; GPS jitter shows up as whole
// mismatched points, not approximate ones.
func samePoint(p, q store.Position) bool {
	return p.Lat == q.Lat && p.Lng == q.Lng
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
