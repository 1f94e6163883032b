package entities

import "time"

// UserContributionState is the materialized fold of one user's ledger.
// Version is the optimistic counter every commit CASes on; Score lives in
// millipoints (thousandths of a point) so fractional credit accumulates
// without rounding until presentation.
type UserContributionState struct {
	UserID        string
	ScoreMillis   int64
	CurrentStreak int
	LongestStreak int
	LastActiveDay time.Time
	Version       int64
	UpdatedAt     time.Time
}

// Score rounds the fixed-point accumulation to whole points, half away from
// zero. Rounding happens only here, never mid-fold.
func (s UserContributionState) Score() int {
	millis := s.ScoreMillis
	if millis >= 0 {
		return int((millis + 500) / 1000)
	}
	return int((millis - 500) / 1000)
}

// ActiveDay truncates a timestamp to its UTC calendar day.
func ActiveDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
