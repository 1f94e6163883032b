package scoring

import (
	"time"

	"paperportal/contexts/community-experience/contribution-engine/domain/entities"
)

const (
	multiplierBasePct    = 100
	multiplierStepPct    = 5
	multiplierCeilingPct = 150
)

// AdvanceStreak applies one qualifying activity day to the streak fields of
// state. The incremental path only ever advances: a backfilled event for a
// day before last_active_day leaves the streak untouched, so late arrivals
// cannot corrupt a streak computed from later days.
func AdvanceStreak(state *entities.UserContributionState, day time.Time) {
	day = entities.ActiveDay(day)

	switch {
	case state.LastActiveDay.IsZero():
		state.CurrentStreak = 1
		state.LastActiveDay = day
	case day.Equal(state.LastActiveDay):
		// already counted today
	case day.Equal(state.LastActiveDay.AddDate(0, 0, 1)):
		state.CurrentStreak++
		state.LastActiveDay = day
	case day.After(state.LastActiveDay):
		state.CurrentStreak = 1
		state.LastActiveDay = day
	default:
		// backfill for a past day, streak unchanged
		return
	}

	if state.CurrentStreak > state.LongestStreak {
		state.LongestStreak = state.CurrentStreak
	}
}

// MultiplierPct is the streak bonus curve in integer percent: no bonus on
// the first active day, +5% per consecutive day after it, capped at +50%.
// Integer percent keeps earned millipoints exact under replay.
func MultiplierPct(streakDays int) int {
	if streakDays <= 1 {
		return multiplierBasePct
	}
	pct := multiplierBasePct + multiplierStepPct*(streakDays-1)
	if pct > multiplierCeilingPct {
		return multiplierCeilingPct
	}
	return pct
}

// StreakMultiplier is the display form of the curve, exported for the UI and
// test harnesses. StreakMultiplier(0) == 1.0.
func StreakMultiplier(streakDays int) float64 {
	return float64(MultiplierPct(streakDays)) / 100
}
