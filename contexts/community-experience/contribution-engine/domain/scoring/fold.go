package scoring

import (
	"paperportal/contexts/community-experience/contribution-engine/domain/entities"
)

// Apply folds one event into state and returns the millipoints it earned.
// The incremental update path and the recalculation replay both call this
// exact function, so state == fold(events) holds by construction rather than
// by two implementations agreeing.
//
// Order of operations matters and is fixed: the streak advances first, then
// the multiplier in effect after that advance prices the event. Only the
// user's own qualifying activity is multiplied; passive credit (votes,
// bookmarks, views received) lands at face value, which makes every
// cast/retract round trip exactly neutral.
func Apply(table *RuleTable, state *entities.UserContributionState, event entities.ContributionEvent) int64 {
	if event.QualifiesForStreak() {
		AdvanceStreak(state, event.OccurredAt)
	}

	delta := DeltaTenths(table.Version(event.RuleVersion), event)
	pct := multiplierBasePct
	if event.QualifiesForStreak() {
		pct = MultiplierPct(state.CurrentStreak)
	}

	earned := delta * int64(pct) // tenths x percent == millipoints
	state.ScoreMillis += earned
	if event.OccurredAt.After(state.UpdatedAt) {
		state.UpdatedAt = event.OccurredAt.UTC()
	}
	return earned
}

// Replay folds an ordered event slice into a fresh state for the given user.
func Replay(table *RuleTable, userID string, events []entities.ContributionEvent) entities.UserContributionState {
	state := entities.UserContributionState{UserID: userID}
	for _, event := range events {
		Apply(table, &state, event)
	}
	return state
}
