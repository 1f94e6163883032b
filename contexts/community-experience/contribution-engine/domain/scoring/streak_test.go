package scoring_test

import (
	"testing"
	"time"

	"paperportal/contexts/community-experience/contribution-engine/domain/entities"
	"paperportal/contexts/community-experience/contribution-engine/domain/scoring"
)

func day(yearDay int) time.Time {
	return time.Date(2026, time.January, yearDay, 10, 30, 0, 0, time.UTC)
}

func TestStreakAdvancesAcrossConsecutiveDays(t *testing.T) {
	var state entities.UserContributionState

	for d := 1; d <= 5; d++ {
		scoring.AdvanceStreak(&state, day(d))
	}
	if state.CurrentStreak != 5 {
		t.Fatalf("expected streak 5 after five consecutive days, got %d", state.CurrentStreak)
	}
	if state.LongestStreak != 5 {
		t.Fatalf("expected longest streak 5, got %d", state.LongestStreak)
	}

	// Day 6 skipped; the next activity starts a fresh streak but longest holds.
	scoring.AdvanceStreak(&state, day(7))
	if state.CurrentStreak != 1 {
		t.Fatalf("gap must reset streak to 1, got %d", state.CurrentStreak)
	}
	if state.LongestStreak != 5 {
		t.Fatalf("longest streak must survive the reset, got %d", state.LongestStreak)
	}
}

func TestStreakSameDayCountsOnce(t *testing.T) {
	var state entities.UserContributionState

	scoring.AdvanceStreak(&state, day(1))
	scoring.AdvanceStreak(&state, day(1).Add(6*time.Hour))
	scoring.AdvanceStreak(&state, day(1).Add(13*time.Hour))

	if state.CurrentStreak != 1 {
		t.Fatalf("same-day activity must not grow the streak, got %d", state.CurrentStreak)
	}
	if !state.LastActiveDay.Equal(entities.ActiveDay(day(1))) {
		t.Fatalf("last active day should stay on day 1, got %v", state.LastActiveDay)
	}
}

func TestStreakIgnoresBackfilledPastDays(t *testing.T) {
	var state entities.UserContributionState

	scoring.AdvanceStreak(&state, day(10))
	scoring.AdvanceStreak(&state, day(11))
	scoring.AdvanceStreak(&state, day(3))

	if state.CurrentStreak != 2 {
		t.Fatalf("backfill must not change the streak, got %d", state.CurrentStreak)
	}
	if !state.LastActiveDay.Equal(entities.ActiveDay(day(11))) {
		t.Fatalf("backfill must not move last active day, got %v", state.LastActiveDay)
	}
}

func TestStreakDayBucketsAreUTC(t *testing.T) {
	var state entities.UserContributionState

	eastern := time.FixedZone("UTC+10", 10*60*60)
	// 2026-01-02 08:00 +10:00 is still 2026-01-01 22:00 UTC.
	scoring.AdvanceStreak(&state, time.Date(2026, time.January, 2, 8, 0, 0, 0, eastern))

	want := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !state.LastActiveDay.Equal(want) {
		t.Fatalf("expected UTC day bucket %v, got %v", want, state.LastActiveDay)
	}
}

func TestMultiplierCurveIsCappedAndMonotonic(t *testing.T) {
	if got := scoring.StreakMultiplier(0); got != 1.0 {
		t.Fatalf("StreakMultiplier(0) must be 1.0, got %v", got)
	}
	if got := scoring.StreakMultiplier(1); got != 1.0 {
		t.Fatalf("first active day carries no bonus, got %v", got)
	}
	if got := scoring.MultiplierPct(2); got != 105 {
		t.Fatalf("second consecutive day must be 105 pct, got %d", got)
	}
	if got := scoring.MultiplierPct(11); got != 150 {
		t.Fatalf("curve must cap at 150 pct, got %d", got)
	}
	if got := scoring.MultiplierPct(400); got != 150 {
		t.Fatalf("cap must hold for long streaks, got %d", got)
	}

	previous := 0
	for streak := 0; streak <= 60; streak++ {
		pct := scoring.MultiplierPct(streak)
		if pct < previous {
			t.Fatalf("multiplier decreased at streak %d: %d < %d", streak, pct, previous)
		}
		previous = pct
	}
}
