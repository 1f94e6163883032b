// Package scoring holds the pure scoring rules of the contribution engine:
// the versioned point rule table, the streak advance, the streak multiplier
// curve, the tier bands, and the fold that reduces ledger events into the
// materialized per-user state. Everything here is deterministic; the
// incremental path and the recalculation replay share these functions, which
// is what keeps the two paths convergent.
package scoring

import (
	"time"

	"paperportal/contexts/community-experience/contribution-engine/domain/entities"
)

// Base point values are kept in tenths of a point so the view credit (0.1)
// stays an integer. Earned amounts are tenths multiplied by an integer
// percent, which lands exactly on millipoints.

// RuleVersion is one immutable revision of the point rule table.
type RuleVersion struct {
	Version       int
	EffectiveFrom time.Time
	PointsTenths  map[entities.EventKind]int64
}

// BaseTenths is a total lookup: unknown kinds are worth zero so a new event
// kind rolling out ahead of its scoring rule cannot break the fold.
func (v RuleVersion) BaseTenths(kind entities.EventKind) int64 {
	if kind == "" {
		return 0
	}
	return v.PointsTenths[kind]
}

// RuleTable is an append-only list of rule versions ordered by
// EffectiveFrom. Events are stamped with the version in effect at their
// occurred_at, and are always rescored with that stamped version, so a later
// rule change never makes a replay diverge from history.
type RuleTable struct {
	versions []RuleVersion
}

func NewRuleTable(versions ...RuleVersion) *RuleTable {
	table := &RuleTable{versions: make([]RuleVersion, len(versions))}
	copy(table.versions, versions)
	return table
}

// DefaultRuleTable carries the product's launch values.
func DefaultRuleTable() *RuleTable {
	return NewRuleTable(RuleVersion{
		Version:       1,
		EffectiveFrom: time.Time{},
		PointsTenths: map[entities.EventKind]int64{
			entities.KindPostCreated:      50,
			entities.KindSolutionCreated:  100,
			entities.KindCommentCreated:   20,
			entities.KindUpvoteReceived:   30,
			entities.KindDownvoteReceived: -10,
			entities.KindBookmarkReceived: 20,
			entities.KindViewReceived:     1,
		},
	})
}

// VersionAt returns the newest version effective at t.
func (t *RuleTable) VersionAt(at time.Time) RuleVersion {
	picked := t.versions[0]
	for _, v := range t.versions[1:] {
		if !v.EffectiveFrom.After(at) {
			picked = v
		}
	}
	return picked
}

// Version resolves a stamped version number, falling back to the oldest
// version when the stamp predates the table.
func (t *RuleTable) Version(number int) RuleVersion {
	for _, v := range t.versions {
		if v.Version == number {
			return v
		}
	}
	return t.versions[0]
}

// DeltaTenths scores one event under one rule version: the new state's base
// minus the previous state's base. Plain events have no previous state so
// this collapses to the base value.
func DeltaTenths(rules RuleVersion, event entities.ContributionEvent) int64 {
	return rules.BaseTenths(event.Kind) - rules.BaseTenths(event.PrevKind)
}
