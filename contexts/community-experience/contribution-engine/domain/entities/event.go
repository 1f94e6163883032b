package entities

import (
	"strings"
	"time"
)

type EventKind string

const (
	KindPostCreated       EventKind = "post_created"
	KindSolutionCreated   EventKind = "solution_created"
	KindCommentCreated    EventKind = "comment_created"
	KindUpvoteReceived    EventKind = "upvote_received"
	KindDownvoteReceived  EventKind = "downvote_received"
	KindBookmarkReceived  EventKind = "bookmark_received"
	KindViewReceived      EventKind = "view_received"
	KindVoteRetracted     EventKind = "vote_retracted"
	KindBookmarkRetracted EventKind = "bookmark_retracted"
)

// VoteState is the logical state of one user's vote on one subject.
type VoteState string

const (
	VoteStateNone VoteState = "none"
	VoteStateUp   VoteState = "up"
	VoteStateDown VoteState = "down"
)

func ParseVoteState(raw string) (VoteState, bool) {
	switch state := VoteState(strings.ToLower(strings.TrimSpace(raw))); state {
	case VoteStateNone, VoteStateUp, VoteStateDown:
		return state, true
	default:
		return "", false
	}
}

// KindForVoteState maps a logical vote state to the ledger kind credited to
// the subject's author. The none state maps to the empty kind.
func KindForVoteState(state VoteState) EventKind {
	switch state {
	case VoteStateUp:
		return KindUpvoteReceived
	case VoteStateDown:
		return KindDownvoteReceived
	default:
		return ""
	}
}

// ContributionEvent is one immutable ledger entry. Corrections are appended
// as compensating transition events, never written in place.
//
// For toggleable actions (votes, bookmarks) a single event encodes one
// atomic logical state transition: Kind carries the new state's kind (or the
// retraction marker when the new state is none) and PrevKind carries the old
// state's kind. The scored delta is base(Kind) - base(PrevKind), so replaying
// any toggle history lands on the same score as the materialized state.
type ContributionEvent struct {
	EventID     uint64
	UserID      string
	Kind        EventKind
	PrevKind    EventKind
	SubjectRef  string
	RuleVersion int
	OccurredAt  time.Time
}

// QualifiesForStreak reports whether the event counts as the user's own
// activity for streak purposes. Only plain creation events qualify; passive
// credit and transition events never do.
func (e ContributionEvent) QualifiesForStreak() bool {
	if e.PrevKind != "" {
		return false
	}
	switch e.Kind {
	case KindPostCreated, KindSolutionCreated, KindCommentCreated:
		return true
	default:
		return false
	}
}
