package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RecordEventRequest struct {
	UserID     string `json:"user_id"`
	Kind       string `json:"kind"`
	SubjectRef string `json:"subject_ref,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

type VoteTransitionRequest struct {
	UserID     string `json:"user_id"`
	SubjectRef string `json:"subject_ref"`
	From       string `json:"from"`
	To         string `json:"to"`
	OccurredAt string `json:"occurred_at"`
}

type BookmarkTransitionRequest struct {
	UserID     string `json:"user_id"`
	SubjectRef string `json:"subject_ref"`
	Bookmarked bool   `json:"bookmarked"`
	OccurredAt string `json:"occurred_at"`
}

type ContributionStateDTO struct {
	UserID           string  `json:"user_id"`
	Score            int     `json:"contribution_score"`
	CurrentStreak    int     `json:"current_streak"`
	LongestStreak    int     `json:"longest_streak"`
	LastActiveDay    string  `json:"last_active_day,omitempty"`
	Tier             string  `json:"reputation_tier"`
	StreakMultiplier float64 `json:"streak_multiplier"`
}

type RecordEventResponse struct {
	Status   string `json:"status"`
	Replayed bool   `json:"replayed,omitempty"`
	Data     struct {
		EventID     uint64               `json:"event_id"`
		Kind        string               `json:"kind"`
		TierChanged bool                 `json:"tier_changed"`
		State       ContributionStateDTO `json:"state"`
	} `json:"data"`
}

type ContributionStateResponse struct {
	Status string               `json:"status"`
	Data   ContributionStateDTO `json:"data"`
}

type RecalculateResponse struct {
	Status string `json:"status"`
	Data   struct {
		ReplayedEvents int                  `json:"replayed_events"`
		TierChanged    bool                 `json:"tier_changed"`
		State          ContributionStateDTO `json:"state"`
	} `json:"data"`
}

type LeaderboardEntryDTO struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Score  int    `json:"contribution_score"`
	Tier   string `json:"reputation_tier"`
}

type LeaderboardResponse struct {
	Status string `json:"status"`
	Data   struct {
		Entries    []LeaderboardEntryDTO `json:"entries"`
		TotalUsers int                   `json:"total_users"`
	} `json:"data"`
}

type TierBandDTO struct {
	Tier     string `json:"tier"`
	MinScore int    `json:"min_score"`
}

type TierBandsResponse struct {
	Status string        `json:"status"`
	Data   []TierBandDTO `json:"data"`
}
