package queries

import (
	"context"
	"log/slog"
	"strings"

	application "paperportal/contexts/community-experience/contribution-engine/application"
	"paperportal/contexts/community-experience/contribution-engine/domain/entities"
	domainerrors "paperportal/contexts/community-experience/contribution-engine/domain/errors"
	"paperportal/contexts/community-experience/contribution-engine/domain/scoring"
	"paperportal/contexts/community-experience/contribution-engine/ports"
)

// ContributionView is the read shape served to the UI: the last committed
// state with the tier derived from it at read time.
type ContributionView struct {
	State entities.UserContributionState
	Tier  scoring.Tier
}

type LeaderboardView struct {
	Entries    []ports.LeaderboardEntry
	TotalUsers int
}

type ContributionUseCase struct {
	States      ports.StateRepository
	Leaderboard ports.LeaderboardIndex
	Logger      *slog.Logger
}

func (uc ContributionUseCase) GetContributionState(ctx context.Context, userID string) (ContributionView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ContributionView{}, domainerrors.ErrInvalidEventInput
	}

	state, found, err := uc.States.GetState(ctx, userID)
	if err != nil {
		return ContributionView{}, err
	}
	if !found {
		return ContributionView{}, domainerrors.ErrStateNotFound
	}
	return ContributionView{
		State: state,
		Tier:  scoring.ClassifyTier(state.Score()),
	}, nil
}

func (uc ContributionUseCase) GetLeaderboard(ctx context.Context, limit int, offset int) (LeaderboardView, error) {
	if limit < 0 || offset < 0 {
		return LeaderboardView{}, domainerrors.ErrInvalidEventInput
	}
	if limit == 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	entries, err := uc.Leaderboard.Top(ctx, offset, limit)
	if err != nil {
		return LeaderboardView{}, err
	}
	total, err := uc.Leaderboard.Size(ctx)
	if err != nil {
		return LeaderboardView{}, err
	}

	application.ResolveLogger(uc.Logger).Debug("contribution leaderboard served",
		"event", "contribution_leaderboard_served",
		"module", "community-experience/contribution-engine",
		"layer", "application",
		"limit", limit,
		"offset", offset,
		"total_users", total,
	)
	return LeaderboardView{Entries: entries, TotalUsers: total}, nil
}

// TierBands exposes the classifier's band metadata for display.
func (uc ContributionUseCase) TierBands(_ context.Context) []scoring.TierBand {
	return scoring.TierBands()
}
