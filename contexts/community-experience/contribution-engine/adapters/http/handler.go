package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"paperportal/contexts/community-experience/contribution-engine/application/commands"
	"paperportal/contexts/community-experience/contribution-engine/application/queries"
	"paperportal/contexts/community-experience/contribution-engine/domain/entities"
	domainerrors "paperportal/contexts/community-experience/contribution-engine/domain/errors"
	"paperportal/contexts/community-experience/contribution-engine/domain/scoring"
	httptransport "paperportal/contexts/community-experience/contribution-engine/transport/http"
)

type Handler struct {
	Record      commands.RecordUseCase
	Recalculate *commands.RecalculateUseCase
	Queries     queries.ContributionUseCase
	Logger      *slog.Logger
}

func (h Handler) RecordEventHandler(
	ctx context.Context,
	idempotencyKey string,
	req httptransport.RecordEventRequest,
) (httptransport.RecordEventResponse, error) {
	occurredAt, err := parseOccurredAt(req.OccurredAt)
	if err != nil {
		return httptransport.RecordEventResponse{}, err
	}
	result, err := h.Record.RecordEvent(ctx, commands.RecordEventCommand{
		UserID:         req.UserID,
		Kind:           entities.EventKind(req.Kind),
		SubjectRef:     req.SubjectRef,
		OccurredAt:     occurredAt,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.RecordEventResponse{}, err
	}
	return recordResponse(result), nil
}

func (h Handler) VoteTransitionHandler(
	ctx context.Context,
	idempotencyKey string,
	req httptransport.VoteTransitionRequest,
) (httptransport.RecordEventResponse, error) {
	occurredAt, err := parseOccurredAt(req.OccurredAt)
	if err != nil {
		return httptransport.RecordEventResponse{}, err
	}
	from, ok := entities.ParseVoteState(req.From)
	if !ok {
		return httptransport.RecordEventResponse{}, domainerrors.ErrInvalidTransition
	}
	to, ok := entities.ParseVoteState(req.To)
	if !ok {
		return httptransport.RecordEventResponse{}, domainerrors.ErrInvalidTransition
	}
	result, err := h.Record.RecordVoteTransition(ctx, commands.VoteTransitionCommand{
		UserID:         req.UserID,
		SubjectRef:     req.SubjectRef,
		From:           from,
		To:             to,
		OccurredAt:     occurredAt,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.RecordEventResponse{}, err
	}
	return recordResponse(result), nil
}

func (h Handler) BookmarkTransitionHandler(
	ctx context.Context,
	idempotencyKey string,
	req httptransport.BookmarkTransitionRequest,
) (httptransport.RecordEventResponse, error) {
	occurredAt, err := parseOccurredAt(req.OccurredAt)
	if err != nil {
		return httptransport.RecordEventResponse{}, err
	}
	result, err := h.Record.RecordBookmarkTransition(ctx, commands.BookmarkTransitionCommand{
		UserID:         req.UserID,
		SubjectRef:     req.SubjectRef,
		Bookmarked:     req.Bookmarked,
		OccurredAt:     occurredAt,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.RecordEventResponse{}, err
	}
	return recordResponse(result), nil
}

func (h Handler) GetContributionStateHandler(ctx context.Context, userID string) (httptransport.ContributionStateResponse, error) {
	view, err := h.Queries.GetContributionState(ctx, userID)
	if err != nil {
		return httptransport.ContributionStateResponse{}, err
	}
	return httptransport.ContributionStateResponse{
		Status: "success",
		Data:   stateDTO(view.State, view.Tier),
	}, nil
}

func (h Handler) RecalculateHandler(ctx context.Context, userID string) (httptransport.RecalculateResponse, error) {
	result, err := h.Recalculate.Recalculate(ctx, userID)
	if err != nil {
		return httptransport.RecalculateResponse{}, err
	}
	resp := httptransport.RecalculateResponse{Status: "success"}
	resp.Data.ReplayedEvents = result.Replayed
	resp.Data.TierChanged = result.TierChanged
	resp.Data.State = stateDTO(result.State, result.Tier)
	return resp, nil
}

func (h Handler) GetLeaderboardHandler(ctx context.Context, limit int, offset int) (httptransport.LeaderboardResponse, error) {
	view, err := h.Queries.GetLeaderboard(ctx, limit, offset)
	if err != nil {
		return httptransport.LeaderboardResponse{}, err
	}
	resp := httptransport.LeaderboardResponse{Status: "success"}
	resp.Data.Entries = make([]httptransport.LeaderboardEntryDTO, 0, len(view.Entries))
	for _, entry := range view.Entries {
		resp.Data.Entries = append(resp.Data.Entries, httptransport.LeaderboardEntryDTO{
			Rank:   entry.Rank,
			UserID: entry.UserID,
			Score:  entry.Score,
			Tier:   string(scoring.ClassifyTier(entry.Score)),
		})
	}
	resp.Data.TotalUsers = view.TotalUsers
	return resp, nil
}

func (h Handler) GetTierBandsHandler(ctx context.Context) httptransport.TierBandsResponse {
	bands := h.Queries.TierBands(ctx)
	resp := httptransport.TierBandsResponse{Status: "success"}
	resp.Data = make([]httptransport.TierBandDTO, 0, len(bands))
	for _, band := range bands {
		resp.Data = append(resp.Data, httptransport.TierBandDTO{
			Tier:     string(band.Tier),
			MinScore: band.MinScore,
		})
	}
	return resp
}

func recordResponse(result commands.RecordResult) httptransport.RecordEventResponse {
	resp := httptransport.RecordEventResponse{
		Status:   "success",
		Replayed: result.Replayed,
	}
	resp.Data.EventID = result.Event.EventID
	resp.Data.Kind = string(result.Event.Kind)
	resp.Data.TierChanged = result.TierChanged
	resp.Data.State = stateDTO(result.State, result.Tier)
	return resp
}

func stateDTO(state entities.UserContributionState, tier scoring.Tier) httptransport.ContributionStateDTO {
	dto := httptransport.ContributionStateDTO{
		UserID:           state.UserID,
		Score:            state.Score(),
		CurrentStreak:    state.CurrentStreak,
		LongestStreak:    state.LongestStreak,
		Tier:             string(tier),
		StreakMultiplier: scoring.StreakMultiplier(state.CurrentStreak),
	}
	if !state.LastActiveDay.IsZero() {
		dto.LastActiveDay = state.LastActiveDay.UTC().Format("2006-01-02")
	}
	return dto
}

func parseOccurredAt(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, domainerrors.ErrInvalidEventInput
	}
	occurredAt, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, domainerrors.ErrInvalidEventInput
	}
	return occurredAt.UTC(), nil
}
