package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	application "paperportal/contexts/community-experience/contribution-engine/application"
	"paperportal/contexts/community-experience/contribution-engine/domain/entities"
	domainerrors "paperportal/contexts/community-experience/contribution-engine/domain/errors"
	"paperportal/contexts/community-experience/contribution-engine/domain/scoring"
	"paperportal/contexts/community-experience/contribution-engine/ports"
)

const defaultRecalcCommitRetryLimit = 3

// RecalculateUseCase rebuilds a user's materialized state from scratch by
// replaying the ledger. It runs safely while new events keep arriving:
// replay covers a snapshot of the ledger, the tail appended during the
// replay window is reconciled before the commit, and the commit itself is a
// compare-and-swap that loses cleanly to concurrent incremental updates and
// retries with a fresh tail. A run superseded by a newer request for the
// same user abandons its commit instead of retrying.
type RecalculateUseCase struct {
	Ledger           ports.EventLedger
	States           ports.StateRepository
	Leaderboard      ports.LeaderboardIndex
	Rules            *scoring.RuleTable
	IDGen            ports.IDGenerator
	Metrics          ports.Metrics
	CommitRetryLimit int
	Logger           *slog.Logger

	mu   sync.Mutex
	runs map[string]uint64
}

// RecalculateResult mirrors RecordResult's state view.
type RecalculateResult struct {
	State       entities.UserContributionState
	Tier        scoring.Tier
	TierChanged bool
	Replayed    int
}

func (uc *RecalculateUseCase) Recalculate(ctx context.Context, userID string) (RecalculateResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	metrics := application.ResolveMetrics(uc.Metrics)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return RecalculateResult{}, domainerrors.ErrInvalidEventInput
	}

	run := uc.beginRun(userID)

	snapshotID, err := uc.Ledger.LatestEventID(ctx, userID)
	if err != nil {
		return RecalculateResult{}, uc.replayFailed(userID, err)
	}

	events, err := uc.Ledger.ListUserEventsThrough(ctx, userID, snapshotID)
	if err != nil {
		return RecalculateResult{}, uc.replayFailed(userID, err)
	}
	if err := ctx.Err(); err != nil {
		return RecalculateResult{}, err
	}

	rebuilt := scoring.Replay(uc.Rules, userID, events)
	replayed := len(events)
	tailAfter := snapshotID

	limit := uc.CommitRetryLimit
	if limit <= 0 {
		limit = defaultRecalcCommitRetryLimit
	}

	for attempt := 0; attempt < limit; attempt++ {
		if err := ctx.Err(); err != nil {
			return RecalculateResult{}, err
		}

		// reconcile events appended during the replay window
		tail, err := uc.Ledger.ListUserEventsAfter(ctx, userID, tailAfter)
		if err != nil {
			return RecalculateResult{}, uc.replayFailed(userID, err)
		}
		for _, event := range tail {
			scoring.Apply(uc.Rules, &rebuilt, event)
			if event.EventID > tailAfter {
				tailAfter = event.EventID
			}
		}
		replayed += len(tail)

		if uc.currentRun(userID) != run {
			metrics.RecalculationCompleted("superseded")
			logger.Info("recalculation abandoned, superseded",
				"event", "contribution_recalc_superseded",
				"module", "community-experience/contribution-engine",
				"layer", "application",
				"user_id", userID,
			)
			return RecalculateResult{}, domainerrors.ErrRecalcSuperseded
		}

		current, found, err := uc.States.GetState(ctx, userID)
		if err != nil {
			return RecalculateResult{}, uc.replayFailed(userID, err)
		}
		var expected int64
		previousTier := scoring.ClassifyTier(0)
		if found {
			expected = current.Version
			previousTier = scoring.ClassifyTier(current.Score())
		}

		committed := rebuilt
		committed.Version = expected + 1
		nextTier := scoring.ClassifyTier(committed.Score())

		var outbox []ports.OutboxMessage
		if nextTier != previousTier {
			outboxID, err := uc.IDGen.NewID(ctx)
			if err != nil {
				return RecalculateResult{}, err
			}
			message, err := newTierChangedMessage(outboxID, userID, previousTier, nextTier, committed.Score(), committed.UpdatedAt)
			if err != nil {
				return RecalculateResult{}, err
			}
			outbox = append(outbox, message)
		}

		err = uc.States.CompareAndSwapState(ctx, committed, expected, outbox)
		if errors.Is(err, domainerrors.ErrVersionConflict) {
			metrics.VersionConflict()
			continue
		}
		if err != nil {
			return RecalculateResult{}, uc.replayFailed(userID, err)
		}

		if uc.Leaderboard != nil {
			if err := uc.Leaderboard.UpdateScore(ctx, userID, committed.Score()); err != nil {
				logger.Warn("leaderboard index update failed",
					"event", "contribution_leaderboard_update_failed",
					"module", "community-experience/contribution-engine",
					"layer", "application",
					"user_id", userID,
					"error", err.Error(),
				)
			}
		}

		metrics.RecalculationCompleted("committed")
		logger.Info("recalculation committed",
			"event", "contribution_recalc_committed",
			"module", "community-experience/contribution-engine",
			"layer", "application",
			"user_id", userID,
			"replayed_events", replayed,
			"score", committed.Score(),
			"tier", string(nextTier),
			"version", committed.Version,
		)
		return RecalculateResult{
			State:       committed,
			Tier:        nextTier,
			TierChanged: nextTier != previousTier,
			Replayed:    replayed,
		}, nil
	}

	metrics.RecalculationCompleted("conflict")
	return RecalculateResult{}, domainerrors.ErrVersionConflict
}

func (uc *RecalculateUseCase) beginRun(userID string) uint64 {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.runs == nil {
		uc.runs = make(map[string]uint64)
	}
	uc.runs[userID]++
	return uc.runs[userID]
}

func (uc *RecalculateUseCase) currentRun(userID string) uint64 {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.runs[userID]
}

// replayFailed wraps storage errors so callers can tell a failed replay
// (prior state untouched) from a validation problem.
func (uc *RecalculateUseCase) replayFailed(userID string, err error) error {
	application.ResolveLogger(uc.Logger).Error("recalculation replay failed",
		"event", "contribution_recalc_failed",
		"module", "community-experience/contribution-engine",
		"layer", "application",
		"user_id", userID,
		"error", err.Error(),
	)
	return fmt.Errorf("%w: %v", domainerrors.ErrReplayFailed, err)
}
