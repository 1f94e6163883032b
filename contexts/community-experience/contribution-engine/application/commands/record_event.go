package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "paperportal/contexts/community-experience/contribution-engine/application"
	"paperportal/contexts/community-experience/contribution-engine/domain/entities"
	domainerrors "paperportal/contexts/community-experience/contribution-engine/domain/errors"
	"paperportal/contexts/community-experience/contribution-engine/domain/scoring"
	"paperportal/contexts/community-experience/contribution-engine/ports"
)

const defaultCASRetryLimit = 5

// RecordEventCommand appends one scoring-relevant action to the ledger and
// folds it into the user's materialized state.
type RecordEventCommand struct {
	UserID         string
	Kind           entities.EventKind
	SubjectRef     string
	OccurredAt     time.Time
	IdempotencyKey string
}

// VoteTransitionCommand records one atomic change of a voter's logical state
// on a subject owned by UserID (the credited recipient).
type VoteTransitionCommand struct {
	UserID         string
	SubjectRef     string
	From           entities.VoteState
	To             entities.VoteState
	OccurredAt     time.Time
	IdempotencyKey string
}

// BookmarkTransitionCommand records a bookmark being set or removed on a
// subject owned by UserID.
type BookmarkTransitionCommand struct {
	UserID         string
	SubjectRef     string
	Bookmarked     bool
	OccurredAt     time.Time
	IdempotencyKey string
}

// RecordResult returns the appended event, the committed state, and the tier
// derived from it.
type RecordResult struct {
	Event       entities.ContributionEvent
	State       entities.UserContributionState
	Tier        scoring.Tier
	TierChanged bool
	Replayed    bool
}

// RecordUseCase is the incremental scoring path: ledger append followed by a
// compare-and-swap fold into UserContributionState. Per-user serialization
// comes from the optimistic version counter, never from a lock, so distinct
// users never contend.
type RecordUseCase struct {
	Ledger         ports.EventLedger
	States         ports.StateRepository
	Idempotency    ports.IdempotencyStore
	Leaderboard    ports.LeaderboardIndex
	Rules          *scoring.RuleTable
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	Metrics        ports.Metrics
	CASRetryLimit  int
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func (uc RecordUseCase) RecordEvent(ctx context.Context, cmd RecordEventCommand) (RecordResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" || cmd.OccurredAt.IsZero() || strings.TrimSpace(string(cmd.Kind)) == "" {
		logger.Warn("contribution event rejected",
			"event", "contribution_event_rejected",
			"module", "community-experience/contribution-engine",
			"layer", "application",
			"user_id", userID,
			"kind", string(cmd.Kind),
		)
		return RecordResult{}, domainerrors.ErrInvalidEventInput
	}

	event := entities.ContributionEvent{
		UserID:     userID,
		Kind:       cmd.Kind,
		SubjectRef: strings.TrimSpace(cmd.SubjectRef),
		OccurredAt: cmd.OccurredAt.UTC(),
	}
	return uc.record(ctx, event, strings.TrimSpace(cmd.IdempotencyKey))
}

func (uc RecordUseCase) RecordVoteTransition(ctx context.Context, cmd VoteTransitionCommand) (RecordResult, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" || cmd.OccurredAt.IsZero() {
		return RecordResult{}, domainerrors.ErrInvalidEventInput
	}
	if _, ok := entities.ParseVoteState(string(cmd.From)); !ok {
		return RecordResult{}, domainerrors.ErrInvalidTransition
	}
	if _, ok := entities.ParseVoteState(string(cmd.To)); !ok {
		return RecordResult{}, domainerrors.ErrInvalidTransition
	}
	if cmd.From == cmd.To {
		return RecordResult{}, domainerrors.ErrInvalidTransition
	}

	kind := entities.KindForVoteState(cmd.To)
	if cmd.To == entities.VoteStateNone {
		kind = entities.KindVoteRetracted
	}
	event := entities.ContributionEvent{
		UserID:     userID,
		Kind:       kind,
		PrevKind:   entities.KindForVoteState(cmd.From),
		SubjectRef: strings.TrimSpace(cmd.SubjectRef),
		OccurredAt: cmd.OccurredAt.UTC(),
	}
	return uc.record(ctx, event, strings.TrimSpace(cmd.IdempotencyKey))
}

func (uc RecordUseCase) RecordBookmarkTransition(ctx context.Context, cmd BookmarkTransitionCommand) (RecordResult, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" || cmd.OccurredAt.IsZero() {
		return RecordResult{}, domainerrors.ErrInvalidEventInput
	}

	event := entities.ContributionEvent{
		UserID:     userID,
		SubjectRef: strings.TrimSpace(cmd.SubjectRef),
		OccurredAt: cmd.OccurredAt.UTC(),
	}
	if cmd.Bookmarked {
		event.Kind = entities.KindBookmarkReceived
	} else {
		event.Kind = entities.KindBookmarkRetracted
		event.PrevKind = entities.KindBookmarkReceived
	}
	return uc.record(ctx, event, strings.TrimSpace(cmd.IdempotencyKey))
}

// record stamps the rule version, appends, then folds under CAS retry.
func (uc RecordUseCase) record(ctx context.Context, event entities.ContributionEvent, idempotencyKey string) (RecordResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	metrics := application.ResolveMetrics(uc.Metrics)
	now := uc.now()

	rules := uc.Rules.VersionAt(event.OccurredAt)
	event.RuleVersion = rules.Version
	if !knownKind(event.Kind) {
		// scored as zero, never fatal; new kinds may roll out before rules
		logger.Warn("contribution event kind has no scoring rule",
			"event", "contribution_rule_miss",
			"module", "community-experience/contribution-engine",
			"layer", "application",
			"user_id", event.UserID,
			"kind", string(event.Kind),
			"rule_version", rules.Version,
		)
	}

	requestHash := hashEvent(event)
	if idempotencyKey != "" {
		if record, found, err := uc.Idempotency.Get(ctx, idempotencyKey, now); err != nil {
			return RecordResult{}, err
		} else if found {
			if record.RequestHash != requestHash {
				return RecordResult{}, domainerrors.ErrIdempotencyConflict
			}
			state, ok, err := uc.States.GetState(ctx, event.UserID)
			if err != nil {
				return RecordResult{}, err
			}
			if !ok {
				return RecordResult{}, domainerrors.ErrStateNotFound
			}
			event.EventID = record.EventID
			return RecordResult{
				Event:    event,
				State:    state,
				Tier:     scoring.ClassifyTier(state.Score()),
				Replayed: true,
			}, nil
		}
	}

	appended, err := uc.Ledger.AppendEvent(ctx, event)
	if err != nil {
		logger.Error("contribution ledger append failed",
			"event", "contribution_ledger_append_failed",
			"module", "community-experience/contribution-engine",
			"layer", "application",
			"user_id", event.UserID,
			"kind", string(event.Kind),
			"error", err.Error(),
		)
		return RecordResult{}, err
	}

	result, err := uc.fold(ctx, appended)
	if err != nil {
		return RecordResult{}, err
	}
	metrics.EventRecorded(string(appended.Kind))

	if idempotencyKey != "" {
		if err := uc.Idempotency.Put(ctx, ports.IdempotencyRecord{
			Key:         idempotencyKey,
			RequestHash: requestHash,
			EventID:     appended.EventID,
			ExpiresAt:   now.Add(uc.idempotencyTTL()),
		}); err != nil {
			return RecordResult{}, err
		}
	}

	logger.Info("contribution event recorded",
		"event", "contribution_event_recorded",
		"module", "community-experience/contribution-engine",
		"layer", "application",
		"user_id", appended.UserID,
		"kind", string(appended.Kind),
		"event_id", appended.EventID,
		"score", result.State.Score(),
		"tier", string(result.Tier),
		"tier_changed", result.TierChanged,
	)
	return result, nil
}

// fold runs the bounded compare-and-swap loop for one appended event.
func (uc RecordUseCase) fold(ctx context.Context, event entities.ContributionEvent) (RecordResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	metrics := application.ResolveMetrics(uc.Metrics)

	limit := uc.CASRetryLimit
	if limit <= 0 {
		limit = defaultCASRetryLimit
	}

	for attempt := 0; attempt < limit; attempt++ {
		if err := ctx.Err(); err != nil {
			return RecordResult{}, err
		}

		current, found, err := uc.States.GetState(ctx, event.UserID)
		if err != nil {
			return RecordResult{}, err
		}

		var expected int64
		next := entities.UserContributionState{UserID: event.UserID}
		previousTier := scoring.ClassifyTier(0)
		if found {
			expected = current.Version
			next = current
			previousTier = scoring.ClassifyTier(current.Score())
		}

		scoring.Apply(uc.Rules, &next, event)
		next.Version = expected + 1
		nextTier := scoring.ClassifyTier(next.Score())

		var outbox []ports.OutboxMessage
		if nextTier != previousTier {
			outboxID, err := uc.IDGen.NewID(ctx)
			if err != nil {
				return RecordResult{}, err
			}
			message, err := newTierChangedMessage(outboxID, event.UserID, previousTier, nextTier, next.Score(), event.OccurredAt)
			if err != nil {
				return RecordResult{}, err
			}
			outbox = append(outbox, message)
		}

		err = uc.States.CompareAndSwapState(ctx, next, expected, outbox)
		if errors.Is(err, domainerrors.ErrVersionConflict) {
			metrics.VersionConflict()
			continue
		}
		if err != nil {
			return RecordResult{}, err
		}

		uc.updateLeaderboard(ctx, event.UserID, next.Score())
		return RecordResult{
			Event:       event,
			State:       next,
			Tier:        nextTier,
			TierChanged: nextTier != previousTier,
		}, nil
	}

	logger.Warn("contribution fold retries exhausted",
		"event", "contribution_fold_conflict",
		"module", "community-experience/contribution-engine",
		"layer", "application",
		"user_id", event.UserID,
		"event_id", event.EventID,
		"attempts", limit,
	)
	return RecordResult{}, domainerrors.ErrVersionConflict
}

// updateLeaderboard is best effort: the index is a cache of committed
// scores, the next commit heals a missed write.
func (uc RecordUseCase) updateLeaderboard(ctx context.Context, userID string, score int) {
	if uc.Leaderboard == nil {
		return
	}
	if err := uc.Leaderboard.UpdateScore(ctx, userID, score); err != nil {
		application.ResolveLogger(uc.Logger).Warn("leaderboard index update failed",
			"event", "contribution_leaderboard_update_failed",
			"module", "community-experience/contribution-engine",
			"layer", "application",
			"user_id", userID,
			"error", err.Error(),
		)
	}
}

func (uc RecordUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (uc RecordUseCase) idempotencyTTL() time.Duration {
	if uc.IdempotencyTTL > 0 {
		return uc.IdempotencyTTL
	}
	return 24 * time.Hour
}

func hashEvent(event entities.ContributionEvent) string {
	payload, _ := json.Marshal(map[string]any{
		"user_id":     event.UserID,
		"kind":        string(event.Kind),
		"prev_kind":   string(event.PrevKind),
		"subject_ref": event.SubjectRef,
		"occurred_at": event.OccurredAt.UTC().Format(time.RFC3339Nano),
	})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func knownKind(kind entities.EventKind) bool {
	switch kind {
	case entities.KindPostCreated, entities.KindSolutionCreated, entities.KindCommentCreated,
		entities.KindUpvoteReceived, entities.KindDownvoteReceived,
		entities.KindBookmarkReceived, entities.KindViewReceived,
		entities.KindVoteRetracted, entities.KindBookmarkRetracted:
		return true
	default:
		return false
	}
}
