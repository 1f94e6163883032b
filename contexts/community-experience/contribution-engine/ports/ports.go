package ports

import (
	"context"
	"encoding/json"
	"time"

	"paperportal/contexts/community-experience/contribution-engine/domain/entities"
)

// EventLedger is the append-only record of contribution-relevant actions and
// the source of truth for every score. Append assigns the monotonically
// increasing event id; listings are ordered by occurred_at with event id as
// the tiebreaker, which is the replay order.
type EventLedger interface {
	AppendEvent(ctx context.Context, event entities.ContributionEvent) (entities.ContributionEvent, error)
	// ListUserEventsThrough returns the user's events with id <= maxEventID.
	ListUserEventsThrough(ctx context.Context, userID string, maxEventID uint64) ([]entities.ContributionEvent, error)
	// ListUserEventsAfter returns the user's events with id > afterEventID.
	ListUserEventsAfter(ctx context.Context, userID string, afterEventID uint64) ([]entities.ContributionEvent, error)
	LatestEventID(ctx context.Context, userID string) (uint64, error)
}

// StateRepository holds the materialized per-user fold. Commits are
// compare-and-swap on the version counter: expectedVersion 0 creates the
// row, anything else must match the stored version or the commit fails with
// domain/errors.ErrVersionConflict. Outbox rows ride in the same commit.
type StateRepository interface {
	GetState(ctx context.Context, userID string) (entities.UserContributionState, bool, error)
	CompareAndSwapState(
		ctx context.Context,
		state entities.UserContributionState,
		expectedVersion int64,
		outbox []OutboxMessage,
	) error
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	Status       string
	CreatedAt    time.Time
	PublishedAt  *time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type IdempotencyRecord struct {
	Key         string
	RequestHash string
	EventID     uint64
	ExpiresAt   time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
}

// LeaderboardEntry is one row of the score index, tier derived at read time.
type LeaderboardEntry struct {
	Rank   int
	UserID string
	Score  int
}

// LeaderboardIndex is the ranked score index kept alongside the state. It is
// a cache of committed scores, never authoritative; a stale entry is healed
// by the next commit or recalculation.
type LeaderboardIndex interface {
	UpdateScore(ctx context.Context, userID string, score int) error
	Top(ctx context.Context, offset int, limit int) ([]LeaderboardEntry, error)
	Size(ctx context.Context) (int, error)
}

// EventEnvelope is the bus shape consumed by downstream components such as
// the notification service.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	SourceService string          `json:"source_service"`
	OccurredAt    time.Time       `json:"occurred_at"`
	SchemaVersion int             `json:"schema_version"`
	PartitionKey  string          `json:"partition_key"`
	Data          json.RawMessage `json:"data"`
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, EventEnvelope) error) error
}

// Metrics is the counter surface the engine reports into; the prometheus
// adapter lives in the platform layer.
type Metrics interface {
	EventRecorded(kind string)
	VersionConflict()
	RecalculationCompleted(outcome string)
	OutboxPublished()
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
