package commands

import (
	"encoding/json"
	"time"

	"paperportal/contexts/community-experience/contribution-engine/domain/scoring"
	"paperportal/contexts/community-experience/contribution-engine/ports"
)

const (
	// TopicTierChanged is consumed by the notification component; the engine
	// only emits, it never formats or delivers notifications.
	TopicTierChanged = "contribution.tier_changed"

	sourceService = "contribution-engine"
)

type tierChangedPayload struct {
	UserID       string `json:"user_id"`
	PreviousTier string `json:"previous_tier"`
	NewTier      string `json:"new_tier"`
	Score        int    `json:"score"`
}

// newTierChangedMessage builds the outbox row committed atomically with the
// state swap that crossed a tier boundary. Envelopes are partitioned by user
// so a consumer sees one user's transitions in order.
func newTierChangedMessage(
	outboxID string,
	userID string,
	previous scoring.Tier,
	next scoring.Tier,
	score int,
	occurredAt time.Time,
) (ports.OutboxMessage, error) {
	data, err := json.Marshal(tierChangedPayload{
		UserID:       userID,
		PreviousTier: string(previous),
		NewTier:      string(next),
		Score:        score,
	})
	if err != nil {
		return ports.OutboxMessage{}, err
	}
	payload, err := json.Marshal(ports.EventEnvelope{
		EventID:       outboxID,
		EventType:     TopicTierChanged,
		SourceService: sourceService,
		OccurredAt:    occurredAt.UTC(),
		SchemaVersion: 1,
		PartitionKey:  userID,
		Data:          data,
	})
	if err != nil {
		return ports.OutboxMessage{}, err
	}
	return ports.OutboxMessage{
		OutboxID:     outboxID,
		EventType:    TopicTierChanged,
		PartitionKey: userID,
		Payload:      payload,
		Status:       "pending",
		CreatedAt:    occurredAt.UTC(),
	}, nil
}
