package workers

import (
	"context"
	"encoding/json"
	"log/slog"

	application "paperportal/contexts/community-experience/contribution-engine/application"
	"paperportal/contexts/community-experience/contribution-engine/ports"
)

// TierChangedConsumer subscribes to tier transitions on behalf of the
// notification component. Delivery and formatting belong to that component;
// this consumer only acknowledges and logs, keeping the engine's side of the
// contract observable end to end.
type TierChangedConsumer struct {
	Subscriber    ports.EventSubscriber
	Topic         string
	ConsumerGroup string
	Logger        *slog.Logger
}

func (c TierChangedConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	topic := c.Topic
	if topic == "" {
		topic = "contribution.tier_changed"
	}

	return c.Subscriber.Subscribe(ctx, topic, c.ConsumerGroup, func(ctx context.Context, event ports.EventEnvelope) error {
		var payload struct {
			UserID       string `json:"user_id"`
			PreviousTier string `json:"previous_tier"`
			NewTier      string `json:"new_tier"`
			Score        int    `json:"score"`
		}
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			logger.Error("tier change payload decode failed",
				"event", "contribution_tier_changed_decode_failed",
				"module", "community-experience/contribution-engine",
				"layer", "worker",
				"event_id", event.EventID,
				"error", err.Error(),
			)
			return err
		}
		logger.Info("tier change delivered to notification boundary",
			"event", "contribution_tier_changed_consumed",
			"module", "community-experience/contribution-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"user_id", payload.UserID,
			"previous_tier", payload.PreviousTier,
			"new_tier", payload.NewTier,
			"score", payload.Score,
		)
		return nil
	})
}
