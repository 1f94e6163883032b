package postgresadapter

import (
	"strings"
	"time"

	"paperportal/contexts/community-experience/contribution-engine/domain/entities"
	"paperportal/contexts/community-experience/contribution-engine/ports"
)

type eventModel struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      string    `gorm:"column:user_id;index:idx_contribution_events_user"`
	Kind        string    `gorm:"column:kind"`
	PrevKind    string    `gorm:"column:prev_kind"`
	SubjectRef  string    `gorm:"column:subject_ref"`
	RuleVersion int       `gorm:"column:rule_version"`
	OccurredAt  time.Time `gorm:"column:occurred_at;index:idx_contribution_events_user"`
}

func (eventModel) TableName() string {
	return "contribution_events"
}

func eventModelFromEntity(event entities.ContributionEvent) eventModel {
	return eventModel{
		ID:          event.EventID,
		UserID:      strings.TrimSpace(event.UserID),
		Kind:        string(event.Kind),
		PrevKind:    string(event.PrevKind),
		SubjectRef:  strings.TrimSpace(event.SubjectRef),
		RuleVersion: event.RuleVersion,
		OccurredAt:  event.OccurredAt.UTC(),
	}
}

func (m eventModel) toEntity() entities.ContributionEvent {
	return entities.ContributionEvent{
		EventID:     m.ID,
		UserID:      m.UserID,
		Kind:        entities.EventKind(m.Kind),
		PrevKind:    entities.EventKind(m.PrevKind),
		SubjectRef:  m.SubjectRef,
		RuleVersion: m.RuleVersion,
		OccurredAt:  m.OccurredAt.UTC(),
	}
}

func toEventEntities(rows []eventModel) []entities.ContributionEvent {
	items := make([]entities.ContributionEvent, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

type stateModel struct {
	UserID        string    `gorm:"column:user_id;primaryKey"`
	ScoreMillis   int64     `gorm:"column:score_millis"`
	CurrentStreak int       `gorm:"column:current_streak"`
	LongestStreak int       `gorm:"column:longest_streak"`
	LastActiveDay time.Time `gorm:"column:last_active_day"`
	Version       int64     `gorm:"column:version"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (stateModel) TableName() string {
	return "user_contribution_states"
}

func stateModelFromEntity(state entities.UserContributionState) stateModel {
	return stateModel{
		UserID:        strings.TrimSpace(state.UserID),
		ScoreMillis:   state.ScoreMillis,
		CurrentStreak: state.CurrentStreak,
		LongestStreak: state.LongestStreak,
		LastActiveDay: state.LastActiveDay.UTC(),
		Version:       state.Version,
		UpdatedAt:     state.UpdatedAt.UTC(),
	}
}

func (m stateModel) toEntity() entities.UserContributionState {
	return entities.UserContributionState{
		UserID:        m.UserID,
		ScoreMillis:   m.ScoreMillis,
		CurrentStreak: m.CurrentStreak,
		LongestStreak: m.LongestStreak,
		LastActiveDay: m.LastActiveDay.UTC(),
		Version:       m.Version,
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "contribution_outbox"
}

func outboxModelFromMessage(message ports.OutboxMessage) outboxModel {
	row := outboxModel{
		OutboxID:     strings.TrimSpace(message.OutboxID),
		EventType:    message.EventType,
		PartitionKey: message.PartitionKey,
		Payload:      message.Payload,
		Status:       message.Status,
		CreatedAt:    message.CreatedAt.UTC(),
		PublishedAt:  message.PublishedAt,
	}
	if row.Status == "" {
		row.Status = outboxStatusPending
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m outboxModel) toMessage() ports.OutboxMessage {
	return ports.OutboxMessage{
		OutboxID:     m.OutboxID,
		EventType:    m.EventType,
		PartitionKey: m.PartitionKey,
		Payload:      m.Payload,
		Status:       m.Status,
		CreatedAt:    m.CreatedAt.UTC(),
		PublishedAt:  m.PublishedAt,
	}
}

type idempotencyModel struct {
	Key         string    `gorm:"column:key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	EventID     uint64    `gorm:"column:event_id"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "contribution_idempotency"
}
