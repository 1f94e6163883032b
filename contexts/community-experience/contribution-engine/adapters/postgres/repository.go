package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"paperportal/contexts/community-experience/contribution-engine/domain/entities"
	domainerrors "paperportal/contexts/community-experience/contribution-engine/domain/errors"
	"paperportal/contexts/community-experience/contribution-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Repository persists the ledger, the materialized state, the outbox, and
// idempotency records. The ledger table is insert-only; state commits are
// compare-and-swap on the version column with outbox rows riding in the same
// transaction.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

// AutoMigrate creates the engine's tables; used by the sqlite dev mode and
// test databases.
func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&eventModel{},
		&stateModel{},
		&outboxModel{},
		&idempotencyModel{},
	)
}

func (r *Repository) AppendEvent(ctx context.Context, event entities.ContributionEvent) (entities.ContributionEvent, error) {
	row := eventModelFromEntity(event)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return entities.ContributionEvent{}, r.logError("contribution_repo_append_event_failed", err,
			"user_id", event.UserID,
			"kind", string(event.Kind),
		)
	}
	event.EventID = row.ID
	return event, nil
}

func (r *Repository) ListUserEventsThrough(ctx context.Context, userID string, maxEventID uint64) ([]entities.ContributionEvent, error) {
	var rows []eventModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Where("id <= ?", maxEventID).
		Order("occurred_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("contribution_repo_list_events_failed", err, "user_id", strings.TrimSpace(userID))
	}
	return toEventEntities(rows), nil
}

func (r *Repository) ListUserEventsAfter(ctx context.Context, userID string, afterEventID uint64) ([]entities.ContributionEvent, error) {
	var rows []eventModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Where("id > ?", afterEventID).
		Order("occurred_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("contribution_repo_list_tail_failed", err, "user_id", strings.TrimSpace(userID))
	}
	return toEventEntities(rows), nil
}

func (r *Repository) LatestEventID(ctx context.Context, userID string) (uint64, error) {
	var latest uint64
	err := r.db.WithContext(ctx).
		Model(&eventModel{}).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Select("COALESCE(MAX(id), 0)").
		Scan(&latest).Error
	if err != nil {
		return 0, r.logError("contribution_repo_latest_event_id_failed", err, "user_id", strings.TrimSpace(userID))
	}
	return latest, nil
}

func (r *Repository) GetState(ctx context.Context, userID string) (entities.UserContributionState, bool, error) {
	var row stateModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.UserContributionState{}, false, nil
		}
		return entities.UserContributionState{}, false, r.logError("contribution_repo_get_state_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) CompareAndSwapState(
	ctx context.Context,
	state entities.UserContributionState,
	expectedVersion int64,
	outbox []ports.OutboxMessage,
) error {
	row := stateModelFromEntity(state)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if expectedVersion == 0 {
			if err := tx.Create(&row).Error; err != nil {
				if isUniqueViolation(err) {
					return domainerrors.ErrVersionConflict
				}
				return err
			}
		} else {
			update := tx.Model(&stateModel{}).
				Where("user_id = ? AND version = ?", row.UserID, expectedVersion).
				Updates(map[string]any{
					"score_millis":    row.ScoreMillis,
					"current_streak":  row.CurrentStreak,
					"longest_streak":  row.LongestStreak,
					"last_active_day": row.LastActiveDay,
					"version":         row.Version,
					"updated_at":      row.UpdatedAt,
				})
			if update.Error != nil {
				return update.Error
			}
			if update.RowsAffected == 0 {
				return domainerrors.ErrVersionConflict
			}
		}

		for _, message := range outbox {
			outboxRow := outboxModelFromMessage(message)
			if err := tx.Create(&outboxRow).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrVersionConflict) {
			return domainerrors.ErrVersionConflict
		}
		return r.logError("contribution_repo_cas_state_failed", err,
			"user_id", state.UserID,
			"expected_version", expectedVersion,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("contribution_repo_list_outbox_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toMessage())
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	published := publishedAt.UTC()
	err := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": &published,
		}).Error
	if err != nil {
		return r.logError("contribution_repo_mark_outbox_failed", err, "outbox_id", strings.TrimSpace(outboxID))
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("key = ?", strings.TrimSpace(key)).
		Where("expires_at > ?", now.UTC()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, r.logError("contribution_repo_get_idempotency_failed", err)
	}
	return ports.IdempotencyRecord{
		Key:         row.Key,
		RequestHash: row.RequestHash,
		EventID:     row.EventID,
		ExpiresAt:   row.ExpiresAt.UTC(),
	}, true, nil
}

func (r *Repository) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:         strings.TrimSpace(record.Key),
		RequestHash: record.RequestHash,
		EventID:     record.EventID,
		ExpiresAt:   record.ExpiresAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return r.logError("contribution_repo_put_idempotency_failed", err)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "community-experience/contribution-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("contribution repository operation failed", fields...)
	return err
}

// SystemClock satisfies ports.Clock with wall time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// UUIDGenerator satisfies ports.IDGenerator.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// sqlite dev mode surfaces constraint failures through gorm
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

var _ ports.EventLedger = (*Repository)(nil)
var _ ports.StateRepository = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.IdempotencyStore = (*Repository)(nil)
