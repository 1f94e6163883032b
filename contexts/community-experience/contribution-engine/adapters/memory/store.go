package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"paperportal/contexts/community-experience/contribution-engine/domain/entities"
	domainerrors "paperportal/contexts/community-experience/contribution-engine/domain/errors"
	"paperportal/contexts/community-experience/contribution-engine/ports"

	"github.com/google/uuid"
)

// Store backs every port of the contribution engine for tests and the local
// development mode: ledger, materialized state, outbox, idempotency records,
// and the leaderboard index.
type Store struct {
	mu sync.RWMutex

	nextEventID uint64
	events      []entities.ContributionEvent
	states      map[string]entities.UserContributionState
	outbox      []ports.OutboxMessage
	idempotency map[string]ports.IdempotencyRecord
	scores      map[string]int
}

func NewStore() *Store {
	return &Store{
		states:      make(map[string]entities.UserContributionState),
		idempotency: make(map[string]ports.IdempotencyRecord),
		scores:      make(map[string]int),
	}
}

func (s *Store) AppendEvent(_ context.Context, event entities.ContributionEvent) (entities.ContributionEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEventID++
	event.EventID = s.nextEventID
	event.OccurredAt = event.OccurredAt.UTC()
	s.events = append(s.events, event)
	return event, nil
}

func (s *Store) ListUserEventsThrough(_ context.Context, userID string, maxEventID uint64) ([]entities.ContributionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listUserEvents(userID, func(event entities.ContributionEvent) bool {
		return event.EventID <= maxEventID
	}), nil
}

func (s *Store) ListUserEventsAfter(_ context.Context, userID string, afterEventID uint64) ([]entities.ContributionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listUserEvents(userID, func(event entities.ContributionEvent) bool {
		return event.EventID > afterEventID
	}), nil
}

func (s *Store) LatestEventID(_ context.Context, userID string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest uint64
	for _, event := range s.events {
		if event.UserID == userID && event.EventID > latest {
			latest = event.EventID
		}
	}
	return latest, nil
}

// listUserEvents returns matching events in replay order: occurred_at
// ascending, event id as the tiebreaker. Callers hold the lock.
func (s *Store) listUserEvents(userID string, match func(entities.ContributionEvent) bool) []entities.ContributionEvent {
	items := make([]entities.ContributionEvent, 0)
	for _, event := range s.events {
		if event.UserID == userID && match(event) {
			items = append(items, event)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].OccurredAt.Equal(items[j].OccurredAt) {
			return items[i].EventID < items[j].EventID
		}
		return items[i].OccurredAt.Before(items[j].OccurredAt)
	})
	return items
}

func (s *Store) GetState(_ context.Context, userID string) (entities.UserContributionState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[strings.TrimSpace(userID)]
	return state, ok, nil
}

func (s *Store) CompareAndSwapState(
	_ context.Context,
	state entities.UserContributionState,
	expectedVersion int64,
	outbox []ports.OutboxMessage,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(state.UserID)
	current, found := s.states[key]
	if expectedVersion == 0 && found {
		return domainerrors.ErrVersionConflict
	}
	if expectedVersion != 0 && (!found || current.Version != expectedVersion) {
		return domainerrors.ErrVersionConflict
	}

	s.states[key] = state
	s.outbox = append(s.outbox, outbox...)
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]ports.OutboxMessage, 0, limit)
	for _, row := range s.outbox {
		if row.Status != "pending" {
			continue
		}
		items = append(items, row)
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.outbox {
		if s.outbox[i].OutboxID == outboxID {
			published := publishedAt.UTC()
			s.outbox[i].Status = "published"
			s.outbox[i].PublishedAt = &published
			return nil
		}
	}
	return nil
}

// OutboxMessages snapshots the outbox for test assertions.
func (s *Store) OutboxMessages() []ports.OutboxMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ports.OutboxMessage(nil), s.outbox...)
}

func (s *Store) Get(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.idempotency[key]
	if !ok || now.After(record.ExpiresAt) {
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idempotency[record.Key] = record
	return nil
}

func (s *Store) UpdateScore(_ context.Context, userID string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[strings.TrimSpace(userID)] = score
	return nil
}

func (s *Store) Top(_ context.Context, offset int, limit int) ([]ports.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]ports.LeaderboardEntry, 0, len(s.scores))
	for userID, score := range s.scores {
		entries = append(entries, ports.LeaderboardEntry{UserID: userID, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score == entries[j].Score {
			return entries[i].UserID < entries[j].UserID
		}
		return entries[i].Score > entries[j].Score
	})

	if offset >= len(entries) {
		return []ports.LeaderboardEntry{}, nil
	}
	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}
	page := make([]ports.LeaderboardEntry, 0, end-offset)
	for i := offset; i < end; i++ {
		entry := entries[i]
		entry.Rank = i + 1
		page = append(page, entry)
	}
	return page, nil
}

func (s *Store) Size(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scores), nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.EventLedger = (*Store)(nil)
var _ ports.StateRepository = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.IdempotencyStore = (*Store)(nil)
var _ ports.LeaderboardIndex = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
