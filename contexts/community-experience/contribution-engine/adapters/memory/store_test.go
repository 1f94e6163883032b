package memory_test

import (
	"context"
	"testing"
	"time"

	"paperportal/contexts/community-experience/contribution-engine/adapters/memory"
	"paperportal/contexts/community-experience/contribution-engine/domain/entities"
	domainerrors "paperportal/contexts/community-experience/contribution-engine/domain/errors"
	"paperportal/contexts/community-experience/contribution-engine/ports"
)

func TestAppendAssignsMonotonicEventIDs(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	at := time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC)

	first, err := store.AppendEvent(ctx, entities.ContributionEvent{UserID: "u1", Kind: entities.KindPostCreated, OccurredAt: at})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	second, err := store.AppendEvent(ctx, entities.ContributionEvent{UserID: "u1", Kind: entities.KindCommentCreated, OccurredAt: at.Add(time.Minute)})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	if first.EventID != 1 || second.EventID != 2 {
		t.Fatalf("expected event ids 1 and 2, got %d and %d", first.EventID, second.EventID)
	}

	latest, err := store.LatestEventID(ctx, "u1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest != 2 {
		t.Fatalf("expected latest event id 2, got %d", latest)
	}
}

func TestListUserEventsReplayOrderAndBounds(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	at := time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC)

	// Appended out of occurred_at order on purpose.
	if _, err := store.AppendEvent(ctx, entities.ContributionEvent{UserID: "u1", Kind: entities.KindCommentCreated, OccurredAt: at.Add(time.Hour)}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := store.AppendEvent(ctx, entities.ContributionEvent{UserID: "u1", Kind: entities.KindPostCreated, OccurredAt: at}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := store.AppendEvent(ctx, entities.ContributionEvent{UserID: "u2", Kind: entities.KindPostCreated, OccurredAt: at}); err != nil {
		t.Fatalf("append: %v", err)
	}

	events, err := store.ListUserEventsThrough(ctx, "u1", 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events for u1, got %d", len(events))
	}
	if events[0].Kind != entities.KindPostCreated || events[1].Kind != entities.KindCommentCreated {
		t.Fatalf("events not in occurred_at order: %s then %s", events[0].Kind, events[1].Kind)
	}

	tail, err := store.ListUserEventsAfter(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("list after: %v", err)
	}
	if len(tail) != 1 || tail[0].EventID != 2 {
		t.Fatalf("expected only event 2 in tail, got %+v", tail)
	}
}

func TestCompareAndSwapStateVersioning(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	fresh := entities.UserContributionState{UserID: "u1", ScoreMillis: 5000, Version: 1}
	if err := store.CompareAndSwapState(ctx, fresh, 0, nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	// A second create against the same user loses.
	if err := store.CompareAndSwapState(ctx, fresh, 0, nil); err != domainerrors.ErrVersionConflict {
		t.Fatalf("expected version conflict on duplicate create, got %v", err)
	}

	// A stale expected version loses.
	next := fresh
	next.Version = 2
	if err := store.CompareAndSwapState(ctx, next, 5, nil); err != domainerrors.ErrVersionConflict {
		t.Fatalf("expected version conflict on stale swap, got %v", err)
	}

	if err := store.CompareAndSwapState(ctx, next, 1, nil); err != nil {
		t.Fatalf("swap: %v", err)
	}
	state, found, err := store.GetState(ctx, "u1")
	if err != nil || !found {
		t.Fatalf("get state: found=%v err=%v", found, err)
	}
	if state.Version != 2 {
		t.Fatalf("expected committed version 2, got %d", state.Version)
	}
}

func TestOutboxRidesTheStateCommit(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	message := ports.OutboxMessage{OutboxID: "ob-1", EventType: "contribution.tier_changed", Status: "pending"}
	state := entities.UserContributionState{UserID: "u1", Version: 1}
	if err := store.CompareAndSwapState(ctx, state, 0, []ports.OutboxMessage{message}); err != nil {
		t.Fatalf("create with outbox: %v", err)
	}

	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].OutboxID != "ob-1" {
		t.Fatalf("expected one pending row, got %+v", pending)
	}

	if err := store.MarkOutboxPublished(ctx, "ob-1", time.Now()); err != nil {
		t.Fatalf("mark published: %v", err)
	}
	pending, err = store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty pending set after publish, got %+v", pending)
	}
}

func TestIdempotencyRecordsExpire(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	now := time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC)

	record := ports.IdempotencyRecord{Key: "k1", RequestHash: "h1", EventID: 7, ExpiresAt: now.Add(time.Hour)}
	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, found, err := store.Get(ctx, "k1", now)
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if got.EventID != 7 {
		t.Fatalf("expected event id 7, got %d", got.EventID)
	}

	if _, found, _ := store.Get(ctx, "k1", now.Add(2*time.Hour)); found {
		t.Fatalf("expired record must not be returned")
	}
}

func TestLeaderboardRanksByScoreThenUserID(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	for userID, score := range map[string]int{"alice": 150, "bob": 500, "carol": 150, "dave": 20} {
		if err := store.UpdateScore(ctx, userID, score); err != nil {
			t.Fatalf("update score: %v", err)
		}
	}

	top, err := store.Top(ctx, 0, 3)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(top))
	}
	if top[0].UserID != "bob" || top[0].Rank != 1 {
		t.Fatalf("expected bob first, got %+v", top[0])
	}
	if top[1].UserID != "alice" || top[2].UserID != "carol" {
		t.Fatalf("ties must break by user id: %+v", top[1:])
	}

	page, err := store.Top(ctx, 3, 3)
	if err != nil {
		t.Fatalf("top offset: %v", err)
	}
	if len(page) != 1 || page[0].UserID != "dave" || page[0].Rank != 4 {
		t.Fatalf("expected dave ranked 4 on second page, got %+v", page)
	}

	size, err := store.Size(ctx)
	if err != nil || size != 4 {
		t.Fatalf("expected size 4, got %d err=%v", size, err)
	}
}
