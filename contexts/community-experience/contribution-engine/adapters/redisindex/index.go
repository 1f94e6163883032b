package redisindex

import (
	"context"
	"log/slog"
	"strings"

	"paperportal/contexts/community-experience/contribution-engine/ports"

	"github.com/redis/go-redis/v9"
)

const leaderboardKey = "contribution:leaderboard"

// Index keeps the ranked contribution scores in a Redis sorted set. It is a
// read-model cache: commits update it best effort and a recalculation
// rewrites a user's entry, so a lost write heals on the next commit.
type Index struct {
	client *redis.Client
	logger *slog.Logger
}

func NewIndex(client *redis.Client, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{client: client, logger: logger}
}

func (i *Index) UpdateScore(ctx context.Context, userID string, score int) error {
	err := i.client.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  float64(score),
		Member: strings.TrimSpace(userID),
	}).Err()
	if err != nil {
		i.logger.Error("leaderboard zadd failed",
			"event", "contribution_redis_zadd_failed",
			"module", "community-experience/contribution-engine",
			"layer", "adapter",
			"user_id", strings.TrimSpace(userID),
			"error", err.Error(),
		)
	}
	return err
}

func (i *Index) Top(ctx context.Context, offset int, limit int) ([]ports.LeaderboardEntry, error) {
	members, err := i.client.ZRevRangeWithScores(ctx, leaderboardKey, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]ports.LeaderboardEntry, 0, len(members))
	for idx, member := range members {
		userID, _ := member.Member.(string)
		entries = append(entries, ports.LeaderboardEntry{
			Rank:   offset + idx + 1,
			UserID: userID,
			Score:  int(member.Score),
		})
	}
	return entries, nil
}

func (i *Index) Size(ctx context.Context) (int, error) {
	count, err := i.client.ZCard(ctx, leaderboardKey).Result()
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

var _ ports.LeaderboardIndex = (*Index)(nil)
