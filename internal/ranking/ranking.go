// Package ranking mirrors topic hotness into a Redis sorted set so the
// front page can be served without ordering the topics table. The sorted
// set is a cache of the hotness column, not a second source of truth: the
// engine pushes a new score after every hotness recompute.
package ranking

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// hotnessKey is the sorted set holding topic IDs scored by hotness.
const hotnessKey = "topics:hotness"

// Leaderboard maintains the hotness ranking in Redis.
type Leaderboard struct {
	client rueidis.Client
	logger *zap.Logger
}

// NewLeaderboard creates a leaderboard on the given Redis client.
func NewLeaderboard(client rueidis.Client, logger *zap.Logger) *Leaderboard {
	return &Leaderboard{
		client: client,
		logger: logger.Named("ranking"),
	}
}

// SetHotness records the topic's current hotness score.
func (l *Leaderboard) SetHotness(ctx context.Context, topicID int64, hotness float64) error {
	err := l.client.Do(ctx, l.client.B().Zadd().
		Key(hotnessKey).
		ScoreMember().
		ScoreMember(hotness, strconv.FormatInt(topicID, 10)).
		Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to set topic hotness: %w", err)
	}
	return nil
}

// Remove drops a topic from the ranking, e.g. after its question post was
// soft-deleted.
func (l *Leaderboard) Remove(ctx context.Context, topicID int64) error {
	err := l.client.Do(ctx, l.client.B().Zrem().
		Key(hotnessKey).
		Member(strconv.FormatInt(topicID, 10)).
		Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to remove topic from ranking: %w", err)
	}
	return nil
}

// Hottest returns up to limit topic IDs, hottest first. A non-positive
// limit yields nothing; ZRANGE would read "0 -1" as the whole set.
func (l *Leaderboard) Hottest(ctx context.Context, limit int64) ([]int64, error) {
	if limit <= 0 {
		return nil, nil
	}

	members, err := l.client.Do(ctx, l.client.B().Zrange().
		Key(hotnessKey).
		Min("0").
		Max(strconv.FormatInt(limit-1, 10)).
		Rev().
		Build()).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to read hotness ranking: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			l.logger.Warn("Skipping malformed ranking member", zap.String("member", member))
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
