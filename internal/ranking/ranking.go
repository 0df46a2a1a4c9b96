// Package ranking tracks per-image view counts in Redis and serves the
// most-viewed listing. Redis is the only store for view data; the relational
// database never sees a view.
package ranking

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const rankingKey = "image_ranking"

// viewsKey is the per-image view counter key.
func viewsKey(imageID uint) string {
	return fmt.Sprintf("image:%d:views", imageID)
}

// Store wraps the Redis client used for view counting.
type Store struct {
	rdb *redis.Client
}

// NewStore returns a view-ranking store backed by the given Redis client.
// A nil client disables counting: views register as zero and the ranking is
// empty, mirroring how the rest of the app degrades without Redis.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// RegisterView increments the image's view counter and its score in the
// ranking sorted set, and returns the new total view count. Both commands
// run in one MULTI/EXEC pipeline so the counter and the sorted set cannot
// diverge mid-request.
func (s *Store) RegisterView(ctx context.Context, imageID uint) (int64, error) {
	if s.rdb == nil {
		return 0, nil
	}

	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, viewsKey(imageID))
	pipe.ZIncrBy(ctx, rankingKey, 1, strconv.FormatUint(uint64(imageID), 10))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to register view: %w", err)
	}

	return incr.Val(), nil
}

// TotalViews returns the current view count for an image. A missing key
// counts as zero.
func (s *Store) TotalViews(ctx context.Context, imageID uint) (int64, error) {
	if s.rdb == nil {
		return 0, nil
	}

	val, err := s.rdb.Get(ctx, viewsKey(imageID)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read view count: %w", err)
	}
	return strconv.ParseInt(val, 10, 64)
}

// TopImageIDs returns up to n image ids ordered by descending view score.
func (s *Store) TopImageIDs(ctx context.Context, n int64) ([]uint, error) {
	if s.rdb == nil {
		return nil, nil
	}

	members, err := s.rdb.ZRevRange(ctx, rankingKey, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read ranking: %w", err)
	}

	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
