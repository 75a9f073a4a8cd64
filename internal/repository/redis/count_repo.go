package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	MemberCntTTL       = 24 * time.Hour
	MemberCntKeyPrefix = "habitat:members:cnt"
)

// MemberCountCache fronts the habitats.member_count column for hot reads.
// Writers delete the key; readers backfill it from the recounted column.
type MemberCountCache struct {
	ttl time.Duration
}

func NewMemberCountCache() *MemberCountCache {
	return &MemberCountCache{ttl: MemberCntTTL}
}

func (c *MemberCountCache) key(habitatID string) string {
	return fmt.Sprintf("%s:%s", MemberCntKeyPrefix, habitatID)
}

// GetCached returns (count, hit, error).
func (c *MemberCountCache) GetCached(ctx context.Context, habitatID string) (int64, bool, error) {
	val, err := Client.Get(ctx, c.key(habitatID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	return val, true, err
}

func (c *MemberCountCache) Set(ctx context.Context, habitatID string, count int64) error {
	return Client.Set(ctx, c.key(habitatID), count, c.ttl).Err()
}

// DeleteCount removes the cached count, optionally scheduling a delayed
// second delete to close the concurrent-backfill window.
func (c *MemberCountCache) DeleteCount(ctx context.Context, habitatID string, delay ...time.Duration) error {
	key := c.key(habitatID)
	if err := Client.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if len(delay) > 0 && delay[0] > 0 {
		d := delay[0]
		go func() {
			t := time.NewTimer(d)
			defer t.Stop()
			<-t.C
			_ = Client.Del(context.Background(), key).Err()
		}()
	}
	return nil
}
