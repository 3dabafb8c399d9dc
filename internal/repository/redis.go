package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

type redisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and returns a Store implementation.
func NewRedisStore(opt Options) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opt.Addr,
		Password: opt.Password,
		DB:       opt.DB,

		// one attempt per operation; callers degrade instead of retrying
		MaxRetries: -1,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisStore{client: client}, nil
}

// toggleMemberLua flips membership and adjusts the paired total in one step.
// KEYS[1] set, KEYS[2] total, ARGV[1] member. Returns {isMember, total}.
// The total is written first: scripts are not rolled back, so a total that
// is not an integer must abort before the set changes.
var toggleMemberLua = redis.NewScript(`
local set = KEYS[1]
local total = KEYS[2]
local member = ARGV[1]

if redis.call('SISMEMBER', set, member) == 1 then
  local n = redis.call('DECR', total)
  redis.call('SREM', set, member)
  return {0, n}
end
local n = redis.call('INCR', total)
redis.call('SADD', set, member)
return {1, n}
`)

func (r *redisStore) Incr(ctx context.Context, key string) (int64, error) {
	return r.client.Incr(ctx, key).Result()
}

func (r *redisStore) Decr(ctx context.Context, key string) (int64, error) {
	return r.client.Decr(ctx, key).Result()
}

func (r *redisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (r *redisStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisStore) LikeStatus(ctx context.Context, countKey, setKey, member string) (int64, bool, error) {
	pipe := r.client.Pipeline()
	total := pipe.Get(ctx, countKey)
	var isMember *redis.BoolCmd
	if member != "" {
		isMember = pipe.SIsMember(ctx, setKey, member)
	}
	// a missing total surfaces as redis.Nil from Exec; inspect each command instead
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return 0, false, err
	}

	var count int64
	switch s, err := total.Result(); {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return 0, false, err
	default:
		count, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, false, fmt.Errorf("parse %s: %w", countKey, err)
		}
	}
	if isMember == nil {
		return count, false, nil
	}
	liked, err := isMember.Result()
	if err != nil {
		return 0, false, err
	}
	return count, liked, nil
}

func (r *redisStore) ToggleMember(ctx context.Context, setKey, countKey, member string) (bool, int64, error) {
	res, err := toggleMemberLua.Run(ctx, r.client, []string{setKey, countKey}, member).Int64Slice()
	if err != nil {
		return false, 0, err
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("unexpected redis response: %v", res)
	}
	return res[0] == 1, res[1], nil
}

func (r *redisStore) SlidingWindow(ctx context.Context, key string, windowMillis int64) (int64, error) {
	now := time.Now().UnixNano() / int64(time.Millisecond)
	zkey := key + ":sw"
	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, zkey, redis.Z{Score: float64(now), Member: uuid.NewString()})
	pipe.ZRemRangeByScore(ctx, zkey, "-inf", strconv.FormatInt(now-windowMillis, 10))
	cnt := pipe.ZCard(ctx, zkey)
	pipe.PExpire(ctx, zkey, time.Duration(windowMillis*2)*time.Millisecond)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return cnt.Val(), nil
}

func (r *redisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisStore) Close() error {
	return r.client.Close()
}
