package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/metinatakli/box-office-ledger/internal/domain"
	"github.com/redis/go-redis/v9"
)

const DefaultQueueKey = "boxoffice:seatchecks"

// popDueScript removes and returns every member scored at or below ARGV[1].
var popDueScript = redis.NewScript(`
local items = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
if #items > 0 then
	redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
end
return items
`)

// RedisDispatcher keeps seat checks in a sorted set scored by their instant.
// Registering the same task twice stores it once.
type RedisDispatcher struct {
	client redis.UniversalClient
	key    string
}

func NewRedisDispatcher(client redis.UniversalClient, key string) *RedisDispatcher {
	if key == "" {
		key = DefaultQueueKey
	}

	return &RedisDispatcher{
		client: client,
		key:    key,
	}
}

func (d *RedisDispatcher) RegisterOneShot(ctx context.Context, task domain.SeatCheckTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	return d.client.ZAdd(ctx, d.key, redis.Z{
		Score:  float64(task.At.Unix()),
		Member: payload,
	}).Err()
}

// Due pops the tasks whose instant is at or before now, earliest first.
func (d *RedisDispatcher) Due(ctx context.Context, now time.Time) ([]domain.SeatCheckTask, error) {
	res, err := popDueScript.Run(ctx, d.client, []string{d.key}, strconv.FormatInt(now.Unix(), 10)).StringSlice()
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.SeatCheckTask, 0, len(res))
	for _, item := range res {
		var task domain.SeatCheckTask
		if err := json.Unmarshal([]byte(item), &task); err != nil {
			return tasks, fmt.Errorf("decode queued seat check: %w", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

// Pending reports how many seat checks are still queued.
func (d *RedisDispatcher) Pending(ctx context.Context) (int64, error) {
	return d.client.ZCard(ctx, d.key).Result()
}
