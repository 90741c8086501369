package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisProgressStore)(nil)

// RedisProgressStore 管理 Redis 中的 slot 状态记录（幂等控制）
type RedisProgressStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// Redis key 前缀
const (
	decodePrefix  = "progress:decode:slot"
	unknownPrefix = "progress:unknown:slot"
)

const defaultTTL = 72 * time.Hour

// NewRedisProgressStore 创建 Redis 判重管理器，ttl <= 0 时使用默认值
func NewRedisProgressStore(rdb *redis.Client, ttl time.Duration) *RedisProgressStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisProgressStore{rdb: rdb, ttl: ttl}
}

// slotKey 构造 Redis key，按事件类型区分
func slotKey(slot uint64, eventType EventType) string {
	prefix := unknownPrefix
	if eventType == EventDecode {
		prefix = decodePrefix
	}
	return fmt.Sprintf("%s:%d", prefix, slot)
}

// GetSlotStatus 获取 slot 的状态（Unknown / Processed / Invalid / Pending）
func (r *RedisProgressStore) GetSlotStatus(ctx context.Context, slot uint64, eventType EventType) (SlotStatus, error) {
	val, err := r.rdb.Get(ctx, slotKey(slot, eventType)).Int()
	switch {
	case err == redis.Nil:
		return SlotUnknown, nil
	case err != nil:
		return SlotUnknown, fmt.Errorf("redis get error: %w", err)
	default:
		return parseStatus(val), nil
	}
}

func parseStatus(val int) SlotStatus {
	switch SlotStatus(val) {
	case SlotProcessed, SlotInvalid, SlotPending:
		return SlotStatus(val)
	default:
		return SlotUnknown // 容错处理
	}
}

// MarkSlotStatus 通用设置 slot 的状态
func (r *RedisProgressStore) MarkSlotStatus(ctx context.Context, slot uint64, eventType EventType, status SlotStatus) error {
	if err := r.rdb.Set(ctx, slotKey(slot, eventType), int(status), r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}
