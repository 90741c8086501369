package svc

import (
	"context"
	"fmt"
	"time"

	"value-program-sol/internal/config"
	"value-program-sol/internal/logic/progress"
	"value-program-sol/internal/mq"
	"value-program-sol/internal/pkg/logger"
	"value-program-sol/internal/types"

	"github.com/redis/go-redis/v9"
)

// WatchServiceContext 包含链上监听服务的资源
type WatchServiceContext struct {
	Config          config.WatchConfig
	ProgramID       types.Pubkey
	Producer        mq.Producer
	ProgressManager *progress.ProgressManager

	closers []func()
}

// NewWatchServiceContext 创建监听服务上下文：Kafka 生产者 + slot 进度存储
func NewWatchServiceContext(c config.WatchConfig) (*WatchServiceContext, error) {
	programID, err := types.TryPubkeyFromBase58(c.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid program_id %q: %w", c.ProgramID, err)
	}

	// 1. Kafka 生产者
	producer, err := mq.NewKafkaProducer(c.KafkaProducerConf)
	if err != nil {
		logger.Errorf("Kafka producer 初始化失败: %v", err)
		return nil, err
	}
	sc := &WatchServiceContext{
		Config:    c,
		ProgramID: programID,
		Producer:  producer,
	}
	sc.closers = append(sc.closers, func() {
		producer.Flush(c.KafkaProducerConf.SendTimeMs) // 等待未 ack 的消息
		producer.Close()
	})

	// 2. slot 进度存储，未配置 Redis 时退化为进程内存储
	store, err := sc.newProgressStore()
	if err != nil {
		sc.Close()
		return nil, err
	}
	sc.ProgressManager = progress.NewProgressManager(store, progress.EventDecode)

	logger.Infof("监听服务上下文初始化完成, program=%s", programID)
	return sc, nil
}

// NewWatchServiceContextWith 直接注入依赖（测试或嵌入使用）
func NewWatchServiceContextWith(c config.WatchConfig, programID types.Pubkey, producer mq.Producer, store progress.Store) *WatchServiceContext {
	return &WatchServiceContext{
		Config:          c,
		ProgramID:       programID,
		Producer:        producer,
		ProgressManager: progress.NewProgressManager(store, progress.EventDecode),
	}
}

func (sc *WatchServiceContext) newProgressStore() (progress.Store, error) {
	if sc.Config.RedisAddr == "" {
		logger.Warnf("redis_addr 未配置，slot 进度仅保存在内存中")
		return progress.NewMemoryProgressStore(), nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: sc.Config.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", sc.Config.RedisAddr, err)
	}
	sc.closers = append(sc.closers, func() { _ = rdb.Close() })

	ttl := time.Duration(sc.Config.ProgressConf.SlotTTLHours) * time.Hour
	return progress.NewRedisProgressStore(rdb, ttl), nil
}

// Close 关闭服务上下文中的资源（逆序）
func (sc *WatchServiceContext) Close() {
	for i := len(sc.closers) - 1; i >= 0; i-- {
		sc.closers[i]()
	}
	sc.closers = nil
}
