package svc

import (
	"context"
	"testing"

	"value-program-sol/internal/config"
	"value-program-sol/internal/logic/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/conf"
)

func TestNewProgressStore_MemoryWithoutRedis(t *testing.T) {
	var c config.WatchConfig
	content := `
program_id: FWcjdAByTdbtwfFcdT8V8zCEPbTNc9cUH41g4JuwXnTy
kafka_producer:
  brokers: 127.0.0.1:9092
  topic: value-decoded
grpc:
  endpoint: 127.0.0.1:10000
`
	require.NoError(t, conf.LoadFromYamlBytes([]byte(content), &c))

	sc := &WatchServiceContext{Config: c}
	store, err := sc.newProgressStore()
	require.NoError(t, err)
	assert.IsType(t, &progress.MemoryProgressStore{}, store)
	assert.Empty(t, sc.closers)

	pm := progress.NewProgressManager(store, progress.EventDecode)
	require.NoError(t, pm.MarkSlotStatus(context.Background(), 7, progress.SlotProcessed))
	should, err := pm.ShouldProcessSlot(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, should)
}

func TestNewProgressStore_RedisUnreachable(t *testing.T) {
	sc := &WatchServiceContext{Config: config.WatchConfig{RedisAddr: "127.0.0.1:1"}}
	_, err := sc.newProgressStore()
	assert.ErrorContains(t, err, "redis ping")
	assert.Empty(t, sc.closers)
}
