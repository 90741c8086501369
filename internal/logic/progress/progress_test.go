package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressManager_ShouldProcessSlot(t *testing.T) {
	ctx := context.Background()
	pm := NewProgressManager(NewMemoryProgressStore(), EventDecode)

	ok, err := pm.ShouldProcessSlot(ctx, 10)
	require.NoError(t, err)
	assert.True(t, ok, "unknown slot should be processed")

	require.NoError(t, pm.MarkSlotStatus(ctx, 10, SlotPending))
	ok, err = pm.ShouldProcessSlot(ctx, 10)
	require.NoError(t, err)
	assert.True(t, ok, "pending slot should be retried")

	require.NoError(t, pm.MarkSlotStatus(ctx, 10, SlotProcessed))
	ok, err = pm.ShouldProcessSlot(ctx, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, pm.MarkSlotStatus(ctx, 11, SlotInvalid))
	ok, err = pm.ShouldProcessSlot(ctx, 11)
	require.NoError(t, err)
	assert.False(t, ok)

	// Unknown 不写入
	require.NoError(t, pm.MarkSlotStatus(ctx, 10, SlotUnknown))
	ok, _ = pm.ShouldProcessSlot(ctx, 10)
	assert.False(t, ok)
}

type failingStore struct{}

func (failingStore) GetSlotStatus(context.Context, uint64, EventType) (SlotStatus, error) {
	return SlotUnknown, errors.New("connection refused")
}

func (failingStore) MarkSlotStatus(context.Context, uint64, EventType, SlotStatus) error {
	return errors.New("connection refused")
}

func TestProgressManager_StoreErrors(t *testing.T) {
	pm := NewProgressManager(failingStore{}, EventDecode)
	_, err := pm.ShouldProcessSlot(context.Background(), 1)
	assert.ErrorContains(t, err, "connection refused")
	assert.Error(t, pm.MarkSlotStatus(context.Background(), 1, SlotProcessed))
}

func TestMemoryStore_EventTypesIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryProgressStore()
	require.NoError(t, s.MarkSlotStatus(ctx, 5, EventDecode, SlotProcessed))

	st, err := s.GetSlotStatus(ctx, 5, EventType(9))
	require.NoError(t, err)
	assert.Equal(t, SlotUnknown, st)
}

func TestSlotKeyAndStatusParsing(t *testing.T) {
	assert.Equal(t, "progress:decode:slot:42", slotKey(42, EventDecode))
	assert.Equal(t, "progress:unknown:slot:42", slotKey(42, EventType(7)))

	assert.Equal(t, SlotProcessed, parseStatus(1))
	assert.Equal(t, SlotPending, parseStatus(3))
	assert.Equal(t, SlotUnknown, parseStatus(99))
	assert.Equal(t, "invalid", SlotInvalid.String())
}
