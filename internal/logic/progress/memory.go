package progress

import (
	"context"
	"sync"
)

var _ Store = (*MemoryProgressStore)(nil)

// MemoryProgressStore 是进程内实现，未配置 Redis 时使用（重启后状态丢失）
type MemoryProgressStore struct {
	mu     sync.RWMutex
	status map[EventType]map[uint64]SlotStatus
}

func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{status: make(map[EventType]map[uint64]SlotStatus)}
}

func (m *MemoryProgressStore) GetSlotStatus(_ context.Context, slot uint64, eventType EventType) (SlotStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status[eventType][slot], nil
}

func (m *MemoryProgressStore) MarkSlotStatus(_ context.Context, slot uint64, eventType EventType, status SlotStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	slots, ok := m.status[eventType]
	if !ok {
		slots = make(map[uint64]SlotStatus)
		m.status[eventType] = slots
	}
	slots[slot] = status
	return nil
}
