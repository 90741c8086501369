package progress

import (
	"context"
	"fmt"
)

// ProgressManager 封装 slot 判重与状态写入
type ProgressManager struct {
	store     Store
	eventType EventType
}

func NewProgressManager(store Store, eventType EventType) *ProgressManager {
	return &ProgressManager{store: store, eventType: eventType}
}

// ShouldProcessSlot 判断是否需要处理该 slot：
// - Processed / Invalid：跳过（重连后 geyser 可能重放）
// - Unknown / Pending：处理
func (pm *ProgressManager) ShouldProcessSlot(ctx context.Context, slot uint64) (bool, error) {
	status, err := pm.store.GetSlotStatus(ctx, slot, pm.eventType)
	if err != nil {
		return false, fmt.Errorf("get slot %d status: %w", slot, err)
	}
	return status != SlotProcessed && status != SlotInvalid, nil
}

// MarkSlotStatus 标记某 slot 的处理状态
func (pm *ProgressManager) MarkSlotStatus(ctx context.Context, slot uint64, status SlotStatus) error {
	if status == SlotUnknown {
		return nil // Unknown 不参与记录
	}
	if err := pm.store.MarkSlotStatus(ctx, slot, pm.eventType, status); err != nil {
		return fmt.Errorf("mark slot %d %s: %w", slot, status, err)
	}
	return nil
}
