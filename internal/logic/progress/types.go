package progress

import "context"

// SlotStatus 表示 slot 的处理状态（Redis 与内存实现统一编码）
type SlotStatus int

const (
	SlotUnknown   SlotStatus = 0 // 不存在
	SlotProcessed SlotStatus = 1 // ✅ 已处理成功
	SlotInvalid   SlotStatus = 2 // ❌ 明确结构错误、跳过
	SlotPending   SlotStatus = 3 // 🕒 处理中或发送未完全成功，重放时需要再次处理
)

func (s SlotStatus) String() string {
	switch s {
	case SlotProcessed:
		return "processed"
	case SlotInvalid:
		return "invalid"
	case SlotPending:
		return "pending"
	default:
		return "unknown"
	}
}

// EventType 表示不同类型的进度事件（用于区分 Redis key）
type EventType int

const (
	EventDecode EventType = 0 // 程序指令解码
)

// Store 是 slot 状态存储
type Store interface {
	GetSlotStatus(ctx context.Context, slot uint64, eventType EventType) (SlotStatus, error)
	MarkSlotStatus(ctx context.Context, slot uint64, eventType EventType, status SlotStatus) error
}
