package domain

import (
	"value-program-sol/internal/types"
)

// TxContext 表示交易所属区块的上下文信息。
type TxContext struct {
	BlockTime  int64      // 区块时间戳（Unix 秒级）
	Slot       uint64     // 当前区块 Slot
	ParentSlot uint64     // 父区块 Slot
	BlockHash  types.Hash // 区块哈希
}

// TranslatedTx 表示已解析的链上交易结构，包含上下文与指令。
type TranslatedTx struct {
	TxCtx     *TxContext   // 所属区块上下文（共享指针）
	TxIndex   uint64       // 当前交易在区块中的序号
	Signature []byte       // 交易签名（64 字节原始数据）
	Signer    types.Pubkey // 交易发起者（accountKeys[0]）

	Instructions []*TranslatedInstruction // 主指令及其关联的 inner 指令
	LogMessages  []string                 // tx.Meta.LogMessages
}
