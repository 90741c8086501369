package domain

import "value-program-sol/internal/types"

// Instruction 表示链上的一条原始指令（可为主指令或 inner 指令）。
type Instruction struct {
	ProgramID types.Pubkey   // 所调用的程序地址
	Accounts  []types.Pubkey // 指令涉及的账户列表，保持原始顺序
	Data      []byte         // 指令数据（原始字节序列）
}

// TranslatedInstruction 表示一条主指令及其关联的 inner 指令集合。
type TranslatedInstruction struct {
	Instruction Instruction   // 主指令（outer）
	Inners      []Instruction // inner 指令列表（可为空）
}

// DecodedInstruction 是指令数据解码后的结果，仅在一次调用内有效。
//
// 线格式：
//
//	[0]     opcode    (1 byte)
//	[1:9]   parameter (u64, little-endian，不足 8 字节时为 0)
//	[9:]    忽略
type DecodedInstruction struct {
	Opcode    byte
	Parameter uint64
}
