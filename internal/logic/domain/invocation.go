package domain

import "value-program-sol/internal/types"

// AccountInfo 是 runtime 传给程序的账户引用，元数据全部由 runtime 管理。
type AccountInfo struct {
	Key        types.Pubkey
	Owner      types.Pubkey
	Lamports   uint64
	Data       []byte
	IsSigner   bool
	IsWritable bool
	Executable bool
	RentEpoch  uint64
}

// InvocationContext 是一次程序调用的输入三元组，归 runtime 所有，程序只在调用期间借用。
type InvocationContext struct {
	ProgramID types.Pubkey
	Accounts  []AccountInfo
	Data      []byte
}

// Sink 是程序侧唯一的诊断输出通道（对应链上的 msg! 日志）。
// Record 为 fire-and-forget，不返回错误。
type Sink interface {
	Record(msg string)
}

// SinkFunc 让普通函数实现 Sink
type SinkFunc func(msg string)

func (f SinkFunc) Record(msg string) { f(msg) }

// Entrypoint 是程序入口的统一签名。返回 nil 表示成功，非 nil 表示本次调用失败。
type Entrypoint func(sink Sink, programID types.Pubkey, accounts []AccountInfo, data []byte) error
