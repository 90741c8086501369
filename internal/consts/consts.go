package consts

import "runtime"

const (
	ChainIDSolana uint32 = 100000
)

// DefaultProgramID 是程序部署在 devnet 上的地址
const DefaultProgramID = "FWcjdAByTdbtwfFcdT8V8zCEPbTNc9cUH41g4JuwXnTy"

// EventTypeDecodedInstruction 是 Kafka 消息前缀中的事件类型
const EventTypeDecodedInstruction uint32 = 1

// CpuCount 表示逻辑 CPU 核心数，用于控制并发任务调度上限
var CpuCount = runtime.NumCPU()
