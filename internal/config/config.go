package config

import (
	"value-program-sol/internal/pkg/logger"
)

type LogConfig struct {
	Format   string `json:"format,default=console"` // 日志格式，支持 "console" 或 "json"
	LogDir   string `json:"log_dir,optional"`       // 日志目录（可为相对路径或绝对路径），为空只输出到 stderr
	Level    string `json:"level,default=info"`     // 日志级别：debug / info / warn / error
	Compress bool   `json:"compress,optional"`      // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// SimulateConfig 驱动本地模拟器（cmd/simulate）
type SimulateConfig struct {
	LogConf   LogConfig `json:"logger,optional"`   // 日志配置
	ProgramID string    `json:"program_id"`        // 被注册到本地 runtime 的程序地址
	Fixture   string    `json:"fixture"`           // 调用场景文件（YAML）
	Workers   int       `json:"workers,default=4"` // 并发调用数，1 表示串行
}

// KafkaProducerConfig 表示 Kafka 生产者相关配置
type KafkaProducerConfig struct {
	Brokers    string `json:"brokers"`                   // Kafka broker 地址，多个用英文逗号分隔
	BatchSize  int    `json:"batch_size,optional"`       // 批处理大小（单位字节）
	LingerMs   int    `json:"linger_ms,default=5"`       // 批处理最大延迟（毫秒）
	Topic      string `json:"topic"`                     // 解码结果的 Kafka topic
	Partitions int    `json:"partitions,default=4"`      // topic 的分区数
	SendTimeMs int    `json:"send_time_ms,default=2000"` // 单条消息发送并等待 ack 的超时时间
}

// GrpcConfig gRPC 客户端连接相关配置
type GrpcConfig struct {
	Endpoint string `json:"endpoint"`         // gRPC 服务端地址
	XToken   string `json:"x_token,optional"` // x-token 认证

	// 应用级逻辑心跳（ping）配置
	StreamPingIntervalSec int `json:"stream_ping_interval_sec,default=10"` // 应用层 ping 心跳间隔（秒）

	// gRPC Keepalive 底层连接检测配置
	KeepalivePingIntervalSec int `json:"keepalive_ping_interval_sec,default=30"` // 底层 keepalive 间隔（秒）
	KeepalivePingTimeoutSec  int `json:"keepalive_ping_timeout_sec,default=10"`  // 底层 keepalive 超时（秒）

	// 消息体大小限制
	MaxCallSendMsgSize int `json:"max_call_send_msg_size,default=67108864"` // 单条消息最大发送字节数
	MaxCallRecvMsgSize int `json:"max_call_recv_msg_size,default=67108864"` // 单条消息最大接收字节数

	// 超时与重连策略
	ReconnectIntervalSec int  `json:"reconnect_interval_sec,default=2"`  // 重连最小间隔（秒）
	ConnectTimeoutSec    int  `json:"connect_timeout_sec,default=10"`    // 连接建立超时（秒）
	SendTimeoutSec       int  `json:"send_timeout_sec,default=5"`        // 发送超时（秒）
	BlockRecvTimeoutSec  int  `json:"block_recv_timeout_sec,default=60"` // 多久收不到 block 触发重连（秒）
	Insecure             bool `json:"insecure,optional"`                 // 使用明文连接（本地调试）
}

// WatchConfig 是链上监听服务（cmd/watch）的主配置
type WatchConfig struct {
	LogConf           LogConfig           `json:"logger,optional"` // 日志配置
	ProgramID         string              `json:"program_id"`      // 监听的程序地址
	KafkaProducerConf KafkaProducerConfig `json:"kafka_producer"`  // Kafka 生产者配置
	Grpc              GrpcConfig          `json:"grpc"`            // gRPC 订阅配置

	RedisAddr    string `json:"redis_addr,optional"` // Redis 地址
	ProgressConf struct {
		SlotTTLHours int `json:"slot_ttl_hours,default=72"` // slot 状态在 Redis 中的保留时间
	} `json:"progress,optional"`

	BlockChanSize int `json:"block_chan_size,default=200"` // block 缓冲通道长度
}
