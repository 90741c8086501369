package utils

import (
	"encoding/binary"
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"
)

// EventTypeSize 是事件类型前缀的长度
const EventTypeSize = 4

// EncodeEvent 将 protobuf 消息编码为带事件类型前缀的二进制数据：
// - 前 4 字节为事件类型（uint32，小端序）
// - 后续为 protobuf 序列化数据（使用 MarshalAppend）
func EncodeEvent(eventType uint32, msg proto.Message) ([]byte, error) {
	const extraBuffer = 32 // 多预留一些空间，降低 MarshalAppend 触发扩容的概率

	size := proto.Size(msg)
	buf := make([]byte, EventTypeSize, EventTypeSize+size+extraBuffer)
	binary.LittleEndian.PutUint32(buf[:EventTypeSize], eventType)

	opts := proto.MarshalOptions{Deterministic: true}
	result, err := opts.MarshalAppend(buf, msg)
	if err != nil {
		return nil, fmt.Errorf("EncodeEvent: marshal %T: %w", msg, err)
	}
	return result, nil
}

// DecodeEvent 是 EncodeEvent 的逆过程，msg 为待填充的目标消息
func DecodeEvent(data []byte, msg proto.Message) (uint32, error) {
	if len(data) < EventTypeSize {
		return 0, errors.New("DecodeEvent: data too short")
	}
	eventType := binary.LittleEndian.Uint32(data[:EventTypeSize])
	if err := proto.Unmarshal(data[EventTypeSize:], msg); err != nil {
		return 0, fmt.Errorf("DecodeEvent: unmarshal %T: %w", msg, err)
	}
	return eventType, nil
}
