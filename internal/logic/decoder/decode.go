package decoder

import (
	"encoding/binary"
	"errors"
	"strconv"

	"value-program-sol/internal/logic/domain"
)

const (
	OpcodeSize    = 1
	ParameterSize = 8
	// InstructionSize 是完整指令（opcode + parameter）的长度，超出部分忽略
	InstructionSize = OpcodeSize + ParameterSize
)

// ErrMalformedInstruction 指令数据为空，无法取出 opcode。
var ErrMalformedInstruction = errors.New("malformed instruction: empty instruction data")

// Decode 将指令数据拆分为 opcode 与 u64 参数：
//   - data[0] 为 opcode，不做分支；
//   - data[1:9] 按小端序解析为参数；剩余不足 8 字节时参数为 0（不补零、不做部分读取）；
//   - data[9:] 忽略。
//
// 唯一的错误是空 buffer。
func Decode(data []byte) (domain.DecodedInstruction, error) {
	if len(data) < OpcodeSize {
		return domain.DecodedInstruction{}, ErrMalformedInstruction
	}

	rem := data[OpcodeSize:]
	var param uint64
	if len(rem) >= ParameterSize {
		param = binary.LittleEndian.Uint64(rem[:ParameterSize])
	}

	return domain.DecodedInstruction{
		Opcode:    data[0],
		Parameter: param,
	}, nil
}

// FormatParameter 生成诊断日志内容，例如 "value 3"
func FormatParameter(v uint64) string {
	return "value " + strconv.FormatUint(v, 10)
}
