package decoder

import (
	"value-program-sol/internal/logic/domain"
	"value-program-sol/internal/types"
)

// 编译期检查签名
var _ domain.Entrypoint = ProcessInstruction

// ProcessInstruction 是程序入口：解码指令数据，输出一条诊断日志，然后返回成功。
// programID 与 accounts 由 runtime 提供，这里不做任何校验。
func ProcessInstruction(
	sink domain.Sink,
	programID types.Pubkey,
	accounts []domain.AccountInfo,
	data []byte,
) error {
	ix, err := Decode(data)
	if err != nil {
		return err
	}

	if sink != nil {
		sink.Record(FormatParameter(ix.Parameter))
	}
	return nil
}

// RegisterHandlers 将程序入口注册进 runtime 的路由表
func RegisterHandlers(m map[types.Pubkey]domain.Entrypoint, programID types.Pubkey) {
	m[programID] = ProcessInstruction
}
