package client

import (
	"github.com/blocto/solana-go-sdk/common"
	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"
	"github.com/pkg/errors"

	"value-program-sol/internal/types"
)

// instructionLayout 与程序端解码格式一致：[0]=opcode, [1:9]=value(u64 little-endian)
type instructionLayout struct {
	Opcode uint8
	Value  uint64
}

// EncodeInstructionData 使用 borsh 编码指令数据，输出固定 9 字节
func EncodeInstructionData(opcode uint8, value uint64) ([]byte, error) {
	data, err := borsh.Serialize(instructionLayout{Opcode: opcode, Value: value})
	if err != nil {
		return nil, errors.Wrap(err, "borsh serialize instruction data")
	}
	return data, nil
}

// AccountMeta 描述指令引用的账户
type AccountMeta struct {
	Key        types.Pubkey
	IsSigner   bool
	IsWritable bool
}

// NewInstruction 构造发往程序的指令
func NewInstruction(programID types.Pubkey, data []byte, accounts ...AccountMeta) sdktypes.Instruction {
	metas := make([]sdktypes.AccountMeta, 0, len(accounts))
	for _, a := range accounts {
		metas = append(metas, sdktypes.AccountMeta{
			PubKey:     common.PublicKey(a.Key),
			IsSigner:   a.IsSigner,
			IsWritable: a.IsWritable,
		})
	}
	return sdktypes.Instruction{
		ProgramID: common.PublicKey(programID),
		Accounts:  metas,
		Data:      data,
	}
}
