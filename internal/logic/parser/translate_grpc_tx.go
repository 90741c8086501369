package parser

import (
	"fmt"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"

	"value-program-sol/internal/logic/domain"
	"value-program-sol/internal/types"
)

// buildFullAccountKeys 构造交易中完整的账户 Pubkey 列表。
// 将 message.accountKeys 和 Address Lookup Table 中的 writable / readonly 地址
// 顺序拼接为一个 []Pubkey 切片，供后续通过 accountIndex 高效索引。
func buildFullAccountKeys(
	accountKeys, loadedWritable, loadedReadonly [][]byte,
) ([]types.Pubkey, error) {
	// 计算总账户数，确保分配空间恰好
	total := len(accountKeys) + len(loadedWritable) + len(loadedReadonly)
	pubkeys := make([]types.Pubkey, total)

	i := 0 // 写入索引

	// 主账户部分（来自 message.accountKeys）
	for _, b := range accountKeys {
		if len(b) != 32 {
			return nil, fmt.Errorf("invalid pubkey in accountKeys at index %d", i)
		}
		copy(pubkeys[i][:], b)
		i++
	}

	// Address Table 中的 writable 部分
	for _, b := range loadedWritable {
		if len(b) != 32 {
			return nil, fmt.Errorf("invalid pubkey in loadedWritable at index %d", i)
		}
		copy(pubkeys[i][:], b)
		i++
	}

	// Address Table 中的 readonly 部分
	for _, b := range loadedReadonly {
		if len(b) != 32 {
			return nil, fmt.Errorf("invalid pubkey in loadedReadonly at index %d", i)
		}
		copy(pubkeys[i][:], b)
		i++
	}
	return pubkeys, nil
}

// buildTranslatedInstructions 将 gRPC 推送的主指令和 inner 指令解析并转换为内部结构体列表。
// 它将原始指令 (rawInstructions) 与对应的 inner 指令 (rawInners) 逐一匹配，构建出 []*TranslatedInstruction。
func buildTranslatedInstructions(
	tx *pb.SubscribeUpdateTransactionInfo,
	accountKeys []types.Pubkey,
) ([]*domain.TranslatedInstruction, error) {
	rawInstructions := tx.Transaction.Message.Instructions
	rawInners := tx.Meta.InnerInstructions

	instructions := make([]*domain.TranslatedInstruction, 0, len(rawInstructions))
	innerIndex := 0 // 顺序推进的指针，用于定位 rawInners 中尚未处理的项

	for i, inst := range rawInstructions {
		outer, err := convertRawInstruction(inst.ProgramIdIndex, inst.Accounts, inst.Data, accountKeys)
		if err != nil {
			return nil, fmt.Errorf("instruction[%d]: %w", i, err)
		}

		var innerInstructions []domain.Instruction

		// 如果当前 rawInner 与主指令索引 i 匹配，则解析 inner 指令列表
		if innerIndex < len(rawInners) && int(rawInners[innerIndex].Index) == i {
			innerList := rawInners[innerIndex].Instructions
			innerInstructions = make([]domain.Instruction, 0, len(innerList))
			for j, inner := range innerList {
				ix, err := convertRawInstruction(inner.ProgramIdIndex, inner.Accounts, inner.Data, accountKeys)
				if err != nil {
					return nil, fmt.Errorf("instruction[%d].inner[%d]: %w", i, j, err)
				}
				innerInstructions = append(innerInstructions, ix)
			}
			innerIndex++
		}

		instructions = append(instructions, &domain.TranslatedInstruction{
			Instruction: outer,
			Inners:      innerInstructions, // 若无 inner，保持 nil，避免无效内存分配
		})
	}

	return instructions, nil
}

// convertRawInstruction 将原始字段映射为内部结构 domain.Instruction。
// accounts 字段是 accountKey 索引的 byte 列表，这里会反解为真实 Pubkey。
func convertRawInstruction(pidIdx uint32, accounts []byte, data []byte, accountKeys []types.Pubkey) (domain.Instruction, error) {
	if int(pidIdx) >= len(accountKeys) {
		return domain.Instruction{}, fmt.Errorf("program index %d out of range (%d keys)", pidIdx, len(accountKeys))
	}
	accs := make([]types.Pubkey, 0, len(accounts))
	for _, idx := range accounts {
		if int(idx) >= len(accountKeys) {
			return domain.Instruction{}, fmt.Errorf("account index %d out of range (%d keys)", idx, len(accountKeys))
		}
		accs = append(accs, accountKeys[idx])
	}
	return domain.Instruction{
		ProgramID: accountKeys[pidIdx],
		Accounts:  accs,
		Data:      data,
	}, nil
}

// TranslateGrpcTx 解析 gRPC 推送的交易数据，并构建为内部结构 TranslatedTx。
// 包含以下处理流程：
//  1. 构建完整的 accountKeys（含 Address Lookup）
//  2. 构造指令（主指令 + inner）
//  3. 若发生 panic，将被捕获并转为错误返回，避免程序崩溃
func TranslateGrpcTx(txCtx *domain.TxContext, tx *pb.SubscribeUpdateTransactionInfo) (_ *domain.TranslatedTx, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("TranslateGrpcTx panic: %v", r)
		}
	}()

	// 构造完整的账户 pubkey 列表（主账户 + Address Lookup 表中的 writable 和 readonly）
	accountKeys, err := buildFullAccountKeys(
		tx.Transaction.Message.AccountKeys,
		tx.Meta.LoadedWritableAddresses,
		tx.Meta.LoadedReadonlyAddresses,
	)
	if err != nil {
		return nil, fmt.Errorf("buildFullAccountKeys error: %w", err)
	}

	// 基本健壮性校验：签名或账户列表为空时立即报错
	if len(tx.Transaction.Signatures) == 0 || len(accountKeys) == 0 {
		return nil, fmt.Errorf("invalid transaction: missing signature or accountKeys")
	}

	// 获取 signer 数量（前 N 个 accountKeys 视为 signer）
	signerCount := int(tx.Transaction.Message.Header.NumRequiredSignatures)
	if signerCount == 0 || len(accountKeys) < signerCount {
		return nil, fmt.Errorf("invalid signer count: %d", signerCount)
	}

	// 解析主指令和 inner 指令
	instructions, err := buildTranslatedInstructions(tx, accountKeys)
	if err != nil {
		return nil, fmt.Errorf("buildTranslatedInstructions error: %w", err)
	}

	// 组装最终结构体
	return &domain.TranslatedTx{
		TxCtx:        txCtx,
		TxIndex:      tx.Index,
		Signature:    tx.Transaction.Signatures[0],
		Signer:       accountKeys[0], // 默认取第一个 signer，通常为交易发起者
		Instructions: instructions,
		LogMessages:  tx.Meta.LogMessages,
	}, nil
}
