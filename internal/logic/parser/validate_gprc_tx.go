package parser

import (
	"fmt"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
)

// ValidateGrpcTx 检查 gRPC 推送的交易是否可解析，返回第一个不满足的条件
func ValidateGrpcTx(tx *pb.SubscribeUpdateTransactionInfo) error {
	if tx == nil {
		return fmt.Errorf("nil transaction info")
	}
	if tx.Transaction == nil {
		return fmt.Errorf("missing Transaction field")
	}
	if tx.Transaction.Message == nil {
		return fmt.Errorf("missing Message field in transaction")
	}
	if len(tx.Transaction.Signatures) == 0 {
		return fmt.Errorf("missing transaction signature")
	}
	if len(tx.Transaction.Signatures[0]) != 64 {
		return fmt.Errorf("invalid transaction signature length: %d", len(tx.Transaction.Signatures[0]))
	}
	if tx.IsVote {
		return fmt.Errorf("vote transaction skipped")
	}
	if tx.Meta == nil {
		return fmt.Errorf("missing transaction meta data")
	}
	if tx.Meta.Err != nil {
		return fmt.Errorf("transaction execution failed: %v", tx.Meta.Err)
	}
	return nil
}

// IsValidGrpcTx 是 ValidateGrpcTx 的快速版本，不构造错误信息
func IsValidGrpcTx(tx *pb.SubscribeUpdateTransactionInfo) bool {
	return isWellFormedGrpcTx(tx) && tx.Meta.Err == nil
}

// IsFailedGrpcTx 交易结构完整但执行失败，指令仍可解析，只是不产生任何状态变化
func IsFailedGrpcTx(tx *pb.SubscribeUpdateTransactionInfo) bool {
	return isWellFormedGrpcTx(tx) && tx.Meta.Err != nil
}

func isWellFormedGrpcTx(tx *pb.SubscribeUpdateTransactionInfo) bool {
	if tx == nil || // - nil transaction info
		tx.Transaction == nil || // - missing Transaction field
		tx.Transaction.Message == nil || // - missing Message field in transaction
		len(tx.Transaction.Signatures) == 0 || // - missing transaction signature
		len(tx.Transaction.Signatures[0]) != 64 || // - invalid transaction signature length
		tx.IsVote || // - vote transaction skipped
		tx.Meta == nil { // - missing transaction meta data
		return false
	}
	return true
}
