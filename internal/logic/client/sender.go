package client

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/blocto/solana-go-sdk/rpc"
	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/pkg/errors"

	"value-program-sol/internal/pkg/logger"
)

// RPCClient 是 Sender 依赖的 RPC 能力子集，*client.Client 满足该接口
type RPCClient interface {
	GetLatestBlockhash(ctx context.Context) (rpc.GetLatestBlockhashValue, error)
	SendTransaction(ctx context.Context, tx sdktypes.Transaction) (string, error)
	GetSignatureStatus(ctx context.Context, signature string) (*rpc.SignatureStatus, error)
}

var ErrTransactionFailed = errors.New("transaction failed")

// Sender 负责构造、签名并发送交易
type Sender struct {
	rpc RPCClient
}

func NewSender(c RPCClient) *Sender {
	return &Sender{rpc: c}
}

// Send 以 signer 作为 fee payer 发送指令，返回交易签名（base58）
func (s *Sender) Send(ctx context.Context, signer sdktypes.Account, instructions ...sdktypes.Instruction) (string, error) {
	if len(instructions) == 0 {
		return "", errors.New("no instructions")
	}

	latest, err := s.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return "", errors.Wrap(err, "get latest blockhash")
	}

	tx, err := sdktypes.NewTransaction(sdktypes.NewTransactionParam{
		Message: sdktypes.NewMessage(sdktypes.NewMessageParam{
			FeePayer:        signer.PublicKey,
			RecentBlockhash: latest.Blockhash,
			Instructions:    instructions,
		}),
		Signers: []sdktypes.Account{signer},
	})
	if err != nil {
		return "", errors.Wrap(err, "build transaction")
	}

	sig, err := s.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return "", errors.Wrap(err, "send transaction")
	}
	logger.Infof("[client] transaction sent, signature=%s", sig)
	return sig, nil
}

// WaitConfirmed 轮询签名状态直到 confirmed / finalized；链上执行失败返回 ErrTransactionFailed
func (s *Sender) WaitConfirmed(ctx context.Context, signature string, pollInterval time.Duration) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		status, err := s.rpc.GetSignatureStatus(ctx, signature)
		if err != nil {
			logger.Warnf("[client] get signature status failed: sig=%s err=%v", signature, err)
		} else if status != nil {
			if status.Err != nil {
				return errors.Wrapf(ErrTransactionFailed, "signature=%s err=%v", signature, status.Err)
			}
			if isConfirmed(status) {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "wait confirmation of %s", signature)
		case <-ticker.C:
		}
	}
}

func isConfirmed(status *rpc.SignatureStatus) bool {
	if status.ConfirmationStatus == nil {
		return false
	}
	switch *status.ConfirmationStatus {
	case rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
		return true
	default:
		return false
	}
}

// LoadKeypair 读取 solana-keygen 生成的 JSON keypair 文件（64 字节数组）
func LoadKeypair(path string) (sdktypes.Account, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return sdktypes.Account{}, errors.Wrapf(err, "read keypair %s", path)
	}
	// 文件内容是数字数组，不能直接解到 []byte（会按 base64 解析）
	var ints []int
	if err := json.Unmarshal(raw, &ints); err != nil {
		return sdktypes.Account{}, errors.Wrapf(err, "parse keypair %s", path)
	}
	key := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return sdktypes.Account{}, errors.Errorf("invalid keypair %s: byte %d out of range: %d", path, i, v)
		}
		key[i] = byte(v)
	}
	account, err := sdktypes.AccountFromBytes(key)
	if err != nil {
		return sdktypes.Account{}, errors.Wrapf(err, "invalid keypair %s", path)
	}
	return account, nil
}
