package types

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// PubkeySize 是 Solana 地址的字节长度
const PubkeySize = 32

// Pubkey 表示程序 ID 或账户地址（32 字节，字符串形式为 base58）
type Pubkey [PubkeySize]byte

func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

func (p Pubkey) Equals(other Pubkey) bool {
	return p == other
}

// IsZero 判断是否为全零地址（未设置）
func (p Pubkey) IsZero() bool {
	return p == Pubkey{}
}

// Bytes 返回地址的拷贝，避免调用方修改底层数组
func (p Pubkey) Bytes() []byte {
	b := make([]byte, PubkeySize)
	copy(b, p[:])
	return b
}

// TryPubkeyFromBase58 解析 base58 字符串为 Pubkey，失败时返回 error（用于不信任输入路径）
func TryPubkeyFromBase58(s string) (Pubkey, error) {
	data, err := base58.Decode(s)
	if err != nil {
		return Pubkey{}, fmt.Errorf("failed to decode base58 pubkey %q: %w", s, err)
	}
	return TryPubkeyFromBytes(data)
}

// TryPubkeyFromBytes 从原始字节构造 Pubkey，长度必须为 32
func TryPubkeyFromBytes(data []byte) (Pubkey, error) {
	if len(data) != PubkeySize {
		return Pubkey{}, fmt.Errorf("invalid pubkey length: got %d, want %d", len(data), PubkeySize)
	}
	var p Pubkey
	copy(p[:], data)
	return p, nil
}

// PubkeyFromBase58 用于常量等可信输入，解析失败直接 panic
func PubkeyFromBase58(s string) Pubkey {
	p, err := TryPubkeyFromBase58(s)
	if err != nil {
		panic(err)
	}
	return p
}
