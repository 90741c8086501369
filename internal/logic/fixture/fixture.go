package fixture

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"value-program-sol/internal/logic/client"
	"value-program-sol/internal/logic/domain"
	"value-program-sol/internal/types"
)

// Fixture 描述一组本地模拟调用
type Fixture struct {
	ProgramID   string       `yaml:"program_id"`
	Invocations []Invocation `yaml:"invocations"`
}

// Invocation 是一次调用的描述。data（hex）与 opcode/value 二选一；
// 显式写 data: "" 表示空指令数据。
type Invocation struct {
	Name     string    `yaml:"name"`
	Data     *string   `yaml:"data"`
	Opcode   *uint8    `yaml:"opcode"`
	Value    *uint64   `yaml:"value"`
	Accounts []Account `yaml:"accounts"`
}

type Account struct {
	Key      string `yaml:"key"`
	Owner    string `yaml:"owner"`
	Lamports uint64 `yaml:"lamports"`
	Signer   bool   `yaml:"signer"`
	Writable bool   `yaml:"writable"`
}

// Load 读取并解析 YAML fixture 文件
func Load(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}

// Contexts 将 fixture 转换为调用上下文，顺序与文件中一致
func (f *Fixture) Contexts() ([]domain.InvocationContext, error) {
	programID, err := types.TryPubkeyFromBase58(f.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("program_id: %w", err)
	}

	out := make([]domain.InvocationContext, 0, len(f.Invocations))
	for i, inv := range f.Invocations {
		data, err := inv.instructionData()
		if err != nil {
			return nil, fmt.Errorf("invocation[%d] %q: %w", i, inv.Name, err)
		}
		accounts, err := inv.accountInfos()
		if err != nil {
			return nil, fmt.Errorf("invocation[%d] %q: %w", i, inv.Name, err)
		}
		out = append(out, domain.InvocationContext{
			ProgramID: programID,
			Accounts:  accounts,
			Data:      data,
		})
	}
	return out, nil
}

func (inv *Invocation) instructionData() ([]byte, error) {
	hasRaw := inv.Data != nil
	hasTyped := inv.Opcode != nil || inv.Value != nil

	switch {
	case hasRaw && hasTyped:
		return nil, fmt.Errorf("data and opcode/value are mutually exclusive")
	case hasRaw:
		s := strings.TrimPrefix(strings.ReplaceAll(*inv.Data, " ", ""), "0x")
		data, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid hex data: %w", err)
		}
		return data, nil
	case hasTyped:
		var opcode uint8
		var value uint64
		if inv.Opcode != nil {
			opcode = *inv.Opcode
		}
		if inv.Value != nil {
			value = *inv.Value
		}
		return client.EncodeInstructionData(opcode, value)
	default:
		return nil, fmt.Errorf("missing data or opcode/value")
	}
}

func (inv *Invocation) accountInfos() ([]domain.AccountInfo, error) {
	if len(inv.Accounts) == 0 {
		return nil, nil
	}
	infos := make([]domain.AccountInfo, 0, len(inv.Accounts))
	for j, a := range inv.Accounts {
		key, err := types.TryPubkeyFromBase58(a.Key)
		if err != nil {
			return nil, fmt.Errorf("accounts[%d].key: %w", j, err)
		}
		var owner types.Pubkey
		if a.Owner != "" {
			if owner, err = types.TryPubkeyFromBase58(a.Owner); err != nil {
				return nil, fmt.Errorf("accounts[%d].owner: %w", j, err)
			}
		}
		infos = append(infos, domain.AccountInfo{
			Key:        key,
			Owner:      owner,
			Lamports:   a.Lamports,
			IsSigner:   a.Signer,
			IsWritable: a.Writable,
		})
	}
	return infos, nil
}
