package parser

import (
	"value-program-sol/internal/logic/domain"
	"value-program-sol/internal/types"
)

// ProgramInstruction 是交易中调用指定程序的一条指令（主指令或 inner 指令）
type ProgramInstruction struct {
	IxIndex    uint16 // 主指令序号
	InnerIndex int16  // inner 指令序号，主指令为 -1
	domain.Instruction
}

// FindProgramInstructions 按执行顺序收集所有 ProgramID 等于 programID 的指令（含 CPI 产生的 inner 指令）
func FindProgramInstructions(tx *domain.TranslatedTx, programID types.Pubkey) []ProgramInstruction {
	var out []ProgramInstruction
	for i, ti := range tx.Instructions {
		if ti.Instruction.ProgramID == programID {
			out = append(out, ProgramInstruction{IxIndex: uint16(i), InnerIndex: -1, Instruction: ti.Instruction})
		}
		for j, inner := range ti.Inners {
			if inner.ProgramID == programID {
				out = append(out, ProgramInstruction{IxIndex: uint16(i), InnerIndex: int16(j), Instruction: inner})
			}
		}
	}
	return out
}
