package parser

import (
	"testing"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"value-program-sol/internal/consts"
	"value-program-sol/internal/logic/domain"
	"value-program-sol/internal/types"
)

var (
	testProgramID = types.PubkeyFromBase58(consts.DefaultProgramID)
	payer         = types.Pubkey{1}
	otherProgram  = types.Pubkey{2}
	lookupAccount = types.Pubkey{3}
)

// buildTestTx 构造一笔交易：
//
//	ix0: otherProgram，inner 中 CPI 调用 testProgramID
//	ix1: testProgramID，账户来自 lookup table
func buildTestTx() *pb.SubscribeUpdateTransactionInfo {
	sig := make([]byte, 64)
	sig[0] = 0xaa
	return &pb.SubscribeUpdateTransactionInfo{
		Signature: sig,
		Index:     7,
		Transaction: &pb.Transaction{
			Signatures: [][]byte{sig},
			Message: &pb.Message{
				Header:      &pb.MessageHeader{NumRequiredSignatures: 1},
				AccountKeys: [][]byte{payer[:], otherProgram[:], testProgramID[:]},
				Instructions: []*pb.CompiledInstruction{
					{ProgramIdIndex: 1, Accounts: []byte{0}, Data: []byte{0xff}},
					{ProgramIdIndex: 2, Accounts: []byte{0, 3}, Data: []byte{0x02, 1, 0, 0, 0, 0, 0, 0, 0}},
				},
			},
		},
		Meta: &pb.TransactionStatusMeta{
			LogMessages:             []string{"Program log: value 1"},
			LoadedWritableAddresses: [][]byte{lookupAccount[:]},
			InnerInstructions: []*pb.InnerInstructions{
				{Index: 0, Instructions: []*pb.InnerInstruction{
					{ProgramIdIndex: 2, Accounts: []byte{0}, Data: []byte{0x01}},
				}},
			},
		},
	}
}

func TestTranslateGrpcTx(t *testing.T) {
	txCtx := &domain.TxContext{Slot: 100}
	tx, err := TranslateGrpcTx(txCtx, buildTestTx())
	require.NoError(t, err)

	assert.Same(t, txCtx, tx.TxCtx)
	assert.Equal(t, uint64(7), tx.TxIndex)
	assert.Equal(t, payer, tx.Signer)
	assert.Equal(t, []string{"Program log: value 1"}, tx.LogMessages)

	require.Len(t, tx.Instructions, 2)
	assert.Equal(t, otherProgram, tx.Instructions[0].Instruction.ProgramID)
	require.Len(t, tx.Instructions[0].Inners, 1)
	assert.Equal(t, testProgramID, tx.Instructions[0].Inners[0].ProgramID)
	assert.Nil(t, tx.Instructions[1].Inners)
	assert.Equal(t, []types.Pubkey{payer, lookupAccount}, tx.Instructions[1].Instruction.Accounts)
}

func TestTranslateGrpcTx_BadIndex(t *testing.T) {
	raw := buildTestTx()
	raw.Transaction.Message.Instructions[1].Accounts = []byte{9}
	_, err := TranslateGrpcTx(&domain.TxContext{}, raw)
	assert.ErrorContains(t, err, "out of range")

	raw = buildTestTx()
	raw.Transaction.Message.Header = nil
	_, err = TranslateGrpcTx(&domain.TxContext{}, raw)
	assert.ErrorContains(t, err, "panic")
}

func TestFindProgramInstructions(t *testing.T) {
	tx, err := TranslateGrpcTx(&domain.TxContext{}, buildTestTx())
	require.NoError(t, err)

	found := FindProgramInstructions(tx, testProgramID)
	require.Len(t, found, 2)

	assert.Equal(t, uint16(0), found[0].IxIndex)
	assert.Equal(t, int16(0), found[0].InnerIndex)
	assert.Equal(t, []byte{0x01}, found[0].Data)

	assert.Equal(t, uint16(1), found[1].IxIndex)
	assert.Equal(t, int16(-1), found[1].InnerIndex)

	assert.Empty(t, FindProgramInstructions(tx, types.Pubkey{42}))
}

func TestValidateGrpcTx(t *testing.T) {
	assert.NoError(t, ValidateGrpcTx(buildTestTx()))
	assert.True(t, IsValidGrpcTx(buildTestTx()))

	vote := buildTestTx()
	vote.IsVote = true
	assert.ErrorContains(t, ValidateGrpcTx(vote), "vote")
	assert.False(t, IsValidGrpcTx(vote))

	failed := buildTestTx()
	failed.Meta.Err = &pb.TransactionError{Err: []byte{1}}
	assert.Error(t, ValidateGrpcTx(failed))
	assert.False(t, IsValidGrpcTx(failed))
	assert.True(t, IsFailedGrpcTx(failed))
	assert.False(t, IsFailedGrpcTx(buildTestTx()))
	assert.False(t, IsFailedGrpcTx(vote))

	short := buildTestTx()
	short.Transaction.Signatures = [][]byte{{1, 2}}
	assert.ErrorContains(t, ValidateGrpcTx(short), "signature length")

	assert.Error(t, ValidateGrpcTx(nil))
	assert.False(t, IsValidGrpcTx(nil))
	assert.False(t, IsFailedGrpcTx(nil))
}
