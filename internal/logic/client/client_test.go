package client

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blocto/solana-go-sdk/rpc"
	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"value-program-sol/internal/consts"
	"value-program-sol/internal/logic/decoder"
	"value-program-sol/internal/types"
)

var testProgramID = types.PubkeyFromBase58(consts.DefaultProgramID)

func TestEncodeInstructionData(t *testing.T) {
	for _, v := range []uint64{0, 1, 3, 1 << 40, math.MaxUint64} {
		data, err := EncodeInstructionData(0x02, v)
		require.NoError(t, err)
		require.Len(t, data, decoder.InstructionSize)
		assert.Equal(t, byte(0x02), data[0])
		assert.Equal(t, v, binary.LittleEndian.Uint64(data[1:]))

		ix, err := decoder.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, v, ix.Parameter)
	}
}

func TestNewInstruction(t *testing.T) {
	acc := types.Pubkey{9}
	ix := NewInstruction(testProgramID, []byte{1}, AccountMeta{Key: acc, IsWritable: true})
	assert.Equal(t, testProgramID[:], ix.ProgramID.Bytes())
	require.Len(t, ix.Accounts, 1)
	assert.Equal(t, acc[:], ix.Accounts[0].PubKey.Bytes())
	assert.True(t, ix.Accounts[0].IsWritable)
	assert.False(t, ix.Accounts[0].IsSigner)
}

type fakeRPC struct {
	sent     []sdktypes.Transaction
	statuses []*rpc.SignatureStatus
	polls    int
}

func (f *fakeRPC) GetLatestBlockhash(context.Context) (rpc.GetLatestBlockhashValue, error) {
	return rpc.GetLatestBlockhashValue{Blockhash: consts.DefaultProgramID}, nil
}

func (f *fakeRPC) SendTransaction(_ context.Context, tx sdktypes.Transaction) (string, error) {
	f.sent = append(f.sent, tx)
	return "sig-1", nil
}

func (f *fakeRPC) GetSignatureStatus(context.Context, string) (*rpc.SignatureStatus, error) {
	i := f.polls
	f.polls++
	if i >= len(f.statuses) {
		return f.statuses[len(f.statuses)-1], nil
	}
	return f.statuses[i], nil
}

func commitment(c rpc.Commitment) *rpc.Commitment { return &c }

func TestSender_Send(t *testing.T) {
	f := &fakeRPC{}
	signer := sdktypes.NewAccount()
	data, err := EncodeInstructionData(0, 3)
	require.NoError(t, err)

	sig, err := NewSender(f).Send(context.Background(), signer, NewInstruction(testProgramID, data))
	require.NoError(t, err)
	assert.Equal(t, "sig-1", sig)
	require.Len(t, f.sent, 1)
	require.Len(t, f.sent[0].Message.Instructions, 1)
	assert.Equal(t, data, f.sent[0].Message.Instructions[0].Data)
	assert.Len(t, f.sent[0].Signatures, 1)
}

func TestSender_SendWithoutInstructions(t *testing.T) {
	_, err := NewSender(&fakeRPC{}).Send(context.Background(), sdktypes.NewAccount())
	assert.Error(t, err)
}

func TestSender_WaitConfirmed(t *testing.T) {
	f := &fakeRPC{statuses: []*rpc.SignatureStatus{
		nil,
		{ConfirmationStatus: commitment(rpc.CommitmentProcessed)},
		{ConfirmationStatus: commitment(rpc.CommitmentConfirmed)},
	}}
	err := NewSender(f).WaitConfirmed(context.Background(), "sig-1", time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, f.polls)
}

func TestSender_WaitConfirmedFailedTx(t *testing.T) {
	f := &fakeRPC{statuses: []*rpc.SignatureStatus{
		{Err: map[string]any{"InstructionError": []any{0, "ProgramFailedToComplete"}}},
	}}
	err := NewSender(f).WaitConfirmed(context.Background(), "sig-1", time.Millisecond)
	assert.True(t, errors.Is(err, ErrTransactionFailed), "err=%v", err)
}

func TestSender_WaitConfirmedTimeout(t *testing.T) {
	f := &fakeRPC{statuses: []*rpc.SignatureStatus{nil}}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := NewSender(f).WaitConfirmed(ctx, "sig-1", 5*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoadKeypair(t *testing.T) {
	account := sdktypes.NewAccount()
	ints := make([]int, len(account.PrivateKey))
	for i, b := range account.PrivateKey {
		ints[i] = int(b)
	}
	raw, err := json.Marshal(ints)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	loaded, err := LoadKeypair(path)
	require.NoError(t, err)
	assert.Equal(t, account.PublicKey, loaded.PublicKey)

	_, err = LoadKeypair(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
