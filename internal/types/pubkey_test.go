package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProgramID = "FWcjdAByTdbtwfFcdT8V8zCEPbTNc9cUH41g4JuwXnTy"

func TestPubkeyBase58RoundTrip(t *testing.T) {
	p, err := TryPubkeyFromBase58(testProgramID)
	require.NoError(t, err)
	assert.Equal(t, testProgramID, p.String())
	assert.False(t, p.IsZero())
	assert.True(t, p.Equals(PubkeyFromBase58(testProgramID)))
}

func TestTryPubkeyFromBase58_Invalid(t *testing.T) {
	_, err := TryPubkeyFromBase58("0OIl") // base58 字母表之外的字符
	assert.Error(t, err)

	_, err = TryPubkeyFromBase58("3mJr7AoUXx2Wqd")
	assert.ErrorContains(t, err, "invalid pubkey length")
}

func TestPubkeyBytesIsCopy(t *testing.T) {
	p := PubkeyFromBase58(testProgramID)
	b := p.Bytes()
	b[0] ^= 0xff
	assert.Equal(t, testProgramID, p.String())
}

func TestHashFromBase58(t *testing.T) {
	h, err := HashFromBase58(testProgramID)
	require.NoError(t, err)
	assert.Equal(t, testProgramID, h.String())

	_, err = HashFromBase58("abc")
	assert.Error(t, err)
}
