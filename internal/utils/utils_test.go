package utils

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestEncodeEvent_Prefix(t *testing.T) {
	msg, err := structpb.NewStruct(map[string]any{"opcode": 2, "parameter": "1"})
	require.NoError(t, err)

	data, err := EncodeEvent(7, msg)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), binary.LittleEndian.Uint32(data[:EventTypeSize]))

	var got structpb.Struct
	eventType, err := DecodeEvent(data, &got)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), eventType)
	assert.Equal(t, "1", got.Fields["parameter"].GetStringValue())
	assert.Equal(t, float64(2), got.Fields["opcode"].GetNumberValue())
}

func TestDecodeEvent_Short(t *testing.T) {
	_, err := DecodeEvent([]byte{1, 2}, &structpb.Struct{})
	assert.Error(t, err)
}

func TestPartitionHashBytes(t *testing.T) {
	assert.Equal(t, uint32(0), PartitionHashBytes([]byte{1, 2, 3}, 8))
	assert.Equal(t, uint32(0), PartitionHashBytes(make([]byte, 64), 0))

	sig := make([]byte, 64)
	sig[27] = 5
	assert.Equal(t, uint32(5), PartitionHashBytes(sig, 8))
	sig[19] = 1 // 256 + 5
	assert.Equal(t, uint32(261%8), PartitionHashBytes(sig, 8))
}
