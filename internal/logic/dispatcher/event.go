package dispatcher

import (
	"slices"
	"strconv"

	"value-program-sol/internal/logic/decoder"
	"value-program-sol/internal/logic/domain"
	"value-program-sol/internal/logic/parser"

	"github.com/mr-tron/base58"
	"google.golang.org/protobuf/types/known/structpb"
)

// KeyedEvent 是带分区 key 的事件
type KeyedEvent struct {
	Key   []byte // 用于选择分区（交易签名）
	Event *structpb.Struct
}

// NewDecodedEvent 构造一条指令解码事件。
// u64 字段以十进制字符串保存，structpb 的数字是 float64。
func NewDecodedEvent(
	tx *domain.TranslatedTx,
	ix parser.ProgramInstruction,
	decoded domain.DecodedInstruction,
	programLogs []string,
) (KeyedEvent, error) {
	logLine := decoder.FormatParameter(decoded.Parameter)
	event, err := structpb.NewStruct(map[string]any{
		"tx_index":    tx.TxIndex,
		"signature":   base58.Encode(tx.Signature),
		"signer":      tx.Signer.String(),
		"program_id":  ix.ProgramID.String(),
		"ix_index":    int(ix.IxIndex),
		"inner_index": int(ix.InnerIndex),
		"opcode":      int(decoded.Opcode),
		"parameter":   strconv.FormatUint(decoded.Parameter, 10),
		"log":         logLine,
		"log_matched": slices.Contains(programLogs, logLine),
	})
	if err != nil {
		return KeyedEvent{}, err
	}
	return KeyedEvent{Key: tx.Signature, Event: event}, nil
}
