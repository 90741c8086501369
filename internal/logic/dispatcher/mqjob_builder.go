package dispatcher

import (
	"fmt"
	"strconv"

	"value-program-sol/internal/consts"
	"value-program-sol/internal/logic/domain"
	"value-program-sol/internal/mq"
	"value-program-sol/internal/utils"

	"google.golang.org/protobuf/types/known/structpb"
)

const envelopeVersion = 1

// BuildEventKafkaJobs 构造解码事件的 KafkaJob，按分区分组。
// 每个 Job 代表一个区块内同一分区的事件聚合，分区内保持输入顺序。
func BuildEventKafkaJobs(
	txCtx *domain.TxContext,
	topic string,
	partitions int,
	events []KeyedEvent,
) ([]*mq.KafkaJob, error) {
	if partitions <= 0 {
		partitions = 1
	}
	if len(events) == 0 {
		return nil, nil
	}

	// 按分区初始化 buckets
	buckets := make([][]*structpb.Struct, partitions)
	capacity := calcCapPerPartition(len(events), partitions, 10)
	for i := range buckets {
		buckets[i] = make([]*structpb.Struct, 0, capacity)
	}

	for _, evt := range events {
		pid := utils.PartitionHashBytes(evt.Key, uint32(partitions))
		buckets[pid] = append(buckets[pid], evt.Event)
	}

	return buildJobs(txCtx, topic, buckets)
}

// buildJobs 将每个分区 bucket 中的事件封装为 KafkaJob
func buildJobs(txCtx *domain.TxContext, topic string, buckets [][]*structpb.Struct) ([]*mq.KafkaJob, error) {
	jobs := make([]*mq.KafkaJob, 0, len(buckets))
	for pid, list := range buckets {
		if len(list) == 0 {
			continue
		}
		value, err := utils.EncodeEvent(consts.EventTypeDecodedInstruction, buildEnvelope(txCtx, list))
		if err != nil {
			return nil, fmt.Errorf("partition %d: %w", pid, err)
		}
		jobs = append(jobs, &mq.KafkaJob{
			Topic:     topic,
			Partition: int32(pid),
			Value:     value,
		})
	}
	return jobs, nil
}

func buildEnvelope(txCtx *domain.TxContext, events []*structpb.Struct) *structpb.Struct {
	values := make([]*structpb.Value, len(events))
	for i, e := range events {
		values[i] = structpb.NewStructValue(e)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"version":     structpb.NewNumberValue(envelopeVersion),
		"chain_id":    structpb.NewNumberValue(float64(consts.ChainIDSolana)),
		"slot":        structpb.NewStringValue(strconv.FormatUint(txCtx.Slot, 10)),
		"parent_slot": structpb.NewStringValue(strconv.FormatUint(txCtx.ParentSlot, 10)),
		"block_time":  structpb.NewNumberValue(float64(txCtx.BlockTime)),
		"block_hash":  structpb.NewStringValue(txCtx.BlockHash.String()),
		"events":      structpb.NewListValue(&structpb.ListValue{Values: values}),
	}}
}

// calcCapPerPartition 估算每个分区的初始容量，至少为 minCap
func calcCapPerPartition(total, partitions, minCap int) int {
	if partitions <= 0 {
		return minCap
	}
	n := (total + partitions - 1) / partitions
	if n < minCap {
		return minCap
	}
	return n
}
