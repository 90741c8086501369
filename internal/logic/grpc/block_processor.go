package grpc

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"value-program-sol/internal/consts"
	"value-program-sol/internal/logic/decoder"
	"value-program-sol/internal/logic/dispatcher"
	"value-program-sol/internal/logic/domain"
	"value-program-sol/internal/logic/parser"
	"value-program-sol/internal/logic/progress"
	"value-program-sol/internal/logic/runtime"
	"value-program-sol/internal/mq"
	"value-program-sol/internal/pkg/logger"
	"value-program-sol/internal/svc"
	"value-program-sol/internal/types"
	pkgutils "value-program-sol/pkg/utils"

	"github.com/mr-tron/base58"
	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
)

type BlockProcessor struct {
	sc        *svc.WatchServiceContext
	blockChan chan *pb.SubscribeUpdateBlock // 接收 block 的 channel
	ctx       context.Context
	cancel    func(err error)
}

// blockStats 是单个区块的处理统计
type blockStats struct {
	Skipped   bool // slot 已处理过
	Txs       int  // 区块内交易数
	ValidTxs  int  // 通过校验的交易数
	FailedTxs int  // 执行失败的交易数，只统计指令不发布事件
	Matched   int  // 调用目标程序的指令数
	Malformed int  // 解码失败（空数据）的指令数
	Events    int  // 解码成功的事件数
	Published int  // 成功写入 Kafka 的消息数（按分区聚合）
	Failed    int  // 写入失败的消息数
}

type candidateTx struct {
	info   *pb.SubscribeUpdateTransactionInfo
	failed bool // 执行失败，不发布事件
}

// parsedTxResult 单笔交易的解析结果
type parsedTxResult struct {
	events    []dispatcher.KeyedEvent
	matched   int
	malformed int
}

func NewBlockProcessor(sc *svc.WatchServiceContext, blockChan chan *pb.SubscribeUpdateBlock) *BlockProcessor {
	ctx, cancel := context.WithCancelCause(context.Background())
	return &BlockProcessor{
		sc:        sc,
		blockChan: blockChan,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (p *BlockProcessor) Start() {
	for {
		select {
		case <-p.ctx.Done():
			return
		case block := <-p.blockChan:
			p.safeProcBlock(block)
			if len(p.blockChan) > 10 {
				logger.Debugf("[BlockProcessor] block chan len: %d", len(p.blockChan))
			}
		}
	}
}

func (p *BlockProcessor) Stop() {
	p.cancel(errors.New("service stop"))
}

func (p *BlockProcessor) safeProcBlock(block *pb.SubscribeUpdateBlock) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[BlockProcessor] panic at slot %d: %v\nstack: %s", block.GetSlot(), r, debug.Stack())
		}
	}()
	p.procBlock(p.ctx, block)
}

func (p *BlockProcessor) procBlock(ctx context.Context, block *pb.SubscribeUpdateBlock) blockStats {
	startTime := time.Now()
	stats := blockStats{Txs: len(block.Transactions)}

	// 1. 判重：重连后 geyser 可能重放已处理过的 slot
	should, err := p.sc.ProgressManager.ShouldProcessSlot(ctx, block.Slot)
	if err != nil {
		logger.Warnf("[BlockProcessor] slot %d 状态查询失败，继续处理: %v", block.Slot, err)
	} else if !should {
		logger.Debugf("[BlockProcessor] slot %d 已处理，跳过", block.Slot)
		stats.Skipped = true
		return stats
	}

	// 2. 过滤交易：执行失败的交易仍需统计空数据指令
	candidates := make([]candidateTx, 0, len(block.Transactions))
	for _, tx := range block.Transactions {
		switch {
		case parser.IsValidGrpcTx(tx):
			candidates = append(candidates, candidateTx{info: tx})
			stats.ValidTxs++
		case parser.IsFailedGrpcTx(tx):
			candidates = append(candidates, candidateTx{info: tx, failed: true})
			stats.FailedTxs++
		}
	}

	// 3. 并发解析出解码事件
	txCtx := buildTxContext(block)
	results := pkgutils.ParallelMap(candidates, consts.CpuCount+2,
		func(c candidateTx) parsedTxResult {
			return p.parseTx(txCtx, c)
		})

	var events []dispatcher.KeyedEvent
	for _, r := range results {
		stats.Matched += r.matched
		stats.Malformed += r.malformed
		events = append(events, r.events...)
	}
	stats.Events = len(events)

	// 4. 按分区聚合为 Kafka 消息
	kafkaConf := p.sc.Config.KafkaProducerConf
	jobs, err := dispatcher.BuildEventKafkaJobs(txCtx, kafkaConf.Topic, kafkaConf.Partitions, events)
	if err != nil {
		// 编码失败不会因重试恢复
		logger.Errorf("[BlockProcessor] slot %d 构造 Kafka 消息失败: %v", block.Slot, err)
		p.markSlot(ctx, block.Slot, progress.SlotInvalid)
		return stats
	}

	// 5. 发送并记录 slot 状态
	status := progress.SlotProcessed
	if len(jobs) > 0 {
		timeout := time.Duration(kafkaConf.SendTimeMs) * time.Millisecond
		ok, failed := mq.SendKafkaJobs(ctx, p.sc.Producer, jobs, timeout)
		stats.Published, stats.Failed = len(ok), len(failed)
		if len(failed) > 0 {
			status = progress.SlotPending
			logger.Errorf("[BlockProcessor] slot %d 有 %d 条消息发送失败, 首个错误: %v",
				block.Slot, len(failed), failed[0].Err)
		}
	}
	p.markSlot(ctx, block.Slot, status)

	logger.Infof("[BlockProcessor] slot: %d, 耗时: %v, tx: %d, 有效 tx: %d, 失败 tx: %d, 指令: %d, 解码失败: %d, 事件: %d, 发送成功: %d, 发送失败: %d",
		block.Slot, time.Since(startTime), stats.Txs, stats.ValidTxs, stats.FailedTxs, stats.Matched, stats.Malformed,
		stats.Events, stats.Published, stats.Failed)
	return stats
}

func (p *BlockProcessor) markSlot(ctx context.Context, slot uint64, status progress.SlotStatus) {
	if err := p.sc.ProgressManager.MarkSlotStatus(ctx, slot, status); err != nil {
		logger.Warnf("[BlockProcessor] slot %d 状态写入失败: %v", slot, err)
	}
}

func (p *BlockProcessor) parseTx(txCtx *domain.TxContext, c candidateTx) parsedTxResult {
	var result parsedTxResult
	tx := c.info

	translated, err := parser.TranslateGrpcTx(txCtx, tx)
	if err != nil {
		logger.Warnf("[BlockProcessor] translate tx failed, slot=%d, index=%d: %v", txCtx.Slot, tx.Index, err)
		return result
	}

	ixs := parser.FindProgramInstructions(translated, p.sc.ProgramID)
	result.matched = len(ixs)
	if len(ixs) == 0 {
		return result
	}

	programLogs := runtime.ProgramLogsOf(translated.LogMessages, p.sc.ProgramID)
	for _, ix := range ixs {
		decoded, err := decoder.Decode(ix.Data)
		if err != nil {
			result.malformed++
			logger.Debugf("[BlockProcessor] malformed instruction, sig=%s, ix=%d, inner=%d",
				base58.Encode(translated.Signature), ix.IxIndex, ix.InnerIndex)
			continue
		}
		if c.failed {
			continue
		}

		event, err := dispatcher.NewDecodedEvent(translated, ix, decoded, programLogs)
		if err != nil {
			logger.Errorf("[BlockProcessor] build event failed: %v", err)
			continue
		}
		result.events = append(result.events, event)
	}
	return result
}

func buildTxContext(block *pb.SubscribeUpdateBlock) *domain.TxContext {
	// blockHash 解析失败只打日志，使用零值继续
	blockHash, err := types.HashFromBase58(block.Blockhash)
	if err != nil {
		logger.Errorf("[BlockProcessor] BlockHash 无法解析，将使用零值：slot=%d, blockhash=%s, err=%v",
			block.Slot, block.Blockhash, err)
	}
	var blockTime int64
	if bt := block.GetBlockTime(); bt != nil {
		blockTime = bt.Timestamp
	}
	return &domain.TxContext{
		BlockTime:  blockTime,
		Slot:       block.Slot,
		ParentSlot: block.ParentSlot,
		BlockHash:  blockHash,
	}
}
