package runtime

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"value-program-sol/internal/consts"
	"value-program-sol/internal/logic/domain"
	"value-program-sol/internal/pkg/logger"
	"value-program-sol/internal/types"
	"value-program-sol/pkg/utils"
)

var (
	ErrProgramNotFound = errors.New("program not found")
	ErrProgramAborted  = errors.New("program aborted")
)

// Status 表示一次调用的最终结果
type Status int

const (
	StatusSuccess Status = iota // 程序正常返回
	StatusFailed                // 程序返回错误，或 runtime 拒绝调用
	StatusAborted               // 程序 panic，被 runtime 捕获
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// InvocationResult 是 runtime 对一次调用的观测结果。没有结构化返回值，只有状态与日志。
type InvocationResult struct {
	ProgramID types.Pubkey
	Status    Status
	Err       error
	Logs      []string
}

func (r *InvocationResult) Success() bool {
	return r.Status == StatusSuccess
}

// Runtime 是本地的程序宿主：维护 ProgramID → Entrypoint 路由表并负责调用。
type Runtime struct {
	mu       sync.RWMutex
	programs map[types.Pubkey]domain.Entrypoint
	workers  int
	tracer   trace.Tracer
}

type Option func(*Runtime)

// WithWorkers 设置 InvokeBatch 的并发度
func WithWorkers(n int) Option {
	return func(r *Runtime) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithTracerProvider 替换默认的全局 TracerProvider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Runtime) {
		r.tracer = tp.Tracer(tracerName)
	}
}

const tracerName = "value-program-sol/runtime"

func New(opts ...Option) *Runtime {
	r := &Runtime{
		programs: make(map[types.Pubkey]domain.Entrypoint),
		workers:  consts.CpuCount,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register 注册程序入口，重复注册会覆盖
func (r *Runtime) Register(programID types.Pubkey, entry domain.Entrypoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.programs[programID] = entry
}

// RegisterAll 接收 decoder.RegisterHandlers 风格的注册函数
func (r *Runtime) RegisterAll(register func(m map[types.Pubkey]domain.Entrypoint)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	register(r.programs)
}

// Programs 返回已注册的程序 ID（无序）
func (r *Runtime) Programs() []types.Pubkey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]types.Pubkey, 0, len(r.programs))
	for id := range r.programs {
		ids = append(ids, id)
	}
	return ids
}

func (r *Runtime) lookup(programID types.Pubkey) (domain.Entrypoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.programs[programID]
	return entry, ok
}

// Invoke 执行一次调用。每次调用使用新的 LogRecorder，调用之间不共享任何状态。
func (r *Runtime) Invoke(ctx context.Context, ic domain.InvocationContext) *InvocationResult {
	ctx, span := r.tracer.Start(ctx, "runtime.invoke", trace.WithAttributes(
		attribute.String("program.id", ic.ProgramID.String()),
		attribute.Int("instruction.data_len", len(ic.Data)),
		attribute.Int("instruction.accounts", len(ic.Accounts)),
	))
	defer span.End()

	result := r.invoke(ctx, ic)

	span.SetAttributes(attribute.String("invoke.status", result.Status.String()))
	if result.Err != nil {
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, result.Err.Error())
	}
	return result
}

func (r *Runtime) invoke(ctx context.Context, ic domain.InvocationContext) *InvocationResult {
	result := &InvocationResult{ProgramID: ic.ProgramID}

	if err := ctx.Err(); err != nil {
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	entry, ok := r.lookup(ic.ProgramID)
	if !ok {
		result.Status = StatusFailed
		result.Err = fmt.Errorf("%w: %s", ErrProgramNotFound, ic.ProgramID)
		return result
	}

	rec := &LogRecorder{}
	rec.invoked(ic.ProgramID, 1)

	status, err := callEntrypoint(entry, rec, ic)
	if err != nil {
		rec.failed(ic.ProgramID, err)
		logger.Warnf("[runtime] program=%s status=%s err=%v", ic.ProgramID, status, err)
	} else {
		rec.succeeded(ic.ProgramID)
	}

	result.Status = status
	result.Err = err
	result.Logs = rec.Snapshot()
	return result
}

// callEntrypoint 执行程序入口，程序内部 panic 视为异常终止，不影响宿主
func callEntrypoint(entry domain.Entrypoint, rec *LogRecorder, ic domain.InvocationContext) (status Status, err error) {
	defer func() {
		if p := recover(); p != nil {
			logger.Errorf("[runtime] program=%s panic: %v\nstack: %s", ic.ProgramID, p, debug.Stack())
			status = StatusAborted
			err = fmt.Errorf("%w: %v", ErrProgramAborted, p)
		}
	}()

	if err := entry(rec, ic.ProgramID, ic.Accounts, ic.Data); err != nil {
		return StatusFailed, err
	}
	return StatusSuccess, nil
}

// InvokeBatch 并发执行多次相互独立的调用，结果顺序与输入一致
func (r *Runtime) InvokeBatch(ctx context.Context, ics []domain.InvocationContext) []*InvocationResult {
	return utils.ParallelMap(ics, r.workers, func(ic domain.InvocationContext) *InvocationResult {
		return r.Invoke(ctx, ic)
	})
}
