package runtime

import (
	"fmt"
	"strings"
	"sync"

	"value-program-sol/internal/logic/domain"
	"value-program-sol/internal/pkg/logger"
	"value-program-sol/internal/types"
)

const programLogPrefix = "Program log: "

var _ domain.Sink = (*LogRecorder)(nil)

// LogRecorder 收集一次调用产生的全部日志，格式与链上 LogMessages 保持一致。
type LogRecorder struct {
	mu   sync.Mutex
	Logs []string
}

// Record 记录程序通过 sink 输出的诊断信息
func (r *LogRecorder) Record(msg string) {
	r.append(programLogPrefix + msg)
	logger.Debugf("[runtime] %s%s", programLogPrefix, msg)
}

func (r *LogRecorder) invoked(programID types.Pubkey, depth int) {
	r.append(fmt.Sprintf("Program %s invoke [%d]", programID, depth))
}

func (r *LogRecorder) succeeded(programID types.Pubkey) {
	r.append(fmt.Sprintf("Program %s success", programID))
}

func (r *LogRecorder) failed(programID types.Pubkey, err error) {
	r.append(fmt.Sprintf("Program %s failed: %v", programID, err))
}

func (r *LogRecorder) append(line string) {
	r.mu.Lock()
	r.Logs = append(r.Logs, line)
	r.mu.Unlock()
}

// Snapshot 返回当前日志的拷贝
func (r *LogRecorder) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Logs))
	copy(out, r.Logs)
	return out
}

// ProgramLogs 只返回程序自身输出的日志（去掉 "Program log: " 前缀）
func ProgramLogs(logs []string) []string {
	var out []string
	for _, line := range logs {
		if len(line) >= len(programLogPrefix) && line[:len(programLogPrefix)] == programLogPrefix {
			out = append(out, line[len(programLogPrefix):])
		}
	}
	return out
}

// ProgramLogsOf 只返回 programID 自身调用帧内输出的日志。
// 按 invoke / success / failed 行维护调用栈，CPI 中其他程序的日志不计入。
func ProgramLogsOf(logs []string, programID types.Pubkey) []string {
	id := programID.String()
	var (
		out   []string
		stack []string
	)
	for _, line := range logs {
		if strings.HasPrefix(line, programLogPrefix) {
			if len(stack) > 0 && stack[len(stack)-1] == id {
				out = append(out, line[len(programLogPrefix):])
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[0] != "Program" {
			continue
		}
		switch fields[2] {
		case "invoke":
			stack = append(stack, fields[1])
		case "success", "failed:":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return out
}
