package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"value-program-sol/internal/config"
	"value-program-sol/internal/logic/decoder"
	"value-program-sol/internal/logic/domain"
	"value-program-sol/internal/logic/fixture"
	"value-program-sol/internal/logic/runtime"
	"value-program-sol/internal/pkg/logger"
	"value-program-sol/internal/types"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
)

var configFile = flag.String("f", "etc/simulate.yaml", "the config file")

func main() {
	defer func() {
		if r := recover(); r != nil {
			logx.Errorf("panic: %+v\nstack: %s", r, debug.Stack())
			os.Exit(2)
		}
	}()

	flag.Parse()

	var c config.SimulateConfig
	conf.MustLoad(*configFile, &c)

	if err := logger.Init(c.LogConf.ToLogOption()); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	failed, err := run(c)
	if err != nil {
		logger.Errorf("[simulate] %v", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(3)
	}
}

// run 执行 fixture 中的全部调用并打印结果，返回未成功的调用数
func run(c config.SimulateConfig) (int, error) {
	programID, err := types.TryPubkeyFromBase58(c.ProgramID)
	if err != nil {
		return 0, fmt.Errorf("invalid program_id %q: %w", c.ProgramID, err)
	}

	fx, err := fixture.Load(c.Fixture)
	if err != nil {
		return 0, err
	}
	ics, err := fx.Contexts()
	if err != nil {
		return 0, err
	}

	rt := runtime.New(runtime.WithWorkers(c.Workers))
	rt.RegisterAll(func(m map[types.Pubkey]domain.Entrypoint) {
		decoder.RegisterHandlers(m, programID)
	})
	logger.Infof("[simulate] program %s registered, %d invocations", programID, len(ics))

	failed := 0
	results := rt.InvokeBatch(context.Background(), ics)
	for i, res := range results {
		name := fx.Invocations[i].Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		fmt.Printf("=== %s: %s\n", name, res.Status)
		if res.Err != nil {
			fmt.Printf("    error: %v\n", res.Err)
		}
		if len(res.Logs) > 0 {
			fmt.Printf("    %s\n", strings.Join(res.Logs, "\n    "))
		}
		if !res.Success() {
			failed++
		}
	}
	fmt.Printf("--- %d invocations, %d ok, %d failed\n", len(results), len(results)-failed, failed)
	return failed, nil
}
