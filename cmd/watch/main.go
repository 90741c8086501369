package main

import (
	"flag"
	"runtime/debug"

	"value-program-sol/internal/config"
	"value-program-sol/internal/logic/grpc"
	"value-program-sol/internal/pkg/logger"
	"value-program-sol/internal/svc"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	zerosvc "github.com/zeromicro/go-zero/core/service"
)

var configFile = flag.String("f", "etc/watch.yaml", "the config file")

func main() {
	defer func() {
		if r := recover(); r != nil {
			logx.Errorf("panic: %+v\nstack: %s", r, debug.Stack())
		}
	}()

	flag.Parse()

	var c config.WatchConfig
	conf.MustLoad(*configFile, &c)

	if err := logger.Init(c.LogConf.ToLogOption()); err != nil {
		panic(err)
	}
	defer logger.Sync()

	serviceContext, err := svc.NewWatchServiceContext(c)
	if err != nil {
		panic(err)
	}
	defer serviceContext.Close()

	blockChan := make(chan *pb.SubscribeUpdateBlock, c.BlockChanSize)

	grpcService, err := grpc.NewGrpcStreamManager(serviceContext, blockChan)
	if err != nil {
		panic(err)
	}

	sg := zerosvc.NewServiceGroup()
	defer sg.Stop()
	sg.Add(grpc.NewBlockProcessor(serviceContext, blockChan))
	sg.Add(grpcService)

	logger.Infof("Starting watcher, program=%s", serviceContext.ProgramID)

	// Start 阻塞，收到 SIGTERM 时由 go-zero 触发 Stop
	sg.Start()
}
