package main

import (
	"flag"
	"fmt"
	"time"

	"gar/internal/config"
	"gar/pkg/actor"
	"gar/pkg/actor/router"
	"gar/pkg/actor/typed"
	"gar/pkg/glog"
	"gar/pkg/workers"

	"go.uber.org/zap"
)

var configPath = flag.String("c", "", "配置文件路径，留空使用默认配置")

func main() {
	flag.Parse()

	cfg := loadConfig()
	glog.Init(&cfg.Glog)
	defer glog.Stop()
	workers.Resize(cfg.Runtime.WorkerPoolSize)

	system, err := actor.NewSystem(
		actor.WithAddress(cfg.Node.Address),
		actor.WithWorkerId(cfg.Node.Id),
	)
	if err != nil {
		panic(err)
	}

	requests, err := typed.NewRequestResponseManager(cfg.Node.Id)
	if err != nil {
		panic(err)
	}
	requests.Attach(system)

	runEchoRound(system, cfg)
	runRouterRound(system, cfg)
	runPoolRound(system)

	wait := time.Duration(cfg.Runtime.ShutdownWaitMs) * time.Millisecond
	if err = system.Shutdown(wait); err != nil {
		glog.Warn("shutdown incomplete", zap.Error(err))
	}
}

func loadConfig() *config.Config {
	if *configPath == "" {
		return config.Default()
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	return cfg
}

// newEchoActor 回显 actor：原样返回负载
func newEchoActor() actor.IActor {
	r := typed.NewReceiver()
	typed.On(r, "echo", func(ctx actor.IContext, payload string, msg *actor.Message) (interface{}, error) {
		return payload, nil
	})
	return r
}

// runEchoRound 自适应调度器下的请求应答回环
func runEchoRound(system *actor.System, cfg *config.Config) {
	dispatcher := NewAdaptiveDispatcher(cfg.Runtime.Throughput)
	pid, err := system.Spawn(newEchoActor,
		actor.WithName("echo"),
		actor.WithDispatcher(dispatcher),
	)
	if err != nil {
		panic(err)
	}

	start := time.Now()
	const rounds = 200
	for i := 0; i < rounds; i++ {
		payload := fmt.Sprintf("ping-%d", i)
		result, askErr := system.Ask(pid, actor.NewMessage("echo", payload), time.Second)
		if askErr != nil {
			glog.Error("echo ask failed", zap.Int("round", i), zap.Error(askErr))
			return
		}
		if result != payload {
			glog.Error("echo mismatch", zap.Any("got", result))
			return
		}
	}
	stats := dispatcher.GetStats()
	glog.Info("echo round done",
		zap.Int("rounds", rounds),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("throughput", stats.CurrentThroughput),
		zap.Int64("processed", stats.ProcessedTotal))
}

// runRouterRound 一致性哈希路由回环
func runRouterRound(system *actor.System, cfg *config.Config) {
	pooled, err := actor.NewPooledDispatcher(cfg.Runtime.Throughput,
		actor.WithLanes(cfg.Runtime.PooledLanes),
		actor.WithLaneCapacity(cfg.Runtime.PooledLaneSize),
	)
	if err != nil {
		panic(err)
	}
	glog.Info("router workers", zap.String("mode", pooled.Mode()))

	routees := make([]*actor.Pid, 0, 3)
	for i := 0; i < 3; i++ {
		pid, err := system.Spawn(newEchoActor, actor.WithDispatcher(pooled))
		if err != nil {
			panic(err)
		}
		routees = append(routees, pid)
	}
	routerPid, err := router.Spawn(system, router.NewConsistentHash(), routees)
	if err != nil {
		panic(err)
	}

	for i := 0; i < 100; i++ {
		msg := actor.NewMessage("echo", fmt.Sprintf("route-%d", i%5))
		if sendErr := system.Send(routerPid, msg); sendErr != nil {
			glog.Warn("route send failed", zap.Error(sendErr))
		}
	}
	result, err := system.Ask(routerPid, actor.NewMessage(router.TypeGetRoutees, nil), time.Second)
	if err != nil {
		glog.Warn("query routees failed", zap.Error(err))
		return
	}
	if reply, ok := result.(*actor.Message); ok {
		glog.Info("router round done",
			zap.Int("routees", len(reply.Payload.([]*actor.Pid))))
	}
}

// runPoolRound 缓冲池命中率演示
func runPoolRound(system *actor.System) {
	bufPool, err := system.Pools().NewBufferPool("frame", 4096)
	if err != nil {
		panic(err)
	}
	for i := 0; i < 256; i++ {
		buf := bufPool.Acquire()
		buf[0] = byte(i)
		bufPool.Release(buf)
	}
	stats := bufPool.Stats()
	glog.Info("buffer pool round done",
		zap.Int("size", stats.Size),
		zap.Int64("created", stats.Created),
		zap.Float64("hitRate", stats.HitRate))
}

// NewAdaptiveDispatcher 自适应吞吐调度器的节点默认参数
func NewAdaptiveDispatcher(throughput int) *actor.ThroughputDispatcher {
	return actor.NewThroughputDispatcher(throughput,
		actor.WithBatchSize(10),
		actor.WithWindow(time.Second),
	)
}
