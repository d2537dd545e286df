package actor

import (
	"fmt"
	"runtime"
	"time"

	"gar/pkg/glog"

	"github.com/panjf2000/ants/v2"
)

const defaultLaneCapacity = 5

// PooledDispatcher 多车道协程池调度器
// 每个车道是一个容量受限的协程池，任务按最少任务数分配到车道；
// 启动时固定执行模式并通过 Mode 上报，不做静默降级
type PooledDispatcher struct {
	pools      *ants.MultiPool
	throughput int
	lanes      int
	laneCap    int
}

type PooledOption func(*pooledOptions)

type pooledOptions struct {
	lanes   int
	laneCap int
}

// WithLanes 车道数，默认为可用并行度
func WithLanes(n int) PooledOption {
	return func(op *pooledOptions) {
		op.lanes = n
	}
}

// WithLaneCapacity 单车道并发上限
func WithLaneCapacity(n int) PooledOption {
	return func(op *pooledOptions) {
		op.laneCap = n
	}
}

func NewPooledDispatcher(throughput int, options ...PooledOption) (*PooledDispatcher, error) {
	opts := &pooledOptions{
		lanes:   runtime.GOMAXPROCS(0),
		laneCap: defaultLaneCapacity,
	}
	for _, option := range options {
		option(opts)
	}
	if opts.lanes <= 0 {
		opts.lanes = 1
	}
	if opts.laneCap <= 0 {
		opts.laneCap = defaultLaneCapacity
	}
	if throughput <= 0 {
		throughput = defaultThroughput
	}
	pools, err := ants.NewMultiPool(opts.lanes, opts.laneCap, ants.LeastTasks)
	if err != nil {
		return nil, err
	}
	return &PooledDispatcher{
		pools:      pools,
		throughput: throughput,
		lanes:      opts.lanes,
		laneCap:    opts.laneCap,
	}, nil
}

var _ IDispatcher = (*PooledDispatcher)(nil)

func (d *PooledDispatcher) Schedule(fn func(), recoverFun func(err interface{})) error {
	return d.pools.Submit(func() {
		defer func() {
			if err := recover(); err != nil {
				if recoverFun != nil {
					recoverFun(err)
				} else {
					glog.Errorf("pooled dispatcher task panic:%+v", err)
				}
			}
		}()
		fn()
	})
}

func (d *PooledDispatcher) Throughput() int {
	return d.throughput
}

// Mode 上报实际执行模式
func (d *PooledDispatcher) Mode() string {
	return fmt.Sprintf("ants-multipool/least-tasks lanes=%d laneCap=%d", d.lanes, d.laneCap)
}

// Running 当前正在执行的任务数
func (d *PooledDispatcher) Running() int {
	return d.pools.Running()
}

// Release 关闭调度器，等待在途任务结束
func (d *PooledDispatcher) Release(timeout time.Duration) error {
	return d.pools.ReleaseTimeout(timeout)
}
