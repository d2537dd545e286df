// Package actor
// @Description: 基础调度器

package actor

import (
	"gar/pkg/glog"
)

const defaultThroughput = 100

// 协程调度器，每次排空在新协程执行
type goroutineDispatcher int

func NewGoroutineDispatcher(throughput int) IDispatcher {
	if throughput <= 0 {
		throughput = defaultThroughput
	}
	return goroutineDispatcher(throughput)
}

func (goroutineDispatcher) Schedule(fn func(), recoverFun func(err interface{})) error {
	go func() {
		defer func() {
			if err := recover(); err != nil {
				if recoverFun != nil {
					recoverFun(err)
				}
			}
		}()
		fn()
	}()
	return nil
}

func (d goroutineDispatcher) Throughput() int {
	return int(d)
}

// 同步调度器，在调用方原地执行，错误只记日志不向上传播
type synchronizedDispatcher int

func NewSynchronizedDispatcher(throughput int) IDispatcher {
	if throughput <= 0 {
		throughput = defaultThroughput
	}
	return synchronizedDispatcher(throughput)
}

func (synchronizedDispatcher) Schedule(fn func(), recoverFun func(err interface{})) error {
	defer func() {
		if err := recover(); err != nil {
			if recoverFun != nil {
				recoverFun(err)
			} else {
				glog.Errorf("synchronized dispatcher task panic:%+v", err)
			}
		}
	}()
	fn()
	return nil
}

func (d synchronizedDispatcher) Throughput() int {
	return int(d)
}
