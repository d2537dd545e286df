/**
 * @Author: dingQingHui
 * @Description:
 * @File: workers
 * @Version: 1.0.0
 * @Date: 2025/3/12 10:40
 */

package workers

import (
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
)

var (
	goCount    atomic.Int64
	panicCount atomic.Uint64
	pool       *ants.Pool
)

func init() {
	pool, _ = ants.NewPool(5000)
}

// Submit 提交任务到共享协程池，panic 交给 recoverFun 处理
func Submit(fn func(), recoverFun func(err interface{})) error {
	return pool.Submit(func() {
		goCount.Add(1)
		Try(fn, recoverFun)
		goCount.Add(-1)
	})
}

// Resize 调整共享协程池容量
func Resize(size int) {
	if size > 0 {
		pool.Tune(size)
	}
}

// Try 执行 fn 并捕获 panic
func Try(fn func(), reFun func(err interface{})) {
	defer func() {
		if err := recover(); err != nil {
			panicCount.Add(1)
			if reFun != nil {
				reFun(err)
			}
		}
	}()
	fn()
}

// Running 当前正在执行的任务数
func Running() int64 {
	return goCount.Load()
}

// PanicCount 捕获过的 panic 总数
func PanicCount() uint64 {
	return panicCount.Load()
}
