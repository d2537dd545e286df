package router

import (
	"sync"

	"gar/pkg/actor"
	"gar/pkg/glog"
	"gar/pkg/workers"

	"go.uber.org/zap"
)

// broadcastBatchSize 单个工作协程负责的成员数
const broadcastBatchSize = 10

var _ IStrategy = (*BroadcastStrategy)(nil)

func NewBroadcast() *BroadcastStrategy {
	return new(BroadcastStrategy)
}

// BroadcastStrategy 广播路由，消息投递给全部成员
// 成员分批交给共享工作池并发投递，返回前等待全部批次完成
type BroadcastStrategy struct{}

func (s *BroadcastStrategy) Route(system *actor.System, routees []*actor.Pid, msg *actor.Message) error {
	if len(routees) == 0 {
		return nil
	}
	wg := new(sync.WaitGroup)
	for begin := 0; begin < len(routees); begin += broadcastBatchSize {
		end := begin + broadcastBatchSize
		if end > len(routees) {
			end = len(routees)
		}
		batch := routees[begin:end]
		wg.Add(1)
		fn := func() {
			defer wg.Done()
			for _, pid := range batch {
				if err := system.Send(pid, msg); err != nil {
					glog.Warn("broadcast send failed",
						zap.Stringer("routee", pid), zap.Error(err))
				}
			}
		}
		if err := workers.Submit(fn, nil); err != nil {
			// 工作池不可用时退化为就地投递
			fn()
		}
	}
	wg.Wait()
	return nil
}
