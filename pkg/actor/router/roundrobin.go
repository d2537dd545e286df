package router

import (
	"sync/atomic"

	"gar/pkg/actor"
)

var _ IStrategy = (*RoundRobinStrategy)(nil)

func NewRoundRobin() *RoundRobinStrategy {
	return new(RoundRobinStrategy)
}

// RoundRobinStrategy 轮询路由，每次投递游标前进一格
type RoundRobinStrategy struct {
	index int64
}

func (s *RoundRobinStrategy) Route(system *actor.System, routees []*actor.Pid, msg *actor.Message) error {
	if len(routees) == 0 {
		return nil
	}
	// 投递失败游标同样前进，保证失败成员不会被反复命中
	i := atomic.AddInt64(&s.index, 1)
	target := routees[int(uint64(i)%uint64(len(routees)))]
	return system.Send(target, msg)
}
