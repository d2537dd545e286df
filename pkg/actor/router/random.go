package router

import (
	"math/rand"

	"gar/pkg/actor"
)

var _ IStrategy = (*RandomStrategy)(nil)

func NewRandom() *RandomStrategy {
	return new(RandomStrategy)
}

// RandomStrategy 随机路由
type RandomStrategy struct{}

func (s *RandomStrategy) Route(system *actor.System, routees []*actor.Pid, msg *actor.Message) error {
	if len(routees) == 0 {
		return nil
	}
	return system.Send(routees[rand.Intn(len(routees))], msg)
}
