// Package router 提供进程组路由：轮询、随机、广播与一致性哈希
package router

import (
	"errors"

	"gar/pkg/actor"
)

// 路由管理消息类型，经高优先级车道处理，不会被业务消息淹没
const (
	TypeAddRoutee    = "router.add-routee"
	TypeRemoveRoutee = "router.remove-routee"
	TypeGetRoutees   = "router.get-routees"

	// TypeRoutees 查询应答的消息类型
	TypeRoutees = "routees"
)

var (
	// ErrRouteeIsNil 管理消息缺少目标 Pid
	ErrRouteeIsNil = errors.New("router: routee is nil")
)

// IStrategy 路由策略：决定一条消息投递给哪些成员
// Route 在路由 actor 的协程内被串行调用，策略实现不需要加锁
type IStrategy interface {
	Route(system *actor.System, routees []*actor.Pid, msg *actor.Message) error
}
