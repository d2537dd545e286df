package router

import (
	"strings"

	"gar/pkg/actor"
	"gar/pkg/glog"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// managementClassifier 管理消息走高优先级车道，保证成员变更不被业务消息淹没
func managementClassifier(msg interface{}) actor.Priority {
	if m, ok := msg.(*actor.Message); ok && strings.HasPrefix(m.Type, "router.") {
		return actor.PriorityHigh
	}
	return actor.DefaultClassifier(msg)
}

// NewRouterActor 创建路由 actor，接管成员管理与消息分发
func NewRouterActor(strategy IStrategy, routees []*actor.Pid) *RouterActor {
	r := &RouterActor{
		strategy: strategy,
		routees:  slices.Clone(routees),
	}
	r.AddBehavior(actor.DefaultBehavior, r.handle)
	return r
}

// RouterActor 路由进程：维护成员列表并按策略分发业务消息
// 成员列表只在自身协程内读写
type RouterActor struct {
	actor.Actor
	strategy IStrategy
	routees  []*actor.Pid
}

func (r *RouterActor) handle(ctx actor.IContext, msg *actor.Message) (interface{}, error) {
	switch msg.Type {
	case TypeAddRoutee:
		return nil, r.addRoutee(msg)
	case TypeRemoveRoutee:
		return nil, r.removeRoutee(msg)
	case TypeGetRoutees:
		return &actor.Message{Type: TypeRoutees, Payload: slices.Clone(r.routees)}, nil
	default:
		return nil, r.route(ctx, msg)
	}
}

func (r *RouterActor) addRoutee(msg *actor.Message) error {
	pid, ok := msg.Payload.(*actor.Pid)
	if !ok || pid == nil {
		return ErrRouteeIsNil
	}
	if slices.ContainsFunc(r.routees, pid.Equal) {
		return nil
	}
	r.routees = append(r.routees, pid)
	return nil
}

func (r *RouterActor) removeRoutee(msg *actor.Message) error {
	pid, ok := msg.Payload.(*actor.Pid)
	if !ok || pid == nil {
		return ErrRouteeIsNil
	}
	r.routees = slices.DeleteFunc(r.routees, pid.Equal)
	return nil
}

// route 按策略分发；成员集合为空时静默丢弃
func (r *RouterActor) route(ctx actor.IContext, msg *actor.Message) error {
	if len(r.routees) == 0 {
		glog.Debug("router has no routees, message dropped",
			zap.Stringer("router", ctx.ID()), zap.String("type", msg.Type))
		return nil
	}
	return r.strategy.Route(ctx.System(), r.routees, msg)
}

// Spawn 派生路由进程，默认挂载带管理车道的优先级邮箱
func Spawn(system *actor.System, strategy IStrategy, routees []*actor.Pid, options ...actor.Option) (*actor.Pid, error) {
	opts := []actor.Option{
		actor.WithMailbox(func() actor.IMailbox {
			return actor.NewPriorityMailbox(actor.WithClassifier(managementClassifier))
		}),
	}
	opts = append(opts, options...)
	return system.Spawn(func() actor.IActor {
		return NewRouterActor(strategy, routees)
	}, opts...)
}
