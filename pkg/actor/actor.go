package actor

// DefaultBehavior 初始行为名
const DefaultBehavior = "default"

var _ IActor = (*Actor)(nil)

// Actor 行为状态机基类，业务 actor 嵌入后通过 AddBehavior/Become 切换行为
// 所有字段只在 actor 自己的消息处理协程内访问，不需要加锁
type Actor struct {
	behaviors map[string]Handler
	current   string
	handler   Handler // 当前行为处理器缓存，Become 时失效重建
}

// AddBehavior 注册一个行为处理器，重复注册覆盖旧处理器
// 注册首个行为时自动设为当前行为
func (a *Actor) AddBehavior(name string, h Handler) {
	if a.behaviors == nil {
		a.behaviors = make(map[string]Handler)
	}
	a.behaviors[name] = h
	if a.current == "" {
		a.current = name
		a.handler = h
	} else if a.current == name {
		a.handler = h
	}
}

// Become 切换当前行为，只影响之后收到的消息；
// 正在执行的处理器仍然以进入时的行为跑完
func (a *Actor) Become(name string) error {
	h, ok := a.behaviors[name]
	if !ok {
		return ErrUnknownState
	}
	a.current = name
	a.handler = h
	return nil
}

// Behavior 当前行为名
func (a *Actor) Behavior() string {
	return a.current
}

func (a *Actor) OnInit(ctx IContext, params []interface{}) error {
	return nil
}

// Receive 按当前行为分发消息
func (a *Actor) Receive(ctx IContext, msg *Message) (interface{}, error) {
	h := a.handler
	if h == nil {
		return nil, ErrNoBehavior
	}
	return h(ctx, msg)
}

func (a *Actor) OnStop(ctx IContext) error {
	return nil
}
