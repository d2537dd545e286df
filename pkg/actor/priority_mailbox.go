package actor

import (
	"runtime"
	"strings"
	"sync/atomic"

	"gar/pkg/glog"
	"gar/pkg/lib"

	"go.uber.org/zap"
)

// Priority 用户消息优先级车道
type Priority int

const (
	PriorityHigh Priority = iota
	PriorityNormal
	PriorityLow
)

// 消息类型上的优先级标签前缀
const (
	PriorityHighPrefix = "$priority.high."
	PriorityLowPrefix  = "$priority.low."
)

// Classifier 入队时决定消息走哪条车道
type Classifier func(msg interface{}) Priority

// DefaultClassifier 按消息类型前缀分类
func DefaultClassifier(msg interface{}) Priority {
	if m, ok := msg.(*Message); ok {
		switch {
		case strings.HasPrefix(m.Type, PriorityHighPrefix):
			return PriorityHigh
		case strings.HasPrefix(m.Type, PriorityLowPrefix):
			return PriorityLow
		}
	}
	return PriorityNormal
}

var _ IMailbox = (*PriorityMailbox)(nil)

// PriorityMailbox 系统/高/普通/低四车道邮箱
// 优先级在入队时由分类器决定；每个排空周期先处理一条系统消息保持响应性，
// 再按高 > 普通 > 低依次处理，每条车道单次最多处理 batchSize 条。
// 挂起语义与 DefaultMailbox 一致：首个处理器错误挂起全部用户车道
type PriorityMailbox struct {
	system *lib.Mpsc[interface{}]
	lanes  [3]*lib.Queue[interface{}] // high / normal / low

	classifier Classifier
	invoker    IMessageInvoker
	dispatcher IDispatcher

	status    atomic.Int32
	started   atomic.Bool
	suspended atomic.Bool
	lastErr   atomic.Value // errBox
}

type PriorityMailboxOption func(*PriorityMailbox)

// WithClassifier 自定义优先级分类器
func WithClassifier(c Classifier) PriorityMailboxOption {
	return func(m *PriorityMailbox) {
		if c != nil {
			m.classifier = c
		}
	}
}

func NewPriorityMailbox(options ...PriorityMailboxOption) *PriorityMailbox {
	m := &PriorityMailbox{
		system:     lib.NewMpsc[interface{}](),
		classifier: DefaultClassifier,
	}
	for i := range m.lanes {
		m.lanes[i] = lib.NewQueue[interface{}]()
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *PriorityMailbox) RegisterHandlers(invoker IMessageInvoker, dispatcher IDispatcher) {
	m.invoker = invoker
	m.dispatcher = dispatcher
}

func (m *PriorityMailbox) PostSystemMessage(msg interface{}) error {
	if msg == nil {
		return ErrMessageIsNil
	}
	m.system.Push(msg)
	return m.schedule()
}

func (m *PriorityMailbox) PostUserMessage(msg interface{}) error {
	if msg == nil {
		return ErrMessageIsNil
	}
	p := m.classifier(msg)
	if p < PriorityHigh || p > PriorityLow {
		p = PriorityNormal
	}
	m.lanes[p].Push(msg)
	return m.schedule()
}

func (m *PriorityMailbox) Start() {
	if m.started.CompareAndSwap(false, true) {
		_ = m.schedule()
	}
}

func (m *PriorityMailbox) Suspend() bool {
	return m.suspended.CompareAndSwap(false, true)
}

func (m *PriorityMailbox) Resume() bool {
	if !m.suspended.CompareAndSwap(true, false) {
		return false
	}
	m.lastErr.Store(errBox{})
	_ = m.schedule()
	return true
}

func (m *PriorityMailbox) IsSuspended() bool {
	return m.suspended.Load()
}

func (m *PriorityMailbox) SuspendError() error {
	if box, ok := m.lastErr.Load().(errBox); ok {
		return box.err
	}
	return nil
}

func (m *PriorityMailbox) schedule() error {
	if !m.started.Load() {
		return nil
	}
	if !m.status.CompareAndSwap(idle, running) {
		return nil
	}
	if err := m.dispatcher.Schedule(m.processMessages, func(err interface{}) {
		// 复位状态并补一次调度，避免 panic 打断排空后丢唤醒
		glog.Errorf("priority mailbox dispatch panic:%+v", err)
		m.status.CompareAndSwap(running, idle)
		if m.hasWork() {
			_ = m.schedule()
		}
	}); err != nil {
		glog.Error("priority mailbox dispatch schedule error", zap.Error(err))
		m.status.CompareAndSwap(running, idle)
		return err
	}
	return nil
}

func (m *PriorityMailbox) processMessages() {
process:
	m.run()
	m.status.Store(idle)
	if m.hasWork() {
		if m.status.CompareAndSwap(idle, running) {
			goto process
		}
	}
}

func (m *PriorityMailbox) hasWork() bool {
	if !m.system.Empty() {
		return true
	}
	if m.suspended.Load() {
		return false
	}
	for _, q := range m.lanes {
		if !q.Empty() {
			return true
		}
	}
	return false
}

func (m *PriorityMailbox) run() {
	batch := m.dispatcher.Throughput()
	for {
		// 每个周期只处理一条系统消息，随即回到周期开头保持响应
		if msg, ok := m.system.Pop(); ok {
			if err := m.invoker.InvokeSystemMessage(msg); err != nil {
				glog.Error("invoke system message failed", zap.Error(err))
			}
		} else if m.suspended.Load() {
			return
		}
		if m.suspended.Load() {
			continue
		}

		worked := false
		for _, q := range m.lanes {
			for i := 0; i < batch; i++ {
				// 系统车道随时插队
				if !m.system.Empty() {
					break
				}
				msg, ok := q.Pop()
				if !ok {
					break
				}
				worked = true
				if err := m.invoker.InvokeUserMessage(msg); err != nil {
					m.lastErr.Store(errBox{err: err})
					m.suspended.Store(true)
					glog.Error("priority mailbox suspended on handler error", zap.Error(err))
					return
				}
			}
			if !m.system.Empty() {
				break
			}
		}
		if !worked && !m.hasWork() {
			return
		}
		runtime.Gosched()
	}
}
