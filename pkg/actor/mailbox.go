package actor

import (
	"runtime"
	"sync/atomic"
	"time"

	"gar/pkg/glog"
	"gar/pkg/lib"

	"go.uber.org/zap"
)

const (
	idle int32 = iota
	running
)

// defaultTimeSlice 单次排空周期的时间片预算
const defaultTimeSlice = 10 * time.Millisecond

var _ IMailbox = (*DefaultMailbox)(nil)

// DefaultMailbox 系统/用户双车道邮箱
// 调度用 CAS 把状态从 idle 切到 running，保证同一时间只有一个协程在排空，
// 单个 actor 的消息因此天然串行。每个排空周期先清空系统车道，
// 再按吞吐量与时间片预算处理用户消息。
// 用户消息处理器第一次报错即挂起邮箱并记录错误，Resume 前不再投递用户消息；
// 重启/停止等升级决策属于外部监督者，通过 Resume/Stop 介入
type DefaultMailbox struct {
	// 系统车道无挂起语义且只有单消费者，用无锁 mpsc 队列
	system *lib.Mpsc[interface{}]
	user   *lib.Queue[interface{}]

	invoker    IMessageInvoker
	dispatcher IDispatcher

	status    atomic.Int32
	started   atomic.Bool
	suspended atomic.Bool
	lastErr   atomic.Value // errBox
	timeSlice time.Duration
}

// errBox 统一 atomic.Value 存储的具体类型
type errBox struct {
	err error
}

type MailboxOption func(*mailboxOptions)

type mailboxOptions struct {
	compactThreshold int
	timeSlice        time.Duration
}

// WithCompactThreshold 队列压缩阈值
func WithCompactThreshold(n int) MailboxOption {
	return func(op *mailboxOptions) {
		op.compactThreshold = n
	}
}

// WithTimeSlice 每个排空周期的时间片预算
func WithTimeSlice(d time.Duration) MailboxOption {
	return func(op *mailboxOptions) {
		op.timeSlice = d
	}
}

func NewDefaultMailbox(options ...MailboxOption) *DefaultMailbox {
	opts := &mailboxOptions{timeSlice: defaultTimeSlice}
	for _, option := range options {
		option(opts)
	}
	m := &DefaultMailbox{
		system:    lib.NewMpsc[interface{}](),
		user:      lib.NewQueueWithThreshold[interface{}](opts.compactThreshold),
		timeSlice: opts.timeSlice,
	}
	return m
}

func (m *DefaultMailbox) RegisterHandlers(invoker IMessageInvoker, dispatcher IDispatcher) {
	m.invoker = invoker
	m.dispatcher = dispatcher
}

func (m *DefaultMailbox) PostSystemMessage(msg interface{}) error {
	if msg == nil {
		return ErrMessageIsNil
	}
	m.system.Push(msg)
	return m.schedule()
}

func (m *DefaultMailbox) PostUserMessage(msg interface{}) error {
	if msg == nil {
		return ErrMessageIsNil
	}
	m.user.Push(msg)
	return m.schedule()
}

// Start 放行调度；之前投递的消息从这里开始处理
func (m *DefaultMailbox) Start() {
	if m.started.CompareAndSwap(false, true) {
		_ = m.schedule()
	}
}

// Suspend 挂起邮箱，只拦截用户消息，系统消息照常处理
func (m *DefaultMailbox) Suspend() bool {
	return m.suspended.CompareAndSwap(false, true)
}

// Resume 清除挂起状态与记录的错误并恢复排空
func (m *DefaultMailbox) Resume() bool {
	if !m.suspended.CompareAndSwap(true, false) {
		return false
	}
	m.lastErr.Store(errBox{})
	_ = m.schedule()
	return true
}

func (m *DefaultMailbox) IsSuspended() bool {
	return m.suspended.Load()
}

// SuspendError 触发挂起的错误，未挂起时为 nil
func (m *DefaultMailbox) SuspendError() error {
	if box, ok := m.lastErr.Load().(errBox); ok {
		return box.err
	}
	return nil
}

// schedule 合并触发排空，已有协程在排空时直接返回
func (m *DefaultMailbox) schedule() error {
	if !m.started.Load() {
		return nil
	}
	if !m.status.CompareAndSwap(idle, running) {
		return nil
	}
	if err := m.dispatcher.Schedule(m.processMessages, func(err interface{}) {
		// 排空协程被 panic 打断时复位状态并补一次调度，避免已入队消息丢唤醒
		glog.Errorf("mailbox dispatch panic:%+v", err)
		m.status.CompareAndSwap(running, idle)
		if m.hasWork() {
			_ = m.schedule()
		}
	}); err != nil {
		glog.Error("mailbox dispatch schedule error", zap.Error(err))
		m.status.CompareAndSwap(running, idle)
		return err
	}
	return nil
}

func (m *DefaultMailbox) processMessages() {
process:
	m.run()
	m.status.Store(idle)
	// 排空后重查，避免与生产者竞争漏消息
	if m.hasWork() {
		if m.status.CompareAndSwap(idle, running) {
			goto process
		}
	}
}

func (m *DefaultMailbox) hasWork() bool {
	if !m.system.Empty() {
		return true
	}
	return !m.suspended.Load() && !m.user.Empty()
}

func (m *DefaultMailbox) run() {
	throughput := m.dispatcher.Throughput()
	deadline := time.Now().Add(m.timeSlice)
	var processed int
	for {
		// 系统消息永远优先于更早入队的用户消息
		if msg, ok := m.system.Pop(); ok {
			if err := m.invoker.InvokeSystemMessage(msg); err != nil {
				glog.Error("invoke system message failed", zap.Error(err))
			}
			continue
		}
		if m.suspended.Load() {
			return
		}
		// 用户车道受批量与时间片双重预算约束，超过就让出 CPU
		if processed >= throughput || time.Now().After(deadline) {
			processed = 0
			deadline = time.Now().Add(m.timeSlice)
			runtime.Gosched()
			continue
		}
		msg, ok := m.user.Pop()
		if !ok {
			return
		}
		processed++
		if err := m.invoker.InvokeUserMessage(msg); err != nil {
			// 首个失败即挂起，保留错误供监督者检查
			m.lastErr.Store(errBox{err: err})
			m.suspended.Store(true)
			glog.Error("mailbox suspended on handler error", zap.Error(err))
			return
		}
	}
}
