package actor

import (
	"fmt"
	"runtime/debug"
	"time"

	"gar/pkg/glog"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	_ IContext        = (*actorContext)(nil)
	_ IMessageInvoker = (*actorContext)(nil)
)

func newActorContext(system *System, pid *Pid, actor IActor) *actorContext {
	return &actorContext{
		system: system,
		pid:    pid,
		actor:  actor,
		timers: newTimerManager(),
	}
}

// actorContext actor 的执行上下文，同时实现邮箱的 Invoker 契约
// msg/timers/stopped 只在 actor 自己的排空协程内访问
type actorContext struct {
	system  *System
	pid     *Pid
	actor   IActor
	process IProcess
	timers  *timerManager
	msg     *Message
	stopped bool
}

func (a *actorContext) ID() *Pid {
	return a.pid
}

func (a *actorContext) System() *System {
	return a.system
}

func (a *actorContext) Actor() IActor {
	return a.actor
}

// Message 当前正在处理的消息，处理器之外为 nil
func (a *actorContext) Message() *Message {
	return a.msg
}

func (a *actorContext) Send(to *Pid, msg *Message) error {
	if msg != nil && msg.Sender == nil {
		msg.Sender = a.pid
	}
	return a.system.Send(to, msg)
}

func (a *actorContext) Ask(to *Pid, msg *Message, timeout time.Duration) (interface{}, error) {
	if msg != nil && msg.Sender == nil {
		msg.Sender = a.pid
	}
	return a.system.Ask(to, msg, timeout)
}

func (a *actorContext) Spawn(producer Producer, options ...Option) (*Pid, error) {
	return a.system.Spawn(producer, options...)
}

func (a *actorContext) Stop(pid *Pid) error {
	return a.system.Stop(pid)
}

// AfterFunc 注册一次性定时器，回调回到本 actor 的邮箱执行
func (a *actorContext) AfterFunc(d time.Duration, task Task) (int64, error) {
	return a.timers.AfterFunc(a.process, d, task)
}

// TickFunc 注册周期定时器
func (a *actorContext) TickFunc(interval time.Duration, task Task) (int64, error) {
	return a.timers.TickFunc(a.process, interval, task)
}

func (a *actorContext) CancelTimer(timerId int64) bool {
	return a.timers.CancelTimer(timerId)
}

func (a *actorContext) InvokeSystemMessage(msg interface{}) error {
	switch m := msg.(type) {
	case *startedMessage:
		return a.actor.OnInit(a, m.params)
	case *stopMessage:
		a.handleStop()
		return nil
	default:
		return ErrUnsupportedMessageType(fmt.Sprintf("%T", msg))
	}
}

func (a *actorContext) InvokeUserMessage(msg interface{}) error {
	if a.stopped {
		// 停止之后残留在队列里的用户消息直接丢弃
		a.system.deadLetter(a.pid, msg)
		return nil
	}
	switch m := msg.(type) {
	case *TaskMessage:
		if m.task == nil {
			return ErrTaskIsNil
		}
		return a.invokeTask(m.task)
	case *Message:
		return a.handleMessage(m)
	default:
		return ErrUnsupportedMessageType(fmt.Sprintf("%T", msg))
	}
}

// handleMessage 调用当前行为处理器；带应答标记的请求先回应答，
// 处理器错误再向上抛给邮箱（由邮箱挂起并等待监督者介入）
func (a *actorContext) handleMessage(m *Message) error {
	result, err := a.receive(m)
	if m.ResponseId != "" || m.response != nil {
		a.system.respond(m, result, err)
	}
	return err
}

// receive 执行当前行为处理器，处理器 panic 折算成错误返回，
// 使其走和错误返回完全一样的应答与邮箱挂起路径
func (a *actorContext) receive(m *Message) (result interface{}, err error) {
	defer func() {
		a.msg = nil
		if r := recover(); r != nil {
			glog.Errorf("actor receive panic:%v stack:%s", r, debug.Stack())
			err = errors.Errorf("actor: handler panic: %v", r)
		}
	}()
	a.msg = m
	return a.actor.Receive(a, m)
}

// invokeTask 执行邮箱任务，panic 同样折算成错误
func (a *actorContext) invokeTask(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			glog.Errorf("actor task panic:%v stack:%s", r, debug.Stack())
			err = errors.Errorf("actor: task panic: %v", r)
		}
	}()
	return task(a)
}

func (a *actorContext) handleStop() {
	if a.stopped {
		return
	}
	a.stopped = true
	a.timers.CancelAllTimers()
	if err := a.actor.OnStop(a); err != nil {
		glog.Error("actor OnStop failed", zap.Stringer("pid", a.pid), zap.Error(err))
	}
	a.system.remove(a.pid)
}
