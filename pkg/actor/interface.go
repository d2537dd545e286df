// Package actor 提供 Actor 模型并发运行时：行为状态机、车道化邮箱、
// 可插拔调度器、进程注册与请求应答
package actor

import "time"

type (
	// Producer actor 工厂方法
	Producer func() IActor

	// Task 投递到 actor 协程内执行的闭包
	Task func(ctx IContext) error

	// Handler 行为处理器，返回值会作为带 ResponseId 请求的应答负载
	Handler func(ctx IContext, msg *Message) (interface{}, error)

	// IMessageInvoker 邮箱回调消息处理的契约
	IMessageInvoker interface {
		InvokeSystemMessage(message interface{}) error
		InvokeUserMessage(message interface{}) error
	}

	// IDispatcher 调度策略：决定排空任务何时何地执行
	IDispatcher interface {
		Schedule(fn func(), recoverFun func(err interface{})) error
		Throughput() int
	}

	// IMailbox 每个 actor 的消息队列
	IMailbox interface {
		RegisterHandlers(invoker IMessageInvoker, dispatcher IDispatcher)
		PostSystemMessage(msg interface{}) error
		PostUserMessage(msg interface{}) error
		Start()
		Suspend() bool
		Resume() bool
		IsSuspended() bool
		SuspendError() error
	}

	// MailboxProducer 邮箱工厂方法
	MailboxProducer func() IMailbox

	// IProcess 进程句柄，邮箱与上下文的组合
	IProcess interface {
		Context() IContext
		Mailbox() IMailbox
		PushTask(task Task) error
		PushTaskAndWait(timeout time.Duration, task Task) error
		PushUserMessage(msg interface{}) error
		PushSystemMessage(msg interface{}) error
		Stop() error
		IsExited() bool
	}

	// IActor actor 行为接口
	IActor interface {
		OnInit(ctx IContext, params []interface{}) error
		Receive(ctx IContext, msg *Message) (interface{}, error)
		OnStop(ctx IContext) error
	}

	// IContext actor 处理器可见的执行上下文
	IContext interface {
		ID() *Pid
		System() *System
		Actor() IActor
		Message() *Message
		Send(to *Pid, msg *Message) error
		Ask(to *Pid, msg *Message, timeout time.Duration) (interface{}, error)
		Spawn(producer Producer, options ...Option) (*Pid, error)
		Stop(pid *Pid) error
		AfterFunc(d time.Duration, task Task) (int64, error)
		TickFunc(interval time.Duration, task Task) (int64, error)
		CancelTimer(timerId int64) bool
	}

	// IResponder 系统级应答接收方（请求应答管理器挂接点）
	IResponder interface {
		Complete(correlationId string, result interface{}, err error) bool
	}
)
