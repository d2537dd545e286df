package actor

import (
	"reflect"
	"strconv"
	"sync/atomic"
	"time"

	"gar/pkg/glog"
	"gar/pkg/lib"
	"gar/pkg/pool"

	"go.uber.org/zap"
)

type SystemOption func(*systemOptions)

type systemOptions struct {
	address  string
	workerId int64
}

// WithAddress 设置系统地址，写入每个派生进程的 Pid
func WithAddress(address string) SystemOption {
	return func(op *systemOptions) {
		op.address = address
	}
}

// WithWorkerId 设置雪花算法的工作节点 ID
func WithWorkerId(workerId int64) SystemOption {
	return func(op *systemOptions) {
		op.workerId = workerId
	}
}

// System actor 系统：进程注册表、消息路由与生命周期管理
type System struct {
	*Manager
	idWorker     *lib.IdWorker
	pools        *pool.Manager
	address      string
	responder    atomic.Value // IResponder
	shuttingDown atomic.Bool
}

func NewSystem(options ...SystemOption) (*System, error) {
	opts := new(systemOptions)
	for _, option := range options {
		option(opts)
	}
	idWorker, err := lib.NewIdWorker(opts.workerId)
	if err != nil {
		return nil, err
	}
	return &System{
		Manager:  newManager(),
		idWorker: idWorker,
		pools:    pool.NewManager(),
		address:  opts.address,
	}, nil
}

// Pools 系统级对象池注册表
func (s *System) Pools() *pool.Manager {
	return s.pools
}

// SetResponder 挂接系统级应答接收方
// Ask 无法直接命中回调时，带关联 ID 的应答会转交给它
func (s *System) SetResponder(responder IResponder) {
	if responder == nil {
		return
	}
	s.responder.Store(responder)
}

func (s *System) getResponder() IResponder {
	r, _ := s.responder.Load().(IResponder)
	return r
}

// NextRequestId 生成全局唯一的请求关联 ID
func (s *System) NextRequestId() string {
	id, err := s.idWorker.NextId()
	if err != nil {
		glog.Error("generate request id failed", zap.Error(err))
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return strconv.FormatInt(id, 10)
}

// Spawn 派生新 actor
// 注册先于 started 消息投递，OnInit 内即可向自己发消息
func (s *System) Spawn(producer Producer, options ...Option) (*Pid, error) {
	if s.shuttingDown.Load() {
		return nil, ErrSystemShuttingDown
	}
	opts := loadOptions(options...)
	id, err := s.idWorker.NextId()
	if err != nil {
		return nil, err
	}
	pid := &Pid{Id: id, Name: opts.Name, Address: s.address}

	ctx := newActorContext(s, pid, producer())
	mailbox := opts.Mailbox()
	process := NewProcess(ctx, mailbox)
	mailbox.RegisterHandlers(ctx, opts.Dispatcher)

	if err = s.Add(pid, process); err != nil {
		return nil, err
	}
	if err = process.PushSystemMessage(&startedMessage{params: opts.Params}); err != nil {
		s.removeProcess(pid)
		return nil, err
	}
	mailbox.Start()
	return pid, nil
}

// Send 投递用户消息；目标不存在或已退出时记死信
func (s *System) Send(to *Pid, msg *Message) error {
	if msg == nil {
		return ErrMessageIsNil
	}
	if s.shuttingDown.Load() {
		return ErrSystemShuttingDown
	}
	process := s.GetProcess(to)
	if process == nil || process.IsExited() {
		s.deadLetter(to, msg)
		return ErrProcessNotFound
	}
	if err := process.PushUserMessage(msg); err != nil {
		s.deadLetter(to, msg)
		return err
	}
	return nil
}

// Ask 请求应答：投递消息并同步等待处理器的返回值
// timeout<=0 表示一直等
func (s *System) Ask(to *Pid, msg *Message, timeout time.Duration) (interface{}, error) {
	if msg == nil {
		return nil, ErrMessageIsNil
	}
	if msg.ResponseId == "" {
		msg.ResponseId = s.NextRequestId()
	}
	waiter := lib.NewWaiter[interface{}](timeout)
	msg.response = func(result interface{}, err error) {
		if err != nil {
			waiter.Fail(err)
			return
		}
		waiter.Done(result)
	}
	if err := s.Send(to, msg); err != nil {
		return nil, err
	}
	result, err := waiter.Wait()
	if err == lib.ErrWaiterTimeout {
		return nil, ErrAskTimeout
	}
	return result, err
}

// respond 应答路由：本地回调 > 发送方信封 > 系统应答接收方 > 死信
func (s *System) respond(request *Message, result interface{}, err error) {
	if request.response != nil {
		request.response(result, err)
		return
	}
	if request.Sender != nil {
		reply := newResponseMessage(request, result, err)
		if sendErr := s.Send(request.Sender, reply); sendErr != nil {
			glog.Warn("response to sender failed",
				zap.Stringer("sender", request.Sender), zap.Error(sendErr))
		}
		return
	}
	if responder := s.getResponder(); responder != nil && request.ResponseId != "" {
		if responder.Complete(request.ResponseId, result, err) {
			return
		}
	}
	glog.Warn("response dropped",
		zap.String("responseId", request.ResponseId), zap.String("type", request.Type))
}

// WhereIs 按注册名字查找进程的 Pid，未注册返回 nil
func (s *System) WhereIs(name string) *Pid {
	process := s.GetProcessByName(name)
	if process == nil {
		return nil
	}
	return process.Context().ID()
}

// Stop 停止指定进程，停机消息走系统车道优先处理
func (s *System) Stop(pid *Pid) error {
	process := s.GetProcess(pid)
	if process == nil {
		return ErrProcessNotFound
	}
	return process.Stop()
}

// remove 进程停机完成后从注册表摘除
func (s *System) remove(pid *Pid) {
	s.removeProcess(pid)
}

// Shutdown 关闭系统：拒绝新的派生与投递，逐个停止进程并等待排空
func (s *System) Shutdown(timeout time.Duration) error {
	if !s.shuttingDown.CompareAndSwap(false, true) {
		return nil
	}
	processes := s.GetAllProcesses()
	for _, process := range processes {
		if err := process.Stop(); err != nil && err != ErrProcessExited {
			glog.Warn("stop process failed", zap.Error(err))
		}
	}
	deadline := time.Now().Add(timeout)
	for len(s.GetAllProcesses()) > 0 {
		if timeout > 0 && time.Now().After(deadline) {
			glog.Warn("system shutdown timed out",
				zap.Int("remaining", len(s.GetAllProcesses())))
			return ErrShutdownTimeout
		}
		time.Sleep(10 * time.Millisecond)
	}
	glog.Info("actor system stopped")
	return nil
}

// deadLetter 无法投递的消息只记日志，不回溯给调用方
func (s *System) deadLetter(to *Pid, msg interface{}) {
	msgType := ""
	switch m := msg.(type) {
	case *Message:
		msgType = m.Type
	default:
		msgType = reflect.TypeOf(msg).String()
	}
	glog.Warn("dead letter", zap.Stringer("to", to), zap.String("type", msgType))
}
