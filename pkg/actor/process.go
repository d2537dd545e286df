package actor

import (
	"sync/atomic"
	"time"

	"gar/pkg/lib"
)

var _ IProcess = (*Process)(nil)

func NewProcess(ctx *actorContext, mailbox IMailbox) *Process {
	p := &Process{
		ctx:     ctx,
		mailbox: mailbox,
	}
	ctx.process = p
	return p
}

// Process 进程句柄：投递入口与生命周期标记
type Process struct {
	ctx     *actorContext
	mailbox IMailbox
	isExit  atomic.Bool
}

func (p *Process) Context() IContext {
	return p.ctx
}

func (p *Process) Mailbox() IMailbox {
	return p.mailbox
}

// PushTask 投递闭包到 actor 协程串行执行
func (p *Process) PushTask(task Task) error {
	if task == nil {
		return ErrTaskIsNil
	}
	return p.PushUserMessage(&TaskMessage{task: task})
}

// PushTaskAndWait 投递闭包并同步等待执行结束
func (p *Process) PushTaskAndWait(timeout time.Duration, task Task) error {
	if task == nil {
		return ErrTaskIsNil
	}
	waiter := lib.NewWaiter[error](timeout)
	err := p.PushTask(func(ctx IContext) error {
		taskErr := task(ctx)
		waiter.Done(taskErr)
		return taskErr
	})
	if err != nil {
		return err
	}
	taskErr, waitErr := waiter.Wait()
	if waitErr != nil {
		return waitErr
	}
	return taskErr
}

func (p *Process) PushUserMessage(msg interface{}) error {
	if p.isExit.Load() {
		return ErrProcessExited
	}
	return p.mailbox.PostUserMessage(msg)
}

func (p *Process) PushSystemMessage(msg interface{}) error {
	if p.isExit.Load() {
		return ErrProcessExited
	}
	return p.mailbox.PostSystemMessage(msg)
}

// Stop 标记退出并投递停机系统消息；重复调用幂等
func (p *Process) Stop() error {
	if !p.isExit.CompareAndSwap(false, true) {
		return nil
	}
	return p.mailbox.PostSystemMessage(&stopMessage{})
}

func (p *Process) IsExited() bool {
	return p.isExit.Load()
}
