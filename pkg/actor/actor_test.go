package actor

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSystem(t *testing.T) *System {
	t.Helper()
	system, err := NewSystem(WithWorkerId(1))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = system.Shutdown(time.Second)
	})
	return system
}

type echoActor struct {
	Actor
}

func newEchoActor() IActor {
	a := new(echoActor)
	a.AddBehavior(DefaultBehavior, func(ctx IContext, msg *Message) (interface{}, error) {
		return msg.Payload, nil
	})
	return a
}

func TestBehaviorStateMachine(t *testing.T) {
	a := new(Actor)

	// 没有行为时报错
	_, err := a.Receive(nil, NewMessage("x", nil))
	assert.ErrorIs(t, err, ErrNoBehavior)

	a.AddBehavior("open", func(ctx IContext, msg *Message) (interface{}, error) {
		return "open:" + msg.Type, nil
	})
	a.AddBehavior("closed", func(ctx IContext, msg *Message) (interface{}, error) {
		return "closed:" + msg.Type, nil
	})
	// 首个注册的行为自动成为当前行为
	assert.Equal(t, "open", a.Behavior())

	result, err := a.Receive(nil, NewMessage("ping", nil))
	require.NoError(t, err)
	assert.Equal(t, "open:ping", result)

	require.NoError(t, a.Become("closed"))
	result, err = a.Receive(nil, NewMessage("ping", nil))
	require.NoError(t, err)
	assert.Equal(t, "closed:ping", result)

	// 未注册的行为切换失败且当前行为不变
	assert.ErrorIs(t, a.Become("missing"), ErrUnknownState)
	assert.Equal(t, "closed", a.Behavior())
}

func TestSystemAskEcho(t *testing.T) {
	system := newTestSystem(t)
	pid, err := system.Spawn(newEchoActor)
	require.NoError(t, err)

	result, err := system.Ask(pid, NewMessage("echo", "hello"), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "hello", result)
}

func TestSystemAskTimeout(t *testing.T) {
	system := newTestSystem(t)
	pid, err := system.Spawn(func() IActor {
		a := new(echoActor)
		a.AddBehavior(DefaultBehavior, func(ctx IContext, msg *Message) (interface{}, error) {
			time.Sleep(200 * time.Millisecond)
			return nil, nil
		})
		return a
	})
	require.NoError(t, err)

	_, err = system.Ask(pid, NewMessage("slow", nil), 30*time.Millisecond)
	assert.ErrorIs(t, err, ErrAskTimeout)
}

func TestSystemAskHandlerError(t *testing.T) {
	system := newTestSystem(t)
	handlerErr := errors.New("boom")
	pid, err := system.Spawn(func() IActor {
		a := new(echoActor)
		a.AddBehavior(DefaultBehavior, func(ctx IContext, msg *Message) (interface{}, error) {
			return nil, handlerErr
		})
		return a
	})
	require.NoError(t, err)

	// 先收到错误应答，然后邮箱因处理器错误挂起
	_, err = system.Ask(pid, NewMessage("fail", nil), time.Second)
	assert.ErrorIs(t, err, handlerErr)

	process := system.GetProcess(pid)
	require.NotNil(t, process)
	assert.Eventually(t, process.Mailbox().IsSuspended, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, process.Mailbox().SuspendError(), handlerErr)

	// 监督者恢复后继续处理
	assert.True(t, process.Mailbox().Resume())
	assert.False(t, process.Mailbox().IsSuspended())
}

func TestBecomeAcrossMessages(t *testing.T) {
	system := newTestSystem(t)
	pid, err := system.Spawn(func() IActor {
		a := new(echoActor)
		a.AddBehavior("counting", func(ctx IContext, msg *Message) (interface{}, error) {
			if msg.Type == "freeze" {
				return nil, a.Become("frozen")
			}
			return "counted", nil
		})
		a.AddBehavior("frozen", func(ctx IContext, msg *Message) (interface{}, error) {
			return "frozen", nil
		})
		return a
	})
	require.NoError(t, err)

	result, err := system.Ask(pid, NewMessage("hit", nil), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "counted", result)

	_, err = system.Ask(pid, NewMessage("freeze", nil), time.Second)
	require.NoError(t, err)

	// 切换只影响之后的消息
	result, err = system.Ask(pid, NewMessage("hit", nil), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "frozen", result)
}

func TestOnInitParams(t *testing.T) {
	system := newTestSystem(t)
	var got atomic.Value
	_, err := system.Spawn(func() IActor {
		return &paramActor{got: &got}
	}, WithParams("alpha", 7))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		params, _ := got.Load().([]interface{})
		return len(params) == 2 && params[0] == "alpha" && params[1] == 7
	}, time.Second, 5*time.Millisecond)
}

type paramActor struct {
	Actor
	got *atomic.Value
}

func (p *paramActor) OnInit(ctx IContext, params []interface{}) error {
	p.got.Store(params)
	return nil
}

func TestNameRegistration(t *testing.T) {
	system := newTestSystem(t)
	pid, err := system.Spawn(newEchoActor, WithName("echo"))
	require.NoError(t, err)
	assert.Equal(t, "echo", pid.GetName())

	process := system.GetProcessByName("echo")
	require.NotNil(t, process)
	require.True(t, system.WhereIs("echo").Equal(pid))
	assert.Nil(t, system.WhereIs("unknown"))

	_, err = system.Spawn(newEchoActor, WithName("echo"))
	assert.Error(t, err)
}

func TestStopAndDeadLetter(t *testing.T) {
	system := newTestSystem(t)
	pid, err := system.Spawn(newEchoActor)
	require.NoError(t, err)

	require.NoError(t, system.Stop(pid))
	// 停止后从注册表摘除，消息进死信
	assert.Eventually(t, func() bool {
		return system.GetProcess(pid) == nil
	}, time.Second, 5*time.Millisecond)

	err = system.Send(pid, NewMessage("late", nil))
	assert.ErrorIs(t, err, ErrProcessNotFound)

	// 未知进程直接死信
	err = system.Send(&Pid{Id: 999999}, NewMessage("nowhere", nil))
	assert.ErrorIs(t, err, ErrProcessNotFound)
}

func TestPushTaskAndWait(t *testing.T) {
	system := newTestSystem(t)
	pid, err := system.Spawn(newEchoActor)
	require.NoError(t, err)

	process := system.GetProcess(pid)
	require.NotNil(t, process)

	var ran atomic.Bool
	err = process.PushTaskAndWait(time.Second, func(ctx IContext) error {
		ran.Store(true)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran.Load())

	taskErr := errors.New("task failed")
	err = process.PushTaskAndWait(time.Second, func(ctx IContext) error {
		return taskErr
	})
	assert.ErrorIs(t, err, taskErr)
}

func TestContextTimers(t *testing.T) {
	system := newTestSystem(t)
	var fired atomic.Int64
	pid, err := system.Spawn(func() IActor {
		a := new(echoActor)
		a.AddBehavior(DefaultBehavior, func(ctx IContext, msg *Message) (interface{}, error) {
			switch msg.Type {
			case "once":
				return ctx.AfterFunc(10*time.Millisecond, func(ctx IContext) error {
					fired.Add(1)
					return nil
				})
			case "tick":
				return ctx.TickFunc(10*time.Millisecond, func(ctx IContext) error {
					fired.Add(1)
					return nil
				})
			case "cancel":
				return ctx.CancelTimer(msg.Payload.(int64)), nil
			}
			return nil, nil
		})
		return a
	})
	require.NoError(t, err)

	_, err = system.Ask(pid, NewMessage("once", nil), time.Second)
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return fired.Load() >= 1 }, time.Second, 5*time.Millisecond)

	result, err := system.Ask(pid, NewMessage("tick", nil), time.Second)
	require.NoError(t, err)
	tickId, ok := result.(int64)
	require.True(t, ok)
	assert.Eventually(t, func() bool { return fired.Load() >= 3 }, time.Second, 5*time.Millisecond)

	canceled, err := system.Ask(pid, NewMessage("cancel", tickId), time.Second)
	require.NoError(t, err)
	assert.Equal(t, true, canceled)
}

func TestShutdownRejectsWork(t *testing.T) {
	system, err := NewSystem(WithWorkerId(2))
	require.NoError(t, err)
	pid, err := system.Spawn(newEchoActor)
	require.NoError(t, err)

	require.NoError(t, system.Shutdown(time.Second))

	_, err = system.Spawn(newEchoActor)
	assert.ErrorIs(t, err, ErrSystemShuttingDown)
	err = system.Send(pid, NewMessage("late", nil))
	assert.ErrorIs(t, err, ErrSystemShuttingDown)
}

func TestHandlerPanicSuspendsAndReplies(t *testing.T) {
	system := newTestSystem(t)
	var delivered atomic.Int64
	pid, err := system.Spawn(func() IActor {
		a := new(echoActor)
		a.AddBehavior(DefaultBehavior, func(ctx IContext, msg *Message) (interface{}, error) {
			if msg.Type == "boom" {
				panic("boom")
			}
			delivered.Add(1)
			return msg.Payload, nil
		})
		return a
	})
	require.NoError(t, err)

	// panic 与错误返回走同一条路径：请求方先拿到错误应答
	_, err = system.Ask(pid, NewMessage("boom", nil), time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler panic")

	// 邮箱挂起并记录错误，panic 之后入队的消息留在队列里
	process := system.GetProcess(pid)
	require.NotNil(t, process)
	assert.Eventually(t, process.Mailbox().IsSuspended, time.Second, 5*time.Millisecond)
	require.Error(t, process.Mailbox().SuspendError())
	assert.Contains(t, process.Mailbox().SuspendError().Error(), "handler panic")

	require.NoError(t, system.Send(pid, NewMessage("after", nil)))
	assert.Equal(t, int64(0), delivered.Load())

	// 恢复后继续投递，不再需要任何新消息来补触发
	assert.True(t, process.Mailbox().Resume())
	assert.Eventually(t, func() bool { return delivered.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestSpawnDuplicateNameLeavesNoProcess(t *testing.T) {
	system := newTestSystem(t)
	pid, err := system.Spawn(newEchoActor, WithName("dup"))
	require.NoError(t, err)

	_, err = system.Spawn(newEchoActor, WithName("dup"))
	require.Error(t, err)

	// 冲突的派生不留下进程，关闭能正常排空
	assert.Len(t, system.GetAllProcesses(), 1)
	require.True(t, system.WhereIs("dup").Equal(pid))
	require.NoError(t, system.Shutdown(time.Second))
	assert.Empty(t, system.GetAllProcesses())
}
