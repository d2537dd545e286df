package actor

import (
	"sync"
	"sync/atomic"
	"time"

	"gar/pkg/asynctime"
	"gar/pkg/glog"

	"go.uber.org/zap"
)

func newTimerManager() *timerManager {
	return &timerManager{
		timers: make(map[int64]*asynctime.Timer),
	}
}

// timerManager 定时回调统一投递回 actor 邮箱，保证与消息处理串行
type timerManager struct {
	mu     sync.Mutex
	nextId int64
	timers map[int64]*asynctime.Timer
}

func (t *timerManager) AfterFunc(process IProcess, d time.Duration, task Task) (int64, error) {
	if task == nil {
		return 0, ErrTaskIsNil
	}
	id := atomic.AddInt64(&t.nextId, 1)
	timer := asynctime.AfterFunc(d, func() {
		t.remove(id)
		t.dispatch(process, task)
	})
	t.add(id, timer)
	return id, nil
}

func (t *timerManager) TickFunc(process IProcess, interval time.Duration, task Task) (int64, error) {
	if task == nil {
		return 0, ErrTaskIsNil
	}
	id := atomic.AddInt64(&t.nextId, 1)
	var fire func()
	fire = func() {
		t.dispatch(process, task)
		t.mu.Lock()
		if _, ok := t.timers[id]; ok {
			t.timers[id] = asynctime.AfterFunc(interval, fire)
		}
		t.mu.Unlock()
	}
	t.add(id, asynctime.AfterFunc(interval, fire))
	return id, nil
}

func (t *timerManager) CancelTimer(timerId int64) bool {
	t.mu.Lock()
	timer, ok := t.timers[timerId]
	if ok {
		delete(t.timers, timerId)
	}
	t.mu.Unlock()
	if !ok {
		return false
	}
	timer.Stop()
	return true
}

func (t *timerManager) CancelAllTimers() {
	t.mu.Lock()
	timers := t.timers
	t.timers = make(map[int64]*asynctime.Timer)
	t.mu.Unlock()
	for _, timer := range timers {
		timer.Stop()
	}
}

func (t *timerManager) add(id int64, timer *asynctime.Timer) {
	t.mu.Lock()
	t.timers[id] = timer
	t.mu.Unlock()
}

func (t *timerManager) remove(id int64) {
	t.mu.Lock()
	delete(t.timers, id)
	t.mu.Unlock()
}

func (t *timerManager) dispatch(process IProcess, task Task) {
	if process == nil {
		return
	}
	if err := process.PushTask(task); err != nil {
		glog.Warn("timer task dropped", zap.Error(err))
	}
}
