package typed

import (
	"strconv"
	"sync/atomic"
	"time"

	"gar/pkg/actor"
	"gar/pkg/asynctime"
	"gar/pkg/lib"

	"github.com/duke-git/lancet/v2/maputil"
)

var _ actor.IResponder = (*RequestResponseManager)(nil)

// pendingRequest 一次未决请求
// done 保证超时与应答只有一方生效
type pendingRequest struct {
	waiter *lib.Waiter[interface{}]
	timer  *asynctime.Timer
	done   atomic.Bool
}

func NewRequestResponseManager(workerId int64) (*RequestResponseManager, error) {
	idWorker, err := lib.NewIdWorker(workerId)
	if err != nil {
		return nil, err
	}
	return &RequestResponseManager{
		dict:     maputil.NewConcurrentMap[string, *pendingRequest](10),
		idWorker: idWorker,
	}, nil
}

// RequestResponseManager 请求应答关联表
// 以关联 ID 配对请求与应答，挂接到系统后承接 respond 路由的兜底应答
type RequestResponseManager struct {
	dict     *maputil.ConcurrentMap[string, *pendingRequest]
	idWorker *lib.IdWorker
}

// Attach 挂接为系统级应答接收方
func (m *RequestResponseManager) Attach(system *actor.System) {
	system.SetResponder(m)
}

// NextCorrelationId 生成全局唯一关联 ID
func (m *RequestResponseManager) NextCorrelationId() string {
	id, err := m.idWorker.NextId()
	if err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return strconv.FormatInt(id, 10)
}

// Register 登记一次未决请求
// timeout>0 时超时自动以 ErrAskTimeout 失败并清理登记
func (m *RequestResponseManager) Register(correlationId string, timeout time.Duration) *lib.Waiter[interface{}] {
	p := &pendingRequest{
		waiter: lib.NewWaiter[interface{}](0),
	}
	m.dict.Set(correlationId, p)
	if timeout > 0 {
		p.timer = asynctime.AfterFunc(timeout, func() {
			m.expire(correlationId)
		})
	}
	return p.waiter
}

// Complete 以关联 ID 回填应答
// 未知或已结束的关联 ID 返回 false，由调用方按死信处理
func (m *RequestResponseManager) Complete(correlationId string, result interface{}, err error) bool {
	p, ok := m.dict.Get(correlationId)
	if !ok {
		return false
	}
	if !p.done.CompareAndSwap(false, true) {
		return false
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	m.dict.Delete(correlationId)
	if err != nil {
		p.waiter.Fail(err)
	} else {
		p.waiter.Done(result)
	}
	return true
}

func (m *RequestResponseManager) expire(correlationId string) {
	p, ok := m.dict.Get(correlationId)
	if !ok {
		return
	}
	if !p.done.CompareAndSwap(false, true) {
		return
	}
	m.dict.Delete(correlationId)
	p.waiter.Fail(actor.ErrAskTimeout)
}

// Cancel 取消一次未决请求，等待方收到超时错误
func (m *RequestResponseManager) Cancel(correlationId string) bool {
	p, ok := m.dict.Get(correlationId)
	if !ok {
		return false
	}
	if !p.done.CompareAndSwap(false, true) {
		return false
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	m.dict.Delete(correlationId)
	p.waiter.Fail(actor.ErrAskTimeout)
	return true
}

// CancelAll 取消全部未决请求
func (m *RequestResponseManager) CancelAll() {
	var ids []string
	m.dict.Range(func(key string, _ *pendingRequest) bool {
		ids = append(ids, key)
		return true
	})
	for _, id := range ids {
		m.Cancel(id)
	}
}

// PendingCount 当前未决请求数
func (m *RequestResponseManager) PendingCount() int {
	count := 0
	m.dict.Range(func(_ string, _ *pendingRequest) bool {
		count++
		return true
	})
	return count
}

// Ask 通过关联表发起请求：应答沿系统应答接收方路由回来
// 与 System.Ask 的差别在于应答经由 Complete 回填，可跨投递链路使用
func (m *RequestResponseManager) Ask(system *actor.System, to *actor.Pid, msg *actor.Message, timeout time.Duration) (interface{}, error) {
	if msg == nil {
		return nil, actor.ErrMessageIsNil
	}
	if msg.ResponseId == "" {
		msg.ResponseId = m.NextCorrelationId()
	}
	waiter := m.Register(msg.ResponseId, timeout)
	if err := system.Send(to, msg); err != nil {
		m.Cancel(msg.ResponseId)
		return nil, err
	}
	return waiter.Wait()
}
