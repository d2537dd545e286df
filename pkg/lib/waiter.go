package lib

import (
	"errors"
	"time"
)

// ErrWaiterTimeout 等待超时错误
var ErrWaiterTimeout = errors.New("waiter timeout")

type outcome[T any] struct {
	val T
	err error
}

// NewWaiter 创建等待器，timeout<=0 表示不设置兜底超时
func NewWaiter[T any](timeout time.Duration) *Waiter[T] {
	w := new(Waiter[T])
	w.ch = make(chan outcome[T], 1)
	if timeout > 0 {
		w.after = time.After(timeout)
	}
	return w
}

// Waiter 一次性结果等待器
// Done/Fail 只有第一次调用生效，之后的调用被丢弃
type Waiter[T any] struct {
	ch    chan outcome[T]
	after <-chan time.Time
}

func (w *Waiter[T]) Wait() (T, error) {
	var zero T
	select {
	case o := <-w.ch:
		return o.val, o.err
	case <-w.after:
		return zero, ErrWaiterTimeout
	}
}

func (w *Waiter[T]) Done(val T) {
	// 非阻塞发送，避免多次调用时阻塞
	select {
	case w.ch <- outcome[T]{val: val}:
	default:
	}
}

func (w *Waiter[T]) Fail(err error) {
	select {
	case w.ch <- outcome[T]{err: err}:
	default:
	}
}
