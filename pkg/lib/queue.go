// Package lib
// @Description: 邮箱使用的基础队列

package lib

import "sync"

const defaultCompactThreshold = 100

// Queue 均摊 O(1) 的 FIFO 队列
// 底层使用切片加读指针实现，出队只移动读指针不搬移元素；
// 当队列被完全消费且已消费前缀超过压缩阈值时，释放底层数组以限制内存占用
type Queue[T any] struct {
	mu        sync.Mutex
	items     []T
	head      int
	compactAt int
}

func NewQueue[T any]() *Queue[T] {
	return NewQueueWithThreshold[T](defaultCompactThreshold)
}

// NewQueueWithThreshold 创建指定压缩阈值的队列
func NewQueueWithThreshold[T any](compactAt int) *Queue[T] {
	if compactAt <= 0 {
		compactAt = defaultCompactThreshold
	}
	return &Queue[T]{compactAt: compactAt}
}

func (q *Queue[T]) Push(v T) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()
}

// Pop 取出队首元素，队列为空时返回 false
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head >= len(q.items) {
		return zero, false
	}
	v := q.items[q.head]
	q.items[q.head] = zero // 避免底层数组继续引用已出队元素
	q.head++
	if q.head >= len(q.items) {
		// 队列已排空，已消费前缀超过阈值时丢弃底层数组
		if q.head > q.compactAt {
			q.items = nil
		} else {
			q.items = q.items[:0]
		}
		q.head = 0
	}
	return v, true
}

// Peek 查看队首元素但不出队
func (q *Queue[T]) Peek() (T, bool) {
	var zero T
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head >= len(q.items) {
		return zero, false
	}
	return q.items[q.head], true
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}
