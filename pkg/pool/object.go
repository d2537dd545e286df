package pool

import (
	"sync"
)

var _ IPool = (*ObjectPool[struct{}])(nil)

// ObjectPool 泛型对象池
// acquire/release 加锁保护，多调度车道真正并行时依旧安全
type ObjectPool[T any] struct {
	mu      sync.Mutex
	name    string
	free    []T
	factory func() T
	reset   func(T) T
	maxSize int

	created  int64
	acquired int64
	released int64
	miss     int64
}

// NewObjectPool 创建对象池并预创建 InitialSize 个对象
// reset 在归还时应用，可以为 nil
func NewObjectPool[T any](name string, factory func() T, reset func(T) T, options ...Option) (*ObjectPool[T], error) {
	if name == "" {
		return nil, ErrPoolNameEmpty
	}
	if factory == nil {
		return nil, ErrFactoryIsNil
	}
	opts := loadOptions(options...)
	p := &ObjectPool[T]{
		name:    name,
		factory: factory,
		reset:   reset,
		maxSize: opts.MaxSize,
		free:    make([]T, 0, opts.MaxSize),
	}
	for i := 0; i < opts.InitialSize; i++ {
		p.free = append(p.free, factory())
		p.created++
	}
	return p, nil
}

func (p *ObjectPool[T]) Name() string {
	return p.name
}

// Acquire 借出一个对象，空闲列表为空时直接新建（计入未命中）
func (p *ObjectPool[T]) Acquire() T {
	p.mu.Lock()
	p.acquired++
	if n := len(p.free); n > 0 {
		v := p.free[n-1]
		var zero T
		p.free[n-1] = zero
		p.free = p.free[:n-1]
		p.mu.Unlock()
		return v
	}
	p.miss++
	p.created++
	p.mu.Unlock()
	return p.factory()
}

// Release 归还对象，先执行 reset，池已满则丢弃
func (p *ObjectPool[T]) Release(v T) {
	if p.reset != nil {
		v = p.reset(v)
	}
	p.mu.Lock()
	p.released++
	if len(p.free) < p.maxSize {
		p.free = append(p.free, v)
	}
	p.mu.Unlock()
}

func (p *ObjectPool[T]) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

func (p *ObjectPool[T]) Clear() {
	p.mu.Lock()
	p.free = p.free[:0]
	p.mu.Unlock()
}

func (p *ObjectPool[T]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := Stats{
		Size:      len(p.free),
		Created:   p.created,
		Acquired:  p.acquired,
		Released:  p.released,
		MaxSize:   p.maxSize,
		MissCount: p.miss,
	}
	if p.acquired > 0 {
		s.HitRate = float64(p.acquired-p.miss) / float64(p.acquired)
	}
	return s
}
