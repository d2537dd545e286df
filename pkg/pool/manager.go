package pool

import (
	"sync"

	"github.com/duke-git/lancet/v2/maputil"
	"github.com/pkg/errors"
)

// Manager 按名字管理池的注册表
// 进程内存态，不做任何持久化；由使用方显式创建并传递，不提供包级单例
type Manager struct {
	mu    sync.Mutex // 串行化注册的查重与写入
	pools *maputil.ConcurrentMap[string, IPool]
}

func NewManager() *Manager {
	return &Manager{
		pools: maputil.NewConcurrentMap[string, IPool](10),
	}
}

// Register 注册一个池，名字冲突返回错误
func (m *Manager) Register(p IPool) error {
	if p == nil || p.Name() == "" {
		return ErrPoolNameEmpty
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.pools.Get(p.Name()); exists {
		return errors.Wrap(ErrPoolAlreadyRegistered, p.Name())
	}
	m.pools.Set(p.Name(), p)
	return nil
}

// Get 按名字查找池
func (m *Manager) Get(name string) (IPool, bool) {
	return m.pools.Get(name)
}

// NewBufferPool 创建缓冲池并注册
func (m *Manager) NewBufferPool(name string, bufferSize int, options ...Option) (*BufferPool, error) {
	p, err := NewBufferPool(name, bufferSize, options...)
	if err != nil {
		return nil, err
	}
	if err = m.Register(p); err != nil {
		return nil, err
	}
	return p, nil
}

// NewObjectPoolIn 创建对象池并注册到 manager
// 方法不能携带类型参数，所以这里是包级函数
func NewObjectPoolIn[T any](m *Manager, name string, factory func() T, reset func(T) T, options ...Option) (*ObjectPool[T], error) {
	p, err := NewObjectPool[T](name, factory, reset, options...)
	if err != nil {
		return nil, err
	}
	if err = m.Register(p); err != nil {
		return nil, err
	}
	return p, nil
}

// AllStats 汇总所有池的统计
func (m *Manager) AllStats() map[string]Stats {
	stats := make(map[string]Stats)
	m.pools.Range(func(name string, p IPool) bool {
		stats[name] = p.Stats()
		return true
	})
	return stats
}

// ClearAll 清空所有池的空闲对象
func (m *Manager) ClearAll() {
	m.pools.Range(func(_ string, p IPool) bool {
		p.Clear()
		return true
	})
}

// Remove 注销一个池
func (m *Manager) Remove(name string) {
	m.pools.Delete(name)
}
