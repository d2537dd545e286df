// Package pool 提供可复用对象池与缓冲池，降低高频分配带来的 GC 压力
// 池在 acquire 未命中时按需创建对象（未命中计数但不报错），release 超过
// maxSize 时直接丢弃对象，整体策略偏可用性而非严格性
package pool

import "errors"

var (
	// ErrPoolNameEmpty 池名字为空
	ErrPoolNameEmpty = errors.New("pool: name cannot be empty")
	// ErrPoolAlreadyRegistered 池名字已被注册
	ErrPoolAlreadyRegistered = errors.New("pool: name already registered")
	// ErrFactoryIsNil 工厂函数为空
	ErrFactoryIsNil = errors.New("pool: factory is nil")
	// ErrBufferSizeInvalid 缓冲区大小非法
	ErrBufferSizeInvalid = errors.New("pool: buffer size must be positive")
)

// Stats 池运行统计
type Stats struct {
	Size      int     `json:"size"`      // 当前空闲对象数
	Created   int64   `json:"created"`   // 累计创建对象数
	Acquired  int64   `json:"acquired"`  // 累计借出次数
	Released  int64   `json:"released"`  // 累计归还次数
	MaxSize   int     `json:"maxSize"`   // 池容量上限
	MissCount int64   `json:"missCount"` // 借出时空闲列表为空的次数
	HitRate   float64 `json:"hitRate"`   // 命中率 = (acquired-miss)/acquired
}

// IPool 注册到 Manager 的池需要实现的最小接口
type IPool interface {
	Name() string
	Size() int
	Clear()
	Stats() Stats
}

type Option func(*Options)

type Options struct {
	InitialSize int
	MaxSize     int
}

func loadOptions(options ...Option) *Options {
	opts := &Options{
		InitialSize: 0,
		MaxSize:     128,
	}
	for _, option := range options {
		option(opts)
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = 128
	}
	if opts.InitialSize < 0 {
		opts.InitialSize = 0
	}
	if opts.InitialSize > opts.MaxSize {
		opts.InitialSize = opts.MaxSize
	}
	return opts
}

// WithInitialSize 预创建对象数量
func WithInitialSize(n int) Option {
	return func(op *Options) {
		op.InitialSize = n
	}
}

// WithMaxSize 池容量上限，归还超出部分直接丢弃
func WithMaxSize(n int) Option {
	return func(op *Options) {
		op.MaxSize = n
	}
}
