package pool

import (
	"gar/pkg/glog"

	"go.uber.org/zap"
)

var _ IPool = (*BufferPool)(nil)

// BufferPool 固定大小二进制缓冲池
// 归还时整块清零，保证下一次借出得到干净的缓冲
type BufferPool struct {
	inner      *ObjectPool[[]byte]
	bufferSize int
}

func NewBufferPool(name string, bufferSize int, options ...Option) (*BufferPool, error) {
	if bufferSize <= 0 {
		return nil, ErrBufferSizeInvalid
	}
	inner, err := NewObjectPool[[]byte](name, func() []byte {
		return make([]byte, bufferSize)
	}, func(buf []byte) []byte {
		clear(buf)
		return buf
	}, options...)
	if err != nil {
		return nil, err
	}
	return &BufferPool{inner: inner, bufferSize: bufferSize}, nil
}

func (p *BufferPool) Name() string {
	return p.inner.Name()
}

// BufferSize 缓冲区固定长度
func (p *BufferPool) BufferSize() int {
	return p.bufferSize
}

func (p *BufferPool) Acquire() []byte {
	return p.inner.Acquire()
}

// Release 归还缓冲区，长度不匹配只记日志不归还
func (p *BufferPool) Release(buf []byte) {
	if len(buf) != p.bufferSize {
		glog.Warn("buffer pool release size mismatch",
			zap.String("pool", p.inner.Name()),
			zap.Int("want", p.bufferSize),
			zap.Int("got", len(buf)))
		return
	}
	p.inner.Release(buf)
}

func (p *BufferPool) Size() int {
	return p.inner.Size()
}

func (p *BufferPool) Clear() {
	p.inner.Clear()
}

func (p *BufferPool) Stats() Stats {
	return p.inner.Stats()
}
