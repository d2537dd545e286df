package pool

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type session struct {
	id    int
	dirty bool
}

func newSessionPool(t *testing.T, options ...Option) *ObjectPool[*session] {
	t.Helper()
	seq := 0
	p, err := NewObjectPool[*session]("session", func() *session {
		seq++
		return &session{id: seq}
	}, func(s *session) *session {
		s.dirty = false
		return s
	}, options...)
	require.NoError(t, err)
	return p
}

func TestObjectPoolReuse(t *testing.T) {
	p := newSessionPool(t)

	first := p.Acquire()
	first.dirty = true
	p.Release(first)

	second := p.Acquire()
	assert.Same(t, first, second)
	// 归还时 reset 已执行
	assert.False(t, second.dirty)

	stats := p.Stats()
	assert.Equal(t, int64(2), stats.Acquired)
	assert.Equal(t, int64(1), stats.MissCount)
	assert.Equal(t, 0.5, stats.HitRate)
}

func TestObjectPoolInitialSize(t *testing.T) {
	p := newSessionPool(t, WithInitialSize(4))
	assert.Equal(t, 4, p.Size())

	stats := p.Stats()
	assert.Equal(t, int64(4), stats.Created)

	p.Acquire()
	assert.Equal(t, 3, p.Size())
	assert.Equal(t, int64(0), p.Stats().MissCount)
}

func TestObjectPoolMaxSizeDiscard(t *testing.T) {
	p := newSessionPool(t, WithMaxSize(2))

	a, b, c := p.Acquire(), p.Acquire(), p.Acquire()
	p.Release(a)
	p.Release(b)
	p.Release(c) // 池已满，丢弃

	assert.Equal(t, 2, p.Size())
	assert.Equal(t, int64(3), p.Stats().Released)
}

func TestObjectPoolConcurrent(t *testing.T) {
	p := newSessionPool(t, WithMaxSize(64))
	wg := new(sync.WaitGroup)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				s := p.Acquire()
				s.dirty = true
				p.Release(s)
			}
		}()
	}
	wg.Wait()

	stats := p.Stats()
	assert.Equal(t, int64(8000), stats.Acquired)
	assert.Equal(t, stats.Acquired, stats.Released)
	assert.LessOrEqual(t, stats.Size, 64)
}

func TestBufferPoolZeroFill(t *testing.T) {
	p, err := NewBufferPool("frame", 16)
	require.NoError(t, err)
	assert.Equal(t, 16, p.BufferSize())

	buf := p.Acquire()
	require.Len(t, buf, 16)
	buf[0] = 0xff
	buf[15] = 0x7f
	p.Release(buf)

	again := p.Acquire()
	for i, b := range again {
		assert.Zerof(t, b, "byte %d not zeroed", i)
	}
}

func TestBufferPoolSizeMismatch(t *testing.T) {
	p, err := NewBufferPool("frame", 16)
	require.NoError(t, err)

	// 长度不符的缓冲不入池
	p.Release(make([]byte, 8))
	assert.Equal(t, 0, p.Size())
	assert.Equal(t, int64(0), p.Stats().Released)
}

func TestBufferPoolInvalidSize(t *testing.T) {
	_, err := NewBufferPool("bad", 0)
	assert.ErrorIs(t, err, ErrBufferSizeInvalid)
}

func TestManagerRegister(t *testing.T) {
	m := NewManager()
	p, err := m.NewBufferPool("frame", 32)
	require.NoError(t, err)

	got, ok := m.Get("frame")
	require.True(t, ok)
	assert.Equal(t, p.Name(), got.Name())

	// 名字冲突
	_, err = m.NewBufferPool("frame", 32)
	assert.ErrorIs(t, err, ErrPoolAlreadyRegistered)
}

func TestManagerRegisterConcurrent(t *testing.T) {
	m := NewManager()
	const racers = 16

	// 同名并发注册恰好成功一次
	var wg sync.WaitGroup
	var succeeded atomic.Int64
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.NewBufferPool("frame", 32); err == nil {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), succeeded.Load())
	assert.Len(t, m.AllStats(), 1)
}

func TestManagerAllStats(t *testing.T) {
	m := NewManager()
	_, err := NewObjectPoolIn[int](m, "ints", func() int { return 0 }, nil)
	require.NoError(t, err)
	_, err = m.NewBufferPool("frame", 8)
	require.NoError(t, err)

	stats := m.AllStats()
	assert.Len(t, stats, 2)
	assert.Contains(t, stats, "ints")
	assert.Contains(t, stats, "frame")

	m.Remove("ints")
	_, ok := m.Get("ints")
	assert.False(t, ok)
}
