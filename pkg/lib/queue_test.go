package lib

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue[int]()
	for i := 0; i < 10; i++ {
		q.Push(i)
	}
	assert.Equal(t, 10, q.Len())
	for i := 0; i < 10; i++ {
		v, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := q.Pop()
	assert.False(t, ok)
	assert.True(t, q.Empty())
}

func TestQueuePeek(t *testing.T) {
	q := NewQueue[string]()
	_, ok := q.Peek()
	assert.False(t, ok)

	q.Push("a")
	q.Push("b")
	v, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, "a", v)
	assert.Equal(t, 2, q.Len())
}

func TestQueueCompaction(t *testing.T) {
	q := NewQueueWithThreshold[int](4)
	// 排空后继续使用，读指针必须正确复位
	for round := 0; round < 3; round++ {
		for i := 0; i < 8; i++ {
			q.Push(i)
		}
		for i := 0; i < 8; i++ {
			v, ok := q.Pop()
			require.True(t, ok)
			assert.Equal(t, i, v)
		}
		assert.True(t, q.Empty())
	}
}

func TestQueueConcurrentPush(t *testing.T) {
	q := NewQueue[int]()
	wg := new(sync.WaitGroup)
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.Push(i)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, q.Len())
}

func TestMpscQueue(t *testing.T) {
	q := NewMpsc[int]()
	assert.True(t, q.Empty())

	wg := new(sync.WaitGroup)
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.Push(i)
			}
		}()
	}
	wg.Wait()

	count := 0
	for {
		_, ok := q.Pop()
		if !ok {
			break
		}
		count++
	}
	assert.Equal(t, 400, count)
	assert.True(t, q.Empty())
}

func TestWaiterDone(t *testing.T) {
	w := NewWaiter[int](time.Second)
	go w.Done(42)
	v, err := w.Wait()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestWaiterTimeout(t *testing.T) {
	w := NewWaiter[int](20 * time.Millisecond)
	_, err := w.Wait()
	assert.ErrorIs(t, err, ErrWaiterTimeout)
}

func TestIdWorkerUnique(t *testing.T) {
	iw, err := NewIdWorker(1)
	require.NoError(t, err)
	seen := make(map[int64]bool)
	last := int64(0)
	for i := 0; i < 10000; i++ {
		id, err := iw.NextId()
		require.NoError(t, err)
		assert.False(t, seen[id])
		assert.Greater(t, id, last)
		seen[id] = true
		last = id
	}
}
