package actor

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThroughputDispatcherExecutesAll(t *testing.T) {
	d := NewThroughputDispatcher(100000)
	var done atomic.Int64
	for i := 0; i < 50; i++ {
		require.NoError(t, d.Schedule(func() { done.Add(1) }, nil))
	}
	assert.Eventually(t, func() bool {
		return d.GetStats().ProcessedTotal == 50
	}, 3*time.Second, 5*time.Millisecond)

	stats := d.GetStats()
	assert.Equal(t, int64(50), done.Load())
	assert.Equal(t, 0, stats.QueueSize)
	assert.GreaterOrEqual(t, stats.MaxQueueSize, int64(1))
}

func TestThroughputDispatcherNilTask(t *testing.T) {
	d := NewThroughputDispatcher(100)
	assert.ErrorIs(t, d.Schedule(nil, nil), ErrTaskIsNil)
}

func TestThroughputDispatcherOverloadShrink(t *testing.T) {
	d := NewThroughputDispatcher(100,
		WithBatchSize(2),
		WithMaxQueueSize(4),
		WithAdaptInterval(time.Hour), // 只验证队列深度触发的即时调整
	)
	assert.Equal(t, 100, d.Throughput())

	gate := make(chan struct{})
	var done atomic.Int64
	for i := 0; i < 20; i++ {
		require.NoError(t, d.Schedule(func() {
			<-gate
			done.Add(1)
		}, nil))
	}

	// 队列深度超过阈值，目标吞吐立即收缩
	assert.True(t, d.GetStats().OverloadDetected)
	assert.Equal(t, 80, d.Throughput())

	close(gate)
	assert.Eventually(t, func() bool { return done.Load() == 20 }, 5*time.Second, 5*time.Millisecond)

	// 负载回落后下一次入队触发恢复扩张
	require.NoError(t, d.Schedule(func() { done.Add(1) }, nil))
	assert.False(t, d.GetStats().OverloadDetected)
	assert.Equal(t, 96, d.Throughput())
}

func TestThroughputDispatcherHoldsTargetRate(t *testing.T) {
	if testing.Short() {
		t.Skip("多秒限速测试")
	}
	// 目标 10 任务/秒、批大小 5，30 个任务应当在 3 秒左右完成
	d := NewThroughputDispatcher(10,
		WithBatchSize(5),
		WithAdaptInterval(time.Hour),
	)
	var done atomic.Int64
	start := time.Now()
	for i := 0; i < 30; i++ {
		require.NoError(t, d.Schedule(func() { done.Add(1) }, nil))
	}
	require.Eventually(t, func() bool { return done.Load() == 30 }, 10*time.Second, 10*time.Millisecond)

	elapsed := time.Since(start)
	assert.Greater(t, elapsed, 2*time.Second)
	assert.Less(t, elapsed, 5*time.Second)
}

func TestThroughputDispatcherBounds(t *testing.T) {
	d := NewThroughputDispatcher(100, WithThroughputBounds(50, 120))
	d.scale(0.1)
	assert.Equal(t, 50, d.Throughput())
	d.scale(100)
	assert.Equal(t, 120, d.Throughput())
}

func TestThroughputDispatcherRecover(t *testing.T) {
	d := NewThroughputDispatcher(100000)
	var caught atomic.Value
	require.NoError(t, d.Schedule(func() {
		panic("task exploded")
	}, func(err interface{}) {
		caught.Store(err)
	}))
	assert.Eventually(t, func() bool {
		return caught.Load() == "task exploded"
	}, 3*time.Second, 5*time.Millisecond)
}

func TestThroughputDispatcherReset(t *testing.T) {
	d := NewThroughputDispatcher(100)
	d.scale(0.8)
	assert.Equal(t, 80, d.Throughput())

	d.Reset()
	assert.Equal(t, 100, d.Throughput())
	stats := d.GetStats()
	assert.Zero(t, stats.ProcessedTotal)
	assert.Zero(t, stats.AdaptiveAdjustments)
	assert.False(t, stats.OverloadDetected)
}

func TestTrend(t *testing.T) {
	assert.Zero(t, trend(nil))
	assert.Zero(t, trend([]float64{5}))
	// 平稳序列趋势为零
	assert.InDelta(t, 0, trend([]float64{5, 5, 5, 5}), 1e-9)
	// 上升与下降序列的符号
	assert.Greater(t, trend([]float64{1, 2, 3, 4, 5}), 0.2)
	assert.Less(t, trend([]float64{5, 4, 3, 2, 1}), -0.2)
}

func TestPooledDispatcherMode(t *testing.T) {
	d, err := NewPooledDispatcher(100, WithLanes(2), WithLaneCapacity(3))
	require.NoError(t, err)
	defer func() { _ = d.Release(time.Second) }()

	assert.Equal(t, "ants-multipool/least-tasks lanes=2 laneCap=3", d.Mode())
	assert.Equal(t, 100, d.Throughput())

	var done atomic.Int64
	for i := 0; i < 10; i++ {
		require.NoError(t, d.Schedule(func() { done.Add(1) }, nil))
	}
	assert.Eventually(t, func() bool { return done.Load() == 10 }, time.Second, 5*time.Millisecond)
}
