package actor

import (
	"sync"
	"sync/atomic"
	"time"

	"gar/pkg/glog"
	"gar/pkg/lib"
	"gar/pkg/workers"

	"go.uber.org/zap"
)

// ThroughputOptions 自适应限速调度器参数
// 所有倍率与阈值都是可调默认值，不是固定常量
type ThroughputOptions struct {
	Throughput    int           // 每窗口目标任务数
	BatchSize     int           // 单批任务数上限
	Window        time.Duration // 吞吐窗口大小
	MaxQueueSize  int           // 过载阈值，队列超过即判定过载
	AdaptInterval time.Duration // 趋势自适应的最小间隔
	MinThroughput int           // 吞吐下限
	MaxThroughput int           // 吞吐上限
	HistorySize   int           // 滚动历史长度，满了丢最旧

	ShrinkFactor      float64 // 过载立即收缩倍率
	GrowFactor        float64 // 负载回落扩张倍率
	TrendShrinkFactor float64 // 趋势恶化收缩倍率
	TrendGrowFactor   float64 // 趋势向好扩张倍率
	TrendThreshold    float64 // 趋势判定阈值
	LatencyTrendMax   float64 // 扩张时允许的最大延迟趋势
}

func defaultThroughputOptions(throughput int) ThroughputOptions {
	if throughput <= 0 {
		throughput = defaultThroughput
	}
	return ThroughputOptions{
		Throughput:        throughput,
		BatchSize:         10,
		Window:            time.Second,
		MaxQueueSize:      1000,
		AdaptInterval:     time.Second,
		MinThroughput:     1,
		MaxThroughput:     throughput * 100,
		HistorySize:       20,
		ShrinkFactor:      0.8,
		GrowFactor:        1.2,
		TrendShrinkFactor: 0.9,
		TrendGrowFactor:   1.1,
		TrendThreshold:    0.2,
		LatencyTrendMax:   0.1,
	}
}

type ThroughputOption func(*ThroughputOptions)

func WithBatchSize(n int) ThroughputOption {
	return func(op *ThroughputOptions) {
		op.BatchSize = n
	}
}

func WithWindow(d time.Duration) ThroughputOption {
	return func(op *ThroughputOptions) {
		op.Window = d
	}
}

func WithMaxQueueSize(n int) ThroughputOption {
	return func(op *ThroughputOptions) {
		op.MaxQueueSize = n
	}
}

func WithThroughputBounds(minT, maxT int) ThroughputOption {
	return func(op *ThroughputOptions) {
		op.MinThroughput = minT
		op.MaxThroughput = maxT
	}
}

func WithAdaptInterval(d time.Duration) ThroughputOption {
	return func(op *ThroughputOptions) {
		op.AdaptInterval = d
	}
}

func WithHistorySize(n int) ThroughputOption {
	return func(op *ThroughputOptions) {
		op.HistorySize = n
	}
}

// ThroughputStats 调度器运行统计
type ThroughputStats struct {
	QueueSize           int           `json:"queueSize"`
	CurrentThroughput   int           `json:"currentThroughput"`
	ProcessedTotal      int64         `json:"processedTotal"`
	AverageLatency      time.Duration `json:"averageLatency"`
	MaxQueueSize        int64         `json:"maxQueueSize"`
	OverloadDetected    bool          `json:"overloadDetected"`
	AdaptiveAdjustments int64         `json:"adaptiveAdjustments"`
}

type throughputTask struct {
	fn         func()
	recoverFun func(err interface{})
	enqueuedAt time.Time
}

// ThroughputDispatcher 闭环限速批量执行器
// 入队即返回；后台按批并发执行，批间睡眠把实际速率压到目标吞吐；
// 队列深度触发即时倍率调整，窗口历史的最小二乘趋势做慢速自适应
type ThroughputDispatcher struct {
	opts  ThroughputOptions
	queue *lib.Queue[*throughputTask]

	status atomic.Int32

	mu              sync.Mutex // 保护自适应状态与滚动历史
	current         float64    // 当前目标吞吐（任务数/窗口）
	windowStart     time.Time
	windowProcessed int64
	windowLatency   time.Duration
	lastAdapt       time.Time
	queueHist       []float64
	latencyHist     []float64
	rateHist        []float64

	processed    atomic.Int64
	totalLatency atomic.Int64
	maxQueue     atomic.Int64
	overload     atomic.Bool
	adjustments  atomic.Int64
}

var _ IDispatcher = (*ThroughputDispatcher)(nil)

func NewThroughputDispatcher(throughput int, options ...ThroughputOption) *ThroughputDispatcher {
	opts := defaultThroughputOptions(throughput)
	for _, option := range options {
		option(&opts)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	if opts.Window <= 0 {
		opts.Window = time.Second
	}
	if opts.MinThroughput <= 0 {
		opts.MinThroughput = 1
	}
	if opts.MaxThroughput < opts.MinThroughput {
		opts.MaxThroughput = opts.MinThroughput
	}
	if opts.HistorySize <= 1 {
		opts.HistorySize = 20
	}
	d := &ThroughputDispatcher{
		opts:        opts,
		queue:       lib.NewQueue[*throughputTask](),
		current:     float64(opts.Throughput),
		windowStart: time.Now(),
		lastAdapt:   time.Now(),
	}
	return d
}

// Schedule 入队任务；任务一旦入队必然执行，不支持入队后取消
func (d *ThroughputDispatcher) Schedule(fn func(), recoverFun func(err interface{})) error {
	if fn == nil {
		return ErrTaskIsNil
	}
	d.queue.Push(&throughputTask{fn: fn, recoverFun: recoverFun, enqueuedAt: time.Now()})

	qlen := d.queue.Len()
	if prev := d.maxQueue.Load(); int64(qlen) > prev {
		d.maxQueue.CompareAndSwap(prev, int64(qlen))
	}
	if qlen > d.opts.MaxQueueSize {
		// 过载：立即收缩目标吞吐
		if d.overload.CompareAndSwap(false, true) {
			d.scale(d.opts.ShrinkFactor)
			glog.Warn("throughput dispatcher overload",
				zap.Int("queueSize", qlen),
				zap.Int("threshold", d.opts.MaxQueueSize))
		}
	} else if qlen < d.opts.MaxQueueSize/2 {
		// 负载回落到阈值一半以下，恢复并扩张
		if d.overload.CompareAndSwap(true, false) {
			d.scale(d.opts.GrowFactor)
		}
	}

	d.tryRun()
	return nil
}

func (d *ThroughputDispatcher) Throughput() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int(d.current)
}

func (d *ThroughputDispatcher) tryRun() {
	if !d.status.CompareAndSwap(idle, running) {
		return
	}
	go d.loop()
}

func (d *ThroughputDispatcher) loop() {
	for {
		batch := d.dequeueBatch()
		if len(batch) == 0 {
			d.status.Store(idle)
			// 再检查一次，避免与生产者竞争导致漏调度
			if d.queue.Empty() || !d.status.CompareAndSwap(idle, running) {
				return
			}
			continue
		}

		start := time.Now()
		var wg sync.WaitGroup
		wg.Add(len(batch))
		for _, t := range batch {
			t := t
			task := func() {
				defer wg.Done()
				workers.Try(t.fn, func(err interface{}) {
					if t.recoverFun != nil {
						t.recoverFun(err)
					} else {
						glog.Errorf("throughput dispatcher task panic:%+v", err)
					}
				})
			}
			if err := workers.Submit(task, nil); err != nil {
				// 协程池不可用时原地执行，保证任务不丢
				task()
			}
		}
		wg.Wait()

		elapsed := time.Since(start)
		now := time.Now()
		var batchLatency time.Duration
		for _, t := range batch {
			batchLatency += now.Sub(t.enqueuedAt)
		}
		d.processed.Add(int64(len(batch)))
		d.totalLatency.Add(int64(batchLatency))
		d.record(len(batch), batchLatency)

		// 批间限速：睡掉目标批耗时与实际批耗时的差值
		if sleep := d.targetInterval()*time.Duration(len(batch)) - elapsed; sleep > 0 {
			time.Sleep(sleep)
		}
	}
}

func (d *ThroughputDispatcher) dequeueBatch() []*throughputTask {
	n := d.queue.Len()
	if n > d.opts.BatchSize {
		n = d.opts.BatchSize
	}
	if n <= 0 {
		return nil
	}
	batch := make([]*throughputTask, 0, n)
	for i := 0; i < n; i++ {
		t, ok := d.queue.Pop()
		if !ok {
			break
		}
		batch = append(batch, t)
	}
	return batch
}

// targetInterval 单任务目标间隔 = 窗口 / 目标吞吐
func (d *ThroughputDispatcher) targetInterval() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current <= 0 {
		return 0
	}
	return time.Duration(float64(d.opts.Window) / d.current)
}

// scale 按倍率调整目标吞吐并收敛到上下限
func (d *ThroughputDispatcher) scale(factor float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scaleLocked(factor)
}

func (d *ThroughputDispatcher) scaleLocked(factor float64) {
	d.current *= factor
	if d.current < float64(d.opts.MinThroughput) {
		d.current = float64(d.opts.MinThroughput)
	}
	if d.current > float64(d.opts.MaxThroughput) {
		d.current = float64(d.opts.MaxThroughput)
	}
	d.adjustments.Add(1)
}

// record 累计窗口数据，窗口结束时写入滚动历史并触发趋势自适应
func (d *ThroughputDispatcher) record(n int, latency time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.windowProcessed += int64(n)
	d.windowLatency += latency

	elapsed := time.Since(d.windowStart)
	if elapsed < d.opts.Window {
		return
	}

	// 实际吞吐按窗口长度归一化
	rate := float64(d.windowProcessed) / elapsed.Seconds() * d.opts.Window.Seconds()
	var avgLatency float64
	if d.windowProcessed > 0 {
		avgLatency = float64(d.windowLatency) / float64(d.windowProcessed)
	}
	d.queueHist = pushHistory(d.queueHist, float64(d.queue.Len()), d.opts.HistorySize)
	d.latencyHist = pushHistory(d.latencyHist, avgLatency, d.opts.HistorySize)
	d.rateHist = pushHistory(d.rateHist, rate, d.opts.HistorySize)

	if time.Since(d.lastAdapt) >= d.opts.AdaptInterval {
		d.adaptLocked()
		d.lastAdapt = time.Now()
	}

	d.windowStart = time.Now()
	d.windowProcessed = 0
	d.windowLatency = 0
}

// adaptLocked 依据队列与延迟历史的归一化趋势调整吞吐
func (d *ThroughputDispatcher) adaptLocked() {
	queueTrend := trend(d.queueHist)
	latencyTrend := trend(d.latencyHist)
	switch {
	case queueTrend > d.opts.TrendThreshold || latencyTrend > d.opts.TrendThreshold:
		d.scaleLocked(d.opts.TrendShrinkFactor)
	case queueTrend < -d.opts.TrendThreshold && latencyTrend < d.opts.LatencyTrendMax:
		d.scaleLocked(d.opts.TrendGrowFactor)
	}
}

// trend 最小二乘斜率除以均值，得到无量纲的变化趋势
func trend(ys []float64) float64 {
	n := len(ys)
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	den := float64(n)*sumXX - sumX*sumX
	if den == 0 {
		return 0
	}
	slope := (float64(n)*sumXY - sumX*sumY) / den
	mean := sumY / float64(n)
	if mean == 0 {
		return 0
	}
	return slope / mean
}

func pushHistory(hist []float64, v float64, limit int) []float64 {
	hist = append(hist, v)
	if len(hist) > limit {
		hist = hist[1:]
	}
	return hist
}

// GetStats 当前运行统计快照
func (d *ThroughputDispatcher) GetStats() ThroughputStats {
	stats := ThroughputStats{
		QueueSize:           d.queue.Len(),
		CurrentThroughput:   d.Throughput(),
		ProcessedTotal:      d.processed.Load(),
		MaxQueueSize:        d.maxQueue.Load(),
		OverloadDetected:    d.overload.Load(),
		AdaptiveAdjustments: d.adjustments.Load(),
	}
	if stats.ProcessedTotal > 0 {
		stats.AverageLatency = time.Duration(d.totalLatency.Load() / stats.ProcessedTotal)
	}
	return stats
}

// Reset 重置统计与自适应状态，不影响已入队任务
func (d *ThroughputDispatcher) Reset() {
	d.mu.Lock()
	d.current = float64(d.opts.Throughput)
	d.windowStart = time.Now()
	d.windowProcessed = 0
	d.windowLatency = 0
	d.lastAdapt = time.Now()
	d.queueHist = nil
	d.latencyHist = nil
	d.rateHist = nil
	d.mu.Unlock()

	d.processed.Store(0)
	d.totalLatency.Store(0)
	d.maxQueue.Store(0)
	d.overload.Store(false)
	d.adjustments.Store(0)
}
