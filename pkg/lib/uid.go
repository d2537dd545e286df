package lib

import (
	"errors"
	"sync"
	"time"
)

const (
	uidEpoch        = 1474802888000
	uidWorkerBits   = 10
	uidSequenceBits = 12

	uidWorkerShift    = 12
	uidTimestampShift = 22

	uidSequenceMask = 0xfff
	uidMaxWorker    = 0x3ff
)

// IdWorker 雪花算法 ID 生成器
// 同一个实例生成的 ID 单调递增且永不复用，用于 PID 与请求关联 ID
type IdWorker struct {
	mu            sync.Mutex
	workerId      int64
	lastTimestamp int64
	sequence      int64
}

func NewIdWorker(workerId int64) (*IdWorker, error) {
	if workerId < 0 || workerId > uidMaxWorker {
		return nil, errors.New("worker id out of range")
	}
	return &IdWorker{
		workerId:      workerId,
		lastTimestamp: -1,
	}, nil
}

func (iw *IdWorker) timeGen() int64 {
	return time.Now().UnixMilli()
}

func (iw *IdWorker) timeReGen(last int64) int64 {
	ts := iw.timeGen()
	for ts <= last {
		ts = iw.timeGen()
	}
	return ts
}

func (iw *IdWorker) NextId() (int64, error) {
	iw.mu.Lock()
	defer iw.mu.Unlock()
	ts := iw.timeGen()
	if ts == iw.lastTimestamp {
		iw.sequence = (iw.sequence + 1) & uidSequenceMask
		if iw.sequence == 0 {
			ts = iw.timeReGen(ts)
		}
	} else {
		iw.sequence = 0
	}
	if ts < iw.lastTimestamp {
		return 0, errors.New("clock moved backwards, refuse gen id")
	}
	iw.lastTimestamp = ts
	return (ts-uidEpoch)<<uidTimestampShift | iw.workerId<<uidWorkerShift | iw.sequence, nil
}

// ParseId 将 ID 还原为时间戳、workerId 与序列号
func ParseId(id int64) (t time.Time, workerId int64, seq int64) {
	seq = id & uidSequenceMask
	workerId = (id >> uidWorkerShift) & uidMaxWorker
	ts := (id >> uidTimestampShift) + uidEpoch
	t = time.UnixMilli(ts)
	return
}
