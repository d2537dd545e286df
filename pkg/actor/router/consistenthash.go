package router

import (
	"fmt"
	"sort"

	"gar/pkg/actor"
	"gar/pkg/serializer"

	"github.com/cespare/xxhash/v2"
)

// virtualNodes 每个成员在哈希环上的虚拟节点数
const virtualNodes = 100

var _ IStrategy = (*ConsistentHashStrategy)(nil)

func NewConsistentHash() *ConsistentHashStrategy {
	return new(ConsistentHashStrategy)
}

// ConsistentHashStrategy 一致性哈希路由
// 同一消息始终命中同一成员；成员变化只迁移环上相邻的一段键空间
type ConsistentHashStrategy struct {
	ring        []ringNode
	fingerprint string
}

type ringNode struct {
	hash uint64
	pid  *actor.Pid
}

func (s *ConsistentHashStrategy) Route(system *actor.System, routees []*actor.Pid, msg *actor.Message) error {
	if len(routees) == 0 {
		return nil
	}
	s.rebuildIfChanged(routees)
	key := xxhash.Sum64(hashBytes(msg))
	// 顺时针找第一个不小于 key 的节点，越过末尾绕回环首
	i := sort.Search(len(s.ring), func(i int) bool {
		return s.ring[i].hash >= key
	})
	if i == len(s.ring) {
		i = 0
	}
	return system.Send(s.ring[i].pid, msg)
}

// rebuildIfChanged 成员集合变化时重建哈希环
func (s *ConsistentHashStrategy) rebuildIfChanged(routees []*actor.Pid) {
	fp := fingerprint(routees)
	if fp == s.fingerprint && s.ring != nil {
		return
	}
	ring := make([]ringNode, 0, len(routees)*virtualNodes)
	for _, pid := range routees {
		for v := 0; v < virtualNodes; v++ {
			h := xxhash.Sum64String(fmt.Sprintf("%d#%d", pid.GetId(), v))
			ring = append(ring, ringNode{hash: h, pid: pid})
		}
	}
	sort.Slice(ring, func(i, j int) bool { return ring[i].hash < ring[j].hash })
	s.ring = ring
	s.fingerprint = fp
}

func fingerprint(routees []*actor.Pid) string {
	fp := ""
	for _, pid := range routees {
		fp += fmt.Sprintf("%d,", pid.GetId())
	}
	return fp
}

// hashBytes 取消息的序列化字节作为哈希键
// 序列化失败退化为只按消息类型哈希
func hashBytes(msg *actor.Message) []byte {
	data, err := serializer.MsgPack.Marshal(msg)
	if err != nil {
		return []byte(msg.Type)
	}
	return data
}
