// Package typed 提供类型化消息分发与请求应答关联管理
package typed

import (
	"fmt"

	"gar/pkg/actor"
	"gar/pkg/serializer"
)

func ErrNoHandler(msgType string) error {
	return fmt.Errorf("typed: no handler for message type: %s", msgType)
}

func ErrPayloadMismatch(msgType string, payload interface{}) error {
	return fmt.Errorf("typed: payload type mismatch for %s: %T", msgType, payload)
}

// Handler 类型化处理器，负载已转换为具体类型
type Handler[T any] func(ctx actor.IContext, payload T, msg *actor.Message) (interface{}, error)

// NewReceiver 创建按消息类型分发的 actor 基座
func NewReceiver() *Receiver {
	r := &Receiver{
		handlers: make(map[string]actor.Handler),
	}
	r.AddBehavior(actor.DefaultBehavior, r.dispatch)
	return r
}

// Receiver 类型化分发基座
// 嵌入后用 On 注册各消息类型的处理器，未注册的类型返回错误
type Receiver struct {
	actor.Actor
	handlers map[string]actor.Handler
}

func (r *Receiver) dispatch(ctx actor.IContext, msg *actor.Message) (interface{}, error) {
	h, ok := r.handlers[msg.Type]
	if !ok {
		return nil, ErrNoHandler(msg.Type)
	}
	return h(ctx, msg)
}

// On 注册类型化处理器，重复注册覆盖旧处理器
// 负载不匹配时尝试 msgpack 反序列化（跨进线的消息负载是字节串）
func On[T any](r *Receiver, msgType string, h Handler[T]) {
	r.handlers[msgType] = func(ctx actor.IContext, msg *actor.Message) (interface{}, error) {
		payload, err := convert[T](msgType, msg.Payload)
		if err != nil {
			return nil, err
		}
		return h(ctx, payload, msg)
	}
}

func convert[T any](msgType string, payload interface{}) (T, error) {
	var out T
	if payload == nil {
		return out, nil
	}
	if v, ok := payload.(T); ok {
		return v, nil
	}
	data, ok := payload.([]byte)
	if !ok {
		return out, ErrPayloadMismatch(msgType, payload)
	}
	if err := serializer.MsgPack.Unmarshal(data, &out); err != nil {
		return out, ErrPayloadMismatch(msgType, payload)
	}
	return out, nil
}
