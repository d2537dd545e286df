package actor

// Message 消息信封
// ResponseId 非空表示期待一个相同关联 ID 的应答
type Message struct {
	Type       string            `json:"type" msgpack:"type"`
	Payload    interface{}       `json:"payload,omitempty" msgpack:"payload,omitempty"`
	Sender     *Pid              `json:"sender,omitempty" msgpack:"sender,omitempty"`
	ResponseId string            `json:"responseId,omitempty" msgpack:"responseId,omitempty"`
	MessageId  string            `json:"messageId,omitempty" msgpack:"messageId,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty" msgpack:"metadata,omitempty"`

	// response 本地请求的应答回调，不参与序列化
	response func(result interface{}, err error)
}

func NewMessage(msgType string, payload interface{}) *Message {
	return &Message{
		Type:    msgType,
		Payload: payload,
	}
}

// MetaResponse 应答信封的 Metadata 标记
const MetaResponse = "isResponse"

// ResponseType 默认应答信封的消息类型
const ResponseType = "$response"

// IsResponse 判断是否为应答信封
func (m *Message) IsResponse() bool {
	return m != nil && m.Metadata[MetaResponse] == "true"
}

// newResponseMessage 基于请求构建应答信封
func newResponseMessage(request *Message, result interface{}, err error) *Message {
	resp := &Message{
		Type:       ResponseType,
		Payload:    result,
		ResponseId: request.ResponseId,
		Metadata:   map[string]string{MetaResponse: "true"},
	}
	if err != nil {
		resp.Metadata["error"] = err.Error()
	}
	// 处理器直接返回信封时，沿用它的类型与负载
	if override, ok := result.(*Message); ok && err == nil {
		resp.Type = override.Type
		resp.Payload = override.Payload
		if override.Metadata != nil {
			for k, v := range override.Metadata {
				resp.Metadata[k] = v
			}
		}
	}
	return resp
}

// TaskMessage 投递到邮箱的闭包任务
type TaskMessage struct {
	task Task
}

// 内部系统消息
type (
	startedMessage struct {
		params []interface{}
	}
	stopMessage struct{}
)
