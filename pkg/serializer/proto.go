package serializer

import (
	"google.golang.org/protobuf/proto"
)

type pbCodec struct {
}

func (p *pbCodec) Unmarshal(data []byte, msg interface{}) error {
	if msg == nil {
		return ErrPBUnPack
	}
	v, ok := msg.(proto.Message)
	if !ok {
		return ErrNotPBMsg
	}
	return proto.Unmarshal(data, v)
}

func (p *pbCodec) Marshal(msg interface{}) ([]byte, error) {
	if msg == nil {
		return nil, ErrPBPack
	}
	v, ok := msg.(proto.Message)
	if !ok {
		return nil, ErrNotPBMsg
	}
	return proto.Marshal(v)
}
