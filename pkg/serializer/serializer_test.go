package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type frame struct {
	Seq  int64  `json:"seq" msgpack:"seq"`
	Body string `json:"body" msgpack:"body"`
}

func TestJsonCodec(t *testing.T) {
	in := &frame{Seq: 7, Body: "hello"}
	data, err := Json.Marshal(in)
	require.NoError(t, err)

	out := new(frame)
	require.NoError(t, Json.Unmarshal(data, out))
	assert.Equal(t, in, out)

	_, err = Json.Marshal(nil)
	assert.ErrorIs(t, err, ErrJsonPack)
	assert.ErrorIs(t, Json.Unmarshal(nil, out), ErrJsonUnPack)
}

func TestMsgPackCodec(t *testing.T) {
	in := &frame{Seq: 9, Body: "world"}
	data, err := MsgPack.Marshal(in)
	require.NoError(t, err)

	out := new(frame)
	require.NoError(t, MsgPack.Unmarshal(data, out))
	assert.Equal(t, in, out)

	_, err = MsgPack.Marshal(nil)
	assert.ErrorIs(t, err, ErrMsgPackPack)
	assert.ErrorIs(t, MsgPack.Unmarshal(data, nil), ErrMsgPackUnPack)
}

func TestPBCodec(t *testing.T) {
	in := wrapperspb.String("payload")
	data, err := PB.Marshal(in)
	require.NoError(t, err)

	out := new(wrapperspb.StringValue)
	require.NoError(t, PB.Unmarshal(data, out))
	assert.Equal(t, in.GetValue(), out.GetValue())

	// 非 proto 消息拒绝编解码
	_, err = PB.Marshal(&frame{})
	assert.ErrorIs(t, err, ErrNotPBMsg)
	assert.ErrorIs(t, PB.Unmarshal(data, &frame{}), ErrNotPBMsg)
	_, err = PB.Marshal(nil)
	assert.ErrorIs(t, err, ErrPBPack)
}
