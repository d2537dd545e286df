/**
 * @Author: dingQingHui
 * @Description:
 * @File: api
 * @Version: 1.0.0
 * @Date: 2025/3/11 16:42
 */

package serializer

// ICodec 编解码器接口
type ICodec interface {
	Marshal(msg interface{}) ([]byte, error)
	Unmarshal(data []byte, msg interface{}) error
}

var (
	Json    = new(jsonCodec)
	MsgPack = new(msgPackCodec)
	PB      = new(pbCodec)
)
