package actor

import "fmt"

// Pid 进程标识，在 actor 的整个生命周期内保持稳定
// Id 由雪花算法生成，进程停止后不会复用
type Pid struct {
	Id      int64  `json:"id" msgpack:"id"`
	Name    string `json:"name,omitempty" msgpack:"name,omitempty"`
	Address string `json:"address,omitempty" msgpack:"address,omitempty"`
}

func (p *Pid) GetId() int64 {
	if p == nil {
		return 0
	}
	return p.Id
}

func (p *Pid) GetName() string {
	if p == nil {
		return ""
	}
	return p.Name
}

func (p *Pid) GetAddress() string {
	if p == nil {
		return ""
	}
	return p.Address
}

// Equal 判断两个 Pid 是否指向同一个进程
func (p *Pid) Equal(other *Pid) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Id == other.Id
}

func (p *Pid) String() string {
	if p == nil {
		return "<nil>"
	}
	if p.Address != "" {
		return fmt.Sprintf("%d@%s", p.Id, p.Address)
	}
	return fmt.Sprintf("%d", p.Id)
}
