// Package config 节点配置加载
package config

import (
	"os"

	"gar/pkg/glog"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config 节点配置
type Config struct {
	// Node 配置
	Node struct {
		Id      int64  `json:"id" yaml:"id"`           // 节点ID，雪花算法的工作节点号
		Name    string `json:"name" yaml:"name"`       // 节点名称
		Address string `json:"address" yaml:"address"` // 节点地址，写入派生进程的 Pid
	} `json:"node" yaml:"node"`

	// Glog 配置
	Glog glog.Config `json:"glog" yaml:"glog"`

	// Runtime actor 运行时配置
	Runtime struct {
		Throughput     int `json:"throughput" yaml:"throughput"`             // 单次排空的用户消息上限
		PooledLanes    int `json:"pooledLanes" yaml:"pooledLanes"`           // 池化调度器的分池数
		PooledLaneSize int `json:"pooledLaneSize" yaml:"pooledLaneSize"`     // 单个分池的协程容量
		WorkerPoolSize int `json:"workerPoolSize" yaml:"workerPoolSize"`     // 共享工作池容量
		ShutdownWaitMs int `json:"shutdownWaitMs" yaml:"shutdownWaitMs"`     // 关闭排空等待毫秒数
	} `json:"runtime" yaml:"runtime"`
}

func Load(profileFilePath string) (*Config, error) {
	data, err := os.ReadFile(profileFilePath)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}
	config := Default()
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return config, nil
}

// Default 生成默认配置
func Default() *Config {
	config := new(Config)
	config.Node.Id = 1
	config.Node.Name = "gar-node-1"
	config.Node.Address = "127.0.0.1"
	config.Glog = *glog.DefaultConfig()
	config.Runtime.Throughput = 100
	config.Runtime.PooledLanes = 4
	config.Runtime.PooledLaneSize = 256
	config.Runtime.WorkerPoolSize = 5000
	config.Runtime.ShutdownWaitMs = 5000
	return config
}
