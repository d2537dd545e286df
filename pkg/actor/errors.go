package actor

import (
	"errors"
	"fmt"
)

// 行为状态机相关错误
var (
	// ErrUnknownState Become 指定的行为未注册
	ErrUnknownState = errors.New("actor: unknown behavior state")
	// ErrNoBehavior 没有可用的当前行为
	ErrNoBehavior = errors.New("actor: no behavior installed")
)

// 进程相关错误
var (
	// ErrProcessNotFound 进程未找到
	ErrProcessNotFound = errors.New("actor: process not found")
	// ErrProcessExited 进程已退出
	ErrProcessExited = errors.New("actor: process exited")
	// ErrTaskIsNil 任务为空
	ErrTaskIsNil = errors.New("actor: task is nil")
	// ErrMessageIsNil 消息为空
	ErrMessageIsNil = errors.New("actor: message is nil")
)

// 系统相关错误
var (
	// ErrSystemShuttingDown 系统正在关闭
	ErrSystemShuttingDown = errors.New("actor: system is shutting down")
	// ErrAskTimeout 请求等待超时
	ErrAskTimeout = errors.New("actor: ask timeout")
	// ErrShutdownTimeout 系统关闭排空超时
	ErrShutdownTimeout = errors.New("actor: shutdown timeout")
)

// 名字注册相关错误构造函数
func ErrNameCannotBeEmpty() error {
	return fmt.Errorf("actor: name cannot be empty")
}

func ErrNameAlreadyRegistered(name string) error {
	return fmt.Errorf("actor: name already registered: %s", name)
}

func ErrUnsupportedMessageType(msgType string) error {
	return fmt.Errorf("actor: unsupported message type: %s", msgType)
}
