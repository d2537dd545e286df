package actor

import (
	"sync"

	"github.com/duke-git/lancet/v2/maputil"
)

// Manager 管理进程注册表
type Manager struct {
	nameMu      sync.Mutex                               // 串行化名字的查重与写入
	processDict *maputil.ConcurrentMap[int64, IProcess]  // ID到进程的映射
	nameDict    *maputil.ConcurrentMap[string, IProcess] // 名字到进程的映射
}

func newManager() *Manager {
	return &Manager{
		processDict: maputil.NewConcurrentMap[int64, IProcess](10),
		nameDict:    maputil.NewConcurrentMap[string, IProcess](10),
	}
}

// Add 注册进程
// 名字先于进程表写入，名字冲突时注册表不留下任何痕迹
func (mgr *Manager) Add(pid *Pid, process IProcess) error {
	if pid.GetName() != "" {
		if err := mgr.RegisterName(pid, process, pid.GetName()); err != nil {
			return err
		}
	}
	mgr.processDict.Set(pid.GetId(), process)
	return nil
}

func (mgr *Manager) RegisterName(pid *Pid, process IProcess, name string) error {
	if len(name) == 0 {
		return ErrNameCannotBeEmpty()
	}
	mgr.nameMu.Lock()
	defer mgr.nameMu.Unlock()
	if mgr.HasName(name) {
		return ErrNameAlreadyRegistered(name)
	}
	pid.Name = name
	mgr.nameDict.Set(name, process)
	return nil
}

// HasName 检查名字是否已注册
func (mgr *Manager) HasName(name string) bool {
	_, exists := mgr.nameDict.Get(name)
	return exists
}

// GetProcess 根据 Pid 获取进程
func (mgr *Manager) GetProcess(pid *Pid) IProcess {
	if pid == nil {
		return nil
	}
	if pid.GetId() > 0 {
		return mgr.GetProcessById(pid.GetId())
	}
	if pid.GetName() != "" {
		return mgr.GetProcessByName(pid.GetName())
	}
	return nil
}

// GetProcessById 根据 ID 获取进程
func (mgr *Manager) GetProcessById(id int64) IProcess {
	process, _ := mgr.processDict.Get(id)
	return process
}

// GetProcessByName 根据名字获取进程
func (mgr *Manager) GetProcessByName(name string) IProcess {
	if name == "" {
		return nil
	}
	process, _ := mgr.nameDict.Get(name)
	return process
}

func (mgr *Manager) removeProcess(pid *Pid) {
	mgr.processDict.Delete(pid.GetId())
	mgr.UnregisterName(pid)
}

// UnregisterName 注销名字
func (mgr *Manager) UnregisterName(pid *Pid) {
	if pid.GetName() == "" {
		return
	}
	mgr.nameDict.Delete(pid.GetName())
}

// GetAllProcesses 获取所有进程
func (mgr *Manager) GetAllProcesses() []IProcess {
	var processes []IProcess
	mgr.processDict.Range(func(_ int64, value IProcess) bool {
		processes = append(processes, value)
		return true
	})
	return processes
}
