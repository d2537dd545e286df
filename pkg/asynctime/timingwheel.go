/**
 * @Author: dingQingHui
 * @Description:
 * @File: timingwheel
 * @Version: 1.0.0
 * @Date: 2025/3/11 17:03
 */

package asynctime

import (
	"time"

	"github.com/RussellLuo/timingwheel"
)

type Timer = timingwheel.Timer

var tw = timingwheel.NewTimingWheel(1*time.Millisecond, 3600)

func init() {
	tw.Start()
}

// AfterFunc 在时间轮上注册一次性定时器
// 回调在时间轮协程执行，耗时逻辑需要自行投递到别的协程
func AfterFunc(d time.Duration, f func()) *timingwheel.Timer {
	return tw.AfterFunc(d, f)
}
