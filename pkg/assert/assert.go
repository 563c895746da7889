package assert

import (
	"fmt"
	"runtime"
)

// NotCircular 防止单例初始化互相调用造成死循环。
// 若调用方函数在当前调用栈中出现超过一次则panic。
func NotCircular() {
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return
	}
	caller := runtime.FuncForPC(pc)
	if caller == nil {
		return
	}
	name := caller.Name()

	pcs := make([]uintptr, 64)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	count := 0
	for {
		frame, more := frames.Next()
		if frame.Function == name {
			count++
		}
		if !more {
			break
		}
	}
	if count > 1 {
		panic(fmt.Sprintf("circular singleton initialization detected in %s", name))
	}
}

// NotNil 断言值非空
func NotNil(v interface{}) {
	if v == nil {
		panic("assertion failed: value is nil")
	}
}
