package diag

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Terminal: 面向使用者的提示输出（非日志）。
// - 默认输出到 stdout；
// - 并发安全；写失败后进入禁用态为 no-op；
// - nil *Terminal 的全部方法均为 no-op。
type Terminal struct {
	w       io.Writer
	enabled bool
	mu      sync.Mutex
}

// NewTerminal 构造提示器；enabled=false 时总是 no-op。
func NewTerminal(w io.Writer, enabled bool) *Terminal {
	if w == nil {
		w = os.Stdout
	}
	return &Terminal{w: w, enabled: enabled}
}

// Saved 打印保存成功的条目数与目标路径。
func (t *Terminal) Saved(count int, path string) {
	t.Printf("%d list entries are saved to %s successfully.", count, path)
}

// Printf 按格式输出一行（自动追加换行）。
func (t *Terminal) Printf(format string, a ...any) {
	if t == nil {
		return
	}
	t.println(fmt.Sprintf(format, a...))
}

func (t *Terminal) println(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	if _, err := io.WriteString(t.w, strings.TrimRight(s, "\r\n")+"\n"); err != nil {
		// 写失败即禁用
		t.enabled = false
	}
}

// safe 去除换行，避免单条提示被拆成多行。
func safe(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

// Failf 输出一条错误提示；err 文本中的换行会被折叠。
func (t *Terminal) Failf(err error, format string, a ...any) {
	if t == nil {
		return
	}
	msg := fmt.Sprintf(format, a...)
	if err != nil {
		msg += ": " + safe(err.Error())
	}
	t.println(msg)
}
