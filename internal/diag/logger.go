package diag

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// 级别定义
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// lineSink: 单行写出目标（RotatingFile 或任意 io.Writer 包装）。
type lineSink interface {
	WriteLine(b []byte) error
}

type writerSink struct{ w io.Writer }

func (s writerSink) WriteLine(b []byte) error {
	_, err := s.w.Write(append(b, '\n'))
	return err
}

// Logger 为最小结构化日志器：单行 JSON 事件；支持级别过滤。
// nil *Logger 的全部方法均为 no-op。
type Logger struct {
	corrID string
	level  Level
	sink   lineSink
	mu     sync.Mutex
}

// NewLogger 以 level 初始化，日志写入 dir 下的轮转文件（10 MiB）。
// corrID 为空时生成随机 UUID。
func NewLogger(corrID, level, dir string) *Logger {
	if strings.TrimSpace(dir) == "" {
		dir = "logs"
	}
	return newLogger(corrID, level, NewRotatingFile(dir, "emolabel", 10*1024*1024))
}

// NewLoggerTo 将日志写入 w（测试或嵌入调用方使用）。
func NewLoggerTo(corrID, level string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return newLogger(corrID, level, writerSink{w: w})
}

// Discard 返回丢弃全部事件的日志器（库默认）。
func Discard() *Logger { return NewLoggerTo("", "error", io.Discard) }

func newLogger(corrID, level string, sink lineSink) *Logger {
	if strings.TrimSpace(corrID) == "" {
		corrID = uuid.NewString()
	}
	return &Logger{corrID: corrID, level: ParseLevel(level), sink: sink}
}

// ParseLevel 解析级别名；未知值回退 info。
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug
	case "warn":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

// ValidLevel 报告 s 是否为已知级别名（空串视为合法，取默认）。
func ValidLevel(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "debug", "info", "warn", "error":
		return true
	}
	return false
}

// CorrID 返回本日志器的关联 ID。
func (l *Logger) CorrID() string {
	if l == nil {
		return ""
	}
	return l.corrID
}

// Event 为标准事件结构。
type Event struct {
	Level  string            `json:"level"`
	TS     string            `json:"ts"`
	CorrID string            `json:"corr_id"`
	Comp   string            `json:"comp"`
	Stage  string            `json:"stage"` // start|finish|error|warn
	Code   string            `json:"code,omitempty"`
	DurMS  int64             `json:"dur_ms,omitempty"`
	Count  int64             `json:"count,omitempty"`
	Path   string            `json:"path,omitempty"`
	Msg    string            `json:"msg"`
	KV     map[string]string `json:"kv,omitempty"`
}

func (l *Logger) log(lv Level, ev Event) {
	if l == nil || lv < l.level {
		return
	}
	ev.Level = lv.String()
	ev.TS = NowUTC()
	ev.CorrID = l.corrID
	b, _ := json.Marshal(ev)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sink == nil {
		_, _ = os.Stderr.Write(append(b, '\n'))
		return
	}
	if err := l.sink.WriteLine(b); err != nil {
		fmt.Fprintf(os.Stderr, "logger sink error: %v\n", err)
		_, _ = os.Stderr.Write(append(b, '\n'))
	}
}

// Start 记录 start 事件；返回计时器用于 Finish。
func (l *Logger) Start(comp, msg string) *Timer {
	return l.StartWith(comp, msg, "")
}

// StartWith 记录带 path 的 start。
func (l *Logger) StartWith(comp, msg, path string) *Timer {
	l.log(Info, Event{Comp: comp, Stage: "start", Path: path, Msg: msg})
	return &Timer{l: l, comp: comp, path: path, t0: time.Now()}
}

// Error 记录 error 事件。
func (l *Logger) Error(comp, code, msg string, durSince *time.Time) {
	l.ErrorWithKV(comp, code, msg, durSince, "", nil)
}

// ErrorWith 支持 path。
func (l *Logger) ErrorWith(comp, code, msg string, durSince *time.Time, path string) {
	l.ErrorWithKV(comp, code, msg, durSince, path, nil)
}

// ErrorWithKV 支持附带键值对（例如行号、输入长度）。
func (l *Logger) ErrorWithKV(comp, code, msg string, durSince *time.Time, path string, kv map[string]string) {
	var dur int64
	if durSince != nil {
		dur = time.Since(*durSince).Milliseconds()
	}
	l.log(Error, Event{Comp: comp, Stage: "error", Code: code, DurMS: dur, Path: path, Msg: msg, KV: kv})
}

// Warn 记录非致命异常（例如输入长度不一致被截断）。
func (l *Logger) Warn(comp, msg, path string, kv map[string]string) {
	l.log(Warn, Event{Comp: comp, Stage: "warn", Path: path, Msg: msg, KV: kv})
}

// DebugStart 输出调试级别的 start 类事件（仅在 level=debug 时生效）。
func (l *Logger) DebugStart(comp, msg, path string, kv map[string]string) {
	l.log(Debug, Event{Comp: comp, Stage: "start", Path: path, Msg: msg, KV: kv})
}

// Timer 用于 start→finish 计时。
type Timer struct {
	l    *Logger
	comp string
	path string
	t0   time.Time
}

// Since 返回起点（供 Error 计算耗时）。
func (t *Timer) Since() *time.Time {
	if t == nil {
		return nil
	}
	return &t.t0
}

// Finish 记录 finish；可选 count。
func (t *Timer) Finish(msg string, count int64) {
	if t == nil || t.l == nil {
		return
	}
	t.l.log(Info, Event{Comp: t.comp, Stage: "finish", DurMS: time.Since(t.t0).Milliseconds(), Count: count, Path: t.path, Msg: msg})
}

// Close 关闭底层轮转文件（io.Writer 目标不受影响）。
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.sink.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
