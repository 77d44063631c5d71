package diag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"emolabel/pkg/contract"
)

// UT-DIAG-01: 日志轮转写入
func TestRotatingFile(t *testing.T) {
	dir := t.TempDir()
	w := NewRotatingFile(dir, "emolabel", 30)
	if err := w.WriteLine([]byte("first line that is very long")); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	if err := w.WriteLine([]byte("second")); err != nil {
		t.Fatalf("第二次写入失败: %v", err)
	}
	defer w.Close()
	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("读取目录失败: %v", err)
	}
	if len(files) < 2 {
		t.Fatalf("应存在轮转文件, got %d", len(files))
	}
}

// 当前文件与时间戳文件均存在
func TestRotatingFileRotateFiles(t *testing.T) {
	dir := t.TempDir()
	w := NewRotatingFile(dir, "", 10)
	for i := 0; i < 5; i++ {
		if err := w.WriteLine([]byte("xxxxxxxxxxxxxxxxxx")); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	hasCurrent, hasRotated := false, false
	for _, e := range ents {
		if e.Name() == "emolabel-current.txt" {
			hasCurrent = true
		} else if strings.HasPrefix(e.Name(), "emolabel-") && strings.HasSuffix(e.Name(), ".txt") {
			hasRotated = true
		}
	}
	if !hasCurrent || !hasRotated {
		t.Fatalf("expect both current and rotated files, got current=%v rotated=%v", hasCurrent, hasRotated)
	}
}

// UT-DIAG-02: 日志事件为单行 JSON，按级别过滤
func TestLoggerEvents(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo("corr-1", "info", &buf)
	l.DebugStart("dataset", "hidden", "", nil)
	tm := l.StartWith("dataset", "save_lines", "out/a.txt")
	tm.Finish("save_lines", 3)
	l.Warn("dataset", "truncated", "", map[string]string{"texts": "3"})
	l.ErrorWith("dataset", string(CodeIO), "boom", tm.Since(), "out/a.txt")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("期望 4 行事件, got %d: %q", len(lines), buf.String())
	}
	var ev Event
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
		t.Fatalf("json: %v", err)
	}
	if ev.Stage != "finish" || ev.Count != 3 || ev.Path != "out/a.txt" || ev.CorrID != "corr-1" {
		t.Fatalf("finish 事件字段错误: %+v", ev)
	}
	if err := json.Unmarshal([]byte(lines[3]), &ev); err != nil {
		t.Fatalf("json: %v", err)
	}
	if ev.Level != "error" || ev.Code != "io" {
		t.Fatalf("error 事件字段错误: %+v", ev)
	}
}

// 空 corrID 自动生成；nil 日志器安全
func TestLoggerCorrIDAndNil(t *testing.T) {
	l := NewLoggerTo("", "debug", &bytes.Buffer{})
	if len(l.CorrID()) != 36 {
		t.Fatalf("corr id 应为 UUID: %q", l.CorrID())
	}
	var nl *Logger
	nl.Start("x", "y").Finish("y", 1)
	nl.Error("x", "io", "m", nil)
	if nl.CorrID() != "" {
		t.Fatalf("nil logger corr id")
	}
	Discard().Error("x", "io", "m", nil)
}

// 级别解析
func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": Debug, " WARN ": Warn, "error": Error, "": Info, "bogus": Info}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q)=%v want %v", in, got, want)
		}
	}
	if ValidLevel("bogus") || !ValidLevel("") || !ValidLevel("Info") {
		t.Fatalf("ValidLevel 判定错误")
	}
}

// UT-DIAG-03: 指标计数
func TestMetrics(t *testing.T) {
	ResetMetrics()
	IncOp("dataset", "save_lines", "success")
	IncOp("dataset", "save_lines", "success")
	IncError("dataset", CodeIO)
	ObserveDuration("dataset", "save_lines", 7)
	if v := Counter("op_total{dataset,save_lines,success}"); v != 2 {
		t.Fatalf("op_total=%d", v)
	}
	if v := Counter("error_total{dataset,io}"); v != 1 {
		t.Fatalf("error_total=%d", v)
	}
	snap := Snapshot()
	if len(snap) != 3 || snap[0].Name > snap[1].Name {
		t.Fatalf("snapshot 未排序或数量错误: %+v", snap)
	}
}

// 错误分类
func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{nil, CodeUnknown},
		{context.Canceled, CodeCancel},
		{fmt.Errorf("wrap: %w", contract.ErrUnknownEmotion), CodeLookup},
		{contract.ErrSnapshotVersion, CodeFormat},
		{contract.ErrSnapshotInvalid, CodeFormat},
		{contract.ErrLabelMismatch, CodeInvariant},
		{fmt.Errorf("x: %w", contract.ErrTableNotFound), CodeNotFound},
		{&fs.PathError{Op: "open", Path: "/nope", Err: fs.ErrNotExist}, CodeNotFound},
		{&fs.PathError{Op: "open", Path: "/", Err: fs.ErrPermission}, CodeIO},
		{errors.New("other"), CodeUnknown},
	}
	for _, c := range cases {
		if got := Classify(c.err); got != c.want {
			t.Fatalf("Classify(%v)=%s want %s", c.err, got, c.want)
		}
	}
	if _, err := time.Parse(time.RFC3339, NowUTC()); err != nil {
		t.Fatalf("NowUTC 格式错误: %v", err)
	}
}

// UT-DIAG-04: 终端提示
func TestTerminalSaved(t *testing.T) {
	var sb strings.Builder
	term := NewTerminal(&sb, true)
	term.Saved(2, "out/a.txt")
	term.Failf(errors.New("disk\nfull"), "Error saving list entries to %s", "out/a.txt")
	want := "2 list entries are saved to out/a.txt successfully.\n" +
		"Error saving list entries to out/a.txt: disk full\n"
	if sb.String() != want {
		t.Fatalf("got %q want %q", sb.String(), want)
	}
}

// 禁用与 nil 均不输出
func TestTerminalDisabled(t *testing.T) {
	var sb strings.Builder
	NewTerminal(&sb, false).Saved(1, "x")
	var nt *Terminal
	nt.Saved(1, "x")
	nt.Failf(nil, "x")
	if sb.Len() != 0 {
		t.Fatalf("disabled terminal wrote %q", sb.String())
	}
}

// UT-DIAG-05: 写失败降级为禁用态
type flakyWriter struct{ calls int }

func (w *flakyWriter) Write(p []byte) (int, error) {
	w.calls++
	return 0, errors.New("broken pipe")
}

func TestTerminalWriteFailureDisables(t *testing.T) {
	fw := &flakyWriter{}
	term := NewTerminal(fw, true)
	term.Printf("a")
	term.Printf("b")
	if fw.calls != 1 {
		t.Fatalf("写失败后应禁用, calls=%d", fw.calls)
	}
}

// 轮转文件日志器写入后可关闭；io.Writer 目标的 Close 为 no-op
func TestLoggerClose(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger("c", "info", dir)
	l.Start("dataset", "load_lines").Finish("load_lines", 1)
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "emolabel-current.txt"))
	if err != nil || !strings.Contains(string(b), `"corr_id":"c"`) {
		t.Fatalf("日志未落盘: %v %q", err, b)
	}
	if err := NewLoggerTo("c", "info", &bytes.Buffer{}).Close(); err != nil {
		t.Fatalf("writer close: %v", err)
	}
	var nl *Logger
	if err := nl.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}
