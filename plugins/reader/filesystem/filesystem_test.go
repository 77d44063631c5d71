package filesystem

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"emolabel/pkg/contract"
)

func readFile(t *testing.T, content string) ([]string, error) {
	t.Helper()
	fp := filepath.Join(t.TempDir(), "q.txt")
	if err := os.WriteFile(fp, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return New(nil).ReadLines(context.Background(), contract.FileID(fp))
}

// TestReadLines 行数与内容与源文件一致
func TestReadLines(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    []string
	}{
		{"空文件", "", []string{}},
		{"单行无换行", "hello", []string{"hello"}},
		{"标准", "a\nb\nc\n", []string{"a", "b", "c"}},
		{"末行无换行", "a\nb", []string{"a", "b"}},
		{"空行保留", "a\n\nb\n\n", []string{"a", "", "b", ""}},
		{"CRLF", "what is joy?\r\nwhy\r\n", []string{"what is joy?", "why"}},
		{"CRLF 末行无换行", "a\r\nb", []string{"a", "b"}},
		{"单独 CR", "a\rb\r", []string{"a", "b"}},
		{"CR 后接 CRLF", "a\r\r\n", []string{"a", ""}},
		{"混合", "a\nb\r\nc", []string{"a", "b", "c"}},
		{"首尾空白保留", "  x  \n", []string{"  x  "}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readFile(t, tt.content)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

// TestReadLinesLong 超过缓冲区与 Scanner 上限的长行
func TestReadLinesLong(t *testing.T) {
	long := strings.Repeat("x", 200*1024)
	got, err := readFile(t, long+"\nshort\n")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || len(got[0]) != len(long) || got[1] != "short" {
		t.Fatalf("长行读取错误: n=%d", len(got))
	}
}

// TestReadLinesMissing 不存在的路径返回 PathError
func TestReadLinesMissing(t *testing.T) {
	_, err := New(nil).ReadLines(context.Background(), contract.FileID(filepath.Join(t.TempDir(), "nope.txt")))
	var perr *os.PathError
	if !errors.As(err, &perr) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want not-exist PathError, got %v", err)
	}
}

// TestReadLinesDir 目录不可作为行文件
func TestReadLinesDir(t *testing.T) {
	_, err := New(nil).ReadLines(context.Background(), contract.FileID(t.TempDir()))
	var perr *os.PathError
	if !errors.As(err, &perr) {
		t.Fatalf("want PathError, got %v", err)
	}
}

// TestReadLinesStdin "-" 读取 STDIN
func TestReadLinesStdin(t *testing.T) {
	r := New(&Options{BufSize: 16})
	r.stdin = strings.NewReader("q1\nq2\n")
	got, err := r.ReadLines(context.Background(), "-")
	if err != nil || !reflect.DeepEqual(got, []string{"q1", "q2"}) {
		t.Fatalf("stdin: %v %q", err, got)
	}
}

// TestReadLinesCtxCancel 上下文取消
func TestReadLinesCtxCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil).ReadLines(ctx, "whatever")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expect ctx cancel, got %v", err)
	}
}

// TestOpen 原始字节流
func TestOpen(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "snap.bin")
	if err := os.WriteFile(fp, []byte{0, 1, 2, '\n', 3}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rc, err := New(nil).Open(context.Background(), contract.FileID(fp))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if len(b) != 5 || b[4] != 3 {
		t.Fatalf("bytes: %v", b)
	}
}

// TestNewBufferedCloserDefault bufSize<=0 时使用默认
func TestNewBufferedCloserDefault(t *testing.T) {
	bc := newBufferedCloser(io.NopCloser(strings.NewReader("")), 0)
	if bc.Reader == nil || bc.Size() != 64*1024 {
		t.Fatalf("default buffer not applied")
	}
	bc.Close()
}
