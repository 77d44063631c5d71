package filesystem

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"emolabel/pkg/contract"
)

// Options 为 FileSystem Reader 的可选配置（最小必要）。
type Options struct {
	// BufSize 为读缓冲区大小（字节）。默认 64KiB。
	BufSize int `json:"buf_size"`
}

// FileSystem 实现基于文件系统与 STDIN 的 Reader。
type FileSystem struct {
	bufSize int
	stdin   io.Reader
}

// New 创建 FileSystem Reader。
func New(opts *Options) *FileSystem {
	const defaultBuf = 64 * 1024
	b := defaultBuf
	if opts != nil && opts.BufSize > 0 {
		b = opts.BufSize
	}
	return &FileSystem{bufSize: b, stdin: os.Stdin}
}

var _ contract.Reader = (*FileSystem)(nil)

// Open 打开 id 对应的常规文件；id 为 "-" 时返回 STDIN（Close 不关闭 STDIN）。
func (r *FileSystem) Open(ctx context.Context, id contract.FileID) (io.ReadCloser, error) {
	return r.open(ctx, id)
}

func (r *FileSystem) open(ctx context.Context, id contract.FileID) (*bufferedCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if strings.TrimSpace(string(id)) == "-" {
		// 统一缓冲策略：STDIN 也使用 bufio.Reader 封装
		return newBufferedCloser(io.NopCloser(r.stdin), r.bufSize), nil
	}
	f, err := os.Open(string(id))
	if err != nil {
		return nil, err
	}
	// 目录可以 Open 成功，读取时才报错；提前拒绝以给出明确的 PathError
	if st, err := f.Stat(); err == nil && !st.Mode().IsRegular() {
		_ = f.Close()
		return nil, &os.PathError{Op: "open", Path: string(id), Err: errors.New("not a regular file")}
	}
	return newBufferedCloser(f, r.bufSize), nil
}

// ReadLines 读取全部行。"\n"、"\r\n" 与单独的 "\r" 均视为行结束且不保留；
// 末行无换行也计为一行；空文件返回空切片。
func (r *FileSystem) ReadLines(ctx context.Context, id contract.FileID) ([]string, error) {
	bc, err := r.open(ctx, id)
	if err != nil {
		return nil, err
	}
	defer bc.Close()
	lines := []string{}
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		// ReadString 不受单行长度上限约束（区别于 bufio.Scanner）
		line, err := bc.ReadString('\n')
		if len(line) > 0 {
			lines = append(lines, splitLine(line)...)
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// splitLine 去掉一个行结束符；内部单独的 '\r' 另起一行。
func splitLine(chunk string) []string {
	body := strings.TrimSuffix(chunk, "\n")
	body = strings.TrimSuffix(body, "\r")
	if !strings.Contains(body, "\r") {
		return []string{body}
	}
	return strings.Split(body, "\r")
}

// bufferedCloser 将 bufio.Reader 与底层 Closer 组合为 ReadCloser。
type bufferedCloser struct {
	*bufio.Reader
	c io.Closer
}

func newBufferedCloser(c io.ReadCloser, bufSize int) *bufferedCloser {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	return &bufferedCloser{Reader: bufio.NewReaderSize(c, bufSize), c: c}
}

func (b *bufferedCloser) Close() error { return b.c.Close() }
