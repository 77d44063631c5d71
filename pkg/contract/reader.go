package contract

import (
	"context"
	"io"
)

// Reader: 输入源抽象（文件或 STDIN）。
// 约束：
// 1) ReadLines 保持源文件行序，每行仅去掉一个结尾 '\n'；
// 2) Open 提供原始字节流，调用方负责 Close；
// 3) 不在内部起并发。
type Reader interface {
	Open(ctx context.Context, id FileID) (io.ReadCloser, error)
	ReadLines(ctx context.Context, id FileID) ([]string, error)
}
