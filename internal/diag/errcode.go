package diag

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"emolabel/pkg/contract"
)

// Code 是最小错误分类代码。
// 仅用于日志/指标汇总，与退出码解耦。
type Code string

const (
	CodeUnknown   Code = "unknown"
	CodeIO        Code = "io"
	CodeNotFound  Code = "not_found"
	CodeLookup    Code = "lookup"
	CodeFormat    Code = "format"
	CodeInvariant Code = "invariant"
	CodeCancel    Code = "cancel"
)

// Classify 将错误归为最小分类。
// 仅依赖哨兵错误与标准库错误类型，不做字符串匹配。
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	if errors.Is(err, contract.ErrUnknownEmotion) {
		return CodeLookup
	}
	if errors.Is(err, contract.ErrSnapshotInvalid) || errors.Is(err, contract.ErrSnapshotVersion) {
		return CodeFormat
	}
	if errors.Is(err, contract.ErrLabelMismatch) || errors.Is(err, contract.ErrPathInvalid) {
		return CodeInvariant
	}
	// 不存在优先于一般 I/O
	if errors.Is(err, contract.ErrTableNotFound) || errors.Is(err, fs.ErrNotExist) {
		return CodeNotFound
	}
	var perr *fs.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}

// NowUTC 返回 RFC3339 UTC 时间字符串（用于结构化日志字段 ts）。
func NowUTC() string { return time.Now().UTC().Format(time.RFC3339) }
