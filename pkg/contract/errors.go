package contract

import (
	"errors"
	"fmt"
)

// 最小错误分类（用于日志分类与调用方判定）。
var (
	// ErrUnknownEmotion: 标签名不在固定七类枚举内（查表失败）。
	ErrUnknownEmotion = errors.New("unknown emotion label")
	// ErrLabelMismatch: 行内 label 与 label_name 索引不一致。
	ErrLabelMismatch = errors.New("label does not match label_name")
	// ErrTableNotFound: 加载路径不存在。
	ErrTableNotFound = errors.New("table not found")
	// ErrSnapshotInvalid: 快照头部或载荷无法识别。
	ErrSnapshotInvalid = errors.New("snapshot invalid")
	// ErrSnapshotVersion: 快照版本与当前编解码器不匹配。
	ErrSnapshotVersion = errors.New("snapshot version mismatch")
	// ErrPathInvalid: 输出路径为空或无法映射。
	ErrPathInvalid = errors.New("path invalid")
)

// RowError 标识出错的行号。
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }
