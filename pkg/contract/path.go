package contract

import (
	"path"
	"strings"
)

// NormalizeFileID 规范化路径，统一为跨平台稳定的 FileID。
// 规则：反斜杠转正斜杠后按 POSIX 语义 Clean；保留相对/绝对语义。
func NormalizeFileID(p string) FileID {
	return FileID(path.Clean(strings.ReplaceAll(p, "\\", "/")))
}

// WithSuffix 在基础路径后直接拼接后缀（不做扩展名替换）。
// 空基础路径返回 ErrPathInvalid。
func WithSuffix(base, suffix string) (string, error) {
	if strings.TrimSpace(base) == "" {
		return "", ErrPathInvalid
	}
	return base + suffix, nil
}
