package contract

import "io"

// TableCodec: 记录集的二进制快照编解码。
// 读写双方须使用同一版本；版本不符返回 ErrSnapshotVersion。
type TableCodec interface {
	Encode(w io.Writer, rs RecordSet) error
	Decode(r io.Reader) (RecordSet, error)
}

// Exporter: 面向人工查看的伴随导出（文本/表格）。
// Suffix 为追加在基础路径后的固定后缀（含扩展名）。
type Exporter interface {
	Suffix() string
	Export(w io.Writer, rs RecordSet) (int, error)
}
