// Package text 导出人工可读的伴随文本：每行 "text, label, label_name"。
package text

import (
	"bufio"
	"fmt"
	"io"

	"emolabel/pkg/contract"
)

// Suffix 为追加在基础路径后的固定后缀。
const Suffix = "-with-emotions.txt"

// Options: 最小选项。
type Options struct {
	// Separator: 字段分隔符，默认 ", "。
	Separator string `json:"separator,omitempty"`
}

type Exporter struct {
	sep string
}

func New(opts *Options) *Exporter {
	e := &Exporter{sep: ", "}
	if opts != nil && opts.Separator != "" {
		e.sep = opts.Separator
	}
	return e
}

var _ contract.Exporter = (*Exporter)(nil)

func (e *Exporter) Suffix() string { return Suffix }

// Export 逐行写出，返回写出的行数。字段不做转义。
func (e *Exporter) Export(w io.Writer, rs contract.RecordSet) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0
	for _, r := range rs.Rows {
		if _, err := fmt.Fprintf(bw, "%s%s%d%s%s\n", r.Text, e.sep, int(r.Label), e.sep, string(r.LabelName)); err != nil {
			return n, err
		}
		n++
	}
	return n, bw.Flush()
}
