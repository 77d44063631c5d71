// Package sheet 将记录集导出为 xlsx 工作表（首行表头）。
package sheet

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"emolabel/pkg/contract"
)

// Suffix 为追加在基础路径后的固定后缀。
const Suffix = "-with-emotions.xlsx"

const defaultSheet = "records"

// Options: 最小选项。
type Options struct {
	// SheetName: 工作表名，默认 records。
	SheetName string `json:"sheet_name,omitempty"`
}

type Exporter struct {
	sheet string
}

func New(opts *Options) *Exporter {
	e := &Exporter{sheet: defaultSheet}
	if opts != nil && strings.TrimSpace(opts.SheetName) != "" {
		e.sheet = strings.TrimSpace(opts.SheetName)
	}
	return e
}

var _ contract.Exporter = (*Exporter)(nil)

func (e *Exporter) Suffix() string { return Suffix }

// Export 写出表头 + 每条记录一行；返回数据行数（不含表头）。
func (e *Exporter) Export(w io.Writer, rs contract.RecordSet) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(e.sheet)
	if err != nil {
		return 0, err
	}
	f.SetActiveSheet(idx)
	if e.sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return 0, err
		}
	}

	header := make([]interface{}, 0, 4)
	for _, c := range contract.Columns() {
		header = append(header, c)
	}
	if err := f.SetSheetRow(e.sheet, "A1", &header); err != nil {
		return 0, err
	}
	for i, r := range rs.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return i, err
		}
		vals := []interface{}{r.Query, r.Text, int(r.Label), string(r.LabelName)}
		if err := f.SetSheetRow(e.sheet, cell, &vals); err != nil {
			return i, err
		}
	}
	if err := f.Write(w); err != nil {
		return 0, err
	}
	return len(rs.Rows), nil
}
