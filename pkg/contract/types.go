package contract

// FileID: 规范化后的文件标识（正斜杠分隔，跨平台一致）。
// 读写两端与日志事件统一使用该表示。
type FileID string

// Label: 情绪标签的固定整数索引。
type Label int

// Record: 单条带标签文本。
// 约束：Label 恒等于 LabelName 在固定枚举中的索引。
type Record struct {
	Query     string  `json:"query"`
	Text      string  `json:"text"`
	Label     Label   `json:"label"`
	LabelName Emotion `json:"label_name"`
}

// 固定列名（序列化快照与导出共用，顺序即列序）。
const (
	ColQuery     = "query"
	ColText      = "text"
	ColLabel     = "label"
	ColLabelName = "label_name"
)

// Columns 返回固定列序的副本。
func Columns() []string {
	return []string{ColQuery, ColText, ColLabel, ColLabelName}
}

// RecordSet: 内存中的表格记录集（行序即输入顺序）。
// 由 BuildRecordSet 一次性构造，序列化后不再修改。
type RecordSet struct {
	Rows []Record
}

// Len 返回行数。
func (rs RecordSet) Len() int { return len(rs.Rows) }

// Column 按列名返回该列的字符串视图；未知列返回 false。
func (rs RecordSet) Column(name string) ([]string, bool) {
	var pick func(Record) string
	switch name {
	case ColQuery:
		pick = func(r Record) string { return r.Query }
	case ColText:
		pick = func(r Record) string { return r.Text }
	case ColLabel:
		pick = func(r Record) string { return r.Label.String() }
	case ColLabelName:
		pick = func(r Record) string { return string(r.LabelName) }
	default:
		return nil, false
	}
	out := make([]string, len(rs.Rows))
	for i, r := range rs.Rows {
		out[i] = pick(r)
	}
	return out, true
}
