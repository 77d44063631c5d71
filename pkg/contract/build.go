package contract

// BuildRecordSet 将平行序列 texts/emotions/queries 组装为记录集。
// 规则：
// 1) 先对全部 emotions 做查表，任一未知即返回 ErrUnknownEmotion（不产出部分结果）；
// 2) 再按位置拉链，行数取三者最短（不报错，调用方可用 Truncated 判断）。
func BuildRecordSet(texts, emotions, queries []string) (RecordSet, error) {
	labels := make([]Label, len(emotions))
	for i, name := range emotions {
		l, err := Emotion(name).Label()
		if err != nil {
			return RecordSet{}, err
		}
		labels[i] = l
	}
	n := minLen(len(texts), len(emotions), len(queries))
	rows := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, Record{
			Query:     queries[i],
			Text:      texts[i],
			Label:     labels[i],
			LabelName: Emotion(emotions[i]),
		})
	}
	return RecordSet{Rows: rows}, nil
}

// Truncated 报告三路输入长度是否不一致（即 BuildRecordSet 会截断）。
func Truncated(texts, emotions, queries []string) bool {
	return len(texts) != len(emotions) || len(texts) != len(queries)
}

// Validate 校验每行 Label 与 LabelName 一致（用于加载外部快照后的自检）。
func (rs RecordSet) Validate() error {
	for i, r := range rs.Rows {
		l, err := r.LabelName.Label()
		if err != nil {
			return err
		}
		if l != r.Label {
			return &RowError{Row: i, Err: ErrLabelMismatch}
		}
	}
	return nil
}

func minLen(ns ...int) int {
	m := ns[0]
	for _, n := range ns[1:] {
		if n < m {
			m = n
		}
	}
	return m
}
