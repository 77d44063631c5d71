package diag

import (
	"sort"
	"sync"
)

// 进程内最小计数器（无导出端点）。名称：
// - op_total{comp,stage,result}
// - error_total{comp,code}
// - op_duration_ms{comp,stage}（累计）
var (
	metricsMu sync.Mutex
	counters  = map[string]int64{}
)

// IncOp 累加操作计数（result=success|error）。
func IncOp(comp, stage, result string) {
	add("op_total{"+comp+","+stage+","+result+"}", 1)
}

// IncError 按分类累加错误计数。
func IncError(comp string, code Code) {
	add("error_total{"+comp+","+string(code)+"}", 1)
}

// ObserveDuration 累计阶段耗时（毫秒）。
func ObserveDuration(comp, stage string, durMS int64) {
	add("op_duration_ms{"+comp+","+stage+"}", durMS)
}

func add(key string, v int64) {
	metricsMu.Lock()
	counters[key] += v
	metricsMu.Unlock()
}

// Metric 为单个计数器快照。
type Metric struct {
	Name  string
	Value int64
}

// Snapshot 按名称排序返回当前计数。
func Snapshot() []Metric {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	out := make([]Metric, 0, len(counters))
	for k, v := range counters {
		out = append(out, Metric{Name: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Counter 返回单个计数器当前值（不存在为 0）。
func Counter(name string) int64 {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	return counters[name]
}

// ResetMetrics 清空计数（测试使用）。
func ResetMetrics() {
	metricsMu.Lock()
	counters = map[string]int64{}
	metricsMu.Unlock()
}
