package stress

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"testing"
	"time"

	cfgpkg "emolabel/internal/config"
	"emolabel/internal/diag"
	"emolabel/pkg/contract"
)

// synth 生成 n 行合成输入，情绪名循环覆盖全部取值。
func synth(n int) (texts, emotions, queries []string) {
	all := contract.Emotions()
	texts = make([]string, n)
	emotions = make([]string, n)
	queries = make([]string, n)
	for i := 0; i < n; i++ {
		texts[i] = fmt.Sprintf("response %d with some body text", i)
		emotions[i] = string(all[i%len(all)])
		queries[i] = fmt.Sprintf("query %d", i)
	}
	return texts, emotions, queries
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

// TestStress 在不同规模下执行 保存→加载→文本导出，并记录延迟统计。
func TestStress(t *testing.T) {
	if testing.Short() {
		t.Skip("stress skipped in -short")
	}
	st, err := cfgpkg.Assemble(cfgpkg.Defaults(), diag.Discard(), nil)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	ctx := context.Background()
	for _, n := range []int{100, 10_000, 100_000} {
		t.Run(fmt.Sprintf("rows_%d", n), func(t *testing.T) {
			texts, emotions, queries := synth(n)
			dir := t.TempDir()
			const runs = 5
			latencies := make([]time.Duration, 0, runs)
			for i := 0; i < runs; i++ {
				path := filepath.Join(dir, fmt.Sprintf("snap-%d", i))
				t0 := time.Now()
				if _, err := st.SaveLabeledRecords(ctx, texts, emotions, queries, path); err != nil {
					t.Fatalf("save: %v", err)
				}
				rs, err := st.LoadTable(ctx, path)
				if err != nil {
					t.Fatalf("load: %v", err)
				}
				if rs.Len() != n {
					t.Fatalf("rows: want %d got %d", n, rs.Len())
				}
				if _, err := st.SaveLabeledRecordsAsText(ctx, rs, path); err != nil {
					t.Fatalf("text: %v", err)
				}
				latencies = append(latencies, time.Since(t0))
			}
			sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
			t.Logf("rows=%d p50=%v p95=%v max=%v", n, percentile(latencies, 0.5), percentile(latencies, 0.95), latencies[len(latencies)-1])
		})
	}
}
