//go:build test

package model

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"testing"
)

var longPatterns = [][]string{
	{"p", "pu", "pus", "push", "push_", "push_b", "push_back"},
	{"e", "em", "emp", "empl", "empla", "emplac", "emplace"},
	{"s", "si", "siz", "size"},
	{"i", "it", "ite", "iter", "itera", "iterat", "iterato", "iterator"},
	{"r", "re", "res", "rese", "reser", "reserv", "reserve"},
}

var memoryWords = []string{"push", "pop", "emplace", "size", "iterator", "reserve", "insert", "erase", "clear", "swap"}

func memorySource(n int) *memSource {
	src := newMemSource()
	attrs := []Properties{
		GlobalScope | Public | Function,
		NamespaceScope | Private | Variable,
		LocalScope | Protected | Class | Static,
		GlobalScope | Public | Const | Function,
	}
	for i := range n {
		src.add(Candidate{
			Name:             fmt.Sprintf("%s_%d", memoryWords[i%len(memoryWords)], i),
			Properties:       attrs[i%len(attrs)],
			Scope:            fmt.Sprintf("ns%d", i%7),
			InheritanceDepth: i % 4,
		})
	}
	return src
}

func TestMemoryTyping(t *testing.T) {
	iterations := []int{10, 50, 200}

	for _, iterCount := range iterations {
		t.Run(fmt.Sprintf("iterations_%d", iterCount), func(t *testing.T) {
			runTypingMemoryTest(t, iterCount)
		})
	}
}

func runTypingMemoryTest(t *testing.T, iterations int) {
	cfg := DefaultConfig()
	cfg.Grouping.Method = Scope | AccessType
	m := New(memorySource(5000), WithConfig(cfg))

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)

	totalOps := 0
	for range iterations {
		for _, pattern := range longPatterns {
			for _, prefix := range pattern {
				m.SetCurrentCompletion(prefix)
				totalOps++
			}
			m.SetCurrentCompletion("")
			totalOps++
		}
	}

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)

	memDelta := int64(final.Alloc) - int64(baseline.Alloc)
	memPerOp := float64(memDelta) / float64(totalOps)
	t.Logf("iterations=%d ops=%d mem_delta=%d bytes mem_per_op=%.2f", iterations, totalOps, memDelta, memPerOp)

	if memPerOp > 1000 {
		t.Errorf("excessive retained memory per prefix change: %.2f bytes", memPerOp)
	}
}

func TestMemoryChurnStability(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long-running memory stability test in short mode")
	}

	memFile, err := os.Create("churn_stability.prof")
	if err != nil {
		t.Fatalf("profile file creation failed: %v", err)
	}
	defer func() {
		memFile.Close()
		os.Remove("churn_stability.prof")
	}()

	src := memorySource(2000)
	m := New(src)

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)

	cycles := 50
	maxMemDelta := int64(0)
	for cycle := range cycles {
		// replace a slice of rows each cycle, leaving the row count unchanged
		old := src.Rows()[:200]
		m.Remove(old...)
		for _, id := range old {
			src.drop(id)
		}
		fresh := make([]RowID, 0, len(old))
		for i := range old {
			fresh = append(fresh, src.add(Candidate{
				Name:       fmt.Sprintf("churn_%d_%d", cycle, i),
				Properties: GlobalScope | Public | Function,
			}))
		}
		m.Insert(fresh...)

		pattern := longPatterns[cycle%len(longPatterns)]
		m.SetCurrentCompletion(pattern[cycle%len(pattern)])

		if cycle%10 == 0 {
			var ms runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&ms)
			memDelta := int64(ms.Alloc) - int64(baseline.Alloc)
			maxMemDelta = max(maxMemDelta, memDelta)
			t.Logf("cycle=%d items=%d mem_delta=%d bytes", cycle, m.Stats()["items"], memDelta)
		}
	}

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		t.Errorf("heap profile write failed: %v", err)
	}
	if got := m.Stats()["items"]; got != 2000 {
		t.Errorf("items = %d after churn, want 2000", got)
	}
	if maxMemDelta > 10*1024*1024 {
		t.Errorf("excessive peak memory usage: %d bytes", maxMemDelta)
	}
}
