package benchmark

import (
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/yndnr/jsonkv-go/internal/core/domain"
	"github.com/yndnr/jsonkv-go/internal/infra/idgen"
	"github.com/yndnr/jsonkv-go/internal/storage/memory"
)

// KeyCounts defines the store sizes for benchmarking.
var KeyCounts = []int{5000, 10000, 50000, 100000, 500000}

// SmallKeyCounts for quick benchmarks.
var SmallKeyCounts = []int{1000, 5000, 10000}

// newKey generates a unique, roughly sortable key.
func newKey() string {
	return "kv-" + strings.ToLower(idgen.New())
}

// newObject builds a small JSON object of the shape clients typically store.
func newObject(i int) domain.Object {
	return domain.MustDecodeObject(fmt.Sprintf(
		`{"id":%d,"name":"user-%d","active":true,"tags":["a","b"],"profile":{"age":%d,"city":"Paris"}}`,
		i, i, 20+i%50))
}

// prefillStore fills a store with count keys and returns them.
func prefillStore(store *memory.Store, count int) []string {
	keys := make([]string, count)
	for i := 0; i < count; i++ {
		keys[i] = newKey()
		store.Set(keys[i], newObject(i))
	}
	return keys
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithKeyCounts runs a benchmark function with various key counts.
func runWithKeyCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("keys_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
