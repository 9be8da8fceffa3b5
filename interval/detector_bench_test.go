package interval

import (
	"math/rand"
	"testing"

	biogointerval "github.com/biogo/store/interval"
)

// The benchmarks below mimic the exome-scale workload this package is built
// for: a few hundred thousand annotations loaded once, then queried with
// comparable regions.  The biogo/store interval tree is included as a
// baseline, since that's the usual off-the-shelf answer to the same problem.

const (
	benchNIntervals = 200000
	benchNQueries   = 10000
	benchMaxPos     = 250000000
	benchMaxLen     = 20000
)

func benchData() (ivs, queries []Interval) {
	rng := rand.New(rand.NewSource(42))
	ivs = randIntervals(rng, benchNIntervals, []string{"chr1"}, benchMaxPos, benchMaxLen)
	queries = randIntervals(rng, benchNQueries, []string{"chr1"}, benchMaxPos, benchMaxLen)
	return
}

func BenchmarkIndex(b *testing.B) {
	ivs, _ := benchData()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d := NewDetector(DetectorOpts{})
		if err := d.AddAll(ivs); err != nil {
			b.Fatal(err)
		}
		d.Index()
	}
}

func BenchmarkOverlapping(b *testing.B) {
	ivs, queries := benchData()
	d := NewDetector(DetectorOpts{})
	if err := d.AddAll(ivs); err != nil {
		b.Fatal(err)
	}
	d.Index()
	b.ResetTimer()
	nHits := 0
	for i := 0; i < b.N; i++ {
		hits, err := d.Overlapping(queries[i%len(queries)])
		if err != nil {
			b.Fatal(err)
		}
		nHits += len(hits)
	}
	_ = nHits
}

func BenchmarkOverlapsAny(b *testing.B) {
	ivs, queries := benchData()
	d := NewDetector(DetectorOpts{})
	if err := d.AddAll(ivs); err != nil {
		b.Fatal(err)
	}
	d.Index()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := d.OverlapsAny(queries[i%len(queries)]); err != nil {
			b.Fatal(err)
		}
	}
}

// benchRange adapts an Interval to biogo/store's IntInterface.
type benchRange struct {
	start, end int
	id         uintptr
}

func (r benchRange) Overlap(b biogointerval.IntRange) bool {
	// Half-open interval indexing.
	return r.end > b.Start && r.start < b.End
}
func (r benchRange) ID() uintptr { return r.id }
func (r benchRange) Range() biogointerval.IntRange {
	return biogointerval.IntRange{Start: r.start, End: r.end}
}

func BenchmarkBiogoIntTreeBuild(b *testing.B) {
	ivs, _ := benchData()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree := &biogointerval.IntTree{}
		for k, iv := range ivs {
			if err := tree.Insert(benchRange{int(iv.Start0), int(iv.End), uintptr(k)}, true); err != nil {
				b.Fatal(err)
			}
		}
		tree.AdjustRanges()
	}
}

func BenchmarkBiogoIntTreeQuery(b *testing.B) {
	ivs, queries := benchData()
	tree := &biogointerval.IntTree{}
	for k, iv := range ivs {
		if err := tree.Insert(benchRange{int(iv.Start0), int(iv.End), uintptr(k)}, true); err != nil {
			b.Fatal(err)
		}
	}
	tree.AdjustRanges()
	b.ResetTimer()
	nHits := 0
	for i := 0; i < b.N; i++ {
		q := queries[i%len(queries)]
		tree.DoMatching(func(iv biogointerval.IntInterface) (done bool) {
			nHits++
			return
		}, benchRange{int(q.Start0), int(q.End), uintptr(len(ivs))})
	}
	_ = nHits
}
