package interval

import (
	"sort"

	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"
)

var (
	// ErrNotIndexed is returned when a query touches a reference whose
	// intervals were added but never indexed (or whose index was invalidated
	// by Reopen).  Call Detector.Index and retry.
	ErrNotIndexed = errors.New("interval.Detector: reference not indexed; call Index before querying")
	// ErrAlreadyIndexed is returned by Add for a reference that has been
	// indexed.  Call Detector.Reopen first to acknowledge the rebuild, then
	// re-Index before querying again.
	ErrAlreadyIndexed = errors.New("interval.Detector: add after Index; call Reopen to rebuild")
)

// refIntervals holds one reference's intervals.  While building, ivs is in
// insertion order and starts/maxEnds are nil.  Index stable-sorts ivs by
// (Start0, End), so equal-coordinate intervals keep insertion order, and
// fills the two parallel search arrays:
//
//	starts[k]  = ivs[k].Start0
//	maxEnds[k] = max(ivs[0].End, ..., ivs[k].End)
//
// starts is sorted and maxEnds is monotonically nondecreasing, so both
// support binary search.  Queries never write to any of these fields.
type refIntervals struct {
	name    string
	ivs     []Interval
	starts  []PosType
	maxEnds []PosType
	indexed bool
}

func (r *refIntervals) index() {
	if r.indexed {
		return
	}
	// Sort into fresh storage rather than in place: a scanner created before
	// a Reopen must keep seeing the arrays it started with.
	sorted := make([]Interval, len(r.ivs))
	copy(sorted, r.ivs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start0 != sorted[j].Start0 {
			return sorted[i].Start0 < sorted[j].Start0
		}
		return sorted[i].End < sorted[j].End
	})
	r.ivs = sorted
	r.starts = make([]PosType, len(r.ivs))
	r.maxEnds = make([]PosType, len(r.ivs))
	maxEnd := PosType(0)
	for k, iv := range r.ivs {
		r.starts[k] = iv.Start0
		if iv.End > maxEnd {
			maxEnd = iv.End
		}
		r.maxEnds[k] = maxEnd
	}
	r.indexed = true
}

// bounds returns the candidate range [lo, hi) for a query covering
// [start0, end).  Everything at or past hi starts at or after the query's
// end; everything before lo has maxEnd <= start0, i.e. every interval there
// ends on or before the query's start.  Both prunes rely on the sorted-order
// invariant established by index().
func (r *refIntervals) bounds(start0, end PosType) (lo, hi int) {
	hi = sort.Search(len(r.starts), func(i int) bool { return r.starts[i] >= end })
	lo = sort.Search(len(r.maxEnds), func(i int) bool { return r.maxEnds[i] > start0 })
	return lo, hi
}

// DetectorOpts configures a Detector.
type DetectorOpts struct {
	// SAMHeader, when set, makes the ...ByID query variants available after
	// Index: reference IDs from this header resolve to interval sets without
	// a name-map lookup.  This is convenient for shard-oriented callers that
	// carry sam.Header reference IDs rather than names.
	SAMHeader *sam.Header
}

// Detector answers "which stored intervals overlap this region?" for one set
// of genomic intervals, partitioned by reference name.  Usage is strictly
// batched: Add everything, Index once, then query any number of times.
//
// Each reference's interval set is either building or indexed.  Queries
// against a building set return ErrNotIndexed, and Add to an indexed set
// returns ErrAlreadyIndexed; silently mixing the two phases would yield wrong
// overlap answers.  Reopen moves a set back to building.
//
// A Detector must not be mutated (Add, Index, Reopen) concurrently with any
// other call.  Once Index has returned and no further mutation occurs,
// queries perform no writes, so any number of goroutines may query
// concurrently.  Multiple Detectors are fully independent.
type Detector struct {
	opts   DetectorOpts
	refs   map[string]*refIntervals
	idRefs []*refIntervals
	n      int
}

// NewDetector returns an empty Detector.
func NewDetector(opts DetectorOpts) *Detector {
	return &Detector{
		opts: opts,
		refs: make(map[string]*refIntervals),
	}
}

// Len returns the total number of stored intervals across all references.
func (d *Detector) Len() int {
	return d.n
}

// RefNames returns the names of all references with at least one stored
// interval, sorted.
func (d *Detector) RefNames() []string {
	names := make([]string, 0, len(d.refs))
	for name := range d.refs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Add stores iv for later queries.  The first Add for a reference implicitly
// opens its building set.  Returns ErrAlreadyIndexed if iv's reference has
// been indexed and not reopened.
func (d *Detector) Add(iv Interval) error {
	ref := d.refs[iv.RefName]
	if ref == nil {
		ref = &refIntervals{name: iv.RefName}
		d.refs[iv.RefName] = ref
	} else if ref.indexed {
		return errors.Wrapf(ErrAlreadyIndexed, "adding %v", iv)
	}
	ref.ivs = append(ref.ivs, iv)
	d.n++
	return nil
}

// AddAll stores every interval in ivs, stopping at the first failure.
func (d *Detector) AddAll(ivs []Interval) error {
	for _, iv := range ivs {
		if err := d.Add(iv); err != nil {
			return err
		}
	}
	return nil
}

// Index sorts and augments every reference's building set, making them
// queryable.  References already indexed are untouched, so calling Index
// twice in a row is a no-op.  Cost is O(n log n) per reference with O(n)
// extra memory.
func (d *Detector) Index() {
	for _, ref := range d.refs {
		ref.index()
	}
	if h := d.opts.SAMHeader; h != nil {
		d.idRefs = make([]*refIntervals, len(h.Refs()))
		for refID, samRef := range h.Refs() {
			if refID != samRef.ID() {
				panic("interval.Detector: sam.Header ref.ID != array position")
			}
			d.idRefs[refID] = d.refs[samRef.Name()]
		}
	}
}

// Reopen moves refName's interval set back to the building state so that more
// intervals can be added.  The existing index is discarded: queries against
// refName fail with ErrNotIndexed until the next Index call.  Reopening an
// unknown or still-building reference is a no-op.
func (d *Detector) Reopen(refName string) {
	ref := d.refs[refName]
	if ref == nil || !ref.indexed {
		return
	}
	ref.indexed = false
	ref.starts = nil
	ref.maxEnds = nil
}

// queryRef resolves a query's reference set, distinguishing "unknown
// reference" (nil, nil: legitimately zero hits) from "known but not indexed".
func (d *Detector) queryRef(refName string) (*refIntervals, error) {
	ref := d.refs[refName]
	if ref == nil {
		return nil, nil
	}
	if !ref.indexed {
		return nil, errors.Wrapf(ErrNotIndexed, "querying %s", refName)
	}
	return ref, nil
}

// OverlapScanner iterates lazily over the stored intervals overlapping one
// query, in ascending (Start0, End) order.  It holds its own cursor and its
// own snapshot of the per-reference arrays, so any number of scanners may run
// concurrently over an indexed Detector, and a scanner outlives a later
// Reopen of its reference.
type OverlapScanner struct {
	query  Interval
	ivs    []Interval
	lo, hi int
	idx    int
	cur    Interval
}

// Scan advances to the next overlapping interval, returning false when there
// are no more.  Once false, it stays false until Reset.
func (s *OverlapScanner) Scan() bool {
	for s.idx < s.hi {
		iv := s.ivs[s.idx]
		s.idx++
		if s.query.OverlapLen(iv) > 0 {
			s.cur = iv
			return true
		}
	}
	return false
}

// Get returns the interval found by the last successful Scan.
func (s *OverlapScanner) Get() Interval {
	return s.cur
}

// Reset rewinds the scanner so the sequence can be replayed from the first
// match.
func (s *OverlapScanner) Reset() {
	s.idx = s.lo
}

func newOverlapScanner(ref *refIntervals, query Interval) *OverlapScanner {
	s := &OverlapScanner{query: query}
	if ref == nil || query.Length() == 0 {
		return s // already exhausted
	}
	s.ivs = ref.ivs
	s.lo, s.hi = ref.bounds(query.Start0, query.End)
	s.idx = s.lo
	return s
}

// NewOverlapScanner returns a scanner over the stored intervals overlapping
// query.  An unknown reference is not an error; it yields a scanner that is
// immediately exhausted.  Returns ErrNotIndexed if query's reference has
// pending unindexed intervals.
func (d *Detector) NewOverlapScanner(query Interval) (*OverlapScanner, error) {
	ref, err := d.queryRef(query.RefName)
	if err != nil {
		return nil, err
	}
	return newOverlapScanner(ref, query), nil
}

// Overlapping returns every stored interval overlapping query, in ascending
// (Start0, End) order with insertion order breaking ties.  An unknown
// reference yields a nil slice and no error.
func (d *Detector) Overlapping(query Interval) ([]Interval, error) {
	s, err := d.NewOverlapScanner(query)
	if err != nil {
		return nil, err
	}
	var hits []Interval
	for s.Scan() {
		hits = append(hits, s.Get())
	}
	return hits, nil
}

// OverlapsAny reports whether at least one stored interval overlaps query,
// stopping at the first hit.
func (d *Detector) OverlapsAny(query Interval) (bool, error) {
	s, err := d.NewOverlapScanner(query)
	if err != nil {
		return false, err
	}
	return s.Scan(), nil
}

// Enclosing returns the stored intervals that wholly contain query
// (iv.Start0 <= query.Start0 and query.End <= iv.End), in ascending order.
func (d *Detector) Enclosing(query Interval) ([]Interval, error) {
	s, err := d.NewOverlapScanner(query)
	if err != nil {
		return nil, err
	}
	var hits []Interval
	for s.Scan() {
		if iv := s.Get(); iv.Contains(query) {
			hits = append(hits, iv)
		}
	}
	return hits, nil
}

// Enclosed returns the stored intervals lying wholly within query, in
// ascending order.
func (d *Detector) Enclosed(query Interval) ([]Interval, error) {
	s, err := d.NewOverlapScanner(query)
	if err != nil {
		return nil, err
	}
	var hits []Interval
	for s.Scan() {
		if iv := s.Get(); query.Contains(iv) {
			hits = append(hits, iv)
		}
	}
	return hits, nil
}

// byID resolves a sam.Header reference ID to its interval set.  It panics if
// the Detector was built without DetectorOpts.SAMHeader or before Index, the
// same way an out-of-range slice index would.
func (d *Detector) byID(refID int) (*refIntervals, error) {
	ref := d.idRefs[refID]
	if ref == nil {
		return nil, nil
	}
	if !ref.indexed {
		return nil, errors.Wrapf(ErrNotIndexed, "querying ref ID %d", refID)
	}
	return ref, nil
}

// OverlappingByID is Overlapping with the reference given as a sam.Header ID.
// Requires DetectorOpts.SAMHeader.
func (d *Detector) OverlappingByID(refID int, start0, end PosType) ([]Interval, error) {
	ref, err := d.byID(refID)
	if err != nil {
		return nil, err
	}
	var query Interval
	if ref != nil {
		query = Interval{RefName: ref.name, Start0: start0, End: end}
	}
	s := newOverlapScanner(ref, query)
	var hits []Interval
	for s.Scan() {
		hits = append(hits, s.Get())
	}
	return hits, nil
}

// OverlapsAnyByID is OverlapsAny with the reference given as a sam.Header ID.
// Requires DetectorOpts.SAMHeader.
func (d *Detector) OverlapsAnyByID(refID int, start0, end PosType) (bool, error) {
	ref, err := d.byID(refID)
	if err != nil {
		return false, err
	}
	var query Interval
	if ref != nil {
		query = Interval{RefName: ref.name, Start0: start0, End: end}
	}
	return newOverlapScanner(ref, query).Scan(), nil
}
