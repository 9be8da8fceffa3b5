package interval

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// PosType is the type used to represent interval coordinates.  int32 should be
// wide enough for some time to come, since that's what BAM is limited to.
type PosType int32

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = math.MaxInt32

// ErrInvalidInterval is the cause of errors returned by New when the requested
// coordinates cannot describe a genomic region.
var ErrInvalidInterval = errors.New("invalid interval")

// Strand denotes which genomic strand a feature lies on, when known.  It is
// informational: overlap queries ignore it.
type Strand int8

const (
	// StrandNone marks a feature with no strand annotation.
	StrandNone Strand = iota
	// StrandPlus marks a forward-strand feature.
	StrandPlus
	// StrandMinus marks a reverse-strand feature.
	StrandMinus
)

func (s Strand) String() string {
	switch s {
	case StrandPlus:
		return "+"
	case StrandMinus:
		return "-"
	}
	return "."
}

// Interval is a single genomic region in 0-based, half-open [Start0, End)
// coordinates, plus optional caller-attached data.  It is a plain value: once
// constructed it is never mutated by this package, so a stored Interval may be
// shared freely across goroutines.
//
// Name and Payload ride along unexamined; they do not participate in equality
// or ordering.  Construct Intervals with New so that the coordinate invariants
// (0 <= Start0 <= End < PosTypeMax) are checked; building a literal that
// violates them is a caller bug and produces undefined query results.
type Interval struct {
	// RefName is the reference sequence (chromosome/contig) name.
	RefName string
	// Start0 is the 0-based first position of the region.
	Start0 PosType
	// End is the 0-based position just past the region.  End == Start0
	// denotes an empty region, which overlaps nothing.
	End PosType
	// Strand is the optional strand annotation.
	Strand Strand
	// Name is an optional feature name (BED column 4).
	Name string
	// Payload is arbitrary caller data carried through queries untouched.
	Payload interface{}
}

// New returns an Interval covering [start0, end) on refName, or an error with
// cause ErrInvalidInterval if the coordinates are out of range.  Strand, Name,
// and Payload may be set on the returned value before insertion.
func New(refName string, start0, end PosType) (Interval, error) {
	if start0 < 0 {
		return Interval{}, errors.Wrapf(ErrInvalidInterval, "interval.New: negative start %d", start0)
	}
	if end < start0 {
		return Interval{}, errors.Wrapf(ErrInvalidInterval, "interval.New: end %d < start %d", end, start0)
	}
	if end >= PosTypeMax {
		return Interval{}, errors.Wrapf(ErrInvalidInterval, "interval.New: end %d out of range", end)
	}
	return Interval{RefName: refName, Start0: start0, End: end}, nil
}

// Length returns the number of positions covered by i.
func (i Interval) Length() PosType {
	return i.End - i.Start0
}

// OverlapLen returns the number of positions covered by both i and other, zero
// when they share none (including when they're on different references).
func (i Interval) OverlapLen(other Interval) PosType {
	if i.RefName != other.RefName {
		return 0
	}
	end := i.End
	if other.End < end {
		end = other.End
	}
	start := i.Start0
	if other.Start0 > start {
		start = other.Start0
	}
	if end <= start {
		return 0
	}
	return end - start
}

// Overlaps returns whether i and other share at least one position.  Empty
// intervals overlap nothing, themselves included; touching endpoints do not
// count under half-open semantics.
func (i Interval) Overlaps(other Interval) bool {
	return i.OverlapLen(other) > 0
}

// Contains returns whether other lies entirely within i (same reference,
// i.Start0 <= other.Start0 and other.End <= i.End).
func (i Interval) Contains(other Interval) bool {
	return i.RefName == other.RefName && i.Start0 <= other.Start0 && other.End <= i.End
}

// Less orders intervals by (RefName, Start0, End); Strand/Name/Payload are
// ignored.  This is the output order of Detector.Overlapping.
func (i Interval) Less(other Interval) bool {
	if i.RefName != other.RefName {
		return i.RefName < other.RefName
	}
	if i.Start0 != other.Start0 {
		return i.Start0 < other.Start0
	}
	return i.End < other.End
}

func (i Interval) String() string {
	return fmt.Sprintf("%s:%d-%d", i.RefName, i.Start0, i.End)
}
