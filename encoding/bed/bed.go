// Package bed reads and writes UCSC BED records
// (https://genome.ucsc.edu/FAQ/FAQformat.html#format1) and converts them to
// and from the interval package's query types.  Only the first three columns
// are required; missing optional columns are represented by Go zero values
// (or nil for the numeric/compound columns where zero is meaningful) and
// serialized as the '.' sentinel.
package bed

import (
	"strconv"
	"strings"

	"github.com/grailbio/bedlite/interval"
	"github.com/pkg/errors"
)

// MaxFields is the number of columns in a maximal well-formed BED record.
const MaxFields = 12

// MinFields is the number of mandatory BED columns.
const MinFields = 3

// missingValue is the sentinel written for an absent optional column.
const missingValue = "."

// RGB is the itemRgb display column.
type RGB struct {
	R, G, B uint8
}

// Record is one BED line.  Chrom/Start/End are always present; everything
// else is optional.  ThickStart and ThickEnd must be set together, as must
// BlockSizes and BlockStarts (the block count column is derived from their
// length).
type Record struct {
	// Chrom is the reference sequence name.
	Chrom string
	// Start is the 0-based first position of the feature.
	Start interval.PosType
	// End is the 0-based position just past the feature.
	End interval.PosType
	// Name is the feature name, or "" if absent.
	Name string
	// Score is the display score, or nil if absent.  The UCSC spec bounds it
	// to [0, 1000] but real-world files do not honor that, so neither do we.
	Score *int
	// Strand is the feature's strand annotation.
	Strand interval.Strand
	// ThickStart/ThickEnd bound the thickly-drawn part of the feature.
	ThickStart, ThickEnd *interval.PosType
	// ItemRGB is the feature's display color, or nil if absent.
	ItemRGB *RGB
	// BlockSizes/BlockStarts describe sub-blocks (exons); BlockStarts are
	// relative to Start.
	BlockSizes, BlockStarts []interval.PosType
}

// NumFields returns how many leading BED columns this record populates.
// Interior absent columns still count (they serialize as '.').
func (r *Record) NumFields() int {
	switch {
	case r.BlockSizes != nil || r.BlockStarts != nil:
		return 12
	case r.ItemRGB != nil:
		return 9
	case r.ThickStart != nil || r.ThickEnd != nil:
		return 8
	case r.Strand != interval.StrandNone:
		return 6
	case r.Score != nil:
		return 5
	case r.Name != "":
		return 4
	}
	return 3
}

// Validate checks the cross-field invariants the BED spec imposes.  Reader
// applies it to every parsed record; callers constructing Records by hand
// should apply it before writing.
func (r *Record) Validate() error {
	if r.Start < 0 {
		return errors.Errorf("bed.Record %s: negative start %d", r.Chrom, r.Start)
	}
	if r.End <= r.Start {
		return errors.Errorf("bed.Record %s: end %d must be greater than start %d", r.Chrom, r.End, r.Start)
	}
	if (r.ThickStart == nil) != (r.ThickEnd == nil) {
		return errors.Errorf("bed.Record %s:%d-%d: thickStart and thickEnd must be set together", r.Chrom, r.Start, r.End)
	}
	if (r.BlockSizes == nil) != (r.BlockStarts == nil) {
		return errors.Errorf("bed.Record %s:%d-%d: blockSizes and blockStarts must be set together", r.Chrom, r.Start, r.End)
	}
	if r.BlockSizes != nil {
		if len(r.BlockSizes) != len(r.BlockStarts) {
			return errors.Errorf("bed.Record %s:%d-%d: %d block sizes vs %d block starts",
				r.Chrom, r.Start, r.End, len(r.BlockSizes), len(r.BlockStarts))
		}
		if len(r.BlockSizes) == 0 {
			return errors.Errorf("bed.Record %s:%d-%d: empty block list", r.Chrom, r.Start, r.End)
		}
		if r.BlockStarts[0] != 0 {
			return errors.Errorf("bed.Record %s:%d-%d: first block must start at offset 0", r.Chrom, r.Start, r.End)
		}
		last := len(r.BlockStarts) - 1
		if blockEnd := r.Start + r.BlockStarts[last] + r.BlockSizes[last]; blockEnd != r.End {
			return errors.Errorf("bed.Record %s:%d-%d: last block ends at %d, not at the record end",
				r.Chrom, r.Start, r.End, blockEnd)
		}
	}
	return nil
}

func posTypeList(ps []interval.PosType) string {
	var sb strings.Builder
	for i, p := range ps {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(p)))
	}
	return sb.String()
}

// fields returns all twelve column strings for r, with '.' for absent
// optional columns.
func (r *Record) fields() [MaxFields]string {
	f := [MaxFields]string{
		r.Chrom,
		strconv.Itoa(int(r.Start)),
		strconv.Itoa(int(r.End)),
		missingValue, missingValue, missingValue,
		missingValue, missingValue, missingValue,
		missingValue, missingValue, missingValue,
	}
	if r.Name != "" {
		f[3] = r.Name
	}
	if r.Score != nil {
		f[4] = strconv.Itoa(*r.Score)
	}
	if r.Strand != interval.StrandNone {
		f[5] = r.Strand.String()
	}
	if r.ThickStart != nil {
		f[6] = strconv.Itoa(int(*r.ThickStart))
		f[7] = strconv.Itoa(int(*r.ThickEnd))
	}
	if r.ItemRGB != nil {
		f[8] = strconv.Itoa(int(r.ItemRGB.R)) + "," + strconv.Itoa(int(r.ItemRGB.G)) + "," + strconv.Itoa(int(r.ItemRGB.B))
	}
	if r.BlockSizes != nil {
		f[9] = strconv.Itoa(len(r.BlockSizes))
		f[10] = posTypeList(r.BlockSizes)
		f[11] = posTypeList(r.BlockStarts)
	}
	return f
}

// Line renders the first numFields columns of r as a tab-delimited BED line
// (no trailing newline).  numFields must be in [MinFields, MaxFields].
func (r *Record) Line(numFields int) string {
	f := r.fields()
	return strings.Join(f[:numFields], "\t")
}

// Interval converts r to the interval package's query/storage type.  The
// returned Interval carries r's strand and name; Payload is left nil for the
// caller to attach (LoadDetector stores the full Record there).
func (r *Record) Interval() interval.Interval {
	return interval.Interval{
		RefName: r.Chrom,
		Start0:  r.Start,
		End:     r.End,
		Strand:  r.Strand,
		Name:    r.Name,
	}
}

// RecordFromInterval builds a minimal Record (BED3/4/6 depending on which
// optional attributes the interval carries) from iv.
func RecordFromInterval(iv interval.Interval) Record {
	return Record{
		Chrom:  iv.RefName,
		Start:  iv.Start0,
		End:    iv.End,
		Name:   iv.Name,
		Strand: iv.Strand,
	}
}
