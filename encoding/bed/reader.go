package bed

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/bedlite/interval"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// getFields splits curLine on tabs into at most len(fields) tokens, returning
// the number saved.  A trailing carriage return is stripped from the last
// token.  Columns past len(fields) are ignored, matching the usual tolerance
// for extra non-standard BED columns.
func getFields(fields [][]byte, curLine []byte) int {
	if n := len(curLine); n > 0 && curLine[n-1] == '\r' {
		curLine = curLine[:n-1]
	}
	nField := 0
	for nField < len(fields) {
		tabPos := bytes.IndexByte(curLine, '\t')
		if tabPos == -1 {
			if len(curLine) > 0 {
				fields[nField] = curLine
				nField++
			}
			return nField
		}
		fields[nField] = curLine[:tabPos]
		nField++
		curLine = curLine[tabPos+1:]
	}
	return nField
}

func isHeaderLine(line []byte) bool {
	if len(bytes.TrimSpace(line)) == 0 {
		return true
	}
	return line[0] == '#' ||
		bytes.HasPrefix(line, []byte("browser")) ||
		bytes.HasPrefix(line, []byte("track"))
}

// Reader parses BED records from a text stream, skipping blank lines and
// '#'/'browser'/'track' headers.  Iterate with Scan/Record and check Err when
// done, as with bufio.Scanner.
type Reader struct {
	scanner *bufio.Scanner
	lineIdx int
	// numFields is the column count of the first parsed record; later records
	// may differ (real files are sloppy about this and we don't enforce it).
	numFields int
	rec       Record
	err       error
}

// NewReader returns a Reader consuming r.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// NumFields returns the number of columns of the first parsed record, or 0 if
// nothing has been parsed yet.
func (r *Reader) NumFields() int {
	return r.numFields
}

// Scan advances to the next record, returning false on end of input or error.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	for r.scanner.Scan() {
		r.lineIdx++
		curLine := r.scanner.Bytes()
		if isHeaderLine(curLine) {
			continue
		}
		rec, nField, err := parseRecord(curLine)
		if err != nil {
			r.err = errors.Wrapf(err, "bed.Reader: line %d", r.lineIdx)
			return false
		}
		if r.numFields == 0 {
			r.numFields = nField
		}
		r.rec = rec
		return true
	}
	r.err = r.scanner.Err()
	return false
}

// Record returns the record parsed by the last successful Scan.  The returned
// value owns its own storage and remains valid after further Scans.
func (r *Reader) Record() Record {
	return r.rec
}

// Err returns the first error encountered, nil on clean end of input.
func (r *Reader) Err() error {
	return r.err
}

func parsePos(field []byte) (interval.PosType, error) {
	// gunsafe string headers must not escape this scope.
	v, err := strconv.Atoi(gunsafe.BytesToString(field))
	if err != nil {
		return 0, err
	}
	if v < 0 || v >= interval.PosTypeMax {
		return 0, errors.Errorf("coordinate %d out of range", v)
	}
	return interval.PosType(v), nil
}

func parsePosList(field []byte) ([]interval.PosType, error) {
	// BED block lists may carry a trailing comma.
	if n := len(field); n > 0 && field[n-1] == ',' {
		field = field[:n-1]
	}
	var ps []interval.PosType
	for len(field) > 0 {
		item := field
		if commaPos := bytes.IndexByte(field, ','); commaPos != -1 {
			item = field[:commaPos]
			field = field[commaPos+1:]
		} else {
			field = nil
		}
		p, err := parsePos(item)
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, nil
}

func fieldMissing(field []byte) bool {
	return len(field) == 1 && field[0] == missingValue[0]
}

func parseRecord(curLine []byte) (rec Record, nField int, err error) {
	var fields [MaxFields][]byte
	nField = getFields(fields[:], curLine)
	if nField < MinFields {
		err = errors.Errorf("got %d fields, need at least %d", nField, MinFields)
		return
	}
	rec.Chrom = string(fields[0])
	if rec.Start, err = parsePos(fields[1]); err != nil {
		return
	}
	if rec.End, err = parsePos(fields[2]); err != nil {
		return
	}
	if nField >= 4 && !fieldMissing(fields[3]) {
		rec.Name = string(fields[3])
	}
	if nField >= 5 && !fieldMissing(fields[4]) {
		var score int
		if score, err = strconv.Atoi(gunsafe.BytesToString(fields[4])); err != nil {
			return
		}
		rec.Score = &score
	}
	if nField >= 6 && !fieldMissing(fields[5]) {
		switch {
		case len(fields[5]) == 1 && fields[5][0] == '+':
			rec.Strand = interval.StrandPlus
		case len(fields[5]) == 1 && fields[5][0] == '-':
			rec.Strand = interval.StrandMinus
		default:
			err = errors.Errorf("invalid strand %q", fields[5])
			return
		}
	}
	if nField >= 7 {
		startMissing := fieldMissing(fields[6])
		endMissing := nField < 8 || fieldMissing(fields[7])
		if !startMissing || !endMissing {
			if startMissing || endMissing {
				err = errors.Errorf("thickStart and thickEnd must be set together")
				return
			}
			var thickStart, thickEnd interval.PosType
			if thickStart, err = parsePos(fields[6]); err != nil {
				return
			}
			if thickEnd, err = parsePos(fields[7]); err != nil {
				return
			}
			rec.ThickStart, rec.ThickEnd = &thickStart, &thickEnd
		}
	}
	if nField >= 9 && !fieldMissing(fields[8]) {
		var rgb []interval.PosType
		if rgb, err = parsePosList(fields[8]); err != nil {
			return
		}
		if len(rgb) != 3 {
			err = errors.Errorf("itemRgb %q must contain 3 comma-separated integers", fields[8])
			return
		}
		for _, c := range rgb {
			if c > 255 {
				err = errors.Errorf("itemRgb component %d out of range", c)
				return
			}
		}
		rec.ItemRGB = &RGB{R: uint8(rgb[0]), G: uint8(rgb[1]), B: uint8(rgb[2])}
	}
	if nField >= 10 {
		countMissing := fieldMissing(fields[9])
		sizesMissing := nField < 11 || fieldMissing(fields[10])
		startsMissing := nField < 12 || fieldMissing(fields[11])
		if !countMissing || !sizesMissing || !startsMissing {
			if countMissing || sizesMissing || startsMissing {
				err = errors.Errorf("incomplete block definition (columns 10-12 must be set together)")
				return
			}
			var blockCount int
			if blockCount, err = strconv.Atoi(gunsafe.BytesToString(fields[9])); err != nil {
				return
			}
			if rec.BlockSizes, err = parsePosList(fields[10]); err != nil {
				return
			}
			if rec.BlockStarts, err = parsePosList(fields[11]); err != nil {
				return
			}
			if len(rec.BlockSizes) != blockCount || len(rec.BlockStarts) != blockCount {
				err = errors.Errorf("blockCount %d does not match %d sizes / %d starts",
					blockCount, len(rec.BlockSizes), len(rec.BlockStarts))
				return
			}
		}
	}
	err = rec.Validate()
	return
}

// ReadAll parses every record from r.
func ReadAll(r io.Reader) ([]Record, error) {
	reader := NewReader(r)
	var recs []Record
	for reader.Scan() {
		recs = append(recs, reader.Record())
	}
	return recs, reader.Err()
}

// ReadAllFromPath is a wrapper for ReadAll that takes a path instead of an
// io.Reader, transparently decompressing gzipped inputs.
func ReadAllFromPath(path string) (recs []Record, err error) {
	ctx := vcontext.Background()
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if reader, err = gzip.NewReader(reader); err != nil {
			return
		}
	}
	return ReadAll(reader)
}

// NewDetectorFromPath loads every record in the BED file at path into a fresh
// Detector and indexes it, ready for queries.  Each stored interval's Payload
// holds its source Record.
func NewDetectorFromPath(path string, opts interval.DetectorOpts) (*interval.Detector, error) {
	recs, err := ReadAllFromPath(path)
	if err != nil {
		return nil, err
	}
	detector := interval.NewDetector(opts)
	for i := range recs {
		iv := recs[i].Interval()
		iv.Payload = recs[i]
		if err := detector.Add(iv); err != nil {
			return nil, err
		}
	}
	detector.Index()
	return detector, nil
}
