package bed

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// WriterOpts defines behavior of Writer.
type WriterOpts struct {
	// NumFields is the column count every output line is normalized to.  Zero
	// means "use the column count of the first record written".
	NumFields int
	// Truncate permits writing a record carrying more populated columns than
	// NumFields by dropping the extras.  Without it, such a record is an
	// error.
	Truncate bool
	// AddMissing permits writing a record carrying fewer populated columns
	// than NumFields by padding with the '.' sentinel.  Without it, such a
	// record is an error.
	AddMissing bool
}

// Writer emits BED text.  Call Flush before discarding it; errors stick to
// the Writer and are also reported by Flush.
type Writer struct {
	w         *bufio.Writer
	opts      WriterOpts
	numFields int
	err       error
}

// NewWriter returns a Writer emitting to w.
func NewWriter(w io.Writer, opts WriterOpts) (*Writer, error) {
	if opts.NumFields != 0 && (opts.NumFields < MinFields || opts.NumFields > MaxFields) {
		return nil, errors.Errorf("bed.NewWriter: %d columns requested; BED lines have between %d and %d",
			opts.NumFields, MinFields, MaxFields)
	}
	return &Writer{w: bufio.NewWriter(w), opts: opts, numFields: opts.NumFields}, nil
}

// Write emits one record.
func (w *Writer) Write(rec *Record) error {
	if w.err != nil {
		return w.err
	}
	recFields := rec.NumFields()
	if w.numFields == 0 {
		w.numFields = recFields
	}
	if recFields > w.numFields && !w.opts.Truncate {
		w.err = errors.Errorf("bed.Writer: record %s:%d-%d has %d fields, writer emits %d (set Truncate to allow)",
			rec.Chrom, rec.Start, rec.End, recFields, w.numFields)
		return w.err
	}
	if recFields < w.numFields && !w.opts.AddMissing {
		w.err = errors.Errorf("bed.Writer: record %s:%d-%d has %d fields, writer emits %d (set AddMissing to allow)",
			rec.Chrom, rec.Start, rec.End, recFields, w.numFields)
		return w.err
	}
	if _, err := w.w.WriteString(rec.Line(w.numFields)); err != nil {
		w.err = err
		return w.err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		w.err = err
	}
	return w.err
}

// Flush drains buffered output and returns the first error seen.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}
