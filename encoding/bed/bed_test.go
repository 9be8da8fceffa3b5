package bed

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/bedlite/interval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBed = `# knownGene excerpt
track name=genes description="test data"
chr1	11873	14409	DDX11L1	0	+
chr1	14361	29370	WASH7P	0	-

chr2	31295	42125
`

func intPtr(v int) *int                           { return &v }
func posPtr(v interval.PosType) *interval.PosType { return &v }

func TestReader(t *testing.T) {
	recs, err := ReadAll(strings.NewReader(testBed))
	require.NoError(t, err)
	require.Equal(t, 3, len(recs))

	assert.Equal(t, Record{
		Chrom:  "chr1",
		Start:  11873,
		End:    14409,
		Name:   "DDX11L1",
		Score:  intPtr(0),
		Strand: interval.StrandPlus,
	}, recs[0])
	assert.Equal(t, interval.StrandMinus, recs[1].Strand)
	assert.Equal(t, Record{Chrom: "chr2", Start: 31295, End: 42125}, recs[2])
}

func TestReaderNumFields(t *testing.T) {
	r := NewReader(strings.NewReader(testBed))
	assert.Equal(t, 0, r.NumFields())
	require.True(t, r.Scan())
	assert.Equal(t, 6, r.NumFields())
}

func TestReaderBed12(t *testing.T) {
	line := "chr1\t1000\t5000\tgeneA\t960\t+\t1200\t4800\t255,0,0\t2\t567,488\t0,3512\n"
	recs, err := ReadAll(strings.NewReader(line))
	require.NoError(t, err)
	require.Equal(t, 1, len(recs))
	rec := recs[0]
	assert.Equal(t, posPtr(1200), rec.ThickStart)
	assert.Equal(t, posPtr(4800), rec.ThickEnd)
	assert.Equal(t, &RGB{R: 255}, rec.ItemRGB)
	assert.Equal(t, []interval.PosType{567, 488}, rec.BlockSizes)
	assert.Equal(t, []interval.PosType{0, 3512}, rec.BlockStarts)
	assert.Equal(t, 12, rec.NumFields())
	// Round trip.
	assert.Equal(t, strings.TrimSuffix(line, "\n"), rec.Line(12))
}

func TestReaderMissingSentinels(t *testing.T) {
	recs, err := ReadAll(strings.NewReader("chr1\t10\t20\t.\t.\t-\n"))
	require.NoError(t, err)
	require.Equal(t, 1, len(recs))
	assert.Equal(t, "", recs[0].Name)
	assert.Nil(t, recs[0].Score)
	assert.Equal(t, interval.StrandMinus, recs[0].Strand)
	assert.Equal(t, "chr1\t10\t20\t.\t.\t-", recs[0].Line(6))
}

func TestReaderErrors(t *testing.T) {
	tests := []string{
		// Too few fields, non-numeric coordinate, negative start, empty
		// record, end before start, bad strand.
		"chr1\t10\n",
		"chr1\tten\t20\n",
		"chr1\t-5\t20\n",
		"chr1\t20\t20\n",
		"chr1\t30\t20\n",
		"chr1\t10\t20\tx\t0\t*\n",
		// thickStart without thickEnd.
		"chr1\t10\t20\tx\t0\t+\t12\t.\n",
		// Short RGB.
		"chr1\t10\t20\tx\t0\t+\t10\t20\t1,2\n",
		// Block end != record end, count mismatch, first block offset != 0,
		// incomplete block columns.
		"chr1\t0\t20\tx\t0\t+\t0\t20\t.\t2\t5,4\t0,15\n",
		"chr1\t0\t20\tx\t0\t+\t0\t20\t.\t3\t5,15\t0,5\n",
		"chr1\t0\t20\tx\t0\t+\t0\t20\t.\t2\t5,15\t5,5\n",
		"chr1\t0\t20\tx\t0\t+\t0\t20\t.\t2\n",
	}
	for _, in := range tests {
		_, err := ReadAll(strings.NewReader(in))
		assert.Error(t, err, "input %q", in)
		assert.Contains(t, err.Error(), "line 1", "input %q", in)
	}
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, WriterOpts{})
	require.NoError(t, err)
	rec := Record{Chrom: "chr1", Start: 100, End: 200, Name: "a", Strand: interval.StrandPlus}
	require.NoError(t, w.Write(&rec))
	// First record fixed the writer at 6 columns; a narrower record needs
	// AddMissing.
	bare := Record{Chrom: "chr2", Start: 5, End: 10}
	assert.Error(t, w.Write(&bare))

	buf.Reset()
	w, err = NewWriter(&buf, WriterOpts{NumFields: 6, AddMissing: true})
	require.NoError(t, err)
	require.NoError(t, w.Write(&rec))
	require.NoError(t, w.Write(&bare))
	require.NoError(t, w.Flush())
	assert.Equal(t, "chr1\t100\t200\ta\t.\t+\nchr2\t5\t10\t.\t.\t.\n", buf.String())

	buf.Reset()
	w, err = NewWriter(&buf, WriterOpts{NumFields: 3, Truncate: true})
	require.NoError(t, err)
	require.NoError(t, w.Write(&rec))
	require.NoError(t, w.Flush())
	assert.Equal(t, "chr1\t100\t200\n", buf.String())

	_, err = NewWriter(&buf, WriterOpts{NumFields: 13})
	assert.Error(t, err)
}

func TestIntervalConversion(t *testing.T) {
	rec := Record{Chrom: "chr1", Start: 100, End: 200, Name: "a", Strand: interval.StrandMinus}
	iv := rec.Interval()
	assert.Equal(t, interval.Interval{
		RefName: "chr1",
		Start0:  100,
		End:     200,
		Strand:  interval.StrandMinus,
		Name:    "a",
	}, iv)
	back := RecordFromInterval(iv)
	assert.Equal(t, rec, back)
}

func TestNewDetector(t *testing.T) {
	recs, err := ReadAll(strings.NewReader(testBed))
	require.NoError(t, err)

	d := interval.NewDetector(interval.DetectorOpts{})
	for i := range recs {
		iv := recs[i].Interval()
		iv.Payload = recs[i]
		require.NoError(t, d.Add(iv))
	}
	d.Index()

	hits, err := d.Overlapping(interval.Interval{RefName: "chr1", Start0: 14000, End: 15000})
	require.NoError(t, err)
	require.Equal(t, 2, len(hits))
	assert.Equal(t, "DDX11L1", hits[0].Name)
	assert.Equal(t, recs[1], hits[1].Payload)
}
