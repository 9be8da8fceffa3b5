package interval

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestParseRegionString(t *testing.T) {
	tests := []struct {
		region  string
		refName string
		start0  PosType
		end     PosType
		success bool
	}{
		{"chr1", "chr1", 0, PosTypeMax - 1, true},
		{"chr20:100", "chr20", 99, 100, true},
		{"chrX:1000-2000", "chrX", 999, 2000, true},
		{"chr15:7-7", "chr15", 6, 7, true},
		{"", "", 0, 0, false},
		{":100-200", "", 0, 0, false},
		{"chr1:0-100", "", 0, 0, false},
		{"chr1:200-100", "", 0, 0, false},
		{"chr1:x-100", "", 0, 0, false},
	}
	for _, tt := range tests {
		result, err := ParseRegionString(tt.region)
		if !tt.success {
			expect.True(t, err != nil, "region %q", tt.region)
			continue
		}
		expect.NoError(t, err, "region %q", tt.region)
		expect.EQ(t, result.RefName, tt.refName, "region %q", tt.region)
		expect.EQ(t, result.Start0, tt.start0, "region %q", tt.region)
		expect.EQ(t, result.End, tt.end, "region %q", tt.region)
	}
}
