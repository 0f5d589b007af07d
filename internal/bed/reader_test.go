package bed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chromosomeCoverage = `track type=bedGraph
NC_000962.3	0	99	12
NC_000962.3	99	120	3
NC_000962.3	120	130	0
`

const coverageInput = chromosomeCoverage + "plasmid\t0\t50\t1\n"

func TestReadCoverage(t *testing.T) {
	r := NewReaderFromReader(strings.NewReader(chromosomeCoverage))
	cov, err := r.ReadCoverage()
	require.NoError(t, err)
	require.Len(t, cov, 3)

	assert.Equal(t, Coverage{Region: Region{Chrom: "NC_000962.3", Start: 99, End: 120}, Depth: 3}, cov[1])
	assert.Equal(t, "NC_000962.3", r.Contig())
	assert.Equal(t, 4, r.LineNumber())
}

func TestReadCoverage_MultipleContigs(t *testing.T) {
	r := NewReaderFromReader(strings.NewReader(coverageInput))
	_, err := r.ReadCoverage()
	assert.ErrorIs(t, err, ErrMultipleContigs)
	assert.Contains(t, err.Error(), "plasmid at line 5")
}

func TestReadRegions_MultipleContigs(t *testing.T) {
	input := "NC_000962.3\t104\t107\nplasmid1\t99\t100\n"

	_, err := NewReaderFromReader(strings.NewReader(input)).ReadRegions()
	assert.ErrorIs(t, err, ErrMultipleContigs)

	r := NewReaderFromReader(strings.NewReader(input))
	r.SetChrom("plasmid1")
	regions, err := r.ReadRegions()
	require.NoError(t, err)
	assert.Equal(t, []Region{{Chrom: "plasmid1", Start: 99, End: 100}}, regions)
}

func TestReadCoverage_ChromFilter(t *testing.T) {
	r := NewReaderFromReader(strings.NewReader(coverageInput))
	r.SetChrom("plasmid")
	cov, err := r.ReadCoverage()
	require.NoError(t, err)
	require.Len(t, cov, 1)
	assert.Equal(t, int64(50), cov[0].End)
}

func TestReadCoverage_FractionalDepth(t *testing.T) {
	r := NewReaderFromReader(strings.NewReader("chr1\t0\t10\t9.75\n"))
	cov, err := r.ReadCoverage()
	require.NoError(t, err)
	require.Len(t, cov, 1)
	assert.Equal(t, 9, cov[0].Depth)
}

func TestReadRegions(t *testing.T) {
	input := "# universal mask\nNC_000962.3\t104\t107\tPE_PGRS\n\nNC_000962.3\t200\t300\n"
	r := NewReaderFromReader(strings.NewReader(input))
	regions, err := r.ReadRegions()
	require.NoError(t, err)
	assert.Equal(t, []Region{
		{Chrom: "NC_000962.3", Start: 104, End: 107},
		{Chrom: "NC_000962.3", Start: 200, End: 300},
	}, regions)
}

func TestReader_ParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		coverage bool
		want     string
	}{
		{"too few columns", "chr1\t10\n", false, "expected at least 3 columns"},
		{"bad start", "chr1\tx\t10\n", false, "invalid start"},
		{"end before start", "chr1\t10\t5\n", false, "invalid end"},
		{"missing depth", "chr1\t0\t10\n", true, "missing depth column"},
		{"bad depth", "chr1\t0\t10\tlow\n", true, "invalid depth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReaderFromReader(strings.NewReader(tt.input))
			var err error
			if tt.coverage {
				_, err = r.ReadCoverage()
			} else {
				_, err = r.ReadRegions()
			}
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, 1, perr.Line)
			assert.Contains(t, perr.Message, tt.want)
		})
	}
}

func TestReadCoverageFile_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.bedgraph.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(coverageInput))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	cov, err := ReadCoverageFile(path, "NC_000962.3")
	require.NoError(t, err)
	assert.Len(t, cov, 3)
}

func TestReadRegionsFile_Plain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mask.bed")
	require.NoError(t, os.WriteFile(path, []byte("chr1\t5\t9\n"), 0644))

	regions, err := ReadRegionsFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, []Region{{Chrom: "chr1", Start: 5, End: 9}}, regions)
}

func TestReadRegionsFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bed")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	regions, err := ReadRegionsFile(path, "")
	require.NoError(t, err)
	assert.Empty(t, regions)
}

func TestNewReader_NotFound(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "missing.bed"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
