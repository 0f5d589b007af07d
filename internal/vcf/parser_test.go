package vcf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_SingleSample(t *testing.T) {
	parser, err := NewParser(filepath.Join("testdata", "single_sample.vcf"))
	require.NoError(t, err)
	defer parser.Close()

	assert.Equal(t, "SRR0001", parser.SampleName())

	var variants []*Variant
	for {
		v, err := parser.Next()
		require.NoError(t, err)
		if v == nil {
			break
		}
		variants = append(variants, v)
	}
	require.Len(t, variants, 5)

	snp := variants[0]
	assert.Equal(t, "NC_000962.3", snp.Chrom)
	assert.Equal(t, int64(100), snp.Pos)
	assert.Equal(t, "A", snp.Ref)
	assert.Equal(t, []string{"G"}, snp.Alts)
	assert.Equal(t, []int{1, 1}, snp.Genotype.Alleles)

	het := variants[1]
	assert.True(t, het.Genotype.IsHet())

	missing := variants[3]
	assert.Empty(t, missing.Alts)
	assert.True(t, missing.Genotype.IsMissing())

	multi := variants[4]
	assert.True(t, multi.IsMultiAllelic())
	allele, ok := multi.Allele(2)
	assert.True(t, ok)
	assert.Equal(t, "C", allele)
}

func TestParser_Header(t *testing.T) {
	parser, err := NewParser(filepath.Join("testdata", "single_sample.vcf"))
	require.NoError(t, err)
	defer parser.Close()

	header := parser.Header()
	require.NotEmpty(t, header)
	assert.Equal(t, "##fileformat=VCFv4.2", header[0])
	assert.True(t, strings.HasPrefix(header[len(header)-1], "#CHROM"))
}

func TestParser_Gzip(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "single_sample.vcf"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sample.vcf.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write(src)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	parser, err := NewParser(path)
	require.NoError(t, err)
	defer parser.Close()

	v, err := parser.Next()
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, int64(100), v.Pos)
}

func TestParser_MultiSampleRejected(t *testing.T) {
	_, err := NewParser(filepath.Join("testdata", "multi_sample.vcf"))
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "single-sample")
}

func TestParser_MalformedLines(t *testing.T) {
	header := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tS1\n"

	tests := []struct {
		name string
		line string
		want string
	}{
		{"too few columns", "1\t10\t.\tA\tG\t.\t.\t.\n", "expected 10 columns"},
		{"bad position", "1\tx\t.\tA\tG\t.\t.\t.\tGT\t1/1\n", "invalid position"},
		{"no GT", "1\t10\t.\tA\tG\t.\t.\t.\tDP\t12\n", "no GT field"},
		{"bad genotype", "1\t10\t.\tA\tG\t.\t.\t.\tGT\t1/x\n", "invalid genotype"},
		{"missing ref", "1\t10\t.\t.\tG\t.\t.\t.\tGT\t1/1\n", "missing reference"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser, err := NewParserFromReader(strings.NewReader(header + tt.line))
			require.NoError(t, err)

			_, err = parser.Next()
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, 2, perr.Line)
			assert.Contains(t, perr.Message, tt.want)
		})
	}
}

func TestParser_TruncatedSampleColumn(t *testing.T) {
	input := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tS1\n" +
		"1\t10\t.\tA\tG\t.\t.\t.\tDP:GT\t7"
	parser, err := NewParserFromReader(strings.NewReader(input))
	require.NoError(t, err)

	v, err := parser.Next()
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.True(t, v.Genotype.IsMissing())

	v, err = parser.Next()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestParser_NoHeader(t *testing.T) {
	_, err := NewParserFromReader(strings.NewReader("1\t10\t.\tA\tG\t.\t.\t.\tGT\t1/1\n"))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "expected #CHROM header line", perr.Message)
}

func TestParseError(t *testing.T) {
	err := &ParseError{
		Line:    42,
		Message: "expected 10 columns, found 7",
	}

	expected := "vcf parse error at line 42: expected 10 columns, found 7"
	if err.Error() != expected {
		t.Errorf("Error message mismatch: got %q, want %q", err.Error(), expected)
	}
}
