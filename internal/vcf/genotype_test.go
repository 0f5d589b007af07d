package vcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGenotype(t *testing.T) {
	tests := []struct {
		gt      string
		alleles []int
		phased  bool
		missing bool
		homRef  bool
		het     bool
	}{
		{"0/0", []int{0, 0}, false, false, true, false},
		{"0/1", []int{0, 1}, false, false, false, true},
		{"1|0", []int{1, 0}, true, false, false, true},
		{"1/1", []int{1, 1}, false, false, false, false},
		{"1/2", []int{1, 2}, false, false, false, true},
		{"./.", []int{MissingAllele, MissingAllele}, false, true, false, false},
		{"./1", []int{MissingAllele, 1}, false, true, false, false},
		{".", []int{MissingAllele}, false, true, false, false},
		{"1", []int{1}, false, false, false, false},
		{"0", []int{0}, false, false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.gt, func(t *testing.T) {
			g, err := ParseGenotype(tt.gt)
			require.NoError(t, err)
			assert.Equal(t, tt.alleles, g.Alleles)
			assert.Equal(t, tt.phased, g.Phased)
			assert.Equal(t, tt.missing, g.IsMissing())
			assert.Equal(t, tt.homRef, g.IsHomRef())
			assert.Equal(t, tt.het, g.IsHet())
			assert.Equal(t, tt.gt, g.String())
		})
	}
}

func TestParseGenotype_Invalid(t *testing.T) {
	for _, gt := range []string{"", "a/b", "0/-1", "1/"} {
		_, err := ParseGenotype(gt)
		assert.Error(t, err, "genotype %q", gt)
	}
}

func TestVariant_Allele(t *testing.T) {
	v := &Variant{Ref: "A", Alts: []string{"G", "T"}}

	tests := []struct {
		idx  int
		want string
		ok   bool
	}{
		{0, "A", true},
		{1, "G", true},
		{2, "T", true},
		{3, "", false},
		{MissingAllele, "", false},
	}
	for _, tt := range tests {
		got, ok := v.Allele(tt.idx)
		assert.Equal(t, tt.ok, ok, "idx %d", tt.idx)
		assert.Equal(t, tt.want, got, "idx %d", tt.idx)
	}
}

func TestVariant_NormalizeChrom(t *testing.T) {
	tests := []struct {
		name  string
		chrom string
		want  string
	}{
		{"with chr prefix", "chr12", "12"},
		{"without chr prefix", "12", "12"},
		{"refseq accession", "NC_000962.3", "NC_000962.3"},
		{"empty", "", ""},
		{"short chr", "ch", "ch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Variant{Chrom: tt.chrom}
			if got := v.NormalizeChrom(); got != tt.want {
				t.Errorf("NormalizeChrom() = %v, want %v", got, tt.want)
			}
		})
	}
}
