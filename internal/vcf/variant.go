// Package vcf provides single-sample VCF file parsing functionality.
package vcf

// Variant represents a single genomic variant call from a single-sample VCF file.
type Variant struct {
	Chrom    string   // Chromosome name (e.g., "NC_000962.3", "chr12")
	Pos      int64    // 1-based genomic position
	ID       string   // Variant identifier (e.g., rs ID)
	Ref      string   // Reference allele
	Alts     []string // Alternate alleles, in ALT column order
	Genotype Genotype // Genotype of the (only) sample
}

// Allele returns the allele string for a genotype index: 0 is the reference,
// 1..len(Alts) the alternates. ok is false for missing or out-of-range indices.
func (v *Variant) Allele(idx int) (allele string, ok bool) {
	switch {
	case idx == 0:
		return v.Ref, true
	case idx > 0 && idx <= len(v.Alts):
		return v.Alts[idx-1], true
	default:
		return "", false
	}
}

// IsMultiAllelic returns true if the variant carries more than one alternate allele.
func (v *Variant) IsMultiAllelic() bool {
	return len(v.Alts) > 1
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (v *Variant) NormalizeChrom() string {
	if len(v.Chrom) > 3 && v.Chrom[:3] == "chr" {
		return v.Chrom[3:]
	}
	return v.Chrom
}
