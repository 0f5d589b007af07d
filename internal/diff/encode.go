package diff

import (
	"errors"
	"fmt"
	"strings"

	"github.com/inodb/vibe-diff/internal/vcf"
)

// ErrUnrepresentableGenotype reports a heterozygous single-base call whose
// allele pair has no two-base IUPAC code.
var ErrUnrepresentableGenotype = errors.New("unrepresentable heterozygous genotype")

// spanningDeletion is the VCF allele for an upstream deletion; it carries no
// base of its own and is encoded like the explicit missing marker.
const spanningDeletion = "*"

// Encode converts one variant call into zero or more diff records.
//
// Homozygous-reference calls and insertions produce no records. Missing
// calls and heterozygous indels mask the whole reference span. Heterozygous
// SNPs become IUPAC codes. Same-length substitutions are decomposed into
// single-base records at differing positions.
func Encode(v *vcf.Variant) ([]Record, error) {
	gt := v.Genotype
	refLen := int64(len(v.Ref))

	switch {
	case gt.IsHomRef():
		return nil, nil

	case gt.IsMissing():
		return []Record{{Symbol: Masked, Start: v.Pos, Length: refLen}}, nil

	case gt.IsHet():
		if refLen > 1 {
			return []Record{{Symbol: Masked, Start: v.Pos, Length: refLen}}, nil
		}
		a, err := calledAllele(v, gt.Alleles[0])
		if err != nil {
			return nil, err
		}
		b, err := calledAllele(v, gt.Alleles[1])
		if err != nil {
			return nil, err
		}
		if len(a) != 1 || len(b) != 1 {
			// One side is an insertion at a single-base reference.
			return nil, nil
		}
		if a[0] == Masked || b[0] == Masked {
			return []Record{{Symbol: Masked, Start: v.Pos, Length: 1}}, nil
		}
		code, ok := AmbiguityCode(a[0], b[0])
		if !ok {
			return nil, fmt.Errorf("%w: %s:%d %s/%s", ErrUnrepresentableGenotype, v.Chrom, v.Pos, a, b)
		}
		return []Record{{Symbol: code, Start: v.Pos, Length: 1}}, nil
	}

	alt, err := calledAllele(v, nonRefAllele(gt))
	if err != nil {
		return nil, err
	}
	return encodeAllele(v.Pos, strings.ToUpper(v.Ref), alt), nil
}

// nonRefAllele picks the effective allele of a homozygous (or haploid) call.
func nonRefAllele(gt vcf.Genotype) int {
	for _, a := range gt.Alleles {
		if a != 0 {
			return a
		}
	}
	return 0
}

// calledAllele resolves a genotype index to an upper-case allele string.
func calledAllele(v *vcf.Variant, idx int) (string, error) {
	allele, ok := v.Allele(idx)
	if !ok {
		return "", fmt.Errorf("%s:%d: genotype %s refers to allele %d of %d",
			v.Chrom, v.Pos, v.Genotype, idx, len(v.Alts))
	}
	if allele == spanningDeletion {
		return string(Masked), nil
	}
	return strings.ToUpper(allele), nil
}

// encodeAllele applies the reference/alternate length rules to a single
// effective alternate allele.
func encodeAllele(pos int64, ref, alt string) []Record {
	refLen, altLen := int64(len(ref)), int64(len(alt))

	switch {
	case refLen == 1 && altLen == 1:
		if alt == ref {
			return nil
		}
		return []Record{{Symbol: alt[0], Start: pos, Length: 1}}

	case refLen == 1:
		// Insertions cannot be expressed against fixed reference positions.
		return nil

	case altLen == refLen:
		var out []Record
		for i := 0; i < len(ref); i++ {
			if ref[i] != alt[i] {
				out = append(out, Record{Symbol: alt[i], Start: pos + int64(i), Length: 1})
			}
		}
		return out

	case altLen == 1:
		if alt[0] == ref[0] {
			// Anchor base retained, the rest deleted.
			return []Record{{Symbol: Masked, Start: pos + 1, Length: refLen - 1}}
		}
		return []Record{{Symbol: Masked, Start: pos, Length: refLen}}

	default:
		return []Record{{Symbol: Masked, Start: pos, Length: refLen}}
	}
}
