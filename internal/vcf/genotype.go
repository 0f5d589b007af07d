package vcf

import (
	"fmt"
	"strconv"
	"strings"
)

// MissingAllele marks a "." entry in a genotype.
const MissingAllele = -1

// Genotype holds the allele indices of a GT field, e.g. "0/1" or "1|1".
// Haploid calls have a single entry.
type Genotype struct {
	Alleles []int
	Phased  bool
}

// ParseGenotype parses a GT value such as "0/1", "1|1", "./." or "1".
func ParseGenotype(gt string) (Genotype, error) {
	if gt == "" {
		return Genotype{}, fmt.Errorf("empty genotype")
	}

	var g Genotype
	sep := "/"
	if strings.Contains(gt, "|") {
		sep = "|"
		g.Phased = true
	}

	for _, part := range strings.Split(gt, sep) {
		if part == "." {
			g.Alleles = append(g.Alleles, MissingAllele)
			continue
		}
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 0 {
			return Genotype{}, fmt.Errorf("invalid genotype %q", gt)
		}
		g.Alleles = append(g.Alleles, idx)
	}
	return g, nil
}

// IsMissing returns true if any allele of the call is missing.
func (g Genotype) IsMissing() bool {
	if len(g.Alleles) == 0 {
		return true
	}
	for _, a := range g.Alleles {
		if a == MissingAllele {
			return true
		}
	}
	return false
}

// IsHomRef returns true if every called allele is the reference.
func (g Genotype) IsHomRef() bool {
	if g.IsMissing() {
		return false
	}
	for _, a := range g.Alleles {
		if a != 0 {
			return false
		}
	}
	return true
}

// IsHet returns true if the call carries two different alleles.
func (g Genotype) IsHet() bool {
	if g.IsMissing() || len(g.Alleles) < 2 {
		return false
	}
	for _, a := range g.Alleles[1:] {
		if a != g.Alleles[0] {
			return true
		}
	}
	return false
}

// String formats the genotype the way it appears in a VCF.
func (g Genotype) String() string {
	sep := "/"
	if g.Phased {
		sep = "|"
	}
	parts := make([]string, len(g.Alleles))
	for i, a := range g.Alleles {
		if a == MissingAllele {
			parts[i] = "."
		} else {
			parts[i] = strconv.Itoa(a)
		}
	}
	return strings.Join(parts, sep)
}
