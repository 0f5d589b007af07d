package diff

// iupacPairs maps an unordered pair of distinct bases, as a bitmask, to
// the two-base IUPAC ambiguity code.
var iupacPairs = map[byte]byte{
	maskA | maskG: 'R',
	maskC | maskT: 'Y',
	maskC | maskG: 'S',
	maskA | maskT: 'W',
	maskG | maskT: 'K',
	maskA | maskC: 'M',
}

const (
	maskA = 1
	maskC = 2
	maskG = 4
	maskT = 8
)

func baseMask(b byte) byte {
	switch b {
	case 'A', 'a':
		return maskA
	case 'C', 'c':
		return maskC
	case 'G', 'g':
		return maskG
	case 'T', 't':
		return maskT
	}
	return 0
}

// AmbiguityCode returns the IUPAC code for a heterozygous pair of bases.
// ok is false unless a and b are two different unambiguous nucleotides.
func AmbiguityCode(a, b byte) (code byte, ok bool) {
	ma, mb := baseMask(a), baseMask(b)
	if ma == 0 || mb == 0 || ma == mb {
		return 0, false
	}
	code, ok = iupacPairs[ma|mb]
	return code, ok
}
