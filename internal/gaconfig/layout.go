package gaconfig

import (
	"fmt"
	"math"
)

// Range is the closed real interval a parameter segment decodes into.
type Range struct {
	Low  float64 `json:"low" toml:"low"`
	High float64 `json:"high" toml:"high"`
}

// Layout is the read-only genotype layout shared by every chromosome built
// from the same configuration.
type Layout struct {
	geneLength int
	lengths    []int
	ranges     []Range
	offsets    []int
}

// NewLayout validates the genotype layout and freezes it.
func NewLayout(geneLength, numParameters int, lengths []int, ranges []Range) (*Layout, error) {
	if geneLength <= 0 {
		return nil, fmt.Errorf("%w: genotype length cannot be 0", ErrLength)
	}
	if numParameters <= 0 {
		return nil, fmt.Errorf("%w: number of parameters cannot be 0", ErrLength)
	}
	if err := validateLengths(geneLength, numParameters, lengths); err != nil {
		return nil, err
	}
	if err := validateRanges(numParameters, ranges); err != nil {
		return nil, err
	}

	offsets := make([]int, len(lengths))
	offset := 0
	for i, n := range lengths {
		offsets[i] = offset
		offset += n
	}
	return &Layout{
		geneLength: geneLength,
		lengths:    append([]int(nil), lengths...),
		ranges:     append([]Range(nil), ranges...),
		offsets:    offsets,
	}, nil
}

func validateLengths(geneLength, numParameters int, lengths []int) error {
	if len(lengths) == 0 {
		return fmt.Errorf("%w: parameter lengths cannot be empty", ErrLength)
	}
	for i, n := range lengths {
		if n <= 0 {
			return fmt.Errorf("%w: parameter length at index %d cannot be 0", ErrLength, i)
		}
	}
	if len(lengths) != numParameters {
		return fmt.Errorf("%w: got %d parameter lengths for %d parameters", ErrInvalidArgument, len(lengths), numParameters)
	}
	total := 0
	for _, n := range lengths {
		total += n
	}
	if total != geneLength {
		return fmt.Errorf("%w: sum of parameter lengths %d must match genotype length %d", ErrInvalidArgument, total, geneLength)
	}
	return nil
}

func validateRanges(numParameters int, ranges []Range) error {
	if len(ranges) == 0 {
		return fmt.Errorf("%w: parameter ranges cannot be empty", ErrLength)
	}
	if len(ranges) != numParameters {
		return fmt.Errorf("%w: got %d parameter ranges for %d parameters", ErrInvalidArgument, len(ranges), numParameters)
	}
	for i, r := range ranges {
		if math.IsInf(r.Low, 0) || math.IsInf(r.High, 0) || !(r.Low < r.High) {
			return fmt.Errorf("%w: invalid parameter range at index %d: [%g, %g]", ErrInvalidArgument, i, r.Low, r.High)
		}
	}
	return nil
}

func (l *Layout) GeneLength() int {
	return l.geneLength
}

func (l *Layout) NumParameters() int {
	return len(l.lengths)
}

func (l *Layout) Lengths() []int {
	return append([]int(nil), l.lengths...)
}

func (l *Layout) Ranges() []Range {
	return append([]Range(nil), l.ranges...)
}

// Offset returns the first bit index of parameter i.
func (l *Layout) Offset(i int) int {
	return l.offsets[i]
}

// Segment returns the bit offset, bit length and range of parameter i.
func (l *Layout) Segment(i int) (offset, length int, r Range) {
	return l.offsets[i], l.lengths[i], l.ranges[i]
}
