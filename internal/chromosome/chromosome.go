// Package chromosome implements the fixed-length binary genotype, its
// decoding into real-valued parameters and the mutation and single-point
// crossover operators.
package chromosome

import (
	"fmt"
	"math"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"bitga/internal/gaconfig"
)

// Rand is the random source the operators draw from. *math/rand.Rand
// satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Chromosome is a bit string of exactly the layout's gene length plus a
// fitness slot. The zero value is the empty chromosome.
type Chromosome struct {
	bits    *bitset.BitSet
	layout  *gaconfig.Layout
	fitness float64
}

// New draws every bit independently with probability 0.5.
func New(layout *gaconfig.Layout, rng Rand) (*Chromosome, error) {
	if layout == nil {
		return nil, fmt.Errorf("%w: layout is required", gaconfig.ErrInvalidArgument)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is required", gaconfig.ErrInvalidArgument)
	}
	n := layout.GeneLength()
	bits := bitset.New(uint(n))
	for i := 0; i < n; i++ {
		if rng.Float64() < 0.5 {
			bits.Set(uint(i))
		}
	}
	return &Chromosome{bits: bits, layout: layout}, nil
}

// NewFromArgs validates an explicit layout the same way a configuration does
// and returns a random chromosome over it.
func NewFromArgs(geneLength, numParameters int, lengths []int, ranges []gaconfig.Range, rng Rand) (*Chromosome, error) {
	layout, err := gaconfig.NewLayout(geneLength, numParameters, lengths, ranges)
	if err != nil {
		return nil, err
	}
	return New(layout, rng)
}

// FromConfig returns a random chromosome over the configuration's layout.
func FromConfig(cfg *gaconfig.Config, rng Rand) (*Chromosome, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is required", gaconfig.ErrInvalidArgument)
	}
	return New(cfg.Layout(), rng)
}

// Parse builds a chromosome from a string of '0' and '1' characters.
func Parse(layout *gaconfig.Layout, s string) (*Chromosome, error) {
	if layout == nil {
		return nil, fmt.Errorf("%w: layout is required", gaconfig.ErrInvalidArgument)
	}
	if len(s) != layout.GeneLength() {
		return nil, fmt.Errorf("%w: bit string has %d positions, layout needs %d", gaconfig.ErrInvalidArgument, len(s), layout.GeneLength())
	}
	bits := bitset.New(uint(len(s)))
	for i, ch := range []byte(s) {
		switch ch {
		case '0':
		case '1':
			bits.Set(uint(i))
		default:
			return nil, fmt.Errorf("%w: invalid bit %q at position %d", gaconfig.ErrInvalidArgument, ch, i)
		}
	}
	return &Chromosome{bits: bits, layout: layout}, nil
}

// Len returns the number of bit positions; 0 for the empty chromosome.
func (c *Chromosome) Len() int {
	if c.layout == nil {
		return 0
	}
	return c.layout.GeneLength()
}

// Bit reports whether position i is set.
func (c *Chromosome) Bit(i int) bool {
	return c.bits.Test(uint(i))
}

func (c *Chromosome) Layout() *gaconfig.Layout {
	return c.layout
}

func (c *Chromosome) Fitness() float64 {
	return c.fitness
}

func (c *Chromosome) SetFitness(fitness float64) {
	c.fitness = fitness
}

// Clone returns an independent copy sharing the same layout.
func (c *Chromosome) Clone() *Chromosome {
	clone := &Chromosome{layout: c.layout, fitness: c.fitness}
	if c.bits != nil {
		clone.bits = c.bits.Clone()
	}
	return clone
}

// Equal reports whether both chromosomes hold the same bits.
func (c *Chromosome) Equal(other *Chromosome) bool {
	if c.Len() != other.Len() {
		return false
	}
	for i := 0; i < c.Len(); i++ {
		if c.Bit(i) != other.Bit(i) {
			return false
		}
	}
	return true
}

// Mutate flips each bit independently when a uniform draw falls below p and
// returns how many bits were flipped.
func (c *Chromosome) Mutate(rng Rand, p float64) (int, error) {
	if err := gaconfig.ValidateRate("mutation", p); err != nil {
		return 0, err
	}
	if rng == nil {
		return 0, fmt.Errorf("%w: random source is required", gaconfig.ErrInvalidArgument)
	}
	flipped := 0
	for i := 0; i < c.Len(); i++ {
		if rng.Float64() < p {
			c.bits.Flip(uint(i))
			flipped++
		}
	}
	return flipped, nil
}

// Crossover draws once against p and, on success, swaps the tails of c and
// partner from a point drawn uniformly from [0, Len()-1]. At least one bit
// is always exchanged when crossover happens. It reports whether a swap took
// place.
func (c *Chromosome) Crossover(rng Rand, partner *Chromosome, p float64) (bool, error) {
	if err := gaconfig.ValidateRate("crossover", p); err != nil {
		return false, err
	}
	if rng == nil {
		return false, fmt.Errorf("%w: random source is required", gaconfig.ErrInvalidArgument)
	}
	if err := c.checkPartner(partner); err != nil {
		return false, err
	}
	if rng.Float64() >= p {
		return false, nil
	}
	if err := c.CrossoverAt(partner, rng.Intn(c.Len())); err != nil {
		return false, err
	}
	return true, nil
}

// CrossoverAt exchanges bits [point, Len()) between c and partner. Applying
// it twice with the same point restores both chromosomes.
func (c *Chromosome) CrossoverAt(partner *Chromosome, point int) error {
	if err := c.checkPartner(partner); err != nil {
		return err
	}
	if point < 0 || point >= c.Len() {
		return fmt.Errorf("%w: crossover point %d outside [0, %d]", gaconfig.ErrInvalidArgument, point, c.Len()-1)
	}
	for i := uint(point); i < uint(c.Len()); i++ {
		a, b := c.bits.Test(i), partner.bits.Test(i)
		if a != b {
			c.bits.SetTo(i, b)
			partner.bits.SetTo(i, a)
		}
	}
	return nil
}

func (c *Chromosome) checkPartner(partner *Chromosome) error {
	if partner == nil {
		return fmt.Errorf("%w: crossover partner is required", gaconfig.ErrInvalidArgument)
	}
	if partner == c {
		return fmt.Errorf("%w: crossover partner must be a distinct chromosome", gaconfig.ErrInvalidArgument)
	}
	if c.Len() == 0 || c.Len() != partner.Len() {
		return fmt.Errorf("%w: crossover requires equal non-zero lengths, got %d and %d", gaconfig.ErrInvalidArgument, c.Len(), partner.Len())
	}
	return nil
}

// Decode maps each parameter segment to its real range. The first bit of a
// segment is its most significant bit and v in [0, 2^len-1] maps to
// low + v*(high-low)/(2^len-1). Segments wider than 53 bits lose integer
// precision.
func (c *Chromosome) Decode() []float64 {
	if c.layout == nil {
		return nil
	}
	values := make([]float64, c.layout.NumParameters())
	for p := range values {
		offset, length, r := c.layout.Segment(p)
		v := 0.0
		for j := 0; j < length; j++ {
			if c.bits.Test(uint(offset + j)) {
				v += math.Ldexp(1, length-1-j)
			}
		}
		denom := math.Ldexp(1, length) - 1
		values[p] = r.Low + v*(r.High-r.Low)/denom
	}
	return values
}

// String renders the bits as '0'/'1' characters, or "empty" for the zero
// value.
func (c *Chromosome) String() string {
	n := c.Len()
	if n == 0 {
		return "empty"
	}
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		if c.Bit(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
