package gaconfig

import "fmt"

// Builder accumulates configuration fields one at a time. Each setter checks
// the preconditions available at that point and never commits a rejected
// value. The first failure is kept and turns every later setter into a no-op.
// Build runs the full validation of New, so setter order cannot produce an
// invalid Config.
type Builder struct {
	params Params
	err    error
}

// NewBuilder returns a builder holding the default rates and sizes.
func NewBuilder() *Builder {
	return &Builder{params: DefaultParams()}
}

// Err returns the first setter failure, if any.
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) fail(err error) *Builder {
	b.err = err
	return b
}

func (b *Builder) SetGeneLength(length int) *Builder {
	if b.err != nil {
		return b
	}
	if length <= 0 {
		return b.fail(fmt.Errorf("%w: genotype length cannot be 0", ErrLength))
	}
	b.params.GeneLength = length
	return b
}

func (b *Builder) SetNumParameters(number int) *Builder {
	if b.err != nil {
		return b
	}
	if number <= 0 {
		return b.fail(fmt.Errorf("%w: number of parameters cannot be 0", ErrLength))
	}
	b.params.NumParameters = number
	return b
}

// SetParameterLengths requires the genotype length to be set first. When the
// parameter count is already known the lengths must match it as well.
func (b *Builder) SetParameterLengths(lengths []int) *Builder {
	if b.err != nil {
		return b
	}
	if len(lengths) == 0 {
		return b.fail(fmt.Errorf("%w: parameter lengths cannot be empty", ErrLength))
	}
	if b.params.GeneLength == 0 {
		return b.fail(fmt.Errorf("%w: must set genotype length first", ErrInvalidArgument))
	}
	numParameters := b.params.NumParameters
	if numParameters == 0 {
		numParameters = len(lengths)
	}
	if err := validateLengths(b.params.GeneLength, numParameters, lengths); err != nil {
		return b.fail(err)
	}
	b.params.ParameterLengths = append([]int(nil), lengths...)
	return b
}

// SetParameterRanges requires the number of parameters to be set first.
func (b *Builder) SetParameterRanges(ranges []Range) *Builder {
	if b.err != nil {
		return b
	}
	if len(ranges) == 0 {
		return b.fail(fmt.Errorf("%w: parameter ranges cannot be empty", ErrLength))
	}
	if b.params.NumParameters == 0 {
		return b.fail(fmt.Errorf("%w: must set number of parameters first", ErrInvalidArgument))
	}
	if err := validateRanges(b.params.NumParameters, ranges); err != nil {
		return b.fail(err)
	}
	b.params.ParameterRanges = append([]Range(nil), ranges...)
	return b
}

func (b *Builder) SetCrossoverRate(rate float64) *Builder {
	if b.err != nil {
		return b
	}
	if err := ValidateRate("crossover", rate); err != nil {
		return b.fail(err)
	}
	b.params.CrossoverRate = rate
	return b
}

func (b *Builder) SetMutationRate(rate float64) *Builder {
	if b.err != nil {
		return b
	}
	if err := ValidateRate("mutation", rate); err != nil {
		return b.fail(err)
	}
	b.params.MutationRate = rate
	return b
}

func (b *Builder) SetPopulationSize(size int) *Builder {
	if b.err != nil {
		return b
	}
	if size <= 0 {
		return b.fail(fmt.Errorf("%w: population must be a value greater than zero", ErrInvalidArgument))
	}
	b.params.PopulationSize = size
	return b
}

func (b *Builder) SetNumGenerations(number int) *Builder {
	if b.err != nil {
		return b
	}
	if number <= 0 {
		return b.fail(fmt.Errorf("%w: number of generations must be a value greater than zero", ErrInvalidArgument))
	}
	b.params.NumGenerations = number
	return b
}

// Build returns the first setter failure or the result of New on the
// accumulated fields.
func (b *Builder) Build() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}
	return New(b.params)
}
