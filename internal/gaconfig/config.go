package gaconfig

import (
	"fmt"
	"math"
)

const (
	DefaultCrossoverRate  = 0.9
	DefaultMutationRate   = 0.01
	DefaultPopulationSize = 100
	DefaultNumGenerations = 200
)

// Params carries every configuration field at once. It is the input of New
// and the shape config files decode into.
type Params struct {
	GeneLength       int     `json:"gene_length" toml:"gene_length"`
	NumParameters    int     `json:"num_parameters" toml:"num_parameters"`
	ParameterLengths []int   `json:"parameter_lengths" toml:"parameter_lengths"`
	ParameterRanges  []Range `json:"parameter_ranges" toml:"parameter_ranges"`
	CrossoverRate    float64 `json:"crossover_rate" toml:"crossover_rate"`
	MutationRate     float64 `json:"mutation_rate" toml:"mutation_rate"`
	PopulationSize   int     `json:"population_size" toml:"population_size"`
	NumGenerations   int     `json:"num_generations" toml:"num_generations"`
}

// DefaultParams returns the operator and population defaults with an empty
// genotype layout.
func DefaultParams() Params {
	return Params{
		CrossoverRate:  DefaultCrossoverRate,
		MutationRate:   DefaultMutationRate,
		PopulationSize: DefaultPopulationSize,
		NumGenerations: DefaultNumGenerations,
	}
}

// Config is a validated, immutable algorithm configuration.
type Config struct {
	layout         *Layout
	crossoverRate  float64
	mutationRate   float64
	populationSize int
	numGenerations int
}

// New validates all fields together and returns the frozen configuration.
// No partially valid Config is ever returned.
func New(p Params) (*Config, error) {
	layout, err := NewLayout(p.GeneLength, p.NumParameters, p.ParameterLengths, p.ParameterRanges)
	if err != nil {
		return nil, err
	}
	if err := ValidateRate("crossover", p.CrossoverRate); err != nil {
		return nil, err
	}
	if err := ValidateRate("mutation", p.MutationRate); err != nil {
		return nil, err
	}
	if p.PopulationSize <= 0 {
		return nil, fmt.Errorf("%w: population size must be greater than zero, got %d", ErrInvalidArgument, p.PopulationSize)
	}
	if p.NumGenerations <= 0 {
		return nil, fmt.Errorf("%w: number of generations must be greater than zero, got %d", ErrInvalidArgument, p.NumGenerations)
	}
	return &Config{
		layout:         layout,
		crossoverRate:  p.CrossoverRate,
		mutationRate:   p.MutationRate,
		populationSize: p.PopulationSize,
		numGenerations: p.NumGenerations,
	}, nil
}

// ValidateRate checks that a probability lies in [0, 1].
func ValidateRate(name string, rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return fmt.Errorf("%w: probability of %s must be between 0.0 and 1.0, got %g", ErrInvalidArgument, name, rate)
	}
	return nil
}

func (c *Config) GeneLength() int          { return c.layout.GeneLength() }
func (c *Config) NumParameters() int       { return c.layout.NumParameters() }
func (c *Config) ParameterLengths() []int  { return c.layout.Lengths() }
func (c *Config) ParameterRanges() []Range { return c.layout.Ranges() }
func (c *Config) CrossoverRate() float64   { return c.crossoverRate }
func (c *Config) MutationRate() float64    { return c.mutationRate }
func (c *Config) PopulationSize() int      { return c.populationSize }
func (c *Config) NumGenerations() int      { return c.numGenerations }

// Layout returns the shared genotype layout.
func (c *Config) Layout() *Layout {
	return c.layout
}

// Params returns a copy of the fields the configuration was built from.
func (c *Config) Params() Params {
	return Params{
		GeneLength:       c.GeneLength(),
		NumParameters:    c.NumParameters(),
		ParameterLengths: c.ParameterLengths(),
		ParameterRanges:  c.ParameterRanges(),
		CrossoverRate:    c.crossoverRate,
		MutationRate:     c.mutationRate,
		PopulationSize:   c.populationSize,
		NumGenerations:   c.numGenerations,
	}
}
