// Package population materializes a set of independently random chromosomes
// from one configuration and renders them as a table.
package population

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"bitga/internal/chromosome"
	"bitga/internal/fitness"
	"bitga/internal/gaconfig"
)

const fitnessPlaceholder = "..."

// Population owns its chromosomes exclusively. All of them share the
// configuration's layout.
type Population struct {
	layout      *gaconfig.Layout
	individuals []*chromosome.Chromosome

	// best is the elitism slot. Nothing in this package populates it; a
	// generational driver may.
	best *chromosome.Chromosome

	evaluated bool
}

// New draws cfg.PopulationSize() random chromosomes.
func New(cfg *gaconfig.Config, rng chromosome.Rand) (*Population, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is required", gaconfig.ErrInvalidArgument)
	}
	individuals := make([]*chromosome.Chromosome, cfg.PopulationSize())
	for i := range individuals {
		c, err := chromosome.FromConfig(cfg, rng)
		if err != nil {
			return nil, fmt.Errorf("individual %d: %w", i+1, err)
		}
		individuals[i] = c
	}
	return &Population{layout: cfg.Layout(), individuals: individuals}, nil
}

func (p *Population) Len() int {
	return len(p.individuals)
}

func (p *Population) At(i int) *chromosome.Chromosome {
	return p.individuals[i]
}

// Individuals returns the chromosomes in order. The slice is a copy; the
// chromosomes are not.
func (p *Population) Individuals() []*chromosome.Chromosome {
	return append([]*chromosome.Chromosome(nil), p.individuals...)
}

func (p *Population) Layout() *gaconfig.Layout {
	return p.layout
}

// Best returns the elitism candidate, which is never set here.
func (p *Population) Best() (*chromosome.Chromosome, bool) {
	return p.best, p.best != nil
}

// Evaluated reports whether fitness values came from an evaluator.
func (p *Population) Evaluated() bool {
	return p.evaluated
}

// Evaluate decodes every chromosome and stores the evaluator's score as its
// fitness.
func (p *Population) Evaluate(ctx context.Context, evaluator fitness.Evaluator) error {
	if evaluator == nil {
		return fmt.Errorf("%w: evaluator is required", gaconfig.ErrInvalidArgument)
	}
	for i, c := range p.individuals {
		if err := ctx.Err(); err != nil {
			return err
		}
		score, err := evaluator.Evaluate(ctx, c.Decode())
		if err != nil {
			return fmt.Errorf("evaluate individual %d: %w", i+1, err)
		}
		c.SetFitness(score)
	}
	p.evaluated = true
	return nil
}

// Vary runs one variation pass: adjacent pairs (0,1), (2,3), ... are crossed
// over with crossoverRate, then every chromosome is mutated with
// mutationRate. Fitness values are stale afterwards.
func (p *Population) Vary(rng chromosome.Rand, crossoverRate, mutationRate float64) error {
	if err := gaconfig.ValidateRate("crossover", crossoverRate); err != nil {
		return err
	}
	if err := gaconfig.ValidateRate("mutation", mutationRate); err != nil {
		return err
	}
	for i := 0; i+1 < len(p.individuals); i += 2 {
		if _, err := p.individuals[i].Crossover(rng, p.individuals[i+1], crossoverRate); err != nil {
			return fmt.Errorf("crossover %d/%d: %w", i+1, i+2, err)
		}
	}
	for i, c := range p.individuals {
		if _, err := c.Mutate(rng, mutationRate); err != nil {
			return fmt.Errorf("mutate %d: %w", i+1, err)
		}
	}
	p.evaluated = false
	return nil
}

// Summary describes the current fitness values.
type Summary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

func (p *Population) Summary() Summary {
	if len(p.individuals) == 0 {
		return Summary{}
	}
	values := make([]float64, len(p.individuals))
	for i, c := range p.individuals {
		values[i] = c.Fitness()
	}
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		std = 0
	}
	return Summary{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(values),
		Max:    floats.Max(values),
	}
}

// Render writes one row per individual under the header
// Index, Individuals, Decoded, Fitness. Fitness shows a placeholder until
// the population has been evaluated.
func (p *Population) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "Index\tIndividuals\tDecoded\tFitness"); err != nil {
		return err
	}
	for i, c := range p.individuals {
		fitnessCol := fitnessPlaceholder
		if p.evaluated {
			fitnessCol = formatFloat(c.Fitness())
		}
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, c.String(), FormatDecoded(c.Decode()), fitnessCol); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// FormatDecoded joins decoded values with single spaces.
func FormatDecoded(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatFloat(v)
	}
	return strings.Join(parts, " ")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
