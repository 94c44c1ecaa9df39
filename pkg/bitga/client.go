// Package bitga is the embedding surface for the binary genetic-algorithm
// core: it builds configurations and populations, applies caller-chosen
// fitness functions and keeps a record of every sampling run.
package bitga

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bitga/internal/chromosome"
	"bitga/internal/fitness"
	"bitga/internal/gaconfig"
	"bitga/internal/model"
	"bitga/internal/population"
	"bitga/internal/rng"
	"bitga/internal/storage"
)

const defaultDBPath = "bitga.db"

type Options struct {
	StoreKind string
	DBPath    string
	Logger    *slog.Logger
}

type Client struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time
}

// SampleRequest describes one population sample. Seed 0 draws a fresh seed;
// the seed actually used is reported back. An empty Fitness leaves the
// fitness column unevaluated.
type SampleRequest struct {
	Params  gaconfig.Params
	Seed    int64
	Fitness string
	Vary    bool
	Out     io.Writer
}

type SampleSummary struct {
	RunID      string
	Seed       int64
	Population *population.Population
	Summary    *population.Summary
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:  store,
		logger: logger.With("store", storeKind),
		now:    time.Now,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

func (c *Client) Reset(ctx context.Context) error {
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	if err := c.store.Reset(ctx); err != nil {
		return err
	}
	c.logger.Info("store reset")
	return nil
}

// Sample builds a configuration and a random population from req, optionally
// runs one variation pass and a fitness evaluation, renders the population to
// req.Out and stores a run record.
func (c *Client) Sample(ctx context.Context, req SampleRequest) (SampleSummary, error) {
	cfg, err := gaconfig.New(req.Params)
	if err != nil {
		return SampleSummary{}, err
	}
	var evaluator fitness.Evaluator
	if req.Fitness != "" {
		evaluator, err = fitness.Resolve(req.Fitness)
		if err != nil {
			return SampleSummary{}, err
		}
	}
	if err := c.store.Init(ctx); err != nil {
		return SampleSummary{}, err
	}

	r, seed := rng.New(req.Seed)
	pop, err := population.New(cfg, r)
	if err != nil {
		return SampleSummary{}, err
	}
	if req.Vary {
		if err := pop.Vary(r, cfg.CrossoverRate(), cfg.MutationRate()); err != nil {
			return SampleSummary{}, err
		}
	}

	var summary *population.Summary
	if evaluator != nil {
		if err := pop.Evaluate(ctx, evaluator); err != nil {
			return SampleSummary{}, err
		}
		s := pop.Summary()
		summary = &s
	}

	if req.Out != nil {
		if err := pop.Render(req.Out); err != nil {
			return SampleSummary{}, fmt.Errorf("render population: %w", err)
		}
	}

	run := storage.Stamp(model.RunRecord{
		ID:           uuid.NewString(),
		CreatedAtUTC: c.now().UTC().Format(time.RFC3339Nano),
		Command:      "population",
		Seed:         seed,
		Fitness:      req.Fitness,
		Varied:       req.Vary,
		Config:       configRecord(cfg),
	})
	if summary != nil {
		run.Summary = &model.FitnessSummary{
			Mean:   summary.Mean,
			StdDev: summary.StdDev,
			Min:    summary.Min,
			Max:    summary.Max,
		}
	}
	if err := c.store.SaveRun(ctx, run); err != nil {
		return SampleSummary{}, fmt.Errorf("save run: %w", err)
	}
	c.logger.Info("population sampled",
		"run_id", run.ID,
		"seed", seed,
		"size", pop.Len(),
		"gene_length", cfg.GeneLength(),
		"fitness", req.Fitness,
		"varied", req.Vary,
	)

	return SampleSummary{
		RunID:      run.ID,
		Seed:       seed,
		Population: pop,
		Summary:    summary,
	}, nil
}

// Decode parses a bit string against the layout in params and returns its
// decoded parameter values. Only the layout fields of params are used.
func (c *Client) Decode(params gaconfig.Params, bits string) ([]float64, error) {
	layout, err := gaconfig.NewLayout(params.GeneLength, params.NumParameters, params.ParameterLengths, params.ParameterRanges)
	if err != nil {
		return nil, err
	}
	chrom, err := chromosome.Parse(layout, bits)
	if err != nil {
		return nil, err
	}
	return chrom.Decode(), nil
}

func (c *Client) Runs(ctx context.Context, limit int) ([]model.RunRecord, error) {
	if limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}
	return c.store.ListRuns(ctx, limit)
}

func (c *Client) Run(ctx context.Context, id string) (model.RunRecord, error) {
	if id == "" {
		return model.RunRecord{}, errors.New("run id is required")
	}
	if err := c.store.Init(ctx); err != nil {
		return model.RunRecord{}, err
	}
	run, ok, err := c.store.GetRun(ctx, id)
	if err != nil {
		return model.RunRecord{}, err
	}
	if !ok {
		return model.RunRecord{}, fmt.Errorf("run not found: %s", id)
	}
	return run, nil
}

// Functions lists the registered fitness functions.
func (c *Client) Functions() []string {
	return fitness.Names()
}

func configRecord(cfg *gaconfig.Config) model.ConfigRecord {
	ranges := cfg.ParameterRanges()
	pairs := make([][2]float64, len(ranges))
	for i, r := range ranges {
		pairs[i] = [2]float64{r.Low, r.High}
	}
	return model.ConfigRecord{
		GeneLength:       cfg.GeneLength(),
		NumParameters:    cfg.NumParameters(),
		ParameterLengths: cfg.ParameterLengths(),
		ParameterRanges:  pairs,
		CrossoverRate:    cfg.CrossoverRate(),
		MutationRate:     cfg.MutationRate(),
		PopulationSize:   cfg.PopulationSize(),
		NumGenerations:   cfg.NumGenerations(),
	}
}

// ParamsFromRecord rebuilds configuration parameters from a stored snapshot.
func ParamsFromRecord(rec model.ConfigRecord) gaconfig.Params {
	ranges := make([]gaconfig.Range, len(rec.ParameterRanges))
	for i, pair := range rec.ParameterRanges {
		ranges[i] = gaconfig.Range{Low: pair[0], High: pair[1]}
	}
	return gaconfig.Params{
		GeneLength:       rec.GeneLength,
		NumParameters:    rec.NumParameters,
		ParameterLengths: append([]int(nil), rec.ParameterLengths...),
		ParameterRanges:  ranges,
		CrossoverRate:    rec.CrossoverRate,
		MutationRate:     rec.MutationRate,
		PopulationSize:   rec.PopulationSize,
		NumGenerations:   rec.NumGenerations,
	}
}
