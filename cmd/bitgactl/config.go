package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"bitga/internal/gaconfig"
	api "bitga/pkg/bitga"
)

// fileConfig is the on-disk run configuration. Keys missing from the file
// keep the defaults the struct was initialized with.
type fileConfig struct {
	GeneLength       int         `json:"gene_length" toml:"gene_length"`
	NumParameters    int         `json:"num_parameters" toml:"num_parameters"`
	ParameterLengths []int       `json:"parameter_lengths" toml:"parameter_lengths"`
	ParameterRanges  [][]float64 `json:"parameter_ranges" toml:"parameter_ranges"`
	CrossoverRate    float64     `json:"crossover_rate" toml:"crossover_rate"`
	MutationRate     float64     `json:"mutation_rate" toml:"mutation_rate"`
	PopulationSize   int         `json:"population_size" toml:"population_size"`
	NumGenerations   int         `json:"num_generations" toml:"num_generations"`
	Seed             int64       `json:"seed" toml:"seed"`
	Fitness          string      `json:"fitness" toml:"fitness"`
}

func defaultFileConfig() fileConfig {
	d := gaconfig.DefaultParams()
	return fileConfig{
		CrossoverRate:  d.CrossoverRate,
		MutationRate:   d.MutationRate,
		PopulationSize: d.PopulationSize,
		NumGenerations: d.NumGenerations,
	}
}

// loadFileConfig reads a .toml file with BurntSushi/toml and anything else as
// JSON. Unknown keys are rejected.
func loadFileConfig(path string) (fileConfig, error) {
	fc := defaultFileConfig()
	if path == "" {
		return fc, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.DecodeFile(path, &fc)
		if err != nil {
			return fileConfig{}, fmt.Errorf("load config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fileConfig{}, fmt.Errorf("load config: unknown keys %v", undecoded)
		}
	default:
		f, err := os.Open(path)
		if err != nil {
			return fileConfig{}, fmt.Errorf("load config: %w", err)
		}
		defer f.Close()
		dec := json.NewDecoder(f)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&fc); err != nil {
			return fileConfig{}, fmt.Errorf("load config: %w", err)
		}
	}
	return fc, nil
}

type layoutFlags struct {
	configPath    *string
	geneLength    *int
	numParameters *int
	lengths       *string
	ranges        *string
	crossoverRate *float64
	mutationRate  *float64
	population    *int
	generations   *int
	seed          *int64
	fitness       *string
}

func addLayoutFlags(fs *flag.FlagSet) layoutFlags {
	d := gaconfig.DefaultParams()
	return layoutFlags{
		configPath:    fs.String("config", "", "optional run config file (.toml or .json)"),
		geneLength:    fs.Int("gene-length", 0, "total chromosome bit length (defaults to the sum of -lengths)"),
		numParameters: fs.Int("params", 0, "number of parameters (defaults to the count of -lengths)"),
		lengths:       fs.String("lengths", "", "comma-separated bit length per parameter, e.g. 8,8"),
		ranges:        fs.String("ranges", "", "comma-separated low:high range per parameter, e.g. -1:1,0:5"),
		crossoverRate: fs.Float64("pc", d.CrossoverRate, "crossover probability in [0,1]"),
		mutationRate:  fs.Float64("pm", d.MutationRate, "per-bit mutation probability in [0,1]"),
		population:    fs.Int("pop", d.PopulationSize, "population size"),
		generations:   fs.Int("gens", d.NumGenerations, "generation budget"),
		seed:          fs.Int64("seed", 0, "rng seed (0 = random)"),
		fitness:       fs.String("fitness", "", "fitness function name (empty leaves fitness unevaluated)"),
	}
}

// request merges the config file with every flag the user set explicitly.
func (lf layoutFlags) request(fs *flag.FlagSet) (api.SampleRequest, error) {
	fc, err := loadFileConfig(*lf.configPath)
	if err != nil {
		return api.SampleRequest{}, err
	}

	var overrideErr error
	fs.Visit(func(f *flag.Flag) {
		if overrideErr != nil {
			return
		}
		switch f.Name {
		case "gene-length":
			fc.GeneLength = *lf.geneLength
		case "params":
			fc.NumParameters = *lf.numParameters
		case "lengths":
			fc.ParameterLengths, overrideErr = parseLengths(*lf.lengths)
		case "ranges":
			fc.ParameterRanges, overrideErr = parseRanges(*lf.ranges)
		case "pc":
			fc.CrossoverRate = *lf.crossoverRate
		case "pm":
			fc.MutationRate = *lf.mutationRate
		case "pop":
			fc.PopulationSize = *lf.population
		case "gens":
			fc.NumGenerations = *lf.generations
		case "seed":
			fc.Seed = *lf.seed
		case "fitness":
			fc.Fitness = *lf.fitness
		}
	})
	if overrideErr != nil {
		return api.SampleRequest{}, overrideErr
	}

	params, err := fc.params()
	if err != nil {
		return api.SampleRequest{}, err
	}
	return api.SampleRequest{Params: params, Seed: fc.Seed, Fitness: fc.Fitness}, nil
}

func (fc fileConfig) params() (gaconfig.Params, error) {
	ranges := make([]gaconfig.Range, len(fc.ParameterRanges))
	for i, pair := range fc.ParameterRanges {
		if len(pair) != 2 {
			return gaconfig.Params{}, fmt.Errorf("parameter range %d must be [low, high], got %v", i, pair)
		}
		ranges[i] = gaconfig.Range{Low: pair[0], High: pair[1]}
	}

	geneLength := fc.GeneLength
	if geneLength == 0 {
		for _, n := range fc.ParameterLengths {
			geneLength += n
		}
	}
	numParameters := fc.NumParameters
	if numParameters == 0 {
		numParameters = len(fc.ParameterLengths)
	}

	return gaconfig.Params{
		GeneLength:       geneLength,
		NumParameters:    numParameters,
		ParameterLengths: fc.ParameterLengths,
		ParameterRanges:  ranges,
		CrossoverRate:    fc.CrossoverRate,
		MutationRate:     fc.MutationRate,
		PopulationSize:   fc.PopulationSize,
		NumGenerations:   fc.NumGenerations,
	}, nil
}

func parseLengths(s string) ([]int, error) {
	fields := splitList(s)
	lengths := make([]int, 0, len(fields))
	for _, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid parameter length %q: %w", field, err)
		}
		lengths = append(lengths, n)
	}
	return lengths, nil
}

func parseRanges(s string) ([][]float64, error) {
	fields := splitList(s)
	ranges := make([][]float64, 0, len(fields))
	for _, field := range fields {
		lowText, highText, ok := strings.Cut(field, ":")
		if !ok {
			return nil, fmt.Errorf("invalid parameter range %q: want low:high", field)
		}
		low, err := strconv.ParseFloat(strings.TrimSpace(lowText), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range low %q: %w", lowText, err)
		}
		high, err := strconv.ParseFloat(strings.TrimSpace(highText), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range high %q: %w", highText, err)
		}
		ranges = append(ranges, []float64{low, high})
	}
	return ranges, nil
}

func splitList(s string) []string {
	var out []string
	for _, field := range strings.Split(s, ",") {
		if field = strings.TrimSpace(field); field != "" {
			out = append(out, field)
		}
	}
	return out
}
