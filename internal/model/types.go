package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// ConfigRecord is the persisted snapshot of an algorithm configuration.
type ConfigRecord struct {
	GeneLength       int          `json:"gene_length"`
	NumParameters    int          `json:"num_parameters"`
	ParameterLengths []int        `json:"parameter_lengths"`
	ParameterRanges  [][2]float64 `json:"parameter_ranges"`
	CrossoverRate    float64      `json:"crossover_rate"`
	MutationRate     float64      `json:"mutation_rate"`
	PopulationSize   int          `json:"population_size"`
	NumGenerations   int          `json:"num_generations"`
}

type FitnessSummary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// RunRecord describes one sampling invocation. Chromosomes themselves are
// never stored.
type RunRecord struct {
	VersionedRecord
	ID           string          `json:"id"`
	CreatedAtUTC string          `json:"created_at_utc"`
	Command      string          `json:"command"`
	Seed         int64           `json:"seed"`
	Fitness      string          `json:"fitness,omitempty"`
	Varied       bool            `json:"varied"`
	Config       ConfigRecord    `json:"config"`
	Summary      *FitnessSummary `json:"summary,omitempty"`
}
