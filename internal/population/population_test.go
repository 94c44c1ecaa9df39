package population

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"bitga/internal/fitness"
	"bitga/internal/gaconfig"
)

func newConfig(t *testing.T, size int) *gaconfig.Config {
	t.Helper()
	p := gaconfig.DefaultParams()
	p.GeneLength = 10
	p.NumParameters = 2
	p.ParameterLengths = []int{5, 5}
	p.ParameterRanges = []gaconfig.Range{{Low: -2, High: 2}, {Low: 0, High: 31}}
	p.PopulationSize = size
	cfg, err := gaconfig.New(p)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	return cfg
}

func TestNewPopulationSize(t *testing.T) {
	cfg := newConfig(t, 17)
	pop, err := New(cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	if pop.Len() != 17 || len(pop.Individuals()) != 17 {
		t.Fatalf("expected 17 individuals, got %d", pop.Len())
	}
	for i, c := range pop.Individuals() {
		if c.Len() != cfg.GeneLength() {
			t.Fatalf("individual %d has %d bits", i, c.Len())
		}
		if c.Layout() != cfg.Layout() {
			t.Fatalf("individual %d does not share the config layout", i)
		}
	}
	if pop.Layout() != cfg.Layout() {
		t.Fatal("population layout differs from config layout")
	}
}

func TestNewPopulationIsReproducibleWithSeed(t *testing.T) {
	cfg := newConfig(t, 8)
	a, err := New(cfg, rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	b, err := New(cfg, rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	for i := 0; i < a.Len(); i++ {
		if !a.At(i).Equal(b.At(i)) {
			t.Fatalf("individual %d differs across identical seeds", i)
		}
	}
}

func TestNewPopulationRequiresInputs(t *testing.T) {
	if _, err := New(nil, rand.New(rand.NewSource(1))); !errors.Is(err, gaconfig.ErrInvalidArgument) {
		t.Fatalf("expected nil config rejection, got %v", err)
	}
	if _, err := New(newConfig(t, 2), nil); !errors.Is(err, gaconfig.ErrInvalidArgument) {
		t.Fatalf("expected nil rng rejection, got %v", err)
	}
}

func TestBestIsUnpopulated(t *testing.T) {
	pop, err := New(newConfig(t, 4), rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	if err := pop.Evaluate(context.Background(), fitness.Func{Label: "sum", Fn: sum}); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if best, ok := pop.Best(); ok || best != nil {
		t.Fatalf("expected empty elitism slot, got %v", best)
	}
}

func sum(x []float64) float64 {
	total := 0.0
	for _, v := range x {
		total += v
	}
	return total
}

func TestRenderPlaceholderFitness(t *testing.T) {
	pop, err := New(newConfig(t, 3), rand.New(rand.NewSource(4)))
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	var buf bytes.Buffer
	if err := pop.Render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if got := strings.Fields(lines[0]); strings.Join(got, ",") != "Index,Individuals,Decoded,Fitness" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	for i, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) != 5 {
			t.Fatalf("row %d: expected index, bits, 2 decoded values, fitness; got %q", i+1, line)
		}
		c := pop.At(i)
		if fields[0] != strconv.Itoa(i+1) || fields[1] != c.String() {
			t.Fatalf("row %d: unexpected prefix %q", i+1, line)
		}
		if strings.Join(fields[2:4], " ") != FormatDecoded(c.Decode()) {
			t.Fatalf("row %d: decoded column %v, want %q", i+1, fields[2:4], FormatDecoded(c.Decode()))
		}
		if fields[4] != "..." {
			t.Fatalf("row %d: expected fitness placeholder, got %q", i+1, fields[4])
		}
	}
}

func TestEvaluateAssignsFitnessAndRendersIt(t *testing.T) {
	pop, err := New(newConfig(t, 5), rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	if err := pop.Evaluate(context.Background(), fitness.Func{Label: "sum", Fn: sum}); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !pop.Evaluated() {
		t.Fatal("expected evaluated population")
	}
	for i, c := range pop.Individuals() {
		if want := sum(c.Decode()); c.Fitness() != want {
			t.Fatalf("individual %d: fitness %g want %g", i, c.Fitness(), want)
		}
	}
	var buf bytes.Buffer
	if err := pop.Render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(buf.String(), "...") {
		t.Fatalf("expected real fitness values:\n%s", buf.String())
	}
}

func TestEvaluateStopsOnCancelledContext(t *testing.T) {
	pop, err := New(newConfig(t, 3), rand.New(rand.NewSource(6)))
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pop.Evaluate(ctx, fitness.Func{Label: "sum", Fn: sum}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if pop.Evaluated() {
		t.Fatal("cancelled evaluation must not mark population evaluated")
	}
}

func TestSummary(t *testing.T) {
	pop, err := New(newConfig(t, 4), rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	for i, v := range []float64{1, 2, 3, 4} {
		pop.At(i).SetFitness(v)
	}
	s := pop.Summary()
	if s.Mean != 2.5 || s.Min != 1 || s.Max != 4 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if math.Abs(s.StdDev-math.Sqrt(5.0/3.0)) > 1e-12 {
		t.Fatalf("unexpected std dev %g", s.StdDev)
	}

	single, err := New(newConfig(t, 1), rand.New(rand.NewSource(8)))
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	if s := single.Summary(); s.StdDev != 0 || math.IsNaN(s.Mean) {
		t.Fatalf("unexpected single-individual summary %+v", s)
	}
}

func TestVaryKeepsSizeAndLength(t *testing.T) {
	cfg := newConfig(t, 9)
	rng := rand.New(rand.NewSource(10))
	pop, err := New(cfg, rng)
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	if err := pop.Evaluate(context.Background(), fitness.Func{Label: "sum", Fn: sum}); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if err := pop.Vary(rng, 1, 0.1); err != nil {
		t.Fatalf("vary: %v", err)
	}
	if pop.Len() != 9 {
		t.Fatalf("vary changed size to %d", pop.Len())
	}
	for i, c := range pop.Individuals() {
		if c.Len() != cfg.GeneLength() {
			t.Fatalf("individual %d length %d", i, c.Len())
		}
	}
	if pop.Evaluated() {
		t.Fatal("expected fitness to be marked stale after variation")
	}
}

func TestVaryZeroRatesIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	pop, err := New(newConfig(t, 6), rng)
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	before := make([]string, pop.Len())
	for i, c := range pop.Individuals() {
		before[i] = c.String()
	}
	if err := pop.Vary(rng, 0, 0); err != nil {
		t.Fatalf("vary: %v", err)
	}
	for i, c := range pop.Individuals() {
		if c.String() != before[i] {
			t.Fatalf("individual %d changed: %s -> %s", i, before[i], c.String())
		}
	}
}

func TestVaryRejectsBadRates(t *testing.T) {
	pop, err := New(newConfig(t, 2), rand.New(rand.NewSource(13)))
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	if err := pop.Vary(rand.New(rand.NewSource(1)), 1.2, 0); !errors.Is(err, gaconfig.ErrInvalidArgument) {
		t.Fatalf("expected crossover rate rejection, got %v", err)
	}
	if err := pop.Vary(rand.New(rand.NewSource(1)), 0.5, -1); !errors.Is(err, gaconfig.ErrInvalidArgument) {
		t.Fatalf("expected mutation rate rejection, got %v", err)
	}
}
