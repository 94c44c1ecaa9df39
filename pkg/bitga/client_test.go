package bitga

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitga/internal/fitness"
	"bitga/internal/gaconfig"
)

func testParams() gaconfig.Params {
	p := gaconfig.DefaultParams()
	p.GeneLength = 16
	p.NumParameters = 2
	p.ParameterLengths = []int{8, 8}
	p.ParameterRanges = []gaconfig.Range{{Low: -5.12, High: 5.12}, {Low: -5.12, High: 5.12}}
	p.PopulationSize = 6
	return p
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(Options{StoreKind: "memory"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Init(context.Background()))
	return c
}

func TestSampleRendersAndRecordsRun(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	var out bytes.Buffer
	summary, err := c.Sample(ctx, SampleRequest{Params: testParams(), Seed: 42, Out: &out})
	require.NoError(t, err)
	assert.Equal(t, int64(42), summary.Seed)
	assert.Equal(t, 6, summary.Population.Len())
	assert.Nil(t, summary.Summary)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[0], "Index"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(lines[1]), "..."))

	run, err := c.Run(ctx, summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), run.Seed)
	assert.Equal(t, 16, run.Config.GeneLength)
	assert.Equal(t, [2]float64{-5.12, 5.12}, run.Config.ParameterRanges[0])
	assert.Nil(t, run.Summary)
}

func TestSampleIsReproducible(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	var a, b bytes.Buffer
	_, err := c.Sample(ctx, SampleRequest{Params: testParams(), Seed: 7, Vary: true, Out: &a})
	require.NoError(t, err)
	_, err = c.Sample(ctx, SampleRequest{Params: testParams(), Seed: 7, Vary: true, Out: &b})
	require.NoError(t, err)
	assert.Equal(t, a.String(), b.String())
}

func TestSampleWithFitness(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	summary, err := c.Sample(ctx, SampleRequest{Params: testParams(), Seed: 3, Fitness: "sphere"})
	require.NoError(t, err)
	require.NotNil(t, summary.Summary)
	assert.LessOrEqual(t, summary.Summary.Max, 0.0)
	assert.LessOrEqual(t, summary.Summary.Min, summary.Summary.Mean)

	run, err := c.Run(ctx, summary.RunID)
	require.NoError(t, err)
	require.NotNil(t, run.Summary)
	assert.Equal(t, "sphere", run.Fitness)
	assert.Equal(t, summary.Summary.Max, run.Summary.Max)
}

func TestSampleDrawsSeedWhenZero(t *testing.T) {
	c := newTestClient(t)
	summary, err := c.Sample(context.Background(), SampleRequest{Params: testParams()})
	require.NoError(t, err)
	assert.NotZero(t, summary.Seed)
}

func TestSampleRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	bad := testParams()
	bad.CrossoverRate = 1.5
	_, err := c.Sample(ctx, SampleRequest{Params: bad})
	require.ErrorIs(t, err, gaconfig.ErrInvalidArgument)

	_, err = c.Sample(ctx, SampleRequest{Params: testParams(), Fitness: "missing"})
	require.ErrorIs(t, err, fitness.ErrEvaluatorNotFound)

	runs, err := c.Runs(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs, "failed samples must not be recorded")
}

func TestRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	var ids []string
	for i := 0; i < 3; i++ {
		summary, err := c.Sample(ctx, SampleRequest{Params: testParams(), Seed: int64(i + 1)})
		require.NoError(t, err)
		ids = append(ids, summary.RunID)
	}

	runs, err := c.Runs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.GreaterOrEqual(t, runs[0].CreatedAtUTC, runs[1].CreatedAtUTC)

	_, err = c.Runs(ctx, -1)
	require.Error(t, err)

	require.NoError(t, c.Reset(ctx))
	runs, err = c.Runs(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
	_, err = c.Run(ctx, ids[0])
	require.Error(t, err)
}

func TestDecode(t *testing.T) {
	c := newTestClient(t)
	p := gaconfig.Params{
		GeneLength:       3,
		NumParameters:    1,
		ParameterLengths: []int{3},
		ParameterRanges:  []gaconfig.Range{{Low: 0, High: 7}},
	}

	values, err := c.Decode(p, "111")
	require.NoError(t, err)
	assert.Equal(t, []float64{7}, values)

	values, err = c.Decode(p, "000")
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, values)

	_, err = c.Decode(p, "11")
	require.ErrorIs(t, err, gaconfig.ErrInvalidArgument)
}

func TestParamsFromRecordRoundTrip(t *testing.T) {
	cfg, err := gaconfig.New(testParams())
	require.NoError(t, err)

	again, err := gaconfig.New(ParamsFromRecord(configRecord(cfg)))
	require.NoError(t, err)
	assert.Equal(t, cfg.Params(), again.Params())
}

func TestFunctions(t *testing.T) {
	c := newTestClient(t)
	assert.Contains(t, c.Functions(), "rastrigin")
}

func TestNewRejectsUnknownStore(t *testing.T) {
	_, err := New(Options{StoreKind: "etcd"})
	require.Error(t, err)
}
