package agglo

import (
	"errors"
	"math"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/mat"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, WardLinkage{}, cfg.Linkage)
	assert.Equal(t, StrategyAuto, cfg.Strategy)
	assert.Equal(t, EuclideanMetric{}, cfg.Metric)
	assert.False(t, cfg.SquaredInput)
	assert.Equal(t, 0, cfg.Workers)
	assert.Nil(t, cfg.Logger)
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)
	assert.Equal(t, WardLinkage{}, cfg.Linkage)
	assert.Equal(t, StrategyAuto, cfg.Strategy)
	assert.Equal(t, EuclideanMetric{}, cfg.Metric)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.NotNil(t, cfg.Logger)
}

func TestCluster_ConfigErrors(t *testing.T) {
	data := linePoints(0, 1, 2)
	tests := []struct {
		name   string
		modify func(*Config)
		target error
	}{
		{"negative workers", func(c *Config) { c.Workers = -1 }, ErrInvalidConfig},
		{"minkowski p below 1", func(c *Config) { c.Metric = MinkowskiMetric{P: 0.5} }, ErrInvalidConfig},
		{"flexible beta 1", func(c *Config) { c.Linkage = FlexibleBetaLinkage{Beta: 1} }, ErrInvalidConfig},
		{"flexible beta NaN", func(c *Config) { c.Linkage = FlexibleBetaLinkage{Beta: math.NaN()} }, ErrInvalidConfig},
		{"unknown strategy", func(c *Config) { c.Strategy = "bogus" }, ErrInvalidStrategy},
		{"nnchain with centroid", func(c *Config) {
			c.Linkage, c.Strategy = CentroidLinkage{}, StrategyNNChain
		}, ErrNonReducible},
		{"nnchain with median", func(c *Config) {
			c.Linkage, c.Strategy = MedianLinkage{}, StrategyNNChain
		}, ErrNonReducible},
		{"mst with ward", func(c *Config) { c.Strategy = StrategyMST }, ErrInvalidStrategy},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Logger = zap.NewNop()
			tc.modify(&cfg)
			_, err := Cluster(data, cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.target), "got %v", err)
		})
	}
}

func TestCluster_DimensionMismatch(t *testing.T) {
	_, err := Cluster([][]float64{{0, 0}, {1}}, DefaultConfig())
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = ClusterMiniMax([][]float64{{0, 0}, {1, 2, 3}}, DefaultConfig())
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestClusterFunc_TooManyItems(t *testing.T) {
	called := false
	dist := func(i, j int) float64 {
		called = true
		return 1
	}

	_, err := ClusterFunc(MaxItems+1, dist, testConfig(SingleLinkage{}, StrategyAuto))
	assert.True(t, errors.Is(err, ErrTooManyItems))

	_, err = ClusterFunc(MaxItems+1, dist, testConfig(SingleLinkage{}, StrategyMST))
	assert.True(t, errors.Is(err, ErrTooManyItems))

	_, err = ClusterMiniMaxFunc(MaxItems+1, dist, testConfig(nil, StrategyAuto))
	assert.True(t, errors.Is(err, ErrTooManyItems))

	assert.False(t, called, "dist must not be called when n is rejected")
}

func TestClusterFunc_NegativeItemCount(t *testing.T) {
	_, err := ClusterFunc(-1, func(i, j int) float64 { return 0 }, DefaultConfig())
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestClusterFunc_InvalidDistances(t *testing.T) {
	tests := []struct {
		name string
		bad  float64
	}{
		{"NaN", math.NaN()},
		{"negative", -1},
	}
	for _, tc := range tests {
		dist := func(i, j int) float64 {
			if i == 2 && j == 1 {
				return tc.bad
			}
			return 1
		}
		for _, s := range []Strategy{StrategyExhaustive, StrategyNNChain, StrategyMST} {
			t.Run(tc.name+"/"+string(s), func(t *testing.T) {
				_, err := ClusterFunc(4, dist, testConfig(SingleLinkage{}, s))
				assert.True(t, errors.Is(err, ErrInvalidDistance), "got %v", err)
			})
		}
		t.Run(tc.name+"/minimax", func(t *testing.T) {
			_, err := ClusterMiniMaxFunc(4, dist, testConfig(nil, StrategyAuto))
			assert.True(t, errors.Is(err, ErrInvalidDistance), "got %v", err)
		})
	}
}

func TestClusterPrecomputed(t *testing.T) {
	dist := []float64{
		0, 1, 9, 10,
		1, 0, 8, 9,
		9, 8, 0, 1,
		10, 9, 1, 0,
	}
	h, err := ClusterPrecomputed(dist, 4, testConfig(SingleLinkage{}, StrategyAuto))
	require.NoError(t, err)
	requireValidHierarchy(t, h, 4)
	assert.Equal(t, []float64{1, 1, 8}, mergeHeights(h))

	_, err = ClusterPrecomputed(dist[:15], 4, DefaultConfig())
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = ClusterMiniMaxPrecomputed(dist, 3, DefaultConfig())
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestClusterPrecomputed_ReadsLowerTriangleOnly(t *testing.T) {
	// The upper triangle holds garbage that must be ignored.
	dist := []float64{
		0, -5, math.NaN(),
		2, 0, -1,
		6, 3, 0,
	}
	h, err := ClusterPrecomputed(dist, 3, testConfig(CompleteLinkage{}, StrategyExhaustive))
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 6}, mergeHeights(h))
}

func TestClusterSymmetric(t *testing.T) {
	m := mat.NewSymDense(4, []float64{
		0, 1, 9, 10,
		1, 0, 8, 9,
		9, 8, 0, 1,
		10, 9, 1, 0,
	})
	h, err := ClusterSymmetric(m, testConfig(CompleteLinkage{}, StrategyAnderberg))
	require.NoError(t, err)
	requireValidHierarchy(t, h, 4)
	assert.Equal(t, []float64{1, 1, 10}, mergeHeights(h))
}

func TestCluster_SquaredLinkageWithNonEuclideanMetric(t *testing.T) {
	// Manhattan distances are squared before Ward and restored afterwards,
	// so on a line the result matches Euclidean.
	data := linePoints(0, 1, 9, 10)
	cfg := testConfig(WardLinkage{}, StrategyExhaustive)
	cfg.Metric = ManhattanMetric{}

	h, err := Cluster(data, cfg)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 1, math.Sqrt(162)}, mergeHeights(h), 1e-12)
}

func TestCluster_DebugLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := testConfig(AverageLinkage{}, StrategyAuto)
	cfg.Logger = zap.New(core)

	_, err := Cluster(linePoints(0, 1, 2), cfg)
	require.NoError(t, err)

	entries := logs.FilterMessage("agglo: clustering").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(3), fields["n"])
	assert.Equal(t, "average", fields["linkage"])
	assert.Equal(t, "nnchain", fields["strategy"])
	assert.Equal(t, false, fields["squared"])
}
