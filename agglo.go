package agglo

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidConfig is wrapped by every configuration validation error.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrTooManyItems is returned when n exceeds MaxItems.
	ErrTooManyItems = errors.New("too many items")

	// ErrNonReducible is returned when the nearest-neighbor chain strategy is
	// combined with a linkage rule that is not reducible.
	ErrNonReducible = errors.New("linkage rule is not reducible")

	// ErrInvalidStrategy is returned for unknown strategies and for
	// strategies that cannot serve the chosen linkage.
	ErrInvalidStrategy = errors.New("invalid strategy")

	// ErrInvalidDistance is returned when the distance function yields NaN
	// or a negative value.
	ErrInvalidDistance = errors.New("invalid distance")
)

// Config controls agglomerative clustering.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Linkage is the rule used to derive cluster distances after a merge.
	// Ignored by the MiniMax entry points. Default: WardLinkage.
	Linkage LinkageRule

	// Strategy selects how the next pair to merge is found.
	// Default: StrategyAuto (NN-chain for reducible rules, Anderberg
	// otherwise).
	Strategy Strategy

	// Metric is used by the entry points that take vectors.
	// Default: EuclideanMetric.
	Metric DistanceMetric

	// SquaredInput declares that the distances passed in are already squared.
	// When false and the linkage is squared (Ward, Centroid, Median), the
	// engine squares every input distance and reports merge heights as
	// square roots, so heights stay in input units. When true, heights are
	// reported on the squared scale. Default: false.
	SquaredInput bool

	// Workers controls the number of goroutines filling the distance matrix.
	// The merge loop itself is always sequential. 0 means runtime.NumCPU();
	// values above 1 require a distance function that is safe for
	// concurrent use. Default: 0 (auto).
	Workers int

	// Logger receives run diagnostics and monotonicity warnings.
	// Default: zap.L().
	Logger *zap.Logger
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Linkage:  WardLinkage{},
		Strategy: StrategyAuto,
		Metric:   EuclideanMetric{},
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Linkage == nil {
		cfg.Linkage = WardLinkage{}
	}
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyAuto
	}
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.L()
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if cfg.Workers < 0 {
		return fmt.Errorf("agglo: Workers must be >= 0, got %d: %w", cfg.Workers, ErrInvalidConfig)
	}
	if m, ok := cfg.Metric.(MinkowskiMetric); ok && m.P < 1 {
		return fmt.Errorf("agglo: MinkowskiMetric.P must be >= 1, got %g: %w", m.P, ErrInvalidConfig)
	}
	if b, ok := cfg.Linkage.(FlexibleBetaLinkage); ok && (math.IsNaN(b.Beta) || b.Beta >= 1) {
		return fmt.Errorf("agglo: FlexibleBetaLinkage.Beta must be < 1, got %g: %w", b.Beta, ErrInvalidConfig)
	}
	return nil
}

// checkSize rejects item counts the engines cannot address.
func checkSize(n int) error {
	if n < 0 {
		return fmt.Errorf("agglo: negative item count %d: %w", n, ErrInvalidConfig)
	}
	if n > MaxItems {
		return fmt.Errorf("agglo: %d items exceeds the limit of %d: %w", n, MaxItems, ErrTooManyItems)
	}
	return nil
}

// Cluster runs agglomerative clustering on the given vectors using
// cfg.Metric. All points must have the same dimensionality.
func Cluster(data [][]float64, cfg Config) (*PointerHierarchy, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if err := checkDims(data); err != nil {
		return nil, err
	}
	squared := cfg.Linkage.Squared() && !cfg.SquaredInput
	return clusterLanceWilliams(len(data), vectorDistance(data, cfg.Metric, squared), cfg, squared)
}

// ClusterPrecomputed runs agglomerative clustering on a precomputed distance
// matrix. distMatrix is a flat []float64 of length n*n in row-major order;
// only the lower triangle (i > j) is read. cfg.Metric is ignored.
func ClusterPrecomputed(distMatrix []float64, n int, cfg Config) (*PointerHierarchy, error) {
	if err := checkPrecomputed(distMatrix, n); err != nil {
		return nil, err
	}
	return ClusterFunc(n, func(i, j int) float64 { return distMatrix[i*n+j] }, cfg)
}

// ClusterSymmetric runs agglomerative clustering on a symmetric gonum
// matrix of pairwise distances. cfg.Metric is ignored.
func ClusterSymmetric(m mat.Symmetric, cfg Config) (*PointerHierarchy, error) {
	return ClusterFunc(m.SymmetricDim(), m.At, cfg)
}

// ClusterFunc runs agglomerative clustering over n items whose pairwise
// distances are given by dist. dist is called once per unordered pair
// (always with i > j) and must return a non-negative value.
func ClusterFunc(n int, dist func(i, j int) float64, cfg Config) (*PointerHierarchy, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	squared := cfg.Linkage.Squared() && !cfg.SquaredInput
	if squared {
		raw := dist
		dist = func(i, j int) float64 {
			d := raw(i, j)
			return d * d
		}
	}
	return clusterLanceWilliams(n, dist, cfg, squared)
}

// ClusterMiniMax runs MiniMax (prototype) clustering on the given vectors
// using cfg.Metric. cfg.Linkage and cfg.SquaredInput are ignored.
func ClusterMiniMax(data [][]float64, cfg Config) (*PointerHierarchy, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if err := checkDims(data); err != nil {
		return nil, err
	}
	return clusterMiniMax(len(data), vectorDistance(data, cfg.Metric, false), cfg)
}

// ClusterMiniMaxPrecomputed runs MiniMax clustering on a flat n*n distance
// matrix.
func ClusterMiniMaxPrecomputed(distMatrix []float64, n int, cfg Config) (*PointerHierarchy, error) {
	if err := checkPrecomputed(distMatrix, n); err != nil {
		return nil, err
	}
	return ClusterMiniMaxFunc(n, func(i, j int) float64 { return distMatrix[i*n+j] }, cfg)
}

// ClusterMiniMaxFunc runs MiniMax clustering over n items. Unlike
// ClusterFunc, dist is called again for member pairs on every merge, so it
// should be cheap and must be deterministic.
func ClusterMiniMaxFunc(n int, dist func(i, j int) float64, cfg Config) (*PointerHierarchy, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return clusterMiniMax(n, dist, cfg)
}

func checkDims(data [][]float64) error {
	if len(data) == 0 {
		return nil
	}
	dims := len(data[0])
	for i, row := range data {
		if len(row) != dims {
			return fmt.Errorf("agglo: point %d has %d dimensions, expected %d: %w", i, len(row), dims, ErrInvalidConfig)
		}
	}
	return nil
}

func checkPrecomputed(distMatrix []float64, n int) error {
	if err := checkSize(n); err != nil {
		return err
	}
	if len(distMatrix) != n*n {
		return fmt.Errorf("agglo: distMatrix length %d does not match n*n = %d (n=%d): %w", len(distMatrix), n*n, n, ErrInvalidConfig)
	}
	return nil
}
