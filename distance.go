package agglo

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// DistanceMetric measures the dissimilarity of two vectors. ReducedDistance
// is a cheaper monotone surrogate; for EuclideanMetric it is the squared
// distance, which squared linkage rules consume directly.
type DistanceMetric interface {
	Distance(a, b []float64) float64
	ReducedDistance(a, b []float64) float64
}

// DistanceFunc adapts a plain function into a DistanceMetric.
// ReducedDistance delegates to the same function.
type DistanceFunc func(a, b []float64) float64

func (f DistanceFunc) Distance(a, b []float64) float64        { return f(a, b) }
func (f DistanceFunc) ReducedDistance(a, b []float64) float64 { return f(a, b) }

// EuclideanMetric computes the Euclidean (L2) distance.
// ReducedDistance returns the squared Euclidean distance.
type EuclideanMetric struct{}

func (EuclideanMetric) Distance(a, b []float64) float64 {
	return math.Sqrt(euclideanSumOfSquares(a, b))
}

func (EuclideanMetric) ReducedDistance(a, b []float64) float64 {
	return euclideanSumOfSquares(a, b)
}

func euclideanSumOfSquares(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// ManhattanMetric computes the Manhattan (L1 / city-block) distance.
type ManhattanMetric struct{}

func (ManhattanMetric) Distance(a, b []float64) float64 { return floats.Distance(a, b, 1) }

func (m ManhattanMetric) ReducedDistance(a, b []float64) float64 { return m.Distance(a, b) }

// CosineMetric computes the cosine distance: 1 - cosine_similarity.
// For a zero vector the result is NaN, which the engines reject.
type CosineMetric struct{}

func (CosineMetric) Distance(a, b []float64) float64 {
	return 1.0 - floats.Dot(a, b)/(floats.Norm(a, 2)*floats.Norm(b, 2))
}

func (m CosineMetric) ReducedDistance(a, b []float64) float64 { return m.Distance(a, b) }

// ChebyshevMetric computes the Chebyshev (L-infinity) distance.
type ChebyshevMetric struct{}

func (ChebyshevMetric) Distance(a, b []float64) float64 { return floats.Distance(a, b, math.Inf(1)) }

func (m ChebyshevMetric) ReducedDistance(a, b []float64) float64 { return m.Distance(a, b) }

// MinkowskiMetric computes the Minkowski distance parameterized by P.
// P must be >= 1. Panics if P < 1.
// ReducedDistance returns sum(|a[i]-b[i]|^P) without the final root.
type MinkowskiMetric struct {
	P float64
}

func (m MinkowskiMetric) Distance(a, b []float64) float64 {
	m.check()
	return floats.Distance(a, b, m.P)
}

func (m MinkowskiMetric) ReducedDistance(a, b []float64) float64 {
	m.check()
	var sum float64
	for i := range a {
		sum += math.Pow(math.Abs(a[i]-b[i]), m.P)
	}
	return sum
}

func (m MinkowskiMetric) check() {
	if m.P < 1 {
		panic("MinkowskiMetric: P must be >= 1")
	}
}

// ParseMetric resolves a metric name as used in configuration files:
// euclidean, manhattan (cityblock, l1), cosine, chebyshev (linf) or
// minkowski. p is only used by minkowski.
func ParseMetric(name string, p float64) (DistanceMetric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "euclidean", "l2":
		return EuclideanMetric{}, nil
	case "manhattan", "cityblock", "l1":
		return ManhattanMetric{}, nil
	case "cosine":
		return CosineMetric{}, nil
	case "chebyshev", "linf":
		return ChebyshevMetric{}, nil
	case "minkowski":
		if p < 1 {
			return nil, fmt.Errorf("agglo: minkowski metric needs p >= 1, got %g: %w", p, ErrInvalidConfig)
		}
		return MinkowskiMetric{P: p}, nil
	default:
		return nil, fmt.Errorf("agglo: unknown metric %q: %w", name, ErrInvalidConfig)
	}
}

// vectorDistance adapts a metric over rows of data into an item distance.
// When squared is true the metric's ReducedDistance is used if it equals the
// squared distance (Euclidean), otherwise Distance is squared.
func vectorDistance(data [][]float64, metric DistanceMetric, squared bool) func(i, j int) float64 {
	if !squared {
		return func(i, j int) float64 { return metric.Distance(data[i], data[j]) }
	}
	if _, ok := metric.(EuclideanMetric); ok {
		return func(i, j int) float64 { return metric.ReducedDistance(data[i], data[j]) }
	}
	return func(i, j int) float64 {
		d := metric.Distance(data[i], data[j])
		return d * d
	}
}
