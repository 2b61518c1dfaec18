package agglo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// LinkageRule computes the distance between a freshly merged cluster X∪Y and
// an untouched cluster J from distances known before the merge (the
// Lance-Williams recurrence). Implementations are stateless values.
type LinkageRule interface {
	// Combine returns d(X∪Y, J) given the cluster sizes and the pre-merge
	// distances d(X,J), d(Y,J) and d(X,Y).
	Combine(sizeX, dXJ, sizeY, dYJ, sizeJ, dXY float64) float64

	// Reducible reports whether a merge can never bring the merged cluster
	// closer to a third cluster than both of its parts were. Nearest-neighbor
	// chains are only correct for reducible rules.
	Reducible() bool

	// Squared reports whether the rule is defined on squared distances.
	Squared() bool

	String() string
}

// SingleLinkage uses the distance of the closest pair of members.
type SingleLinkage struct{}

func (SingleLinkage) Combine(_, dXJ, _, dYJ, _, _ float64) float64 { return math.Min(dXJ, dYJ) }
func (SingleLinkage) Reducible() bool                              { return true }
func (SingleLinkage) Squared() bool                                { return false }
func (SingleLinkage) String() string                               { return "single" }

// CompleteLinkage uses the distance of the farthest pair of members.
type CompleteLinkage struct{}

func (CompleteLinkage) Combine(_, dXJ, _, dYJ, _, _ float64) float64 { return math.Max(dXJ, dYJ) }
func (CompleteLinkage) Reducible() bool                              { return true }
func (CompleteLinkage) Squared() bool                                { return false }
func (CompleteLinkage) String() string                               { return "complete" }

// AverageLinkage (UPGMA) uses the mean distance over all member pairs.
type AverageLinkage struct{}

func (AverageLinkage) Combine(sizeX, dXJ, sizeY, dYJ, _, _ float64) float64 {
	return (sizeX*dXJ + sizeY*dYJ) / (sizeX + sizeY)
}
func (AverageLinkage) Reducible() bool { return true }
func (AverageLinkage) Squared() bool   { return false }
func (AverageLinkage) String() string  { return "average" }

// WeightedAverageLinkage (WPGMA, McQuitty) averages the two parent distances
// regardless of cluster sizes.
type WeightedAverageLinkage struct{}

func (WeightedAverageLinkage) Combine(_, dXJ, _, dYJ, _, _ float64) float64 {
	return 0.5*dXJ + 0.5*dYJ
}
func (WeightedAverageLinkage) Reducible() bool { return true }
func (WeightedAverageLinkage) Squared() bool   { return false }
func (WeightedAverageLinkage) String() string  { return "weighted" }

// CentroidLinkage (UPGMC) measures the distance between cluster centroids.
// Expects squared Euclidean input. Not reducible: merges can produce
// inversions.
type CentroidLinkage struct{}

func (CentroidLinkage) Combine(sizeX, dXJ, sizeY, dYJ, _, dXY float64) float64 {
	f := 1.0 / (sizeX + sizeY)
	return f*sizeX*dXJ + f*sizeY*dYJ - f*f*sizeX*sizeY*dXY
}
func (CentroidLinkage) Reducible() bool { return false }
func (CentroidLinkage) Squared() bool   { return true }
func (CentroidLinkage) String() string  { return "centroid" }

// MedianLinkage (WPGMC, Gower) is centroid linkage where the merged
// centroid is the midpoint of the two parent centroids.
type MedianLinkage struct{}

func (MedianLinkage) Combine(_, dXJ, _, dYJ, _, dXY float64) float64 {
	return 0.5*dXJ + 0.5*dYJ - 0.25*dXY
}
func (MedianLinkage) Reducible() bool { return false }
func (MedianLinkage) Squared() bool   { return true }
func (MedianLinkage) String() string  { return "median" }

// WardLinkage minimizes the increase of the within-cluster sum of squares.
// Expects squared Euclidean input.
type WardLinkage struct{}

func (WardLinkage) Combine(sizeX, dXJ, sizeY, dYJ, sizeJ, dXY float64) float64 {
	return ((sizeX+sizeJ)*dXJ + (sizeY+sizeJ)*dYJ - sizeJ*dXY) / (sizeX + sizeY + sizeJ)
}
func (WardLinkage) Reducible() bool { return true }
func (WardLinkage) Squared() bool   { return true }
func (WardLinkage) String() string  { return "ward" }

// FlexibleBetaLinkage is the Lance-Williams family with alpha = (1-Beta)/2
// and gamma = 0. Beta = -0.25 is the usual choice. For Beta != 0 the
// result depends on the order of earlier merges, so only Beta = 0 (weighted
// average) counts as reducible and other values run on the Anderberg cache.
type FlexibleBetaLinkage struct {
	Beta float64
}

func (l FlexibleBetaLinkage) Combine(_, dXJ, _, dYJ, _, dXY float64) float64 {
	alpha := 0.5 * (1 - l.Beta)
	return alpha*dXJ + alpha*dYJ + l.Beta*dXY
}
func (l FlexibleBetaLinkage) Reducible() bool { return l.Beta == 0 }
func (FlexibleBetaLinkage) Squared() bool     { return false }
func (l FlexibleBetaLinkage) String() string {
	return "flexible-beta(" + strconv.FormatFloat(l.Beta, 'g', -1, 64) + ")"
}

// ParseLinkage resolves a linkage name as used in configuration files.
// Accepted names: single, complete, average (upgma), weighted (wpgma,
// mcquitty), centroid (upgmc), median (wpgmc), ward, flexible-beta.
// flexible-beta uses Beta = -0.25; set the field directly for other values.
func ParseLinkage(name string) (LinkageRule, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "single":
		return SingleLinkage{}, nil
	case "complete":
		return CompleteLinkage{}, nil
	case "average", "upgma":
		return AverageLinkage{}, nil
	case "weighted", "wpgma", "mcquitty":
		return WeightedAverageLinkage{}, nil
	case "centroid", "upgmc":
		return CentroidLinkage{}, nil
	case "median", "wpgmc":
		return MedianLinkage{}, nil
	case "ward":
		return WardLinkage{}, nil
	case "flexible-beta", "flexible":
		return FlexibleBetaLinkage{Beta: -0.25}, nil
	default:
		return nil, fmt.Errorf("agglo: unknown linkage %q: %w", name, ErrInvalidConfig)
	}
}
