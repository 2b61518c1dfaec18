package agglo

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
)

// PrimMST computes a minimum spanning tree over n items with Prim's
// algorithm, calling dist on demand instead of materializing a distance
// matrix: O(n²) distance calls, O(n) memory.
//
// Returns (n-1) edges as [][3]float64 where each edge is [from, to, weight]
// and from is the tree node the new node was actually attached to. Edges are
// in insertion order, not sorted.
func PrimMST(n int, dist func(i, j int) float64) [][3]float64 {
	if n <= 1 {
		return nil
	}

	inTree := make([]bool, n)
	currentDistances := make([]float64, n)
	currentSources := make([]int, n)
	for j := range currentDistances {
		currentDistances[j] = math.Inf(1)
	}

	currentNode := 0
	edges := make([][3]float64, 0, n-1)

	for i := 1; i < n; i++ {
		inTree[currentNode] = true

		newDistance := math.Inf(1)
		sourceNode, newNode := -1, -1

		for j := 0; j < n; j++ {
			if inTree[j] {
				continue
			}
			if d := dist(max(currentNode, j), min(currentNode, j)); d < currentDistances[j] {
				currentDistances[j] = d
				currentSources[j] = currentNode
			}
			// The first candidate is taken even at +Inf so that disconnected
			// inputs still yield a spanning tree.
			if newNode < 0 || currentDistances[j] < newDistance {
				newDistance = currentDistances[j]
				sourceNode = currentSources[j]
				newNode = j
			}
		}

		edges = append(edges, [3]float64{
			float64(sourceNode),
			float64(newNode),
			newDistance,
		})
		currentNode = newNode
	}

	return edges
}

// clusterMST builds the single-linkage hierarchy from a minimum spanning
// tree: sorting the edges by weight and merging their endpoints' clusters in
// that order reproduces single linkage exactly. The surviving item of each
// merge is the lowest item of the two clusters, as in the matrix engines.
func clusterMST(n int, dist func(i, j int) float64, builder *PointerHierarchyBuilder, logger *zap.Logger) error {
	var bad error
	edges := PrimMST(n, func(i, j int) float64 {
		d := dist(i, j)
		if math.IsNaN(d) || d < 0 {
			if bad == nil {
				bad = fmt.Errorf("agglo: distance(%d, %d) = %g: %w", i, j, d, ErrInvalidDistance)
			}
			return math.Inf(1)
		}
		return d
	})
	if bad != nil {
		return bad
	}

	sort.SliceStable(edges, func(a, b int) bool {
		return edges[a][2] < edges[b][2]
	})

	uf := NewUnionFind(n)
	lowest := make([]int, n)
	for i := range lowest {
		lowest[i] = i
	}

	hasInf := false
	for _, e := range edges {
		ra, rb := uf.Find(int(e[0])), uf.Find(int(e[1]))
		x, y := lowest[ra], lowest[rb]
		if x < y {
			x, y = y, x
		}
		if math.IsInf(e[2], 1) {
			hasInf = true
		}
		builder.Add(x, e[2], y)
		lowest[uf.Union(ra, rb)] = y
	}

	if hasInf {
		logger.Warn("agglo: spanning tree contains edge(s) with +Inf weight (disconnected components)")
	}
	return nil
}
