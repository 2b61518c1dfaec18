package agglo

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
)

// clusterState is the working set of one run: the distance matrix over
// slots, per-slot sizes and liveness, and the merges performed so far. Slot i
// initially holds item i; after a merge the surviving slot stands for the
// union and the absorbed slot goes inactive for good.
type clusterState struct {
	n      int
	mat    *TriangularMatrix
	size   []int
	active []bool

	// formed is the height at which the cluster in each slot was created.
	formed []float64
	events []mergeEvent
	logger *zap.Logger
}

// mergeEvent is one merge: slot x absorbed into slot y at height h.
// proto is the MiniMax prototype of the union, or -1.
type mergeEvent struct {
	x, y  int
	h     float64
	proto int
}

func newClusterState(mat *TriangularMatrix, logger *zap.Logger) *clusterState {
	n := mat.Len()
	s := &clusterState{
		n:      n,
		mat:    mat,
		size:   make([]int, n),
		active: make([]bool, n),
		formed: make([]float64, n),
		events: make([]mergeEvent, 0, max(n-1, 0)),
		logger: logger,
	}
	for i := 0; i < n; i++ {
		s.size[i] = 1
		s.active[i] = true
		s.formed[i] = math.Inf(-1)
	}
	return s
}

// record logs a merge. A height below that of either merged cluster can only
// come from a non-reducible rule or rounding; it is raised to keep the tree
// monotone.
func (s *clusterState) record(x, y int, h float64, proto int) {
	if floor := math.Max(s.formed[x], s.formed[y]); h < floor {
		s.logger.Warn("agglo: non-monotonic merge height adjusted",
			zap.Int("item", x),
			zap.Int("survivor", y),
			zap.Float64("height", h),
			zap.Float64("adjusted", floor),
		)
		h = floor
	}
	s.formed[y] = h
	s.events = append(s.events, mergeEvent{x: x, y: y, h: h, proto: proto})
}

// replay hands the merges to the builder by ascending height. Selectors such
// as the NN-chain find merges out of height order; because record keeps
// every merge at or above the merges that formed its inputs, a stable sort
// still links each item only after it stopped surviving merges.
func (s *clusterState) replay(builder *PointerHierarchyBuilder) *PointerHierarchy {
	sort.SliceStable(s.events, func(a, b int) bool {
		return s.events[a].h < s.events[b].h
	})
	for _, e := range s.events {
		if builder.HasPrototypes() {
			builder.AddPrototype(e.x, e.h, e.y, e.proto)
		} else {
			builder.Add(e.x, e.h, e.y)
		}
	}
	return builder.Complete()
}

// pairSelector decides which two clusters merge next.
type pairSelector interface {
	// init is called once, after the matrix is filled.
	init(s *clusterState)
	// next returns the pair to merge: slot x is absorbed into slot y, x > y.
	next(s *clusterState) (x, y int, d float64)
	// merged is called after the updater rewrote the distances of y and x
	// was retired.
	merged(s *clusterState, x, y int)
}

// mergeUpdater records a merge and rewrites the survivor's distances.
type mergeUpdater interface {
	merge(s *clusterState, x, y int, d float64)
}

// mergeLoop performs the n-1 merges of a run.
func mergeLoop(s *clusterState, sel pairSelector, upd mergeUpdater) {
	if s.n < 2 {
		return
	}
	sel.init(s)
	for k := 1; k < s.n; k++ {
		x, y, d := sel.next(s)
		if x <= y || !s.active[x] || !s.active[y] {
			panic(fmt.Sprintf("agglo: selector returned invalid pair (%d, %d) at merge %d", x, y, k))
		}
		upd.merge(s, x, y, d)
		s.size[y] += s.size[x]
		s.active[x] = false
		sel.merged(s, x, y)
	}
}

// lanceWilliamsUpdater derives the survivor's new distances from the
// pre-merge ones. With restore set, matrix values are squared distances and
// merge heights are reported as their square roots.
type lanceWilliamsUpdater struct {
	rule    LinkageRule
	restore bool
}

func (u lanceWilliamsUpdater) merge(s *clusterState, x, y int, d float64) {
	h := d
	if u.restore {
		h = math.Sqrt(math.Max(d, 0))
	}
	s.record(x, y, h, -1)

	sx, sy := float64(s.size[x]), float64(s.size[y])
	for j := 0; j < s.n; j++ {
		if j == x || j == y || !s.active[j] {
			continue
		}
		v := u.rule.Combine(sx, s.mat.Get(x, j), sy, s.mat.Get(y, j), float64(s.size[j]), d)
		if math.IsNaN(v) {
			// Only reachable through Inf-Inf on disconnected inputs.
			v = math.Inf(1)
		}
		s.mat.Set(y, j, v)
	}
}

// newSelector returns the pair selector for a resolved strategy.
func newSelector(strategy Strategy) pairSelector {
	switch strategy {
	case StrategyExhaustive:
		return exhaustiveSelector{}
	case StrategyAnderberg:
		return &anderbergSelector{}
	case StrategyNNChain:
		return &nnChainSelector{}
	default:
		panic(fmt.Sprintf("agglo: no pair selector for strategy %q", strategy))
	}
}

// fillMatrix computes all pairwise distances and rejects NaN or negative
// values.
func fillMatrix(n int, dist func(i, j int) float64, workers int) (*TriangularMatrix, error) {
	mat := NewTriangularMatrix(n)
	mat.FillParallel(dist, workers)
	for x := 1; x < n; x++ {
		for y := 0; y < x; y++ {
			if d := mat.Get(x, y); math.IsNaN(d) || d < 0 {
				return nil, fmt.Errorf("agglo: distance(%d, %d) = %g: %w", x, y, d, ErrInvalidDistance)
			}
		}
	}
	return mat, nil
}

// clusterLanceWilliams runs the Lance-Williams engine. dist already returns
// squared values when restore is set.
func clusterLanceWilliams(n int, dist func(i, j int) float64, cfg Config, restore bool) (*PointerHierarchy, error) {
	if err := checkSize(n); err != nil {
		return nil, err
	}
	strategy, err := selectStrategy(cfg.Strategy, cfg.Linkage)
	if err != nil {
		return nil, err
	}
	cfg.Logger.Debug("agglo: clustering",
		zap.Int("n", n),
		zap.Stringer("linkage", cfg.Linkage),
		zap.String("strategy", string(strategy)),
		zap.Bool("squared", restore),
	)

	builder := NewPointerHierarchyBuilder(n, false, cfg.Logger)
	if strategy == StrategyMST {
		if err := clusterMST(n, dist, builder, cfg.Logger); err != nil {
			return nil, err
		}
		return builder.Complete(), nil
	}

	mat, err := fillMatrix(n, dist, cfg.Workers)
	if err != nil {
		return nil, err
	}
	s := newClusterState(mat, cfg.Logger)
	mergeLoop(s, newSelector(strategy), lanceWilliamsUpdater{rule: cfg.Linkage, restore: restore})
	return s.replay(builder), nil
}
