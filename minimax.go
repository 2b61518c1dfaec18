package agglo

import (
	"github.com/RoaringBitmap/roaring"
	"go.uber.org/zap"
)

// miniMaxUpdater maintains MiniMax linkage: the distance of two clusters is
// the smallest radius, over all candidate prototypes p in their union, of the
// farthest member from p. There is no Lance-Williams form, so every merge
// recomputes the survivor's distances from raw item distances.
//
// Singleton clusters stay implicit; a slot gets an explicit member set the
// first time it absorbs another slot. Every item also carries its
// eccentricity within its current cluster (the distance to the farthest
// other member), so a merge only has to look at pairs that cross the two
// clusters.
type miniMaxUpdater struct {
	dist func(i, j int) float64

	// prototypes holds the best prototype of every slot pair, at the same
	// offsets as the distance matrix.
	prototypes []int32
	members    []*roaring.Bitmap
	ecc        []float64
}

func newMiniMaxUpdater(n int, dist func(i, j int) float64) *miniMaxUpdater {
	u := &miniMaxUpdater{
		dist:       dist,
		prototypes: make([]int32, triangleSize(n)),
		members:    make([]*roaring.Bitmap, n),
		ecc:        make([]float64, n),
	}
	// Both items of a pair are equally good; the lower one represents it.
	for x := 1; x < n; x++ {
		row := u.prototypes[triangleIndex(x) : triangleIndex(x)+x]
		for y := range row {
			row[y] = int32(y)
		}
	}
	return u
}

func (u *miniMaxUpdater) merge(s *clusterState, x, y int, d float64) {
	proto := int(u.prototypes[s.mat.offset(x, y)])
	s.record(x, y, d, proto)

	yItems, xItems := u.slotItems(y), u.slotItems(x)
	yRadius, xRadius := u.crossRadii(yItems, xItems)
	for a, p := range yItems {
		u.ecc[p] = yRadius[a]
	}
	for b, q := range xItems {
		u.ecc[q] = xRadius[b]
	}

	merged := u.memberSet(y)
	merged.Or(u.memberSet(x))
	u.members[y] = merged
	u.members[x] = nil

	items := merged.ToArray()
	for j := 0; j < s.n; j++ {
		if j == x || j == y || !s.active[j] {
			continue
		}
		dj, pj := u.linkage(items, j)
		off := s.mat.offset(y, j)
		s.mat.data[off] = dj
		u.prototypes[off] = int32(pj)
	}
}

// memberSet returns the members of slot, materializing singletons.
func (u *miniMaxUpdater) memberSet(slot int) *roaring.Bitmap {
	if m := u.members[slot]; m != nil {
		return m
	}
	return roaring.BitmapOf(uint32(slot))
}

// slotItems returns the members of slot in ascending order.
func (u *miniMaxUpdater) slotItems(slot int) []uint32 {
	if m := u.members[slot]; m != nil {
		return m.ToArray()
	}
	return []uint32{uint32(slot)}
}

// crossRadii returns, for every item of a and of b, its eccentricity within
// the union of both clusters. Distances inside each side come from the
// cached eccentricities; only cross pairs are evaluated.
func (u *miniMaxUpdater) crossRadii(a, b []uint32) ([]float64, []float64) {
	ra := make([]float64, len(a))
	rb := make([]float64, len(b))
	for i, p := range a {
		ra[i] = u.ecc[p]
	}
	for k, q := range b {
		rb[k] = u.ecc[q]
	}

	for i, p := range a {
		for k, q := range b {
			d := u.rawDistance(p, q)
			if d > ra[i] {
				ra[i] = d
			}
			if d > rb[k] {
				rb[k] = d
			}
		}
	}
	return ra, rb
}

// linkage computes the MiniMax distance and prototype between the cluster
// holding items and slot j. Candidates from items win ties, then lower
// items.
func (u *miniMaxUpdater) linkage(items []uint32, j int) (float64, int) {
	jItems := u.slotItems(j)
	radius, jRadius := u.crossRadii(items, jItems)

	best, proto := radius[0], int(items[0])
	for a := 1; a < len(items); a++ {
		if radius[a] < best {
			best, proto = radius[a], int(items[a])
		}
	}
	for b, q := range jItems {
		if jRadius[b] < best {
			best, proto = jRadius[b], int(q)
		}
	}
	return best, proto
}

func (u *miniMaxUpdater) rawDistance(p, q uint32) float64 {
	if p < q {
		p, q = q, p
	}
	return u.dist(int(p), int(q))
}

// clusterMiniMax runs the prototype engine.
func clusterMiniMax(n int, dist func(i, j int) float64, cfg Config) (*PointerHierarchy, error) {
	if err := checkSize(n); err != nil {
		return nil, err
	}
	strategy, err := selectStrategy(cfg.Strategy, nil)
	if err != nil {
		return nil, err
	}
	cfg.Logger.Debug("agglo: clustering",
		zap.Int("n", n),
		zap.String("linkage", "minimax"),
		zap.String("strategy", string(strategy)),
	)

	mat, err := fillMatrix(n, dist, cfg.Workers)
	if err != nil {
		return nil, err
	}
	s := newClusterState(mat, cfg.Logger)
	mergeLoop(s, newSelector(strategy), newMiniMaxUpdater(n, dist))
	return s.replay(NewPointerHierarchyBuilder(n, true, cfg.Logger)), nil
}
