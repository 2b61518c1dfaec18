package agglo

import "math"

// exhaustiveSelector scans the whole lower triangle before every merge and
// takes the first strict minimum in row-major order.
type exhaustiveSelector struct{}

func (exhaustiveSelector) init(*clusterState) {}

func (exhaustiveSelector) next(s *clusterState) (int, int, float64) {
	bx, by, best := -1, -1, math.Inf(1)
	for x := 1; x < s.n; x++ {
		if !s.active[x] {
			continue
		}
		row := s.mat.data[triangleIndex(x) : triangleIndex(x)+x]
		for y, d := range row {
			if !s.active[y] {
				continue
			}
			if bx < 0 || d < best {
				bx, by, best = x, y, d
			}
		}
	}
	return bx, by, best
}

func (exhaustiveSelector) merged(*clusterState, int, int) {}

// anderbergSelector keeps, for every slot x, its nearest active slot among
// y < x. The global minimum is then a scan over n cached values. After a
// merge only the survivor's row, the rows that now see a closer survivor and
// the rows whose cached neighbor was one of the merged slots are touched.
type anderbergSelector struct {
	best   []float64
	target []int
}

func (a *anderbergSelector) init(s *clusterState) {
	a.best = make([]float64, s.n)
	a.target = make([]int, s.n)
	a.best[0], a.target[0] = math.Inf(1), -1
	for x := 1; x < s.n; x++ {
		a.rescan(s, x)
	}
}

// rescan recomputes the cache entry of row x in O(x).
func (a *anderbergSelector) rescan(s *clusterState, x int) {
	best, target := math.Inf(1), -1
	row := s.mat.data[triangleIndex(x) : triangleIndex(x)+x]
	for y, d := range row {
		if !s.active[y] {
			continue
		}
		if target < 0 || d < best {
			best, target = d, y
		}
	}
	a.best[x], a.target[x] = best, target
}

func (a *anderbergSelector) next(s *clusterState) (int, int, float64) {
	bx := -1
	for x := 1; x < s.n; x++ {
		if !s.active[x] || a.target[x] < 0 {
			continue
		}
		if bx < 0 || a.best[x] < a.best[bx] {
			bx = x
		}
	}
	return bx, a.target[bx], a.best[bx]
}

func (a *anderbergSelector) merged(s *clusterState, x, y int) {
	a.best[x], a.target[x] = math.Inf(1), -1
	a.rescan(s, y)
	for j := y + 1; j < s.n; j++ {
		if !s.active[j] {
			continue
		}
		d := s.mat.Get(j, y)
		switch {
		case d < a.best[j] || (d == a.best[j] && y < a.target[j]):
			a.best[j], a.target[j] = d, y
		case a.target[j] == y || a.target[j] == x:
			a.rescan(s, j)
		}
	}
}

// nnChainSelector grows a chain in which every element is the nearest
// neighbor of its predecessor, until the last two elements are each other's
// nearest neighbors. For reducible rules the rest of the chain stays valid
// after the merge, which bounds the total work at O(n²).
type nnChainSelector struct {
	chain []int
}

func (c *nnChainSelector) init(s *clusterState) {
	c.chain = make([]int, 0, s.n)
}

func (c *nnChainSelector) next(s *clusterState) (int, int, float64) {
	if len(c.chain) == 0 {
		for i, live := range s.active {
			if live {
				c.chain = append(c.chain, i)
				break
			}
		}
	}
	for {
		a := c.chain[len(c.chain)-1]
		prev := -1
		if len(c.chain) >= 2 {
			prev = c.chain[len(c.chain)-2]
		}

		// Ties go to the predecessor, which guarantees termination, and
		// otherwise to the lowest index.
		b, d := prev, math.Inf(1)
		if prev >= 0 {
			d = s.mat.Get(a, prev)
		}
		for j := 0; j < s.n; j++ {
			if j == a || j == prev || !s.active[j] {
				continue
			}
			if v := s.mat.Get(a, j); b < 0 || v < d {
				b, d = j, v
			}
		}

		if b == prev {
			c.chain = c.chain[:len(c.chain)-2]
			if a < b {
				a, b = b, a
			}
			return a, b, d
		}
		c.chain = append(c.chain, b)
	}
}

func (c *nnChainSelector) merged(*clusterState, int, int) {}
