package agglo

// UnionFind is a disjoint-set forest with path compression and union by
// size. Besides the n items it reserves n-1 extra ids so that merged clusters
// can be given dendrogram labels n, n+1, ... (see Relabel).
type UnionFind struct {
	parent []int32
	size   []int32
	// nextLabel is the id handed out by the next Relabel, starting at n.
	nextLabel int
}

// NewUnionFind creates a UnionFind for n items, each in its own set.
func NewUnionFind(n int) *UnionFind {
	total := max(2*n-1, 1)
	uf := &UnionFind{
		parent:    make([]int32, total),
		size:      make([]int32, total),
		nextLabel: n,
	}
	for i := range uf.parent {
		uf.parent[i] = -1 // -1 marks a root
	}
	for i := 0; i < n; i++ {
		uf.size[i] = 1
	}
	return uf
}

// Find returns the root of the set containing x, compressing the path.
func (uf *UnionFind) Find(x int) int {
	root := int32(x)
	for uf.parent[root] != -1 {
		root = uf.parent[root]
	}
	for cur := int32(x); uf.parent[cur] != -1; {
		cur, uf.parent[cur] = uf.parent[cur], root
	}
	return int(root)
}

// Size returns the number of items in the set rooted at root.
func (uf *UnionFind) Size(root int) int { return int(uf.size[root]) }

// Union merges the sets containing x and y, attaching the smaller tree under
// the larger one, and returns the new root.
func (uf *UnionFind) Union(x, y int) int {
	rx, ry := uf.Find(x), uf.Find(y)
	if rx == ry {
		return rx
	}
	if uf.size[rx] < uf.size[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = int32(rx)
	uf.size[rx] += uf.size[ry]
	return rx
}

// Relabel merges the two distinct roots a and b under a fresh dendrogram
// label and returns it. Labels are assigned n, n+1, ... in call order, which
// matches the cluster numbering of scipy's linkage matrices.
func (uf *UnionFind) Relabel(a, b int) int {
	label := uf.nextLabel
	uf.nextLabel++
	uf.size[label] = uf.size[a] + uf.size[b]
	uf.parent[a] = int32(label)
	uf.parent[b] = int32(label)
	return label
}
