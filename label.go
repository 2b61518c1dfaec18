package agglo

// Linkage converts the hierarchy into a linkage matrix in scipy format. Each
// row is [left, right, height, size] for one merge, in merge order. Items are
// numbered 0..n-1 and the cluster created by row k gets id n+k; left is the
// smaller of the two ids.
//
// Hierarchies with fewer than two items produce no rows.
func (h *PointerHierarchy) Linkage() [][4]float64 {
	n := h.Len()
	if len(h.order) == 0 {
		return nil
	}

	uf := NewUnionFind(n)
	rows := make([][4]float64, 0, len(h.order))
	for _, item := range h.order {
		a := uf.Find(item)
		b := uf.Find(h.parent[item])
		if a > b {
			a, b = b, a
		}
		label := uf.Relabel(a, b)
		rows = append(rows, [4]float64{
			float64(a),
			float64(b),
			h.height[item],
			float64(uf.Size(label)),
		})
	}
	return rows
}
