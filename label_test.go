package agglo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkage_FourPoints(t *testing.T) {
	// Merges: 1→0 @1, 3→2 @1, 2→0 @8.
	//
	// Row 0: find(1)=1, find(0)=0 → [0, 1, 1, 2], new cluster 4
	// Row 1: find(3)=3, find(2)=2 → [2, 3, 1, 2], new cluster 5
	// Row 2: find(2)=5, find(0)=4 → [4, 5, 8, 4], new cluster 6
	b := NewPointerHierarchyBuilder(4, false, nil)
	b.Add(1, 1, 0)
	b.Add(3, 1, 2)
	b.Add(2, 8, 0)

	rows := b.Complete().Linkage()
	expected := [][4]float64{
		{0, 1, 1, 2},
		{2, 3, 1, 2},
		{4, 5, 8, 4},
	}
	assert.Equal(t, expected, rows)
}

func TestLinkage_SinglePoint(t *testing.T) {
	h := NewPointerHierarchyBuilder(1, false, nil).Complete()
	assert.Empty(t, h.Linkage())
}

func TestLinkage_ChainSizesGrow(t *testing.T) {
	b := NewPointerHierarchyBuilder(5, false, nil)
	for i := 1; i < 5; i++ {
		b.Add(i, float64(i), 0)
	}
	rows := b.Complete().Linkage()
	require.Len(t, rows, 4)

	for i, row := range rows {
		assert.Equal(t, float64(i+2), row[3], "row %d size", i)
		assert.Equal(t, float64(i+1), row[2], "row %d height", i)
	}
	// The last row joins item 4 with cluster 7 (the previous merge).
	assert.Equal(t, [4]float64{4, 7, 4, 5}, rows[3])
}
