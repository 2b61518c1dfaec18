package agglo

import "fmt"

// MaxItems is the largest number of items a single run accepts. Pair offsets
// into the triangular matrix are kept within a signed 32-bit range, and
// 0x10000*(0x10000-1)/2 is the last size that fits.
const MaxItems = 0x10000

// TriangularMatrix stores the n(n-1)/2 values of a symmetric matrix with an
// implicit zero diagonal. Entry (x, y) with x > y lives at
// triangleIndex(x) + y. Slots are never removed; callers track liveness
// themselves.
type TriangularMatrix struct {
	n    int
	data []float64
}

// NewTriangularMatrix allocates a zeroed matrix for n slots.
// Panics if n is negative or larger than MaxItems.
func NewTriangularMatrix(n int) *TriangularMatrix {
	if n < 0 || n > MaxItems {
		panic(fmt.Sprintf("agglo: triangular matrix size %d out of range [0, %d]", n, MaxItems))
	}
	return &TriangularMatrix{
		n:    n,
		data: make([]float64, triangleSize(n)),
	}
}

// triangleIndex returns the offset of the first entry of row x.
func triangleIndex(x int) int {
	return x * (x - 1) >> 1
}

func triangleSize(n int) int {
	if n < 2 {
		return 0
	}
	return triangleIndex(n)
}

// offset maps an unordered pair to its storage position.
func (m *TriangularMatrix) offset(x, y int) int {
	if x < y {
		x, y = y, x
	}
	if x == y || y < 0 || x >= m.n {
		panic(fmt.Sprintf("agglo: invalid matrix index (%d, %d) for size %d", x, y, m.n))
	}
	return triangleIndex(x) + y
}

// Len returns the number of slots.
func (m *TriangularMatrix) Len() int { return m.n }

// Get returns the value stored for the pair (x, y). x and y may be given in
// either order but must differ.
func (m *TriangularMatrix) Get(x, y int) float64 {
	return m.data[m.offset(x, y)]
}

// Set stores v for the pair (x, y).
func (m *TriangularMatrix) Set(x, y int, v float64) {
	m.data[m.offset(x, y)] = v
}

// Fill evaluates dist once for every pair and stores the result.
// dist is always called with i > j.
func (m *TriangularMatrix) Fill(dist func(i, j int) float64) {
	fillRows(m, dist, 1, m.n)
}

// fillRows fills rows [start, end).
func fillRows(m *TriangularMatrix, dist func(i, j int) float64, start, end int) {
	for x := start; x < end; x++ {
		row := m.data[triangleIndex(x) : triangleIndex(x)+x]
		for y := range row {
			row[y] = dist(x, y)
		}
	}
}
