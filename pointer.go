package agglo

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// PointerHierarchyBuilder accumulates a dendrogram in pointer representation.
// Every item starts unlinked (parent = itself, height = +Inf) and is linked
// exactly once, when its cluster is absorbed into another one. The surviving
// item keeps its identity and is linked later, or never if it ends up as the
// root.
//
// A builder is owned by a single run and is not safe for concurrent use.
type PointerHierarchyBuilder struct {
	parent    []int
	height    []float64
	prototype []int
	order     []int
	maxHeight float64
	logger    *zap.Logger
	completed bool
}

// NewPointerHierarchyBuilder creates a builder for n items. When prototypes
// is true, merges must be recorded with AddPrototype. A nil logger discards
// warnings.
func NewPointerHierarchyBuilder(n int, prototypes bool, logger *zap.Logger) *PointerHierarchyBuilder {
	if n < 0 {
		panic(fmt.Sprintf("agglo: negative builder size %d", n))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &PointerHierarchyBuilder{
		parent:    make([]int, n),
		height:    make([]float64, n),
		order:     make([]int, 0, max(n-1, 0)),
		maxHeight: math.Inf(-1),
		logger:    logger,
	}
	for i := range b.parent {
		b.parent[i] = i
		b.height[i] = math.Inf(1)
	}
	if prototypes {
		b.prototype = make([]int, n)
		for i := range b.prototype {
			b.prototype[i] = -1
		}
	}
	return b
}

// Add links absorbed to survivor at the given merge distance.
func (b *PointerHierarchyBuilder) Add(absorbed int, distance float64, survivor int) {
	if b.prototype != nil {
		panic("agglo: builder records prototypes, use AddPrototype")
	}
	b.link(absorbed, distance, survivor)
}

// AddPrototype links absorbed to survivor and records the prototype of the
// merged cluster.
func (b *PointerHierarchyBuilder) AddPrototype(absorbed int, distance float64, survivor, prototype int) {
	if b.prototype == nil {
		panic("agglo: builder does not record prototypes, use Add")
	}
	b.checkItem(prototype)
	b.link(absorbed, distance, survivor)
	b.prototype[absorbed] = prototype
}

func (b *PointerHierarchyBuilder) link(absorbed int, distance float64, survivor int) {
	if b.completed {
		panic("agglo: builder already completed")
	}
	b.checkItem(absorbed)
	b.checkItem(survivor)
	if absorbed == survivor {
		panic(fmt.Sprintf("agglo: cannot merge item %d with itself", absorbed))
	}
	if b.parent[absorbed] != absorbed {
		panic(fmt.Sprintf("agglo: item %d already merged into %d", absorbed, b.parent[absorbed]))
	}
	if b.parent[survivor] != survivor {
		panic(fmt.Sprintf("agglo: survivor %d already merged into %d", survivor, b.parent[survivor]))
	}
	if math.IsNaN(distance) {
		panic(fmt.Sprintf("agglo: NaN merge distance for item %d", absorbed))
	}

	if distance < b.maxHeight {
		b.logger.Warn("agglo: non-monotonic merge height adjusted",
			zap.Int("item", absorbed),
			zap.Int("survivor", survivor),
			zap.Float64("height", distance),
			zap.Float64("adjusted", b.maxHeight),
		)
		distance = b.maxHeight
	}
	b.maxHeight = distance

	b.parent[absorbed] = survivor
	b.height[absorbed] = distance
	b.order = append(b.order, absorbed)
}

func (b *PointerHierarchyBuilder) checkItem(i int) {
	if i < 0 || i >= len(b.parent) {
		panic(fmt.Sprintf("agglo: item %d out of range [0, %d)", i, len(b.parent)))
	}
}

// HasPrototypes reports whether merges must be recorded with AddPrototype.
func (b *PointerHierarchyBuilder) HasPrototypes() bool { return b.prototype != nil }

// Complete freezes the builder and returns the finished hierarchy. The
// builder must not be used afterwards.
func (b *PointerHierarchyBuilder) Complete() *PointerHierarchy {
	if b.completed {
		panic("agglo: builder already completed")
	}
	b.completed = true
	return &PointerHierarchy{
		parent:    b.parent,
		height:    b.height,
		prototype: b.prototype,
		order:     b.order,
	}
}

// PointerHierarchy is a finished dendrogram in pointer representation:
// item i was merged into Parent(i) at MergeHeight(i). The root points to
// itself with height +Inf. A PointerHierarchy is immutable and safe for
// concurrent reads.
type PointerHierarchy struct {
	parent    []int
	height    []float64
	prototype []int
	order     []int

	positionsOnce sync.Once
	positions     []int
}

// Len returns the number of items.
func (h *PointerHierarchy) Len() int { return len(h.parent) }

// Parent returns the item that absorbed item i, or i itself for the root.
func (h *PointerHierarchy) Parent(i int) int { return h.parent[i] }

// MergeHeight returns the distance at which item i was absorbed, or +Inf for
// the root.
func (h *PointerHierarchy) MergeHeight(i int) float64 { return h.height[i] }

// HasPrototypes reports whether the hierarchy carries MiniMax prototypes.
func (h *PointerHierarchy) HasPrototypes() bool { return h.prototype != nil }

// Prototype returns the representative of the cluster formed when item i was
// absorbed, or -1 if the hierarchy has no prototypes or i is the root.
func (h *PointerHierarchy) Prototype(i int) int {
	if h.prototype == nil {
		return -1
	}
	return h.prototype[i]
}

// MergeOrder returns the absorbed items by ascending merge height. Merges of
// equal height keep the order in which they were performed.
func (h *PointerHierarchy) MergeOrder() []int {
	out := make([]int, len(h.order))
	copy(out, h.order)
	return out
}

// Root returns the item that was never absorbed, or -1 for an empty
// hierarchy. When fewer than n-1 merges were recorded, the root with the
// lowest index is returned.
func (h *PointerHierarchy) Root() int {
	for i, p := range h.parent {
		if p == i {
			return i
		}
	}
	return -1
}

// DendrogramPosition returns the horizontal drawing position of item i.
// Every cluster of the hierarchy occupies a contiguous range of positions,
// so the dendrogram can be drawn without crossings. Positions are computed
// on first use.
func (h *PointerHierarchy) DendrogramPosition(i int) int {
	h.positionsOnce.Do(h.computePositions)
	return h.positions[i]
}

// computePositions orders the items so that each item comes right after the
// subtrees of all items merged into it. Children are visited by descending
// merge height (latest merge first), which keeps every intermediate cluster
// contiguous: the cluster of x at height t is x plus the children merged at
// or below t, and those form a suffix of x's child list.
func (h *PointerHierarchy) computePositions() {
	n := len(h.parent)
	h.positions = make([]int, n)
	if n == 0 {
		return
	}

	// Merge rank breaks height ties so that later merges come first.
	rank := make([]int, n)
	for i := range rank {
		rank[i] = n
	}
	for r, item := range h.order {
		rank[item] = r
	}

	byHeight := make([]int, n)
	for i := range byHeight {
		byHeight[i] = i
	}
	sort.SliceStable(byHeight, func(a, b int) bool {
		ia, ib := byHeight[a], byHeight[b]
		if h.height[ia] != h.height[ib] {
			return h.height[ia] > h.height[ib]
		}
		return rank[ia] > rank[ib]
	})

	// Children lists in descending height order, stored as linked lists.
	firstChild := make([]int, n)
	nextSibling := make([]int, n)
	lastChild := make([]int, n)
	for i := range firstChild {
		firstChild[i] = -1
		nextSibling[i] = -1
		lastChild[i] = -1
	}
	var roots []int
	for _, item := range byHeight {
		p := h.parent[item]
		if p == item {
			roots = append(roots, item)
			continue
		}
		if lastChild[p] < 0 {
			firstChild[p] = item
		} else {
			nextSibling[lastChild[p]] = item
		}
		lastChild[p] = item
	}

	// Iterative post-order: emit all child subtrees, then the item itself.
	pos := 0
	type frame struct{ item, child int }
	stack := make([]frame, 0, 64)
	for _, root := range roots {
		stack = append(stack, frame{root, firstChild[root]})
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.child >= 0 {
				c := top.child
				top.child = nextSibling[c]
				stack = append(stack, frame{c, firstChild[c]})
				continue
			}
			h.positions[top.item] = pos
			pos++
			stack = stack[:len(stack)-1]
		}
	}
}
