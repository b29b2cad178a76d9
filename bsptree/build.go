// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package bsptree

import (
	"math"
)

const (
	// MaxBoxes is the largest number of boxes an Index can be built
	// from. Leaf references and split node indices are 16-bit.
	MaxBoxes = math.MaxUint16
	// DefaultLeafSize is the leaf size used when Builder.LeafSize is
	// zero.
	DefaultLeafSize = 4
	// DefaultEpsilon is the edge-snapping tolerance used when
	// Builder.Epsilon is zero.
	DefaultEpsilon = 2.0
)

// DefaultBuilder is the Builder used by Build.
var DefaultBuilder = Builder{
	LeafSize: DefaultLeafSize,
	Epsilon:  DefaultEpsilon,
}

// A Builder builds an Index from a box list. The zero value is ready
// to use and is equivalent to DefaultBuilder.
type Builder struct {
	// LeafSize is the largest number of boxes a partition may hold
	// without being split further. Zero means DefaultLeafSize.
	LeafSize int
	// Epsilon is the tolerance for snapping a split to a box edge.
	// When searching for the box edge closest to the middle of a
	// partition, the search stops at the first edge within Epsilon of
	// the middle. Zero means DefaultEpsilon. A negative Epsilon turns
	// the early stop off, so the closest edge is always used.
	Epsilon float64
}

// Build builds an Index from a box list using DefaultBuilder.
func Build(boxes []Box) (*Index, error) {
	return DefaultBuilder.Build(boxes)
}

// Build builds an Index from a non-empty list of at most MaxBoxes
// boxes. The box list is not modified and is not retained by the Index,
// but it must be kept, unmodified, for use in queries.
//
// The Index has at most n split nodes and at most 4n leaf references,
// where n is the number of boxes. A side of a split becomes a leaf,
// however many boxes it holds, when dividing it further would break
// either limit or would not shrink it by at least a quarter.
//
// Build returns an error wrapping ErrInvalidInput if the box list is
// empty and an error wrapping ErrCapacityExceeded if it holds more
// than MaxBoxes boxes. Build panics if LeafSize is negative or Epsilon
// is NaN.
func (b Builder) Build(boxes []Box) (*Index, error) {
	leafSize, epsilon := b.params()

	n := len(boxes)
	if n == 0 {
		return nil, sentinelErr(ErrInvalidInput, "empty box list")
	} else if n > MaxBoxes {
		return nil, sentinelErr(ErrCapacityExceeded, "%d boxes exceeds maximum of %d", n, MaxBoxes)
	}

	maxRefs := 4 * n
	if maxRefs > MaxBoxes {
		maxRefs = MaxBoxes
	}
	g := generator{
		boxes:     boxes,
		leafSize:  leafSize,
		epsilon:   epsilon,
		maxNodes:  n,
		maxRefs:   maxRefs,
		committed: n,
		nodes:     make([]node, 0, n),
		refs:      make([]uint16, 0, maxRefs),
	}

	list := make([]uint16, n)
	for i := range list {
		list[i] = uint16(i)
	}

	if n <= leafSize {
		g.refs = append(g.refs, list...)
		return g.compact(), nil
	}

	g.nodes = append(g.nodes, node{})
	stack := []partition{{split: 0, bound: boundsOf(boxes), list: list}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = g.partition(p, stack[:len(stack)-1])
	}

	return g.compact(), nil
}

func (b Builder) params() (leafSize int, epsilon float64) {
	leafSize, epsilon = b.LeafSize, b.Epsilon
	if leafSize < 0 {
		fmtPanic("negative leaf size %d", leafSize)
	} else if leafSize == 0 {
		leafSize = DefaultLeafSize
	}
	if math.IsNaN(epsilon) {
		fmtPanic("invalid epsilon %g", epsilon)
	} else if epsilon == 0 {
		epsilon = DefaultEpsilon
	}
	return
}

// A partition is a pending work item of the build loop: a region of
// space, the boxes intersecting it, and the split node reserved for it.
type partition struct {
	split int
	bound Rect
	list  []uint16
}

// generator carries the state of a single Build call.
type generator struct {
	boxes    []Box
	leafSize int
	epsilon  float64
	maxNodes int
	maxRefs  int
	// committed is the number of leaf references already emitted plus
	// the list lengths of all pending partitions. Every pending list
	// ends up in at least one leaf, so committed never exceeds the
	// final leaf reference count, and it is kept within maxRefs.
	committed int
	nodes     []node
	refs      []uint16
}

// partition splits a region in two and decides, for each side, whether
// it becomes a leaf or a further partition. New partitions are pushed
// onto stack, which is returned.
func (g *generator) partition(p partition, stack []partition) []partition {
	a := g.axis(p.list)
	lo, hi := p.bound.span(a)
	pos := g.snap(a, lo, hi, p.list)

	sp := node{position: pos}
	if a == AxisX {
		sp.flags = flagAxisX
	}

	low, high := p.bound.cut(a, pos)
	sides := [2]struct {
		high   bool
		bound  Rect
		inside []uint16
	}{{high: false, bound: low}, {high: true, bound: high}}
	grown := -len(p.list)
	for i := range sides {
		sides[i].inside = g.filter(&sides[i].bound, p.list)
		grown += len(sides[i].inside)
	}

	// Both sides share one leaf holding the whole list when the
	// duplicated straddling boxes would overrun the reference budget.
	if g.committed+grown > g.maxRefs {
		start := len(g.refs)
		g.refs = append(g.refs, p.list...)
		sp.setLeaf(false, start, len(p.list))
		sp.setLeaf(true, start, len(p.list))
		g.nodes[p.split] = sp
		return stack
	}
	g.committed += grown

	for _, side := range sides {
		if g.isLeaf(len(side.inside), len(p.list)) {
			sp.setLeaf(side.high, len(g.refs), len(side.inside))
			g.refs = append(g.refs, side.inside...)
		} else {
			child := len(g.nodes)
			g.nodes = append(g.nodes, node{})
			sp.setChild(side.high, child)
			stack = append(stack, partition{split: child, bound: side.bound, list: side.inside})
		}
	}

	g.nodes[p.split] = sp
	return stack
}

// isLeaf reports whether a side holding count of its parent's
// parentCount boxes ends in a leaf.
func (g *generator) isLeaf(count, parentCount int) bool {
	return count <= g.leafSize ||
		4*count > 3*parentCount ||
		len(g.nodes) >= g.maxNodes
}

// axis picks the axis on which the centers of the listed boxes are
// most spread out, measured over box centers and not the partition
// bound. Ties go to the Y axis.
func (g *generator) axis(list []uint16) Axis {
	centers := EmptyRect
	for _, i := range list {
		r := &g.boxes[i].Rect
		centers.ExpandXY(r.midX(), r.midY())
	}
	if centers.Width() > centers.Height() {
		return AxisX
	}
	return AxisY
}

// snap chooses the split position within the open interval (lo, hi)
// on an axis. It starts from the midpoint and moves it to the closest
// box edge strictly inside the interval, stopping at the first edge
// within epsilon of the midpoint. If no edge lies inside the interval,
// the midpoint is used.
func (g *generator) snap(a Axis, lo, hi float64, list []uint16) float64 {
	mid := lo + (hi-lo)/2
	best, bestDist := mid, math.Inf(1)
	for _, i := range list {
		e0, e1 := g.boxes[i].span(a)
		for _, e := range [2]float64{e0, e1} {
			if e <= lo || e >= hi {
				continue
			}
			d := math.Abs(e - mid)
			if d < bestDist {
				best, bestDist = e, d
				if d <= g.epsilon {
					return best
				}
			}
		}
	}
	return best
}

// filter returns the listed boxes which intersect a region.
func (g *generator) filter(r *Rect, list []uint16) []uint16 {
	inside := make([]uint16, 0, len(list))
	for _, i := range list {
		if g.boxes[i].intersects(r) {
			inside = append(inside, i)
		}
	}
	return inside
}

// compact moves the working buffers into a minimally sized Index.
func (g *generator) compact() *Index {
	idx := &Index{
		nodes: make([]node, len(g.nodes)),
		refs:  make([]uint16, len(g.refs)),
	}
	copy(idx.nodes, g.nodes)
	copy(idx.refs, g.refs)
	return idx
}
