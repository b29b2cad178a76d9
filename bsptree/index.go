// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package bsptree

import "fmt"

// Index is a static binary space partition over a list of boxes.
//
// An Index consists of a list of split nodes, the first of which is the
// root, and a list of leaf references, each of which is the position
// of a box in the box list the Index was built from. An Index never
// changes after it is built, so a single Index may be searched by any
// number of goroutines at once, as long as nobody modifies the box list.
type Index struct {
	// nodes is the list of split nodes in build order. The root is at
	// index 0. An Index over no more boxes than the leaf size has no
	// split nodes at all, and is a single leaf.
	nodes []node
	// refs is the list of leaf references. Each leaf occupies a
	// contiguous range of refs. A box which straddles a split appears
	// in the leaves on both sides of it.
	refs []uint16
}

// SplitCount returns the number of split nodes in the index.
func (idx *Index) SplitCount() int {
	return len(idx.nodes)
}

// LeafRefCount returns the total number of leaf references in the
// index. Because boxes straddling a split are referenced from both
// sides, this can exceed the number of boxes.
func (idx *Index) LeafRefCount() int {
	return len(idx.refs)
}

// LeafRef returns the i-th leaf reference, which is a position in the
// box list the index was built from.
func (idx *Index) LeafRef(i int) int {
	if i < 0 || i >= len(idx.refs) {
		fmtPanic("leaf reference %d out of range [0, %d)", i, len(idx.refs))
	}
	return int(idx.refs[i])
}

// Split returns a read-only view of the i-th split node. The root
// split, if any, is at index 0.
func (idx *Index) Split(i int) Split {
	if i < 0 || i >= len(idx.nodes) {
		fmtPanic("split %d out of range [0, %d)", i, len(idx.nodes))
	}
	return idx.nodes[i].view()
}

// String returns a summary description of the index.
func (idx *Index) String() string {
	return fmt.Sprintf("Index{Splits:%d,LeafRefs:%d}", len(idx.nodes), len(idx.refs))
}

// A fetchFunc returns the split node at index i. It lets the same tree
// walk run over an in-memory Index and over a serialized one.
type fetchFunc func(i int) (*node, error)

// walk descends from the root split to the leaf which covers the point
// (x, y), returning the leaf's range of leaf references.
func walk(x, y float64, fetch fetchFunc) (start, count int, err error) {
	var i int
	for {
		var n *node
		if n, err = fetch(i); err != nil {
			return
		}
		leaf, index, c := n.side(n.route(x, y))
		if leaf {
			return index, c, nil
		}
		i = index
	}
}

func (idx *Index) fetch(i int) (*node, error) {
	return &idx.nodes[i], nil
}

// leaf returns the range of leaf references which a query for the
// point (x, y) scans.
func (idx *Index) leaf(x, y float64) (start, count int) {
	if len(idx.nodes) == 0 {
		return 0, len(idx.refs)
	}
	start, count, _ = walk(x, y, idx.fetch)
	return
}

// Pick searches the index for a box containing the point (x, y), using
// the half-open rule X <= x < X2 and Y <= y < Y2. The boxes parameter
// must be the box list the index was built from, or one with identical
// order; if it is not, the behavior of Pick is undefined.
//
// Where several boxes contain the point, Pick returns the first one in
// the leaf's storage order. That choice depends on the build and is
// not guaranteed to be the same across indexes built from differently
// ordered box lists.
//
// A point lying exactly on a split position is routed to the low side
// of the split.
func (idx *Index) Pick(boxes []Box, x, y float64) (Result, bool) {
	if idx == nil {
		textPanic("nil index")
	}
	start, count := idx.leaf(x, y)
	return scan(boxes, idx.refs[start:start+count], x, y)
}
