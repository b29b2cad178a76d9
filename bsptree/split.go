// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package bsptree

import "fmt"

// An Axis is the dimension along which a split divides its region.
type Axis int

const (
	// AxisY means the split position is a Y-coordinate.
	AxisY Axis = iota
	// AxisX means the split position is an X-coordinate.
	AxisX
)

// String returns "X" or "Y".
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Split node flags.
const (
	flagAxisX    uint16 = 1 << 0
	flagLowLeaf  uint16 = 1 << 1
	flagHighLeaf uint16 = 1 << 2
	flagMask            = flagAxisX | flagLowLeaf | flagHighLeaf
)

// A node is a single split decision in the tree. It is laid out the
// same way it is serialized.
//
// Each side of the split is either a leaf or an internal subtree. For
// a leaf side, the index is the position of the first leaf reference
// and the count is the number of leaf references. For an internal
// side, the index is the position of the child node and the count is
// zero.
type node struct {
	flags     uint16
	lowIndex  uint16
	lowCount  uint16
	highIndex uint16
	highCount uint16
	position  float64
}

func (n *node) axis() Axis {
	if n.flags&flagAxisX != 0 {
		return AxisX
	}
	return AxisY
}

func (n *node) setLeaf(high bool, start, count int) {
	if high {
		n.flags |= flagHighLeaf
		n.highIndex = uint16(start)
		n.highCount = uint16(count)
	} else {
		n.flags |= flagLowLeaf
		n.lowIndex = uint16(start)
		n.lowCount = uint16(count)
	}
}

func (n *node) setChild(high bool, index int) {
	if high {
		n.highIndex = uint16(index)
	} else {
		n.lowIndex = uint16(index)
	}
}

// side returns the target of one side of the node: whether it is a
// leaf, plus its index and count.
func (n *node) side(high bool) (leaf bool, index, count int) {
	if high {
		return n.flags&flagHighLeaf != 0, int(n.highIndex), int(n.highCount)
	}
	return n.flags&flagLowLeaf != 0, int(n.lowIndex), int(n.lowCount)
}

// route reports whether the point (x, y) belongs to the high side of
// the node. Only a coordinate strictly greater than the split position
// goes high, so a point exactly on the split goes low.
func (n *node) route(x, y float64) bool {
	if n.flags&flagAxisX != 0 {
		return x > n.position
	}
	return y > n.position
}

// A Side is a read-only view of one side of a Split.
type Side struct {
	// Leaf is true if the side terminates in a leaf.
	Leaf bool
	// Index is the first leaf reference of a leaf side, or the split
	// index of the child of an internal side.
	Index int
	// Count is the number of leaf references of a leaf side, and zero
	// for an internal side.
	Count int
}

// A Split is a read-only view of a split decision in an Index.
type Split struct {
	// Axis is the dimension the split divides.
	Axis Axis
	// Position is the coordinate on Axis at which the split divides.
	// Points with a coordinate strictly greater than Position belong
	// to High; all other points belong to Low.
	Position float64
	Low      Side
	High     Side
}

func (n *node) view() Split {
	var s Split
	s.Axis = n.axis()
	s.Position = n.position
	s.Low.Leaf, s.Low.Index, s.Low.Count = n.side(false)
	s.High.Leaf, s.High.Index, s.High.Count = n.side(true)
	return s
}
