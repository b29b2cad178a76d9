// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package bsptree

import (
	"math"
	"strconv"
	"strings"
)

// A Rect is an axis-aligned rectangle with minimum corner (X, Y) and
// maximum corner (X2, Y2).
//
// Rects are half-open: a point on the minimum edge is inside the Rect
// while a point on the maximum edge is not.
type Rect struct {
	X  float64
	Y  float64
	X2 float64
	Y2 float64
}

// EmptyRect is the inverted rectangle which contains nothing and
// which any other Rect can expand. Use it, rather than the zero Rect,
// as the starting value when accumulating a bound.
var EmptyRect = Rect{
	X:  math.Inf(1),
	Y:  math.Inf(1),
	X2: math.Inf(-1),
	Y2: math.Inf(-1),
}

// Width returns the extent of r on the X axis.
func (r *Rect) Width() float64 {
	return r.X2 - r.X
}

// Height returns the extent of r on the Y axis.
func (r *Rect) Height() float64 {
	return r.Y2 - r.Y
}

func (r *Rect) midX() float64 {
	return (r.X + r.X2) / 2
}

func (r *Rect) midY() float64 {
	return (r.Y + r.Y2) / 2
}

// Expand grows r, if necessary, to include s.
func (r *Rect) Expand(s *Rect) {
	if s.X < r.X {
		r.X = s.X
	}
	if s.Y < r.Y {
		r.Y = s.Y
	}
	if s.X2 > r.X2 {
		r.X2 = s.X2
	}
	if s.Y2 > r.Y2 {
		r.Y2 = s.Y2
	}
}

// ExpandXY grows r, if necessary, to include the point (x, y).
func (r *Rect) ExpandXY(x, y float64) {
	if x < r.X {
		r.X = x
	}
	if y < r.Y {
		r.Y = y
	}
	if x > r.X2 {
		r.X2 = x
	}
	if y > r.Y2 {
		r.Y2 = y
	}
}

// Contains reports whether the point (x, y) lies within the half-open
// rectangle [X, X2) x [Y, Y2).
func (r *Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X2 && y >= r.Y && y < r.Y2
}

// intersects reports whether r and s overlap with a non-empty area.
// Rectangles which merely share an edge do not intersect.
func (r *Rect) intersects(s *Rect) bool {
	return r.X < s.X2 && r.X2 > s.X &&
		r.Y < s.Y2 && r.Y2 > s.Y
}

// span returns the minimum and maximum coordinate of r on an axis.
func (r *Rect) span(a Axis) (lo, hi float64) {
	if a == AxisX {
		return r.X, r.X2
	}
	return r.Y, r.Y2
}

// cut divides r at position pos on an axis into a low part, truncated
// at pos on the high side, and a high part, truncated at pos on the low
// side. The two parts share the coordinate pos.
func (r *Rect) cut(a Axis, pos float64) (low, high Rect) {
	low, high = *r, *r
	if a == AxisX {
		low.X2 = pos
		high.X = pos
	} else {
		low.Y2 = pos
		high.Y = pos
	}
	return
}

// String returns a compact representation of the rectangle in the
// form [X,Y,X2,Y2].
func (r Rect) String() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(strconv.FormatFloat(r.X, 'g', 8, 64))
	b.WriteByte(',')
	b.WriteString(strconv.FormatFloat(r.Y, 'g', 8, 64))
	b.WriteByte(',')
	b.WriteString(strconv.FormatFloat(r.X2, 'g', 8, 64))
	b.WriteByte(',')
	b.WriteString(strconv.FormatFloat(r.Y2, 'g', 8, 64))
	b.WriteByte(']')
	return b.String()
}

// A Box is a single item indexed by an Index: an axis-aligned
// rectangle plus an opaque payload.
//
// Boxes must be non-degenerate, i.e. X < X2 and Y < Y2. This is not
// checked.
type Box struct {
	Rect

	// Data is an opaque payload carried along with the rectangle, for
	// example an identifier of the object the box stands for.
	Data int64
}

// String returns a summary of the box in the form
// Box{[X,Y,X2,Y2],Data:n}.
func (b Box) String() string {
	return "Box{" + b.Rect.String() + ",Data:" + strconv.FormatInt(b.Data, 10) + "}"
}

// boundsOf computes the bounding rectangle of a non-empty box list in
// a single pass.
func boundsOf(boxes []Box) Rect {
	r := EmptyRect
	for i := range boxes {
		r.Expand(&boxes[i].Rect)
	}
	return r
}
