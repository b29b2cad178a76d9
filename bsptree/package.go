// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package bsptree provides a static binary space partition over a
// fixed set of two-dimensional, axis-aligned boxes, together with a
// point query which finds a box containing a given point.
//
// An Index is built once from a box slice and is read-only thereafter.
// The Index stores references (positions) into the caller's box slice
// rather than copies of the boxes, so the same slice must be passed to
// every query against the Index.
package bsptree
