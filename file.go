// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package bspfile reads and writes box index files. An index file
// holds a list of boxes together with a bsptree.Index over them, so a
// point query index can be built once and reused from storage.
package bspfile

import (
	"fmt"
	"io"

	"github.com/gogama/bspfile/bsptree"
	flatbuffers "github.com/google/flatbuffers/go"
)

// Box table layout, following the magic number. All values are
// little-endian:
//
//	count: uint32
//	boxes: count records of X, Y, X2, Y2 float64, Data int64
const (
	countBytes = flatbuffers.SizeUint32
	boxBytes   = 4*flatbuffers.SizeFloat64 + flatbuffers.SizeInt64
)

// File is a self-contained point query index: a box list together
// with the bsptree.Index built over it. Unlike a bare bsptree.Index, a
// File owns its boxes, so it can be written to a stream and read back
// without the caller keeping track of the original box slice.
//
// A File is read-only and safe for concurrent use.
type File struct {
	boxes []bsptree.Box
	index *bsptree.Index
}

// Build builds a File over a copy of the given boxes using the given
// Builder.
func Build(boxes []bsptree.Box, b bsptree.Builder) (*File, error) {
	index, err := b.Build(boxes)
	if err != nil {
		return nil, err
	}
	own := make([]bsptree.Box, len(boxes))
	copy(own, boxes)
	return &File{boxes: own, index: index}, nil
}

// Boxes returns the boxes the File indexes. The returned slice must
// not be modified.
func (f *File) Boxes() []bsptree.Box {
	return f.boxes
}

// Index returns the index over the File's boxes.
func (f *File) Index() *bsptree.Index {
	return f.index
}

// Pick finds a box containing the point (x, y). See bsptree.Index.Pick
// for the query semantics.
func (f *File) Pick(x, y float64) (bsptree.Result, bool) {
	return f.index.Pick(f.boxes, x, y)
}

// String returns a compact summary of the File.
func (f *File) String() string {
	return fmt.Sprintf("File{Boxes:%d,Index:%s}", len(f.boxes), f.index)
}

// WriteTo writes the File to a stream, returning the number of bytes
// written. It implements the io.WriterTo interface.
func (f *File) WriteTo(w io.Writer) (n int64, err error) {
	if w == nil {
		textPanic("nil writer")
	}

	b := make([]byte, magicLen+countBytes+len(f.boxes)*boxBytes)
	copy(b, magic[:])
	flatbuffers.WriteUint32(b[magicLen:], uint32(len(f.boxes)))
	off := magicLen + countBytes
	for i := range f.boxes {
		encodeBox(b[off:], &f.boxes[i])
		off += boxBytes
	}

	var m int
	m, err = w.Write(b)
	n += int64(m)
	if err != nil {
		err = wrapErr("failed to write box table", err)
		return
	}
	m, err = f.index.Marshal(w)
	n += int64(m)
	if err != nil {
		err = wrapErr("failed to write index", err)
	}
	return
}

// ReadFile reads a File from a stream. If this function returns without
// error, the reader is positioned just past the end of the File.
func ReadFile(r io.Reader) (*File, error) {
	if r == nil {
		textPanic("nil reader")
	}
	if _, err := readVersion(r); err != nil {
		return nil, err
	}
	boxes, err := readBoxes(r)
	if err != nil {
		return nil, err
	}
	index, err := bsptree.Unmarshal(r)
	if err != nil {
		return nil, wrapErr("failed to read index", err)
	}
	for i := 0; i < index.LeafRefCount(); i++ {
		if ref := index.LeafRef(i); ref >= len(boxes) {
			return nil, fmtErr("index leaf reference %d out of range of %d boxes", ref, len(boxes))
		}
	}
	return &File{boxes: boxes, index: index}, nil
}

// Seek picks a box containing the point (x, y) directly from a File
// in a seekable stream. The box table is read in full but only the
// parts of the index on the path to the point are read, so Seek is a
// reasonable choice for a one-off query against a large File.
//
// The seekable reader should be positioned at the start of the File.
// If this function returns without error, the reader is positioned
// just past the end of the File.
func Seek(rs io.ReadSeeker, x, y float64) (r bsptree.Result, ok bool, err error) {
	if rs == nil {
		textPanic("nil read seeker")
	}
	if _, err = readVersion(rs); err != nil {
		return
	}
	var boxes []bsptree.Box
	if boxes, err = readBoxes(rs); err != nil {
		return
	}
	if r, ok, err = bsptree.Seek(rs, boxes, x, y); err != nil {
		err = wrapErr("failed to seek index", err)
	}
	return
}

func readBoxes(r io.Reader) ([]bsptree.Box, error) {
	var c [countBytes]byte
	if _, err := io.ReadFull(r, c[:]); err != nil {
		return nil, wrapErr("failed to read box count", err)
	}
	count := flatbuffers.GetUint32(c[:])
	if count == 0 {
		return nil, textErr("empty box table")
	} else if count > bsptree.MaxBoxes {
		return nil, fmtErr("box count %d exceeds maximum of %d", count, bsptree.MaxBoxes)
	}

	b := make([]byte, int(count)*boxBytes)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, wrapErr("failed to read box table", err)
	}
	boxes := make([]bsptree.Box, count)
	for i := range boxes {
		decodeBox(b[i*boxBytes:], &boxes[i])
	}
	return boxes, nil
}

func encodeBox(b []byte, box *bsptree.Box) {
	flatbuffers.WriteFloat64(b[0:], box.X)
	flatbuffers.WriteFloat64(b[8:], box.Y)
	flatbuffers.WriteFloat64(b[16:], box.X2)
	flatbuffers.WriteFloat64(b[24:], box.Y2)
	flatbuffers.WriteInt64(b[32:], box.Data)
}

func decodeBox(b []byte, box *bsptree.Box) {
	_ = b[boxBytes-1] // Bounds check hint to compiler: see golang.org/issue/14808
	box.X = flatbuffers.GetFloat64(b[0:])
	box.Y = flatbuffers.GetFloat64(b[8:])
	box.X2 = flatbuffers.GetFloat64(b[16:])
	box.Y2 = flatbuffers.GetFloat64(b[24:])
	box.Data = flatbuffers.GetInt64(b[32:])
}
