// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package bsptree

import (
	"io"

	flatbuffers "github.com/google/flatbuffers/go"
)

// Serialized index layout. All values are little-endian and packed
// without padding:
//
//	header:    splitCount uint16, leafRefCount uint16
//	splits:    splitCount records of
//	           flags, lowIndex, lowCount, highIndex, highCount uint16,
//	           position float64
//	leaf refs: leafRefCount uint16 box positions
const (
	headerBytes = 2 * flatbuffers.SizeUint16
	nodeBytes   = 5*flatbuffers.SizeUint16 + flatbuffers.SizeFloat64
	refBytes    = flatbuffers.SizeUint16
)

func (n *node) encode(b []byte) {
	flatbuffers.WriteUint16(b[0:], n.flags)
	flatbuffers.WriteUint16(b[2:], n.lowIndex)
	flatbuffers.WriteUint16(b[4:], n.lowCount)
	flatbuffers.WriteUint16(b[6:], n.highIndex)
	flatbuffers.WriteUint16(b[8:], n.highCount)
	flatbuffers.WriteFloat64(b[10:], n.position)
}

func (n *node) decode(b []byte) {
	_ = b[nodeBytes-1] // Bounds check hint to compiler: see golang.org/issue/14808
	n.flags = flatbuffers.GetUint16(b[0:])
	n.lowIndex = flatbuffers.GetUint16(b[2:])
	n.lowCount = flatbuffers.GetUint16(b[4:])
	n.highIndex = flatbuffers.GetUint16(b[6:])
	n.highCount = flatbuffers.GetUint16(b[8:])
	n.position = flatbuffers.GetFloat64(b[10:])
}

func decodeHeader(b []byte) (numNodes, numRefs int) {
	return int(flatbuffers.GetUint16(b[0:])), int(flatbuffers.GetUint16(b[2:]))
}

func bodySize(numNodes, numRefs int) int {
	return numNodes*nodeBytes + numRefs*refBytes
}

// checkNode verifies that the split node at index i of a tree with
// numNodes split nodes and numRefs leaf references only points where
// it may: leaves stay within the leaf references and children come
// strictly after their parent, which guarantees every walk ends.
func checkNode(n *node, i, numNodes, numRefs int) error {
	if n.flags&^flagMask != 0 {
		return fmtErr("invalid split %d: unknown flags 0x%x", i, n.flags)
	}
	for _, high := range [2]bool{false, true} {
		leaf, index, count := n.side(high)
		if leaf {
			if index+count > numRefs {
				return fmtErr("invalid split %d: leaf [%d..%d) out of range of %d leaf references", i, index, index+count, numRefs)
			}
		} else if index <= i || index >= numNodes {
			return fmtErr("invalid split %d: child %d out of range (%d..%d)", i, index, i, numNodes)
		}
	}
	return nil
}

func (idx *Index) validate() error {
	if len(idx.refs) == 0 {
		return textErr("invalid index: no leaf references")
	}
	for i := range idx.nodes {
		if err := checkNode(&idx.nodes[i], i, len(idx.nodes), len(idx.refs)); err != nil {
			return err
		}
	}
	return nil
}

// Size returns the size in bytes of the serialized index.
func (idx *Index) Size() int {
	return headerBytes + bodySize(len(idx.nodes), len(idx.refs))
}

// MarshalBinary serializes the index. It implements the
// encoding.BinaryMarshaler interface and never returns an error.
func (idx *Index) MarshalBinary() ([]byte, error) {
	b := make([]byte, idx.Size())
	flatbuffers.WriteUint16(b[0:], uint16(len(idx.nodes)))
	flatbuffers.WriteUint16(b[2:], uint16(len(idx.refs)))
	off := headerBytes
	for i := range idx.nodes {
		idx.nodes[i].encode(b[off:])
		off += nodeBytes
	}
	for _, ref := range idx.refs {
		flatbuffers.WriteUint16(b[off:], ref)
		off += refBytes
	}
	return b, nil
}

// UnmarshalBinary replaces the contents of the index with the
// deserialized contents of data, which must hold exactly one
// serialized index. It implements the encoding.BinaryUnmarshaler
// interface. If the data is malformed, the index is left unchanged.
func (idx *Index) UnmarshalBinary(data []byte) error {
	if len(data) < headerBytes {
		return fmtErr("index too short: %d bytes", len(data))
	}
	numNodes, numRefs := decodeHeader(data)
	if expected := headerBytes + bodySize(numNodes, numRefs); len(data) != expected {
		return fmtErr("index size mismatch: header implies %d bytes, got %d", expected, len(data))
	}
	tmp := decodeBody(numNodes, numRefs, data[headerBytes:])
	if err := tmp.validate(); err != nil {
		return err
	}
	*idx = *tmp
	return nil
}

func decodeBody(numNodes, numRefs int, b []byte) *Index {
	idx := &Index{
		nodes: make([]node, numNodes),
		refs:  make([]uint16, numRefs),
	}
	off := 0
	for i := range idx.nodes {
		idx.nodes[i].decode(b[off:])
		off += nodeBytes
	}
	for i := range idx.refs {
		idx.refs[i] = flatbuffers.GetUint16(b[off:])
		off += refBytes
	}
	return idx
}

// Marshal serializes the index to a writer, returning the number of
// bytes written.
func (idx *Index) Marshal(w io.Writer) (n int, err error) {
	if w == nil {
		textPanic("nil writer")
	}
	b, _ := idx.MarshalBinary()
	return w.Write(b)
}

// Unmarshal deserializes an index from a stream. If this function
// returns without error, the reader is positioned just past the end of
// the index.
//
// The Seek function can be used to query a serialized index without
// needing to Unmarshal it.
func Unmarshal(r io.Reader) (*Index, error) {
	if r == nil {
		textPanic("nil reader")
	}

	var h [headerBytes]byte
	if _, err := io.ReadFull(r, h[:]); err != nil {
		return nil, wrapErr("failed to read index header", err)
	}
	numNodes, numRefs := decodeHeader(h[:])

	b := make([]byte, bodySize(numNodes, numRefs))
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, wrapErr("failed to read index bytes", err)
	}

	idx := decodeBody(numNodes, numRefs, b)
	if err := idx.validate(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Seek picks a box containing the point (x, y) directly from a
// serialized index in a seekable stream, without needing to Unmarshal
// the index. Only the split nodes on the path to the point's leaf, and
// that leaf's references, are read. The boxes parameter has the same
// meaning as for Index.Pick.
//
// The seekable reader should be positioned ready to read the first
// byte of the index. If this function returns without error, the
// reader is positioned just past the end of the index.
func Seek(rs io.ReadSeeker, boxes []Box, x, y float64) (r Result, ok bool, err error) {
	if rs == nil {
		textPanic("nil read seeker")
	}

	// Cache the start offset of the index.
	var startOffset int64
	if startOffset, err = rs.Seek(0, io.SeekCurrent); err != nil {
		err = wrapErr("failed to cache index start offset", err)
		return
	}

	// Read the header and work out where everything is.
	var h [headerBytes]byte
	if _, err = io.ReadFull(rs, h[:]); err != nil {
		err = wrapErr("failed to read index header", err)
		return
	}
	numNodes, numRefs := decodeHeader(h[:])
	if numRefs == 0 {
		err = textErr("invalid index: no leaf references")
		return
	}
	nodesOffset := startOffset + headerBytes
	refsOffset := nodesOffset + int64(numNodes)*nodeBytes
	endOffset := refsOffset + int64(numRefs)*refBytes

	// Keep track of the current offset and only seek when the next
	// read is somewhere else.
	offset := nodesOffset
	seekTo := func(to int64) error {
		if to == offset {
			return nil
		}
		if _, err := rs.Seek(to, io.SeekStart); err != nil {
			return err
		}
		offset = to
		return nil
	}

	// Walk the split nodes down to the leaf.
	start, count := 0, numRefs
	if numNodes > 0 {
		var n node
		var buf [nodeBytes]byte
		fetch := func(i int) (*node, error) {
			if err := seekTo(nodesOffset + int64(i)*nodeBytes); err != nil {
				return nil, wrapErr("failed to seek to split %d", err, i)
			}
			if _, err := io.ReadFull(rs, buf[:]); err != nil {
				return nil, wrapErr("failed to read split %d", err, i)
			}
			offset += nodeBytes
			n.decode(buf[:])
			if err := checkNode(&n, i, numNodes, numRefs); err != nil {
				return nil, err
			}
			return &n, nil
		}
		if start, count, err = walk(x, y, fetch); err != nil {
			return
		}
	}

	// Read the leaf references.
	refs := make([]uint16, count)
	if count > 0 {
		if err = seekTo(refsOffset + int64(start)*refBytes); err != nil {
			err = wrapErr("failed to seek to leaf references [%d..%d)", err, start, start+count)
			return
		}
		b := make([]byte, count*refBytes)
		if _, err = io.ReadFull(rs, b); err != nil {
			err = wrapErr("failed to read leaf references [%d..%d)", err, start, start+count)
			return
		}
		offset += int64(len(b))
		for i := range refs {
			refs[i] = flatbuffers.GetUint16(b[i*refBytes:])
			if int(refs[i]) >= len(boxes) {
				err = fmtErr("leaf reference %d out of range of %d boxes", refs[i], len(boxes))
				return
			}
		}
	}

	// Skip to the end of the index so that code reading whatever comes
	// after it can make reasonable assumptions about the read cursor.
	if err = seekTo(endOffset); err != nil {
		err = wrapErr("failed to skip to end of index after Seek", err)
		return
	}

	r, ok = scan(boxes, refs, x, y)
	return
}
