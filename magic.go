// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package bspfile

import (
	"bytes"
	"fmt"
	"io"
)

const (
	// magicLen is the length of the index file magic number in bytes.
	magicLen = 8
	// majorByte and patchByte are the positions of the version bytes
	// within the magic number.
	majorByte = 3
	patchByte = 7
	// MinFormatMajorVersion is the minimum major version of the index
	// file format that this package can read.
	MinFormatMajorVersion = 0x01
	// MaxFormatMajorVersion is the maximum major version of the index
	// file format that this package can read.
	MaxFormatMajorVersion = 0x01
)

// magic is the magic number written at the start of every index file,
// carrying the version this package writes.
var magic = [magicLen]byte{0x62, 0x73, 0x70, 0x01, 0x69, 0x64, 0x78, 0x00}

// FormatVersion is a version of the index file format.
type FormatVersion struct {
	// Major is the major version of the index file format.
	Major uint8
	// Patch is the patch version of the index file format.
	Patch uint8
}

// String returns the version as "major.patch".
func (v FormatVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Patch)
}

// Magic identifies an index file by its first eight bytes: "bsp", the
// format major version, "idx", then the format patch version. The
// version returned may be one ReadFile cannot read; readable major
// versions lie between MinFormatMajorVersion and MaxFormatMajorVersion.
//
// Magic consumes the magic bytes and nothing else. A stream holding
// fewer than eight bytes yields io.EOF or io.ErrUnexpectedEOF.
func Magic(r io.Reader) (FormatVersion, error) {
	if r == nil {
		textPanic("nil reader")
	}
	var m [magicLen]byte
	if _, err := io.ReadFull(r, m[:]); err != nil {
		return FormatVersion{}, err
	}
	if !bytes.Equal(m[:majorByte], magic[:majorByte]) ||
		!bytes.Equal(m[majorByte+1:patchByte], magic[majorByte+1:patchByte]) {
		return FormatVersion{}, ErrInvalidMagic
	}
	return FormatVersion{Major: m[majorByte], Patch: m[patchByte]}, nil
}

// readVersion reads the magic number and checks that the format
// version is readable.
func readVersion(r io.Reader) (FormatVersion, error) {
	v, err := Magic(r)
	if err == ErrInvalidMagic {
		return v, err
	} else if err != nil {
		return v, wrapErr("failed to read magic number", err)
	}
	if v.Major < MinFormatMajorVersion || v.Major > MaxFormatMajorVersion {
		return v, fmt.Errorf("%w: %s (readable major versions are %d..%d)", ErrUnsupportedVersion, v, MinFormatMajorVersion, MaxFormatMajorVersion)
	}
	return v, nil
}
