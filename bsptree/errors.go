// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package bsptree

import (
	"errors"
	"fmt"
)

const packageName = "bsptree: "

var (
	// ErrInvalidInput is returned when Build is given an empty box
	// list.
	ErrInvalidInput = textErr("invalid input")
	// ErrCapacityExceeded is returned when Build is given more than
	// MaxBoxes boxes.
	ErrCapacityExceeded = textErr("capacity exceeded")
)

func textErr(text string) error {
	return errors.New(packageName + text)
}

func fmtErr(format string, a ...interface{}) error {
	return fmt.Errorf(packageName+format, a...)
}

func wrapErr(text string, err error, a ...interface{}) error {
	return fmt.Errorf(packageName+text+": %w", append(a, err)...)
}

// sentinelErr annotates one of the package's sentinel errors with
// detail text. The result still matches the sentinel with errors.Is.
func sentinelErr(err error, format string, a ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{err}, a...)...)
}

func textPanic(text string) {
	panic(packageName + text)
}

func fmtPanic(format string, a ...interface{}) {
	panic(fmt.Sprintf(packageName+format, a...))
}
