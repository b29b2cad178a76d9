package bspfile

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMagic is returned when a stream does not start with
	// the index file magic number.
	ErrInvalidMagic = textErr("invalid magic number")
	// ErrUnsupportedVersion is returned when reading an index file
	// whose major format version this package cannot read.
	ErrUnsupportedVersion = textErr("unsupported format version")
)

const packageName = "bspfile: "

func textErr(text string) error {
	return errors.New(packageName + text)
}

func fmtErr(format string, a ...interface{}) error {
	return fmt.Errorf(packageName+format, a...)
}

func wrapErr(text string, err error, a ...interface{}) error {
	return fmt.Errorf(packageName+text+": %w", append(a, err)...)
}

func textPanic(text string) {
	panic(packageName + text)
}
