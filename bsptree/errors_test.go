// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package bsptree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	t.Run("textErr", func(t *testing.T) {
		assert.EqualError(t, textErr("foo"), "bsptree: foo")
	})

	t.Run("fmtErr", func(t *testing.T) {
		assert.EqualError(t, fmtErr("my %s is %s-ed to %d", "bar", "baz", 11), "bsptree: my bar is baz-ed to 11")
	})

	t.Run("wrapErr", func(t *testing.T) {
		cause := errors.New("the root cause")
		err := wrapErr("the error is %q by", cause, "caused")

		assert.ErrorIs(t, err, cause)
		assert.Equal(t, `bsptree: the error is "caused" by: the root cause`, err.Error())
	})

	t.Run("sentinelErr", func(t *testing.T) {
		err := sentinelErr(ErrCapacityExceeded, "%d is too many", 99)

		assert.ErrorIs(t, err, ErrCapacityExceeded)
		assert.NotErrorIs(t, err, ErrInvalidInput)
		assert.EqualError(t, err, "bsptree: capacity exceeded: 99 is too many")
	})

	t.Run("textPanic", func(t *testing.T) {
		assert.PanicsWithValue(t, "bsptree: foo", func() {
			textPanic("foo")
		})
	})

	t.Run("fmtPanic", func(t *testing.T) {
		assert.PanicsWithValue(t, "bsptree: my bar is baz-ed to 10", func() {
			fmtPanic("my %s is %s-ed to %d", "bar", "baz", 10)
		})
	})
}
