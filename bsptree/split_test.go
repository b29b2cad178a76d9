// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package bsptree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAxis_String(t *testing.T) {
	assert.Equal(t, "X", AxisX.String())
	assert.Equal(t, "Y", AxisY.String())
	assert.Equal(t, "Axis(7)", Axis(7).String())
}

func TestNode(t *testing.T) {
	t.Run("Zero", func(t *testing.T) {
		var n node

		assert.Equal(t, AxisY, n.axis())
		assert.Equal(t, Split{Axis: AxisY}, n.view())
	})

	t.Run("Leaves", func(t *testing.T) {
		n := node{flags: flagAxisX, position: 3}

		n.setLeaf(false, 10, 2)
		n.setLeaf(true, 12, 5)

		assert.Equal(t, AxisX, n.axis())
		assert.Equal(t, Split{
			Axis:     AxisX,
			Position: 3,
			Low:      Side{Leaf: true, Index: 10, Count: 2},
			High:     Side{Leaf: true, Index: 12, Count: 5},
		}, n.view())
	})

	t.Run("Children", func(t *testing.T) {
		n := node{position: -1}

		n.setChild(false, 4)
		n.setChild(true, 9)

		assert.Equal(t, Split{
			Axis:     AxisY,
			Position: -1,
			Low:      Side{Index: 4},
			High:     Side{Index: 9},
		}, n.view())
	})

	t.Run("Mixed", func(t *testing.T) {
		var n node

		n.setChild(false, 1)
		n.setLeaf(true, 0, 3)

		leaf, index, count := n.side(false)
		assert.False(t, leaf)
		assert.Equal(t, 1, index)
		assert.Equal(t, 0, count)
		leaf, index, count = n.side(true)
		assert.True(t, leaf)
		assert.Equal(t, 0, index)
		assert.Equal(t, 3, count)
	})
}

func TestNode_route(t *testing.T) {
	testCases := []struct {
		name     string
		n        node
		x, y     float64
		expected bool
	}{
		{"X.Below", node{flags: flagAxisX, position: 5}, 4, 100, false},
		{"X.Equal", node{flags: flagAxisX, position: 5}, 5, 100, false},
		{"X.Above", node{flags: flagAxisX, position: 5}, 5.001, -100, true},
		{"Y.Below", node{position: 5}, 100, 4, false},
		{"Y.Equal", node{position: 5}, 100, 5, false},
		{"Y.Above", node{position: 5}, -100, 6, true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			actual := testCase.n.route(testCase.x, testCase.y)

			assert.Equal(t, testCase.expected, actual)
		})
	}
}
