// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package wfc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapNormalize(t *testing.T) {
	size := Size{Width: 4, Height: 5}

	type wrapCase struct {
		wrap Wrap
		in   Coord
		out  Coord
		ok   bool
	}
	cases := []wrapCase{
		{WrapNone, Coord{2, 3}, Coord{2, 3}, true},
		{WrapNone, Coord{4, 3}, Coord{}, false},
		{WrapNone, Coord{-1, 0}, Coord{}, false},
		{WrapX, Coord{4, 3}, Coord{0, 3}, true},
		{WrapX, Coord{-1, 3}, Coord{3, 3}, true},
		{WrapX, Coord{2, 5}, Coord{}, false},
		{WrapY, Coord{4, 3}, Coord{}, false},
		{WrapY, Coord{2, 6}, Coord{2, 1}, true},
		{WrapY, Coord{2, -1}, Coord{2, 4}, true},
		{WrapXY, Coord{2, 6}, Coord{2, 1}, true},
		{WrapXY, Coord{-1, -1}, Coord{3, 4}, true},
		{WrapXY, Coord{2, 3}, Coord{2, 3}, true},
	}

	for _, c := range cases {
		got, ok := c.wrap.Normalize(c.in, size)
		assert.Equal(t, c.ok, ok, "%s (%d,%d)", c.wrap, c.in.X, c.in.Y)
		if c.ok {
			assert.Equal(t, c.out, got, "%s (%d,%d)", c.wrap, c.in.X, c.in.Y)
		}
	}
}

func TestSizeIndexRoundTrip(t *testing.T) {
	size := Size{Width: 7, Height: 3}
	for i := 0; i < size.Count(); i++ {
		coord := size.CoordOf(i)
		assert.True(t, size.Contains(coord))
		assert.Equal(t, i, size.Index(coord))
	}
	assert.False(t, size.Contains(Coord{7, 0}))
	assert.False(t, size.Contains(Coord{0, 3}))
}

func TestParseWrap(t *testing.T) {
	for input, want := range map[string]Wrap{
		"none":    WrapNone,
		"clipped": WrapNone,
		"x":       WrapX,
		"y":       WrapY,
		"xy":      WrapXY,
		"torus":   WrapXY,
		"":        WrapXY,
	} {
		got, err := ParseWrap(input)
		assert.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseWrap("moebius")
	assert.Error(t, err)
}

func TestDirectionOpposite(t *testing.T) {
	assert.Equal(t, South, North.Opposite())
	assert.Equal(t, North, South.Opposite())
	assert.Equal(t, West, East.Opposite())
	assert.Equal(t, East, West.Opposite())

	for _, d := range Directions {
		assert.Equal(t, d, d.Opposite().Opposite())
		delta := d.Delta()
		opp := d.Opposite().Delta()
		assert.Equal(t, Coord{}, delta.Add(opp))
	}
}
