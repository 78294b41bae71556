//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package bmt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMask(t *testing.T) {
	require.Equal(t, uint64(1), Mask(1))
	require.Equal(t, uint64(0xff), Mask(8))
	require.Equal(t, uint64(0xffffffffffffffff), Mask(64))
	require.Panics(t, func() { Mask(0) })
	require.Panics(t, func() { Mask(65) })
}

func TestExtract(t *testing.T) {
	tr := BitwiseBmt{
		A: 0xf0,
		B: 0x0f,
		C: 0xff00,
	}
	require.Equal(t, BitwiseBmt{A: 0xf, B: 0x0, C: 0x0}, tr.Extract(4, 4))
	require.Equal(t, BitwiseBmt{A: 0, B: 1, C: 0}, tr.Bit(0))
	require.Equal(t, BitwiseBmt{A: 0, B: 0, C: 1}, tr.Bit(8))
	require.Panics(t, func() { tr.Extract(60, 8) })
}

func TestCarve(t *testing.T) {
	words := []BitwiseBmt{
		{A: 0xffffffffffffffff, B: 0, C: 0x8000000000000000},
		{A: 0, B: 0xffffffffffffffff, C: 1},
	}
	// Packed triples span the word boundary.
	result, off := carve(words, 60, 2, 5, true)
	require.Equal(t, 70, off)
	require.Equal(t, BitwiseBmt{A: 0xf, B: 0x10, C: 0x18}, result[0])
	require.Equal(t, BitwiseBmt{A: 0, B: 0x1f, C: 0}, result[1])

	// Unpacked triples start at word boundaries.
	result, off = carve(words, 3, 1, 5, false)
	require.Equal(t, 69, off)
	require.Equal(t, BitwiseBmt{A: 0, B: 0x1f, C: 1}, result[0])

	require.Equal(t, 2, Words(10, 10, true))
	require.Equal(t, 10, Words(10, 10, false))
}

func TestBmtMask(t *testing.T) {
	tr := Bmt{
		A: 0x1234,
		B: 0xabcd,
		C: 0xffff,
	}
	require.Equal(t, Bmt{A: 0x34, B: 0xcd, C: 0xff}, tr.Mask(8))
}
