//
// label_test.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"math/rand"
	"testing"
)

func TestLabelBits(t *testing.T) {
	var label Label

	label.SetBit(0, 1)
	label.SetBit(63, 1)
	label.SetBit(64, 1)
	label.SetBit(127, 1)
	if label.D0 != 0x8000000000000001 || label.D1 != 0x8000000000000001 {
		t.Fatalf("SetBit: got %v", label)
	}
	for i := 0; i < K; i++ {
		var expected uint
		if i == 0 || i == 63 || i == 64 || i == 127 {
			expected = 1
		}
		if label.Bit(i) != expected {
			t.Errorf("Bit(%d): got %v, expected %v", i, label.Bit(i), expected)
		}
	}
	label.SetBit(63, 0)
	if label.D0 != 1 {
		t.Errorf("SetBit(63, 0): got %x", label.D0)
	}
}

func TestLabelData(t *testing.T) {
	label := Label{
		D0: 0x0123456789abcdef,
		D1: 0xfedcba9876543210,
	}
	var ld LabelData
	var l2 Label
	l2.SetBytes(label.Bytes(&ld))
	if !l2.Equal(label) {
		t.Errorf("SetBytes: got %v, expected %v", l2, label)
	}
}

func TestTranspose(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for _, n := range []int{1, 63, 64, 65, 200} {
		nw := (n + 63) / 64
		var cols [K][]uint64
		for i := 0; i < K; i++ {
			cols[i] = make([]uint64, nw)
			for w := range cols[i] {
				cols[i][w] = rnd.Uint64()
			}
		}
		rows := transpose(&cols, n)
		if len(rows) != n {
			t.Fatalf("n=%d: got %d rows", n, len(rows))
		}
		for j := 0; j < n; j++ {
			for i := 0; i < K; i++ {
				expected := uint(cols[i][j/64]>>(j%64)) & 1
				if rows[j].Bit(i) != expected {
					t.Fatalf("n=%d: row %d bit %d: got %v, expected %v",
						n, j, i, rows[j].Bit(i), expected)
				}
			}
		}
	}
}

func TestPackBools(t *testing.T) {
	flags := make([]bool, 130)
	flags[0] = true
	flags[65] = true
	flags[129] = true

	words := PackBools(flags)
	if len(words) != 3 {
		t.Fatalf("PackBools: got %d words", len(words))
	}
	if words[0] != 1 || words[1] != 2 || words[2] != 2 {
		t.Errorf("PackBools: got %x", words)
	}
}
