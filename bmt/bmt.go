//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package bmt implements the Beaver multiplication triple supply:
// the OT-based triple generator, triple queues, and the just-in-time,
// background, pipeline, and fixed supply strategies.
package bmt

import (
	"fmt"
)

// Mask returns the bit mask for values of the argument width. The
// function panics if width is not in the range [1...64].
func Mask(width int) uint64 {
	if width < 1 || width > 64 {
		panic(fmt.Sprintf("invalid width %d", width))
	}
	if width == 64 {
		return 0xffffffffffffffff
	}
	return (uint64(1) << width) - 1
}

// Bmt is one party's share of an arithmetic Beaver triple: the sums
// of all parties' shares satisfy C = A·B (mod 2^width).
type Bmt struct {
	A uint64
	B uint64
	C uint64
}

func (t Bmt) String() string {
	return fmt.Sprintf("(%x,%x,%x)", t.A, t.B, t.C)
}

// Mask masks the triple to the argument width.
func (t Bmt) Mask(width int) Bmt {
	m := Mask(width)
	return Bmt{
		A: t.A & m,
		B: t.B & m,
		C: t.C & m,
	}
}

// BitwiseBmt is one party's share of bit-packed Beaver triples. Every
// bit lane is an independent 1-bit triple: the XORs of all parties'
// shares satisfy C = A∧B.
type BitwiseBmt struct {
	A uint64
	B uint64
	C uint64
}

func (t BitwiseBmt) String() string {
	return fmt.Sprintf("(%x,%x,%x)", t.A, t.B, t.C)
}

// Bit extracts the bit lane i as a 1-bit triple.
func (t BitwiseBmt) Bit(i int) BitwiseBmt {
	return t.Extract(i, 1)
}

// Extract extracts width bit lanes starting from offset. The
// function panics if the lanes do not fit into the triple.
func (t BitwiseBmt) Extract(offset, width int) BitwiseBmt {
	if offset < 0 || offset+width > 64 {
		panic(fmt.Sprintf("invalid lanes %d+%d", offset, width))
	}
	m := Mask(width)
	return BitwiseBmt{
		A: t.A >> offset & m,
		B: t.B >> offset & m,
		C: t.C >> offset & m,
	}
}

// carve carves count triples of width bits from the bit-packed
// triples starting at the bit offset. Packed triples may span word
// boundaries; unpacked triples start at word boundaries. The
// function returns the triples and the next offset.
func carve(words []BitwiseBmt, offset, count, width int, packed bool) (
	[]BitwiseBmt, int) {

	result := make([]BitwiseBmt, count)
	m := Mask(width)

	for i := 0; i < count; i++ {
		if !packed && offset%64 != 0 {
			offset += 64 - offset%64
		}
		w := offset / 64
		bit := offset % 64

		t := words[w]
		v := BitwiseBmt{
			A: t.A >> bit,
			B: t.B >> bit,
			C: t.C >> bit,
		}
		if bit+width > 64 {
			n := words[w+1]
			shift := 64 - bit
			v.A |= n.A << shift
			v.B |= n.B << shift
			v.C |= n.C << shift
		}
		v.A &= m
		v.B &= m
		v.C &= m
		result[i] = v

		offset += width
	}
	return result, offset
}

// Words returns the number of words needed for count bitwise
// triples of width bits.
func Words(count, width int, packed bool) int {
	if !packed {
		return count
	}
	return (count*width + 63) / 64
}
