//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package secret implements the secret value types and the Secrets
// façade for the components that compute on secret shared data.
package secret

import (
	"fmt"

	"github.com/markkurossi/mpcdb/bmt"
	"github.com/markkurossi/mpcdb/op"
)

// BitSecret is a 1-bit boolean share.
type BitSecret struct {
	Value uint64
}

// Xor computes s^o.
func (s BitSecret) Xor(o BitSecret) BitSecret {
	return BitSecret{Value: (s.Value ^ o.Value) & 1}
}

// Not computes the complement of the bit.
func (s BitSecret) Not(o *op.Op) BitSecret {
	if o.Rank() == 0 {
		return BitSecret{Value: (s.Value ^ 1) & 1}
	}
	return s
}

// And computes s&y.
func (s BitSecret) And(o *op.Op, y BitSecret) (BitSecret, error) {
	v, err := o.BoolAnd(s.Value, y.Value)
	if err != nil {
		return BitSecret{}, err
	}
	return BitSecret{Value: v & 1}, nil
}

// Reconstruct opens the bit to the owner.
func (s BitSecret) Reconstruct(o *op.Op, owner int) (bool, error) {
	v, err := o.BoolReconstruct([]uint64{s.Value}, owner)
	if err != nil || v == nil {
		return false, err
	}
	return v[0]&1 == 1, nil
}

// BoolSecret is a boolean shared value of Width bits. Padding marks
// the sentinel elements of the secure sort; they compare greater
// than all other elements.
type BoolSecret struct {
	Value   uint64
	Width   int
	Padding bool
}

func (s BoolSecret) String() string {
	if s.Padding {
		return fmt.Sprintf("pad/%d", s.Width)
	}
	return fmt.Sprintf("%x/%d", s.Value, s.Width)
}

func checkWidth(o *op.Op, width int) {
	if o.Width() != width {
		panic(fmt.Sprintf("secret width %d != operator width %d",
			width, o.Width()))
	}
}

// Share shares the owner's value. All ranks must call Share.
func (s BoolSecret) Share(o *op.Op, owner int) (BoolSecret, error) {
	checkWidth(o, s.Width)
	v, err := o.BoolShare([]uint64{s.Value}, owner)
	if err != nil || v == nil {
		return BoolSecret{Width: s.Width}, err
	}
	return BoolSecret{Value: v[0], Width: s.Width}, nil
}

// Reconstruct opens the value to the owner. The values of non-owner
// ranks are zero.
func (s BoolSecret) Reconstruct(o *op.Op, owner int) (uint64, error) {
	checkWidth(o, s.Width)
	v, err := o.BoolReconstruct([]uint64{s.Value}, owner)
	if err != nil || v == nil {
		return 0, err
	}
	return v[0], nil
}

// Xor computes s^y.
func (s BoolSecret) Xor(y BoolSecret) BoolSecret {
	return BoolSecret{Value: s.Value ^ y.Value, Width: s.Width}
}

// Not computes the bitwise complement of the value.
func (s BoolSecret) Not(o *op.Op) BoolSecret {
	checkWidth(o, s.Width)
	return BoolSecret{Value: o.BoolNot(s.Value), Width: s.Width}
}

// And computes s&y.
func (s BoolSecret) And(o *op.Op, y BoolSecret) (BoolSecret, error) {
	checkWidth(o, s.Width)
	v, err := o.BoolAnd(s.Value, y.Value)
	return BoolSecret{Value: v, Width: s.Width}, err
}

// LessThan computes the unsigned s<y.
func (s BoolSecret) LessThan(o *op.Op, y BoolSecret) (BitSecret, error) {
	checkWidth(o, s.Width)
	v, err := o.BoolLess(s.Value, y.Value)
	return BitSecret{Value: v}, err
}

// Equal computes s==y.
func (s BoolSecret) Equal(o *op.Op, y BoolSecret) (BitSecret, error) {
	checkWidth(o, s.Width)
	v, err := o.BoolEqual(s.Value, y.Value)
	return BitSecret{Value: v}, err
}

// Mux computes cond?s:y.
func (s BoolSecret) Mux(o *op.Op, y BoolSecret, cond BitSecret) (
	BoolSecret, error) {

	checkWidth(o, s.Width)
	v, err := o.BoolMux(s.Value, y.Value, cond.Value)
	return BoolSecret{Value: v, Width: s.Width}, err
}

// ToArith converts the value to an arithmetic share.
func (s BoolSecret) ToArith(o *op.Op) (ArithSecret, error) {
	checkWidth(o, s.Width)
	v, err := o.BoolToArith(s.Value)
	return ArithSecret{Value: v, Width: s.Width}, err
}

// ArithSecret is an arithmetic shared value modulo 2^Width.
type ArithSecret struct {
	Value uint64
	Width int
}

func (s ArithSecret) String() string {
	return fmt.Sprintf("%x/%d", s.Value, s.Width)
}

func (s ArithSecret) mask(v uint64) uint64 {
	return v & bmt.Mask(s.Width)
}

// Share shares the owner's value. All ranks must call Share.
func (s ArithSecret) Share(o *op.Op, owner int) (ArithSecret, error) {
	checkWidth(o, s.Width)
	v, err := o.ArithShare([]uint64{s.Value}, owner)
	if err != nil || v == nil {
		return ArithSecret{Width: s.Width}, err
	}
	return ArithSecret{Value: v[0], Width: s.Width}, nil
}

// Reconstruct opens the value to the owner.
func (s ArithSecret) Reconstruct(o *op.Op, owner int) (uint64, error) {
	checkWidth(o, s.Width)
	v, err := o.ArithReconstruct([]uint64{s.Value}, owner)
	if err != nil || v == nil {
		return 0, err
	}
	return v[0], nil
}

// Add computes s+y.
func (s ArithSecret) Add(y ArithSecret) ArithSecret {
	return ArithSecret{Value: s.mask(s.Value + y.Value), Width: s.Width}
}

// Sub computes s-y.
func (s ArithSecret) Sub(y ArithSecret) ArithSecret {
	return ArithSecret{Value: s.mask(s.Value - y.Value), Width: s.Width}
}

// Neg computes -s.
func (s ArithSecret) Neg() ArithSecret {
	return ArithSecret{Value: s.mask(-s.Value), Width: s.Width}
}

// AddPublic computes s+c for the public constant c.
func (s ArithSecret) AddPublic(o *op.Op, c uint64) ArithSecret {
	if o.Rank() == 0 {
		return ArithSecret{Value: s.mask(s.Value + c), Width: s.Width}
	}
	return s
}

// MulPublic computes s·c for the public constant c.
func (s ArithSecret) MulPublic(c uint64) ArithSecret {
	return ArithSecret{Value: s.mask(s.Value * c), Width: s.Width}
}

// Mul computes s·y.
func (s ArithSecret) Mul(o *op.Op, y ArithSecret) (ArithSecret, error) {
	checkWidth(o, s.Width)
	v, err := o.ArithMultiply(s.Value, y.Value)
	return ArithSecret{Value: v, Width: s.Width}, err
}

// LessThan computes the unsigned s<y as an arithmetic 0/1 share.
func (s ArithSecret) LessThan(o *op.Op, y ArithSecret) (ArithSecret, error) {
	checkWidth(o, s.Width)
	v, err := o.ArithLess(s.Value, y.Value)
	return ArithSecret{Value: v, Width: s.Width}, err
}

// Equal computes s==y as an arithmetic 0/1 share.
func (s ArithSecret) Equal(o *op.Op, y ArithSecret) (ArithSecret, error) {
	checkWidth(o, s.Width)
	v, err := o.ArithEqual(s.Value, y.Value)
	return ArithSecret{Value: v, Width: s.Width}, err
}

// Mux computes cond?s:y where cond is an arithmetic 0/1 share.
func (s ArithSecret) Mux(o *op.Op, y, cond ArithSecret) (ArithSecret, error) {
	checkWidth(o, s.Width)
	v, err := o.ArithMux(s.Value, y.Value, cond.Value)
	return ArithSecret{Value: v, Width: s.Width}, err
}

// ToBool converts the value to a boolean share.
func (s ArithSecret) ToBool(o *op.Op) (BoolSecret, error) {
	checkWidth(o, s.Width)
	v, err := o.ArithToBool(s.Value)
	return BoolSecret{Value: v, Width: s.Width}, err
}
