//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package op

// a2b converts arithmetic shares to boolean shares. The two
// arithmetic shares are the operands of a Kogge-Stone adder over
// boolean shares: the first server inputs its share as the first
// operand and the second server as the second operand.
func (o *Op) a2b(xs []uint64) ([]uint64, error) {
	n := len(xs)
	mask := o.mask

	p := make([]uint64, n)
	for i := 0; i < n; i++ {
		p[i] = xs[i] & mask
	}
	if o.width == 1 {
		return p, nil
	}

	a := make([]uint64, n)
	b := make([]uint64, n)
	if o.p.Rank() == 0 {
		copy(a, p)
	} else {
		copy(b, p)
	}
	g, err := o.and(a, b, mask)
	if err != nil {
		return nil, err
	}
	prop := make([]uint64, n)
	copy(prop, p)

	l := levels(o.width)
	for level := 0; level < l; level++ {
		s := 1 << level
		if level == l-1 {
			shifted := make([]uint64, n)
			for i := 0; i < n; i++ {
				shifted[i] = (g[i] << s) & mask
			}
			t, err := o.and(prop, shifted, mask)
			if err != nil {
				return nil, err
			}
			for i := 0; i < n; i++ {
				g[i] ^= t[i]
			}
			break
		}
		xs2 := make([]uint64, 2*n)
		ys2 := make([]uint64, 2*n)
		for i := 0; i < n; i++ {
			xs2[i] = prop[i]
			xs2[n+i] = prop[i]
			ys2[i] = (g[i] << s) & mask
			ys2[n+i] = (prop[i] << s) & mask
		}
		t, err := o.and(xs2, ys2, mask)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			g[i] ^= t[i]
			prop[i] = t[n+i]
		}
	}

	z := make([]uint64, n)
	for i := 0; i < n; i++ {
		z[i] = (p[i] ^ (g[i] << 1)) & mask
	}
	return z, nil
}

// b2a converts the low bits of boolean shares to arithmetic
// shares. Each bit b=b0^b1 is b0+b1-2·b0·b1 where the product is
// a Beaver multiplication of the parties' bits.
func (o *Op) b2a(xs []uint64, bits int) ([]uint64, error) {
	n := len(xs)
	first := o.p.Rank() == 0

	u := make([]uint64, n*bits)
	v := make([]uint64, n*bits)
	for i := 0; i < n; i++ {
		for j := 0; j < bits; j++ {
			bit := (xs[i] >> j) & 1
			if first {
				u[i*bits+j] = bit
			} else {
				v[i*bits+j] = bit
			}
		}
	}
	prod, err := o.mul(u, v)
	if err != nil {
		return nil, err
	}

	z := make([]uint64, n)
	for i := 0; i < n; i++ {
		var sum uint64
		for j := 0; j < bits; j++ {
			bit := (xs[i] >> j) & 1
			sum += (bit - 2*prod[i*bits+j]) << j
		}
		z[i] = sum & o.mask
	}
	return z, nil
}

// ArithToBoolBatch converts the arithmetic shares to boolean shares.
func (o *Op) ArithToBoolBatch(xs []uint64) ([]uint64, error) {
	if err := o.need(ArithToBoolCount(len(xs), o.width)); err != nil {
		return nil, err
	}
	return o.a2b(xs)
}

// ArithToBool converts the arithmetic share to a boolean share.
func (o *Op) ArithToBool(x uint64) (uint64, error) {
	return single(o.ArithToBoolBatch([]uint64{x}))
}

// BoolToArithBatch converts the boolean shares to arithmetic shares.
func (o *Op) BoolToArithBatch(xs []uint64) ([]uint64, error) {
	if err := o.need(BoolToArithCount(len(xs), o.width)); err != nil {
		return nil, err
	}
	return o.b2a(xs, o.width)
}

// BoolToArith converts the boolean share to an arithmetic share.
func (o *Op) BoolToArith(x uint64) (uint64, error) {
	return single(o.BoolToArithBatch([]uint64{x}))
}

// BitToArithBatch converts 1-bit boolean shares to arithmetic 0/1
// shares of the instance width.
func (o *Op) BitToArithBatch(xs []uint64) ([]uint64, error) {
	if err := o.need(BoolToArithCount(len(xs), 1)); err != nil {
		return nil, err
	}
	return o.b2a(xs, 1)
}

// ArithMultiplyBatch computes x·y for the arithmetic shares.
func (o *Op) ArithMultiplyBatch(xs, ys []uint64) ([]uint64, error) {
	if err := o.need(MultiplyCount(len(xs), o.width)); err != nil {
		return nil, err
	}
	return o.mul(xs, ys)
}

// ArithMultiply computes x·y for the arithmetic shares.
func (o *Op) ArithMultiply(x, y uint64) (uint64, error) {
	return single(o.ArithMultiplyBatch([]uint64{x}, []uint64{y}))
}

// compare converts both operand vectors to boolean shares in one
// conversion, applies the boolean comparison, and converts the
// result bits back to arithmetic 0/1 shares.
func (o *Op) compare(xs, ys []uint64,
	cmp func(xs, ys []uint64) ([]uint64, error)) ([]uint64, error) {

	checkLen(xs, ys)
	n := len(xs)
	v := make([]uint64, 0, 2*n)
	v = append(v, xs...)
	v = append(v, ys...)

	b, err := o.a2b(v)
	if err != nil {
		return nil, err
	}
	r, err := cmp(b[:n], b[n:])
	if err != nil {
		return nil, err
	}
	return o.b2a(r, 1)
}

// ArithLessBatch computes the unsigned x<y for the arithmetic shares.
// The results are arithmetic 0/1 shares.
func (o *Op) ArithLessBatch(xs, ys []uint64) ([]uint64, error) {
	if err := o.need(ArithLessCount(len(xs), o.width)); err != nil {
		return nil, err
	}
	return o.compare(xs, ys, o.less)
}

// ArithLess computes the unsigned x<y for the arithmetic shares.
func (o *Op) ArithLess(x, y uint64) (uint64, error) {
	return single(o.ArithLessBatch([]uint64{x}, []uint64{y}))
}

// ArithEqualBatch computes x==y for the arithmetic shares. The
// results are arithmetic 0/1 shares.
func (o *Op) ArithEqualBatch(xs, ys []uint64) ([]uint64, error) {
	if err := o.need(ArithEqualCount(len(xs), o.width)); err != nil {
		return nil, err
	}
	return o.compare(xs, ys, o.equal)
}

// ArithEqual computes x==y for the arithmetic shares.
func (o *Op) ArithEqual(x, y uint64) (uint64, error) {
	return single(o.ArithEqualBatch([]uint64{x}, []uint64{y}))
}

// ArithMuxBatch computes cond?x:y for the arithmetic shares as
// y+cond·(x-y). The conditions are arithmetic 0/1 shares.
func (o *Op) ArithMuxBatch(xs, ys, conds []uint64) ([]uint64, error) {
	checkLen(xs, ys)
	if err := o.need(ArithMuxCount(len(xs), o.width)); err != nil {
		return nil, err
	}
	d := make([]uint64, len(xs))
	for i := range xs {
		d[i] = (xs[i] - ys[i]) & o.mask
	}
	t, err := o.mul(conds, d)
	if err != nil {
		return nil, err
	}
	for i := range t {
		t[i] = (t[i] + ys[i]) & o.mask
	}
	return t, nil
}

// ArithMux computes cond?x:y for the arithmetic shares.
func (o *Op) ArithMux(x, y, cond uint64) (uint64, error) {
	return single(o.ArithMuxBatch([]uint64{x}, []uint64{y}, []uint64{cond}))
}
