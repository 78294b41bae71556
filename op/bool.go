//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package op

// ones returns the share of the all-ones value of mask: the first
// server holds the ones and the second server zeros.
func (o *Op) ones(mask uint64) uint64 {
	if o.p.Rank() == 0 {
		return mask
	}
	return 0
}

// BoolXorBatch computes x^y for the boolean shares. The operation is
// local.
func (o *Op) BoolXorBatch(xs, ys []uint64) []uint64 {
	checkLen(xs, ys)
	z := make([]uint64, len(xs))
	for i := range xs {
		z[i] = (xs[i] ^ ys[i]) & o.mask
	}
	return z
}

// BoolXor computes x^y for the boolean shares.
func (o *Op) BoolXor(x, y uint64) uint64 {
	return (x ^ y) & o.mask
}

// BoolNot computes the bitwise complement of the boolean share.
func (o *Op) BoolNot(x uint64) uint64 {
	return (x ^ o.ones(o.mask)) & o.mask
}

// BoolAndBatch computes x&y for the boolean shares.
func (o *Op) BoolAndBatch(xs, ys []uint64) ([]uint64, error) {
	if err := o.need(AndCount(len(xs), o.width)); err != nil {
		return nil, err
	}
	return o.and(xs, ys, o.mask)
}

// BoolAnd computes x&y for the boolean shares.
func (o *Op) BoolAnd(x, y uint64) (uint64, error) {
	return single(o.BoolAndBatch([]uint64{x}, []uint64{y}))
}

// less computes the unsigned x<y bits with a parallel prefix network
// over the (less, equal) pairs of the bit positions.
func (o *Op) less(xs, ys []uint64) ([]uint64, error) {
	checkLen(xs, ys)
	n := len(xs)
	mask := o.mask
	ones := o.ones(mask)

	nx := make([]uint64, n)
	e := make([]uint64, n)
	for i := 0; i < n; i++ {
		nx[i] = (xs[i] ^ ones) & mask
		e[i] = (xs[i] ^ ys[i] ^ ones) & mask
	}
	g, err := o.and(nx, ys, mask)
	if err != nil {
		return nil, err
	}

	l := levels(o.width)
	for level := 0; level < l; level++ {
		s := 1 << level
		if level == l-1 {
			shifted := make([]uint64, n)
			for i := 0; i < n; i++ {
				shifted[i] = (g[i] << s) & mask
			}
			t, err := o.and(e, shifted, mask)
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
			xs2[i] = e[i]
			xs2[n+i] = e[i]
			ys2[i] = (g[i] << s) & mask
			ys2[n+i] = (e[i] << s) & mask
		}
		t, err := o.and(xs2, ys2, mask)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			g[i] ^= t[i]
			e[i] = t[n+i]
		}
	}

	result := make([]uint64, n)
	for i := 0; i < n; i++ {
		result[i] = (g[i] >> (o.width - 1)) & 1
	}
	return result, nil
}

// BoolLessBatch computes the unsigned x<y for the boolean shares.
// The results are 1-bit boolean shares.
func (o *Op) BoolLessBatch(xs, ys []uint64) ([]uint64, error) {
	if err := o.need(LessCount(len(xs), o.width)); err != nil {
		return nil, err
	}
	return o.less(xs, ys)
}

// BoolLessBatchBidirectional computes both x<y and y<x for the
// boolean shares in the rounds of one LESS.
func (o *Op) BoolLessBatchBidirectional(xs, ys []uint64) (
	lt, gt []uint64, err error) {

	checkLen(xs, ys)
	n := len(xs)
	if err := o.need(LessCount(2*n, o.width)); err != nil {
		return nil, nil, err
	}
	a := make([]uint64, 0, 2*n)
	a = append(a, xs...)
	a = append(a, ys...)
	b := make([]uint64, 0, 2*n)
	b = append(b, ys...)
	b = append(b, xs...)

	r, err := o.less(a, b)
	if err != nil {
		return nil, nil, err
	}
	return r[:n], r[n:], nil
}

// BoolLess computes the unsigned x<y for the boolean shares.
func (o *Op) BoolLess(x, y uint64) (uint64, error) {
	return single(o.BoolLessBatch([]uint64{x}, []uint64{y}))
}

// equal computes the x==y bits by AND-reducing the equal bits. The
// bits above the value width are set to one.
func (o *Op) equal(xs, ys []uint64) ([]uint64, error) {
	checkLen(xs, ys)
	n := len(xs)
	mask := uint64(1)<<o.tw - 1
	if o.tw == 64 {
		mask = ^uint64(0)
	}
	ones := o.ones(mask)

	e := make([]uint64, n)
	for i := 0; i < n; i++ {
		e[i] = ((xs[i] ^ ys[i]) & o.mask) ^ ones
	}
	shifted := make([]uint64, n)
	for s := o.tw / 2; s > 0; s /= 2 {
		for i := 0; i < n; i++ {
			shifted[i] = e[i] >> s
		}
		var err error
		e, err = o.and(e, shifted, mask)
		if err != nil {
			return nil, err
		}
	}
	for i := 0; i < n; i++ {
		e[i] &= 1
	}
	return e, nil
}

// BoolEqualBatch computes x==y for the boolean shares. The results
// are 1-bit boolean shares.
func (o *Op) BoolEqualBatch(xs, ys []uint64) ([]uint64, error) {
	if err := o.need(EqualCount(len(xs), o.width)); err != nil {
		return nil, err
	}
	return o.equal(xs, ys)
}

// BoolEqual computes x==y for the boolean shares.
func (o *Op) BoolEqual(x, y uint64) (uint64, error) {
	return single(o.BoolEqualBatch([]uint64{x}, []uint64{y}))
}

// mux computes cond&(x^y), the common term of both MUX orientations.
func (o *Op) mux(xs, ys, conds []uint64) ([]uint64, error) {
	checkLen(xs, ys)
	checkLen(xs, conds)
	c := make([]uint64, len(xs))
	d := make([]uint64, len(xs))
	for i := range xs {
		c[i] = -(conds[i] & 1) & o.mask
		d[i] = (xs[i] ^ ys[i]) & o.mask
	}
	return o.and(c, d, o.mask)
}

// BoolMuxBatch computes cond?x:y for the boolean shares. The
// conditions are 1-bit boolean shares.
func (o *Op) BoolMuxBatch(xs, ys, conds []uint64) ([]uint64, error) {
	if err := o.need(MuxCount(len(xs), o.width)); err != nil {
		return nil, err
	}
	t, err := o.mux(xs, ys, conds)
	if err != nil {
		return nil, err
	}
	for i := range t {
		t[i] ^= ys[i]
	}
	return t, nil
}

// BoolMuxBatchBidirectional computes both cond?x:y and cond?y:x for
// the boolean shares with the triples of one MUX.
func (o *Op) BoolMuxBatchBidirectional(xs, ys, conds []uint64) (
	xy, yx []uint64, err error) {

	if err := o.need(MuxCount(len(xs), o.width)); err != nil {
		return nil, nil, err
	}
	t, err := o.mux(xs, ys, conds)
	if err != nil {
		return nil, nil, err
	}
	xy = make([]uint64, len(t))
	yx = make([]uint64, len(t))
	for i := range t {
		xy[i] = t[i] ^ ys[i]
		yx[i] = t[i] ^ xs[i]
	}
	return xy, yx, nil
}

// BoolMux computes cond?x:y for the boolean shares.
func (o *Op) BoolMux(x, y, cond uint64) (uint64, error) {
	return single(o.BoolMuxBatch([]uint64{x}, []uint64{y}, []uint64{cond}))
}

func single(values []uint64, err error) (uint64, error) {
	if err != nil {
		return 0, err
	}
	return values[0], nil
}
