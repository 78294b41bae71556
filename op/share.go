//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package op

import (
	"fmt"

	"github.com/markkurossi/mpcdb/bmt"
	"github.com/markkurossi/mpcdb/p2p"
	"github.com/markkurossi/mpcdb/task"
)

func (o *Op) nextIOTag() task.Tag {
	tag := o.t.Tag(o.ioMsg)
	o.ioMsg++
	return tag
}

// BoolShare splits the owner's values into boolean shares for the
// compute parties. All ranks must call BoolShare; the values are
// used only at the owner. The compute parties return their shares
// and other ranks return nil.
func (o *Op) BoolShare(values []uint64, owner int) ([]uint64, error) {
	return o.share(values, owner, false)
}

// ArithShare splits the owner's values into arithmetic shares for
// the compute parties.
func (o *Op) ArithShare(values []uint64, owner int) ([]uint64, error) {
	return o.share(values, owner, true)
}

func (o *Op) share(values []uint64, owner int, arith bool) (
	[]uint64, error) {

	tag := o.nextIOTag()
	tr := o.p.Transport()
	rank := o.p.Rank()

	if rank == owner {
		prg, err := bmt.NewPRG(o.p.Config().GetRandom())
		if err != nil {
			return nil, err
		}
		r := prg.Words(len(values), o.mask)
		other := make([]uint64, len(values))
		for i, v := range values {
			if arith {
				other[i] = (v - r[i]) & o.mask
			} else {
				other[i] = (v ^ r[i]) & o.mask
			}
		}
		shares := [2][]uint64{r, other}
		var own []uint64
		for server, s := range shares {
			if server == rank {
				own = s
				continue
			}
			if err := p2p.SendWords(tr, server, tag, s); err != nil {
				return nil, fmt.Errorf("%v: share: %w", o, err)
			}
		}
		return own, nil
	}
	if !o.p.IsServer() {
		return nil, nil
	}
	words, err := o.receive(owner, tag, -1)
	if err != nil {
		return nil, fmt.Errorf("%v: share: %w", o, err)
	}
	return words, nil
}

// receive receives n words from the rank. If n is negative, the
// vector can have any length.
func (o *Op) receive(from int, tag task.Tag, n int) ([]uint64, error) {
	tr := o.p.Transport()
	if n >= 0 {
		return p2p.ReceiveWords(tr, from, tag, n)
	}
	data, err := tr.Receive(from, tag)
	if err != nil {
		return nil, err
	}
	return p2p.DecodeWords(data)
}

// BoolReconstruct opens the boolean shares to the owner. All ranks
// must call BoolReconstruct; the shares are used only at the compute
// parties. The owner returns the values and other ranks return nil.
func (o *Op) BoolReconstruct(shares []uint64, owner int) ([]uint64, error) {
	return o.reconstruct(shares, owner, false)
}

// ArithReconstruct opens the arithmetic shares to the owner.
func (o *Op) ArithReconstruct(shares []uint64, owner int) ([]uint64, error) {
	return o.reconstruct(shares, owner, true)
}

func (o *Op) reconstruct(shares []uint64, owner int, arith bool) (
	[]uint64, error) {

	tag := o.nextIOTag()
	rank := o.p.Rank()

	if rank != owner {
		if !o.p.IsServer() {
			return nil, nil
		}
		err := p2p.SendWords(o.p.Transport(), owner, tag, shares)
		if err != nil {
			return nil, fmt.Errorf("%v: reconstruct: %w", o, err)
		}
		return nil, nil
	}

	var result []uint64
	n := -1
	if o.p.IsServer() {
		result = make([]uint64, len(shares))
		copy(result, shares)
		n = len(shares)
	}
	for server := 0; server < 2; server++ {
		if server == rank {
			continue
		}
		words, err := o.receive(server, tag, n)
		if err != nil {
			return nil, fmt.Errorf("%v: reconstruct: %w", o, err)
		}
		if result == nil {
			result = make([]uint64, len(words))
			n = len(words)
		}
		for i, w := range words {
			if arith {
				result[i] += w
			} else {
				result[i] ^= w
			}
		}
	}
	for i := range result {
		result[i] &= o.mask
	}
	return result, nil
}
