//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package op implements the secure operators over secret shared
// values. The operators run between the two compute parties: each
// party holds one share of every value, boolean shares combine with
// XOR and arithmetic shares with addition modulo 2^width.
//
// An operator instance Op belongs to one task. All rounds of the
// operators invoked on the instance use the task's message tags in
// sequence so the parties must invoke the same operators in the same
// order with vectors of the same lengths.
package op

import (
	"fmt"
	"math/bits"

	"github.com/markkurossi/mpcdb/bmt"
	"github.com/markkurossi/mpcdb/p2p"
	"github.com/markkurossi/mpcdb/party"
	"github.com/markkurossi/mpcdb/task"
)

// Share and reconstruct messages use their own message offsets
// above this base so that the client stays in step with the servers
// regardless of the number of server rounds.
const ioMsgBase = 1 << 30

// Count defines the numbers of triples an operation consumes.
type Count struct {
	Arith   int
	Bitwise int
}

// Add returns the sum of the counts.
func (c Count) Add(o Count) Count {
	return Count{
		Arith:   c.Arith + o.Arith,
		Bitwise: c.Bitwise + o.Bitwise,
	}
}

// Mul returns the count multiplied by n.
func (c Count) Mul(n int) Count {
	return Count{
		Arith:   c.Arith * n,
		Bitwise: c.Bitwise * n,
	}
}

func (c Count) String() string {
	return fmt.Sprintf("%d+%db", c.Arith, c.Bitwise)
}

// levels returns the number of prefix network levels for width
// bits.
func levels(width int) int {
	return bits.Len(uint(width - 1))
}

// Op is an operator instance. It holds the task, the value width,
// and the triples of the operations.
type Op struct {
	p       *party.Party
	t       task.Task
	width   int
	mask    uint64
	tw      int
	msg     uint32
	ioMsg   uint32
	fetched bool
	bmts    []bmt.Bmt
	bits    []bmt.BitwiseBmt
}

// New creates an operator instance for values of width bits. The
// function panics if the width is not in the range [1...64].
func New(p *party.Party, t task.Task, width int) *Op {
	return &Op{
		p:     p,
		t:     t,
		width: width,
		mask:  bmt.Mask(width),
		tw:    1 << levels(width),
		ioMsg: ioMsgBase,
	}
}

func (o *Op) String() string {
	return fmt.Sprintf("%v:%v/%d", o.p, o.t, o.width)
}

// Task returns the operator task.
func (o *Op) Task() task.Task {
	return o.t
}

// Width returns the value width in bits.
func (o *Op) Width() int {
	return o.width
}

// Rank returns the rank of the operator's party.
func (o *Op) Rank() int {
	return o.p.Rank()
}

// Mask returns the value mask.
func (o *Op) Mask() uint64 {
	return o.mask
}

// Prefetch fetches the triples of the operations that will be
// invoked on the instance. The triples are requested once per
// instance. Without Prefetch, the first operator fetches its own
// triples and the instance can run only that operator.
func (o *Op) Prefetch(c Count) error {
	if o.fetched {
		panic(fmt.Sprintf("%v: triples already fetched", o))
	}
	o.fetched = true

	s := o.p.Supplier()
	var err error
	if c.Arith > 0 {
		o.bmts, err = s.Bmts(o.t, c.Arith, o.width)
		if err != nil {
			return fmt.Errorf("%v: %w", o, err)
		}
	}
	if c.Bitwise > 0 {
		o.bits, err = s.BitwiseBmts(o.t, c.Bitwise, o.tw)
		if err != nil {
			return fmt.Errorf("%v: %w", o, err)
		}
	}
	return nil
}

// Remaining returns the count of unused prefetched triples.
func (o *Op) Remaining() Count {
	return Count{
		Arith:   len(o.bmts),
		Bitwise: len(o.bits),
	}
}

func (o *Op) need(c Count) error {
	if !o.fetched {
		return o.Prefetch(c)
	}
	if len(o.bmts) < c.Arith || len(o.bits) < c.Bitwise {
		panic(fmt.Sprintf("%v: need %v triples, have %v", o, c, o.Remaining()))
	}
	return nil
}

func (o *Op) takeBmts(n int) []bmt.Bmt {
	if n > len(o.bmts) {
		panic(fmt.Sprintf("%v: out of arithmetic triples", o))
	}
	result := o.bmts[:n]
	o.bmts = o.bmts[n:]
	return result
}

func (o *Op) takeBits(n int) []bmt.BitwiseBmt {
	if n > len(o.bits) {
		panic(fmt.Sprintf("%v: out of bitwise triples", o))
	}
	result := o.bits[:n]
	o.bits = o.bits[n:]
	return result
}

// exchange runs one round with the peer server.
func (o *Op) exchange(words []uint64) ([]uint64, error) {
	tag := o.t.Tag(o.msg)
	o.msg++
	o.p.Logger().V(2).Info("round", "tag", tag, "words", len(words))

	result, err := p2p.ExchangeWords(o.p.Transport(), o.p.Peer(), tag, words)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", o, err)
	}
	return result, nil
}

func checkLen(xs, ys []uint64) {
	if len(xs) != len(ys) {
		panic(fmt.Sprintf("len(xs)=%d != len(ys)=%d", len(xs), len(ys)))
	}
}

// and computes the bitwise AND of boolean shares with one round.
func (o *Op) and(xs, ys []uint64, mask uint64) ([]uint64, error) {
	checkLen(xs, ys)
	n := len(xs)
	if n == 0 {
		return nil, nil
	}
	ts := o.takeBits(n)

	msg := make([]uint64, 2*n)
	for i := 0; i < n; i++ {
		msg[i] = (xs[i] ^ ts[i].A) & mask
		msg[n+i] = (ys[i] ^ ts[i].B) & mask
	}
	peer, err := o.exchange(msg)
	if err != nil {
		return nil, err
	}
	first := o.p.Rank() == 0

	z := make([]uint64, n)
	for i := 0; i < n; i++ {
		e := msg[i] ^ peer[i]
		f := msg[n+i] ^ peer[n+i]
		v := ts[i].C ^ (e & ts[i].B) ^ (f & ts[i].A)
		if first {
			v ^= e & f
		}
		z[i] = v & mask
	}
	return z, nil
}

// mul computes the products of arithmetic shares with one round.
func (o *Op) mul(xs, ys []uint64) ([]uint64, error) {
	checkLen(xs, ys)
	n := len(xs)
	if n == 0 {
		return nil, nil
	}
	ts := o.takeBmts(n)

	msg := make([]uint64, 2*n)
	for i := 0; i < n; i++ {
		msg[i] = (xs[i] - ts[i].A) & o.mask
		msg[n+i] = (ys[i] - ts[i].B) & o.mask
	}
	peer, err := o.exchange(msg)
	if err != nil {
		return nil, err
	}
	first := o.p.Rank() == 0

	z := make([]uint64, n)
	for i := 0; i < n; i++ {
		e := msg[i] + peer[i]
		f := msg[n+i] + peer[n+i]
		v := ts[i].C + e*ts[i].B + f*ts[i].A
		if first {
			v += e * f
		}
		z[i] = v & o.mask
	}
	return z, nil
}
