//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"fmt"
)

// PackBools packs the boolean flags into 64-bit words, least
// significant bit first.
func PackBools(flags []bool) []uint64 {
	result := make([]uint64, (len(flags)+63)/64)
	for i, f := range flags {
		if f {
			result[i/64] |= 1 << (i % 64)
		}
	}
	return result
}

// SendWords transfers the 64-bit message pairs m0[i], m1[i] to the
// receiver. The receiver learns m1[i] if its choice i is set and
// m0[i] otherwise.
func (s *RandOTSender) SendWords(io IO, m0, m1 []uint64) error {
	if len(m0) != len(m1) {
		panic("len(m0) != len(m1)")
	}
	n := len(m0)
	base, rows, err := s.extend(io, n)
	if err != nil {
		return err
	}
	ct := make([]uint64, 2*n)
	for j, q := range rows {
		idx := base + uint64(j)
		ct[j] = m0[j] ^ padWord(s.id, idx, q)
		q.Xor(s.delta)
		ct[n+j] = m1[j] ^ padWord(s.id, idx, q)
	}
	if err := SendWords(io, ct); err != nil {
		return err
	}
	return io.Flush()
}

// SendBits transfers n bit-packed message pairs. Every bit of m0 and
// m1 is an independent OT message.
func (s *RandOTSender) SendBits(io IO, m0, m1 []uint64, n int) error {
	nw := (n + 63) / 64
	if len(m0) < nw || len(m1) < nw {
		panic("message vectors too short")
	}
	base, rows, err := s.extend(io, n)
	if err != nil {
		return err
	}
	ct := make([]uint64, 2*nw)
	for j, q := range rows {
		idx := base + uint64(j)
		w := j / 64
		bit := uint(j % 64)

		p0 := padBit(s.id, idx, q)
		q.Xor(s.delta)
		p1 := padBit(s.id, idx, q)

		ct[w] |= ((m0[w] >> bit & 1) ^ p0) << bit
		ct[nw+w] |= ((m1[w] >> bit & 1) ^ p1) << bit
	}
	if err := SendWords(io, ct); err != nil {
		return err
	}
	return io.Flush()
}

// RandomWords creates n random OT message pairs. The receiver learns
// the message selected by its choice bit.
func (s *RandOTSender) RandomWords(io IO, n int) ([]uint64, []uint64, error) {
	base, rows, err := s.extend(io, n)
	if err != nil {
		return nil, nil, err
	}
	m0 := make([]uint64, n)
	m1 := make([]uint64, n)
	for j, q := range rows {
		idx := base + uint64(j)
		m0[j] = padWord(s.id, idx, q)
		q.Xor(s.delta)
		m1[j] = padWord(s.id, idx, q)
	}
	return m0, m1, nil
}

// Send transfers one message pair.
func (s *RandOTSender) Send(io IO, m0, m1 uint64) error {
	return s.SendWords(io, []uint64{m0}, []uint64{m1})
}

// Pending holds the receiver state of an extension batch between
// sending the column message and receiving the sender's ciphertexts.
type Pending struct {
	id      uint64
	base    uint64
	n       int
	choices []uint64
	rows    []Label
}

// N returns the number of OTs in the batch.
func (p *Pending) N() int {
	return p.n
}

func (p *Pending) choice(j int) uint64 {
	return p.choices[j/64] >> (j % 64) & 1
}

// Prepare starts an extension batch of n OTs with the bit-packed
// choices. The batch is completed with Words, Bits, or Random.
func (r *RandOTReceiver) Prepare(io IO, choices []uint64, n int) (
	*Pending, error) {

	base, rows, err := r.extend(io, choices, n)
	if err != nil {
		return nil, err
	}
	return &Pending{
		id:      r.id,
		base:    base,
		n:       n,
		choices: choices,
		rows:    rows,
	}, nil
}

// Words receives the sender's word messages and returns the chosen
// messages.
func (p *Pending) Words(io IO) ([]uint64, error) {
	ct, err := ReceiveWords(io, 2*p.n)
	if err != nil {
		return nil, err
	}
	result := make([]uint64, p.n)
	for j, t := range p.rows {
		v := ct[j]
		if p.choice(j) == 1 {
			v = ct[p.n+j]
		}
		result[j] = v ^ padWord(p.id, p.base+uint64(j), t)
	}
	return result, nil
}

// Bits receives the sender's bit-packed messages and returns the
// chosen message bits packed into words.
func (p *Pending) Bits(io IO) ([]uint64, error) {
	nw := (p.n + 63) / 64
	ct, err := ReceiveWords(io, 2*nw)
	if err != nil {
		return nil, err
	}
	result := make([]uint64, nw)
	for j, t := range p.rows {
		w := j / 64
		bit := uint(j % 64)
		c := ct[w]
		if p.choice(j) == 1 {
			c = ct[nw+w]
		}
		v := (c >> bit & 1) ^ padBit(p.id, p.base+uint64(j), t)
		result[w] |= v << bit
	}
	return result, nil
}

// Random returns the chosen random messages of a RandomWords batch.
func (p *Pending) Random() []uint64 {
	result := make([]uint64, p.n)
	for j, t := range p.rows {
		result[j] = padWord(p.id, p.base+uint64(j), t)
	}
	return result
}

// ReceiveWords receives the word messages selected by choices.
func (r *RandOTReceiver) ReceiveWords(io IO, choices []bool) (
	[]uint64, error) {

	p, err := r.Prepare(io, PackBools(choices), len(choices))
	if err != nil {
		return nil, err
	}
	return p.Words(io)
}

// ReceiveBits receives the n bit-packed messages selected by the
// bit-packed choices.
func (r *RandOTReceiver) ReceiveBits(io IO, choices []uint64, n int) (
	[]uint64, error) {

	p, err := r.Prepare(io, choices, n)
	if err != nil {
		return nil, err
	}
	return p.Bits(io)
}

// Receive receives one message.
func (r *RandOTReceiver) Receive(io IO, choice bool) (uint64, error) {
	result, err := r.ReceiveWords(io, []bool{choice})
	if err != nil {
		return 0, err
	}
	if len(result) != 1 {
		return 0, fmt.Errorf("ot: got %d messages, expected 1", len(result))
	}
	return result[0], nil
}
