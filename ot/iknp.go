//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// IKNP OT Extension:
//
// Extending oblivious transfers efficiently
//  - https://www.iacr.org/archive/crypto2003/27290145/27290145.pdf
//
// More Efficient Oblivious Transfer and Extensions for Faster Secure
// Computation
//  - https://eprint.iacr.org/2013/552.pdf

package ot

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/zeebo/blake3"
)

const streamContext = "mpcdb 2026 IKNP extension stream"

// newStream creates the PRG stream for the base OT key and stream
// id.
func newStream(key Label, id uint64) (cipher.Stream, error) {
	var ld LabelData
	var material [24]byte
	copy(material[:16], key.Bytes(&ld))
	bo.PutUint64(material[16:], id)

	var aesKey [16]byte
	blake3.DeriveKey(streamContext, material[:], aesKey[:])

	block, err := aes.NewCipher(aesKey[:])
	if err != nil {
		return nil, err
	}
	var iv [16]byte
	return cipher.NewCTR(block, iv[:]), nil
}

// prgWords fills words with the next bytes from the stream. The buf
// must have room for 8*len(words) bytes.
func prgWords(c cipher.Stream, words []uint64, buf []byte) {
	buf = buf[:len(words)*8]
	for i := range buf {
		buf[i] = 0
	}
	c.XORKeyStream(buf, buf)
	for i := range words {
		words[i] = bo.Uint64(buf[i*8:])
	}
}

// pad computes the correlation robust hash of the OT row j of the
// stream id.
func pad(id, j uint64, row Label) [32]byte {
	var ld LabelData
	var buf [32]byte
	bo.PutUint64(buf[0:], id)
	bo.PutUint64(buf[8:], j)
	copy(buf[16:], row.Bytes(&ld))
	return blake3.Sum256(buf[:])
}

func padWord(id, j uint64, row Label) uint64 {
	h := pad(id, j, row)
	return bo.Uint64(h[:])
}

func padBit(id, j uint64, row Label) uint64 {
	h := pad(id, j, row)
	return uint64(h[0] & 1)
}

// transpose64 transposes the 64x64 bit matrix a so that bit i of
// a[j] becomes bit j of a[i].
func transpose64(a *[64]uint64) {
	j := 32
	m := uint64(0x00000000ffffffff)
	for j != 0 {
		for k := 0; k < 64; k = (k + j + 1) &^ j {
			t := (a[k]>>j ^ a[k+j]) & m
			a[k+j] ^= t
			a[k] ^= t << j
		}
		j >>= 1
		m ^= m << j
	}
}

// transpose converts the K bit columns of n OTs into n row labels.
func transpose(cols *[K][]uint64, n int) []Label {
	rows := make([]Label, n)
	nw := (n + 63) / 64

	var blk [64]uint64
	for b := 0; b < nw; b++ {
		for h := 0; h < 2; h++ {
			for i := 0; i < 64; i++ {
				blk[i] = cols[h*64+i][b]
			}
			transpose64(&blk)
			for t := 0; t < 64; t++ {
				j := b*64 + t
				if j >= n {
					break
				}
				if h == 0 {
					rows[j].D0 = blk[t]
				} else {
					rows[j].D1 = blk[t]
				}
			}
		}
	}
	return rows
}

// RandOTSender implements the IKNP extension sender stream.
type RandOTSender struct {
	id    uint64
	delta Label
	g     [K]cipher.Stream
	count uint64
	buf   []byte
}

// ID returns the stream ID.
func (s *RandOTSender) ID() uint64 {
	return s.id
}

// extend receives the receiver's column message for n OTs and
// returns the index of the first OT and the sender's row labels.
func (s *RandOTSender) extend(io IO, n int) (uint64, []Label, error) {
	nw := (n + 63) / 64
	u, err := ReceiveWords(io, K*nw)
	if err != nil {
		return 0, nil, err
	}
	if cap(s.buf) < nw*8 {
		s.buf = make([]byte, nw*8)
	}

	var cols [K][]uint64
	for i := 0; i < K; i++ {
		q := make([]uint64, nw)
		prgWords(s.g[i], q, s.buf)
		if s.delta.Bit(i) == 1 {
			ui := u[i*nw : (i+1)*nw]
			for w := range q {
				q[w] ^= ui[w]
			}
		}
		cols[i] = q
	}
	base := s.count
	s.count += uint64(n)

	return base, transpose(&cols, n), nil
}

// RandOTReceiver implements the IKNP extension receiver stream.
type RandOTReceiver struct {
	id    uint64
	g0    [K]cipher.Stream
	g1    [K]cipher.Stream
	count uint64
	buf   []byte
}

// ID returns the stream ID.
func (r *RandOTReceiver) ID() uint64 {
	return r.id
}

// extend sends the column message for n OTs with the bit-packed
// choices and returns the index of the first OT and the receiver's
// row labels.
func (r *RandOTReceiver) extend(io IO, choices []uint64, n int) (
	uint64, []Label, error) {

	nw := (n + 63) / 64
	if len(choices) < nw {
		return 0, nil, fmt.Errorf("ot: %d choice words for %d OTs",
			len(choices), n)
	}
	if cap(r.buf) < nw*8 {
		r.buf = make([]byte, nw*8)
	}
	var lastMask uint64 = 0xffffffffffffffff
	if n%64 != 0 {
		lastMask = 1<<(n%64) - 1
	}

	u := make([]uint64, K*nw)
	g1 := make([]uint64, nw)

	var cols [K][]uint64
	for i := 0; i < K; i++ {
		t := make([]uint64, nw)
		prgWords(r.g0[i], t, r.buf)
		prgWords(r.g1[i], g1, r.buf)

		ui := u[i*nw : (i+1)*nw]
		for w := range t {
			c := choices[w]
			if w == nw-1 {
				c &= lastMask
			}
			ui[w] = t[w] ^ g1[w] ^ c
		}
		cols[i] = t
	}
	if err := SendWords(io, u); err != nil {
		return 0, nil, err
	}
	if err := io.Flush(); err != nil {
		return 0, nil, err
	}
	base := r.count
	r.count += uint64(n)

	return base, transpose(&cols, n), nil
}
