//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package bmt

import (
	"encoding/binary"
	"io"

	"golang.org/x/crypto/chacha20"
)

var (
	_ io.Reader = &PRG{}
)

// PRG implements a ChaCha20-based pseudorandom generator for the
// local triple shares and OT masks.
type PRG struct {
	c   *chacha20.Cipher
	buf [1024]byte
	pos int
}

// NewPRG creates a new PRG seeded from the random source.
func NewPRG(rand io.Reader) (*PRG, error) {
	var key [chacha20.KeySize]byte
	if _, err := io.ReadFull(rand, key[:]); err != nil {
		return nil, err
	}
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		return nil, err
	}
	prg := &PRG{
		c: c,
	}
	prg.refill()
	return prg, nil
}

func (prg *PRG) refill() {
	for i := range prg.buf {
		prg.buf[i] = 0
	}
	prg.c.XORKeyStream(prg.buf[:], prg.buf[:])
	prg.pos = 0
}

// Read implements io.Reader.
func (prg *PRG) Read(p []byte) (int, error) {
	var n int
	for n < len(p) {
		if prg.pos >= len(prg.buf) {
			prg.refill()
		}
		c := copy(p[n:], prg.buf[prg.pos:])
		prg.pos += c
		n += c
	}
	return n, nil
}

// Uint64 returns a random 64-bit value.
func (prg *PRG) Uint64() uint64 {
	if prg.pos+8 > len(prg.buf) {
		prg.refill()
	}
	v := binary.LittleEndian.Uint64(prg.buf[prg.pos:])
	prg.pos += 8
	return v
}

// Words returns n random 64-bit values masked with mask.
func (prg *PRG) Words(n int, mask uint64) []uint64 {
	result := make([]uint64, n)
	for i := range result {
		result[i] = prg.Uint64() & mask
	}
	return result
}
