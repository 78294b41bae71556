//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"crypto/rand"
	mrand "math/rand"
	"testing"
)

func newBase() OT {
	return NewRSA(rand.Reader, testKeyBits)
}

// setup creates the base correlations of two peers.
func setup(t *testing.T) (*Correlation, *Correlation, *Pipe, *Pipe) {
	p0, p1 := NewPipe()

	type result struct {
		c   *Correlation
		err error
	}
	done := make(chan result)
	go func() {
		c, err := Setup(p1, false, newBase, rand.Reader)
		done <- result{c, err}
	}()
	c0, err := Setup(p0, true, newBase, rand.Reader)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	r := <-done
	if r.err != nil {
		t.Fatalf("Setup: %v", r.err)
	}
	return c0, r.c, p0, p1
}

func TestCorrelation(t *testing.T) {
	c0, c1, _, _ := setup(t)

	for _, pair := range [][2]*Correlation{{c0, c1}, {c1, c0}} {
		s, r := pair[0], pair[1]
		for i := 0; i < K; i++ {
			expected := r.SRot[i].R0
			if s.RRot[i].Choice {
				expected = r.SRot[i].R1
			}
			if !s.RRot[i].Rb.Equal(expected) {
				t.Fatalf("RRot %d: got %v, expected %v",
					i, s.RRot[i].Rb, expected)
			}
			if s.RRot[i].Choice != (s.Delta.Bit(i) == 1) {
				t.Fatalf("RRot %d: choice does not match delta", i)
			}
		}
	}
}

func TestRandOTWords(t *testing.T) {
	c0, c1, p0, p1 := setup(t)
	rnd := mrand.New(mrand.NewSource(1))

	sender, err := c0.SenderStream(7)
	if err != nil {
		t.Fatal(err)
	}
	receiver, err := c1.ReceiverStream(7)
	if err != nil {
		t.Fatal(err)
	}

	// Several batches advance the stream state on both sides.
	for _, n := range []int{1, 64, 100, 1000} {
		m0 := make([]uint64, n)
		m1 := make([]uint64, n)
		choices := make([]bool, n)
		for i := 0; i < n; i++ {
			m0[i] = rnd.Uint64()
			m1[i] = rnd.Uint64()
			choices[i] = rnd.Intn(2) == 1
		}
		done := make(chan error)
		go func() {
			done <- sender.SendWords(p0, m0, m1)
		}()
		result, err := receiver.ReceiveWords(p1, choices)
		if err != nil {
			t.Fatalf("ReceiveWords: %v", err)
		}
		if err := <-done; err != nil {
			t.Fatalf("SendWords: %v", err)
		}
		for i := 0; i < n; i++ {
			expected := m0[i]
			if choices[i] {
				expected = m1[i]
			}
			if result[i] != expected {
				t.Fatalf("n=%d: OT %d: got %x, expected %x",
					n, i, result[i], expected)
			}
		}
	}
}

func TestRandOTBits(t *testing.T) {
	c0, c1, p0, p1 := setup(t)
	rnd := mrand.New(mrand.NewSource(2))

	// Peer 1 is the sender this time.
	sender, err := c1.SenderStream(3)
	if err != nil {
		t.Fatal(err)
	}
	receiver, err := c0.ReceiverStream(3)
	if err != nil {
		t.Fatal(err)
	}

	for _, n := range []int{5, 64, 321} {
		nw := (n + 63) / 64
		m0 := make([]uint64, nw)
		m1 := make([]uint64, nw)
		choices := make([]uint64, nw)
		for i := 0; i < nw; i++ {
			m0[i] = rnd.Uint64()
			m1[i] = rnd.Uint64()
			choices[i] = rnd.Uint64()
		}
		done := make(chan error)
		go func() {
			done <- sender.SendBits(p1, m0, m1, n)
		}()
		result, err := receiver.ReceiveBits(p0, choices, n)
		if err != nil {
			t.Fatalf("ReceiveBits: %v", err)
		}
		if err := <-done; err != nil {
			t.Fatalf("SendBits: %v", err)
		}
		for j := 0; j < n; j++ {
			w, bit := j/64, uint(j%64)
			c := choices[w] >> bit & 1
			expected := (m0[w] &^ choices[w] | m1[w] & choices[w]) >> bit & 1
			got := result[w] >> bit & 1
			if got != expected {
				t.Fatalf("n=%d: OT %d (choice %d): got %v, expected %v",
					n, j, c, got, expected)
			}
		}
		if n%64 != 0 && result[nw-1]>>(n%64) != 0 {
			t.Errorf("n=%d: result has bits beyond n", n)
		}
	}
}

func TestRandOTRandom(t *testing.T) {
	c0, c1, p0, p1 := setup(t)

	sender, err := c0.SenderStream(11)
	if err != nil {
		t.Fatal(err)
	}
	receiver, err := c1.ReceiverStream(11)
	if err != nil {
		t.Fatal(err)
	}
	choices := []bool{true, false, true, true, false}

	type result struct {
		m0, m1 []uint64
		err    error
	}
	done := make(chan result)
	go func() {
		m0, m1, err := sender.RandomWords(p0, len(choices))
		done <- result{m0, m1, err}
	}()
	pending, err := receiver.Prepare(p1, PackBools(choices), len(choices))
	if err != nil {
		t.Fatal(err)
	}
	r := <-done
	if r.err != nil {
		t.Fatal(r.err)
	}
	got := pending.Random()
	for i, c := range choices {
		expected := r.m0[i]
		if c {
			expected = r.m1[i]
		}
		if got[i] != expected {
			t.Errorf("OT %d: got %x, expected %x", i, got[i], expected)
		}
		if r.m0[i] == r.m1[i] {
			t.Errorf("OT %d: equal random messages", i)
		}
	}
}

func TestRandOTSingle(t *testing.T) {
	c0, c1, p0, p1 := setup(t)

	sender, err := c0.SenderStream(1)
	if err != nil {
		t.Fatal(err)
	}
	receiver, err := c1.ReceiverStream(1)
	if err != nil {
		t.Fatal(err)
	}
	for _, choice := range []bool{false, true} {
		done := make(chan error)
		go func() {
			done <- sender.Send(p0, 40, 20)
		}()
		v, err := receiver.Receive(p1, choice)
		if err != nil {
			t.Fatal(err)
		}
		if err := <-done; err != nil {
			t.Fatal(err)
		}
		expected := uint64(40)
		if choice {
			expected = 20
		}
		if v != expected {
			t.Errorf("Receive(%v): got %v, expected %v", choice, v, expected)
		}
	}
}

func TestRandOTStreamMismatch(t *testing.T) {
	c0, c1, p0, p1 := setup(t)

	sender, err := c0.SenderStream(1)
	if err != nil {
		t.Fatal(err)
	}
	receiver, err := c1.ReceiverStream(2)
	if err != nil {
		t.Fatal(err)
	}
	m0 := make([]uint64, 64)
	m1 := make([]uint64, 64)
	for i := range m1 {
		m0[i] = uint64(i)
		m1[i] = uint64(i) + 1000
	}
	choices := make([]bool, 64)

	done := make(chan error)
	go func() {
		done <- sender.SendWords(p0, m0, m1)
	}()
	result, err := receiver.ReceiveWords(p1, choices)
	if err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	var matches int
	for i := range result {
		if result[i] == m0[i] {
			matches++
		}
	}
	if matches > 0 {
		t.Errorf("mismatched streams transferred %d messages", matches)
	}
}
