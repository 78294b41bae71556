//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package bmt

import (
	"sync"
	"sync/atomic"
	"time"
)

// consumer serves triples from a set of lane queues. The batches are
// taken from the lanes in round-robin order so that both parties
// consume the same triples.
type consumer struct {
	closed atomic.Bool
	m      sync.Mutex
	stats  *Stats
	packed bool

	arith     []Queue
	nextArith int
	bmts      []Bmt
	pos       int

	bitwise     []Queue
	nextBitwise int
	words       []BitwiseBmt
	off         int
}

func (c *consumer) pollArith() error {
	start := time.Now()
	q := c.arith[c.nextArith]
	c.nextArith = (c.nextArith + 1) % len(c.arith)

	b, err := q.Poll()
	if err != nil {
		return err
	}
	c.stats.addWait(start)
	c.bmts = b.Bmts
	c.pos = 0
	return nil
}

func (c *consumer) pollBitwise() error {
	start := time.Now()
	q := c.bitwise[c.nextBitwise]
	c.nextBitwise = (c.nextBitwise + 1) % len(c.bitwise)

	b, err := q.Poll()
	if err != nil {
		return err
	}
	c.stats.addWait(start)
	c.words = b.Bitwise
	c.off = 0
	return nil
}

// Bmts returns count arithmetic triples masked to width bits.
func (c *consumer) Bmts(count, width int) ([]Bmt, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	c.m.Lock()
	defer c.m.Unlock()

	result := make([]Bmt, 0, count)
	for len(result) < count {
		if c.pos >= len(c.bmts) {
			if err := c.pollArith(); err != nil {
				return nil, err
			}
			continue
		}
		n := count - len(result)
		if avail := len(c.bmts) - c.pos; n > avail {
			n = avail
		}
		for _, t := range c.bmts[c.pos : c.pos+n] {
			result = append(result, t.Mask(width))
		}
		c.pos += n
	}
	c.stats.Consumed.Add(uint64(count))
	return result, nil
}

// fit returns the number of triples of width bits available in the
// current bitwise batch.
func (c *consumer) fit(width int) int {
	total := len(c.words) * 64
	if c.packed {
		return (total - c.off) / width
	}
	aligned := (c.off + 63) / 64 * 64
	return (total - aligned) / 64
}

// BitwiseBmts returns count bitwise triples of width bits. Triples
// never span batches.
func (c *consumer) BitwiseBmts(count, width int) ([]BitwiseBmt, error) {
	Mask(width)
	if c.closed.Load() {
		return nil, ErrClosed
	}
	c.m.Lock()
	defer c.m.Unlock()

	result := make([]BitwiseBmt, 0, count)
	for len(result) < count {
		n := c.fit(width)
		if n == 0 {
			if err := c.pollBitwise(); err != nil {
				return nil, err
			}
			continue
		}
		if rest := count - len(result); n > rest {
			n = rest
		}
		var part []BitwiseBmt
		part, c.off = carve(c.words, c.off, n, width, c.packed)
		result = append(result, part...)
	}
	c.stats.ConsumedBitwise.Add(uint64(count * width))
	return result, nil
}

func (c *consumer) close(err error) {
	c.closed.Store(true)
	for _, q := range c.arith {
		q.Close(err)
	}
	for _, q := range c.bitwise {
		q.Close(err)
	}
}
