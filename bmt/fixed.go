//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package bmt

import (
	"github.com/markkurossi/mpcdb/env"
	"github.com/markkurossi/mpcdb/task"
)

// Fixed generates one triple of each kind at startup and returns it
// for all requests. It is for testing only: reusing triples reveals
// the masked operands.
type Fixed struct {
	bmt     Bmt
	bitwise BitwiseBmt
	stats   Stats
}

// NewFixed creates a new fixed supplier.
func NewFixed(gen *Generator) (*Fixed, error) {
	at := arithLane(0)
	arith, err := gen.NewLane(at.ID, at, 0)
	if err != nil {
		return nil, err
	}
	bmts, err := arith.Bmts(1, 64)
	if err != nil {
		return nil, err
	}
	bt := bitwiseLane(0)
	bitwise, err := gen.NewLane(bt.ID, bt, 0)
	if err != nil {
		return nil, err
	}
	words, err := bitwise.BitwiseWords(1)
	if err != nil {
		return nil, err
	}
	s := &Fixed{
		bmt:     bmts[0],
		bitwise: words[0],
	}
	s.stats.Name = env.Fixed.String()
	s.stats.Generated.Store(1)
	s.stats.GeneratedBitwise.Store(64)
	gen.log.Info("fixed triple supplier in use; triples are reused")

	return s, nil
}

// Bmts implements Supplier.Bmts.
func (s *Fixed) Bmts(t task.Task, count, width int) ([]Bmt, error) {
	result := make([]Bmt, count)
	bmt := s.bmt.Mask(width)
	for i := range result {
		result[i] = bmt
	}
	s.stats.Consumed.Add(uint64(count))
	return result, nil
}

// BitwiseBmts implements Supplier.BitwiseBmts.
func (s *Fixed) BitwiseBmts(t task.Task, count, width int) (
	[]BitwiseBmt, error) {

	result := make([]BitwiseBmt, count)
	bmt := s.bitwise.Extract(0, width)
	for i := range result {
		result[i] = bmt
	}
	s.stats.ConsumedBitwise.Add(uint64(count * width))
	return result, nil
}

// Stats implements Supplier.Stats.
func (s *Fixed) Stats() *Stats {
	return &s.stats
}

// Close implements Supplier.Close.
func (s *Fixed) Close() error {
	return nil
}

// Wait implements Supplier.Wait.
func (s *Fixed) Wait() error {
	return nil
}
