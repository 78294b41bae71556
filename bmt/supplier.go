//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package bmt

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/markkurossi/mpcdb/env"
	"github.com/markkurossi/mpcdb/task"
)

// JIT lanes allocate their messages above this offset of the
// consuming operation's task.
const jitMsgBase = 1 << 24

// Triple kinds.
const (
	kindArith = iota
	kindBitwise
)

// Supplier supplies Beaver triples to the secure operators. The
// compute parties must request triples in the same order with the
// same arguments: the suppliers return matching triple shares only
// if both parties consume them identically. The requesting task must
// be the task of the consuming operation and each task may request
// each triple kind at most once.
type Supplier interface {
	// Bmts returns count arithmetic triples of width bits.
	Bmts(t task.Task, count, width int) ([]Bmt, error)

	// BitwiseBmts returns count bitwise triples of width bits.
	BitwiseBmts(t task.Task, count, width int) ([]BitwiseBmt, error)

	// Stats returns the supplier statistics.
	Stats() *Stats

	// Close stops the supplier. Pending and future triple requests
	// fail. Generation rounds blocked in the transport terminate
	// when the transport is closed.
	Close() error

	// Wait waits for the supplier's generation workers to terminate.
	Wait() error
}

// Stats holds triple supply statistics.
type Stats struct {
	Name             string
	Generated        atomic.Uint64
	GeneratedBitwise atomic.Uint64
	Consumed         atomic.Uint64
	ConsumedBitwise  atomic.Uint64
	Batches          atomic.Uint64
	GenTime          atomic.Int64
	WaitTime         atomic.Int64
}

func (s *Stats) addGen(start time.Time) {
	s.Batches.Add(1)
	s.GenTime.Add(int64(time.Since(start)))
}

func (s *Stats) addWait(start time.Time) {
	s.WaitTime.Add(int64(time.Since(start)))
}

// New creates the triple supplier that the configuration selects.
func New(ctx context.Context, cfg *env.Config, gen *Generator) (
	Supplier, error) {

	var s Supplier
	var err error

	switch cfg.BmtMethod {
	case env.JIT:
		s = NewJIT(gen)
	case env.Background:
		s, err = NewBackground(ctx, cfg, gen)
	case env.Pipeline:
		s, err = NewPipeline(ctx, cfg, gen)
	case env.Fixed:
		s, err = NewFixed(gen)
	default:
		return nil, fmt.Errorf("bmt: unsupported method %v", cfg.BmtMethod)
	}
	if err != nil {
		return nil, err
	}
	if cfg.BmtUsageLimit > 1 {
		s = WithUsageLimit(s, cfg.BmtUsageLimit, cfg.GetLogger())
	}
	return s, nil
}

// arithLane returns the reserved task of the arithmetic lane i.
func arithLane(i int) task.Task {
	return task.ReservedTask(1 + 2*i)
}

// bitwiseLane returns the reserved task of the bitwise lane i.
func bitwiseLane(i int) task.Task {
	return task.ReservedTask(2 + 2*i)
}

// jitStream returns the OT stream ID of a JIT lane for the task and
// triple kind. The IDs are above the reserved lane IDs.
func jitStream(t task.Task, kind int) uint64 {
	return t.ID<<1 | uint64(kind)
}

// JIT generates triples inline when an operator requests them.
type JIT struct {
	gen   *Generator
	stats Stats
}

// NewJIT creates a new just-in-time supplier.
func NewJIT(gen *Generator) *JIT {
	s := &JIT{
		gen: gen,
	}
	s.stats.Name = env.JIT.String()
	return s
}

// Bmts implements Supplier.Bmts.
func (s *JIT) Bmts(t task.Task, count, width int) ([]Bmt, error) {
	if count == 0 {
		return nil, nil
	}
	start := time.Now()
	lane, err := s.gen.NewLane(jitStream(t, kindArith), t,
		jitMsgBase+kindArith<<20)
	if err != nil {
		return nil, err
	}
	result, err := lane.Bmts(count, width)
	if err != nil {
		return nil, err
	}
	s.stats.addGen(start)
	s.stats.Generated.Add(uint64(count))
	s.stats.Consumed.Add(uint64(count))
	return result, nil
}

// BitwiseBmts implements Supplier.BitwiseBmts.
func (s *JIT) BitwiseBmts(t task.Task, count, width int) (
	[]BitwiseBmt, error) {

	if count == 0 {
		return nil, nil
	}
	start := time.Now()
	lane, err := s.gen.NewLane(jitStream(t, kindBitwise), t,
		jitMsgBase+kindBitwise<<20)
	if err != nil {
		return nil, err
	}
	words, err := lane.BitwiseWords(Words(count, width, s.gen.SIMD))
	if err != nil {
		return nil, err
	}
	result, _ := carve(words, 0, count, width, s.gen.SIMD)

	s.stats.addGen(start)
	s.stats.GeneratedBitwise.Add(uint64(len(words) * 64))
	s.stats.ConsumedBitwise.Add(uint64(count * width))
	return result, nil
}

// Stats implements Supplier.Stats.
func (s *JIT) Stats() *Stats {
	return &s.stats
}

// Close implements Supplier.Close.
func (s *JIT) Close() error {
	return nil
}

// Wait implements Supplier.Wait.
func (s *JIT) Wait() error {
	return nil
}
