//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package bmt

import (
	"context"
	"errors"
	"time"

	"github.com/go-logr/logr"
	"github.com/markkurossi/mpcdb/env"
	"github.com/markkurossi/mpcdb/task"
	"golang.org/x/sync/errgroup"
)

// Background generates triples continuously into bounded queues with
// one worker per lane.
type Background struct {
	consumer
	gen       *Generator
	log       logr.Logger
	batchSize int
	cancel    context.CancelFunc
	group     *errgroup.Group
	statsData Stats
}

// NewBackground creates a new background supplier with
// cfg.BmtQueueNum lanes for each triple kind.
func NewBackground(ctx context.Context, cfg *env.Config, gen *Generator) (
	*Background, error) {

	s := &Background{
		gen:       gen,
		log:       cfg.GetLogger().WithName("bmt"),
		batchSize: cfg.BmtBatchSize,
	}
	s.statsData.Name = env.Background.String()
	s.consumer.stats = &s.statsData
	s.consumer.packed = gen.SIMD

	ctx, s.cancel = context.WithCancel(ctx)
	s.group, ctx = errgroup.WithContext(ctx)

	for i := 0; i < cfg.BmtQueueNum; i++ {
		at := arithLane(i)
		arith, err := gen.NewLane(at.ID, at, 0)
		if err != nil {
			s.cancel()
			return nil, err
		}
		bt := bitwiseLane(i)
		bitwise, err := gen.NewLane(bt.ID, bt, 0)
		if err != nil {
			s.cancel()
			return nil, err
		}
		aq := NewQueue(cfg.BmtQueueType, cfg.BmtQueueCap)
		bq := NewQueue(cfg.BmtQueueType, cfg.BmtQueueCap)
		s.arith = append(s.arith, aq)
		s.bitwise = append(s.bitwise, bq)

		s.group.Go(func() error {
			return s.produce(ctx, at, aq, func() (*Batch, error) {
				bmts, err := arith.Bmts(s.batchSize, 64)
				if err != nil {
					return nil, err
				}
				s.statsData.Generated.Add(uint64(len(bmts)))
				return &Batch{Bmts: bmts}, nil
			})
		})
		s.group.Go(func() error {
			return s.produce(ctx, bt, bq, func() (*Batch, error) {
				words, err := bitwise.BitwiseWords(s.batchSize)
				if err != nil {
					return nil, err
				}
				s.statsData.GeneratedBitwise.Add(uint64(len(words) * 64))
				return &Batch{Bitwise: words}, nil
			})
		})
	}
	s.log.V(1).Info("background supplier started", "lanes", cfg.BmtQueueNum,
		"queue", cfg.BmtQueueType, "batch", s.batchSize)

	return s, nil
}

func (s *Background) produce(ctx context.Context, t task.Task, q Queue,
	gen func() (*Batch, error)) error {

	for ctx.Err() == nil {
		start := time.Now()
		b, err := gen()
		if err != nil {
			if ctx.Err() != nil {
				q.Close(nil)
				return nil
			}
			s.log.Error(err, "triple generation failed", "lane", t)
			q.Close(err)
			return err
		}
		s.statsData.addGen(start)

		if err := q.Push(ctx, b); err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrClosed) {
				return nil
			}
			return err
		}
	}
	q.Close(nil)
	return nil
}

// Bmts implements Supplier.Bmts.
func (s *Background) Bmts(t task.Task, count, width int) ([]Bmt, error) {
	return s.consumer.Bmts(count, width)
}

// BitwiseBmts implements Supplier.BitwiseBmts.
func (s *Background) BitwiseBmts(t task.Task, count, width int) (
	[]BitwiseBmt, error) {
	return s.consumer.BitwiseBmts(count, width)
}

// Stats implements Supplier.Stats.
func (s *Background) Stats() *Stats {
	return &s.statsData
}

// Close implements Supplier.Close.
func (s *Background) Close() error {
	s.cancel()
	s.consumer.close(nil)
	return nil
}

// Wait implements Supplier.Wait.
func (s *Background) Wait() error {
	err := s.group.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
