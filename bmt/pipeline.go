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

// Pipeline generates triples with a producer and a consumer worker
// per triple kind. The producer samples the shares and sends the OT
// extension columns of batch k while the consumer completes the OT
// messages of batch k-1 into triples.
type Pipeline struct {
	consumer
	log       logr.Logger
	batchSize int
	cancel    context.CancelFunc
	group     *errgroup.Group
	statsData Stats
}

// NewPipeline creates a new pipeline supplier.
func NewPipeline(ctx context.Context, cfg *env.Config, gen *Generator) (
	*Pipeline, error) {

	s := &Pipeline{
		log:       cfg.GetLogger().WithName("bmt"),
		batchSize: cfg.BmtBatchSize,
	}
	s.statsData.Name = env.Pipeline.String()
	s.consumer.stats = &s.statsData
	s.consumer.packed = gen.SIMD

	at := arithLane(0)
	arith, err := gen.NewLane(at.ID, at, 0)
	if err != nil {
		return nil, err
	}
	bt := bitwiseLane(0)
	bitwise, err := gen.NewLane(bt.ID, bt, 0)
	if err != nil {
		return nil, err
	}
	aq := NewQueue(cfg.BmtQueueType, cfg.BmtQueueCap)
	bq := NewQueue(cfg.BmtQueueType, cfg.BmtQueueCap)
	s.arith = []Queue{aq}
	s.bitwise = []Queue{bq}

	ctx, s.cancel = context.WithCancel(ctx)
	s.group, ctx = errgroup.WithContext(ctx)

	arithC := make(chan *arithBatch, 1)
	s.group.Go(func() error {
		defer close(arithC)
		return s.produce(ctx, at, aq, func() error {
			b, err := arith.startBmts(s.batchSize, 64)
			if err != nil {
				return err
			}
			return send(ctx, arithC, b)
		})
	})
	s.group.Go(func() error {
		return s.finish(ctx, at, aq, func() (*Batch, bool, error) {
			b, ok := <-arithC
			if !ok {
				return nil, false, nil
			}
			bmts, err := arith.finishBmts(b)
			if err != nil {
				return nil, false, err
			}
			s.statsData.Generated.Add(uint64(len(bmts)))
			return &Batch{Bmts: bmts}, true, nil
		})
	})

	bitwiseC := make(chan *bitwiseBatch, 1)
	s.group.Go(func() error {
		defer close(bitwiseC)
		return s.produce(ctx, bt, bq, func() error {
			b, err := bitwise.startBitwise(s.batchSize)
			if err != nil {
				return err
			}
			return send(ctx, bitwiseC, b)
		})
	})
	s.group.Go(func() error {
		return s.finish(ctx, bt, bq, func() (*Batch, bool, error) {
			b, ok := <-bitwiseC
			if !ok {
				return nil, false, nil
			}
			words, err := bitwise.finishBitwise(b)
			if err != nil {
				return nil, false, err
			}
			s.statsData.GeneratedBitwise.Add(uint64(len(words) * 64))
			return &Batch{Bitwise: words}, true, nil
		})
	})
	s.log.V(1).Info("pipeline supplier started", "queue", cfg.BmtQueueType,
		"batch", s.batchSize)

	return s, nil
}

func send[T any](ctx context.Context, c chan<- T, v T) error {
	select {
	case c <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Pipeline) produce(ctx context.Context, t task.Task, q Queue,
	start func() error) error {

	for ctx.Err() == nil {
		if err := start(); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Error(err, "triple generation failed", "lane", t)
			q.Close(err)
			return err
		}
	}
	return nil
}

func (s *Pipeline) finish(ctx context.Context, t task.Task, q Queue,
	finish func() (*Batch, bool, error)) error {

	for {
		start := time.Now()
		b, ok, err := finish()
		if err != nil {
			if ctx.Err() != nil {
				q.Close(nil)
				return nil
			}
			s.log.Error(err, "triple generation failed", "lane", t)
			q.Close(err)
			return err
		}
		if !ok {
			q.Close(nil)
			return nil
		}
		s.statsData.addGen(start)

		if err := q.Push(ctx, b); err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrClosed) {
				return nil
			}
			return err
		}
	}
}

// Bmts implements Supplier.Bmts.
func (s *Pipeline) Bmts(t task.Task, count, width int) ([]Bmt, error) {
	return s.consumer.Bmts(count, width)
}

// BitwiseBmts implements Supplier.BitwiseBmts.
func (s *Pipeline) BitwiseBmts(t task.Task, count, width int) (
	[]BitwiseBmt, error) {
	return s.consumer.BitwiseBmts(count, width)
}

// Stats implements Supplier.Stats.
func (s *Pipeline) Stats() *Stats {
	return &s.statsData
}

// Close implements Supplier.Close.
func (s *Pipeline) Close() error {
	s.cancel()
	s.consumer.close(nil)
	return nil
}

// Wait implements Supplier.Wait.
func (s *Pipeline) Wait() error {
	err := s.group.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
