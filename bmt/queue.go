//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package bmt

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/markkurossi/mpcdb/env"
)

// ErrClosed is returned when polling a queue that was closed without
// an error.
var ErrClosed = errors.New("bmt: queue closed")

// Batch is one generated batch of triples.
type Batch struct {
	Bmts    []Bmt
	Bitwise []BitwiseBmt
}

// Queue is a bounded FIFO of triple batches between a producer and a
// consumer.
type Queue interface {
	// Push adds the batch to the queue. The function blocks while
	// the queue is full.
	Push(ctx context.Context, b *Batch) error

	// Poll removes the oldest batch from the queue. The function
	// blocks while the queue is empty.
	Poll() (*Batch, error)

	// Len returns the number of queued batches.
	Len() int

	// Close closes the queue. Pending and future polls return err,
	// or ErrClosed if err is nil, once the queued batches are
	// consumed.
	Close(err error)
}

// NewQueue creates a new queue of the type with the capacity.
func NewQueue(t env.QueueType, capacity int) Queue {
	if capacity < 1 {
		capacity = 1
	}
	switch t {
	case env.QueueCond:
		return newCondQueue(capacity)
	case env.QueueSPSC:
		return newSPSCQueue(capacity)
	default:
		return newChanQueue(capacity)
	}
}

func closeErr(err error) error {
	if err == nil {
		return ErrClosed
	}
	return err
}

type condQueue struct {
	m        sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	items    []*Batch
	capacity int
	err      error
}

func newCondQueue(capacity int) *condQueue {
	q := &condQueue{
		capacity: capacity,
	}
	q.notEmpty = sync.NewCond(&q.m)
	q.notFull = sync.NewCond(&q.m)
	return q
}

func (q *condQueue) Push(ctx context.Context, b *Batch) error {
	stop := context.AfterFunc(ctx, func() {
		q.m.Lock()
		q.notFull.Broadcast()
		q.m.Unlock()
	})
	defer stop()

	q.m.Lock()
	defer q.m.Unlock()

	for len(q.items) >= q.capacity && q.err == nil && ctx.Err() == nil {
		q.notFull.Wait()
	}
	if q.err != nil {
		return q.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	q.items = append(q.items, b)
	q.notEmpty.Signal()
	return nil
}

func (q *condQueue) Poll() (*Batch, error) {
	q.m.Lock()
	defer q.m.Unlock()

	for len(q.items) == 0 && q.err == nil {
		q.notEmpty.Wait()
	}
	if len(q.items) == 0 {
		return nil, q.err
	}
	b := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	q.notFull.Signal()
	return b, nil
}

func (q *condQueue) Len() int {
	q.m.Lock()
	defer q.m.Unlock()
	return len(q.items)
}

func (q *condQueue) Close(err error) {
	q.m.Lock()
	defer q.m.Unlock()
	if q.err == nil {
		q.err = closeErr(err)
	}
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

type chanQueue struct {
	c    chan *Batch
	done chan struct{}
	once sync.Once
	err  error
}

func newChanQueue(capacity int) *chanQueue {
	return &chanQueue{
		c:    make(chan *Batch, capacity),
		done: make(chan struct{}),
	}
}

func (q *chanQueue) Push(ctx context.Context, b *Batch) error {
	select {
	case <-q.done:
		return q.err
	default:
	}
	select {
	case q.c <- b:
		return nil
	case <-q.done:
		return q.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *chanQueue) Poll() (*Batch, error) {
	select {
	case b := <-q.c:
		return b, nil
	default:
	}
	select {
	case b := <-q.c:
		return b, nil
	case <-q.done:
		select {
		case b := <-q.c:
			return b, nil
		default:
			return nil, q.err
		}
	}
}

func (q *chanQueue) Len() int {
	return len(q.c)
}

func (q *chanQueue) Close(err error) {
	q.once.Do(func() {
		q.err = closeErr(err)
		close(q.done)
	})
}

// spscQueue is a lock-free ring buffer for exactly one producer and
// one consumer goroutine.
type spscQueue struct {
	items  []*Batch
	head   atomic.Uint64
	tail   atomic.Uint64
	closed atomic.Bool
	err    atomic.Pointer[error]
}

func newSPSCQueue(capacity int) *spscQueue {
	return &spscQueue{
		items: make([]*Batch, capacity),
	}
}

func (q *spscQueue) closeError() error {
	if err := q.err.Load(); err != nil {
		return *err
	}
	return ErrClosed
}

func backoff(spins int) {
	if spins < 64 {
		runtime.Gosched()
	} else {
		time.Sleep(50 * time.Microsecond)
	}
}

func (q *spscQueue) Push(ctx context.Context, b *Batch) error {
	tail := q.tail.Load()
	for spins := 0; ; spins++ {
		if q.closed.Load() {
			return q.closeError()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if tail-q.head.Load() < uint64(len(q.items)) {
			break
		}
		backoff(spins)
	}
	q.items[tail%uint64(len(q.items))] = b
	q.tail.Store(tail + 1)
	return nil
}

func (q *spscQueue) Poll() (*Batch, error) {
	head := q.head.Load()
	for spins := 0; ; spins++ {
		if head < q.tail.Load() {
			break
		}
		if q.closed.Load() {
			// Recheck after observing close.
			if head < q.tail.Load() {
				break
			}
			return nil, q.closeError()
		}
		backoff(spins)
	}
	idx := head % uint64(len(q.items))
	b := q.items[idx]
	q.items[idx] = nil
	q.head.Store(head + 1)
	return b, nil
}

func (q *spscQueue) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

func (q *spscQueue) Close(err error) {
	err = closeErr(err)
	q.err.CompareAndSwap(nil, &err)
	q.closed.Store(true)
}
