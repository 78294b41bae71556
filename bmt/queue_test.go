//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package bmt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/markkurossi/mpcdb/env"
	"github.com/stretchr/testify/require"
)

var queueTypes = []env.QueueType{
	env.QueueCond,
	env.QueueChan,
	env.QueueSPSC,
}

func TestQueueOrder(t *testing.T) {
	for _, qt := range queueTypes {
		t.Run(qt.String(), func(t *testing.T) {
			q := NewQueue(qt, 4)
			ctx := context.Background()

			done := make(chan error)
			go func() {
				for i := 0; i < 100; i++ {
					b := &Batch{
						Bmts: []Bmt{{A: uint64(i)}},
					}
					if err := q.Push(ctx, b); err != nil {
						done <- err
						return
					}
				}
				done <- nil
			}()
			for i := 0; i < 100; i++ {
				b, err := q.Poll()
				require.NoError(t, err)
				require.Equal(t, uint64(i), b.Bmts[0].A)
			}
			require.NoError(t, <-done)
			require.Zero(t, q.Len())
		})
	}
}

func TestQueueClose(t *testing.T) {
	for _, qt := range queueTypes {
		t.Run(qt.String(), func(t *testing.T) {
			q := NewQueue(qt, 2)
			ctx := context.Background()

			require.NoError(t, q.Push(ctx, &Batch{}))
			require.Equal(t, 1, q.Len())

			failure := errors.New("generator failed")
			q.Close(failure)

			// Queued batches are delivered before the error.
			_, err := q.Poll()
			require.NoError(t, err)
			_, err = q.Poll()
			require.ErrorIs(t, err, failure)
			require.Error(t, q.Push(ctx, &Batch{}))

			q = NewQueue(qt, 1)
			go func() {
				time.Sleep(10 * time.Millisecond)
				q.Close(nil)
			}()
			_, err = q.Poll()
			require.ErrorIs(t, err, ErrClosed)
		})
	}
}

func TestQueueCancel(t *testing.T) {
	for _, qt := range queueTypes {
		t.Run(qt.String(), func(t *testing.T) {
			q := NewQueue(qt, 1)
			ctx, cancel := context.WithCancel(context.Background())

			require.NoError(t, q.Push(ctx, &Batch{}))
			go func() {
				time.Sleep(10 * time.Millisecond)
				cancel()
			}()
			err := q.Push(ctx, &Batch{})
			require.ErrorIs(t, err, context.Canceled)
		})
	}
}
