//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package bmt

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
)

func TestBackgroundCloseDuringGeneration(t *testing.T) {
	for _, qt := range queueTypes {
		t.Run(qt.String(), func(t *testing.T) {
			s := &Background{
				log: logr.Discard(),
			}
			s.consumer.stats = &s.statsData
			ctx, cancel := context.WithCancel(context.Background())
			s.cancel = cancel
			q := NewQueue(qt, 1)
			s.arith = []Queue{q}

			err := s.produce(ctx, arithLane(0), q, func() (*Batch, error) {
				s.Close()
				return &Batch{Bmts: make([]Bmt, 1)}, nil
			})
			require.NoError(t, err)

			_, err = s.Bmts(arithLane(0), 1, 8)
			require.ErrorIs(t, err, ErrClosed)
		})
	}
}

func TestBackgroundQueueClosed(t *testing.T) {
	for _, qt := range queueTypes {
		t.Run(qt.String(), func(t *testing.T) {
			s := &Background{
				log: logr.Discard(),
			}
			q := NewQueue(qt, 1)
			q.Close(nil)

			err := s.produce(context.Background(), arithLane(0), q,
				func() (*Batch, error) {
					return &Batch{Bmts: make([]Bmt, 1)}, nil
				})
			require.NoError(t, err)
		})
	}
}

func TestPipelineCloseDuringGeneration(t *testing.T) {
	for _, qt := range queueTypes {
		t.Run(qt.String(), func(t *testing.T) {
			s := &Pipeline{
				log: logr.Discard(),
			}
			s.consumer.stats = &s.statsData
			ctx, cancel := context.WithCancel(context.Background())
			s.cancel = cancel
			q := NewQueue(qt, 1)
			s.bitwise = []Queue{q}

			err := s.finish(ctx, bitwiseLane(0), q,
				func() (*Batch, bool, error) {
					s.Close()
					return &Batch{Bitwise: make([]BitwiseBmt, 1)}, true, nil
				})
			require.NoError(t, err)
		})
	}
}
