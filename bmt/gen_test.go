//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package bmt

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/go-logr/logr"
	"github.com/markkurossi/mpcdb/env"
	"github.com/markkurossi/mpcdb/ot"
	"github.com/markkurossi/mpcdb/p2p"
	"github.com/markkurossi/mpcdb/task"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type testPeers struct {
	nodes []*p2p.Node
	gens  [2]*Generator
}

func (tp *testPeers) close() {
	for _, n := range tp.nodes {
		n.Close()
	}
}

// both runs f for both compute parties concurrently.
func both(f func(rank int) error) error {
	var g errgroup.Group
	for rank := 0; rank < 2; rank++ {
		g.Go(func() error {
			return f(rank)
		})
	}
	return g.Wait()
}

func newTestPeers(t *testing.T) *testPeers {
	tp := &testPeers{
		nodes: p2p.LocalMesh(2, logr.Discard()),
	}
	err := both(func(rank int) error {
		io := p2p.NewTagIO(tp.nodes[rank], 1-rank, task.ReservedTask(0).Tag(0))
		corr, err := ot.Setup(io, rank == 0, func() ot.OT {
			return ot.NewRSA(rand.Reader, 1024)
		}, rand.Reader)
		if err != nil {
			return err
		}
		tp.gens[rank] = NewGenerator(rank, tp.nodes[rank], corr, rand.Reader,
			logr.Discard())
		return nil
	})
	require.NoError(t, err)
	t.Cleanup(tp.close)
	return tp
}

func checkBmts(t *testing.T, width int, s0, s1 []Bmt) {
	require.Equal(t, len(s0), len(s1))
	mask := Mask(width)
	for i := range s0 {
		a := s0[i].A + s1[i].A
		b := s0[i].B + s1[i].B
		c := s0[i].C + s1[i].C
		require.Equalf(t, a*b&mask, c&mask, "width %d: triple %d", width, i)
		require.Zero(t, s0[i].A&^mask)
		require.Zero(t, s1[i].C&^mask)
	}
}

func checkBitwise(t *testing.T, width int, s0, s1 []BitwiseBmt) {
	require.Equal(t, len(s0), len(s1))
	mask := Mask(width)
	for i := range s0 {
		a := s0[i].A ^ s1[i].A
		b := s0[i].B ^ s1[i].B
		c := s0[i].C ^ s1[i].C
		require.Equalf(t, a&b, c, "width %d: triple %d", width, i)
		require.Zero(t, c&^mask)
	}
}

func TestLane(t *testing.T) {
	tp := newTestPeers(t)
	tk := task.Task{ID: 100, Wire: 100}

	var lanes [2]*Lane
	for rank := 0; rank < 2; rank++ {
		var err error
		lanes[rank], err = tp.gens[rank].NewLane(200, tk, 0)
		require.NoError(t, err)
	}
	for _, width := range []int{1, 7, 8, 32, 64} {
		var bmts [2][]Bmt
		err := both(func(rank int) error {
			var err error
			bmts[rank], err = lanes[rank].Bmts(20, width)
			return err
		})
		require.NoError(t, err)
		checkBmts(t, width, bmts[0], bmts[1])
	}

	var words [2][]BitwiseBmt
	err := both(func(rank int) error {
		var err error
		words[rank], err = lanes[rank].BitwiseWords(5)
		return err
	})
	require.NoError(t, err)
	checkBitwise(t, 64, words[0], words[1])
}

func testSupplier(t *testing.T, tp *testPeers, cfg *env.Config) {
	var suppliers [2]Supplier
	err := both(func(rank int) error {
		var err error
		suppliers[rank], err = New(context.Background(), cfg, tp.gens[rank])
		return err
	})
	require.NoError(t, err)

	// The consumers poll sequentially with identical arguments.
	alloc := [2]*task.Allocator{
		task.NewAllocator(32),
		task.NewAllocator(32),
	}
	requests := []struct {
		count int
		width int
	}{
		{1, 1},
		{10, 8},
		{300, 64},
		{7, 13},
		{40, 32},
	}
	for _, req := range requests {
		var tasks [2]task.Task
		tasks[0] = alloc[0].Next()
		tasks[1] = alloc[1].Next()

		var bmts [2][]Bmt
		var bitwise [2][]BitwiseBmt
		err := both(func(rank int) error {
			var err error
			s := suppliers[rank]
			bmts[rank], err = s.Bmts(tasks[rank], req.count, req.width)
			if err != nil {
				return err
			}
			bitwise[rank], err = s.BitwiseBmts(tasks[rank], req.count,
				req.width)
			return err
		})
		require.NoError(t, err)
		require.Len(t, bmts[0], req.count)
		require.Len(t, bitwise[0], req.count)
		checkBmts(t, req.width, bmts[0], bmts[1])
		checkBitwise(t, req.width, bitwise[0], bitwise[1])
	}

	stats := suppliers[0].Stats()
	require.NotEmpty(t, stats.Name)
	require.Positive(t, stats.Consumed.Load())

	for rank := 0; rank < 2; rank++ {
		require.NoError(t, suppliers[rank].Close())
	}
	tp.close()
	for rank := 0; rank < 2; rank++ {
		suppliers[rank].Wait()
	}
	_, err = suppliers[0].Bmts(alloc[0].Next(), 1, 1)
	if cfg.BmtMethod == env.Background || cfg.BmtMethod == env.Pipeline {
		require.Error(t, err)
	}
}

func TestSupplierJIT(t *testing.T) {
	cfg := env.NewConfig()
	cfg.BmtMethod = env.JIT
	testSupplier(t, newTestPeers(t), cfg)
}

func TestSupplierJITUnpacked(t *testing.T) {
	cfg := env.NewConfig()
	cfg.BmtMethod = env.JIT
	tp := newTestPeers(t)
	tp.gens[0].SIMD = false
	tp.gens[1].SIMD = false
	testSupplier(t, tp, cfg)
}

func TestSupplierBackground(t *testing.T) {
	for _, qt := range []env.QueueType{env.QueueCond, env.QueueChan,
		env.QueueSPSC} {
		t.Run(qt.String(), func(t *testing.T) {
			cfg := env.NewConfig()
			cfg.BmtMethod = env.Background
			cfg.BmtQueueType = qt
			cfg.BmtQueueNum = 3
			cfg.BmtBatchSize = 64
			testSupplier(t, newTestPeers(t), cfg)
		})
	}
}

func TestSupplierPipeline(t *testing.T) {
	cfg := env.NewConfig()
	cfg.BmtMethod = env.Pipeline
	cfg.BmtBatchSize = 100
	testSupplier(t, newTestPeers(t), cfg)
}

func TestSupplierFixed(t *testing.T) {
	cfg := env.NewConfig()
	cfg.BmtMethod = env.Fixed
	testSupplier(t, newTestPeers(t), cfg)
}

func TestSupplierUsageLimit(t *testing.T) {
	cfg := env.NewConfig()
	cfg.BmtMethod = env.JIT
	cfg.BmtUsageLimit = 3
	testSupplier(t, newTestPeers(t), cfg)
}
