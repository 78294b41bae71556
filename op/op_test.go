//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package op

import (
	"crypto/rand"
	"testing"

	"github.com/markkurossi/mpcdb/bmt"
	"github.com/markkurossi/mpcdb/env"
	"github.com/markkurossi/mpcdb/party"
	"github.com/markkurossi/mpcdb/task"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const client = 2

var testWidths = []int{1, 2, 3, 7, 8, 13, 32, 63, 64}

func testConfig(method env.BmtMethod) *env.Config {
	cfg := env.NewConfig()
	cfg.RSAKeyBits = 1024
	cfg.BmtMethod = method
	cfg.BmtBatchSize = 64
	cfg.BmtQueueNum = 1
	return cfg
}

func newGroup(t *testing.T, cfg *env.Config) []*party.Party {
	parties, err := party.NewLocal(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		party.CloseAll(parties)
	})
	return parties
}

// run runs f on all ranks concurrently.
func run(t *testing.T, parties []*party.Party, f func(p *party.Party) error) {
	var g errgroup.Group
	for _, p := range parties {
		g.Go(func() error {
			return f(p)
		})
	}
	require.NoError(t, g.Wait())
}

type evalFunc func(o *Op, in [][]uint64) ([]uint64, error)

// eval shares the inputs from the client, runs f on the compute
// parties, and opens the result to the client.
func eval(t *testing.T, parties []*party.Party, width int,
	arithIn, arithOut bool, inputs [][]uint64, f evalFunc) []uint64 {

	var result []uint64
	run(t, parties, func(p *party.Party) error {
		o := New(p, p.NextTask(), width)
		shares := make([][]uint64, len(inputs))
		for i, in := range inputs {
			var err error
			if arithIn {
				shares[i], err = o.ArithShare(in, client)
			} else {
				shares[i], err = o.BoolShare(in, client)
			}
			if err != nil {
				return err
			}
		}
		var out []uint64
		if p.IsServer() {
			var err error
			out, err = f(o, shares)
			if err != nil {
				return err
			}
		}
		var values []uint64
		var err error
		if arithOut {
			values, err = o.ArithReconstruct(out, client)
		} else {
			values, err = o.BoolReconstruct(out, client)
		}
		if err != nil {
			return err
		}
		if p.IsClient() {
			result = values
		}
		return nil
	})
	return result
}

func randomValues(t *testing.T, n, width int) []uint64 {
	prg, err := bmt.NewPRG(rand.Reader)
	require.NoError(t, err)
	return prg.Words(n, bmt.Mask(width))
}

// testInputs returns random operands with the corner cases first.
func testInputs(t *testing.T, n, width int) ([]uint64, []uint64) {
	mask := bmt.Mask(width)
	xs := []uint64{0, 0, mask, mask, 1, mask - 1}
	ys := []uint64{0, mask, 0, mask, mask - 1, 1}
	r := randomValues(t, 2*n, width)
	xs = append(xs, r[:n]...)
	ys = append(ys, r[n:]...)
	// Operands that share a long prefix.
	xs = append(xs, r[0], r[1]^1)
	ys = append(ys, r[0]^1, r[1])
	for i := range xs {
		xs[i] &= mask
		ys[i] &= mask
	}
	return xs, ys
}

func b2u(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

func TestNewWidth(t *testing.T) {
	require.Panics(t, func() {
		New(nil, task.Task{}, 0)
	})
	require.Panics(t, func() {
		New(nil, task.Task{}, 65)
	})
	o := New(nil, task.Task{}, 13)
	require.Equal(t, 16, o.tw)
	require.Equal(t, uint64(0x1fff), o.Mask())
}

func TestCounts(t *testing.T) {
	require.Equal(t, Count{Bitwise: 1}, LessCount(1, 1))
	require.Equal(t, Count{Bitwise: 6}, LessCount(1, 8))
	require.Equal(t, Count{Bitwise: 12 * 10}, LessCount(10, 64))
	require.Equal(t, Count{Bitwise: 3}, EqualCount(1, 8))
	require.Equal(t, Count{Bitwise: 0}, EqualCount(1, 1))
	require.Equal(t, Count{Bitwise: 0}, ArithToBoolCount(1, 1))
	require.Equal(t, Count{Bitwise: 10}, ArithToBoolCount(1, 32))
	require.Equal(t, Count{Arith: 32}, BoolToArithCount(1, 32))
	require.Equal(t, Count{Arith: 5, Bitwise: 5*6 + 2*5*6},
		ArithLessCount(5, 8))
	require.Equal(t, Count{Arith: 3, Bitwise: 3}, Count{Arith: 1, Bitwise: 1}.Mul(3))
}

func TestShareReconstruct(t *testing.T) {
	parties := newGroup(t, testConfig(env.Fixed))

	for _, width := range []int{1, 13, 64} {
		values := randomValues(t, 50, width)
		result := eval(t, parties, width, false, false, [][]uint64{values},
			func(o *Op, in [][]uint64) ([]uint64, error) {
				return in[0], nil
			})
		require.Equal(t, values, result)

		result = eval(t, parties, width, true, true, [][]uint64{values},
			func(o *Op, in [][]uint64) ([]uint64, error) {
				return in[0], nil
			})
		require.Equal(t, values, result)
	}
}

func TestServerOwner(t *testing.T) {
	parties := newGroup(t, testConfig(env.Fixed))

	values := []uint64{1, 2, 3}
	var result []uint64
	run(t, parties, func(p *party.Party) error {
		o := New(p, p.NextTask(), 8)
		shares, err := o.ArithShare(values, 0)
		if err != nil {
			return err
		}
		if p.IsClient() && shares != nil {
			t.Errorf("client got shares")
		}
		out, err := o.ArithReconstruct(shares, 1)
		if err != nil {
			return err
		}
		if p.Rank() == 1 {
			result = out
		}
		return nil
	})
	require.Equal(t, values, result)
}
