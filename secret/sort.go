//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package secret

import (
	"fmt"

	"github.com/markkurossi/mpcdb/op"
	"github.com/markkurossi/mpcdb/task"
)

// pair is one compare-exchange of the sorting network. After the
// exchange, lo holds the smaller and hi the larger element.
type pair struct {
	lo, hi int
}

// round is one layer of the sorting network. The padding positions
// are public so the exchanges that involve padding elements are
// resolved in the schedule: swaps are plain swaps and pairs are the
// secure compare-exchanges of real elements.
type round struct {
	swaps []pair
	pairs []pair
}

func (r round) swap(arr []BoolSecret) {
	for _, pr := range r.swaps {
		arr[pr.lo], arr[pr.hi] = arr[pr.hi], arr[pr.lo]
	}
}

// schedule returns the rounds of the bitonic network of size elements
// whose first n elements are real and the rest padding.
func schedule(n, size int, ascending bool) []round {
	pad := make([]bool, size)
	for i := n; i < size; i++ {
		pad[i] = true
	}
	var rounds []round
	for k := 2; k <= size; k <<= 1 {
		for j := k >> 1; j > 0; j >>= 1 {
			var r round
			for i := 0; i < size; i++ {
				l := i ^ j
				if l <= i {
					continue
				}
				pr := pair{lo: i, hi: l}
				if (i&k == 0) != ascending {
					pr.lo, pr.hi = l, i
				}
				switch {
				case pad[pr.lo] && pad[pr.hi]:
				case pad[pr.lo]:
					pad[pr.lo], pad[pr.hi] = false, true
					r.swaps = append(r.swaps, pr)
				case pad[pr.hi]:
				default:
					r.pairs = append(r.pairs, pr)
				}
			}
			rounds = append(rounds, r)
		}
	}
	return rounds
}

// sortCount returns the triple count of the secure compare-exchanges
// of the rounds.
func sortCount(rounds []round, width int) op.Count {
	var c op.Count
	for _, r := range rounds {
		n := len(r.pairs)
		c = c.Add(op.LessCount(n, width).Add(op.MuxCount(n, width)))
	}
	return c
}

// padded validates the secrets and returns them padded to the next
// power of two.
func padded(secrets []BoolSecret) ([]BoolSecret, int) {
	width := secrets[0].Width
	for _, e := range secrets {
		if e.Width != width {
			panic(fmt.Sprintf("sort: mixed widths %d and %d", width, e.Width))
		}
		if e.Padding {
			panic("sort: padding element in input")
		}
	}
	size := 1
	for size < len(secrets) {
		size <<= 1
	}
	arr := make([]BoolSecret, size)
	copy(arr, secrets)
	for i := len(secrets); i < size; i++ {
		arr[i] = BoolSecret{
			Width:   width,
			Padding: true,
		}
	}
	return arr, width
}

func trim(arr, secrets []BoolSecret) {
	var pos int
	for _, e := range arr {
		if !e.Padding {
			secrets[pos] = e
			pos++
		}
	}
}

// SortBool sorts the boolean secrets in place with a bitonic sorting
// network. The compute parties must call SortBool with the same
// arguments. The rounds of the network run in sequence and the
// compare-exchanges of one round run as sub-batches of
// Config.BatchSize pairs in the party's worker pool.
func (s *Secrets) SortBool(secrets []BoolSecret, ascending bool) error {
	n := len(secrets)
	if n <= 1 {
		return nil
	}
	arr, width := padded(secrets)
	for _, r := range schedule(n, len(arr), ascending) {
		r.swap(arr)
		if err := s.sortRound(arr, width, r.pairs); err != nil {
			return err
		}
	}
	trim(arr, secrets)
	return nil
}

// SortBoolTask sorts the boolean secrets in place like SortBool but
// runs all messages of the sort under the task t. The rounds run
// sequentially on one operator instance.
func (s *Secrets) SortBoolTask(secrets []BoolSecret, ascending bool,
	t task.Task) error {

	n := len(secrets)
	if n <= 1 {
		return nil
	}
	arr, width := padded(secrets)
	rounds := schedule(n, len(arr), ascending)

	o := op.New(s.p, t, width)
	if err := o.Prefetch(sortCount(rounds, width)); err != nil {
		return err
	}
	if err := sortOn(o, arr, rounds); err != nil {
		return err
	}
	trim(arr, secrets)
	return nil
}

func sortOn(o *op.Op, arr []BoolSecret, rounds []round) error {
	for _, r := range rounds {
		r.swap(arr)
		if len(r.pairs) == 0 {
			continue
		}
		if err := compareExchange(o, arr, r.pairs); err != nil {
			return err
		}
	}
	return nil
}

func (s *Secrets) sortRound(arr []BoolSecret, width int, pairs []pair) error {
	if len(pairs) == 0 {
		return nil
	}
	// Allocate the tasks and fetch the triples in sequence so that
	// both parties consume the triple supply in the same order.
	batchSize := s.p.Config().BatchSize
	var chunks [][]pair
	var ops []*op.Op
	for start := 0; start < len(pairs); start += batchSize {
		chunk := pairs[start:min(start+batchSize, len(pairs))]
		o := op.New(s.p, s.p.NextServerTask(), width)
		err := o.Prefetch(op.LessCount(len(chunk), width).
			Add(op.MuxCount(len(chunk), width)))
		if err != nil {
			return err
		}
		chunks = append(chunks, chunk)
		ops = append(ops, o)
	}

	return s.p.Pool().Run(len(chunks), func(c int) error {
		return compareExchange(ops[c], arr, chunks[c])
	})
}

func compareExchange(o *op.Op, arr []BoolSecret, pairs []pair) error {
	lo := make([]uint64, len(pairs))
	hi := make([]uint64, len(pairs))
	for i, pr := range pairs {
		lo[i] = arr[pr.lo].Value
		hi[i] = arr[pr.hi].Value
	}
	swap, err := o.BoolLessBatch(hi, lo)
	if err != nil {
		return err
	}
	mins, maxs, err := o.BoolMuxBatchBidirectional(hi, lo, swap)
	if err != nil {
		return err
	}
	for i, pr := range pairs {
		arr[pr.lo].Value = mins[i]
		arr[pr.hi].Value = maxs[i]
	}
	return nil
}

func arithShares(secrets []ArithSecret) ([]uint64, int) {
	width := secrets[0].Width
	shares := make([]uint64, len(secrets))
	for i, e := range secrets {
		if e.Width != width {
			panic(fmt.Sprintf("sort: mixed widths %d and %d", width, e.Width))
		}
		shares[i] = e.Value
	}
	return shares, width
}

func boolSecrets(shares []uint64, width int) []BoolSecret {
	result := make([]BoolSecret, len(shares))
	for i, share := range shares {
		result[i] = BoolSecret{
			Value: share,
			Width: width,
		}
	}
	return result
}

func setArith(secrets []ArithSecret, shares []uint64, width int) {
	for i, share := range shares {
		secrets[i] = ArithSecret{
			Value: share,
			Width: width,
		}
	}
}

// SortArith sorts the arithmetic secrets in place. The secrets are
// converted to boolean shares, sorted, and converted back.
func (s *Secrets) SortArith(secrets []ArithSecret, ascending bool) error {
	if len(secrets) <= 1 {
		return nil
	}
	shares, width := arithShares(secrets)
	b, err := op.New(s.p, s.p.NextServerTask(), width).ArithToBoolBatch(shares)
	if err != nil {
		return err
	}
	bools := boolSecrets(b, width)
	if err := s.SortBool(bools, ascending); err != nil {
		return err
	}
	for i, e := range bools {
		shares[i] = e.Value
	}
	a, err := op.New(s.p, s.p.NextServerTask(), width).BoolToArithBatch(shares)
	if err != nil {
		return err
	}
	setArith(secrets, a, width)
	return nil
}

// SortArithTask sorts the arithmetic secrets in place like SortArith
// but runs the conversions and the sort under the task t.
func (s *Secrets) SortArithTask(secrets []ArithSecret, ascending bool,
	t task.Task) error {

	n := len(secrets)
	if n <= 1 {
		return nil
	}
	shares, width := arithShares(secrets)
	size := 1
	for size < n {
		size <<= 1
	}
	rounds := schedule(n, size, ascending)

	o := op.New(s.p, t, width)
	err := o.Prefetch(op.ArithToBoolCount(n, width).
		Add(sortCount(rounds, width)).
		Add(op.BoolToArithCount(n, width)))
	if err != nil {
		return err
	}
	b, err := o.ArithToBoolBatch(shares)
	if err != nil {
		return err
	}
	arr, _ := padded(boolSecrets(b, width))
	if err := sortOn(o, arr, rounds); err != nil {
		return err
	}
	var pos int
	for _, e := range arr {
		if !e.Padding {
			shares[pos] = e.Value
			pos++
		}
	}
	a, err := o.BoolToArithBatch(shares)
	if err != nil {
		return err
	}
	setArith(secrets, a, width)
	return nil
}
