//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package bmt

import (
	"github.com/go-logr/logr"
	"github.com/markkurossi/mpcdb/task"
)

// UsageLimit serves every triple of the underlying supplier up to
// limit times.
type UsageLimit struct {
	Supplier
	limit int
}

// WithUsageLimit wraps the supplier so that every triple is reused
// up to limit times. Reusing a triple for two multiplications
// reveals the difference of the masked operands to the peer.
func WithUsageLimit(s Supplier, limit int, log logr.Logger) Supplier {
	if limit <= 1 {
		return s
	}
	log.WithName("bmt").Info("WARNING: Beaver triples are reused",
		"limit", limit)
	return &UsageLimit{
		Supplier: s,
		limit:    limit,
	}
}

func (u *UsageLimit) fetch(count int) int {
	return (count + u.limit - 1) / u.limit
}

// Bmts implements Supplier.Bmts.
func (u *UsageLimit) Bmts(t task.Task, count, width int) ([]Bmt, error) {
	bmts, err := u.Supplier.Bmts(t, u.fetch(count), width)
	if err != nil {
		return nil, err
	}
	result := make([]Bmt, count)
	for i := range result {
		result[i] = bmts[i/u.limit]
	}
	return result, nil
}

// BitwiseBmts implements Supplier.BitwiseBmts.
func (u *UsageLimit) BitwiseBmts(t task.Task, count, width int) (
	[]BitwiseBmt, error) {

	bmts, err := u.Supplier.BitwiseBmts(t, u.fetch(count), width)
	if err != nil {
		return nil, err
	}
	result := make([]BitwiseBmt, count)
	for i := range result {
		result[i] = bmts[i/u.limit]
	}
	return result, nil
}
