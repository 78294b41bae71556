//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package party

import (
	"github.com/markkurossi/mpcdb/env"
	"golang.org/x/sync/errgroup"
)

// Pool runs independent secure sub-computations in parallel.
type Pool struct {
	threads  int
	parallel bool
}

// NewPool creates a worker pool for the configuration.
func NewPool(cfg *env.Config) *Pool {
	return &Pool{
		threads:  cfg.GetThreads(),
		parallel: cfg.EnableIntraOperatorParallelism,
	}
}

// Threads returns the number of concurrent workers.
func (pool *Pool) Threads() int {
	if !pool.parallel {
		return 1
	}
	return pool.threads
}

// Run calls f for indices 0...n-1 and returns the first error. The
// jobs are started in index order. When the jobs communicate with
// the peer party, both parties must run the same jobs in the same
// order; starting jobs in index order ensures that the lowest
// unfinished job runs on both parties.
func (pool *Pool) Run(n int, f func(i int) error) error {
	threads := pool.Threads()
	if threads == 1 || n <= 1 {
		for i := 0; i < n; i++ {
			if err := f(i); err != nil {
				return err
			}
		}
		return nil
	}
	var g errgroup.Group
	g.SetLimit(threads)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			return f(i)
		})
	}
	return g.Wait()
}
