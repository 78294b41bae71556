//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package party implements the runtime context of one rank of the
// MPC deployment. Ranks 0 and 1 are the compute parties (servers)
// that hold the secret shares and the configured client rank
// provides inputs and receives the reconstructed outputs.
package party

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/markkurossi/mpcdb/bmt"
	"github.com/markkurossi/mpcdb/env"
	"github.com/markkurossi/mpcdb/ot"
	"github.com/markkurossi/mpcdb/p2p"
	"github.com/markkurossi/mpcdb/task"
	"github.com/markkurossi/text/superscript"
)

// Party holds the per-rank state shared by all secure operations:
// the transport, the task allocator, the triple supplier, and the
// worker pool.
type Party struct {
	cfg       *env.Config
	rank      int
	transport p2p.Transport
	alloc     *task.Allocator
	server    *task.Allocator
	supplier  bmt.Supplier
	pool      *Pool
	log       logr.Logger
	cancel    context.CancelFunc
	setup     time.Duration
	started   time.Time
}

// New creates the party for the transport's rank. For the compute
// parties, New runs the base OT setup with the peer server and
// starts the triple supplier. The servers must call New
// concurrently.
func New(cfg *env.Config, t p2p.Transport) (*Party, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if t.Size() < 2 {
		return nil, fmt.Errorf("party: group too small: %d", t.Size())
	}
	if cfg.ClientRank < 2 || cfg.ClientRank >= t.Size() {
		return nil, fmt.Errorf("party: invalid client rank %d for %d ranks",
			cfg.ClientRank, t.Size())
	}

	allocs := task.NewAllocators(cfg.TaskTagBits, 2)
	p := &Party{
		cfg:       cfg,
		rank:      t.Rank(),
		transport: t,
		alloc:     allocs[0],
		server:    allocs[1],
		pool:      NewPool(cfg),
		started:   time.Now(),
	}
	p.log = cfg.GetLogger().WithName("party").WithValues("rank", p.rank)

	if !p.IsServer() {
		p.log.V(1).Info("client ready")
		return p, nil
	}

	rand := cfg.GetRandom()
	io := p2p.NewTagIO(t, p.Peer(), task.ReservedTask(0).Tag(0))
	corr, err := ot.Setup(io, p.rank == 0, func() ot.OT {
		return ot.NewRSA(rand, cfg.RSAKeyBits)
	}, rand)
	if err != nil {
		return nil, fmt.Errorf("party: base OT setup: %w", err)
	}
	p.setup = time.Since(p.started)
	p.log.V(1).Info("base OT ready", "keyBits", cfg.RSAKeyBits,
		"elapsed", p.setup)

	gen := bmt.NewGenerator(p.rank, t, corr, rand,
		cfg.GetLogger().WithName("bmt").WithValues("rank", p.rank))
	gen.SIMD = cfg.EnableSIMD

	ctx, cancel := context.WithCancel(context.Background())
	p.supplier, err = bmt.New(ctx, cfg, gen)
	if err != nil {
		cancel()
		return nil, err
	}
	p.cancel = cancel
	p.log.Info("server ready", "bmt", cfg.BmtMethod)

	return p, nil
}

func (p *Party) String() string {
	return "P" + superscript.Itoa(p.rank)
}

// Config returns the party configuration.
func (p *Party) Config() *env.Config {
	return p.cfg
}

// Logger returns the party logger.
func (p *Party) Logger() logr.Logger {
	return p.log
}

// Rank returns the party rank.
func (p *Party) Rank() int {
	return p.rank
}

// ClientRank returns the rank of the configured client.
func (p *Party) ClientRank() int {
	return p.cfg.ClientRank
}

// IsServer tests if the party is a compute party.
func (p *Party) IsServer() bool {
	return p.rank == 0 || p.rank == 1
}

// IsClient tests if the party is the configured client.
func (p *Party) IsClient() bool {
	return p.rank == p.cfg.ClientRank
}

// Peer returns the rank of the other compute party. The function
// panics if the party is not a compute party.
func (p *Party) Peer() int {
	if !p.IsServer() {
		panic(fmt.Sprintf("%v: peer of non-server rank", p))
	}
	return 1 - p.rank
}

// Transport returns the party transport.
func (p *Party) Transport() p2p.Transport {
	return p.transport
}

// ServerSend sends data to the other compute party.
func (p *Party) ServerSend(tag task.Tag, data []byte) error {
	return p.transport.Send(p.Peer(), tag, data)
}

// ServerReceive receives data from the other compute party.
func (p *Party) ServerReceive(tag task.Tag) ([]byte, error) {
	return p.transport.Receive(p.Peer(), tag)
}

// NextTask allocates a fresh task for one logical secure
// operation. All ranks taking part in the operation must allocate
// their tasks in the same order.
func (p *Party) NextTask() task.Task {
	return p.alloc.Next()
}

// NextServerTask allocates a fresh task for a sub-computation that
// involves only the compute parties. The server tasks are disjoint
// from the tasks of NextTask so that the client's task sequence
// stays in step with the servers.
func (p *Party) NextServerTask() task.Task {
	if !p.IsServer() {
		panic(fmt.Sprintf("%v: server task on non-server rank", p))
	}
	return p.server.Next()
}

// Pool returns the party worker pool.
func (p *Party) Pool() *Pool {
	return p.pool
}

// Supplier returns the triple supplier. The function panics if the
// party is not a compute party.
func (p *Party) Supplier() bmt.Supplier {
	if p.supplier == nil {
		panic(fmt.Sprintf("%v: no triple supplier", p))
	}
	return p.supplier
}

// Close stops the triple supplier and closes the transport.
func (p *Party) Close() error {
	var errs []error
	if p.supplier != nil {
		p.cancel()
		errs = append(errs, p.supplier.Close())
	}
	errs = append(errs, p.transport.Close())
	if p.supplier != nil {
		errs = append(errs, p.supplier.Wait())
	}
	p.log.V(1).Info("closed", "tasks", p.alloc.Issued(),
		"serverTasks", p.server.Issued())
	return errors.Join(errs...)
}
