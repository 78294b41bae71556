//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package party

import (
	"context"
	"fmt"

	"github.com/markkurossi/mpcdb/env"
	"github.com/markkurossi/mpcdb/p2p"
	"golang.org/x/sync/errgroup"
)

// NumRanks defines the size of the deployment: two compute parties
// and one client.
const NumRanks = 3

// NewLocal creates an in-process deployment of NumRanks parties
// connected with in-memory pipes.
func NewLocal(cfg *env.Config) ([]*Party, error) {
	nodes := p2p.LocalMesh(NumRanks, cfg.GetLogger().WithName("p2p"))
	transports := make([]p2p.Transport, len(nodes))
	for i, n := range nodes {
		transports[i] = n
	}
	return newGroup(cfg, transports)
}

// Connect creates the party for the rank over a TCP mesh of the
// argument addresses.
func Connect(ctx context.Context, cfg *env.Config, rank int,
	addrs []string) (*Party, error) {

	if len(addrs) != NumRanks {
		return nil, fmt.Errorf("party: expected %d addresses, got %d",
			NumRanks, len(addrs))
	}
	node, err := p2p.Dial(ctx, rank, addrs, cfg.GetLogger().WithName("p2p"))
	if err != nil {
		return nil, err
	}
	p, err := New(cfg, node)
	if err != nil {
		node.Close()
		return nil, err
	}
	return p, nil
}

func newGroup(cfg *env.Config, transports []p2p.Transport) ([]*Party, error) {
	parties := make([]*Party, len(transports))

	var g errgroup.Group
	for i, t := range transports {
		g.Go(func() error {
			p, err := New(cfg, t)
			if err != nil {
				t.Close()
				return fmt.Errorf("rank %d: %w", i, err)
			}
			parties[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for i, p := range parties {
			if p != nil {
				p.Close()
			} else {
				transports[i].Close()
			}
		}
		return nil, err
	}
	return parties, nil
}

// CloseAll closes all parties and returns the first error.
func CloseAll(parties []*Party) error {
	var result error
	for _, p := range parties {
		if p == nil {
			continue
		}
		if err := p.Close(); err != nil && result == nil {
			result = err
		}
	}
	return result
}
