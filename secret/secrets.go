//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package secret

import (
	"github.com/markkurossi/mpcdb/op"
	"github.com/markkurossi/mpcdb/party"
	"github.com/markkurossi/mpcdb/task"
)

// Secrets implements vector operations over secret values for one
// party.
type Secrets struct {
	p *party.Party
}

// New creates the Secrets façade for the party.
func New(p *party.Party) *Secrets {
	return &Secrets{
		p: p,
	}
}

// Party returns the party of the façade.
func (s *Secrets) Party() *party.Party {
	return s.p
}

// BoolShare shares the owner's values as boolean secrets of width
// bits. All ranks must call BoolShare with the same task. The
// compute parties return their shares and other ranks return nil.
func (s *Secrets) BoolShare(values []uint64, owner, width int,
	t task.Task) ([]BoolSecret, error) {

	shares, err := op.New(s.p, t, width).BoolShare(values, owner)
	if err != nil || shares == nil {
		return nil, err
	}
	result := make([]BoolSecret, len(shares))
	for i, share := range shares {
		result[i] = BoolSecret{
			Value: share,
			Width: width,
		}
	}
	return result, nil
}

// BoolReconstruct opens the boolean secrets to the owner. All ranks
// must call BoolReconstruct with the same task. The owner returns
// the values and other ranks return nil.
func (s *Secrets) BoolReconstruct(secrets []BoolSecret, owner, width int,
	t task.Task) ([]uint64, error) {

	shares := make([]uint64, len(secrets))
	for i, secret := range secrets {
		shares[i] = secret.Value
	}
	return op.New(s.p, t, width).BoolReconstruct(shares, owner)
}

// ArithShare shares the owner's values as arithmetic secrets of
// width bits.
func (s *Secrets) ArithShare(values []uint64, owner, width int,
	t task.Task) ([]ArithSecret, error) {

	shares, err := op.New(s.p, t, width).ArithShare(values, owner)
	if err != nil || shares == nil {
		return nil, err
	}
	result := make([]ArithSecret, len(shares))
	for i, share := range shares {
		result[i] = ArithSecret{
			Value: share,
			Width: width,
		}
	}
	return result, nil
}

// ArithReconstruct opens the arithmetic secrets to the owner.
func (s *Secrets) ArithReconstruct(secrets []ArithSecret, owner, width int,
	t task.Task) ([]uint64, error) {

	shares := make([]uint64, len(secrets))
	for i, secret := range secrets {
		shares[i] = secret.Value
	}
	return op.New(s.p, t, width).ArithReconstruct(shares, owner)
}
