//
// rot.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"fmt"
	"io"
)

// K defines the IKNP security parameter; the number of base OTs in
// each direction.
const K = 128

// SRot holds the sender state of one base random OT: two random
// messages.
type SRot struct {
	R0 Label
	R1 Label
}

// RRot holds the receiver state of one base random OT: the choice
// bit and the chosen message.
type RRot struct {
	Choice bool
	Rb     Label
}

// Correlation holds the base random OT correlation between two
// peers. Every peer is the base OT sender for K instances and the
// base OT receiver for K instances. The correlation is established
// once and all IKNP extension streams are derived from it.
type Correlation struct {
	// Delta holds the receiver choice bits. It is the correlation of
	// the extension streams where this peer is the sender.
	Delta Label
	SRot  [K]SRot
	RRot  [K]RRot
}

// Setup establishes the base random OT correlation with the peer.
// The newBase function creates a base OT instance for each
// direction. Peers must pass opposite senderFirst values.
func Setup(io IO, senderFirst bool, newBase func() OT, r io.Reader) (
	*Correlation, error) {

	c := new(Correlation)
	var err error

	c.Delta, err = NewLabel(r)
	if err != nil {
		return nil, err
	}
	for i := 0; i < K; i++ {
		c.RRot[i].Choice = c.Delta.Bit(i) == 1

		c.SRot[i].R0, err = NewLabel(r)
		if err != nil {
			return nil, err
		}
		c.SRot[i].R1, err = NewLabel(r)
		if err != nil {
			return nil, err
		}
	}

	if senderFirst {
		if err := c.send(io, newBase()); err != nil {
			return nil, err
		}
		if err := c.receive(io, newBase()); err != nil {
			return nil, err
		}
	} else {
		if err := c.receive(io, newBase()); err != nil {
			return nil, err
		}
		if err := c.send(io, newBase()); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Correlation) send(io IO, base OT) error {
	if err := base.InitSender(io); err != nil {
		return fmt.Errorf("ot: base sender: %w", err)
	}
	var wires [K]Wire
	for i := 0; i < K; i++ {
		wires[i] = Wire{
			L0: c.SRot[i].R0,
			L1: c.SRot[i].R1,
		}
	}
	if err := base.Send(wires[:]); err != nil {
		return fmt.Errorf("ot: base send: %w", err)
	}
	return nil
}

func (c *Correlation) receive(io IO, base OT) error {
	if err := base.InitReceiver(io); err != nil {
		return fmt.Errorf("ot: base receiver: %w", err)
	}
	var flags [K]bool
	var labels [K]Label
	for i := 0; i < K; i++ {
		flags[i] = c.RRot[i].Choice
	}
	if err := base.Receive(flags[:], labels[:]); err != nil {
		return fmt.Errorf("ot: base receive: %w", err)
	}
	for i := 0; i < K; i++ {
		c.RRot[i].Rb = labels[i]
	}
	return nil
}

// SenderStream creates the IKNP extension sender stream id. The peer
// must create the matching receiver stream with the same id.
func (c *Correlation) SenderStream(id uint64) (*RandOTSender, error) {
	s := &RandOTSender{
		id:    id,
		delta: c.Delta,
	}
	for i := 0; i < K; i++ {
		var err error
		s.g[i], err = newStream(c.RRot[i].Rb, id)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ReceiverStream creates the IKNP extension receiver stream id. The
// peer must create the matching sender stream with the same id.
func (c *Correlation) ReceiverStream(id uint64) (*RandOTReceiver, error) {
	r := &RandOTReceiver{
		id: id,
	}
	for i := 0; i < K; i++ {
		var err error
		r.g0[i], err = newStream(c.SRot[i].R0, id)
		if err != nil {
			return nil, err
		}
		r.g1[i], err = newStream(c.SRot[i].R1, id)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}
