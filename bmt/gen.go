//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package bmt

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/markkurossi/mpcdb/ot"
	"github.com/markkurossi/mpcdb/p2p"
	"github.com/markkurossi/mpcdb/task"
)

// Generator generates Beaver triples between the two compute
// parties with the IKNP extension streams of the base OT
// correlation.
type Generator struct {
	// SIMD enables bit-packing of bitwise triples.
	SIMD bool

	rank      int
	peer      int
	transport p2p.Transport
	corr      *ot.Correlation
	rand      io.Reader
	log       logr.Logger
}

// NewGenerator creates a triple generator for the compute party rank
// (0 or 1).
func NewGenerator(rank int, t p2p.Transport, corr *ot.Correlation,
	rand io.Reader, log logr.Logger) *Generator {

	if rank != 0 && rank != 1 {
		panic(fmt.Sprintf("triple generator for non-server rank %d", rank))
	}
	return &Generator{
		SIMD:      true,
		rank:      rank,
		peer:      1 - rank,
		transport: t,
		corr:      corr,
		rand:      rand,
		log:       log,
	}
}

// Rank returns the generator party rank.
func (g *Generator) Rank() int {
	return g.rank
}

// Lane is a sequential triple generation context. It owns one OT
// stream in each direction and allocates its messages from the
// task starting at the message offset base. Both parties must create
// their lanes with the same stream ID, task, and base. Batches must
// be started and finished in the same order on both parties.
type Lane struct {
	gen      *Generator
	task     task.Task
	msg      uint32
	sender   *ot.RandOTSender
	receiver *ot.RandOTReceiver
	prg      *PRG
}

// NewLane creates a new generation lane.
func (g *Generator) NewLane(id uint64, t task.Task, base uint32) (
	*Lane, error) {

	sender, err := g.corr.SenderStream(id)
	if err != nil {
		return nil, err
	}
	receiver, err := g.corr.ReceiverStream(id)
	if err != nil {
		return nil, err
	}
	prg, err := NewPRG(g.rand)
	if err != nil {
		return nil, err
	}
	return &Lane{
		gen:      g,
		task:     t,
		msg:      base,
		sender:   sender,
		receiver: receiver,
		prg:      prg,
	}, nil
}

func (l *Lane) nextIO() *p2p.TagIO {
	tag := l.task.Tag(l.msg)
	l.msg++
	return p2p.NewTagIO(l.gen.transport, l.gen.peer, tag)
}

// arithBatch holds an arithmetic batch between its OT rounds.
type arithBatch struct {
	io      *p2p.TagIO
	count   int
	width   int
	a, b    []uint64
	r       []uint64
	pending *ot.Pending
}

// startBmts samples the local shares and sends the OT extension
// columns of count triples of width bits. For the cross term
// a_peer·b, every bit j of b selects the peer's message r_j or
// r_j+a_peer·2^j.
func (l *Lane) startBmts(count, width int) (*arithBatch, error) {
	mask := Mask(width)
	n := count * width

	batch := &arithBatch{
		io:    l.nextIO(),
		count: count,
		width: width,
		a:     l.prg.Words(count, mask),
		b:     l.prg.Words(count, mask),
		r:     l.prg.Words(n, mask),
	}
	choices := make([]uint64, (n+63)/64)
	for i, b := range batch.b {
		for j := 0; j < width; j++ {
			idx := i*width + j
			choices[idx/64] |= (b >> j & 1) << (idx % 64)
		}
	}
	var err error
	batch.pending, err = l.receiver.Prepare(batch.io, choices, n)
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// finishBmts sends our OT messages and combines the received cross
// terms into triples.
func (l *Lane) finishBmts(batch *arithBatch) ([]Bmt, error) {
	width := batch.width
	mask := Mask(width)
	n := batch.count * width

	m0 := batch.r
	m1 := make([]uint64, n)
	for i, a := range batch.a {
		for j := 0; j < width; j++ {
			idx := i*width + j
			m1[idx] = (m0[idx] + a<<j) & mask
		}
	}
	if err := l.sender.SendWords(batch.io, m0, m1); err != nil {
		return nil, err
	}
	recv, err := batch.pending.Words(batch.io)
	if err != nil {
		return nil, err
	}

	result := make([]Bmt, batch.count)
	for i := range result {
		a := batch.a[i]
		b := batch.b[i]
		c := a * b
		for j := 0; j < width; j++ {
			idx := i*width + j
			c += recv[idx] - batch.r[idx]
		}
		result[i] = Bmt{
			A: a,
			B: b,
			C: c & mask,
		}
	}
	return result, nil
}

// Bmts generates count arithmetic triples of width bits.
func (l *Lane) Bmts(count, width int) ([]Bmt, error) {
	batch, err := l.startBmts(count, width)
	if err != nil {
		return nil, err
	}
	return l.finishBmts(batch)
}

// bitwiseBatch holds a bit-packed batch between its OT rounds.
type bitwiseBatch struct {
	io      *p2p.TagIO
	words   int
	a, b    []uint64
	r       []uint64
	pending *ot.Pending
}

// startBitwise samples the local shares and sends the OT extension
// columns of words bit-packed triple words. Every bit of b selects
// the peer's message bit r or r⊕a_peer.
func (l *Lane) startBitwise(words int) (*bitwiseBatch, error) {
	const mask = 0xffffffffffffffff

	batch := &bitwiseBatch{
		io:    l.nextIO(),
		words: words,
		a:     l.prg.Words(words, mask),
		b:     l.prg.Words(words, mask),
		r:     l.prg.Words(words, mask),
	}
	var err error
	batch.pending, err = l.receiver.Prepare(batch.io, batch.b, words*64)
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (l *Lane) finishBitwise(batch *bitwiseBatch) ([]BitwiseBmt, error) {
	m1 := make([]uint64, batch.words)
	for i := range m1 {
		m1[i] = batch.r[i] ^ batch.a[i]
	}
	err := l.sender.SendBits(batch.io, batch.r, m1, batch.words*64)
	if err != nil {
		return nil, err
	}
	recv, err := batch.pending.Bits(batch.io)
	if err != nil {
		return nil, err
	}
	result := make([]BitwiseBmt, batch.words)
	for i := range result {
		a := batch.a[i]
		b := batch.b[i]
		result[i] = BitwiseBmt{
			A: a,
			B: b,
			C: a&b ^ recv[i] ^ batch.r[i],
		}
	}
	return result, nil
}

// BitwiseWords generates words bit-packed triple words.
func (l *Lane) BitwiseWords(words int) ([]BitwiseBmt, error) {
	batch, err := l.startBitwise(words)
	if err != nil {
		return nil, err
	}
	return l.finishBitwise(batch)
}
