//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/markkurossi/mpcdb/task"
)

var (
	_ Transport = &Node{}
)

// Node implements the Transport interface over one Conn per peer
// rank. Each connection has a reader goroutine that demultiplexes the
// incoming frames into per sender and tag mailboxes.
type Node struct {
	rank  int
	log   logr.Logger
	peers []*peer

	m      sync.Mutex
	boxes  map[boxKey]*mailbox
	err    error
	closed bool
	wg     sync.WaitGroup
}

type peer struct {
	m    sync.Mutex
	conn *Conn
}

type boxKey struct {
	from int
	tag  task.Tag
}

type mailbox struct {
	cond    *sync.Cond
	msgs    [][]byte
	waiters int
}

// NewNode creates a new transport node for the rank. The conns array
// holds the connection to each peer rank; the element at index rank
// must be nil.
func NewNode(rank int, conns []*Conn, log logr.Logger) *Node {
	if rank < 0 || rank >= len(conns) || conns[rank] != nil {
		panic(fmt.Sprintf("invalid rank %d for %d connections",
			rank, len(conns)))
	}
	n := &Node{
		rank:  rank,
		log:   log.WithName("p2p").WithValues("rank", rank),
		peers: make([]*peer, len(conns)),
		boxes: make(map[boxKey]*mailbox),
	}
	for i, conn := range conns {
		if conn == nil {
			continue
		}
		n.peers[i] = &peer{
			conn: conn,
		}
		n.wg.Add(1)
		go n.reader(i, conn)
	}
	return n
}

// Rank implements Transport.Rank.
func (n *Node) Rank() int {
	return n.rank
}

// Size implements Transport.Size.
func (n *Node) Size() int {
	return len(n.peers)
}

func (n *Node) reader(from int, conn *Conn) {
	defer n.wg.Done()
	for {
		t, err := conn.ReceiveUint64()
		if err != nil {
			n.fail(from, err)
			return
		}
		msg, err := conn.ReceiveUint32()
		if err != nil {
			n.fail(from, err)
			return
		}
		data, err := conn.ReceiveData()
		if err != nil {
			n.fail(from, err)
			return
		}
		tag := task.Tag{
			Task: t,
			Msg:  uint32(msg),
		}
		n.log.V(2).Info("recv", "from", from, "tag", tag, "bytes", len(data))

		n.m.Lock()
		box := n.mailbox(from, tag)
		box.msgs = append(box.msgs, data)
		box.cond.Signal()
		n.m.Unlock()
	}
}

// mailbox returns the mailbox for the sender and tag. The node mutex
// must be held.
func (n *Node) mailbox(from int, tag task.Tag) *mailbox {
	key := boxKey{
		from: from,
		tag:  tag,
	}
	box, ok := n.boxes[key]
	if !ok {
		box = &mailbox{
			cond: sync.NewCond(&n.m),
		}
		n.boxes[key] = box
	}
	return box
}

func (n *Node) fail(from int, err error) {
	n.m.Lock()
	defer n.m.Unlock()

	if n.err != nil {
		return
	}
	if n.closed {
		n.err = ErrClosed
	} else {
		n.err = fmt.Errorf("p2p: peer %d: %w", from, err)
		n.log.Error(err, "connection failed", "peer", from)
	}
	for _, box := range n.boxes {
		box.cond.Broadcast()
	}
}

func (n *Node) getPeer(rank int) *peer {
	if rank < 0 || rank >= len(n.peers) || n.peers[rank] == nil {
		panic(fmt.Sprintf("rank %d: invalid peer %d", n.rank, rank))
	}
	return n.peers[rank]
}

// Send implements Transport.Send.
func (n *Node) Send(to int, tag task.Tag, data []byte) error {
	p := n.getPeer(to)

	p.m.Lock()
	defer p.m.Unlock()

	n.m.Lock()
	err := n.err
	n.m.Unlock()
	if err != nil {
		return err
	}

	if err := p.conn.SendUint64(tag.Task); err != nil {
		return n.sendError(to, err)
	}
	if err := p.conn.SendUint32(int(tag.Msg)); err != nil {
		return n.sendError(to, err)
	}
	if err := p.conn.SendData(data); err != nil {
		return n.sendError(to, err)
	}
	if err := p.conn.Flush(); err != nil {
		return n.sendError(to, err)
	}
	n.log.V(2).Info("send", "to", to, "tag", tag, "bytes", len(data))
	return nil
}

func (n *Node) sendError(to int, err error) error {
	n.fail(to, err)
	n.m.Lock()
	defer n.m.Unlock()
	return n.err
}

// Receive implements Transport.Receive.
func (n *Node) Receive(from int, tag task.Tag) ([]byte, error) {
	n.getPeer(from)

	n.m.Lock()
	defer n.m.Unlock()

	box := n.mailbox(from, tag)
	box.waiters++
	for len(box.msgs) == 0 && n.err == nil {
		box.cond.Wait()
	}
	box.waiters--

	var data []byte
	ok := len(box.msgs) > 0
	if ok {
		data = box.msgs[0]
		box.msgs[0] = nil
		box.msgs = box.msgs[1:]
	}
	if len(box.msgs) == 0 && box.waiters == 0 {
		delete(n.boxes, boxKey{
			from: from,
			tag:  tag,
		})
	}
	if !ok {
		return nil, n.err
	}
	return data, nil
}

// SendAsync implements Transport.SendAsync.
func (n *Node) SendAsync(to int, tag task.Tag, data []byte) *Request {
	return newRequest(func() ([]byte, error) {
		return nil, n.Send(to, tag, data)
	})
}

// ReceiveAsync implements Transport.ReceiveAsync.
func (n *Node) ReceiveAsync(from int, tag task.Tag) *Request {
	return newRequest(func() ([]byte, error) {
		return n.Receive(from, tag)
	})
}

// Stats implements Transport.Stats.
func (n *Node) Stats() IOStats {
	result := NewIOStats()
	for _, p := range n.peers {
		if p != nil {
			result = result.Add(p.conn.Stats)
		}
	}
	return result
}

// Pending returns the number of undelivered messages.
func (n *Node) Pending() int {
	n.m.Lock()
	defer n.m.Unlock()

	var count int
	for _, box := range n.boxes {
		count += len(box.msgs)
	}
	return count
}

// Close implements Transport.Close.
func (n *Node) Close() error {
	n.m.Lock()
	if n.closed {
		n.m.Unlock()
		return nil
	}
	n.closed = true
	if n.err == nil {
		n.err = ErrClosed
	}
	for _, box := range n.boxes {
		box.cond.Broadcast()
	}
	n.m.Unlock()

	var result error
	for _, p := range n.peers {
		if p == nil {
			continue
		}
		p.m.Lock()
		err := p.conn.Close()
		p.m.Unlock()
		if err != nil && result == nil {
			result = err
		}
	}
	n.wg.Wait()

	return result
}
