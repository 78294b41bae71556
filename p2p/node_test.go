//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/markkurossi/mpcdb/task"
)

func closeMesh(t *testing.T, nodes []*Node) {
	for _, n := range nodes {
		n.Close()
	}
}

func TestNodeRouting(t *testing.T) {
	nodes := LocalMesh(3, logr.Discard())
	defer closeMesh(t, nodes)

	t0 := task.Tag{Task: 1, Msg: 0}
	t1 := task.Tag{Task: 1, Msg: 1}
	t2 := task.Tag{Task: 2, Msg: 0}

	// Send in one order, receive in another.
	for _, tag := range []task.Tag{t0, t1, t2} {
		data := []byte(fmt.Sprintf("0->1 %v", tag))
		if err := nodes[0].Send(1, tag, data); err != nil {
			t.Fatalf("Send: %v", err)
		}
		data = []byte(fmt.Sprintf("2->1 %v", tag))
		if err := nodes[2].Send(1, tag, data); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	for _, tag := range []task.Tag{t2, t0, t1} {
		for _, from := range []int{2, 0} {
			data, err := nodes[1].Receive(from, tag)
			if err != nil {
				t.Fatalf("Receive: %v", err)
			}
			expected := fmt.Sprintf("%d->1 %v", from, tag)
			if string(data) != expected {
				t.Errorf("Receive(%d, %v): got %q, expected %q",
					from, tag, data, expected)
			}
		}
	}
	if p := nodes[1].Pending(); p != 0 {
		t.Errorf("pending messages: %v", p)
	}
}

func TestNodeFIFO(t *testing.T) {
	nodes := LocalMesh(2, logr.Discard())
	defer closeMesh(t, nodes)

	tag := task.Tag{Task: 7, Msg: 3}
	const count = 100

	go func() {
		for i := 0; i < count; i++ {
			nodes[0].Send(1, tag, []byte{byte(i)})
		}
	}()
	for i := 0; i < count; i++ {
		data, err := nodes[1].Receive(0, tag)
		if err != nil {
			t.Fatalf("Receive: %v", err)
		}
		if len(data) != 1 || data[0] != byte(i) {
			t.Fatalf("message %d: got %v", i, data)
		}
	}
}

func TestNodeConcurrentTags(t *testing.T) {
	nodes := LocalMesh(2, logr.Discard())
	defer closeMesh(t, nodes)

	const lanes = 16
	var wg sync.WaitGroup
	errs := make(chan error, 2*lanes)

	for lane := 0; lane < lanes; lane++ {
		tag := task.Tag{Task: uint64(lane + 1)}
		payload := bytes.Repeat([]byte{byte(lane)}, 1000+lane)
		for rank := 0; rank < 2; rank++ {
			wg.Add(1)
			go func(rank int) {
				defer wg.Done()
				peer := 1 - rank
				req := nodes[rank].SendAsync(peer, tag, payload)
				data, err := nodes[rank].ReceiveAsync(peer, tag).Wait()
				if err != nil {
					errs <- err
					return
				}
				if _, err := req.Wait(); err != nil {
					errs <- err
					return
				}
				if !bytes.Equal(data, payload) {
					errs <- fmt.Errorf("lane %d: payload mismatch", tag.Task)
				}
			}(rank)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestNodeClose(t *testing.T) {
	nodes := LocalMesh(2, logr.Discard())

	done := make(chan error)
	go func() {
		_, err := nodes[1].Receive(0, task.Tag{Task: 1})
		done <- err
	}()
	nodes[1].Close()
	err := <-done
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Receive after Close: got %v, expected %v", err, ErrClosed)
	}
	if err := nodes[1].Send(0, task.Tag{}, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Send after Close: got %v, expected %v", err, ErrClosed)
	}

	// The peer sees the connection failure.
	_, err = nodes[0].Receive(1, task.Tag{Task: 1})
	if err == nil {
		t.Errorf("Receive from closed peer succeeded")
	}
	for i, n := range nodes {
		if c := boxCount(n); c != 0 {
			t.Errorf("node %d: %d mailboxes left after failed receive", i, c)
		}
	}
	nodes[0].Close()
}

func boxCount(n *Node) int {
	n.m.Lock()
	defer n.m.Unlock()
	return len(n.boxes)
}

func TestNodeStats(t *testing.T) {
	nodes := LocalMesh(2, logr.Discard())
	defer closeMesh(t, nodes)

	tag := task.Tag{Task: 1}
	if err := nodes[0].Send(1, tag, make([]byte, 100)); err != nil {
		t.Fatal(err)
	}
	if _, err := nodes[1].Receive(0, tag); err != nil {
		t.Fatal(err)
	}
	// Frame: msg, task, length, payload.
	const expected = 4 + 8 + 4 + 100
	if v := nodes[0].Stats().Sent.Load(); v != expected {
		t.Errorf("sent: got %v, expected %v", v, expected)
	}
	if v := nodes[1].Stats().Recvd.Load(); v != expected {
		t.Errorf("recvd: got %v, expected %v", v, expected)
	}
}

func TestTagIO(t *testing.T) {
	nodes := LocalMesh(2, logr.Discard())
	defer closeMesh(t, nodes)

	tag := task.Tag{Task: 3, Msg: 9}
	a := NewTagIO(nodes[0], 1, tag)
	b := NewTagIO(nodes[1], 0, tag)

	if err := a.SendUint32(0xdeadbeef); err != nil {
		t.Fatal(err)
	}
	if err := a.SendData([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if err := a.Flush(); err != nil {
		t.Fatal(err)
	}
	v, err := b.ReceiveUint32()
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xdeadbeef {
		t.Errorf("ReceiveUint32: got %x", v)
	}
	data, err := b.ReceiveData()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Errorf("ReceiveData: got %q", data)
	}
}

func TestExchangeWords(t *testing.T) {
	nodes := LocalMesh(2, logr.Discard())
	defer closeMesh(t, nodes)

	tag := task.Tag{Task: 5}
	words := [][]uint64{
		{1, 2, 3, 0xffffffffffffffff},
		{4, 5, 6, 0},
	}
	var wg sync.WaitGroup
	results := make([][]uint64, 2)
	errs := make([]error, 2)
	for rank := 0; rank < 2; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			results[rank], errs[rank] = ExchangeWords(nodes[rank], 1-rank,
				tag, words[rank])
		}(rank)
	}
	wg.Wait()
	for rank := 0; rank < 2; rank++ {
		if errs[rank] != nil {
			t.Fatalf("rank %d: %v", rank, errs[rank])
		}
		peer := words[1-rank]
		for i := range peer {
			if results[rank][i] != peer[i] {
				t.Errorf("rank %d: word %d: got %x, expected %x",
					rank, i, results[rank][i], peer[i])
			}
		}
	}

	// Length mismatch.
	go SendWords(nodes[0], 1, tag, []uint64{1})
	if _, err := ReceiveWords(nodes[1], 0, tag, 2); err == nil {
		t.Errorf("ReceiveWords accepted short vector")
	}
}
