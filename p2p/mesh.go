//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/go-logr/logr"
)

// RetryDelay specifies the delay between connection attempts in
// Dial.
var RetryDelay = time.Second

// LocalMesh creates a fully connected group of n transport nodes
// over in-memory pipes.
func LocalMesh(n int, log logr.Logger) []*Node {
	conns := make([][]*Conn, n)
	for i := range conns {
		conns[i] = make([]*Conn, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := Pipe()
			conns[i][j] = a
			conns[j][i] = b
		}
	}
	result := make([]*Node, n)
	for i := 0; i < n; i++ {
		result[i] = NewNode(i, conns[i], log)
	}
	return result
}

// Dial creates the TCP transport node for the rank. The addrs array
// holds the listen address of each rank. The node accepts
// connections from all higher ranks and connects to all lower ranks,
// retrying failed connection attempts until the context is done.
func Dial(ctx context.Context, rank int, addrs []string,
	log logr.Logger) (*Node, error) {

	if rank < 0 || rank >= len(addrs) {
		return nil, fmt.Errorf("p2p: invalid rank %d for %d addresses",
			rank, len(addrs))
	}
	log = log.WithName("p2p").WithValues("rank", rank)

	conns := make([]*Conn, len(addrs))
	closeAll := func() {
		for _, c := range conns {
			if c != nil {
				c.Close()
			}
		}
	}

	type accepted struct {
		conn *Conn
		peer int
		err  error
	}
	numAccept := len(addrs) - rank - 1
	acceptC := make(chan accepted, numAccept)

	var listener net.Listener
	if numAccept > 0 {
		var lc net.ListenConfig
		var err error
		listener, err = lc.Listen(ctx, "tcp", addrs[rank])
		if err != nil {
			return nil, err
		}
		defer listener.Close()
		log.Info("listening", "addr", listener.Addr())

		go func() {
			for i := 0; i < numAccept; i++ {
				nc, err := listener.Accept()
				if err != nil {
					acceptC <- accepted{err: err}
					return
				}
				conn := NewConn(nc)
				id, err := conn.ReceiveUint32()
				if err != nil {
					conn.Close()
					acceptC <- accepted{err: err}
					return
				}
				acceptC <- accepted{conn: conn, peer: id}
			}
		}()
	}

	for peer := 0; peer < rank; peer++ {
		conn, err := dialPeer(ctx, rank, addrs[peer], log)
		if err != nil {
			closeAll()
			return nil, err
		}
		conns[peer] = conn
	}

	for i := 0; i < numAccept; i++ {
		var a accepted
		select {
		case a = <-acceptC:
		case <-ctx.Done():
			listener.Close()
			closeAll()
			return nil, ctx.Err()
		}
		if a.err != nil {
			closeAll()
			return nil, a.err
		}
		if a.peer <= rank || a.peer >= len(addrs) || conns[a.peer] != nil {
			a.conn.Close()
			closeAll()
			return nil, fmt.Errorf("p2p: unexpected peer %d", a.peer)
		}
		log.Info("accepted", "peer", a.peer)
		conns[a.peer] = a.conn
	}

	return NewNode(rank, conns, log), nil
}

func dialPeer(ctx context.Context, rank int, addr string,
	log logr.Logger) (*Conn, error) {

	var dialer net.Dialer
	for {
		nc, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			conn := NewConn(nc)
			if err := conn.SendUint32(rank); err != nil {
				conn.Close()
				return nil, err
			}
			if err := conn.Flush(); err != nil {
				conn.Close()
				return nil, err
			}
			log.Info("connected", "addr", addr)
			return conn, nil
		}
		log.V(1).Info("connect failed, retrying", "addr", addr,
			"delay", RetryDelay, "err", err.Error())

		select {
		case <-time.After(RetryDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
