//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"errors"

	"github.com/markkurossi/mpcdb/task"
)

// ErrClosed is returned for operations on a closed transport.
var ErrClosed = errors.New("p2p: transport closed")

// Transport implements point-to-point messaging between the ranks of
// a fixed-size group. Every message is routed by its sender rank and
// message tag. Messages with the same sender and tag are received in
// the order they were sent; messages with different tags are
// independent. Transport failures are fatal: once a connection
// fails, all pending and future operations return an error.
type Transport interface {
	// Rank returns the rank of this endpoint.
	Rank() int

	// Size returns the number of ranks in the group.
	Size() int

	// Send sends data to the rank to.
	Send(to int, tag task.Tag, data []byte) error

	// Receive receives the next message with the tag from the rank
	// from. The function blocks until a message is available.
	Receive(from int, tag task.Tag) ([]byte, error)

	// SendAsync starts sending data to the rank to.
	SendAsync(to int, tag task.Tag, data []byte) *Request

	// ReceiveAsync starts receiving the next message with the tag
	// from the rank from.
	ReceiveAsync(from int, tag task.Tag) *Request

	// Stats returns the I/O statistics of the transport.
	Stats() IOStats

	// Close closes the transport.
	Close() error
}

// Request is a pending asynchronous transport operation.
type Request struct {
	done chan struct{}
	data []byte
	err  error
}

func newRequest(f func() ([]byte, error)) *Request {
	req := &Request{
		done: make(chan struct{}),
	}
	go func() {
		req.data, req.err = f()
		close(req.done)
	}()
	return req
}

// Wait waits for the request to complete. For receive requests the
// function returns the received data.
func (req *Request) Wait() ([]byte, error) {
	<-req.done
	return req.data, req.err
}
