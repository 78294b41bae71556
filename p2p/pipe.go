//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"errors"
	"io"
)

// Pipe creates a connected pair of in-memory connections. Data sent
// on one end is received from the other. Closing either end fails
// all pending and future operations on both ends.
func Pipe() (*Conn, *Conn) {
	r0, w1 := io.Pipe()
	r1, w0 := io.Pipe()

	return NewConn(&pipeEnd{r0, w0}), NewConn(&pipeEnd{r1, w1})
}

type pipeEnd struct {
	*io.PipeReader
	*io.PipeWriter
}

func (p *pipeEnd) Close() error {
	return errors.Join(p.PipeReader.Close(), p.PipeWriter.Close())
}
