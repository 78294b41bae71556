//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"fmt"

	"github.com/markkurossi/mpcdb/task"
)

// TagIO implements a message stream to one peer over a transport
// tag. Both endpoints of the stream must use the same tag.
type TagIO struct {
	t    Transport
	peer int
	tag  task.Tag
}

// NewTagIO creates a new tagged stream to the peer.
func NewTagIO(t Transport, peer int, tag task.Tag) *TagIO {
	return &TagIO{
		t:    t,
		peer: peer,
		tag:  tag,
	}
}

// Tag returns the stream tag.
func (tio *TagIO) Tag() task.Tag {
	return tio.tag
}

// SendData sends binary data.
func (tio *TagIO) SendData(val []byte) error {
	return tio.t.Send(tio.peer, tio.tag, val)
}

// SendUint32 sends an uint32 value.
func (tio *TagIO) SendUint32(val int) error {
	var buf [4]byte
	bo.PutUint32(buf[:], uint32(val))
	return tio.t.Send(tio.peer, tio.tag, buf[:])
}

// Flush flushes any pending data. The transport delivers messages
// immediately so this is a no-op.
func (tio *TagIO) Flush() error {
	return nil
}

// ReceiveData receives binary data.
func (tio *TagIO) ReceiveData() ([]byte, error) {
	return tio.t.Receive(tio.peer, tio.tag)
}

// ReceiveUint32 receives an uint32 value.
func (tio *TagIO) ReceiveUint32() (int, error) {
	data, err := tio.t.Receive(tio.peer, tio.tag)
	if err != nil {
		return 0, err
	}
	if len(data) != 4 {
		return 0, fmt.Errorf("p2p: %v: invalid uint32 message: %d bytes",
			tio.tag, len(data))
	}
	return int(bo.Uint32(data)), nil
}
