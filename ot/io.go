//
// io.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.

package ot

import (
	"encoding/binary"
	"fmt"
)

var bo = binary.LittleEndian

// IO defines an I/O interface to communicate between peers.
type IO interface {
	// SendData sends binary data.
	SendData(val []byte) error

	// SendUint32 sends an uint32 value.
	SendUint32(val int) error

	// Flush flushed any pending data in the connection.
	Flush() error

	// ReceiveData receives binary data.
	ReceiveData() ([]byte, error)

	// ReceiveUint32 receives an uint32 value.
	ReceiveUint32() (int, error)
}

// SendLabel sends a label value.
func SendLabel(io IO, l Label) error {
	var ld LabelData
	return io.SendData(l.Bytes(&ld))
}

// ReceiveLabel receives a label value.
func ReceiveLabel(io IO) (Label, error) {
	var l Label
	data, err := io.ReceiveData()
	if err != nil {
		return l, err
	}
	if len(data) != len(LabelData{}) {
		return l, fmt.Errorf("ot: invalid label: %d bytes", len(data))
	}
	l.SetBytes(data)
	return l, nil
}

// SendWords sends the words as one message.
func SendWords(io IO, words []uint64) error {
	buf := make([]byte, len(words)*8)
	for i, w := range words {
		bo.PutUint64(buf[i*8:], w)
	}
	return io.SendData(buf)
}

// ReceiveWords receives a message of n words.
func ReceiveWords(io IO, n int) ([]uint64, error) {
	data, err := io.ReceiveData()
	if err != nil {
		return nil, err
	}
	if len(data) != n*8 {
		return nil, fmt.Errorf("ot: got %d bytes, expected %d words",
			len(data), n)
	}
	words := make([]uint64, n)
	for i := range words {
		words[i] = bo.Uint64(data[i*8:])
	}
	return words, nil
}
