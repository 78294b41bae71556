//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/markkurossi/mpcdb/task"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		MaxArrayElements: 1 << 27,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// EncodeWords encodes the share vector into its wire format.
func EncodeWords(words []uint64) ([]byte, error) {
	if words == nil {
		words = []uint64{}
	}
	return encMode.Marshal(words)
}

// DecodeWords decodes a share vector from its wire format.
func DecodeWords(data []byte) ([]uint64, error) {
	var words []uint64
	if err := decMode.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("p2p: invalid share vector: %w", err)
	}
	return words, nil
}

// SendWords sends the share vector to the peer.
func SendWords(t Transport, to int, tag task.Tag, words []uint64) error {
	data, err := EncodeWords(words)
	if err != nil {
		return err
	}
	return t.Send(to, tag, data)
}

// ReceiveWords receives a share vector of n words from the peer.
func ReceiveWords(t Transport, from int, tag task.Tag, n int) (
	[]uint64, error) {

	data, err := t.Receive(from, tag)
	if err != nil {
		return nil, err
	}
	words, err := DecodeWords(data)
	if err != nil {
		return nil, err
	}
	if len(words) != n {
		return nil, fmt.Errorf("p2p: %v: got %d words, expected %d",
			tag, len(words), n)
	}
	return words, nil
}

// ExchangeWords sends the share vector to the peer and receives the
// peer's share vector of the same length with the same tag.
func ExchangeWords(t Transport, peer int, tag task.Tag, words []uint64) (
	[]uint64, error) {

	data, err := EncodeWords(words)
	if err != nil {
		return nil, err
	}
	req := t.SendAsync(peer, tag, data)
	result, err := ReceiveWords(t, peer, tag, len(words))
	if _, sendErr := req.Wait(); sendErr != nil && err == nil {
		err = sendErr
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
