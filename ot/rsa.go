//
// rsa.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"crypto/rsa"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
)

var (
	_ OT = &RSA{}
)

// RSA implements the "Even-Goldreich-Lempel" 1-out-of-2 OT with RSA
// blinding. The sender's private key operations use CRT
// exponentiation.
type RSA struct {
	rand io.Reader
	bits int
	io   IO
	size int
	n    *saferith.Modulus
	e    *saferith.Nat
	priv *crtKey
}

type crtKey struct {
	p, q       *saferith.Modulus
	dp, dq     *saferith.Nat
	pNat, pInv *saferith.Nat
}

// exp computes x^d mod n.
func (rsa *RSA) exp(x *saferith.Nat) *saferith.Nat {
	k := rsa.priv

	var xp, xq saferith.Nat
	xp.Exp(new(saferith.Nat).Mod(x, k.p), k.dp, k.p)
	xq.Exp(new(saferith.Nat).Mod(x, k.q), k.dq, k.q)

	// r = xp + p⋅[p⁻¹ (mod q)]⋅[xq - xp] (mod n)
	r := xq.ModSub(&xq, &xp, rsa.n)
	r.ModMul(r, k.pInv, rsa.n)
	r.ModMul(r, k.pNat, rsa.n)
	r.ModAdd(r, &xp, rsa.n)
	return r
}

// NewRSA creates a new RSA OT instance with the key size keyBits.
func NewRSA(rand io.Reader, keyBits int) *RSA {
	return &RSA{
		rand: rand,
		bits: keyBits,
	}
}

func natFromBig(x *big.Int) *saferith.Nat {
	return new(saferith.Nat).SetBig(x, x.BitLen())
}

// InitSender implements OT.InitSender.
func (rsa *RSA) InitSender(io IO) error {
	key, err := generateKey(rsa.rand, rsa.bits)
	if err != nil {
		return err
	}
	if len(key.Primes) != 2 {
		return fmt.Errorf("ot: unsupported RSA key: %d primes",
			len(key.Primes))
	}
	p := natFromBig(key.Primes[0])
	q := natFromBig(key.Primes[1])

	rsa.io = io
	rsa.size = key.PublicKey.Size()
	rsa.n = saferith.ModulusFromNat(natFromBig(key.PublicKey.N))
	rsa.e = new(saferith.Nat).SetUint64(uint64(key.PublicKey.E))

	qMod := saferith.ModulusFromNat(q)
	rsa.priv = &crtKey{
		p:    saferith.ModulusFromNat(p),
		q:    qMod,
		dp:   natFromBig(key.Precomputed.Dp),
		dq:   natFromBig(key.Precomputed.Dq),
		pNat: p,
		pInv: new(saferith.Nat).ModInverse(p, qMod),
	}

	if err := io.SendData(rsa.n.Bytes()); err != nil {
		return err
	}
	if err := io.SendUint32(key.PublicKey.E); err != nil {
		return err
	}
	return io.Flush()
}

// InitReceiver implements OT.InitReceiver.
func (rsa *RSA) InitReceiver(io IO) error {
	data, err := io.ReceiveData()
	if err != nil {
		return err
	}
	e, err := io.ReceiveUint32()
	if err != nil {
		return err
	}
	if len(data) < 64 {
		return fmt.Errorf("ot: RSA modulus too short: %d bytes", len(data))
	}
	rsa.io = io
	rsa.size = len(data)
	rsa.n = saferith.ModulusFromBytes(data)
	rsa.e = new(saferith.Nat).SetUint64(uint64(e))

	return nil
}

func (rsa *RSA) random() (*saferith.Nat, error) {
	buf := make([]byte, rsa.size+8)
	if _, err := io.ReadFull(rsa.rand, buf); err != nil {
		return nil, err
	}
	x := new(saferith.Nat).SetBytes(buf)
	return new(saferith.Nat).Mod(x, rsa.n), nil
}

func (rsa *RSA) sendNat(x *saferith.Nat) error {
	return rsa.io.SendData(x.FillBytes(make([]byte, rsa.size)))
}

func (rsa *RSA) receiveNat() (*saferith.Nat, error) {
	data, err := rsa.io.ReceiveData()
	if err != nil {
		return nil, err
	}
	if len(data) != rsa.size {
		return nil, fmt.Errorf("ot: invalid RSA message: %d bytes", len(data))
	}
	x := new(saferith.Nat).SetBytes(data)
	return new(saferith.Nat).Mod(x, rsa.n), nil
}

func labelNat(l Label) *saferith.Nat {
	var ld LabelData
	return new(saferith.Nat).SetBytes(l.Bytes(&ld))
}

// Send implements OT.Send.
func (rsa *RSA) Send(wires []Wire) error {
	if rsa.priv == nil {
		return fmt.Errorf("ot: RSA not initialized as sender")
	}
	x0 := make([]*saferith.Nat, len(wires))
	x1 := make([]*saferith.Nat, len(wires))

	var err error
	for i := range wires {
		x0[i], err = rsa.random()
		if err != nil {
			return err
		}
		x1[i], err = rsa.random()
		if err != nil {
			return err
		}
		if err := rsa.sendNat(x0[i]); err != nil {
			return err
		}
		if err := rsa.sendNat(x1[i]); err != nil {
			return err
		}
	}
	if err := rsa.io.Flush(); err != nil {
		return err
	}

	vs := make([]*saferith.Nat, len(wires))
	for i := range wires {
		vs[i], err = rsa.receiveNat()
		if err != nil {
			return err
		}
	}
	for i, v := range vs {
		k0 := rsa.exp(new(saferith.Nat).ModSub(v, x0[i], rsa.n))
		k1 := rsa.exp(new(saferith.Nat).ModSub(v, x1[i], rsa.n))

		m0 := labelNat(wires[i].L0)
		m1 := labelNat(wires[i].L1)

		if err := rsa.sendNat(m0.ModAdd(m0, k0, rsa.n)); err != nil {
			return err
		}
		if err := rsa.sendNat(m1.ModAdd(m1, k1, rsa.n)); err != nil {
			return err
		}
	}
	return rsa.io.Flush()
}

// Receive implements OT.Receive.
func (rsa *RSA) Receive(flags []bool, result []Label) error {
	if len(flags) != len(result) {
		panic("len(flags) != len(result)")
	}
	if rsa.n == nil || rsa.priv != nil {
		return fmt.Errorf("ot: RSA not initialized as receiver")
	}
	xs := make([]*saferith.Nat, len(flags))
	for i, flag := range flags {
		x0, err := rsa.receiveNat()
		if err != nil {
			return err
		}
		x1, err := rsa.receiveNat()
		if err != nil {
			return err
		}
		if flag {
			xs[i] = x1
		} else {
			xs[i] = x0
		}
	}

	ks := make([]*saferith.Nat, len(flags))
	for i, xb := range xs {
		var err error
		ks[i], err = rsa.random()
		if err != nil {
			return err
		}
		v := new(saferith.Nat).Exp(ks[i], rsa.e, rsa.n)
		v.ModAdd(v, xb, rsa.n)
		if err := rsa.sendNat(v); err != nil {
			return err
		}
	}
	if err := rsa.io.Flush(); err != nil {
		return err
	}

	buf := make([]byte, rsa.size)
	for i, flag := range flags {
		m0, err := rsa.receiveNat()
		if err != nil {
			return err
		}
		m1, err := rsa.receiveNat()
		if err != nil {
			return err
		}
		mb := m0
		if flag {
			mb = m1
		}
		mb.ModSub(mb, ks[i], rsa.n)
		mb.FillBytes(buf)
		result[i].SetBytes(buf[rsa.size-16:])
	}
	return nil
}

func generateKey(rand io.Reader, bits int) (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand, bits)
	if err != nil {
		return nil, err
	}
	key.Precompute()
	return key, nil
}
