//
// main.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

// The ot program measures the base OT setup and the random OT
// extension between two in-process peers.
package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/markkurossi/mpcdb/bmt"
	"github.com/markkurossi/mpcdb/ot"
)

func main() {
	keyBits := flag.Int("bits", 2048, "RSA key size")
	count := flag.Int("n", 1<<20, "number of random OTs")
	flag.Parse()

	newBase := func() ot.OT {
		return ot.NewRSA(rand.Reader, *keyBits)
	}
	p0, p1 := ot.NewPipe()

	start := time.Now()
	done := make(chan error)
	var c1 *ot.Correlation
	go func() {
		var err error
		c1, err = ot.Setup(p1, false, newBase, rand.Reader)
		done <- err
	}()
	c0, err := ot.Setup(p0, true, newBase, rand.Reader)
	if err != nil {
		log.Fatal(err)
	}
	if err := <-done; err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Base OT: %v\n", time.Since(start))

	prg, err := bmt.NewPRG(rand.Reader)
	if err != nil {
		log.Fatal(err)
	}
	m0 := prg.Words(*count, ^uint64(0))
	m1 := prg.Words(*count, ^uint64(0))
	flags := prg.Words(*count, 1)
	choices := make([]bool, *count)
	for i, f := range flags {
		choices[i] = f == 1
	}

	sender, err := c0.SenderStream(1)
	if err != nil {
		log.Fatal(err)
	}
	receiver, err := c1.ReceiverStream(1)
	if err != nil {
		log.Fatal(err)
	}

	start = time.Now()
	go func() {
		done <- sender.SendWords(p0, m0, m1)
	}()
	result, err := receiver.ReceiveWords(p1, choices)
	if err != nil {
		log.Fatal(err)
	}
	if err := <-done; err != nil {
		log.Fatal(err)
	}
	elapsed := time.Since(start)

	for i, choice := range choices {
		expected := m0[i]
		if choice {
			expected = m1[i]
		}
		if result[i] != expected {
			fmt.Printf("Verify failed at %d!\n", i)
			os.Exit(1)
		}
	}
	fmt.Printf("Random OT: %d in %v (%.0f OT/s)\n", *count, elapsed,
		float64(*count)/elapsed.Seconds())
}
