//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// The mpcsort program sorts the client's values on the two compute
// parties without revealing them to the servers.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/markkurossi/mpcdb/env"
	"github.com/markkurossi/mpcdb/party"
	"github.com/markkurossi/mpcdb/secret"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := env.NewConfig()
	cfg.RegisterFlags(flag.CommandLine)

	rank := flag.Int("rank", 0, "party rank")
	addrs := flag.String("addrs",
		"localhost:8080,localhost:8081,localhost:8082",
		"comma-separated list of party addresses by rank")
	local := flag.Bool("local", false, "run all parties in this process")
	width := flag.Int("width", 32, "value width in bits")
	descending := flag.Bool("desc", false, "sort in descending order")
	arith := flag.Bool("arith", false, "sort arithmetic shares")
	timeout := flag.Duration("timeout", time.Minute, "connection timeout")
	stats := flag.Bool("stats", false, "print statistics")
	verbose := flag.Int("v", 0, "log verbosity: 0, 1, 2")
	flag.Parse()

	log.SetFlags(0)
	cfg.Logger = env.NewLogger(*verbose)

	var values []uint64
	for _, arg := range flag.Args() {
		v, err := strconv.ParseUint(arg, 0, *width)
		if err != nil {
			log.Fatalf("invalid value '%s': %s", arg, err)
		}
		values = append(values, v)
	}

	job := &sortJob{
		values:    values,
		width:     *width,
		ascending: !*descending,
		arith:     *arith,
		stats:     *stats,
	}

	if *local {
		parties, err := party.NewLocal(cfg)
		if err != nil {
			log.Fatal(err)
		}
		var g errgroup.Group
		for _, p := range parties {
			g.Go(func() error {
				return job.run(p)
			})
		}
		err = g.Wait()
		party.CloseAll(parties)
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	p, err := party.Connect(ctx, cfg, *rank, strings.Split(*addrs, ","))
	cancel()
	if err != nil {
		log.Fatal(err)
	}
	err = job.run(p)
	p.Close()
	if err != nil {
		log.Fatal(err)
	}
}

type sortJob struct {
	values    []uint64
	width     int
	ascending bool
	arith     bool
	stats     bool
}

func (job *sortJob) run(p *party.Party) error {
	s := secret.New(p)
	client := p.ClientRank()

	var result []uint64
	if job.arith {
		secrets, err := s.ArithShare(job.values, client, job.width,
			p.NextTask())
		if err != nil {
			return err
		}
		if p.IsServer() {
			if err := s.SortArith(secrets, job.ascending); err != nil {
				return err
			}
		}
		result, err = s.ArithReconstruct(secrets, client, job.width,
			p.NextTask())
		if err != nil {
			return err
		}
	} else {
		secrets, err := s.BoolShare(job.values, client, job.width,
			p.NextTask())
		if err != nil {
			return err
		}
		if p.IsServer() {
			if err := s.SortBool(secrets, job.ascending); err != nil {
				return err
			}
		}
		result, err = s.BoolReconstruct(secrets, client, job.width,
			p.NextTask())
		if err != nil {
			return err
		}
	}

	if p.IsClient() {
		var sb strings.Builder
		for i, v := range result {
			if i > 0 {
				sb.WriteRune(' ')
			}
			fmt.Fprintf(&sb, "%d", v)
		}
		fmt.Println(sb.String())
	}
	if job.stats {
		p.PrintStats(os.Stdout)
	}
	return nil
}
