//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package env

import (
	"flag"
)

type methodValue struct {
	m *BmtMethod
}

func (v methodValue) String() string {
	if v.m == nil {
		return ""
	}
	return v.m.String()
}

func (v methodValue) Set(val string) error {
	m, err := ParseBmtMethod(val)
	if err != nil {
		return err
	}
	*v.m = m
	return nil
}

type queueValue struct {
	t *QueueType
}

func (v queueValue) String() string {
	if v.t == nil {
		return ""
	}
	return v.t.String()
}

func (v queueValue) Set(val string) error {
	t, err := ParseQueueType(val)
	if err != nil {
		return err
	}
	*v.t = t
	return nil
}

// RegisterFlags binds the configuration options to the flag set. The
// current values become the flag defaults.
func (config *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.Var(methodValue{&config.BmtMethod}, "bmt-method",
		"Beaver triple method: JIT, BACKGROUND, PIPELINE, FIXED")
	fs.IntVar(&config.BmtUsageLimit, "bmt-usage-limit", config.BmtUsageLimit,
		"Beaver triple usage limit")
	fs.IntVar(&config.BmtQueueNum, "bmt-queue-num", config.BmtQueueNum,
		"background triple queues per kind")
	fs.Var(queueValue{&config.BmtQueueType}, "bmt-queue-type",
		"triple queue type: cond, chan, spsc")
	fs.IntVar(&config.BmtQueueCap, "bmt-queue-cap", config.BmtQueueCap,
		"triple batches per queue")
	fs.IntVar(&config.BmtBatchSize, "bmt-batch-size", config.BmtBatchSize,
		"triples per generated batch")
	fs.IntVar(&config.BatchSize, "batch-size", config.BatchSize,
		"lanes per sort sub-batch")
	fs.BoolVar(&config.EnableSIMD, "simd", config.EnableSIMD,
		"bit-pack bitwise triples")
	fs.BoolVar(&config.EnableIntraOperatorParallelism, "intra-op-parallel",
		config.EnableIntraOperatorParallelism,
		"dispatch sub-batches to the worker pool")
	fs.BoolVar(&config.DisableMultiThread, "single-thread",
		config.DisableMultiThread, "disable worker threads")
	fs.IntVar(&config.TaskTagBits, "task-tag-bits", config.TaskTagBits,
		"task tag bits")
	fs.IntVar(&config.Threads, "threads", config.Threads, "worker threads")
	fs.IntVar(&config.RSAKeyBits, "rsa-bits", config.RSAKeyBits,
		"base OT RSA key size")
	fs.IntVar(&config.ClientRank, "client", config.ClientRank, "client rank")
}
