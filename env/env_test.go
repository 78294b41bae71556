//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package env

import (
	"flag"
	"testing"
)

func TestDefaults(t *testing.T) {
	config := NewConfig()
	if err := config.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if config.GetRandom() == nil {
		t.Errorf("nil random")
	}
	config.GetLogger().Info("discarded")
}

func TestValidate(t *testing.T) {
	tests := []func(c *Config){
		func(c *Config) { c.BmtUsageLimit = 0 },
		func(c *Config) { c.BmtQueueNum = 0 },
		func(c *Config) { c.BmtQueueNum = MaxQueueNum + 1 },
		func(c *Config) { c.TaskTagBits = 4 },
		func(c *Config) { c.RSAKeyBits = 512 },
		func(c *Config) { c.BmtMethod = BmtMethod(42) },
		func(c *Config) { c.BatchSize = 0 },
	}
	for idx, test := range tests {
		config := NewConfig()
		test(config)
		if err := config.Validate(); err == nil {
			t.Errorf("test %d: invalid config accepted", idx)
		}
	}
}

func TestFlags(t *testing.T) {
	config := NewConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	config.RegisterFlags(fs)

	err := fs.Parse([]string{
		"-bmt-method", "pipeline",
		"-bmt-queue-type", "SPSC",
		"-bmt-usage-limit", "3",
		"-single-thread",
	})
	if err != nil {
		t.Fatal(err)
	}
	if config.BmtMethod != Pipeline {
		t.Errorf("BmtMethod=%v", config.BmtMethod)
	}
	if config.BmtQueueType != QueueSPSC {
		t.Errorf("BmtQueueType=%v", config.BmtQueueType)
	}
	if config.BmtUsageLimit != 3 {
		t.Errorf("BmtUsageLimit=%v", config.BmtUsageLimit)
	}
	if config.GetThreads() != 1 {
		t.Errorf("GetThreads=%v", config.GetThreads())
	}
	if err := fs.Parse([]string{"-bmt-method", "later"}); err == nil {
		t.Errorf("invalid method accepted")
	}
}
