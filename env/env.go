//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package env implements global environment for the MPC system.
package env

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/go-logr/logr"
)

// BmtMethod defines when Beaver triples are produced relative to
// their consumption.
type BmtMethod int

// Beaver triple supply methods.
const (
	JIT BmtMethod = iota
	Background
	Pipeline
	Fixed
)

var bmtMethods = map[BmtMethod]string{
	JIT:        "JIT",
	Background: "BACKGROUND",
	Pipeline:   "PIPELINE",
	Fixed:      "FIXED",
}

func (m BmtMethod) String() string {
	name, ok := bmtMethods[m]
	if ok {
		return name
	}
	return fmt.Sprintf("{BmtMethod %d}", m)
}

// ParseBmtMethod parses the triple supply method name.
func ParseBmtMethod(val string) (BmtMethod, error) {
	for k, v := range bmtMethods {
		if strings.EqualFold(v, val) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown BMT method '%s'", val)
}

// QueueType defines the concurrency discipline of triple queues.
type QueueType int

// Triple queue types.
const (
	QueueCond QueueType = iota
	QueueChan
	QueueSPSC
)

var queueTypes = map[QueueType]string{
	QueueCond: "cond",
	QueueChan: "chan",
	QueueSPSC: "spsc",
}

func (t QueueType) String() string {
	name, ok := queueTypes[t]
	if ok {
		return name
	}
	return fmt.Sprintf("{QueueType %d}", t)
}

// ParseQueueType parses the queue type name.
func ParseQueueType(val string) (QueueType, error) {
	for k, v := range queueTypes {
		if strings.EqualFold(v, val) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown queue type '%s'", val)
}

// Config defines the global system configuration for the MPC system.
// It configures system operation for all MPC modules. Config must not
// be modified after being passed to any MPC module.  It is safe for
// concurrent use by multiple modules as they do not modify it.
type Config struct {
	Rand   io.Reader
	Logger logr.Logger

	BmtMethod     BmtMethod
	BmtUsageLimit int
	BmtQueueNum   int
	BmtQueueType  QueueType
	BmtQueueCap   int
	BmtBatchSize  int

	BatchSize                      int
	EnableSIMD                     bool
	EnableIntraOperatorParallelism bool
	DisableMultiThread             bool
	TaskTagBits                    int
	Threads                        int

	RSAKeyBits int
	ClientRank int
}

// NewConfig creates a new configuration with default values.
func NewConfig() *Config {
	return &Config{
		BmtMethod:                      Background,
		BmtUsageLimit:                  1,
		BmtQueueNum:                    2,
		BmtQueueType:                   QueueChan,
		BmtQueueCap:                    4,
		BmtBatchSize:                   256,
		BatchSize:                      256,
		EnableSIMD:                     true,
		EnableIntraOperatorParallelism: true,
		TaskTagBits:                    32,
		Threads:                        runtime.NumCPU(),
		RSAKeyBits:                     2048,
		ClientRank:                     2,
	}
}

// MaxQueueNum defines the maximum number of background lanes per
// triple kind. Each lane owns one reserved task.
const MaxQueueNum = 16

// Validate checks the configuration values.
func (config *Config) Validate() error {
	if config.BmtUsageLimit < 1 {
		return fmt.Errorf("invalid BMT usage limit: %d", config.BmtUsageLimit)
	}
	if config.BmtQueueNum < 1 || config.BmtQueueNum > MaxQueueNum {
		return fmt.Errorf("invalid BMT queue count: %d, expected [1...%d]",
			config.BmtQueueNum, MaxQueueNum)
	}
	if config.BmtQueueCap < 1 {
		return fmt.Errorf("invalid BMT queue capacity: %d", config.BmtQueueCap)
	}
	if config.BmtBatchSize < 1 {
		return fmt.Errorf("invalid BMT batch size: %d", config.BmtBatchSize)
	}
	if config.BatchSize < 1 {
		return fmt.Errorf("invalid batch size: %d", config.BatchSize)
	}
	if config.TaskTagBits < 8 || config.TaskTagBits > 64 {
		return fmt.Errorf("invalid task tag bits: %d, expected [8...64]",
			config.TaskTagBits)
	}
	if config.RSAKeyBits < 1024 {
		return fmt.Errorf("RSA key too short: %d bits", config.RSAKeyBits)
	}
	if config.ClientRank < 0 {
		return errors.New("negative client rank")
	}
	_, ok := bmtMethods[config.BmtMethod]
	if !ok {
		return fmt.Errorf("invalid BMT method: %v", config.BmtMethod)
	}
	_, ok = queueTypes[config.BmtQueueType]
	if !ok {
		return fmt.Errorf("invalid queue type: %v", config.BmtQueueType)
	}
	return nil
}

// GetRandom returns the source of entropy for OT, triple
// generation, and other cryptography operations.
func (config *Config) GetRandom() io.Reader {
	if config.Rand != nil {
		return config.Rand
	}
	return rand.Reader
}

// GetLogger returns the configured logger. An unset logger discards
// all messages.
func (config *Config) GetLogger() logr.Logger {
	if config.Logger.GetSink() == nil {
		return logr.Discard()
	}
	return config.Logger
}

// GetThreads returns the number of worker threads for parallel
// secure sub-computations.
func (config *Config) GetThreads() int {
	if config.DisableMultiThread || config.Threads < 1 {
		return 1
	}
	return config.Threads
}
