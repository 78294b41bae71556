//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package env

import (
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

// NewLogger creates a stderr logger with the verbosity v: 0 for info
// messages, 1 for debug messages, and 2 for trace messages. Other
// verbosity values default to 0.
func NewLogger(v int) logr.Logger {
	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags)).
		WithName("mpcdb")
	if v > 2 || v < 0 {
		v = 0
		logger.Info("Invalid verbosity, using info level")
	}
	stdr.SetVerbosity(v)

	return logger
}
