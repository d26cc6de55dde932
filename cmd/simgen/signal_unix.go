//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals cancel a run in progress.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
