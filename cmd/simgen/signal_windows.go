//go:build windows

package main

import "os"

// shutdownSignals cancel a run in progress.
var shutdownSignals = []os.Signal{os.Interrupt}
