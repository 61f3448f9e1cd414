package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// contextWithSignal returns a context cancelled on SIGINT or SIGTERM. Call
// the returned function to release the signal registration.
func contextWithSignal(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
