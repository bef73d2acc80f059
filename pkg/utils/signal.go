package utils

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalContext returns a context cancelled on the first SIGINT/SIGTERM.
// A second signal exits the process immediately.
func SetupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}
