package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// SignalContext is a context cancelled by the first termination signal.
// Unlike signal.NotifyContext it remembers which signal that was.
type SignalContext struct {
	context.Context
	Cancel context.CancelFunc

	received atomic.Pointer[os.Signal]
}

// NewSignalContext watches sigs (SIGINT and SIGTERM when none are given)
// until the first arrives or parent ends.
func NewSignalContext(parent context.Context, sigs ...os.Signal) *SignalContext {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, Cancel: cancel}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	go sc.watch(ch)
	return sc
}

func (sc *SignalContext) watch(ch chan os.Signal) {
	defer signal.Stop(ch)
	select {
	case sig := <-ch:
		sc.received.Store(&sig)
		sc.Cancel()
	case <-sc.Done():
	}
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	if p := sc.received.Load(); p != nil {
		return *p
	}
	return nil
}

// IsShutdown reports whether err only reflects a requested stop.
func IsShutdown(err error) bool {
	return errors.Is(err, context.Canceled)
}
