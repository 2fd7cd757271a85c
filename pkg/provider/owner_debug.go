//go:build !plugify_release

package provider

import (
	"fmt"
	"sync/atomic"

	"github.com/plugify-dev/plugify/pkg/plugify"
)

// ownerCheck is a cheap, debug-build-only guard asserting that mutating
// ServiceLocator calls happen from the engine's owner goroutine, matching
// the single-engine-thread model the rest of the runtime assumes (the
// teacher's discovery.go repeatedly documents the same "not thread-safe, one
// instance per runtime" contract rather than enforcing it; this package
// enforces it in non-release builds instead of leaving it purely
// documentary).
type ownerCheck struct {
	goroutineID atomic.Uint64
}

func (o *ownerCheck) assertOwner() error {
	id := currentGoroutineID()
	if !o.goroutineID.CompareAndSwap(0, id) {
		if owner := o.goroutineID.Load(); owner != id {
			return fmt.Errorf("provider: register called from goroutine %d, owned by %d: %w", id, owner, plugify.ErrWrongThread)
		}
	}
	return nil
}
