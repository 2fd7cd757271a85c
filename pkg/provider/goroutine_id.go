//go:build !plugify_release

package provider

import (
	"bytes"
	"runtime"
	"strconv"
)

// currentGoroutineID extracts the numeric goroutine ID from a runtime stack
// trace. It is a debug-only diagnostic aid (not used for anything
// correctness-critical beyond the owner-goroutine check in owner_debug.go) — the
// standard escape hatch since the runtime does not expose goroutine IDs
// through a public API.
func currentGoroutineID() uint64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]
	// Stack trace starts with "goroutine 123 [running]:".
	fields := bytes.Fields(buf)
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
