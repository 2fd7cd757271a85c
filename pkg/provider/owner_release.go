//go:build plugify_release

package provider

// ownerCheck compiles to nothing in release builds (build tag
// plugify_release): the dynamic owner-goroutine assertion is a debug aid,
// not a correctness mechanism, so release builds pay no cost for it.
type ownerCheck struct{}

func (o *ownerCheck) assertOwner() error { return nil }
