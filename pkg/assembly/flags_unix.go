//go:build !windows

package assembly

import "github.com/ebitengine/purego"

// translateFlags maps the abstract LoadFlag set onto dlopen(3) mode bits.
// RTLD_NOW is the baseline (matches the spec's "resolved eagerly" default),
// LazyBinding switches it to RTLD_LAZY, and GlobalSymbols selects
// RTLD_GLOBAL over RTLD_LOCAL. NoUnload, DeepBind, DataOnly and SecureSearch
// have no effect here.
func translateFlags(flags LoadFlag) int {
	mode := purego.RTLD_NOW
	if flags.Has(LazyBinding) {
		mode = purego.RTLD_LAZY
	}
	if flags.Has(GlobalSymbols) {
		mode |= purego.RTLD_GLOBAL
	} else {
		mode |= purego.RTLD_LOCAL
	}
	return mode
}
