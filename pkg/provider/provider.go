// Package provider implements the provider/service-locator facility
// (component C5): the Provider handed to each language module's Initialise,
// and the ServiceLocator extensions and modules use to publish or consume
// shared services.
package provider

import "github.com/plugify-dev/plugify/pkg/plugify"

// Provider is the host-supplied context passed into a language module's
// Initialise hook. It bundles the logger, the extension's private
// directories, and the PreferOwnSymbols loader-policy setting, plus
// read-only lookups into the wider extension graph.
type Provider struct {
	Log plugify.Logger

	BaseDir    string
	ConfigsDir string
	DataDir    string
	LogsDir    string
	CacheDir   string

	PreferOwnSymbols bool

	locator *ServiceLocator

	findExtension    func(name string) (Descriptor, bool)
	isExtensionLoaded func(name string) bool
}

// Descriptor is the minimal extension identity a Provider can report back
// about a peer extension, without exposing lifecycle internals across the
// package boundary.
type Descriptor struct {
	Name    string
	Version string
	Kind    string
}

// New builds a Provider. findExtension/isExtensionLoaded are supplied by
// the lifecycle engine so provider stays free of any dependency on it.
func New(log plugify.Logger, locator *ServiceLocator, findExtension func(string) (Descriptor, bool), isExtensionLoaded func(string) bool) *Provider {
	return &Provider{
		Log:               log,
		locator:           locator,
		findExtension:     findExtension,
		isExtensionLoaded: isExtensionLoaded,
	}
}

// Services returns the ServiceLocator this Provider is bound to.
func (p *Provider) Services() *ServiceLocator { return p.locator }

// FindExtension looks up a peer extension by name.
func (p *Provider) FindExtension(name string) (Descriptor, bool) {
	if p.findExtension == nil {
		return Descriptor{}, false
	}
	return p.findExtension(name)
}

// IsExtensionLoaded reports whether a peer extension has reached the Loaded
// state or later.
func (p *Provider) IsExtensionLoaded(name string) bool {
	if p.isExtensionLoaded == nil {
		return false
	}
	return p.isExtensionLoaded(name)
}
