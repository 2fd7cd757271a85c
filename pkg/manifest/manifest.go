// Package manifest owns the parsed, strongly-typed representation of
// extensions: their versions, dependencies, conflicts, methods, and
// parameter/enum types (component C2 of the design).
package manifest

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/plugify-dev/plugify/pkg/version"
)

// Kind distinguishes a language-host Module from a user Plugin.
type Kind uint8

const (
	KindPlugin Kind = iota
	KindModule
)

func (k Kind) String() string {
	if k == KindModule {
		return "module"
	}
	return "plugin"
}

// Manifest is the declarative descriptor parsed from a .pplugin/.pmodule
// file on disk.
type Manifest struct {
	Kind Kind

	Name        string
	Version     version.Version
	Language    string
	Description string
	Author      string
	Website     string
	License     string

	Platforms    []string
	Dependencies []version.Dependency
	Conflicts    []version.Conflict
	Obsoletes    []string

	// Plugin-only.
	Entry   string
	Methods []Method

	// Module-only.
	Runtime     string
	Directories []string

	// Cosmetic metadata carried for display purposes only; the engine never
	// interprets these fields. Supplements the C++ descriptor classes'
	// optional fields (createdBy, docsURL, downloadURL, ...).
	Extra map[string]string
}

// MatchesPlatform reports whether the manifest's platform filter (if any)
// accepts the given "os_arch" pair. arch may be a Go GOARCH name ("amd64",
// "386"); it is normalized to the platform-string vocabulary first. An
// empty filter matches everything.
func (m *Manifest) MatchesPlatform(osName, arch string) bool {
	if len(m.Platforms) == 0 {
		return true
	}
	target := osName + "_" + normalizeArch(arch)
	for _, pattern := range m.Platforms {
		if matchPlatformPattern(pattern, target) {
			return true
		}
	}
	return false
}

// MatchesHostPlatform matches against runtime.GOOS/runtime.GOARCH.
func (m *Manifest) MatchesHostPlatform() bool {
	return m.MatchesPlatform(goosName(), goarchName())
}

func goosName() string  { return runtime.GOOS }
func goarchName() string { return normalizeArch(runtime.GOARCH) }

// normalizeArch maps Go's arch names onto the "x64"/"arm64" vocabulary the
// spec's os_arch platform strings use.
func normalizeArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x64"
	case "386":
		return "x86"
	default:
		return goarch
	}
}

// matchPlatformPattern implements the "*" wildcard rules from spec.md §4.2:
// patterns like "linux_*", "*_x64", "*".
func matchPlatformPattern(pattern, target string) bool {
	if pattern == "*" {
		return true
	}
	pParts := strings.SplitN(pattern, "_", 2)
	tParts := strings.SplitN(target, "_", 2)
	if len(pParts) != 2 || len(tParts) != 2 {
		return pattern == target
	}
	return matchSegment(pParts[0], tParts[0]) && matchSegment(pParts[1], tParts[1])
}

func matchSegment(pattern, value string) bool {
	return pattern == "*" || pattern == value
}

// InvalidManifestError is returned by a ManifestParser (or by Resolve, for
// parse-time-deferred checks like prototype resolution) when a manifest
// fails shape validation.
type InvalidManifestError struct {
	Origin  string
	Message string
}

func (e *InvalidManifestError) Error() string {
	return fmt.Sprintf("manifest: %s: %s", e.Origin, e.Message)
}

// ResolvePrototypes resolves each function-pointer Property's Prototype
// reference by method name, local to this manifest, exactly once. Call this
// after decoding a manifest's raw method list (the default codec in
// internal/manifestio does this automatically).
func (m *Manifest) ResolvePrototypes(prototypes map[string]*Method) error {
	for i := range m.Methods {
		if err := resolveMethodPrototypes(&m.Methods[i], prototypes); err != nil {
			return &InvalidManifestError{Origin: m.Name, Message: err.Error()}
		}
	}
	return nil
}

func resolveMethodPrototypes(method *Method, prototypes map[string]*Method) error {
	for i := range method.Params {
		if err := resolvePropertyPrototype(&method.Params[i], prototypes); err != nil {
			return err
		}
	}
	return resolvePropertyPrototype(&method.Return, prototypes)
}

func resolvePropertyPrototype(p *Property, prototypes map[string]*Method) error {
	if p.Type != Function || p.Prototype == nil {
		return nil
	}
	// A Prototype with only Name set (decoded as a placeholder) is resolved
	// against the manifest's own method table; one already carrying Params
	// is considered pre-resolved (constructed programmatically).
	if len(p.Prototype.Params) > 0 || p.Prototype.Return.Type != Void {
		return nil
	}
	resolved, ok := prototypes[p.Prototype.Name]
	if !ok {
		return fmt.Errorf("unresolved method prototype %q", p.Prototype.Name)
	}
	p.Prototype = resolved
	return nil
}

// PrototypeTable builds the name-indexed lookup ResolvePrototypes consumes.
func PrototypeTable(methods []Method) map[string]*Method {
	table := make(map[string]*Method, len(methods))
	for i := range methods {
		table[methods[i].Name] = &methods[i]
	}
	return table
}
