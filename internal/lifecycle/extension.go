package lifecycle

import (
	"sync"
	"time"

	"github.com/plugify-dev/plugify/pkg/abi"
	"github.com/plugify-dev/plugify/pkg/assembly"
	"github.com/plugify-dev/plugify/pkg/manifest"
	"github.com/plugify-dev/plugify/pkg/module"
)

// UniqueId is a stable, process-lifetime-unique handle minted on
// discovery; it never changes across an Extension's state transitions.
type UniqueId uint64

// MethodTable records which optional lifecycle hooks a loaded language
// module (or, per-method, a plugin export) actually implements, so the
// engine can skip dispatch to absent entry points.
type MethodTable struct {
	HasUpdate bool
	HasStart  bool
	HasEnd    bool
	HasExport bool
}

// ResolvedMethod pairs one of the plugin's declared methods with the
// callback trampoline the engine generated to invoke it.
type ResolvedMethod struct {
	Method   manifest.Method
	Callback *abi.Callback
}

// Extension is one discovered package instance — a Module (language host)
// or a Plugin (user extension) — carried through the full lifecycle.
type Extension struct {
	ID       UniqueId
	Kind     manifest.Kind
	Manifest *manifest.Manifest
	Location string

	sm *StateMachine

	mu        sync.Mutex
	errors    []string
	warnings  []string
	timings   map[PackageState]time.Duration
	stateEnteredAt time.Time

	Dirs Dirs

	// Populated once Resolved.
	LanguageModule *Extension // for a Plugin: its resolved Module

	// Populated once Loaded.
	Assembly        *assembly.Assembly
	Host            module.Host
	ModuleHandle    module.Handle
	MethodTableData MethodTable
	ResolvedMethods []ResolvedMethod
}

// Dirs are the per-extension private directories handed to it via the
// Provider.
type Dirs struct {
	Base, Configs, Data, Logs, Cache string
}

// NewExtension starts a fresh Extension in state Unknown.
func NewExtension(id UniqueId, kind manifest.Kind, location string) *Extension {
	return &Extension{
		ID:       id,
		Kind:     kind,
		Location: location,
		sm:       NewStateMachine(),
		timings:  make(map[PackageState]time.Duration),
	}
}

// State returns the extension's current PackageState.
func (e *Extension) State() PackageState { return e.sm.Current() }

// Name returns the manifest name, or the location if not yet parsed.
func (e *Extension) Name() string {
	if e.Manifest != nil {
		return e.Manifest.Name
	}
	return e.Location
}

// Transition moves the extension to next, recording elapsed time in the
// state being exited.
func (e *Extension) Transition(next PackageState, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	current := e.sm.Current()
	if err := e.sm.Transition(next); err != nil {
		return err
	}
	if !e.stateEnteredAt.IsZero() {
		e.timings[current] += now.Sub(e.stateEnteredAt)
	}
	e.stateEnteredAt = now
	return nil
}

// AddError records an error string on the extension's error queue.
func (e *Extension) AddError(msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errors = append(e.errors, msg)
}

// AddWarning records a warning string.
func (e *Extension) AddWarning(msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.warnings = append(e.warnings, msg)
}

// Errors returns a snapshot of the error queue.
func (e *Extension) Errors() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.errors...)
}

// Warnings returns a snapshot of the warning queue.
func (e *Extension) Warnings() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.warnings...)
}

// Timings returns a snapshot of per-state elapsed time.
func (e *Extension) Timings() map[PackageState]time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[PackageState]time.Duration, len(e.timings))
	for k, v := range e.timings {
		out[k] = v
	}
	return out
}

// TotalTime sums every recorded per-state duration.
func (e *Extension) TotalTime() time.Duration {
	var total time.Duration
	for _, d := range e.Timings() {
		total += d
	}
	return total
}

// Snapshot is a read-only, JSON-friendly view of an Extension for
// diagnostics consumers (internal/lifecycle/diag) that must not hold a
// reference to the live Extension or its mutex.
type Snapshot struct {
	ID       UniqueId `json:"id"`
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	State    string   `json:"state"`
	Location string   `json:"location"`
	Version  string   `json:"version,omitempty"`
	Language string   `json:"language,omitempty"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	TotalMs  float64  `json:"total_ms"`
}

// Snapshot renders e into its diagnostics view.
func (e *Extension) Snapshot() Snapshot {
	s := Snapshot{
		ID:       e.ID,
		Name:     e.Name(),
		Kind:     e.Kind.String(),
		State:    e.State().String(),
		Location: e.Location,
		Errors:   e.Errors(),
		Warnings: e.Warnings(),
		TotalMs:  e.TotalTime().Seconds() * 1000,
	}
	if e.Manifest != nil {
		s.Version = e.Manifest.Version.String()
		s.Language = e.Manifest.Language
	}
	return s
}
