// Package lifecycle implements the lifecycle engine (component C4): the
// per-package state machine, the dependency graph and its topological
// order, and the discover→parse→resolve→load→start→update→end scheduler
// that drives every Extension through them, with failure isolation and
// per-state timing.
package lifecycle

import "fmt"

// PackageState is the total, forward-only state machine every Extension
// moves through (§3). Illegal transitions are rejected by StateMachine.
type PackageState uint8

const (
	Unknown PackageState = iota
	Discovered
	Parsing
	Parsed
	Corrupted
	Resolving
	Resolved
	Unresolved
	Disabled
	Skipped
	Loading
	Loaded
	Failed
	Starting
	Started
	Updating
	Updated
	Ending
	Ended
	Terminated
)

var stateNames = map[PackageState]string{
	Unknown: "Unknown", Discovered: "Discovered", Parsing: "Parsing",
	Parsed: "Parsed", Corrupted: "Corrupted", Resolving: "Resolving",
	Resolved: "Resolved", Unresolved: "Unresolved", Disabled: "Disabled",
	Skipped: "Skipped", Loading: "Loading", Loaded: "Loaded", Failed: "Failed",
	Starting: "Starting", Started: "Started", Updating: "Updating",
	Updated: "Updated", Ending: "Ending", Ended: "Ended", Terminated: "Terminated",
}

func (s PackageState) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "Invalid"
}

// IsAtLeast reports whether s is the same as or later than target in the
// package's ordinary forward path for the Loaded/Started comparisons the
// spec's invariants require ("state >= Loaded", "state >= Started").
// Terminal failure/teardown states compare false against any ordinary
// milestone, since a Failed or Terminated extension no longer satisfies
// "loaded" for dependency purposes.
func (s PackageState) IsAtLeast(target PackageState) bool {
	rank := map[PackageState]int{
		Unknown: 0, Discovered: 1, Parsing: 2, Parsed: 3, Resolving: 4,
		Resolved: 5, Loading: 6, Loaded: 7, Starting: 8, Started: 9,
		Updating: 10, Updated: 11,
	}
	sr, sok := rank[s]
	tr, tok := rank[target]
	if !sok || !tok {
		return s == target
	}
	return sr >= tr
}

// terminal reports whether s ends the package's forward path. Failed keeps
// one outgoing edge, the teardown move to Terminated; the others have none.
func (s PackageState) terminal() bool {
	switch s {
	case Corrupted, Unresolved, Disabled, Skipped, Failed, Terminated:
		return true
	default:
		return false
	}
}

// transitions enumerates every legal edge of the state graph from §3.
var transitions = map[PackageState]map[PackageState]bool{
	Unknown:    {Discovered: true},
	Discovered: {Parsing: true},
	Parsing:    {Parsed: true, Corrupted: true},
	Parsed:     {Resolving: true, Disabled: true},
	Resolving:  {Resolved: true, Unresolved: true, Disabled: true, Skipped: true},
	Resolved:   {Loading: true, Unresolved: true, Disabled: true},
	Loading:    {Loaded: true, Failed: true},
	Loaded:     {Starting: true, Failed: true, Ending: true},
	Starting:   {Started: true, Failed: true},
	Started:    {Updating: true, Ending: true, Failed: true},
	Updating:   {Updated: true, Failed: true},
	Updated:    {Updating: true, Ending: true, Failed: true},
	Ending:     {Ended: true},
	Ended:      {Terminated: true},
	Failed:     {Terminated: true},
}

// StateMachine enforces the legal transition graph for one Extension.
type StateMachine struct {
	current PackageState
}

// NewStateMachine starts a package in Unknown.
func NewStateMachine() *StateMachine {
	return &StateMachine{current: Unknown}
}

// Current returns the package's current state.
func (m *StateMachine) Current() PackageState { return m.current }

// Transition moves to next, or returns an error naming the illegal edge.
func (m *StateMachine) Transition(next PackageState) error {
	if !transitions[m.current][next] {
		if m.current.terminal() {
			return fmt.Errorf("lifecycle: illegal transition %s -> %s: %s is terminal", m.current, next, m.current)
		}
		return fmt.Errorf("lifecycle: illegal transition %s -> %s", m.current, next)
	}
	m.current = next
	return nil
}
