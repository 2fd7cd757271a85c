package lifecycle_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugify-dev/plugify/internal/lifecycle"
	"github.com/plugify-dev/plugify/pkg/manifest"
)

func TestStateMachineRejectsIllegalTransition(t *testing.T) {
	sm := lifecycle.NewStateMachine()
	assert.Equal(t, lifecycle.Unknown, sm.Current())

	require.NoError(t, sm.Transition(lifecycle.Discovered))
	err := sm.Transition(lifecycle.Loaded)
	assert.Error(t, err)
	assert.Equal(t, lifecycle.Discovered, sm.Current(), "an illegal transition must not change state")
}

func TestStateMachineHappyPath(t *testing.T) {
	sm := lifecycle.NewStateMachine()
	path := []lifecycle.PackageState{
		lifecycle.Discovered, lifecycle.Parsing, lifecycle.Parsed, lifecycle.Resolving,
		lifecycle.Resolved, lifecycle.Loading, lifecycle.Loaded, lifecycle.Starting,
		lifecycle.Started, lifecycle.Ending, lifecycle.Ended, lifecycle.Terminated,
	}
	for _, next := range path {
		require.NoError(t, sm.Transition(next))
	}
	assert.Equal(t, lifecycle.Terminated, sm.Current())
	assert.Error(t, sm.Transition(lifecycle.Started), "Terminated is terminal")
}

func TestExtensionTimingAccumulatesPerState(t *testing.T) {
	e := lifecycle.NewExtension(1, manifest.KindPlugin, "/x/a.pplugin")

	t0 := time.Now()
	require.NoError(t, e.Transition(lifecycle.Discovered, t0))
	require.NoError(t, e.Transition(lifecycle.Parsing, t0.Add(10*time.Millisecond)))
	require.NoError(t, e.Transition(lifecycle.Parsed, t0.Add(30*time.Millisecond)))

	timings := e.Timings()
	assert.Equal(t, 10*time.Millisecond, timings[lifecycle.Discovered])
	assert.Equal(t, 20*time.Millisecond, timings[lifecycle.Parsing])
	assert.Equal(t, 30*time.Millisecond, e.TotalTime())
}

func TestGraphTopoSortOrdersDependencyFirst(t *testing.T) {
	g := lifecycle.NewGraph()
	a := lifecycle.NewExtension(1, manifest.KindPlugin, "a")
	b := lifecycle.NewExtension(2, manifest.KindPlugin, "b")
	c := lifecycle.NewExtension(3, manifest.KindPlugin, "c")
	for _, e := range []*lifecycle.Extension{a, b, c} {
		g.AddNode(e)
	}
	g.AddEdge(a.ID, b.ID) // b depends on a
	g.AddEdge(b.ID, c.ID) // c depends on b

	order, cyclic := g.TopoSort()
	require.Empty(t, cyclic)
	require.Len(t, order, 3)
	assert.Equal(t, []lifecycle.UniqueId{a.ID, b.ID, c.ID}, []lifecycle.UniqueId{order[0].ID, order[1].ID, order[2].ID})
}

func TestGraphTopoSortDetectsCycle(t *testing.T) {
	g := lifecycle.NewGraph()
	a := lifecycle.NewExtension(1, manifest.KindPlugin, "a")
	b := lifecycle.NewExtension(2, manifest.KindPlugin, "b")
	g.AddNode(a)
	g.AddNode(b)
	g.AddEdge(a.ID, b.ID)
	g.AddEdge(b.ID, a.ID)

	order, cyclic := g.TopoSort()
	assert.Empty(t, order)
	require.Len(t, cyclic, 2)
}

func TestGraphTopoSortIsDeterministicAcrossTies(t *testing.T) {
	g := lifecycle.NewGraph()
	// Three independent nodes with no edges: TopoSort must break ties by
	// UniqueId so repeated runs over the same graph agree.
	ids := []lifecycle.UniqueId{5, 1, 3}
	for _, id := range ids {
		g.AddNode(lifecycle.NewExtension(id, manifest.KindModule, "m"))
	}
	order, cyclic := g.TopoSort()
	require.Empty(t, cyclic)
	require.Len(t, order, 3)
	assert.Equal(t, []lifecycle.UniqueId{1, 3, 5}, []lifecycle.UniqueId{order[0].ID, order[1].ID, order[2].ID})
}
