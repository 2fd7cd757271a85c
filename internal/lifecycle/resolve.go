package lifecycle

import (
	"fmt"
	"runtime"
	"time"

	"github.com/plugify-dev/plugify/pkg/manifest"
)

// resolveAll runs platform filtering, language-module matching, and
// dependency/conflict/obsoletes checking for every Parsed extension.
func (eng *Engine) resolveAll() {
	eng.mu.Lock()
	pending := make([]*Extension, 0, len(eng.extensions))
	for _, e := range eng.extensions {
		if e.State() == Parsed {
			pending = append(pending, e)
		}
	}
	eng.mu.Unlock()

	var obsoletes []string
	for _, e := range pending {
		obsoletes = append(obsoletes, eng.resolveOne(e)...)
	}
	for _, name := range obsoletes {
		if target := eng.findByName(name); target != nil {
			eng.disable(target)
		}
	}
}

func (eng *Engine) resolveOne(e *Extension) []string {
	now := time.Now()
	if err := e.Transition(Resolving, now); err != nil {
		return nil
	}

	hostOS, hostArch := eng.cfg.HostOS, eng.cfg.HostArch
	if hostOS == "" {
		hostOS = runtime.GOOS
	}
	if hostArch == "" {
		hostArch = runtime.GOARCH
	}
	if !e.Manifest.MatchesPlatform(hostOS, hostArch) {
		_ = e.Transition(Skipped, time.Now())
		return nil
	}

	if e.Kind == manifest.KindPlugin {
		mod := eng.findLanguageModule(e.Manifest.Language)
		if mod == nil {
			e.AddError(fmt.Sprintf("no language module found for %q", e.Manifest.Language))
			_ = e.Transition(Unresolved, time.Now())
			return nil
		}
		e.LanguageModule = mod
	}

	for _, dep := range e.Manifest.Dependencies {
		target := eng.findByName(dep.Name)
		if target == nil || target.Manifest == nil {
			if dep.Optional {
				e.AddWarning(fmt.Sprintf("optional dependency %q not found", dep.Name))
				continue
			}
			e.AddError(fmt.Sprintf("missing required dependency %q", dep.Name))
			_ = e.Transition(Unresolved, time.Now())
			return nil
		}
		if !dep.Satisfies(target.Manifest.Version) {
			if dep.Optional {
				e.AddWarning(fmt.Sprintf("optional dependency %q does not satisfy version constraints", dep.Name))
				continue
			}
			e.AddError(fmt.Sprintf("dependency %q version %s does not satisfy constraints", dep.Name, target.Manifest.Version))
			_ = e.Transition(Unresolved, time.Now())
			return nil
		}
	}

	for _, conflict := range e.Manifest.Conflicts {
		target := eng.findByName(conflict.Name)
		if target == nil || target.Manifest == nil {
			continue
		}
		if conflict.Triggered(target.Manifest.Version) {
			e.AddError(fmt.Sprintf("conflicts with %q", conflict.Name))
			_ = e.Transition(Unresolved, time.Now())
			return nil
		}
	}

	_ = e.Transition(Resolved, time.Now())
	return append([]string(nil), e.Manifest.Obsoletes...)
}

func (eng *Engine) disable(e *Extension) {
	if e.State() == Resolved || e.State() == Parsed {
		_ = e.Transition(Disabled, time.Now())
	}
}

func (eng *Engine) findByName(name string) *Extension {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	for _, e := range eng.extensions {
		if e.Manifest != nil && e.Manifest.Name == name {
			return e
		}
	}
	return nil
}

func (eng *Engine) findLanguageModule(language string) *Extension {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	for _, e := range eng.extensions {
		if e.Kind == manifest.KindModule && e.Manifest != nil && e.Manifest.Language == language {
			return e
		}
	}
	return nil
}

// buildGraph assembles the dependency DAG over Resolved extensions and
// returns its topological order plus any cyclic remainder.
func (eng *Engine) buildGraph() (order []*Extension, cyclic []*Extension) {
	eng.mu.Lock()
	resolved := make([]*Extension, 0, len(eng.extensions))
	for _, e := range eng.extensions {
		if e.State() == Resolved {
			resolved = append(resolved, e)
		}
	}
	eng.mu.Unlock()

	g := NewGraph()
	for _, e := range resolved {
		g.AddNode(e)
	}
	for _, e := range resolved {
		if e.Kind == manifest.KindPlugin && e.LanguageModule != nil {
			g.AddEdge(e.LanguageModule.ID, e.ID)
		}
		for _, dep := range e.Manifest.Dependencies {
			target := eng.findByName(dep.Name)
			if target != nil && target.State() == Resolved {
				g.AddEdge(target.ID, e.ID)
			}
		}
	}
	return g.TopoSort()
}

func (eng *Engine) poisonCycles(cyclic []*Extension) {
	for _, e := range cyclic {
		e.AddError("circular dependency")
		_ = e.Transition(Unresolved, time.Now())
	}
}
