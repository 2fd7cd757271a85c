package lifecycle

import (
	"strings"
	"time"

	"github.com/plugify-dev/plugify/pkg/manifest"
	"github.com/plugify-dev/plugify/pkg/plugify"
)

const (
	pluginManifestExt = ".pplugin"
	moduleManifestExt = ".pmodule"
)

// discover walks ExtensionsDir recursively (via the filesystem
// collaborator, never the OS directly) and mints a candidate Extension for
// every .pplugin/.pmodule file found, exactly mirroring the teacher's
// discovery.go scan loop generalized from a single ".so" suffix check to
// the two manifest extensions.
func (eng *Engine) discover() error {
	if eng.cfg.FS == nil || eng.cfg.Parser == nil {
		return nil
	}
	if !eng.cfg.FS.Exists(eng.cfg.ExtensionsDir) {
		return nil // empty/missing extensions directory: Initialize succeeds with no extensions (§8 boundary behaviour)
	}

	entries, err := eng.cfg.FS.Walk(eng.cfg.ExtensionsDir, plugifyWalkOpts())
	if err != nil {
		return err
	}

	eng.mu.Lock()
	defer eng.mu.Unlock()
	for _, entry := range entries {
		if entry.IsDir {
			continue
		}
		kind, ok := kindForPath(entry.Name)
		if !ok {
			continue
		}
		eng.nextID++
		ext := NewExtension(eng.nextID, kind, entry.Path)
		_ = ext.Transition(Discovered, time.Now())
		eng.extensions[ext.ID] = ext
	}
	return nil
}

func kindForPath(name string) (manifest.Kind, bool) {
	switch {
	case strings.HasSuffix(name, pluginManifestExt):
		return manifest.KindPlugin, true
	case strings.HasSuffix(name, moduleManifestExt):
		return manifest.KindModule, true
	default:
		return 0, false
	}
}

// plugifyWalkOpts is factored out so discover's Walk call reads cleanly;
// kept recursive with no depth limit since extension trees are expected to
// be shallow (one manifest per directory).
func plugifyWalkOpts() plugify.WalkOptions {
	return plugify.WalkOptions{Recursive: true}
}

// parseAll reads and parses every Discovered extension's manifest bytes.
func (eng *Engine) parseAll() {
	eng.mu.Lock()
	pending := make([]*Extension, 0, len(eng.extensions))
	for _, e := range eng.extensions {
		pending = append(pending, e)
	}
	eng.mu.Unlock()

	for _, e := range pending {
		eng.parseOne(e)
	}
}

func (eng *Engine) parseOne(e *Extension) {
	now := time.Now()
	if err := e.Transition(Parsing, now); err != nil {
		return
	}

	data, err := eng.cfg.FS.ReadBinaryFile(e.Location)
	if err != nil {
		e.AddError(err.Error())
		_ = e.Transition(Corrupted, time.Now())
		return
	}

	m, err := eng.cfg.Parser.Parse(data, e.Location)
	if err != nil {
		e.AddError(err.Error())
		_ = e.Transition(Corrupted, time.Now())
		return
	}
	if m.Kind != e.Kind {
		e.AddError("manifest kind does not match file extension")
		_ = e.Transition(Corrupted, time.Now())
		return
	}

	e.Manifest = m
	e.Dirs = extensionDirs(eng.cfg.Dirs.Base, sanitizeDirName(m.Name))
	_ = e.Transition(Parsed, time.Now())
}
