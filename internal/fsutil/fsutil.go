// Package fsutil is the default filesystem collaborator (§6): an
// io/fs-plus-os implementation of plugify.FileSystem, so the engine never
// touches the OS filesystem directly and a host can substitute an
// embed.FS-backed or network-backed implementation instead.
package fsutil

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/plugify-dev/plugify/pkg/plugify"
)

// Default is the stdlib-backed plugify.FileSystem implementation.
type Default struct{}

var _ plugify.FileSystem = Default{}

// New constructs the default filesystem collaborator.
func New() *Default { return &Default{} }

func (Default) ReadTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", wrapNotFound(path, err)
	}
	return string(data), nil
}

func (Default) ReadBinaryFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapNotFound(path, err)
	}
	return data, nil
}

func (Default) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (Default) IsDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (Default) IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Walk iterates root per opts, mirroring the teacher's discovery.go
// filepath.Walk scan loop but generalized with a depth limit, an extension
// filter, and an arbitrary predicate rather than a single hardcoded ".so"
// suffix check.
func (Default) Walk(root string, opts plugify.WalkOptions) ([]plugify.DirEntry, error) {
	var entries []plugify.DirEntry
	rootDepth := strings.Count(filepath.Clean(root), string(filepath.Separator))

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries, matching the teacher's tolerant scan
		}
		if path == root {
			return nil
		}
		if d.IsDir() {
			if !opts.Recursive {
				return filepath.SkipDir
			}
			if opts.MaxDepth > 0 {
				depth := strings.Count(filepath.Clean(path), string(filepath.Separator)) - rootDepth
				if depth >= opts.MaxDepth {
					return filepath.SkipDir
				}
			}
		}
		entry := plugify.DirEntry{Path: path, Name: d.Name(), IsDir: d.IsDir()}
		if !d.IsDir() && len(opts.ExtensionFilter) > 0 && !hasAnyExt(d.Name(), opts.ExtensionFilter) {
			return nil
		}
		if opts.Predicate != nil && !opts.Predicate(entry) {
			return nil
		}
		entries = append(entries, entry)
		return nil
	}

	if err := filepath.WalkDir(root, walkFn); err != nil {
		return nil, err
	}
	return entries, nil
}

func hasAnyExt(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.EqualFold(filepath.Ext(name), ext) {
			return true
		}
	}
	return false
}

func (Default) FindByGlob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

func (Default) Create(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return f.Close()
}

func (Default) Remove(path string) error { return os.Remove(path) }

func (Default) CreateDir(path string) error { return os.MkdirAll(path, 0o755) }

func (Default) RemoveAll(path string) error { return os.RemoveAll(path) }

func (Default) Copy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return wrapNotFound(src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

func (Default) Move(src, dst string) error { return os.Rename(src, dst) }

func wrapNotFound(path string, err error) error {
	if os.IsNotExist(err) {
		return &fileError{path: path, cause: plugify.ErrFileNotFound}
	}
	return err
}

type fileError struct {
	path  string
	cause error
}

func (e *fileError) Error() string { return "fsutil: " + e.path + ": " + e.cause.Error() }
func (e *fileError) Unwrap() error { return e.cause }
