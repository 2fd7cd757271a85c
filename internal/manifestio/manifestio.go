// Package manifestio is the default manifest-parser collaborator (§6): it
// decodes a .pplugin/.pmodule file's bytes into a manifest.Manifest,
// sniffing JSON vs. YAML rather than trusting the file extension, since the
// spec only requires the extension to distinguish Plugin vs. Module, not
// format.
package manifestio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/plugify-dev/plugify/pkg/manifest"
	"github.com/plugify-dev/plugify/pkg/version"
)

// Default is the JSON+YAML manifest.Parser implementation.
type Default struct{}

// New constructs the default manifest parser.
func New() *Default { return &Default{} }

var _ manifest.Parser = Default{}

// rawManifest mirrors the manifest file format documented in §6: a flat
// JSON/YAML object whose fields map directly onto manifest.Manifest,
// distinguishing Plugin vs. Module by which of entry/runtime is present
// (the file extension is origin-path metadata, not something this parser
// inspects).
type rawManifest struct {
	Name        string            `json:"name" yaml:"name"`
	Version     string            `json:"version" yaml:"version"`
	Language    string            `json:"language" yaml:"language"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Author      string            `json:"author,omitempty" yaml:"author,omitempty"`
	Website     string            `json:"website,omitempty" yaml:"website,omitempty"`
	License     string            `json:"license,omitempty" yaml:"license,omitempty"`
	Platforms   []string          `json:"platforms,omitempty" yaml:"platforms,omitempty"`
	Dependencies []rawDependency  `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Conflicts    []rawConflict    `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	Obsoletes    []string         `json:"obsoletes,omitempty" yaml:"obsoletes,omitempty"`

	Entry   string       `json:"entry,omitempty" yaml:"entry,omitempty"`
	Methods []rawMethod  `json:"methods,omitempty" yaml:"methods,omitempty"`

	Runtime     string   `json:"runtime,omitempty" yaml:"runtime,omitempty"`
	Directories []string `json:"directories,omitempty" yaml:"directories,omitempty"`

	Extra map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

type rawConstraint struct {
	Op      string `json:"op" yaml:"op"`
	Version string `json:"version" yaml:"version"`
}

type rawDependency struct {
	Name        string          `json:"name" yaml:"name"`
	Constraints []rawConstraint `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Optional    bool            `json:"optional,omitempty" yaml:"optional,omitempty"`
}

type rawConflict struct {
	Name        string          `json:"name" yaml:"name"`
	Constraints []rawConstraint `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

type rawProperty struct {
	Type        string       `json:"type" yaml:"type"`
	IsReference bool         `json:"ref,omitempty" yaml:"ref,omitempty"`
	Prototype   string       `json:"prototype,omitempty" yaml:"prototype,omitempty"`
	Enum        *rawEnum     `json:"enum,omitempty" yaml:"enum,omitempty"`
}

type rawEnum struct {
	Name   string           `json:"name" yaml:"name"`
	Values []rawEnumValue   `json:"values" yaml:"values"`
}

type rawEnumValue struct {
	Name  string `json:"name" yaml:"name"`
	Value int64  `json:"value" yaml:"value"`
}

type rawMethod struct {
	Name              string        `json:"name" yaml:"name"`
	FunctionName      string        `json:"funcName,omitempty" yaml:"funcName,omitempty"`
	CallingConvention string        `json:"callConv,omitempty" yaml:"callConv,omitempty"`
	Params            []rawProperty `json:"params,omitempty" yaml:"params,omitempty"`
	Return            rawProperty   `json:"return" yaml:"return"`
	VarIndex          *int          `json:"varIndex,omitempty" yaml:"varIndex,omitempty"`
}

// Parse implements manifest.Parser.
func (Default) Parse(data []byte, originPath string) (*manifest.Manifest, error) {
	var raw rawManifest
	if err := decode(data, &raw); err != nil {
		return nil, &manifest.InvalidManifestError{Origin: originPath, Message: err.Error()}
	}

	if raw.Name == "" || raw.Version == "" || raw.Language == "" {
		return nil, &manifest.InvalidManifestError{Origin: originPath, Message: "name, version and language are required"}
	}
	v, err := version.Parse(raw.Version)
	if err != nil {
		return nil, &manifest.InvalidManifestError{Origin: originPath, Message: fmt.Sprintf("invalid version: %v", err)}
	}

	isModule := raw.Runtime != ""
	isPlugin := raw.Entry != ""
	if isModule == isPlugin {
		return nil, &manifest.InvalidManifestError{Origin: originPath, Message: "manifest must set exactly one of entry (plugin) or runtime (module)"}
	}

	m := &manifest.Manifest{
		Name:        raw.Name,
		Version:     v,
		Language:    raw.Language,
		Description: raw.Description,
		Author:      raw.Author,
		Website:     raw.Website,
		License:     raw.License,
		Platforms:   raw.Platforms,
		Obsoletes:   raw.Obsoletes,
		Extra:       raw.Extra,
	}

	for _, d := range raw.Dependencies {
		constraints, err := decodeConstraints(d.Constraints)
		if err != nil {
			return nil, &manifest.InvalidManifestError{Origin: originPath, Message: fmt.Sprintf("dependency %s: %v", d.Name, err)}
		}
		m.Dependencies = append(m.Dependencies, version.Dependency{Name: d.Name, Constraints: constraints, Optional: d.Optional})
	}
	for _, c := range raw.Conflicts {
		constraints, err := decodeConstraints(c.Constraints)
		if err != nil {
			return nil, &manifest.InvalidManifestError{Origin: originPath, Message: fmt.Sprintf("conflict %s: %v", c.Name, err)}
		}
		m.Conflicts = append(m.Conflicts, version.Conflict{Name: c.Name, Constraints: constraints})
	}

	if isModule {
		m.Kind = manifest.KindModule
		m.Runtime = raw.Runtime
		m.Directories = raw.Directories
		return m, nil
	}

	m.Kind = manifest.KindPlugin
	m.Entry = raw.Entry

	methods, err := decodeMethods(raw.Methods)
	if err != nil {
		return nil, &manifest.InvalidManifestError{Origin: originPath, Message: err.Error()}
	}
	m.Methods = methods

	table := manifest.PrototypeTable(m.Methods)
	if err := m.ResolvePrototypes(table); err != nil {
		return nil, err
	}
	return m, nil
}

func decode(data []byte, out *rawManifest) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return json.Unmarshal(trimmed, out)
	}
	return yaml.Unmarshal(data, out)
}

func decodeConstraints(raw []rawConstraint) ([]version.Constraint, error) {
	out := make([]version.Constraint, 0, len(raw))
	for _, c := range raw {
		op, err := parseOp(c.Op)
		if err != nil {
			return nil, err
		}
		v, err := version.Parse(c.Version)
		if err != nil {
			return nil, fmt.Errorf("invalid constraint version %q: %w", c.Version, err)
		}
		out = append(out, version.Constraint{Op: op, Version: v})
	}
	return out, nil
}

func parseOp(s string) (version.Op, error) {
	switch strings.ToLower(s) {
	case "", "any":
		return version.OpAny, nil
	case "=", "==", "eq":
		return version.OpEq, nil
	case "!=", "ne":
		return version.OpNe, nil
	case ">", "gt":
		return version.OpGt, nil
	case ">=", "ge":
		return version.OpGe, nil
	case "<", "lt":
		return version.OpLt, nil
	case "<=", "le":
		return version.OpLe, nil
	case "^", "compatible":
		return version.OpCompatible, nil
	default:
		return 0, fmt.Errorf("unknown constraint operator %q", s)
	}
}

func decodeMethods(raw []rawMethod) ([]manifest.Method, error) {
	out := make([]manifest.Method, len(raw))
	for i, rm := range raw {
		params := make([]manifest.Property, len(rm.Params))
		for j, rp := range rm.Params {
			p, err := decodeProperty(rp)
			if err != nil {
				return nil, fmt.Errorf("method %s param %d: %w", rm.Name, j, err)
			}
			params[j] = p
		}
		ret, err := decodeProperty(rm.Return)
		if err != nil {
			return nil, fmt.Errorf("method %s return: %w", rm.Name, err)
		}

		varIndex := manifest.NonVariadic
		if rm.VarIndex != nil {
			varIndex = *rm.VarIndex
		}

		out[i] = manifest.Method{
			Name:              rm.Name,
			FunctionName:      rm.FunctionName,
			CallingConvention: rm.CallingConvention,
			Params:            params,
			Return:            ret,
			VarIndex:          varIndex,
		}
	}
	return out, nil
}

func decodeProperty(rp rawProperty) (manifest.Property, error) {
	t, ok := manifest.ParseValueType(rp.Type)
	if !ok {
		return manifest.Property{}, fmt.Errorf("unknown value type %q", rp.Type)
	}
	p := manifest.Property{Type: t, IsReference: rp.IsReference}
	if rp.Prototype != "" {
		p.Prototype = &manifest.Method{Name: rp.Prototype}
	}
	if rp.Enum != nil {
		e := &manifest.Enum{Name: rp.Enum.Name}
		for _, v := range rp.Enum.Values {
			e.Values = append(e.Values, manifest.EnumValue{Name: v.Name, Value: v.Value})
		}
		p.Enum = e
	}
	return p, nil
}
