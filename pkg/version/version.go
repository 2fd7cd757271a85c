// Package version implements the Plugify semantic version type and its
// dependency/conflict constraint predicates.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blang/semver"
)

// Version is a totally-ordered SemVer value: major.minor.patch[-prerelease][+build].
type Version struct {
	Major      uint64
	Minor      uint64
	Patch      uint64
	Prerelease string
	Build      string
}

// Parse decodes a SemVer string such as "1.2.3-beta.1+exp.sha.5114f85".
func Parse(s string) (Version, error) {
	v, err := semver.Parse(strings.TrimPrefix(s, "v"))
	if err != nil {
		return Version{}, fmt.Errorf("version: parse %q: %w", s, err)
	}
	return fromSemver(v), nil
}

// MustParse is Parse, panicking on error. Intended for literals in tests and
// static manifests where the version string is known to be valid.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func fromSemver(v semver.Version) Version {
	out := Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
	if len(v.Pre) > 0 {
		parts := make([]string, len(v.Pre))
		for i, p := range v.Pre {
			if p.IsNum {
				parts[i] = strconv.FormatUint(p.VersionNum, 10)
			} else {
				parts[i] = p.VersionStr
			}
		}
		out.Prerelease = strings.Join(parts, ".")
	}
	if len(v.Build) > 0 {
		out.Build = strings.Join(v.Build, ".")
	}
	return out
}

// String renders the canonical SemVer form.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than o.
// Build metadata does not participate in ordering, per SemVer.
func (v Version) Compare(o Version) int {
	if v.Major != o.Major {
		return cmpU64(v.Major, o.Major)
	}
	if v.Minor != o.Minor {
		return cmpU64(v.Minor, o.Minor)
	}
	if v.Patch != o.Patch {
		return cmpU64(v.Patch, o.Patch)
	}
	return comparePrerelease(v.Prerelease, o.Prerelease)
}

func cmpU64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// comparePrerelease implements SemVer's rule: no prerelease > any prerelease,
// and dotted identifiers compare left to right, numeric before alphanumeric.
func comparePrerelease(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return 1
	}
	if b == "" {
		return -1
	}
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		an, aErr := strconv.ParseUint(as[i], 10, 64)
		bn, bErr := strconv.ParseUint(bs[i], 10, 64)
		switch {
		case aErr == nil && bErr == nil:
			return cmpU64(an, bn)
		case aErr == nil:
			return -1 // numeric identifiers have lower precedence
		case bErr == nil:
			return 1
		default:
			if as[i] < bs[i] {
				return -1
			}
			return 1
		}
	}
	return cmpU64(uint64(len(as)), uint64(len(bs)))
}

func (v Version) Equal(o Version) bool      { return v.Compare(o) == 0 }
func (v Version) LessThan(o Version) bool   { return v.Compare(o) < 0 }
func (v Version) GreaterThan(o Version) bool { return v.Compare(o) > 0 }
func (v Version) AtLeast(o Version) bool    { return v.Compare(o) >= 0 }
func (v Version) AtMost(o Version) bool     { return v.Compare(o) <= 0 }
