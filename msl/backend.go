package msl

import (
	"fmt"
	"io"

	"github.com/gogpu/translator/emit"
)

// Version represents an MSL language version.
type Version struct {
	Major uint8
	Minor uint8
}

// Common MSL versions.
var (
	Version1_2 = Version{Major: 1, Minor: 2}
	Version2_0 = Version{Major: 2, Minor: 0}
	Version2_1 = Version{Major: 2, Minor: 1}
	Version2_3 = Version{Major: 2, Minor: 3}
	Version3_0 = Version{Major: 3, Minor: 0}
)

var knownVersions = []Version{Version1_2, Version2_0, Version2_1, Version2_3, Version3_0}

// String returns the version as "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Less reports whether v is older than o.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

// ParseVersion parses "major.minor", e.g. "2.1".
func ParseVersion(s string) (Version, error) {
	var v Version
	if _, err := fmt.Sscanf(s, "%d.%d", &v.Major, &v.Minor); err != nil {
		return Version{}, fmt.Errorf("msl: invalid version %q", s)
	}
	for _, k := range knownVersions {
		if k == v {
			return v, nil
		}
	}
	return Version{}, fmt.Errorf("msl: unknown version %q", s)
}

// Options configures MSL code generation.
type Options struct {
	// LangVersion is the target MSL version.
	// Defaults to Version2_1 if zero.
	LangVersion Version
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{LangVersion: Version2_1}
}

// Emitter writes Metal Shading Language.
type Emitter struct {
	options Options
}

var _ emit.Emitter = (*Emitter)(nil)

// NewEmitter returns an MSL emitter.
func NewEmitter(options Options) *Emitter {
	if options.LangVersion == (Version{}) {
		options.LangVersion = Version2_1
	}
	return &Emitter{options: options}
}

// Emit writes u as MSL source. Nothing is written on error.
func (e *Emitter) Emit(out io.Writer, u *emit.Unit) error {
	known := false
	for _, k := range knownVersions {
		known = known || k == e.options.LangVersion
	}
	if !known {
		return emit.NewError("msl", emit.ErrInvalidVersion, "unknown MSL version %s", e.options.LangVersion)
	}
	w := newWriter(u, e.options)
	if err := w.writeUnit(); err != nil {
		return err
	}
	if _, err := io.WriteString(out, w.String()); err != nil {
		return fmt.Errorf("msl: %w", err)
	}
	return nil
}
