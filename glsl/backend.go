// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"io"

	"github.com/gogpu/translator/emit"
)

// Version represents a GLSL version.
type Version struct {
	Major uint8
	Minor uint8
	ES    bool // true for GLSL ES (OpenGL ES / WebGL)
}

// Common GLSL versions.
var (
	// Desktop OpenGL versions
	Version110 = Version{Major: 1, Minor: 10} // OpenGL 2.0
	Version120 = Version{Major: 1, Minor: 20} // OpenGL 2.1
	Version130 = Version{Major: 1, Minor: 30} // OpenGL 3.0
	Version330 = Version{Major: 3, Minor: 30} // OpenGL 3.3 Core
	Version420 = Version{Major: 4, Minor: 20} // OpenGL 4.2
	Version430 = Version{Major: 4, Minor: 30} // OpenGL 4.3 (compute shaders)
	Version460 = Version{Major: 4, Minor: 60} // OpenGL 4.6

	// OpenGL ES / WebGL versions
	VersionES100 = Version{Major: 1, Minor: 0, ES: true}  // ES 2.0 / WebGL 1.0
	VersionES300 = Version{Major: 3, Minor: 0, ES: true}  // ES 3.0 / WebGL 2.0
	VersionES310 = Version{Major: 3, Minor: 10, ES: true} // ES 3.1 (compute shaders)
)

var desktopVersions = map[int]bool{
	110: true, 120: true, 130: true, 140: true, 150: true, 330: true,
	400: true, 410: true, 420: true, 430: true, 440: true, 450: true, 460: true,
}

var esVersions = map[int]bool{100: true, 300: true, 310: true, 320: true}

// ParseVersion returns the Version with the given #version number, e.g.
// 330 or 300 with es set.
func ParseVersion(number int, es bool) (Version, error) {
	known := desktopVersions
	if es {
		known = esVersions
	}
	if !known[number] {
		if es {
			return Version{}, fmt.Errorf("glsl: unknown GLSL ES version %d", number)
		}
		return Version{}, fmt.Errorf("glsl: unknown GLSL version %d", number)
	}
	return Version{Major: uint8(number / 100), Minor: uint8(number % 100), ES: es}, nil
}

// Number returns the #version number, e.g. 330.
func (v Version) Number() int {
	return int(v.Major)*100 + int(v.Minor)
}

// String returns the version as a GLSL version directive value.
func (v Version) String() string {
	if v.ES {
		return fmt.Sprintf("%d%02d es", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d%02d", v.Major, v.Minor)
}

// VersionNumber returns just the numeric version (e.g., "330", "300").
func (v Version) VersionNumber() string {
	return fmt.Sprintf("%d%02d", v.Major, v.Minor)
}

// versionLessThan returns true if the numeric version (Major*100+Minor) is
// less than the given number.
func (v Version) versionLessThan(number int) bool {
	return v.Number() < number
}

// SupportsCompute returns true if this version supports compute shaders.
func (v Version) SupportsCompute() bool {
	if v.ES {
		return !v.versionLessThan(310)
	}
	return !v.versionLessThan(430)
}

// LegacyInterface reports whether stage inputs and outputs are spelled
// attribute and varying, and fragments write gl_FragColor.
func (v Version) LegacyInterface() bool {
	if v.ES {
		return v.versionLessThan(300)
	}
	return v.versionLessThan(130)
}

// SupportsLocation reports whether layout(location) is available.
func (v Version) SupportsLocation() bool {
	if v.ES {
		return !v.versionLessThan(300)
	}
	return !v.versionLessThan(330)
}

// SupportsBinding reports whether layout(binding) is available.
func (v Version) SupportsBinding() bool {
	if v.ES {
		return !v.versionLessThan(310)
	}
	return !v.versionLessThan(420)
}

// Options configures GLSL code generation.
type Options struct {
	// ES selects GLSL ES output. The version number comes from the unit.
	ES bool

	// Core adds "core" to the #version directive of desktop versions 1.50
	// and later.
	Core bool
}

// Emitter writes GLSL and GLSL ES.
type Emitter struct {
	options Options
}

var _ emit.Emitter = (*Emitter)(nil)

// NewEmitter returns a GLSL emitter.
func NewEmitter(options Options) *Emitter {
	return &Emitter{options: options}
}

// Emit writes u as GLSL source.
func (e *Emitter) Emit(out io.Writer, u *emit.Unit) error {
	v, err := ParseVersion(u.Version, e.options.ES)
	if err != nil {
		return emit.NewError("glsl", emit.ErrInvalidVersion, "%v", err)
	}
	w := newWriter(u, v, e.options)
	if err := w.writeUnit(); err != nil {
		return err
	}
	if _, err := io.WriteString(out, w.String()); err != nil {
		return fmt.Errorf("glsl: %w", err)
	}
	return nil
}
