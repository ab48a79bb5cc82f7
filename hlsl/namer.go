// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"
)

// namer assigns HLSL identifiers to GLSL names. Every GLSL name maps to
// one HLSL name for the whole unit, so scoping carries over unchanged.
// Used names are compared ignoring case, like FXC does for some keywords.
type namer struct {
	// usedNames holds every name handed out or reserved, in lowercase.
	usedNames map[string]struct{}

	// names caches the HLSL name of each GLSL name.
	names map[string]string

	counter uint32
}

// newNamer returns a namer with the names the emitter generates itself
// already reserved.
func newNamer() *namer {
	n := &namer{
		usedNames: make(map[string]struct{}),
		names:     make(map[string]string),
	}
	for _, name := range generatedNames {
		n.reserve(name)
	}
	return n
}

// name returns the HLSL identifier for the GLSL identifier source.
func (n *namer) name(source string) string {
	if name, ok := n.names[source]; ok {
		return name
	}
	name := n.call(source)
	n.names[source] = name
	return name
}

// call generates a unique name based on the given base.
// It escapes reserved keywords and adds numeric suffixes if needed.
func (n *namer) call(base string) string {
	escaped := Escape(base)

	lowerEscaped := strings.ToLower(escaped)
	if !n.isUsedLower(lowerEscaped) {
		n.usedNames[lowerEscaped] = struct{}{}
		return escaped
	}

	for {
		n.counter++
		candidate := fmt.Sprintf("%s_%d", escaped, n.counter)
		lowerCandidate := strings.ToLower(candidate)
		if !n.isUsedLower(lowerCandidate) {
			n.usedNames[lowerCandidate] = struct{}{}
			return candidate
		}
	}
}

func (n *namer) isUsed(name string) bool {
	return n.isUsedLower(strings.ToLower(name))
}

func (n *namer) isUsedLower(lowerName string) bool {
	_, used := n.usedNames[lowerName]
	return used
}

// reserve marks a name as used without returning it.
func (n *namer) reserve(name string) {
	n.usedNames[strings.ToLower(name)] = struct{}{}
}
