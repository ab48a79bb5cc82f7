package msl

import "fmt"

// namer assigns MSL identifiers to GLSL names. A GLSL name keeps one MSL
// name for the whole unit.
type namer struct {
	usedNames map[string]struct{}
	names     map[string]string
	counter   uint32
}

func newNamer() *namer {
	n := &namer{
		usedNames: make(map[string]struct{}),
		names:     make(map[string]string),
	}
	for _, name := range generatedNames {
		n.usedNames[name] = struct{}{}
	}
	return n
}

// name returns the MSL identifier for the GLSL identifier source.
func (n *namer) name(source string) string {
	if name, ok := n.names[source]; ok {
		return name
	}
	name := n.call(source)
	n.names[source] = name
	return name
}

// call generates a unique name based on the given base.
func (n *namer) call(base string) string {
	escaped := Escape(base)
	if _, used := n.usedNames[escaped]; !used {
		n.usedNames[escaped] = struct{}{}
		return escaped
	}
	for {
		n.counter++
		candidate := fmt.Sprintf("%s_%d", escaped, n.counter)
		if _, used := n.usedNames[candidate]; !used {
			n.usedNames[candidate] = struct{}{}
			return candidate
		}
	}
}
