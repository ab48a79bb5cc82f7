package compiler

import (
	"fmt"
	"math/bits"
	"strings"
)

// CompileOptions is a set of option bits passed to Compile.
type CompileOptions uint32

const (
	// ObjectCode makes Compile emit translated source.
	ObjectCode CompileOptions = 1 << iota

	// Variables makes Compile collect reflection data.
	Variables

	// IntermediateTree appends a dump of the translated tree to the info
	// log.
	IntermediateTree

	// EmulateDrawID replaces gl_DrawID with the uniform angle_DrawID.
	EmulateDrawID

	// InitializeUninitializedLocals zero-initializes local variables
	// declared without an initializer.
	InitializeUninitializedLocals

	// ScalarizeVecAndMatConstructorArgs splits vector and matrix
	// arguments of vector and matrix constructors into scalars.
	ScalarizeVecAndMatConstructorArgs

	// ValidateAST checks the tree after the passes ran.
	ValidateAST

	// EmulateBuiltInFunctions replaces built-ins with known driver bugs
	// by helper functions in GLSL and ESSL output. HLSL and MSL output
	// always emulate the built-ins they cannot express.
	EmulateBuiltInFunctions

	// RemoveVertexInvariantDeclarations also drops invariant
	// redeclarations of vertex outputs for GLSL 4.20+ core output. Only
	// fragment inputs lose them by default, since removing them from
	// vertex outputs gives up invariance across programs.
	RemoveVertexInvariantDeclarations
)

var optionNames = []struct {
	bit  CompileOptions
	name string
}{
	{ObjectCode, "object-code"},
	{Variables, "variables"},
	{IntermediateTree, "intermediate-tree"},
	{EmulateDrawID, "emulate-draw-id"},
	{InitializeUninitializedLocals, "init-locals"},
	{ScalarizeVecAndMatConstructorArgs, "scalarize-constructors"},
	{ValidateAST, "validate-ast"},
	{EmulateBuiltInFunctions, "emulate-builtins"},
	{RemoveVertexInvariantDeclarations, "remove-vertex-invariant"},
}

// Has reports whether every bit of o is set.
func (c CompileOptions) Has(o CompileOptions) bool { return c&o == o }

// String lists the set options separated by "|".
func (c CompileOptions) String() string {
	if c == 0 {
		return "none"
	}
	names := make([]string, 0, bits.OnesCount32(uint32(c)))
	rest := c
	for _, o := range optionNames {
		if c.Has(o.bit) {
			names = append(names, o.name)
			rest &^= o.bit
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("%#x", uint32(rest)))
	}
	return strings.Join(names, "|")
}

// OptionNames returns the names ParseOptions accepts.
func OptionNames() []string {
	names := make([]string, len(optionNames))
	for i, o := range optionNames {
		names[i] = o.name
	}
	return names
}

// ParseOptions parses option names as String writes them. Names may be
// separated by "|" or commas.
func ParseOptions(s string) (CompileOptions, error) {
	var c CompileOptions
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' })
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" || f == "none" {
			continue
		}
		found := false
		for _, o := range optionNames {
			if o.name == f {
				c |= o.bit
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("compiler: unknown option %q", f)
		}
	}
	return c, nil
}
