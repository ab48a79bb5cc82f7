package compiler

import (
	"bytes"
	"fmt"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/gogpu/translator/ir"
)

// Variable describes one interface variable of a compiled shader.
type Variable struct {
	Name string `msgpack:"name"`

	// Type is the GLSL type without array dimensions, e.g. "vec4".
	Type      string `msgpack:"type"`
	Precision string `msgpack:"precision,omitempty"`

	// ArraySize is the outermost array dimension; zero for non-arrays.
	ArraySize int `msgpack:"array_size,omitempty"`

	// Location and Binding are -1 when the shader does not set them.
	Location int `msgpack:"location"`
	Binding  int `msgpack:"binding"`

	// StaticUse is set when the shader references the variable outside
	// its declaration.
	StaticUse bool `msgpack:"static_use"`

	// Interpolation is "smooth", "flat" or "centroid" for varyings.
	Interpolation string `msgpack:"interpolation,omitempty"`
	Invariant     bool   `msgpack:"invariant,omitempty"`

	// BuiltIn is set for gl_ variables.
	BuiltIn bool `msgpack:"builtin,omitempty"`
}

// InterfaceBlock is a named block of uniforms or varyings.
type InterfaceBlock struct {
	Name      string     `msgpack:"name"`
	StaticUse bool       `msgpack:"static_use"`
	Fields    []Variable `msgpack:"fields"`
}

// Reflection holds the interface variables of a compiled shader, in
// declaration order.
type Reflection struct {
	Uniforms        []Variable       `msgpack:"uniforms"`
	Attributes      []Variable       `msgpack:"attributes"`
	InputVaryings   []Variable       `msgpack:"input_varyings"`
	OutputVaryings  []Variable       `msgpack:"output_varyings"`
	OutputVariables []Variable       `msgpack:"output_variables"`
	InterfaceBlocks []InterfaceBlock `msgpack:"interface_blocks"`

	// LocalSize is the work-group size of a compute shader.
	LocalSize [3]int `msgpack:"local_size,omitempty"`
}

// MarshalReflection encodes r as MessagePack.
func MarshalReflection(r *Reflection) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("compiler: encode reflection: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalReflection decodes MessagePack written by MarshalReflection.
func UnmarshalReflection(data []byte) (*Reflection, error) {
	var r Reflection
	if err := msgpack.NewDecoder(bytes.NewReader(data)).Decode(&r); err != nil {
		return nil, fmt.Errorf("compiler: decode reflection: %w", err)
	}
	return &r, nil
}

// useCounter counts references to each symbol.
type useCounter struct {
	ir.BaseVisitor
	uses map[ir.SymbolID]int

	// builtins maps the qualifier of each referenced built-in variable
	// to its symbol.
	builtins map[ir.Qualifier]*ir.Symbol
	order    []ir.Qualifier
}

func (c *useCounter) VisitSymbol(_ *ir.Traverser, n *ir.Symbol) {
	c.uses[n.ID]++
	if n.ID.IsBuiltin() {
		q := n.Type().Qualifier
		if _, seen := c.builtins[q]; !seen {
			c.builtins[q] = n
			c.order = append(c.order, q)
		}
	}
}

func countUses(root *ir.Block) *useCounter {
	c := &useCounter{uses: make(map[ir.SymbolID]int), builtins: make(map[ir.Qualifier]*ir.Symbol)}
	ir.NewTraverser(true, false, false).Traverse(root, c)
	return c
}

func interpolationOf(q ir.Qualifier) string {
	switch q {
	case ir.QualFlatIn, ir.QualFlatOut:
		return "flat"
	case ir.QualCentroidIn, ir.QualCentroidOut:
		return "centroid"
	}
	return "smooth"
}

func newVariable(sym *ir.Symbol) (Variable, error) {
	typ := sym.Type()
	v := Variable{
		Name:      sym.Name,
		Type:      typ.BaseName(),
		Precision: typ.Precision.String(),
		Location:  typ.Layout.Location,
		Binding:   typ.Layout.Binding,
		Invariant: typ.Invariant,
		BuiltIn:   sym.ID.IsBuiltin(),
	}
	if typ.IsArray() {
		n, err := safecast.Conv[int](typ.ArraySizes[0])
		if err != nil {
			return v, fmt.Errorf("reflection: array size of %q: %w", sym.Name, err)
		}
		v.ArraySize = n
	}
	return v, nil
}

// collectReflection lists the interface variables declared at global
// scope of root, plus the built-in interface variables the shader uses.
func collectReflection(root *ir.Block, stage ir.ShaderStage, localSize [3]int) (*Reflection, error) {
	r := &Reflection{}
	if stage == ir.StageCompute {
		r.LocalSize = localSize
	}
	c := countUses(root)
	declared := make(map[ir.SymbolID]int)
	invariant := make(map[ir.SymbolID]bool)
	var syms []*ir.Symbol
	for _, s := range root.Statements {
		decl, ok := s.(*ir.Declaration)
		if !ok {
			continue
		}
		for i := range decl.Vars {
			sym := decl.DeclaredSymbol(i)
			declared[sym.ID]++
			if decl.Invariant {
				invariant[sym.ID] = true
				continue
			}
			syms = append(syms, sym)
		}
	}

	for _, sym := range syms {
		v, err := newVariable(sym)
		if err != nil {
			return nil, err
		}
		v.StaticUse = c.uses[sym.ID] > declared[sym.ID]
		v.Invariant = v.Invariant || invariant[sym.ID]
		q := sym.Type().Qualifier
		switch {
		case q == ir.QualUniform:
			r.Uniforms = append(r.Uniforms, v)
		case stage == ir.StageVertex && (q == ir.QualAttribute || q == ir.QualVertexIn):
			r.Attributes = append(r.Attributes, v)
		case stage == ir.StageFragment && q.IsVaryingIn():
			v.Interpolation = interpolationOf(q)
			r.InputVaryings = append(r.InputVaryings, v)
		case stage == ir.StageVertex && q.IsVaryingOut():
			v.Interpolation = interpolationOf(q)
			r.OutputVaryings = append(r.OutputVaryings, v)
		case stage == ir.StageFragment && q == ir.QualFragmentOut:
			r.OutputVariables = append(r.OutputVariables, v)
		}
	}

	for _, q := range c.order {
		sym := c.builtins[q]
		// Invariant redeclarations are not uses.
		if c.uses[sym.ID] <= declared[sym.ID] {
			continue
		}
		v, err := newVariable(sym)
		if err != nil {
			return nil, err
		}
		v.StaticUse = true
		v.Invariant = v.Invariant || invariant[sym.ID]
		switch q {
		case ir.QualPosition, ir.QualPointSize:
			r.OutputVaryings = append(r.OutputVaryings, v)
		case ir.QualFragCoord, ir.QualFrontFacing, ir.QualPointCoord:
			r.InputVaryings = append(r.InputVaryings, v)
		case ir.QualFragColor, ir.QualFragData, ir.QualFragDepth:
			r.OutputVariables = append(r.OutputVariables, v)
		}
	}
	return r, nil
}
