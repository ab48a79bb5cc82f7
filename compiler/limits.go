package compiler

import "github.com/gogpu/translator/ir"

// vectorCount is the number of four-component registers a variable of
// typ occupies without packing.
func vectorCount(typ ir.Type) int {
	if typ.IsMatrix() {
		return int(typ.Cols()) * typ.ArrayElements()
	}
	return typ.ArrayElements()
}

// limitCounter sums the registers of one class of interface variable and
// reports the declaration that overflows the limit.
type limitCounter struct {
	what  string
	limit int
	used  int
	done  bool
}

func (c *limitCounter) add(log *infoLog, sym *ir.Symbol, n int) {
	c.used += n
	if c.used > c.limit && !c.done {
		c.done = true
		log.errorf(sym.Pos(), "'%s' : too many %s (%d), the maximum is %d", sym.Name, c.what, c.used, c.limit)
	}
}

// checkResourceLimits checks the global declarations of root against r.
// Errors go to log; it reports whether all limits hold.
func checkResourceLimits(log *infoLog, root *ir.Block, stage ir.ShaderStage, version int, r Resources) bool {
	before := log.errors

	uniforms := &limitCounter{what: "uniform vectors", limit: r.MaxFragmentUniformVectors}
	samplers := &limitCounter{what: "samplers", limit: r.MaxTextureImageUnits}
	attributes := &limitCounter{what: "attributes", limit: r.MaxVertexAttribs}
	varyings := &limitCounter{what: "varying vectors", limit: r.MaxVaryingVectors}
	switch stage {
	case ir.StageVertex:
		uniforms.limit = r.MaxVertexUniformVectors
		samplers.limit = r.MaxVertexTextureImageUnits
		if version >= 300 {
			varyings.limit = r.MaxVertexOutputVectors
		}
	case ir.StageFragment:
		if version >= 300 {
			varyings.limit = r.MaxFragmentInputVectors
		}
	case ir.StageCompute:
		uniforms.what = "uniform components"
		uniforms.limit = r.MaxComputeUniformComponents
		samplers.limit = r.MaxComputeTextureImageUnits
	}

	for _, s := range root.Statements {
		decl, ok := s.(*ir.Declaration)
		if !ok || decl.Invariant {
			continue
		}
		for i := range decl.Vars {
			sym := decl.DeclaredSymbol(i)
			typ := sym.Type()
			q := typ.Qualifier
			switch {
			case q == ir.QualUniform && typ.Basic.IsSampler():
				samplers.add(log, sym, typ.ArrayElements())
			case q == ir.QualUniform && stage == ir.StageCompute:
				uniforms.add(log, sym, typ.ComponentCount()*typ.ArrayElements())
			case q == ir.QualUniform:
				uniforms.add(log, sym, vectorCount(typ))
			case stage == ir.StageVertex && (q == ir.QualAttribute || q == ir.QualVertexIn):
				attributes.add(log, sym, vectorCount(typ))
			case stage == ir.StageVertex && q.IsVaryingOut(),
				stage == ir.StageFragment && q.IsVaryingIn():
				varyings.add(log, sym, vectorCount(typ))
			}
		}
	}
	return log.errors == before
}
