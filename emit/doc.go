// Package emit defines the contract between the compiler driver and the
// per-dialect output emitters, and the source writer they share.
//
// The driver hands every emitter a Unit: the final, validated tree plus
// the facts the passes extracted from it (target version, enabled
// extensions, work-group size, emulated helpers). An emitter is a value
// implementing Emitter; the glsl, hlsl and msl packages provide one each.
//
// All three dialects have C-like function bodies, so statements and
// expressions are written by one Writer. A Dialect supplies the spelling
// of types, names, literals and the few constructs that differ:
//
//	w := emit.NewWriter(dialect)
//	w.Function(def)
//	out := w.String()
//
// BaseDialect spells everything the GLSL way; the HLSL and MSL dialects
// embed it and override what they need.
package emit
