// Package passes holds the tree rewrites the compiler runs between parsing
// and emission.
//
// Every pass walks the tree with an ir.Traverser, queues its edits, and
// applies them with UpdateTree once the walk is over. Passes that add
// variables register them in the compilation's symbol table as internal
// symbols so that later passes and the emitters resolve them like any
// other variable.
//
// Passes:
//
//   - RemoveInvariantDeclaration drops invariant redeclarations that
//     desktop GLSL 4.20 and later reject.
//   - EmulateGLDrawID turns reads of gl_DrawID into reads of a uniform.
//   - ResolveTargetVersion computes the #version of GLSL and ESSL output.
//   - InitializeUninitializedLocals gives every local a zero initializer.
//   - ScalarizeVecAndMatConstructorArgs splits vector and matrix
//     constructor arguments into scalars.
package passes
