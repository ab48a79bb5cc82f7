// Package ir defines the intermediate representation for the translator.
//
// The IR is an abstract syntax tree of typed nodes produced by the ESSL
// frontend, rewritten in place by transformation passes and read by the
// output emitters.
//
// # Structure
//
// A translation unit is a *Block whose statements are global
// declarations and function definitions. Node kinds form a closed set:
//   - Expressions: Symbol, ConstantUnion, Binary, Unary, Ternary, Swizzle,
//     Aggregate (calls, constructors and built-in functions)
//   - Statements: Block, Declaration, FunctionPrototype,
//     FunctionDefinition, Selection, Loop, Branch
//
// Every expression carries a full semantic Type. Symbols refer to their
// Entry by SymbolID: built-ins live in a frozen, process-wide
// BuiltinTable; user and compiler-synthesized symbols live in the Arena of
// one compilation. Arena handles encode a generation, so a handle kept
// past Arena.Reset is caught instead of aliasing a new entry.
//
// # Transformations
//
// Passes walk the tree with a Traverser and a Visitor. Structural edits
// are queued during the walk and applied together by
// Traverser.UpdateTree. Two edits to the same node, or an edit whose
// target is no longer where it was, panic with *InternalError.
//
// # Validation
//
// Validate checks tree invariants after the passes ran: no node shared
// between parents, handles that resolve, well-formed declarations and
// matching return types. Dump renders the tree for debugging.
package ir
