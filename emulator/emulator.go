// Package emulator replaces calls to built-in functions that a target
// implements incorrectly, or not at all, with calls to generated helper
// functions.
//
// An Emulator holds a registry of helper definitions keyed by operator and
// parameter shapes. MarkBuiltInFunctionsForEmulation scans a tree, renames
// every matching call to "<name>_emu" and records the helpers in first-use
// order; OutputEmulatedFunctions then writes those helpers, each after the
// helper it depends on, ahead of the translated shader.
package emulator

import (
	"fmt"
	"io"

	"github.com/gogpu/translator/ir"
)

// Suffix is appended to the name of an emulated call.
const Suffix = "_emu"

// DependencyKind classifies a registration made with AddFunction.
type DependencyKind uint8

const (
	// NoDependency registers a standalone helper.
	NoDependency DependencyKind = iota
	// IsDependency registers a helper other helpers build on. It becomes
	// the dependency of every IsDependent registration that follows.
	IsDependency
	// IsDependent registers a helper that calls the most recent
	// IsDependency helper.
	IsDependent
)

type function struct {
	key  Key
	text string
	dep  *function
	used bool
}

// Emulator is a registry of emulated built-in functions plus the usage
// recorded for one compilation.
type Emulator struct {
	functions map[string]*function
	used      []*function
	lastDep   *function

	precision       string
	definePrecision bool
	fragmentGuard   bool
}

// New returns an empty emulator.
func New() *Emulator {
	return &Emulator{functions: make(map[string]*function)}
}

// DefinePrecision makes OutputEmulatedFunctions start with
// "#define emu_precision <p>". GLSL helper texts spell their precision as
// emu_precision so one text serves desktop GLSL (p empty) and ESSL.
func (e *Emulator) DefinePrecision(p string) {
	e.precision = p
	e.definePrecision = true
	e.fragmentGuard = false
}

// DefineFragmentPrecision defines emu_precision for ESSL 1.00 fragment
// shaders: highp when GL_FRAGMENT_PRECISION_HIGH is defined, else mediump.
func (e *Emulator) DefineFragmentPrecision() {
	e.precision = "highp"
	e.definePrecision = true
	e.fragmentGuard = true
}

// AddEmulatedFunction registers text as the helper for key. The text must
// define a function named after the key's operator plus Suffix.
func (e *Emulator) AddEmulatedFunction(key Key, text string) {
	e.add(key, text, nil)
}

// AddEmulatedFunctionWithDependency registers a helper that calls the
// already registered helper dep.
func (e *Emulator) AddEmulatedFunctionWithDependency(dep, key Key, text string) {
	d, ok := e.functions[dep.String()]
	if !ok {
		panic(ir.InternalErrorf("emulated %s depends on unregistered %s", key, dep))
	}
	e.add(key, text, d)
}

// AddFunction registers a helper with an implicit dependency: see
// IsDependency and IsDependent.
func (e *Emulator) AddFunction(kind DependencyKind, key Key, text string) {
	switch kind {
	case IsDependency:
		e.lastDep = e.add(key, text, nil)
	case IsDependent:
		if e.lastDep == nil {
			panic(ir.InternalErrorf("emulated %s registered as dependent before any dependency", key))
		}
		e.add(key, text, e.lastDep)
	default:
		e.add(key, text, nil)
	}
}

func (e *Emulator) add(key Key, text string, dep *function) *function {
	s := key.String()
	if _, dup := e.functions[s]; dup {
		panic(ir.InternalErrorf("emulated %s registered twice", s))
	}
	f := &function{key: key, text: text, dep: dep}
	e.functions[s] = f
	return f
}

// Registered reports whether key has a helper.
func (e *Emulator) Registered(key Key) bool {
	_, ok := e.functions[key.String()]
	return ok
}

// Len returns the number of registered helpers.
func (e *Emulator) Len() int { return len(e.functions) }

// IsUsed reports whether the last scan marked key.
func (e *Emulator) IsUsed(key Key) bool {
	f, ok := e.functions[key.String()]
	return ok && f.used
}

// UsedKeys returns the marked keys in output order.
func (e *Emulator) UsedKeys() []Key {
	keys := make([]Key, len(e.used))
	for i, f := range e.used {
		keys[i] = f.key
	}
	return keys
}

// IsOutputEmpty reports whether OutputEmulatedFunctions would write
// nothing.
func (e *Emulator) IsOutputEmpty() bool { return len(e.used) == 0 }

func (e *Emulator) markUsed(f *function) {
	if f.used {
		return
	}
	if f.dep != nil {
		e.markUsed(f.dep)
	}
	f.used = true
	e.used = append(e.used, f)
}

// Cleanup forgets the usage recorded by previous scans. Registrations are
// kept.
func (e *Emulator) Cleanup() {
	for _, f := range e.used {
		f.used = false
	}
	e.used = nil
}

// MarkBuiltInFunctionsForEmulation walks root once, marks every built-in
// call whose operator and argument shapes have a helper, and renames those
// calls to their helper. It returns the number of renamed calls.
func (e *Emulator) MarkBuiltInFunctionsForEmulation(root *ir.Block) int {
	if len(e.functions) == 0 {
		return 0
	}
	m := &marker{e: e}
	t := ir.NewTraverser(true, false, false)
	t.Traverse(root, m)
	t.UpdateTree()
	return m.renamed
}

type marker struct {
	ir.BaseVisitor
	e       *Emulator
	renamed int
}

func (m *marker) VisitAggregate(t *ir.Traverser, _ ir.Visit, n *ir.Aggregate) bool {
	if !n.Op.IsBuiltinFunction() {
		return true
	}
	key, ok := keyOf(n)
	if !ok {
		return true
	}
	f, ok := m.e.functions[key.String()]
	if !ok {
		return true
	}
	m.e.markUsed(f)

	// The replacement shares Args with n so that nested calls renamed in
	// the same scan end up inside it.
	call := ir.NewAggregate(ir.OpCallInternalRawFunction, n.Op.String()+Suffix, n.Args, n.Type())
	call.SetPos(n.Pos())
	t.QueueReplacement(call)
	m.renamed++
	return true
}

// OutputEmulatedFunctions writes the helpers marked by the last scan, each
// exactly once and after its dependency. Nothing is written when no helper
// is used.
func (e *Emulator) OutputEmulatedFunctions(w io.Writer) error {
	if len(e.used) == 0 {
		return nil
	}
	if _, err := io.WriteString(w, "// BEGIN: Generated code for built-in function emulation\n\n"); err != nil {
		return fmt.Errorf("emulator: %w", err)
	}
	switch {
	case e.fragmentGuard:
		const guard = "#ifdef GL_FRAGMENT_PRECISION_HIGH\n" +
			"#define emu_precision highp\n" +
			"#else\n" +
			"#define emu_precision mediump\n" +
			"#endif\n\n"
		if _, err := io.WriteString(w, guard); err != nil {
			return fmt.Errorf("emulator: %w", err)
		}
	case e.definePrecision:
		if _, err := fmt.Fprintf(w, "#define emu_precision %s\n\n", e.precision); err != nil {
			return fmt.Errorf("emulator: %w", err)
		}
	}
	for _, f := range e.used {
		if _, err := fmt.Fprintf(w, "%s\n", f.text); err != nil {
			return fmt.Errorf("emulator: %w", err)
		}
	}
	if _, err := io.WriteString(w, "// END: Generated code for built-in function emulation\n\n"); err != nil {
		return fmt.Errorf("emulator: %w", err)
	}
	return nil
}
