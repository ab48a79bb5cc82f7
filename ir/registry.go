package ir

import (
	"sort"
	"strconv"
)

// BuiltinTable holds the built-in variables and functions of the language.
// It is built once, frozen, and then shared read-only by every compiler
// instance in the process.
type BuiltinTable struct {
	entries []Entry
	byName  map[string][]SymbolID
	frozen  bool
}

// NewBuiltinTable returns an empty, unfrozen table.
func NewBuiltinTable() *BuiltinTable {
	return &BuiltinTable{
		entries: make([]Entry, 1, 512),
		byName:  make(map[string][]SymbolID, 256),
	}
}

// Add stores a built-in entry and returns its handle.
func (b *BuiltinTable) Add(e Entry) SymbolID {
	if b.frozen {
		panic(InternalErrorf("built-in table is frozen; cannot add %q", e.Name))
	}
	id := SymbolID(len(b.entries)) | builtinBit
	e.ID = id
	e.Kind = SymbolBuiltIn
	if e.Stages == 0 {
		e.Stages = StagesAll
	}
	b.entries = append(b.entries, e)
	b.byName[e.Name] = append(b.byName[e.Name], id)
	return id
}

// Freeze makes the table immutable.
func (b *BuiltinTable) Freeze() { b.frozen = true }

// Frozen reports whether Freeze was called.
func (b *BuiltinTable) Frozen() bool { return b.frozen }

// Entry returns the entry for a built-in handle.
func (b *BuiltinTable) Entry(id SymbolID) *Entry {
	i := id.index()
	if !id.IsBuiltin() || i <= 0 || i >= len(b.entries) {
		panic(InternalErrorf("invalid built-in handle %#x", uint64(id)))
	}
	return &b.entries[i]
}

// Lookup returns every built-in entry named name.
func (b *BuiltinTable) Lookup(name string) []SymbolID {
	return b.byName[name]
}

// Len returns the number of entries.
func (b *BuiltinTable) Len() int { return len(b.entries) - 1 }

// Names returns all built-in names in sorted order.
func (b *BuiltinTable) Names() []string {
	names := make([]string, 0, len(b.byName))
	for n := range b.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Filter decides whether a built-in entry is visible to a compilation.
type Filter func(e *Entry) bool

// SymbolTable is the scoped name map of one compilation. Level 0 is the
// global scope; function bodies and blocks push further levels. Built-ins
// sit below the global scope and can be hidden by user declarations.
type SymbolTable struct {
	builtins *BuiltinTable
	arena    *Arena
	visible  Filter
	levels   []map[string][]SymbolID
	counter  int
}

// NewSymbolTable returns a table with an empty global scope.
func NewSymbolTable(builtins *BuiltinTable, arena *Arena) *SymbolTable {
	return &SymbolTable{
		builtins: builtins,
		arena:    arena,
		levels:   []map[string][]SymbolID{make(map[string][]SymbolID)},
	}
}

// SetFilter restricts which built-ins Lookup can see.
func (s *SymbolTable) SetFilter(f Filter) { s.visible = f }

// Arena returns the arena backing user entries.
func (s *SymbolTable) Arena() *Arena { return s.arena }

// Builtins returns the shared built-in table.
func (s *SymbolTable) Builtins() *BuiltinTable { return s.builtins }

// Push opens a new scope.
func (s *SymbolTable) Push() {
	s.levels = append(s.levels, make(map[string][]SymbolID))
}

// Pop closes the innermost scope.
func (s *SymbolTable) Pop() {
	if len(s.levels) == 1 {
		panic(InternalErrorf("cannot pop the global scope"))
	}
	s.levels = s.levels[:len(s.levels)-1]
}

// Depth returns the current scope depth; 0 is global.
func (s *SymbolTable) Depth() int { return len(s.levels) - 1 }

// AtGlobalLevel reports whether the global scope is innermost.
func (s *SymbolTable) AtGlobalLevel() bool { return len(s.levels) == 1 }

// Entry resolves any handle, built-in or not.
func (s *SymbolTable) Entry(id SymbolID) *Entry {
	if id.IsBuiltin() {
		return s.builtins.Entry(id)
	}
	return s.arena.Entry(id)
}

// DeclareVariable adds a variable to the innermost scope. It returns false
// if the name is already declared in that scope.
func (s *SymbolTable) DeclareVariable(name string, typ Type, kind SymbolKind) (SymbolID, bool) {
	level := s.levels[len(s.levels)-1]
	if _, exists := level[name]; exists {
		return InvalidSymbol, false
	}
	id := s.arena.Add(Entry{Name: name, Type: typ.Clone(), Kind: kind, Depth: s.Depth()})
	level[name] = []SymbolID{id}
	return id, true
}

// DeclareFunction adds a function overload at global scope. Redeclaring a
// prototype returns the existing handle. It returns false when name is a
// variable in the global scope, or when an overload differs only in its
// return type.
func (s *SymbolTable) DeclareFunction(sig FunctionSig) (SymbolID, bool) {
	global := s.levels[0]
	mangled := sig.MangledName()
	for _, id := range global[sig.Name] {
		e := s.arena.Entry(id)
		if e.Function == nil {
			return InvalidSymbol, false
		}
		if e.Function.MangledName() == mangled {
			if !e.Function.Return.SameShape(sig.Return) {
				return InvalidSymbol, false
			}
			return id, true
		}
	}
	fn := sig
	fn.Params = append([]Type(nil), sig.Params...)
	id := s.arena.Add(Entry{Name: sig.Name, Type: sig.Return.Clone(), Kind: SymbolUser, Function: &fn})
	global[sig.Name] = append(global[sig.Name], id)
	return id, true
}

// AddInternalVariable declares a compiler-synthesized variable at global
// scope, bypassing user-visible scoping.
func (s *SymbolTable) AddInternalVariable(name string, typ Type) SymbolID {
	id := s.arena.Add(Entry{Name: name, Type: typ.Clone(), Kind: SymbolInternal})
	s.levels[0][name] = []SymbolID{id}
	return id
}

// UniqueName returns a fresh internal name with the given prefix.
func (s *SymbolTable) UniqueName(prefix string) string {
	s.counter++
	return prefix + "_" + strconv.Itoa(s.counter)
}

// Lookup finds the innermost declaration of name. For overloaded functions
// the first overload is returned; use LookupFunction to resolve calls.
func (s *SymbolTable) Lookup(name string) (*Entry, bool) {
	for i := len(s.levels) - 1; i >= 0; i-- {
		if ids, ok := s.levels[i][name]; ok && len(ids) > 0 {
			return s.arena.Entry(ids[0]), true
		}
	}
	for _, id := range s.builtins.Lookup(name) {
		e := s.builtins.Entry(id)
		if s.visible == nil || s.visible(e) {
			return e, true
		}
	}
	return nil, false
}

// LookupFunction resolves a call to name with the given argument types.
// User overloads shadow built-ins of the same name entirely.
func (s *SymbolTable) LookupFunction(name string, args []Type) (*Entry, bool) {
	mangled := MangleName(name, shapes(args))
	if ids, ok := s.levels[0][name]; ok {
		for _, id := range ids {
			e := s.arena.Entry(id)
			if e.Function != nil && e.Function.MangledName() == mangled {
				return e, true
			}
		}
		return nil, false
	}
	for _, id := range s.builtins.Lookup(name) {
		e := s.builtins.Entry(id)
		if e.Function == nil || (s.visible != nil && !s.visible(e)) {
			continue
		}
		if e.Function.MangledName() == mangled {
			return e, true
		}
	}
	return nil, false
}

// HasFunctionNamed reports whether any function overload called name is
// visible.
func (s *SymbolTable) HasFunctionNamed(name string) bool {
	for _, id := range s.levels[0][name] {
		if s.arena.Entry(id).Function != nil {
			return true
		}
	}
	for _, id := range s.builtins.Lookup(name) {
		e := s.builtins.Entry(id)
		if e.Function != nil && (s.visible == nil || s.visible(e)) {
			return true
		}
	}
	return false
}

func shapes(types []Type) []Type {
	out := make([]Type, len(types))
	for i, t := range types {
		out[i] = Type{Basic: t.Basic, PrimarySize: t.PrimarySize, SecondarySize: t.SecondarySize, ArraySizes: t.ArraySizes}
	}
	return out
}
