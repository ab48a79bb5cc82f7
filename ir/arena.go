package ir

// SymbolID is a handle to a symbol entry. Built-in entries live in the
// process-wide BuiltinTable; all others live in the Arena of one
// compilation. The handle encodes the arena generation so that a handle
// kept across a re-compile is detected instead of silently aliasing a new
// entry.
type SymbolID uint64

// Layout: bit 63 marks built-ins, bits 32-62 hold the generation and the
// low 32 bits the entry index.
const (
	builtinBit      SymbolID = 1 << 63
	generationShift          = 32
	generationBits           = 31
	generationMask  SymbolID = (1<<generationBits - 1) << generationShift
	indexMask       SymbolID = 1<<32 - 1

	// InvalidSymbol is the zero handle; no entry ever has it.
	InvalidSymbol SymbolID = 0
)

// IsBuiltin reports whether the handle refers to the process-wide table.
func (id SymbolID) IsBuiltin() bool { return id&builtinBit != 0 }

func (id SymbolID) index() int { return int(id & indexMask) }

func (id SymbolID) generation() uint32 { return uint32((id & generationMask) >> generationShift) }

// SymbolKind tells where a symbol came from.
type SymbolKind uint8

const (
	SymbolBuiltIn SymbolKind = iota
	SymbolUser
	SymbolInternal
)

// String returns the kind name.
func (k SymbolKind) String() string {
	switch k {
	case SymbolBuiltIn:
		return "builtin"
	case SymbolUser:
		return "user"
	case SymbolInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Entry is a symbol table entry: a variable, parameter or function.
type Entry struct {
	ID    SymbolID
	Name  string
	Type  Type
	Kind  SymbolKind
	Depth int

	// Function is set for function entries.
	Function *FunctionSig

	// Value holds the folded value of const variables.
	Value []Constant

	// Availability of built-ins. MaxVersion 0 means no upper bound.
	MinVersion int
	MaxVersion int
	Stages     StageMask
	Extension  string
}

// IsFunction reports whether e is a function.
func (e *Entry) IsFunction() bool { return e.Function != nil }

// FunctionSig describes a function overload.
type FunctionSig struct {
	Name    string
	Params  []Type
	Return  Type
	Op      Operator
	Defined bool
}

// MangledName returns the overload key, e.g. "mix(vec3;vec3;float;".
func (f *FunctionSig) MangledName() string {
	return MangleName(f.Name, f.Params)
}

// MangleName returns the overload key for name called with params.
func MangleName(name string, params []Type) string {
	b := make([]byte, 0, len(name)+8*len(params)+1)
	b = append(b, name...)
	b = append(b, '(')
	for _, p := range params {
		b = append(b, p.String()...)
		b = append(b, ';')
	}
	return string(b)
}

// StageMask is a set of shader stages.
type StageMask uint8

const (
	StagesVertex   StageMask = 1 << StageVertex
	StagesFragment StageMask = 1 << StageFragment
	StagesCompute  StageMask = 1 << StageCompute
	StagesAll                = StagesVertex | StagesFragment | StagesCompute
)

// Has reports whether the mask contains s.
func (m StageMask) Has(s ShaderStage) bool { return m&(1<<s) != 0 }

// Arena owns the user and internal symbol entries of one compilation.
// Reset drops everything at once and bumps the generation; Release retires
// the arena for good.
type Arena struct {
	entries    []Entry
	generation uint32
	released   bool
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{
		entries:    make([]Entry, 1, 64), // slot 0 backs InvalidSymbol
		generation: 1,
	}
}

// Add stores e and returns its handle.
func (a *Arena) Add(e Entry) SymbolID {
	a.checkLive()
	idx := len(a.entries)
	if SymbolID(idx) > indexMask {
		panic(InternalErrorf("symbol arena overflow"))
	}
	id := SymbolID(idx) | SymbolID(a.generation)<<generationShift
	e.ID = id
	a.entries = append(a.entries, e)
	return id
}

// Entry returns the entry for id. A handle from another generation or a
// released arena is an internal error.
func (a *Arena) Entry(id SymbolID) *Entry {
	a.checkLive()
	if id.IsBuiltin() || id.generation() != a.generation {
		panic(InternalErrorf("symbol handle %#x does not belong to arena generation %d", uint64(id), a.generation))
	}
	i := id.index()
	if i <= 0 || i >= len(a.entries) {
		panic(InternalErrorf("symbol handle %#x out of range", uint64(id)))
	}
	return &a.entries[i]
}

// Len returns the number of live entries.
func (a *Arena) Len() int { return len(a.entries) - 1 }

// Generation returns the current generation.
func (a *Arena) Generation() uint32 { return a.generation }

// Reset drops all entries. Handles issued before Reset become invalid
// until the generation wraps, which takes 2^31-1 resets.
func (a *Arena) Reset() {
	a.checkLive()
	a.entries = a.entries[:1]
	a.generation++
	if a.generation >= 1<<generationBits {
		a.generation = 1
	}
}

// Release retires the arena; any later use panics.
func (a *Arena) Release() {
	a.entries = nil
	a.released = true
}

// Released reports whether Release was called.
func (a *Arena) Released() bool { return a.released }

func (a *Arena) checkLive() {
	if a.released {
		panic(InternalErrorf("use of released symbol arena"))
	}
}
