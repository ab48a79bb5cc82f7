package emulator

import (
	"strings"

	"github.com/gogpu/translator/ir"
)

// MaxParams is the largest number of parameters an emulated function can
// be keyed on.
const MaxParams = 3

// Key identifies an emulated built-in overload by operator and parameter
// shapes. Precision and qualifiers are not part of the key.
type Key struct {
	Op     ir.Operator
	params [MaxParams]ir.Type
	n      uint8
}

// NewKey returns the key of op called with params. It panics with an
// ir.InternalError when more than MaxParams parameters are given.
func NewKey(op ir.Operator, params ...ir.Type) Key {
	if len(params) > MaxParams {
		panic(ir.InternalErrorf("emulated %s keyed on %d parameters", op, len(params)))
	}
	k := Key{Op: op, n: uint8(len(params))}
	for i, p := range params {
		k.params[i] = p.Temporary()
	}
	return k
}

// keyOf returns the key matching a call node.
func keyOf(n *ir.Aggregate) (Key, bool) {
	if len(n.Args) > MaxParams {
		return Key{}, false
	}
	k := Key{Op: n.Op, n: uint8(len(n.Args))}
	for i, arg := range n.Args {
		k.params[i] = arg.Type().Temporary()
	}
	return k, true
}

// Params returns the parameter types of the key.
func (k Key) Params() []ir.Type {
	return append([]ir.Type(nil), k.params[:k.n]...)
}

// Equal reports whether k and o name the same overload.
func (k Key) Equal(o Key) bool { return k.Compare(o) == 0 }

// Compare orders keys by operator, then parameter count, then parameter
// shapes.
func (k Key) Compare(o Key) int {
	switch {
	case k.Op < o.Op:
		return -1
	case k.Op > o.Op:
		return 1
	case k.n < o.n:
		return -1
	case k.n > o.n:
		return 1
	}
	for i := 0; i < int(k.n); i++ {
		if c := k.params[i].CompareShape(o.params[i]); c != 0 {
			return c
		}
	}
	return 0
}

// String returns the key as a call signature, e.g. "atan(float, float)".
// Two keys have the same string exactly when they are Equal.
func (k Key) String() string {
	var sb strings.Builder
	sb.WriteString(k.Op.String())
	sb.WriteByte('(')
	for i := 0; i < int(k.n); i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k.params[i].String())
	}
	sb.WriteByte(')')
	return sb.String()
}
