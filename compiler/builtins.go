package compiler

import (
	"errors"
	"sync"

	"github.com/gogpu/translator/essl"
	"github.com/gogpu/translator/ir"
)

// ErrNotInitialized is returned by Construct before Initialize.
var ErrNotInitialized = errors.New("compiler: Initialize has not been called")

// The built-in table is shared by every compiler in the process. It is
// built by the first Initialize and dropped by the matching last Finalize.
var shared struct {
	mu    sync.Mutex
	refs  int
	table *ir.BuiltinTable
}

// Initialize builds the process-wide built-in table. Calls nest: each
// Initialize needs a matching Finalize. It is safe for concurrent use.
func Initialize() bool {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	if shared.refs == 0 {
		shared.table = essl.NewBuiltins()
	}
	shared.refs++
	return true
}

// Finalize undoes one Initialize. The table is released when the last
// Initialize is undone; compilers constructed earlier keep working. It
// returns false when there is nothing to finalize.
func Finalize() bool {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	if shared.refs == 0 {
		return false
	}
	shared.refs--
	if shared.refs == 0 {
		shared.table = nil
	}
	return true
}

func builtinTable() (*ir.BuiltinTable, error) {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	if shared.table == nil {
		return nil, ErrNotInitialized
	}
	return shared.table, nil
}
