package passes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/translator/essl"
	"github.com/gogpu/translator/ir"
)

var builtins = essl.NewBuiltins()

func parse(t *testing.T, stage ir.ShaderStage, src string) *essl.Result {
	t.Helper()
	res, errs := essl.Parse([]string{src}, essl.Options{
		Stage:      stage,
		Builtins:   builtins,
		Extensions: map[string]bool{"GL_ANGLE_multi_draw": true},
	})
	require.Empty(t, errs, errs.FormatAll())
	return res
}

func requireValid(t *testing.T, res *essl.Result) {
	t.Helper()
	verrs, err := ir.Validate(res.Tree, res.Symbols)
	require.NoError(t, err)
	require.Empty(t, verrs)
}

// symbolCounter counts symbol nodes by name.
type symbolCounter struct {
	ir.BaseVisitor
	counts map[string]int
	ids    map[string]map[ir.SymbolID]bool
}

func (c *symbolCounter) VisitSymbol(_ *ir.Traverser, n *ir.Symbol) {
	c.counts[n.Name]++
	if c.ids[n.Name] == nil {
		c.ids[n.Name] = make(map[ir.SymbolID]bool)
	}
	c.ids[n.Name][n.ID] = true
}

func countSymbols(root *ir.Block) *symbolCounter {
	c := &symbolCounter{counts: make(map[string]int), ids: make(map[string]map[ir.SymbolID]bool)}
	ir.NewTraverser(true, false, false).Traverse(root, c)
	return c
}

func mainBody(t *testing.T, root *ir.Block) *ir.Block {
	t.Helper()
	for _, s := range root.Statements {
		if fn, ok := s.(*ir.FunctionDefinition); ok && fn.Name() == "main" {
			return fn.Body
		}
	}
	t.Fatal("no main")
	return nil
}
