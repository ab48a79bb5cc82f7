package passes

import "github.com/gogpu/translator/ir"

// RemoveInvariantDeclaration deletes invariant redeclarations such as
// "invariant v_color;" whose variable is a shader input in a fragment
// shader, or an interpolated output (out, smooth out, centroid out, flat
// out or varying) in a vertex shader. Other stages are left alone. It
// returns the number of deleted declarations.
//
// A declaration naming several variables is deleted as a whole as soon as
// one of them matches.
func RemoveInvariantDeclaration(root *ir.Block, stage ir.ShaderStage) int {
	if stage != ir.StageVertex && stage != ir.StageFragment {
		return 0
	}
	r := &invariantRemover{stage: stage}
	t := ir.NewTraverser(true, false, false)
	t.Traverse(root, r)
	t.UpdateTree()
	return r.removed
}

type invariantRemover struct {
	ir.BaseVisitor
	stage   ir.ShaderStage
	removed int
}

func (r *invariantRemover) VisitDeclaration(t *ir.Traverser, _ ir.Visit, n *ir.Declaration) bool {
	if !n.Invariant {
		return false
	}
	for i := range n.Vars {
		if r.matches(n.DeclaredSymbol(i).Type().Qualifier) {
			t.QueueMultiReplacement(t.ParentBlock(), n, nil)
			r.removed++
			break
		}
	}
	return false
}

func (r *invariantRemover) matches(q ir.Qualifier) bool {
	if r.stage == ir.StageFragment {
		return q.IsShaderInput()
	}
	return q.IsVaryingOut()
}
