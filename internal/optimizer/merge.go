package optimizer

import (
	"github.com/hassan/volt/internal/parser/ast"
)

// MergeRawPass joins adjacent literal text fragments.
//
// EXAMPLE:
//
//	Before:  Raw "a", Raw "b", Echo x
//	After:   Raw "ab", Echo x
type MergeRawPass struct{}

// Name returns the name of this optimization pass.
func (m *MergeRawPass) Name() string {
	return "MergeRaw"
}

// Run merges raw fragments in every statement list.
func (m *MergeRawPass) Run(stmts []ast.Stmt) ([]ast.Stmt, bool) {
	return rewriteLists(stmts, mergeRaw)
}

func mergeRaw(stmts []ast.Stmt) ([]ast.Stmt, bool) {
	out := make([]ast.Stmt, 0, len(stmts))
	changed := false

	for _, stmt := range stmts {
		raw, ok := stmt.(*ast.RawStmt)
		if ok && len(out) > 0 {
			if prev, ok := out[len(out)-1].(*ast.RawStmt); ok {
				out[len(out)-1] = &ast.RawStmt{Value: prev.Value + raw.Value, Position: prev.Position}
				changed = true
				continue
			}
		}
		out = append(out, stmt)
	}
	return out, changed
}
