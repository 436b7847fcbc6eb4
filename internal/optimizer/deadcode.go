package optimizer

import (
	"github.com/hassan/volt/internal/parser/ast"
)

// DeadCodePass removes statements that can never run because they follow
// a break, continue or return in the same branch.
//
// EXAMPLE:
//
//	Before:  {% for x in xs %}{% break %}never{% endfor %}
//	After:   {% for x in xs %}{% break %}{% endfor %}
//
// Branch markers (elseif, else of a for, case and default) end the dead
// region, since they start code that is reachable again.
type DeadCodePass struct{}

// Name returns the name of this optimization pass.
func (d *DeadCodePass) Name() string {
	return "DeadCode"
}

// Run removes unreachable statements from every statement list.
func (d *DeadCodePass) Run(stmts []ast.Stmt) ([]ast.Stmt, bool) {
	return rewriteLists(stmts, removeUnreachable)
}

func removeUnreachable(stmts []ast.Stmt) ([]ast.Stmt, bool) {
	out := make([]ast.Stmt, 0, len(stmts))
	dead := false
	changed := false

	for _, stmt := range stmts {
		if isMarker(stmt) {
			dead = false
		}
		if dead {
			changed = true
			continue
		}
		out = append(out, stmt)
		if isTerminator(stmt) {
			dead = true
		}
	}
	return out, changed
}

func isTerminator(stmt ast.Stmt) bool {
	switch stmt.(type) {
	case *ast.BreakStmt, *ast.ContinueStmt, *ast.ReturnStmt:
		return true
	}
	return false
}
