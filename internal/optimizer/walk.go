package optimizer

import (
	"github.com/hassan/volt/internal/parser/ast"
)

// rewriteLists applies f to stmts and, depth first, to every statement
// list nested in them. It reports whether any call to f changed its list.
func rewriteLists(stmts []ast.Stmt, f func([]ast.Stmt) ([]ast.Stmt, bool)) ([]ast.Stmt, bool) {
	changed := false
	nested := func(list *[]ast.Stmt) {
		var ok bool
		*list, ok = rewriteLists(*list, f)
		changed = changed || ok
	}

	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.IfStmt:
			nested(&s.Then)
			nested(&s.Else)
		case *ast.ForStmt:
			nested(&s.Body)
		case *ast.SwitchStmt:
			nested(&s.Body)
		case *ast.BlockStmt:
			nested(&s.Body)
		case *ast.AutoescapeStmt:
			nested(&s.Body)
		case *ast.MacroStmt:
			nested(&s.Body)
		case *ast.CallStmt:
			nested(&s.Body)
		case *ast.CacheStmt:
			nested(&s.Body)
		}
	}

	if len(stmts) == 0 {
		return stmts, changed
	}
	stmts, ok := f(stmts)
	return stmts, changed || ok
}

// isMarker reports whether stmt starts a new branch of its enclosing
// statement rather than continuing the current one.
func isMarker(stmt ast.Stmt) bool {
	switch stmt.(type) {
	case *ast.ElseIfStmt, *ast.ElseForStmt, *ast.CaseStmt, *ast.DefaultStmt:
		return true
	}
	return false
}
