package semantic

import (
	"fmt"

	"github.com/hassan/volt/internal/parser/ast"
	"github.com/hassan/volt/internal/symtab"
)

// builtinFunctions are resolved by the compiler without a macro.
var builtinFunctions = map[string]bool{
	"get_content": true, "content": true, "partial": true, "super": true,
	"url": true, "static_url": true, "date": true, "time": true, "dump": true,
	"version": true, "version_id": true, "constant": true,
}

// expr checks an expression. Attribute names and filter or test names are
// not references and are skipped.
func (a *Analyzer) expr(e ast.Expr) {
	switch x := e.(type) {
	case nil:

	case *ast.Ident:
		a.ident(x)

	case *ast.BinaryExpr:
		a.expr(x.X)
		a.expr(x.Y)
	case *ast.UnaryExpr:
		a.expr(x.X)
	case *ast.PostfixExpr:
		a.expr(x.X)
	case *ast.ParenExpr:
		a.expr(x.X)
	case *ast.TernaryExpr:
		a.expr(x.Cond)
		a.expr(x.Then)
		a.expr(x.Else)
	case *ast.RangeExpr:
		a.expr(x.X)
		a.expr(x.Y)
	case *ast.InExpr:
		a.expr(x.X)
		a.expr(x.Y)

	case *ast.AttrExpr:
		a.expr(x.X)
	case *ast.IndexExpr:
		a.expr(x.X)
		a.expr(x.Index)
	case *ast.SliceExpr:
		a.expr(x.X)
		a.expr(x.Start)
		a.expr(x.End)

	case *ast.ArrayLit:
		a.args(x.Items)
	case *ast.ArgList:
		a.args(x.Items)

	case *ast.CallExpr:
		a.call(x)

	case *ast.FilterExpr:
		a.expr(x.X)
		if call, ok := x.Filter.(*ast.CallExpr); ok {
			a.args(call.Args)
		}
	case *ast.IsExpr:
		a.expr(x.X)
		if call, ok := x.Test.(*ast.CallExpr); ok {
			a.args(call.Args)
		}
	case *ast.PredicateExpr:
		a.expr(x.X)
	}
}

func (a *Analyzer) args(args []*ast.Argument) {
	for _, arg := range args {
		a.expr(arg.Value)
	}
}

func (a *Analyzer) ident(x *ast.Ident) {
	if x.Name != "loop" {
		return
	}
	if a.currentScope.Lookup("loop") != nil {
		return
	}
	if !a.inLoop() {
		a.error(x.Position, "loop used outside a for loop")
	}
}

func (a *Analyzer) call(x *ast.CallExpr) {
	a.args(x.Args)

	ident, ok := x.Fun.(*ast.Ident)
	if !ok {
		a.expr(x.Fun)
		return
	}

	switch {
	case ident.Name == "super":
		if a.currentScope.FindEnclosing(symtab.ScopeBlock) == nil {
			a.error(x.Position, "super() used outside a block")
		}
	case builtinFunctions[ident.Name]:
	default:
		if symbol := a.globalScope.LookupLocal(ident.Name); symbol != nil {
			symbol.MarkUsed()
			if m := symbol.Macro(); m != nil && len(x.Args) > len(m.Params) {
				a.warn(x.Position, fmt.Sprintf("macro %q takes %d arguments, called with %d", m.Name, len(m.Params), len(x.Args)))
			}
			return
		}
		a.pendingCalls[ident.Name] = append(a.pendingCalls[ident.Name], x.Position)
	}
}
