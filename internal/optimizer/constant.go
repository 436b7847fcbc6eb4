package optimizer

import (
	"math"
	"strconv"

	"github.com/hassan/volt/internal/parser/ast"
)

// ConstantFoldingPass evaluates operators whose operands are literals.
//
// EXAMPLE:
//
//	Before:  {{ (2 + 3) * 4 }}      {% if 1 == 1 and true %}
//	After:   {{ 20 }}               {% if true %}
//
// Only integer arithmetic that cannot overflow, integer comparisons,
// string concatenation and boolean logic are folded. Division is left
// alone because the host language may produce a float.
//
// DESIGN CHOICE: operators are emitted without parentheses, so the
// generated code is grouped by the host language's precedence, not by
// the tree. An operator chain whose grouping differs between the two is
// left unfolded; only its parenthesized and non-operator operands are
// folded.
//
//	{{ 1 + 2 * 3 }}   parses as (1 + 2) * 3, runs as 1 + (2 * 3): kept
//	{{ 1 == 1 and true }}   same grouping in both: folded to true
type ConstantFoldingPass struct{}

// Name returns the name of this optimization pass.
func (c *ConstantFoldingPass) Name() string {
	return "ConstantFolding"
}

// Run folds the expressions of every statement.
func (c *ConstantFoldingPass) Run(stmts []ast.Stmt) ([]ast.Stmt, bool) {
	return rewriteLists(stmts, func(list []ast.Stmt) ([]ast.Stmt, bool) {
		changed := false
		fold := func(e *ast.Expr) {
			if *e == nil {
				return
			}
			var ok bool
			*e, ok = foldExpr(*e)
			changed = changed || ok
		}

		for _, stmt := range list {
			switch s := stmt.(type) {
			case *ast.EchoStmt:
				fold(&s.X)
			case *ast.IfStmt:
				fold(&s.Cond)
			case *ast.ElseIfStmt:
				fold(&s.Cond)
			case *ast.ForStmt:
				fold(&s.Iter)
				fold(&s.If)
			case *ast.SwitchStmt:
				fold(&s.Tag)
			case *ast.CaseStmt:
				fold(&s.Value)
			case *ast.SetStmt:
				for _, a := range s.Assignments {
					fold(&a.Value)
				}
			case *ast.IncludeStmt:
				fold(&s.Path)
				fold(&s.Params)
			case *ast.DoStmt:
				fold(&s.X)
			case *ast.ReturnStmt:
				fold(&s.X)
			case *ast.MacroStmt:
				for _, p := range s.Params {
					fold(&p.Default)
				}
			case *ast.CallStmt:
				fold(&s.Call)
			case *ast.CacheStmt:
				fold(&s.Key)
			}
		}
		return list, changed
	})
}

// foldExpr folds e bottom up.
func foldExpr(e ast.Expr) (ast.Expr, bool) {
	changed := false
	sub := func(x *ast.Expr) {
		if *x == nil {
			return
		}
		var ok bool
		*x, ok = foldExpr(*x)
		changed = changed || ok
	}
	args := func(list []*ast.Argument) {
		for _, a := range list {
			sub(&a.Value)
		}
	}

	switch x := e.(type) {
	case *ast.BinaryExpr:
		if !groupsAsParsed(x, x.X, true) || !groupsAsParsed(x, x.Y, false) {
			return e, foldLeaves(x)
		}
		sub(&x.X)
		sub(&x.Y)
		if folded, ok := foldBinary(x); ok {
			return folded, true
		}
	case *ast.UnaryExpr:
		if inner, ok := bareOperator(x.X); ok {
			return e, foldLeaves(inner)
		}
		sub(&x.X)
		if b, ok := x.X.(*ast.BoolLit); ok && x.Op == ast.OpNot {
			return &ast.BoolLit{Value: !b.Value, Position: x.Position}, true
		}
	case *ast.ParenExpr:
		sub(&x.X)
		if isFoldableLiteral(x.X) {
			return x.X, true
		}
	case *ast.TernaryExpr:
		sub(&x.Cond)
		sub(&x.Then)
		sub(&x.Else)
	case *ast.PostfixExpr:
		sub(&x.X)
	case *ast.AttrExpr:
		sub(&x.X)
	case *ast.IndexExpr:
		sub(&x.X)
		sub(&x.Index)
	case *ast.SliceExpr:
		sub(&x.X)
		sub(&x.Start)
		sub(&x.End)
	case *ast.CallExpr:
		args(x.Args)
	case *ast.ArrayLit:
		args(x.Items)
	case *ast.ArgList:
		args(x.Items)
	case *ast.RangeExpr:
		sub(&x.X)
		sub(&x.Y)
	case *ast.FilterExpr:
		sub(&x.X)
	case *ast.IsExpr:
		sub(&x.X)
	case *ast.PredicateExpr:
		sub(&x.X)
	case *ast.InExpr:
		sub(&x.X)
		sub(&x.Y)
	}
	return e, changed
}

// hostPrecedence ranks binary operators the way the generated code is
// grouped. Higher binds tighter; operators missing here are never
// regrouped.
var hostPrecedence = map[ast.BinaryOp]int{
	ast.OpMul:          7,
	ast.OpDiv:          7,
	ast.OpMod:          7,
	ast.OpAdd:          6,
	ast.OpSub:          6,
	ast.OpConcat:       5,
	ast.OpLess:         4,
	ast.OpGreater:      4,
	ast.OpLessEqual:    4,
	ast.OpGreaterEqual: 4,
	ast.OpEqual:        3,
	ast.OpNotEqual:     3,
	ast.OpIdentical:    3,
	ast.OpNotIdentical: 3,
	ast.OpAnd:          2,
	ast.OpOr:           1,
}

// bareOperator returns e when it is emitted as an infix operator without
// parentheses. Pow is emitted as a call and groups itself.
func bareOperator(e ast.Expr) (*ast.BinaryExpr, bool) {
	b, ok := e.(*ast.BinaryExpr)
	if !ok || b.Op == ast.OpPow {
		return nil, false
	}
	return b, true
}

// groupsAsParsed reports whether operand, emitted bare on one side of
// outer, is grouped by the host language the way the tree groups it.
func groupsAsParsed(outer *ast.BinaryExpr, operand ast.Expr, left bool) bool {
	inner, ok := bareOperator(operand)
	if !ok || outer.Op == ast.OpPow {
		return true
	}
	o, i := hostPrecedence[outer.Op], hostPrecedence[inner.Op]
	if o == 0 || i == 0 {
		return false
	}
	if i != o {
		return i > o
	}
	// Comparisons do not chain in the host language.
	return left && o != 3 && o != 4
}

// foldLeaves folds the operands of an operator chain without folding any
// operator of the chain itself.
func foldLeaves(b *ast.BinaryExpr) bool {
	changed := false
	for _, x := range []*ast.Expr{&b.X, &b.Y} {
		if inner, ok := bareOperator(*x); ok {
			changed = foldLeaves(inner) || changed
			continue
		}
		var ok bool
		*x, ok = foldExpr(*x)
		changed = changed || ok
	}
	return changed
}

// isFoldableLiteral reports whether parentheses around e can be dropped.
// Negative integers keep theirs so -(-1) does not become --1.
func isFoldableLiteral(e ast.Expr) bool {
	switch x := e.(type) {
	case *ast.IntLit:
		return x.Value != "" && x.Value[0] != '-'
	case *ast.StringLit, *ast.BoolLit, *ast.NullLit:
		return true
	}
	return false
}

func foldBinary(e *ast.BinaryExpr) (ast.Expr, bool) {
	pos := e.Position

	if l, r, ok := intOperands(e.X, e.Y); ok {
		if v, ok := foldIntArith(e.Op, l, r); ok {
			return &ast.IntLit{Value: strconv.FormatInt(v, 10), Position: pos}, true
		}
		if v, ok := foldIntCompare(e.Op, l, r); ok {
			return &ast.BoolLit{Value: v, Position: pos}, true
		}
		return nil, false
	}

	if l, ok := e.X.(*ast.StringLit); ok {
		if r, ok := e.Y.(*ast.StringLit); ok && e.Op == ast.OpConcat {
			return &ast.StringLit{Value: l.Value + r.Value, Position: pos}, true
		}
	}

	if l, ok := e.X.(*ast.BoolLit); ok {
		if r, ok := e.Y.(*ast.BoolLit); ok {
			switch e.Op {
			case ast.OpAnd:
				return &ast.BoolLit{Value: l.Value && r.Value, Position: pos}, true
			case ast.OpOr:
				return &ast.BoolLit{Value: l.Value || r.Value, Position: pos}, true
			}
		}
	}
	return nil, false
}

// intOperands parses two decimal integer literals. Literals with a leading
// zero are octal in the host language and are not folded.
func intOperands(x, y ast.Expr) (int64, int64, bool) {
	l, ok := x.(*ast.IntLit)
	if !ok {
		return 0, 0, false
	}
	r, ok := y.(*ast.IntLit)
	if !ok {
		return 0, 0, false
	}
	lv, ok := parseDecimal(l.Value)
	if !ok {
		return 0, 0, false
	}
	rv, ok := parseDecimal(r.Value)
	if !ok {
		return 0, 0, false
	}
	return lv, rv, true
}

func parseDecimal(s string) (int64, bool) {
	digits := s
	if len(digits) > 0 && digits[0] == '-' {
		digits = digits[1:]
	}
	if len(digits) > 1 && digits[0] == '0' {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}

func foldIntArith(op ast.BinaryOp, l, r int64) (int64, bool) {
	switch op {
	case ast.OpAdd:
		if (r > 0 && l > math.MaxInt64-r) || (r < 0 && l < math.MinInt64-r) {
			return 0, false
		}
		return l + r, true
	case ast.OpSub:
		if (r < 0 && l > math.MaxInt64+r) || (r > 0 && l < math.MinInt64+r) {
			return 0, false
		}
		return l - r, true
	case ast.OpMul:
		if l == 0 || r == 0 {
			return 0, true
		}
		v := l * r
		if v/r != l || (l == -1 && r == math.MinInt64) || (r == -1 && l == math.MinInt64) {
			return 0, false
		}
		return v, true
	case ast.OpMod:
		if r == 0 || (l == math.MinInt64 && r == -1) {
			return 0, false
		}
		return l % r, true
	}
	return 0, false
}

func foldIntCompare(op ast.BinaryOp, l, r int64) (bool, bool) {
	switch op {
	case ast.OpEqual, ast.OpIdentical:
		return l == r, true
	case ast.OpNotEqual, ast.OpNotIdentical:
		return l != r, true
	case ast.OpLess:
		return l < r, true
	case ast.OpGreater:
		return l > r, true
	case ast.OpLessEqual:
		return l <= r, true
	case ast.OpGreaterEqual:
		return l >= r, true
	}
	return false, false
}

// ConstantConditionPass replaces an if statement whose condition is a
// boolean literal with the statements of the branch that is taken.
//
// EXAMPLE:
//
//	Before:  a{% if false %}b{% else %}c{% endif %}
//	After:   ac
//
// An if with elseif branches is left alone.
type ConstantConditionPass struct{}

// Name returns the name of this optimization pass.
func (c *ConstantConditionPass) Name() string {
	return "ConstantCondition"
}

// Run splices constant if statements in every statement list.
func (c *ConstantConditionPass) Run(stmts []ast.Stmt) ([]ast.Stmt, bool) {
	return rewriteLists(stmts, spliceConstantIfs)
}

func spliceConstantIfs(stmts []ast.Stmt) ([]ast.Stmt, bool) {
	out := make([]ast.Stmt, 0, len(stmts))
	changed := false

	for _, stmt := range stmts {
		s, ok := stmt.(*ast.IfStmt)
		if !ok {
			out = append(out, stmt)
			continue
		}
		cond, ok := literalCondition(s.Cond)
		if !ok || hasElseIf(s.Then) {
			out = append(out, stmt)
			continue
		}

		if cond {
			out = append(out, s.Then...)
		} else {
			out = append(out, s.Else...)
		}
		changed = true
	}
	return out, changed
}

func literalCondition(e ast.Expr) (bool, bool) {
	for {
		switch x := e.(type) {
		case *ast.ParenExpr:
			e = x.X
		case *ast.BoolLit:
			return x.Value, true
		default:
			return false, false
		}
	}
}

func hasElseIf(stmts []ast.Stmt) bool {
	for _, stmt := range stmts {
		if _, ok := stmt.(*ast.ElseIfStmt); ok {
			return true
		}
	}
	return false
}
