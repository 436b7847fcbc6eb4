package ast

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes an indented outline of list to w, one node per line with
// its line number. It is meant for debugging output such as "voltc parse".
func Fprint(w io.Writer, list []Stmt) error {
	p := &printer{w: w}
	for _, s := range list {
		p.node(s, 0)
	}
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(depth int, format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, "%s"+format+"\n", append([]any{strings.Repeat("  ", depth)}, args...)...)
}

func (p *printer) list(label string, list []Stmt, depth int) {
	if len(list) == 0 {
		return
	}
	p.printf(depth, "%s:", label)
	for _, s := range list {
		p.node(s, depth+1)
	}
}

func (p *printer) expr(label string, x Expr, depth int) {
	if x == nil {
		return
	}
	p.printf(depth, "%s:", label)
	p.node(x, depth+1)
}

func (p *printer) args(label string, args []*Argument, depth int) {
	if len(args) == 0 {
		return
	}
	p.printf(depth, "%s:", label)
	for _, a := range args {
		if a.Named() {
			p.printf(depth+1, "%s =", a.Name)
			p.node(a.Value, depth+2)
			continue
		}
		p.node(a.Value, depth+1)
	}
}

func (p *printer) node(n Node, d int) {
	line := n.Pos().Line

	switch n := n.(type) {
	case *RawStmt:
		p.printf(d, "Raw %q (line %d)", n.Value, line)
	case *EchoStmt:
		p.printf(d, "Echo (line %d)", line)
		p.node(n.X, d+1)
	case *IfStmt:
		p.printf(d, "If (line %d)", line)
		p.expr("cond", n.Cond, d+1)
		p.list("then", n.Then, d+1)
		p.list("else", n.Else, d+1)
	case *ElseIfStmt:
		p.printf(d, "ElseIf (line %d)", line)
		p.node(n.Cond, d+1)
	case *ForStmt:
		if n.Key != "" {
			p.printf(d, "For %s, %s (line %d)", n.Key, n.Value, line)
		} else {
			p.printf(d, "For %s (line %d)", n.Value, line)
		}
		p.expr("iter", n.Iter, d+1)
		p.expr("if", n.If, d+1)
		p.list("body", n.Body, d+1)
	case *ElseForStmt:
		p.printf(d, "ElseFor (line %d)", line)
	case *SwitchStmt:
		p.printf(d, "Switch (line %d)", line)
		p.expr("tag", n.Tag, d+1)
		p.list("body", n.Body, d+1)
	case *CaseStmt:
		p.printf(d, "Case (line %d)", line)
		p.node(n.Value, d+1)
	case *DefaultStmt:
		p.printf(d, "Default (line %d)", line)
	case *SetStmt:
		p.printf(d, "Set (line %d)", line)
		for _, a := range n.Assignments {
			p.printf(d+1, "%s", a.Op)
			p.node(a.Target, d+2)
			p.node(a.Value, d+2)
		}
	case *BlockStmt:
		p.printf(d, "Block %s (line %d)", n.Name, line)
		p.list("body", n.Body, d+1)
	case *ExtendsStmt:
		p.printf(d, "Extends %q (line %d)", n.Path.Value, line)
	case *IncludeStmt:
		p.printf(d, "Include (line %d)", line)
		p.expr("path", n.Path, d+1)
		p.expr("params", n.Params, d+1)
	case *DoStmt:
		p.printf(d, "Do (line %d)", line)
		p.node(n.X, d+1)
	case *ReturnStmt:
		p.printf(d, "Return (line %d)", line)
		p.node(n.X, d+1)
	case *AutoescapeStmt:
		p.printf(d, "Autoescape %t (line %d)", n.Enable, line)
		p.list("body", n.Body, d+1)
	case *ContinueStmt:
		p.printf(d, "Continue (line %d)", line)
	case *BreakStmt:
		p.printf(d, "Break (line %d)", line)
	case *MacroStmt:
		names := make([]string, len(n.Params))
		for i, prm := range n.Params {
			names[i] = prm.Name
		}
		p.printf(d, "Macro %s(%s) (line %d)", n.Name, strings.Join(names, ", "), line)
		p.list("body", n.Body, d+1)
	case *CallStmt:
		p.printf(d, "Call (line %d)", line)
		p.node(n.Call, d+1)
		p.list("body", n.Body, d+1)
	case *CacheStmt:
		p.printf(d, "Cache (line %d)", line)
		p.expr("key", n.Key, d+1)
		p.expr("lifetime", n.Lifetime, d+1)
		p.list("body", n.Body, d+1)
	case *EmptyStmt:
		p.printf(d, "Empty (line %d)", line)

	case *IntLit:
		p.printf(d, "Int %s", n.Value)
	case *DoubleLit:
		p.printf(d, "Double %s", n.Value)
	case *StringLit:
		p.printf(d, "String %q", n.Value)
	case *BoolLit:
		p.printf(d, "Bool %t", n.Value)
	case *NullLit:
		p.printf(d, "Null")
	case *Ident:
		p.printf(d, "Ident %s", n.Name)
	case *BinaryExpr:
		p.printf(d, "Binary %s", n.Op)
		p.node(n.X, d+1)
		p.node(n.Y, d+1)
	case *UnaryExpr:
		p.printf(d, "Unary %s", n.Op)
		p.node(n.X, d+1)
	case *PostfixExpr:
		if n.Incr {
			p.printf(d, "Postfix ++")
		} else {
			p.printf(d, "Postfix --")
		}
		p.node(n.X, d+1)
	case *AttrExpr:
		p.printf(d, "Attr")
		p.node(n.X, d+1)
		p.node(n.Name, d+1)
	case *IndexExpr:
		p.printf(d, "Index")
		p.node(n.X, d+1)
		p.node(n.Index, d+1)
	case *SliceExpr:
		p.printf(d, "Slice")
		p.node(n.X, d+1)
		p.expr("start", n.Start, d+1)
		p.expr("end", n.End, d+1)
	case *CallExpr:
		p.printf(d, "Call")
		p.node(n.Fun, d+1)
		p.args("args", n.Args, d+1)
	case *ArrayLit:
		p.printf(d, "Array")
		p.args("items", n.Items, d+1)
	case *ArgList:
		p.printf(d, "ArgList")
		p.args("items", n.Items, d+1)
	case *TernaryExpr:
		p.printf(d, "Ternary")
		p.node(n.Cond, d+1)
		p.node(n.Then, d+1)
		p.node(n.Else, d+1)
	case *RangeExpr:
		p.printf(d, "Range")
		p.node(n.X, d+1)
		p.node(n.Y, d+1)
	case *FilterExpr:
		p.printf(d, "Filter")
		p.node(n.X, d+1)
		p.node(n.Filter, d+1)
	case *IsExpr:
		p.printf(d, "Is not=%t", n.Not)
		p.node(n.X, d+1)
		p.node(n.Test, d+1)
	case *PredicateExpr:
		p.printf(d, "Predicate %s not=%t", n.Kind, n.Not)
		p.node(n.X, d+1)
	case *InExpr:
		p.printf(d, "In not=%t", n.Not)
		p.node(n.X, d+1)
		p.node(n.Y, d+1)
	case *ParenExpr:
		p.printf(d, "Paren")
		p.node(n.X, d+1)
	case *ResolvedExpr:
		p.printf(d, "Resolved %q", n.Code)
	default:
		p.printf(d, "%T", n)
	}
}
