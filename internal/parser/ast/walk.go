package ast

// Inspect traverses the tree rooted at node in depth-first order. It calls
// f(node) first; if f returns true, Inspect visits each non-nil child and
// then calls f(nil).
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}

	switch n := node.(type) {
	// Statements
	case *EchoStmt:
		walkExpr(n.X, f)
	case *IfStmt:
		walkExpr(n.Cond, f)
		walkList(n.Then, f)
		walkList(n.Else, f)
	case *ElseIfStmt:
		walkExpr(n.Cond, f)
	case *ForStmt:
		walkExpr(n.Iter, f)
		walkExpr(n.If, f)
		walkList(n.Body, f)
	case *SwitchStmt:
		walkExpr(n.Tag, f)
		walkList(n.Body, f)
	case *CaseStmt:
		walkExpr(n.Value, f)
	case *SetStmt:
		for _, a := range n.Assignments {
			walkExpr(a.Target, f)
			walkExpr(a.Value, f)
		}
	case *BlockStmt:
		walkList(n.Body, f)
	case *ExtendsStmt:
		if n.Path != nil {
			Inspect(n.Path, f)
		}
	case *IncludeStmt:
		walkExpr(n.Path, f)
		walkExpr(n.Params, f)
	case *DoStmt:
		walkExpr(n.X, f)
	case *ReturnStmt:
		walkExpr(n.X, f)
	case *AutoescapeStmt:
		walkList(n.Body, f)
	case *MacroStmt:
		for _, p := range n.Params {
			walkExpr(p.Default, f)
		}
		walkList(n.Body, f)
	case *CallStmt:
		walkExpr(n.Call, f)
		walkList(n.Body, f)
	case *CacheStmt:
		walkExpr(n.Key, f)
		walkExpr(n.Lifetime, f)
		walkList(n.Body, f)

	// Expressions
	case *BinaryExpr:
		walkExpr(n.X, f)
		walkExpr(n.Y, f)
	case *UnaryExpr:
		walkExpr(n.X, f)
	case *PostfixExpr:
		walkExpr(n.X, f)
	case *AttrExpr:
		walkExpr(n.X, f)
		walkExpr(n.Name, f)
	case *IndexExpr:
		walkExpr(n.X, f)
		walkExpr(n.Index, f)
	case *SliceExpr:
		walkExpr(n.X, f)
		walkExpr(n.Start, f)
		walkExpr(n.End, f)
	case *CallExpr:
		walkExpr(n.Fun, f)
		walkArgs(n.Args, f)
	case *ArrayLit:
		walkArgs(n.Items, f)
	case *ArgList:
		walkArgs(n.Items, f)
	case *TernaryExpr:
		walkExpr(n.Cond, f)
		walkExpr(n.Then, f)
		walkExpr(n.Else, f)
	case *RangeExpr:
		walkExpr(n.X, f)
		walkExpr(n.Y, f)
	case *FilterExpr:
		walkExpr(n.X, f)
		walkExpr(n.Filter, f)
	case *IsExpr:
		walkExpr(n.X, f)
		walkExpr(n.Test, f)
	case *PredicateExpr:
		walkExpr(n.X, f)
	case *InExpr:
		walkExpr(n.X, f)
		walkExpr(n.Y, f)
	case *ParenExpr:
		walkExpr(n.X, f)
	}

	f(nil)
}

// InspectList calls Inspect on each statement in list.
func InspectList(list []Stmt, f func(Node) bool) {
	walkList(list, f)
}

func walkList(list []Stmt, f func(Node) bool) {
	for _, s := range list {
		Inspect(s, f)
	}
}

func walkArgs(args []*Argument, f func(Node) bool) {
	for _, a := range args {
		walkExpr(a.Value, f)
	}
}

// walkExpr skips nil interfaces, which are common for optional children.
func walkExpr(x Expr, f func(Node) bool) {
	if x != nil {
		Inspect(x, f)
	}
}
