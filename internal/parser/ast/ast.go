// Package ast defines the syntax tree produced by the template parser.
//
// A template is a flat list of statements. Statements that own a body
// (if, for, block, macro, ...) hold nested statement lists; everything
// else is an expression tree hanging off a statement.
//
// The node set is closed: Stmt and Expr carry unexported marker methods so
// only this package can add node kinds, and consumers dispatch with type
// switches.
package ast

import (
	"github.com/hassan/volt/internal/lexer"
)

// Node is implemented by every syntax tree node.
type Node interface {
	// Pos returns the position the node starts at. Templates report errors
	// by line, so this is the line of the node's first token.
	Pos() lexer.Position
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
//
// EXAMPLE:
//
//	a{% if x %}{{ y }}{% endif %}
//
//	[RawStmt("a"), IfStmt{Cond: Ident(x), Then: [EchoStmt{X: Ident(y)}]}]
type Stmt interface {
	Node
	stmtNode()
}

// Argument is one item of a call argument list or an array literal. Name is
// empty for positional items.
type Argument struct {
	Name  string
	Value Expr

	Position lexer.Position
}

func (a *Argument) Pos() lexer.Position { return a.Position }

// Named reports whether the argument was written as name: value.
func (a *Argument) Named() bool { return a.Name != "" }
