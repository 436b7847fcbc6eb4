// Package symtab implements the scoped symbol tables used while compiling
// and checking templates.
//
// A template has a single namespace for the names it declares itself:
// macros, blocks, variables introduced by set, loop variables and macro
// parameters. Scopes nest the way the template's tags nest, so a loop
// variable is visible inside the loop body and a macro parameter inside
// the macro body.
package symtab

import (
	"github.com/hassan/volt/internal/lexer"
	"github.com/hassan/volt/internal/parser/ast"
)

// SymbolKind represents the kind of symbol.
type SymbolKind int

const (
	// SymbolVariable is a name assigned with {% set %}.
	SymbolVariable SymbolKind = iota

	// SymbolMacro is a {% macro %} definition.
	SymbolMacro

	// SymbolParameter is a macro parameter.
	SymbolParameter

	// SymbolBlock is a {% block %} definition.
	SymbolBlock

	// SymbolLoopVar is a key or value variable bound by {% for %}.
	SymbolLoopVar
)

// String returns a human-readable representation of the symbol kind.
func (sk SymbolKind) String() string {
	switch sk {
	case SymbolVariable:
		return "variable"
	case SymbolMacro:
		return "macro"
	case SymbolParameter:
		return "parameter"
	case SymbolBlock:
		return "block"
	case SymbolLoopVar:
		return "loop variable"
	default:
		return "unknown"
	}
}

// Symbol is a name declared by a template.
type Symbol struct {
	Name string
	Kind SymbolKind

	// Pos is where the symbol was declared, used in "already defined"
	// diagnostics.
	Pos lexer.Position

	// Scope is the scope the symbol was declared in.
	Scope *Scope

	// Decl is the declaring node: *ast.MacroStmt, *ast.BlockStmt,
	// *ast.ForStmt or *ast.SetStmt. It may be nil for synthetic symbols.
	Decl ast.Node

	// Used records whether the symbol was looked up after declaration.
	Used bool

	// Index is the declaration order within the scope.
	Index int
}

// String returns a description such as "macro greet at index.volt:3".
func (s *Symbol) String() string {
	return s.Kind.String() + " " + s.Name + " at " + s.Pos.String()
}

// CanAssign reports whether {% set %} may write to the symbol. Macros and
// blocks are not values.
func (s *Symbol) CanAssign() bool {
	switch s.Kind {
	case SymbolVariable, SymbolParameter, SymbolLoopVar:
		return true
	default:
		return false
	}
}

// MarkUsed marks this symbol as referenced.
func (s *Symbol) MarkUsed() {
	s.Used = true
}

// Macro returns the macro definition for a macro symbol, or nil.
func (s *Symbol) Macro() *ast.MacroStmt {
	if s.Kind != SymbolMacro {
		return nil
	}
	m, _ := s.Decl.(*ast.MacroStmt)
	return m
}
