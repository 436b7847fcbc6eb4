// Package semantic checks parsed templates for mistakes the parser cannot
// see because they depend on where a statement appears.
//
// CHECKS:
//  1. break and continue must be inside a for loop
//  2. the loop context variable must be inside a for loop
//  3. super() must be inside a block
//  4. macros must be defined at most once
//  5. set must not target a macro or block name
//  6. a macro should be defined before it is called (warning)
//  7. a macro call should not pass more arguments than it has
//     parameters (warning)
//
// The analyzer collects every problem instead of stopping at the first
// one, so "voltc check" can report a whole template at once.
package semantic

import (
	"fmt"
	"sort"

	"github.com/hassan/volt/internal/lexer"
	"github.com/hassan/volt/internal/parser/ast"
	"github.com/hassan/volt/internal/symtab"
)

// Severity says whether a diagnostic fails the check.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns "error" or "warning".
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one problem found in a template.
type Diagnostic struct {
	Pos      lexer.Position
	Msg      string
	Severity Severity
}

// Error formats the diagnostic as "file:line: msg", prefixing warnings.
func (d *Diagnostic) Error() string {
	msg := d.Msg
	if d.Severity == SeverityWarning {
		msg = "warning: " + msg
	}
	if d.Pos.IsValid() {
		return d.Pos.String() + ": " + msg
	}
	return msg
}

// Analyzer walks a statement list while tracking the scopes its tags open.
type Analyzer struct {
	// currentScope is the innermost scope during traversal
	currentScope *symtab.Scope

	// globalScope is the template scope; macros and blocks live here
	globalScope *symtab.Scope

	diagnostics []*Diagnostic

	// pendingCalls holds calls to names that were not macros yet when
	// the call was seen
	pendingCalls map[string][]lexer.Position
}

// New creates a new analyzer.
func New() *Analyzer {
	a := &Analyzer{}
	a.reset()
	return a
}

func (a *Analyzer) reset() {
	a.globalScope = symtab.NewScope(symtab.ScopeTemplate, nil)
	a.currentScope = a.globalScope
	a.diagnostics = nil
	a.pendingCalls = make(map[string][]lexer.Position)
}

// Analyze checks stmts and returns every diagnostic as an error, errors
// and warnings alike, in template order. Each returned error is a
// *Diagnostic.
//
// EXAMPLE:
//
//	{{ m() }}{% macro m() %}{% endmacro %}{% break %}
//
//	test.volt:1: warning: macro "m" is called before it is defined
//	test.volt:1: break used outside a for loop
//
// Calls to unknown names are held until the end of the walk, because a
// macro may be defined after its first use.
func (a *Analyzer) Analyze(stmts []ast.Stmt) []error {
	a.reset()
	a.statements(stmts)
	sort.SliceStable(a.diagnostics, func(i, j int) bool {
		return a.diagnostics[i].Pos.Line < a.diagnostics[j].Pos.Line
	})

	errs := make([]error, len(a.diagnostics))
	for i, d := range a.diagnostics {
		errs[i] = d
	}
	return errs
}

// Diagnostics returns the diagnostics of the last Analyze call.
func (a *Analyzer) Diagnostics() []*Diagnostic {
	return a.diagnostics
}

// HasErrors reports whether the last Analyze call found anything other
// than warnings.
func (a *Analyzer) HasErrors() bool {
	for _, d := range a.diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Scope returns the template scope built by the last Analyze call.
func (a *Analyzer) Scope() *symtab.Scope {
	return a.globalScope
}

func (a *Analyzer) statements(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		a.statement(stmt)
	}
}

func (a *Analyzer) statement(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.EchoStmt:
		a.expr(s.X)

	case *ast.IfStmt:
		a.expr(s.Cond)
		a.enterScope(symtab.ScopeIf)
		a.statements(s.Then)
		a.exitScope()
		if s.Else != nil {
			a.enterScope(symtab.ScopeIf)
			a.statements(s.Else)
			a.exitScope()
		}

	case *ast.ElseIfStmt:
		a.expr(s.Cond)

	case *ast.ForStmt:
		a.expr(s.Iter)
		a.enterScope(symtab.ScopeLoop)
		if s.Key != "" {
			a.declare(s.Key, symtab.SymbolLoopVar, s)
		}
		a.declare(s.Value, symtab.SymbolLoopVar, s)
		a.expr(s.If)
		a.statements(s.Body)
		a.exitScope()

	case *ast.SwitchStmt:
		a.expr(s.Tag)
		a.enterScope(symtab.ScopeSwitch)
		a.statements(s.Body)
		a.exitScope()

	case *ast.CaseStmt:
		a.expr(s.Value)

	case *ast.SetStmt:
		for _, as := range s.Assignments {
			a.expr(as.Value)
			if ident, ok := as.Target.(*ast.Ident); ok {
				symbol := a.currentScope.Lookup(ident.Name)
				switch {
				case symbol == nil:
					a.declare(ident.Name, symtab.SymbolVariable, s)
				case !symbol.CanAssign():
					a.error(as.Position, fmt.Sprintf("cannot assign to %s %s", symbol.Kind, ident.Name))
				}
				continue
			}
			a.expr(as.Target)
		}

	case *ast.BlockStmt:
		if a.globalScope.LookupLocal(s.Name) == nil {
			a.define(a.globalScope, &symtab.Symbol{Name: s.Name, Kind: symtab.SymbolBlock, Pos: s.Position, Decl: s})
		}
		a.scope(symtab.NewNamedScope(symtab.ScopeBlock, s.Name, a.currentScope), s.Body)

	case *ast.MacroStmt:
		a.macro(s)

	case *ast.IncludeStmt:
		a.expr(s.Path)
		a.expr(s.Params)

	case *ast.DoStmt:
		a.expr(s.X)

	case *ast.ReturnStmt:
		a.expr(s.X)

	case *ast.AutoescapeStmt:
		a.statements(s.Body)

	case *ast.CallStmt:
		a.expr(s.Call)
		a.statements(s.Body)

	case *ast.CacheStmt:
		a.expr(s.Key)
		a.expr(s.Lifetime)
		a.enterScope(symtab.ScopeCache)
		a.statements(s.Body)
		a.exitScope()

	case *ast.BreakStmt:
		if !a.inLoop() {
			a.error(s.Position, "break used outside a for loop")
		}

	case *ast.ContinueStmt:
		if !a.inLoop() {
			a.error(s.Position, "continue used outside a for loop")
		}
	}
}

func (a *Analyzer) macro(s *ast.MacroStmt) {
	symbol := &symtab.Symbol{Name: s.Name, Kind: symtab.SymbolMacro, Pos: s.Position, Decl: s}
	if a.globalScope.Define(symbol) != nil {
		a.error(s.Position, fmt.Sprintf("Macro \"%s\" is already defined", s.Name))
	}
	for _, pos := range a.pendingCalls[s.Name] {
		a.warn(pos, fmt.Sprintf("macro %q is called before it is defined", s.Name))
	}
	delete(a.pendingCalls, s.Name)

	scope := symtab.NewNamedScope(symtab.ScopeMacro, s.Name, a.currentScope)
	for _, p := range s.Params {
		a.expr(p.Default)
		a.define(scope, &symtab.Symbol{Name: p.Name, Kind: symtab.SymbolParameter, Pos: p.Position, Decl: s})
	}
	a.scope(scope, s.Body)
}

// scope analyzes body inside an already created scope.
func (a *Analyzer) scope(scope *symtab.Scope, body []ast.Stmt) {
	outer := a.currentScope
	a.currentScope = scope
	a.statements(body)
	a.currentScope = outer
}

func (a *Analyzer) inLoop() bool {
	return a.currentScope.FindEnclosingLoop() != nil
}

// Helper functions

// enterScope creates a new scope
func (a *Analyzer) enterScope(kind symtab.ScopeKind) {
	a.currentScope = symtab.NewScope(kind, a.currentScope)
}

// exitScope returns to the parent scope
func (a *Analyzer) exitScope() {
	if a.currentScope.Parent != nil {
		a.currentScope = a.currentScope.Parent
	}
}

func (a *Analyzer) declare(name string, kind symtab.SymbolKind, decl ast.Stmt) {
	a.define(a.currentScope, &symtab.Symbol{Name: name, Kind: kind, Pos: decl.Pos(), Decl: decl})
}

func (a *Analyzer) define(scope *symtab.Scope, symbol *symtab.Symbol) {
	if err := scope.Define(symbol); err != nil {
		a.error(symbol.Pos, err.Error())
	}
}

// error records a diagnostic that fails the check
func (a *Analyzer) error(pos lexer.Position, message string) {
	a.diagnostics = append(a.diagnostics, &Diagnostic{Pos: pos, Msg: message, Severity: SeverityError})
}

// warn records a diagnostic that does not fail the check
func (a *Analyzer) warn(pos lexer.Position, message string) {
	a.diagnostics = append(a.diagnostics, &Diagnostic{Pos: pos, Msg: message, Severity: SeverityWarning})
}
