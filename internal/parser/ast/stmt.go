package ast

import (
	"github.com/hassan/volt/internal/lexer"
)

// RawStmt is literal template text.
type RawStmt struct {
	Value    string
	Position lexer.Position
}

// EchoStmt is {{ X }}.
type EchoStmt struct {
	X        Expr
	Position lexer.Position
}

// IfStmt is {% if %}...{% else %}...{% endif %}. Then may contain
// *ElseIfStmt markers that split it into branches; Else is nil when there is
// no else branch.
type IfStmt struct {
	Cond     Expr
	Then     []Stmt
	Else     []Stmt
	Position lexer.Position
}

// ElseIfStmt marks the start of an elseif branch inside IfStmt.Then.
type ElseIfStmt struct {
	Cond     Expr
	Position lexer.Position
}

// ForStmt is {% for [Key,] Value in Iter [if If] %}Body{% endfor %}.
// Body may contain an *ElseForStmt marker.
type ForStmt struct {
	Key      string
	Value    string
	Iter     Expr
	If       Expr
	Body     []Stmt
	Position lexer.Position
}

// ElseForStmt marks the start of the branch taken when a loop ran zero
// times.
type ElseForStmt struct {
	Position lexer.Position
}

// SwitchStmt is {% switch Tag %}Body{% endswitch %}. Body is a mix of
// *CaseStmt and *DefaultStmt markers and the statements between them.
type SwitchStmt struct {
	Tag      Expr
	Body     []Stmt
	Position lexer.Position
}

// CaseStmt marks {% case Value %}.
type CaseStmt struct {
	Value    Expr
	Position lexer.Position
}

// DefaultStmt marks {% default %}.
type DefaultStmt struct {
	Position lexer.Position
}

// Assignment is one target/value pair of a set statement. Op is one of
// "=", "+=", "-=", "*=", "/=".
type Assignment struct {
	Target   Expr
	Op       string
	Value    Expr
	Position lexer.Position
}

func (a *Assignment) Pos() lexer.Position { return a.Position }

// SetStmt is {% set a = 1, b.c += 2 %}.
type SetStmt struct {
	Assignments []*Assignment
	Position    lexer.Position
}

// BlockStmt is {% block Name %}Body{% endblock %}.
type BlockStmt struct {
	Name     string
	Body     []Stmt
	Position lexer.Position
}

// ExtendsStmt is {% extends 'parent.volt' %}.
type ExtendsStmt struct {
	Path     *StringLit
	Position lexer.Position
}

// IncludeStmt is {% include Path [with Params] %}.
type IncludeStmt struct {
	Path     Expr
	Params   Expr
	Position lexer.Position
}

// DoStmt is {% do X %}.
type DoStmt struct {
	X        Expr
	Position lexer.Position
}

// ReturnStmt is {% return X %}.
type ReturnStmt struct {
	X        Expr
	Position lexer.Position
}

// AutoescapeStmt is {% autoescape true|false %}Body{% endautoescape %}.
type AutoescapeStmt struct {
	Enable   bool
	Body     []Stmt
	Position lexer.Position
}

// ContinueStmt is {% continue %}.
type ContinueStmt struct {
	Position lexer.Position
}

// BreakStmt is {% break %}.
type BreakStmt struct {
	Position lexer.Position
}

// MacroParam is one macro parameter with an optional default.
type MacroParam struct {
	Name     string
	Default  Expr
	Position lexer.Position
}

func (p *MacroParam) Pos() lexer.Position { return p.Position }

// MacroStmt is {% macro Name(Params) %}Body{% endmacro %}.
type MacroStmt struct {
	Name     string
	Params   []*MacroParam
	Body     []Stmt
	Position lexer.Position
}

// CallStmt is {% call Call %}Body{% endcall %}.
type CallStmt struct {
	Call     Expr
	Body     []Stmt
	Position lexer.Position
}

// CacheStmt is {% cache Key [Lifetime] %}Body{% endcache %}. Lifetime is
// nil, an *IntLit or an *Ident.
type CacheStmt struct {
	Key      Expr
	Lifetime Expr
	Body     []Stmt
	Position lexer.Position
}

// EmptyStmt is {% %}.
type EmptyStmt struct {
	Position lexer.Position
}

func (s *RawStmt) Pos() lexer.Position        { return s.Position }
func (s *EchoStmt) Pos() lexer.Position       { return s.Position }
func (s *IfStmt) Pos() lexer.Position         { return s.Position }
func (s *ElseIfStmt) Pos() lexer.Position     { return s.Position }
func (s *ForStmt) Pos() lexer.Position        { return s.Position }
func (s *ElseForStmt) Pos() lexer.Position    { return s.Position }
func (s *SwitchStmt) Pos() lexer.Position     { return s.Position }
func (s *CaseStmt) Pos() lexer.Position       { return s.Position }
func (s *DefaultStmt) Pos() lexer.Position    { return s.Position }
func (s *SetStmt) Pos() lexer.Position        { return s.Position }
func (s *BlockStmt) Pos() lexer.Position      { return s.Position }
func (s *ExtendsStmt) Pos() lexer.Position    { return s.Position }
func (s *IncludeStmt) Pos() lexer.Position    { return s.Position }
func (s *DoStmt) Pos() lexer.Position         { return s.Position }
func (s *ReturnStmt) Pos() lexer.Position     { return s.Position }
func (s *AutoescapeStmt) Pos() lexer.Position { return s.Position }
func (s *ContinueStmt) Pos() lexer.Position   { return s.Position }
func (s *BreakStmt) Pos() lexer.Position      { return s.Position }
func (s *MacroStmt) Pos() lexer.Position      { return s.Position }
func (s *CallStmt) Pos() lexer.Position       { return s.Position }
func (s *CacheStmt) Pos() lexer.Position      { return s.Position }
func (s *EmptyStmt) Pos() lexer.Position      { return s.Position }

func (*RawStmt) stmtNode()        {}
func (*EchoStmt) stmtNode()       {}
func (*IfStmt) stmtNode()         {}
func (*ElseIfStmt) stmtNode()     {}
func (*ForStmt) stmtNode()        {}
func (*ElseForStmt) stmtNode()    {}
func (*SwitchStmt) stmtNode()     {}
func (*CaseStmt) stmtNode()       {}
func (*DefaultStmt) stmtNode()    {}
func (*SetStmt) stmtNode()        {}
func (*BlockStmt) stmtNode()      {}
func (*ExtendsStmt) stmtNode()    {}
func (*IncludeStmt) stmtNode()    {}
func (*DoStmt) stmtNode()         {}
func (*ReturnStmt) stmtNode()     {}
func (*AutoescapeStmt) stmtNode() {}
func (*ContinueStmt) stmtNode()   {}
func (*BreakStmt) stmtNode()      {}
func (*MacroStmt) stmtNode()      {}
func (*CallStmt) stmtNode()       {}
func (*CacheStmt) stmtNode()      {}
func (*EmptyStmt) stmtNode()      {}
