package ast

import (
	"github.com/hassan/volt/internal/lexer"
)

// IntLit is an integer literal. Value keeps the source digits.
type IntLit struct {
	Value    string
	Position lexer.Position
}

// DoubleLit is a floating point literal written as digits.digits.
type DoubleLit struct {
	Value    string
	Position lexer.Position
}

// StringLit is a quoted string. Value is the text between the quotes with
// the delimiter quote unescaped; other escapes are kept as written.
type StringLit struct {
	Value    string
	Position lexer.Position
}

// BoolLit is true or false.
type BoolLit struct {
	Value    bool
	Position lexer.Position
}

// NullLit is the null literal.
type NullLit struct {
	Position lexer.Position
}

// Ident is a bare name.
type Ident struct {
	Name     string
	Position lexer.Position
}

// BinaryExpr is X Op Y. Op is one of the arithmetic, comparison, logical
// and concatenation opcodes. Exponentiation is written "**" and is stored
// with Op set to OpPow.
type BinaryExpr struct {
	Op       BinaryOp
	X, Y     Expr
	Position lexer.Position
}

// BinaryOp enumerates binary operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpConcat
	OpAnd
	OpOr
	OpEqual
	OpNotEqual
	OpIdentical
	OpNotIdentical
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual
)

var binaryOpNames = [...]string{
	OpAdd:          "+",
	OpSub:          "-",
	OpMul:          "*",
	OpDiv:          "/",
	OpMod:          "%",
	OpPow:          "**",
	OpConcat:       "~",
	OpAnd:          "and",
	OpOr:           "or",
	OpEqual:        "==",
	OpNotEqual:     "!=",
	OpIdentical:    "===",
	OpNotIdentical: "!==",
	OpLess:         "<",
	OpGreater:      ">",
	OpLessEqual:    "<=",
	OpGreaterEqual: ">=",
}

func (op BinaryOp) String() string {
	if op >= 0 && int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return "?"
}

// UnaryOp enumerates prefix operators.
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpMinus
	OpPlus
)

func (op UnaryOp) String() string {
	switch op {
	case OpNot:
		return "not"
	case OpMinus:
		return "-"
	case OpPlus:
		return "+"
	}
	return "?"
}

// UnaryExpr is a prefix operation.
type UnaryExpr struct {
	Op       UnaryOp
	X        Expr
	Position lexer.Position
}

// PostfixExpr is X++ or X--. Incr distinguishes the two.
type PostfixExpr struct {
	X        Expr
	Incr     bool
	Position lexer.Position
}

// AttrExpr is X.Name. Name is usually an *Ident but may be any expression
// the grammar accepts on the right of a dot.
type AttrExpr struct {
	X        Expr
	Name     Expr
	Position lexer.Position
}

// IndexExpr is X[Index].
type IndexExpr struct {
	X        Expr
	Index    Expr
	Position lexer.Position
}

// SliceExpr is X[Start:End]; either bound may be nil.
type SliceExpr struct {
	X          Expr
	Start, End Expr
	Position   lexer.Position
}

// CallExpr is Fun(Args).
type CallExpr struct {
	Fun      Expr
	Args     []*Argument
	Position lexer.Position
}

// ArrayLit is [a, b] or {'k': v}. Both spellings build the same node.
type ArrayLit struct {
	Items    []*Argument
	Position lexer.Position
}

// TernaryExpr is Cond ? Then : Else.
type TernaryExpr struct {
	Cond, Then, Else Expr
	Position         lexer.Position
}

// RangeExpr is X..Y.
type RangeExpr struct {
	X, Y     Expr
	Position lexer.Position
}

// FilterExpr is X|Filter. Filter is an *Ident or a *CallExpr whose Fun is
// an *Ident.
type FilterExpr struct {
	X        Expr
	Filter   Expr
	Position lexer.Position
}

// IsExpr is X is [not] Test where Test is not one of the built-in
// predicates.
type IsExpr struct {
	X        Expr
	Test     Expr
	Not      bool
	Position lexer.Position
}

// Predicate names a built-in "is" test.
type Predicate int

const (
	PredDefined Predicate = iota
	PredEmpty
	PredEven
	PredOdd
	PredNumeric
	PredScalar
	PredIterable
)

func (p Predicate) String() string {
	switch p {
	case PredDefined:
		return "defined"
	case PredEmpty:
		return "empty"
	case PredEven:
		return "even"
	case PredOdd:
		return "odd"
	case PredNumeric:
		return "numeric"
	case PredScalar:
		return "scalar"
	case PredIterable:
		return "iterable"
	}
	return "?"
}

// PredicateExpr is X is [not] defined, empty, even, ...
type PredicateExpr struct {
	Kind     Predicate
	X        Expr
	Not      bool
	Position lexer.Position
}

// InExpr is X in Y or X not in Y.
type InExpr struct {
	X, Y     Expr
	Not      bool
	Position lexer.Position
}

// ParenExpr is a parenthesized expression.
type ParenExpr struct {
	X        Expr
	Position lexer.Position
}

// ResolvedExpr carries code that has already been generated. The compiler
// uses it to thread the filtered value into a filter's argument list.
type ResolvedExpr struct {
	Code     string
	Position lexer.Position
}

// ArgList is a bare argument list with no call or array around it.
type ArgList struct {
	Items    []*Argument
	Position lexer.Position
}

func (x *IntLit) Pos() lexer.Position        { return x.Position }
func (x *DoubleLit) Pos() lexer.Position     { return x.Position }
func (x *StringLit) Pos() lexer.Position     { return x.Position }
func (x *BoolLit) Pos() lexer.Position       { return x.Position }
func (x *NullLit) Pos() lexer.Position       { return x.Position }
func (x *Ident) Pos() lexer.Position         { return x.Position }
func (x *BinaryExpr) Pos() lexer.Position    { return x.Position }
func (x *UnaryExpr) Pos() lexer.Position     { return x.Position }
func (x *PostfixExpr) Pos() lexer.Position   { return x.Position }
func (x *AttrExpr) Pos() lexer.Position      { return x.Position }
func (x *IndexExpr) Pos() lexer.Position     { return x.Position }
func (x *SliceExpr) Pos() lexer.Position     { return x.Position }
func (x *CallExpr) Pos() lexer.Position      { return x.Position }
func (x *ArrayLit) Pos() lexer.Position      { return x.Position }
func (x *TernaryExpr) Pos() lexer.Position   { return x.Position }
func (x *RangeExpr) Pos() lexer.Position     { return x.Position }
func (x *FilterExpr) Pos() lexer.Position    { return x.Position }
func (x *IsExpr) Pos() lexer.Position        { return x.Position }
func (x *PredicateExpr) Pos() lexer.Position { return x.Position }
func (x *InExpr) Pos() lexer.Position        { return x.Position }
func (x *ParenExpr) Pos() lexer.Position     { return x.Position }
func (x *ResolvedExpr) Pos() lexer.Position  { return x.Position }
func (x *ArgList) Pos() lexer.Position       { return x.Position }

func (*IntLit) exprNode()        {}
func (*DoubleLit) exprNode()     {}
func (*StringLit) exprNode()     {}
func (*BoolLit) exprNode()       {}
func (*NullLit) exprNode()       {}
func (*Ident) exprNode()         {}
func (*BinaryExpr) exprNode()    {}
func (*UnaryExpr) exprNode()     {}
func (*PostfixExpr) exprNode()   {}
func (*AttrExpr) exprNode()      {}
func (*IndexExpr) exprNode()     {}
func (*SliceExpr) exprNode()     {}
func (*CallExpr) exprNode()      {}
func (*ArrayLit) exprNode()      {}
func (*TernaryExpr) exprNode()   {}
func (*RangeExpr) exprNode()     {}
func (*FilterExpr) exprNode()    {}
func (*IsExpr) exprNode()        {}
func (*PredicateExpr) exprNode() {}
func (*InExpr) exprNode()        {}
func (*ParenExpr) exprNode()     {}
func (*ResolvedExpr) exprNode()  {}
func (*ArgList) exprNode()       {}
