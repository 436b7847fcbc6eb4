package parser

import (
	"github.com/hassan/volt/internal/lexer"
)

// Precedence represents operator binding strength. Higher binds tighter.
//
// The levels are those of the template language, lowest first:
//
//	in, not in
//	?:
//	..
//	and, or
//	is, ==, !=, ===, !==, <, >, <=, >=
//	*, /, %, **
//	+, -, ~
//	[ (index and slice)
//	| (filter)
//	not, unary - and +
//	++, --
//	( (call)
//	. (attribute)
//
// Note that multiplication binds looser than addition, so 1 + 2 * 3 groups
// as (1 + 2) * 3.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecIn
	PrecTernary
	PrecRange
	PrecLogical
	PrecCompare
	PrecFactor
	PrecTerm
	PrecIndex
	PrecFilter
	PrecUnary
	PrecPostfix
	PrecCall
	PrecMember
)

// getPrecedence returns the infix precedence of an opcode, or PrecNone when
// the opcode cannot continue an expression. "not" is only infix as part of
// "not in"; the parser resolves that with one token of lookahead.
func getPrecedence(op lexer.Opcode) Precedence {
	switch op {
	case lexer.OpIn:
		return PrecIn

	case lexer.OpQuestion:
		return PrecTernary

	case lexer.OpRange:
		return PrecRange

	case lexer.OpAnd, lexer.OpOr:
		return PrecLogical

	case lexer.OpIs,
		lexer.OpEquals,
		lexer.OpNotEquals,
		lexer.OpIdentical,
		lexer.OpNotIdentical,
		lexer.OpLess,
		lexer.OpGreater,
		lexer.OpLessEqual,
		lexer.OpGreaterEqual:
		return PrecCompare

	case lexer.OpMul, lexer.OpDiv, lexer.OpMod:
		return PrecFactor

	case lexer.OpAdd, lexer.OpSub, lexer.OpConcat:
		return PrecTerm

	case lexer.OpBracketOpen:
		return PrecIndex

	case lexer.OpPipe:
		return PrecFilter

	case lexer.OpIncr, lexer.OpDecr:
		return PrecPostfix

	case lexer.OpParenOpen:
		return PrecCall

	case lexer.OpDot:
		return PrecMember

	default:
		return PrecNone
	}
}

// isRightAssociative reports whether an infix operator groups to the right.
// Only the ternary and exponentiation do; "**" arrives as two OpMul tokens
// and is checked by the caller.
func isRightAssociative(op lexer.Opcode) bool {
	return op == lexer.OpQuestion
}
