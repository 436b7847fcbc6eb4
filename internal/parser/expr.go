package parser

import (
	"github.com/hassan/volt/internal/lexer"
	"github.com/hassan/volt/internal/parser/ast"
)

// parseExpression parses an expression of any precedence.
func (p *Parser) parseExpression() ast.Expr {
	return p.parsePrecedence(PrecIn)
}

// parsePrecedence parses an expression whose infix operators all bind at
// least as tightly as precedence.
//
// ALGORITHM (Pratt parsing):
//  1. Parse a prefix expression (literal, name, grouping, unary operator)
//  2. While the next token is an infix operator binding at least as
//     tightly as precedence, hand the left side to parseInfix
//  3. parseInfix parses the right side one level tighter, so binary
//     operators group to the left; ** and ?: stay at their own level and
//     group to the right
//
// EXAMPLE:
//
//	a - b - c     (a - b) - c
//	a ** b ** c   a ** (b ** c)
//	a ~ b | e     a ~ (b | e)
func (p *Parser) parsePrecedence(precedence Precedence) ast.Expr {
	left := p.parsePrefix()
	if left == nil {
		p.unexpected()
	}

	for !p.eof && precedence <= p.infixPrecedence() {
		left = p.parseInfix(left)
	}
	return left
}

// infixPrecedence is getPrecedence for the current token, with "not"
// promoted to membership precedence when it introduces "not in".
func (p *Parser) infixPrecedence() Precedence {
	if p.current.Opcode == lexer.OpNot {
		if p.peek().Opcode == lexer.OpIn {
			return PrecIn
		}
		return PrecNone
	}
	return getPrecedence(p.current.Opcode)
}

// parsePrefix parses a token that can start an expression: literals, names,
// groupings, array literals and prefix operators.
func (p *Parser) parsePrefix() ast.Expr {
	if p.eof {
		return nil
	}
	tok := p.current
	pos := tok.Pos()

	switch tok.Opcode {
	case lexer.OpInteger:
		p.advance()
		return &ast.IntLit{Value: tok.Value, Position: pos}
	case lexer.OpDouble:
		p.advance()
		return &ast.DoubleLit{Value: tok.Value, Position: pos}
	case lexer.OpString:
		p.advance()
		return &ast.StringLit{Value: tok.Value, Position: pos}
	case lexer.OpTrue, lexer.OpFalse:
		p.advance()
		return &ast.BoolLit{Value: tok.Opcode == lexer.OpTrue, Position: pos}
	case lexer.OpNull:
		p.advance()
		return &ast.NullLit{Position: pos}

	case lexer.OpIdentifier, lexer.OpDefault:
		p.advance()
		return &ast.Ident{Name: tok.Value, Position: pos}

	case lexer.OpParenOpen:
		p.advance()
		x := p.parseExpression()
		p.consume(lexer.OpParenClose)
		return &ast.ParenExpr{X: x, Position: pos}

	case lexer.OpBracketOpen:
		p.advance()
		items := p.parseArguments(lexer.OpBracketClose)
		return &ast.ArrayLit{Items: items, Position: pos}

	case lexer.OpBraceOpen:
		p.advance()
		items := p.parseArguments(lexer.OpBraceClose)
		return &ast.ArrayLit{Items: items, Position: pos}

	case lexer.OpNot:
		p.advance()
		return &ast.UnaryExpr{Op: ast.OpNot, X: p.parsePrecedence(PrecUnary), Position: pos}
	case lexer.OpSub:
		p.advance()
		return &ast.UnaryExpr{Op: ast.OpMinus, X: p.parsePrecedence(PrecUnary), Position: pos}
	case lexer.OpAdd:
		p.advance()
		return &ast.UnaryExpr{Op: ast.OpPlus, X: p.parsePrecedence(PrecUnary), Position: pos}
	}

	return nil
}

var binaryOps = map[lexer.Opcode]ast.BinaryOp{
	lexer.OpAdd:          ast.OpAdd,
	lexer.OpSub:          ast.OpSub,
	lexer.OpMul:          ast.OpMul,
	lexer.OpDiv:          ast.OpDiv,
	lexer.OpMod:          ast.OpMod,
	lexer.OpConcat:       ast.OpConcat,
	lexer.OpAnd:          ast.OpAnd,
	lexer.OpOr:           ast.OpOr,
	lexer.OpEquals:       ast.OpEqual,
	lexer.OpNotEquals:    ast.OpNotEqual,
	lexer.OpIdentical:    ast.OpIdentical,
	lexer.OpNotIdentical: ast.OpNotIdentical,
	lexer.OpLess:         ast.OpLess,
	lexer.OpGreater:      ast.OpGreater,
	lexer.OpLessEqual:    ast.OpLessEqual,
	lexer.OpGreaterEqual: ast.OpGreaterEqual,
}

// parseInfix parses the operator at the current token with left as its
// left operand.
func (p *Parser) parseInfix(left ast.Expr) ast.Expr {
	tok := p.current
	pos := left.Pos()
	prec := p.infixPrecedence()

	switch tok.Opcode {
	case lexer.OpMul:
		p.advance()
		if p.match(lexer.OpMul) {
			// a ** b groups to the right.
			right := p.parsePrecedence(PrecFactor)
			return &ast.BinaryExpr{Op: ast.OpPow, X: left, Y: right, Position: pos}
		}
		right := p.parsePrecedence(prec + 1)
		return &ast.BinaryExpr{Op: ast.OpMul, X: left, Y: right, Position: pos}

	case lexer.OpNot:
		p.advance()
		p.consume(lexer.OpIn)
		right := p.parsePrecedence(prec + 1)
		return &ast.InExpr{X: left, Y: right, Not: true, Position: pos}

	case lexer.OpIn:
		p.advance()
		right := p.parsePrecedence(prec + 1)
		return &ast.InExpr{X: left, Y: right, Position: pos}

	case lexer.OpQuestion:
		p.advance()
		then := p.parseExpression()
		p.consume(lexer.OpColon)
		next := prec + 1
		if isRightAssociative(tok.Opcode) {
			next = prec
		}
		els := p.parsePrecedence(next)
		return &ast.TernaryExpr{Cond: left, Then: then, Else: els, Position: pos}

	case lexer.OpRange:
		p.advance()
		right := p.parsePrecedence(prec + 1)
		return &ast.RangeExpr{X: left, Y: right, Position: pos}

	case lexer.OpIs:
		return p.parseIs(left)

	case lexer.OpBracketOpen:
		return p.parseIndex(left)

	case lexer.OpPipe:
		return p.parseFilter(left)

	case lexer.OpIncr, lexer.OpDecr:
		p.advance()
		return &ast.PostfixExpr{X: left, Incr: tok.Opcode == lexer.OpIncr, Position: pos}

	case lexer.OpParenOpen:
		p.advance()
		args := p.parseArguments(lexer.OpParenClose)
		return &ast.CallExpr{Fun: left, Args: args, Position: pos}

	case lexer.OpDot:
		p.advance()
		name := p.consume(lexer.OpIdentifier)
		return &ast.AttrExpr{
			X:        left,
			Name:     &ast.Ident{Name: name.Value, Position: name.Pos()},
			Position: pos,
		}
	}

	op, ok := binaryOps[tok.Opcode]
	if !ok {
		p.unexpected()
	}
	p.advance()
	right := p.parsePrecedence(prec + 1)
	return &ast.BinaryExpr{Op: op, X: left, Y: right, Position: pos}
}

var predicates = map[lexer.Opcode]ast.Predicate{
	lexer.OpDefined:  ast.PredDefined,
	lexer.OpEmpty:    ast.PredEmpty,
	lexer.OpEven:     ast.PredEven,
	lexer.OpOdd:      ast.PredOdd,
	lexer.OpNumeric:  ast.PredNumeric,
	lexer.OpScalar:   ast.PredScalar,
	lexer.OpIterable: ast.PredIterable,
}

// parseIs parses "x is [not] test" where test is a built-in predicate
// keyword or any expression.
func (p *Parser) parseIs(left ast.Expr) ast.Expr {
	pos := left.Pos()
	p.advance()
	not := p.match(lexer.OpNot)

	if kind, ok := predicates[p.current.Opcode]; ok && !p.eof {
		p.advance()
		return &ast.PredicateExpr{Kind: kind, X: left, Not: not, Position: pos}
	}

	test := p.parsePrecedence(PrecCompare + 1)
	return &ast.IsExpr{X: left, Test: test, Not: not, Position: pos}
}

// parseIndex parses x[i], x[a:b], x[:b] and x[a:].
func (p *Parser) parseIndex(left ast.Expr) ast.Expr {
	pos := left.Pos()
	p.advance()

	var start ast.Expr
	if !p.check(lexer.OpColon) {
		start = p.parseExpression()
		if p.match(lexer.OpBracketClose) {
			return &ast.IndexExpr{X: left, Index: start, Position: pos}
		}
	}

	p.consume(lexer.OpColon)
	var end ast.Expr
	if !p.check(lexer.OpBracketClose) {
		end = p.parseExpression()
	}
	p.consume(lexer.OpBracketClose)
	return &ast.SliceExpr{X: left, Start: start, End: end, Position: pos}
}

// parseFilter parses x|name or x|name(args).
func (p *Parser) parseFilter(left ast.Expr) ast.Expr {
	pos := left.Pos()
	p.advance()

	if !p.check(lexer.OpIdentifier) && !p.check(lexer.OpDefault) {
		p.unexpected()
	}
	tok := p.current
	p.advance()

	var filter ast.Expr = &ast.Ident{Name: tok.Value, Position: tok.Pos()}
	if p.check(lexer.OpParenOpen) {
		callPos := p.pos()
		p.advance()
		args := p.parseArguments(lexer.OpParenClose)
		filter = &ast.CallExpr{Fun: filter, Args: args, Position: callPos}
	}
	return &ast.FilterExpr{X: left, Filter: filter, Position: pos}
}

// parseArguments parses a comma separated list of items up to and
// including the close token. An item is an expression, optionally
// preceded by "name:" where name is a string or identifier.
func (p *Parser) parseArguments(close lexer.Opcode) []*ast.Argument {
	args := make([]*ast.Argument, 0)
	if p.match(close) {
		return args
	}

	for {
		arg := &ast.Argument{Position: p.pos()}
		if (p.check(lexer.OpString) || p.check(lexer.OpIdentifier)) && p.peek().Opcode == lexer.OpColon {
			arg.Name = p.current.Value
			p.advance()
			p.advance()
		}
		arg.Value = p.parseExpression()
		args = append(args, arg)

		if !p.match(lexer.OpComma) {
			break
		}
	}

	p.consume(close)
	return args
}
