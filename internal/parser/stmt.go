package parser

import (
	"github.com/hassan/volt/internal/lexer"
	"github.com/hassan/volt/internal/parser/ast"
)

// parseStatement parses one raw fragment, echo or tag.
func (p *Parser) parseStatement() ast.Stmt {
	if p.eof {
		p.unexpected()
	}

	switch p.current.Opcode {
	case lexer.OpRawFragment:
		s := &ast.RawStmt{Value: p.current.Value, Position: p.pos()}
		p.advance()
		return s

	case lexer.OpOpenEDelimiter:
		pos := p.pos()
		p.advance()
		x := p.parseExpression()
		p.consume(lexer.OpCloseEDelimiter)
		return &ast.EchoStmt{X: x, Position: pos}

	case lexer.OpOpenDelimiter:
		p.advance()
		return p.parseTag()
	}

	p.unexpected()
	return nil
}

// parseBody parses statements until "{%" followed by one of stops. It
// consumes the delimiter and the stop keyword and reports which keyword
// ended the body.
func (p *Parser) parseBody(stops ...lexer.Opcode) ([]ast.Stmt, lexer.Opcode) {
	body := make([]ast.Stmt, 0)
	for {
		if p.eof {
			p.unexpected()
		}
		if p.current.Opcode == lexer.OpOpenDelimiter {
			next := p.peek().Opcode
			for _, stop := range stops {
				if next == stop {
					p.advance()
					p.advance()
					return body, stop
				}
			}
		}
		body = append(body, p.parseStatement())
	}
}

// parseTag parses the inside of {% %}; the open delimiter is consumed.
func (p *Parser) parseTag() ast.Stmt {
	pos := p.pos()
	if p.eof {
		p.unexpected()
	}

	switch p.current.Opcode {
	case lexer.OpCloseDelimiter:
		p.advance()
		return &ast.EmptyStmt{Position: pos}
	case lexer.OpIf:
		return p.parseIf()
	case lexer.OpElseIf:
		p.advance()
		cond := p.parseExpression()
		p.consume(lexer.OpCloseDelimiter)
		return &ast.ElseIfStmt{Cond: cond, Position: pos}
	case lexer.OpElseFor:
		if p.state.ForLevel == 0 {
			break
		}
		p.advance()
		p.consume(lexer.OpCloseDelimiter)
		return &ast.ElseForStmt{Position: pos}
	case lexer.OpFor:
		return p.parseFor()
	case lexer.OpSwitch:
		return p.parseSwitch()
	case lexer.OpCase:
		p.advance()
		x := p.parseExpression()
		p.consume(lexer.OpCloseDelimiter)
		return &ast.CaseStmt{Value: x, Position: pos}
	case lexer.OpDefault:
		p.advance()
		p.consume(lexer.OpCloseDelimiter)
		return &ast.DefaultStmt{Position: pos}
	case lexer.OpSet:
		return p.parseSet()
	case lexer.OpBlock:
		return p.parseBlock()
	case lexer.OpExtends:
		p.advance()
		tok := p.consume(lexer.OpString)
		p.consume(lexer.OpCloseDelimiter)
		return &ast.ExtendsStmt{
			Path:     &ast.StringLit{Value: tok.Value, Position: tok.Pos()},
			Position: pos,
		}
	case lexer.OpInclude:
		return p.parseInclude()
	case lexer.OpDo:
		p.advance()
		x := p.parseExpression()
		p.consume(lexer.OpCloseDelimiter)
		return &ast.DoStmt{X: x, Position: pos}
	case lexer.OpReturn:
		p.advance()
		x := p.parseExpression()
		p.consume(lexer.OpCloseDelimiter)
		return &ast.ReturnStmt{X: x, Position: pos}
	case lexer.OpAutoescape:
		return p.parseAutoescape()
	case lexer.OpContinue:
		p.advance()
		p.consume(lexer.OpCloseDelimiter)
		return &ast.ContinueStmt{Position: pos}
	case lexer.OpBreak:
		p.advance()
		p.consume(lexer.OpCloseDelimiter)
		return &ast.BreakStmt{Position: pos}
	case lexer.OpMacro:
		return p.parseMacro()
	case lexer.OpCall:
		p.advance()
		call := p.parseExpression()
		p.consume(lexer.OpCloseDelimiter)
		body, _ := p.parseBody(lexer.OpEndCall)
		p.consume(lexer.OpCloseDelimiter)
		return &ast.CallStmt{Call: call, Body: body, Position: pos}
	case lexer.OpCache:
		return p.parseCache()
	case lexer.OpRaw:
		return p.parseRaw()
	}

	p.unexpected()
	return nil
}

// parseIf parses:
//
//	{% if cond %} then [{% elseif cond %} ...] [{% else %} else] {% endif %}
//
// elseif branches stay in Then as *ast.ElseIfStmt markers.
func (p *Parser) parseIf() ast.Stmt {
	pos := p.pos()
	p.advance()

	cond := p.parseExpression()
	p.consume(lexer.OpCloseDelimiter)

	s := &ast.IfStmt{Cond: cond, Position: pos}

	var end lexer.Opcode
	s.Then, end = p.parseBody(lexer.OpElse, lexer.OpEndIf)
	if end == lexer.OpElse {
		p.consume(lexer.OpCloseDelimiter)
		s.Else, _ = p.parseBody(lexer.OpEndIf)
	}
	p.consume(lexer.OpCloseDelimiter)
	return s
}

// parseFor parses:
//
//	{% for [key,] value in iter [if cond] %} body [{% elsefor %} ...] {% endfor %}
func (p *Parser) parseFor() ast.Stmt {
	pos := p.pos()
	p.forHeader = true
	p.advance()

	s := &ast.ForStmt{Position: pos}
	first := p.consume(lexer.OpIdentifier).Value
	if p.match(lexer.OpComma) {
		s.Key = first
		s.Value = p.consume(lexer.OpIdentifier).Value
	} else {
		s.Value = first
	}

	p.consume(lexer.OpIn)
	s.Iter = p.parseExpression()
	if p.match(lexer.OpIf) {
		s.If = p.parseExpression()
	}
	p.forHeader = false
	p.consume(lexer.OpCloseDelimiter)

	s.Body, _ = p.parseBody(lexer.OpEndFor)
	p.checkElseFor(s.Body)
	p.consume(lexer.OpCloseDelimiter)
	return s
}

// checkElseFor rejects an elsefor that is not a direct child of the loop
// body, such as one inside an if or a cache. Nested loops were checked
// when they were parsed.
func (p *Parser) checkElseFor(body []ast.Stmt) {
	for _, stmt := range body {
		if _, ok := stmt.(*ast.ElseForStmt); ok {
			continue
		}
		ast.Inspect(stmt, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.ForStmt:
				return false
			case *ast.ElseForStmt:
				panic(newSyntaxError(msgNestedElseFor, n.Position.Filename, n.Position.Line))
			}
			return true
		})
	}
}

// parseSwitch parses {% switch tag %} body {% endswitch %}. case and default
// tags are left in the body as markers.
func (p *Parser) parseSwitch() ast.Stmt {
	pos := p.pos()
	p.advance()

	tag := p.parseExpression()
	p.consume(lexer.OpCloseDelimiter)

	body, _ := p.parseBody(lexer.OpEndSwitch)
	p.consume(lexer.OpCloseDelimiter)
	return &ast.SwitchStmt{Tag: tag, Body: body, Position: pos}
}

// parseSet parses {% set target op value [, target op value ...] %}.
func (p *Parser) parseSet() ast.Stmt {
	pos := p.pos()
	p.advance()

	s := &ast.SetStmt{Position: pos}
	for {
		a := &ast.Assignment{Position: p.pos()}
		a.Target = p.parseSetTarget()

		switch {
		case p.check(lexer.OpAssign),
			p.check(lexer.OpAddAssign),
			p.check(lexer.OpSubAssign),
			p.check(lexer.OpMulAssign),
			p.check(lexer.OpDivAssign):
			a.Op = p.current.Value
			p.advance()
		default:
			p.unexpected()
		}

		a.Value = p.parseExpression()
		s.Assignments = append(s.Assignments, a)

		if !p.match(lexer.OpComma) {
			break
		}
	}

	p.consume(lexer.OpCloseDelimiter)
	return s
}

// parseSetTarget parses name(.attr|[index])*.
func (p *Parser) parseSetTarget() ast.Expr {
	tok := p.consume(lexer.OpIdentifier)
	var target ast.Expr = &ast.Ident{Name: tok.Value, Position: tok.Pos()}

	for {
		pos := p.pos()
		switch {
		case p.match(lexer.OpDot):
			name := p.consume(lexer.OpIdentifier)
			target = &ast.AttrExpr{
				X:        target,
				Name:     &ast.Ident{Name: name.Value, Position: name.Pos()},
				Position: pos,
			}
		case p.match(lexer.OpBracketOpen):
			index := p.parseExpression()
			p.consume(lexer.OpBracketClose)
			target = &ast.IndexExpr{X: target, Index: index, Position: pos}
		default:
			return target
		}
	}
}

func (p *Parser) parseBlock() ast.Stmt {
	pos := p.pos()
	p.advance()

	name := p.consume(lexer.OpIdentifier).Value
	p.consume(lexer.OpCloseDelimiter)

	body, _ := p.parseBody(lexer.OpEndBlock)
	p.consume(lexer.OpCloseDelimiter)
	return &ast.BlockStmt{Name: name, Body: body, Position: pos}
}

// parseInclude parses {% include path [with params] %}.
func (p *Parser) parseInclude() ast.Stmt {
	pos := p.pos()
	p.advance()

	s := &ast.IncludeStmt{Path: p.parseExpression(), Position: pos}
	if p.match(lexer.OpWith) {
		s.Params = p.parseExpression()
	}
	p.consume(lexer.OpCloseDelimiter)
	return s
}

func (p *Parser) parseAutoescape() ast.Stmt {
	pos := p.pos()
	p.advance()

	s := &ast.AutoescapeStmt{Position: pos}
	switch {
	case p.match(lexer.OpTrue):
		s.Enable = true
	case p.match(lexer.OpFalse):
	default:
		p.unexpected()
	}
	p.consume(lexer.OpCloseDelimiter)

	s.Body, _ = p.parseBody(lexer.OpEndAutoescape)
	p.consume(lexer.OpCloseDelimiter)
	return s
}

// parseMacro parses {% macro name([param[=default], ...]) %} body {% endmacro %}.
func (p *Parser) parseMacro() ast.Stmt {
	pos := p.pos()
	p.advance()

	s := &ast.MacroStmt{Name: p.consume(lexer.OpIdentifier).Value, Position: pos}
	p.consume(lexer.OpParenOpen)
	if !p.check(lexer.OpParenClose) {
		for {
			tok := p.consume(lexer.OpIdentifier)
			param := &ast.MacroParam{Name: tok.Value, Position: tok.Pos()}
			if p.match(lexer.OpAssign) {
				param.Default = p.parseExpression()
			}
			s.Params = append(s.Params, param)

			if !p.match(lexer.OpComma) {
				break
			}
		}
	}
	p.consume(lexer.OpParenClose)
	p.consume(lexer.OpCloseDelimiter)

	s.Body, _ = p.parseBody(lexer.OpEndMacro)
	p.consume(lexer.OpCloseDelimiter)
	return s
}

// parseCache parses {% cache key [lifetime] %} body {% endcache %} where
// lifetime is an integer or a variable name.
func (p *Parser) parseCache() ast.Stmt {
	pos := p.pos()
	p.advance()

	s := &ast.CacheStmt{Key: p.parseExpression(), Position: pos}
	switch {
	case p.check(lexer.OpInteger):
		s.Lifetime = &ast.IntLit{Value: p.current.Value, Position: p.pos()}
		p.advance()
	case p.check(lexer.OpIdentifier):
		s.Lifetime = &ast.Ident{Name: p.current.Value, Position: p.pos()}
		p.advance()
	}
	p.consume(lexer.OpCloseDelimiter)

	s.Body, _ = p.parseBody(lexer.OpEndCache)
	p.consume(lexer.OpCloseDelimiter)
	return s
}

// parseRaw parses {% raw %}text{% endraw %}. The scanner passes the text
// through untouched, so the body is at most one fragment.
func (p *Parser) parseRaw() ast.Stmt {
	pos := p.pos()
	p.advance()
	p.consume(lexer.OpCloseDelimiter)

	s := &ast.RawStmt{Position: pos}
	body, _ := p.parseBody(lexer.OpEndRaw)
	for _, stmt := range body {
		if raw, ok := stmt.(*ast.RawStmt); ok {
			s.Value += raw.Value
		}
	}
	p.consume(lexer.OpCloseDelimiter)
	return s
}
