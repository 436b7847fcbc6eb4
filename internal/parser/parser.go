// Package parser turns template source into a syntax tree.
//
// Parsing has two layers. The driver pulls tokens from the scanner one at a
// time and applies the language's contextual rules (nesting counters, the
// restrictions on child templates, the for/else rewrite) before a token
// becomes visible to the grammar. The grammar itself is recursive descent
// for statements and Pratt parsing for expressions.
//
// Parsing is fail-fast: the first guard violation or grammar error aborts
// the parse and is returned as a *SyntaxError.
package parser

import (
	"github.com/hassan/volt/internal/lexer"
	"github.com/hassan/volt/internal/parser/ast"
)

// Guard messages.
const (
	msgChildOnlyBlocks = "Child templates only may contain blocks"
	msgUnexpectedEndif = "Unexpected ENDIF"
	msgNestedElseFor   = "Unexpected ELSEFOR"
	msgNestedSwitch    = "A nested switch detected. There is no nested switch-case statements support"
	msgUnexpectedCase  = "Unexpected CASE"
	msgUnexpectedEnd   = "Unexpected ENDSWITCH"
	msgNestedBlock     = "Embedding blocks into other blocks is not supported"
	msgNestedMacro     = "Embedding macros into other macros is not allowed"
	msgExtendsFirst    = "Extends statement must be placed at the first line in the template"
)

// Parser converts the token stream of one template into statements.
type Parser struct {
	state   *lexer.ScanState
	scanner *lexer.Scanner

	// current is the token being examined; eof is set once the scanner
	// is exhausted, in which case current is a placeholder.
	current  lexer.Token
	previous lexer.Token
	eof      bool

	// One token of lookahead, already run through the guards.
	peeked  lexer.Token
	peekEOF bool
	hasPeek bool

	// ifStack saves the enclosing if-nesting for every open for loop.
	ifStack []int

	// forHeader is set while the "for ... in ... if" header is parsed so the
	// loop filter's "if" is not counted as an if statement.
	forHeader bool
}

// Parse parses source and returns its statements. path is used in
// positions and error messages. Empty input yields an empty list.
func Parse(source, path string) ([]ast.Stmt, error) {
	if source == "" {
		return []ast.Stmt{}, nil
	}
	return New(lexer.NewScanState(source, path)).ParseTemplate()
}

// New creates a parser that scans from state. The state's counters are
// updated as parsing proceeds, so callers can inspect it afterwards.
func New(state *lexer.ScanState) *Parser {
	return &Parser{
		state:   state,
		scanner: lexer.NewScanner(state),
	}
}

// State returns the scan state the parser drives.
func (p *Parser) State() *lexer.ScanState {
	return p.state
}

// ParseTemplate parses statements until the end of input.
func (p *Parser) ParseTemplate() (stmts []ast.Stmt, err error) {
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(*SyntaxError)
			if !ok {
				panic(r)
			}
			stmts, err = nil, se
		}
	}()

	p.advance()

	stmts = make([]ast.Stmt, 0)
	for !p.eof {
		stmts = append(stmts, p.parseStatement())
	}
	return stmts, nil
}

// next scans until a token survives the guards.
func (p *Parser) next() (lexer.Token, bool) {
	for {
		tok, status := p.scanner.Scan()
		switch status {
		case lexer.ScanEOF:
			return lexer.Token{
				Opcode: lexer.OpIgnore,
				Line:   p.state.ActiveLine,
				File:   p.state.ActiveFile,
			}, true
		case lexer.ScanErr:
			p.scanError()
		}

		if tok.Opcode == lexer.OpIgnore {
			continue
		}
		if tok, ok := p.guard(tok); ok {
			return tok, false
		}
	}
}

// guard applies the contextual rules to a freshly scanned token. It may
// rewrite the opcode, drop the token (ok is false) or fail the parse.
//
// EXAMPLE:
//
//	{% for x in xs %}{% else %}{% endfor %}        else becomes ELSEFOR
//	{% for x in xs %}{% if a %}{% else %}...       else stays ELSE
//	{% extends "a.volt" %}\n{% block b %}           blank fragment dropped
//	{% extends "a.volt" %}text                     Child templates only may contain blocks
//
// DESIGN CHOICE: guards run between the scanner and the grammar because:
//   - An else means different things depending on the innermost if or for
//   - Child-template and nesting rules are decided per token, before the
//     statement they open is parsed
//   - The nesting counters stay in ScanState where the scanner can see them
func (p *Parser) guard(tok lexer.Token) (lexer.Token, bool) {
	st := p.state
	childTop := st.ExtendsMode && st.BlockLevel == 0

	switch tok.Opcode {
	case lexer.OpRawFragment:
		blank := isBlank(tok.Value)
		if childTop {
			// Layout whitespace between blocks of a child template is
			// allowed; anything else outside a block is not.
			if blank {
				return tok, false
			}
			p.fail(msgChildOnlyBlocks)
		}
		if !blank {
			st.StatementPosition++
		}

	case lexer.OpOpenEDelimiter, lexer.OpSet:
		if childTop {
			p.fail(msgChildOnlyBlocks)
		}

	case lexer.OpIf:
		if p.forHeader {
			break
		}
		if childTop {
			p.fail(msgChildOnlyBlocks)
		}
		st.IfLevel++
		st.BlockLevel++

	case lexer.OpElse:
		if st.IfLevel == 0 && st.ForLevel > 0 {
			tok.Opcode = lexer.OpElseFor
		}

	case lexer.OpElseIf:
		if st.IfLevel == 0 {
			p.fail(msgUnexpectedEndif)
		}

	case lexer.OpEndIf:
		st.BlockLevel--
		st.IfLevel--

	case lexer.OpFor:
		if childTop {
			p.fail(msgChildOnlyBlocks)
		}
		p.ifStack = append(p.ifStack, st.IfLevel)
		st.OldIfLevel = st.IfLevel
		st.IfLevel = 0
		st.ForLevel++
		st.BlockLevel++

	case lexer.OpEndFor:
		st.BlockLevel--
		st.ForLevel--
		if n := len(p.ifStack); n > 0 {
			st.IfLevel = p.ifStack[n-1]
			p.ifStack = p.ifStack[:n-1]
		} else {
			st.IfLevel = st.OldIfLevel
		}
		st.OldIfLevel = 0
		if n := len(p.ifStack); n > 0 {
			st.OldIfLevel = p.ifStack[n-1]
		}

	case lexer.OpSwitch:
		if childTop {
			p.fail(msgChildOnlyBlocks)
		}
		if st.SwitchLevel > 0 {
			p.fail(msgNestedSwitch)
		}
		st.SwitchLevel = 1
		st.BlockLevel++

	case lexer.OpCase:
		if st.SwitchLevel == 0 {
			p.fail(msgUnexpectedCase)
		}

	case lexer.OpDefault:
		// Outside a switch "default" is an ordinary name, as in x|default(1).
		if st.SwitchLevel == 0 {
			tok.Opcode = lexer.OpIdentifier
		}

	case lexer.OpEndSwitch:
		if st.SwitchLevel == 0 {
			p.fail(msgUnexpectedEnd)
		}
		st.BlockLevel--
		st.SwitchLevel = 0

	case lexer.OpBlock:
		if st.BlockLevel > 0 {
			p.fail(msgNestedBlock)
		}
		st.BlockLevel++

	case lexer.OpEndBlock:
		st.BlockLevel--

	case lexer.OpMacro:
		if st.MacroLevel > 0 {
			p.fail(msgNestedMacro)
		}
		st.MacroLevel++

	case lexer.OpEndMacro:
		st.MacroLevel--

	case lexer.OpRaw:
		st.ForcedRawState++

	case lexer.OpEndRaw:
		st.ForcedRawState--

	case lexer.OpExtends:
		if st.StatementPosition != 1 {
			p.fail(msgExtendsFirst)
		}
		st.ExtendsMode = true
	}

	return tok, true
}

// isBlank reports whether s holds only spaces, tabs, newlines, carriage
// returns and vertical tabs.
func isBlank(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '\v':
		default:
			return false
		}
	}
	return true
}

// Helper methods

func (p *Parser) advance() {
	p.previous = p.current
	if p.hasPeek {
		p.current, p.eof = p.peeked, p.peekEOF
		p.hasPeek = false
		return
	}
	p.current, p.eof = p.next()
}

// peek returns the token after current without consuming it.
func (p *Parser) peek() lexer.Token {
	if !p.hasPeek {
		p.peeked, p.peekEOF = p.next()
		p.hasPeek = true
	}
	if p.peekEOF {
		return lexer.Token{Opcode: lexer.OpIgnore}
	}
	return p.peeked
}

func (p *Parser) check(op lexer.Opcode) bool {
	return !p.eof && p.current.Opcode == op
}

func (p *Parser) match(ops ...lexer.Opcode) bool {
	for _, op := range ops {
		if p.check(op) {
			p.advance()
			return true
		}
	}
	return false
}

// consume advances past a token of the given opcode or fails the parse.
func (p *Parser) consume(op lexer.Opcode) lexer.Token {
	if !p.check(op) {
		p.unexpected()
	}
	tok := p.current
	p.advance()
	return tok
}

func (p *Parser) pos() lexer.Position {
	return p.current.Pos()
}

// fail aborts the parse with msg located at the scanner's current line.
func (p *Parser) fail(msg string) {
	panic(newSyntaxError(msg, p.state.ActiveFile, p.state.ActiveLine))
}

// unexpected fails on the current token.
func (p *Parser) unexpected() {
	if p.eof {
		p.fail("Syntax error, unexpected EOF")
	}
	p.fail("Syntax error, unexpected token " + tokenName(p.current))
}

func (p *Parser) scanError() {
	near := p.state.Remaining(16)
	if near == "" {
		p.fail("Scanning error near to EOF")
	}
	p.fail("Scanning error before '" + near + "'")
}

// tokenName renders a token for diagnostics, e.g. ENDIF or IDENTIFIER(foo).
func tokenName(tok lexer.Token) string {
	switch tok.Opcode {
	case lexer.OpInteger, lexer.OpDouble, lexer.OpString, lexer.OpIdentifier:
		return tok.Opcode.String() + "(" + tok.Value + ")"
	}
	return tok.Opcode.String()
}
