package lexer

import (
	"strconv"
	"strings"
)

// Scanner status codes returned alongside every token.
const (
	// ScanOK means one token was produced.
	ScanOK = 0

	// ScanEOF means the input is exhausted.
	ScanEOF = -1

	// ScanErr means the input is malformed at the cursor: an unterminated
	// string or a character that starts no token.
	ScanErr = -2
)

// phpSpace is the character set trimmed by whitespace control markers.
const phpSpace = " \t\n\r\x00\x0b"

// Scanner is a mode-sensitive, maximal-munch tokenizer for templates.
//
// Each call to Scan produces at most one token and advances the shared
// ScanState. In raw mode the scanner collects literal text until a
// delimiter; in code mode it recognizes operators, literals, identifiers
// and keywords. Comments are consumed in raw mode and never produce a token.
//
// ALGORITHM (mode machine):
//  1. Raw mode: copy bytes until "{{", "{%" or "{#"
//  2. Emit the collected text as RAW_FRAGMENT, then the open delimiter,
//     and switch to code mode
//  3. Code mode: skip blanks, take the longest operator, literal or word
//  4. A close delimiter switches back to raw mode
//  5. Inside {% raw %} only {% endraw %} leaves raw mode
//
// EXAMPLE:
//
//	Hi {{- name }}!
//	RAW_FRAGMENT(Hi) {{ IDENTIFIER(name) }} RAW_FRAGMENT(!)
//
// The "-" trim marker strips the whitespace on its side of the delimiter
// from the neighboring fragment.
//
// DESIGN CHOICE: all counters live in ScanState rather than the Scanner
// because:
// - The parser rewrites tokens based on if, for and block nesting
// - Statement-position checks for extends need a count the parser can read
// - A Scanner can be resumed from any saved state
type Scanner struct {
	state *ScanState
}

// NewScanner creates a scanner that reads from and updates state.
func NewScanner(state *ScanState) *Scanner {
	return &Scanner{state: state}
}

// State returns the scan state the scanner operates on.
func (s *Scanner) State() *ScanState {
	return s.state
}

// Scan returns the next token and a status code (ScanOK, ScanEOF or
// ScanErr). Tokens with opcode OpIgnore carry no syntax and are skipped by
// the parser.
func (s *Scanner) Scan() (Token, int) {
	if s.state.Mode == ModeCode {
		return s.scanCode()
	}
	return s.scanRaw()
}

// scanRaw accumulates literal text until an opening delimiter or the end of
// input.
func (s *Scanner) scanRaw() (Token, int) {
	st := s.state

	for !st.atEnd() {
		c := st.buffer[st.cursor]
		if c == '{' {
			switch next := st.peek(1); {
			case st.ForcedRawState > 0:
				// Inside {% raw %} only the matching endraw tag is syntax.
				if next == '%' && isEndRaw(st.buffer[st.cursor+2:]) {
					return s.leaveRaw()
				}
			case next == '%' || next == '{':
				return s.leaveRaw()
			case next == '#':
				s.skipComment()
				continue
			}
		}

		if c == '\n' {
			st.ActiveLine++
		}
		st.raw = append(st.raw, c)
		st.cursor++
	}

	if len(st.raw) > 0 {
		if frag := s.takeFragment(false); frag != "" {
			return s.token(OpRawFragment, frag), ScanOK
		}
	}
	return s.token(OpIgnore, ""), ScanEOF
}

// leaveRaw switches to code mode in front of a {% or {{ and flushes the
// pending fragment. The delimiter itself is consumed by the next call.
func (s *Scanner) leaveRaw() (Token, int) {
	st := s.state
	st.Mode = ModeCode
	st.openPending = true

	trimRight := st.peek(2) == '-'
	if len(st.raw) == 0 {
		return s.token(OpIgnore, ""), ScanOK
	}
	frag := s.takeFragment(trimRight)
	if frag == "" {
		return s.token(OpIgnore, ""), ScanOK
	}
	return s.token(OpRawFragment, frag), ScanOK
}

// takeFragment empties the raw buffer, applying the trims requested by the
// surrounding delimiters.
func (s *Scanner) takeFragment(trimRight bool) string {
	st := s.state
	frag := string(st.raw)
	st.raw = st.raw[:0]

	if st.WhitespaceControl {
		frag = strings.TrimLeft(frag, phpSpace)
		st.WhitespaceControl = false
	}
	if trimRight {
		frag = strings.TrimRight(frag, phpSpace)
	}
	return frag
}

// skipComment consumes a {# ... #} region. An unterminated comment runs to
// the end of input.
func (s *Scanner) skipComment() {
	st := s.state
	st.Mode = ModeComment
	st.cursor += 2

	for !st.atEnd() {
		c := st.buffer[st.cursor]
		if c == '#' && st.peek(1) == '}' {
			st.cursor += 2
			break
		}
		if c == '\n' {
			st.ActiveLine++
		}
		st.cursor++
	}
	st.Mode = ModeRaw
}

// isEndRaw reports whether rest, the text following a "{%", spells an
// endraw tag: optional trim marker, blanks, "endraw", blanks, optional trim
// marker and "%}".
func isEndRaw(rest string) bool {
	i := 0
	if i < len(rest) && rest[i] == '-' {
		i++
	}
	for i < len(rest) && isSpace(rest[i]) {
		i++
	}
	if len(rest)-i < 6 || !strings.EqualFold(rest[i:i+6], "endraw") {
		return false
	}
	i += 6
	for i < len(rest) && isSpace(rest[i]) {
		i++
	}
	if i < len(rest) && rest[i] == '-' {
		i++
	}
	return strings.HasPrefix(rest[i:], "%}")
}

func (s *Scanner) scanCode() (Token, int) {
	st := s.state

	if st.openPending {
		st.openPending = false
		return s.scanOpenDelimiter(), ScanOK
	}

	for !st.atEnd() && isSpace(st.buffer[st.cursor]) {
		if st.buffer[st.cursor] == '\n' {
			st.ActiveLine++
		}
		st.cursor++
	}
	if st.atEnd() {
		return s.token(OpIgnore, ""), ScanEOF
	}

	c := st.buffer[st.cursor]
	switch {
	case isDigit(c):
		return s.scanNumber(), ScanOK
	case isIdentStart(c):
		return s.scanIdentifier(), ScanOK
	case c == '"' || c == '\'':
		return s.scanString(c)
	}
	return s.scanOperator()
}

// scanOpenDelimiter consumes "{%" or "{{" plus an optional "-" trim marker.
func (s *Scanner) scanOpenDelimiter() Token {
	st := s.state
	echo := st.peek(1) == '{'
	st.cursor += 2
	if st.peek(0) == '-' {
		st.cursor++
	}
	st.WhitespaceControl = false

	if echo {
		st.StatementPosition++
		return s.emit(OpOpenEDelimiter, "{{")
	}
	return s.emit(OpOpenDelimiter, "{%")
}

func (s *Scanner) scanNumber() Token {
	st := s.state
	start := st.cursor
	for !st.atEnd() && isDigit(st.buffer[st.cursor]) {
		st.cursor++
	}

	op := OpInteger
	if st.peek(0) == '.' && isDigit(st.peek(1)) {
		op = OpDouble
		st.cursor++
		for !st.atEnd() && isDigit(st.buffer[st.cursor]) {
			st.cursor++
		}
	}
	return s.emit(op, st.buffer[start:st.cursor])
}

// scanIdentifier scans a name and resolves keywords. A keyword that directly
// follows a dot is an attribute name, so "item.if" yields an identifier.
func (s *Scanner) scanIdentifier() Token {
	st := s.state
	start := st.cursor
	for !st.atEnd() && isIdentPart(st.buffer[st.cursor]) {
		st.cursor++
	}
	word := st.buffer[start:st.cursor]

	if st.ActiveToken != OpDot {
		if op, ok := LookupKeyword(word); ok {
			if op.opensStatement() {
				st.StatementPosition++
			}
			return s.emit(op, word)
		}
	}
	return s.emit(OpIdentifier, word)
}

// scanString scans a quoted literal. The value excludes the quotes; an
// escaped delimiter quote is unescaped and every other escape sequence is
// kept verbatim.
func (s *Scanner) scanString(quote byte) (Token, int) {
	st := s.state
	start := st.cursor
	st.cursor++

	var b strings.Builder
	for !st.atEnd() {
		c := st.buffer[st.cursor]
		switch {
		case c == '\\' && st.cursor+1 < len(st.buffer):
			n := st.buffer[st.cursor+1]
			if n != quote {
				b.WriteByte('\\')
			}
			b.WriteByte(n)
			if n == '\n' {
				st.ActiveLine++
			}
			st.cursor += 2
		case c == quote:
			st.cursor++
			return s.emit(OpString, b.String()), ScanOK
		case c == '\n':
			st.cursor = start
			return s.token(OpIgnore, ""), ScanErr
		default:
			b.WriteByte(c)
			st.cursor++
		}
	}

	st.cursor = start
	return s.token(OpIgnore, ""), ScanErr
}

// operators lists punctuation in longest-match order.
var operators = []struct {
	text string
	op   Opcode
}{
	{"===", OpIdentical},
	{"!==", OpNotIdentical},
	{"-%}", OpCloseDelimiter},
	{"-}}", OpCloseEDelimiter},
	{"==", OpEquals},
	{"!=", OpNotEquals},
	{"<>", OpNotEquals},
	{"<=", OpLessEqual},
	{">=", OpGreaterEqual},
	{"+=", OpAddAssign},
	{"-=", OpSubAssign},
	{"*=", OpMulAssign},
	{"/=", OpDivAssign},
	{"++", OpIncr},
	{"--", OpDecr},
	{"..", OpRange},
	{"%}", OpCloseDelimiter},
	{"}}", OpCloseEDelimiter},
	{"=", OpAssign},
	{"<", OpLess},
	{">", OpGreater},
	{"+", OpAdd},
	{"-", OpSub},
	{"*", OpMul},
	{"/", OpDiv},
	{"%", OpMod},
	{"!", OpNot},
	{".", OpDot},
	{",", OpComma},
	{":", OpColon},
	{"?", OpQuestion},
	{"(", OpParenOpen},
	{")", OpParenClose},
	{"[", OpBracketOpen},
	{"]", OpBracketClose},
	{"{", OpBraceOpen},
	{"}", OpBraceClose},
	{"|", OpPipe},
	{"~", OpConcat},
}

func (s *Scanner) scanOperator() (Token, int) {
	st := s.state
	rest := st.buffer[st.cursor:]

	for _, o := range operators {
		if !strings.HasPrefix(rest, o.text) {
			continue
		}
		st.cursor += len(o.text)

		switch o.op {
		case OpCloseDelimiter, OpCloseEDelimiter:
			st.Mode = ModeRaw
			if o.text[0] == '-' {
				st.WhitespaceControl = true
			}
		}
		return s.emit(o.op, o.text), ScanOK
	}

	return s.token(OpIgnore, ""), ScanErr
}

// emit builds a code-mode token and records it as the active token.
func (s *Scanner) emit(op Opcode, value string) Token {
	s.state.ActiveToken = op
	return s.token(op, value)
}

func (s *Scanner) token(op Opcode, value string) Token {
	return Token{
		Opcode: op,
		Value:  value,
		Line:   s.state.ActiveLine,
		File:   s.state.ActiveFile,
	}
}

// Tokenize scans the whole of source and returns its tokens, skipping
// OpIgnore. It does not apply the parser's contextual rules, so raw blocks
// are not recognized; it exists for tooling and tests.
func Tokenize(source, file string) ([]Token, error) {
	sc := NewScanner(NewScanState(source, file))
	var tokens []Token
	for {
		tok, status := sc.Scan()
		switch status {
		case ScanEOF:
			return tokens, nil
		case ScanErr:
			return tokens, &Error{
				Pos:  tok.Pos(),
				Near: sc.state.Remaining(16),
			}
		}
		if tok.Opcode != OpIgnore {
			tokens = append(tokens, tok)
		}
	}
}

// Error describes malformed input at a position.
type Error struct {
	Pos  Position
	Near string
}

func (e *Error) Error() string {
	if e.Near == "" {
		return "Scanning error near to EOF in " + e.Pos.Filename + " on line " + strconv.Itoa(e.Pos.Line)
	}
	return "Scanning error before '" + e.Near + "' in " + e.Pos.Filename + " on line " + strconv.Itoa(e.Pos.Line)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == '\\'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
