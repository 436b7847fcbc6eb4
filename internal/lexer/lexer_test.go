package lexer

import (
	"errors"
	"testing"
)

func scanAll(t *testing.T, source string) []Token {
	t.Helper()
	tokens, err := Tokenize(source, "test.volt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tokens
}

func expectOpcodes(t *testing.T, tokens []Token, expected []Opcode) {
	t.Helper()
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, op := range expected {
		if tokens[i].Opcode != op {
			t.Errorf("token %d: expected %v, got %v", i, op, tokens[i].Opcode)
		}
	}
}

func TestScanner_RawAndEcho(t *testing.T) {
	tokens := scanAll(t, "Hello {{ name }}!")

	expectOpcodes(t, tokens, []Opcode{
		OpRawFragment,
		OpOpenEDelimiter,
		OpIdentifier,
		OpCloseEDelimiter,
		OpRawFragment,
	})
	if tokens[0].Value != "Hello " {
		t.Errorf("expected raw %q, got %q", "Hello ", tokens[0].Value)
	}
	if tokens[2].Value != "name" {
		t.Errorf("expected identifier %q, got %q", "name", tokens[2].Value)
	}
	if tokens[4].Value != "!" {
		t.Errorf("expected raw %q, got %q", "!", tokens[4].Value)
	}
}

func TestScanner_Keywords(t *testing.T) {
	tokens := scanAll(t, "{% IF a is Not defined %}{% EndIf %}")

	expectOpcodes(t, tokens, []Opcode{
		OpOpenDelimiter,
		OpIf,
		OpIdentifier,
		OpIs,
		OpNot,
		OpDefined,
		OpCloseDelimiter,
		OpOpenDelimiter,
		OpEndIf,
		OpCloseDelimiter,
	})
	if tokens[1].Value != "IF" {
		t.Errorf("keyword should keep its spelling, got %q", tokens[1].Value)
	}
}

func TestScanner_KeywordAfterDot(t *testing.T) {
	tokens := scanAll(t, "{{ item.if }}")

	expectOpcodes(t, tokens, []Opcode{
		OpOpenEDelimiter,
		OpIdentifier,
		OpDot,
		OpIdentifier,
		OpCloseEDelimiter,
	})
	if tokens[3].Value != "if" {
		t.Errorf("expected attribute %q, got %q", "if", tokens[3].Value)
	}
}

func TestScanner_Numbers(t *testing.T) {
	tests := []struct {
		source string
		ops    []Opcode
		values []string
	}{
		{"{{ 42 }}", []Opcode{OpInteger}, []string{"42"}},
		{"{{ 3.14 }}", []Opcode{OpDouble}, []string{"3.14"}},
		{"{{ 1..5 }}", []Opcode{OpInteger, OpRange, OpInteger}, []string{"1", "..", "5"}},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			tokens := scanAll(t, tt.source)
			inner := tokens[1 : len(tokens)-1]
			expectOpcodes(t, inner, tt.ops)
			for i, v := range tt.values {
				if inner[i].Value != v {
					t.Errorf("token %d: expected %q, got %q", i, v, inner[i].Value)
				}
			}
		})
	}
}

func TestScanner_Strings(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`{{ "hello" }}`, "hello"},
		{`{{ 'it\'s' }}`, "it's"},
		{`{{ "say \"hi\"" }}`, `say "hi"`},
		{`{{ "a\nb" }}`, `a\nb`},
		{`{{ 'x\"y' }}`, `x\"y`},
		{`{{ "" }}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			tokens := scanAll(t, tt.source)
			if tokens[1].Opcode != OpString {
				t.Fatalf("expected STRING, got %v", tokens[1].Opcode)
			}
			if tokens[1].Value != tt.want {
				t.Errorf("expected %q, got %q", tt.want, tokens[1].Value)
			}
		})
	}
}

func TestScanner_Operators(t *testing.T) {
	tokens := scanAll(t, "{{ a === b !== c <> d != e == f <= g >= h < i > j ~ k | l }}")

	expectOpcodes(t, tokens, []Opcode{
		OpOpenEDelimiter,
		OpIdentifier, OpIdentical,
		OpIdentifier, OpNotIdentical,
		OpIdentifier, OpNotEquals,
		OpIdentifier, OpNotEquals,
		OpIdentifier, OpEquals,
		OpIdentifier, OpLessEqual,
		OpIdentifier, OpGreaterEqual,
		OpIdentifier, OpLess,
		OpIdentifier, OpGreater,
		OpIdentifier, OpConcat,
		OpIdentifier, OpPipe,
		OpIdentifier,
		OpCloseEDelimiter,
	})
}

func TestScanner_AssignmentOperators(t *testing.T) {
	tokens := scanAll(t, "{% set a = 1, b += 2, c -= 3, d *= 4, e /= 5 %}{{ i++ }}{{ j-- }}")

	expectOpcodes(t, tokens, []Opcode{
		OpOpenDelimiter, OpSet,
		OpIdentifier, OpAssign, OpInteger, OpComma,
		OpIdentifier, OpAddAssign, OpInteger, OpComma,
		OpIdentifier, OpSubAssign, OpInteger, OpComma,
		OpIdentifier, OpMulAssign, OpInteger, OpComma,
		OpIdentifier, OpDivAssign, OpInteger,
		OpCloseDelimiter,
		OpOpenEDelimiter, OpIdentifier, OpIncr, OpCloseEDelimiter,
		OpOpenEDelimiter, OpIdentifier, OpDecr, OpCloseEDelimiter,
	})
}

func TestScanner_WhitespaceControl(t *testing.T) {
	tokens := scanAll(t, "a  {%- if x -%}  b  {% endif %}")

	expectOpcodes(t, tokens, []Opcode{
		OpRawFragment,
		OpOpenDelimiter, OpIf, OpIdentifier, OpCloseDelimiter,
		OpRawFragment,
		OpOpenDelimiter, OpEndIf, OpCloseDelimiter,
	})
	if tokens[0].Value != "a" {
		t.Errorf("expected right-trimmed %q, got %q", "a", tokens[0].Value)
	}
	if tokens[5].Value != "b  " {
		t.Errorf("expected left-trimmed %q, got %q", "b  ", tokens[5].Value)
	}
}

func TestScanner_WhitespaceControlOnlyAffectsNextFragment(t *testing.T) {
	tokens := scanAll(t, "{{ a -}}  x  {{ b }}  y")

	var raws []string
	for _, tok := range tokens {
		if tok.Opcode == OpRawFragment {
			raws = append(raws, tok.Value)
		}
	}
	if len(raws) != 2 || raws[0] != "x  " || raws[1] != "  y" {
		t.Errorf("unexpected fragments: %q", raws)
	}
}

func TestScanner_Comments(t *testing.T) {
	tokens := scanAll(t, "a{# note\n more #}b")

	expectOpcodes(t, tokens, []Opcode{OpRawFragment})
	if tokens[0].Value != "ab" {
		t.Errorf("expected %q, got %q", "ab", tokens[0].Value)
	}
	if tokens[0].Line != 2 {
		t.Errorf("expected line 2, got %d", tokens[0].Line)
	}
}

func TestScanner_UnterminatedComment(t *testing.T) {
	tokens := scanAll(t, "before{# never closed")

	expectOpcodes(t, tokens, []Opcode{OpRawFragment})
	if tokens[0].Value != "before" {
		t.Errorf("expected %q, got %q", "before", tokens[0].Value)
	}
}

func TestScanner_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		near   string
	}{
		{"unterminated string", "{{ 'abc", "'abc"},
		{"newline in string", "{{ 'a\nb' }}", "'a\nb' }}"},
		{"unknown character", "{{ a @ b }}", "@ b }}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.source, "test.volt")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var scanErr *Error
			if !errors.As(err, &scanErr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if scanErr.Near != tt.near {
				t.Errorf("expected near %q, got %q", tt.near, scanErr.Near)
			}
		})
	}
}

func TestScanner_ErrorMessage(t *testing.T) {
	_, err := Tokenize("{{ a @ b }}", "test.volt")
	want := "Scanning error before '@ b }}' in test.volt on line 1"
	if err == nil || err.Error() != want {
		t.Errorf("expected %q, got %v", want, err)
	}
}

func TestScanner_PositionTracking(t *testing.T) {
	tokens := scanAll(t, "a\n{{ b\n }}")

	// raw "a\n", {{, b, }}
	if tokens[2].Line != 2 {
		t.Errorf("expected identifier on line 2, got %d", tokens[2].Line)
	}
	if tokens[3].Line != 3 {
		t.Errorf("expected close delimiter on line 3, got %d", tokens[3].Line)
	}
	if tokens[2].File != "test.volt" {
		t.Errorf("expected file test.volt, got %q", tokens[2].File)
	}
}

func TestScanner_StatementPosition(t *testing.T) {
	tests := []struct {
		source string
		want   int
	}{
		{"{% extends 'a.volt' %}", 1},
		{"{{ x }}{% extends 'a.volt' %}", 2},
		{"{% if a %}{% endif %}", 1},
		{"text only", 0},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			st := NewScanState(tt.source, "test.volt")
			sc := NewScanner(st)
			for {
				_, status := sc.Scan()
				if status != ScanOK {
					break
				}
			}
			if st.StatementPosition != tt.want {
				t.Errorf("expected position %d, got %d", tt.want, st.StatementPosition)
			}
		})
	}
}

func TestScanner_ForcedRaw(t *testing.T) {
	st := NewScanState("{{ x }}{# y #}{%- EndRaw -%} after", "test.volt")
	st.ForcedRawState = 1
	sc := NewScanner(st)

	tok, status := sc.Scan()
	if status != ScanOK || tok.Opcode != OpRawFragment {
		t.Fatalf("expected raw fragment, got %v (%d)", tok, status)
	}
	if tok.Value != "{{ x }}{# y #}" {
		t.Errorf("expected verbatim text, got %q", tok.Value)
	}
	if st.Mode != ModeCode {
		t.Errorf("expected code mode after endraw, got %v", st.Mode)
	}

	tok, _ = sc.Scan()
	if tok.Opcode != OpOpenDelimiter {
		t.Errorf("expected {%%, got %v", tok.Opcode)
	}
	tok, _ = sc.Scan()
	if tok.Opcode != OpEndRaw {
		t.Errorf("expected ENDRAW, got %v", tok.Opcode)
	}
}

func TestIsEndRaw(t *testing.T) {
	tests := []struct {
		rest string
		want bool
	}{
		{" endraw %}", true},
		{"endraw%}", true},
		{"- ENDRAW -%}", true},
		{" endraw", false},
		{" endif %}", false},
		{" raw %}", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isEndRaw(tt.rest); got != tt.want {
			t.Errorf("isEndRaw(%q) = %v, want %v", tt.rest, got, tt.want)
		}
	}
}

func TestScanner_EOF(t *testing.T) {
	sc := NewScanner(NewScanState("", "test.volt"))
	tok, status := sc.Scan()
	if status != ScanEOF {
		t.Errorf("expected ScanEOF, got %d", status)
	}
	if tok.Opcode != OpIgnore {
		t.Errorf("expected IGNORE, got %v", tok.Opcode)
	}
}
