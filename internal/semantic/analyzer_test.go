package semantic

import (
	"strings"
	"testing"

	"github.com/hassan/volt/internal/parser"
	"github.com/hassan/volt/internal/symtab"
)

func analyze(t *testing.T, source string) (*Analyzer, []error) {
	t.Helper()
	stmts, err := parser.Parse(source, "check.volt")
	if err != nil {
		t.Fatalf("parse %q: %v", source, err)
	}
	a := New()
	return a, a.Analyze(stmts)
}

func TestAnalyze_Valid(t *testing.T) {
	sources := []string{
		"{% for x in xs %}{% if x %}{% break %}{% endif %}{{ loop.index }}{% continue %}{% endfor %}",
		"{% block content %}{{ super() }}{% endblock %}",
		"{% macro greet(name) %}Hi {{ name }}{% endmacro %}{{ greet('a') }}",
		"{% set loop = 1 %}{{ loop }}",
		"{{ user.loop }}{{ x|format(loop_count) }}",
		"{{ url('a') }}{{ time() }}{{ unknown_helper() }}",
		"{% switch a %}{% case 1 %}x{% endswitch %}",
	}
	for _, source := range sources {
		if _, errs := analyze(t, source); len(errs) != 0 {
			t.Errorf("%s: unexpected diagnostics %v", source, errs)
		}
	}
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"break outside loop", "{% break %}", "check.volt:1: break used outside a for loop"},
		{"continue in switch", "{% switch a %}{% case 1 %}{% continue %}{% endswitch %}", "continue used outside a for loop"},
		{"break in macro inside loop", "{% for x in xs %}{% macro m() %}{% break %}{% endmacro %}{% endfor %}", "break used outside a for loop"},
		{"loop outside loop", "{{ loop.index }}", "loop used outside a for loop"},
		{"loop inside an array", "{{ [loop] }}", "loop used outside a for loop"},
		{"super outside block", "{{ super() }}", "super() used outside a block"},
		{"duplicate macro", "{% macro m() %}{% endmacro %}\n{% macro m() %}{% endmacro %}", "check.volt:2: Macro \"m\" is already defined"},
		{"set a macro", "{% macro m() %}{% endmacro %}{% set m = 1 %}", "cannot assign to macro m"},
		{"duplicate parameter", "{% macro m(a, a) %}{% endmacro %}", "parameter a already declared"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, errs := analyze(t, tt.source)
			if len(errs) != 1 {
				t.Fatalf("expected 1 diagnostic, got %v", errs)
			}
			if !strings.Contains(errs[0].Error(), tt.want) {
				t.Errorf("got %q, want it to contain %q", errs[0].Error(), tt.want)
			}
			if !a.HasErrors() {
				t.Error("expected HasErrors to be true")
			}
		})
	}
}

func TestAnalyze_MacroCalledBeforeDefinition(t *testing.T) {
	a, errs := analyze(t, "{{ greet() }}\n{% macro greet() %}hi{% endmacro %}\n{{ greet() }}")

	if len(errs) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", errs)
	}
	d, ok := errs[0].(*Diagnostic)
	if !ok {
		t.Fatalf("expected *Diagnostic, got %T", errs[0])
	}
	if d.Severity != SeverityWarning {
		t.Errorf("expected a warning, got %s", d.Severity)
	}
	if d.Pos.Line != 1 {
		t.Errorf("expected the call's line, got %d", d.Pos.Line)
	}
	if got := d.Error(); got != `check.volt:1: warning: macro "greet" is called before it is defined` {
		t.Errorf("unexpected message %q", got)
	}
	if a.HasErrors() {
		t.Error("warnings must not count as errors")
	}
}

func TestAnalyze_MacroArity(t *testing.T) {
	a, errs := analyze(t, "{% macro m(a) %}{% endmacro %}{{ m(1) }}{{ m(1, 2) }}")

	if len(errs) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", errs)
	}
	if !strings.Contains(errs[0].Error(), `warning: macro "m" takes 1 arguments, called with 2`) {
		t.Errorf("unexpected message %q", errs[0])
	}
	if a.HasErrors() {
		t.Error("warnings must not count as errors")
	}
}

func TestAnalyze_DiagnosticsInTemplateOrder(t *testing.T) {
	_, errs := analyze(t, "{{ m() }}\n{% break %}\n{% macro m() %}{% endmacro %}")

	if len(errs) != 2 {
		t.Fatalf("expected 2 diagnostics, got %v", errs)
	}
	if !strings.Contains(errs[0].Error(), "macro \"m\" is called before") {
		t.Errorf("expected the line 1 warning first, got %q", errs[0])
	}
	if !strings.Contains(errs[1].Error(), "break") {
		t.Errorf("expected the line 2 error second, got %q", errs[1])
	}
}

func TestAnalyze_Scopes(t *testing.T) {
	a, errs := analyze(t, "{% set title = 'x' %}{% block body %}{% for k, v in items %}{% endfor %}{% endblock %}{% macro m(p) %}{% endmacro %}")
	if len(errs) != 0 {
		t.Fatalf("unexpected diagnostics %v", errs)
	}

	root := a.Scope()
	for name, kind := range map[string]symtab.SymbolKind{
		"title": symtab.SymbolVariable,
		"body":  symtab.SymbolBlock,
		"m":     symtab.SymbolMacro,
	} {
		symbol := root.LookupLocal(name)
		if symbol == nil {
			t.Errorf("%s: not declared in the template scope", name)
			continue
		}
		if symbol.Kind != kind {
			t.Errorf("%s: got kind %s, want %s", name, symbol.Kind, kind)
		}
	}

	if len(root.Children) != 2 {
		t.Fatalf("expected block and macro scopes, got %d children", len(root.Children))
	}
	block := root.Children[0]
	if block.Kind != symtab.ScopeBlock || block.Name != "body" {
		t.Errorf("unexpected first scope %s", block)
	}
	if len(block.Children) != 1 || block.Children[0].LookupLocal("v") == nil || block.Children[0].LookupLocal("k") == nil {
		t.Error("expected the loop scope to declare k and v")
	}
	if p := root.Children[1].LookupLocal("p"); p == nil || p.Kind != symtab.SymbolParameter {
		t.Error("expected the macro scope to declare parameter p")
	}
}

func TestAnalyze_Reset(t *testing.T) {
	stmts, err := parser.Parse("{% macro m() %}{% endmacro %}", "check.volt")
	if err != nil {
		t.Fatal(err)
	}
	a := New()
	a.Analyze(stmts)
	if errs := a.Analyze(stmts); len(errs) != 0 {
		t.Errorf("a second run must start from a fresh scope, got %v", errs)
	}
}

func TestSeverity_String(t *testing.T) {
	if SeverityError.String() != "error" || SeverityWarning.String() != "warning" {
		t.Error("unexpected severity names")
	}
}
