package optimizer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hassan/volt/internal/parser"
	"github.com/hassan/volt/internal/parser/ast"
)

func parse(t *testing.T, source string) []ast.Stmt {
	t.Helper()
	stmts, err := parser.Parse(source, "test.volt")
	if err != nil {
		t.Fatalf("parse %q: %v", source, err)
	}
	return stmts
}

func echoExpr(t *testing.T, stmts []ast.Stmt) ast.Expr {
	t.Helper()
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	echo, ok := stmts[0].(*ast.EchoStmt)
	if !ok {
		t.Fatalf("expected EchoStmt, got %T", stmts[0])
	}
	return echo.X
}

// TestConstantFolding tests the constant folding pass
func TestConstantFolding(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   ast.Expr
	}{
		{"fold addition", "{{ 2 + 3 }}", &ast.IntLit{Value: "5"}},
		{"fold nested arithmetic", "{{ (2 + 3) * 4 }}", &ast.IntLit{Value: "20"}},
		{"fold subtraction below zero", "{{ 2 - 5 }}", &ast.IntLit{Value: "-3"}},
		{"fold modulo", "{{ 7 % 3 }}", &ast.IntLit{Value: "1"}},
		{"fold comparison", "{{ 1 == 1 }}", &ast.BoolLit{Value: true}},
		{"fold ordering", "{{ 3 < 2 }}", &ast.BoolLit{Value: false}},
		{"fold concatenation", "{{ 'a' ~ 'b' }}", &ast.StringLit{Value: "ab"}},
		{"fold logic", "{{ true and false }}", &ast.BoolLit{Value: false}},
		{"fold not", "{{ not false }}", &ast.BoolLit{Value: true}},
		{"unwrap literal", "{{ ('x') }}", &ast.StringLit{Value: "x"}},
		{"fold chain grouped alike", "{{ 1 == 1 and true }}", &ast.BoolLit{Value: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, changed := (&ConstantFoldingPass{}).Run(parse(t, tt.source))
			if !changed {
				t.Fatal("expected the pass to report a change")
			}

			got := echoExpr(t, stmts)
			switch want := tt.want.(type) {
			case *ast.IntLit:
				lit, ok := got.(*ast.IntLit)
				if !ok || lit.Value != want.Value {
					t.Errorf("got %#v, want int %s", got, want.Value)
				}
			case *ast.BoolLit:
				lit, ok := got.(*ast.BoolLit)
				if !ok || lit.Value != want.Value {
					t.Errorf("got %#v, want bool %v", got, want.Value)
				}
			case *ast.StringLit:
				lit, ok := got.(*ast.StringLit)
				if !ok || lit.Value != want.Value {
					t.Errorf("got %#v, want string %q", got, want.Value)
				}
			}
		})
	}
}

func TestConstantFolding_LeavesUnsafeExpressions(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"variable operand", "{{ a + 1 }}"},
		{"division", "{{ 6 / 3 }}"},
		{"modulo by zero", "{{ 1 % 0 }}"},
		{"octal literal", "{{ 010 + 1 }}"},
		{"overflow", "{{ 9223372036854775807 + 1 }}"},
		{"mixed concatenation", "{{ 'a' ~ 1 }}"},
		{"sum under product", "{{ 1 + 2 * 3 }}"},
		{"product over sum", "{{ 2 * 3 + 1 }}"},
		{"or under and", "{{ true or false and false }}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, changed := (&ConstantFoldingPass{}).Run(parse(t, tt.source))
			if changed {
				t.Fatalf("expected no change, got %#v", echoExpr(t, stmts))
			}
			if _, ok := echoExpr(t, stmts).(*ast.BinaryExpr); !ok {
				t.Errorf("expected the binary expression to survive, got %T", echoExpr(t, stmts))
			}
		})
	}
}

func TestConstantFolding_RegroupedChainFoldsParens(t *testing.T) {
	stmts, changed := (&ConstantFoldingPass{}).Run(parse(t, "{{ 1 + (2 + 3) * 4 }}"))
	if !changed {
		t.Fatal("expected the parenthesized sum to fold")
	}

	mul, ok := echoExpr(t, stmts).(*ast.BinaryExpr)
	if !ok || mul.Op != ast.OpMul {
		t.Fatalf("expected the product to survive, got %#v", echoExpr(t, stmts))
	}
	add, ok := mul.X.(*ast.BinaryExpr)
	if !ok || add.Op != ast.OpAdd {
		t.Fatalf("expected the sum to survive, got %#v", mul.X)
	}
	if lit, ok := add.Y.(*ast.IntLit); !ok || lit.Value != "5" {
		t.Errorf("got %#v, want 5", add.Y)
	}
}

func TestConstantFolding_NegativeParens(t *testing.T) {
	stmts, _ := (&ConstantFoldingPass{}).Run(parse(t, "{{ -(2 - 5) }}"))

	unary, ok := echoExpr(t, stmts).(*ast.UnaryExpr)
	if !ok {
		t.Fatalf("expected UnaryExpr, got %T", echoExpr(t, stmts))
	}
	paren, ok := unary.X.(*ast.ParenExpr)
	if !ok {
		t.Fatalf("expected the parentheses around -3 to stay, got %T", unary.X)
	}
	if lit, ok := paren.X.(*ast.IntLit); !ok || lit.Value != "-3" {
		t.Errorf("got %#v, want -3", paren.X)
	}
}

func TestConstantFolding_Statements(t *testing.T) {
	source := "{% for x in xs if 1 > 2 %}{% set y = 2 * 2 %}{% endfor %}" +
		"{% macro m(a = 1 + 1) %}{% return 'r' ~ 's' %}{% endmacro %}"
	stmts, changed := (&ConstantFoldingPass{}).Run(parse(t, source))
	if !changed {
		t.Fatal("expected the pass to report a change")
	}

	loop := stmts[0].(*ast.ForStmt)
	if lit, ok := loop.If.(*ast.BoolLit); !ok || lit.Value {
		t.Errorf("for guard: got %#v, want false", loop.If)
	}
	set := loop.Body[0].(*ast.SetStmt)
	if lit, ok := set.Assignments[0].Value.(*ast.IntLit); !ok || lit.Value != "4" {
		t.Errorf("set value: got %#v, want 4", set.Assignments[0].Value)
	}
	if _, ok := set.Assignments[0].Target.(*ast.Ident); !ok {
		t.Errorf("set target changed to %T", set.Assignments[0].Target)
	}

	macro := stmts[1].(*ast.MacroStmt)
	if lit, ok := macro.Params[0].Default.(*ast.IntLit); !ok || lit.Value != "2" {
		t.Errorf("macro default: got %#v, want 2", macro.Params[0].Default)
	}
	ret := macro.Body[0].(*ast.ReturnStmt)
	if lit, ok := ret.X.(*ast.StringLit); !ok || lit.Value != "rs" {
		t.Errorf("return value: got %#v, want rs", ret.X)
	}
}

func TestConstantCondition(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{"true takes then", "a{% if true %}b{% else %}c{% endif %}d", []string{"a", "b", "d"}},
		{"false takes else", "a{% if false %}b{% else %}c{% endif %}d", []string{"a", "c", "d"}},
		{"false without else", "a{% if false %}b{% endif %}d", []string{"a", "d"}},
		{"parenthesized", "{% if (true) %}b{% endif %}", []string{"b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, changed := (&ConstantConditionPass{}).Run(parse(t, tt.source))
			if !changed {
				t.Fatal("expected the pass to report a change")
			}
			if got := rawValues(t, stmts); strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConstantCondition_Unchanged(t *testing.T) {
	sources := []string{
		"{% if a %}b{% endif %}",
		"{% if true %}b{% elseif c %}d{% endif %}",
		"{% if 1 %}b{% endif %}",
	}
	for _, source := range sources {
		stmts, changed := (&ConstantConditionPass{}).Run(parse(t, source))
		if changed {
			t.Errorf("%s: expected no change", source)
		}
		if _, ok := stmts[0].(*ast.IfStmt); !ok {
			t.Errorf("%s: expected the if to survive, got %T", source, stmts[0])
		}
	}
}

func TestConstantCondition_Nested(t *testing.T) {
	stmts, changed := (&ConstantConditionPass{}).Run(parse(t, "{% for x in xs %}{% if false %}no{% endif %}{% endfor %}"))
	if !changed {
		t.Fatal("expected the pass to report a change")
	}
	loop := stmts[0].(*ast.ForStmt)
	if len(loop.Body) != 0 {
		t.Errorf("expected an empty loop body, got %d statements", len(loop.Body))
	}
}

func rawValues(t *testing.T, stmts []ast.Stmt) []string {
	t.Helper()
	values := make([]string, 0, len(stmts))
	for _, s := range stmts {
		raw, ok := s.(*ast.RawStmt)
		if !ok {
			t.Fatalf("expected RawStmt, got %T", s)
		}
		values = append(values, raw.Value)
	}
	return values
}

// TestDeadCodeElimination tests the dead code pass
func TestDeadCodeElimination(t *testing.T) {
	stmts := []ast.Stmt{
		&ast.ForStmt{
			Value: "x",
			Iter:  &ast.Ident{Name: "xs"},
			Body: []ast.Stmt{
				&ast.RawStmt{Value: "before"},
				&ast.BreakStmt{},
				&ast.RawStmt{Value: "never"},
				&ast.EchoStmt{X: &ast.Ident{Name: "x"}},
				&ast.ElseForStmt{},
				&ast.RawStmt{Value: "empty"},
			},
		},
	}

	stmts, changed := (&DeadCodePass{}).Run(stmts)
	if !changed {
		t.Fatal("expected the pass to report a change")
	}

	body := stmts[0].(*ast.ForStmt).Body
	if len(body) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(body))
	}
	if _, ok := body[1].(*ast.BreakStmt); !ok {
		t.Errorf("expected BreakStmt, got %T", body[1])
	}
	if _, ok := body[2].(*ast.ElseForStmt); !ok {
		t.Errorf("expected the else marker to survive, got %T", body[2])
	}
	if raw := body[3].(*ast.RawStmt); raw.Value != "empty" {
		t.Errorf("expected the else branch to survive, got %q", raw.Value)
	}
}

func TestDeadCodeElimination_SwitchCases(t *testing.T) {
	stmts := parse(t, "{% switch a %}{% case 1 %}x{% break %}y{% case 2 %}z{% default %}w{% endswitch %}")

	stmts, changed := (&DeadCodePass{}).Run(stmts)
	if !changed {
		t.Fatal("expected the pass to report a change")
	}
	for _, s := range stmts[0].(*ast.SwitchStmt).Body {
		if raw, ok := s.(*ast.RawStmt); ok && raw.Value == "y" {
			t.Error("expected the fragment after break to be removed")
		}
	}
}

func TestMergeRaw(t *testing.T) {
	stmts := []ast.Stmt{
		&ast.RawStmt{Value: "a"},
		&ast.RawStmt{Value: "b"},
		&ast.EchoStmt{X: &ast.Ident{Name: "x"}},
		&ast.RawStmt{Value: "c"},
		&ast.BlockStmt{Name: "b", Body: []ast.Stmt{&ast.RawStmt{Value: "d"}, &ast.RawStmt{Value: "e"}}},
	}

	stmts, changed := (&MergeRawPass{}).Run(stmts)
	if !changed {
		t.Fatal("expected the pass to report a change")
	}
	if len(stmts) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(stmts))
	}
	if raw := stmts[0].(*ast.RawStmt); raw.Value != "ab" {
		t.Errorf("got %q, want ab", raw.Value)
	}
	block := stmts[3].(*ast.BlockStmt)
	if len(block.Body) != 1 || block.Body[0].(*ast.RawStmt).Value != "de" {
		t.Errorf("expected the block body to merge into de")
	}
}

// TestOptimizer tests the full pipeline
func TestOptimizer(t *testing.T) {
	var buf bytes.Buffer
	opt := NewOptimizer()
	opt.SetLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	stmts := opt.Optimize(parse(t, "a{% if 1 + 1 == 2 %}b{% else %}c{% endif %}d"))

	if got := rawValues(t, stmts); len(got) != 1 || got[0] != "abd" {
		t.Fatalf("got %q, want [abd]", got)
	}

	stats := opt.Stats()
	for _, name := range []string{"ConstantFolding", "ConstantCondition", "MergeRaw"} {
		if stats.PassChanges[name] == 0 {
			t.Errorf("expected %s to have changed the template", name)
		}
	}
	if stats.Iterations < 2 {
		t.Errorf("expected a confirming round, got %d iterations", stats.Iterations)
	}
	if !strings.Contains(buf.String(), `"pass":"ConstantCondition"`) {
		t.Errorf("expected a debug line per changing pass, got %s", buf.String())
	}
	if !strings.Contains(stats.String(), "MergeRaw: 1") {
		t.Errorf("unexpected stats summary:\n%s", stats.String())
	}
}

type countingPass struct{ runs int }

func (p *countingPass) Name() string { return "Counting" }

func (p *countingPass) Run(stmts []ast.Stmt) ([]ast.Stmt, bool) {
	p.runs++
	return stmts, true
}

func TestOptimizer_MaxIterations(t *testing.T) {
	pass := &countingPass{}
	opt := NewOptimizer()
	opt.AddPass(pass)
	opt.SetMaxIterations(3)

	opt.Optimize(nil)

	if pass.runs != 3 {
		t.Errorf("expected 3 runs, got %d", pass.runs)
	}
	if opt.Stats().Iterations != 3 {
		t.Errorf("expected 3 iterations, got %d", opt.Stats().Iterations)
	}
}
