package compiler

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hassan/volt/internal/parser"
	"github.com/hassan/volt/internal/parser/ast"
	"github.com/hassan/volt/internal/pathutil"
)

func compileString(t *testing.T, c *Compiler, source string) string {
	t.Helper()
	out, err := c.CompileString(context.Background(), source, false)
	require.NoError(t, err)
	require.NotNil(t, out)
	return out.Code
}

func TestCompileString_Expressions(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"string", `{{ "hello" }}`, `<?= 'hello' ?>`},
		{"quoted string", `{{ "it's" }}`, `<?= 'it\'s' ?>`},
		{"integer", `{{ 42 }}`, `<?= 42 ?>`},
		{"double", `{{ 1.5 }}`, `<?= 1.5 ?>`},
		{"true", `{{ true }}`, `<?= true ?>`},
		{"null", `{{ null }}`, `<?= null ?>`},
		{"variable", `{{ name }}`, `<?= $name ?>`},
		{"concat", `{{ a ~ b }}`, `<?= $a . $b ?>`},
		{"pow", `{{ a ** 2 }}`, `<?= pow($a, 2) ?>`},
		{"arithmetic", `{{ (a + b) * c }}`, `<?= ($a + $b) * $c ?>`},
		{"comparison", `{{ a !== b }}`, `<?= $a !== $b ?>`},
		{"logical", `{{ a and not b }}`, `<?= $a && !$b ?>`},
		{"minus", `{{ -a }}`, `<?= -$a ?>`},
		{"range", `{{ a..b }}`, `<?= range($a, $b) ?>`},
		{"index", `{{ a[1] }}`, `<?= $a[1] ?>`},
		{"slice", `{{ a[1:2] }}`, `<?= $this->slice($a, 1, 2) ?>`},
		{"open slice", `{{ a[:2] }}`, `<?= $this->slice($a, null, 2) ?>`},
		{"ternary", `{{ a ? b : c }}`, `<?= ($a ? $b : $c) ?>`},
		{"in", `{{ a in b }}`, `<?= $this->isIncluded($a, $b) ?>`},
		{"not in", `{{ a not in b }}`, `<?= !$this->isIncluded($a, $b) ?>`},
		{"array", `{{ [1, 2] }}`, `<?= [1, 2] ?>`},
		{"named array", `{{ ["a": 1, "b": 2] }}`, `<?= ['a' => 1, 'b' => 2] ?>`},
		{"attribute", `{{ robot.name }}`, `<?= $robot->name ?>`},
		{"method", `{{ robot.name(1) }}`, `<?= $robot->name(1) ?>`},
		{"tag factory", `{{ tag.linkTo("a") }}`, `<?= $tag->linkTo("a") ?>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, compileString(t, New(), tt.source))
		})
	}
}

func TestCompileString_Tests(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`{{ a is defined }}`, `<?= isset($a) ?>`},
		{`{{ a is not defined }}`, `<?= !isset($a) ?>`},
		{`{{ a is not empty }}`, `<?= !empty($a) ?>`},
		{`{{ a is even }}`, `<?= ((($a) % 2) == 0) ?>`},
		{`{{ a is not odd }}`, `<?= ((($a) % 2) == 0) ?>`},
		{`{{ a is numeric }}`, `<?= is_numeric($a) ?>`},
		{`{{ a is iterable }}`, `<?= (is_array($a) || ($a) instanceof Traversable) ?>`},
		{`{{ a is divisibleby(3) }}`, `<?= ((($a) % (3)) == 0) ?>`},
		{`{{ a is sameas(b) }}`, `<?= ($a) === ($b) ?>`},
		{`{{ a is type("string") }}`, `<?= gettype($a) === ('string') ?>`},
		{`{{ a is 5 }}`, `<?= $a == 5 ?>`},
		{`{{ a is not 5 }}`, `<?= !($a == 5) ?>`},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			require.Equal(t, tt.want, compileString(t, New(), tt.source))
		})
	}
}

func TestCompileString_Functions(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`{{ str_replace("a", "b", "aabb") }}`, `<?= $this->callMacro('str_replace', ['a', 'b', 'aabb']) ?>`},
		{`{{ myfunction("a") }}`, `<?= $this->callMacro('myfunction', ['a']) ?>`},
		{`{{ content() }}`, `<?= $this->getContent() ?>`},
		{`{{ get_content() }}`, `<?= $this->getContent() ?>`},
		{`{{ partial("x", ["a": 1]) }}`, `<?= $this->partial('x', ['a' => 1]) ?>`},
		{`{{ url("posts") }}`, `<?= $this->url->get('posts') ?>`},
		{`{{ static_url("app.css") }}`, `<?= $this->url->getStatic('app.css') ?>`},
		{`{{ date("Y") }}`, `<?= date('Y') ?>`},
		{`{{ time() }}`, `<?= time() ?>`},
		{`{{ dump(a) }}`, `<?= var_dump($a) ?>`},
		{`{{ version() }}`, `<?= Phalcon\Version::get() ?>`},
		{`{{ constant("PHP_EOL") }}`, `<?= constant('PHP_EOL') ?>`},
		{`{{ link_to("a", "b") }}`, `<?= $this->tag->linkTo(['a', 'b']) ?>`},
		{`{{ stylesheet_link("app.css") }}`, `<?= $this->tag->stylesheetLink('app.css') ?>`},
		{`{{ super() }}`, `''`},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			require.Equal(t, tt.want, compileString(t, New(), tt.source))
		})
	}
}

func TestCompileString_Filters(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`{{ a|e }}`, `<?= $this->escaper->escapeHtml($a) ?>`},
		{`{{ a|escape_js }}`, `<?= $this->escaper->escapeJs($a) ?>`},
		{`{{ a|trim }}`, `<?= trim($a) ?>`},
		{`{{ a|length }}`, `<?= $this->length($a) ?>`},
		{`{{ a|upper }}`, `<?= Phalcon\Text::upper($a) ?>`},
		{`{{ a|trim|upper }}`, `<?= Phalcon\Text::upper(trim($a)) ?>`},
		{`{{ a|format("x") }}`, `<?= sprintf($a, 'x') ?>`},
		{`{{ a|join(",") }}`, `<?= join(',', $a) ?>`},
		{`{{ a|default(5) }}`, `<?= (empty($a) ? (5) : ($a)) ?>`},
		{`{{ robot.price|default(10.0) }}`, `<?= (empty($robot->price) ? (10.0) : ($robot->price)) ?>`},
		{`{{ a|convert_encoding("utf8", "latin1") }}`, `<?= $this->convertEncoding($a, 'utf8', 'latin1') ?>`},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			require.Equal(t, tt.want, compileString(t, New(), tt.source))
		})
	}
}

func TestCompileString_Statements(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"raw passthrough",
			"<p>\n  Hello\n</p>\n",
			"<p>\n  Hello\n</p>\n",
		},
		{
			"if else",
			`{% if i == 0 %}zero{% else %}not zero{% endif %}`,
			`<?php if ($i == 0) { ?>zero<?php } else { ?>not zero<?php } ?>`,
		},
		{
			"elseif",
			`{% if a %}1{% elseif b %}2{% endif %}`,
			`<?php if ($a) { ?>1<?php } elseif ($b) { ?>2<?php } ?>`,
		},
		{
			"content",
			"{% if some_eval %}\nClearly, the song is: {{ content() }}.\n{% endif %}",
			"<?php if ($some_eval) { ?>\nClearly, the song is: <?= $this->getContent() ?>.\n<?php } ?>",
		},
		{
			"set",
			`{% set a = 1, b += 2 %}`,
			`<?php $a = 1; $b += 2; ?>`,
		},
		{
			"set attribute",
			`{% set a.b = c %}`,
			`<?php $a->b = $c; ?>`,
		},
		{
			"do",
			`{% do a.save() %}`,
			`<?php $a->save(); ?>`,
		},
		{
			"return",
			`{% return a %}`,
			`<?php return $a; ?>`,
		},
		{
			"switch",
			`{% switch a %}{% case 1 %}one{% default %}other{% endswitch %}`,
			`<?php switch ($a): ?><?php case 1: ?>one<?php default: ?>other<?php endswitch; ?>`,
		},
		{
			"autoescape",
			`{% autoescape true %}{{ a }}{% endautoescape %}{{ a }}`,
			`<?= $this->escaper->escapeHtml($a) ?><?= $a ?>`,
		},
		{
			"dynamic include",
			`{% include name %}`,
			`<?php $this->partial($name); ?>`,
		},
		{
			"include with params",
			`{% include "x" with ["a": 1] %}`,
			`<?php $this->partial('x', ['a' => 1]); ?>`,
		},
		{
			"for",
			`{% for x in items %}{{ x }}{% endfor %}`,
			`<?php foreach ($items as $x) { ?><?= $x ?><?php } ?>`,
		},
		{
			"for key value",
			`{% for k, v in items %}{{ k }}{% endfor %}`,
			`<?php foreach ($items as $k => $v) { ?><?= $k ?><?php } ?>`,
		},
		{
			"for if",
			`{% for x in items if x %}{{ x }}{% endfor %}`,
			`<?php foreach ($items as $x) { if ($x) { ?><?= $x ?><?php } ?><?php } ?>`,
		},
		{
			"continue and break",
			`{% for x in items %}{% continue %}{% break %}{% endfor %}`,
			`<?php foreach ($items as $x) { ?><?php continue; ?><?php break; ?><?php } ?>`,
		},
		{
			"cache",
			`{% cache "k" 10 %}x{% endcache %}`,
			`<?php $_cache['k'] = $this->di->get('viewCache'); $_cacheKey['k'] = $_cache['k']->start('k', 10); ` +
				`if ($_cacheKey['k'] === null) { ?>x<?php $_cache['k']->save('k', null, 10); } else { echo $_cacheKey['k']; } ?>`,
		},
		{
			"cache variable lifetime",
			`{% cache "k" ttl %}x{% endcache %}`,
			`<?php $_cache['k'] = $this->di->get('viewCache'); $_cacheKey['k'] = $_cache['k']->start('k', $ttl); ` +
				`if ($_cacheKey['k'] === null) { ?>x<?php $_cache['k']->save('k', null, $ttl); } else { echo $_cacheKey['k']; } ?>`,
		},
		{
			"cache without lifetime",
			`{% cache "k" %}x{% endcache %}`,
			`<?php $_cache['k'] = $this->di->get('viewCache'); $_cacheKey['k'] = $_cache['k']->start('k'); ` +
				`if ($_cacheKey['k'] === null) { ?>x<?php $_cache['k']->save('k'); } else { echo $_cacheKey['k']; } ?>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, compileString(t, New(), tt.source))
		})
	}
}

func TestCompileString_LoopContext(t *testing.T) {
	c := New()
	c.SetUniquePrefix("p")

	got := compileString(t, c, `{% for x in items %}{{ loop.index }}{% endfor %}`)
	want := `<?php $p1iterator = $items; $p1incr = 0; $p1loop = new \stdClass(); $p1loop->self = &$p1loop; ` +
		`$p1loop->length = count($p1iterator); $p1loop->index = 1; $p1loop->index0 = 0; ` +
		`$p1loop->revindex = $p1loop->length; $p1loop->revindex0 = $p1loop->length - 1; ?>` +
		`<?php foreach ($p1iterator as $x) { ?>` +
		`<?php $p1loop->first = ($p1incr == 0); $p1loop->index = $p1incr + 1; $p1loop->index0 = $p1incr; ` +
		`$p1loop->revindex = $p1loop->length - $p1incr; $p1loop->revindex0 = $p1loop->length - ($p1incr + 1); ` +
		`$p1loop->last = ($p1incr == ($p1loop->length - 1)); ?>` +
		`<?= $p1loop->index ?>` +
		`<?php $p1incr++; } ?>`
	require.Equal(t, want, got)
}

func TestCompileString_NestedLoopContext(t *testing.T) {
	c := New()
	c.SetUniquePrefix("p")

	got := compileString(t, c, `{% for a in as %}{% for b in bs %}{{ loop.first }}{% endfor %}{% endfor %}`)
	require.Contains(t, got, `<?php foreach ($as as $a) { ?>`)
	require.Contains(t, got, `<?php foreach ($p2iterator as $b) { ?>`)
	require.Contains(t, got, `<?= $p2loop->first ?>`)
	require.NotContains(t, got, `$p1loop`)
}

func TestCompileString_ForElse(t *testing.T) {
	c := New()
	c.SetUniquePrefix("p")

	got := compileString(t, c, `{% for x in items %}{{ x }}{% else %}none{% endfor %}`)
	want := `<?php $p1iterated = false; ?><?php foreach ($items as $x) { ?><?php $p1iterated = true; ?>` +
		`<?= $x ?><?php } if (!$p1iterated) { ?>none<?php } ?>`
	require.Equal(t, want, got)

	got = compileString(t, c, `{% for x in items if x %}{{ x }}{% else %}none{% endfor %}`)
	want = `<?php $p1iterated = false; ?><?php foreach ($items as $x) { if ($x) { ?><?php $p1iterated = true; ?>` +
		`<?= $x ?><?php } } if (!$p1iterated) { ?>none<?php } ?>`
	require.Equal(t, want, got)
}

func TestCompileString_Macro(t *testing.T) {
	got := compileString(t, New(), `{% macro greet(name, greeting = "hi") %}{{ greeting }} {{ name }}{% endmacro %}`)
	want := `<?php $this->macros['greet'] = function($__p = null) { ` +
		`if (isset($__p[0])) { $name = $__p[0]; } else { if (is_array($__p) && array_key_exists('name', $__p)) { $name = $__p['name']; } ` +
		`else { throw new \Phalcon\Mvc\View\Exception('Macro "greet" was called without parameter name'); } } ` +
		`if (isset($__p[1])) { $greeting = $__p[1]; } else { if (is_array($__p) && array_key_exists('greeting', $__p)) { $greeting = $__p['greeting']; } ` +
		`else { $greeting = 'hi'; } } ?>` +
		`<?= $greeting ?> <?= $name ?>` +
		`<?php }; $this->macros['greet'] = \Closure::bind($this->macros['greet'], $this); ?>`
	require.Equal(t, want, got)

	got = compileString(t, New(), `{% macro hr() %}<hr>{% endmacro %}`)
	require.Equal(t, `<?php $this->macros['hr'] = function() { ?><hr><?php }; $this->macros['hr'] = \Closure::bind($this->macros['hr'], $this); ?>`, got)
}

func TestCompileString_DuplicateMacro(t *testing.T) {
	c := New()
	_, err := c.CompileString(context.Background(), "{% macro m() %}a{% endmacro %}{% macro m() %}b{% endmacro %}", false)
	require.EqualError(t, err, `Macro "m" is already defined`)

	// Macros do not leak into the next compile.
	out, err := c.CompileString(context.Background(), "{% macro m() %}a{% endmacro %}", false)
	require.NoError(t, err)
	require.NotEmpty(t, out.Code)
}

func TestCompileString_UserFunctionsAndFilters(t *testing.T) {
	c := New()
	c.AddFunction("random", Alias("mt_rand"))
	c.AddFunction("strtotime", Alias("strtotime"))
	c.AddFunction("json_encode", Alias("json_encode"))
	c.AddFunction("shuffle", Callback(func(args string, _ []*ast.Argument) string {
		return "str_shuffle(" + args + ")"
	}))
	c.AddFilter("reverse", Alias("strrev"))
	c.AddFilter("first", Callback(func(args string, raw []*ast.Argument) string {
		return "reset(" + args + ")"
	}))

	tests := []struct {
		source string
		want   string
	}{
		{`{{ random() }}`, `<?= mt_rand() ?>`},
		{`{{ strtotime("now") }}`, `<?= strtotime('now') ?>`},
		{`{{ shuffle("hello") }}`, `<?= str_shuffle('hello') ?>`},
		{`{{ json_encode(preparedParams|default([])) }}`, `<?= json_encode((empty($preparedParams) ? ([]) : ($preparedParams))) ?>`},
		{`{{ name|reverse }}`, `<?= strrev($name) ?>`},
		{`{{ items|first }}`, `<?= reset($items) ?>`},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			require.Equal(t, tt.want, compileString(t, c, tt.source))
		})
	}

	require.Len(t, c.Functions(), 4)
	require.Len(t, c.Filters(), 2)
}

type shoutExtension struct {
	initialized bool
}

func (e *shoutExtension) Initialize(*Compiler) { e.initialized = true }

func (e *shoutExtension) CompileFunction(name, args string, _ []*ast.Argument) (string, bool) {
	if name == "shout" {
		return "strtoupper(" + args + ")", true
	}
	return "", false
}

func (e *shoutExtension) CompileFilter(name, args string, _ []*ast.Argument) (string, bool) {
	if name == "e" {
		return "htmlspecialchars(" + args + ")", true
	}
	return "", false
}

func (e *shoutExtension) CompileStatement(stmt ast.Stmt) (string, bool) {
	if _, ok := stmt.(*ast.BreakStmt); ok {
		return "<?php break 2; ?>", true
	}
	return "", false
}

func (e *shoutExtension) ResolveExpression(expr ast.Expr) (string, bool) {
	if id, ok := expr.(*ast.Ident); ok && id.Name == "now" {
		return "time()", true
	}
	return "", false
}

func TestCompileString_Extensions(t *testing.T) {
	ext := &shoutExtension{}
	c := New()
	c.AddExtension(ext)
	require.True(t, ext.initialized)
	require.Len(t, c.Extensions(), 1)

	require.Equal(t, `<?= strtoupper('a') ?>`, compileString(t, c, `{{ shout("a") }}`))
	require.Equal(t, `<?= htmlspecialchars($a) ?>`, compileString(t, c, `{{ a|e }}`))
	require.Equal(t, `<?= time() ?>`, compileString(t, c, `{{ now }}`))
	require.Equal(t,
		`<?php foreach ($a as $x) { ?><?php break 2; ?><?php } ?>`,
		compileString(t, c, `{% for x in a %}{% break %}{% endfor %}`))

	// A second extension is consulted after the first.
	c.AddFunction("shout", Alias("ignored"))
	c.AddExtension(&shoutExtension{})
	require.Len(t, c.Extensions(), 2)
	require.Equal(t, `<?= strtoupper('a') ?>`, compileString(t, c, `{{ shout("a") }}`))
}

func TestCompileString_Services(t *testing.T) {
	c := New(WithContainer(Services{"session", "flash"}))
	require.Equal(t, `<?= $this->session->get('a') ?>`, compileString(t, c, `{{ session.get("a") }}`))
	require.Equal(t, `<?= $user->name ?>`, compileString(t, c, `{{ user.name }}`))
	require.Equal(t, `<?= $session ?>`, compileString(t, c, `{{ session }}`))
}

func TestCompileString_AutoescapeOption(t *testing.T) {
	c := New(WithOptions(map[string]any{OptAutoescape: true}))
	require.Equal(t, `<?= $this->escaper->escapeHtml($a) ?>`, compileString(t, c, `{{ a }}`))
	require.Equal(t, `<?= $a ?>`, compileString(t, c, `{% autoescape false %}{{ a }}{% endautoescape %}`))

	c.SetOption(OptAutoescape, "yes")
	_, err := c.CompileString(context.Background(), `{{ a }}`, false)
	require.EqualError(t, err, "'autoescape' must be bool")
}

func TestCompileString_Optimize(t *testing.T) {
	c := New(WithOptions(map[string]any{OptOptimize: true}))
	require.Equal(t, "yes", compileString(t, c, `{% if true %}yes{% else %}no{% endif %}`))
	require.Equal(t, "no", compileString(t, c, `{% if false %}yes{% else %}no{% endif %}`))
}

func TestCompileString_OptimizeKeepsOutput(t *testing.T) {
	tests := []struct {
		source string
		plain  string
		want   string
	}{
		{"{{ 1 + 2 * 3 }}", "<?= 1 + 2 * 3 ?>", "<?= 1 + 2 * 3 ?>"},
		{"{{ 2 * 3 + 1 }}", "<?= 2 * 3 + 1 ?>", "<?= 2 * 3 + 1 ?>"},
		{"{{ true or false and false }}", "<?= true || false && false ?>", "<?= true || false && false ?>"},
		{"{{ 1 + (2 + 3) * 4 }}", "<?= 1 + (2 + 3) * 4 ?>", "<?= 1 + 5 * 4 ?>"},
		{"{{ (1 + 2) * 3 }}", "<?= (1 + 2) * 3 ?>", "<?= 9 ?>"},
		{"{{ 1 == 1 and true }}", "<?= 1 == 1 && true ?>", "<?= true ?>"},
		{"{{ 'a' ~ 'b' }}", "<?= 'a' . 'b' ?>", "<?= 'ab' ?>"},
	}

	plain := New()
	optimized := New(WithOptions(map[string]any{OptOptimize: true}))
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			require.Equal(t, tt.plain, compileString(t, plain, tt.source))
			require.Equal(t, tt.want, compileString(t, optimized, tt.source))
		})
	}
}

func TestCompileString_Errors(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`{{ a|nope }}`, `Unknown filter "nope" in eval code on line 1`},
		{"\n{{ a|nope(1) }}", `Unknown filter "nope" in eval code on line 2`},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			_, err := New().CompileString(context.Background(), tt.source, false)
			require.EqualError(t, err, tt.want)

			var ce *CompileError
			require.True(t, errors.As(err, &ce))
			require.Equal(t, "eval code", ce.File)
		})
	}
}

func TestCompileString_SyntaxError(t *testing.T) {
	_, err := New().CompileString(context.Background(), `{% if %}`, false)
	require.Error(t, err)

	var se *parser.SyntaxError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "eval code", se.File)
}

func TestCompileString_ExtendsMode(t *testing.T) {
	out, err := New().CompileString(context.Background(), `<h1>{% block title %}T{% endblock %}</h1>`, true)
	require.NoError(t, err)
	require.Empty(t, out.Code)
	require.Equal(t, 3, out.Blocks.Len())
	require.Equal(t, []string{"title"}, out.Blocks.Names())
	require.Equal(t, "<h1>", out.Blocks.Entries[0].Code)
	require.Equal(t, "</h1>", out.Blocks.Entries[2].Code)

	b, ok := out.Blocks.Lookup("title")
	require.True(t, ok)
	require.False(t, b.Resolved)
	require.Len(t, b.Body, 1)
}

func TestParse(t *testing.T) {
	stmts, err := New().Parse(`{{ a }}`)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	require.Equal(t, "eval code", stmts[0].Pos().Filename)
}

func TestUniquePrefix(t *testing.T) {
	c := New()
	_, err := c.UniquePrefix()
	require.EqualError(t, err, "The unique compilation prefix is invalid")

	compileString(t, c, `x`)
	prefix, err := c.UniquePrefix()
	require.NoError(t, err)
	require.Equal(t, pathutil.UniquePathKey("eval code"), prefix)

	c = New()
	c.SetUniquePrefixFunc(func(c *Compiler) string { return "custom" })
	got := compileString(t, c, `{% for x in a %}{{ loop.last }}{% endfor %}`)
	require.Contains(t, got, "$custom1loop->last")
}

func TestOptions(t *testing.T) {
	c := New(WithOptions(map[string]any{OptStat: false}))
	require.Equal(t, false, c.Option(OptStat))
	require.Nil(t, c.Option("missing"))

	opts := c.Options()
	opts[OptStat] = true
	require.Equal(t, false, c.Option(OptStat))

	c.SetOptions(nil)
	require.Empty(t, c.Options())
}

func TestSettings_TypeErrors(t *testing.T) {
	tests := []struct {
		key   string
		value any
		want  string
	}{
		{OptAlways, "yes", "'always' must be a bool value"},
		{OptPrefix, 1, "'prefix' must be a string"},
		{OptPath, 1, "'path' must be a string or a closure"},
		{OptSeparator, 1, "'separator' must be a string"},
		{OptExtension, 1, "'extension' must be a string"},
		{OptStat, "no", "'stat' must be a bool value"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			c := New(WithOptions(map[string]any{tt.key: tt.value}))
			_, err := c.Compile(context.Background(), "index.volt", false)
			require.EqualError(t, err, tt.want)
		})
	}
}

func TestSettings_Deprecated(t *testing.T) {
	var buf bytes.Buffer
	c := New(
		WithLogger(zerolog.New(&buf)),
		WithOptions(map[string]any{"compiledExtension": ".tpl", "compiledSeparator": "_"}),
	)

	set := c.settings()
	require.Equal(t, ".tpl", set.extension)
	require.Equal(t, "_", set.separator)
	require.Contains(t, buf.String(), "The 'compiledExtension' option is deprecated. Use 'extension' instead.")

	// The new key wins over the deprecated one.
	c.SetOption(OptExtension, ".php")
	require.Equal(t, ".php", c.settings().extension)
}

func TestSwitchSpace(t *testing.T) {
	got := switchSpace.ReplaceAllString("\n    <?php case 1: ?>  x  \r\n", "${1}")
	require.Equal(t, "\n<?php case 1: ?>x\r\n", got)
}

func TestCamelize(t *testing.T) {
	tests := map[string]string{
		"link_to":       "linkTo",
		"text_field":    "textField",
		"form":          "form",
		"date-time":     "dateTime",
		"select_static": "selectStatic",
	}
	for in, want := range tests {
		require.Equal(t, want, camelize(in), in)
	}
}

func TestAddSlashes(t *testing.T) {
	require.Equal(t, `it\'s \"x\" \\ \0`, addSlashes("it's \"x\" \\ \x00"))
}

func TestPrepareVirtualPath(t *testing.T) {
	require.Equal(t, "_views_index.volt", prepareVirtualPath("/Views/Index.volt", "_"))
	require.Equal(t, "c%%%%app", prepareVirtualPath(`C:\app`, "%%"))
	require.Equal(t, "ab", prepareVirtualPath("ab\x00cd", "_"))
}
