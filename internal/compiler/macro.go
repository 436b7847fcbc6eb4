package compiler

import (
	"strconv"
	"strings"

	"github.com/hassan/volt/internal/parser/ast"
	"github.com/hassan/volt/internal/symtab"
)

// compileMacro compiles a macro into a closure stored on the view. The
// closure takes either positional or named arguments in one array.
//
// ALGORITHM (per parameter, in declaration order):
//  1. A positional argument at the parameter's index wins
//  2. Otherwise a named argument with the parameter's name
//  3. Otherwise the default value, or an exception when there is none
//
// EXAMPLE:
//
//	{% macro hr() %}<hr>{% endmacro %}
//
//	<?php $this->macros['hr'] = function() { ?><hr><?php };
//	$this->macros['hr'] = \Closure::bind($this->macros['hr'], $this); ?>
//
// Binding the closure to the view gives the body access to $this, so
// helpers such as escaping work inside macros.
func (c *Compiler) compileMacro(s *ast.MacroStmt, extendsMode bool) string {
	err := c.macros.Define(&symtab.Symbol{
		Name: s.Name,
		Kind: symtab.SymbolMacro,
		Pos:  s.Position,
		Decl: s,
	})
	if err != nil {
		failAt(s.Position, "Macro \"%s\" is already defined", s.Name)
	}

	slot := "$this->macros['" + s.Name + "']"

	var b strings.Builder
	b.WriteString("<?php " + slot + " = ")
	if len(s.Params) == 0 {
		b.WriteString("function() { ")
	} else {
		b.WriteString("function($__p = null) { ")
		for i, p := range s.Params {
			index := strconv.Itoa(i)
			b.WriteString("if (isset($__p[" + index + "])) { ")
			b.WriteString("$" + p.Name + " = $__p[" + index + "]; ")
			b.WriteString("} else { ")
			b.WriteString("if (is_array($__p) && array_key_exists('" + p.Name + "', $__p)) { ")
			b.WriteString("$" + p.Name + " = $__p['" + p.Name + "']; ")
			b.WriteString("} else { ")
			if p.Default != nil {
				b.WriteString("$" + p.Name + " = " + c.expression(p.Default, false) + "; ")
			} else {
				b.WriteString("throw new \\Phalcon\\Mvc\\View\\Exception('Macro \"" + s.Name +
					"\" was called without parameter " + p.Name + "'); ")
			}
			b.WriteString("} } ")
		}
	}
	b.WriteString("?>")

	b.WriteString(c.statementList(s.Body, extendsMode))

	b.WriteString("<?php }; " + slot + " = \\Closure::bind(" + slot + ", $this); ?>")
	return b.String()
}
