package compiler

import (
	"github.com/hassan/volt/internal/parser/ast"
)

// predicate compiles the built-in tests of "x is [not] name".
func predicate(kind ast.Predicate, left string, not bool) string {
	var code string
	switch kind {
	case ast.PredDefined:
		code = "isset(" + left + ")"
	case ast.PredEmpty:
		code = "empty(" + left + ")"
	case ast.PredEven:
		if not {
			return "(((" + left + ") % 2) != 0)"
		}
		return "(((" + left + ") % 2) == 0)"
	case ast.PredOdd:
		if not {
			return "(((" + left + ") % 2) == 0)"
		}
		return "(((" + left + ") % 2) != 0)"
	case ast.PredNumeric:
		code = "is_numeric(" + left + ")"
	case ast.PredScalar:
		code = "is_scalar(" + left + ")"
	case ast.PredIterable:
		code = "(is_array(" + left + ") || (" + left + ") instanceof Traversable)"
	}
	if not {
		return "!" + code
	}
	return code
}

var namedTests = map[string]ast.Predicate{
	"empty":    ast.PredEmpty,
	"even":     ast.PredEven,
	"odd":      ast.PredOdd,
	"numeric":  ast.PredNumeric,
	"scalar":   ast.PredScalar,
	"iterable": ast.PredIterable,
}

// resolveTest compiles "left is test" for tests that are not keywords.
// Anything unrecognized is an equality comparison.
func (c *Compiler) resolveTest(test ast.Expr, left string) string {
	switch t := test.(type) {
	case *ast.Ident:
		if kind, ok := namedTests[t.Name]; ok {
			return predicate(kind, left, false)
		}

	case *ast.CallExpr:
		if ident, ok := t.Fun.(*ast.Ident); ok {
			switch ident.Name {
			case "divisibleby":
				return "(((" + left + ") % (" + c.arguments(t.Args, false) + ")) == 0)"
			case "sameas":
				return "(" + left + ") === (" + c.arguments(t.Args, false) + ")"
			case "type":
				return "gettype(" + left + ") === (" + c.arguments(t.Args, false) + ")"
			}
		}
	}

	return left + " == " + c.expression(test, false)
}
