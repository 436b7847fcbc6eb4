package compiler

import (
	"github.com/hassan/volt/internal/parser/ast"
)

// builtinFilters map a filter name to the opening of its call. The
// arguments and a closing parenthesis follow.
var builtinFilters = map[string]string{
	"length":           "$this->length(",
	"e":                "$this->escaper->escapeHtml(",
	"escape":           "$this->escaper->escapeHtml(",
	"escape_css":       "$this->escaper->escapeCss(",
	"escape_js":        "$this->escaper->escapeJs(",
	"escape_attr":      "$this->escaper->escapeHtmlAttr(",
	"trim":             "trim(",
	"left_trim":        "ltrim(",
	"right_trim":       "rtrim(",
	"striptags":        "strip_tags(",
	"url_encode":       "urlencode(",
	"slashes":          "addslashes(",
	"stripslashes":     "stripslashes(",
	"nl2br":            "nl2br(",
	"keys":             "array_keys(",
	"lower":            "Phalcon\\Text::lower(",
	"lowercase":        "Phalcon\\Text::lower(",
	"upper":            "Phalcon\\Text::upper(",
	"uppercase":        "Phalcon\\Text::upper(",
	"capitalize":       "ucwords(",
	"sort":             "$this->sort(",
	"json_encode":      "json_encode(",
	"json_decode":      "json_decode(",
	"format":           "sprintf(",
	"abs":              "abs(",
	"slice":            "$this->slice(",
	"convert_encoding": "$this->convertEncoding(",
}

// resolveFilter compiles left|filter. The piped value becomes the first
// argument of the filter, except for default which uses it as the
// condition.
func (c *Compiler) resolveFilter(filter ast.Expr, left string) string {
	var (
		name string
		call *ast.CallExpr
	)
	switch f := filter.(type) {
	case *ast.Ident:
		name = f.Name
	case *ast.CallExpr:
		ident, ok := f.Fun.(*ast.Ident)
		if !ok {
			pos := filter.Pos()
			failAt(pos, "Unknown filter type in %s on line %d", pos.Filename, pos.Line)
		}
		name, call = ident.Name, f
	default:
		pos := filter.Pos()
		failAt(pos, "Unknown filter type in %s on line %d", pos.Filename, pos.Line)
	}

	var raw []*ast.Argument
	args := left
	if call != nil && len(call.Args) > 0 {
		raw = call.Args
		if name != "default" {
			piped := &ast.Argument{
				Value:    &ast.ResolvedExpr{Code: left, Position: call.Position},
				Position: call.Position,
			}
			raw = append([]*ast.Argument{piped}, call.Args...)
		}
		args = c.arguments(raw, false)
	}

	if code, ok := c.extensionFilter(name, args, raw); ok {
		return code
	}
	if def, ok := c.filters[name]; ok {
		return def.compile(args, raw)
	}

	switch name {
	case "join":
		if call != nil && len(call.Args) > 0 {
			return "join(" + c.expression(call.Args[0].Value, false) + ", " + left + ")"
		}
		return "join(" + left + ")"
	case "default":
		return "(empty(" + left + ") ? (" + args + ") : (" + left + "))"
	}

	if open, ok := builtinFilters[name]; ok {
		return open + args + ")"
	}

	pos := filter.Pos()
	failAt(pos, "Unknown filter \"%s\" in %s on line %d", name, pos.Filename, pos.Line)
	return ""
}
