package compiler

import (
	"strings"
	"unicode"

	"github.com/hassan/volt/internal/parser/ast"
)

// tagMethods are the methods of the Phalcon\Tag helper, lower-cased.
var tagMethods = toSet(
	"appendtitle", "checkfield", "colorfield", "datefield", "datetimefield",
	"datetimelocalfield", "displayto", "emailfield", "endform", "filefield",
	"form", "friendlytitle", "getdoctype", "gettitle", "gettitleseparator",
	"getvalue", "hasvalue", "hiddenfield", "image", "imageinput",
	"javascriptinclude", "linkto", "monthfield", "numericfield",
	"passwordfield", "prependtitle", "radiofield", "rangefield",
	"renderattributes", "rendertitle", "resetinput", "searchfield", "select",
	"selectstatic", "setautoescape", "setdefault", "setdefaults", "setdoctype",
	"settitle", "settitleseparator", "stylesheetlink", "submitbutton",
	"taghtml", "taghtmlclose", "telfield", "textarea", "textfield",
	"timefield", "urlfield", "weekfield",
)

// arrayHelpers take their arguments as a single array.
var arrayHelpers = toSet(
	"link_to", "image", "form", "submit_button", "radio_field", "check_field",
	"file_field", "hidden_field", "password_field", "text_area", "text_field",
	"email_field", "date_field", "tel_field", "numeric_field", "image_input",
)

func toSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// camelize turns snake_case or kebab-case into camelCase: link_to becomes
// linkTo.
func camelize(name string) string {
	var b strings.Builder
	upper := false
	for _, r := range name {
		if r == '_' || r == '-' {
			upper = true
			continue
		}
		switch {
		case b.Len() == 0:
			b.WriteRune(unicode.ToLower(r))
		case upper:
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteRune(r)
		}
		upper = false
	}
	return b.String()
}

// functionCall compiles a call. Resolution order: extensions, user
// functions, built-in functions, tag helpers, and finally a macro call.
func (c *Compiler) functionCall(e *ast.CallExpr, doubleQuotes bool) string {
	args := c.arguments(e.Args, doubleQuotes)

	ident, ok := e.Fun.(*ast.Ident)
	if !ok {
		return c.expression(e.Fun, doubleQuotes) + "(" + args + ")"
	}
	name := ident.Name

	if code, ok := c.extensionFunction(name, args, e.Args); ok {
		return code
	}
	if def, ok := c.functions[name]; ok {
		return def.compile(args, e.Args)
	}

	switch name {
	case "get_content", "content":
		return "$this->getContent()"
	case "partial":
		return "$this->partial(" + args + ")"
	case "super":
		return c.compileSuper()
	}

	if method := camelize(name); method != "" {
		if _, ok := tagMethods[strings.ToLower(method)]; ok {
			if _, ok := arrayHelpers[name]; ok {
				return "$this->tag->" + method + "([" + args + "])"
			}
			return "$this->tag->" + method + "(" + args + ")"
		}
	}

	switch name {
	case "url":
		return "$this->url->get(" + args + ")"
	case "static_url":
		return "$this->url->getStatic(" + args + ")"
	case "date":
		return "date(" + args + ")"
	case "time":
		return "time()"
	case "dump":
		return "var_dump(" + args + ")"
	case "version":
		return "Phalcon\\Version::get()"
	case "version_id":
		return "Phalcon\\Version::getId()"
	case "constant":
		return "constant(" + args + ")"
	}

	return "$this->callMacro('" + name + "', [" + args + "])"
}

// compileSuper returns the parent's version of the current block. Inside a
// larger expression it is returned as a quoted string.
//
// The parent body is compiled with no current block, so a super() inside
// it yields an empty string instead of resolving to itself.
func (c *Compiler) compileSuper() string {
	block, ok := c.extendedBlocks.Lookup(c.currentBlock)
	if !ok {
		return "''"
	}

	code := block.Code
	if !block.Resolved {
		current := c.currentBlock
		c.currentBlock = ""
		code = c.blockBody(block.Body)
		c.currentBlock = current
	}
	if c.exprLevel == 1 {
		return code
	}
	return "'" + addSlashes(code) + "'"
}
