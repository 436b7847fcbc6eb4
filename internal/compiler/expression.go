package compiler

import (
	"strconv"
	"strings"

	"github.com/hassan/volt/internal/parser/ast"
)

var binaryOperators = map[ast.BinaryOp]string{
	ast.OpAdd:          " + ",
	ast.OpSub:          " - ",
	ast.OpMul:          " * ",
	ast.OpDiv:          " / ",
	ast.OpMod:          " % ",
	ast.OpConcat:       " . ",
	ast.OpAnd:          " && ",
	ast.OpOr:           " || ",
	ast.OpEqual:        " == ",
	ast.OpNotEqual:     " != ",
	ast.OpIdentical:    " === ",
	ast.OpNotIdentical: " !== ",
	ast.OpLess:         " < ",
	ast.OpGreater:      " > ",
	ast.OpLessEqual:    " <= ",
	ast.OpGreaterEqual: " >= ",
}

// expression compiles an expression. With doubleQuotes set, string
// literals are emitted in double quotes.
func (c *Compiler) expression(expr ast.Expr, doubleQuotes bool) string {
	c.exprLevel++
	defer func() { c.exprLevel-- }()

	if code, ok := c.extensionExpression(expr); ok {
		return code
	}

	switch e := expr.(type) {
	case *ast.ArgList:
		return c.arguments(e.Items, doubleQuotes)

	case *ast.AttrExpr:
		return c.attributeReader(e)

	case *ast.IsExpr:
		code := c.resolveTest(e.Test, c.expression(e.X, doubleQuotes))
		if e.Not {
			return "!(" + code + ")"
		}
		return code

	case *ast.FilterExpr:
		return c.resolveFilter(e.Filter, c.expression(e.X, doubleQuotes))

	case *ast.IntLit:
		return e.Value
	case *ast.DoubleLit:
		return e.Value
	case *ast.ResolvedExpr:
		return e.Code

	case *ast.StringLit:
		if doubleQuotes {
			return `"` + e.Value + `"`
		}
		return "'" + strings.ReplaceAll(e.Value, "'", `\'`) + "'"

	case *ast.NullLit:
		return "null"
	case *ast.BoolLit:
		return strconv.FormatBool(e.Value)

	case *ast.Ident:
		return "$" + e.Name

	case *ast.UnaryExpr:
		x := c.expression(e.X, doubleQuotes)
		switch e.Op {
		case ast.OpNot:
			return "!" + x
		case ast.OpMinus:
			return "-" + x
		case ast.OpPlus:
			return "+" + x
		}

	case *ast.BinaryExpr:
		left := c.expression(e.X, doubleQuotes)
		right := c.expression(e.Y, doubleQuotes)
		if e.Op == ast.OpPow {
			return "pow(" + left + ", " + right + ")"
		}
		if op, ok := binaryOperators[e.Op]; ok {
			return left + op + right
		}

	case *ast.PostfixExpr:
		if e.Incr {
			return c.expression(e.X, doubleQuotes) + "++"
		}
		return c.expression(e.X, doubleQuotes) + "--"

	case *ast.IndexExpr:
		return c.expression(e.X, doubleQuotes) + "[" + c.expression(e.Index, doubleQuotes) + "]"

	case *ast.SliceExpr:
		start, end := "null", "null"
		if e.Start != nil {
			start = c.expression(e.Start, doubleQuotes)
		}
		if e.End != nil {
			end = c.expression(e.End, doubleQuotes)
		}
		return "$this->slice(" + c.expression(e.X, doubleQuotes) + ", " + start + ", " + end + ")"

	case *ast.CallExpr:
		return c.functionCall(e, doubleQuotes)

	case *ast.ArrayLit:
		return "[" + c.arguments(e.Items, doubleQuotes) + "]"

	case *ast.TernaryExpr:
		return "(" + c.expression(e.Cond, doubleQuotes) +
			" ? " + c.expression(e.Then, doubleQuotes) +
			" : " + c.expression(e.Else, doubleQuotes) + ")"

	case *ast.RangeExpr:
		return "range(" + c.expression(e.X, doubleQuotes) + ", " + c.expression(e.Y, doubleQuotes) + ")"

	case *ast.PredicateExpr:
		return predicate(e.Kind, c.expression(e.X, doubleQuotes), e.Not)

	case *ast.InExpr:
		code := "$this->isIncluded(" + c.expression(e.X, doubleQuotes) + ", " + c.expression(e.Y, doubleQuotes) + ")"
		if e.Not {
			return "!" + code
		}
		return code

	case *ast.ParenExpr:
		return "(" + c.expression(e.X, doubleQuotes) + ")"
	}

	pos := expr.Pos()
	failAt(pos, "Unknown expression %T in %s on line %d", expr, pos.Filename, pos.Line)
	return ""
}

// arguments compiles an argument or array item list. Named items become
// 'name' => value pairs.
func (c *Compiler) arguments(args []*ast.Argument, doubleQuotes bool) string {
	items := make([]string, 0, len(args))
	for _, arg := range args {
		code := c.expression(arg.Value, doubleQuotes)
		if arg.Named() {
			code = "'" + arg.Name + "' => " + code
		}
		items = append(items, code)
	}
	return strings.Join(items, ", ")
}

// attributeReader compiles x.name. The loop variable refers to the loop
// context of the innermost for, and names known to the container are read
// from the view.
func (c *Compiler) attributeReader(e *ast.AttrExpr) string {
	var code string
	if ident, ok := e.X.(*ast.Ident); ok {
		switch {
		case ident.Name == "loop":
			level := c.foreachLevel
			code = "$" + c.uniquePrefix() + strconv.Itoa(level) + "loop"
			c.loopPointers[level] = true
		case c.di != nil && c.di.Has(ident.Name):
			code = "$this->" + ident.Name
		default:
			code = "$" + ident.Name
		}
	} else {
		code = c.expression(e.X, false)
	}

	code += "->"
	if name, ok := e.Name.(*ast.Ident); ok {
		return code + name.Name
	}
	return code + c.expression(e.Name, false)
}

// addSlashes quotes ', ", \ and NUL with backslashes.
func addSlashes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '\'', '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(ch)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}
