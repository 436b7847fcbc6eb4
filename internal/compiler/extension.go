package compiler

import (
	"github.com/hassan/volt/internal/parser/ast"
)

// Definition is the compiled form of a user function or filter. It is
// either an Alias or a Callback.
type Definition interface {
	compile(args string, raw []*ast.Argument) string
}

// Alias maps a template function or filter onto a host function of the
// given name: {{ random() }} with Alias("mt_rand") emits mt_rand().
type Alias string

func (a Alias) compile(args string, _ []*ast.Argument) string {
	return string(a) + "(" + args + ")"
}

// Callback produces the code for a call itself. args is the compiled
// argument list and raw the arguments as parsed; for filters raw starts with
// the piped value.
type Callback func(args string, raw []*ast.Argument) string

func (f Callback) compile(args string, raw []*ast.Argument) string {
	return f(args, raw)
}

// Extensions may implement any subset of the interfaces below. Hooks run in
// registration order and the first one reporting ok wins; otherwise the
// built-in resolution applies.

// Initializer is called once when the extension is added.
type Initializer interface {
	Initialize(c *Compiler)
}

// ExpressionResolver overrides the code for any expression.
type ExpressionResolver interface {
	ResolveExpression(expr ast.Expr) (code string, ok bool)
}

// FunctionCompiler overrides the code for a call to a named function.
type FunctionCompiler interface {
	CompileFunction(name, args string, raw []*ast.Argument) (code string, ok bool)
}

// FilterCompiler overrides the code for a named filter.
type FilterCompiler interface {
	CompileFilter(name, args string, raw []*ast.Argument) (code string, ok bool)
}

// StatementCompiler overrides the code for a statement.
type StatementCompiler interface {
	CompileStatement(stmt ast.Stmt) (code string, ok bool)
}

// Container reports which names are services of the host application.
// Attribute reads on a service compile to $this->name instead of $name.
type Container interface {
	Has(name string) bool
}

// Services is a Container holding a fixed set of names.
type Services []string

func (s Services) Has(name string) bool {
	for _, n := range s {
		if n == name {
			return true
		}
	}
	return false
}

func (c *Compiler) extensionExpression(expr ast.Expr) (string, bool) {
	for _, ext := range c.extensions {
		if r, ok := ext.(ExpressionResolver); ok {
			if code, ok := r.ResolveExpression(expr); ok {
				return code, true
			}
		}
	}
	return "", false
}

func (c *Compiler) extensionFunction(name, args string, raw []*ast.Argument) (string, bool) {
	for _, ext := range c.extensions {
		if r, ok := ext.(FunctionCompiler); ok {
			if code, ok := r.CompileFunction(name, args, raw); ok {
				return code, true
			}
		}
	}
	return "", false
}

func (c *Compiler) extensionFilter(name, args string, raw []*ast.Argument) (string, bool) {
	for _, ext := range c.extensions {
		if r, ok := ext.(FilterCompiler); ok {
			if code, ok := r.CompileFilter(name, args, raw); ok {
				return code, true
			}
		}
	}
	return "", false
}

func (c *Compiler) extensionStatement(stmt ast.Stmt) (string, bool) {
	for _, ext := range c.extensions {
		if r, ok := ext.(StatementCompiler); ok {
			if code, ok := r.CompileStatement(stmt); ok {
				return code, true
			}
		}
	}
	return "", false
}
