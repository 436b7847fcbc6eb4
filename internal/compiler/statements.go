package compiler

import (
	"regexp"
	"strings"

	"github.com/hassan/volt/internal/parser/ast"
)

// switchSpace matches the indentation, trailing blanks and runs of blanks
// removed from a switch body. The optional carriage return before a line
// end is captured so it survives the replacement.
var switchSpace = regexp.MustCompile(`(?m)^[\t\p{Zs}]+|[\t\p{Zs}]+(\r?)$|[\t\p{Zs}]{2,}`)

// statementList compiles stmts in order. In block mode, named blocks are
// collected into c.blocks and the text between them is stored as unnamed
// entries.
func (c *Compiler) statementList(stmts []ast.Stmt, extendsMode bool) string {
	if len(stmts) == 0 {
		return ""
	}

	blockMode := c.extended || extendsMode
	entered := blockMode
	if entered {
		c.blockLevel++
	}
	c.level++

	var b strings.Builder
	for _, stmt := range stmts {
		if code, ok := c.extensionStatement(stmt); ok {
			b.WriteString(code)
			continue
		}

		switch s := stmt.(type) {
		case *ast.RawStmt:
			b.WriteString(s.Value)

		case *ast.IfStmt:
			b.WriteString("<?php if (" + c.expression(s.Cond, false) + ") { ?>")
			b.WriteString(c.statementList(s.Then, extendsMode))
			if s.Else != nil {
				b.WriteString("<?php } else { ?>")
				b.WriteString(c.statementList(s.Else, extendsMode))
			}
			b.WriteString("<?php } ?>")

		case *ast.ElseIfStmt:
			b.WriteString("<?php } elseif (" + c.expression(s.Cond, false) + ") { ?>")

		case *ast.SwitchStmt:
			b.WriteString(c.compileSwitch(s, extendsMode))

		case *ast.CaseStmt:
			b.WriteString("<?php case " + c.expression(s.Value, false) + ": ?>")

		case *ast.DefaultStmt:
			b.WriteString("<?php default: ?>")

		case *ast.ForStmt:
			b.WriteString(c.compileForeach(s, extendsMode))

		case *ast.ElseForStmt:
			b.WriteString(c.compileForElse())

		case *ast.SetStmt:
			b.WriteString(c.compileSet(s))

		case *ast.EchoStmt:
			b.WriteString(c.compileEcho(s))

		case *ast.BlockStmt:
			if blockMode {
				if b.Len() > 0 {
					c.blocks.AppendCode(b.String())
					b.Reset()
				}
				c.blocks.Set(s.Name, s.Body)
			} else {
				b.WriteString(c.statementList(s.Body, extendsMode))
			}

		case *ast.ExtendsStmt:
			c.compileExtends(s)
			blockMode = true

		case *ast.IncludeStmt:
			b.WriteString(c.compileInclude(s))

		case *ast.DoStmt:
			b.WriteString("<?php " + c.expression(s.X, false) + "; ?>")

		case *ast.ReturnStmt:
			b.WriteString("<?php return " + c.expression(s.X, false) + "; ?>")

		case *ast.AutoescapeStmt:
			saved := c.autoescape
			c.autoescape = s.Enable
			b.WriteString(c.statementList(s.Body, extendsMode))
			c.autoescape = saved

		case *ast.ContinueStmt:
			b.WriteString("<?php continue; ?>")

		case *ast.BreakStmt:
			b.WriteString("<?php break; ?>")

		case *ast.MacroStmt:
			b.WriteString(c.compileMacro(s, extendsMode))

		case *ast.CacheStmt:
			b.WriteString(c.compileCache(s, extendsMode))

		case *ast.CallStmt, *ast.EmptyStmt:

		default:
			pos := stmt.Pos()
			failAt(pos, "Unknown statement %T in %s on line %d", stmt, pos.Filename, pos.Line)
		}
	}

	if entered {
		if c.blockLevel == 1 && b.Len() > 0 {
			c.blocks.AppendCode(b.String())
		}
		c.blockLevel--
	}
	c.level--

	return b.String()
}

func (c *Compiler) compileSwitch(s *ast.SwitchStmt, extendsMode bool) string {
	code := "<?php switch (" + c.expression(s.Tag, false) + "): ?>"
	if body := c.statementList(s.Body, extendsMode); body != "" {
		code += switchSpace.ReplaceAllString(body, "${1}")
	}
	return code + "<?php endswitch; ?>"
}

func (c *Compiler) compileSet(s *ast.SetStmt) string {
	var b strings.Builder
	b.WriteString("<?php")
	for _, a := range s.Assignments {
		value := c.expression(a.Value, false)
		target := c.expression(a.Target, false)
		b.WriteString(" " + target + " " + a.Op + " " + value + ";")
	}
	b.WriteString(" ?>")
	return b.String()
}

func (c *Compiler) compileEcho(s *ast.EchoStmt) string {
	code := c.expression(s.X, false)

	if call, ok := s.X.(*ast.CallExpr); ok {
		if isTagFactory(call) {
			code = c.expression(s.X, true)
		}
		if name, ok := call.Fun.(*ast.Ident); ok && name.Name == "super" {
			return code
		}
	}

	if c.autoescape {
		return "<?= $this->escaper->escapeHtml(" + code + ") ?>"
	}
	return "<?= " + code + " ?>"
}

// isTagFactory reports whether call is a method call on the tag service,
// directly or through a chain of calls.
func isTagFactory(call *ast.CallExpr) bool {
	attr, ok := call.Fun.(*ast.AttrExpr)
	if !ok {
		return false
	}
	switch x := attr.X.(type) {
	case *ast.Ident:
		return x.Name == "tag"
	case *ast.CallExpr:
		return isTagFactory(x)
	}
	return false
}

// compileInclude inlines a static include without parameters and leaves
// the rest to the runtime.
func (c *Compiler) compileInclude(s *ast.IncludeStmt) string {
	if lit, ok := s.Path.(*ast.StringLit); ok && s.Params == nil {
		sub := c.spawn()
		out := sub.compile(c.ctx, c.finalPath(lit.Value), false)
		if out != nil {
			return out.Code
		}

		data, err := c.artifacts.Read(c.ctx, sub.CompiledTemplatePath())
		if err != nil {
			failWrap(err, "Template file %s could not be opened", sub.CompiledTemplatePath())
		}
		return string(data)
	}

	path := c.expression(s.Path, false)
	if s.Params == nil {
		return "<?php $this->partial(" + path + "); ?>"
	}
	return "<?php $this->partial(" + path + ", " + c.expression(s.Params, false) + "); ?>"
}

// compileExtends compiles the parent template in extends mode and keeps its
// block map for merging.
func (c *Compiler) compileExtends(s *ast.ExtendsStmt) {
	sub := c.spawn()
	path := c.finalPath(s.Path.Value)
	c.logger.Debug().Str("template", c.currentPath).Str("parent", path).Msg("compiling parent template")

	out := sub.compile(c.ctx, path, true)
	var blocks *BlockMap
	if out != nil && out.Blocks != nil {
		blocks = out.Blocks
	} else {
		blocks = sub.readBlockMap(sub.CompiledTemplatePath())
	}

	c.extended = true
	c.extendedBlocks = blocks
}

func (c *Compiler) compileCache(s *ast.CacheStmt, extendsMode bool) string {
	key := c.expression(s.Key, false)

	var lifetime string
	switch lt := s.Lifetime.(type) {
	case nil:
	case *ast.Ident:
		lifetime = "$" + lt.Name
	default:
		lifetime = c.expression(lt, false)
	}

	var b strings.Builder
	b.WriteString("<?php $_cache[" + key + "] = $this->di->get('viewCache'); ")
	if lifetime != "" {
		b.WriteString("$_cacheKey[" + key + "] = $_cache[" + key + "]->start(" + key + ", " + lifetime + "); ")
	} else {
		b.WriteString("$_cacheKey[" + key + "] = $_cache[" + key + "]->start(" + key + "); ")
	}
	b.WriteString("if ($_cacheKey[" + key + "] === null) { ?>")
	b.WriteString(c.statementList(s.Body, extendsMode))
	if lifetime != "" {
		b.WriteString("<?php $_cache[" + key + "]->save(" + key + ", null, " + lifetime + "); ")
	} else {
		b.WriteString("<?php $_cache[" + key + "]->save(" + key + "); ")
	}
	b.WriteString("} else { echo $_cacheKey[" + key + "]; } ?>")
	return b.String()
}
