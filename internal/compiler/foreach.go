package compiler

import (
	"strconv"
	"strings"

	"github.com/hassan/volt/internal/parser/ast"
)

// compileForeach compiles a for loop. Temporaries are named after the
// unique prefix and the loop depth. The loop context object is only built
// when the body reads loop, and the iterated flag only when the loop has
// an else branch.
//
// ALGORITHM (loop context lowering):
//  1. Compile the body first; reading loop inside it marks this depth in
//     loopPointers
//  2. If marked, copy the iterable to $<prefix><depth>iterator and build a
//     stdClass holding length, index, index0, revindex and revindex0
//  3. At the top of every iteration refresh first, last and the indexes
//     from the incr counter
//  4. Increment incr where the iteration ends, which is before the else
//     branch when there is one
//
// EXAMPLE:
//
//	{% for x in xs %}{{ loop.index }}{% endfor %}
//
//	<?php $v1iterator = $xs; $v1incr = 0; $v1loop = new \stdClass(); ... ?>
//	<?php foreach ($v1iterator as $x) { ?><?php $v1loop->first = ($v1incr == 0); ... ?>
//	<?= $v1loop->index ?><?php $v1incr++; } ?>
//
// Here v is the unique prefix. Nested loops use their own depth, so an
// inner loop never overwrites the outer context.
func (c *Compiler) compileForeach(s *ast.ForStmt, extendsMode bool) string {
	c.foreachLevel++
	level := c.foreachLevel
	defer func() {
		delete(c.loopPointers, level)
		delete(c.forElsePointers, level)
		c.foreachLevel--
	}()

	pl := "$" + c.uniquePrefix() + strconv.Itoa(level)
	iter := c.expression(s.Iter, false)

	var b strings.Builder

	hasElse := false
	for _, stmt := range s.Body {
		if _, ok := stmt.(*ast.ElseForStmt); ok {
			hasElse = true
			break
		}
	}
	if hasElse {
		b.WriteString("<?php " + pl + "iterated = false; ?>")
		c.forElsePointers[level] = forElse{prefix: pl, guarded: s.If != nil}
	}

	body := c.statementList(s.Body, extendsMode)
	loopContext := c.loopPointers[level]

	if loopContext {
		b.WriteString("<?php " + pl + "iterator = " + iter + "; ")
		b.WriteString(pl + "incr = 0; ")
		b.WriteString(pl + "loop = new \\stdClass(); ")
		b.WriteString(pl + "loop->self = &" + pl + "loop; ")
		b.WriteString(pl + "loop->length = count(" + pl + "iterator); ")
		b.WriteString(pl + "loop->index = 1; ")
		b.WriteString(pl + "loop->index0 = 0; ")
		b.WriteString(pl + "loop->revindex = " + pl + "loop->length; ")
		b.WriteString(pl + "loop->revindex0 = " + pl + "loop->length - 1; ?>")
		iter = pl + "iterator"
	}

	if s.Key != "" {
		b.WriteString("<?php foreach (" + iter + " as $" + s.Key + " => $" + s.Value + ") { ")
	} else {
		b.WriteString("<?php foreach (" + iter + " as $" + s.Value + ") { ")
	}
	if s.If != nil {
		b.WriteString("if (" + c.expression(s.If, false) + ") { ?>")
	} else {
		b.WriteString("?>")
	}

	if loopContext {
		b.WriteString("<?php " + pl + "loop->first = (" + pl + "incr == 0); ")
		b.WriteString(pl + "loop->index = " + pl + "incr + 1; ")
		b.WriteString(pl + "loop->index0 = " + pl + "incr; ")
		b.WriteString(pl + "loop->revindex = " + pl + "loop->length - " + pl + "incr; ")
		b.WriteString(pl + "loop->revindex0 = " + pl + "loop->length - (" + pl + "incr + 1); ")
		b.WriteString(pl + "loop->last = (" + pl + "incr == (" + pl + "loop->length - 1)); ?>")
	}

	if hasElse {
		b.WriteString("<?php " + pl + "iterated = true; ?>")
	}

	b.WriteString(body)

	switch {
	case hasElse:
		// The else branch already closed the loop.
		b.WriteString("<?php } ?>")
	default:
		if s.If != nil {
			b.WriteString("<?php } ?>")
		}
		if loopContext {
			b.WriteString("<?php " + pl + "incr++; } ?>")
		} else {
			b.WriteString("<?php } ?>")
		}
	}

	return b.String()
}

// compileForElse closes the innermost loop and opens its else branch.
func (c *Compiler) compileForElse() string {
	level := c.foreachLevel
	fe, ok := c.forElsePointers[level]
	if !ok {
		return ""
	}

	code := "<?php "
	if fe.guarded {
		code += "} "
	}
	if c.loopPointers[level] {
		code += fe.prefix + "incr++; "
	}
	return code + "} if (!" + fe.prefix + "iterated) { ?>"
}
