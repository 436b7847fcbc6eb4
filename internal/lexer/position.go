// Package lexer provides the scanner for the template language. It turns a
// template source into a stream of tokens that the parser consumes one at a
// time, switching between literal text, code and comment modes as it meets
// the {% %}, {{ }} and {# #} delimiters.
package lexer

import "strconv"

// Position is a location in a template.
//
// Diagnostics in this language are line based: every error message ends with
// "in <file> on line <n>", so a position only records the file and line.
type Position struct {
	// Filename is the template path, or "eval code" for in-memory sources.
	Filename string

	// Line is the 1-based line number. Zero means unknown.
	Line int
}

// String formats the position as "file:line".
func (p Position) String() string {
	if p.Filename == "" {
		return strconv.Itoa(p.Line)
	}
	return p.Filename + ":" + strconv.Itoa(p.Line)
}

// IsValid reports whether the position carries a line number.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Before reports whether p comes earlier than q in the same file.
func (p Position) Before(q Position) bool {
	return p.Filename == q.Filename && p.Line < q.Line
}
