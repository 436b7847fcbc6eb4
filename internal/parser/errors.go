package parser

import "fmt"

// SyntaxError reports a template that cannot be parsed.
type SyntaxError struct {
	Msg  string
	File string
	Line int
}

func newSyntaxError(msg, file string, line int) *SyntaxError {
	return &SyntaxError{Msg: msg, File: file, Line: line}
}

// Error formats the error as "<msg> in <file> on line <n>", capped at 128
// bytes plus the length of the file name.
func (e *SyntaxError) Error() string {
	s := fmt.Sprintf("%s in %s on line %d", e.Msg, e.File, e.Line)
	if limit := 128 + len(e.File); len(s) > limit {
		s = s[:limit]
	}
	return s
}
