package compiler

import (
	"fmt"

	"github.com/hassan/volt/internal/lexer"
)

// CompileError is a fatal code generation or I/O failure. Msg is the
// complete user-facing message; File and Line locate it when known.
type CompileError struct {
	Msg  string
	File string
	Line int

	// Err is the underlying cause, if any.
	Err error
}

func (e *CompileError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// bailout carries an error up the recursive compile functions to the
// public entry point that recovers it.
type bailout struct {
	err error
}

// abort unwinds the current compile with err.
func abort(err error) {
	panic(bailout{err: err})
}

// fail aborts with a CompileError.
func fail(format string, args ...any) {
	abort(&CompileError{Msg: fmt.Sprintf(format, args...)})
}

// failAt aborts with a CompileError located at pos. The message is expected
// to mention the position itself.
func failAt(pos lexer.Position, format string, args ...any) {
	abort(&CompileError{
		Msg:  fmt.Sprintf(format, args...),
		File: pos.Filename,
		Line: pos.Line,
	})
}

// failWrap aborts with a CompileError caused by err.
func failWrap(err error, format string, args ...any) {
	abort(&CompileError{Msg: fmt.Sprintf(format, args...), Err: err})
}

// recoverBailout turns a bailout panic into *errp. Other panics propagate.
func recoverBailout(errp *error) {
	if r := recover(); r != nil {
		b, ok := r.(bailout)
		if !ok {
			panic(r)
		}
		*errp = b.err
	}
}
