package compiler

import (
	"strings"

	"github.com/hassan/volt/internal/parser/ast"
)

// Block is one entry of a template's block map.
//
// Named entries come from {% block name %}. Until the block is compiled its
// statements are kept in Body so a child template can still override it;
// once compiled (Resolved) the code is in Code. Unnamed entries are the
// already compiled text between named blocks.
type Block struct {
	Name     string
	Code     string
	Body     []ast.Stmt
	Resolved bool
}

// BlockMap is the ordered result of compiling a template in extends mode.
//
// EXAMPLE:
//
//	<html>{% block title %}T{% endblock %}</html>
//
//	[{Code: "<html>"}, {Name: "title", Body: [T]}, {Code: "</html>"}]
//
// DESIGN CHOICE: entries are a slice rather than a map because:
// - The merge must reproduce the parent's layout order
// - Unnamed text entries have no key
type BlockMap struct {
	Entries []Block
}

// NewBlockMap returns an empty block map.
func NewBlockMap() *BlockMap {
	return &BlockMap{Entries: make([]Block, 0)}
}

// Lookup returns the named block. Unnamed entries never match.
func (m *BlockMap) Lookup(name string) (*Block, bool) {
	if m == nil || name == "" {
		return nil, false
	}
	for i := range m.Entries {
		if m.Entries[i].Name == name {
			return &m.Entries[i], true
		}
	}
	return nil, false
}

// Set stores the statements of a named block, replacing an earlier entry of
// the same name in place.
func (m *BlockMap) Set(name string, body []ast.Stmt) {
	if b, ok := m.Lookup(name); ok {
		*b = Block{Name: name, Body: body}
		return
	}
	m.Entries = append(m.Entries, Block{Name: name, Body: body})
}

// SetCode stores the compiled code of a named block.
func (m *BlockMap) SetCode(name, code string) {
	if b, ok := m.Lookup(name); ok {
		*b = Block{Name: name, Code: code, Resolved: true}
		return
	}
	m.Entries = append(m.Entries, Block{Name: name, Code: code, Resolved: true})
}

// AppendCode adds an unnamed entry of compiled text.
func (m *BlockMap) AppendCode(code string) {
	m.Entries = append(m.Entries, Block{Code: code, Resolved: true})
}

// Names lists the named blocks in order.
func (m *BlockMap) Names() []string {
	names := make([]string, 0, len(m.Entries))
	for _, b := range m.Entries {
		if b.Name != "" {
			names = append(names, b.Name)
		}
	}
	return names
}

// Len returns the number of entries.
func (m *BlockMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Entries)
}

// Code concatenates the compiled entries. Unresolved blocks contribute
// nothing.
func (m *BlockMap) Code() string {
	if m == nil {
		return ""
	}
	var b strings.Builder
	for _, e := range m.Entries {
		if e.Resolved {
			b.WriteString(e.Code)
		}
	}
	return b.String()
}
