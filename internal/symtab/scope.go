package symtab

import (
	"fmt"
	"sort"
	"strings"
)

// ScopeKind represents the construct that opened a scope.
type ScopeKind int

const (
	// ScopeTemplate is the top level of a template.
	ScopeTemplate ScopeKind = iota

	// ScopeBlock is the body of {% block %}.
	ScopeBlock

	// ScopeMacro is the body of {% macro %}; its parameters live here.
	ScopeMacro

	// ScopeLoop is the body of {% for %} (allows break, continue and loop).
	ScopeLoop

	// ScopeSwitch is the body of {% switch %}.
	ScopeSwitch

	// ScopeIf is a branch of {% if %}.
	ScopeIf

	// ScopeCache is the body of {% cache %}.
	ScopeCache
)

// String returns a human-readable representation of the scope kind.
func (sk ScopeKind) String() string {
	switch sk {
	case ScopeTemplate:
		return "template"
	case ScopeBlock:
		return "block"
	case ScopeMacro:
		return "macro"
	case ScopeLoop:
		return "loop"
	case ScopeSwitch:
		return "switch"
	case ScopeIf:
		return "if"
	case ScopeCache:
		return "cache"
	default:
		return "unknown"
	}
}

// Scope is a region of a template where names can be declared and
// resolved. Inner scopes see the names of outer scopes.
//
// EXAMPLE:
//
//	{% macro m(a) %}               template > macro(m)
//	  {% for x in a %}             template > macro(m) > loop
//	    {% if x %}{{ a }}{% endif %}   ... > loop > if: a resolves to m's parameter
//
// DESIGN CHOICE: scopes form a tree with parent pointers because:
// - Lookup is a walk to the root
// - Checks such as "inside a loop" are a walk that stops at a boundary
type Scope struct {
	Kind   ScopeKind
	Parent *Scope

	// Name labels block and macro scopes with the block or macro name.
	Name string

	Symbols  map[string]*Symbol
	Children []*Scope

	// Depth is 0 for the template scope.
	Depth int
}

// NewScope creates a scope of the given kind nested in parent.
func NewScope(kind ScopeKind, parent *Scope) *Scope {
	depth := 0
	if parent != nil {
		depth = parent.Depth + 1
	}

	scope := &Scope{
		Kind:     kind,
		Parent:   parent,
		Symbols:  make(map[string]*Symbol),
		Children: make([]*Scope, 0),
		Depth:    depth,
	}
	if parent != nil {
		parent.Children = append(parent.Children, scope)
	}
	return scope
}

// NewNamedScope is NewScope for block and macro bodies.
func NewNamedScope(kind ScopeKind, name string, parent *Scope) *Scope {
	scope := NewScope(kind, parent)
	scope.Name = name
	return scope
}

// Define adds a symbol to this scope. It fails if the name is already
// declared here; names in parent scopes may be shadowed.
func (s *Scope) Define(symbol *Symbol) error {
	if existing, ok := s.Symbols[symbol.Name]; ok {
		return fmt.Errorf("%s %s already declared at %s",
			existing.Kind, symbol.Name, existing.Pos.String())
	}

	symbol.Scope = s
	symbol.Index = len(s.Symbols)
	s.Symbols[symbol.Name] = symbol
	return nil
}

// Lookup finds a symbol by name in this scope or any parent scope and marks
// it used.
func (s *Scope) Lookup(name string) *Symbol {
	if symbol, ok := s.Symbols[name]; ok {
		symbol.MarkUsed()
		return symbol
	}
	if s.Parent != nil {
		return s.Parent.Lookup(name)
	}
	return nil
}

// LookupLocal finds a symbol by name only in this scope.
func (s *Scope) LookupLocal(name string) *Symbol {
	return s.Symbols[name]
}

// IsLoop reports whether this is a loop scope.
func (s *Scope) IsLoop() bool {
	return s.Kind == ScopeLoop
}

// FindEnclosing returns the nearest scope, starting at s, whose kind is one
// of kinds, or nil.
func (s *Scope) FindEnclosing(kinds ...ScopeKind) *Scope {
	for scope := s; scope != nil; scope = scope.Parent {
		for _, k := range kinds {
			if scope.Kind == k {
				return scope
			}
		}
	}
	return nil
}

// FindEnclosingLoop finds the nearest enclosing loop scope. A macro body
// runs as its own closure, so the search stops at a macro scope.
//
// EXAMPLE:
//
//	{% for x in xs %}{% macro m() %}{% break %}{% endmacro %}{% endfor %}
//
// The break has no enclosing loop: the loop belongs to the template, not
// the closure.
func (s *Scope) FindEnclosingLoop() *Scope {
	scope := s.FindEnclosing(ScopeLoop, ScopeMacro)
	if scope == nil || !scope.IsLoop() {
		return nil
	}
	return scope
}

// LocalSymbols returns the symbols declared in this scope in declaration
// order.
func (s *Scope) LocalSymbols() []*Symbol {
	symbols := make([]*Symbol, 0, len(s.Symbols))
	for _, symbol := range s.Symbols {
		symbols = append(symbols, symbol)
	}
	sort.Slice(symbols, func(i, j int) bool {
		return symbols[i].Index < symbols[j].Index
	})
	return symbols
}

// String returns the scope kind, depth and number of symbols.
func (s *Scope) String() string {
	label := s.Kind.String()
	if s.Name != "" {
		label += " " + s.Name
	}
	return fmt.Sprintf("%s scope (depth %d, %d symbols)", label, s.Depth, len(s.Symbols))
}

// DebugString renders the scope tree rooted at s, indented by depth.
func (s *Scope) DebugString() string {
	var b strings.Builder
	s.writeDebug(&b, 0)
	return b.String()
}

func (s *Scope) writeDebug(b *strings.Builder, indent int) {
	prefix := strings.Repeat("  ", indent)
	b.WriteString(prefix + s.String() + "\n")
	for _, symbol := range s.LocalSymbols() {
		b.WriteString(prefix + "  " + symbol.String() + "\n")
	}
	for _, child := range s.Children {
		child.writeDebug(b, indent+1)
	}
}
