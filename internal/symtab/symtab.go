// Package symtab implements the Symbol Table component from spec.md
// §4.2: a LIFO stack of scopes with visibility toggling, used to express
// ML-style recursive vs. non-recursive `let` bindings and pattern-bound
// variables.
package symtab

import (
	"golang.org/x/text/unicode/norm"

	"github.com/llamalang/llamac/internal/ast"
)

// Scope is one lexical scope: an ordered list of entries, a visibility
// flag, and a nesting depth.
type Scope struct {
	entries map[string]ast.Def
	order   []string
	Visible bool
	Nesting int
}

func newScope(nesting int) *Scope {
	return &Scope{
		entries: make(map[string]ast.Def),
		Visible: true,
		Nesting: nesting,
	}
}

// Entries returns the scope's bindings in insertion order.
func (s *Scope) Entries() []ast.Def {
	out := make([]ast.Def, len(s.order))
	for i, n := range s.order {
		out[i] = s.entries[n]
	}
	return out
}

func normalizeName(name string) string { return norm.NFC.String(name) }

// Table is the scope stack.
type Table struct {
	scopes []*Scope
}

// New creates an empty Table with no open scopes.
func New() *Table { return &Table{} }

// Depth reports the number of currently open scopes. Used by the "scope
// hygiene" property (spec.md §8.4): after analyze(program), it must be 0.
func (t *Table) Depth() int { return len(t.scopes) }

// OpenScope pushes a new, visible-by-default scope and returns it.
func (t *Table) OpenScope() *Scope {
	s := newScope(len(t.scopes) + 1)
	t.scopes = append(t.scopes, s)
	return s
}

// CloseScope pops the innermost scope. Closing with no open scope is a
// no-op (mirrors the original's graceful shutdown behavior under repeated
// close_scope calls).
func (t *Table) CloseScope() {
	if len(t.scopes) == 0 {
		return
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// RedefIdentifierError is raised by InsertSymbol when a name is already
// bound in the current (innermost) scope.
type RedefIdentifierError struct {
	Def  ast.Def
	Prev ast.Def
}

func (e *RedefIdentifierError) Error() string {
	return "redefinition of identifier " + e.Def.DefName()
}

// InsertSymbol registers def in the innermost scope. Shadowing across
// scopes is allowed; redefining within the same scope is not.
func (t *Table) InsertSymbol(def ast.Def) error {
	if len(t.scopes) == 0 {
		panic("symtab: InsertSymbol with no open scope")
	}
	scope := t.scopes[len(t.scopes)-1]
	key := normalizeName(def.DefName())
	if prev, ok := scope.entries[key]; ok {
		return &RedefIdentifierError{Def: def, Prev: prev}
	}
	scope.entries[key] = def
	scope.order = append(scope.order, key)
	return nil
}

// LookupInCurrentScope searches only the innermost scope.
func (t *Table) LookupInCurrentScope(name string) (ast.Def, bool) {
	if len(t.scopes) == 0 {
		return nil, false
	}
	scope := t.scopes[len(t.scopes)-1]
	def, ok := scope.entries[normalizeName(name)]
	return def, ok
}

// LookupLiveDef walks from innermost outward, skipping any scope marked
// invisible, and returns the first match. Invisible scopes are
// transparent for outward lookup but still block same-scope redefinition
// checks (enforced separately, in InsertSymbol, which never consults
// Visible).
func (t *Table) LookupLiveDef(name string) (ast.Def, bool) {
	key := normalizeName(name)
	for i := len(t.scopes) - 1; i >= 0; i-- {
		scope := t.scopes[i]
		if !scope.Visible {
			continue
		}
		if def, ok := scope.entries[key]; ok {
			return def, true
		}
	}
	return nil, false
}

// CurrentScope returns the innermost scope, or nil if none is open.
func (t *Table) CurrentScope() *Scope {
	if len(t.scopes) == 0 {
		return nil
	}
	return t.scopes[len(t.scopes)-1]
}
