package binder

import "github.com/sunholo/petrc/internal/symtab"

// Scope is one node of the binder's scope tree. It is stored in an arena
// and referenced by ScopeID rather than held as a pointer tree: parent
// links only point upward, so the tree can never form a cycle and is
// trivial to serialize or inspect.
type Scope struct {
	parent *ScopeID
	items  map[symtab.ID]Item
}

func newScope(parent *ScopeID) *Scope {
	return &Scope{parent: parent, items: make(map[symtab.ID]Item)}
}

func (s *Scope) insert(name symtab.ID, item Item) {
	s.items[name] = item
}

// Each visits every (name, item) binding of this scope. Iteration order is
// unspecified; callers needing determinism must sort.
func (s *Scope) Each(f func(symtab.ID, Item)) {
	for name, item := range s.items {
		f(name, item)
	}
}

// Module is one source file's bound scope: its root scope id plus the
// subset of its top-level items that were declared `export`.
type Module struct {
	RootScope ScopeID
	Exports   map[symtab.ID]Item
}
