// Package symtab implements the symbol interner and spanned identifiers
// shared across an entire compilation, including re-parsed dependency ASTs.
package symtab

import "github.com/sunholo/petrc/internal/source"

// ID is a small integer identifying an interned identifier string.
type ID int

// Interner maps identifier text to a stable ID. Insertion is idempotent:
// interning the same text twice returns the same ID. One Interner is shared
// by a whole compilation, including the ASTs of its dependencies, so that
// symbol IDs are comparable across package boundaries.
type Interner struct {
	byText map[string]ID
	byID   []string
}

// NewInterner creates an empty interner.
func NewInterner() *Interner {
	return &Interner{byText: make(map[string]ID)}
}

// Insert interns text, returning its (possibly pre-existing) ID.
func (i *Interner) Insert(text string) ID {
	if id, ok := i.byText[text]; ok {
		return id
	}
	id := ID(len(i.byID))
	i.byID = append(i.byID, text)
	i.byText[text] = id
	return id
}

// Lookup returns the ID for text if it has already been interned.
func (i *Interner) Lookup(text string) (ID, bool) {
	id, ok := i.byText[text]
	return id, ok
}

// Get returns the text for a previously interned ID. Panics on an ID this
// interner never issued.
func (i *Interner) Get(id ID) string {
	return i.byID[int(id)]
}

// Identifier is a symbol reference paired with the span it was written at.
type Identifier struct {
	Name ID
	Span source.Span
}
