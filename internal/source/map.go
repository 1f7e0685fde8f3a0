package source

// File is one registered source file: its display name (usually a path) and
// its full text.
type File struct {
	Name string
	Text string
}

// Map is the append-only registry of source files for one compilation. IDs
// handed out by Map are stable for the whole compilation, including
// dependency ASTs re-parsed into the same interner.
type Map struct {
	files []File
}

// NewMap creates an empty source map.
func NewMap() *Map {
	return &Map{}
}

// Add registers a new source file and returns its ID.
func (m *Map) Add(name, text string) ID {
	id := ID(len(m.files))
	m.files = append(m.files, File{Name: name, Text: text})
	return id
}

// Get returns the file registered under id. Panics if id was never issued by
// this map, matching the index-arena invariant that lookups never fail once
// an id is issued.
func (m *Map) Get(id ID) File {
	return m.files[int(id)]
}

// Len returns the number of registered files.
func (m *Map) Len() int { return len(m.files) }

// Text is a convenience accessor for Get(id).Text.
func (m *Map) Text(id ID) string { return m.files[int(id)].Text }

// Name is a convenience accessor for Get(id).Name.
func (m *Map) Name(id ID) string { return m.files[int(id)].Name }
