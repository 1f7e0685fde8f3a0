// Package source holds the span and source-registry data model shared by every
// later compiler stage: a Span identifies a byte range in exactly one source file,
// and SpannedItem pairs an arbitrary value with the span it came from.
package source

import "fmt"

// ID identifies one source file within a compilation. IDs are assigned in the
// order files are registered and are never reused.
type ID int

// Span is a (source, byte offset, byte length) triple. Joining spans from two
// different sources is a programmer error, not a recoverable one: the parser
// is expected to catch it before it reaches here (see Span.Join).
type Span struct {
	source ID
	offset int
	length int
}

// NewSpan constructs a span directly. Most callers get spans from a Lexer or
// by combining existing spans; this is for tests and arena sentinels.
func NewSpan(src ID, offset, length int) Span {
	return Span{source: src, offset: offset, length: length}
}

// Source returns the span's source file id.
func (s Span) Source() ID { return s.source }

// Offset returns the byte offset of the span's start.
func (s Span) Offset() int { return s.offset }

// Length returns the span's byte length.
func (s Span) Length() int { return s.length }

// End returns the byte offset just past the span.
func (s Span) End() int { return s.offset + s.length }

func (s Span) String() string {
	return fmt.Sprintf("%d:%d+%d", s.source, s.offset, s.length)
}

// mustSameSource panics if the two spans are not from the same source file.
// Every public method below that combines two spans calls this first; a
// cross-file join is always a bug in the caller, never a user error.
func mustSameSource(a, b Span) {
	if a.source != b.source {
		panic(fmt.Sprintf("source: cannot combine spans from different sources (%d vs %d)", a.source, b.source))
	}
}

// Join returns the convex hull of two spans in the same source: the smallest
// span that contains both.
func (s Span) Join(other Span) Span {
	mustSameSource(s, other)
	lo := s.offset
	if other.offset < lo {
		lo = other.offset
	}
	hi := s.End()
	if other.End() > hi {
		hi = other.End()
	}
	return Span{source: s.source, offset: lo, length: hi - lo}
}

// HiToHi returns the span running from the end of s to the end of other.
func (s Span) HiToHi(other Span) Span {
	mustSameSource(s, other)
	lo := s.End()
	hi := other.End()
	return Span{source: s.source, offset: lo, length: hi - lo}
}

// Extend returns a copy of s whose end has been moved to the given byte offset.
// hi must not precede s's own offset.
func (s Span) Extend(hi int) Span {
	if hi < s.offset {
		panic("source: cannot extend a span to a lower offset")
	}
	return Span{source: s.source, offset: s.offset, length: hi - s.offset}
}

// ZeroLength returns a zero-length span anchored at s's start, used for
// diagnostics that point at a location rather than a range.
func (s Span) ZeroLength() Span {
	return Span{source: s.source, offset: s.offset, length: 0}
}

// MarshalJSON serializes a span for machine-readable diagnostics. The
// fields stay unexported in Go so spans can only be built through the
// constructors above.
func (s Span) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"source":%d,"offset":%d,"length":%d}`, s.source, s.offset, s.length)), nil
}

// SpannedItem pairs a value with the span it was parsed from. It is threaded
// through every IR in this compiler: tokens, AST nodes, resolved expressions,
// and diagnostics.
type SpannedItem[T any] struct {
	item T
	span Span
}

// With constructs a SpannedItem from a span and a value.
func With[T any](span Span, item T) SpannedItem[T] {
	return SpannedItem[T]{item: item, span: span}
}

// Item returns the wrapped value.
func (s SpannedItem[T]) Item() T { return s.item }

// Span returns the item's span.
func (s SpannedItem[T]) Span() Span { return s.span }

// MapSpanned transforms the wrapped value while preserving the span.
func MapSpanned[T, U any](s SpannedItem[T], f func(T) U) SpannedItem[U] {
	return SpannedItem[U]{item: f(s.item), span: s.span}
}
