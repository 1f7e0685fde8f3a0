package source

import "testing"

func TestSpanJoinConvexHull(t *testing.T) {
	a := NewSpan(0, 2, 3)  // [2,5)
	b := NewSpan(0, 10, 4) // [10,14)
	joined := a.Join(b)
	if joined.Offset() != 2 || joined.End() != 14 {
		t.Fatalf("Join = %v, want 0:2+12", joined)
	}
	// Join is symmetric.
	if b.Join(a) != joined {
		t.Fatalf("Join is not symmetric")
	}
}

func TestSpanJoinNeverInverts(t *testing.T) {
	// The end of a joined span never precedes its start, whatever the
	// operand order.
	spans := []Span{
		NewSpan(0, 0, 0),
		NewSpan(0, 5, 0),
		NewSpan(0, 3, 7),
		NewSpan(0, 9, 1),
	}
	for _, a := range spans {
		for _, b := range spans {
			j := a.Join(b)
			if j.End() < j.Offset() {
				t.Fatalf("Join(%v, %v) = %v ends before it starts", a, b, j)
			}
		}
	}
}

func TestSpanJoinDifferentSourcesPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic joining spans from different sources")
		}
	}()
	NewSpan(0, 0, 1).Join(NewSpan(1, 0, 1))
}

func TestSpanHiToHi(t *testing.T) {
	a := NewSpan(0, 2, 3)  // ends at 5
	b := NewSpan(0, 10, 4) // ends at 14
	h := a.HiToHi(b)
	if h.Offset() != 5 || h.End() != 14 {
		t.Fatalf("HiToHi = %v, want 0:5+9", h)
	}
}

func TestSpanExtendAndZeroLength(t *testing.T) {
	s := NewSpan(0, 4, 2)
	if got := s.Extend(10); got.Offset() != 4 || got.Length() != 6 {
		t.Fatalf("Extend = %v", got)
	}
	if z := s.ZeroLength(); z.Offset() != 4 || z.Length() != 0 {
		t.Fatalf("ZeroLength = %v", z)
	}
}

func TestSpanExtendBackwardsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic extending a span backwards")
		}
	}()
	NewSpan(0, 4, 2).Extend(1)
}

func TestSpannedItemPreservesSpan(t *testing.T) {
	sp := NewSpan(0, 1, 2)
	item := With(sp, "hello")
	mapped := MapSpanned(item, func(s string) int { return len(s) })
	if mapped.Span() != sp {
		t.Fatalf("MapSpanned lost the span")
	}
	if mapped.Item() != 5 {
		t.Fatalf("MapSpanned item = %d", mapped.Item())
	}
}

func TestMapAssignsSequentialIDs(t *testing.T) {
	m := NewMap()
	a := m.Add("a.petr", "aaa")
	b := m.Add("b.petr", "bbb")
	if a == b {
		t.Fatalf("expected distinct ids")
	}
	if m.Name(a) != "a.petr" || m.Text(b) != "bbb" {
		t.Fatalf("map lookup mismatch")
	}
	if m.Len() != 2 {
		t.Fatalf("Len = %d", m.Len())
	}
}

func TestSpanMarshalJSON(t *testing.T) {
	data, err := NewSpan(1, 4, 2).MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	want := `{"source":1,"offset":4,"length":2}`
	if string(data) != want {
		t.Fatalf("MarshalJSON = %s, want %s", data, want)
	}
}
