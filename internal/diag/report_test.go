package diag

import (
	"strings"
	"testing"

	"github.com/sunholo/petrc/internal/source"
)

func TestReportError(t *testing.T) {
	r := New(PhaseParser, PAR003, "expected token )", source.NewSpan(0, 4, 1))
	if got := r.Error(); got != "PAR003: expected token )" {
		t.Fatalf("Error() = %q", got)
	}
	r.WithHelp("while parsing list expression")
	if got := r.Error(); !strings.Contains(got, "while parsing list expression") {
		t.Fatalf("Error() with help = %q", got)
	}
}

func TestReportJSONRoundTrip(t *testing.T) {
	r := New(PhaseTypecheck, TYP003, "arity mismatch", source.NewSpan(1, 10, 3)).
		WithData("expected", 2).
		WithData("got", 1)
	out, err := r.ToJSON(true)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	for _, want := range []string{
		`"schema":"petrc.diag/v1"`,
		`"code":"TYP003"`,
		`"span":{"source":1,"offset":10,"length":3}`,
		`"expected":2`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("JSON %s missing %s", out, want)
		}
	}
}
