package diag

import (
	"encoding/json"
	"fmt"

	"github.com/sunholo/petrc/internal/source"
)

// Report is the canonical structured diagnostic. Every stage of the compiler
// produces Reports instead of throwing: a Report is data, collected into a
// slice, never control flow.
type Report struct {
	Schema  string         `json:"schema"` // always "petrc.diag/v1"
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Span    *source.Span   `json:"span,omitempty"`
	Span2   *source.Span   `json:"span2,omitempty"` // second span, for span-join errors
	Help    string         `json:"help,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// New constructs a Report anchored at one span.
func New(phase, code, message string, span source.Span) *Report {
	s := span
	return &Report{
		Schema:  "petrc.diag/v1",
		Code:    code,
		Phase:   phase,
		Message: message,
		Span:    &s,
	}
}

// WithHelp attaches a rendered help chain (see parser.WithHelp) to the report.
func (r *Report) WithHelp(help string) *Report {
	r.Help = help
	return r
}

// WithData attaches a structured data field, for machine-readable context
// (e.g. expected/got counts for an arity mismatch).
func (r *Report) WithData(key string, value any) *Report {
	if r.Data == nil {
		r.Data = map[string]any{}
	}
	r.Data[key] = value
	return r
}

// WithSpan2 attaches a second span, used by span-join internal errors.
func (r *Report) WithSpan2(span source.Span) *Report {
	r.Span2 = &span
	return r
}

// Error implements the error interface so Reports can be threaded through
// ordinary Go error-returning code when convenient (tests, CLI glue).
func (r *Report) Error() string {
	if r.Help != "" {
		return fmt.Sprintf("%s: %s\n%s", r.Code, r.Message, r.Help)
	}
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

// ToJSON serializes the report deterministically.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Spanned is the pairing of a Report with the span it belongs to, mirroring
// SpannedItem pairing used elsewhere, for stages that want the span
// value rather than a pointer embedded in Report.
type Spanned = source.SpannedItem[*Report]
