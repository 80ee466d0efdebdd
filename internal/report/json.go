package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"feedreader/internal/suite"
)

type JSONOutput struct {
	RunID    string      `json:"runId"`
	Summary  JSONSummary `json:"summary"`
	Checks   []JSONCheck `json:"checks"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

type JSONSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errors  int `json:"errors"`
	Skipped int `json:"skipped"`
}

type JSONCheck struct {
	Group        string            `json:"group"`
	Name         string            `json:"name"`
	Outcome      string            `json:"outcome"`
	Duration     float64           `json:"duration"`
	Error        string            `json:"error,omitempty"`
	SkipReason   string            `json:"skipReason,omitempty"`
	Expectations []JSONExpectation `json:"expectations,omitempty"`
}

type JSONExpectation struct {
	Matcher  string `json:"matcher"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual"`
	Passed   bool   `json:"passed"`
}

type JSONFormatter struct {
	writer io.Writer
}

func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

func (f *JSONFormatter) Format(r *suite.Report) error {
	s := r.Summary()
	out := JSONOutput{
		RunID: r.ID,
		Summary: JSONSummary{
			Total:   s.Total(),
			Passed:  s.Passed,
			Failed:  s.Failed,
			Errors:  s.Errored,
			Skipped: s.Skipped,
		},
		Duration: r.Duration.Seconds(),
		Time:     r.Started.UTC().Format(time.RFC3339),
	}
	for _, g := range r.Groups {
		for _, c := range g.Cases {
			check := JSONCheck{
				Group:      c.Group,
				Name:       c.Name,
				Outcome:    c.Outcome.String(),
				Duration:   c.Duration.Seconds(),
				SkipReason: c.SkipReason,
			}
			if c.Err != nil {
				check.Error = c.Err.Error()
			}
			for _, e := range c.Expectations {
				je := JSONExpectation{
					Matcher: e.Matcher,
					Actual:  fmt.Sprintf("%v", e.Actual),
					Passed:  e.Passed,
				}
				if e.Expected != nil {
					je.Expected = fmt.Sprintf("%v", e.Expected)
				}
				check.Expectations = append(check.Expectations, je)
			}
			out.Checks = append(out.Checks, check)
		}
	}
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
