package report

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"feedreader/internal/suite"
)

// JUnitTestSuites is the root element
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Skipped    int              `xml:"skipped,attr"`
	Time       float64          `xml:"time,attr"`
	Timestamp  string           `xml:"timestamp,attr,omitempty"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite is one check group
type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      float64         `xml:"time,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

type JUnitError struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

type JUnitFormatter struct {
	writer io.Writer
	name   string
}

func NewJUnitFormatter(w io.Writer, name string) *JUnitFormatter {
	return &JUnitFormatter{writer: w, name: name}
}

func (f *JUnitFormatter) Format(r *suite.Report) error {
	s := r.Summary()
	root := JUnitTestSuites{
		Name:      f.name,
		Tests:     s.Total(),
		Failures:  s.Failed,
		Errors:    s.Errored,
		Skipped:   s.Skipped,
		Time:      r.Duration.Seconds(),
		Timestamp: r.Started.UTC().Format(time.RFC3339),
	}
	for _, g := range r.Groups {
		ts := JUnitTestSuite{Name: g.Name}
		for _, c := range g.Cases {
			tc := JUnitTestCase{
				Name:      c.Name,
				ClassName: g.Name,
				Time:      c.Duration.Seconds(),
			}
			ts.Tests++
			ts.Time += tc.Time
			switch c.Outcome {
			case suite.Failed:
				ts.Failures++
				var lines []string
				for _, e := range c.Expectations {
					if !e.Passed {
						lines = append(lines, e.String())
					}
				}
				tc.Failure = &JUnitFailure{
					Message: fmt.Sprintf("%d expectation(s) failed", len(lines)),
					Type:    "AssertionFailure",
					Content: strings.Join(lines, "\n"),
				}
			case suite.Errored:
				ts.Errors++
				tc.Error = &JUnitError{
					Message: c.Err.Error(),
					Type:    errorType(c.Err),
				}
			case suite.Skipped:
				ts.Skipped++
				tc.Skipped = &JUnitSkipped{Message: c.SkipReason}
			}
			ts.TestCases = append(ts.TestCases, tc)
		}
		root.TestSuites = append(root.TestSuites, ts)
	}

	if _, err := io.WriteString(f.writer, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(f.writer)
	enc.Indent("", "  ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("failed to encode junit report: %w", err)
	}
	_, err := io.WriteString(f.writer, "\n")
	return err
}

func errorType(err error) string {
	if errors.Is(err, suite.ErrLoadTimeout) {
		return "LoadTimeout"
	}
	return "Error"
}
