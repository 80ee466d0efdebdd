package report

import (
	"fmt"
	"io"
	"os"

	"feedreader/internal/suite"

	"github.com/fatih/color"
)

// Formatter выводит отчет прогона проверок.
type Formatter interface {
	Format(r *suite.Report) error
}

// formatValue сокращает длинные значения, чтобы отчет оставался читаемым.
func formatValue(v any, maxLen int) string {
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) Format(r *suite.Report) error {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	for _, g := range r.Groups {
		fmt.Fprintf(f.writer, "\n%s\n", bold(g.Name))
		for _, c := range g.Cases {
			switch c.Outcome {
			case suite.Skipped:
				fmt.Fprintf(f.writer, "  %s %s", yellow("-"), c.Name)
				if f.verbose && c.SkipReason != "" {
					fmt.Fprintf(f.writer, " (%s)", c.SkipReason)
				}
				fmt.Fprintln(f.writer)
				continue
			case suite.Errored:
				fmt.Fprintf(f.writer, "  %s %s %s\n", red("x"), c.Name, red(fmt.Sprintf("(%v)", c.Err)))
				continue
			}

			symbol := green("✓")
			if c.Outcome == suite.Failed {
				symbol = red("✗")
			}
			fmt.Fprintf(f.writer, "  %s %s %s\n", symbol, c.Name, cyan(fmt.Sprintf("(%dms)", c.Duration.Milliseconds())))

			for _, e := range c.Expectations {
				if e.Passed && !f.verbose {
					continue
				}
				mark := red("→")
				if e.Passed {
					mark = green("→")
				}
				fmt.Fprintf(f.writer, "    %s %s\n", mark, e.Matcher)
				if e.Expected != nil || e.Matcher == "toBe" || e.Matcher == "not.toBe" {
					fmt.Fprintf(f.writer, "      Expected: %s\n", formatValue(e.Expected, 100))
				}
				fmt.Fprintf(f.writer, "      Actual:   %s\n", formatValue(e.Actual, 100))
			}
		}
	}

	s := r.Summary()
	fmt.Fprintf(f.writer, "\nChecks: ")
	if s.Passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", s.Passed)))
	}
	if s.Failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", s.Failed)))
	}
	if s.Errored > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d errors", s.Errored)))
	}
	if s.Skipped > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d skipped", s.Skipped)))
	}
	fmt.Fprintf(f.writer, "%d total\n", s.Total())
	fmt.Fprintf(f.writer, "Time:   %dms\n\n", r.Duration.Milliseconds())
	return nil
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}
