package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"feedreader/internal/app"
	"feedreader/internal/config"
	"feedreader/internal/report"
	"feedreader/internal/suite"

	"github.com/spf13/cobra"
)

type checkOptions struct {
	format  string
	output  string
	groups  []string
	name    string
	bail    bool
	timeout string
	noColor bool
	verbose bool
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	co := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the reader check suite against the configured feeds",
		Long: `Run the declarative checks against fresh reader sessions built
from the config. Every check gets its own session; feed loads are awaited
up to --timeout (default check.load_timeout).

Examples:
  feedreader check
  feedreader check --group "The menu"
  feedreader check --run "new feed" --bail
  feedreader check --format junit --output report.xml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, co)
		},
	}
	cmd.Flags().StringVarP(&co.format, "format", "f", getEnvString("FEEDREADER_FORMAT", "console"), "Report format: console, json, junit (env: FEEDREADER_FORMAT)")
	cmd.Flags().StringVarP(&co.output, "output", "o", "", "Write report to file (default: stdout)")
	cmd.Flags().StringSliceVarP(&co.groups, "group", "g", nil, "Run only the named groups (repeatable)")
	cmd.Flags().StringVarP(&co.name, "run", "r", "", "Run only checks whose full name contains the pattern")
	cmd.Flags().BoolVar(&co.bail, "bail", false, "Skip remaining checks after the first unsuccessful one")
	cmd.Flags().StringVar(&co.timeout, "timeout", "", "Feed load timeout, overrides check.load_timeout")
	cmd.Flags().BoolVar(&co.noColor, "no-color", getEnvBool("FEEDREADER_NO_COLOR", false), "Disable colored output (env: FEEDREADER_NO_COLOR)")
	cmd.Flags().BoolVarP(&co.verbose, "verbose", "v", false, "Show passed expectations and skip reasons")
	return cmd
}

func runCheck(cmd *cobra.Command, opts *rootOptions, co *checkOptions) error {
	cfg, err := loadConfig(opts.configPath, (*config.Config).ValidateForCheck)
	if err != nil {
		return err
	}
	runCfg := suite.Config{
		Groups:     co.groups,
		NameFilter: co.name,
		Bail:       co.bail,
	}
	if co.timeout != "" {
		d, err := time.ParseDuration(co.timeout)
		if err != nil || d <= 0 {
			return configError(fmt.Errorf("invalid --timeout %q", co.timeout))
		}
		runCfg.LoadTimeout = d
	}

	out, closeOut, err := openOutput(cmd, co.output)
	if err != nil {
		return configError(err)
	}
	defer closeOut()

	formatter, err := newFormatter(co, out)
	if err != nil {
		return configError(err)
	}

	log, err := newLogger(cmd, cfg.Logger)
	if err != nil {
		return configError(fmt.Errorf("failed to setup logger: %w", err))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep := app.RunChecks(ctx, cfg, log, runCfg)
	if err := formatter.Format(rep); err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}
	if !rep.OK() {
		return &exitError{code: ExitTestFailure}
	}
	return nil
}

func newFormatter(co *checkOptions, out io.Writer) (report.Formatter, error) {
	switch strings.ToLower(co.format) {
	case "console", "":
		return report.NewConsoleFormatter(
			report.WithWriter(out),
			report.WithNoColor(co.noColor),
			report.WithVerbose(co.verbose),
		), nil
	case "json":
		return report.NewJSONFormatter(out), nil
	case "junit":
		return report.NewJUnitFormatter(out, "feedreader"), nil
	default:
		return nil, fmt.Errorf("unknown --format %q (want console, json or junit)", co.format)
	}
}
