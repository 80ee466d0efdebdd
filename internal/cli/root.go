// Package cli содержит команды feedreader: serve, check, feeds и version.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"feedreader/internal/config"
	"feedreader/internal/logger"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

type rootOptions struct {
	configPath string
}

// NewRootCmd собирает дерево команд.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "feedreader",
		Short: "RSS/Atom feed reader with a built-in frontend check suite",
		Long: `feedreader serves a small feed reader page and JSON API, keeps
the configured feeds fresh in storage, and can verify the reader's
behaviour with a declarative check suite.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c",
		getEnvString("FEEDREADER_CONFIG", "config.json"),
		"Path to config file, .json or .yaml (env: FEEDREADER_CONFIG)")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newFeedsCmd(opts))
	rootCmd.AddCommand(versionCmd)
	return rootCmd
}

// Execute запускает CLI и завершает процесс с кодом из exitcodes.go.
func Execute(v, bt string) {
	version = v
	buildTime = bt
	os.Exit(run(NewRootCmd(), os.Args[1:]))
}

func run(rootCmd *cobra.Command, args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	return ExitTestFailure
}

// loadConfig читает конфигурацию и проверяет ее функцией validate.
// Любая ошибка дает ExitConfigError.
func loadConfig(path string, validate func(*config.Config) error) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, configError(err)
	}
	if err := validate(cfg); err != nil {
		return nil, configError(fmt.Errorf("invalid config: %w", err))
	}
	return cfg, nil
}

// newLogger пишет в stderr команды при output=stdout, чтобы не смешивать логи с отчетом.
func newLogger(cmd *cobra.Command, cfg config.LoggerConfig) (*slog.Logger, error) {
	if cfg.Output == "stdout" {
		return logger.NewWithWriters(cmd.ErrOrStderr(), cmd.ErrOrStderr(), logger.ParseLevel(cfg.Level)), nil
	}
	return logger.New(cfg)
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	return f, f.Close, nil
}
