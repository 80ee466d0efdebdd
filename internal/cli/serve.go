package cli

import (
	"fmt"
	"log/slog"

	"feedreader/internal/app"
	"feedreader/internal/config"

	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reader page, JSON API and background feed worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath, (*config.Config).Validate)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Address = addr
			}
			log, err := newLogger(cmd, cfg.Logger)
			if err != nil {
				return configError(fmt.Errorf("failed to setup logger: %w", err))
			}
			slog.SetDefault(log)

			application, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return application.Run()
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address, overrides server.address")
	return cmd
}
