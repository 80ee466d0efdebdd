package cli

import (
	"fmt"
	"text/tabwriter"

	"feedreader/internal/config"

	"github.com/spf13/cobra"
)

func newFeedsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "feeds",
		Short: "List configured feeds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath, (*config.Config).Validate)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tURL")
			for _, f := range cfg.App.FeedList() {
				fmt.Fprintf(w, "%d\t%s\t%s\n", f.ID, f.Name, f.URL)
			}
			return w.Flush()
		},
	}
}
