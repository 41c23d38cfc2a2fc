package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soyeahso/agentchat/internal/version"
	"github.com/soyeahso/agentchat/internal/widget"
)

func newHealthCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check whether the backend agents are ready",
		Long: "health asks the backend for its status and prints the same line the " +
			"widget header shows. It exits non-zero while agents are offline.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if verbose {
				fmt.Fprintf(out, "agentchat %s (commit %s)\n\n", version.Version, version.Commit)
				fmt.Fprintf(out, "Config:  %s\n", paths.Config)
				fmt.Fprintf(out, "Data:    %s\n", paths.Data)
				fmt.Fprintf(out, "Backend: %s\n", a.cfg.Backend.BaseURL)
				fmt.Fprintf(out, "Storage: %s\n", a.cfg.Storage.Store)
				fmt.Fprintf(out, "Locale:  %s\n\n", a.cfg.UI.Locale)
			}

			w, _, err := a.printWidget(out)
			if err != nil {
				return err
			}

			report, err := w.CheckHealth(context.Background())
			if err != nil {
				return err
			}
			if report.Status != widget.StatusOnline {
				return fmt.Errorf("agents offline: %s", report.Text)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also print version, paths and config summary")

	return cmd
}
