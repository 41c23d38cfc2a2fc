package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soyeahso/agentchat/internal/terminal"
)

func newChatCmd() *cobra.Command {
	var (
		noColor bool
		source  string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(true)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			view := terminal.NewView(out, terminal.Options{Catalog: a.catalog, NoColor: noColor})
			w, err := a.newWidget(view)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			view.Header("agentchat " + a.cfg.Backend.BaseURL)
			if err := w.Init(ctx); err != nil {
				a.log.Warn().Err(err).Msg("widget init incomplete")
			}
			view.Dim("/help lists commands")

			return terminal.NewREPL(w, view, cmd.InOrStdin(), out, a.log, source).Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colors")
	cmd.Flags().StringVar(&source, "source", "", "source label for knowledge added from the chat")

	return cmd
}
