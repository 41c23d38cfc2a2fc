package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <message...>",
		Short: "Send one message to the active agent and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			w, _, err := a.printWidget(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			res, err := w.SendChat(context.Background(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if !res.Sent {
				return errors.New("empty message")
			}
			if !res.Success {
				return fmt.Errorf("chat failed: %s", res.Error)
			}
			return nil
		},
	}
}
