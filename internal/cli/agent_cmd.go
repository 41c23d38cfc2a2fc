package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

func newAgentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "agents",
		Aliases: []string{"agent"},
		Short:   "List or switch backend agents",
	}

	cmd.AddCommand(newAgentsListCmd())
	cmd.AddCommand(newAgentsSwitchCmd())

	return cmd
}

func newAgentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show every agent, its availability and the active one",
		Args:  cobra.NoArgs,
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

			info, err := w.LoadAgentInfo(context.Background())
			if err != nil {
				return err
			}
			if info != nil && !info.Available {
				return errors.New("agent manager unavailable")
			}
			return nil
		},
	}
}

func newAgentsSwitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <agent>",
		Short: "Make another agent the active one",
		Args:  cobra.ExactArgs(1),
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

			res, err := w.SwitchAgent(context.Background(), args[0])
			if err != nil {
				return err
			}
			if !res.Success {
				return errors.New(res.Error)
			}
			return nil
		},
	}
}
