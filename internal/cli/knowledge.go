package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newKnowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Feed the backend knowledge base",
	}

	cmd.AddCommand(newKnowledgeAddCmd())
	return cmd
}

func newKnowledgeAddCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "add <content...>",
		Short: "Add a document to the knowledge base",
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

			res, err := w.AddKnowledge(context.Background(), strings.Join(args, " "), source)
			if err != nil {
				return err
			}
			if !res.Sent {
				return errors.New("empty content")
			}
			if !res.Success {
				return fmt.Errorf("knowledge not added: %s", res.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "source label stored with the document")

	return cmd
}
