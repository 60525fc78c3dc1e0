package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-pawhealth/pkg/chat"
	"github.com/goliatone/go-pawhealth/pkg/client"
	"github.com/goliatone/go-pawhealth/pkg/renderers/tui"
)

func (a *App) chatCmd() *cobra.Command {
	var dogID string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the pet-health assistant",
		Long:  "Starts an assistant conversation. An empty line or /quit ends it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, c, err := a.signedInClient(ctx)
			if err != nil {
				return err
			}
			conv := chat.New(c, chat.WithDog(dogID), chat.WithLogger(a.logger))
			prompts := a.prompts()
			for {
				text, err := prompts.Input(ctx, tui.InputConfig{Message: "You"})
				if err != nil {
					return err
				}
				text = strings.TrimSpace(text)
				if text == "" || text == "/quit" {
					return nil
				}
				reply, err := conv.Send(ctx, text)
				if err != nil {
					fmt.Fprintf(a.errOut, "! %s\n", client.Message(err))
					continue
				}
				fmt.Fprintf(a.out, "Assistant: %s\n", reply.Content)
			}
		},
	}
	cmd.Flags().StringVar(&dogID, "dog", "", "Dog the conversation is about")
	return cmd
}
