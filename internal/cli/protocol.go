package cli

import (
	"bytes"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-pawhealth/pkg/protocol"
)

func (a *App) protocolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "protocol",
		Short: "Show, normalise and publish dog protocols",
	}
	cmd.AddCommand(a.protocolShowCmd(), a.protocolNormalizeCmd(), a.protocolSaveCmd())
	return cmd
}

func (a *App) protocolShowCmd() *cobra.Command {
	var (
		dogID  string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the protocol of a dog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := a.signedInClient(cmd.Context())
			if err != nil {
				return err
			}
			dog, err := c.GetDog(cmd.Context(), dogID)
			if err != nil {
				return err
			}
			raw := dog.Protocol
			if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
				raw = []byte("{}")
			}
			doc, err := protocol.Normalize(raw)
			if err != nil {
				return err
			}
			return a.printDocument(doc, asJSON)
		},
	}
	cmd.Flags().StringVar(&dogID, "dog", "", "Dog id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of YAML")
	_ = cmd.MarkFlagRequired("dog")
	return cmd
}

func (a *App) protocolNormalizeCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "normalize <file|->",
		Short: "Normalise a stored protocol document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			doc, err := protocol.Normalize(raw)
			if err != nil {
				return err
			}
			return a.printDocument(doc, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of YAML")
	return cmd
}

func (a *App) protocolSaveCmd() *cobra.Command {
	var dogID string
	cmd := &cobra.Command{
		Use:   "save <file|->",
		Short: "Publish a protocol document to a dog (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			doc, err := protocol.Normalize(raw)
			if err != nil {
				return err
			}
			sess, c, err := a.signedInClient(ctx)
			if err != nil {
				return err
			}
			defer a.flush(sess)
			if err := sess.Admin.Require(); err != nil {
				return err
			}
			saved, err := protocol.NewEditor(doc, protocol.WithLogger(a.logger)).Persist(ctx, c, dogID)
			if err != nil {
				sess.Messages.Error(err)
				return err
			}
			sess.Messages.Success("Protocol saved")
			return a.printDocument(saved, false)
		},
	}
	cmd.Flags().StringVar(&dogID, "dog", "", "Dog id")
	_ = cmd.MarkFlagRequired("dog")
	return cmd
}

func (a *App) printDocument(doc protocol.Document, asJSON bool) error {
	if asJSON {
		return a.printJSON(doc)
	}
	enc := yaml.NewEncoder(a.out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
