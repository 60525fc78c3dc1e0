package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-pawhealth/pkg/branding"
)

func (a *App) brandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brand",
		Short: "Brand colour settings",
	}
	cmd.AddCommand(a.brandCSSCmd(), a.brandSaveCmd())
	return cmd
}

func (a *App) brandCSSCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "css",
		Short: "Render styles.css from the configured colours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet, err := branding.NewStylesheet()
			if err != nil {
				return err
			}
			css, err := sheet.Render(a.cfg.Brand)
			if err != nil {
				return err
			}
			return writeOutput(output, a.out, []byte(css))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func (a *App) brandSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Publish the configured colours to the backend (admin only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, c, err := a.signedInClient(cmd.Context())
			if err != nil {
				return err
			}
			defer a.flush(sess)
			if err := sess.Admin.Require(); err != nil {
				return err
			}
			assets, err := c.SaveBrandSettings(cmd.Context(), a.cfg.Brand.Map())
			if err != nil {
				sess.Messages.Error(err)
				return err
			}
			sess.Messages.Success(fmt.Sprintf("Brand stylesheet published at %s", assets.CSSURL))
			return nil
		},
	}
}
