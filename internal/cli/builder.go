package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-pawhealth/pkg/builder"
	"github.com/goliatone/go-pawhealth/pkg/fields"
)

func (a *App) builderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "builder",
		Short: "Inspect and replace the universal onboarding form",
	}
	cmd.AddCommand(a.builderExportCmd(), a.builderImportCmd(), a.builderPaletteCmd())
	return cmd
}

func (a *App) builderExportCmd() *cobra.Command {
	var (
		asOpenAPI bool
		offline   bool
		output    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the onboarding form as JSON or as an OpenAPI document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var b *builder.Builder
			if offline {
				b = builder.New(builder.WithLogger(a.logger))
				if err := b.ImportJSON(fields.DefaultOnboardingJSON()); err != nil {
					return err
				}
			} else {
				_, c, err := a.signedInClient(cmd.Context())
				if err != nil {
					return err
				}
				b = builder.New(builder.WithStore(c), builder.WithLogger(a.logger))
				if err := b.Load(cmd.Context()); err != nil {
					return err
				}
			}

			var (
				data []byte
				err  error
			)
			if asOpenAPI {
				data, err = b.ExportOpenAPI()
			} else {
				data, err = b.ExportJSON()
			}
			if err != nil {
				return err
			}
			return writeOutput(output, a.out, append(data, '\n'))
		},
	}
	cmd.Flags().BoolVar(&asOpenAPI, "openapi", false, "Export an OpenAPI 3 document describing the submission body")
	cmd.Flags().BoolVar(&offline, "offline", false, "Export the built-in default form")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func (a *App) builderImportCmd() *cobra.Command {
	var (
		fromOpenAPI bool
		operationID string
	)
	cmd := &cobra.Command{
		Use:   "import <file|url>",
		Short: "Replace the onboarding form (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, err := builder.ParseSource(args[0])
			if err != nil {
				return err
			}
			timeout, err := a.cfg.APITimeout()
			if err != nil {
				return err
			}
			raw, err := builder.NewLoader(builder.WithTimeout(timeout)).Load(ctx, src)
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

			b := builder.New(builder.WithStore(c), builder.WithLogger(a.logger))
			if fromOpenAPI {
				if _, err := b.ImportOpenAPI(ctx, raw, operationID); err != nil {
					return err
				}
			} else if err := b.ImportJSON(raw); err != nil {
				return err
			}
			if err := b.Save(ctx); err != nil {
				sess.Messages.Error(err)
				return err
			}
			sess.Messages.Success(fmt.Sprintf("Onboarding form saved with %d fields", len(b.Fields())))
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromOpenAPI, "openapi", false, "Read fields from an OpenAPI request body")
	cmd.Flags().StringVar(&operationID, "operation", "", "OpenAPI operation id (default: first with a request body)")
	return cmd
}

func (a *App) builderPaletteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "palette",
		Short: "List the element types a field can be created from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, entry := range builder.Palette() {
				fmt.Fprintf(a.out, "%-16s %s\n", entry.Type, entry.Label)
			}
			return nil
		},
	}
}
