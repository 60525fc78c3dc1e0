package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-pawhealth/internal/server"
)

func (a *App) serveCmd() *cobra.Command {
	var (
		addr    string
		offline bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve form previews and the brand stylesheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			options := []server.Option{
				server.WithBrand(a.cfg.Brand),
				server.WithLogger(a.logger),
			}
			if !offline {
				_, c, err := a.signedInClient(ctx)
				if err != nil {
					a.logger.Warn("serving the default onboarding form", zap.Error(err))
				} else {
					options = append(options, server.WithFormSource(c))
				}
			}
			srv, err := server.New(options...)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&offline, "offline", false, "Preview the built-in default form")
	return cmd
}
