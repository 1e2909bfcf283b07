package cli

import (
	"github.com/spf13/cobra"

	"github.com/alexanderramin/mirrorer/internal/api"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog and live simulation runs over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := api.NewServer(addr, app.Users, app.Simulations, app.logger())
			return srv.Start(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", app.HTTPAddr, "listen address; empty means "+api.DefaultAddr)
	return cmd
}
