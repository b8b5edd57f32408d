package command

import (
	"fmt"

	"github.com/bornholm/fieldwork/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort    int
	serveOrigins []string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  `Serve the estimator, CPI, timing, history and reference data as a JSON HTTP API.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := getConfig()
		if err != nil {
			return err
		}

		catalog, closer, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer closer.Close()

		history, err := openHistory(ctx)
		if err != nil {
			return err
		}
		defer history.Close()

		port := servePort
		if port == 0 {
			port = cfg.GetServerPort()
		}

		srv := server.New(server.Options{
			Config:         cfg,
			Catalog:        catalog,
			History:        history,
			AllowedOrigins: serveOrigins,
		})

		if err := srv.ListenAndServe(ctx, port); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "server port (default from config)")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "origin", nil, "allowed CORS origins (default: all)")
}
