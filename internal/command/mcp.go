package command

import (
	"fmt"
	"os"

	"github.com/bornholm/fieldwork/internal/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	mcpRootDir string
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server management commands",
	Long:  `Manage MCP server for LLM integration.`,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.AddCommand(mcpServerCmd)
	mcpServerCmd.Flags().StringVar(&mcpRootDir, "root", "", "Root directory for history exports (default: current working directory)")
}

// mcpServerCmd represents the mcp server command
var mcpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the MCP server",
	Long: `Run the MCP server exposing the estimator as tools. The server uses stdio transport for communication.
History exports are confined to the root directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		rootDir := mcpRootDir
		if rootDir == "" {
			var err error
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get current working directory: %w", err)
			}
		}

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

		server, err := mcp.NewServer(&mcp.ServerOptions{
			RootDir: rootDir,
			Config:  cfg,
			Catalog: catalog,
			History: history,
		})
		if err != nil {
			return fmt.Errorf("failed to create MCP server: %w", err)
		}
		defer server.Close()

		zap.L().Debug("starting MCP server", zap.String("root", rootDir))

		// Run until stdin closes or a signal cancels the context
		if err := server.Run(ctx); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}

		return nil
	},
}
