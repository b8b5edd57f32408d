package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bornholm/fieldwork/internal/config"
	"github.com/bornholm/fieldwork/internal/engine"
	"github.com/bornholm/fieldwork/internal/model"
	"github.com/bornholm/fieldwork/internal/refdata"
	"github.com/bornholm/fieldwork/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string
	logLevel   string

	appConfig *model.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fieldwork",
	Short: "A CLI tool to estimate online fieldwork duration and CPI",
	Long: `Fieldwork estimates how many days an online survey in Vietnam needs in the field.

It allows you to:
- Estimate fieldwork days from sample size, LOI, IR and quotas
- Adjust the estimate for panel vendors, locations, audiences and holidays
- Compare an expert day count with the estimate
- Estimate the cost per interview
- Keep a history of calculations and export it to Excel

Use "fieldwork [command] --help" for more information about a command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	_ = zap.L().Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", fmt.Sprintf("configuration file path (default: nearest %s)", config.DefaultConfigFile))
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// getConfig loads the configuration once per process
func getConfig() (*model.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	appConfig = cfg
	return cfg, nil
}

// openCatalog creates the reference data catalog selected by the configuration
func openCatalog(ctx context.Context) (*refdata.Catalog, io.Closer, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, nil, err
	}
	provider, closer, err := store.OpenProvider(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open reference data: %w", err)
	}
	return refdata.NewCatalog(provider), closer, nil
}

// openEngine creates an engine over the configured reference data
func openEngine(ctx context.Context) (*engine.Engine, error) {
	catalog, closer, err := openCatalog(ctx)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return engine.Load(ctx, catalog), nil
}

// openHistory creates the history store selected by the configuration
func openHistory(ctx context.Context) (store.HistoryStore, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, err
	}
	history, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	return history, nil
}

// writeOutput prints the result or writes it to the output file
func writeOutput(cmd *cobra.Command, output, result string) error {
	if output != "" {
		if err := os.WriteFile(output, []byte(result), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Output written to %s\n", output)
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), result)
	return nil
}
