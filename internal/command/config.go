package command

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bornholm/fieldwork/internal/config"
	"github.com/bornholm/fieldwork/internal/engine"
	"github.com/bornholm/fieldwork/internal/model"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  `Manage the fieldwork configuration file.`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	Long:  `Create a default configuration file in the current directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Check if config already exists
		configPath := configFile
		if configPath == "" {
			configPath = config.DefaultConfigFile
		}
		if _, err := os.Stat(configPath); err == nil {
			force, _ := cmd.Flags().GetBool("force")
			if !force {
				return fmt.Errorf("configuration file already exists at %s, use --force to overwrite", configPath)
			}
		}

		if err := config.Save(configPath, model.DefaultConfig()); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at %s\n", configPath)
		return nil
	},
}

// configViewCmd represents the config view command
var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "View current configuration",
	Long:  `Display the effective configuration, after environment overrides.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		out := cmd.OutOrStdout()

		switch format {
		case "json":
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config to JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
		case "yaml":
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config to YAML: %w", err)
			}
			fmt.Fprint(out, string(data))
		default:
			fmt.Fprintf(out, "Store: %s", cfg.GetStoreDriver())
			if cfg.Store.DSN != "" {
				fmt.Fprintf(out, " (%s)", cfg.Store.DSN)
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Reference data: %s", cfg.GetRefDataSource())
			if cfg.GetRefDataSource() == model.SourceYAML {
				fmt.Fprintf(out, " (%s)", cfg.RefData.File)
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "History limit: %d\n", cfg.GetHistoryLimit())
			fmt.Fprintf(out, "Server port: %d\n", cfg.GetServerPort())
			fmt.Fprintf(out, "Log: %s (%s)\n", cfg.Log.Level, cfg.Log.Format)

			toggles := engine.TogglesFromConfig(cfg.Factors)
			enabled, _ := json.Marshal(toggles)
			fmt.Fprintf(out, "Factors: %s\n", enabled)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configViewCmd)

	configInitCmd.Flags().BoolP("force", "f", false, "Force overwrite existing configuration")
	configViewCmd.Flags().StringP("format", "f", "text", "Output format (text, yaml, json)")
}
