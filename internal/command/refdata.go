package command

import (
	"encoding/json"
	"fmt"

	"github.com/bornholm/fieldwork/internal/factor"
	"github.com/bornholm/fieldwork/internal/model"
	"github.com/bornholm/fieldwork/internal/refdata"
	"github.com/bornholm/fieldwork/internal/store"
	"github.com/spf13/cobra"
)

// refdataCmd represents the refdata command
var refdataCmd = &cobra.Command{
	Use:   "refdata",
	Short: "Reference data commands",
	Long:  `Inspect, export and seed the reference tables used by the estimator.`,
}

// refdataExportCmd represents the refdata export command
var refdataExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export reference data to YAML",
	Long:  `Write the current reference data snapshot to a YAML file usable with refdata.source=yaml.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}

		file := cfg.RefData.File
		if len(args) > 0 {
			file = args[0]
		}
		if file == "" {
			file = store.DefaultReferenceFile
		}

		eng, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}

		if err := store.NewYAMLStore(file).SaveReference(eng.Reference()); err != nil {
			return fmt.Errorf("failed to export reference data: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Reference data exported to %s\n", file)
		return nil
	},
}

// refdataSeedCmd represents the refdata seed command
var refdataSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed reference data into MongoDB",
	Long: `Upsert the reference tables into the MongoDB database configured by store.dsn and store.database.
Tables come from --from, a YAML file, or from the built-in defaults.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := getConfig()
		if err != nil {
			return err
		}

		ref := model.DefaultReferenceData()
		if from, _ := cmd.Flags().GetString("from"); from != "" {
			ref = refdata.NewCatalog(store.NewYAMLStore(from)).Snapshot(ctx)
		}

		mongoStore, err := store.NewMongoStore(ctx, cfg.Store.DSN, cfg.Store.Database, cfg.GetHistoryLimit())
		if err != nil {
			return fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		defer mongoStore.Close()

		if err := mongoStore.SeedReference(ctx, ref); err != nil {
			return fmt.Errorf("failed to seed reference data: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d cases, %d locations, %d vendors, %d audiences, %d templates\n",
			len(ref.Cases), len(ref.Locations), len(ref.PanelVendors), len(ref.TargetAudiences), len(ref.Templates))
		return nil
	},
}

// refdataCheckCmd represents the refdata check command
var refdataCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check location data consistency",
	Long:  `Flag locations of the same category whose difficulty factor and samples per day disagree.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}

		issues := factor.CheckLocations(eng.Reference().Locations)

		out := cmd.OutOrStdout()
		if len(issues) == 0 {
			fmt.Fprintln(out, "Location data is consistent.")
			return nil
		}

		fmt.Fprintf(out, "%d inconsistencies found:\n", len(issues))
		for _, issue := range issues {
			fmt.Fprintf(out, "  %s\n", issue.Message)
		}

		return nil
	},
}

// refdataTemplatesCmd represents the refdata templates command
var refdataTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List project templates",
	Long:  `List the project templates usable with estimate --template.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, t := range eng.Reference().Templates {
			d := t.Defaults
			fmt.Fprintf(out, "  %s: %s\n", t.ID, t.Name)
			fmt.Fprintf(out, "      n=%d, LOI=%dm, IR=%g%%, %s, hard target: %v\n", d.SampleSize, d.LOI, d.IR, d.Quota, d.HardTarget)
		}

		return nil
	},
}

// refdataShowCmd represents the refdata show command
var refdataShowCmd = &cobra.Command{
	Use:       "show <table>",
	Short:     "Show a reference table as JSON",
	Long:      `Print a reference table of the current snapshot as JSON.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: refdata.TableNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}

		table, err := refdata.Table(eng.Reference(), args[0])
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(table, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal table to JSON: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refdataCmd)
	refdataCmd.AddCommand(refdataExportCmd)
	refdataCmd.AddCommand(refdataSeedCmd)
	refdataCmd.AddCommand(refdataCheckCmd)
	refdataCmd.AddCommand(refdataTemplatesCmd)
	refdataCmd.AddCommand(refdataShowCmd)

	refdataSeedCmd.Flags().String("from", "", "YAML reference file to seed from (default: built-in tables)")
}
