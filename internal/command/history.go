package command

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bornholm/fieldwork/internal/format"
	"github.com/spf13/cobra"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Calculation history commands",
	Long:  `Manage saved calculations.`,
}

// historyListCmd represents the history list command
var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved calculations",
	Long:  `List the most recent saved calculations, newest first.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")
		formatType, _ := cmd.Flags().GetString("format")

		history, err := openHistory(ctx)
		if err != nil {
			return err
		}
		defer history.Close()

		records, err := history.RecentHistory(ctx, limit)
		if err != nil {
			return fmt.Errorf("failed to list history: %w", err)
		}

		out := cmd.OutOrStdout()

		switch formatType {
		case "json":
			data, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal history to JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
		default:
			if len(records) == 0 {
				fmt.Fprintln(out, "No saved calculations.")
				return nil
			}
			fmt.Fprintln(out, "Calculations:")
			for _, r := range records {
				fmt.Fprintf(out, "  [%s] %s (%s) %s\n", r.ID, r.ProjectName, r.Mode, r.CreatedAt.Format("2006-01-02 15:04"))
				fmt.Fprintf(out, "      n=%d, LOI=%dm, IR=%g%%, %s => system %d-%d days, expert %d days\n",
					r.Input.SampleSize, r.Input.LOI, r.Input.IR, r.Input.Quota,
					r.SystemResult.FWDaysMin, r.SystemResult.FWDaysMax, r.ExpertConclusion.Days)
				if r.ExpertConclusion.Note != "" {
					fmt.Fprintf(out, "      note: %s\n", r.ExpertConclusion.Note)
				}
			}
		}

		return nil
	},
}

// historyDeleteCmd represents the history delete command
var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved calculation",
	Long:  `Delete a saved calculation by ID.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id := args[0]

		history, err := openHistory(ctx)
		if err != nil {
			return err
		}
		defer history.Close()

		if err := history.DeleteHistory(ctx, id); err != nil {
			return fmt.Errorf("failed to delete calculation '%s': %w", id, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Calculation %s deleted\n", id)
		return nil
	},
}

// historyClearCmd represents the history clear command
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved calculation",
	Long:  `Delete every saved calculation. Requires --force.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		force, _ := cmd.Flags().GetBool("force")
		if !force {
			return fmt.Errorf("this deletes every saved calculation, use --force to confirm")
		}

		history, err := openHistory(ctx)
		if err != nil {
			return err
		}
		defer history.Close()

		if err := history.ClearHistory(ctx); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
		return nil
	},
}

// historyExportCmd represents the history export command
var historyExportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export saved calculations to Excel",
	Long:  `Write the saved calculations to an Excel workbook.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		file := args[0]

		if !strings.HasSuffix(strings.ToLower(file), ".xlsx") {
			return fmt.Errorf("export file '%s' must end with .xlsx", file)
		}

		cfg, err := getConfig()
		if err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = cfg.GetHistoryLimit()
		}

		history, err := openHistory(ctx)
		if err != nil {
			return err
		}
		defer history.Close()

		records, err := history.RecentHistory(ctx, limit)
		if err != nil {
			return fmt.Errorf("failed to list history: %w", err)
		}

		if err := format.SaveHistoryXLSX(file, records); err != nil {
			return fmt.Errorf("failed to export history: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d calculations to %s\n", len(records), file)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)

	// history list flags
	historyListCmd.Flags().IntP("limit", "l", 10, "Maximum number of calculations")
	historyListCmd.Flags().StringP("format", "f", "table", "Output format (table, json)")

	// history clear flags
	historyClearCmd.Flags().BoolP("force", "f", false, "Confirm deletion")

	// history export flags
	historyExportCmd.Flags().IntP("limit", "l", 0, "Maximum number of calculations (default: retention limit)")
}
