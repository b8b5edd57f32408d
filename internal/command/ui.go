package command

import (
	"fmt"

	"github.com/bornholm/fieldwork/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// uiCmd represents the ui command
var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Estimate interactively",
	Long: `Open an interactive terminal UI with a project form and a live estimate.
Project flags prefill the form.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := getConfig()
		if err != nil {
			return err
		}

		eng, err := openEngine(ctx)
		if err != nil {
			return err
		}

		input, err := readProjectInput(cmd.Flags(), eng.Reference())
		if err != nil {
			return err
		}

		toggles, err := readToggles(cmd.Flags(), cfg)
		if err != nil {
			return err
		}

		// Keep the terminal clean while the UI runs
		logger := zap.L()
		zap.ReplaceGlobals(zap.NewNop())
		defer zap.ReplaceGlobals(logger)

		history, err := openHistory(ctx)
		if err != nil {
			return err
		}
		defer history.Close()

		app := ui.NewApp(eng, history, toggles, cfg.GetHistoryLimit(), input)
		if err := app.Run(ctx); err != nil {
			return fmt.Errorf("failed to run UI: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)

	addProjectFlags(uiCmd.Flags())
	uiCmd.Flags().StringSlice("disable", nil, "Factors to disable")
}
