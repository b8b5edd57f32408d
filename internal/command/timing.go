package command

import (
	"fmt"
	"time"

	"github.com/bornholm/fieldwork/internal/calendar"
	"github.com/spf13/cobra"
)

// timingCmd represents the timing command
var timingCmd = &cobra.Command{
	Use:   "timing",
	Short: "Evaluate the timing factor of a fieldwork window",
	Long:  `Average the weekday and holiday factors over a fieldwork window starting at --start and lasting --days.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := requiredDate(cmd)
		if err != nil {
			return err
		}
		days, _ := cmd.Flags().GetInt("days")

		eng, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}

		timing := eng.Calendar().TimingFactor(start, days)

		out := cmd.OutOrStdout()
		if days <= 0 {
			fmt.Fprintf(out, "Timing factor: x%.2f\n", timing.Factor)
			return nil
		}

		fmt.Fprintf(out, "Timing factor: x%.2f (%s to %s)\n", timing.Factor,
			timing.Start.Format(time.DateOnly), timing.End.Format(time.DateOnly))
		for _, w := range timing.Warnings {
			fmt.Fprintf(out, "  [%s] %s\n", w.Severity, w.Message)
		}

		return nil
	},
}

// timingCheckCmd represents the timing check command
var timingCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "List holidays in the days following a start date",
	Long:  fmt.Sprintf(`Scan the %d days following --start for Vietnamese public holidays.`, calendar.LookaheadDays),
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := requiredDate(cmd)
		if err != nil {
			return err
		}

		eng, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}

		check := eng.Calendar().QuickCheck(start)

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, check.Message)
		for _, h := range check.Holidays {
			fmt.Fprintf(out, "  %s: %s to %s (x%.2f)\n", h.Name,
				h.Start.Format(time.DateOnly), h.End().Format(time.DateOnly), h.Factor)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(timingCmd)
	timingCmd.AddCommand(timingCheckCmd)

	timingCmd.PersistentFlags().String("start", "", "Fieldwork start date (YYYY-MM-DD)")
	timingCmd.Flags().Int("days", 7, "Fieldwork length in days")
}

func requiredDate(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("start")
	date, err := calendar.ParseDate(raw)
	if err != nil {
		return time.Time{}, err
	}
	if date == nil {
		return time.Time{}, fmt.Errorf("--start is required")
	}
	return *date, nil
}
