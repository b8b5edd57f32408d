package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bornholm/fieldwork/internal/advice"
	"github.com/bornholm/fieldwork/internal/calendar"
	"github.com/bornholm/fieldwork/internal/engine"
	"github.com/bornholm/fieldwork/internal/format"
	"github.com/bornholm/fieldwork/internal/model"
	"github.com/bornholm/fieldwork/internal/pricing"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate fieldwork duration",
	Long: `Estimate the fieldwork days range of an online project, with risk suggestions and CPI.

Use --quick to get best, likely and worst scenarios. IR defaults to 35 in quick mode,
or is suggested from the selected locations when omitted.`,
	Example: `  fieldwork estimate -n 500 --loi 15 --ir 30 --quota nested --location hcm --location hanoi
  fieldwork estimate --template brand_health --start 2026-02-10 --vendor purespectrum
  fieldwork estimate -n 300 --loi 10 --quick --format json`,
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

		quick, _ := cmd.Flags().GetBool("quick")
		expertDays, _ := cmd.Flags().GetInt("expert-days")
		note, _ := cmd.Flags().GetString("note")
		save, _ := cmd.Flags().GetBool("save")
		formatType, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		formatter, err := format.New(formatType)
		if err != nil {
			return err
		}

		report := format.NewReport(eng, format.Request{
			Input:      input,
			Toggles:    toggles,
			Quick:      quick,
			ExpertDays: expertDays,
		})

		result, err := formatter.Format(report)
		if err != nil {
			return fmt.Errorf("failed to format report: %w", err)
		}

		if err := writeOutput(cmd, output, result); err != nil {
			return err
		}

		if !save {
			return nil
		}

		record := report.HistoryRecord(expertDays, note)
		if record == nil {
			return fmt.Errorf("nothing to save: %s", strings.Join(report.Problems, "; "))
		}

		history, err := openHistory(ctx)
		if err != nil {
			return err
		}
		defer history.Close()

		id, err := history.SaveCalculation(ctx, record)
		if err != nil {
			return fmt.Errorf("failed to save calculation: %w", err)
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Calculation saved with ID %s\n", id)
		return nil
	},
}

// cpiCmd represents the cpi command
var cpiCmd = &cobra.Command{
	Use:   "cpi",
	Short: "Estimate the cost per interview",
	Long:  `Estimate the cost per interview in USD from LOI, IR, quota structure and hard target.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loi, _ := cmd.Flags().GetInt("loi")
		ir, _ := cmd.Flags().GetFloat64("ir")
		quota, _ := cmd.Flags().GetString("quota")
		hardTarget, _ := cmd.Flags().GetBool("hard-target")

		quote := pricing.EstimateCPI(model.ProjectInput{
			LOI:        loi,
			IR:         ir,
			Quota:      model.QuotaType(strings.ToLower(quota)),
			HardTarget: hardTarget,
		})

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "CPI: %s %s\n", quote.String(), quote.Currency)
		for _, item := range quote.Breakdown {
			fmt.Fprintf(out, "  %s\n", item.Label)
		}

		return nil
	},
}

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <expert-days>",
	Short: "Compare an expert day count with an estimate",
	Long:  `Classify an expert day count against an estimated fieldwork range (--min, --max).`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		expertDays, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid expert days: %w", err)
		}

		minDays, _ := cmd.Flags().GetInt("min")
		maxDays, _ := cmd.Flags().GetInt("max")
		if maxDays < minDays {
			return fmt.Errorf("--max (%d) must not be lower than --min (%d)", maxDays, minDays)
		}

		c := advice.Compare(expertDays, engine.Range{Min: minDays, Max: maxDays})

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Status: %s (%+d%% from midpoint %g)\n", c.Status, c.DiffPercent, c.Midpoint)
		if c.HasWarning() {
			fmt.Fprintln(out, c.Warning)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(cpiCmd)
	rootCmd.AddCommand(compareCmd)

	// estimate command flags
	addProjectFlags(estimateCmd.Flags())
	estimateCmd.Flags().Bool("quick", false, "Estimate best, likely and worst scenarios")
	estimateCmd.Flags().StringSlice("disable", nil, fmt.Sprintf("Factors to disable (%s)", strings.Join(engine.FactorNames, ", ")))
	estimateCmd.Flags().Int("expert-days", 0, "Expert day count to compare with the estimate")
	estimateCmd.Flags().String("note", "", "Expert note saved with the calculation")
	estimateCmd.Flags().Bool("save", false, "Save the calculation to the history")
	estimateCmd.Flags().StringP("format", "f", format.FormatMarkdown, "Output format (markdown, json, yaml)")
	estimateCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")

	// cpi command flags
	cpiCmd.Flags().Int("loi", 10, "Length of interview in minutes")
	cpiCmd.Flags().Float64("ir", 50, "Incidence rate in percent")
	cpiCmd.Flags().String("quota", string(model.QuotaSimple), "Quota structure (simple, nested)")
	cpiCmd.Flags().Bool("hard-target", false, "Quotas are hard targets")

	// compare command flags
	compareCmd.Flags().Int("min", 0, "Estimated minimum days")
	compareCmd.Flags().Int("max", 0, "Estimated maximum days")
	_ = compareCmd.MarkFlagRequired("min")
	_ = compareCmd.MarkFlagRequired("max")
}

// addProjectFlags registers a flag for every project input field
func addProjectFlags(flags *pflag.FlagSet) {
	flags.String("template", "", "Prefill the project from a template (see refdata templates)")
	flags.String("name", "", "Project name")
	flags.IntP("sample", "n", 0, "Sample size")
	flags.Int("loi", 0, "Length of interview in minutes")
	flags.Float64("ir", 0, "Incidence rate in percent (1-100)")
	flags.String("quota", "", "Quota structure (simple, nested)")
	flags.Bool("hard-target", false, "Quotas are hard targets")
	flags.StringSlice("location", nil, "Location IDs")
	flags.StringSlice("vendor", nil, "Panel vendor IDs")
	flags.String("skew", "", "Quota skew (balanced, light_skew, heavy_skew)")
	flags.Float64("qc", 0, "QC reject buffer in percent")
	flags.String("start", "", "Fieldwork start date (YYYY-MM-DD)")
	flags.String("audience", "", "Target audience ID")
}

// readProjectInput builds a project input from a template, if any, and
// the flags that were set
func readProjectInput(flags *pflag.FlagSet, ref *model.ReferenceData) (model.ProjectInput, error) {
	var input model.ProjectInput

	if id, _ := flags.GetString("template"); id != "" {
		tpl, ok := findTemplate(ref.Templates, id)
		if !ok {
			return input, fmt.Errorf("template '%s' not found", id)
		}
		input = tpl.Apply("")
	}

	if flags.Changed("name") {
		input.ProjectName, _ = flags.GetString("name")
	}
	if flags.Changed("sample") {
		input.SampleSize, _ = flags.GetInt("sample")
	}
	if flags.Changed("loi") {
		input.LOI, _ = flags.GetInt("loi")
	}
	if flags.Changed("ir") {
		input.IR, _ = flags.GetFloat64("ir")
	}
	if flags.Changed("quota") {
		quota, _ := flags.GetString("quota")
		input.Quota = model.QuotaType(strings.ToLower(quota))
	}
	if flags.Changed("hard-target") {
		input.HardTarget, _ = flags.GetBool("hard-target")
	}
	if flags.Changed("location") {
		input.Locations, _ = flags.GetStringSlice("location")
	}
	if flags.Changed("vendor") {
		input.Vendors, _ = flags.GetStringSlice("vendor")
	}
	if flags.Changed("skew") {
		skew, _ := flags.GetString("skew")
		input.QuotaSkew = model.QuotaSkewID(strings.ToLower(skew))
	}
	if flags.Changed("qc") {
		input.QCBufferPercent, _ = flags.GetFloat64("qc")
	}
	if flags.Changed("audience") {
		input.TargetAudience, _ = flags.GetString("audience")
	}

	start, _ := flags.GetString("start")
	date, err := calendar.ParseDate(start)
	if err != nil {
		return input, err
	}
	input.StartDate = date

	return input, nil
}

// readToggles applies --disable to the configured factor defaults
func readToggles(flags *pflag.FlagSet, cfg *model.Config) (engine.FactorToggles, error) {
	disabled, _ := flags.GetStringSlice("disable")
	return engine.TogglesFromConfig(cfg.Factors).Disable(disabled...)
}

func findTemplate(templates []model.Template, id string) (model.Template, bool) {
	for _, t := range templates {
		if strings.EqualFold(t.ID, id) {
			return t, true
		}
	}
	return model.Template{}, false
}
