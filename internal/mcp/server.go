package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bornholm/fieldwork/internal/advice"
	"github.com/bornholm/fieldwork/internal/calendar"
	"github.com/bornholm/fieldwork/internal/engine"
	"github.com/bornholm/fieldwork/internal/format"
	"github.com/bornholm/fieldwork/internal/model"
	"github.com/bornholm/fieldwork/internal/pricing"
	"github.com/bornholm/fieldwork/internal/refdata"
	"github.com/bornholm/fieldwork/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Server represents the MCP server for fieldwork estimation
type Server struct {
	server  *mcp.Server
	files   *ChrootedStore
	catalog *refdata.Catalog
	history store.HistoryStore
	config  *model.Config
}

// ServerOptions contains options for the MCP server
type ServerOptions struct {
	RootDir string
	Config  *model.Config
	Catalog *refdata.Catalog
	// History is optional, history tools fail when it is nil
	History store.HistoryStore
}

// NewServer creates a new MCP server for fieldwork estimation
func NewServer(opts *ServerOptions) (*Server, error) {
	rootDir := opts.RootDir
	if rootDir == "" {
		rootDir = "."
	}

	files, err := NewChrootedStore(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create chrooted store: %w", err)
	}

	// Use provided config or default
	config := opts.Config
	if config == nil {
		config = model.DefaultConfig()
	}

	catalog := opts.Catalog
	if catalog == nil {
		catalog = refdata.NewCatalog(nil)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "fieldwork",
		Version: "1.0.0",
	}, nil)

	s := &Server{
		server:  server,
		files:   files,
		catalog: catalog,
		history: opts.History,
		config:  config,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// Run starts the MCP server on stdio transport
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session over the given transport
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

// Close closes the server and releases resources
func (s *Server) Close() error {
	return s.files.Close()
}

func (s *Server) registerTools() {
	// Estimation tools
	s.registerEstimateTool()
	s.registerQuickRangeTool()
	s.registerEstimateCPITool()
	s.registerCheckTimingTool()
	s.registerCompareExpertTool()

	// History tools
	s.registerSaveCalculationTool()
	s.registerListHistoryTool()
	s.registerExportHistoryTool()
	s.registerListExportsTool()

	// Reference tools
	s.registerListReferenceTool()
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// projectArgs are the project parameters shared by estimation tools
type projectArgs struct {
	ProjectName     string   `json:"projectName,omitempty" jsonschema:"optional project name"`
	SampleSize      int      `json:"sampleSize" jsonschema:"number of completed interviews required"`
	LOI             int      `json:"loi" jsonschema:"length of interview in minutes"`
	IR              float64  `json:"ir,omitempty" jsonschema:"incidence rate in percent between 1 and 100, suggested from locations when omitted"`
	Quota           string   `json:"quota,omitempty" jsonschema:"quota structure, simple or nested, defaults to simple"`
	HardTarget      bool     `json:"hardTarget,omitempty" jsonschema:"whether every quota cell must be filled exactly"`
	Locations       []string `json:"locations,omitempty" jsonschema:"location IDs, see list_reference"`
	Vendors         []string `json:"vendors,omitempty" jsonschema:"panel vendor IDs, see list_reference"`
	QuotaSkew       string   `json:"quotaSkew,omitempty" jsonschema:"balanced, light_skew or heavy_skew"`
	QCBufferPercent float64  `json:"qcBufferPercent,omitempty" jsonschema:"QC reject buffer in percent"`
	StartDate       string   `json:"startDate,omitempty" jsonschema:"fieldwork start date as YYYY-MM-DD, enables the timing factor"`
	TargetAudience  string   `json:"targetAudience,omitempty" jsonschema:"target audience ID, defaults to general"`
	Disable         []string `json:"disable,omitempty" jsonschema:"adjustment factors to disable"`
	ExpertDays      int      `json:"expertDays,omitempty" jsonschema:"expert day count compared with the estimate and saved as the conclusion"`
	Quick           bool     `json:"quick,omitempty" jsonschema:"save the likely quick range scenario"`
	Note            string   `json:"note,omitempty" jsonschema:"optional expert note"`
}

func (a projectArgs) request(defaults engine.FactorToggles) (format.Request, error) {
	start, err := calendar.ParseDate(a.StartDate)
	if err != nil {
		return format.Request{}, err
	}

	toggles, err := defaults.Disable(a.Disable...)
	if err != nil {
		return format.Request{}, err
	}

	return format.Request{
		Input: model.ProjectInput{
			ProjectName:     a.ProjectName,
			SampleSize:      a.SampleSize,
			LOI:             a.LOI,
			IR:              a.IR,
			Quota:           model.QuotaType(strings.ToLower(a.Quota)),
			HardTarget:      a.HardTarget,
			Locations:       a.Locations,
			Vendors:         a.Vendors,
			QuotaSkew:       model.QuotaSkewID(strings.ToLower(a.QuotaSkew)),
			QCBufferPercent: a.QCBufferPercent,
			StartDate:       start,
			TargetAudience:  a.TargetAudience,
		},
		Toggles: toggles,
	}, nil
}

func (s *Server) report(ctx context.Context, req format.Request) *format.Report {
	return format.NewReport(engine.Load(ctx, s.catalog), req)
}

func (s *Server) renderReport(report *format.Report) (*mcp.CallToolResult, any, error) {
	text, err := format.NewMarkdownFormatter().Format(report)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to format report: %w", err)
	}
	return textResult(text), nil, nil
}

// estimate_fieldwork tool
func (s *Server) registerEstimateTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "estimate_fieldwork",
		Description: "Estimate the fieldwork duration in days of an online survey in Vietnam, with suggestions and CPI",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args projectArgs) (*mcp.CallToolResult, any, error) {
		r, err := args.request(engine.TogglesFromConfig(s.config.Factors))
		if err != nil {
			return nil, nil, err
		}
		r.ExpertDays = args.ExpertDays
		return s.renderReport(s.report(ctx, r))
	})
}

// quick_range tool
func (s *Server) registerQuickRangeTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "quick_range",
		Description: "Estimate best, likely and worst fieldwork durations, shifting IR by 15 points. IR defaults to 35.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args projectArgs) (*mcp.CallToolResult, any, error) {
		r, err := args.request(engine.TogglesFromConfig(s.config.Factors))
		if err != nil {
			return nil, nil, err
		}
		r.Quick = true
		return s.renderReport(s.report(ctx, r))
	})
}

// estimate_cpi tool
type cpiArgs struct {
	LOI        int     `json:"loi" jsonschema:"length of interview in minutes"`
	IR         float64 `json:"ir" jsonschema:"incidence rate in percent"`
	Quota      string  `json:"quota,omitempty" jsonschema:"simple or nested"`
	HardTarget bool    `json:"hardTarget,omitempty" jsonschema:"whether quotas are hard targets"`
}

func (s *Server) registerEstimateCPITool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "estimate_cpi",
		Description: "Estimate the cost per interview in USD",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args cpiArgs) (*mcp.CallToolResult, any, error) {
		quote := pricing.EstimateCPI(model.ProjectInput{
			LOI:        args.LOI,
			IR:         args.IR,
			Quota:      model.QuotaType(strings.ToLower(args.Quota)),
			HardTarget: args.HardTarget,
		})

		result := fmt.Sprintf("CPI: %s %s\n", quote.String(), quote.Currency)
		for _, item := range quote.Breakdown {
			result += fmt.Sprintf("- %s\n", item.Label)
		}

		return textResult(result), nil, nil
	})
}

// check_timing tool
type timingArgs struct {
	StartDate string `json:"startDate" jsonschema:"fieldwork start date as YYYY-MM-DD"`
	Days      int    `json:"days,omitempty" jsonschema:"fieldwork length in days, when omitted the next 14 days are scanned for holidays"`
}

func (s *Server) registerCheckTimingTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_timing",
		Description: "Check how weekdays and Vietnamese public holidays affect a fieldwork window",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args timingArgs) (*mcp.CallToolResult, any, error) {
		start, err := calendar.ParseDate(args.StartDate)
		if err != nil {
			return nil, nil, err
		}
		if start == nil {
			return nil, nil, fmt.Errorf("startDate is required")
		}

		eng := engine.Load(ctx, s.catalog)

		if args.Days <= 0 {
			check := eng.Calendar().QuickCheck(*start)
			return textResult(fmt.Sprintf("%s (factor x%.2f)", check.Message, check.Factor)), nil, nil
		}

		timing := eng.Calendar().TimingFactor(*start, args.Days)
		result := fmt.Sprintf("Timing factor: x%.2f from %s to %s\n",
			timing.Factor, timing.Start.Format("2006-01-02"), timing.End.Format("2006-01-02"))
		for _, w := range timing.Warnings {
			result += fmt.Sprintf("- [%s] %s\n", w.Severity, w.Message)
		}

		return textResult(result), nil, nil
	})
}

// compare_expert tool
type compareArgs struct {
	ExpertDays int `json:"expertDays" jsonschema:"the day count proposed by the expert"`
	FWDaysMin  int `json:"fwDaysMin" jsonschema:"lower bound of the estimated range"`
	FWDaysMax  int `json:"fwDaysMax" jsonschema:"upper bound of the estimated range"`
}

func (s *Server) registerCompareExpertTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "compare_expert",
		Description: "Compare an expert day count with an estimated fieldwork range",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args compareArgs) (*mcp.CallToolResult, any, error) {
		c := advice.Compare(args.ExpertDays, engine.Range{Min: args.FWDaysMin, Max: args.FWDaysMax})

		result := fmt.Sprintf("Status: %s (%+d%% from midpoint %g)\n", c.Status, c.DiffPercent, c.Midpoint)
		if c.HasWarning() {
			result += c.Warning + "\n"
		}

		return textResult(result), nil, nil
	})
}

// save_calculation tool
func (s *Server) registerSaveCalculationTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "save_calculation",
		Description: "Estimate a project and save it to the calculation history with the expert conclusion",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args projectArgs) (*mcp.CallToolResult, any, error) {
		if s.history == nil {
			return nil, nil, fmt.Errorf("calculation history is not configured")
		}

		r, err := args.request(engine.TogglesFromConfig(s.config.Factors))
		if err != nil {
			return nil, nil, err
		}
		r.Quick = args.Quick
		r.ExpertDays = args.ExpertDays

		report := s.report(ctx, r)
		record := report.HistoryRecord(args.ExpertDays, args.Note)
		if record == nil {
			return nil, nil, fmt.Errorf("no estimate to save: %s", strings.Join(report.Problems, "; "))
		}

		id, err := s.history.SaveCalculation(ctx, record)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to save calculation: %w", err)
		}

		zap.L().Info("calculation saved", zap.String("id", id), zap.String("project", record.ProjectName))

		return textResult(fmt.Sprintf("Calculation '%s' saved with ID %s (%d - %d days)",
			record.ProjectName, id, record.SystemResult.FWDaysMin, record.SystemResult.FWDaysMax)), nil, nil
	})
}

// list_history tool
type listHistoryArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of records, defaults to 10"`
}

func (s *Server) registerListHistoryTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_history",
		Description: "List the most recent saved calculations, newest first",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args listHistoryArgs) (*mcp.CallToolResult, any, error) {
		if s.history == nil {
			return nil, nil, fmt.Errorf("calculation history is not configured")
		}

		records, err := s.history.RecentHistory(ctx, args.Limit)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list history: %w", err)
		}

		if len(records) == 0 {
			return textResult("No saved calculations."), nil, nil
		}

		result := "Calculations:\n"
		for _, r := range records {
			result += fmt.Sprintf("- [%s] %s (%s): system %d - %d days, expert %d days, %s\n",
				r.ID, r.ProjectName, r.Mode,
				r.SystemResult.FWDaysMin, r.SystemResult.FWDaysMax,
				r.ExpertConclusion.Days, r.CreatedAt.Format("2006-01-02 15:04"))
		}

		return textResult(result), nil, nil
	})
}

// export_history tool
type exportHistoryArgs struct {
	Path  string `json:"path" jsonschema:"the .xlsx file path to write, relative to the server root"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of records, defaults to the retention limit"`
}

func (s *Server) registerExportHistoryTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "export_history",
		Description: "Export saved calculations to an Excel workbook",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args exportHistoryArgs) (*mcp.CallToolResult, any, error) {
		if s.history == nil {
			return nil, nil, fmt.Errorf("calculation history is not configured")
		}

		limit := args.Limit
		if limit <= 0 {
			limit = s.config.GetHistoryLimit()
		}

		records, err := s.history.RecentHistory(ctx, limit)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list history: %w", err)
		}

		if err := s.files.SaveHistoryXLSX(args.Path, records); err != nil {
			return nil, nil, fmt.Errorf("failed to export history: %w", err)
		}

		return textResult(fmt.Sprintf("Exported %d calculations to %s", len(records), args.Path)), nil, nil
	})
}

// list_exports tool
type listExportsArgs struct {
	Dir string `json:"dir,omitempty" jsonschema:"the directory to list exports from, defaults to the server root"`
}

func (s *Server) registerListExportsTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_exports",
		Description: "List the history workbooks exported in a directory",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args listExportsArgs) (*mcp.CallToolResult, any, error) {
		dir := args.Dir
		if dir == "" {
			dir = "."
		}

		files, err := s.files.ListExports(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list exports: %w", err)
		}

		if len(files) == 0 {
			return textResult("No exports found."), nil, nil
		}

		result := "Exports:\n"
		for _, f := range files {
			result += fmt.Sprintf("- %s\n", f)
		}

		return textResult(result), nil, nil
	})
}

// list_reference tool
type listReferenceArgs struct {
	Table string `json:"table" jsonschema:"one of cases, locations, panel_vendors, target_audiences, quota_skew, templates"`
}

func (s *Server) registerListReferenceTool() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_reference",
		Description: "List a reference data table used by the estimator",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args listReferenceArgs) (*mcp.CallToolResult, any, error) {
		table, err := refdata.Table(s.catalog.Snapshot(ctx), args.Table)
		if err != nil {
			return nil, nil, err
		}

		data, err := json.MarshalIndent(table, "", "  ")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal reference table: %w", err)
		}

		return textResult(string(data)), nil, nil
	})
}
