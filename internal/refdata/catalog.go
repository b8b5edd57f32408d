package refdata

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bornholm/fieldwork/internal/factor"
	"github.com/bornholm/fieldwork/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Table names used in logs
const (
	TableCases           = "cases"
	TableLocations       = "locations"
	TablePanelVendors    = "panel_vendors"
	TableTargetAudiences = "target_audiences"
	TableQuotaSkew       = "quota_skew"
	TableTiming          = "timing"
	TableTemplates       = "templates"
)

// Catalog holds a reference data snapshot loaded from a provider. The
// snapshot is loaded on first use and kept until Invalidate is called.
// A Catalog is safe for concurrent use.
type Catalog struct {
	provider Provider

	mu       sync.RWMutex
	snapshot *model.ReferenceData
}

// NewCatalog creates a catalog over the given provider. A nil provider
// serves the built-in tables.
func NewCatalog(provider Provider) *Catalog {
	if provider == nil {
		provider = DefaultsProvider{}
	}
	return &Catalog{provider: provider}
}

// Snapshot returns the current reference data, loading it if needed.
// Loading never fails: a table that cannot be fetched falls back to its
// built-in version.
func (c *Catalog) Snapshot(ctx context.Context) *model.ReferenceData {
	c.mu.RLock()
	snapshot := c.snapshot
	c.mu.RUnlock()

	if snapshot != nil {
		return snapshot
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot == nil {
		c.snapshot = c.load(ctx)
	}

	return c.snapshot
}

// Invalidate drops the current snapshot, the next Snapshot call reloads it
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = nil
}

func (c *Catalog) load(ctx context.Context) *model.ReferenceData {
	ref := &model.ReferenceData{}

	var g errgroup.Group

	g.Go(func() error {
		ref.Cases = loadTable(ctx, TableCases, c.provider.LoadCases, model.DefaultCases)
		return nil
	})
	g.Go(func() error {
		ref.Locations = loadTable(ctx, TableLocations, c.provider.LoadLocations, model.DefaultLocations)
		return nil
	})
	g.Go(func() error {
		ref.PanelVendors = loadTable(ctx, TablePanelVendors, c.provider.LoadPanelVendors, model.DefaultPanelVendors)
		return nil
	})
	g.Go(func() error {
		ref.TargetAudiences = loadTable(ctx, TableTargetAudiences, c.provider.LoadTargetAudiences, model.DefaultTargetAudiences)
		return nil
	})
	g.Go(func() error {
		ref.QuotaSkew = loadTable(ctx, TableQuotaSkew, c.provider.LoadQuotaSkewConfig, model.DefaultQuotaSkewOptions)
		return nil
	})
	g.Go(func() error {
		ref.Timing = loadTiming(ctx, c.provider)
		return nil
	})
	g.Go(func() error {
		ref.Templates = loadTable(ctx, TableTemplates, c.provider.LoadTemplates, model.DefaultTemplates)
		return nil
	})

	// Table loaders never return an error
	_ = g.Wait()

	for _, issue := range factor.CheckLocations(ref.Locations) {
		zap.L().Warn("inconsistent location reference data",
			zap.String("harder", issue.Harder),
			zap.String("easier", issue.Easier),
			zap.String("message", issue.Message),
		)
	}

	zap.L().Debug("reference data loaded",
		zap.Int("cases", len(ref.Cases)),
		zap.Int("locations", len(ref.Locations)),
		zap.Int("panelVendors", len(ref.PanelVendors)),
		zap.Int("targetAudiences", len(ref.TargetAudiences)),
		zap.Int("templates", len(ref.Templates)),
	)

	return ref
}

func loadTable[T any](ctx context.Context, table string, fetch func(context.Context) ([]T, error), fallback func() []T) []T {
	rows, err := fetch(ctx)
	if err != nil {
		zap.L().Warn("could not load reference table, using defaults", zap.String("table", table), zap.Error(err))
		return fallback()
	}
	if len(rows) == 0 {
		zap.L().Info("reference table is empty, using defaults", zap.String("table", table))
		return fallback()
	}
	return rows
}

func loadTiming(ctx context.Context, provider Provider) model.TimingConfig {
	timing, err := provider.LoadTimingConfig(ctx)
	if err != nil {
		zap.L().Warn("could not load reference table, using defaults", zap.String("table", TableTiming), zap.Error(err))
		return model.DefaultTimingConfig()
	}
	if timing == nil {
		zap.L().Info("reference table is empty, using defaults", zap.String("table", TableTiming))
		return model.DefaultTimingConfig()
	}
	return *timing
}

// TableNames lists the tables served by Table
var TableNames = []string{
	TableCases, TableLocations, TablePanelVendors, TableTargetAudiences,
	TableQuotaSkew, TableTiming, TableTemplates,
}

// Table returns the named table of a snapshot
func Table(ref *model.ReferenceData, name string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case TableCases:
		return ref.Cases, nil
	case TableLocations:
		return ref.Locations, nil
	case TablePanelVendors, "vendors":
		return ref.PanelVendors, nil
	case TableTargetAudiences, "audiences":
		return ref.TargetAudiences, nil
	case TableQuotaSkew:
		return ref.QuotaSkew, nil
	case TableTiming:
		return ref.Timing, nil
	case TableTemplates:
		return ref.Templates, nil
	default:
		return nil, fmt.Errorf("unknown reference table '%s', expected one of %s", name, strings.Join(TableNames, ", "))
	}
}
