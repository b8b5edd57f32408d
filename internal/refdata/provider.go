// Package refdata loads the reference tables used by the estimator and
// keeps a snapshot of them for the lifetime of a process.
package refdata

import (
	"context"

	"github.com/bornholm/fieldwork/internal/model"
)

// Provider fetches reference tables from a backing source. A provider may
// return an error or an empty table, the catalog then uses the built-in one.
type Provider interface {
	LoadCases(ctx context.Context) ([]model.Case, error)
	LoadLocations(ctx context.Context) ([]model.Location, error)
	LoadPanelVendors(ctx context.Context) ([]model.PanelVendor, error)
	LoadTargetAudiences(ctx context.Context) ([]model.TargetAudience, error)
	LoadQuotaSkewConfig(ctx context.Context) ([]model.QuotaSkewOption, error)
	LoadTimingConfig(ctx context.Context) (*model.TimingConfig, error)
	LoadTemplates(ctx context.Context) ([]model.Template, error)
}

// DefaultsProvider serves the built-in tables
type DefaultsProvider struct{}

func (DefaultsProvider) LoadCases(context.Context) ([]model.Case, error) {
	return model.DefaultCases(), nil
}

func (DefaultsProvider) LoadLocations(context.Context) ([]model.Location, error) {
	return model.DefaultLocations(), nil
}

func (DefaultsProvider) LoadPanelVendors(context.Context) ([]model.PanelVendor, error) {
	return model.DefaultPanelVendors(), nil
}

func (DefaultsProvider) LoadTargetAudiences(context.Context) ([]model.TargetAudience, error) {
	return model.DefaultTargetAudiences(), nil
}

func (DefaultsProvider) LoadQuotaSkewConfig(context.Context) ([]model.QuotaSkewOption, error) {
	return model.DefaultQuotaSkewOptions(), nil
}

func (DefaultsProvider) LoadTimingConfig(context.Context) (*model.TimingConfig, error) {
	timing := model.DefaultTimingConfig()
	return &timing, nil
}

func (DefaultsProvider) LoadTemplates(context.Context) ([]model.Template, error) {
	return model.DefaultTemplates(), nil
}

var _ Provider = DefaultsProvider{}
