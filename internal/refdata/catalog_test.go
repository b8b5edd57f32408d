package refdata

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/bornholm/fieldwork/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	DefaultsProvider
	loads atomic.Int32
	cases []model.Case
}

func (p *stubProvider) LoadCases(context.Context) ([]model.Case, error) {
	p.loads.Add(1)
	return p.cases, nil
}

func (p *stubProvider) LoadLocations(context.Context) ([]model.Location, error) {
	return nil, errors.New("connection refused")
}

func (p *stubProvider) LoadTimingConfig(context.Context) (*model.TimingConfig, error) {
	return nil, nil
}

func (p *stubProvider) LoadPanelVendors(context.Context) ([]model.PanelVendor, error) {
	return []model.PanelVendor{{ID: "solo", Name: "Solo", ResponseFactor: 1.1}}, nil
}

func TestCatalog_Snapshot(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{}
	catalog := NewCatalog(provider)

	ref := catalog.Snapshot(context.Background())
	require.NotNil(t, ref)

	// Empty and failing tables fall back to the built-in ones
	assert.Equal(t, model.DefaultCases(), ref.Cases)
	assert.Equal(t, model.DefaultLocations(), ref.Locations)
	assert.Equal(t, model.DefaultTimingConfig(), ref.Timing)

	// Provided tables are kept
	require.Len(t, ref.PanelVendors, 1)
	assert.Equal(t, "solo", ref.PanelVendors[0].ID)
	assert.Equal(t, model.DefaultTemplates(), ref.Templates)
}

func TestCatalog_LoadsOnceUntilInvalidated(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{}
	catalog := NewCatalog(provider)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			catalog.Snapshot(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), provider.loads.Load())

	first := catalog.Snapshot(context.Background())
	assert.Same(t, first, catalog.Snapshot(context.Background()))

	provider.cases = []model.Case{{ID: "custom", SamplesPerDay: 42}}
	catalog.Invalidate()

	second := catalog.Snapshot(context.Background())
	assert.Equal(t, int32(2), provider.loads.Load())
	require.Len(t, second.Cases, 1)
	assert.Equal(t, "custom", second.Cases[0].ID)
}

func TestCatalog_NilProvider(t *testing.T) {
	t.Parallel()

	ref := NewCatalog(nil).Snapshot(context.Background())
	assert.Equal(t, model.DefaultReferenceData(), ref)
}

func TestTable(t *testing.T) {
	t.Parallel()

	ref := model.DefaultReferenceData()

	for _, name := range TableNames {
		table, err := Table(ref, name)
		require.NoError(t, err, name)
		assert.NotNil(t, table, name)
	}

	vendors, err := Table(ref, " Vendors ")
	require.NoError(t, err)
	assert.Equal(t, ref.PanelVendors, vendors)

	_, err = Table(ref, "weather")
	assert.Error(t, err)
}
