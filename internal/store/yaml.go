package store

import (
	"context"
	"os"

	"github.com/bornholm/fieldwork/internal/model"
	"github.com/bornholm/fieldwork/internal/refdata"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DefaultReferenceFile is the default reference data file name
const DefaultReferenceFile = "reference.yml"

// YAMLStore reads and writes reference data from a YAML file. Tables
// missing from the file are reported empty.
type YAMLStore struct {
	file string
}

// NewYAMLStore creates a new YAML store with the given reference file path
func NewYAMLStore(file string) *YAMLStore {
	if file == "" {
		file = DefaultReferenceFile
	}
	return &YAMLStore{
		file: file,
	}
}

// File returns the reference file path
func (s *YAMLStore) File() string {
	return s.file
}

// LoadReference loads the whole reference file
func (s *YAMLStore) LoadReference(ctx context.Context) (*model.ReferenceData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.file)
	if err != nil {
		return nil, eris.Wrapf(err, "could not read reference file '%s'", s.file)
	}

	ref := &model.ReferenceData{}
	if err := yaml.Unmarshal(data, ref); err != nil {
		return nil, eris.Wrapf(err, "could not parse reference file '%s'", s.file)
	}

	return ref, nil
}

// SaveReference writes a full reference data snapshot to the file
func (s *YAMLStore) SaveReference(ref *model.ReferenceData) error {
	data, err := yaml.Marshal(ref)
	if err != nil {
		return eris.Wrap(err, "could not marshal reference data")
	}

	if err := os.WriteFile(s.file, data, 0644); err != nil {
		return eris.Wrapf(err, "could not write reference file '%s'", s.file)
	}

	return nil
}

func (s *YAMLStore) LoadCases(ctx context.Context) ([]model.Case, error) {
	ref, err := s.LoadReference(ctx)
	if err != nil {
		return nil, err
	}
	return ref.Cases, nil
}

func (s *YAMLStore) LoadLocations(ctx context.Context) ([]model.Location, error) {
	ref, err := s.LoadReference(ctx)
	if err != nil {
		return nil, err
	}
	return ref.Locations, nil
}

func (s *YAMLStore) LoadPanelVendors(ctx context.Context) ([]model.PanelVendor, error) {
	ref, err := s.LoadReference(ctx)
	if err != nil {
		return nil, err
	}
	return ref.PanelVendors, nil
}

func (s *YAMLStore) LoadTargetAudiences(ctx context.Context) ([]model.TargetAudience, error) {
	ref, err := s.LoadReference(ctx)
	if err != nil {
		return nil, err
	}
	return ref.TargetAudiences, nil
}

func (s *YAMLStore) LoadQuotaSkewConfig(ctx context.Context) ([]model.QuotaSkewOption, error) {
	ref, err := s.LoadReference(ctx)
	if err != nil {
		return nil, err
	}
	return ref.QuotaSkew, nil
}

// LoadTimingConfig returns nil when the file holds no day factors
func (s *YAMLStore) LoadTimingConfig(ctx context.Context) (*model.TimingConfig, error) {
	ref, err := s.LoadReference(ctx)
	if err != nil {
		return nil, err
	}
	if ref.Timing.DayFactors == [7]float64{} {
		return nil, nil
	}
	return &ref.Timing, nil
}

func (s *YAMLStore) LoadTemplates(ctx context.Context) ([]model.Template, error) {
	ref, err := s.LoadReference(ctx)
	if err != nil {
		return nil, err
	}
	return ref.Templates, nil
}

// Ensure YAMLStore implements refdata.Provider
var _ refdata.Provider = (*YAMLStore)(nil)
