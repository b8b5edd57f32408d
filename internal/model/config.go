package model

// DefaultHistoryLimit is the number of history records kept after each save
const DefaultHistoryLimit = 50

// Store drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Reference data sources
const (
	SourceDefaults = "defaults"
	SourceYAML     = "yaml"
	SourceMongo    = "mongo"
)

// Config represents the application configuration stored in .fieldwork.yml
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	RefData RefDataConfig `yaml:"refdata" mapstructure:"refdata"`
	History HistoryConfig `yaml:"history" mapstructure:"history"`
	Factors FactorConfig  `yaml:"factors" mapstructure:"factors"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the history backend
type StoreConfig struct {
	Driver   string `yaml:"driver" mapstructure:"driver"`
	DSN      string `yaml:"dsn,omitempty" mapstructure:"dsn"`
	Database string `yaml:"database,omitempty" mapstructure:"database"`
}

// RefDataConfig configures where reference tables are loaded from
type RefDataConfig struct {
	Source string `yaml:"source" mapstructure:"source"`
	File   string `yaml:"file,omitempty" mapstructure:"file"`
}

// HistoryConfig configures calculation history retention
type HistoryConfig struct {
	Limit int `yaml:"limit" mapstructure:"limit"`
}

// FactorConfig holds the default state of each adjustment factor
type FactorConfig struct {
	Vendor     bool `yaml:"vendor" mapstructure:"vendor"`
	QuotaSkew  bool `yaml:"quota_skew" mapstructure:"quota_skew"`
	IRImpact   bool `yaml:"ir_impact" mapstructure:"ir_impact"`
	Timing     bool `yaml:"timing" mapstructure:"timing"`
	SampleSize bool `yaml:"sample_size" mapstructure:"sample_size"`
	Location   bool `yaml:"location" mapstructure:"location"`
	Audience   bool `yaml:"audience" mapstructure:"audience"`
	QCBuffer   bool `yaml:"qc_buffer" mapstructure:"qc_buffer"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Driver: DriverSQLite,
			DSN:    "fieldwork.db",
		},
		RefData: RefDataConfig{
			Source: SourceDefaults,
			File:   "reference.yml",
		},
		History: HistoryConfig{
			Limit: DefaultHistoryLimit,
		},
		Factors: FactorConfig{
			Vendor:     true,
			QuotaSkew:  true,
			IRImpact:   true,
			Timing:     true,
			SampleSize: true,
			Location:   true,
			Audience:   true,
			QCBuffer:   true,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// GetHistoryLimit returns the configured retention cap or the default
func (c *Config) GetHistoryLimit() int {
	if c.History.Limit <= 0 {
		return DefaultHistoryLimit
	}
	return c.History.Limit
}

// GetStoreDriver returns the configured store driver or the default
func (c *Config) GetStoreDriver() string {
	if c.Store.Driver == "" {
		return DriverSQLite
	}
	return c.Store.Driver
}

// GetRefDataSource returns the configured reference data source or the default
func (c *Config) GetRefDataSource() string {
	if c.RefData.Source == "" {
		return SourceDefaults
	}
	return c.RefData.Source
}

// GetServerPort returns the configured HTTP port or the default
func (c *Config) GetServerPort() int {
	if c.Server.Port <= 0 {
		return 8080
	}
	return c.Server.Port
}
