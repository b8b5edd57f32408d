// Package config loads the application configuration and sets up logging.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bornholm/fieldwork/internal/model"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file searched for from the
// working directory up to the root
const DefaultConfigFile = ".fieldwork.yml"

// EnvPrefix prefixes every environment variable override
const EnvPrefix = "FIELDWORK"

// Load reads the configuration. When file is empty, DefaultConfigFile is
// searched upward from the working directory. Environment variables
// (FIELDWORK_STORE_DRIVER, ...) and a .env file override file values.
func Load(file string) (*model.Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	if file == "" {
		found, err := FindFile(DefaultConfigFile)
		if err != nil {
			return nil, eris.Wrap(err, "config: search file")
		}
		file = found
	}
	if file != "" {
		v.SetConfigFile(file)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, model.DefaultConfig())

	if file != "" {
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return nil, eris.Wrapf(err, "config: read file '%s'", file)
			}
		}
	}

	var cfg model.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *model.Config) {
	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dsn", d.Store.DSN)
	v.SetDefault("store.database", d.Store.Database)
	v.SetDefault("refdata.source", d.RefData.Source)
	v.SetDefault("refdata.file", d.RefData.File)
	v.SetDefault("history.limit", d.History.Limit)
	v.SetDefault("factors.vendor", d.Factors.Vendor)
	v.SetDefault("factors.quota_skew", d.Factors.QuotaSkew)
	v.SetDefault("factors.ir_impact", d.Factors.IRImpact)
	v.SetDefault("factors.timing", d.Factors.Timing)
	v.SetDefault("factors.sample_size", d.Factors.SampleSize)
	v.SetDefault("factors.location", d.Factors.Location)
	v.SetDefault("factors.audience", d.Factors.Audience)
	v.SetDefault("factors.qc_buffer", d.Factors.QCBuffer)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Save writes the configuration as YAML
func Save(file string, cfg *model.Config) error {
	if file == "" {
		file = DefaultConfigFile
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "config: marshal")
	}

	return eris.Wrapf(os.WriteFile(file, data, 0644), "config: write '%s'", file)
}

// FindFile searches for the file starting from the current directory
// and traversing up to parent directories until it finds the file or reaches the root
func FindFile(filename string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached the root directory, file not found
			return "", nil
		}
		dir = parent
	}
}

// InitLogger builds the global zap logger
func InitLogger(cfg model.LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level := cfg.Level
	if level == "" {
		level = "info"
	}

	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(parsed)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
