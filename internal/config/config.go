package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Airtable AirtableConfig `yaml:"airtable" mapstructure:"airtable"`
	Ingest   IngestConfig   `yaml:"ingest" mapstructure:"ingest"`
	Runlog   RunlogConfig   `yaml:"runlog" mapstructure:"runlog"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// AirtableConfig holds record-store credentials and table layout.
type AirtableConfig struct {
	APIKey               string  `yaml:"api_key" mapstructure:"api_key"`
	BaseID               string  `yaml:"base_id" mapstructure:"base_id"`
	BaseURL              string  `yaml:"base_url" mapstructure:"base_url"`
	MasterTable          string  `yaml:"master_table" mapstructure:"master_table"`
	OfficeTable          string  `yaml:"office_table" mapstructure:"office_table"`
	ListingLocationField string  `yaml:"listing_location_field" mapstructure:"listing_location_field"`
	NoOfficeRecordID     string  `yaml:"no_office_record_id" mapstructure:"no_office_record_id"`
	RateLimit            float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// IngestConfig configures the CSV ingestion and upsert pipeline.
type IngestConfig struct {
	BatchSize    int    `yaml:"batch_size" mapstructure:"batch_size"`
	BatchPauseMS int    `yaml:"batch_pause_ms" mapstructure:"batch_pause_ms"`
	CSVEncoding  string `yaml:"csv_encoding" mapstructure:"csv_encoding"`
	FTPTimeout   int    `yaml:"ftp_timeout_secs" mapstructure:"ftp_timeout_secs"`
}

// RunlogConfig configures the ingest-run audit store.
type RunlogConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RECRUIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("airtable.base_url", "https://api.airtable.com/v0")
	v.SetDefault("airtable.master_table", "MASTER")
	v.SetDefault("airtable.office_table", "Office Locations")
	v.SetDefault("airtable.listing_location_field", "Listing Location")
	v.SetDefault("airtable.no_office_record_id", "recoHjWd6gEWmtgmH")
	v.SetDefault("airtable.rate_limit", 5.0)
	v.SetDefault("ingest.batch_size", 10)
	v.SetDefault("ingest.batch_pause_ms", 200)
	v.SetDefault("ingest.csv_encoding", "utf-8")
	v.SetDefault("ingest.ftp_timeout_secs", 30)
	v.SetDefault("runlog.driver", "sqlite")
	v.SetDefault("runlog.database_url", "recruit.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
