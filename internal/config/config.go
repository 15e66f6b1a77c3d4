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
	Dataset  DatasetConfig  `yaml:"dataset" mapstructure:"dataset"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Generate GenerateConfig `yaml:"generate" mapstructure:"generate"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DatasetConfig locates the input dataset.
type DatasetConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// OutputConfig locates the report bundle output.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// PipelineConfig configures the episode components.
type PipelineConfig struct {
	ProviderLimit    int      `yaml:"provider_limit" mapstructure:"provider_limit"`
	DefaultSpecialty []string `yaml:"default_specialty" mapstructure:"default_specialty"`
	TriageRulesPath  string   `yaml:"triage_rules_path" mapstructure:"triage_rules_path"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	Concurrency int  `yaml:"concurrency" mapstructure:"concurrency"`
	FailFast    bool `yaml:"fail_fast" mapstructure:"fail_fast"`
}

// StoreConfig configures the run-history backend.
type StoreConfig struct {
	Driver      string     `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string     `yaml:"database_url" mapstructure:"database_url"`
	Pool        PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// PoolConfig holds optional postgres pool sizing.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// GenerateConfig configures synthetic dataset generation.
type GenerateConfig struct {
	Seed         int64 `yaml:"seed" mapstructure:"seed"`
	Patients     int   `yaml:"patients" mapstructure:"patients"`
	Providers    int   `yaml:"providers" mapstructure:"providers"`
	MinVisits    int   `yaml:"min_visits" mapstructure:"min_visits"`
	MaxVisits    int   `yaml:"max_visits" mapstructure:"max_visits"`
	LookbackDays int   `yaml:"lookback_days" mapstructure:"lookback_days"`
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
	v.SetEnvPrefix("CARENAV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("dataset.dir", "synthetic_dataset")
	v.SetDefault("output.dir", "outputs")
	v.SetDefault("pipeline.provider_limit", 5)
	v.SetDefault("pipeline.default_specialty", []string{"Primary Care"})
	v.SetDefault("pipeline.triage_rules_path", "")
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("batch.fail_fast", true)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "carenav.db")
	v.SetDefault("generate.seed", 42)
	v.SetDefault("generate.patients", 25)
	v.SetDefault("generate.providers", 15)
	v.SetDefault("generate.min_visits", 1)
	v.SetDefault("generate.max_visits", 3)
	v.SetDefault("generate.lookback_days", 90)
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

// Validate checks the settings a command depends on. Mode is one of
// "run", "generate" or "history".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "run":
		if c.Dataset.Dir == "" {
			problems = append(problems, "dataset.dir is required")
		}
		if c.Output.Dir == "" {
			problems = append(problems, "output.dir is required")
		}
		if c.Pipeline.ProviderLimit <= 0 {
			problems = append(problems, "pipeline.provider_limit must be positive")
		}
		if len(c.Pipeline.DefaultSpecialty) == 0 {
			problems = append(problems, "pipeline.default_specialty must not be empty")
		}
		if c.Batch.Concurrency <= 0 {
			problems = append(problems, "batch.concurrency must be positive")
		}
		problems = append(problems, c.storeProblems()...)
	case "generate":
		if c.Generate.Patients <= 0 {
			problems = append(problems, "generate.patients must be positive")
		}
		if c.Generate.Providers <= 0 {
			problems = append(problems, "generate.providers must be positive")
		}
		if c.Generate.MinVisits <= 0 || c.Generate.MaxVisits < c.Generate.MinVisits {
			problems = append(problems, "generate.min_visits/max_visits must satisfy 0 < min <= max")
		}
		if c.Generate.LookbackDays <= 0 {
			problems = append(problems, "generate.lookback_days must be positive")
		}
	case "history":
		problems = append(problems, c.storeProblems()...)
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) storeProblems() []string {
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return []string{"store.driver must be sqlite or postgres"}
	}
	if c.Store.DatabaseURL == "" {
		return []string{"store.database_url is required"}
	}
	return nil
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
