// Package config loads service and CLI configuration from defaults, an
// optional YAML file, a .env file and the environment, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every setting's environment variable.
const EnvPrefix = "MEMECOIN"

// Config holds all settings.
type Config struct {
	HTTPAddr        string        `mapstructure:"http_addr" validate:"required"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`

	UseMemory     bool   `mapstructure:"use_memory"`
	PostgresDSN   string `mapstructure:"postgres_dsn" validate:"required_unless=UseMemory true"`
	ClickhouseDSN string `mapstructure:"clickhouse_dsn" validate:"required_unless=UseMemory true"`

	Network                string `mapstructure:"network" validate:"required"`
	AlchemyAPIKey          string `mapstructure:"alchemy_api_key"`
	DeployerKey            string `mapstructure:"deployer_key" validate:"omitempty,min=64,max=66"`
	WalletConnectProjectID string `mapstructure:"wallet_connect_project_id"`

	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=json console"`

	Recorder RecorderConfig `mapstructure:"recorder"`
}

// RecorderConfig tunes the asynchronous validation event writer.
type RecorderConfig struct {
	QueueSize     int           `mapstructure:"queue_size" validate:"min=1"`
	BatchSize     int           `mapstructure:"batch_size" validate:"min=1"`
	FlushInterval time.Duration `mapstructure:"flush_interval" validate:"gt=0"`
}

// LoadOptions locates optional configuration files.
type LoadOptions struct {
	ConfigFile string // YAML; empty skips
	EnvFile    string // dotenv; a missing file is ignored

	// Override runs after loading and before validation. Binaries use it
	// to apply command-line flags.
	Override func(*Config)
}

// Original variable names accepted alongside the prefixed ones.
var legacyEnv = map[string]string{
	"postgres_dsn":              "POSTGRES_DSN",
	"clickhouse_dsn":            "CLICKHOUSE_DSN",
	"alchemy_api_key":           "ALCHEMY_API_KEY",
	"deployer_key":              "AMOY_PRIVATE_KEY",
	"wallet_connect_project_id": "WALLET_CONNECT_PROJECT_ID",
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		HTTPAddr:        ":8080",
		CORSOrigins:     []string{"http://localhost:3000"},
		ShutdownTimeout: 30 * time.Second,
		UseMemory:       true,
		Network:         "amoy",
		LogLevel:        "info",
		LogFormat:       "json",
		Recorder: RecorderConfig{
			QueueSize:     1024,
			BatchSize:     100,
			FlushInterval: 2 * time.Second,
		},
	}
}

// Load reads the configuration and validates it.
func Load(opts LoadOptions) (*Config, error) {
	if opts.EnvFile != "" {
		// godotenv never overrides variables already set.
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	setDefaults(v, Default())

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key), legacy); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if opts.Override != nil {
		opts.Override(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RedactedDSN hides the password in a DSN for logging.
func RedactedDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	userinfo := dsn[scheme+3 : at]
	if colon := strings.Index(userinfo, ":"); colon >= 0 {
		userinfo = userinfo[:colon] + ":***"
	}
	return dsn[:scheme+3] + userinfo + dsn[at:]
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("http_addr", d.HTTPAddr)
	v.SetDefault("cors_origins", d.CORSOrigins)
	v.SetDefault("shutdown_timeout", d.ShutdownTimeout)
	v.SetDefault("use_memory", d.UseMemory)
	v.SetDefault("postgres_dsn", d.PostgresDSN)
	v.SetDefault("clickhouse_dsn", d.ClickhouseDSN)
	v.SetDefault("network", d.Network)
	v.SetDefault("alchemy_api_key", d.AlchemyAPIKey)
	v.SetDefault("deployer_key", d.DeployerKey)
	v.SetDefault("wallet_connect_project_id", d.WalletConnectProjectID)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("recorder.queue_size", d.Recorder.QueueSize)
	v.SetDefault("recorder.batch_size", d.Recorder.BatchSize)
	v.SetDefault("recorder.flush_interval", d.Recorder.FlushInterval)
}
