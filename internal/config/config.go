package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	Adapter   AdapterConfig
	Endpoint  EndpointConfig
	Forwarder ForwarderConfig
	Fit       FitConfig
	Database  DatabaseConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
	// File enables rotated file output next to stderr when set.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type AdapterConfig struct {
	ModelDir     string
	RequireField bool
}

// EndpointConfig identifies the single remote inference endpoint.
type EndpointConfig struct {
	URL       string
	Name      string
	Timeout   time.Duration // zero means no client-side limit
	AuthToken string
}

type ForwarderConfig struct {
	RequiredField string // empty selects bare mode
	TextPrefix    string
}

type FitConfig struct {
	ModelDir       string
	TrainDir       string
	DataFile       string
	Recipe         string
	Trainer        string
	TrainerCommand string
	Seed           int64
	Epochs         int
	BatchSize      int
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the pgx connection string.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}

// flagKeys maps command-line flags onto configuration keys. Flags only take
// precedence when set explicitly.
var flagKeys = map[string]string{
	"model_dir":  "FIT_MODEL_DIR",
	"train":      "FIT_TRAIN_DIR",
	"data_file":  "FIT_DATA_FILE",
	"recipe":     "FIT_RECIPE",
	"trainer":    "FIT_TRAINER",
	"seed":       "FIT_SEED",
	"epochs":     "FIT_EPOCHS",
	"batch_size": "FIT_BATCH_SIZE",
	"port":       "SERVER_PORT",
}

// Load reads configuration from defaults, the environment and, when given, flags.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")
	v.SetDefault("LOGGER_FILE", "")
	v.SetDefault("LOGGER_MAX_SIZE_MB", 100)
	v.SetDefault("LOGGER_MAX_BACKUPS", 3)
	v.SetDefault("LOGGER_MAX_AGE_DAYS", 28)
	v.SetDefault("ADAPTER_MODEL_DIR", "/opt/ml/model")
	v.SetDefault("ADAPTER_REQUIRE_FIELD", false)
	v.SetDefault("ENDPOINT_URL", "")
	v.SetDefault("ENDPOINT_NAME", "")
	v.SetDefault("ENDPOINT_TIMEOUT", "0")
	v.SetDefault("ENDPOINT_AUTH_TOKEN", "")
	v.SetDefault("FORWARDER_REQUIRED_FIELD", "text")
	v.SetDefault("FORWARDER_TEXT_PREFIX", "")
	v.SetDefault("FIT_MODEL_DIR", "/opt/ml/model")
	v.SetDefault("FIT_TRAIN_DIR", "/opt/ml/input/data/train")
	v.SetDefault("FIT_DATA_FILE", "Reviews.csv")
	v.SetDefault("FIT_RECIPE", "classification")
	v.SetDefault("FIT_TRAINER", "builtin")
	v.SetDefault("FIT_TRAINER_COMMAND", "")
	v.SetDefault("FIT_SEED", 42)
	v.SetDefault("FIT_EPOCHS", 0)
	v.SetDefault("FIT_BATCH_SIZE", 0)
	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "model_serving")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")

	// Env; an empty FORWARDER_REQUIRED_FIELD is meaningful
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()
	// Hosting platform conventions
	_ = v.BindEnv("ADAPTER_MODEL_DIR", "ADAPTER_MODEL_DIR", "SM_MODEL_DIR")
	_ = v.BindEnv("FIT_MODEL_DIR", "FIT_MODEL_DIR", "SM_MODEL_DIR")
	_ = v.BindEnv("FIT_TRAIN_DIR", "FIT_TRAIN_DIR", "SM_CHANNEL_TRAIN")

	// Flags
	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	endpointTimeout, err := parseDuration(v.GetString("ENDPOINT_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("ENDPOINT_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("SERVER_HOST"),
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: durationOr(v.GetString("SERVER_SHUTDOWN_TIMEOUT"), 10*time.Second),
		},
		Logger: LoggerConfig{
			Level:      v.GetString("LOGGER_LEVEL"),
			Format:     v.GetString("LOGGER_FORMAT"),
			File:       v.GetString("LOGGER_FILE"),
			MaxSizeMB:  v.GetInt("LOGGER_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOGGER_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOGGER_MAX_AGE_DAYS"),
		},
		Adapter: AdapterConfig{
			ModelDir:     v.GetString("ADAPTER_MODEL_DIR"),
			RequireField: v.GetBool("ADAPTER_REQUIRE_FIELD"),
		},
		Endpoint: EndpointConfig{
			URL:       v.GetString("ENDPOINT_URL"),
			Name:      v.GetString("ENDPOINT_NAME"),
			Timeout:   endpointTimeout,
			AuthToken: v.GetString("ENDPOINT_AUTH_TOKEN"),
		},
		Forwarder: ForwarderConfig{
			RequiredField: strings.TrimSpace(v.GetString("FORWARDER_REQUIRED_FIELD")),
			TextPrefix:    v.GetString("FORWARDER_TEXT_PREFIX"),
		},
		Fit: FitConfig{
			ModelDir:       v.GetString("FIT_MODEL_DIR"),
			TrainDir:       v.GetString("FIT_TRAIN_DIR"),
			DataFile:       v.GetString("FIT_DATA_FILE"),
			Recipe:         v.GetString("FIT_RECIPE"),
			Trainer:        v.GetString("FIT_TRAINER"),
			TrainerCommand: v.GetString("FIT_TRAINER_COMMAND"),
			Seed:           v.GetInt64("FIT_SEED"),
			Epochs:         v.GetInt("FIT_EPOCHS"),
			BatchSize:      v.GetInt("FIT_BATCH_SIZE"),
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("DB_ENABLED"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: durationOr(v.GetString("DB_CONN_MAX_LIFETIME"), 30*time.Minute),
		},
	}

	return cfg, nil
}

// parseDuration accepts Go durations and bare seconds ("0", "30").
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	d, err := time.ParseDuration(s + "s")
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func durationOr(s string, fallback time.Duration) time.Duration {
	d, err := parseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
