package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	List      ListConfig
	Breaker   BreakerConfig
	Log       LogConfig
	Tracing   TracingConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Version     string
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	TLS             TLSConfig
}

// TLSConfig enables HTTPS when CertFile and KeyFile are set. A ClientCAFile
// additionally requires clients to present a certificate signed by that CA.
type TLSConfig struct {
	CertFile     string
	KeyFile      string
	ClientCAFile string
}

func (t TLSConfig) Enabled() bool {
	return t.CertFile != "" && t.KeyFile != ""
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	// Driver selects the surgery store: "mongo" or "memory".
	Driver         string
	URI            string
	Name           string
	Collection     string
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
	MaxPoolSize    uint64
	MinPoolSize    uint64
}

type ListConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

type BreakerConfig struct {
	Enabled          bool
	FailureThreshold uint32
	HalfOpenRequests uint32
	Interval         time.Duration
	OpenTimeout      time.Duration
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	EndpointURL string
	SampleRate  float64
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
	// Idle per-client limiters are evicted after this long.
	ClientTTL time.Duration
}

var defaults = map[string]any{
	"APP_NAME":    "surgery-scheduler",
	"APP_ENV":     "development",
	"APP_VERSION": "1.0.0",

	"SERVER_HOST":             "0.0.0.0",
	"SERVER_PORT":             8000,
	"SERVER_READ_TIMEOUT":     15 * time.Second,
	"SERVER_WRITE_TIMEOUT":    15 * time.Second,
	"SERVER_IDLE_TIMEOUT":     60 * time.Second,
	"SERVER_SHUTDOWN_TIMEOUT": 30 * time.Second,
	"SERVER_TLS_CERT_FILE":    "",
	"SERVER_TLS_KEY_FILE":     "",
	"SERVER_TLS_CLIENT_CA":    "",

	"STORE_DRIVER":       DriverMongo,
	"MONGODB_URI":        "",
	"DB_NAME":            "",
	"DB_COLLECTION":      "surgeries",
	"DB_CONNECT_TIMEOUT": 10 * time.Second,
	"DB_QUERY_TIMEOUT":   5 * time.Second,
	"DB_MAX_POOL_SIZE":   100,
	"DB_MIN_POOL_SIZE":   0,

	"LIST_DEFAULT_PAGE_SIZE": 100,
	"LIST_MAX_PAGE_SIZE":     1000,

	"BREAKER_ENABLED":            true,
	"BREAKER_FAILURE_THRESHOLD":  5,
	"BREAKER_HALF_OPEN_REQUESTS": 1,
	"BREAKER_INTERVAL":           60 * time.Second,
	"BREAKER_OPEN_TIMEOUT":       30 * time.Second,

	"LOG_LEVEL":  "info",
	"LOG_FORMAT": "json",
	"LOG_OUTPUT": "stdout",

	"TRACING_ENABLED":      false,
	"TRACING_SERVICE_NAME": "surgery-scheduler",
	"TRACING_ENDPOINT":     "http://otel-collector:4318/v1/traces",
	"TRACING_SAMPLE_RATE":  0.1,

	"RATE_LIMIT_ENABLED":    true,
	"RATE_LIMIT_RPS":        50,
	"RATE_LIMIT_BURST":      100,
	"RATE_LIMIT_CLIENT_TTL": 10 * time.Minute,
}

// Load reads configuration from the environment, falling back to envFile
// (dotenv format) for keys the environment does not set. A missing envFile is
// not an error.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading %s: %w", envFile, err)
			}
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name:        v.GetString("APP_NAME"),
			Environment: v.GetString("APP_ENV"),
			Version:     v.GetString("APP_VERSION"),
		},
		Server: ServerConfig{
			Host:            v.GetString("SERVER_HOST"),
			Port:            v.GetInt("SERVER_PORT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:     v.GetDuration("SERVER_IDLE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
			TLS: TLSConfig{
				CertFile:     v.GetString("SERVER_TLS_CERT_FILE"),
				KeyFile:      v.GetString("SERVER_TLS_KEY_FILE"),
				ClientCAFile: v.GetString("SERVER_TLS_CLIENT_CA"),
			},
		},
		Database: DatabaseConfig{
			Driver:         strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
			URI:            v.GetString("MONGODB_URI"),
			Name:           v.GetString("DB_NAME"),
			Collection:     v.GetString("DB_COLLECTION"),
			ConnectTimeout: v.GetDuration("DB_CONNECT_TIMEOUT"),
			QueryTimeout:   v.GetDuration("DB_QUERY_TIMEOUT"),
			MaxPoolSize:    v.GetUint64("DB_MAX_POOL_SIZE"),
			MinPoolSize:    v.GetUint64("DB_MIN_POOL_SIZE"),
		},
		List: ListConfig{
			DefaultPageSize: v.GetInt("LIST_DEFAULT_PAGE_SIZE"),
			MaxPageSize:     v.GetInt("LIST_MAX_PAGE_SIZE"),
		},
		Breaker: BreakerConfig{
			Enabled:          v.GetBool("BREAKER_ENABLED"),
			FailureThreshold: v.GetUint32("BREAKER_FAILURE_THRESHOLD"),
			HalfOpenRequests: v.GetUint32("BREAKER_HALF_OPEN_REQUESTS"),
			Interval:         v.GetDuration("BREAKER_INTERVAL"),
			OpenTimeout:      v.GetDuration("BREAKER_OPEN_TIMEOUT"),
		},
		Log: LogConfig{
			Level:      v.GetString("LOG_LEVEL"),
			Format:     v.GetString("LOG_FORMAT"),
			OutputPath: v.GetString("LOG_OUTPUT"),
		},
		Tracing: TracingConfig{
			Enabled:     v.GetBool("TRACING_ENABLED"),
			ServiceName: v.GetString("TRACING_SERVICE_NAME"),
			EndpointURL: v.GetString("TRACING_ENDPOINT"),
			SampleRate:  v.GetFloat64("TRACING_SAMPLE_RATE"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           v.GetBool("RATE_LIMIT_ENABLED"),
			RequestsPerSecond: v.GetFloat64("RATE_LIMIT_RPS"),
			BurstSize:         v.GetInt("RATE_LIMIT_BURST"),
			ClientTTL:         v.GetDuration("RATE_LIMIT_CLIENT_TTL"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	var errs []string

	switch cfg.Database.Driver {
	case DriverMongo:
		if cfg.Database.URI == "" {
			errs = append(errs, "MONGODB_URI is required")
		}
		if cfg.Database.Name == "" {
			errs = append(errs, "DB_NAME is required")
		}
	case DriverMemory:
		if cfg.App.Environment == "production" {
			errs = append(errs, "STORE_DRIVER=memory is not allowed in production")
		}
	default:
		errs = append(errs, fmt.Sprintf("STORE_DRIVER %q is not supported", cfg.Database.Driver))
	}

	if cfg.Database.Collection == "" {
		errs = append(errs, "DB_COLLECTION must not be empty")
	}
	if cfg.Database.QueryTimeout <= 0 {
		errs = append(errs, "DB_QUERY_TIMEOUT must be positive")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "SERVER_PORT must be between 1 and 65535")
	}
	if tc := cfg.Server.TLS; (tc.CertFile == "") != (tc.KeyFile == "") {
		errs = append(errs, "SERVER_TLS_CERT_FILE and SERVER_TLS_KEY_FILE must be set together")
	}
	if tc := cfg.Server.TLS; tc.ClientCAFile != "" && !tc.Enabled() {
		errs = append(errs, "SERVER_TLS_CLIENT_CA requires SERVER_TLS_CERT_FILE and SERVER_TLS_KEY_FILE")
	}

	if cfg.List.DefaultPageSize <= 0 {
		errs = append(errs, "LIST_DEFAULT_PAGE_SIZE must be positive")
	}
	if cfg.List.MaxPageSize < cfg.List.DefaultPageSize {
		errs = append(errs, "LIST_MAX_PAGE_SIZE must be >= LIST_DEFAULT_PAGE_SIZE")
	}

	if cfg.Breaker.Enabled && cfg.Breaker.FailureThreshold == 0 {
		errs = append(errs, "BREAKER_FAILURE_THRESHOLD must be positive")
	}
	if cfg.RateLimit.Enabled && cfg.RateLimit.RequestsPerSecond <= 0 {
		errs = append(errs, "RATE_LIMIT_RPS must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
