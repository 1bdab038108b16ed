package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/cfb-analytics/internal/domain/epmodel"
	"github.com/riskibarqy/cfb-analytics/internal/platform/logging"
	"github.com/riskibarqy/cfb-analytics/internal/platform/resilience"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	PBPFormatCSV  = "csv"
	PBPFormatCFBD = "cfbd"
)

const (
	SinkCSV      = "csv"
	SinkPostgres = "postgres"
	SinkMemory   = "memory"
)

// Config stores runtime configuration for the season builder.
type Config struct {
	AppEnv         string `env:"APP_ENV" envDefault:"dev"`
	ServiceName    string `env:"SERVICE_NAME" envDefault:"cfb-analytics" validate:"required"`
	ServiceVersion string `env:"SERVICE_VERSION" envDefault:"dev"`
	LogLevelName   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string `env:"LOG_FORMAT" validate:"omitempty,oneof=json console"`

	RawDir           string        `env:"RAW_DIR" envDefault:"data/raw" validate:"required"`
	OutDir           string        `env:"OUT_DIR" envDefault:"data/processed" validate:"required"`
	RosterFile       string        `env:"ROSTER_FILE"`
	PBPFormat        string        `env:"PBP_FORMAT" envDefault:"csv" validate:"oneof=csv cfbd"`
	Sinks            []string      `env:"SINKS" envDefault:"csv" envSeparator:"," validate:"min=1,dive,oneof=csv postgres memory"`
	AggregateWorkers int           `env:"AGGREGATE_WORKERS" envDefault:"4" validate:"gte=1,lte=64"`
	RosterCacheTTL   time.Duration `env:"ROSTER_CACHE_TTL" envDefault:"0s" validate:"gte=0"`

	EPB0 float64 `env:"EP_B0" envDefault:"-0.6"`
	EPB1 float64 `env:"EP_B1" envDefault:"-0.7"`
	EPB2 float64 `env:"EP_B2" envDefault:"-0.9"`
	EPB3 float64 `env:"EP_B3" envDefault:"7.0"`

	DBURL                   string `env:"DB_URL"`
	DBDisablePreparedBinary bool   `env:"DB_DISABLE_PREPARED_BINARY" envDefault:"true"`

	RedisURL       string                          `env:"REDIS_URL"`
	PublishStream  string                          `env:"PUBLISH_STREAM" envDefault:"cfb.season.built"`
	PublishMaxLen  int64                           `env:"PUBLISH_MAX_LEN" envDefault:"1000" validate:"gte=0"`
	PublishCircuit resilience.CircuitBreakerConfig `envPrefix:"PUBLISH_CIRCUIT_"`

	CFBDAPIKey      string                          `env:"CFBD_API_KEY"`
	CFBDBaseURL     string                          `env:"CFBD_BASE_URL" envDefault:"https://api.collegefootballdata.com" validate:"url"`
	CFBDTimeout     time.Duration                   `env:"CFBD_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	CFBDMaxRetries  int                             `env:"CFBD_MAX_RETRIES" envDefault:"2" validate:"gte=0,lte=10"`
	CFBDWeeks       int                             `env:"CFBD_WEEKS" envDefault:"14" validate:"gte=1,lte=20"`
	CFBDConcurrency int                             `env:"CFBD_CONCURRENCY" envDefault:"4" validate:"gte=1,lte=32"`
	CFBDCircuit     resilience.CircuitBreakerConfig `envPrefix:"CFBD_CIRCUIT_"`

	UptraceEnabled bool   `env:"UPTRACE_ENABLED" envDefault:"false"`
	UptraceDSN     string `env:"UPTRACE_DSN"`
	OTLPHeaders    string `env:"OTEL_EXPORTER_OTLP_HEADERS"`

	PyroscopeEnabled           bool          `env:"PYROSCOPE_ENABLED" envDefault:"false"`
	PyroscopeServerAddress     string        `env:"PYROSCOPE_SERVER_ADDRESS"`
	PyroscopeAppName           string        `env:"PYROSCOPE_APP_NAME" envDefault:"cfb-analytics"`
	PyroscopeAuthToken         string        `env:"PYROSCOPE_AUTH_TOKEN"`
	PyroscopeBasicAuthUser     string        `env:"PYROSCOPE_BASIC_AUTH_USER"`
	PyroscopeBasicAuthPassword string        `env:"PYROSCOPE_BASIC_AUTH_PASSWORD"`
	PyroscopeUploadRate        time.Duration `env:"PYROSCOPE_UPLOAD_RATE" envDefault:"15s" validate:"gt=0"`

	LogLevel logging.Level `env:"-"`
}

func Load() (Config, error) {
	cfg := Config{
		PublishCircuit: resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 3, OpenTimeout: 30 * time.Second, HalfOpenMaxReq: 1},
		CFBDCircuit:    resilience.DefaultCircuitBreakerConfig(),
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	appEnv, err := parseAppEnv(cfg.AppEnv)
	if err != nil {
		return Config{}, err
	}
	cfg.AppEnv = appEnv

	cfg.LogLevel, err = logging.ParseLevel(cfg.LogLevelName)
	if err != nil {
		return Config{}, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	if cfg.LogFormat == "" {
		cfg.LogFormat = logging.FormatJSON
		if cfg.AppEnv == EnvDev {
			cfg.LogFormat = logging.FormatConsole
		}
	}

	cfg.PBPFormat = strings.ToLower(strings.TrimSpace(cfg.PBPFormat))
	cfg.Sinks = normalizeList(cfg.Sinks)
	cfg.UptraceDSN = strings.TrimSpace(cfg.UptraceDSN)
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(cfg.OTLPHeaders)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tag rules and cross-field requirements.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.UptraceEnabled && c.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if c.PyroscopeEnabled && strings.TrimSpace(c.PyroscopeServerAddress) == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	if c.HasSink(SinkPostgres) && strings.TrimSpace(c.DBURL) == "" {
		return fmt.Errorf("DB_URL is required when SINKS includes %s", SinkPostgres)
	}
	if err := c.EPModel().Validate(); err != nil {
		return fmt.Errorf("invalid EP_B* coefficients: %w", err)
	}
	return nil
}

func (c Config) HasSink(name string) bool {
	return slices.Contains(c.Sinks, name)
}

// EPModel returns the linear stub configured by EP_B0..EP_B3.
func (c Config) EPModel() epmodel.LinearStub {
	return epmodel.LinearStub{B0: c.EPB0, B1: c.EPB1, B2: c.EPB2, B3: c.EPB3}
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" || slices.Contains(out, item) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
