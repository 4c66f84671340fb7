package config

import (
	"flag"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type Config struct {
	Address        string  `env:"RUN_ADDRESS"        envDefault:"localhost:8080"           validate:"required"`
	CatalogPath    string  `env:"CATALOG_PATH"       envDefault:""`
	Redis          string  `env:"REDIS"              envDefault:""`
	ValidateLimit  string  `env:"VALIDATE_LIMIT"     envDefault:"10 per minute"`
	GenerateLimit  string  `env:"GENERATE_LIMIT"     envDefault:"5 per minute"`
	DefaultLimits  string  `env:"DEFAULT_LIMITS"     envDefault:"200 per day, 50 per hour"`
	MaxCount       int     `env:"MAX_COUNT"          envDefault:"10"                       validate:"gte=1"`
	DefaultLength  int     `env:"DEFAULT_LENGTH"     envDefault:"16"                       validate:"gte=1,lte=64"`
	Jaeger         string  `env:"JAEGER"             envDefault:""`
	SampleRatio    float64 `env:"TRACE_SAMPLE_RATIO" envDefault:"1"                        validate:"gte=0,lte=1"`
	LogLevel       string  `env:"LOG_LEVEL"          envDefault:"info"                     validate:"oneof=trace debug info warn error"`
	LogFormat      string  `env:"LOG_FORMAT"         envDefault:"console"                  validate:"oneof=console json"`
	Seed           uint64  `env:"SEED"               envDefault:"0"`
	TrustedProxies string  `env:"TRUSTED_PROXIES"    envDefault:""`
}

// Builder defines the builder for the Config struct.
type Builder struct {
	cfg    *Config
	logger *zerolog.Logger
	flags  *flag.FlagSet
	args   []string
}

// NewConfigBuilder initializes the ConfigBuilder with default values.
func NewConfigBuilder(log *zerolog.Logger) *Builder {
	return &Builder{
		cfg: &Config{
			Address:        "",
			CatalogPath:    "",
			Redis:          "",
			ValidateLimit:  "",
			GenerateLimit:  "",
			DefaultLimits:  "",
			MaxCount:       0,
			DefaultLength:  0,
			Jaeger:         "",
			SampleRatio:    0,
			LogLevel:       "",
			LogFormat:      "",
			Seed:           0,
			TrustedProxies: "",
		},
		logger: log,
		flags:  flag.CommandLine,
		args:   os.Args[1:],
	}
}

// WithFlagSet parses args with fs instead of the process command line.
func (b *Builder) WithFlagSet(fs *flag.FlagSet, args []string) *Builder {
	b.flags = fs
	b.args = args

	return b
}

// FromEnv parses environment variables into the ConfigBuilder.
func (b *Builder) FromEnv() *Builder {
	if err := env.Parse(b.cfg); err != nil {
		b.logger.Error().Err(err).Msg("failed to parse environment variables")
	}

	return b
}

// FromFlags parses command line flags into the ConfigBuilder.
func (b *Builder) FromFlags() *Builder {
	b.flags.StringVar(&b.cfg.Address, "a", b.cfg.Address, "address and port to run server")
	b.flags.StringVar(&b.cfg.CatalogPath, "catalog", b.cfg.CatalogPath, "path to a YAML category catalog")
	b.flags.StringVar(&b.cfg.Redis, "redis", b.cfg.Redis, "Redis address for shared rate limits")
	b.flags.StringVar(&b.cfg.ValidateLimit, "validate-limit", b.cfg.ValidateLimit, "rate limit of /api/validate")
	b.flags.StringVar(&b.cfg.GenerateLimit, "generate-limit", b.cfg.GenerateLimit, "rate limit of /api/generate")
	b.flags.StringVar(&b.cfg.DefaultLimits, "default-limits", b.cfg.DefaultLimits, "rate limits of other routes")
	b.flags.IntVar(&b.cfg.MaxCount, "max-count", b.cfg.MaxCount, "maximum numbers per generate request")
	b.flags.IntVar(&b.cfg.DefaultLength, "length", b.cfg.DefaultLength, "default generated length")
	b.flags.StringVar(&b.cfg.Jaeger, "jaeger", b.cfg.Jaeger, "OTLP HTTP endpoint")
	b.flags.Float64Var(&b.cfg.SampleRatio, "trace-sample-ratio", b.cfg.SampleRatio, "fraction of traces to sample")
	b.flags.StringVar(&b.cfg.LogLevel, "log-level", b.cfg.LogLevel, "log level")
	b.flags.StringVar(&b.cfg.LogFormat, "log-format", b.cfg.LogFormat, "console or json")
	b.flags.Uint64Var(&b.cfg.Seed, "seed", b.cfg.Seed, "random seed, 0 for a random one")
	b.flags.StringVar(&b.cfg.TrustedProxies, "trusted-proxies", b.cfg.TrustedProxies,
		"proxies allowed to set X-Forwarded-For")

	if err := b.flags.Parse(b.args); err != nil {
		b.logger.Error().Err(err).Msg("failed to parse flags")
	}

	return b
}

// Build validates and returns the final configuration.
func (b *Builder) Build() (*Config, error) {
	if err := validator.New().Struct(b.cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return b.cfg, nil
}
