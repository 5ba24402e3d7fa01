package config

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultEndpoint is the catalog's XML-RPC entry point. Login responses may
// redirect later calls elsewhere via Content-Location.
const DefaultEndpoint = "https://api.opensubtitles.org/xml-rpc"

// DefaultUserAgent identifies this client to the catalog.
const DefaultUserAgent = "TemporaryUserAgent"

type Config struct {
	Endpoint      string `mapstructure:"endpoint"`
	UserAgent     string `mapstructure:"user_agent"`
	ClientTimeout string `mapstructure:"client_timeout"` // Go duration string like "30s", "1h", etc.
	Language      string `mapstructure:"language"`       // default subtitle language
	LogLevel      string `mapstructure:"log_level"`
	Cache         struct {
		Size int    `mapstructure:"size"` // Maximum number of entries in the fingerprint cache
		TTL  string `mapstructure:"ttl"`  // Go duration string like "1h", "24h", etc.
	} `mapstructure:"cache"`
}

var (
	loggerOnce sync.Once
	logger     zerolog.Logger
)

// Load reads configuration from an optional config file, SUBDL_* environment
// variables and defaults. An explicit path overrides the search locations.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvPrefix("SUBDL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("endpoint", DefaultEndpoint)
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("client_timeout", "30s")
	v.SetDefault("language", "eng")
	v.SetDefault("log_level", "info")
	v.SetDefault("cache.size", 128)
	v.SetDefault("cache.ttl", "1h")

	// Read config file; a missing file in the search path is fine.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	return &config, nil
}

// SetLogLevel applies the configured log level to the global logger.
func SetLogLevel(level string) {
	l := GetLogger()
	parsed := zerolog.InfoLevel // default
	if level != "" {
		if parsedLevel, err := zerolog.ParseLevel(level); err == nil {
			parsed = parsedLevel
		} else {
			l.Warn().Str("invalid_level", level).Msg("Invalid log level, using default 'info'")
		}
	}
	zerolog.SetGlobalLevel(parsed)
	logger = logger.Level(parsed)
}

// GetLogger returns the process-wide logger. Output goes to stderr so
// reports on stdout stay machine-readable.
func GetLogger() zerolog.Logger {
	loggerOnce.Do(func() {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:     os.Stderr,
			NoColor: false,
		}).With().Timestamp().Logger()
	})
	return logger
}
