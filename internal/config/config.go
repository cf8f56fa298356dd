// Package config loads runtime settings from defaults, an optional
// config.yaml, an optional .env file and RAMEN_MCP_* environment variables,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override, e.g.
// RAMEN_MCP_OCR_ENGINE for ocr.engine.
const EnvPrefix = "RAMEN_MCP"

// ConfigPathEnvVar names an explicit config file.
const ConfigPathEnvVar = "RAMEN_MCP_CONFIG"

// Config is the full runtime configuration.
type Config struct {
	Log            LogConfig            `mapstructure:"log"`
	OCR            OCRConfig            `mapstructure:"ocr"`
	Overpass       OverpassConfig       `mapstructure:"overpass"`
	GPS            GPSConfig            `mapstructure:"gps"`
	Bowl           BowlConfig           `mapstructure:"bowl"`
	Crop           CropConfig           `mapstructure:"crop"`
	ReverseGeocode ReverseGeocodeConfig `mapstructure:"reverse_geocode"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type OCRConfig struct {
	Engine            string   `mapstructure:"engine"`
	Languages         []string `mapstructure:"languages"`
	TessdataPrefix    string   `mapstructure:"tessdata_prefix"`
	VisionCredentials string   `mapstructure:"vision_credentials"`
}

type OverpassConfig struct {
	URL          string        `mapstructure:"url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
	Cuisine      string        `mapstructure:"cuisine"`
	UserAgent    string        `mapstructure:"user_agent"`
}

type GPSConfig struct {
	ToolTimeout   time.Duration `mapstructure:"tool_timeout"`
	PlatformTools bool          `mapstructure:"platform_tools"`
}

type BowlConfig struct {
	Backend string `mapstructure:"backend"`
	MaxSide int    `mapstructure:"max_side"`
}

type CropConfig struct {
	Mode        string `mapstructure:"mode"`
	FillColor   string `mapstructure:"fill_color"`
	JPEGQuality int    `mapstructure:"jpeg_quality"`
}

type ReverseGeocodeConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// LoadOptions overrides file locations. Empty fields use the defaults:
// ".env" in the working directory and config.yaml in "." or the path in
// RAMEN_MCP_CONFIG.
type LoadOptions struct {
	EnvFile    string
	ConfigFile string
}

// Load reads the configuration with default locations.
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadWithOptions reads the configuration. A missing .env or config file
// is not an error; a malformed one is.
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = os.Getenv(ConfigPathEnvVar)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configFile == "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.OCR.Languages = splitList(cfg.OCR.Languages)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")

	v.SetDefault("ocr.engine", "tesseract")
	v.SetDefault("ocr.languages", []string{"jpn", "eng"})
	v.SetDefault("ocr.tessdata_prefix", "")
	v.SetDefault("ocr.vision_credentials", "")

	v.SetDefault("overpass.url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.timeout", 20*time.Second)
	v.SetDefault("overpass.query_timeout", 15*time.Second)
	v.SetDefault("overpass.cuisine", "")
	v.SetDefault("overpass.user_agent", "ramen-tools-mcp")

	v.SetDefault("gps.tool_timeout", 10*time.Second)
	v.SetDefault("gps.platform_tools", true)

	v.SetDefault("bowl.backend", "auto")
	v.SetDefault("bowl.max_side", 320)

	v.SetDefault("crop.mode", "detect")
	v.SetDefault("crop.fill_color", "#ffffff")
	v.SetDefault("crop.jpeg_quality", 95)

	v.SetDefault("reverse_geocode.enabled", false)
	v.SetDefault("reverse_geocode.url", "https://nominatim.openstreetmap.org")
}

// splitList accepts both a YAML list and a single comma or plus separated
// value from the environment ("jpn,eng" or "jpn+eng").
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '+' || r == ' ' }) {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Crop.Mode {
	case "detect", "center":
	default:
		return fmt.Errorf("invalid crop.mode %q: want detect or center", c.Crop.Mode)
	}
	if c.Crop.JPEGQuality < 1 || c.Crop.JPEGQuality > 100 {
		return fmt.Errorf("invalid crop.jpeg_quality %d: want 1..100", c.Crop.JPEGQuality)
	}
	if c.Overpass.Timeout <= 0 || c.Overpass.QueryTimeout <= 0 || c.GPS.ToolTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	return nil
}

// SlogLevel maps log.level to a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
	}
	return level, nil
}
