// Package config loads command settings from defaults, an optional YAML
// file, NEWTON_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/willbeason/newton-fractal/pkg/output"
	"github.com/willbeason/newton-fractal/pkg/render"
)

// ErrInvalidConfig is wrapped by every validation error Load returns.
var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix prefixes environment variables, as in NEWTON_MAX_ITER.
const EnvPrefix = "NEWTON"

type Config struct {
	Width   int `mapstructure:"width"`
	Height  int `mapstructure:"height"`
	N       int `mapstructure:"n"`
	MaxIter int `mapstructure:"max_iter"`

	// Size, when positive, overrides both Width and Height.
	Size int `mapstructure:"size"`

	Palette string `mapstructure:"palette"`
	Workers int    `mapstructure:"workers"`

	Out      string `mapstructure:"out"`
	Format   string `mapstructure:"format"`
	Manifest string `mapstructure:"manifest"`

	Addr    string `mapstructure:"addr"`
	MaxSide int    `mapstructure:"max_side"`

	// MaxRenders is how many largest-size renders the server runs at once.
	// Smaller renders share the same pixel budget.
	MaxRenders int `mapstructure:"max_renders"`

	LogLevel string `mapstructure:"log_level"`
}

// Params is the render snapshot c describes.
func (c Config) Params() render.Params {
	return render.Params{
		Width:   c.Width,
		Height:  c.Height,
		N:       c.N,
		MaxIter: c.MaxIter,
	}
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("width", 1024)
	v.SetDefault("height", 1024)
	v.SetDefault("size", 0)
	v.SetDefault("n", 5)
	v.SetDefault("max_iter", 60)
	v.SetDefault("palette", render.DefaultPalette)
	v.SetDefault("workers", 0)
	v.SetDefault("out", "newton.png")
	v.SetDefault("format", "")
	v.SetDefault("manifest", "")
	v.SetDefault("addr", ":8080")
	v.SetDefault("max_side", 4096)
	v.SetDefault("max_renders", 2)
	v.SetDefault("log_level", "info")
}

// Load reads configFile if it is not empty, then resolves and validates the
// settings known to v.
func Load(v *viper.Viper, configFile string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %q: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.Size > 0 {
		cfg.Width = cfg.Size
		cfg.Height = cfg.Size
	}

	if cfg.Format == "" {
		cfg.Format = output.DefaultFormat
		if f, ok := output.FormatFromPath(cfg.Out); ok {
			cfg.Format = f
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := render.LookupPalette(c.Palette); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := output.ValidateFormat(c.Format); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.MaxSide <= 0 {
		return fmt.Errorf("%w: max_side must be positive, got %d", ErrInvalidConfig, c.MaxSide)
	}
	if c.MaxRenders <= 0 {
		return fmt.Errorf("%w: max_renders must be positive, got %d", ErrInvalidConfig, c.MaxRenders)
	}

	return nil
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"width":       "width",
	"height":      "height",
	"size":        "size",
	"n":           "n",
	"max-iter":    "max_iter",
	"palette":     "palette",
	"workers":     "workers",
	"out":         "out",
	"format":      "format",
	"manifest":    "manifest",
	"addr":        "addr",
	"max-side":    "max_side",
	"max-renders": "max_renders",
	"log-level":   "log_level",
}

// AddRenderFlags registers the flags every command shares.
func AddRenderFlags(flags *pflag.FlagSet) {
	flags.Int("width", 1024, "image width in pixels")
	flags.Int("height", 1024, "image height in pixels")
	flags.Int("size", 0, "sets both width and height when positive")
	flags.Int("n", 5, "degree of z^n - 1")
	flags.Int("max-iter", 60, "maximum Newton iterations per pixel")
	flags.String("palette", render.DefaultPalette, fmt.Sprintf("coloring, one of %v", render.PaletteNames()))
	flags.Int("workers", 0, "render goroutines, 0 for one per CPU")
	flags.String("log-level", "info", "log level")
	flags.String("config", "", "YAML configuration file")
}

// AddOutputFlags registers the flags of commands writing image files.
func AddOutputFlags(flags *pflag.FlagSet) {
	flags.StringP("out", "o", "newton.png", "output image path")
	flags.String("format", "", fmt.Sprintf("image format, one of %v; guessed from --out if empty", output.Formats()))
	flags.String("manifest", "", "also write a YAML manifest to this path")
}

// AddServerFlags registers the flags of the render server.
func AddServerFlags(flags *pflag.FlagSet) {
	flags.String("addr", ":8080", "listen address")
	flags.Int("max-side", 4096, "largest width or height a client may request")
	flags.Int("max-renders", 2, "concurrent renders of the largest size; smaller ones share the pixel budget")
}

// Bind makes every known flag present in flags override its configuration
// key in v.
func Bind(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}

	return nil
}
