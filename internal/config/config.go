// Package config loads run configuration for the dataset generator from
// YAML files with sane defaults for every key.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config is the full run configuration.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Canvas   CanvasConfig   `mapstructure:"canvas"`
	Generate GenerateConfig `mapstructure:"generate"`
}

// DataConfig locates the instance catalog and the output tree.
type DataConfig struct {
	// Root holds one subdirectory per split, each containing label
	// directories with numbered instance images.
	Root string `mapstructure:"root"`

	// OutDir receives the generated splits.
	OutDir string `mapstructure:"out_dir"`

	// Splits lists the split names to generate, in order.
	Splits []string `mapstructure:"splits"`

	// InstanceExt is the instance image file extension, with leading dot.
	InstanceExt string `mapstructure:"instance_ext"`
}

// CanvasConfig fixes the generated scene dimensions.
type CanvasConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// GenerateConfig tunes scene generation.
type GenerateConfig struct {
	// Scenes is the number of scenes per split.
	Scenes int `mapstructure:"scenes"`

	// Seed is the base random seed. Zero derives a seed from the clock at
	// startup, which makes every run unique.
	Seed int64 `mapstructure:"seed"`

	// Workers bounds parallel scene rendering. Zero uses one per CPU.
	Workers int `mapstructure:"workers"`

	// MaxAttempts caps per-scene resampling.
	MaxAttempts int `mapstructure:"max_attempts"`

	// PaletteFrom optionally names an image to derive the backdrop palette
	// from instead of the built-in colors.
	PaletteFrom string `mapstructure:"palette_from"`
}

// Load reads the YAML file at path over the defaults. An empty path skips
// the file and returns the defaults unchanged.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when no file and no overrides are
// given.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate rejects configurations the generator cannot run with.
func (c *Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("config: canvas %dx%d", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Generate.Scenes < 0 {
		return fmt.Errorf("config: negative scene count %d", c.Generate.Scenes)
	}
	if len(c.Data.Splits) == 0 {
		return errors.New("config: no splits configured")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.root", "./data")
	v.SetDefault("data.out_dir", "./generated")
	v.SetDefault("data.splits", []string{"training", "test"})
	v.SetDefault("data.instance_ext", ".jpg")

	v.SetDefault("canvas.width", 800)
	v.SetDefault("canvas.height", 600)

	v.SetDefault("generate.scenes", 1000)
	v.SetDefault("generate.seed", 0)
	v.SetDefault("generate.workers", 0)
	v.SetDefault("generate.max_attempts", 100)
	v.SetDefault("generate.palette_from", "")
}
