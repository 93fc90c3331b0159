package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/driftfield/internal/field"
)

const (
	DefaultEffect = "drift"
	DefaultTheme  = "dark"
	DefaultWidth  = 800
	DefaultHeight = 600
	DefaultFPS    = 60
	DefaultTicks  = 600
	DefaultFrames = 90
)

type Config struct {
	Effect      string        `yaml:"effect"`
	Theme       string        `yaml:"theme"`
	Width       int           `yaml:"width"`
	Height      int           `yaml:"height"`
	Count       int           `yaml:"count"`
	Seed        int64         `yaml:"seed"`
	FPS         int           `yaml:"fps"`
	Sound       bool          `yaml:"sound"`
	Connections string        `yaml:"connections"`
	Field       FieldConfig   `yaml:"field"`
	Record      RecordConfig  `yaml:"record"`
	Server      ServerConfig  `yaml:"server"`
	Contact     ContactConfig `yaml:"contact"`
}

// FieldConfig tunes the simulators. Zero values keep the built-in defaults.
type FieldConfig struct {
	LinkDistance float64 `yaml:"link_distance"`
	MaxDepth     float64 `yaml:"max_depth"`
	FocalLength  float64 `yaml:"focal_length"`
	TrailFade    float64 `yaml:"trail_fade"`
}

type RecordConfig struct {
	Frames int `yaml:"frames"`
	Ticks  int `yaml:"ticks"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type ContactConfig struct {
	RelayURL string `yaml:"relay_url"`
	DB       string `yaml:"db"`
}

func DefaultConfig() *Config {
	return &Config{
		Effect:      DefaultEffect,
		Theme:       DefaultTheme,
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		FPS:         DefaultFPS,
		Connections: "auto",
		Field: FieldConfig{
			LinkDistance: field.DefaultLinkDistance,
			MaxDepth:     field.DefaultMaxDepth,
			FocalLength:  field.DefaultFocalLength,
			TrailFade:    field.DefaultTrailFade,
		},
		Record: RecordConfig{
			Frames: DefaultFrames,
			Ticks:  DefaultTicks,
		},
		Server: ServerConfig{Addr: ":8080"},
		Contact: ContactConfig{
			RelayURL: "https://formspree.io/f/xeokzrow",
			DB:       "contact.db",
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Options converts the config into simulator options. A zero Count is
// replaced by defaultCount, the effect's own density.
func (c *Config) Options(defaultCount int) (field.Options, error) {
	theme, err := field.ParseTheme(c.Theme)
	if err != nil {
		return field.Options{}, err
	}
	mode, err := field.ParseConnectionMode(c.Connections)
	if err != nil {
		return field.Options{}, err
	}
	count := c.Count
	if count == 0 {
		count = defaultCount
	}
	opts := field.Options{
		Width:        float64(c.Width),
		Height:       float64(c.Height),
		Count:        count,
		Theme:        theme,
		Seed:         c.Seed,
		Connections:  mode,
		LinkDistance: c.Field.LinkDistance,
		MaxDepth:     c.Field.MaxDepth,
		FocalLength:  c.Field.FocalLength,
		TrailFade:    c.Field.TrailFade,
	}
	if err := opts.Validate(); err != nil {
		return field.Options{}, fmt.Errorf("config: %w", err)
	}
	return opts, nil
}
