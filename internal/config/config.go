package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultImageExtension = "jpg"
	DefaultWidth          = 1280
	DefaultHeight         = 720
	DefaultScrollPages    = 4.0
	DefaultScrollStep     = 60.0
	DefaultLoadingText    = "Loading"
	DefaultTitle          = "scrollseq"
)

// Config describes one scroll sequence and the window that hosts it.
type Config struct {
	FrameCount     int    `yaml:"frame_count"`
	ImagesPath     string `yaml:"images_path"`
	ImageExtension string `yaml:"image_extension"`
	ClassName      string `yaml:"class_name"`

	Title       string  `yaml:"title"`
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	ScrollPages float64 `yaml:"scroll_pages"` // document height in viewports
	ScrollStep  float64 `yaml:"scroll_step"`  // pixels per wheel notch
	LoadingText string  `yaml:"loading_text"`
}

// Load reads a YAML config file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Write stores cfg as YAML.
func Write(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) ApplyDefaults() {
	if c.ImageExtension == "" {
		c.ImageExtension = DefaultImageExtension
	}
	c.ImageExtension = strings.TrimPrefix(c.ImageExtension, ".")
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.ScrollPages < 1 {
		c.ScrollPages = DefaultScrollPages
	}
	if c.ScrollStep <= 0 {
		c.ScrollStep = DefaultScrollStep
	}
	if c.LoadingText == "" {
		c.LoadingText = DefaultLoadingText
	}
}

// Opacity returns the canvas opacity encoded in ClassName as an
// "opacity-NN" token (NN in percent). Without one the canvas is opaque.
func (c *Config) Opacity() float64 {
	opacity := 1.0
	for _, class := range strings.Fields(c.ClassName) {
		v, ok := strings.CutPrefix(class, "opacity-")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 100 {
			continue
		}
		opacity = float64(n) / 100
	}
	return opacity
}
