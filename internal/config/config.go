package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	PointerWindow = "window"
	PointerX11    = "x11"
)

type WindowConfig struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Title       string `yaml:"title"`
	FPS         int    `yaml:"fps"`
	Fullscreen  bool   `yaml:"fullscreen"`
	Undecorated bool   `yaml:"undecorated"`
}

type BannerConfig struct {
	// Path is a descriptor file or a directory of descriptors.
	Path string `yaml:"path"`
	// Pkg is an optional bundle extracted into ExtractDir before loading.
	Pkg        string `yaml:"pkg"`
	ExtractDir string `yaml:"extract_dir"`
	// Height of the banner strip in window pixels; 0 fills the window.
	Height         int     `yaml:"height"`
	BaseWidth      float64 `yaml:"base_width"`
	HomingDuration int     `yaml:"homing_ms"`
}

type Config struct {
	Window      WindowConfig `yaml:"window"`
	Banner      BannerConfig `yaml:"banner"`
	Pointer     string       `yaml:"pointer"`
	AssetsPath  string       `yaml:"assets_path"`
	SnapshotDir string       `yaml:"snapshot_dir"`
	FFmpeg      string       `yaml:"ffmpeg"`
	FFprobe     string       `yaml:"ffprobe"`
	LogLevel    string       `yaml:"log_level"`
	Debug       bool         `yaml:"debug"`
}

func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 400,
			Title:  "Parallax Banner",
			FPS:    60,
		},
		Banner: BannerConfig{
			Path:           "banners",
			ExtractDir:     "tmp",
			BaseWidth:      1650,
			HomingDuration: 200,
		},
		Pointer:     PointerWindow,
		SnapshotDir: "snapshots",
		FFmpeg:      "ffmpeg",
		FFprobe:     "ffprobe",
		LogLevel:    "info",
	}
}

// Load reads a YAML config on top of the defaults. An empty path, or a
// missing file at the default location, yields the defaults.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML from %s: %w", path, err)
	}
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", path, err)
	}
	return cfg, nil
}

// applyDefaults refills fields a config file explicitly zeroed.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Window.FPS == 0 {
		cfg.Window.FPS = def.Window.FPS
	}
	if cfg.Window.Title == "" {
		cfg.Window.Title = def.Window.Title
	}
	if cfg.Banner.BaseWidth == 0 {
		cfg.Banner.BaseWidth = def.Banner.BaseWidth
	}
	if cfg.Banner.HomingDuration == 0 {
		cfg.Banner.HomingDuration = def.Banner.HomingDuration
	}
	if cfg.Banner.ExtractDir == "" {
		cfg.Banner.ExtractDir = def.Banner.ExtractDir
	}
	if cfg.Pointer == "" {
		cfg.Pointer = def.Pointer
	}
	if cfg.FFmpeg == "" {
		cfg.FFmpeg = def.FFmpeg
	}
	if cfg.FFprobe == "" {
		cfg.FFprobe = def.FFprobe
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
}

func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Window.FPS < 0 {
		return fmt.Errorf("fps must not be negative, got %d", c.Window.FPS)
	}
	if c.Banner.Path == "" && c.Banner.Pkg == "" {
		return errors.New("either banner.path or banner.pkg is required")
	}
	if c.Banner.Height < 0 {
		return fmt.Errorf("banner.height must not be negative, got %d", c.Banner.Height)
	}
	if c.Banner.BaseWidth <= 0 {
		return fmt.Errorf("banner.base_width must be positive, got %v", c.Banner.BaseWidth)
	}
	if c.Banner.HomingDuration < 0 {
		return fmt.Errorf("banner.homing_ms must not be negative, got %d", c.Banner.HomingDuration)
	}
	switch c.Pointer {
	case PointerWindow, PointerX11:
	default:
		return fmt.Errorf("pointer must be %q or %q, got %q", PointerWindow, PointerX11, c.Pointer)
	}
	return nil
}

func (c *Config) Homing() time.Duration {
	return time.Duration(c.Banner.HomingDuration) * time.Millisecond
}
