package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultScreenWidth  = 1200
	defaultScreenHeight = 800
	defaultWindowTitle  = "Tile Set Viewer"
	defaultViewerScale  = 3
	defaultSheetScale   = 2
	defaultWorkers      = 1
	defaultPaletteExt   = ".pal"
)

// Config holds the application settings shared by the viewer and tileutils.
type Config struct {
	Display DisplayConfig `yaml:"display"`
	Assets  AssetsConfig  `yaml:"assets"`
	Loader  LoaderConfig  `yaml:"loader"`
	Sheet   SheetConfig   `yaml:"sheet"`
}

type DisplayConfig struct {
	ScreenWidth  int    `yaml:"screen_width"`
	ScreenHeight int    `yaml:"screen_height"`
	WindowTitle  string `yaml:"window_title"`
	Resizable    bool   `yaml:"resizable"`
	Scale        int    `yaml:"scale"` // template zoom in the viewer panel
}

type AssetsConfig struct {
	// Mounts are searched in order. Entries ending in .zip are mounted as
	// packages, everything else as a directory.
	Mounts     []string `yaml:"mounts"`
	TileSet    string   `yaml:"tileset"`
	PaletteExt string   `yaml:"palette_ext"`
}

type LoaderConfig struct {
	Workers int `yaml:"workers"`
}

type SheetConfig struct {
	Scale int `yaml:"scale"`
}

var GlobalConfig *Config

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Set global config for easy access
	GlobalConfig = &config

	return &config, nil
}

// MustLoadConfig loads the configuration and panics on error
func MustLoadConfig(filename string) *Config {
	config, err := LoadConfig(filename)
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}
	return config
}

// Helper functions for easy access to commonly used values. Zero values fall
// back to defaults.
func (c *Config) GetScreenWidth() int {
	return orDefault(c.Display.ScreenWidth, defaultScreenWidth)
}

func (c *Config) GetScreenHeight() int {
	return orDefault(c.Display.ScreenHeight, defaultScreenHeight)
}

func (c *Config) GetWindowTitle() string {
	if c.Display.WindowTitle == "" {
		return defaultWindowTitle
	}
	return c.Display.WindowTitle
}

func (c *Config) GetViewerScale() int {
	return orDefault(c.Display.Scale, defaultViewerScale)
}

func (c *Config) GetSheetScale() int {
	return orDefault(c.Sheet.Scale, defaultSheetScale)
}

func (c *Config) GetWorkers() int {
	return orDefault(c.Loader.Workers, defaultWorkers)
}

// GetMounts returns the asset mounts, or the current directory when none are
// configured.
func (c *Config) GetMounts() []string {
	if len(c.Assets.Mounts) == 0 {
		return []string{"."}
	}
	return c.Assets.Mounts
}

func (c *Config) GetPaletteExt() string {
	if c.Assets.PaletteExt == "" {
		return defaultPaletteExt
	}
	return c.Assets.PaletteExt
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
