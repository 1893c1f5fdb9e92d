package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/recera/netviz/pkg/debug"
	"github.com/recera/netviz/pkg/netgraph"
)

// FileName is the configuration file looked up in the project directory.
const FileName = "netviz.yaml"

// Config represents the netviz.yaml configuration
type Config struct {
	// Publisher to connect to
	Server *ServerConfig `yaml:"server,omitempty"`

	// Viewport behavior
	Viewport *ViewportConfig `yaml:"viewport,omitempty"`

	// Surface used by headless snapshots
	Surface *SurfaceConfig `yaml:"surface,omitempty"`

	// Demo publisher
	Serve *ServeConfig `yaml:"serve,omitempty"`

	// Logging
	Log *LogConfig `yaml:"log,omitempty"`
}

// ServerConfig locates the diagram stream
type ServerConfig struct {
	// Base websocket URL, e.g. ws://localhost:8080
	URL string `yaml:"url,omitempty"`

	// Numeric diagram id
	ID int `yaml:"id"`
}

// ViewportConfig mirrors netgraph.Options
type ViewportConfig struct {
	MinWidth  float64 `yaml:"min_width,omitempty"`
	MinHeight float64 `yaml:"min_height,omitempty"`
	ZoomStep  float64 `yaml:"zoom_step,omitempty"`
	MinScale  float64 `yaml:"min_scale,omitempty"`
	MaxScale  float64 `yaml:"max_scale,omitempty"`
}

// SurfaceConfig is a pixel size
type SurfaceConfig struct {
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
}

// ServeConfig configures the demo publisher
type ServeConfig struct {
	// Listen address
	Addr string `yaml:"addr,omitempty"`

	// Diagram file to publish
	Diagram string `yaml:"diagram,omitempty"`

	// Keepalive ping interval
	Ping time.Duration `yaml:"ping,omitempty"`
}

// LogConfig selects the log level
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// Load loads configuration from netviz.yaml in projectPath.
// A missing file yields the defaults.
func Load(projectPath string) (*Config, error) {
	configPath := filepath.Join(projectPath, FileName)

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	applyDefaults(&config)
	return &config, config.Validate()
}

// Save saves configuration to netviz.yaml in projectPath.
func Save(config *Config, projectPath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(projectPath, FileName), data, 0644)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: &ServerConfig{
			URL: "ws://localhost:8080",
			ID:  0,
		},
		Viewport: &ViewportConfig{
			MinWidth:  5,
			MinHeight: 5,
			ZoomStep:  1.1,
			MinScale:  0.01,
			MaxScale:  100,
		},
		Surface: &SurfaceConfig{
			Width:  800,
			Height: 600,
		},
		Serve: &ServeConfig{
			Addr:    "localhost:8080",
			Diagram: "diagram.yaml",
			Ping:    54 * time.Second,
		},
		Log: &LogConfig{
			Level: "info",
		},
	}
}

// applyDefaults applies default values to missing configuration
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.Server == nil {
		config.Server = defaults.Server
	} else if config.Server.URL == "" {
		config.Server.URL = defaults.Server.URL
	}

	if config.Viewport == nil {
		config.Viewport = defaults.Viewport
	} else {
		v, d := config.Viewport, defaults.Viewport
		if v.MinWidth == 0 {
			v.MinWidth = d.MinWidth
		}
		if v.MinHeight == 0 {
			v.MinHeight = d.MinHeight
		}
		if v.ZoomStep == 0 {
			v.ZoomStep = d.ZoomStep
		}
		if v.MinScale == 0 {
			v.MinScale = d.MinScale
		}
		if v.MaxScale == 0 {
			v.MaxScale = d.MaxScale
		}
	}

	if config.Surface == nil {
		config.Surface = defaults.Surface
	} else {
		if config.Surface.Width == 0 {
			config.Surface.Width = defaults.Surface.Width
		}
		if config.Surface.Height == 0 {
			config.Surface.Height = defaults.Surface.Height
		}
	}

	if config.Serve == nil {
		config.Serve = defaults.Serve
	} else {
		if config.Serve.Addr == "" {
			config.Serve.Addr = defaults.Serve.Addr
		}
		if config.Serve.Diagram == "" {
			config.Serve.Diagram = defaults.Serve.Diagram
		}
		if config.Serve.Ping == 0 {
			config.Serve.Ping = defaults.Serve.Ping
		}
	}

	if config.Log == nil {
		config.Log = defaults.Log
	} else if config.Log.Level == "" {
		config.Log.Level = defaults.Log.Level
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	v := c.Viewport
	if v.MinWidth < 0 || v.MinHeight < 0 {
		return fmt.Errorf("viewport: minimum size must not be negative")
	}
	if v.ZoomStep <= 1 {
		return fmt.Errorf("viewport: zoom_step must be greater than 1, got %g", v.ZoomStep)
	}
	if v.MinScale <= 0 || v.MaxScale < v.MinScale {
		return fmt.Errorf("viewport: invalid scale bounds [%g, %g]", v.MinScale, v.MaxScale)
	}
	if c.Surface.Width <= 0 || c.Surface.Height <= 0 {
		return fmt.Errorf("surface: invalid size %gx%g", c.Surface.Width, c.Surface.Height)
	}
	if c.Server.ID < 0 {
		return fmt.Errorf("server: diagram id must not be negative")
	}
	if _, err := debug.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// Options converts the viewport section for the controller.
func (c *Config) Options() *netgraph.Options {
	return &netgraph.Options{
		MinWidth:  c.Viewport.MinWidth,
		MinHeight: c.Viewport.MinHeight,
		ZoomStep:  c.Viewport.ZoomStep,
		MinScale:  c.Viewport.MinScale,
		MaxScale:  c.Viewport.MaxScale,
	}
}

// SurfaceSize converts the surface section.
func (c *Config) SurfaceSize() netgraph.Surface {
	return netgraph.Surface{Width: c.Surface.Width, Height: c.Surface.Height}
}
