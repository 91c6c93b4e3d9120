// Package config loads the simulated device and viewport options used by
// the vhfix commands from a YAML file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"vhfix/pkg/host"
	"vhfix/pkg/viewport"
)

// Environment variables overriding file values.
const (
	EnvUserAgent    = "VHFIX_USER_AGENT"
	EnvWidth        = "VHFIX_WIDTH"
	EnvInnerHeight  = "VHFIX_INNER_HEIGHT"
	EnvVisualHeight = "VHFIX_VISUAL_HEIGHT"
)

// Config describes a simulated device and the options passed to the
// orchestrator.
type Config struct {
	UserAgent    string  `yaml:"userAgent"`
	Width        float64 `yaml:"width"`
	InnerHeight  float64 `yaml:"innerHeight"`
	VisualHeight float64 `yaml:"visualHeight"`
	// Opera is the legacy window.opera string, read when UserAgent is empty.
	Opera string `yaml:"opera"`
	// Options uses the library's option keys (forceInApp, useMinOnIOS,
	// variableNames, apps, updateOnFocus).
	Options map[string]any `yaml:"options"`
}

// Default is an iPhone-sized viewport with no options.
func Default() *Config {
	return &Config{Width: 390, InnerHeight: 844}
}

// LoadEnv loads a .env file into the process environment. A missing file
// is not an error.
func LoadEnv(path string) {
	if err := godotenv.Load(path); err != nil {
		log.Debug("no env file loaded", "path", path, "err", err)
	}
}

// Load reads path (if not empty) over the defaults and applies environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found", path)
			}
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvUserAgent); ok {
		c.UserAgent = v
	}
	for key, dst := range map[string]*float64{
		EnvWidth:        &c.Width,
		EnvInnerHeight:  &c.InnerHeight,
		EnvVisualHeight: &c.VisualHeight,
	} {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = f
	}
	return nil
}

// Host builds the in-memory host for this device.
func (c *Config) Host() *host.Host {
	h := host.New(host.Config{
		UserAgent:    c.UserAgent,
		Width:        c.Width,
		InnerHeight:  c.InnerHeight,
		VisualHeight: c.VisualHeight,
	})
	if c.Opera != "" {
		h.Win().SetOpera(c.Opera)
	}
	return h
}

// ViewportOptions validates the options map. A string apps entry is
// compiled as a case-insensitive pattern first.
func (c *Config) ViewportOptions() (viewport.Options, error) {
	raw := maps.Clone(c.Options)
	if pattern, ok := raw["apps"].(string); ok {
		re, err := viewport.CompileApps(pattern)
		if err != nil {
			return viewport.Options{}, fmt.Errorf("config options: %w", err)
		}
		raw["apps"] = re
	}
	opts, err := viewport.DecodeOptions(raw)
	if err != nil {
		return viewport.Options{}, fmt.Errorf("config options: %w", err)
	}
	return opts, nil
}
