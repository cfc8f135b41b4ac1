package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks configuration consistency. It runs after normalize, so
// defaults are already in place.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (expected console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.BaseURL == "" {
		// Render commands check for this at call time; sync-only setups
		// don't need a farm endpoint.
		return nil
	}
	parsed, err := url.Parse(c.Render.BaseURL)
	if err != nil || parsed.Host == "" || !strings.HasPrefix(parsed.Scheme, "http") {
		return fmt.Errorf("render.base_url: %q is not a valid http(s) URL", c.Render.BaseURL)
	}
	return nil
}
