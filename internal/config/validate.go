package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	if c.Paths.DataDir == "" {
		return fmt.Errorf("config: data_dir is required")
	}
	if c.Paths.LogDir == "" {
		return fmt.Errorf("config: log_dir is required")
	}
	if err := c.validateEngines(); err != nil {
		return err
	}
	if c.Manifest.FetchBaseURL != "" {
		if err := validateHTTPURL("manifest.fetch_base_url", c.Manifest.FetchBaseURL); err != nil {
			return err
		}
	}
	if c.Poller.AssetBaseURL != "" {
		if err := validateHTTPURL("poller.asset_base_url", c.Poller.AssetBaseURL); err != nil {
			return err
		}
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config: logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateEngines() error {
	if len(c.Engines) == 0 {
		return fmt.Errorf("config: at least one [[engine]] block is required")
	}
	seen := make(map[string]struct{}, len(c.Engines))
	for _, engine := range c.Engines {
		if engine.Name == "" {
			return fmt.Errorf("config: engine name is required")
		}
		if strings.ContainsAny(engine.Name, "/ ") {
			return fmt.Errorf("config: engine name %q must not contain slashes or spaces", engine.Name)
		}
		if _, dup := seen[engine.Name]; dup {
			return fmt.Errorf("config: duplicate engine name %q", engine.Name)
		}
		seen[engine.Name] = struct{}{}
		if err := validateHTTPURL("engine "+engine.Name+" base_url", engine.BaseURL); err != nil {
			return err
		}
		if !strings.HasPrefix(engine.PublicPrefix, "/") {
			return fmt.Errorf("config: engine %s public_prefix must start with /", engine.Name)
		}
	}
	return nil
}

func validateHTTPURL(field, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("config: %s: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("config: %s must be an http(s) URL, got %q", field, raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("config: %s is missing a host", field)
	}
	return nil
}
