package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeEngines(); err != nil {
		return err
	}
	c.normalizeManifest()
	c.normalizePoller()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("log_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("output_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		c.Paths.APIToken = strings.TrimSpace(os.Getenv(EnvAPIToken))
	}
	return nil
}

func (c *Config) normalizeEngines() error {
	for i := range c.Engines {
		engine := &c.Engines[i]
		engine.Name = strings.ToLower(strings.TrimSpace(engine.Name))
		engine.BaseURL = strings.TrimRight(strings.TrimSpace(engine.BaseURL), "/")
		engine.PublicPrefix = strings.TrimSpace(engine.PublicPrefix)
		if engine.PublicPrefix == "" && engine.Name != "" {
			engine.PublicPrefix = "/assets/" + engine.Name
		}
		engine.PublicPrefix = "/" + strings.Trim(engine.PublicPrefix, "/")
		if engine.Service == "" {
			engine.Service = engine.Name + "-engine"
		}
		if engine.RequestTimeout <= 0 {
			engine.RequestTimeout = defaultEngineTimeout
		}
	}
	return nil
}

func (c *Config) normalizeManifest() {
	c.Manifest.FetchBaseURL = strings.TrimRight(strings.TrimSpace(c.Manifest.FetchBaseURL), "/")
	if c.Manifest.FetchTimeout <= 0 {
		c.Manifest.FetchTimeout = defaultManifestTimeout
	}
}

func (c *Config) normalizePoller() {
	if c.Poller.Interval <= 0 {
		c.Poller.Interval = defaultPollerInterval
	}
	if c.Poller.Budget <= 0 {
		c.Poller.Budget = defaultPollerBudget
	}
	c.Poller.AssetBaseURL = strings.TrimRight(strings.TrimSpace(c.Poller.AssetBaseURL), "/")
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}
