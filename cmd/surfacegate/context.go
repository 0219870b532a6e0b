package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"surfacegate/internal/config"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// engineFor resolves the --engine flag against the configuration, defaulting
// to the sole configured engine.
func (c *commandContext) engineFor(name string) (*config.Engine, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		if len(cfg.Engines) == 1 {
			return &cfg.Engines[0], nil
		}
		return nil, fmt.Errorf("multiple engines configured; pick one with --engine")
	}
	engine, ok := cfg.EngineByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown engine %q", name)
	}
	return engine, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
