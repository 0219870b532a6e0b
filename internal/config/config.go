package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// EnvAPIToken is the environment variable that overrides paths.api_token,
// so deployments can keep the promotion credential out of the config file.
const EnvAPIToken = "SURFACEGATE_API_TOKEN"

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
	OutputDir string `toml:"output_dir"`
	APIBind   string `toml:"api_bind"`
	APIToken  string `toml:"api_token"`
}

// Engine describes one upstream rendering engine the gateway proxies to.
// Multiple engines can be configured concurrently; each gets its own route
// prefix under /api/{name}/.
type Engine struct {
	Name           string `toml:"name"`
	Service        string `toml:"service"`
	BaseURL        string `toml:"base_url"`
	PublicPrefix   string `toml:"public_prefix"`
	BasicAuth      string `toml:"basic_auth"`
	APIKey         string `toml:"api_key"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Manifest contains settings for retrieving job manifests.
type Manifest struct {
	// FetchBaseURL is an optional same-host base URL prepended to the public
	// asset path for network manifest fetches. When empty, retrieval relies
	// on the filesystem fallback alone.
	FetchBaseURL string `toml:"fetch_base_url"`
	FetchTimeout int    `toml:"fetch_timeout"`
}

// Poller contains client-side polling settings.
type Poller struct {
	Interval     int    `toml:"interval"`
	Budget       int    `toml:"budget"`
	AssetBaseURL string `toml:"asset_base_url"`
}

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the root configuration document.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Engines  []Engine `toml:"engine"`
	Manifest Manifest `toml:"manifest"`
	Poller   Poller   `toml:"poller"`
	Logging  Logging  `toml:"logging"`
}

// SampleConfig returns the embedded, commented sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the sample configuration to the given path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// ExpandPath resolves ~ and relative segments to an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/surfacegate/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return is
// the resolved path, the third reports whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		// Array tables append to pre-populated slices on decode; a file
		// declaring engines must fully replace the default one.
		defaultEngines := cfg.Engines
		cfg.Engines = nil

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
		if len(cfg.Engines) == 0 {
			cfg.Engines = defaultEngines
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("surfacegate.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the daemon needs at runtime.
// OutputDir is created best-effort: engines may publish to storage that is
// mounted later, and the loader degrades to network-only retrieval.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	if c.Paths.OutputDir != "" {
		_ = os.MkdirAll(c.Paths.OutputDir, 0o755)
	}
	return nil
}

// EngineByName returns the configured engine with the given name.
func (c *Config) EngineByName(name string) (*Engine, bool) {
	for i := range c.Engines {
		if c.Engines[i].Name == name {
			return &c.Engines[i], true
		}
	}
	return nil, false
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return filepath.Abs(trimmed)
}
