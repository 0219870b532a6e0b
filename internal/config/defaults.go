package config

const (
	defaultDataDir   = "~/.local/share/surfacegate"
	defaultLogDir    = "~/.local/share/surfacegate/logs"
	defaultOutputDir = "~/.local/share/surfacegate/output"
	defaultAPIBind   = "127.0.0.1:8480"

	defaultEngineName    = "surface"
	defaultEngineService = "surface-engine"
	defaultEngineBaseURL = "http://127.0.0.1:8092"
	defaultEnginePrefix  = "/assets/surface"
	defaultEngineTimeout = 15

	defaultManifestTimeout = 8
	defaultPollerInterval  = 2
	defaultPollerBudget    = 300
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			OutputDir: defaultOutputDir,
			APIBind:   defaultAPIBind,
		},
		Engines: []Engine{
			{
				Name:           defaultEngineName,
				Service:        defaultEngineService,
				BaseURL:        defaultEngineBaseURL,
				PublicPrefix:   defaultEnginePrefix,
				RequestTimeout: defaultEngineTimeout,
			},
		},
		Manifest: Manifest{
			FetchTimeout: defaultManifestTimeout,
		},
		Poller: Poller{
			Interval: defaultPollerInterval,
			Budget:   defaultPollerBudget,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
