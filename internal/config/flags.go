package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagLibrary = flag.String("library", "", "LDraw library directory or zip")
	flagCache   = flag.String("cache", "", "Part mesh cache directory")
	flagNoCache = flag.Bool("nocache", false, "Disable the part mesh cache")
	flagWorkers = flag.Int("workers", 0, "Batch import workers")
	flagScale   = flag.Float64("scale", 0, "Uniform model scale")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after the flags.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLibrary != "" {
		cfg.Library.Path = *flagLibrary
	}
	if *flagCache != "" {
		cfg.Cache.MeshDir = *flagCache
		cfg.Cache.Enabled = true
	}
	if *flagNoCache {
		cfg.Cache.Enabled = false
	}
	if *flagWorkers > 0 {
		cfg.Import.Workers = *flagWorkers
	}
	if *flagScale > 0 {
		cfg.Import.Scale = *flagScale
	}
}
