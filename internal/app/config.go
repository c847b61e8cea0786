package app

import (
	"io"
	"time"

	"azdo-mcp/internal/config"
	"azdo-mcp/pkg/logging"
)

// Mode selects the hosting topology.
type Mode int

const (
	ModeStdio Mode = iota
	ModeStateless
	ModeStateful
)

func (m Mode) String() string {
	switch m {
	case ModeStdio:
		return "stdio"
	case ModeStateless:
		return "stateless-http"
	case ModeStateful:
		return "stateful-http"
	default:
		return "unknown"
	}
}

// Config holds the application configuration
type Config struct {
	Mode    Mode
	Debug   bool
	Version string

	// Log level name (debug, info, warn, error). Debug overrides it.
	LogLevel string

	// Custom configuration directory (optional)
	ConfigPath string

	// Stdio flags. Empty values fall back to config.yaml defaults.
	Organization   string
	Authentication string
	Domains        []string
	Tenant         string

	// HTTP flags. Zero values fall back to config.yaml.
	Host        string
	Port        int
	Endpoint    string
	SessionTTL  time.Duration
	MaxSessions int
	PATOnly     bool

	// Loaded configuration. When set, config.yaml is not read.
	Settings *config.Config

	// Streams; nil means the process streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// logLevel returns the level logging is initialized with.
func (c *Config) logLevel() logging.LogLevel {
	if c.Debug {
		return logging.LevelDebug
	}
	return logging.ParseLogLevel(c.LogLevel)
}

// NewConfig creates a new application configuration
func NewConfig(mode Mode, debug bool, configPath, version string) *Config {
	return &Config{
		Mode:       mode,
		Debug:      debug,
		ConfigPath: configPath,
		Version:    version,
	}
}
