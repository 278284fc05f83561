// Package config provides configuration management for the ScriptCut editor.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// Default values
	DefaultPort            = 8790
	DefaultLogLevel        = "info"
	DefaultDataDir         = ".scriptcut"
	DefaultAutosaveSeconds = 30
	DefaultHTTPTimeout     = 60 // seconds

	// Environment variable names
	EnvAppEnv          = "EDITOR_ENV"
	EnvPort            = "EDITOR_PORT"
	EnvLogLevel        = "EDITOR_LOG_LEVEL"
	EnvDataDir         = "EDITOR_DATA_DIR"
	EnvBackendURL      = "EDITOR_BACKEND_URL"
	EnvBackendToken    = "EDITOR_BACKEND_TOKEN"
	EnvAutosaveSeconds = "EDITOR_AUTOSAVE_SECONDS"
	EnvHTTPTimeout     = "EDITOR_HTTP_TIMEOUT_SECONDS"
	EnvHeadless        = "EDITOR_HEADLESS"
	EnvAllowedOrigins  = "EDITOR_ALLOWED_ORIGINS"

	// Database filename
	DBFilename = "scriptcut.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	BackendURL() string
	BackendToken() string
	Offline() bool
	AutosaveInterval() time.Duration
	HTTPTimeout() time.Duration
	Headless() bool
	AllowedOrigins() []string
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port           int
	logLevel       string
	dataDir        string
	backendURL     string
	backendToken   string
	autosave       time.Duration
	httpTimeout    time.Duration
	headless       bool
	allowedOrigins []string
}

// LoadDotEnv reads a .env file from the working directory unless running in
// production, where the environment is injected by the host.
func LoadDotEnv() {
	if os.Getenv(EnvAppEnv) == "production" {
		return
	}
	_ = godotenv.Load()
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:        DefaultPort,
		logLevel:    DefaultLogLevel,
		dataDir:     defaultDataDir(),
		autosave:    DefaultAutosaveSeconds * time.Second,
		httpTimeout: DefaultHTTPTimeout * time.Second,
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	cfg.backendURL = strings.TrimRight(os.Getenv(EnvBackendURL), "/")
	cfg.backendToken = os.Getenv(EnvBackendToken)

	var err error
	if cfg.autosave, err = secondsEnv(EnvAutosaveSeconds, cfg.autosave); err != nil {
		return nil, err
	}
	if cfg.httpTimeout, err = secondsEnv(EnvHTTPTimeout, cfg.httpTimeout); err != nil {
		return nil, err
	}

	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		cfg.headless = headless
	}

	for _, origin := range strings.Split(os.Getenv(EnvAllowedOrigins), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.allowedOrigins = append(cfg.allowedOrigins, origin)
		}
	}

	return cfg, nil
}

func secondsEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("invalid %s: must be at least 1 second", key)
	}
	return time.Duration(n) * time.Second, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

func (c *EnvConfig) BackendURL() string {
	return c.backendURL
}

func (c *EnvConfig) BackendToken() string {
	return c.backendToken
}

// Offline reports whether projects live in the local database because no
// backend is configured.
func (c *EnvConfig) Offline() bool {
	return c.backendURL == ""
}

func (c *EnvConfig) AutosaveInterval() time.Duration {
	return c.autosave
}

func (c *EnvConfig) HTTPTimeout() time.Duration {
	return c.httpTimeout
}

// Headless disables the system tray.
func (c *EnvConfig) Headless() bool {
	return c.headless
}

// AllowedOrigins lists browser origins allowed to call the control API.
// Empty means same-origin and localhost only.
func (c *EnvConfig) AllowedOrigins() []string {
	return c.allowedOrigins
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
