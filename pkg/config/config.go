// Package config resolves the shell's runtime configuration from the process
// environment, .env files and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvMode       = "APP_ENV"
	EnvProtocol   = "APP_PROTOCOL"
	EnvHost       = "APP_HOST"
	EnvBundleRoot = "APP_BUNDLE_ROOT"
	EnvDevServer  = "APP_DEV_SERVER"
	EnvListen     = "APP_LISTEN"
	EnvTransport  = "APP_TRANSPORT"
	EnvDebug      = "APP_DEBUG"
)

// Server transports.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// DefaultAddress is the loopback address the headless host listens on.
const DefaultAddress = "127.0.0.1:8765"

// Config holds the complete shell configuration.
type Config struct {
	// Mode is taken from APP_ENV only; it selects the .env files.
	Mode RuntimeMode `yaml:"-"`

	// Protocol is the custom scheme name, e.g. "app".
	Protocol string `yaml:"protocol"`

	// Host is the full origin stripped from asset requests, e.g. "app://local".
	Host string `yaml:"host"`

	// BundleRoot is the directory holding the packaged front-end assets.
	// Defaults to the directory of the running executable.
	BundleRoot string `yaml:"bundle_root"`

	// DevServer is the base URL of the external development server.
	DevServer string `yaml:"dev_server"`

	Debug bool `yaml:"debug"`

	Server ServerConfig `yaml:"server"`
}

// ServerConfig configures the headless host.
type ServerConfig struct {
	Address   string `yaml:"address"`
	Transport string `yaml:"transport"` // "http", "stdio"
}

// LookupFunc looks up an environment variable.
type LookupFunc func(key string) (string, bool)

// LoadOptions controls Load. Flag fields left empty do not override.
type LoadOptions struct {
	// ConfigPath is an optional YAML file.
	ConfigPath string

	// EnvDir is the directory searched for .env files. Empty disables them.
	EnvDir string

	// Lookup replaces os.LookupEnv, mainly for tests.
	Lookup LookupFunc

	// Command line overrides.
	DevServer string
	Address   string
	Transport string
	Debug     bool
}

// Load resolves and validates the configuration.
func Load(opts LoadOptions) (*Config, error) {
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	modeStr, ok := lookup(EnvMode)
	if !ok || modeStr == "" {
		return nil, &Error{Key: EnvMode, Err: ErrMissingEnv}
	}
	mode, err := ParseMode(modeStr)
	if err != nil {
		return nil, &Error{Key: EnvMode, Err: err}
	}

	if opts.EnvDir != "" {
		dotenv, err := ReadDotenv(opts.EnvDir, mode)
		if err != nil {
			return nil, err
		}
		lookup = chainLookup(lookup, dotenv)
	}

	cfg := &Config{}
	if opts.ConfigPath != "" {
		cfg, err = LoadFile(opts.ConfigPath, lookup)
		if err != nil {
			return nil, err
		}
	}
	cfg.Mode = mode

	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	applyOverrides(cfg, opts)
	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads configuration from a YAML file. ${VAR} references are
// expanded through lookup before parsing.
// The path is expected to come from command line arguments, controlled by the user.
func LoadFile(path string, lookup LookupFunc) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is from CLI args
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	data = []byte(expandEnvVars(string(data), lookup))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in the string.
func expandEnvVars(s string, lookup LookupFunc) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		v, _ := lookup(match[2 : len(match)-1])
		return v
	})
}

// chainLookup consults next first and falls back to vars.
func chainLookup(next LookupFunc, vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		if v, ok := next(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}
}

// applyEnv overlays set environment variables onto cfg.
func applyEnv(cfg *Config, lookup LookupFunc) error {
	strs := []struct {
		key string
		dst *string
	}{
		{EnvProtocol, &cfg.Protocol},
		{EnvHost, &cfg.Host},
		{EnvBundleRoot, &cfg.BundleRoot},
		{EnvDevServer, &cfg.DevServer},
		{EnvListen, &cfg.Server.Address},
		{EnvTransport, &cfg.Server.Transport},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok && v != "" {
			*s.dst = v
		}
	}

	if v, ok := lookup(EnvDebug); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return &Error{Key: EnvDebug, Err: err}
		}
		cfg.Debug = debug
	}
	return nil
}

func applyOverrides(cfg *Config, opts LoadOptions) {
	if opts.DevServer != "" {
		cfg.DevServer = opts.DevServer
	}
	if opts.Address != "" {
		cfg.Server.Address = opts.Address
	}
	if opts.Transport != "" {
		cfg.Server.Transport = opts.Transport
	}
	if opts.Debug {
		cfg.Debug = true
	}
}

// applyDefaults applies default values to the config.
func applyDefaults(cfg *Config) error {
	if cfg.Server.Address == "" {
		cfg.Server.Address = DefaultAddress
	}
	if cfg.Server.Transport == "" {
		cfg.Server.Transport = TransportHTTP
	}
	cfg.DevServer = strings.TrimSuffix(cfg.DevServer, "/")

	if cfg.BundleRoot == "" {
		dir, err := executableDir()
		if err != nil {
			return fmt.Errorf("locating bundle root: %w", err)
		}
		cfg.BundleRoot = dir
	}
	return nil
}

// executableDir returns the directory containing the running binary.
func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// Validate checks the settings required by the configured mode.
func (c *Config) Validate() error {
	var errs []error

	switch c.Mode {
	case Production:
		if c.Protocol == "" {
			errs = append(errs, &Error{Key: EnvProtocol, Err: ErrMissingProtocol})
		}
		if c.Host == "" {
			errs = append(errs, &Error{Key: EnvHost, Err: ErrMissingHost})
		}
		if c.Protocol != "" && c.Host != "" && !strings.HasPrefix(c.Host, c.Protocol+"://") {
			errs = append(errs, &Error{Key: EnvHost, Err: fmt.Errorf("%w: %q is not under %s://", ErrHostSchemeMismatch, c.Host, c.Protocol)})
		}
		if !filepath.IsAbs(c.BundleRoot) {
			errs = append(errs, &Error{Key: EnvBundleRoot, Err: fmt.Errorf("%w: %q", ErrInvalidBundleRoot, c.BundleRoot)})
		}
	case Development:
		if c.DevServer == "" {
			errs = append(errs, &Error{Key: EnvDevServer, Err: ErrMissingDevServer})
		}
	}

	switch c.Server.Transport {
	case TransportHTTP:
	case TransportStdio:
		if !c.Mode.IsProduction() {
			errs = append(errs, &Error{Key: EnvTransport, Err: ErrTransportRequiresProduction})
		}
	default:
		errs = append(errs, &Error{Key: EnvTransport, Err: fmt.Errorf("%w: %q", ErrInvalidTransport, c.Server.Transport)})
	}

	return errors.Join(errs...)
}
