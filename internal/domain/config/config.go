// Package config loads the installer configuration (agentstrap.yaml) and
// defines the user-facing error taxonomy.
package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults carried over from the agent's reference installer.
const (
	// DefaultInstallRoot is the directory the agent is installed into.
	DefaultInstallRoot = "ComputerUseAgent"
	// DefaultMinRuntimeVersion is the oldest runtime the agent supports.
	DefaultMinRuntimeVersion = "3.8"
	// DefaultRuntimeDownloadURL is the unattended runtime installer.
	DefaultRuntimeDownloadURL = "https://www.python.org/ftp/python/3.11.9/python-3.11.9-amd64.exe"
	// DefaultBundlePath is the pre-fetched portable bundle checked by the
	// local-bundle method.
	DefaultBundlePath = "ComputerUseAgent_Portable.zip"
	// DefaultEntrypoint is the agent script launched after install.
	DefaultEntrypoint = "ai_computer_agent.py"

	// DefaultMethodTimeout bounds a single method attempt.
	DefaultMethodTimeout = 15 * time.Minute
	// DefaultProbeTimeout bounds a single environment probe.
	DefaultProbeTimeout = 3 * time.Second
)

// Config is the root installer configuration.
type Config struct {
	InstallRoot        string        `yaml:"install_root"`
	MinRuntimeVersion  string        `yaml:"min_runtime_version"`
	RuntimeDownloadURL string        `yaml:"runtime_download_url"`
	BundlePath         string        `yaml:"bundle_path"`
	Entrypoint         string        `yaml:"entrypoint"`
	MethodTimeout      Duration      `yaml:"method_timeout"`
	ProbeTimeout       Duration      `yaml:"probe_timeout"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		InstallRoot:        DefaultInstallRoot,
		MinRuntimeVersion:  DefaultMinRuntimeVersion,
		RuntimeDownloadURL: DefaultRuntimeDownloadURL,
		BundlePath:         DefaultBundlePath,
		Entrypoint:         DefaultEntrypoint,
		MethodTimeout:      Duration(DefaultMethodTimeout),
		ProbeTimeout:       Duration(DefaultProbeTimeout),
	}
}

// Parse parses a Config from YAML bytes. Absent keys keep their defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, NewUserError(ErrCodeConfigParse, "configuration file is not valid YAML").
			WithSuggestion("check the file for syntax errors or delete it to use defaults").
			WithUnderlying(err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the configuration from path. A missing file yields defaults;
// any other read failure is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, NewUserError(ErrCodeConfigParse, "configuration file could not be read").
			WithContext(path).
			WithUnderlying(err)
	}

	cfg, err := Parse(data)
	if err != nil {
		var userErr *UserError
		if errors.As(err, &userErr) {
			return nil, userErr.WithContext(path)
		}
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.InstallRoot == "" {
		return NewUserError(ErrCodeConfigInvalid, "install_root must not be empty").
			WithSuggestion("remove the key to use the default install directory")
	}
	if c.MethodTimeout <= 0 {
		return NewUserError(ErrCodeConfigInvalid, "method_timeout must be positive").
			WithSuggestion("use a duration such as 15m")
	}
	if c.ProbeTimeout <= 0 {
		return NewUserError(ErrCodeConfigInvalid, "probe_timeout must be positive").
			WithSuggestion("use a duration such as 3s")
	}
	return nil
}
