package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/hyperloopupv-h8/stools/internal/domain/release"
	"github.com/hyperloopupv-h8/stools/internal/logger"
)

// Config holds the settings shared by every stools command.
type Config struct {
	// APIURL is the base URL of the GitHub REST API.
	APIURL string `yaml:"api_url" toml:"api_url"`
	// Organization owns the target repositories.
	Organization string `yaml:"organization" toml:"organization"`
	// Repositories maps a target name to its repository.
	Repositories map[string]string `yaml:"repositories" toml:"repositories"`
	// UserAgent is sent with every request; GitHub rejects requests without one.
	UserAgent string `yaml:"user_agent" toml:"user_agent"`
	// Output is the default download and mount directory.
	Output string `yaml:"output" toml:"output"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" toml:"log_level"`
}

const (
	// DefaultConfigFilename is the settings file looked up when none is given.
	DefaultConfigFilename = "stools.yaml"

	// DefaultAPIURL is the public GitHub API.
	DefaultAPIURL = "https://api.github.com"

	// DefaultOrganization owns the distributed repositories.
	DefaultOrganization = "HyperloopUPV-H8"

	// DefaultUserAgent identifies the tool to GitHub.
	DefaultUserAgent = "stools"

	// DefaultOutput is where files are downloaded and mounted.
	DefaultOutput = "./stools"

	// DefaultFilePermissions is the permission for saved settings.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errRepositoryRequired is returned when a target has no repository.
	errRepositoryRequired = errors.New("repository must be provided for target")
	// errInvalidOrganization is returned for an organization that is not a plain name.
	errInvalidOrganization = errors.New("invalid organization")
	// errUnknownLogLevel is returned for a log level zap does not know.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		APIURL:       DefaultAPIURL,
		Organization: DefaultOrganization,
		Repositories: map[string]string{
			release.TargetEthernet.String(): "ev-frontend",
			release.TargetControl.String():  "cs-frontend",
			release.TargetBackend.String():  "h8-backend",
		},
		UserAgent: DefaultUserAgent,
		Output:    DefaultOutput,
		LogLevel:  "info",
	}
}

// Load reads settings from path, fills unset fields from Default and validates
// the result. When path is empty the default file is tried, and its absence
// yields the defaults.
func Load(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = unmarshal(path, contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to path in the format implied by its extension.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := marshal(path, cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults for unset fields and checks the rest.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	defaults := Default()

	if settings.APIURL == "" {
		settings.APIURL = defaults.APIURL
	}

	if _, err := url.ParseRequestURI(settings.APIURL); err != nil {
		return fmt.Errorf("invalid api url: %w", err)
	}

	if settings.Organization == "" {
		settings.Organization = defaults.Organization
	}

	if strings.Contains(settings.Organization, "/") {
		return fmt.Errorf("%w: %q is not a plain name", errInvalidOrganization, settings.Organization)
	}

	if settings.UserAgent == "" {
		settings.UserAgent = defaults.UserAgent
	}

	if settings.Output == "" {
		settings.Output = defaults.Output
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%w: %s", errUnknownLogLevel, settings.LogLevel)
	}

	if settings.Repositories == nil {
		settings.Repositories = make(map[string]string, len(defaults.Repositories))
	}

	for _, target := range release.Targets() {
		if settings.Repositories[target.String()] == "" {
			settings.Repositories[target.String()] = defaults.Repositories[target.String()]
		}
	}

	return nil
}

// Repository returns the "organization/repository" path serving target.
func (c *Config) Repository(target release.Target) (string, error) {
	name := c.Repositories[target.String()]
	if name == "" {
		return "", fmt.Errorf("%w: %s", errRepositoryRequired, target)
	}

	return c.Organization + "/" + name, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func unmarshal(path string, data []byte, cfg *Config) error {
	if isTOML(path) {
		return toml.Unmarshal(data, cfg)
	}

	return yaml.Unmarshal(data, cfg)
}

func marshal(path string, cfg *Config) ([]byte, error) {
	if isTOML(path) {
		return toml.Marshal(cfg)
	}

	return yaml.Marshal(cfg)
}
