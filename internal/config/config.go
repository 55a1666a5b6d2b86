// Package config loads ptrack settings from defaults, an optional YAML file,
// PTRACK_* environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tgienger/ptrack/internal/logging"
)

const envPrefix = "PTRACK"

// Keys
const (
	KeyEnv           = "env"
	KeyGraphQLURI    = "graphql_uri"
	KeyOrgSlug       = "org_slug"
	KeyAuthorEmail   = "author_email"
	KeyTimeout       = "timeout"
	KeyLogLevel      = "log_level"
	KeyLogFile       = "log_file"
	KeyDevServerAddr = "devserver_addr"
)

// Config holds the effective settings
type Config struct {
	Env           string        `mapstructure:"env" yaml:"env"`
	GraphQLURI    string        `mapstructure:"graphql_uri" yaml:"graphql_uri"`
	OrgSlug       string        `mapstructure:"org_slug" yaml:"org_slug"`
	AuthorEmail   string        `mapstructure:"author_email" yaml:"author_email"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	LogLevel      string        `mapstructure:"log_level" yaml:"log_level"`
	LogFile       string        `mapstructure:"log_file" yaml:"log_file"`
	DevServerAddr string        `mapstructure:"devserver_addr" yaml:"devserver_addr"`
}

// Defaults returns the built-in settings
func Defaults() Config {
	return Config{
		Env:           logging.EnvLocal,
		GraphQLURI:    "http://localhost:8000/graphql/",
		OrgSlug:       "acme",
		AuthorEmail:   "user@example.com",
		Timeout:       10 * time.Second,
		LogFile:       logging.DefaultPath(),
		DevServerAddr: "localhost:8000",
	}
}

// flagKeys maps command line flag names to config keys
var flagKeys = map[string]string{
	"env":            KeyEnv,
	"graphql-uri":    KeyGraphQLURI,
	"org":            KeyOrgSlug,
	"author":         KeyAuthorEmail,
	"timeout":        KeyTimeout,
	"log-level":      KeyLogLevel,
	"log-file":       KeyLogFile,
	"devserver-addr": KeyDevServerAddr,
}

// Load builds the effective configuration. An empty path reads the default
// file if it exists; an explicit path must exist. Flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault(KeyEnv, d.Env)
	v.SetDefault(KeyGraphQLURI, d.GraphQLURI)
	v.SetDefault(KeyOrgSlug, d.OrgSlug)
	v.SetDefault(KeyAuthorEmail, d.AuthorEmail)
	v.SetDefault(KeyTimeout, d.Timeout)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFile, d.LogFile)
	v.SetDefault(KeyDevServerAddr, d.DevServerAddr)

	v.SetConfigType("yaml")
	switch {
	case path != "":
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	default:
		if _, err := os.Stat(DefaultPath()); err == nil {
			v.SetConfigFile(DefaultPath())
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", DefaultPath(), err)
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the client cannot run without
func (c *Config) Validate() error {
	var errs []error
	u, err := url.Parse(c.GraphQLURI)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("%s: %q is not an http(s) URL", KeyGraphQLURI, c.GraphQLURI))
	}
	if strings.TrimSpace(c.OrgSlug) == "" {
		errs = append(errs, fmt.Errorf("%s: must not be empty", KeyOrgSlug))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s: must be positive", KeyTimeout))
	}
	switch c.Env {
	case logging.EnvLocal, logging.EnvDev, logging.EnvProd:
	default:
		errs = append(errs, fmt.Errorf("%s: must be one of local, dev, prod", KeyEnv))
	}
	return errors.Join(errs...)
}

// DefaultPath returns the config file location under the XDG config
// directory
func DefaultPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", "ptrack.yaml")
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "ptrack", "config.yaml")
}
