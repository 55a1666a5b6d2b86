package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrExists is returned by WriteDefault when the file is already present
var ErrExists = errors.New("config file already exists")

var keyComments = map[string]string{
	KeyEnv:           "local, dev or prod; selects the default log level",
	KeyGraphQLURI:    "GraphQL endpoint of the project tracking API",
	KeyOrgSlug:       "organization sent in the X-ORG-SLUG header",
	KeyAuthorEmail:   "author of comments added from this machine",
	KeyTimeout:       "per-request timeout",
	KeyLogLevel:      "overrides the env level when set (debug, info, warn, error)",
	KeyLogFile:       "log destination; the TUI owns the terminal",
	KeyDevServerAddr: "listen address of ptrack devserver",
}

// Document renders cfg as a commented YAML document
func (c *Config) Document() *yaml.Node {
	pairs := []struct{ key, value string }{
		{KeyEnv, c.Env},
		{KeyGraphQLURI, c.GraphQLURI},
		{KeyOrgSlug, c.OrgSlug},
		{KeyAuthorEmail, c.AuthorEmail},
		{KeyTimeout, c.Timeout.String()},
		{KeyLogLevel, c.LogLevel},
		{KeyLogFile, c.LogFile},
		{KeyDevServerAddr, c.DevServerAddr},
	}

	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range pairs {
		m.Content = append(m.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: p.key, HeadComment: keyComments[p.key]},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.value},
		)
	}
	return &yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: "ptrack configuration",
		Content:     []*yaml.Node{m},
	}
}

// Marshal renders cfg as YAML
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c.Document())
}

// WriteDefault writes the built-in settings to path. An existing file is
// only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrExists)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	d := Defaults()
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
