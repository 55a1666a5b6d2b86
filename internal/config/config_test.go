package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/graphql/", cfg.GraphQLURI)
	assert.Equal(t, "acme", cfg.OrgSlug)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "local", cfg.Env)
}

func TestLoadPrecedence(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("org_slug: globex\ntimeout: 3s\nauthor_email: file@example.com\n"), 0644))
	t.Setenv("PTRACK_ORG_SLUG", "initech")
	t.Setenv("PTRACK_GRAPHQL_URI", "https://api.example.com/graphql/")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("author", "", "")
	require.NoError(t, flags.Parse([]string{"--author", "flag@example.com"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "initech", cfg.OrgSlug, "env beats file")
	assert.Equal(t, 3*time.Second, cfg.Timeout, "file beats default")
	assert.Equal(t, "https://api.example.com/graphql/", cfg.GraphQLURI)
	assert.Equal(t, "flag@example.com", cfg.AuthorEmail, "flag beats file")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	cfg.GraphQLURI = "localhost:8000"
	cfg.OrgSlug = " "
	cfg.Timeout = 0
	cfg.Env = "staging"
	err := cfg.Validate()
	require.Error(t, err)
	for _, key := range []string{KeyGraphQLURI, KeyOrgSlug, KeyTimeout, KeyEnv} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "ptrack", "config.yaml")

	require.NoError(t, WriteDefault(path, false))
	assert.ErrorIs(t, WriteDefault(path, false), ErrExists)
	require.NoError(t, WriteDefault(path, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# GraphQL endpoint")
	assert.Contains(t, string(data), "timeout: 10s")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults().Timeout, cfg.Timeout)
	assert.Equal(t, Defaults().OrgSlug, cfg.OrgSlug)
}
