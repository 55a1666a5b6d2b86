package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLevelsPerEnv(t *testing.T) {
	cases := map[string]logrus.Level{
		EnvLocal: logrus.DebugLevel,
		EnvDev:   logrus.InfoLevel,
		EnvProd:  logrus.WarnLevel,
		"other":  logrus.WarnLevel,
	}
	for env, want := range cases {
		t.Run(env, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "logs", "ptrack.log")
			log, closer, err := Setup(env, "", path)
			require.NoError(t, err)
			defer closer.Close()
			assert.Equal(t, want, log.Logger.GetLevel())
		})
	}
}

func TestSetupWritesToFileAndHonorsLevelOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ptrack.log")
	log, closer, err := Setup(EnvProd, "debug", path)
	require.NoError(t, err)

	log.Debug("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "env=prod")
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	_, _, err := Setup(EnvLocal, "loud", filepath.Join(t.TempDir(), "x.log"))
	assert.Error(t, err)
}
