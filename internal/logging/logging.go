// Package logging configures the logrus logger shared by every component.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Setup builds the application logger. Output always goes to the log file
// because the TUI owns the terminal. An explicit level overrides the
// environment's default. The returned closer releases the file.
func Setup(env, level, path string) (*logrus.Entry, io.Closer, error) {
	log := logrus.New()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, err
	}
	logFile, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	log.SetOutput(logFile)
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})

	switch env {
	case EnvLocal:
		log.SetLevel(logrus.DebugLevel)
	case EnvDev:
		log.SetLevel(logrus.InfoLevel)
	default:
		log.SetLevel(logrus.WarnLevel)
	}

	if level != "" {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			logFile.Close()
			return nil, nil, err
		}
		log.SetLevel(lvl)
	}

	return logrus.NewEntry(log).WithField("env", env), logFile, nil
}

// DefaultPath returns the log file under the XDG state directory
func DefaultPath() string {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "ptrack.log")
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "ptrack", "ptrack.log")
}

// Discard returns a logger that drops everything
func Discard() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}
