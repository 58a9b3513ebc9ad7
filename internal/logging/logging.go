// Package logging builds the logrus loggers used across gqlcodegen.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Fields represents structured logging fields.
type Fields = logrus.Fields

// New returns a text logger writing to stderr. A silent logger only reports
// errors. LOG_LEVEL overrides both defaults.
func New(silent bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
	})
	level := logrus.InfoLevel
	if silent {
		level = logrus.ErrorLevel
	}
	logger.SetLevel(LevelFromEnv(level))
	return logger
}

// Discard returns a logger that drops every entry.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// LevelFromEnv parses LOG_LEVEL, falling back to def when it is unset or
// invalid.
func LevelFromEnv(def logrus.Level) logrus.Level {
	raw := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if raw == "" {
		return def
	}
	level, err := logrus.ParseLevel(raw)
	if err != nil {
		return def
	}
	return level
}

// Component tags logger entries with the component name. A nil logger yields
// a discarding one.
func Component(logger logrus.FieldLogger, name string) logrus.FieldLogger {
	if logger == nil {
		logger = Discard()
	}
	return logger.WithField("component", name)
}
