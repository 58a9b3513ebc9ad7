// Package env reads the process environment and local .env files.
package env

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Files are the env files loaded by Load, in order. Later files override
// earlier ones.
var Files = []string{".env", ".env.local"}

// Load reads the env files that exist into the process environment.
func Load(logger logrus.FieldLogger, files ...string) []string {
	if len(files) == 0 {
		files = Files
	}
	loaded := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Overload(file); err != nil {
			if logger != nil {
				logger.WithError(err).Warnf("failed to load %s", file)
			}
			continue
		}
		loaded = append(loaded, file)
	}
	if logger != nil && len(loaded) > 0 {
		logger.Debugf("loaded env files: %s", strings.Join(loaded, ", "))
	}
	return loaded
}

// Get returns the value of key, or def when it is unset or empty.
func Get(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Bool returns the boolean value of key, or def when it is unset or invalid.
func Bool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

// IsProduction reports whether GO_ENV, or APP_ENV when GO_ENV is unset,
// equals "production".
func IsProduction() bool {
	v := os.Getenv("GO_ENV")
	if v == "" {
		v = os.Getenv("APP_ENV")
	}
	return strings.EqualFold(strings.TrimSpace(v), "production")
}
