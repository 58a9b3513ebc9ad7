package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsProduction(t *testing.T) {
	tests := []struct {
		name   string
		goEnv  string
		appEnv string
		want   bool
	}{
		{name: "unset"},
		{name: "go env", goEnv: "production", want: true},
		{name: "app env", appEnv: "Production", want: true},
		{name: "go env wins", goEnv: "development", appEnv: "production"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GO_ENV", tt.goEnv)
			t.Setenv("APP_ENV", tt.appEnv)
			assert.Equal(t, tt.want, IsProduction())
		})
	}
}

func TestGetAndBool(t *testing.T) {
	t.Setenv("GQLCODEGEN_TEST_VALUE", "")
	assert.Equal(t, "fallback", Get("GQLCODEGEN_TEST_VALUE", "fallback"))
	t.Setenv("GQLCODEGEN_TEST_VALUE", "set")
	assert.Equal(t, "set", Get("GQLCODEGEN_TEST_VALUE", "fallback"))

	t.Setenv("GQLCODEGEN_TEST_FLAG", "true")
	assert.True(t, Bool("GQLCODEGEN_TEST_FLAG", false))
	t.Setenv("GQLCODEGEN_TEST_FLAG", "maybe")
	assert.False(t, Bool("GQLCODEGEN_TEST_FLAG", false))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(file, []byte("GQLCODEGEN_FROM_FILE=yes\n"), 0o644))
	t.Setenv("GQLCODEGEN_FROM_FILE", "")

	loaded := Load(nil, file, filepath.Join(dir, "missing.env"))
	assert.Equal(t, []string{file}, loaded)
	assert.Equal(t, "yes", os.Getenv("GQLCODEGEN_FROM_FILE"))
}
