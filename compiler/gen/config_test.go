package gen

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestConfigNormalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		got := (&Config{}).Normalize(nil, false)
		assert.Equal(t, NamingKeep, got.NamingConvention)
		assert.Equal(t, DefaultContextType, got.ContextType)
		assert.Equal(t, DefaultCustomResolverFn, got.CustomResolverFn)
		assert.Equal(t, DefaultAmbientModule, got.AmbientModule)
	})

	t.Run("nil config", func(t *testing.T) {
		var c *Config
		assert.Equal(t, DefaultContextType, c.Normalize(nil, true).ContextType)
	})

	t.Run("keep is accepted silently", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		(&Config{NamingConvention: NamingKeep}).Normalize(logger, false)
		assert.Empty(t, hook.AllEntries())
	})

	t.Run("other conventions are coerced", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		got := (&Config{NamingConvention: "pascalCase"}).Normalize(logger, false)
		assert.Equal(t, NamingKeep, got.NamingConvention)
		assert.Len(t, hook.AllEntries(), 1)
	})

	t.Run("maps are copied", func(t *testing.T) {
		in := &Config{Scalars: map[string]string{"Date": "string"}}
		out := in.Normalize(nil, true)
		out.Scalars["Date"] = "Date"
		assert.Equal(t, "string", in.Scalars["Date"])
	})
}

func TestConfigScalarType(t *testing.T) {
	c := &Config{Scalars: map[string]string{"DateTime": "Date", "ID": "number"}}
	assert.Equal(t, "Date", c.ScalarType("DateTime"))
	assert.Equal(t, "number", c.ScalarType("ID"))
	assert.Equal(t, "boolean", c.ScalarType("Boolean"))
	assert.Equal(t, "any", c.ScalarType("JSON"))
}
