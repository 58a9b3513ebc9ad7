package gen

import (
	"maps"

	"github.com/sirupsen/logrus"
)

// Defaults applied by Normalize.
const (
	DefaultContextType   = "MercuriusContext"
	DefaultAmbientModule = "mercurius"
	// NamingKeep is the only supported naming convention: type and field
	// names are emitted exactly as declared in the schema.
	NamingKeep = "keep"
	// DefaultCustomResolverFn is the resolver function signature used by
	// the resolvers plugin.
	DefaultCustomResolverFn = "(parent: TParent, args: TArgs, context: TContext, info: GraphQLResolveInfo) => Promise<DeepPartial<TResult>> | DeepPartial<TResult>"
)

// Config is the plugin configuration shared by every plugin of a pass.
type Config struct {
	// Scalars maps custom scalar names to TypeScript types. Unmapped custom
	// scalars are typed as any.
	Scalars map[string]string `yaml:"scalars,omitempty" json:"scalars,omitempty"`
	// NamingConvention is coerced to "keep".
	NamingConvention string `yaml:"namingConvention,omitempty" json:"namingConvention,omitempty"`
	// NamespacedImportName prefixes non-scalar type references in loaders.
	NamespacedImportName string `yaml:"namespacedImportName,omitempty" json:"namespacedImportName,omitempty"`
	// LoaderTypeOverrides replaces non-scalar type references in loaders,
	// for example mapping a type to "never" to forbid its loaders.
	LoaderTypeOverrides map[string]string `yaml:"loaderTypeOverrides,omitempty" json:"loaderTypeOverrides,omitempty"`
	// ContextType is the default context type of resolvers and loaders.
	ContextType string `yaml:"contextType,omitempty" json:"contextType,omitempty"`
	// CustomResolverFn is the signature of field resolvers.
	CustomResolverFn string `yaml:"customResolverFn,omitempty" json:"customResolverFn,omitempty"`
	// EnumsAsTypes emits enums as string unions instead of TypeScript enums.
	EnumsAsTypes bool `yaml:"enumsAsTypes,omitempty" json:"enumsAsTypes,omitempty"`
	// AmbientModule is the module augmented with Resolvers and Loaders.
	AmbientModule string `yaml:"ambientModule,omitempty" json:"ambientModule,omitempty"`
	// Extra holds plugin specific settings of custom plugins.
	Extra map[string]any `yaml:"extra,omitempty" json:"extra,omitempty"`
}

// Clone returns a deep copy of the maps of c.
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}
	out := *c
	out.Scalars = maps.Clone(c.Scalars)
	out.LoaderTypeOverrides = maps.Clone(c.LoaderTypeOverrides)
	out.Extra = maps.Clone(c.Extra)
	return &out
}

// Normalize returns a copy of c with defaults applied. An unsupported naming
// convention is replaced with "keep", with a warning unless silent.
func (c *Config) Normalize(log logrus.FieldLogger, silent bool) *Config {
	out := c.Clone()
	if out.NamingConvention != "" && out.NamingConvention != NamingKeep {
		if !silent && log != nil {
			log.Warnf("namingConvention %q is not supported! it has been set to %q automatically.", out.NamingConvention, NamingKeep)
		}
	}
	out.NamingConvention = NamingKeep
	if out.ContextType == "" {
		out.ContextType = DefaultContextType
	}
	if out.CustomResolverFn == "" {
		out.CustomResolverFn = DefaultCustomResolverFn
	}
	if out.AmbientModule == "" {
		out.AmbientModule = DefaultAmbientModule
	}
	return out
}

// ScalarType returns the TypeScript type of a scalar.
func (c *Config) ScalarType(name string) string {
	if t, ok := c.Scalars[name]; ok && t != "" {
		return t
	}
	if t, ok := builtinScalars[name]; ok {
		return t
	}
	return "any"
}

var builtinScalars = map[string]string{
	"ID":      "string",
	"String":  "string",
	"Boolean": "boolean",
	"Int":     "number",
	"Float":   "number",
}

// builtinScalarOrder is the emission order of the built-in scalars.
var builtinScalarOrder = []string{"ID", "String", "Boolean", "Int", "Float"}
