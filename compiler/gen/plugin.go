package gen

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/gqlcodegen/deferred"
)

// Names of the built-in plugins.
const (
	PluginTypeScript     = "typescript"
	PluginResolvers      = "typescript-resolvers"
	PluginLoaders        = "mercurius-loaders"
	PluginOperations     = "typescript-operations"
	PluginTypedDocuments = "typed-document-node"
)

// Document is an operation document validated against the schema.
type Document struct {
	Path   string
	Source string
	Query  *ast.QueryDocument
}

// Input is passed to every plugin of a pass.
type Input struct {
	Schema    *ast.Schema
	Documents []*Document
	Config    *Config
	Logger    logrus.FieldLogger
}

// Output is the contribution of one plugin. Prepend lines are hoisted above
// every plugin content and deduplicated.
type Output struct {
	Prepend []string
	Content string
	Append  []string
}

// Plugin emits one part of the generated file.
type Plugin interface {
	Name() string
	Generate(ctx context.Context, in *Input) (*Output, error)
}

// PluginFunc adapts a function to the Plugin interface.
type PluginFunc struct {
	PluginName string
	Fn         func(ctx context.Context, in *Input) (*Output, error)
}

// Name implements Plugin.
func (p PluginFunc) Name() string { return p.PluginName }

// Generate implements Plugin.
func (p PluginFunc) Generate(ctx context.Context, in *Input) (*Output, error) {
	return p.Fn(ctx, in)
}

// Factory builds a plugin. It runs at most once per registration.
type Factory func(ctx context.Context) (Plugin, error)

// Registry maps plugin names to lazily built plugins.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]*deferred.Lazy[Plugin]
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]*deferred.Lazy[Plugin])}
}

// Register adds or replaces the plugin built by factory under name.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[name] = deferred.NewLazy(func(ctx context.Context) (Plugin, error) {
		return factory(ctx)
	})
}

// Lookup builds the plugin registered under name on first use.
func (r *Registry) Lookup(ctx context.Context, name string) (Plugin, error) {
	r.mu.RLock()
	lazy, ok := r.plugins[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlugin, name)
	}
	return lazy.Get(ctx)
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.plugins))
}

var defaultRegistry = NewRegistry()

func init() {
	for name, fn := range map[string]func(context.Context, *Input) (*Output, error){
		PluginTypeScript:     typescriptPlugin,
		PluginResolvers:      resolversPlugin,
		PluginLoaders:        loadersPlugin,
		PluginOperations:     operationsPlugin,
		PluginTypedDocuments: typedDocumentPlugin,
	} {
		Register(name, func(context.Context) (Plugin, error) {
			return PluginFunc{PluginName: name, Fn: fn}, nil
		})
	}
}

// Register adds a plugin to the default registry.
func Register(name string, factory Factory) {
	defaultRegistry.Register(name, factory)
}

// LookupPlugin returns a plugin of the default registry.
func LookupPlugin(ctx context.Context, name string) (Plugin, error) {
	return defaultRegistry.Lookup(ctx, name)
}

// DefaultRegistry returns the registry holding the built-in plugins.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Pipeline returns the ordered built-in plugin names of a pass.
func Pipeline(withOperations bool) []string {
	names := []string{PluginTypeScript, PluginResolvers, PluginLoaders}
	if withOperations {
		names = append(names, PluginOperations, PluginTypedDocuments)
	}
	return names
}
