package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/gqlcodegen/compiler/gen"
)

// SDL is an executable server built from schema text and a resolver with
// graph-gophers/graphql-go. Replacing the schema rebuilds the executable
// schema from the printed SDL, so the resolver must serve the new schema.
type SDL struct {
	*state
	resolver any
	opts     []graphql.SchemaOpt

	mu   sync.RWMutex
	exec *graphql.Schema
}

// NewSDL parses the schema fragments and binds them to resolver.
func NewSDL(sources []string, resolver any, opts ...graphql.SchemaOpt) (*SDL, error) {
	schema, err := BuildSchema(sources)
	if err != nil {
		return nil, err
	}
	s := &SDL{state: newState(nil, true), resolver: resolver, opts: opts}
	if err := s.ReplaceSchema(schema); err != nil {
		return nil, err
	}
	return s, nil
}

// ReplaceSchema implements Server.
func (s *SDL) ReplaceSchema(schema *ast.Schema) error {
	if schema == nil {
		return ErrNilSchema
	}
	sdl, err := gen.PrintSchema(schema)
	if err != nil {
		return err
	}
	exec, err := graphql.ParseSchema(sdl, s.resolver, s.opts...)
	if err != nil {
		return fmt.Errorf("server: bind resolver: %w", err)
	}
	s.mu.Lock()
	s.exec = exec
	s.schema.Store(schema)
	s.mu.Unlock()
	return nil
}

func (s *SDL) executable() *graphql.Schema {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exec
}

// Exec runs a query against the live schema.
func (s *SDL) Exec(ctx context.Context, query, operationName string, variables map[string]any) *graphql.Response {
	return s.executable().Exec(ctx, query, operationName, variables)
}

// ServeHTTP serves GraphQL over HTTP POST.
func (s *SDL) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	(&relay.Handler{Schema: s.executable()}).ServeHTTP(w, r)
}
