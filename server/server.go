// Package server connects the generator to a running GraphQL server.
//
// The generator only needs to wait for the server to start, to know whether
// a GraphQL schema was registered, to read that schema and to replace it
// after the schema files changed. Server captures those four operations;
// Static, GQLGen and SDL implement it for a schema held in memory, a gqlgen
// executable schema and a graph-gophers/graphql-go schema.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/gqlcodegen/deferred"
)

// Server is the part of a GraphQL server the generator depends on.
type Server interface {
	// Ready blocks until the server finished starting.
	Ready(ctx context.Context) error
	// Registered reports whether a GraphQL schema is installed.
	Registered() bool
	// Schema returns the live schema.
	Schema() *ast.Schema
	// ReplaceSchema installs a new schema.
	ReplaceSchema(schema *ast.Schema) error
}

// Errors returned by the adapters.
var (
	ErrNilSchema = errors.New("server: schema is nil")
	ErrNoSources = errors.New("server: no schema sources")
	// ErrNoExecutableSchema is returned by GQLGen.Handler when the adapter
	// wraps no executable schema.
	ErrNoExecutableSchema = errors.New("server: no executable schema")
)

// BuildSchema parses and validates the schema fragments as one schema.
func BuildSchema(sources []string) (*ast.Schema, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	inputs := make([]*ast.Source, len(sources))
	for i, src := range sources {
		inputs[i] = &ast.Source{Name: fmt.Sprintf("source-%d.graphql", i), Input: src}
	}
	schema, err := gqlparser.LoadSchema(inputs...)
	if err != nil {
		return nil, fmt.Errorf("server: build schema: %w", err)
	}
	return schema, nil
}

// state holds what every adapter shares: the live schema and the ready
// signal.
type state struct {
	schema atomic.Pointer[ast.Schema]
	ready  *deferred.Deferred[struct{}]
}

func newState(schema *ast.Schema, ready bool) *state {
	s := &state{ready: deferred.New[struct{}]()}
	if schema != nil {
		s.schema.Store(schema)
	}
	if ready {
		s.ready.Resolve(struct{}{})
	}
	return s
}

// Ready implements Server.
func (s *state) Ready(ctx context.Context) error {
	_, err := s.ready.Wait(ctx)
	return err
}

// Registered implements Server.
func (s *state) Registered() bool {
	return s.schema.Load() != nil
}

// Schema implements Server.
func (s *state) Schema() *ast.Schema {
	return s.schema.Load()
}

// MarkReady releases Ready waiters. It reports false when the server was
// already settled.
func (s *state) MarkReady() bool {
	return s.ready.Resolve(struct{}{})
}

// Fail makes Ready return err.
func (s *state) Fail(err error) bool {
	return s.ready.Reject(err)
}
