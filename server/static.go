package server

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// Static is a Server holding a schema in memory. It serves the CLI, which
// generates code without running a GraphQL server.
type Static struct {
	*state
}

// NewStatic returns a ready Static server. A nil schema yields a server
// with no GraphQL registered.
func NewStatic(schema *ast.Schema) *Static {
	return &Static{state: newState(schema, true)}
}

// NewPending returns a Static server whose Ready blocks until MarkReady or
// Fail is called.
func NewPending(schema *ast.Schema) *Static {
	return &Static{state: newState(schema, false)}
}

// FromSources builds the schema from fragments and returns a ready Static
// server.
func FromSources(sources []string) (*Static, error) {
	schema, err := BuildSchema(sources)
	if err != nil {
		return nil, err
	}
	return NewStatic(schema), nil
}

// ReplaceSchema implements Server.
func (s *Static) ReplaceSchema(schema *ast.Schema) error {
	if schema == nil {
		return ErrNilSchema
	}
	s.schema.Store(schema)
	return nil
}
