package server

import (
	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/vektah/gqlparser/v2/ast"
)

// GQLGen adapts a gqlgen executable schema. After ReplaceSchema, requests
// are validated against the new schema while resolvers stay the same.
type GQLGen struct {
	*state
	exec graphql.ExecutableSchema
}

// NewGQLGen wraps es. The server starts ready.
func NewGQLGen(es graphql.ExecutableSchema) *GQLGen {
	var schema *ast.Schema
	if es != nil {
		schema = es.Schema()
	}
	return &GQLGen{state: newState(schema, true), exec: es}
}

// ReplaceSchema implements Server.
func (g *GQLGen) ReplaceSchema(schema *ast.Schema) error {
	if schema == nil {
		return ErrNilSchema
	}
	g.schema.Store(schema)
	return nil
}

// Executable returns an executable schema reporting the live schema.
func (g *GQLGen) Executable() graphql.ExecutableSchema {
	return &liveSchema{ExecutableSchema: g.exec, g: g}
}

// Handler returns a gqlgen server accepting POST requests.
func (g *GQLGen) Handler() (*handler.Server, error) {
	if g.exec == nil {
		return nil, ErrNoExecutableSchema
	}
	srv := handler.New(g.Executable())
	srv.AddTransport(transport.POST{})
	return srv, nil
}

type liveSchema struct {
	graphql.ExecutableSchema
	g *GQLGen
}

func (l *liveSchema) Schema() *ast.Schema {
	return l.g.Schema()
}
