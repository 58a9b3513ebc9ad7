// Package gen generates TypeScript declarations for a Mercurius server from a
// GraphQL schema and, optionally, operation documents.
//
// # Architecture
//
// A generation pass runs a fixed pipeline of plugins:
//
//	*ast.Schema (printed with directives, re-parsed)
//	        ↓
//	   typescript            base types, Scalars, args, enums, unions
//	        ↓
//	   typescript-resolvers  resolver signatures and Resolvers map
//	        ↓
//	   mercurius-loaders     Loaders interface
//	        ↓
//	   typescript-operations result and variables types   (operations only)
//	        ↓
//	   typed-document-node   <Name>Document constants     (operations only)
//	        ↓
//	   preamble + imports + contents + ambient module block
//	        ↓
//	   Formatter
//
// Plugins are looked up by name in a registry and built lazily on first use.
// Their outputs are concatenated in pipeline order, so the text depends only
// on the schema, the documents and the Config.
//
// # Usage
//
//	code, err := gen.Generate(ctx, schema,
//	    gen.WithConfig(&gen.Config{Scalars: map[string]string{"DateTime": "string"}}),
//	    gen.WithOperations("graphql/operations/*.graphql"),
//	)
//
// # Key Types
//
//   - Generator: runs a pass with a fixed set of options
//   - Config: plugin configuration shared by every plugin
//   - Plugin: one emitter of the pipeline
//   - Shape: nullability and list structure of a field type
//   - Formatter: final formatting step
//   - Writer: renders, formats and writes one target file when it changed
package gen
