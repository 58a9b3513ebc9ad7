// Package gqlcodegen generates TypeScript resolver, loader and operation
// types for a Mercurius-style GraphQL server and keeps them in sync with the
// schema and operation files.
//
// # Architecture
//
// The package wires the building blocks together:
//
//   - compiler/load discovers schema fragments, persists snapshots and
//     watches the schema files.
//   - compiler/gen runs the plugin pipeline and writes the target file only
//     when its content changed.
//   - watch runs filesystem sessions; a watch.Manager keeps one session per
//     kind so repeated initialization does not leak watchers.
//   - server abstracts the running GraphQL server.
//
// # Usage
//
//	srv, err := server.FromSources(sources)
//	if err != nil {
//	    return err
//	}
//	res, err := gqlcodegen.Codegen(ctx, srv,
//	    gqlcodegen.WithTargetPath("src/graphql/generated.ts"),
//	    gqlcodegen.WithOperations("src/graphql/operations/*.graphql"),
//	    gqlcodegen.WithWatch(gqlcodegen.WatchOptions{Manager: manager}),
//	)
//	if err != nil {
//	    return err
//	}
//	defer res.Close()
//
// WatchSchema adds schema hot reload: each change of the schema files
// rebuilds the schema, installs it on the server and regenerates the code.
//
// # Key Types
//
//   - Options / Option: configuration of Codegen and WatchSchema
//   - Result: the generated file and the operations watcher
//   - TaskError: failure of one task of a pass
package gqlcodegen
