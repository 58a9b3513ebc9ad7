// Command gqlcodegen generates TypeScript resolver, loader and operation
// types from GraphQL schema files.
package main

import (
	"context"
	"os"

	"github.com/syssam/gqlcodegen/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
