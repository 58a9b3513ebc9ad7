package gen

import (
	"bytes"
	"context"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"

	"github.com/syssam/gqlcodegen/internal/fileutil"
)

// DefaultOutputSchemaPath is the target of WriteOutputSchema when no path is
// given.
const DefaultOutputSchemaPath = "./schema.gql"

// PrintSchema prints schema as SDL, directives included.
func PrintSchema(schema *ast.Schema) (string, error) {
	if schema == nil {
		return "", NewSchemaError("schema is nil", nil)
	}
	var buf bytes.Buffer
	formatter.NewFormatter(&buf, formatter.WithIndent("  ")).FormatSchema(schema)
	return buf.String(), nil
}

// Reparse prints schema and parses it again, so plugins work on a schema
// owned by the pass.
func Reparse(schema *ast.Schema) (*ast.Schema, error) {
	sdl, err := PrintSchema(schema)
	if err != nil {
		return nil, err
	}
	out, gqlErr := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: sdl})
	if gqlErr != nil {
		return nil, NewSchemaError("re-parse printed schema", gqlErr)
	}
	return out, nil
}

// WriteOutputSchema prints schema, formats it with the graphql parser and
// writes it to path when its content changed. It returns the absolute path.
func WriteOutputSchema(ctx context.Context, schema *ast.Schema, path string, f Formatter) (string, error) {
	if path == "" {
		path = DefaultOutputSchemaPath
	}
	sdl, err := PrintSchema(schema)
	if err != nil {
		return "", err
	}
	if f != nil {
		if sdl, err = f.Format(ctx, sdl, ParserGraphQL); err != nil {
			return "", NewGenerationError("format", "", "output schema", err)
		}
	}
	abs, _, err := fileutil.WriteStringIfChanged(path, sdl)
	return abs, err
}
