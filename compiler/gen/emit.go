package gen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// emitter accumulates generated lines. Indentation is left to the
// formatter, so lines are written flush left.
type emitter struct {
	b strings.Builder
}

func (e *emitter) line(parts ...string) {
	for _, p := range parts {
		e.b.WriteString(p)
	}
	e.b.WriteByte('\n')
}

func (e *emitter) linef(format string, args ...any) {
	fmt.Fprintf(&e.b, format, args...)
	e.b.WriteByte('\n')
}

func (e *emitter) blank() {
	e.b.WriteByte('\n')
}

// doc writes a JSDoc comment holding desc, if any.
func (e *emitter) doc(desc string) {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return
	}
	desc = strings.ReplaceAll(desc, "*/", "*\\/")
	lines := strings.Split(desc, "\n")
	if len(lines) == 1 {
		e.line("/** ", lines[0], " */")
		return
	}
	e.line("/**")
	for _, l := range lines {
		e.line("* ", strings.TrimRight(l, " \t"))
	}
	e.line("*/")
}

func (e *emitter) String() string {
	return e.b.String()
}

// isBuiltin reports whether def comes from the GraphQL prelude.
func isBuiltin(def *ast.Definition) bool {
	return def.BuiltIn || (def.Position != nil && def.Position.Src != nil && def.Position.Src.BuiltIn) ||
		strings.HasPrefix(def.Name, "__")
}

// userTypes returns the types declared by the schema, excluding the prelude,
// sorted by name.
func userTypes(schema *ast.Schema, kinds ...ast.DefinitionKind) []*ast.Definition {
	var out []*ast.Definition
	for _, def := range schema.Types {
		if isBuiltin(def) {
			continue
		}
		if len(kinds) > 0 && !slices.Contains(kinds, def.Kind) {
			continue
		}
		out = append(out, def)
	}
	slices.SortFunc(out, func(a, b *ast.Definition) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// rootTypes returns the names of the operation root types.
func rootTypes(schema *ast.Schema) map[string]bool {
	roots := make(map[string]bool, 3)
	for _, def := range []*ast.Definition{schema.Query, schema.Mutation, schema.Subscription} {
		if def != nil {
			roots[def.Name] = true
		}
	}
	return roots
}

// possibleTypes returns the sorted object types of an abstract type.
func possibleTypes(schema *ast.Schema, name string) []string {
	var out []string
	for _, def := range schema.PossibleTypes[name] {
		out = append(out, def.Name)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// ownFields returns the fields of def without introspection fields.
func ownFields(def *ast.Definition) ast.FieldList {
	var out ast.FieldList
	for _, f := range def.Fields {
		if strings.HasPrefix(f.Name, "__") {
			continue
		}
		out = append(out, f)
	}
	return out
}

// argsTypeName is the name of the arguments type of a field.
func argsTypeName(typeName, fieldName string) string {
	return typeName + fieldName + "Args"
}

func quote(s string) string {
	return `"` + s + `"`
}

// unionOf renders names as a TypeScript union of string literals.
func unionOf(names []string) string {
	if len(names) == 0 {
		return "never"
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}
	return strings.Join(quoted, " | ")
}

// isScalar reports whether name is a scalar of schema.
func isScalar(schema *ast.Schema, name string) bool {
	def := schema.Types[name]
	return def != nil && def.Kind == ast.Scalar
}

func sortByName[T any](items []T, name func(T) string) {
	slices.SortFunc(items, func(a, b T) int { return strings.Compare(name(a), name(b)) })
}
