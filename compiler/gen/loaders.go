package gen

import (
	"context"

	"github.com/vektah/gqlparser/v2/ast"
)

const loaderHelpers = `export type Loader<TReturn, TObj, TParams, TContext> = (
queries: Array<{
obj: DeepPartial<TObj>;
params: TParams;
}>,
context: TContext & {
reply: FastifyReply;
}
) => Array<DeepPartial<TReturn>> | Promise<Array<DeepPartial<TReturn>>>;
export type LoaderResolver<TReturn, TObj, TParams, TContext> =
| Loader<TReturn, TObj, TParams, TContext>
| {
loader: Loader<TReturn, TObj, TParams, TContext>;
opts?: {
cache?: boolean;
};
};
`

// LoaderField is the loader signature inferred for one field.
type LoaderField struct {
	Name   string
	Return string
	Params string
}

// LoaderType groups the loader fields of one object type.
type LoaderType struct {
	Name   string
	Fields []LoaderField
}

// InferLoaders walks the object types of schema, except the root types, and
// returns the loader signature of each field. Types are sorted by name and
// fields keep their declaration order.
func InferLoaders(schema *ast.Schema, cfg *Config) []LoaderType {
	roots := rootTypes(schema)
	r := Renderer{Named: func(name string) string { return loaderTypeRef(schema, cfg, name) }}
	var out []LoaderType
	for _, def := range userTypes(schema, ast.Object) {
		if roots[def.Name] {
			continue
		}
		lt := LoaderType{Name: def.Name}
		for _, f := range ownFields(def) {
			params := "{}"
			if len(f.Arguments) > 0 {
				params = argsTypeName(def.Name, f.Name)
			}
			lt.Fields = append(lt.Fields, LoaderField{
				Name:   f.Name,
				Return: r.Render(ShapeOf(f.Type)),
				Params: params,
			})
		}
		out = append(out, lt)
	}
	return out
}

// loaderTypeRef references scalars through Scalars and other types through
// the overrides and the namespace prefix.
func loaderTypeRef(schema *ast.Schema, cfg *Config, name string) string {
	if isScalar(schema, name) {
		return scalarRef(name)
	}
	if override, ok := cfg.LoaderTypeOverrides[name]; ok && override != "" {
		return override
	}
	if cfg.NamespacedImportName != "" {
		return cfg.NamespacedImportName + "." + name
	}
	return name
}

// loadersPlugin emits the Loaders interface. The interface is always
// declared, empty when no type has loaders.
func loadersPlugin(_ context.Context, in *Input) (*Output, error) {
	e := &emitter{}
	e.b.WriteString(loaderHelpers)
	e.blank()
	e.linef("export interface Loaders<TContext = %s & { reply: FastifyReply }> {", in.Config.ContextType)
	for _, lt := range InferLoaders(in.Schema, in.Config) {
		e.linef("%s?: {", lt.Name)
		for _, f := range lt.Fields {
			e.linef("%s?: LoaderResolver<%s, %s, %s, TContext>;", f.Name, f.Return, lt.Name, f.Params)
		}
		e.line("};")
	}
	e.line("}")
	return &Output{Content: e.String()}, nil
}
