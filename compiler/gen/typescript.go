package gen

import (
	"context"
	"slices"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// typescriptHelpers are the utility types every generated file relies on.
const typescriptHelpers = `export type Maybe<T> = T | null;
export type InputMaybe<T> = Maybe<T>;
export type Exact<T extends { [key: string]: unknown }> = { [K in keyof T]: T[K] };
export type MakeOptional<T, K extends keyof T> = Omit<T, K> & { [SubKey in K]?: Maybe<T[SubKey]> };
export type MakeMaybe<T, K extends keyof T> = Omit<T, K> & { [SubKey in K]: Maybe<T[SubKey]> };
export type RequireFields<T, K extends keyof T> = Omit<T, K> & { [P in K]-?: NonNullable<T[P]> };
`

// typescriptPlugin emits the base types of the schema.
func typescriptPlugin(_ context.Context, in *Input) (*Output, error) {
	schema, cfg := in.Schema, in.Config
	e := &emitter{}
	e.b.WriteString(typescriptHelpers)

	e.line("/** All built-in and custom scalars, mapped to their actual values */")
	e.line("export type Scalars = {")
	for _, name := range builtinScalarOrder {
		e.linef("%s: %s;", name, cfg.ScalarType(name))
	}
	for _, def := range userTypes(schema, ast.Scalar) {
		if slices.Contains(builtinScalarOrder, def.Name) {
			continue
		}
		e.linef("%s: %s;", def.Name, cfg.ScalarType(def.Name))
	}
	e.line("};")

	output := Renderer{Named: func(name string) string { return typeRef(schema, name) }}
	input := Renderer{Named: output.Named, Maybe: "InputMaybe"}

	for _, def := range userTypes(schema, ast.Object, ast.Interface, ast.InputObject, ast.Enum, ast.Union) {
		e.blank()
		e.doc(def.Description)
		switch def.Kind {
		case ast.Object, ast.Interface:
			e.linef("export type %s = {", def.Name)
			if def.Kind == ast.Object {
				e.linef("__typename?: %s;", quote(def.Name))
			}
			for _, f := range ownFields(def) {
				e.doc(f.Description)
				writeMember(e, f.Name, ShapeOf(f.Type), output)
			}
			e.line("};")
			for _, f := range ownFields(def) {
				if len(f.Arguments) == 0 {
					continue
				}
				e.blank()
				e.linef("export type %s = {", argsTypeName(def.Name, f.Name))
				for _, a := range f.Arguments {
					e.doc(a.Description)
					writeArgMember(e, a.Name, ShapeOf(a.Type), a.DefaultValue != nil, input)
				}
				e.line("};")
			}
		case ast.InputObject:
			e.linef("export type %s = {", def.Name)
			for _, f := range def.Fields {
				e.doc(f.Description)
				writeArgMember(e, f.Name, ShapeOf(f.Type), f.DefaultValue != nil, input)
			}
			e.line("};")
		case ast.Enum:
			writeEnum(e, def, cfg.EnumsAsTypes)
		case ast.Union:
			e.linef("export type %s = %s;", def.Name, strings.Join(def.Types, " | "))
		}
	}
	return &Output{Content: e.String()}, nil
}

// typeRef renders a named type for the base types.
func typeRef(schema *ast.Schema, name string) string {
	if isScalar(schema, name) {
		return scalarRef(name)
	}
	return name
}

// writeMember writes an output field; nullable fields are optional.
func writeMember(e *emitter, name string, s *Shape, r Renderer) {
	if s.Nullable {
		e.linef("%s?: %s;", name, r.Render(s))
		return
	}
	e.linef("%s: %s;", name, r.Render(s))
}

// writeArgMember writes an argument or input field. Nullable members and
// members with a default are optional.
func writeArgMember(e *emitter, name string, s *Shape, hasDefault bool, r Renderer) {
	if s.Nullable || hasDefault {
		e.linef("%s?: %s;", name, r.Render(s))
		return
	}
	e.linef("%s: %s;", name, r.Render(s))
}

func writeEnum(e *emitter, def *ast.Definition, asTypes bool) {
	if asTypes {
		values := make([]string, len(def.EnumValues))
		for i, v := range def.EnumValues {
			values[i] = v.Name
		}
		e.linef("export type %s = %s;", def.Name, unionOf(values))
		return
	}
	e.linef("export enum %s {", def.Name)
	for i, v := range def.EnumValues {
		e.doc(v.Description)
		sep := ","
		if i == len(def.EnumValues)-1 {
			sep = ""
		}
		e.linef("%s = %s%s", v.Name, quote(v.Name), sep)
	}
	e.line("}")
}
