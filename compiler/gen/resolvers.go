package gen

import (
	"context"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

const resolverHelpers = `export type ResolverTypeWrapper<T> = Promise<T> | T;
export type Resolver<TResult, TParent = {}, TContext = {}, TArgs = {}> = ResolverFn<TResult, TParent, TContext, TArgs>;
export type SubscriptionSubscribeFn<TResult, TParent, TContext, TArgs> = (parent: TParent, args: TArgs, context: TContext, info: GraphQLResolveInfo) => AsyncIterable<TResult> | Promise<AsyncIterable<TResult>>;
export type SubscriptionResolveFn<TResult, TParent, TContext, TArgs> = (parent: TParent, args: TArgs, context: TContext, info: GraphQLResolveInfo) => TResult | Promise<TResult>;
export interface SubscriptionSubscriberObject<TResult, TKey extends string, TParent, TContext, TArgs> {
subscribe: SubscriptionSubscribeFn<{ [key in TKey]: TResult }, TParent, TContext, TArgs>;
resolve?: SubscriptionResolveFn<TResult, { [key in TKey]: TResult }, TContext, TArgs>;
}
export interface SubscriptionResolverObject<TResult, TParent, TContext, TArgs> {
subscribe: SubscriptionSubscribeFn<any, TParent, TContext, TArgs>;
resolve: SubscriptionResolveFn<TResult, any, TContext, TArgs>;
}
export type SubscriptionObject<TResult, TKey extends string, TParent, TContext, TArgs> = SubscriptionSubscriberObject<TResult, TKey, TParent, TContext, TArgs> | SubscriptionResolverObject<TResult, TParent, TContext, TArgs>;
export type SubscriptionResolver<TResult, TKey extends string, TParent = {}, TContext = {}, TArgs = {}> = ((...args: any[]) => SubscriptionObject<TResult, TKey, TParent, TContext, TArgs>) | SubscriptionObject<TResult, TKey, TParent, TContext, TArgs>;
export type TypeResolveFn<TTypes, TParent = {}, TContext = {}> = (parent: TParent, context: TContext, info: GraphQLResolveInfo) => Maybe<TTypes> | Promise<Maybe<TTypes>>;
export type IsTypeOfResolverFn<T = {}, TContext = {}> = (obj: T, context: TContext, info: GraphQLResolveInfo) => boolean | Promise<boolean>;
export type NextResolverFn<T> = () => Promise<T>;
export type DirectiveResolverFn<TResult = {}, TParent = {}, TContext = {}, TArgs = {}> = (next: NextResolverFn<TResult>, parent: TParent, args: TArgs, context: TContext, info: GraphQLResolveInfo) => TResult | Promise<TResult>;
`

// builtinDirectives are never emitted as directive resolvers.
var builtinDirectives = map[string]bool{
	"include": true, "skip": true, "deprecated": true, "specifiedBy": true,
	"defer": true, "oneOf": true,
}

// resolversPlugin emits the resolver signatures of the schema.
func resolversPlugin(_ context.Context, in *Input) (*Output, error) {
	schema, cfg := in.Schema, in.Config
	roots := rootTypes(schema)
	out := &Output{Prepend: []string{`import { GraphQLResolveInfo } from "graphql";`}}

	e := &emitter{}
	e.linef("export type ResolverFn<TResult, TParent, TContext, TArgs> = %s;", cfg.CustomResolverFn)
	e.b.WriteString(resolverHelpers)

	types := userTypes(schema, ast.Object, ast.Interface, ast.Union, ast.InputObject, ast.Enum, ast.Scalar)
	builtins := builtinScalarOrder

	e.blank()
	e.line("/** Mapping between all available schema types and the resolvers types */")
	e.line("export type ResolversTypes = {")
	for _, name := range builtins {
		e.linef("%s: ResolverTypeWrapper<%s>;", name, scalarRef(name))
	}
	for _, def := range types {
		if isBuiltinScalar(def.Name) {
			continue
		}
		e.linef("%s: %s;", def.Name, resolversTypeOf(def, roots, true))
	}
	e.line("};")

	e.blank()
	e.line("/** Mapping between all available schema types and the resolvers parents */")
	e.line("export type ResolversParentTypes = {")
	for _, name := range builtins {
		e.linef("%s: %s;", name, scalarRef(name))
	}
	for _, def := range types {
		if isBuiltinScalar(def.Name) || def.Kind == ast.Enum {
			continue
		}
		e.linef("%s: %s;", def.Name, resolversTypeOf(def, roots, false))
	}
	e.line("};")

	directives := userDirectives(schema)
	input := Renderer{Named: func(name string) string { return typeRef(schema, name) }}
	for _, d := range directives {
		name := directiveTypeName(d.Name)
		e.blank()
		if len(d.Arguments) == 0 {
			e.linef("export type %sDirectiveArgs = {};", name)
		} else {
			e.linef("export type %sDirectiveArgs = {", name)
			for _, a := range d.Arguments {
				writeArgMember(e, a.Name, ShapeOf(a.Type), a.DefaultValue != nil, input)
			}
			e.line("};")
		}
		e.blank()
		e.linef("export type %[1]sDirectiveResolver<Result, Parent, ContextType = %[2]s, Args = %[1]sDirectiveArgs> = DirectiveResolverFn<Result, Parent, ContextType, Args>;", name, cfg.ContextType)
	}

	resolverType := Renderer{Named: func(name string) string { return `ResolversTypes["` + name + `"]` }}
	var entries []string
	for _, def := range types {
		switch def.Kind {
		case ast.Object, ast.Interface, ast.Union:
		case ast.Scalar:
			if isBuiltinScalar(def.Name) {
				continue
			}
			out.Prepend = append(out.Prepend, `import { GraphQLScalarType, GraphQLScalarTypeConfig } from "graphql";`)
			e.blank()
			e.linef(`export interface %sScalarConfig extends GraphQLScalarTypeConfig<ResolversTypes["%s"], any> {`, def.Name, def.Name)
			e.linef("name: %s;", quote(def.Name))
			e.line("}")
			entries = append(entries, def.Name+"?: GraphQLScalarType;")
			continue
		default:
			continue
		}

		e.blank()
		e.linef(`export type %[1]sResolvers<ContextType = %[2]s, ParentType extends ResolversParentTypes["%[1]s"] = ResolversParentTypes["%[1]s"]> = {`, def.Name, cfg.ContextType)
		if def.Kind != ast.Object {
			e.linef("__resolveType: TypeResolveFn<%s, ParentType, ContextType>;", unionOf(possibleTypes(schema, def.Name)))
		}
		if def.Kind != ast.Union {
			subscription := schema.Subscription != nil && def.Name == schema.Subscription.Name
			for _, f := range ownFields(def) {
				writeFieldResolver(e, def.Name, f, resolverType, subscription)
			}
		}
		if def.Kind == ast.Object && !roots[def.Name] {
			e.line("isTypeOf?: IsTypeOfResolverFn<ParentType, ContextType>;")
		}
		e.line("};")
		entries = append(entries, def.Name+"?: "+def.Name+"Resolvers<ContextType>;")
	}

	e.blank()
	e.linef("export type Resolvers<ContextType = %s> = {", cfg.ContextType)
	for _, entry := range entries {
		e.line(entry)
	}
	e.line("};")

	if len(directives) > 0 {
		e.blank()
		e.linef("export type DirectiveResolvers<ContextType = %s> = {", cfg.ContextType)
		for _, d := range directives {
			e.linef("%s?: %sDirectiveResolver<any, any, ContextType>;", d.Name, directiveTypeName(d.Name))
		}
		e.line("};")
	}
	out.Content = e.String()
	return out, nil
}

func isBuiltinScalar(name string) bool {
	_, ok := builtinScalars[name]
	return ok
}

// resolversTypeOf is the entry of a type in ResolversTypes (wrap) or
// ResolversParentTypes.
func resolversTypeOf(def *ast.Definition, roots map[string]bool, wrap bool) string {
	var t string
	switch {
	case roots[def.Name]:
		t = "{}"
	case def.Kind == ast.Scalar:
		t = scalarRef(def.Name)
	default:
		t = def.Name
	}
	if wrap && def.Kind != ast.InputObject {
		return "ResolverTypeWrapper<" + t + ">"
	}
	return t
}

// writeFieldResolver writes the resolver entry of one field.
func writeFieldResolver(e *emitter, typeName string, f *ast.FieldDefinition, r Renderer, subscription bool) {
	ret := r.Render(ShapeOf(f.Type))
	var args string
	if len(f.Arguments) > 0 {
		args = ", " + resolverArgs(typeName, f)
	}
	if subscription {
		if args == "" {
			args = ", {}"
		}
		e.linef("%s?: SubscriptionResolver<%s, %s, ParentType, ContextType%s>;", f.Name, ret, quote(f.Name), args)
		return
	}
	e.linef("%s?: Resolver<%s, ParentType, ContextType%s>;", f.Name, ret, args)
}

// resolverArgs requires the arguments that are non-null or have a default,
// and makes the whole arguments type partial when none is required.
func resolverArgs(typeName string, f *ast.FieldDefinition) string {
	var required []string
	for _, a := range f.Arguments {
		if a.Type.NonNull || a.DefaultValue != nil {
			required = append(required, quote(a.Name))
		}
	}
	name := argsTypeName(typeName, f.Name)
	if len(required) == 0 {
		return "Partial<" + name + ">"
	}
	return "RequireFields<" + name + ", " + strings.Join(required, " | ") + ">"
}

// userDirectives returns the directive definitions of the schema, excluding
// the built-in ones, sorted by name.
func userDirectives(schema *ast.Schema) []*ast.DirectiveDefinition {
	var out []*ast.DirectiveDefinition
	for name, d := range schema.Directives {
		if builtinDirectives[name] || (d.Position != nil && d.Position.Src != nil && d.Position.Src.BuiltIn) {
			continue
		}
		out = append(out, d)
	}
	sortByName(out, func(d *ast.DirectiveDefinition) string { return d.Name })
	return out
}

// directiveTypeName capitalizes the first letter of a directive name.
func directiveTypeName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
