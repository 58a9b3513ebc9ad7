package gen

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/go-openapi/inflect"
	"github.com/vektah/gqlparser/v2/ast"
)

// OperationTypeName is the result type name of an operation, for example
// AQuery for "query A".
func OperationTypeName(op *ast.OperationDefinition) string {
	return op.Name + inflect.Capitalize(string(op.Operation))
}

// FragmentTypeName is the type name of a fragment.
func FragmentTypeName(name string) string {
	return name + "Fragment"
}

// fragmentIndex collects the fragments of every document by name.
func fragmentIndex(docs []*Document) map[string]*ast.FragmentDefinition {
	out := make(map[string]*ast.FragmentDefinition)
	for _, d := range docs {
		for _, f := range d.Query.Fragments {
			out[f.Name] = f
		}
	}
	return out
}

// operationsPlugin emits the variables and result types of every named
// operation and the type of every fragment.
func operationsPlugin(_ context.Context, in *Input) (*Output, error) {
	schema := in.Schema
	fragments := fragmentIndex(in.Documents)
	sel := &selectionPrinter{schema: schema, fragments: fragments}
	vars := Renderer{Named: func(name string) string { return typeRef(schema, name) }, Maybe: "InputMaybe"}

	e := &emitter{}
	for _, d := range in.Documents {
		for _, f := range d.Query.Fragments {
			def := schema.Types[f.TypeCondition]
			if def == nil {
				return nil, fmt.Errorf("fragment %s: unknown type %s", f.Name, f.TypeCondition)
			}
			e.blank()
			e.linef("export type %s = %s;", FragmentTypeName(f.Name), sel.object(def, f.SelectionSet))
		}
		for _, op := range d.Query.Operations {
			if op.Name == "" {
				if in.Logger != nil {
					in.Logger.WithField("document", d.Path).Warn("skipping anonymous operation")
				}
				continue
			}
			root := rootFor(schema, op.Operation)
			if root == nil {
				return nil, fmt.Errorf("operation %s: schema has no %s type", op.Name, op.Operation)
			}
			name := OperationTypeName(op)
			e.blank()
			if len(op.VariableDefinitions) == 0 {
				e.linef("export type %sVariables = Exact<{ [key: string]: never; }>;", name)
			} else {
				e.linef("export type %sVariables = Exact<{", name)
				for _, v := range op.VariableDefinitions {
					writeArgMember(e, v.Variable, ShapeOf(v.Type), v.DefaultValue != nil, vars)
				}
				e.line("}>;")
			}
			e.blank()
			e.linef("export type %s = %s;", name, sel.object(root, op.SelectionSet))
		}
	}
	return &Output{Content: e.String()}, nil
}

func rootFor(schema *ast.Schema, op ast.Operation) *ast.Definition {
	switch op {
	case ast.Mutation:
		return schema.Mutation
	case ast.Subscription:
		return schema.Subscription
	default:
		return schema.Query
	}
}

// selectionPrinter renders selection sets as TypeScript object types.
type selectionPrinter struct {
	schema    *ast.Schema
	fragments map[string]*ast.FragmentDefinition
}

// selectedField is a field merged by response key.
type selectedField struct {
	key   string
	field *ast.FieldDefinition
	name  string
	sets  []ast.SelectionSet
}

// object renders the selection of def. Abstract types render as a union of
// the object shapes of their possible types.
func (p *selectionPrinter) object(def *ast.Definition, set ast.SelectionSet) string {
	if def.IsAbstractType() {
		names := possibleTypes(p.schema, def.Name)
		shapes := make([]string, 0, len(names))
		for _, n := range names {
			shapes = append(shapes, p.concrete(p.schema.Types[n], def, set))
		}
		shapes = slices.Compact(shapes)
		switch len(shapes) {
		case 0:
			return "never"
		case 1:
			return shapes[0]
		}
		return "(" + strings.Join(shapes, " | ") + ")"
	}
	return p.concrete(def, def, set)
}

// concrete renders set for the object type obj, selected on parent.
func (p *selectionPrinter) concrete(obj, parent *ast.Definition, set ast.SelectionSet) string {
	fields := p.collect(obj, parent, set, nil)
	parts := []string{"__typename?: " + quote(obj.Name)}
	for _, f := range fields {
		if f.name == "__typename" {
			parts[0] = "__typename: " + quote(obj.Name)
			continue
		}
		if f.field == nil {
			continue
		}
		s := ShapeOf(f.field.Type)
		r := Renderer{Named: func(name string) string { return p.leaf(name, f.sets) }}
		if s.Nullable {
			parts = append(parts, f.key+"?: "+r.Render(s))
		} else {
			parts = append(parts, f.key+": "+r.Render(s))
		}
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// leaf renders the named type at the bottom of a selected field.
func (p *selectionPrinter) leaf(name string, sets []ast.SelectionSet) string {
	def := p.schema.Types[name]
	if def == nil {
		return "any"
	}
	switch def.Kind {
	case ast.Scalar:
		return scalarRef(name)
	case ast.Enum:
		return name
	}
	var merged ast.SelectionSet
	for _, s := range sets {
		merged = append(merged, s...)
	}
	return p.object(def, merged)
}

// collect flattens fields, inline fragments and fragment spreads that apply
// to obj, merging fields with the same response key.
func (p *selectionPrinter) collect(obj, parent *ast.Definition, set ast.SelectionSet, acc []*selectedField) []*selectedField {
	for _, s := range set {
		switch s := s.(type) {
		case *ast.Field:
			key := s.Alias
			if key == "" {
				key = s.Name
			}
			idx := slices.IndexFunc(acc, func(f *selectedField) bool { return f.key == key })
			if idx >= 0 {
				acc[idx].sets = append(acc[idx].sets, s.SelectionSet)
				continue
			}
			acc = append(acc, &selectedField{
				key:   key,
				name:  s.Name,
				field: fieldOf(obj, parent, s.Name),
				sets:  []ast.SelectionSet{s.SelectionSet},
			})
		case *ast.InlineFragment:
			if p.applies(obj, s.TypeCondition) {
				acc = p.collect(obj, parent, s.SelectionSet, acc)
			}
		case *ast.FragmentSpread:
			frag := p.fragments[s.Name]
			if frag != nil && p.applies(obj, frag.TypeCondition) {
				acc = p.collect(obj, parent, frag.SelectionSet, acc)
			}
		}
	}
	return acc
}

// applies reports whether a type condition matches the object type obj.
func (p *selectionPrinter) applies(obj *ast.Definition, cond string) bool {
	if cond == "" || cond == obj.Name {
		return true
	}
	for _, def := range p.schema.PossibleTypes[cond] {
		if def.Name == obj.Name {
			return true
		}
	}
	return false
}

func fieldOf(obj, parent *ast.Definition, name string) *ast.FieldDefinition {
	if f := obj.Fields.ForName(name); f != nil {
		return f
	}
	return parent.Fields.ForName(name)
}
