package gen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
)

// typedDocumentPlugin emits one typed document constant per named operation
// and per fragment. Each constant holds the JSON AST of the definition and
// the fragments it spreads.
func typedDocumentPlugin(_ context.Context, in *Input) (*Output, error) {
	fragments := fragmentIndex(in.Documents)
	out := &Output{Prepend: []string{`import { TypedDocumentNode as DocumentNode } from "@graphql-typed-document-node/core";`}}
	e := &emitter{}
	for _, d := range in.Documents {
		for _, f := range d.Query.Fragments {
			used, err := usedFragments(f.SelectionSet, fragments, map[string]bool{f.Name: true})
			if err != nil {
				return nil, fmt.Errorf("fragment %s: %w", f.Name, err)
			}
			all := append([]*ast.FragmentDefinition{f}, used...)
			text, err := documentJSON(nil, all)
			if err != nil {
				return nil, err
			}
			e.blank()
			e.linef("export const %sFragmentDoc = %s as unknown as DocumentNode<%s, unknown>;", f.Name, text, FragmentTypeName(f.Name))
		}
		for _, op := range d.Query.Operations {
			if op.Name == "" {
				continue
			}
			used, err := usedFragments(op.SelectionSet, fragments, map[string]bool{})
			if err != nil {
				return nil, fmt.Errorf("operation %s: %w", op.Name, err)
			}
			text, err := documentJSON(op, used)
			if err != nil {
				return nil, err
			}
			name := OperationTypeName(op)
			e.blank()
			e.linef("export const %sDocument = %s as unknown as DocumentNode<%s, %sVariables>;", op.Name, text, name, name)
		}
	}
	out.Content = e.String()
	return out, nil
}

// usedFragments returns the fragments spread by set, transitively, in order
// of first use.
func usedFragments(set ast.SelectionSet, index map[string]*ast.FragmentDefinition, seen map[string]bool) ([]*ast.FragmentDefinition, error) {
	var out []*ast.FragmentDefinition
	var walk func(ast.SelectionSet) error
	walk = func(set ast.SelectionSet) error {
		for _, s := range set {
			switch s := s.(type) {
			case *ast.Field:
				if err := walk(s.SelectionSet); err != nil {
					return err
				}
			case *ast.InlineFragment:
				if err := walk(s.SelectionSet); err != nil {
					return err
				}
			case *ast.FragmentSpread:
				if seen[s.Name] {
					continue
				}
				f, ok := index[s.Name]
				if !ok {
					return fmt.Errorf("unknown fragment %q", s.Name)
				}
				seen[s.Name] = true
				out = append(out, f)
				if err := walk(f.SelectionSet); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return out, walk(set)
}

// documentJSON renders a Document node, in the graphql-js AST layout, holding
// op (if any) and fragments. loc.source.body is the printed document.
func documentJSON(op *ast.OperationDefinition, fragments []*ast.FragmentDefinition) (string, error) {
	var defs []any
	if op != nil {
		defs = append(defs, operationNode(op))
	}
	for _, f := range fragments {
		defs = append(defs, fragmentNode(f))
	}
	body := PrintDefinitions(op, fragments)
	doc := map[string]any{
		"kind":        "Document",
		"definitions": defs,
		"loc": map[string]any{
			"start": 0,
			"end":   len(body),
			"source": map[string]any{
				"body":           body,
				"name":           "GraphQL request",
				"locationOffset": map[string]any{"line": 1, "column": 1},
			},
		},
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return "", NewGenerationError("documents", PluginTypedDocuments, "encoding document", err)
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

func nameNode(name string) map[string]any {
	return map[string]any{"kind": "Name", "value": name}
}

func operationNode(op *ast.OperationDefinition) map[string]any {
	n := map[string]any{
		"kind":                "OperationDefinition",
		"operation":           string(op.Operation),
		"variableDefinitions": variableNodes(op.VariableDefinitions),
		"directives":          directiveNodes(op.Directives),
		"selectionSet":        selectionSetNode(op.SelectionSet),
	}
	if op.Name != "" {
		n["name"] = nameNode(op.Name)
	}
	return n
}

func fragmentNode(f *ast.FragmentDefinition) map[string]any {
	return map[string]any{
		"kind":          "FragmentDefinition",
		"name":          nameNode(f.Name),
		"typeCondition": map[string]any{"kind": "NamedType", "name": nameNode(f.TypeCondition)},
		"directives":    directiveNodes(f.Directives),
		"selectionSet":  selectionSetNode(f.SelectionSet),
	}
}

func variableNodes(vars ast.VariableDefinitionList) []any {
	out := make([]any, 0, len(vars))
	for _, v := range vars {
		n := map[string]any{
			"kind":       "VariableDefinition",
			"variable":   map[string]any{"kind": "Variable", "name": nameNode(v.Variable)},
			"type":       typeNode(v.Type),
			"directives": directiveNodes(v.Directives),
		}
		if v.DefaultValue != nil {
			n["defaultValue"] = valueNode(v.DefaultValue)
		}
		out = append(out, n)
	}
	return out
}

func typeNode(t *ast.Type) map[string]any {
	var n map[string]any
	if t.Elem != nil {
		n = map[string]any{"kind": "ListType", "type": typeNode(t.Elem)}
	} else {
		n = map[string]any{"kind": "NamedType", "name": nameNode(t.NamedType)}
	}
	if t.NonNull {
		return map[string]any{"kind": "NonNullType", "type": n}
	}
	return n
}

func selectionSetNode(set ast.SelectionSet) map[string]any {
	sels := make([]any, 0, len(set))
	for _, s := range set {
		switch s := s.(type) {
		case *ast.Field:
			n := map[string]any{
				"kind":       "Field",
				"name":       nameNode(s.Name),
				"arguments":  argumentNodes(s.Arguments),
				"directives": directiveNodes(s.Directives),
			}
			if s.Alias != "" && s.Alias != s.Name {
				n["alias"] = nameNode(s.Alias)
			}
			if len(s.SelectionSet) > 0 {
				n["selectionSet"] = selectionSetNode(s.SelectionSet)
			}
			sels = append(sels, n)
		case *ast.FragmentSpread:
			sels = append(sels, map[string]any{
				"kind":       "FragmentSpread",
				"name":       nameNode(s.Name),
				"directives": directiveNodes(s.Directives),
			})
		case *ast.InlineFragment:
			n := map[string]any{
				"kind":         "InlineFragment",
				"directives":   directiveNodes(s.Directives),
				"selectionSet": selectionSetNode(s.SelectionSet),
			}
			if s.TypeCondition != "" {
				n["typeCondition"] = map[string]any{"kind": "NamedType", "name": nameNode(s.TypeCondition)}
			}
			sels = append(sels, n)
		}
	}
	return map[string]any{"kind": "SelectionSet", "selections": sels}
}

func argumentNodes(args ast.ArgumentList) []any {
	out := make([]any, 0, len(args))
	for _, a := range args {
		out = append(out, map[string]any{"kind": "Argument", "name": nameNode(a.Name), "value": valueNode(a.Value)})
	}
	return out
}

func directiveNodes(dirs ast.DirectiveList) []any {
	out := make([]any, 0, len(dirs))
	for _, d := range dirs {
		out = append(out, map[string]any{"kind": "Directive", "name": nameNode(d.Name), "arguments": argumentNodes(d.Arguments)})
	}
	return out
}

func valueNode(v *ast.Value) map[string]any {
	switch v.Kind {
	case ast.Variable:
		return map[string]any{"kind": "Variable", "name": nameNode(v.Raw)}
	case ast.IntValue:
		return map[string]any{"kind": "IntValue", "value": v.Raw}
	case ast.FloatValue:
		return map[string]any{"kind": "FloatValue", "value": v.Raw}
	case ast.StringValue, ast.BlockValue:
		return map[string]any{"kind": "StringValue", "value": v.Raw, "block": v.Kind == ast.BlockValue}
	case ast.BooleanValue:
		return map[string]any{"kind": "BooleanValue", "value": v.Raw == "true"}
	case ast.EnumValue:
		return map[string]any{"kind": "EnumValue", "value": v.Raw}
	case ast.ListValue:
		values := make([]any, len(v.Children))
		for i, c := range v.Children {
			values[i] = valueNode(c.Value)
		}
		return map[string]any{"kind": "ListValue", "values": values}
	case ast.ObjectValue:
		fields := make([]any, len(v.Children))
		for i, c := range v.Children {
			fields[i] = map[string]any{"kind": "ObjectField", "name": nameNode(c.Name), "value": valueNode(c.Value)}
		}
		return map[string]any{"kind": "ObjectValue", "fields": fields}
	default:
		return map[string]any{"kind": "NullValue"}
	}
}
