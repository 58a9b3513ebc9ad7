package gen

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// PrintOperation prints an operation in the canonical GraphQL layout: two
// space indentation, one selection per line and a trailing newline.
func PrintOperation(op *ast.OperationDefinition) string {
	var p printer
	p.operation(op)
	return p.String() + "\n"
}

// PrintFragment prints a fragment definition in the canonical layout.
func PrintFragment(f *ast.FragmentDefinition) string {
	var p printer
	p.fragment(f)
	return p.String() + "\n"
}

// PrintDefinitions prints an operation followed by the fragments it uses,
// separated by blank lines.
func PrintDefinitions(op *ast.OperationDefinition, fragments []*ast.FragmentDefinition) string {
	var p printer
	if op != nil {
		p.operation(op)
	}
	for _, f := range fragments {
		if p.b.Len() > 0 {
			p.b.WriteString("\n\n")
		}
		p.fragment(f)
	}
	return p.String() + "\n"
}

type printer struct {
	b     strings.Builder
	depth int
}

func (p *printer) String() string { return p.b.String() }

func (p *printer) operation(op *ast.OperationDefinition) {
	anonymous := op.Name == "" && len(op.VariableDefinitions) == 0 && len(op.Directives) == 0 && op.Operation == ast.Query
	if !anonymous {
		p.b.WriteString(string(op.Operation))
		if op.Name != "" {
			p.b.WriteString(" " + op.Name)
		}
		if len(op.VariableDefinitions) > 0 {
			p.b.WriteString("(")
			for i, v := range op.VariableDefinitions {
				if i > 0 {
					p.b.WriteString(", ")
				}
				p.b.WriteString("$" + v.Variable + ": " + v.Type.String())
				if v.DefaultValue != nil {
					p.b.WriteString(" = " + printValue(v.DefaultValue))
				}
				p.directives(v.Directives)
			}
			p.b.WriteString(")")
		}
		p.directives(op.Directives)
		p.b.WriteString(" ")
	}
	p.selectionSet(op.SelectionSet)
}

func (p *printer) fragment(f *ast.FragmentDefinition) {
	p.b.WriteString("fragment " + f.Name + " on " + f.TypeCondition)
	p.directives(f.Directives)
	p.b.WriteString(" ")
	p.selectionSet(f.SelectionSet)
}

func (p *printer) selectionSet(set ast.SelectionSet) {
	p.b.WriteString("{")
	p.depth++
	for _, s := range set {
		p.b.WriteString("\n" + strings.Repeat("  ", p.depth))
		p.selection(s)
	}
	p.depth--
	p.b.WriteString("\n" + strings.Repeat("  ", p.depth) + "}")
}

func (p *printer) selection(s ast.Selection) {
	switch s := s.(type) {
	case *ast.Field:
		if s.Alias != "" && s.Alias != s.Name {
			p.b.WriteString(s.Alias + ": ")
		}
		p.b.WriteString(s.Name)
		p.arguments(s.Arguments)
		p.directives(s.Directives)
		if len(s.SelectionSet) > 0 {
			p.b.WriteString(" ")
			p.selectionSet(s.SelectionSet)
		}
	case *ast.FragmentSpread:
		p.b.WriteString("..." + s.Name)
		p.directives(s.Directives)
	case *ast.InlineFragment:
		p.b.WriteString("...")
		if s.TypeCondition != "" {
			p.b.WriteString(" on " + s.TypeCondition)
		}
		p.directives(s.Directives)
		p.b.WriteString(" ")
		p.selectionSet(s.SelectionSet)
	}
}

func (p *printer) arguments(args ast.ArgumentList) {
	if len(args) == 0 {
		return
	}
	p.b.WriteString("(")
	for i, a := range args {
		if i > 0 {
			p.b.WriteString(", ")
		}
		p.b.WriteString(a.Name + ": " + printValue(a.Value))
	}
	p.b.WriteString(")")
}

func (p *printer) directives(dirs ast.DirectiveList) {
	for _, d := range dirs {
		p.b.WriteString(" @" + d.Name)
		p.arguments(d.Arguments)
	}
}

func printValue(v *ast.Value) string {
	if v == nil {
		return "null"
	}
	switch v.Kind {
	case ast.Variable:
		return "$" + v.Raw
	case ast.StringValue:
		return printString(v.Raw)
	case ast.BlockValue:
		return `"""` + strings.ReplaceAll(v.Raw, `"""`, `\"""`) + `"""`
	case ast.NullValue:
		return "null"
	case ast.ListValue:
		items := make([]string, len(v.Children))
		for i, c := range v.Children {
			items[i] = printValue(c.Value)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case ast.ObjectValue:
		fields := make([]string, len(v.Children))
		for i, c := range v.Children {
			fields[i] = c.Name + ": " + printValue(c.Value)
		}
		return "{" + strings.Join(fields, ", ") + "}"
	default:
		return v.Raw
	}
}

// printString quotes s the way JSON does, without HTML escaping.
func printString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
