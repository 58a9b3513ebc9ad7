package gen

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// Shape describes the nullability and list structure of a GraphQL type.
// A Shape is either a named type (Elem == nil) or a list of Elem.
type Shape struct {
	Named    string
	Nullable bool
	Elem     *Shape
}

// ShapeOf converts a GraphQL type reference into a Shape.
func ShapeOf(t *ast.Type) *Shape {
	if t == nil {
		return nil
	}
	s := &Shape{Nullable: !t.NonNull}
	if t.Elem != nil {
		s.Elem = ShapeOf(t.Elem)
		return s
	}
	s.Named = t.NamedType
	return s
}

// IsList reports whether s is a list.
func (s *Shape) IsList() bool {
	return s.Elem != nil
}

// Base returns the named type at the bottom of s.
func (s *Shape) Base() string {
	for s.Elem != nil {
		s = s.Elem
	}
	return s.Named
}

// Depth returns the number of nested lists in s.
func (s *Shape) Depth() int {
	n := 0
	for ; s.Elem != nil; s = s.Elem {
		n++
	}
	return n
}

// Renderer turns a Shape into a TypeScript type.
type Renderer struct {
	// Named renders the bottom named type.
	Named func(name string) string
	// Maybe wraps nullable types. Defaults to "Maybe".
	Maybe string
	// Array wraps lists. Defaults to "Array".
	Array string
}

// Render renders s, wrapping nullable levels in Maybe and lists in Array, from
// the outermost level inwards.
func (r Renderer) Render(s *Shape) string {
	var inner string
	if s.Elem != nil {
		inner = r.array() + "<" + r.Render(s.Elem) + ">"
	} else {
		inner = r.Named(s.Named)
	}
	if s.Nullable {
		return r.maybe() + "<" + inner + ">"
	}
	return inner
}

func (r Renderer) maybe() string {
	if r.Maybe == "" {
		return "Maybe"
	}
	return r.Maybe
}

func (r Renderer) array() string {
	if r.Array == "" {
		return "Array"
	}
	return r.Array
}

// scalarRef is the reference to a scalar in the Scalars table.
func scalarRef(name string) string {
	return `Scalars["` + name + `"]`
}
