package load

import (
	"bytes"
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/gqlcodegen/internal/fileutil"
)

// GoSnapshotVar is the variable declared by RenderGoSnapshot.
const GoSnapshotVar = "Sources"

// RenderGoSnapshot renders a Go file in package pkg declaring the fragments
// as a string slice. The result can be passed to WithPrebuiltSources to
// embed the schema in a binary.
func RenderGoSnapshot(pkg string, sources []string) ([]byte, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by gqlcodegen. DO NOT EDIT.")
	f.Comment(fmt.Sprintf("%s holds the schema fragments in discovery order.", GoSnapshotVar))
	f.Var().Id(GoSnapshotVar).Op("=").Index().String().ValuesFunc(func(g *jen.Group) {
		for _, s := range sources {
			g.Line().Lit(s)
		}
		g.Line()
	})
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("load: render go snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteGoSnapshot renders the fragments with RenderGoSnapshot and writes
// them to path when they changed.
func WriteGoSnapshot(path, pkg string, sources []string) (bool, error) {
	data, err := RenderGoSnapshot(pkg, sources)
	if err != nil {
		return false, err
	}
	_, changed, err := fileutil.WriteIfChanged(path, data)
	if err != nil {
		return false, fmt.Errorf("load: write go snapshot: %w", err)
	}
	return changed, nil
}
