package gen

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/syssam/gqlcodegen/compiler/load"
	"github.com/syssam/gqlcodegen/internal/logging"
)

// deepPartial and the ambient block close every generated file.
const deepPartial = `export type DeepPartial<T> = T extends Function
? T
: T extends Array<infer U>
? Array<DeepPartial<U>>
: T extends object
? { [K in keyof T]?: DeepPartial<T[K]> }
: T;
`

// ignoredRules are validation rules that do not apply when documents are
// validated together but generated separately.
var ignoredRules = []string{"NoUnusedFragments", "LoneAnonymousOperation"}

// Generator runs the plugin pipeline over a schema.
type Generator struct {
	opts *Options
	log  logrus.FieldLogger
}

// NewGenerator returns a Generator configured by opts.
func NewGenerator(opts ...Option) (*Generator, error) {
	o, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Generator{opts: o, log: logging.Component(o.Logger, "generate")}, nil
}

// Options returns the options of g.
func (g *Generator) Options() *Options {
	return g.opts
}

// Generate runs one pass with the given options.
func Generate(ctx context.Context, schema *ast.Schema, opts ...Option) (string, error) {
	g, err := NewGenerator(opts...)
	if err != nil {
		return "", err
	}
	return g.Generate(ctx, schema)
}

// Generate runs one pass over schema and returns the formatted text.
func (g *Generator) Generate(ctx context.Context, schema *ast.Schema) (string, error) {
	text, err := g.Render(ctx, schema)
	if err != nil {
		return "", err
	}
	return g.Format(ctx, text)
}

// Format formats text rendered by Render.
func (g *Generator) Format(ctx context.Context, text string) (string, error) {
	formatted, err := g.opts.Formatter.Format(ctx, text, ParserTypeScript)
	if err != nil {
		return "", NewGenerationError("format", "", "", err)
	}
	return formatted, nil
}

// Render runs the plugins over schema and assembles their output, without
// formatting.
func (g *Generator) Render(ctx context.Context, schema *ast.Schema) (string, error) {
	cfg := g.opts.Config.Normalize(g.log, g.opts.Silent)
	reparsed, err := Reparse(schema)
	if err != nil {
		return "", err
	}

	withOperations := len(g.opts.Operations) > 0
	var docs []*Document
	if withOperations {
		if docs, err = LoadDocuments(ctx, reparsed, g.opts.Operations); err != nil {
			return "", err
		}
	}

	in := &Input{Schema: reparsed, Documents: docs, Config: cfg, Logger: g.log}
	names := append(Pipeline(withOperations), g.opts.Plugins...)
	outputs := make([]*Output, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p, err := g.opts.Registry.Lookup(ctx, name)
		if err != nil {
			return "", NewGenerationError("plugin", name, "lookup", err)
		}
		out, err := p.Generate(ctx, in)
		if err != nil {
			return "", NewGenerationError("plugin", name, "", err)
		}
		outputs = append(outputs, out)
	}

	return assemble(g.opts.Preamble, cfg, outputs), nil
}

// assemble joins the plugin outputs into one file.
func assemble(preamble string, cfg *Config, outputs []*Output) string {
	var b strings.Builder
	if preamble != "" {
		b.WriteString(preamble)
		b.WriteString("\n")
	}
	var imports []string
	for _, out := range outputs {
		for _, line := range out.Prepend {
			if !slices.Contains(imports, line) {
				imports = append(imports, line)
			}
		}
	}
	for _, line := range imports {
		b.WriteString(line + "\n")
	}
	fmt.Fprintf(&b, "import { %s } from %s;\n", DefaultContextType, quote(cfg.AmbientModule))
	b.WriteString(`import { FastifyReply } from "fastify";` + "\n")
	for _, out := range outputs {
		b.WriteString("\n")
		b.WriteString(out.Content)
	}
	for _, out := range outputs {
		for _, line := range out.Append {
			b.WriteString(line + "\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(deepPartial)
	b.WriteString("\n")
	fmt.Fprintf(&b, "declare module %s {\n", quote(cfg.AmbientModule))
	fmt.Fprintf(&b, "interface IResolvers extends Resolvers<import(%s).%s> {}\n", quote(cfg.AmbientModule), DefaultContextType)
	b.WriteString("interface MercuriusLoaders extends Loaders {}\n")
	b.WriteString("}\n")
	return b.String()
}

// LoadDocuments reads the operation documents matching globs and validates
// them against schema. Documents are validated together, so fragments may be
// shared across files. Empty files are skipped and zero matches is fine.
func LoadDocuments(ctx context.Context, schema *ast.Schema, globs []string) ([]*Document, error) {
	files, err := load.LoadFiles(ctx, globs)
	if err != nil {
		return nil, err
	}
	var (
		docs   []*Document
		inputs []string
		starts []int
		line   = 1
	)
	for _, f := range files {
		content := load.Normalize(f.Content)
		if content == "" {
			continue
		}
		query, err := parser.ParseQuery(&ast.Source{Name: f.Path, Input: content})
		if err != nil {
			return nil, NewDocumentError(f.Path, asList(err))
		}
		docs = append(docs, &Document{Path: f.Path, Source: content, Query: query})
		inputs = append(inputs, content)
		starts = append(starts, line)
		line += strings.Count(content, "\n") + 2
	}
	if len(docs) == 0 {
		return nil, nil
	}

	_, errs := gqlparser.LoadQuery(schema, strings.Join(inputs, "\n\n"))
	var failed gqlerror.List
	for _, e := range errs {
		if !slices.Contains(ignoredRules, e.Rule) {
			failed = append(failed, e)
		}
	}
	if len(failed) > 0 {
		return nil, relocate(docs, starts, failed)
	}
	return docs, nil
}

// relocate maps validation errors of the joined document back to the file
// holding the first error.
func relocate(docs []*Document, starts []int, errs gqlerror.List) error {
	idx := 0
	if locs := errs[0].Locations; len(locs) > 0 {
		for i, start := range starts {
			if locs[0].Line >= start {
				idx = i
			}
		}
	}
	var own gqlerror.List
	for _, e := range errs {
		if len(e.Locations) > 0 {
			line := e.Locations[0].Line
			if line < starts[idx] || (idx+1 < len(starts) && line >= starts[idx+1]) {
				continue
			}
			e.Locations[0].Line = line - starts[idx] + 1
		}
		own = append(own, e)
	}
	return NewDocumentError(docs[idx].Path, own)
}

func asList(err error) gqlerror.List {
	var list gqlerror.List
	if errors.As(err, &list) {
		return list
	}
	var one *gqlerror.Error
	if errors.As(err, &one) {
		return gqlerror.List{one}
	}
	return gqlerror.List{gqlerror.Wrap(err)}
}
