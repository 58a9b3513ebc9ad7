package gqlcodegen

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vektah/gqlparser/v2/ast"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/gqlcodegen/compiler/gen"
	"github.com/syssam/gqlcodegen/compiler/load"
	"github.com/syssam/gqlcodegen/internal/logging"
	"github.com/syssam/gqlcodegen/server"
	"github.com/syssam/gqlcodegen/watch"
)

// Result is the outcome of Codegen.
type Result struct {
	// Disabled reports that Codegen did nothing.
	Disabled bool
	// Path is the absolute path of the generated file.
	Path string
	// Changed reports whether the first pass wrote the file.
	Changed bool
	// Code is the generated code of the first pass.
	Code string

	session *watch.Session
}

// Close stops the operations watcher. It reports true on the first
// effective close and false afterwards, or when nothing is watched.
func (r *Result) Close() bool {
	if r == nil || r.session == nil {
		return false
	}
	return r.session.Close()
}

// Ready waits for the operations watcher to be ready. Without a watcher it
// returns nil.
func (r *Result) Ready(ctx context.Context) error {
	if r == nil || r.session == nil {
		return nil
	}
	return r.session.Ready(ctx)
}

// Session returns the operations watch session, if any.
func (r *Result) Session() *watch.Session {
	if r == nil {
		return nil
	}
	return r.session
}

// Codegen waits for srv to be ready, generates the code for its schema and
// writes it to the target path when it changed. The output schema, when
// requested, is written concurrently. With watching enabled and operation
// documents configured, every change of those documents regenerates the
// code from the live schema of srv until the Result is closed.
func Codegen(ctx context.Context, srv server.Server, options ...Option) (*Result, error) {
	opts, err := NewOptions(options...)
	if err != nil {
		return nil, err
	}
	if opts.Disable {
		return &Result{Disabled: true}, nil
	}
	if srv == nil {
		return nil, ErrNilServer
	}
	r, err := newRunner(opts)
	if err != nil {
		return nil, err
	}
	if err := srv.Ready(ctx); err != nil {
		return nil, fmt.Errorf("gqlcodegen: wait for server: %w", err)
	}
	if !srv.Registered() {
		return nil, ErrGraphQLNotRegistered
	}

	res, err := r.generate(ctx, srv.Schema())
	if err != nil {
		return nil, err
	}
	result := &Result{Path: res.Path, Changed: res.Changed, Code: res.Code}
	if opts.Watch.Enabled && len(opts.OperationsGlob) > 0 {
		s, err := r.watchOperations(srv)
		if err != nil {
			return nil, err
		}
		result.session = s
	}
	return result, nil
}

// runner holds the generator and writer shared by the passes of one
// Codegen or WatchSchema call.
type runner struct {
	opts   *Options
	writer *gen.Writer
	log    logrus.FieldLogger
}

func newLogger(opts *Options) logrus.FieldLogger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return logging.New(opts.Silent)
}

func newRunner(opts *Options) (*runner, error) {
	if opts.TargetPath == "" {
		return nil, gen.NewConfigError("TargetPath", opts.TargetPath, "target path cannot be empty")
	}
	logger := newLogger(opts)
	formatter := opts.Formatter
	if formatter == nil {
		formatter = gen.TextFormatter{Path: opts.TargetPath}
	}
	genOpts := []gen.Option{
		gen.WithPreamble(opts.PreImportCode),
		gen.WithSilent(opts.Silent),
		gen.WithFormatter(formatter),
		gen.WithLogger(logger),
		gen.WithPlugins(opts.Plugins...),
	}
	if opts.CodegenConfig != nil {
		genOpts = append(genOpts, gen.WithConfig(opts.CodegenConfig))
	}
	if len(opts.OperationsGlob) > 0 {
		genOpts = append(genOpts, gen.WithOperations(opts.OperationsGlob...))
	}
	g, err := gen.NewGenerator(genOpts...)
	if err != nil {
		return nil, err
	}
	w, err := gen.NewWriter(g, opts.TargetPath)
	if err != nil {
		return nil, err
	}
	return &runner{opts: opts, writer: w, log: logging.Component(logger, "codegen")}, nil
}

func (r *runner) info(format string, args ...any) {
	if !r.opts.Silent {
		r.log.Infof(format, args...)
	}
}

// generate runs the first pass. The output schema and the code are written
// concurrently; the first failure is returned.
func (r *runner) generate(ctx context.Context, schema *ast.Schema) (*gen.WriteResult, error) {
	g, gctx := errgroup.WithContext(ctx)
	if r.opts.OutputSchema != "" {
		g.Go(func() error {
			_, err := r.writeOutputSchema(gctx, schema)
			return err
		})
	}
	var res *gen.WriteResult
	g.Go(func() error {
		var err error
		res, err = r.write(gctx, schema)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	r.info("Code generated at %s", res.Path)
	return res, nil
}

func (r *runner) write(ctx context.Context, schema *ast.Schema) (*gen.WriteResult, error) {
	res, err := r.writer.Write(ctx, schema)
	if err != nil {
		return nil, NewTaskError("generate", r.writer.Path(), err)
	}
	return res, nil
}

func (r *runner) writeOutputSchema(ctx context.Context, schema *ast.Schema) (string, error) {
	formatter := r.opts.Formatter
	if formatter == nil {
		formatter = gen.TextFormatter{Path: r.opts.OutputSchema}
	}
	abs, err := gen.WriteOutputSchema(ctx, schema, r.opts.OutputSchema, formatter)
	if err != nil {
		return "", NewTaskError("output schema", r.opts.OutputSchema, err)
	}
	return abs, nil
}

// regenerate runs a pass triggered by a file event. Failures are logged and
// leave the previous output in place.
func (r *runner) regenerate(schema *ast.Schema) {
	if schema == nil {
		r.log.Error("regenerate code: no schema")
		return
	}
	res, err := r.write(context.Background(), schema)
	if err != nil {
		r.log.WithError(err).Error("regenerate code")
		return
	}
	r.info("Code re-generated at %s", res.Path)
}

func (r *runner) watchOperations(srv server.Server) (*watch.Session, error) {
	w := r.opts.Watch
	handler := func(e watch.Event) {
		r.info("%s %s, re-generating...", e.Path, e.Op)
		r.regenerate(srv.Schema())
	}
	start := func() (*watch.Session, error) {
		return watch.Start(r.opts.OperationsGlob, handler, watch.Options{
			Debounce: w.Debounce,
			Ignore:   w.Ignore,
			Logger:   r.log,
			Filter:   load.IsGraphQLFile,
		})
	}
	var (
		s   *watch.Session
		err error
	)
	if m := w.manager(); m != nil {
		s, err = m.Replace(watch.KindOperations, start)
	} else {
		s, err = start()
	}
	if err != nil {
		return nil, fmt.Errorf("gqlcodegen: watch operations: %w", err)
	}
	go func() {
		if err := s.Ready(context.Background()); err != nil {
			r.log.WithError(err).Error("operations watcher failed")
			return
		}
		r.info("Watching for changes in %s", strings.Join(r.opts.OperationsGlob, ", "))
	}()
	return s, nil
}
