package gqlcodegen

import (
	"context"
	"fmt"
	"slices"

	"github.com/syssam/gqlcodegen/compiler/load"
	"github.com/syssam/gqlcodegen/internal/logging"
	"github.com/syssam/gqlcodegen/server"
)

// WatchSchema loads the schema fragments matched by patterns and watches
// them. Every reload rebuilds the schema, installs it on srv and, unless
// generation is disabled, regenerates the target file from it. When srv has
// no schema yet, the loaded one is installed before WatchSchema returns.
//
// Options.Watch configures the schema session; it is tracked by its Manager
// under watch.KindLoadSchema. A load.WithWatch in loadOpts is overridden.
func WatchSchema(ctx context.Context, srv server.Server, patterns []string, loadOpts []load.Option, options ...Option) (*load.Result, error) {
	if srv == nil {
		return nil, ErrNilServer
	}
	opts, err := NewOptions(options...)
	if err != nil {
		return nil, err
	}
	logger := newLogger(opts)
	log := logging.Component(logger, "codegen")
	var r *runner
	if !opts.Disable {
		if r, err = newRunner(opts); err != nil {
			return nil, err
		}
	}

	onChange := func(sources []string) {
		schema, err := server.BuildSchema(sources)
		if err != nil {
			log.WithError(err).Error("rebuild schema")
			return
		}
		if err := srv.ReplaceSchema(schema); err != nil {
			log.WithError(err).Error("replace schema")
			return
		}
		if r != nil {
			r.regenerate(schema)
		}
	}
	w := opts.Watch
	loadOpts = append(slices.Clone(loadOpts),
		load.WithLogger(logger),
		load.WithSilent(opts.Silent),
		load.WithWatch(load.WatchOptions{
			OnChange:    onChange,
			Debounce:    w.Debounce,
			Ignore:      w.Ignore,
			UniqueWatch: w.UniqueWatch,
			Manager:     w.Manager,
		}),
	)
	res, err := load.LoadSchema(ctx, patterns, loadOpts...)
	if err != nil {
		return nil, err
	}
	if srv.Registered() {
		return res, nil
	}
	schema, err := server.BuildSchema(res.Sources)
	if err == nil {
		err = srv.ReplaceSchema(schema)
	}
	if err != nil {
		res.Close()
		return nil, fmt.Errorf("gqlcodegen: install schema: %w", err)
	}
	return res, nil
}
