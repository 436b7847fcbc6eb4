// Package build compiles many templates at once and recompiles them when
// they change on disk.
package build

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/hassan/volt/internal/compiler"
)

const defaultConcurrency = 4

// Result is the outcome of compiling one template.
type Result struct {
	Path     string
	Artifact string

	// Fresh is set when the artifact was up to date and nothing was
	// written.
	Fresh bool

	Err      error
	Duration time.Duration
}

// Builder compiles templates in parallel. Every template gets its own
// compiler from Factory, since a Compiler holds per-compile state.
type Builder struct {
	Factory     func() *compiler.Compiler
	Concurrency int
	Logger      zerolog.Logger

	group singleflight.Group
}

// NewBuilder returns a Builder that logs nothing.
func NewBuilder(factory func() *compiler.Compiler, concurrency int) *Builder {
	return &Builder{Factory: factory, Concurrency: concurrency, Logger: zerolog.Nop()}
}

// Build compiles paths and returns one Result per path, in order. The
// returned error joins the errors of the failed templates; it is nil when
// every template compiled or was fresh. Concurrent builds of the same path,
// from this call or another, share a single compile.
//
// ALGORITHM:
//  1. Start one goroutine per path, at most Concurrency at a time
//  2. Each goroutine compiles through the singleflight group keyed by path
//  3. A failed template is recorded in its Result; it does not cancel the
//     others
//  4. After all goroutines finish, join the failures into one error
func (b *Builder) Build(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))

	limit := b.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = b.buildOne(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Path, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

func (b *Builder) buildOne(ctx context.Context, path string) Result {
	if err := ctx.Err(); err != nil {
		return Result{Path: path, Err: err}
	}

	v, _, shared := b.group.Do(path, func() (any, error) {
		start := time.Now()
		c := b.Factory()
		out, err := c.Compile(ctx, path, false)
		return Result{
			Path:     path,
			Artifact: c.CompiledTemplatePath(),
			Fresh:    err == nil && out == nil,
			Err:      err,
			Duration: time.Since(start),
		}, nil
	})
	r := v.(Result)

	event := b.Logger.Info()
	if r.Err != nil {
		event = b.Logger.Error().Err(r.Err)
	}
	event.Str("template", r.Path).
		Str("artifact", r.Artifact).
		Bool("fresh", r.Fresh).
		Bool("shared", shared).
		Dur("duration", r.Duration).
		Msg("build")
	return r
}
