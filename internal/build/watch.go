package build

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const (
	defaultDebounce  = 100 * time.Millisecond
	defaultSourceExt = ".volt"
)

// Watcher recompiles templates when they are written or created. Events
// are collected until the tree has been quiet for Debounce, then the
// changed templates are built together.
type Watcher struct {
	Builder  *Builder
	Debounce time.Duration

	// Ext selects the files that are templates.
	Ext string

	// OnBuild, if set, receives the results of every rebuild.
	OnBuild func([]Result)

	Logger zerolog.Logger

	w *fsnotify.Watcher
}

// NewWatcher creates a watcher that builds with b.
func NewWatcher(b *Builder) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		Builder:  b,
		Debounce: defaultDebounce,
		Ext:      defaultSourceExt,
		Logger:   zerolog.Nop(),
		w:        w,
	}, nil
}

// Add watches dir and every directory below it.
func (w *Watcher) Add(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		w.Logger.Debug().Str("dir", path).Msg("watching")
		return w.w.Add(path)
	})
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.w.Close()
}

// Run handles events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	pending := make(map[string]struct{})
	var order []string

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if !w.handle(ev) {
				continue
			}
			if _, ok := pending[ev.Name]; !ok {
				pending[ev.Name] = struct{}{}
				order = append(order, ev.Name)
			}
			timer.Reset(w.Debounce)

		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			w.Logger.Error().Err(err).Msg("watch error")

		case <-timer.C:
			paths := order
			pending = make(map[string]struct{})
			order = nil

			results, err := w.Builder.Build(ctx, paths)
			if err != nil {
				w.Logger.Warn().Err(err).Int("templates", len(paths)).Msg("rebuild failed")
			}
			if w.OnBuild != nil {
				w.OnBuild(results)
			}
		}
	}
}

// handle reports whether ev changed a template. New directories are added
// to the watch list.
func (w *Watcher) handle(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.Add(ev.Name); err != nil {
				w.Logger.Warn().Err(err).Str("dir", ev.Name).Msg("cannot watch new directory")
			}
			return false
		}
	}
	return strings.EqualFold(filepath.Ext(ev.Name), w.Ext)
}
