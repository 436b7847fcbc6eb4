// Command voltc compiles Volt templates to PHP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hassan/volt/internal/build"
	"github.com/hassan/volt/internal/compiler"
	"github.com/hassan/volt/internal/config"
	"github.com/hassan/volt/internal/parser"
	"github.com/hassan/volt/internal/parser/ast"
	"github.com/hassan/volt/internal/semantic"
	"github.com/hassan/volt/internal/store"
)

const (
	appName = "voltc"
	version = "1.0.0"
)

var interruptSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "compile":
		os.Exit(cmdCompile(os.Args[2:]))
	case "watch":
		os.Exit(cmdWatch(os.Args[2:]))
	case "parse":
		os.Exit(cmdParse(os.Args[2:]))
	case "check":
		os.Exit(cmdCheck(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "version":
		fmt.Printf("%s %s (block map format %s)\n", appName, version, compiler.BlockMapVersion)
		return
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`voltc %s

Usage:
  %s compile [-config dir] [-o dir] [-j n] [-always] files...   Compile templates.
  %s watch [-config dir] dir                                     Recompile templates as they change.
  %s parse file                                                  Print the syntax tree of a template.
  %s check [-scopes] files...                                    Report mistakes in templates.
  %s repl                                                        Compile templates interactively.
  %s version                                                     Print the version.

Settings are read from voltc.env in the config directory and from the
environment, e.g. COMPILED_PATH, STORE=redis, REDIS_ADDRESS, AUTOESCAPE.
`, version, appName, appName, appName, appName, appName, appName)
}

// setup loads the config and configures the global logger.
func setup(configDir string) (config.Config, bool) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return cfg, false
	}
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return cfg, true
}

// factory returns a constructor for compilers configured by cfg. All the
// compilers share one artifact store.
func factory(cfg config.Config) func() *compiler.Compiler {
	artifacts := cfg.ArtifactStore()
	options := cfg.CompilerOptions()

	return func() *compiler.Compiler {
		opts := []compiler.CompilerOption{
			compiler.WithLogger(log.Logger),
			compiler.WithArtifactStore(artifacts),
			compiler.WithOptions(options),
		}
		if cfg.ViewsDir != "" {
			opts = append(opts, compiler.WithViewsDirs(cfg.ViewsDir))
		}
		return compiler.New(opts...)
	}
}

// -----------------------------------------------------------------------------
// compile
// -----------------------------------------------------------------------------

func cmdCompile(args []string) int {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	configDir := fs.String("config", ".", "directory holding voltc.env")
	out := fs.String("o", "", "directory for compiled templates (overrides COMPILED_PATH)")
	jobs := fs.Int("j", 0, "templates compiled in parallel (overrides CONCURRENCY)")
	always := fs.Bool("always", false, "compile even when the artifact is fresh")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "%s compile: no templates given\n", appName)
		return 2
	}

	cfg, ok := setup(*configDir)
	if !ok {
		return 1
	}
	if *out != "" {
		cfg.CompiledPath = *out
	}
	if *jobs > 0 {
		cfg.Concurrency = *jobs
	}
	if *always {
		cfg.CompileAlways = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), interruptSignals...)
	defer stop()

	b := build.NewBuilder(factory(cfg), cfg.Concurrency)
	b.Logger = log.Logger
	results, err := b.Build(ctx, fs.Args())

	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.Path, r.Err)
		case r.Fresh:
			fmt.Printf("%s: up to date\n", r.Path)
		default:
			fmt.Printf("%s -> %s\n", r.Path, r.Artifact)
		}
	}
	if err != nil {
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// watch
// -----------------------------------------------------------------------------

func cmdWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	configDir := fs.String("config", ".", "directory holding voltc.env")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s watch: expected one directory\n", appName)
		return 2
	}

	cfg, ok := setup(*configDir)
	if !ok {
		return 1
	}

	b := build.NewBuilder(factory(cfg), cfg.Concurrency)
	b.Logger = log.Logger

	w, err := build.NewWatcher(b)
	if err != nil {
		log.Error().Err(err).Msg("cannot start watcher")
		return 1
	}
	defer w.Close()
	w.Debounce = cfg.WatchDebounce
	w.Logger = log.Logger

	if err := w.Add(fs.Arg(0)); err != nil {
		log.Error().Err(err).Str("dir", fs.Arg(0)).Msg("cannot watch directory")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), interruptSignals...)
	defer stop()

	log.Info().Str("dir", fs.Arg(0)).Msg("watching templates")
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("watcher stopped")
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// parse, check
// -----------------------------------------------------------------------------

func cmdParse(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "%s parse: expected one template\n", appName)
		return 2
	}
	stmts, err := parseFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := ast.Fprint(os.Stdout, stmts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func cmdCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	scopes := fs.Bool("scopes", false, "print the scope tree of every template")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "%s check: no templates given\n", appName)
		return 2
	}

	status := 0
	analyzer := semantic.New()
	for _, path := range fs.Args() {
		stmts, err := parseFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			status = 1
			continue
		}
		for _, err := range analyzer.Analyze(stmts) {
			fmt.Fprintln(os.Stderr, err)
		}
		if analyzer.HasErrors() {
			status = 1
		}
		if *scopes {
			fmt.Printf("%s:\n%s", path, analyzer.Scope().DebugString())
		}
	}
	return status
}

func parseFile(path string) ([]ast.Stmt, error) {
	source, err := store.NewFileStore().Read(context.Background(), path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return parser.Parse(string(source), path)
}
