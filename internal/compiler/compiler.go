// Package compiler generates PHP from parsed templates.
//
// A Compiler holds the registries and options that are shared by every
// compile, and the transient state of the compile in progress. Compile,
// CompileFile and CompileString reset the transient state on entry, so one
// instance can be reused for many templates but not concurrently. Included
// and extended templates are compiled by a sub-compiler created with spawn.
//
// Code generation reports failures by panicking with a bailout that the
// public entry points recover into an error.
package compiler

import (
	"context"
	"errors"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hassan/volt/internal/optimizer"
	"github.com/hassan/volt/internal/parser"
	"github.com/hassan/volt/internal/parser/ast"
	"github.com/hassan/volt/internal/pathutil"
	"github.com/hassan/volt/internal/store"
	"github.com/hassan/volt/internal/symtab"
)

// EvalPath is the template path reported for in-memory sources.
const EvalPath = "eval code"

// Output is the result of compiling one template. Code holds the generated
// PHP. In extends mode Blocks holds the ordered block map instead.
type Output struct {
	Code   string
	Blocks *BlockMap
}

// forElse records a loop that has an else branch.
type forElse struct {
	prefix  string
	guarded bool
}

// Compiler compiles templates to PHP.
type Compiler struct {
	logger    zerolog.Logger
	sources   store.Store
	artifacts store.Store

	options    map[string]any
	functions  map[string]Definition
	filters    map[string]Definition
	extensions []any
	di         Container
	viewsDirs  []string

	prefix     string
	prefixFunc func(*Compiler) string

	// Templates being compiled by the compilers that spawned this one,
	// outermost first.
	chain []string

	// Transient state, reset by every top-level compile.
	ctx                  context.Context
	autoescape           bool
	level                int
	blockLevel           int
	exprLevel            int
	foreachLevel         int
	extended             bool
	extendedBlocks       *BlockMap
	blocks               *BlockMap
	currentBlock         string
	currentPath          string
	compiledTemplatePath string
	loopPointers         map[int]bool
	forElsePointers      map[int]forElse
	macros               *symtab.Scope
}

// New creates a compiler. Sources and artifacts default to the local file
// system.
func New(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		logger:    zerolog.Nop(),
		sources:   store.NewFileStore(),
		artifacts: store.NewFileStore(),
		options:   make(map[string]any),
		functions: make(map[string]Definition),
		filters:   make(map[string]Definition),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.reset(context.Background())
	return c
}

// reset clears the per-compile state.
func (c *Compiler) reset(ctx context.Context) {
	c.ctx = ctx
	c.autoescape = false
	c.level = 0
	c.blockLevel = 0
	c.exprLevel = 0
	c.foreachLevel = 0
	c.extended = false
	c.extendedBlocks = nil
	c.blocks = NewBlockMap()
	c.currentBlock = ""
	c.currentPath = ""
	c.compiledTemplatePath = ""
	c.loopPointers = make(map[int]bool)
	c.forElsePointers = make(map[int]forElse)
	c.macros = symtab.NewScope(symtab.ScopeTemplate, nil)
}

// spawn creates the sub-compiler for an included or extended template. The
// registries are copied so later changes on either side stay local; the
// transient state starts fresh.
//
// The sub-compiler inherits the chain of templates being compiled, so a
// template that includes or extends itself, directly or through others,
// fails with a CompileError instead of recursing.
func (c *Compiler) spawn() *Compiler {
	sub := &Compiler{
		logger:     c.logger,
		sources:    c.sources,
		artifacts:  c.artifacts,
		options:    maps.Clone(c.options),
		functions:  maps.Clone(c.functions),
		filters:    maps.Clone(c.filters),
		extensions: slices.Clone(c.extensions),
		di:         c.di,
		viewsDirs:  c.viewsDirs,
		prefixFunc: c.prefixFunc,
		chain:      append(slices.Clone(c.chain), c.currentPath),
	}
	sub.reset(c.ctx)
	return sub
}

// AddFunction registers a user function.
func (c *Compiler) AddFunction(name string, def Definition) *Compiler {
	c.functions[name] = def
	return c
}

// AddFilter registers a user filter.
func (c *Compiler) AddFilter(name string, def Definition) *Compiler {
	c.filters[name] = def
	return c
}

// AddExtension registers an extension. If it implements Initializer it is
// initialized first.
func (c *Compiler) AddExtension(ext any) *Compiler {
	if init, ok := ext.(Initializer); ok {
		init.Initialize(c)
	}
	c.extensions = append(c.extensions, ext)
	return c
}

func (c *Compiler) Functions() map[string]Definition { return maps.Clone(c.functions) }
func (c *Compiler) Filters() map[string]Definition   { return maps.Clone(c.filters) }
func (c *Compiler) Extensions() []any                { return slices.Clone(c.extensions) }

// SetDI sets the service container consulted by attribute reads.
func (c *Compiler) SetDI(di Container) {
	c.di = di
}

// DI returns the service container, or nil.
func (c *Compiler) DI() Container {
	return c.di
}

// SetViewsDirs sets the directories include and extends paths are resolved
// against. Each directory is expected to end with a separator.
func (c *Compiler) SetViewsDirs(dirs ...string) {
	c.viewsDirs = slices.Clone(dirs)
}

// SetUniquePrefix fixes the prefix of generated loop variables.
func (c *Compiler) SetUniquePrefix(prefix string) {
	c.prefix = prefix
}

// SetUniquePrefixFunc computes the prefix of generated loop variables from
// the compiler the first time it is needed.
func (c *Compiler) SetUniquePrefixFunc(f func(*Compiler) string) {
	c.prefixFunc = f
}

// SetOption sets a single option.
func (c *Compiler) SetOption(name string, value any) {
	c.options[name] = value
}

// SetOptions replaces all options.
func (c *Compiler) SetOptions(options map[string]any) {
	c.options = maps.Clone(options)
	if c.options == nil {
		c.options = make(map[string]any)
	}
}

// Option returns the value of an option, or nil.
func (c *Compiler) Option(name string) any {
	return c.options[name]
}

// Options returns a copy of the options.
func (c *Compiler) Options() map[string]any {
	return maps.Clone(c.options)
}

// TemplatePath returns the path of the template being compiled.
func (c *Compiler) TemplatePath() string {
	return c.currentPath
}

// CompiledTemplatePath returns the artifact path of the last compile.
func (c *Compiler) CompiledTemplatePath() string {
	return c.compiledTemplatePath
}

// UniquePrefix returns the prefix of generated loop variables, computing it
// on first use.
func (c *Compiler) UniquePrefix() (prefix string, err error) {
	defer recoverBailout(&err)
	return c.uniquePrefix(), nil
}

func (c *Compiler) uniquePrefix() string {
	if c.prefix == "" {
		switch {
		case c.prefixFunc != nil:
			c.prefix = c.prefixFunc(c)
		case c.currentPath != "":
			c.prefix = pathutil.UniquePathKey(c.currentPath)
		}
	}
	if c.prefix == "" {
		fail("The unique compilation prefix is invalid")
	}
	return c.prefix
}

// Parse parses source without generating code.
func (c *Compiler) Parse(source string) ([]ast.Stmt, error) {
	return parser.Parse(source, EvalPath)
}

// Compile compiles the template at path unless a fresh artifact exists. A
// nil Output with a nil error means the artifact was up to date; its
// location is CompiledTemplatePath.
func (c *Compiler) Compile(ctx context.Context, path string, extendsMode bool) (out *Output, err error) {
	defer recoverBailout(&err)
	return c.compile(ctx, path, extendsMode), nil
}

// CompileFile compiles the template at path into compiledPath
// unconditionally.
func (c *Compiler) CompileFile(ctx context.Context, path, compiledPath string, extendsMode bool) (out *Output, err error) {
	defer recoverBailout(&err)
	c.reset(ctx)
	c.compiledTemplatePath = compiledPath
	return c.compileFile(path, compiledPath, extendsMode), nil
}

// CompileString compiles an in-memory template.
func (c *Compiler) CompileString(ctx context.Context, source string, extendsMode bool) (out *Output, err error) {
	defer recoverBailout(&err)
	c.reset(ctx)
	c.currentPath = EvalPath
	c.compiledTemplatePath = EvalPath
	return c.compileSource(source, extendsMode), nil
}

// compile decides whether path needs compiling and does so.
//
// ALGORITHM:
//  1. always set: compile
//  2. No artifact (or it cannot be stat'ed): compile
//  3. stat set and the source is not older than the artifact: compile
//  4. Otherwise the artifact is fresh. In extends mode its block map is
//     decoded; in normal mode nil is returned and callers read the
//     artifact themselves
func (c *Compiler) compile(ctx context.Context, path string, extendsMode bool) *Output {
	c.reset(ctx)

	set := c.settings()
	compiledPath := c.artifactPath(path, set, extendsMode)
	c.compiledTemplatePath = compiledPath

	if set.always {
		return c.compileFile(path, compiledPath, extendsMode)
	}

	artifactTime, err := c.artifacts.Stat(ctx, compiledPath)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.logger.Warn().Err(err).Str("artifact", compiledPath).Msg("artifact stat failed")
		}
		return c.compileFile(path, compiledPath, extendsMode)
	}

	if set.stat {
		sourceTime, err := c.sources.Stat(ctx, path)
		if err != nil || !sourceTime.Before(artifactTime) {
			return c.compileFile(path, compiledPath, extendsMode)
		}
	}

	if extendsMode {
		blocks := c.readBlockMap(compiledPath)
		return &Output{Blocks: blocks}
	}

	c.logger.Debug().Str("template", path).Str("artifact", compiledPath).Msg("artifact is fresh")
	return nil
}

// readBlockMap loads a stored extends-mode artifact.
func (c *Compiler) readBlockMap(compiledPath string) *BlockMap {
	data, err := c.artifacts.Read(c.ctx, compiledPath)
	if err != nil {
		failWrap(err, "Extends compilation file %s could not be opened", compiledPath)
	}
	if len(data) == 0 {
		return NewBlockMap()
	}
	blocks, err := DecodeBlockMap(data)
	if err != nil {
		failWrap(err, "Extends compilation file %s could not be opened", compiledPath)
	}
	return blocks
}

// artifactPath resolves where the artifact of path is stored.
func (c *Compiler) artifactPath(path string, set settings, extendsMode bool) string {
	if set.pathFunc != nil {
		p := set.pathFunc(path, c.Options(), extendsMode)
		if p == "" {
			fail("'path' closure didn't return a valid string")
		}
		return p
	}

	sepPath := path
	if set.path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		sepPath = prepareVirtualPath(abs, set.separator)
	}

	if extendsMode {
		return set.path + set.prefix + sepPath + set.separator + "e" + set.separator + set.extension
	}
	return set.path + set.prefix + sepPath + set.extension
}

// prepareVirtualPath flattens path into a file name: it is lower-cased and
// every /, \ and : is replaced by separator.
func prepareVirtualPath(path, separator string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(path) {
		switch r {
		case 0:
			return b.String()
		case '/', '\\', ':':
			b.WriteString(separator)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (c *Compiler) compileFile(path, compiledPath string, extendsMode bool) *Output {
	if path == compiledPath {
		fail("Template path and compilation template path cannot be the same")
	}

	if slices.Contains(c.chain, path) {
		fail("Template cycle detected: %s", strings.Join(append(slices.Clone(c.chain), path), " -> "))
	}

	source, err := c.sources.Read(c.ctx, path)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail("Template file %s does not exist", path)
		}
		failWrap(err, "Template file %s could not be opened", path)
	}

	c.currentPath = path
	out := c.compileSource(string(source), extendsMode)

	data := []byte(out.Code)
	if extendsMode {
		data, err = EncodeBlockMap(out.Blocks)
		if err != nil {
			failWrap(err, "Volt directory can't be written")
		}
	}
	if err := c.artifacts.Write(c.ctx, compiledPath, data); err != nil {
		failWrap(err, "Volt directory can't be written")
	}

	c.logger.Debug().
		Str("template", path).
		Str("artifact", compiledPath).
		Bool("extends", extendsMode).
		Msg("compiled template")
	return out
}

func (c *Compiler) compileSource(source string, extendsMode bool) *Output {
	if autoescape, ok := c.boolOption(OptAutoescape, "'autoescape' must be bool"); ok {
		c.autoescape = autoescape
	}

	stmts, err := parser.Parse(source, c.currentPath)
	if err != nil {
		abort(err)
	}

	if optimize, _ := c.boolOption(OptOptimize, "'optimize' must be bool"); optimize {
		stmts = optimizer.NewOptimizer().Optimize(stmts)
	}

	code := c.statementList(stmts, extendsMode)

	if c.extended {
		return c.mergeBlocks(extendsMode)
	}
	if extendsMode {
		return &Output{Blocks: c.blocks}
	}
	return &Output{Code: code}
}

// mergeBlocks lays the blocks of this template over the parent's block map.
//
// ALGORITHM:
//  1. Walk the parent's entries in order
//  2. Unnamed entries are parent text and are copied as they are
//  3. A block this template overrides is compiled from the local body,
//     with the block as current so super() finds the parent version
//  4. Other blocks keep the parent's code, compiling the parent body
//     first when it is not resolved yet
//  5. Concatenate the results, or return them as a resolved block map in
//     extends mode so a grandchild can merge again
//
// EXAMPLE:
//
//	parent:  <h1>{% block t %}P{% endblock %}</h1>{% block f %}F{% endblock %}
//	child:   {% extends "parent.volt" %}{% block t %}C {{ super() }}{% endblock %}
//	output:  <h1>C P</h1>F
//
// Blocks the parent does not declare are dropped.
func (c *Compiler) mergeBlocks(extendsMode bool) *Output {
	merged := NewBlockMap()
	var b strings.Builder

	for _, parent := range c.extendedBlocks.Entries {
		var code string
		switch local, ok := c.blocks.Lookup(parent.Name); {
		case parent.Name == "":
			code = parent.Code
		case ok:
			c.currentBlock = parent.Name
			code = c.blockBody(local.Body)
		case parent.Resolved:
			code = parent.Code
		default:
			c.currentBlock = ""
			code = c.blockBody(parent.Body)
		}

		if parent.Name == "" {
			merged.AppendCode(code)
		} else {
			merged.SetCode(parent.Name, code)
		}
		b.WriteString(code)
	}

	if extendsMode {
		return &Output{Blocks: merged}
	}
	return &Output{Code: b.String()}
}

// blockBody compiles the statements of a block outside block mode.
func (c *Compiler) blockBody(stmts []ast.Stmt) string {
	extended := c.extended
	c.extended = false
	defer func() { c.extended = extended }()
	return c.statementList(stmts, false)
}

// finalPath resolves a template path against the views directories. The
// first directory holding the file wins; otherwise the last one is used.
func (c *Compiler) finalPath(path string) string {
	if len(c.viewsDirs) == 0 {
		return path
	}
	for _, dir := range c.viewsDirs {
		candidate := dir + path
		if _, err := c.sources.Stat(c.ctx, candidate); err == nil {
			return candidate
		}
	}
	return c.viewsDirs[len(c.viewsDirs)-1] + path
}
