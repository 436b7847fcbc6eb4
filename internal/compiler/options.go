package compiler

import (
	"github.com/rs/zerolog"

	"github.com/hassan/volt/internal/store"
)

// Option keys understood by the compiler.
const (
	OptAlways     = "always"
	OptPrefix     = "prefix"
	OptPath       = "path"
	OptSeparator  = "separator"
	OptExtension  = "extension"
	OptStat       = "stat"
	OptAutoescape = "autoescape"
	OptOptimize   = "optimize"
)

// deprecatedOptions maps legacy option keys to their replacements. A legacy
// key is honored only when the new one is absent.
var deprecatedOptions = map[string]string{
	"compileAlways":     OptAlways,
	"compiledPath":      OptPath,
	"compiledSeparator": OptSeparator,
	"compiledExtension": OptExtension,
}

// Defaults for artifact paths.
const (
	defaultExtension = ".php"
	defaultSeparator = "%%"
)

// PathFunc computes the artifact path of a template. It is accepted as the
// value of the "path" option.
type PathFunc func(templatePath string, options map[string]any, extendsMode bool) string

// settings are the options of one compile, validated.
type settings struct {
	always    bool
	prefix    string
	path      string
	pathFunc  PathFunc
	separator string
	extension string
	stat      bool
}

// lookupOption returns the value of key, falling back to its deprecated
// alias with a warning.
func (c *Compiler) lookupOption(key string) (any, bool) {
	if v, ok := c.options[key]; ok && v != nil {
		return v, true
	}
	for old, replacement := range deprecatedOptions {
		if replacement != key {
			continue
		}
		if v, ok := c.options[old]; ok && v != nil {
			c.logger.Warn().
				Str("option", old).
				Str("replacement", key).
				Msgf("The '%s' option is deprecated. Use '%s' instead.", old, key)
			return v, true
		}
	}
	return nil, false
}

// settings validates the options for a compile.
func (c *Compiler) settings() settings {
	s := settings{separator: defaultSeparator, extension: defaultExtension, stat: true}

	if v, ok := c.lookupOption(OptAlways); ok {
		b, isBool := v.(bool)
		if !isBool {
			fail("'always' must be a bool value")
		}
		s.always = b
	}

	if v, ok := c.lookupOption(OptPrefix); ok {
		p, isString := v.(string)
		if !isString {
			fail("'prefix' must be a string")
		}
		s.prefix = p
	}

	if v, ok := c.lookupOption(OptPath); ok {
		switch p := v.(type) {
		case string:
			s.path = p
		case PathFunc:
			s.pathFunc = p
		case func(string, map[string]any, bool) string:
			s.pathFunc = p
		default:
			fail("'path' must be a string or a closure")
		}
	}

	if v, ok := c.lookupOption(OptSeparator); ok {
		sep, isString := v.(string)
		if !isString {
			fail("'separator' must be a string")
		}
		s.separator = sep
	}

	if v, ok := c.lookupOption(OptExtension); ok {
		ext, isString := v.(string)
		if !isString {
			fail("'extension' must be a string")
		}
		s.extension = ext
	}

	if v, ok := c.options[OptStat]; ok && v != nil {
		b, isBool := v.(bool)
		if !isBool {
			fail("'stat' must be a bool value")
		}
		s.stat = b
	}

	return s
}

// boolOption reads a bool option that must have the right type when set.
func (c *Compiler) boolOption(key, msg string) (value, set bool) {
	v, ok := c.options[key]
	if !ok || v == nil {
		return false, false
	}
	b, isBool := v.(bool)
	if !isBool {
		fail(msg)
	}
	return b, true
}

// CompilerOption configures a Compiler in New.
type CompilerOption func(*Compiler)

// WithLogger sets the logger for deprecation notices and compile events.
func WithLogger(logger zerolog.Logger) CompilerOption {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithSourceStore sets where template sources are read from.
func WithSourceStore(s store.Store) CompilerOption {
	return func(c *Compiler) {
		c.sources = s
	}
}

// WithArtifactStore sets where compiled artifacts are kept.
func WithArtifactStore(s store.Store) CompilerOption {
	return func(c *Compiler) {
		c.artifacts = s
	}
}

// WithOptions replaces the option map.
func WithOptions(options map[string]any) CompilerOption {
	return func(c *Compiler) {
		c.SetOptions(options)
	}
}

// WithContainer sets the service container.
func WithContainer(di Container) CompilerOption {
	return func(c *Compiler) {
		c.di = di
	}
}

// WithViewsDirs sets the directories include and extends paths are
// resolved against.
func WithViewsDirs(dirs ...string) CompilerOption {
	return func(c *Compiler) {
		c.SetViewsDirs(dirs...)
	}
}
