// Package environment holds the session-wide configuration and collaborators
// shared by every file linked in one session.
package environment

import (
	"github.com/spf13/afero"

	"ngc-linker/packages/compiler-cli/linker/ast"
	"ngc-linker/packages/compiler-cli/linker/translator"
	"ngc-linker/packages/compiler-cli/logging"
	"ngc-linker/packages/compiler-cli/sourcemaps"
)

// LinkerEnvironment bundles the options, the concrete AST pair and the file
// system and logger collaborators. It is not modified after Create.
type LinkerEnvironment[S, E any] struct {
	FileSystem afero.Fs
	Logger     logging.Logger
	Host       ast.AstHost[E]
	Factory    translator.AstFactory[S, E]
	Options    LinkerOptions
	Translator *translator.Translator[S, E]
	// SourceFileLoader is nil unless Options.SourceMapping is set.
	SourceFileLoader *sourcemaps.SourceFileLoader
	// TemplateCompiler is nil unless supplied with WithTemplateCompiler.
	TemplateCompiler TemplateCompiler
}

type createConfig struct {
	templateCompiler TemplateCompiler
	schemeMap        map[string]string
}

// Option customises Create.
type Option func(*createConfig)

// WithTemplateCompiler supplies the compiler used for component templates and
// host bindings.
func WithTemplateCompiler(compiler TemplateCompiler) Option {
	return func(c *createConfig) {
		c.templateCompiler = compiler
	}
}

// WithSchemeMap maps source-map URL schemes such as `webpack` to paths.
func WithSchemeMap(schemeMap map[string]string) Option {
	return func(c *createConfig) {
		c.schemeMap = schemeMap
	}
}

// Create resolves options against their defaults and builds the environment.
func Create[S, E any](
	fileSystem afero.Fs,
	logger logging.Logger,
	host ast.AstHost[E],
	factory translator.AstFactory[S, E],
	options LinkerPartialOptions,
	opts ...Option,
) (*LinkerEnvironment[S, E], error) {
	resolved, err := options.Resolve()
	if err != nil {
		return nil, err
	}
	cfg := &createConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	env := &LinkerEnvironment[S, E]{
		FileSystem:       fileSystem,
		Logger:           logger,
		Host:             host,
		Factory:          factory,
		Options:          resolved,
		Translator:       translator.NewTranslator(factory),
		TemplateCompiler: cfg.templateCompiler,
	}
	if resolved.SourceMapping {
		env.SourceFileLoader = sourcemaps.NewSourceFileLoader(fileSystem, logger, cfg.schemeMap)
	}
	return env, nil
}
