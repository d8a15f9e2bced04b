package partial_linkers

import (
	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"

	"ngc-linker/packages/compiler-cli/linker"
	"ngc-linker/packages/compiler-cli/linker/environment"
	"ngc-linker/packages/compiler-cli/logging"
	"ngc-linker/packages/compiler/core"
)

// Declaration functions recognised by the linker.
const (
	DeclareDirective     = "ɵɵngDeclareDirective"
	DeclareComponent     = "ɵɵngDeclareComponent"
	DeclareFactory       = "ɵɵngDeclareFactory"
	DeclareInjectable    = "ɵɵngDeclareInjectable"
	DeclareInjector      = "ɵɵngDeclareInjector"
	DeclareNgModule      = "ɵɵngDeclareNgModule"
	DeclarePipe          = "ɵɵngDeclarePipe"
	DeclareClassMetadata = "ɵɵngDeclareClassMetadata"
)

// DeclarationFunctions lists every recognised declaration function.
var DeclarationFunctions = []string{
	DeclareDirective,
	DeclareComponent,
	DeclareFactory,
	DeclareInjectable,
	DeclareInjector,
	DeclareNgModule,
	DeclarePipe,
	DeclareClassMetadata,
}

// LinkerRange pairs a semver range with the linker that handles it.
type LinkerRange[E any] struct {
	Range  string
	Linker PartialLinker[E]
}

type compiledRange[E any] struct {
	source     string
	constraint *semver.Constraints
	linker     PartialLinker[E]
}

// PartialLinkerSelector resolves the linker for a declaration function and
// version. Ranges of one function are tried in registration order and the
// first one satisfied by the version wins.
type PartialLinkerSelector[E any] struct {
	linkers                map[string][]compiledRange[E]
	logger                 logging.Logger
	unknownVersionHandling environment.UnknownVersionHandling
}

// NewPartialLinkerSelector compiles the ranges of the registry. It fails when
// a range is not valid semver or a function registers no range.
func NewPartialLinkerSelector[E any](
	linkers map[string][]LinkerRange[E],
	logger logging.Logger,
	unknownVersionHandling environment.UnknownVersionHandling,
) (*PartialLinkerSelector[E], error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if unknownVersionHandling == "" {
		unknownVersionHandling = environment.UnknownVersionError
	}
	compiled := make(map[string][]compiledRange[E], len(linkers))
	for functionName, ranges := range linkers {
		if len(ranges) == 0 {
			return nil, errors.Newf("no linker ranges registered for %s", functionName)
		}
		entries := make([]compiledRange[E], len(ranges))
		for i, r := range ranges {
			constraint, err := semver.NewConstraint(r.Range)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid linker range %q for %s", r.Range, functionName)
			}
			constraint.IncludePrerelease = true
			entries[i] = compiledRange[E]{source: r.Range, constraint: constraint, linker: r.Linker}
		}
		compiled[functionName] = entries
	}
	return &PartialLinkerSelector[E]{
		linkers:                compiled,
		logger:                 logger,
		unknownVersionHandling: unknownVersionHandling,
	}, nil
}

// SupportsDeclaration reports whether functionName has registered linkers.
func (s *PartialLinkerSelector[E]) SupportsDeclaration(functionName string) bool {
	_, ok := s.linkers[functionName]
	return ok
}

// GetLinker returns the linker for functionName at version.
//
// When no range matches, the configured unknown version handling applies:
// "error" returns an *linker.UnsupportedVersionError while "warn" and
// "ignore" fall back to the last registered linker.
func (s *PartialLinkerSelector[E]) GetLinker(functionName, version string) (PartialLinker[E], error) {
	ranges, ok := s.linkers[functionName]
	if !ok {
		return nil, errors.WithStack(&linker.UnknownDeclarationError{FunctionName: functionName})
	}

	if v, err := semver.NewVersion(version); err == nil {
		for _, r := range ranges {
			if r.constraint.Check(v) {
				return r.linker, nil
			}
		}
	}

	tried := make([]string, len(ranges))
	for i, r := range ranges {
		tried[i] = r.source
	}
	unsupported := &linker.UnsupportedVersionError{FunctionName: functionName, Version: version, Ranges: tried}

	switch s.unknownVersionHandling {
	case environment.UnknownVersionWarn:
		s.logger.Warn(unsupported.Error()+"\nAttempting to continue using this version of Angular.",
			"function", functionName, "version", version)
	case environment.UnknownVersionIgnore:
	default:
		return nil, errors.WithStack(unsupported)
	}
	return ranges[len(ranges)-1].linker, nil
}

// CreateLinkerMap builds the registry of every recognised declaration
// function for one file. The current build range is registered first.
func CreateLinkerMap[S, E any](env *environment.LinkerEnvironment[S, E], sourceURL, code string) map[string][]LinkerRange[E] {
	directiveLinker := NewPartialDirectiveLinkerVersion1[E](env.TemplateCompiler)
	componentLinker := NewPartialComponentLinkerVersion1[E](env.TemplateCompiler, env.Options, env.SourceFileLoader, env.Logger, sourceURL, code)
	factoryLinker := &PartialFactoryLinkerVersion1[E]{}
	injectableLinker := &PartialInjectableLinkerVersion1[E]{}
	injectorLinker := &PartialInjectorLinkerVersion1[E]{}
	ngModuleLinker := NewPartialNgModuleLinkerVersion1[E](env.Options.LinkerJitMode)
	pipeLinker := &PartialPipeLinkerVersion1[E]{}
	classMetadataLinker := &PartialClassMetadataLinkerVersion1[E]{}

	ranges := func(l PartialLinker[E], minVersion string) []LinkerRange[E] {
		return []LinkerRange[E]{
			{Range: core.CurrentBuildVersionRange, Linker: l},
			{Range: ">=" + minVersion, Linker: l},
		}
	}

	return map[string][]LinkerRange[E]{
		DeclareDirective:     ranges(directiveLinker, "11.1.0-next.1"),
		DeclareComponent:     ranges(componentLinker, "11.1.0-next.1"),
		DeclareFactory:       ranges(factoryLinker, "12.0.0-next.1"),
		DeclareInjectable:    ranges(injectableLinker, "12.0.0-next.1"),
		DeclareInjector:      ranges(injectorLinker, "12.0.0-next.1"),
		DeclareNgModule:      ranges(ngModuleLinker, "12.0.0-next.1"),
		DeclarePipe:          ranges(pipeLinker, "12.0.0-next.1"),
		DeclareClassMetadata: ranges(classMetadataLinker, "12.0.0-next.1"),
	}
}
