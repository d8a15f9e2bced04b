// Package file_linker links every partial declaration of one source file.
package file_linker

import (
	"github.com/cockroachdb/errors"

	"ngc-linker/packages/compiler-cli/linker"
	"ngc-linker/packages/compiler-cli/linker/ast"
	"ngc-linker/packages/compiler-cli/linker/emit_scopes"
	"ngc-linker/packages/compiler-cli/linker/environment"
	"ngc-linker/packages/compiler-cli/linker/partial_linkers"
)

// ConstantStatements are the statements to emit at one constant scope.
type ConstantStatements[C comparable, S any] struct {
	ConstantScope C
	Statements    []S
}

// FileLinker links the partial declarations of a single file. Calls must be
// linked one at a time in source order since declarations sharing a constant
// scope share an emit scope.
type FileLinker[C comparable, S, E any] struct {
	env            *environment.LinkerEnvironment[S, E]
	linkerSelector *partial_linkers.PartialLinkerSelector[E]
	emitScopes     map[C]*emit_scopes.EmitScope[S, E]
	// scopeOrder records constant scopes in the order they were first seen.
	scopeOrder []C
}

// NewFileLinker creates the linker for the file at sourceURL with contents code.
func NewFileLinker[C comparable, S, E any](env *environment.LinkerEnvironment[S, E], sourceURL, code string) (*FileLinker[C, S, E], error) {
	selector, err := partial_linkers.NewPartialLinkerSelector(
		partial_linkers.CreateLinkerMap(env, sourceURL, code),
		env.Logger,
		env.Options.UnknownDeclarationVersionHandling,
	)
	if err != nil {
		return nil, err
	}
	return &FileLinker[C, S, E]{
		env:            env,
		linkerSelector: selector,
		emitScopes:     map[C]*emit_scopes.EmitScope[S, E]{},
	}, nil
}

// IsPartialDeclaration reports whether calleeName is a declaration function
// this linker handles.
func (f *FileLinker[C, S, E]) IsPartialDeclaration(calleeName string) bool {
	return f.linkerSelector.SupportsDeclaration(calleeName)
}

// LinkPartialDeclaration links the call `declarationFn(args...)` found in
// declarationScope and returns the expression that replaces it.
func (f *FileLinker[C, S, E]) LinkPartialDeclaration(declarationFn string, args []E, declarationScope DeclarationScope[C, E]) (E, error) {
	var zero E
	if len(args) != 1 {
		malformed := &linker.MalformedCallError{FunctionName: declarationFn, ArgumentCount: len(args)}
		if len(args) > 1 {
			malformed.Node = args[1]
		}
		return zero, errors.WithStack(malformed)
	}

	metaObj, err := ast.ParseAstObject(f.env.Host, args[0])
	if err != nil {
		return zero, err
	}
	ngImport, err := metaObj.GetNode("ngImport")
	if err != nil {
		return zero, err
	}
	version, err := metaObj.GetString("version")
	if err != nil {
		return zero, err
	}

	emitScope := f.getEmitScope(ngImport, declarationScope)

	partialLinker, err := f.linkerSelector.GetLinker(declarationFn, version)
	if err != nil {
		var unsupported *linker.UnsupportedVersionError
		if errors.As(err, &unsupported) && unsupported.Node == nil {
			if node, nodeErr := metaObj.GetNode("version"); nodeErr == nil {
				unsupported.Node = node
			}
		}
		return zero, err
	}

	definition, err := partialLinker.LinkPartialDeclaration(emitScope.ConstantPool(), metaObj, version)
	if err != nil {
		return zero, err
	}
	f.env.Logger.Debug("linked partial declaration", "function", declarationFn, "version", version)
	return emitScope.TranslateDefinition(definition)
}

// GetConstantStatements returns the constants of every shared emit scope, in
// the order the scopes were created.
func (f *FileLinker[C, S, E]) GetConstantStatements() ([]ConstantStatements[C, S], error) {
	results := make([]ConstantStatements[C, S], 0, len(f.scopeOrder))
	for _, constantScope := range f.scopeOrder {
		statements, err := f.emitScopes[constantScope].GetConstantStatements()
		if err != nil {
			return nil, err
		}
		results = append(results, ConstantStatements[C, S]{ConstantScope: constantScope, Statements: statements})
	}
	return results, nil
}

func (f *FileLinker[C, S, E]) getEmitScope(ngImport E, declarationScope DeclarationScope[C, E]) emit_scopes.Scope[S, E] {
	constantScope, ok := declarationScope.GetConstantScopeRef(ngImport)
	if !ok {
		// Without a constant scope, constants are kept local to the declaration.
		return emit_scopes.NewIifeEmitScope(ngImport, f.env.Translator, f.env.Factory)
	}
	scope, exists := f.emitScopes[constantScope]
	if !exists {
		scope = emit_scopes.NewEmitScope(ngImport, f.env.Translator, f.env.Factory)
		f.emitScopes[constantScope] = scope
		f.scopeOrder = append(f.scopeOrder, constantScope)
	}
	return scope
}
