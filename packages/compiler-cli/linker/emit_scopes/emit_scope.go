// Package emit_scopes decides where the constant statements produced while
// linking a declaration end up.
package emit_scopes

import (
	"ngc-linker/packages/compiler-cli/linker"
	"ngc-linker/packages/compiler-cli/linker/partial_linkers"
	"ngc-linker/packages/compiler-cli/linker/translator"
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/pool"
)

// Scope owns the constant pool that linkers write shared constants into.
type Scope[S, E any] interface {
	ConstantPool() *pool.ConstantPool
	// TranslateDefinition converts a linked definition into the target AST.
	TranslateDefinition(definition partial_linkers.LinkedDefinition) (E, error)
	// GetConstantStatements translates the pooled constants for emission at
	// the constant scope. It may be called more than once.
	GetConstantStatements() ([]S, error)
}

// EmitScope is shared by every declaration of a file that resolves to the
// same constant scope. Its constants are emitted once, at that scope.
type EmitScope[S, E any] struct {
	constantPool *pool.ConstantPool
	ngImport     E
	translator   *translator.Translator[S, E]
	factory      translator.AstFactory[S, E]
}

// NewEmitScope creates a module level scope. ngImport is the expression that
// imported names are resolved against.
func NewEmitScope[S, E any](ngImport E, t *translator.Translator[S, E], factory translator.AstFactory[S, E]) *EmitScope[S, E] {
	return &EmitScope[S, E]{
		constantPool: pool.NewConstantPool(false),
		ngImport:     ngImport,
		translator:   t,
		factory:      factory,
	}
}

func (s *EmitScope[S, E]) ConstantPool() *pool.ConstantPool {
	return s.constantPool
}

func (s *EmitScope[S, E]) importGenerator() translator.ImportGenerator[E] {
	return linker.NewLinkerImportGenerator(s.factory, s.ngImport)
}

// TranslateDefinition translates the definition. Statements that come with it
// are kept next to it inside an immediately invoked function.
func (s *EmitScope[S, E]) TranslateDefinition(definition partial_linkers.LinkedDefinition) (E, error) {
	return s.translateWithStatements(definition.Expression, definition.Statements)
}

func (s *EmitScope[S, E]) translateWithStatements(expression output.OutputExpression, statements []output.OutputStatement) (E, error) {
	imports := s.importGenerator()
	translated, err := s.translator.TranslateExpression(expression, imports)
	if err != nil {
		var zero E
		return zero, err
	}
	if len(statements) == 0 {
		return translated, nil
	}
	body, err := s.translator.TranslateStatements(statements, imports)
	if err != nil {
		var zero E
		return zero, err
	}
	return s.wrapInIifeWithStatements(translated, body), nil
}

// GetConstantStatements translates the statements of the constant pool.
func (s *EmitScope[S, E]) GetConstantStatements() ([]S, error) {
	return s.translator.TranslateStatements(s.constantPool.GetStatements(), s.importGenerator())
}

// wrapInIifeWithStatements produces `(function () { <statements>; return <expression>; })()`.
func (s *EmitScope[S, E]) wrapInIifeWithStatements(expression E, statements []S) E {
	returnStatement := s.factory.CreateReturnStatement(&expression)
	body := s.factory.CreateBlock(append(statements, returnStatement))
	fn := s.factory.CreateFunctionExpression(nil, []string{}, body)
	return s.factory.CreateCallExpression(fn, []E{}, false)
}

// IifeEmitScope is used by a single declaration that has no constant scope.
// Its constants are emitted inside an immediately invoked function wrapped
// around the definition.
type IifeEmitScope[S, E any] struct {
	EmitScope[S, E]
}

// NewIifeEmitScope creates a per-declaration scope.
func NewIifeEmitScope[S, E any](ngImport E, t *translator.Translator[S, E], factory translator.AstFactory[S, E]) *IifeEmitScope[S, E] {
	return &IifeEmitScope[S, E]{EmitScope: *NewEmitScope(ngImport, t, factory)}
}

// TranslateDefinition puts the pooled constants ahead of the definition's own
// statements in the wrapper.
func (s *IifeEmitScope[S, E]) TranslateDefinition(definition partial_linkers.LinkedDefinition) (E, error) {
	statements := append(append([]output.OutputStatement{}, s.constantPool.GetStatements()...), definition.Statements...)
	return s.translateWithStatements(definition.Expression, statements)
}

// GetConstantStatements returns nothing: the constants live in the wrapper.
func (s *IifeEmitScope[S, E]) GetConstantStatements() ([]S, error) {
	return nil, nil
}
