package emit_scopes_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngc-linker/packages/compiler-cli/linker/emit_scopes"
	"ngc-linker/packages/compiler-cli/linker/partial_linkers"
	"ngc-linker/packages/compiler-cli/linker/translator"
	"ngc-linker/packages/compiler-cli/linker/treesitter"
	"ngc-linker/packages/compiler/output"
)

func str(node treesitter.Node) string {
	return fmt.Sprint(node)
}

func newScopes() (*emit_scopes.EmitScope[treesitter.Node, treesitter.Node], *emit_scopes.IifeEmitScope[treesitter.Node, treesitter.Node]) {
	factory := treesitter.Factory{}
	t := translator.NewTranslator[treesitter.Node, treesitter.Node](factory)
	ngImport := factory.CreateIdentifier("core")
	return emit_scopes.NewEmitScope[treesitter.Node, treesitter.Node](ngImport, t, factory),
		emit_scopes.NewIifeEmitScope[treesitter.Node, treesitter.Node](ngImport, t, factory)
}

func sharedArray() output.OutputExpression {
	return output.NewLiteralArrayExpr([]output.OutputExpression{output.Literal("a"), output.Literal("b")})
}

func TestEmitScope(t *testing.T) {
	t.Run("should translate the definition against ngImport", func(t *testing.T) {
		scope, _ := newScopes()
		def := output.ImportExpr(&output.ExternalReference{ModuleName: strPtr("@angular/core"), Name: strPtr("foo")}).Callable(output.Literal(1))
		translated, err := scope.TranslateDefinition(partial_linkers.LinkedDefinition{Expression: def})
		require.NoError(t, err)
		assert.Equal(t, "core.foo(1)", str(translated))
	})

	t.Run("should keep pooled constants out of the definition", func(t *testing.T) {
		scope, _ := newScopes()
		ref := scope.ConstantPool().GetConstLiteral(sharedArray(), true)
		translated, err := scope.TranslateDefinition(partial_linkers.LinkedDefinition{Expression: call("x", ref)})
		require.NoError(t, err)
		assert.Equal(t, "x(_c0)", str(translated))

		statements, err := scope.GetConstantStatements()
		require.NoError(t, err)
		require.Len(t, statements, 1)
		assert.Equal(t, `const _c0 = ["a", "b"];`, str(statements[0]))
	})

	t.Run("should wrap definitions that have statements", func(t *testing.T) {
		scope, _ := newScopes()
		translated, err := scope.TranslateDefinition(partial_linkers.LinkedDefinition{
			Expression: output.Variable("x"),
			Statements: []output.OutputStatement{output.NewExpressionStatement(call("setup"))},
		})
		require.NoError(t, err)
		assert.Equal(t, "(function () {\nsetup();\nreturn x;\n})()", str(translated))
	})

	t.Run("should report imports from other modules", func(t *testing.T) {
		scope, _ := newScopes()
		def := output.ImportExpr(&output.ExternalReference{ModuleName: strPtr("@angular/common"), Name: strPtr("NgIf")})
		_, err := scope.TranslateDefinition(partial_linkers.LinkedDefinition{Expression: def})
		assert.EqualError(t, err, "Unable to import from anything other than '@angular/core'")
	})
}

func TestIifeEmitScope(t *testing.T) {
	t.Run("should emit constants ahead of the statements inside the wrapper", func(t *testing.T) {
		_, scope := newScopes()
		ref := scope.ConstantPool().GetConstLiteral(sharedArray(), true)
		translated, err := scope.TranslateDefinition(partial_linkers.LinkedDefinition{
			Expression: call("x", ref),
			Statements: []output.OutputStatement{output.NewExpressionStatement(call("setup"))},
		})
		require.NoError(t, err)
		assert.Equal(t, "(function () {\nconst _c0 = [\"a\", \"b\"];\nsetup();\nreturn x(_c0);\n})()", str(translated))

		statements, err := scope.GetConstantStatements()
		require.NoError(t, err)
		assert.Empty(t, statements)
	})

	t.Run("should not wrap when nothing was pooled", func(t *testing.T) {
		_, scope := newScopes()
		translated, err := scope.TranslateDefinition(partial_linkers.LinkedDefinition{Expression: output.Variable("x")})
		require.NoError(t, err)
		assert.Equal(t, "x", str(translated))
	})
}

func call(name string, args ...output.OutputExpression) output.OutputExpression {
	return output.NewInvokeFunctionExpr(output.Variable(name), args, false)
}

func strPtr(s string) *string {
	return &s
}
