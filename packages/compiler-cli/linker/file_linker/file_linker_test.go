package file_linker_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngc-linker/packages/compiler-cli/linker"
	"ngc-linker/packages/compiler-cli/linker/environment"
	"ngc-linker/packages/compiler-cli/linker/file_linker"
	"ngc-linker/packages/compiler-cli/linker/treesitter"
	"ngc-linker/packages/compiler-cli/logging"
)

// fixedScope puts every declaration into the same constant scope.
type fixedScope struct {
	scope string
	ok    bool
}

func (s fixedScope) GetConstantScopeRef(treesitter.Node) (string, bool) {
	return s.scope, s.ok
}

func newFileLinker(t *testing.T) *file_linker.FileLinker[string, treesitter.Node, treesitter.Node] {
	t.Helper()
	env, err := treesitter.NewEnvironment(afero.NewMemMapFs(), logging.NewNopLogger(), environment.LinkerPartialOptions{})
	require.NoError(t, err)
	fileLinker, err := file_linker.NewFileLinker[string](env, "test.js", "")
	require.NoError(t, err)
	return fileLinker
}

// callArguments parses `src;` and returns the arguments of the call.
func callArguments(t *testing.T, src string) []treesitter.Node {
	t.Helper()
	file, err := treesitter.Parse(context.Background(), "test.js", []byte(src+";"), treesitter.JavaScript)
	require.NoError(t, err)
	statement := file.Root().NamedChildren()[0]
	call := statement.NamedChildren()[0]
	args, err := treesitter.Host{}.ParseArguments(call)
	require.NoError(t, err)
	return args
}

func directive(name string) string {
	return versionedDirective(name, "0.0.0-PLACEHOLDER")
}

func versionedDirective(name, version string) string {
	return fmt.Sprintf(`i0.ɵɵngDeclareDirective({ version: "%s", type: %s, queries: [{ propertyName: "q", predicate: ["%s"] }], ngImport: i0 })`, version, name, name)
}

func TestFileLinker(t *testing.T) {
	t.Run("should recognise declaration functions", func(t *testing.T) {
		fileLinker := newFileLinker(t)
		assert.True(t, fileLinker.IsPartialDeclaration("ɵɵngDeclareComponent"))
		assert.True(t, fileLinker.IsPartialDeclaration("ɵɵngDeclareClassMetadata"))
		assert.False(t, fileLinker.IsPartialDeclaration("ɵɵdefineComponent"))
		assert.False(t, fileLinker.IsPartialDeclaration("foo"))
	})

	t.Run("should reject calls without exactly one argument", func(t *testing.T) {
		fileLinker := newFileLinker(t)
		_, err := fileLinker.LinkPartialDeclaration("ɵɵngDeclarePipe", nil, fixedScope{})
		var malformed *linker.MalformedCallError
		require.True(t, errors.As(err, &malformed))
		assert.Nil(t, malformed.Node)
		assert.EqualError(t, err, "Invalid function call: It should have only a single object literal argument, but contained 0.")

		args := callArguments(t, "f({}, second, third)")
		_, err = fileLinker.LinkPartialDeclaration("ɵɵngDeclarePipe", args, fixedScope{})
		require.True(t, errors.As(err, &malformed))
		assert.Same(t, args[1], malformed.Node)
	})

	t.Run("should require an object literal argument", func(t *testing.T) {
		fileLinker := newFileLinker(t)
		_, err := fileLinker.LinkPartialDeclaration("ɵɵngDeclarePipe", callArguments(t, "f([])"), fixedScope{})
		assert.True(t, linker.IsFatalLinkerError(err))
	})

	t.Run("should require ngImport and version", func(t *testing.T) {
		fileLinker := newFileLinker(t)
		_, err := fileLinker.LinkPartialDeclaration("ɵɵngDeclarePipe", callArguments(t, `f({ version: "0.0.0-PLACEHOLDER" })`), fixedScope{})
		assert.ErrorContains(t, err, "ngImport")
		_, err = fileLinker.LinkPartialDeclaration("ɵɵngDeclarePipe", callArguments(t, `f({ ngImport: i0 })`), fixedScope{})
		assert.ErrorContains(t, err, "version")
	})

	t.Run("should share constants between declarations of one scope", func(t *testing.T) {
		fileLinker := newFileLinker(t)
		scope := fixedScope{scope: "module", ok: true}
		for _, name := range []string{"A", "B", "A"} {
			call := callArguments(t, directive(name))
			_, err := fileLinker.LinkPartialDeclaration("ɵɵngDeclareDirective", call, scope)
			require.NoError(t, err)
		}

		constants, err := fileLinker.GetConstantStatements()
		require.NoError(t, err)
		require.Len(t, constants, 1)
		assert.Equal(t, "module", constants[0].ConstantScope)
		require.Len(t, constants[0].Statements, 2)
		assert.Equal(t, `const _c0 = ["A"];`, fmt.Sprint(constants[0].Statements[0]))
		assert.Equal(t, `const _c1 = ["B"];`, fmt.Sprint(constants[0].Statements[1]))
	})

	t.Run("should share constants between released declarations of one scope", func(t *testing.T) {
		fileLinker := newFileLinker(t)
		scope := fixedScope{scope: "module", ok: true}
		for _, name := range []string{"A", "A"} {
			call := callArguments(t, versionedDirective(name, "11.1.1"))
			_, err := fileLinker.LinkPartialDeclaration("ɵɵngDeclareDirective", call, scope)
			require.NoError(t, err)
		}

		constants, err := fileLinker.GetConstantStatements()
		require.NoError(t, err)
		require.Len(t, constants, 1)
		require.Len(t, constants[0].Statements, 1)
		assert.Equal(t, `const _c0 = ["A"];`, fmt.Sprint(constants[0].Statements[0]))
	})

	t.Run("should report constant scopes in creation order", func(t *testing.T) {
		fileLinker := newFileLinker(t)
		for _, scope := range []string{"second", "first", "second"} {
			_, err := fileLinker.LinkPartialDeclaration("ɵɵngDeclareDirective", callArguments(t, directive(scope)), fixedScope{scope: scope, ok: true})
			require.NoError(t, err)
		}
		constants, err := fileLinker.GetConstantStatements()
		require.NoError(t, err)
		require.Len(t, constants, 2)
		assert.Equal(t, "second", constants[0].ConstantScope)
		assert.Equal(t, "first", constants[1].ConstantScope)
	})

	t.Run("should wrap declarations without a constant scope", func(t *testing.T) {
		fileLinker := newFileLinker(t)
		linked, err := fileLinker.LinkPartialDeclaration("ɵɵngDeclareDirective", callArguments(t, directive("A")), fixedScope{})
		require.NoError(t, err)
		assert.Contains(t, fmt.Sprint(linked), "(function () {\nconst _c0 = [\"A\"];\nreturn ")

		constants, err := fileLinker.GetConstantStatements()
		require.NoError(t, err)
		assert.Empty(t, constants)
	})

	t.Run("should attach the version node to unsupported versions", func(t *testing.T) {
		fileLinker := newFileLinker(t)
		args := callArguments(t, `f({ version: "1.0.0", ngImport: i0, type: P, name: "p" })`)
		_, err := fileLinker.LinkPartialDeclaration("ɵɵngDeclarePipe", args, fixedScope{})
		var unsupported *linker.UnsupportedVersionError
		require.True(t, errors.As(err, &unsupported))
		node, ok := unsupported.Node.(*treesitter.SyntaxNode)
		require.True(t, ok)
		assert.Equal(t, `"1.0.0"`, node.Text())
	})
}
