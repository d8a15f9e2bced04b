package treesitter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngc-linker/packages/compiler-cli/linker"
)

// parseExpression parses src as a single parenthesized expression statement.
func parseExpression(t *testing.T, src string) *SyntaxNode {
	t.Helper()
	file, err := Parse(context.Background(), "test.js", []byte("("+src+");"), JavaScript)
	require.NoError(t, err)
	statements := namedChildren(file.tree.RootNode())
	require.Len(t, statements, 1)
	expressions := namedChildren(statements[0])
	require.Len(t, expressions, 1)
	return file.wrap(unparen(expressions[0]))
}

func text(t *testing.T, node Node) string {
	t.Helper()
	n, ok := node.(*SyntaxNode)
	require.True(t, ok, "expected a syntax node, got %T", node)
	return n.Text()
}

func TestHostGetSymbolName(t *testing.T) {
	host := Host{}
	for src, want := range map[string]string{
		"MyClass":               "MyClass",
		"i0.Component":          "Component",
		"a.b.c":                 "c",
		"(MyClass)":             "MyClass",
		"i0.FactoryTarget.Pipe": "Pipe",
	} {
		t.Run(src, func(t *testing.T) {
			name, ok := host.GetSymbolName(parseExpression(t, src))
			require.True(t, ok)
			assert.Equal(t, want, name)
		})
	}

	t.Run("should not name a call", func(t *testing.T) {
		_, ok := host.GetSymbolName(parseExpression(t, "foo()"))
		assert.False(t, ok)
	})

	t.Run("should look through TypeScript wrappers", func(t *testing.T) {
		file, err := Parse(context.Background(), "test.ts", []byte("(i0.Foo as any)!;"), TypeScript)
		require.NoError(t, err)
		expression := namedChildren(namedChildren(file.tree.RootNode())[0])[0]
		name, ok := host.GetSymbolName(file.wrap(expression))
		require.True(t, ok)
		assert.Equal(t, "Foo", name)
	})

	t.Run("should not name printed code", func(t *testing.T) {
		_, ok := host.GetSymbolName(Factory{}.CreateIdentifier("x"))
		assert.False(t, ok)
	})
}

func TestHostStrings(t *testing.T) {
	host := Host{}
	for src, want := range map[string]string{
		`"hello"`:              "hello",
		`'it\'s'`:              "it's",
		`"a\nb"`:               "a\nb",
		`"\x41B\u{43}"`:        "ABC",
		`"\uD83D\uDE00"`:       "\U0001F600",
		"`template`":           "template",
		"\"line\\\ncontinued\"": "linecontinued",
		`"\0"`:                 "\x00",
	} {
		t.Run(src, func(t *testing.T) {
			node := parseExpression(t, src)
			require.True(t, host.IsStringLiteral(node))
			value, err := host.ParseStringLiteral(node)
			require.NoError(t, err)
			assert.Equal(t, want, value)
		})
	}

	t.Run("should reject templates with substitutions", func(t *testing.T) {
		node := parseExpression(t, "`a${b}`")
		assert.False(t, host.IsStringLiteral(node))
		_, err := host.ParseStringLiteral(node)
		assert.True(t, linker.IsFatalLinkerError(err))
		assert.EqualError(t, err, "Unsupported syntax, expected a string literal.")
	})
}

func TestHostNumbers(t *testing.T) {
	host := Host{}
	for src, want := range map[string]float64{
		"42":    42,
		"1.5":   1.5,
		"-3":    -3,
		"0x1F":  31,
		"0b101": 5,
		"0o17":  15,
		"1_000": 1000,
		"1e3":   1000,
	} {
		t.Run(src, func(t *testing.T) {
			node := parseExpression(t, src)
			require.True(t, host.IsNumericLiteral(node))
			value, err := host.ParseNumericLiteral(node)
			require.NoError(t, err)
			assert.Equal(t, want, value)
		})
	}

	t.Run("should not treat other unary expressions as numbers", func(t *testing.T) {
		assert.False(t, host.IsNumericLiteral(parseExpression(t, "-x")))
		assert.False(t, host.IsNumericLiteral(parseExpression(t, "!1")))
	})
}

func TestHostBooleansAndNull(t *testing.T) {
	host := Host{}
	for src, want := range map[string]bool{"true": true, "false": false, "!0": true, "!1": false} {
		t.Run(src, func(t *testing.T) {
			node := parseExpression(t, src)
			require.True(t, host.IsBooleanLiteral(node))
			value, err := host.ParseBooleanLiteral(node)
			require.NoError(t, err)
			assert.Equal(t, want, value)
		})
	}

	assert.True(t, host.IsNull(parseExpression(t, "null")))
	assert.False(t, host.IsNull(parseExpression(t, "undefined")))
	assert.False(t, host.IsBooleanLiteral(parseExpression(t, "!2")))
}

func TestHostArrays(t *testing.T) {
	host := Host{}

	t.Run("should return the elements in order", func(t *testing.T) {
		elements, err := host.ParseArrayLiteral(parseExpression(t, "[a, 'b', (c), 1,]"))
		require.NoError(t, err)
		require.Len(t, elements, 4)
		assert.Equal(t, "a", text(t, elements[0]))
		assert.Equal(t, "'b'", text(t, elements[1]))
		assert.Equal(t, "c", text(t, elements[2]))
		assert.Equal(t, "1", text(t, elements[3]))
	})

	t.Run("should accept an empty array", func(t *testing.T) {
		elements, err := host.ParseArrayLiteral(parseExpression(t, "[]"))
		require.NoError(t, err)
		assert.Empty(t, elements)
	})

	t.Run("should reject spread elements", func(t *testing.T) {
		_, err := host.ParseArrayLiteral(parseExpression(t, "[a, ...b]"))
		assert.EqualError(t, err, "Unsupported syntax, expected element in array not to use spread syntax.")
		node, ok := linker.ErrorNode(err).(*SyntaxNode)
		require.True(t, ok)
		assert.Equal(t, "...b", node.Text())
	})

	t.Run("should reject elided elements", func(t *testing.T) {
		_, err := host.ParseArrayLiteral(parseExpression(t, "[a, , b]"))
		assert.EqualError(t, err, "Unsupported syntax, expected element in array not to be empty.")
		_, err = host.ParseArrayLiteral(parseExpression(t, "[, a]"))
		assert.Error(t, err)
	})

	t.Run("should reject non arrays", func(t *testing.T) {
		_, err := host.ParseArrayLiteral(parseExpression(t, "{}"))
		assert.EqualError(t, err, "Unsupported syntax, expected an array literal.")
	})
}

func TestHostObjects(t *testing.T) {
	host := Host{}

	t.Run("should return the properties in source order", func(t *testing.T) {
		properties, err := host.ParseObjectLiteral(parseExpression(t, `{ b: 1, 'quoted-key': x, "a": [], 2: y /* note */ }`))
		require.NoError(t, err)
		keys := make([]string, len(properties))
		for i, p := range properties {
			keys[i] = p.Key
		}
		assert.Equal(t, []string{"b", "quoted-key", "a", "2"}, keys)
		assert.Equal(t, "x", text(t, properties[1].Value))
	})

	t.Run("should reject shorthand and spread properties", func(t *testing.T) {
		_, err := host.ParseObjectLiteral(parseExpression(t, "{ a }"))
		assert.EqualError(t, err, "Unsupported syntax, expected a property assignment.")
		_, err = host.ParseObjectLiteral(parseExpression(t, "{ ...a }"))
		assert.EqualError(t, err, "Unsupported syntax, expected a property assignment.")
	})

	t.Run("should reject computed keys", func(t *testing.T) {
		_, err := host.ParseObjectLiteral(parseExpression(t, "{ [a]: 1 }"))
		assert.EqualError(t, err, "Unsupported syntax, expected a property name.")
	})
}

func TestHostFunctions(t *testing.T) {
	host := Host{}

	t.Run("should return an arrow expression body", func(t *testing.T) {
		value, err := host.ParseReturnValue(parseExpression(t, "() => Foo"))
		require.NoError(t, err)
		assert.Equal(t, "Foo", text(t, value))
	})

	t.Run("should unwrap a parenthesized object body", func(t *testing.T) {
		value, err := host.ParseReturnValue(parseExpression(t, "() => ({ a: 1 })"))
		require.NoError(t, err)
		assert.True(t, host.IsObjectLiteral(value))
	})

	t.Run("should return the argument of a single return statement", func(t *testing.T) {
		value, err := host.ParseReturnValue(parseExpression(t, "function () { return [Foo]; }"))
		require.NoError(t, err)
		assert.Equal(t, "[Foo]", text(t, value))
	})

	t.Run("should reject bodies with more statements", func(t *testing.T) {
		_, err := host.ParseReturnValue(parseExpression(t, "function () { foo(); return Foo; }"))
		assert.EqualError(t, err, "Unsupported syntax, expected a function body with a single return statement.")
	})

	t.Run("should reject an empty return", func(t *testing.T) {
		_, err := host.ParseReturnValue(parseExpression(t, "() => { return; }"))
		assert.EqualError(t, err, "Unsupported syntax, expected function to return a value.")
	})

	t.Run("should list parameters", func(t *testing.T) {
		params, err := host.ParseParameters(parseExpression(t, "(a, b = 1) => a"))
		require.NoError(t, err)
		require.Len(t, params, 2)
		assert.Equal(t, "a", text(t, params[0]))

		params, err = host.ParseParameters(parseExpression(t, "x => x"))
		require.NoError(t, err)
		require.Len(t, params, 1)
		assert.Equal(t, "x", text(t, params[0]))
	})
}

func TestHostCalls(t *testing.T) {
	host := Host{}

	t.Run("should split callee and arguments", func(t *testing.T) {
		call := parseExpression(t, "forwardRef(() => Foo, 2)")
		require.True(t, host.IsCallExpression(call))
		callee, err := host.ParseCallee(call)
		require.NoError(t, err)
		assert.Equal(t, "forwardRef", text(t, callee))
		args, err := host.ParseArguments(call)
		require.NoError(t, err)
		require.Len(t, args, 2)
		assert.Equal(t, "2", text(t, args[1]))
	})

	t.Run("should reject spread arguments", func(t *testing.T) {
		_, err := host.ParseArguments(parseExpression(t, "f(...args)"))
		assert.EqualError(t, err, "Unsupported syntax, expected argument not to use spread syntax.")
	})

	t.Run("should not treat tagged templates or new expressions as calls", func(t *testing.T) {
		assert.False(t, host.IsCallExpression(parseExpression(t, "tag`x`")))
		assert.False(t, host.IsCallExpression(parseExpression(t, "new Foo()")))
	})
}

func TestHostGetRange(t *testing.T) {
	file, err := Parse(context.Background(), "test.js", []byte("const a = 1;\nfoo(  'bar');"), JavaScript)
	require.NoError(t, err)
	call := namedChildren(namedChildren(file.tree.RootNode())[1])[0]
	args, err := Host{}.ParseArguments(file.wrap(call))
	require.NoError(t, err)

	r, err := Host{}.GetRange(args[0])
	require.NoError(t, err)
	assert.Equal(t, 1, r.StartLine)
	assert.Equal(t, 6, r.StartCol)
	assert.Equal(t, 19, r.StartPos)
	assert.Equal(t, 24, r.EndPos)

	_, err = Host{}.GetRange(Factory{}.CreateIdentifier("x"))
	assert.EqualError(t, err, "Unable to read range for node - it is missing location information.")
}
