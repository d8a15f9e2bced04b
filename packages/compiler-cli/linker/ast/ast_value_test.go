package ast_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngc-linker/packages/compiler-cli/linker"
	"ngc-linker/packages/compiler-cli/linker/ast"
)

// node is a minimal expression tree for exercising the metadata model.
type node struct {
	kind   string
	str    string
	num    float64
	b      bool
	props  []ast.ObjectProperty[*node]
	elems  []*node
	ret    *node
	params []*node
}

func str(s string) *node   { return &node{kind: "string", str: s} }
func num(n float64) *node  { return &node{kind: "number", num: n} }
func boolean(b bool) *node { return &node{kind: "boolean", b: b} }
func null() *node          { return &node{kind: "null"} }
func ident(n string) *node { return &node{kind: "identifier", str: n} }
func arr(elems ...*node) *node {
	return &node{kind: "array", elems: elems}
}
func fn(ret *node, params ...*node) *node {
	return &node{kind: "function", ret: ret, params: params}
}

func obj(keyValues ...interface{}) *node {
	n := &node{kind: "object"}
	for i := 0; i < len(keyValues); i += 2 {
		n.props = append(n.props, ast.ObjectProperty[*node]{Key: keyValues[i].(string), Value: keyValues[i+1].(*node)})
	}
	return n
}

type host struct{}

func (host) expect(n *node, kind string) error {
	return ast.Assert(n, n.kind == kind, "a "+kind)
}

func (host) GetSymbolName(n *node) (string, bool) {
	return n.str, n.kind == "identifier"
}
func (host) IsStringLiteral(n *node) bool { return n.kind == "string" }
func (h host) ParseStringLiteral(n *node) (string, error) {
	return n.str, h.expect(n, "string")
}
func (host) IsNumericLiteral(n *node) bool { return n.kind == "number" }
func (h host) ParseNumericLiteral(n *node) (float64, error) {
	return n.num, h.expect(n, "number")
}
func (host) IsBooleanLiteral(n *node) bool { return n.kind == "boolean" }
func (h host) ParseBooleanLiteral(n *node) (bool, error) {
	return n.b, h.expect(n, "boolean")
}
func (host) IsNull(n *node) bool         { return n.kind == "null" }
func (host) IsArrayLiteral(n *node) bool { return n.kind == "array" }
func (h host) ParseArrayLiteral(n *node) ([]*node, error) {
	return n.elems, h.expect(n, "array")
}
func (host) IsObjectLiteral(n *node) bool { return n.kind == "object" }
func (h host) ParseObjectLiteral(n *node) ([]ast.ObjectProperty[*node], error) {
	return n.props, h.expect(n, "object")
}
func (host) IsFunctionExpression(n *node) bool { return n.kind == "function" }
func (h host) ParseReturnValue(n *node) (*node, error) {
	return n.ret, h.expect(n, "function")
}
func (h host) ParseParameters(n *node) ([]*node, error) {
	return n.params, h.expect(n, "function")
}
func (host) IsCallExpression(*node) bool { return false }
func (h host) ParseCallee(n *node) (*node, error) {
	return nil, h.expect(n, "call")
}
func (h host) ParseArguments(n *node) ([]*node, error) {
	return nil, h.expect(n, "call")
}
func (host) GetRange(*node) (ast.Range, error) { return ast.Range{}, nil }

func parse(t *testing.T, n *node) *ast.AstObject[*node] {
	t.Helper()
	o, err := ast.ParseAstObject[*node](host{}, n)
	require.NoError(t, err)
	return o
}

func requireFatal(t *testing.T, err error, at *node, message string) {
	t.Helper()
	require.Error(t, err)
	var fatal *linker.FatalLinkerError
	require.True(t, errors.As(err, &fatal), "expected a FatalLinkerError, got %v", err)
	assert.Equal(t, message, fatal.Message)
	assert.Same(t, at, linker.ErrorNode(err))
}

func TestAstObject(t *testing.T) {
	t.Run("should read an empty object", func(t *testing.T) {
		expression := obj()
		o := parse(t, expression)
		assert.Empty(t, o.Keys())
		assert.False(t, o.Has("a"))
		assert.Empty(t, o.ToMap())

		_, err := o.GetString("a")
		requireFatal(t, err, expression, "Expected property 'a' to be present.")
	})

	t.Run("should read primitive properties", func(t *testing.T) {
		o := parse(t, obj("s", str("x"), "n", num(1.5), "b", boolean(true), "z", null()))

		s, err := o.GetString("s")
		require.NoError(t, err)
		assert.Equal(t, "x", s)
		n, err := o.GetNumber("n")
		require.NoError(t, err)
		assert.Equal(t, 1.5, n)
		b, err := o.GetBoolean("b")
		require.NoError(t, err)
		assert.True(t, b)
		z, err := o.GetValue("z")
		require.NoError(t, err)
		assert.True(t, z.IsNull())
	})

	t.Run("should keep source order", func(t *testing.T) {
		o := parse(t, obj("b", num(1), "a", num(2), "c", num(3)))
		assert.Equal(t, []string{"b", "a", "c"}, o.Keys())

		literal, err := ast.ToLiteral(o, func(v *ast.AstValue[*node], key string) (float64, error) {
			return v.GetNumber()
		})
		require.NoError(t, err)
		assert.Equal(t, []ast.KeyValue[float64]{{Key: "b", Value: 1}, {Key: "a", Value: 2}, {Key: "c", Value: 3}}, literal)
	})

	t.Run("should reject duplicate keys", func(t *testing.T) {
		second := num(2)
		_, err := ast.ParseAstObject[*node](host{}, obj("a", num(1), "a", second))
		requireFatal(t, err, second, `Duplicate property "a" in object literal.`)
	})

	t.Run("should reject duplicate keys in nested objects", func(t *testing.T) {
		second := str("y")
		o := parse(t, obj("inner", obj("k", str("x"), "k", second)))
		_, err := o.GetObject("inner")
		requireFatal(t, err, second, `Duplicate property "k" in object literal.`)
	})

	t.Run("should read deeply nested objects", func(t *testing.T) {
		o := parse(t, obj("a", obj("b", obj("c", obj("d", str("deep"))))))
		for _, key := range []string{"a", "b", "c"} {
			var err error
			o, err = o.GetObject(key)
			require.NoError(t, err, key)
		}
		d, err := o.GetString("d")
		require.NoError(t, err)
		assert.Equal(t, "deep", d)
	})

	t.Run("should read arrays of any length", func(t *testing.T) {
		o := parse(t, obj(
			"none", arr(),
			"one", arr(str("a")),
			"many", arr(str("a"), str("b"), str("c"), str("d")),
		))
		for key, want := range map[string][]string{
			"none": {},
			"one":  {"a"},
			"many": {"a", "b", "c", "d"},
		} {
			values, err := o.GetArray(key)
			require.NoError(t, err, key)
			got := make([]string, len(values))
			for i, v := range values {
				got[i], err = v.GetString()
				require.NoError(t, err)
			}
			assert.Equal(t, want, got, key)
		}
	})

	t.Run("should read arrays of objects", func(t *testing.T) {
		o := parse(t, obj("queries", arr(obj("propertyName", str("items")), obj("propertyName", str("item")))))
		values, err := o.GetArray("queries")
		require.NoError(t, err)
		require.Len(t, values, 2)
		query, err := values[1].GetObject()
		require.NoError(t, err)
		name, err := query.GetString("propertyName")
		require.NoError(t, err)
		assert.Equal(t, "item", name)
	})

	t.Run("should name the property on a shape mismatch", func(t *testing.T) {
		object, text, number, none := obj(), str("x"), num(1), null()
		o := parse(t, obj("o", object, "s", text, "n", number, "z", none))

		_, err := o.GetString("o")
		requireFatal(t, err, object, "Unsupported syntax, expected a string literal for property 'o'.")
		_, err = o.GetNumber("s")
		requireFatal(t, err, text, "Unsupported syntax, expected a numeric literal for property 's'.")
		_, err = o.GetBoolean("z")
		requireFatal(t, err, none, "Unsupported syntax, expected a boolean literal for property 'z'.")
		_, err = o.GetObject("n")
		requireFatal(t, err, number, "Unsupported syntax, expected an object literal for property 'n'.")
		_, err = o.GetArray("s")
		requireFatal(t, err, text, "Unsupported syntax, expected an array literal for property 's'.")
	})

	t.Run("should wrap opaque properties unchanged", func(t *testing.T) {
		typeExpr := ident("MyDir")
		o := parse(t, obj("type", typeExpr))
		wrapped, err := o.GetOpaque("type")
		require.NoError(t, err)
		assert.Same(t, typeExpr, wrapped.Node)

		_, err = o.GetOpaque("missing")
		assert.Error(t, err)
	})
}

func TestAstValue(t *testing.T) {
	t.Run("should name identifiers only", func(t *testing.T) {
		name, ok := ast.NewAstValue[*node](host{}, ident("i0")).GetSymbolName()
		assert.True(t, ok)
		assert.Equal(t, "i0", name)

		_, ok = ast.NewAstValue[*node](host{}, str("i0")).GetSymbolName()
		assert.False(t, ok)
	})

	t.Run("should report the kind of a value", func(t *testing.T) {
		v := ast.NewAstValue[*node](host{}, arr())
		assert.True(t, v.IsArray())
		assert.False(t, v.IsObject())
		assert.False(t, v.IsString())
		assert.False(t, v.IsNumber())
		assert.False(t, v.IsBoolean())
		assert.False(t, v.IsFunction())
	})

	t.Run("should read function return values and parameters", func(t *testing.T) {
		ret := arr(ident("A"))
		v := ast.NewAstValue[*node](host{}, fn(ret, ident("x"), ident("y")))
		require.True(t, v.IsFunction())

		returned, err := v.GetFunctionReturnValue()
		require.NoError(t, err)
		assert.Same(t, ret, returned.Expression)

		params, err := v.GetFunctionParameters()
		require.NoError(t, err)
		require.Len(t, params, 2)
		name, _ := params[1].GetSymbolName()
		assert.Equal(t, "y", name)
	})

	t.Run("should fail when the shape does not match", func(t *testing.T) {
		text := str("x")
		_, err := ast.NewAstValue[*node](host{}, text).GetFunctionReturnValue()
		requireFatal(t, err, text, "Unsupported syntax, expected a function.")
	})
}
