package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ngc-linker/packages/compiler-cli/linker/translator"
)

func TestFactory(t *testing.T) {
	f := Factory{}
	id := f.CreateIdentifier
	printed := func(n Node) string { return code(n).text }

	t.Run("should print literals", func(t *testing.T) {
		assert.Equal(t, `"it's \"quoted\" <b>"`, printed(f.CreateLiteral(`it's "quoted" <b>`)))
		assert.Equal(t, `"a && b > c\nd"`, printed(f.CreateLiteral("a && b > c\nd")))
		assert.Equal(t, "42", printed(f.CreateLiteral(42)))
		assert.Equal(t, "1.5", printed(f.CreateLiteral(1.5)))
		assert.Equal(t, "-1", printed(f.CreateLiteral(-1)))
		assert.Equal(t, "true", printed(f.CreateLiteral(true)))
		assert.Equal(t, "null", printed(f.CreateLiteral(nil)))
	})

	t.Run("should parenthesize lower precedence operands", func(t *testing.T) {
		sum := f.CreateBinaryExpression(id("a"), "+", id("b"))
		assert.Equal(t, "(a + b) * c", printed(f.CreateBinaryExpression(sum, "*", id("c"))))
		assert.Equal(t, "c - (a + b)", printed(f.CreateBinaryExpression(id("c"), "-", sum)))
		assert.Equal(t, "a + b + c", printed(f.CreateBinaryExpression(sum, "+", id("c"))))
	})

	t.Run("should parenthesize an assignment operand", func(t *testing.T) {
		assign := f.CreateAssignment(id("a"), id("b"))
		assert.Equal(t, "a || (a = b)", printed(f.CreateBinaryExpression(id("a"), "||", assign)))
	})

	t.Run("should not mix nullish coalescing with logical operators", func(t *testing.T) {
		or := f.CreateBinaryExpression(id("a"), "||", id("b"))
		assert.Equal(t, "(a || b) ?? c", printed(f.CreateBinaryExpression(or, "??", id("c"))))
	})

	t.Run("should print pure calls", func(t *testing.T) {
		callee := f.CreatePropertyAccess(id("i0"), "ɵɵdefinePipe")
		call := f.CreateCallExpression(callee, []Node{f.CreateObjectLiteral(nil)}, true)
		assert.Equal(t, "/*@__PURE__*/ i0.ɵɵdefinePipe({})", printed(call))
	})

	t.Run("should wrap an immediately invoked function", func(t *testing.T) {
		value := f.CreateLiteral(1)
		body := f.CreateBlock([]Node{f.CreateReturnStatement(&value)})
		fn := f.CreateFunctionExpression(nil, []string{}, body)
		assert.Equal(t, "(function () {\nreturn 1;\n})()", printed(f.CreateCallExpression(fn, nil, false)))
	})

	t.Run("should parenthesize an object arrow body", func(t *testing.T) {
		obj := f.CreateObjectLiteral([]translator.ObjectLiteralProperty[Node]{{PropertyName: "a", Value: id("b")}})
		assert.Equal(t, "(t) => ({ a: b })", printed(f.CreateArrowFunctionExpression([]string{"t"}, obj)))
	})

	t.Run("should quote keys that are not identifiers", func(t *testing.T) {
		obj := f.CreateObjectLiteral([]translator.ObjectLiteralProperty[Node]{
			{PropertyName: "plain", Value: id("a")},
			{PropertyName: "with-dash", Value: id("b")},
			{PropertyName: "forced", Value: id("c"), Quoted: true},
		})
		assert.Equal(t, `{ plain: a, "with-dash": b, "forced": c }`, printed(obj))
	})

	t.Run("should print conditionals and unary operators", func(t *testing.T) {
		cond := f.CreateConditional(id("a"), f.CreateLiteral(1), f.CreateLiteral(2))
		assert.Equal(t, "a ? 1 : 2", printed(cond))
		assert.Equal(t, "!(a ? 1 : 2)", printed(f.CreateUnaryExpression(translator.UnaryOperatorNot, cond)))
		assert.Equal(t, "-(-1)", printed(f.CreateUnaryExpression(translator.UnaryOperatorMinus, f.CreateLiteral(-1))))
		assert.Equal(t, "typeof ngDevMode", printed(f.CreateTypeOfExpression(id("ngDevMode"))))
	})

	t.Run("should print statements", func(t *testing.T) {
		value := f.CreateArrayLiteral([]Node{f.CreateLiteral("item")})
		assert.Equal(t, `const _c0 = ["item"];`, printed(f.CreateVariableDeclaration("_c0", &value, translator.VariableDeclarationConst)))

		then := f.CreateBlock([]Node{f.CreateExpressionStatement(f.CreateCallExpression(id("f"), nil, false))})
		assert.Equal(t, "if (rf & 1) {\nf();\n}", printed(f.CreateIfStatement(f.CreateBinaryExpression(id("rf"), "&", f.CreateLiteral(1)), then, nil)))
	})

	t.Run("should keep parsed nodes verbatim", func(t *testing.T) {
		node := parseExpression(t, "a, b")
		assert.Equal(t, "f((a, b))", printed(f.CreateCallExpression(id("f"), []Node{node}, false)))
		fn := parseExpression(t, "() => Foo")
		assert.Equal(t, "(() => Foo)()", printed(f.CreateCallExpression(fn, nil, false)))
	})
}
