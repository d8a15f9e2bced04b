package treesitter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-json"

	"ngc-linker/packages/compiler-cli/linker/translator"
)

type precedence int

// JavaScript operator precedence, lowest first.
const (
	precComma precedence = iota
	precAssign
	precConditional
	precNullish
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precExponent
	precUnary
	precPostfix
	precCall
	precMember
	precPrimary
)

var binaryPrecedence = map[translator.BinaryOperator]precedence{
	"??":  precNullish,
	"||":  precOr,
	"&&":  precAnd,
	"|":   precBitOr,
	"^":   precBitXor,
	"&":   precBitAnd,
	"==":  precEquality,
	"!=":  precEquality,
	"===": precEquality,
	"!==": precEquality,
	"<":   precRelational,
	">":   precRelational,
	"<=":  precRelational,
	">=":  precRelational,
	"<<":  precShift,
	">>":  precShift,
	">>>": precShift,
	"+":   precAdditive,
	"-":   precAdditive,
	"*":   precMultiplicative,
	"/":   precMultiplicative,
	"%":   precMultiplicative,
	"**":  precExponent,
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

// Factory prints linked definitions as JavaScript source text. Parsed nodes
// embedded in the output keep their original text.
type Factory struct{}

var _ translator.AstFactory[Node, Node] = Factory{}

// code returns the printed form of node.
func code(node Node) *Code {
	switch n := node.(type) {
	case *Code:
		return n
	case *SyntaxNode:
		return syntaxCode(n)
	}
	panic(fmt.Sprintf("unexpected node %T", node))
}

func syntaxCode(n *SyntaxNode) *Code {
	c := &Code{text: n.Text()}
	switch n.Type() {
	case "identifier", "this", "super", "string", "template_string", "true", "false", "null", "undefined",
		"array", "parenthesized_expression", "regex", "property_identifier":
		c.prec = precPrimary
	case "number":
		c.prec = precPrimary
		c.number = true
	case "object":
		c.prec = precPrimary
		c.object = true
	case "function_expression", "function", "class":
		c.prec = precPrimary
		c.function = true
	case "member_expression", "subscript_expression", "non_null_expression":
		c.prec = precMember
	case "call_expression", "new_expression":
		c.prec = precCall
	case "unary_expression", "await_expression":
		c.prec = precUnary
	case "update_expression":
		c.prec = precPostfix
	case "binary_expression":
		c.prec = precAssign
		if operator := n.node.ChildByFieldName("operator"); operator != nil {
			c.op = operator.Type()
			if prec, ok := binaryPrecedence[translator.BinaryOperator(c.op)]; ok {
				c.prec = prec
			}
		}
	case "ternary_expression":
		c.prec = precConditional
	case "sequence_expression":
		c.prec = precComma
	default:
		c.prec = precAssign
	}
	return c
}

func paren(c *Code, needed bool) string {
	if needed {
		return "(" + c.text + ")"
	}
	return c.text
}

func (Factory) CreateArrayLiteral(elements []Node) Node {
	parts := make([]string, len(elements))
	for i, element := range elements {
		c := code(element)
		parts[i] = paren(c, c.prec < precAssign)
	}
	return &Code{text: "[" + strings.Join(parts, ", ") + "]", prec: precPrimary}
}

func (Factory) CreateAssignment(target, value Node) Node {
	t, v := code(target), code(value)
	return &Code{
		text: paren(t, t.prec < precPostfix) + " = " + paren(v, v.prec < precAssign),
		prec: precAssign,
	}
}

// mixesNullish reports whether operator and operand combine `??` with `||`
// or `&&`, which JavaScript rejects without parentheses.
func mixesNullish(operator string, operand *Code) bool {
	if operator == "??" {
		return operand.op == "||" || operand.op == "&&"
	}
	if operator == "||" || operator == "&&" {
		return operand.op == "??"
	}
	return false
}

func (Factory) CreateBinaryExpression(leftOperand Node, operator translator.BinaryOperator, rightOperand Node) Node {
	prec, ok := binaryPrecedence[operator]
	if !ok {
		panic(fmt.Sprintf("unknown binary operator %q", operator))
	}
	op := string(operator)
	l, r := code(leftOperand), code(rightOperand)
	left := paren(l, l.prec < prec || mixesNullish(op, l) || (prec == precExponent && l.prec == precUnary))
	// Exponentiation is right associative, everything else left associative.
	rightNeeds := r.prec <= prec
	if prec == precExponent {
		rightNeeds = r.prec < prec
	}
	right := paren(r, rightNeeds || mixesNullish(op, r))
	return &Code{text: left + " " + op + " " + right, prec: prec, op: op}
}

func (Factory) CreateBlock(body []Node) Node {
	if len(body) == 0 {
		return &Code{text: "{}"}
	}
	parts := make([]string, len(body))
	for i, statement := range body {
		parts[i] = code(statement).text
	}
	return &Code{text: "{\n" + strings.Join(parts, "\n") + "\n}"}
}

func (Factory) CreateCallExpression(callee Node, args []Node, pure bool) Node {
	c := code(callee)
	text := paren(c, c.prec < precCall || c.function) + "(" + argumentList(args) + ")"
	if pure {
		text = "/*@__PURE__*/ " + text
	}
	return &Code{text: text, prec: precCall}
}

func argumentList(args []Node) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		c := code(arg)
		parts[i] = paren(c, c.prec < precAssign)
	}
	return strings.Join(parts, ", ")
}

func (Factory) CreateConditional(condition, whenTrue, whenFalse Node) Node {
	c, t, f := code(condition), code(whenTrue), code(whenFalse)
	return &Code{
		text: paren(c, c.prec <= precConditional) + " ? " + paren(t, t.prec < precAssign) + " : " + paren(f, f.prec < precAssign),
		prec: precConditional,
	}
}

func (Factory) CreateElementAccess(expression, element Node) Node {
	e := code(expression)
	return &Code{
		text: paren(e, e.prec < precCall || e.function || e.object) + "[" + code(element).text + "]",
		prec: precMember,
	}
}

func (Factory) CreateExpressionStatement(expression Node) Node {
	e := code(expression)
	return &Code{text: paren(e, e.function || e.object) + ";"}
}

func (Factory) CreateFunctionDeclaration(functionName string, parameters []string, body Node) Node {
	return &Code{text: "function " + functionName + "(" + strings.Join(parameters, ", ") + ") " + code(body).text}
}

func (Factory) CreateFunctionExpression(functionName *string, parameters []string, body Node) Node {
	head := "function ("
	if functionName != nil {
		head = "function " + *functionName + "("
	}
	return &Code{
		text:     head + strings.Join(parameters, ", ") + ") " + code(body).text,
		prec:     precPrimary,
		function: true,
	}
}

func (Factory) CreateArrowFunctionExpression(parameters []string, body Node) Node {
	b := code(body)
	return &Code{
		text: "(" + strings.Join(parameters, ", ") + ") => " + paren(b, b.prec < precAssign || b.object),
		prec: precAssign,
	}
}

func (Factory) CreateArrowFunctionBlock(parameters []string, body Node) Node {
	return &Code{
		text: "(" + strings.Join(parameters, ", ") + ") => " + code(body).text,
		prec: precAssign,
	}
}

func (Factory) CreateIdentifier(name string) Node {
	return &Code{text: name, prec: precPrimary}
}

func (Factory) CreateIfStatement(condition, thenStatement Node, elseStatement *Node) Node {
	text := "if (" + code(condition).text + ") " + code(thenStatement).text
	if elseStatement != nil {
		text += " else " + code(*elseStatement).text
	}
	return &Code{text: text}
}

func (Factory) CreateLiteral(value interface{}) Node {
	switch v := value.(type) {
	case nil:
		return &Code{text: "null", prec: precPrimary}
	case bool:
		if v {
			return &Code{text: "true", prec: precPrimary}
		}
		return &Code{text: "false", prec: precPrimary}
	case string:
		return &Code{text: quote(v), prec: precPrimary}
	case int:
		return numberCode(float64(v))
	case int64:
		return numberCode(float64(v))
	case float64:
		return numberCode(v)
	}
	panic(fmt.Sprintf("unsupported literal %T", value))
}

func numberCode(v float64) *Code {
	if v < 0 {
		return &Code{text: "-" + formatNumber(-v), prec: precUnary}
	}
	return &Code{text: formatNumber(v), prec: precPrimary, number: true}
}

// quote prints s as a double quoted JavaScript string.
func quote(s string) string {
	b, err := json.MarshalWithOption(s, json.DisableHTMLEscape())
	if err != nil {
		panic(err)
	}
	return string(b)
}

func (Factory) CreateNewExpression(expression Node, args []Node) Node {
	e := code(expression)
	return &Code{
		text: "new " + paren(e, e.prec < precMember || e.function) + "(" + argumentList(args) + ")",
		prec: precMember,
	}
}

func (Factory) CreateObjectLiteral(properties []translator.ObjectLiteralProperty[Node]) Node {
	if len(properties) == 0 {
		return &Code{text: "{}", prec: precPrimary, object: true}
	}
	parts := make([]string, len(properties))
	for i, property := range properties {
		key := property.PropertyName
		if property.Quoted || !identifierPattern.MatchString(key) {
			key = quote(key)
		}
		v := code(property.Value)
		parts[i] = key + ": " + paren(v, v.prec < precAssign)
	}
	return &Code{text: "{ " + strings.Join(parts, ", ") + " }", prec: precPrimary, object: true}
}

func (Factory) CreateParenthesizedExpression(expression Node) Node {
	return &Code{text: "(" + code(expression).text + ")", prec: precPrimary}
}

func (Factory) CreatePropertyAccess(expression Node, propertyName string) Node {
	e := code(expression)
	return &Code{
		text: paren(e, e.prec < precCall || e.function || e.object || e.number) + "." + propertyName,
		prec: precMember,
	}
}

func (Factory) CreateReturnStatement(expression *Node) Node {
	if expression == nil {
		return &Code{text: "return;"}
	}
	return &Code{text: "return " + code(*expression).text + ";"}
}

func (Factory) CreateTypeOfExpression(expression Node) Node {
	e := code(expression)
	return &Code{text: "typeof " + paren(e, e.prec < precUnary), prec: precUnary}
}

func (Factory) CreateUnaryExpression(operator translator.UnaryOperator, operand Node) Node {
	o := code(operand)
	op := string(operator)
	// `- -x` and `+ +x` would otherwise print as a decrement or increment.
	needs := o.prec < precUnary || ((op == "-" || op == "+") && strings.HasPrefix(o.text, op))
	return &Code{text: op + paren(o, needs), prec: precUnary}
}

func (Factory) CreateVariableDeclaration(variableName string, initializer *Node, kind translator.VariableDeclarationType) Node {
	text := string(kind) + " " + variableName
	if initializer != nil {
		i := code(*initializer)
		text += " = " + paren(i, i.prec < precAssign)
	}
	return &Code{text: text + ";"}
}
