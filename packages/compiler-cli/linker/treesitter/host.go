package treesitter

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"

	"ngc-linker/packages/compiler-cli/linker"
	"ngc-linker/packages/compiler-cli/linker/ast"
)

// Host reads tree-sitter syntax nodes. Parentheses around an expression are
// looked through, the way an ESTree parser drops them.
type Host struct{}

var _ ast.AstHost[Node] = Host{}

// syntax returns the syntax node behind node with parentheses removed.
func syntax(node Node) (*SyntaxNode, bool) {
	n, ok := node.(*SyntaxNode)
	if !ok {
		return nil, false
	}
	return n.file.wrap(unparen(n.node)), true
}

func unparen(n *sitter.Node) *sitter.Node {
	for n.Type() == "parenthesized_expression" {
		children := namedChildren(n)
		if len(children) != 1 {
			return n
		}
		n = children[0]
	}
	return n
}

func (Host) GetSymbolName(node Node) (string, bool) {
	n, ok := syntax(node)
	if !ok {
		return "", false
	}
	return symbolName(n.file, n.node)
}

func symbolName(f *File, n *sitter.Node) (string, bool) {
	switch n.Type() {
	case "identifier":
		return f.text(n), true
	case "member_expression":
		property := n.ChildByFieldName("property")
		if property == nil {
			return "", false
		}
		return f.text(property), true
	case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression":
		children := namedChildren(n)
		if len(children) == 0 {
			return "", false
		}
		return symbolName(f, children[0])
	}
	return "", false
}

func (Host) IsStringLiteral(node Node) bool {
	n, ok := syntax(node)
	if !ok {
		return false
	}
	switch n.Type() {
	case "string":
		return true
	case "template_string":
		return !hasSubstitution(n.node)
	}
	return false
}

func hasSubstitution(n *sitter.Node) bool {
	for _, child := range namedChildren(n) {
		if child.Type() == "template_substitution" {
			return true
		}
	}
	return false
}

func (h Host) ParseStringLiteral(str Node) (string, error) {
	if err := ast.Assert(str, h.IsStringLiteral(str), "a string literal"); err != nil {
		return "", err
	}
	n, _ := syntax(str)
	raw := n.Text()
	body := raw[1 : len(raw)-1]
	if n.Type() == "template_string" {
		body = strings.ReplaceAll(body, "\r\n", "\n")
		body = strings.ReplaceAll(body, "\r", "\n")
	}
	value, err := unescapeJS(body)
	if err != nil {
		return "", linker.NewFatalLinkerErrorf(str, "Unsupported syntax, %s.", err.Error())
	}
	return value, nil
}

func (Host) IsNumericLiteral(node Node) bool {
	n, ok := syntax(node)
	if !ok {
		return false
	}
	switch n.Type() {
	case "number":
		return true
	case "unary_expression":
		operator := n.node.ChildByFieldName("operator")
		argument := n.node.ChildByFieldName("argument")
		return operator != nil && argument != nil && operator.Type() == "-" && unparen(argument).Type() == "number"
	}
	return false
}

func (h Host) ParseNumericLiteral(num Node) (float64, error) {
	if err := ast.Assert(num, h.IsNumericLiteral(num), "a numeric literal"); err != nil {
		return 0, err
	}
	n, _ := syntax(num)
	sign := 1.0
	target := n.node
	if target.Type() == "unary_expression" {
		sign = -1
		target = unparen(target.ChildByFieldName("argument"))
	}
	value, ok := parseNumber(n.file.text(target))
	if !ok {
		return 0, linker.NewFatalLinkerError(num, "Unsupported syntax, expected a numeric literal.")
	}
	return sign * value, nil
}

// parseNumber parses a JavaScript numeric literal. BigInt literals are
// rejected.
func parseNumber(text string) (float64, bool) {
	text = strings.ReplaceAll(text, "_", "")
	if strings.HasSuffix(text, "n") {
		return 0, false
	}
	if len(text) > 2 && text[0] == '0' {
		base := 0
		switch text[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			i, ok := new(big.Int).SetString(text[2:], base)
			if !ok {
				return 0, false
			}
			f, _ := new(big.Float).SetInt(i).Float64()
			return f, true
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

func (Host) IsBooleanLiteral(node Node) bool {
	n, ok := syntax(node)
	if !ok {
		return false
	}
	switch n.Type() {
	case "true", "false":
		return true
	}
	_, minified := minifiedBoolean(n)
	return minified
}

// minifiedBoolean recognises `!0` and `!1`.
func minifiedBoolean(n *SyntaxNode) (bool, bool) {
	if n.Type() != "unary_expression" {
		return false, false
	}
	operator := n.node.ChildByFieldName("operator")
	argument := n.node.ChildByFieldName("argument")
	if operator == nil || argument == nil || operator.Type() != "!" {
		return false, false
	}
	argument = unparen(argument)
	if argument.Type() != "number" {
		return false, false
	}
	switch n.file.text(argument) {
	case "0":
		return true, true
	case "1":
		return false, true
	}
	return false, false
}

func (h Host) ParseBooleanLiteral(b Node) (bool, error) {
	if err := ast.Assert(b, h.IsBooleanLiteral(b), "a boolean literal"); err != nil {
		return false, err
	}
	n, _ := syntax(b)
	if value, ok := minifiedBoolean(n); ok {
		return value, nil
	}
	return n.Type() == "true", nil
}

func (Host) IsNull(node Node) bool {
	n, ok := syntax(node)
	return ok && n.Type() == "null"
}

func (Host) IsArrayLiteral(node Node) bool {
	n, ok := syntax(node)
	return ok && n.Type() == "array"
}

func (h Host) ParseArrayLiteral(array Node) ([]Node, error) {
	if err := ast.Assert(array, h.IsArrayLiteral(array), "an array literal"); err != nil {
		return nil, err
	}
	n, _ := syntax(array)
	var elements []Node
	// filled tracks whether the slot since the last separator holds a value.
	filled := false
	count := int(n.node.ChildCount())
	for i := 0; i < count; i++ {
		child := n.node.Child(i)
		switch child.Type() {
		case "[", "]", "comment":
			continue
		case ",":
			if !filled {
				return nil, linker.NewFatalLinkerError(array, "Unsupported syntax, expected element in array not to be empty.")
			}
			filled = false
			continue
		case "spread_element":
			return nil, linker.NewFatalLinkerError(n.file.wrap(child), "Unsupported syntax, expected element in array not to use spread syntax.")
		}
		elements = append(elements, n.file.wrap(unparen(child)))
		filled = true
	}
	return elements, nil
}

func (Host) IsObjectLiteral(node Node) bool {
	n, ok := syntax(node)
	return ok && n.Type() == "object"
}

func (h Host) ParseObjectLiteral(obj Node) ([]ast.ObjectProperty[Node], error) {
	if err := ast.Assert(obj, h.IsObjectLiteral(obj), "an object literal"); err != nil {
		return nil, err
	}
	n, _ := syntax(obj)
	var properties []ast.ObjectProperty[Node]
	for _, child := range namedChildren(n.node) {
		if child.Type() != "pair" {
			return nil, linker.NewFatalLinkerError(n.file.wrap(child), "Unsupported syntax, expected a property assignment.")
		}
		keyNode := child.ChildByFieldName("key")
		key, err := h.propertyName(n.file, keyNode)
		if err != nil {
			return nil, err
		}
		properties = append(properties, ast.ObjectProperty[Node]{
			Key:   key,
			Value: n.file.wrap(unparen(child.ChildByFieldName("value"))),
		})
	}
	return properties, nil
}

func (h Host) propertyName(f *File, key *sitter.Node) (string, error) {
	switch key.Type() {
	case "property_identifier", "identifier":
		return f.text(key), nil
	case "string":
		return h.ParseStringLiteral(f.wrap(key))
	case "number":
		value, ok := parseNumber(f.text(key))
		if ok {
			return formatNumber(value), nil
		}
	}
	return "", linker.NewFatalLinkerError(f.wrap(key), "Unsupported syntax, expected a property name.")
}

func (Host) IsFunctionExpression(node Node) bool {
	n, ok := syntax(node)
	return ok && isFunctionType(n.Type())
}

func isFunctionType(nodeType string) bool {
	switch nodeType {
	case "arrow_function", "function_expression", "function", "function_declaration":
		return true
	}
	return false
}

func (h Host) ParseReturnValue(fn Node) (Node, error) {
	if err := ast.Assert(fn, h.IsFunctionExpression(fn), "a function"); err != nil {
		return nil, err
	}
	n, _ := syntax(fn)
	body := n.node.ChildByFieldName("body")
	if body == nil {
		return nil, linker.NewFatalLinkerError(fn, "Unsupported syntax, expected a function body with a single return statement.")
	}
	if body.Type() != "statement_block" {
		return n.file.wrap(unparen(body)), nil
	}
	statements := namedChildren(body)
	if len(statements) != 1 || statements[0].Type() != "return_statement" {
		return nil, linker.NewFatalLinkerError(n.file.wrap(body), "Unsupported syntax, expected a function body with a single return statement.")
	}
	values := namedChildren(statements[0])
	if len(values) == 0 {
		return nil, linker.NewFatalLinkerError(n.file.wrap(statements[0]), "Unsupported syntax, expected function to return a value.")
	}
	return n.file.wrap(unparen(values[0])), nil
}

func (h Host) ParseParameters(fn Node) ([]Node, error) {
	if err := ast.Assert(fn, h.IsFunctionExpression(fn), "a function"); err != nil {
		return nil, err
	}
	n, _ := syntax(fn)
	if single := n.node.ChildByFieldName("parameter"); single != nil {
		return []Node{n.file.wrap(single)}, nil
	}
	params := n.node.ChildByFieldName("parameters")
	if params == nil {
		return nil, nil
	}
	var result []Node
	for _, param := range namedChildren(params) {
		if pattern := param.ChildByFieldName("pattern"); pattern != nil {
			param = pattern
		}
		result = append(result, n.file.wrap(param))
	}
	return result, nil
}

func (Host) IsCallExpression(node Node) bool {
	n, ok := syntax(node)
	if !ok || n.Type() != "call_expression" {
		return false
	}
	args := n.node.ChildByFieldName("arguments")
	return args != nil && args.Type() == "arguments"
}

func (h Host) ParseCallee(call Node) (Node, error) {
	if err := ast.Assert(call, h.IsCallExpression(call), "a call expression"); err != nil {
		return nil, err
	}
	n, _ := syntax(call)
	return n.file.wrap(unparen(n.node.ChildByFieldName("function"))), nil
}

func (h Host) ParseArguments(call Node) ([]Node, error) {
	if err := ast.Assert(call, h.IsCallExpression(call), "a call expression"); err != nil {
		return nil, err
	}
	n, _ := syntax(call)
	var args []Node
	for _, arg := range namedChildren(n.node.ChildByFieldName("arguments")) {
		if arg.Type() == "spread_element" {
			return nil, linker.NewFatalLinkerError(n.file.wrap(arg), "Unsupported syntax, expected argument not to use spread syntax.")
		}
		args = append(args, n.file.wrap(unparen(arg)))
	}
	return args, nil
}

func (Host) GetRange(node Node) (ast.Range, error) {
	n, ok := node.(*SyntaxNode)
	if !ok {
		return ast.Range{}, linker.NewFatalLinkerError(node, "Unable to read range for node - it is missing location information.")
	}
	start := n.node.StartPoint()
	return ast.Range{
		StartLine: int(start.Row),
		StartCol:  int(start.Column),
		StartPos:  int(n.node.StartByte()),
		EndPos:    int(n.node.EndByte()),
	}, nil
}

// formatNumber prints a float64 the way JavaScript's Number#toString does
// for the common cases.
func formatNumber(value float64) string {
	switch {
	case math.IsNaN(value):
		return "NaN"
	case math.IsInf(value, 1):
		return "Infinity"
	case math.IsInf(value, -1):
		return "-Infinity"
	case value == math.Trunc(value) && math.Abs(value) < 1e21:
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	return strconv.FormatFloat(value, 'g', -1, 64)
}
