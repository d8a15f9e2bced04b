package ast

import (
	"ngc-linker/packages/compiler-cli/linker"
	"ngc-linker/packages/compiler/output"
)

// AstObject is a typed, ordered view over an object literal expression.
// Accessors fail with a *linker.FatalLinkerError naming the property when it is
// missing or has the wrong shape.
type AstObject[E any] struct {
	Expression E
	host       AstHost[E]
	props      []ObjectProperty[E]
	index      map[string]int
}

// ParseAstObject wraps expression, which must be an object literal.
// Duplicate keys are rejected.
func ParseAstObject[E any](host AstHost[E], expression E) (*AstObject[E], error) {
	props, err := host.ParseObjectLiteral(expression)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(props))
	for i, prop := range props {
		if _, dup := index[prop.Key]; dup {
			return nil, linker.NewFatalLinkerErrorf(prop.Value, "Duplicate property %q in object literal.", prop.Key)
		}
		index[prop.Key] = i
	}
	return &AstObject[E]{Expression: expression, host: host, props: props, index: index}, nil
}

// Has reports whether the object has a property named propertyName.
func (o *AstObject[E]) Has(propertyName string) bool {
	_, ok := o.index[propertyName]
	return ok
}

// Keys returns the property names in source order.
func (o *AstObject[E]) Keys() []string {
	keys := make([]string, len(o.props))
	for i, prop := range o.props {
		keys[i] = prop.Key
	}
	return keys
}

func (o *AstObject[E]) getRequired(propertyName string) (E, error) {
	i, ok := o.index[propertyName]
	if !ok {
		var zero E
		return zero, linker.NewFatalLinkerErrorf(o.Expression, "Expected property '%s' to be present.", propertyName)
	}
	return o.props[i].Value, nil
}

func (o *AstObject[E]) shapeError(node E, propertyName, expected string) error {
	return linker.NewFatalLinkerErrorf(node, "Unsupported syntax, expected %s for property '%s'.", expected, propertyName)
}

// GetNumber returns the numeric value of a property.
func (o *AstObject[E]) GetNumber(propertyName string) (float64, error) {
	node, err := o.getRequired(propertyName)
	if err != nil {
		return 0, err
	}
	if !o.host.IsNumericLiteral(node) {
		return 0, o.shapeError(node, propertyName, "a numeric literal")
	}
	return o.host.ParseNumericLiteral(node)
}

// GetString returns the string value of a property.
func (o *AstObject[E]) GetString(propertyName string) (string, error) {
	node, err := o.getRequired(propertyName)
	if err != nil {
		return "", err
	}
	if !o.host.IsStringLiteral(node) {
		return "", o.shapeError(node, propertyName, "a string literal")
	}
	return o.host.ParseStringLiteral(node)
}

// GetBoolean returns the boolean value of a property.
func (o *AstObject[E]) GetBoolean(propertyName string) (bool, error) {
	node, err := o.getRequired(propertyName)
	if err != nil {
		return false, err
	}
	if !o.host.IsBooleanLiteral(node) {
		return false, o.shapeError(node, propertyName, "a boolean literal")
	}
	return o.host.ParseBooleanLiteral(node)
}

// GetObject returns a property that is itself an object literal.
func (o *AstObject[E]) GetObject(propertyName string) (*AstObject[E], error) {
	node, err := o.getRequired(propertyName)
	if err != nil {
		return nil, err
	}
	if !o.host.IsObjectLiteral(node) {
		return nil, o.shapeError(node, propertyName, "an object literal")
	}
	return ParseAstObject(o.host, node)
}

// GetArray returns the elements of an array literal property.
func (o *AstObject[E]) GetArray(propertyName string) ([]*AstValue[E], error) {
	node, err := o.getRequired(propertyName)
	if err != nil {
		return nil, err
	}
	if !o.host.IsArrayLiteral(node) {
		return nil, o.shapeError(node, propertyName, "an array literal")
	}
	elements, err := o.host.ParseArrayLiteral(node)
	if err != nil {
		return nil, err
	}
	values := make([]*AstValue[E], len(elements))
	for i, el := range elements {
		values[i] = NewAstValue(o.host, el)
	}
	return values, nil
}

// GetOpaque returns the property as an output expression that is emitted unchanged.
func (o *AstObject[E]) GetOpaque(propertyName string) (*output.WrappedNodeExpr, error) {
	node, err := o.getRequired(propertyName)
	if err != nil {
		return nil, err
	}
	return output.NewWrappedNodeExpr(node), nil
}

// GetNode returns the raw expression of a property.
func (o *AstObject[E]) GetNode(propertyName string) (E, error) {
	return o.getRequired(propertyName)
}

// GetValue returns the property wrapped as an AstValue.
func (o *AstObject[E]) GetValue(propertyName string) (*AstValue[E], error) {
	node, err := o.getRequired(propertyName)
	if err != nil {
		return nil, err
	}
	return NewAstValue(o.host, node), nil
}

// ToLiteral maps every property through mapper, preserving source order.
func ToLiteral[E, V any](o *AstObject[E], mapper func(value *AstValue[E], key string) (V, error)) ([]KeyValue[V], error) {
	result := make([]KeyValue[V], 0, len(o.props))
	for _, prop := range o.props {
		v, err := mapper(NewAstValue(o.host, prop.Value), prop.Key)
		if err != nil {
			return nil, err
		}
		result = append(result, KeyValue[V]{Key: prop.Key, Value: v})
	}
	return result, nil
}

// KeyValue is an ordered map entry produced by ToLiteral.
type KeyValue[V any] struct {
	Key   string
	Value V
}

// ToMap returns the properties as AstValues keyed by name.
func (o *AstObject[E]) ToMap() map[string]*AstValue[E] {
	result := make(map[string]*AstValue[E], len(o.props))
	for _, prop := range o.props {
		result[prop.Key] = NewAstValue(o.host, prop.Value)
	}
	return result
}

// AstValue wraps a single expression with typed accessors.
type AstValue[E any] struct {
	Expression E
	host       AstHost[E]
}

// NewAstValue creates a new AstValue
func NewAstValue[E any](host AstHost[E], expression E) *AstValue[E] {
	return &AstValue[E]{Expression: expression, host: host}
}

// GetSymbolName returns the identifier or property name of the value, if any.
func (v *AstValue[E]) GetSymbolName() (string, bool) {
	return v.host.GetSymbolName(v.Expression)
}

func (v *AstValue[E]) IsNumber() bool {
	return v.host.IsNumericLiteral(v.Expression)
}

func (v *AstValue[E]) GetNumber() (float64, error) {
	return v.host.ParseNumericLiteral(v.Expression)
}

func (v *AstValue[E]) IsString() bool {
	return v.host.IsStringLiteral(v.Expression)
}

func (v *AstValue[E]) GetString() (string, error) {
	return v.host.ParseStringLiteral(v.Expression)
}

func (v *AstValue[E]) IsBoolean() bool {
	return v.host.IsBooleanLiteral(v.Expression)
}

func (v *AstValue[E]) GetBoolean() (bool, error) {
	return v.host.ParseBooleanLiteral(v.Expression)
}

func (v *AstValue[E]) IsNull() bool {
	return v.host.IsNull(v.Expression)
}

func (v *AstValue[E]) IsObject() bool {
	return v.host.IsObjectLiteral(v.Expression)
}

func (v *AstValue[E]) GetObject() (*AstObject[E], error) {
	return ParseAstObject(v.host, v.Expression)
}

func (v *AstValue[E]) IsArray() bool {
	return v.host.IsArrayLiteral(v.Expression)
}

func (v *AstValue[E]) GetArray() ([]*AstValue[E], error) {
	elements, err := v.host.ParseArrayLiteral(v.Expression)
	if err != nil {
		return nil, err
	}
	values := make([]*AstValue[E], len(elements))
	for i, el := range elements {
		values[i] = NewAstValue(v.host, el)
	}
	return values, nil
}

func (v *AstValue[E]) IsFunction() bool {
	return v.host.IsFunctionExpression(v.Expression)
}

// GetFunctionReturnValue returns the value returned by a function expression.
func (v *AstValue[E]) GetFunctionReturnValue() (*AstValue[E], error) {
	ret, err := v.host.ParseReturnValue(v.Expression)
	if err != nil {
		return nil, err
	}
	return NewAstValue(v.host, ret), nil
}

// GetFunctionParameters returns the parameters of a function expression.
func (v *AstValue[E]) GetFunctionParameters() ([]*AstValue[E], error) {
	params, err := v.host.ParseParameters(v.Expression)
	if err != nil {
		return nil, err
	}
	values := make([]*AstValue[E], len(params))
	for i, p := range params {
		values[i] = NewAstValue(v.host, p)
	}
	return values, nil
}

func (v *AstValue[E]) IsCallExpression() bool {
	return v.host.IsCallExpression(v.Expression)
}

func (v *AstValue[E]) GetCallee() (*AstValue[E], error) {
	callee, err := v.host.ParseCallee(v.Expression)
	if err != nil {
		return nil, err
	}
	return NewAstValue(v.host, callee), nil
}

func (v *AstValue[E]) GetArguments() ([]*AstValue[E], error) {
	args, err := v.host.ParseArguments(v.Expression)
	if err != nil {
		return nil, err
	}
	values := make([]*AstValue[E], len(args))
	for i, a := range args {
		values[i] = NewAstValue(v.host, a)
	}
	return values, nil
}

// GetOpaque returns the value as an output expression that is emitted unchanged.
func (v *AstValue[E]) GetOpaque() *output.WrappedNodeExpr {
	return output.NewWrappedNodeExpr(v.Expression)
}

// GetRange returns the source range of the value.
func (v *AstValue[E]) GetRange() (Range, error) {
	return v.host.GetRange(v.Expression)
}
