package ast

import (
	"ngc-linker/packages/compiler-cli/linker"
)

// Range is the source location of a node. StartLine is 0-based.
type Range struct {
	StartLine int
	StartCol  int
	StartPos  int
	EndPos    int
}

// ObjectProperty is one key/value pair of an object literal, in source order.
type ObjectProperty[E any] struct {
	Key   string
	Value E
}

// AstHost reads literal and structural information out of the expressions of
// a concrete AST. Every Parse* method fails with a *linker.FatalLinkerError
// when the node does not have the expected shape.
type AstHost[E any] interface {
	// GetSymbolName returns the name of an identifier, or the property name of
	// a property access. Any other node yields false.
	GetSymbolName(node E) (string, bool)

	IsStringLiteral(node E) bool
	ParseStringLiteral(str E) (string, error)

	IsNumericLiteral(node E) bool
	ParseNumericLiteral(num E) (float64, error)

	IsBooleanLiteral(node E) bool
	ParseBooleanLiteral(b E) (bool, error)

	IsNull(node E) bool

	IsArrayLiteral(node E) bool
	// ParseArrayLiteral rejects spread elements and elided slots.
	ParseArrayLiteral(array E) ([]E, error)

	IsObjectLiteral(node E) bool
	// ParseObjectLiteral returns the properties in source order. Only plain
	// `key: value` properties are accepted.
	ParseObjectLiteral(obj E) ([]ObjectProperty[E], error)

	IsFunctionExpression(node E) bool
	// ParseReturnValue returns the expression body of an arrow function, or the
	// argument of the single return statement of a block body.
	ParseReturnValue(fn E) (E, error)
	ParseParameters(fn E) ([]E, error)

	IsCallExpression(node E) bool
	ParseCallee(call E) (E, error)
	ParseArguments(call E) ([]E, error)

	GetRange(node E) (Range, error)
}

// Assert returns a FatalLinkerError against node unless ok holds.
func Assert(node interface{}, ok bool, expected string) error {
	if ok {
		return nil
	}
	return linker.NewFatalLinkerError(node, "Unsupported syntax, expected "+expected+".")
}
