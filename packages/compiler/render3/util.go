package render3

import (
	"ngc-linker/packages/compiler/output"
)

// R3Reference is a reference to a class, as emitted into a definition.
type R3Reference struct {
	Value output.OutputExpression
}

// R3CompiledExpression is the result of compiling one render3 code unit: a
// definition expression plus statements that must be emitted alongside it.
type R3CompiledExpression struct {
	Expression output.OutputExpression
	Statements []output.OutputStatement
}

// WrapReference wraps a node of the host AST in an R3Reference
func WrapReference(value interface{}) R3Reference {
	return R3Reference{Value: output.NewWrappedNodeExpr(value)}
}

// WrapExpression wraps an output expression in an R3Reference
func WrapExpression(value output.OutputExpression) R3Reference {
	return R3Reference{Value: value}
}

// RefsToArray converts references to an array literal, inside an arrow
// function when shouldForwardDeclare is set.
func RefsToArray(refs []R3Reference, shouldForwardDeclare bool) output.OutputExpression {
	values := make([]output.OutputExpression, len(refs))
	for i, ref := range refs {
		values[i] = ref.Value
	}
	arrExpr := output.NewLiteralArrayExpr(values)
	if shouldForwardDeclare {
		return output.NewArrowFunctionExpr(nil, arrExpr)
	}
	return arrExpr
}

// DevOnlyGuardedExpression only evaluates expr in development mode.
func DevOnlyGuardedExpression(expr output.OutputExpression) output.OutputExpression {
	return GuardedExpression("ngDevMode", expr)
}

// JitOnlyGuardedExpression only evaluates expr when JIT compilation is available.
func JitOnlyGuardedExpression(expr output.OutputExpression) output.OutputExpression {
	return GuardedExpression("ngJitMode", expr)
}

// GuardedExpression produces `(typeof guard === "undefined" || guard) && expr`.
func GuardedExpression(guard string, expr output.OutputExpression) output.OutputExpression {
	guardName := guard
	guardExpr := output.NewExternalExpr(&output.ExternalReference{Name: &guardName})
	guardNotDefined := output.NewBinaryOperatorExpr(
		output.BinaryOperatorIdentical,
		output.NewTypeofExpr(guardExpr),
		output.Literal("undefined"),
	)
	guardUndefinedOrTrue := output.NewParenthesizedExpr(output.Or(guardNotDefined, guardExpr))
	return output.And(guardUndefinedOrTrue, expr)
}

// SameNode reports whether two wrapped expressions wrap the same host node.
func SameNode(a, b output.OutputExpression) bool {
	wa, ok := a.(*output.WrappedNodeExpr)
	if !ok {
		return false
	}
	wb, ok := b.(*output.WrappedNodeExpr)
	if !ok {
		return false
	}
	return wa.Node == wb.Node
}
