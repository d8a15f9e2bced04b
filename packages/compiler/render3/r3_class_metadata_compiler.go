package render3

import (
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/render3/r3_identifiers"
)

// R3ClassMetadata holds the decorator information retained for TestBed.
type R3ClassMetadata struct {
	// Type is the class being decorated.
	Type output.OutputExpression
	// Decorators is an array literal of the class decorators.
	Decorators output.OutputExpression
	// CtorParameters is nil when the constructor has no parameters.
	CtorParameters output.OutputExpression
	// PropDecorators is nil when no property is decorated.
	PropDecorators output.OutputExpression
}

// CompileClassMetadata produces
// `(() => { (ngDevMode guard) && ɵsetClassMetadata(...); })()`.
func CompileClassMetadata(metadata R3ClassMetadata) output.OutputExpression {
	fnCall := InternalCompileSetClassMetadataCall(metadata)
	return output.NewInvokeFunctionExpr(
		output.NewArrowFunctionExpr(nil, []output.OutputStatement{
			output.NewExpressionStatement(DevOnlyGuardedExpression(fnCall)),
		}),
		nil,
		false,
	)
}

// InternalCompileSetClassMetadataCall produces the bare `ɵsetClassMetadata(...)` call.
func InternalCompileSetClassMetadataCall(metadata R3ClassMetadata) output.OutputExpression {
	ctorParameters := metadata.CtorParameters
	if ctorParameters == nil {
		ctorParameters = output.NullExpr
	}
	propDecorators := metadata.PropDecorators
	if propDecorators == nil {
		propDecorators = output.NullExpr
	}
	return output.ImportExpr(r3_identifiers.SetClassMetadata).Callable(
		metadata.Type,
		metadata.Decorators,
		ctorParameters,
		propDecorators,
	)
}
