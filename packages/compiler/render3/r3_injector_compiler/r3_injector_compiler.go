package render3_injector_compiler

import (
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/render3"
	"ngc-linker/packages/compiler/render3/r3_identifiers"
	"ngc-linker/packages/compiler/render3/view"
)

// R3InjectorMetadata contains metadata for an injector
type R3InjectorMetadata struct {
	Name string
	Type render3.R3Reference
	// Providers is nil when the module declares none.
	Providers output.OutputExpression
	Imports   []output.OutputExpression
}

// CompileInjector compiles an `ɵɵdefineInjector` call.
func CompileInjector(meta R3InjectorMetadata) render3.R3CompiledExpression {
	definitionMap := view.NewDefinitionMap()

	if meta.Providers != nil {
		definitionMap.Set("providers", meta.Providers)
	}

	if len(meta.Imports) > 0 {
		definitionMap.Set("imports", output.LiteralArr(meta.Imports))
	}

	expression := output.NewInvokeFunctionExpr(
		output.ImportExpr(r3_identifiers.DefineInjector),
		[]output.OutputExpression{definitionMap.ToLiteralMap()},
		true,
	)
	return render3.R3CompiledExpression{Expression: expression, Statements: []output.OutputStatement{}}
}
