package render3_module_compiler

import (
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/render3"
	"ngc-linker/packages/compiler/render3/r3_identifiers"
	"ngc-linker/packages/compiler/render3/view"
)

// R3SelectorScopeMode represents how the selector scope of an NgModule should be emitted
type R3SelectorScopeMode int

const (
	// R3SelectorScopeModeInline emits the declarations inline into the module definition
	R3SelectorScopeModeInline R3SelectorScopeMode = iota
	// R3SelectorScopeModeSideEffect emits the declarations using a side effectful function call
	R3SelectorScopeModeSideEffect
	// R3SelectorScopeModeOmit doesn't generate selector scopes at all
	R3SelectorScopeModeOmit
)

// R3NgModuleMetadata contains metadata for an NgModule
type R3NgModuleMetadata struct {
	Type              render3.R3Reference
	SelectorScopeMode R3SelectorScopeMode
	Schemas           []render3.R3Reference
	// ID is nil unless the module registers itself by id.
	ID output.OutputExpression

	Bootstrap    []render3.R3Reference
	Declarations []render3.R3Reference
	Imports      []render3.R3Reference
	Exports      []render3.R3Reference
	// ContainsForwardDecls wraps the reference arrays in closures.
	ContainsForwardDecls bool
}

// CompileNgModule compiles an `ɵɵdefineNgModule` call.
func CompileNgModule(meta R3NgModuleMetadata) render3.R3CompiledExpression {
	statements := []output.OutputStatement{}
	definitionMap := view.NewDefinitionMap()
	definitionMap.Set("type", meta.Type.Value)

	if len(meta.Bootstrap) > 0 {
		definitionMap.Set("bootstrap", render3.RefsToArray(meta.Bootstrap, meta.ContainsForwardDecls))
	}

	switch meta.SelectorScopeMode {
	case R3SelectorScopeModeInline:
		// If requested to emit scope information inline, pass the `declarations`, `imports` and
		// `exports` to the `ɵɵdefineNgModule()` call directly.
		if len(meta.Declarations) > 0 {
			definitionMap.Set("declarations", render3.RefsToArray(meta.Declarations, meta.ContainsForwardDecls))
		}
		if len(meta.Imports) > 0 {
			definitionMap.Set("imports", render3.RefsToArray(meta.Imports, meta.ContainsForwardDecls))
		}
		if len(meta.Exports) > 0 {
			definitionMap.Set("exports", render3.RefsToArray(meta.Exports, meta.ContainsForwardDecls))
		}
	case R3SelectorScopeModeSideEffect:
		if stmt := generateSetNgModuleScopeCall(meta); stmt != nil {
			statements = append(statements, stmt)
		}
	}

	if len(meta.Schemas) > 0 {
		schemas := make([]output.OutputExpression, len(meta.Schemas))
		for i, ref := range meta.Schemas {
			schemas[i] = ref.Value
		}
		definitionMap.Set("schemas", output.LiteralArr(schemas))
	}

	if meta.ID != nil {
		definitionMap.Set("id", meta.ID)
		// Generate a side-effectful call to register NgModule by its id, as per the semantics of
		// NgModule ids.
		statements = append(statements, output.NewExpressionStatement(
			output.ImportExpr(r3_identifiers.RegisterNgModuleType).Callable(meta.Type.Value, meta.ID),
		))
	}

	expression := output.NewInvokeFunctionExpr(
		output.ImportExpr(r3_identifiers.DefineNgModule),
		[]output.OutputExpression{definitionMap.ToLiteralMap()},
		true,
	)
	return render3.R3CompiledExpression{Expression: expression, Statements: statements}
}

// generateSetNgModuleScopeCall generates a function call to `ɵɵsetNgModuleScope` with all
// necessary information so that the transitive module scope can be computed during runtime JIT
// compilation.
func generateSetNgModuleScopeCall(meta R3NgModuleMetadata) output.OutputStatement {
	scopeMap := view.NewDefinitionMap()
	if len(meta.Declarations) > 0 {
		scopeMap.Set("declarations", render3.RefsToArray(meta.Declarations, meta.ContainsForwardDecls))
	}
	if len(meta.Imports) > 0 {
		scopeMap.Set("imports", render3.RefsToArray(meta.Imports, meta.ContainsForwardDecls))
	}
	if len(meta.Exports) > 0 {
		scopeMap.Set("exports", render3.RefsToArray(meta.Exports, meta.ContainsForwardDecls))
	}
	if len(scopeMap.Values) == 0 {
		return nil
	}

	// setNgModuleScope(...)
	fnCall := output.ImportExpr(r3_identifiers.SetNgModuleScope).Callable(meta.Type.Value, scopeMap.ToLiteralMap())

	// (ngJitMode guard) && setNgModuleScope(...)
	guardedCall := render3.JitOnlyGuardedExpression(fnCall)

	// function() { (ngJitMode guard) && setNgModuleScope(...); }
	iife := output.NewFunctionExpr(nil, []output.OutputStatement{output.NewExpressionStatement(guardedCall)}, nil)

	// (function() { (ngJitMode guard) && setNgModuleScope(...); })()
	return output.NewExpressionStatement(output.NewInvokeFunctionExpr(iife, nil, false))
}
