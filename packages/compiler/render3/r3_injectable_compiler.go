package render3

import (
	"ngc-linker/packages/compiler/core"
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/render3/r3_identifiers"
	"ngc-linker/packages/compiler/render3/view"
)

// R3InjectableMetadata contains metadata for an `@Injectable` class. At most one
// of UseClass, UseFactory, UseExisting and UseValue is set.
type R3InjectableMetadata struct {
	Name       string
	Type       R3Reference
	ProvidedIn view.MaybeForwardRefExpression

	UseClass    *view.MaybeForwardRefExpression
	UseFactory  output.OutputExpression
	UseExisting *view.MaybeForwardRefExpression
	UseValue    *view.MaybeForwardRefExpression
	// Deps is nil when the metadata lists no dependencies.
	Deps []R3DependencyMetadata
}

// CompileInjectable compiles an `ɵɵdefineInjectable` call.
func CompileInjectable(meta R3InjectableMetadata, resolveForwardRefs bool) R3CompiledExpression {
	var result R3CompiledExpression

	factoryMeta := R3FactoryMetadata{
		Name:   meta.Name,
		Type:   meta.Type,
		Deps:   R3FactoryDeps{Deps: []R3DependencyMetadata{}},
		Target: core.FactoryTargetInjectable,
	}

	switch {
	case meta.UseClass != nil:
		// meta.UseClass has two modes of operation. Either deps are specified, in which case `new` is
		// used to instantiate the class with dependencies injected, or deps are not specified and
		// the factory of the class is used to instantiate it.
		//
		// A special case exists for useClass: Type where Type is the injectable type itself and no
		// deps are specified, in which case 'useClass' is effectively ignored.
		useClassOnSelf := SameNode(meta.UseClass.Expression, meta.Type.Value)
		switch {
		case meta.Deps != nil:
			delegated := factoryMeta
			delegated.Delegate = meta.UseClass.Expression
			delegated.DelegateDeps = meta.Deps
			delegated.DelegateType = R3FactoryDelegateTypeClass
			result = CompileFactoryFunction(delegated)
		case useClassOnSelf:
			result = CompileFactoryFunction(factoryMeta)
		default:
			result = R3CompiledExpression{
				Expression: delegateToFactory(meta.Type.Value, meta.UseClass.Expression, resolveForwardRefs),
			}
		}
	case meta.UseFactory != nil:
		if meta.Deps != nil {
			delegated := factoryMeta
			delegated.Delegate = meta.UseFactory
			delegated.DelegateDeps = meta.Deps
			delegated.DelegateType = R3FactoryDelegateTypeFunction
			result = CompileFactoryFunction(delegated)
		} else {
			result = R3CompiledExpression{
				Expression: output.NewArrowFunctionExpr(nil, output.NewInvokeFunctionExpr(meta.UseFactory, nil, false)),
			}
		}
	case meta.UseValue != nil:
		// Note: it's safe to use `meta.UseValue` instead of the `UseValue` in the original
		// metadata since the value is an expression that is emitted as-is.
		withExpression := factoryMeta
		withExpression.Expression = meta.UseValue.Expression
		result = CompileFactoryFunction(withExpression)
	case meta.UseExisting != nil:
		// useExisting is an `inject` call on the existing token.
		withExpression := factoryMeta
		withExpression.Expression = output.ImportExpr(r3_identifiers.Inject).Callable(meta.UseExisting.Expression)
		result = CompileFactoryFunction(withExpression)
	default:
		result = R3CompiledExpression{
			Expression: delegateToFactory(meta.Type.Value, meta.Type.Value, resolveForwardRefs),
		}
	}

	injectableProps := view.NewDefinitionMap()
	injectableProps.Set("token", meta.Type.Value)
	injectableProps.Set("factory", result.Expression)

	// Only generate providedIn property if it has a non-null value
	if lit, ok := meta.ProvidedIn.Expression.(*output.LiteralExpr); !ok || lit.Value != nil {
		injectableProps.Set("providedIn", view.ConvertFromMaybeForwardRefExpression(meta.ProvidedIn))
	}

	expression := output.NewInvokeFunctionExpr(
		output.ImportExpr(r3_identifiers.DefineInjectable),
		[]output.OutputExpression{injectableProps.ToLiteralMap()},
		true,
	)
	statements := result.Statements
	if statements == nil {
		statements = []output.OutputStatement{}
	}
	return R3CompiledExpression{Expression: expression, Statements: statements}
}

func delegateToFactory(typ, useType output.OutputExpression, unwrapForwardRefs bool) output.OutputExpression {
	if SameNode(typ, useType) {
		// The useType is actually the type itself, so just use its own factory:
		// ```
		// factory: Type.ɵfac
		// ```
		return output.NewReadPropExpr(useType, "ɵfac")
	}

	if !unwrapForwardRefs {
		// The useType is a class so use its factory, passing the type being created:
		// ```
		// factory: (t) => UseType.ɵfac(t)
		// ```
		return createFactoryFunction(useType)
	}

	// The useType may be a forward ref, so resolve it first:
	// ```
	// factory: (t) => core.resolveForwardRef(UseType).ɵfac(t)
	// ```
	unwrappedType := output.ImportExpr(r3_identifiers.ResolveForwardRef).Callable(useType)
	return createFactoryFunction(unwrappedType)
}

func createFactoryFunction(typ output.OutputExpression) output.OutputExpression {
	t := output.NewFnParam(factoryTypeParam)
	return output.NewArrowFunctionExpr(
		[]*output.FnParam{t},
		output.NewInvokeFunctionExpr(output.NewReadPropExpr(typ, "ɵfac"), []output.OutputExpression{output.Variable(t.Name)}, false),
	)
}
