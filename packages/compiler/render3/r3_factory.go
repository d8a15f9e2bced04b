package render3

import (
	"ngc-linker/packages/compiler/core"
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/render3/r3_identifiers"
)

// R3DependencyMetadata contains metadata for a constructor dependency
type R3DependencyMetadata struct {
	// Token is the token or value to be injected, or nil if the dependency
	// could not be resolved.
	Token output.OutputExpression

	// AttributeNameType is set when the dependency is an `@Attribute`.
	AttributeNameType output.OutputExpression

	Host     bool
	Optional bool
	Self     bool
	SkipSelf bool
}

// R3FactoryDeps holds the constructor dependencies of a factory.
//   - Inherited: the class has no constructor and uses its parent's factory
//   - Invalid: one or more parameters could not be resolved
//   - otherwise Deps lists the parameters
type R3FactoryDeps struct {
	Inherited bool
	Invalid   bool
	Deps      []R3DependencyMetadata
}

// R3FactoryDelegateType says how a delegate builds the instance.
type R3FactoryDelegateType int

const (
	R3FactoryDelegateTypeClass R3FactoryDelegateType = iota
	R3FactoryDelegateTypeFunction
)

// R3FactoryMetadata contains metadata required by the factory generator.
// At most one of Delegate and Expression is set.
type R3FactoryMetadata struct {
	// Name of the type being generated (used to name the factory function)
	Name string
	Type R3Reference
	Deps R3FactoryDeps
	// Target is the kind of class the factory builds
	Target core.FactoryTarget

	// Delegate, when set, builds the instance from DelegateDeps instead of
	// calling the constructor.
	Delegate     output.OutputExpression
	DelegateType R3FactoryDelegateType
	DelegateDeps []R3DependencyMetadata

	// Expression, when set, is returned instead of a new instance.
	Expression output.OutputExpression
}

const factoryTypeParam = "__ngFactoryType__"

// CompileFactoryFunction constructs a factory function expression for the given metadata
func CompileFactoryFunction(meta R3FactoryMetadata) R3CompiledExpression {
	t := output.Variable(factoryTypeParam)
	var baseFactoryVar *output.ReadVarExpr

	isDelegated := meta.Delegate != nil
	// The type to instantiate via constructor invocation. If there is no delegated factory, meaning
	// this type is always created by constructor invocation, then this is the type-to-create
	// parameter provided by the user (t) if specified, or the current type if not. If there is a
	// delegated factory (which is used to create the current type) then this is only the type-to-
	// create parameter (t).
	var typeForCtor output.OutputExpression = t
	if !isDelegated {
		typeForCtor = output.Or(t, meta.Type.Value)
	}

	var ctorExpr output.OutputExpression
	switch {
	case meta.Deps.Inherited:
		// There is no constructor, use the base class' factory to construct typeForCtor.
		baseFactoryVar = output.Variable("ɵ" + meta.Name + "_BaseFactory")
		ctorExpr = output.NewInvokeFunctionExpr(baseFactoryVar, []output.OutputExpression{typeForCtor}, false)
	case !meta.Deps.Invalid:
		ctorExpr = output.NewInstantiateExpr(typeForCtor, injectDependencies(meta.Deps.Deps, meta.Target))
	}

	body := []output.OutputStatement{}
	var retExpr output.OutputExpression

	makeConditionalFactory := func(nonCtorExpr output.OutputExpression) output.OutputExpression {
		r := output.Variable("__ngConditionalFactory__")
		body = append(body, output.NewDeclareVarStmt(r.Name, output.NullExpr, output.StmtModifierNone))
		var ctorStmt output.OutputStatement
		if ctorExpr != nil {
			ctorStmt = output.NewExpressionStatement(r.Set(ctorExpr))
		} else {
			ctorStmt = output.NewExpressionStatement(output.ImportExpr(r3_identifiers.InvalidFactory).Callable())
		}
		body = append(body, output.NewIfStmt(
			t,
			[]output.OutputStatement{ctorStmt},
			[]output.OutputStatement{output.NewExpressionStatement(r.Set(nonCtorExpr))},
		))
		return r
	}

	switch {
	case isDelegated:
		// This type is created with a delegated factory. If a type parameter is not specified, call
		// the factory instead.
		delegateArgs := injectDependencies(meta.DelegateDeps, meta.Target)
		var factoryExpr output.OutputExpression
		if meta.DelegateType == R3FactoryDelegateTypeClass {
			factoryExpr = output.NewInstantiateExpr(meta.Delegate, delegateArgs)
		} else {
			factoryExpr = output.NewInvokeFunctionExpr(meta.Delegate, delegateArgs, false)
		}
		retExpr = makeConditionalFactory(factoryExpr)
	case meta.Expression != nil:
		// This type is created with a factory expression.
		retExpr = makeConditionalFactory(meta.Expression)
	default:
		retExpr = ctorExpr
	}

	switch {
	case retExpr == nil:
		// The expression cannot be formed so render an `ɵɵinvalidFactory()` call.
		body = append(body, output.NewExpressionStatement(output.ImportExpr(r3_identifiers.InvalidFactory).Callable()))
	case baseFactoryVar != nil:
		// This factory uses a base factory, so call `ɵɵgetInheritedFactory()` to compute it.
		getInheritedFactoryCall := output.ImportExpr(r3_identifiers.GetInheritedFactory).Callable(meta.Type.Value)
		// Memoize the base factoryFn: `baseFactory || (baseFactory = ɵɵgetInheritedFactory(...))`
		baseFactory := output.Or(baseFactoryVar, baseFactoryVar.Set(getInheritedFactoryCall))
		body = append(body, output.NewReturnStatement(
			output.NewInvokeFunctionExpr(output.NewParenthesizedExpr(baseFactory), []output.OutputExpression{typeForCtor}, false),
		))
	default:
		// This is straightforward factory, just return it.
		body = append(body, output.NewReturnStatement(retExpr))
	}

	fnName := meta.Name + "_Factory"
	var factoryFn output.OutputExpression = output.NewFunctionExpr(
		[]*output.FnParam{output.NewFnParam(t.Name)},
		body,
		&fnName,
	)
	if baseFactoryVar != nil {
		// There is a base factory variable so wrap its declaration along with the factory function into
		// an IIFE.
		factoryFn = output.NewInvokeFunctionExpr(
			output.NewArrowFunctionExpr(nil, []output.OutputStatement{
				output.NewDeclareVarStmt(baseFactoryVar.Name, nil, output.StmtModifierNone),
				output.NewReturnStatement(factoryFn),
			}),
			nil,
			true,
		)
	}

	return R3CompiledExpression{Expression: factoryFn, Statements: []output.OutputStatement{}}
}

func injectDependencies(deps []R3DependencyMetadata, target core.FactoryTarget) []output.OutputExpression {
	result := make([]output.OutputExpression, len(deps))
	for i, dep := range deps {
		result[i] = compileInjectDependency(dep, target, i)
	}
	return result
}

func compileInjectDependency(dep R3DependencyMetadata, target core.FactoryTarget, index int) output.OutputExpression {
	// Interpret the dependency according to its resolved type.
	if dep.Token == nil {
		return output.ImportExpr(r3_identifiers.InvalidFactoryDep).Callable(output.Literal(index))
	}
	if dep.AttributeNameType != nil {
		// The `@Attribute` token is the attribute name itself.
		return output.ImportExpr(r3_identifiers.InjectAttribute).Callable(dep.Token)
	}

	flags := core.InjectFlagsDefault
	if dep.Self {
		flags |= core.InjectFlagsSelf
	}
	if dep.SkipSelf {
		flags |= core.InjectFlagsSkipSelf
	}
	if dep.Host {
		flags |= core.InjectFlagsHost
	}
	if dep.Optional {
		flags |= core.InjectFlagsOptional
	}
	if target == core.FactoryTargetPipe {
		flags |= core.InjectFlagsForPipe
	}

	// Only pass flags when they differ from the default, or when the dependency is optional.
	injectArgs := []output.OutputExpression{dep.Token}
	if flags != core.InjectFlagsDefault || dep.Optional {
		injectArgs = append(injectArgs, output.Literal(int(flags)))
	}
	return output.ImportExpr(getInjectFn(target)).Callable(injectArgs...)
}

func getInjectFn(target core.FactoryTarget) *output.ExternalReference {
	switch target {
	case core.FactoryTargetComponent, core.FactoryTargetDirective, core.FactoryTargetPipe:
		return r3_identifiers.DirectiveInject
	default:
		return r3_identifiers.Inject
	}
}
