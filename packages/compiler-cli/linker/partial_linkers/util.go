package partial_linkers

import (
	"ngc-linker/packages/compiler-cli/linker"
	"ngc-linker/packages/compiler-cli/linker/ast"
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/render3"
	"ngc-linker/packages/compiler/render3/view"
)

func wrapReference(wrapped output.OutputExpression) render3.R3Reference {
	return render3.WrapExpression(wrapped)
}

// typeName returns the symbol name of the `type` property.
func typeName[E any](metaObj *ast.AstObject[E]) (*ast.AstValue[E], string, error) {
	typeExpr, err := metaObj.GetValue("type")
	if err != nil {
		return nil, "", err
	}
	name, ok := typeExpr.GetSymbolName()
	if !ok {
		return nil, "", linker.NewFatalLinkerError(typeExpr.Expression, "Unsupported type, its name could not be determined")
	}
	return typeExpr, name, nil
}

// parseEnum resolves the symbol name of value, e.g. `i0.FactoryTarget.Pipe`,
// against members. enumName is used in the error message.
func parseEnum[E any, T any](value *ast.AstValue[E], enumName string, members map[string]T) (T, error) {
	var zero T
	symbolName, ok := value.GetSymbolName()
	if !ok {
		return zero, linker.NewFatalLinkerError(value.Expression, "Expected value to have a symbol name")
	}
	enumValue, ok := members[symbolName]
	if !ok {
		return zero, linker.NewFatalLinkerErrorf(value.Expression, "Unsupported enum value for %s", enumName)
	}
	return enumValue, nil
}

// getDependency reads one constructor dependency.
func getDependency[E any](depObj *ast.AstObject[E]) (render3.R3DependencyMetadata, error) {
	flag := func(name string) (bool, error) {
		if !depObj.Has(name) {
			return false, nil
		}
		return depObj.GetBoolean(name)
	}

	isAttribute, err := flag("attribute")
	if err != nil {
		return render3.R3DependencyMetadata{}, err
	}
	token, err := depObj.GetOpaque("token")
	if err != nil {
		return render3.R3DependencyMetadata{}, err
	}
	dep := render3.R3DependencyMetadata{Token: token}
	if isAttribute {
		dep.AttributeNameType = output.Literal("unknown")
	}
	if dep.Host, err = flag("host"); err != nil {
		return render3.R3DependencyMetadata{}, err
	}
	if dep.Optional, err = flag("optional"); err != nil {
		return render3.R3DependencyMetadata{}, err
	}
	if dep.Self, err = flag("self"); err != nil {
		return render3.R3DependencyMetadata{}, err
	}
	if dep.SkipSelf, err = flag("skipSelf"); err != nil {
		return render3.R3DependencyMetadata{}, err
	}
	return dep, nil
}

// getDependencyList reads an array of dependency objects.
func getDependencyList[E any](values []*ast.AstValue[E]) ([]render3.R3DependencyMetadata, error) {
	deps := make([]render3.R3DependencyMetadata, 0, len(values))
	for _, value := range values {
		depObj, err := value.GetObject()
		if err != nil {
			return nil, err
		}
		dep, err := getDependency(depObj)
		if err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

// extractForwardRef unwraps `forwardRef(() => X)` into `X`. Any other
// non-call expression is returned as is.
func extractForwardRef[E any](expr *ast.AstValue[E]) (view.MaybeForwardRefExpression, error) {
	if !expr.IsCallExpression() {
		return view.MaybeForwardRefExpression{Expression: expr.GetOpaque(), ForwardRef: view.ForwardRefHandlingNone}, nil
	}

	callee, err := expr.GetCallee()
	if err != nil {
		return view.MaybeForwardRefExpression{}, err
	}
	if name, _ := callee.GetSymbolName(); name != "forwardRef" {
		return view.MaybeForwardRefExpression{}, linker.NewFatalLinkerError(callee.Expression,
			"Unsupported expression, expected a `forwardRef()` call or a type reference")
	}

	args, err := expr.GetArguments()
	if err != nil {
		return view.MaybeForwardRefExpression{}, err
	}
	if len(args) != 1 {
		return view.MaybeForwardRefExpression{}, linker.NewFatalLinkerError(expr.Expression,
			"Unsupported `forwardRef(fn)` call, expected a single argument")
	}

	wrapperFn := args[0]
	if !wrapperFn.IsFunction() {
		return view.MaybeForwardRefExpression{}, linker.NewFatalLinkerError(wrapperFn.Expression,
			"Unsupported `forwardRef(fn)` call, expected its argument to be a function")
	}
	returned, err := wrapperFn.GetFunctionReturnValue()
	if err != nil {
		return view.MaybeForwardRefExpression{}, err
	}
	return view.MaybeForwardRefExpression{Expression: returned.GetOpaque(), ForwardRef: view.ForwardRefHandlingUnwrapped}, nil
}

// optionalBool reads a boolean property, returning def when it is absent.
func optionalBool[E any](obj *ast.AstObject[E], name string, def bool) (bool, error) {
	if !obj.Has(name) {
		return def, nil
	}
	return obj.GetBoolean(name)
}

// optionalOpaque reads a property as an opaque expression, or nil when absent.
func optionalOpaque[E any](obj *ast.AstObject[E], name string) (output.OutputExpression, error) {
	if !obj.Has(name) {
		return nil, nil
	}
	opaque, err := obj.GetOpaque(name)
	if err != nil {
		return nil, err
	}
	return opaque, nil
}

// stringArray reads an array of string literals.
func stringArray[E any](values []*ast.AstValue[E]) ([]string, error) {
	result := make([]string, len(values))
	for i, value := range values {
		s, err := value.GetString()
		if err != nil {
			return nil, err
		}
		result[i] = s
	}
	return result, nil
}
