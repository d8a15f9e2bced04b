package partial_linkers

import (
	"ngc-linker/packages/compiler-cli/linker/ast"
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/pool"
	"ngc-linker/packages/compiler/render3"
	"ngc-linker/packages/compiler/render3/view"
)

// PartialInjectableLinkerVersion1 links `ɵɵngDeclareInjectable` calls.
type PartialInjectableLinkerVersion1[E any] struct{}

func (l *PartialInjectableLinkerVersion1[E]) LinkPartialDeclaration(
	_ *pool.ConstantPool,
	metaObj *ast.AstObject[E],
	_ string,
) (LinkedDefinition, error) {
	meta, err := toR3InjectableMeta(metaObj)
	if err != nil {
		return LinkedDefinition{}, err
	}
	// Forward references in the metadata were already unwrapped above.
	compiled := render3.CompileInjectable(meta, false)
	return LinkedDefinition{Expression: compiled.Expression, Statements: compiled.Statements}, nil
}

func toR3InjectableMeta[E any](metaObj *ast.AstObject[E]) (render3.R3InjectableMetadata, error) {
	typeExpr, name, err := typeName(metaObj)
	if err != nil {
		return render3.R3InjectableMetadata{}, err
	}
	meta := render3.R3InjectableMetadata{
		Name: name,
		Type: wrapReference(typeExpr.GetOpaque()),
		ProvidedIn: view.MaybeForwardRefExpression{
			Expression: output.NullExpr,
			ForwardRef: view.ForwardRefHandlingNone,
		},
	}

	forwardRefProp := func(prop string) (*view.MaybeForwardRefExpression, error) {
		if !metaObj.Has(prop) {
			return nil, nil
		}
		value, err := metaObj.GetValue(prop)
		if err != nil {
			return nil, err
		}
		ref, err := extractForwardRef(value)
		if err != nil {
			return nil, err
		}
		return &ref, nil
	}

	providedIn, err := forwardRefProp("providedIn")
	if err != nil {
		return meta, err
	}
	if providedIn != nil {
		meta.ProvidedIn = *providedIn
	}
	if meta.UseClass, err = forwardRefProp("useClass"); err != nil {
		return meta, err
	}
	if meta.UseFactory, err = optionalOpaque(metaObj, "useFactory"); err != nil {
		return meta, err
	}
	if meta.UseExisting, err = forwardRefProp("useExisting"); err != nil {
		return meta, err
	}
	if meta.UseValue, err = forwardRefProp("useValue"); err != nil {
		return meta, err
	}
	if metaObj.Has("deps") {
		values, err := metaObj.GetArray("deps")
		if err != nil {
			return meta, err
		}
		if meta.Deps, err = getDependencyList(values); err != nil {
			return meta, err
		}
	}
	return meta, nil
}
