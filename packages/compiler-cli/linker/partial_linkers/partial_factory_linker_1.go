package partial_linkers

import (
	"ngc-linker/packages/compiler-cli/linker/ast"
	"ngc-linker/packages/compiler/core"
	"ngc-linker/packages/compiler/pool"
	"ngc-linker/packages/compiler/render3"
)

var factoryTargetMembers = map[string]core.FactoryTarget{
	"Directive":  core.FactoryTargetDirective,
	"Component":  core.FactoryTargetComponent,
	"Injectable": core.FactoryTargetInjectable,
	"Pipe":       core.FactoryTargetPipe,
	"NgModule":   core.FactoryTargetNgModule,
}

// PartialFactoryLinkerVersion1 links `ɵɵngDeclareFactory` calls.
type PartialFactoryLinkerVersion1[E any] struct{}

func (l *PartialFactoryLinkerVersion1[E]) LinkPartialDeclaration(
	_ *pool.ConstantPool,
	metaObj *ast.AstObject[E],
	_ string,
) (LinkedDefinition, error) {
	meta, err := toR3FactoryMeta(metaObj)
	if err != nil {
		return LinkedDefinition{}, err
	}
	compiled := render3.CompileFactoryFunction(meta)
	return LinkedDefinition{Expression: compiled.Expression, Statements: compiled.Statements}, nil
}

func toR3FactoryMeta[E any](metaObj *ast.AstObject[E]) (render3.R3FactoryMetadata, error) {
	typeExpr, name, err := typeName(metaObj)
	if err != nil {
		return render3.R3FactoryMetadata{}, err
	}
	targetValue, err := metaObj.GetValue("target")
	if err != nil {
		return render3.R3FactoryMetadata{}, err
	}
	target, err := parseEnum(targetValue, "FactoryTarget", factoryTargetMembers)
	if err != nil {
		return render3.R3FactoryMetadata{}, err
	}
	deps, err := getDependencies(metaObj, "deps")
	if err != nil {
		return render3.R3FactoryMetadata{}, err
	}
	return render3.R3FactoryMetadata{
		Name:   name,
		Type:   wrapReference(typeExpr.GetOpaque()),
		Target: target,
		Deps:   deps,
	}, nil
}

// getDependencies reads the constructor dependencies: an array lists them,
// the string 'invalid' marks them unresolvable and absence means inherited.
func getDependencies[E any](metaObj *ast.AstObject[E], propName string) (render3.R3FactoryDeps, error) {
	if !metaObj.Has(propName) {
		return render3.R3FactoryDeps{Inherited: true}, nil
	}
	deps, err := metaObj.GetValue(propName)
	if err != nil {
		return render3.R3FactoryDeps{}, err
	}
	switch {
	case deps.IsArray():
		values, err := deps.GetArray()
		if err != nil {
			return render3.R3FactoryDeps{}, err
		}
		list, err := getDependencyList(values)
		if err != nil {
			return render3.R3FactoryDeps{}, err
		}
		return render3.R3FactoryDeps{Deps: list}, nil
	case deps.IsString():
		return render3.R3FactoryDeps{Invalid: true}, nil
	default:
		return render3.R3FactoryDeps{Inherited: true}, nil
	}
}
