package partial_linkers

import (
	"ngc-linker/packages/compiler-cli/linker/ast"
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/pool"
	"ngc-linker/packages/compiler/render3/r3_injector_compiler"
)

// PartialInjectorLinkerVersion1 links `ɵɵngDeclareInjector` calls.
type PartialInjectorLinkerVersion1[E any] struct{}

func (l *PartialInjectorLinkerVersion1[E]) LinkPartialDeclaration(
	_ *pool.ConstantPool,
	metaObj *ast.AstObject[E],
	_ string,
) (LinkedDefinition, error) {
	meta, err := toR3InjectorMeta(metaObj)
	if err != nil {
		return LinkedDefinition{}, err
	}
	compiled := render3_injector_compiler.CompileInjector(meta)
	return LinkedDefinition{Expression: compiled.Expression, Statements: compiled.Statements}, nil
}

func toR3InjectorMeta[E any](metaObj *ast.AstObject[E]) (render3_injector_compiler.R3InjectorMetadata, error) {
	typeExpr, name, err := typeName(metaObj)
	if err != nil {
		return render3_injector_compiler.R3InjectorMetadata{}, err
	}
	meta := render3_injector_compiler.R3InjectorMetadata{
		Name: name,
		Type: wrapReference(typeExpr.GetOpaque()),
	}
	if meta.Providers, err = optionalOpaque(metaObj, "providers"); err != nil {
		return meta, err
	}
	if metaObj.Has("imports") {
		imports, err := metaObj.GetArray("imports")
		if err != nil {
			return meta, err
		}
		for _, i := range imports {
			meta.Imports = append(meta.Imports, output.OutputExpression(i.GetOpaque()))
		}
	}
	return meta, nil
}
