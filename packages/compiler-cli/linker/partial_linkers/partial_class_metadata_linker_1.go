package partial_linkers

import (
	"ngc-linker/packages/compiler-cli/linker/ast"
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/pool"
	"ngc-linker/packages/compiler/render3"
)

// PartialClassMetadataLinkerVersion1 links `ɵɵngDeclareClassMetadata` calls.
type PartialClassMetadataLinkerVersion1[E any] struct{}

func (l *PartialClassMetadataLinkerVersion1[E]) LinkPartialDeclaration(
	_ *pool.ConstantPool,
	metaObj *ast.AstObject[E],
	_ string,
) (LinkedDefinition, error) {
	meta, err := toR3ClassMetadata(metaObj)
	if err != nil {
		return LinkedDefinition{}, err
	}
	return LinkedDefinition{Expression: render3.CompileClassMetadata(meta), Statements: []output.OutputStatement{}}, nil
}

func toR3ClassMetadata[E any](metaObj *ast.AstObject[E]) (render3.R3ClassMetadata, error) {
	typ, err := metaObj.GetOpaque("type")
	if err != nil {
		return render3.R3ClassMetadata{}, err
	}
	decorators, err := metaObj.GetOpaque("decorators")
	if err != nil {
		return render3.R3ClassMetadata{}, err
	}
	meta := render3.R3ClassMetadata{Type: typ, Decorators: decorators}
	if meta.CtorParameters, err = optionalOpaque(metaObj, "ctorParameters"); err != nil {
		return meta, err
	}
	if meta.PropDecorators, err = optionalOpaque(metaObj, "propDecorators"); err != nil {
		return meta, err
	}
	return meta, nil
}
