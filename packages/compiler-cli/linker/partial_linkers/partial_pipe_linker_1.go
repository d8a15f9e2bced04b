package partial_linkers

import (
	"ngc-linker/packages/compiler-cli/linker/ast"
	"ngc-linker/packages/compiler/core"
	"ngc-linker/packages/compiler/pool"
	"ngc-linker/packages/compiler/render3"
)

// PartialPipeLinkerVersion1 links `ɵɵngDeclarePipe` calls.
type PartialPipeLinkerVersion1[E any] struct{}

func (l *PartialPipeLinkerVersion1[E]) LinkPartialDeclaration(
	_ *pool.ConstantPool,
	metaObj *ast.AstObject[E],
	version string,
) (LinkedDefinition, error) {
	meta, err := toR3PipeMeta(metaObj, version)
	if err != nil {
		return LinkedDefinition{}, err
	}
	compiled := render3.CompilePipeFromMetadata(meta)
	return LinkedDefinition{Expression: compiled.Expression, Statements: compiled.Statements}, nil
}

func toR3PipeMeta[E any](metaObj *ast.AstObject[E], version string) (render3.R3PipeMetadata, error) {
	typeExpr, name, err := typeName(metaObj)
	if err != nil {
		return render3.R3PipeMetadata{}, err
	}
	pure, err := optionalBool(metaObj, "pure", true)
	if err != nil {
		return render3.R3PipeMetadata{}, err
	}
	isStandalone, err := optionalBool(metaObj, "isStandalone", core.GetJitStandaloneDefaultForVersion(version))
	if err != nil {
		return render3.R3PipeMetadata{}, err
	}
	pipeName, err := metaObj.GetString("name")
	if err != nil {
		return render3.R3PipeMetadata{}, err
	}
	return render3.R3PipeMetadata{
		Name:         name,
		Type:         wrapReference(typeExpr.GetOpaque()),
		PipeName:     pipeName,
		Pure:         pure,
		IsStandalone: isStandalone,
	}, nil
}
