package partial_linkers

import (
	"ngc-linker/packages/compiler-cli/linker/ast"
	"ngc-linker/packages/compiler/pool"
	"ngc-linker/packages/compiler/render3"
	"ngc-linker/packages/compiler/render3/r3_module_compiler"
)

// PartialNgModuleLinkerVersion1 links `ɵɵngDeclareNgModule` calls.
type PartialNgModuleLinkerVersion1[E any] struct {
	// emitInline puts the declarations, imports and exports into the
	// definition itself, which JIT compilation of consumers needs.
	emitInline bool
}

// NewPartialNgModuleLinkerVersion1 creates the NgModule linker.
func NewPartialNgModuleLinkerVersion1[E any](emitInline bool) *PartialNgModuleLinkerVersion1[E] {
	return &PartialNgModuleLinkerVersion1[E]{emitInline: emitInline}
}

func (l *PartialNgModuleLinkerVersion1[E]) LinkPartialDeclaration(
	_ *pool.ConstantPool,
	metaObj *ast.AstObject[E],
	_ string,
) (LinkedDefinition, error) {
	meta, err := toR3NgModuleMeta(metaObj, l.emitInline)
	if err != nil {
		return LinkedDefinition{}, err
	}
	compiled := render3_module_compiler.CompileNgModule(meta)
	return LinkedDefinition{Expression: compiled.Expression, Statements: compiled.Statements}, nil
}

func toR3NgModuleMeta[E any](metaObj *ast.AstObject[E], supportJit bool) (render3_module_compiler.R3NgModuleMetadata, error) {
	wrappedType, err := metaObj.GetOpaque("type")
	if err != nil {
		return render3_module_compiler.R3NgModuleMetadata{}, err
	}
	meta := render3_module_compiler.R3NgModuleMetadata{
		Type:              wrapReference(wrappedType),
		SelectorScopeMode: render3_module_compiler.R3SelectorScopeModeOmit,
	}
	if supportJit {
		meta.SelectorScopeMode = render3_module_compiler.R3SelectorScopeModeInline
	}
	if meta.ID, err = optionalOpaque(metaObj, "id"); err != nil {
		return meta, err
	}

	// Each list is either an array or a function returning one, the latter
	// when it contains forward declarations.
	referenceList := func(prop string) ([]render3.R3Reference, error) {
		if !metaObj.Has(prop) {
			return nil, nil
		}
		field, err := metaObj.GetValue(prop)
		if err != nil {
			return nil, err
		}
		if field.IsFunction() {
			meta.ContainsForwardDecls = true
			if field, err = field.GetFunctionReturnValue(); err != nil {
				return nil, err
			}
		}
		return wrapReferences(field)
	}

	if meta.Bootstrap, err = referenceList("bootstrap"); err != nil {
		return meta, err
	}
	if meta.Declarations, err = referenceList("declarations"); err != nil {
		return meta, err
	}
	if meta.Imports, err = referenceList("imports"); err != nil {
		return meta, err
	}
	if meta.Exports, err = referenceList("exports"); err != nil {
		return meta, err
	}
	if metaObj.Has("schemas") {
		schemas, err := metaObj.GetValue("schemas")
		if err != nil {
			return meta, err
		}
		if meta.Schemas, err = wrapReferences(schemas); err != nil {
			return meta, err
		}
	}
	return meta, nil
}

func wrapReferences[E any](values *ast.AstValue[E]) ([]render3.R3Reference, error) {
	elements, err := values.GetArray()
	if err != nil {
		return nil, err
	}
	refs := make([]render3.R3Reference, len(elements))
	for i, el := range elements {
		refs[i] = wrapReference(el.GetOpaque())
	}
	return refs, nil
}
