// Package partial_linkers holds the versioned strategies that turn the metadata
// of a partial declaration into a fully compiled definition, and the selector
// that picks one by declaration function name and version.
package partial_linkers

import (
	"ngc-linker/packages/compiler-cli/linker/ast"
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/pool"
)

// LinkedDefinition is the compiled definition of one declaration plus any
// statements that must be emitted next to it.
type LinkedDefinition struct {
	Expression output.OutputExpression
	Statements []output.OutputStatement
}

// PartialLinker links the metadata of one kind of partial declaration for a
// range of versions. Shared constants go into constantPool.
type PartialLinker[E any] interface {
	LinkPartialDeclaration(constantPool *pool.ConstantPool, metaObj *ast.AstObject[E], version string) (LinkedDefinition, error)
}
