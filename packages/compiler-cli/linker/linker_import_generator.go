package linker

import (
	"ngc-linker/packages/compiler-cli/linker/translator"
)

// coreModule is the only module linked code may import from.
const coreModule = "@angular/core"

// LinkerImportGenerator resolves imports against the `ngImport` expression of a
// declaration instead of adding import statements: `ɵɵdefineDirective` becomes
// `ngImport.ɵɵdefineDirective`.
type LinkerImportGenerator[S, E any] struct {
	factory  translator.AstFactory[S, E]
	ngImport E
}

// NewLinkerImportGenerator creates a LinkerImportGenerator
func NewLinkerImportGenerator[S, E any](factory translator.AstFactory[S, E], ngImport E) *LinkerImportGenerator[S, E] {
	return &LinkerImportGenerator[S, E]{factory: factory, ngImport: ngImport}
}

// AddImport returns ngImport for a namespace import and a property access on
// it for a named import.
func (g *LinkerImportGenerator[S, E]) AddImport(request translator.ImportRequest) (E, error) {
	if request.ExportModuleSpecifier != coreModule {
		var zero E
		return zero, NewFatalLinkerError(g.ngImport, "Unable to import from anything other than '@angular/core'")
	}
	if request.ExportSymbolName == nil {
		return g.ngImport, nil
	}
	return g.factory.CreatePropertyAccess(g.ngImport, *request.ExportSymbolName), nil
}
