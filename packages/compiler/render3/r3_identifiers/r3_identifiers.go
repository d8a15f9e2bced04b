package r3_identifiers

import (
	"ngc-linker/packages/compiler/output"
)

// CORE is the module every runtime instruction is imported from.
var CORE = "@angular/core"

var Core = &output.ExternalReference{Name: nil, ModuleName: &CORE}

// Partial declaration functions
var (
	DeclareDirective     = ref("ɵɵngDeclareDirective")
	DeclareComponent     = ref("ɵɵngDeclareComponent")
	DeclareFactory       = ref("ɵɵngDeclareFactory")
	DeclareInjectable    = ref("ɵɵngDeclareInjectable")
	DeclareInjector      = ref("ɵɵngDeclareInjector")
	DeclareNgModule      = ref("ɵɵngDeclareNgModule")
	DeclarePipe          = ref("ɵɵngDeclarePipe")
	DeclareClassMetadata = ref("ɵɵngDeclareClassMetadata")
)

// Definitions
var (
	DefineComponent      = ref("ɵɵdefineComponent")
	DefineDirective      = ref("ɵɵdefineDirective")
	DefineInjectable     = ref("ɵɵdefineInjectable")
	DefineInjector       = ref("ɵɵdefineInjector")
	DefineNgModule       = ref("ɵɵdefineNgModule")
	DefinePipe           = ref("ɵɵdefinePipe")
	SetNgModuleScope     = ref("ɵɵsetNgModuleScope")
	SetClassMetadata     = ref("ɵsetClassMetadata")
	SetComponentScope    = ref("ɵɵsetComponentScope")
	RegisterNgModuleType = ref("ɵɵregisterNgModuleType")
)

// Queries
var (
	ViewQuery          = ref("ɵɵviewQuery")
	ContentQuery       = ref("ɵɵcontentQuery")
	ViewQuerySignal    = ref("ɵɵviewQuerySignal")
	ContentQuerySignal = ref("ɵɵcontentQuerySignal")
	QueryRefresh       = ref("ɵɵqueryRefresh")
	QueryAdvance       = ref("ɵɵqueryAdvance")
	LoadQuery          = ref("ɵɵloadQuery")
)

// Features
var (
	NgOnChangesFeature       = ref("ɵɵNgOnChangesFeature")
	InheritDefinitionFeature = ref("ɵɵInheritDefinitionFeature")
	CopyDefinitionFeature    = ref("ɵɵCopyDefinitionFeature")
	ProvidersFeature         = ref("ɵɵProvidersFeature")
	HostDirectivesFeature    = ref("ɵɵHostDirectivesFeature")
)

// Dependency injection
var (
	Inject                      = ref("ɵɵinject")
	InjectAttribute             = ref("ɵɵinjectAttribute")
	DirectiveInject             = ref("ɵɵdirectiveInject")
	InvalidFactory              = ref("ɵɵinvalidFactory")
	InvalidFactoryDep           = ref("ɵɵinvalidFactoryDep")
	GetInheritedFactory         = ref("ɵɵgetInheritedFactory")
	InjectPipeChangeDetectorRef = ref("ɵɵinjectPipeChangeDetectorRef")
	ForwardRef                  = ref("forwardRef")
	ResolveForwardRef           = ref("resolveForwardRef")
)

func ref(name string) *output.ExternalReference {
	return &output.ExternalReference{Name: &name, ModuleName: &CORE}
}
