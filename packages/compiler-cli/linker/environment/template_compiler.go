package environment

import (
	"ngc-linker/packages/compiler-cli/sourcemaps"
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/pool"
)

// InterpolationConfig holds the delimiters of template interpolations.
type InterpolationConfig struct {
	Start string
	End   string
}

// DefaultInterpolationConfig is `{{ }}`.
var DefaultInterpolationConfig = InterpolationConfig{Start: "{{", End: "}}"}

// TemplateRequest describes a component template that needs compiling.
type TemplateRequest struct {
	// ComponentName is the name of the component class.
	ComponentName string
	Template      string
	// IsInline is false when the template came from a `templateUrl`.
	IsInline bool
	// SourceURL is the path of the file being linked.
	SourceURL string
	// TemplateStart is the byte offset of the template literal in SourceURL.
	TemplateStart int

	PreserveWhitespaces bool
	Interpolation       InterpolationConfig
	Options             LinkerOptions

	// Styles are the component styles; Encapsulated is set when they need
	// emulated view encapsulation.
	Styles       []string
	Encapsulated bool

	// SourceFile lazily loads the linked file and its source maps. It returns
	// nil when source mapping is disabled or the file cannot be loaded.
	SourceFile func() *sourcemaps.SourceFile
}

// TemplateResult is a compiled template.
type TemplateResult struct {
	// Template is the template function expression.
	Template output.OutputExpression
	Decls    int
	Vars     int
	// Consts is nil when the template has no constants.
	Consts output.OutputExpression
	// NgContentSelectors is nil when the template has no projection.
	NgContentSelectors output.OutputExpression
	// Styles replaces the request styles when non-nil, e.g. once they are
	// shimmed for emulated encapsulation.
	Styles []string
}

// HostBinding is one `[prop]` or `(event)` entry of a host metadata object.
type HostBinding struct {
	Key   string
	Value string
}

// HostBindingsRequest describes the dynamic host bindings of a directive.
type HostBindingsRequest struct {
	DirectiveName string
	Selector      string
	Properties    []HostBinding
	Listeners     []HostBinding
	SpecialAttrs  map[string]string
}

// HostBindingsResult is a compiled host bindings function.
type HostBindingsResult struct {
	HostBindings output.OutputExpression
	HostVars     int
}

// TemplateCompiler compiles templates and host binding expressions. The
// linker never parses templates itself.
type TemplateCompiler interface {
	CompileTemplate(constantPool *pool.ConstantPool, request *TemplateRequest) (*TemplateResult, error)
	CompileHostBindings(constantPool *pool.ConstantPool, request *HostBindingsRequest) (*HostBindingsResult, error)
}
