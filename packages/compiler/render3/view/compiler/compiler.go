package compiler

import (
	"github.com/cockroachdb/errors"

	"ngc-linker/packages/compiler/core"
	"ngc-linker/packages/compiler/css"
	"ngc-linker/packages/compiler/output"
	constant "ngc-linker/packages/compiler/pool"
	"ngc-linker/packages/compiler/render3"
	"ngc-linker/packages/compiler/render3/r3_identifiers"
	"ngc-linker/packages/compiler/render3/view"
)

// HostAttribute is a static host attribute. Value is emitted as-is.
type HostAttribute struct {
	Name  string
	Value output.OutputExpression
}

// HostBinding is a `[property]` or `(event)` host binding and its source expression.
type HostBinding struct {
	Key   string
	Value string
}

// R3HostSpecialAttributes holds the static `class` and `style` host attributes.
type R3HostSpecialAttributes struct {
	ClassAttr *string
	StyleAttr *string
}

// R3HostMetadata describes the host of a directive.
type R3HostMetadata struct {
	Attributes        []HostAttribute
	Listeners         []HostBinding
	Properties        []HostBinding
	SpecialAttributes R3HostSpecialAttributes
}

// HasDynamicBindings reports whether the host has properties or listeners.
func (h R3HostMetadata) HasDynamicBindings() bool {
	return len(h.Properties) > 0 || len(h.Listeners) > 0
}

// R3HostDirectiveMetadata describes a host directive applied to a directive.
type R3HostDirectiveMetadata struct {
	Directive          render3.R3Reference
	IsForwardReference bool
	// Inputs and Outputs map public names to aliases, in source order. Nil
	// means all bindings are exposed unchanged.
	Inputs  []HostBinding
	Outputs []HostBinding
}

// R3LifecycleMetadata holds lifecycle hooks the compiler must know about.
type R3LifecycleMetadata struct {
	UsesOnChanges bool
}

// R3DirectiveMetadata contains what is needed to compile a directive.
type R3DirectiveMetadata struct {
	Name     string
	Type     render3.R3Reference
	Selector *string

	Queries     []view.R3QueryMetadata
	ViewQueries []view.R3QueryMetadata
	Host        R3HostMetadata
	Lifecycle   R3LifecycleMetadata
	// Inputs and Outputs are keyed by class property name, in source order.
	Inputs  []view.DirectiveBinding
	Outputs []view.DirectiveBinding

	UsesInheritance bool
	FullInheritance bool
	// ExportAs is nil when the directive is not exported.
	ExportAs       []string
	Providers      output.OutputExpression
	IsStandalone   bool
	IsSignal       bool
	HostDirectives []R3HostDirectiveMetadata
}

// HostBindingsCompiler compiles the dynamic host bindings of a directive into
// a `hostBindings` function and the number of host variables it needs.
type HostBindingsCompiler func(meta *R3DirectiveMetadata, constantPool *constant.ConstantPool) (output.OutputExpression, int, error)

// DeclarationListEmitMode says how the `dependencies` of a component are emitted.
type DeclarationListEmitMode int

const (
	// DeclarationListEmitModeDirect emits `dependencies: [A, B]`
	DeclarationListEmitModeDirect DeclarationListEmitMode = iota
	// DeclarationListEmitModeClosure emits `dependencies: () => [A, B]`
	DeclarationListEmitModeClosure
	// DeclarationListEmitModeClosureResolved emits
	// `dependencies: () => [A, B].map(ng.resolveForwardRef)`
	DeclarationListEmitModeClosureResolved
)

// R3TemplateDependencyKind is the kind of a template dependency.
type R3TemplateDependencyKind int

const (
	R3TemplateDependencyKindDirective R3TemplateDependencyKind = iota
	R3TemplateDependencyKindPipe
	R3TemplateDependencyKindNgModule
)

// R3TemplateDependency is a directive, pipe or NgModule used by a template.
type R3TemplateDependency struct {
	Kind R3TemplateDependencyKind
	Type output.OutputExpression
	// Directive only
	Selector    string
	IsComponent bool
	Inputs      []string
	Outputs     []string
	ExportAs    []string
	// Pipe only
	Name string
}

// R3CompiledTemplate is a template compiled into its template function.
type R3CompiledTemplate struct {
	Template           output.OutputExpression
	Decls              int
	Vars               int
	Consts             output.OutputExpression
	NgContentSelectors output.OutputExpression
}

// R3ComponentMetadata contains what is needed to compile a component.
type R3ComponentMetadata struct {
	R3DirectiveMetadata

	Template                R3CompiledTemplate
	Declarations            []R3TemplateDependency
	DeclarationListEmitMode DeclarationListEmitMode
	Styles                  []string
	Encapsulation           core.ViewEncapsulation
	// ChangeDetection is nil when not specified.
	ChangeDetection *core.ChangeDetectionStrategy
	Animations      output.OutputExpression
	ViewProviders   output.OutputExpression
}

// baseDirectiveFields creates the base fields for a directive definition map
func baseDirectiveFields(
	meta *R3DirectiveMetadata,
	constantPool *constant.ConstantPool,
	hostBindings HostBindingsCompiler,
) (*view.DefinitionMap, error) {
	definitionMap := view.NewDefinitionMap()

	// e.g. `type: MyDirective`
	definitionMap.Set("type", meta.Type.Value)

	// e.g. `selectors: [['', 'someDir', '']]`
	if meta.Selector != nil {
		selectors, err := core.ParseSelectorToR3Selector(*meta.Selector)
		if err != nil {
			return nil, err
		}
		if len(selectors) > 0 {
			selectorsInterface := make([]interface{}, len(selectors))
			for i, sel := range selectors {
				selectorsInterface[i] = sel
			}
			definitionMap.Set("selectors", view.AsLiteral(selectorsInterface))
		}
	}

	if len(meta.Queries) > 0 {
		// e.g. `contentQueries: (rf, ctx, dirIndex) => { ... }
		definitionMap.Set("contentQueries", view.CreateContentQueriesFunction(meta.Queries, constantPool, meta.Name))
	}

	if len(meta.ViewQueries) > 0 {
		definitionMap.Set("viewQuery", view.CreateViewQueriesFunction(meta.ViewQueries, constantPool, meta.Name))
	}

	// e.g. `hostBindings: (rf, ctx) => { ... }
	if err := createHostBindingsFunction(meta, constantPool, hostBindings, definitionMap); err != nil {
		return nil, err
	}

	// e.g 'inputs: {a: 'a'}`
	definitionMap.Set("inputs", view.ConditionallyCreateDirectiveBindingLiteral(meta.Inputs, true))

	// e.g 'outputs: {a: 'a'}`
	definitionMap.Set("outputs", view.ConditionallyCreateDirectiveBindingLiteral(meta.Outputs, false))

	if meta.ExportAs != nil {
		definitionMap.Set("exportAs", view.AsLiteral(meta.ExportAs))
	}

	if !meta.IsStandalone {
		definitionMap.Set("standalone", output.Literal(false))
	}
	if meta.IsSignal {
		definitionMap.Set("signals", output.Literal(true))
	}

	return definitionMap, nil
}

// addFeatures adds the `features` entry of a directive or component definition.
func addFeatures(definitionMap *view.DefinitionMap, meta *R3DirectiveMetadata, viewProviders output.OutputExpression) {
	features := []output.OutputExpression{}

	if meta.Providers != nil || viewProviders != nil {
		var args []output.OutputExpression
		if meta.Providers != nil {
			args = append(args, meta.Providers)
		} else {
			args = append(args, output.LiteralArr([]output.OutputExpression{}))
		}
		if viewProviders != nil {
			args = append(args, viewProviders)
		}
		features = append(features, output.ImportExpr(r3_identifiers.ProvidersFeature).Callable(args...))
	}

	// Note: host directives feature needs to be inserted before the
	// inheritance feature to ensure the correct execution order.
	if len(meta.HostDirectives) > 0 {
		features = append(features, output.ImportExpr(r3_identifiers.HostDirectivesFeature).Callable(
			createHostDirectivesFeatureArg(meta.HostDirectives),
		))
	}

	if meta.UsesInheritance {
		features = append(features, output.ImportExpr(r3_identifiers.InheritDefinitionFeature))
	}
	if meta.FullInheritance {
		features = append(features, output.ImportExpr(r3_identifiers.CopyDefinitionFeature))
	}
	if meta.Lifecycle.UsesOnChanges {
		features = append(features, output.ImportExpr(r3_identifiers.NgOnChangesFeature))
	}

	if len(features) > 0 {
		definitionMap.Set("features", output.LiteralArr(features))
	}
}

// CompileDirectiveFromMetadata compiles a directive for the render3 runtime as defined by the `R3DirectiveMetadata`.
func CompileDirectiveFromMetadata(
	meta *R3DirectiveMetadata,
	constantPool *constant.ConstantPool,
	hostBindings HostBindingsCompiler,
) (render3.R3CompiledExpression, error) {
	definitionMap, err := baseDirectiveFields(meta, constantPool, hostBindings)
	if err != nil {
		return render3.R3CompiledExpression{}, err
	}
	addFeatures(definitionMap, meta, nil)
	expression := output.NewInvokeFunctionExpr(
		output.ImportExpr(r3_identifiers.DefineDirective),
		[]output.OutputExpression{definitionMap.ToLiteralMap()},
		true,
	)
	return render3.R3CompiledExpression{Expression: expression, Statements: []output.OutputStatement{}}, nil
}

// CompileComponentFromMetadata compiles a component for the render3 runtime as defined by the `R3ComponentMetadata`.
func CompileComponentFromMetadata(
	meta *R3ComponentMetadata,
	constantPool *constant.ConstantPool,
	hostBindings HostBindingsCompiler,
) (render3.R3CompiledExpression, error) {
	definitionMap, err := baseDirectiveFields(&meta.R3DirectiveMetadata, constantPool, hostBindings)
	if err != nil {
		return render3.R3CompiledExpression{}, err
	}
	addFeatures(definitionMap, &meta.R3DirectiveMetadata, meta.ViewProviders)

	if meta.Selector != nil {
		selectors, err := css.ParseCssSelector(*meta.Selector)
		if err != nil {
			return render3.R3CompiledExpression{}, err
		}
		if len(selectors) > 0 {
			// e.g. `attrs: ["class", ".my.app"]`
			if selectorAttributes := selectors[0].GetAttrs(); len(selectorAttributes) > 0 {
				definitionMap.Set("attrs", constantPool.GetConstLiteral(view.AsLiteral(selectorAttributes), true))
			}
		}
	}

	tpl := meta.Template
	if tpl.NgContentSelectors != nil {
		definitionMap.Set("ngContentSelectors", tpl.NgContentSelectors)
	}
	// e.g. `decls: 2`
	definitionMap.Set("decls", output.Literal(tpl.Decls))
	// e.g. `vars: 2`
	definitionMap.Set("vars", output.Literal(tpl.Vars))
	if tpl.Consts != nil {
		definitionMap.Set("consts", tpl.Consts)
	}
	// e.g. `template: function MyComponent_Template(_ctx, _cm) {...}`
	definitionMap.Set("template", tpl.Template)

	if len(meta.Declarations) > 0 {
		types := make([]output.OutputExpression, len(meta.Declarations))
		for i, decl := range meta.Declarations {
			types[i] = decl.Type
		}
		definitionMap.Set("dependencies", compileDeclarationList(output.LiteralArr(types), meta.DeclarationListEmitMode))
	}

	encapsulation := meta.Encapsulation
	if len(meta.Styles) > 0 {
		styleNodes := []output.OutputExpression{}
		for _, style := range meta.Styles {
			if len(trimSpace(style)) > 0 {
				styleNodes = append(styleNodes, constantPool.GetConstLiteral(output.Literal(style), false))
			}
		}
		if len(styleNodes) > 0 {
			// e.g. `styles: [str1, str2]`
			definitionMap.Set("styles", output.LiteralArr(styleNodes))
		}
	} else if encapsulation == core.ViewEncapsulationEmulated {
		// If there is no style, don't generate css selectors on elements
		encapsulation = core.ViewEncapsulationNone
	}

	// Only set view encapsulation if it's not the default value
	if encapsulation != core.ViewEncapsulationEmulated {
		definitionMap.Set("encapsulation", output.Literal(int(encapsulation)))
	}

	// e.g. `animation: [trigger('123', [])]`
	if meta.Animations != nil {
		definitionMap.Set("data", output.NewLiteralMapExpr([]*output.LiteralMapEntry{
			output.NewLiteralMapEntry("animation", meta.Animations, false),
		}))
	}

	// Only set the change detection flag if it's defined and it's not the default.
	if meta.ChangeDetection != nil && *meta.ChangeDetection != core.ChangeDetectionStrategyDefault {
		definitionMap.Set("changeDetection", output.Literal(int(*meta.ChangeDetection)))
	}

	expression := output.NewInvokeFunctionExpr(
		output.ImportExpr(r3_identifiers.DefineComponent),
		[]output.OutputExpression{definitionMap.ToLiteralMap()},
		true,
	)
	return render3.R3CompiledExpression{Expression: expression, Statements: []output.OutputStatement{}}, nil
}

// compileDeclarationList wraps the dependency list according to the emit mode.
func compileDeclarationList(list *output.LiteralArrayExpr, mode DeclarationListEmitMode) output.OutputExpression {
	switch mode {
	case DeclarationListEmitModeClosure:
		// directives: function () { return [MyDir]; }
		return output.NewArrowFunctionExpr(nil, list)
	case DeclarationListEmitModeClosureResolved:
		// directives: function () { return [MyDir].map(ng.resolveForwardRef); }
		resolvedList := output.NewInvokeFunctionExpr(
			output.NewReadPropExpr(list, "map"),
			[]output.OutputExpression{output.ImportExpr(r3_identifiers.ResolveForwardRef)},
			false,
		)
		return output.NewArrowFunctionExpr(nil, resolvedList)
	default:
		// directives: [MyDir],
		return list
	}
}

// createHostBindingsFunction sets `hostAttrs`, `hostBindings` and `hostVars`.
func createHostBindingsFunction(
	meta *R3DirectiveMetadata,
	constantPool *constant.ConstantPool,
	hostBindings HostBindingsCompiler,
	definitionMap *view.DefinitionMap,
) error {
	host := meta.Host

	hostAttrs := []output.OutputExpression{}
	for _, attr := range host.Attributes {
		hostAttrs = append(hostAttrs, output.Literal(attr.Name), attr.Value)
	}
	if host.SpecialAttributes.ClassAttr != nil {
		if classes := view.ParseClasses(*host.SpecialAttributes.ClassAttr); len(classes) > 0 {
			hostAttrs = append(hostAttrs, output.Literal(int(core.AttributeMarkerClasses)))
			for _, class := range classes {
				hostAttrs = append(hostAttrs, output.Literal(class))
			}
		}
	}
	if host.SpecialAttributes.StyleAttr != nil {
		if styles := view.ParseStyle(*host.SpecialAttributes.StyleAttr); len(styles) > 0 {
			hostAttrs = append(hostAttrs, output.Literal(int(core.AttributeMarkerStyles)))
			for _, style := range styles {
				hostAttrs = append(hostAttrs, output.Literal(style))
			}
		}
	}
	if len(hostAttrs) > 0 {
		definitionMap.Set("hostAttrs", output.LiteralArr(hostAttrs))
	}

	if !host.HasDynamicBindings() {
		return nil
	}
	if hostBindings == nil {
		return errors.Newf("no host bindings compiler available for %s", meta.Name)
	}
	fn, hostVars, err := hostBindings(meta, constantPool)
	if err != nil {
		return err
	}
	if hostVars > 0 {
		definitionMap.Set("hostVars", output.Literal(hostVars))
	}
	definitionMap.Set("hostBindings", fn)
	return nil
}

// createHostDirectivesFeatureArg creates the feature argument for host directives
func createHostDirectivesFeatureArg(hostDirectives []R3HostDirectiveMetadata) output.OutputExpression {
	expressions := []output.OutputExpression{}
	hasForwardRef := false

	for _, current := range hostDirectives {
		if current.Inputs == nil && current.Outputs == nil {
			expressions = append(expressions, current.Directive.Value)
		} else {
			keys := []*output.LiteralMapEntry{
				output.NewLiteralMapEntry("directive", current.Directive.Value, false),
			}
			if inputsLiteral := CreateHostDirectivesMappingArray(current.Inputs); inputsLiteral != nil {
				keys = append(keys, output.NewLiteralMapEntry("inputs", inputsLiteral, false))
			}
			if outputsLiteral := CreateHostDirectivesMappingArray(current.Outputs); outputsLiteral != nil {
				keys = append(keys, output.NewLiteralMapEntry("outputs", outputsLiteral, false))
			}
			expressions = append(expressions, output.NewLiteralMapExpr(keys))
		}

		if current.IsForwardReference {
			hasForwardRef = true
		}
	}

	// If there's a forward reference, we generate a `function() { return [HostDir] }`,
	// otherwise we can save some bytes by using a plain array, e.g. `[HostDir]`.
	if hasForwardRef {
		return output.NewFunctionExpr(
			[]*output.FnParam{},
			[]output.OutputStatement{output.NewReturnStatement(output.LiteralArr(expressions))},
			nil,
		)
	}
	return output.LiteralArr(expressions)
}

// CreateHostDirectivesMappingArray converts an input/output mapping into a flat
// `[publicName, alias, ...]` array. Returns nil for an empty mapping.
func CreateHostDirectivesMappingArray(mapping []HostBinding) output.OutputExpression {
	if len(mapping) == 0 {
		return nil
	}
	elements := make([]output.OutputExpression, 0, 2*len(mapping))
	for _, binding := range mapping {
		elements = append(elements, output.Literal(binding.Key), output.Literal(binding.Value))
	}
	return output.LiteralArr(elements)
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}
