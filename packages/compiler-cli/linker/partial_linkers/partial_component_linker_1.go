package partial_linkers

import (
	"ngc-linker/packages/compiler-cli/linker"
	"ngc-linker/packages/compiler-cli/linker/ast"
	"ngc-linker/packages/compiler-cli/linker/environment"
	"ngc-linker/packages/compiler-cli/logging"
	"ngc-linker/packages/compiler-cli/sourcemaps"
	"ngc-linker/packages/compiler/core"
	"ngc-linker/packages/compiler/pool"
	"ngc-linker/packages/compiler/render3/view"
	"ngc-linker/packages/compiler/render3/view/compiler"
)

var viewEncapsulationMembers = map[string]core.ViewEncapsulation{
	"Emulated":  core.ViewEncapsulationEmulated,
	"None":      core.ViewEncapsulationNone,
	"ShadowDom": core.ViewEncapsulationShadowDom,
}

var changeDetectionMembers = map[string]core.ChangeDetectionStrategy{
	"OnPush":  core.ChangeDetectionStrategyOnPush,
	"Default": core.ChangeDetectionStrategyDefault,
}

// PartialComponentLinkerVersion1 links `ɵɵngDeclareComponent` calls into
// `ɵɵdefineComponent` definitions. Templates are compiled by the injected
// TemplateCompiler.
type PartialComponentLinkerVersion1[E any] struct {
	templateCompiler environment.TemplateCompiler
	options          environment.LinkerOptions
	sourceFileLoader *sourcemaps.SourceFileLoader
	logger           logging.Logger
	sourceURL        string
	code             string
}

// NewPartialComponentLinkerVersion1 creates the component linker for the file
// at sourceURL whose contents are code.
func NewPartialComponentLinkerVersion1[E any](
	templateCompiler environment.TemplateCompiler,
	options environment.LinkerOptions,
	sourceFileLoader *sourcemaps.SourceFileLoader,
	logger logging.Logger,
	sourceURL, code string,
) *PartialComponentLinkerVersion1[E] {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &PartialComponentLinkerVersion1[E]{
		templateCompiler: templateCompiler,
		options:          options,
		sourceFileLoader: sourceFileLoader,
		logger:           logger,
		sourceURL:        sourceURL,
		code:             code,
	}
}

func (l *PartialComponentLinkerVersion1[E]) LinkPartialDeclaration(
	constantPool *pool.ConstantPool,
	metaObj *ast.AstObject[E],
	version string,
) (LinkedDefinition, error) {
	meta, err := l.toR3ComponentMeta(constantPool, metaObj, version)
	if err != nil {
		return LinkedDefinition{}, err
	}
	hostBindings := makeHostBindingsCompiler(l.templateCompiler, metaObj)
	compiled, err := compiler.CompileComponentFromMetadata(meta, constantPool, hostBindings)
	if err != nil {
		return LinkedDefinition{}, err
	}
	return LinkedDefinition{Expression: compiled.Expression, Statements: compiled.Statements}, nil
}

// toR3ComponentMeta derives the component metadata, compiling the template
// along the way.
func (l *PartialComponentLinkerVersion1[E]) toR3ComponentMeta(
	constantPool *pool.ConstantPool,
	metaObj *ast.AstObject[E],
	version string,
) (*compiler.R3ComponentMetadata, error) {
	directiveMeta, err := toR3DirectiveMeta(metaObj, version)
	if err != nil {
		return nil, err
	}
	meta := &compiler.R3ComponentMetadata{
		R3DirectiveMetadata: *directiveMeta,
		Encapsulation:       core.ViewEncapsulationEmulated,
	}

	if meta.ViewProviders, err = optionalOpaque(metaObj, "viewProviders"); err != nil {
		return nil, err
	}
	if meta.Animations, err = optionalOpaque(metaObj, "animations"); err != nil {
		return nil, err
	}

	if metaObj.Has("styles") {
		values, err := metaObj.GetArray("styles")
		if err != nil {
			return nil, err
		}
		if meta.Styles, err = stringArray(values); err != nil {
			return nil, err
		}
	}

	if metaObj.Has("encapsulation") {
		value, err := metaObj.GetValue("encapsulation")
		if err != nil {
			return nil, err
		}
		if meta.Encapsulation, err = parseEncapsulation(value); err != nil {
			return nil, err
		}
	}

	if metaObj.Has("changeDetection") {
		value, err := metaObj.GetValue("changeDetection")
		if err != nil {
			return nil, err
		}
		strategy, err := parseChangeDetectionStrategy(value)
		if err != nil {
			return nil, err
		}
		meta.ChangeDetection = &strategy
	}

	if err := l.collectDeclarations(metaObj, meta); err != nil {
		return nil, err
	}

	if err := l.compileTemplate(constantPool, metaObj, meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// compileTemplate hands the template to the template compiler and stores the
// result on meta.
func (l *PartialComponentLinkerVersion1[E]) compileTemplate(
	constantPool *pool.ConstantPool,
	metaObj *ast.AstObject[E],
	meta *compiler.R3ComponentMetadata,
) error {
	templateNode, err := metaObj.GetValue("template")
	if err != nil {
		return err
	}
	if !templateNode.IsString() {
		return linker.NewFatalLinkerError(templateNode.Expression, "Expected the template string to be a string literal.")
	}
	template, err := templateNode.GetString()
	if err != nil {
		return err
	}

	isInline, err := optionalBool(metaObj, "isInline", false)
	if err != nil {
		return err
	}
	preserveWhitespaces, err := optionalBool(metaObj, "preserveWhitespaces", false)
	if err != nil {
		return err
	}
	interpolation, err := parseInterpolationConfig(metaObj)
	if err != nil {
		return err
	}

	if l.templateCompiler == nil {
		return linker.NewFatalLinkerErrorf(templateNode.Expression,
			"Cannot compile the template of %s: no template compiler is configured", meta.Name)
	}

	request := &environment.TemplateRequest{
		ComponentName:       meta.Name,
		Template:            template,
		IsInline:            isInline,
		SourceURL:           l.sourceURL,
		PreserveWhitespaces: preserveWhitespaces,
		Interpolation:       interpolation,
		Options:             l.options,
		Styles:              meta.Styles,
		Encapsulated:        meta.Encapsulation == core.ViewEncapsulationEmulated,
		SourceFile:          l.loadSourceFile,
	}
	if r, err := templateNode.GetRange(); err == nil {
		request.TemplateStart = r.StartPos
	}

	result, err := l.templateCompiler.CompileTemplate(constantPool, request)
	if err != nil {
		if linker.IsFatalLinkerError(err) {
			return err
		}
		return linker.NewFatalLinkerErrorf(templateNode.Expression, "Errors found in the template:\n%s", err.Error())
	}

	meta.Template = compiler.R3CompiledTemplate{
		Template:           result.Template,
		Decls:              result.Decls,
		Vars:               result.Vars,
		Consts:             result.Consts,
		NgContentSelectors: result.NgContentSelectors,
	}
	if result.Styles != nil {
		meta.Styles = result.Styles
	}
	return nil
}

func (l *PartialComponentLinkerVersion1[E]) loadSourceFile() *sourcemaps.SourceFile {
	if l.sourceFileLoader == nil {
		return nil
	}
	code := l.code
	sourceFile := l.sourceFileLoader.LoadSourceFile(l.sourceURL, &code, nil)
	if sourceFile == nil {
		l.logger.Debug("no source file available for template mapping", "file", l.sourceURL)
	}
	return sourceFile
}

// collectDeclarations reads the template dependencies, in both the
// `dependencies` form and the older `components`/`directives`/`pipes` form.
func (l *PartialComponentLinkerVersion1[E]) collectDeclarations(metaObj *ast.AstObject[E], meta *compiler.R3ComponentMetadata) error {
	meta.DeclarationListEmitMode = compiler.DeclarationListEmitModeDirect

	extractDeclarationType := func(value *ast.AstValue[E]) (*compiler.R3TemplateDependency, error) {
		ref, err := extractForwardRef(value)
		if err != nil {
			return nil, err
		}
		if ref.ForwardRef == view.ForwardRefHandlingUnwrapped {
			meta.DeclarationListEmitMode = compiler.DeclarationListEmitModeClosure
		}
		return &compiler.R3TemplateDependency{Type: ref.Expression}, nil
	}

	addDirectives := func(name string, isComponent bool) error {
		if !metaObj.Has(name) {
			return nil
		}
		entries, err := metaObj.GetArray(name)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			obj, err := entry.GetObject()
			if err != nil {
				return err
			}
			typeValue, err := obj.GetValue("type")
			if err != nil {
				return err
			}
			dep, err := extractDeclarationType(typeValue)
			if err != nil {
				return err
			}
			if err := makeDirectiveMetadata(obj, dep, isComponent); err != nil {
				return err
			}
			meta.Declarations = append(meta.Declarations, *dep)
		}
		return nil
	}

	if err := addDirectives("components", true); err != nil {
		return err
	}
	if err := addDirectives("directives", false); err != nil {
		return err
	}

	if metaObj.Has("pipes") {
		pipes, err := metaObj.GetObject("pipes")
		if err != nil {
			return err
		}
		mapped, err := ast.ToLiteral(pipes, func(value *ast.AstValue[E], name string) (*compiler.R3TemplateDependency, error) {
			dep, err := extractDeclarationType(value)
			if err != nil {
				return nil, err
			}
			dep.Kind = compiler.R3TemplateDependencyKindPipe
			dep.Name = name
			return dep, nil
		})
		if err != nil {
			return err
		}
		for _, kv := range mapped {
			meta.Declarations = append(meta.Declarations, *kv.Value)
		}
	}

	if metaObj.Has("dependencies") {
		entries, err := metaObj.GetArray("dependencies")
		if err != nil {
			return err
		}
		for _, entry := range entries {
			depObj, err := entry.GetObject()
			if err != nil {
				return err
			}
			typeValue, err := depObj.GetValue("type")
			if err != nil {
				return err
			}
			kind, err := depObj.GetString("kind")
			if err != nil {
				return err
			}
			dep, err := extractDeclarationType(typeValue)
			if err != nil {
				return err
			}
			switch kind {
			case "directive", "component":
				if err := makeDirectiveMetadata(depObj, dep, false); err != nil {
					return err
				}
			case "pipe":
				dep.Kind = compiler.R3TemplateDependencyKindPipe
				if dep.Name, err = depObj.GetString("name"); err != nil {
					return err
				}
			case "ngmodule":
				dep.Kind = compiler.R3TemplateDependencyKindNgModule
			default:
				continue
			}
			meta.Declarations = append(meta.Declarations, *dep)
		}
	}
	return nil
}

// makeDirectiveMetadata fills the directive fields of a template dependency.
func makeDirectiveMetadata[E any](directiveExpr *ast.AstObject[E], dep *compiler.R3TemplateDependency, isComponentByDefault bool) error {
	dep.Kind = compiler.R3TemplateDependencyKindDirective
	dep.IsComponent = isComponentByDefault
	if !dep.IsComponent && directiveExpr.Has("kind") {
		kind, err := directiveExpr.GetString("kind")
		if err != nil {
			return err
		}
		dep.IsComponent = kind == "component"
	}

	var err error
	if dep.Selector, err = directiveExpr.GetString("selector"); err != nil {
		return err
	}
	readStrings := func(name string) ([]string, error) {
		if !directiveExpr.Has(name) {
			return nil, nil
		}
		values, err := directiveExpr.GetArray(name)
		if err != nil {
			return nil, err
		}
		return stringArray(values)
	}
	if dep.Inputs, err = readStrings("inputs"); err != nil {
		return err
	}
	if dep.Outputs, err = readStrings("outputs"); err != nil {
		return err
	}
	if dep.ExportAs, err = readStrings("exportAs"); err != nil {
		return err
	}
	return nil
}

// parseInterpolationConfig reads the `interpolation` markers, if any.
func parseInterpolationConfig[E any](metaObj *ast.AstObject[E]) (environment.InterpolationConfig, error) {
	if !metaObj.Has("interpolation") {
		return environment.DefaultInterpolationConfig, nil
	}
	interpolationExpr, err := metaObj.GetValue("interpolation")
	if err != nil {
		return environment.InterpolationConfig{}, err
	}
	entries, err := interpolationExpr.GetArray()
	if err != nil {
		return environment.InterpolationConfig{}, err
	}
	values, err := stringArray(entries)
	if err != nil {
		return environment.InterpolationConfig{}, err
	}
	if len(values) != 2 {
		return environment.InterpolationConfig{}, linker.NewFatalLinkerError(interpolationExpr.Expression,
			"Unsupported interpolation config, expected an array containing exactly two strings")
	}
	return environment.InterpolationConfig{Start: values[0], End: values[1]}, nil
}

// parseEncapsulation resolves e.g. `i0.ViewEncapsulation.None`.
func parseEncapsulation[E any](encapsulation *ast.AstValue[E]) (core.ViewEncapsulation, error) {
	symbolName, ok := encapsulation.GetSymbolName()
	if !ok {
		return 0, linker.NewFatalLinkerError(encapsulation.Expression, "Expected encapsulation to have a symbol name")
	}
	value, ok := viewEncapsulationMembers[symbolName]
	if !ok {
		return 0, linker.NewFatalLinkerError(encapsulation.Expression, "Unsupported encapsulation")
	}
	return value, nil
}

// parseChangeDetectionStrategy resolves e.g. `i0.ChangeDetectionStrategy.OnPush`.
func parseChangeDetectionStrategy[E any](changeDetectionStrategy *ast.AstValue[E]) (core.ChangeDetectionStrategy, error) {
	symbolName, ok := changeDetectionStrategy.GetSymbolName()
	if !ok {
		return 0, linker.NewFatalLinkerError(changeDetectionStrategy.Expression, "Expected change detection strategy to have a symbol name")
	}
	value, ok := changeDetectionMembers[symbolName]
	if !ok {
		return 0, linker.NewFatalLinkerError(changeDetectionStrategy.Expression, "Unsupported change detection strategy")
	}
	return value, nil
}
