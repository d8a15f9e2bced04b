package partial_linkers

import (
	"ngc-linker/packages/compiler-cli/linker"
	"ngc-linker/packages/compiler-cli/linker/ast"
	"ngc-linker/packages/compiler-cli/linker/environment"
	"ngc-linker/packages/compiler/core"
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/pool"
	"ngc-linker/packages/compiler/render3/view"
	"ngc-linker/packages/compiler/render3/view/compiler"
)

// PartialDirectiveLinkerVersion1 links `ɵɵngDeclareDirective` calls into
// `ɵɵdefineDirective` definitions.
type PartialDirectiveLinkerVersion1[E any] struct {
	templateCompiler environment.TemplateCompiler
}

// NewPartialDirectiveLinkerVersion1 creates the directive linker.
// templateCompiler may be nil; directives with dynamic host bindings then
// fail to link.
func NewPartialDirectiveLinkerVersion1[E any](templateCompiler environment.TemplateCompiler) *PartialDirectiveLinkerVersion1[E] {
	return &PartialDirectiveLinkerVersion1[E]{templateCompiler: templateCompiler}
}

func (l *PartialDirectiveLinkerVersion1[E]) LinkPartialDeclaration(
	constantPool *pool.ConstantPool,
	metaObj *ast.AstObject[E],
	version string,
) (LinkedDefinition, error) {
	meta, err := toR3DirectiveMeta(metaObj, version)
	if err != nil {
		return LinkedDefinition{}, err
	}
	hostBindings := makeHostBindingsCompiler(l.templateCompiler, metaObj)
	compiled, err := compiler.CompileDirectiveFromMetadata(meta, constantPool, hostBindings)
	if err != nil {
		return LinkedDefinition{}, err
	}
	return LinkedDefinition{Expression: compiled.Expression, Statements: compiled.Statements}, nil
}

// makeHostBindingsCompiler delegates dynamic host bindings to the template
// compiler. Errors are reported against the `host` property.
func makeHostBindingsCompiler[E any](templateCompiler environment.TemplateCompiler, metaObj *ast.AstObject[E]) compiler.HostBindingsCompiler {
	return func(meta *compiler.R3DirectiveMetadata, constantPool *pool.ConstantPool) (output.OutputExpression, int, error) {
		var node interface{} = metaObj.Expression
		if hostNode, err := metaObj.GetNode("host"); err == nil {
			node = hostNode
		}
		if templateCompiler == nil {
			return nil, 0, linker.NewFatalLinkerErrorf(node,
				"Cannot compile the host bindings of %s: no template compiler is configured", meta.Name)
		}

		request := &environment.HostBindingsRequest{
			DirectiveName: meta.Name,
			SpecialAttrs:  map[string]string{},
		}
		if meta.Selector != nil {
			request.Selector = *meta.Selector
		}
		for _, p := range meta.Host.Properties {
			request.Properties = append(request.Properties, environment.HostBinding{Key: p.Key, Value: p.Value})
		}
		for _, l := range meta.Host.Listeners {
			request.Listeners = append(request.Listeners, environment.HostBinding{Key: l.Key, Value: l.Value})
		}
		if attr := meta.Host.SpecialAttributes.ClassAttr; attr != nil {
			request.SpecialAttrs["class"] = *attr
		}
		if attr := meta.Host.SpecialAttributes.StyleAttr; attr != nil {
			request.SpecialAttrs["style"] = *attr
		}

		result, err := templateCompiler.CompileHostBindings(constantPool, request)
		if err != nil {
			if linker.IsFatalLinkerError(err) {
				return nil, 0, err
			}
			return nil, 0, linker.NewFatalLinkerErrorf(node, "Errors found in the host bindings of %s:\n%s", meta.Name, err.Error())
		}
		return result.HostBindings, result.HostVars, nil
	}
}

// toR3DirectiveMeta derives the directive metadata from the declaration.
func toR3DirectiveMeta[E any](metaObj *ast.AstObject[E], version string) (*compiler.R3DirectiveMetadata, error) {
	typeExpr, name, err := typeName(metaObj)
	if err != nil {
		return nil, err
	}

	meta := &compiler.R3DirectiveMetadata{
		Name: name,
		Type: wrapReference(typeExpr.GetOpaque()),
	}

	if meta.Host, err = toHostMetadata(metaObj); err != nil {
		return nil, err
	}

	if metaObj.Has("inputs") {
		inputs, err := metaObj.GetObject("inputs")
		if err != nil {
			return nil, err
		}
		mapped, err := ast.ToLiteral(inputs, toInputMapping[E])
		if err != nil {
			return nil, err
		}
		for _, kv := range mapped {
			meta.Inputs = append(meta.Inputs, kv.Value)
		}
	}

	if metaObj.Has("outputs") {
		outputs, err := metaObj.GetObject("outputs")
		if err != nil {
			return nil, err
		}
		mapped, err := ast.ToLiteral(outputs, func(value *ast.AstValue[E], key string) (string, error) {
			return value.GetString()
		})
		if err != nil {
			return nil, err
		}
		for _, kv := range mapped {
			meta.Outputs = append(meta.Outputs, view.DirectiveBinding{
				Key:                 kv.Key,
				ClassPropertyName:   kv.Key,
				BindingPropertyName: kv.Value,
			})
		}
	}

	if meta.Queries, err = toQueryList(metaObj, "queries"); err != nil {
		return nil, err
	}
	if meta.ViewQueries, err = toQueryList(metaObj, "viewQueries"); err != nil {
		return nil, err
	}

	if meta.Providers, err = optionalOpaque(metaObj, "providers"); err != nil {
		return nil, err
	}

	if metaObj.Has("selector") {
		selector, err := metaObj.GetString("selector")
		if err != nil {
			return nil, err
		}
		meta.Selector = &selector
	}

	if metaObj.Has("exportAs") {
		values, err := metaObj.GetArray("exportAs")
		if err != nil {
			return nil, err
		}
		if meta.ExportAs, err = stringArray(values); err != nil {
			return nil, err
		}
	}

	if meta.Lifecycle.UsesOnChanges, err = optionalBool(metaObj, "usesOnChanges", false); err != nil {
		return nil, err
	}
	if meta.UsesInheritance, err = optionalBool(metaObj, "usesInheritance", false); err != nil {
		return nil, err
	}
	if meta.IsStandalone, err = optionalBool(metaObj, "isStandalone", core.GetJitStandaloneDefaultForVersion(version)); err != nil {
		return nil, err
	}
	if meta.IsSignal, err = optionalBool(metaObj, "isSignal", false); err != nil {
		return nil, err
	}

	if metaObj.Has("hostDirectives") {
		hostDirectives, err := metaObj.GetValue("hostDirectives")
		if err != nil {
			return nil, err
		}
		if meta.HostDirectives, err = toHostDirectivesMetadata(hostDirectives); err != nil {
			return nil, err
		}
	}

	return meta, nil
}

// toInputMapping decodes an input in either its object form or one of the
// legacy string and array forms.
func toInputMapping[E any](value *ast.AstValue[E], key string) (view.DirectiveBinding, error) {
	if value.IsObject() {
		obj, err := value.GetObject()
		if err != nil {
			return view.DirectiveBinding{}, err
		}
		classPropertyName, err := obj.GetString("classPropertyName")
		if err != nil {
			return view.DirectiveBinding{}, err
		}
		publicName, err := obj.GetString("publicName")
		if err != nil {
			return view.DirectiveBinding{}, err
		}
		isSignal, err := obj.GetBoolean("isSignal")
		if err != nil {
			return view.DirectiveBinding{}, err
		}
		transformValue, err := obj.GetValue("transformFunction")
		if err != nil {
			return view.DirectiveBinding{}, err
		}
		binding := view.DirectiveBinding{
			Key:                 key,
			ClassPropertyName:   classPropertyName,
			BindingPropertyName: publicName,
			IsSignal:            isSignal,
		}
		if !transformValue.IsNull() {
			binding.TransformFunction = transformValue.GetOpaque()
		}
		return binding, nil
	}
	return parseLegacyInputPartialOutput(key, value)
}

// parseLegacyInputPartialOutput handles `'publicName'` and
// `['publicName', 'classPropertyName', transformFn?]`.
func parseLegacyInputPartialOutput[E any](key string, value *ast.AstValue[E]) (view.DirectiveBinding, error) {
	if value.IsString() {
		publicName, err := value.GetString()
		if err != nil {
			return view.DirectiveBinding{}, err
		}
		return view.DirectiveBinding{Key: key, ClassPropertyName: key, BindingPropertyName: publicName}, nil
	}

	values, err := value.GetArray()
	if err != nil {
		return view.DirectiveBinding{}, err
	}
	if len(values) != 2 && len(values) != 3 {
		return view.DirectiveBinding{}, linker.NewFatalLinkerError(value.Expression,
			"Unsupported input, expected a string or an array containing two strings and an optional function")
	}
	publicName, err := values[0].GetString()
	if err != nil {
		return view.DirectiveBinding{}, err
	}
	classPropertyName, err := values[1].GetString()
	if err != nil {
		return view.DirectiveBinding{}, err
	}
	binding := view.DirectiveBinding{Key: key, ClassPropertyName: classPropertyName, BindingPropertyName: publicName}
	if len(values) > 2 {
		binding.TransformFunction = values[2].GetOpaque()
	}
	return binding, nil
}

func toQueryList[E any](metaObj *ast.AstObject[E], name string) ([]view.R3QueryMetadata, error) {
	if !metaObj.Has(name) {
		return nil, nil
	}
	entries, err := metaObj.GetArray(name)
	if err != nil {
		return nil, err
	}
	queries := make([]view.R3QueryMetadata, 0, len(entries))
	for _, entry := range entries {
		obj, err := entry.GetObject()
		if err != nil {
			return nil, err
		}
		query, err := toQueryMetadata(obj)
		if err != nil {
			return nil, err
		}
		queries = append(queries, query)
	}
	return queries, nil
}

// toQueryMetadata decodes one entry of `queries` or `viewQueries`.
func toQueryMetadata[E any](obj *ast.AstObject[E]) (view.R3QueryMetadata, error) {
	var query view.R3QueryMetadata

	predicateExpr, err := obj.GetValue("predicate")
	if err != nil {
		return query, err
	}
	if predicateExpr.IsArray() {
		entries, err := predicateExpr.GetArray()
		if err != nil {
			return query, err
		}
		names, err := stringArray(entries)
		if err != nil {
			return query, err
		}
		query.Predicate = names
	} else {
		query.Predicate = view.MaybeForwardRefExpression{
			Expression: predicateExpr.GetOpaque(),
			ForwardRef: view.ForwardRefHandlingNone,
		}
	}

	if query.PropertyName, err = obj.GetString("propertyName"); err != nil {
		return query, err
	}
	if query.First, err = optionalBool(obj, "first", false); err != nil {
		return query, err
	}
	if query.Descendants, err = optionalBool(obj, "descendants", false); err != nil {
		return query, err
	}
	if query.EmitDistinctChangesOnly, err = optionalBool(obj, "emitDistinctChangesOnly", true); err != nil {
		return query, err
	}
	if query.Read, err = optionalOpaque(obj, "read"); err != nil {
		return query, err
	}
	if query.Static, err = optionalBool(obj, "static", false); err != nil {
		return query, err
	}
	if query.IsSignal, err = optionalBool(obj, "isSignal", false); err != nil {
		return query, err
	}
	return query, nil
}

// toHostMetadata decodes the `host` object.
func toHostMetadata[E any](metaObj *ast.AstObject[E]) (compiler.R3HostMetadata, error) {
	var host compiler.R3HostMetadata
	if !metaObj.Has("host") {
		return host, nil
	}
	hostObj, err := metaObj.GetObject("host")
	if err != nil {
		return host, err
	}

	if hostObj.Has("attributes") {
		attributes, err := hostObj.GetObject("attributes")
		if err != nil {
			return host, err
		}
		mapped, err := ast.ToLiteral(attributes, func(value *ast.AstValue[E], _ string) (output.OutputExpression, error) {
			return value.GetOpaque(), nil
		})
		if err != nil {
			return host, err
		}
		for _, kv := range mapped {
			host.Attributes = append(host.Attributes, compiler.HostAttribute{Name: kv.Key, Value: kv.Value})
		}
	}

	readBindings := func(name string) ([]compiler.HostBinding, error) {
		if !hostObj.Has(name) {
			return nil, nil
		}
		obj, err := hostObj.GetObject(name)
		if err != nil {
			return nil, err
		}
		mapped, err := ast.ToLiteral(obj, func(value *ast.AstValue[E], _ string) (string, error) {
			return value.GetString()
		})
		if err != nil {
			return nil, err
		}
		bindings := make([]compiler.HostBinding, len(mapped))
		for i, kv := range mapped {
			bindings[i] = compiler.HostBinding{Key: kv.Key, Value: kv.Value}
		}
		return bindings, nil
	}
	if host.Listeners, err = readBindings("listeners"); err != nil {
		return host, err
	}
	if host.Properties, err = readBindings("properties"); err != nil {
		return host, err
	}

	if hostObj.Has("styleAttribute") {
		style, err := hostObj.GetString("styleAttribute")
		if err != nil {
			return host, err
		}
		host.SpecialAttributes.StyleAttr = &style
	}
	if hostObj.Has("classAttribute") {
		class, err := hostObj.GetString("classAttribute")
		if err != nil {
			return host, err
		}
		host.SpecialAttributes.ClassAttr = &class
	}
	return host, nil
}

// toHostDirectivesMetadata decodes the `hostDirectives` array.
func toHostDirectivesMetadata[E any](hostDirectives *ast.AstValue[E]) ([]compiler.R3HostDirectiveMetadata, error) {
	entries, err := hostDirectives.GetArray()
	if err != nil {
		return nil, err
	}
	result := make([]compiler.R3HostDirectiveMetadata, 0, len(entries))
	for _, entry := range entries {
		hostObject, err := entry.GetObject()
		if err != nil {
			return nil, err
		}
		directive, err := hostObject.GetValue("directive")
		if err != nil {
			return nil, err
		}
		ref, err := extractForwardRef(directive)
		if err != nil {
			return nil, err
		}
		meta := compiler.R3HostDirectiveMetadata{
			Directive:          wrapReference(ref.Expression),
			IsForwardReference: ref.ForwardRef != view.ForwardRefHandlingNone,
		}
		if meta.Inputs, err = hostDirectiveBindingMapping(hostObject, "inputs"); err != nil {
			return nil, err
		}
		if meta.Outputs, err = hostDirectiveBindingMapping(hostObject, "outputs"); err != nil {
			return nil, err
		}
		result = append(result, meta)
	}
	return result, nil
}

// hostDirectiveBindingMapping reads `['public', 'alias', ...]` pairs. It
// returns nil when the property is absent or empty.
func hostDirectiveBindingMapping[E any](hostObject *ast.AstObject[E], name string) ([]compiler.HostBinding, error) {
	if !hostObject.Has(name) {
		return nil, nil
	}
	values, err := hostObject.GetArray(name)
	if err != nil {
		return nil, err
	}
	var result []compiler.HostBinding
	for i := 1; i < len(values); i += 2 {
		publicName, err := values[i-1].GetString()
		if err != nil {
			return nil, err
		}
		alias, err := values[i].GetString()
		if err != nil {
			return nil, err
		}
		result = append(result, compiler.HostBinding{Key: publicName, Value: alias})
	}
	return result, nil
}
