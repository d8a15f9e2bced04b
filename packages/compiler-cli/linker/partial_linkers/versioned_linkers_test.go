package partial_linkers_test

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngc-linker/packages/compiler-cli/linker/environment"
	"ngc-linker/packages/compiler-cli/linker/treesitter"
	"ngc-linker/packages/compiler-cli/logging"
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/pool"
)

const header = "import * as i0 from \"@angular/core\";\n"

type recordingCompiler struct {
	templates []*environment.TemplateRequest
	hosts     []*environment.HostBindingsRequest
	styles    []string
}

func (c *recordingCompiler) CompileTemplate(_ *pool.ConstantPool, request *environment.TemplateRequest) (*environment.TemplateResult, error) {
	c.templates = append(c.templates, request)
	return &environment.TemplateResult{
		Template: output.NewFunctionExpr([]*output.FnParam{output.NewFnParam("rf"), output.NewFnParam("ctx")}, []output.OutputStatement{}, nil),
		Decls:    2,
		Vars:     1,
		Styles:   c.styles,
	}, nil
}

func (c *recordingCompiler) CompileHostBindings(_ *pool.ConstantPool, request *environment.HostBindingsRequest) (*environment.HostBindingsResult, error) {
	c.hosts = append(c.hosts, request)
	return &environment.HostBindingsResult{
		HostBindings: output.NewFunctionExpr([]*output.FnParam{output.NewFnParam("rf"), output.NewFnParam("ctx")}, []output.OutputStatement{}, nil),
		HostVars:     3,
	}, nil
}

type linkOptions struct {
	jit      bool
	compiler environment.TemplateCompiler
}

// linkDeclaration links `<target> = <declaration>;` and returns the linked
// right hand side.
func linkDeclaration(t *testing.T, target, declaration string, opts linkOptions) string {
	t.Helper()
	code, diagnostics := linkSource(t, header+target+" = "+declaration+";\n", opts)
	require.Empty(t, diagnostics)
	prefix := header + target + " = "
	require.True(t, strings.HasPrefix(code, prefix), code)
	return strings.TrimSuffix(strings.TrimPrefix(code, prefix), ";\n")
}

func linkSource(t *testing.T, source string, opts linkOptions) (string, []treesitter.Diagnostic) {
	t.Helper()
	sourceMapping := false
	var envOpts []environment.Option
	if opts.compiler != nil {
		envOpts = append(envOpts, environment.WithTemplateCompiler(opts.compiler))
	}
	env, err := treesitter.NewEnvironment(afero.NewMemMapFs(), logging.NewNopLogger(), environment.LinkerPartialOptions{
		SourceMapping: &sourceMapping,
		LinkerJitMode: &opts.jit,
	}, envOpts...)
	require.NoError(t, err)
	result, err := treesitter.LinkFile(context.Background(), env, "lib.mjs", []byte(source), treesitter.JavaScript)
	require.NoError(t, err)
	return result.Code, result.Diagnostics
}

func declare(fn, fields string) string {
	return "i0." + fn + `({ minVersion: "12.0.0", version: "0.0.0-PLACEHOLDER", ngImport: i0, ` + fields + " })"
}

func TestFactoryLinker(t *testing.T) {
	t.Run("should instantiate the type with its dependencies", func(t *testing.T) {
		linked := linkDeclaration(t, "Svc.ɵfac", declare("ɵɵngDeclareFactory",
			`type: Svc, deps: [{ token: Dep }, { token: Opt, optional: true }, { token: Parent, skipSelf: true, host: true }], target: i0.ɵɵFactoryTarget.Injectable`), linkOptions{})
		assert.Equal(t,
			"function Svc_Factory(__ngFactoryType__) {\nreturn new (__ngFactoryType__ || Svc)(i0.ɵɵinject(Dep), i0.ɵɵinject(Opt, 8), i0.ɵɵinject(Parent, 5));\n}",
			linked)
	})

	t.Run("should use directiveInject for directives and pipes", func(t *testing.T) {
		linked := linkDeclaration(t, "Dir.ɵfac", declare("ɵɵngDeclareFactory",
			`type: Dir, deps: [{ token: i0.ElementRef }], target: i0.ɵɵFactoryTarget.Directive`), linkOptions{})
		assert.Contains(t, linked, "new (__ngFactoryType__ || Dir)(i0.ɵɵdirectiveInject(i0.ElementRef))")

		linked = linkDeclaration(t, "P.ɵfac", declare("ɵɵngDeclareFactory",
			`type: P, deps: [{ token: Dep }], target: i0.ɵɵFactoryTarget.Pipe`), linkOptions{})
		assert.Contains(t, linked, "i0.ɵɵdirectiveInject(Dep, 16)")
	})

	t.Run("should inject attributes by name", func(t *testing.T) {
		linked := linkDeclaration(t, "Dir.ɵfac", declare("ɵɵngDeclareFactory",
			`type: Dir, deps: [{ token: "title", attribute: true }], target: i0.ɵɵFactoryTarget.Directive`), linkOptions{})
		assert.Contains(t, linked, `i0.ɵɵinjectAttribute("title")`)
	})

	t.Run("should inherit the factory when there are no deps", func(t *testing.T) {
		linked := linkDeclaration(t, "Child.ɵfac", declare("ɵɵngDeclareFactory",
			`type: Child, target: i0.ɵɵFactoryTarget.Component`), linkOptions{})
		assert.True(t, strings.HasPrefix(linked, "/*@__PURE__*/ (() => {\nlet ɵChild_BaseFactory;\nreturn function Child_Factory(__ngFactoryType__) {"), linked)
		assert.Contains(t, linked,
			"return (ɵChild_BaseFactory || (ɵChild_BaseFactory = i0.ɵɵgetInheritedFactory(Child)))(__ngFactoryType__ || Child);")
	})

	t.Run("should emit an invalid factory for unresolvable deps", func(t *testing.T) {
		linked := linkDeclaration(t, "Svc.ɵfac", declare("ɵɵngDeclareFactory",
			`type: Svc, deps: "invalid", target: i0.ɵɵFactoryTarget.Injectable`), linkOptions{})
		assert.Equal(t, "function Svc_Factory(__ngFactoryType__) {\ni0.ɵɵinvalidFactory();\n}", linked)
	})

	t.Run("should reject an unknown target", func(t *testing.T) {
		_, diagnostics := linkSource(t, header+"Svc.ɵfac = "+declare("ɵɵngDeclareFactory",
			`type: Svc, deps: [], target: i0.ɵɵFactoryTarget.Service`)+";\n", linkOptions{})
		require.Len(t, diagnostics, 1)
		assert.Equal(t, "Unsupported enum value for FactoryTarget", diagnostics[0].Message)
	})
}

func TestInjectableLinker(t *testing.T) {
	t.Run("should use the type's own factory", func(t *testing.T) {
		linked := linkDeclaration(t, "Svc.ɵprov", declare("ɵɵngDeclareInjectable", `type: Svc, providedIn: "root"`), linkOptions{})
		assert.Equal(t, `/*@__PURE__*/ i0.ɵɵdefineInjectable({ token: Svc, factory: Svc.ɵfac, providedIn: "root" })`, linked)
	})

	t.Run("should omit providedIn when it is absent", func(t *testing.T) {
		linked := linkDeclaration(t, "Svc.ɵprov", declare("ɵɵngDeclareInjectable", `type: Svc`), linkOptions{})
		assert.Equal(t, `/*@__PURE__*/ i0.ɵɵdefineInjectable({ token: Svc, factory: Svc.ɵfac })`, linked)
	})

	t.Run("should delegate to the factory of useClass", func(t *testing.T) {
		linked := linkDeclaration(t, "Svc.ɵprov", declare("ɵɵngDeclareInjectable", `type: Svc, useClass: Impl`), linkOptions{})
		assert.Contains(t, linked, "factory: (__ngFactoryType__) => Impl.ɵfac(__ngFactoryType__)")
	})

	t.Run("should unwrap forward references", func(t *testing.T) {
		linked := linkDeclaration(t, "Svc.ɵprov", declare("ɵɵngDeclareInjectable",
			`type: Svc, useClass: i0.forwardRef(function () { return Impl; })`), linkOptions{})
		assert.Contains(t, linked, "factory: (__ngFactoryType__) => Impl.ɵfac(__ngFactoryType__)")
	})

	t.Run("should call useFactory", func(t *testing.T) {
		linked := linkDeclaration(t, "Svc.ɵprov", declare("ɵɵngDeclareInjectable", `type: Svc, useFactory: makeSvc`), linkOptions{})
		assert.Contains(t, linked, "factory: () => makeSvc()")

		linked = linkDeclaration(t, "Svc.ɵprov", declare("ɵɵngDeclareInjectable",
			`type: Svc, useFactory: makeSvc, deps: [{ token: Dep }]`), linkOptions{})
		assert.Contains(t, linked, "__ngConditionalFactory__ = makeSvc(i0.ɵɵinject(Dep));")
		assert.Contains(t, linked, "let __ngConditionalFactory__ = null;")
	})

	t.Run("should inject the existing token", func(t *testing.T) {
		linked := linkDeclaration(t, "Svc.ɵprov", declare("ɵɵngDeclareInjectable", `type: Svc, useExisting: Other`), linkOptions{})
		assert.Contains(t, linked, "__ngConditionalFactory__ = i0.ɵɵinject(Other);")
	})
}

func TestInjectorLinker(t *testing.T) {
	t.Run("should keep providers and imports", func(t *testing.T) {
		linked := linkDeclaration(t, "Mod.ɵinj", declare("ɵɵngDeclareInjector", `type: Mod, providers: [Svc], imports: [Other]`), linkOptions{})
		assert.Equal(t, `/*@__PURE__*/ i0.ɵɵdefineInjector({ providers: [Svc], imports: [Other] })`, linked)
	})

	t.Run("should emit an empty definition", func(t *testing.T) {
		linked := linkDeclaration(t, "Mod.ɵinj", declare("ɵɵngDeclareInjector", `type: Mod`), linkOptions{})
		assert.Equal(t, `/*@__PURE__*/ i0.ɵɵdefineInjector({})`, linked)
	})
}

func TestNgModuleLinker(t *testing.T) {
	const module = `type: Mod, bootstrap: [App], declarations: [App, Dir], imports: [Common], exports: [Dir]`

	t.Run("should omit the selector scope by default", func(t *testing.T) {
		linked := linkDeclaration(t, "Mod.ɵmod", declare("ɵɵngDeclareNgModule", module), linkOptions{})
		assert.Equal(t, `/*@__PURE__*/ i0.ɵɵdefineNgModule({ type: Mod, bootstrap: [App] })`, linked)
	})

	t.Run("should inline the selector scope in JIT mode", func(t *testing.T) {
		linked := linkDeclaration(t, "Mod.ɵmod", declare("ɵɵngDeclareNgModule", module), linkOptions{jit: true})
		assert.Equal(t,
			`/*@__PURE__*/ i0.ɵɵdefineNgModule({ type: Mod, bootstrap: [App], declarations: [App, Dir], imports: [Common], exports: [Dir] })`,
			linked)
	})

	t.Run("should wrap lists that contain forward declarations", func(t *testing.T) {
		linked := linkDeclaration(t, "Mod.ɵmod", declare("ɵɵngDeclareNgModule", `type: Mod, declarations: function () { return [Later]; }`), linkOptions{jit: true})
		assert.Contains(t, linked, "declarations: () => [Later]")
	})

	t.Run("should register modules with an id", func(t *testing.T) {
		linked := linkDeclaration(t, "Mod.ɵmod", declare("ɵɵngDeclareNgModule", `type: Mod, id: "mod"`), linkOptions{})
		assert.Equal(t,
			"(function () {\ni0.ɵɵregisterNgModuleType(Mod, \"mod\");\nreturn /*@__PURE__*/ i0.ɵɵdefineNgModule({ type: Mod, id: \"mod\" });\n})()",
			linked)
	})
}

func TestClassMetadataLinker(t *testing.T) {
	t.Run("should set the class metadata behind the dev mode guard", func(t *testing.T) {
		source := header + declare("ɵɵngDeclareClassMetadata",
			`type: Svc, decorators: [{ type: Injectable }], ctorParameters: () => [{ type: Dep }]`) + ";\n"
		code, diagnostics := linkSource(t, source, linkOptions{})
		require.Empty(t, diagnostics)
		assert.Contains(t, code,
			"(() => {\n(typeof ngDevMode === \"undefined\" || ngDevMode) && i0.ɵsetClassMetadata(Svc, [{ type: Injectable }], () => [{ type: Dep }], null);\n})()")
	})

	t.Run("should require decorators", func(t *testing.T) {
		_, diagnostics := linkSource(t, header+declare("ɵɵngDeclareClassMetadata", `type: Svc`)+";\n", linkOptions{})
		require.Len(t, diagnostics, 1)
		assert.Equal(t, "Expected property 'decorators' to be present.", diagnostics[0].Message)
	})
}

func TestPipeLinker(t *testing.T) {
	t.Run("should honour pure and isStandalone", func(t *testing.T) {
		linked := linkDeclaration(t, "P.ɵpipe", declare("ɵɵngDeclarePipe", `type: P, name: "p", pure: false, isStandalone: true`), linkOptions{})
		assert.Equal(t, `/*@__PURE__*/ i0.ɵɵdefinePipe({ name: "p", type: P, pure: false })`, linked)
	})
}

func TestDirectiveLinker(t *testing.T) {
	t.Run("should compile the directive fields", func(t *testing.T) {
		linked := linkDeclaration(t, "Dir.ɵdir", declare("ɵɵngDeclareDirective",
			`type: Dir, selector: "[dir]", inputs: { value: "value", aliased: ["alias", "aliased"] }, outputs: { changed: "changed" }, exportAs: ["dir"], usesOnChanges: true, isStandalone: false`),
			linkOptions{})
		assert.True(t, strings.HasPrefix(linked, `/*@__PURE__*/ i0.ɵɵdefineDirective({ type: Dir, selectors: [["", "dir", ""]], `), linked)
		assert.Contains(t, linked, `inputs: { value: "value", aliased: [0, "alias", "aliased"] }`)
		assert.Contains(t, linked, `outputs: { changed: "changed" }`)
		assert.Contains(t, linked, `exportAs: ["dir"]`)
		assert.Contains(t, linked, `standalone: false`)
		assert.Contains(t, linked, `features: [i0.ɵɵNgOnChangesFeature]`)
	})

	t.Run("should collect static host attributes", func(t *testing.T) {
		linked := linkDeclaration(t, "Dir.ɵdir", declare("ɵɵngDeclareDirective",
			`type: Dir, host: { attributes: { role: "button" }, classAttribute: "a b", styleAttribute: "color: red" }`), linkOptions{})
		assert.Contains(t, linked, `hostAttrs: ["role", "button", 1, "a", "b", 2, "color", "red"]`)
		assert.NotContains(t, linked, "hostBindings")
	})

	t.Run("should delegate dynamic host bindings", func(t *testing.T) {
		compiler := &recordingCompiler{}
		linked := linkDeclaration(t, "Dir.ɵdir", declare("ɵɵngDeclareDirective",
			`type: Dir, selector: "[dir]", host: { properties: { "class.active": "active" }, listeners: { click: "onClick($event)" } }`),
			linkOptions{compiler: compiler})

		require.Len(t, compiler.hosts, 1)
		request := compiler.hosts[0]
		assert.Equal(t, "Dir", request.DirectiveName)
		assert.Equal(t, "[dir]", request.Selector)
		assert.Equal(t, []environment.HostBinding{{Key: "class.active", Value: "active"}}, request.Properties)
		assert.Equal(t, []environment.HostBinding{{Key: "click", Value: "onClick($event)"}}, request.Listeners)
		assert.Contains(t, linked, "hostVars: 3, hostBindings: function (rf, ctx) {}")
	})

	t.Run("should fail dynamic host bindings without a template compiler", func(t *testing.T) {
		_, diagnostics := linkSource(t, header+declare("ɵɵngDeclareDirective",
			`type: Dir, host: { properties: { title: "title" } }`)+";\n", linkOptions{})
		require.Len(t, diagnostics, 1)
		assert.Equal(t, "Cannot compile the host bindings of Dir: no template compiler is configured", diagnostics[0].Message)
	})

	t.Run("should reject malformed inputs", func(t *testing.T) {
		_, diagnostics := linkSource(t, header+declare("ɵɵngDeclareDirective", `type: Dir, inputs: { a: ["a"] }`)+";\n", linkOptions{})
		require.Len(t, diagnostics, 1)
		assert.Contains(t, diagnostics[0].Message, "Unsupported input")
	})
}

func TestComponentLinker(t *testing.T) {
	component := func(fields string) string {
		return declare("ɵɵngDeclareComponent", `type: Cmp, selector: "cmp", template: "<b>{{ x }}</b>", `+fields)
	}

	t.Run("should pass styles and encapsulation to the template compiler", func(t *testing.T) {
		compiler := &recordingCompiler{}
		linked := linkDeclaration(t, "Cmp.ɵcmp", component(`styles: [".a { color: red; }"], changeDetection: i0.ChangeDetectionStrategy.OnPush`),
			linkOptions{compiler: compiler})

		require.Len(t, compiler.templates, 1)
		request := compiler.templates[0]
		assert.Equal(t, []string{".a { color: red; }"}, request.Styles)
		assert.True(t, request.Encapsulated)
		assert.False(t, request.IsInline)
		assert.Equal(t, environment.DefaultInterpolationConfig, request.Interpolation)
		assert.Contains(t, linked, "decls: 2, vars: 1, template: function (rf, ctx) {}")
		assert.Contains(t, linked, `styles: [".a { color: red; }"]`)
		assert.NotContains(t, linked, "encapsulation")
		assert.Contains(t, linked, "changeDetection: 0")
	})

	t.Run("should use the styles returned by the template compiler", func(t *testing.T) {
		compiler := &recordingCompiler{styles: []string{".a[_ngcontent-%COMP%] { color: red; }"}}
		linked := linkDeclaration(t, "Cmp.ɵcmp", component(`styles: [".a { color: red; }"]`), linkOptions{compiler: compiler})
		assert.Contains(t, linked, `styles: [".a[_ngcontent-%COMP%] { color: red; }"]`)
	})

	t.Run("should drop emulated encapsulation without styles", func(t *testing.T) {
		linked := linkDeclaration(t, "Cmp.ɵcmp", component(`encapsulation: i0.ViewEncapsulation.Emulated`), linkOptions{compiler: &recordingCompiler{}})
		assert.Contains(t, linked, "encapsulation: 2")
	})

	t.Run("should keep shadow dom encapsulation", func(t *testing.T) {
		compiler := &recordingCompiler{}
		linked := linkDeclaration(t, "Cmp.ɵcmp", component(`styles: [":host {}"], encapsulation: i0.ViewEncapsulation.ShadowDom`), linkOptions{compiler: compiler})
		assert.Contains(t, linked, "encapsulation: 3")
		assert.False(t, compiler.templates[0].Encapsulated)
	})

	t.Run("should list template dependencies", func(t *testing.T) {
		linked := linkDeclaration(t, "Cmp.ɵcmp", component(
			`dependencies: [{ kind: "directive", type: Dir, selector: "[dir]" }, { kind: "pipe", type: P, name: "p" }, { kind: "ngmodule", type: Common }]`),
			linkOptions{compiler: &recordingCompiler{}})
		assert.Contains(t, linked, "dependencies: [Dir, P, Common]")
	})

	t.Run("should wrap forward referenced dependencies in a closure", func(t *testing.T) {
		linked := linkDeclaration(t, "Cmp.ɵcmp", component(
			`dependencies: [{ kind: "component", type: i0.forwardRef(() => Child), selector: "child" }]`),
			linkOptions{compiler: &recordingCompiler{}})
		assert.Contains(t, linked, "dependencies: () => [Child]")
	})

	t.Run("should read a custom interpolation", func(t *testing.T) {
		compiler := &recordingCompiler{}
		linkDeclaration(t, "Cmp.ɵcmp", component(`interpolation: ["[[", "]]"]`), linkOptions{compiler: compiler})
		assert.Equal(t, environment.InterpolationConfig{Start: "[[", End: "]]"}, compiler.templates[0].Interpolation)
	})

	t.Run("should reject an unknown encapsulation", func(t *testing.T) {
		_, diagnostics := linkSource(t, header+component(`encapsulation: i0.ViewEncapsulation.Native`)+";\n", linkOptions{compiler: &recordingCompiler{}})
		require.Len(t, diagnostics, 1)
		assert.Equal(t, "Unsupported encapsulation", diagnostics[0].Message)
	})
}
