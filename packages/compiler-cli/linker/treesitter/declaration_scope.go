package treesitter

import (
	sitter "github.com/smacker/go-tree-sitter"

	"ngc-linker/packages/compiler-cli/linker/file_linker"
)

// ScopeID identifies a constant scope of one File: the program of an ES
// module or the block body of a function.
type ScopeID int

type scopeKey struct {
	start, end uint32
	nodeType   string
}

type scopeArena struct {
	ids   map[scopeKey]ScopeID
	nodes []*sitter.Node
}

func newScopeArena() *scopeArena {
	return &scopeArena{ids: map[scopeKey]ScopeID{}}
}

func (a *scopeArena) id(n *sitter.Node) ScopeID {
	key := scopeKey{start: n.StartByte(), end: n.EndByte(), nodeType: n.Type()}
	if id, ok := a.ids[key]; ok {
		return id
	}
	id := ScopeID(len(a.nodes))
	a.ids[key] = id
	a.nodes = append(a.nodes, n)
	return id
}

// ScopeNode returns the program or statement block of a scope.
func (f *File) ScopeNode(id ScopeID) *SyntaxNode {
	return f.wrap(f.scopes.nodes[id])
}

// DeclarationScope resolves the constant scope of declarations from the
// position of one partial declaration call.
type DeclarationScope struct {
	file *File
	call *sitter.Node
}

var _ file_linker.DeclarationScope[ScopeID, Node] = (*DeclarationScope)(nil)

// NewDeclarationScope creates the scope of the declaration call.
func NewDeclarationScope(call *SyntaxNode) *DeclarationScope {
	return &DeclarationScope{file: call.file, call: call.node}
}

// GetConstantScopeRef finds the binding of the leftmost identifier of
// ngImport. Bindings at the top of an ES module or of a function body are
// constant scopes; any other binding, or none, yields false.
func (d *DeclarationScope) GetConstantScopeRef(ngImport Node) (ScopeID, bool) {
	n, ok := syntax(ngImport)
	if !ok {
		return 0, false
	}
	target := n.node
	for {
		target = unparen(target)
		if target.Type() != "member_expression" {
			break
		}
		target = target.ChildByFieldName("object")
	}
	if target.Type() != "identifier" {
		return 0, false
	}
	name := d.file.text(target)

	for scope := d.call.Parent(); scope != nil; scope = scope.Parent() {
		switch {
		case scope.Type() == "program":
			if !d.declaresOrHoists(scope, name) || !isModule(scope) {
				return 0, false
			}
			return d.file.scopes.id(scope), true
		case isFunctionType(scope.Type()) || scope.Type() == "method_definition":
			body := scope.ChildByFieldName("body")
			if !d.bindsParameter(scope, name) && !(body.Type() == "statement_block" && d.declaresOrHoists(body, name)) {
				continue
			}
			if body.Type() != "statement_block" {
				return 0, false
			}
			return d.file.scopes.id(body), true
		case scope.Type() == "statement_block" && !isFunctionType(scope.Parent().Type()) && scope.Parent().Type() != "method_definition":
			if d.declaresLexically(scope, name) {
				return 0, false
			}
		case scope.Type() == "catch_clause":
			if param := scope.ChildByFieldName("parameter"); param != nil && bindsName(d.file, param, name) {
				return 0, false
			}
		case scope.Type() == "for_statement" || scope.Type() == "for_in_statement":
			if d.declaresLexically(scope, name) {
				return 0, false
			}
		}
	}
	return 0, false
}

func isModule(program *sitter.Node) bool {
	for _, statement := range namedChildren(program) {
		switch statement.Type() {
		case "import_statement", "export_statement":
			return true
		}
	}
	return false
}

func (d *DeclarationScope) bindsParameter(fn *sitter.Node, name string) bool {
	if single := fn.ChildByFieldName("parameter"); single != nil {
		return bindsName(d.file, single, name)
	}
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return false
	}
	for _, param := range namedChildren(params) {
		if bindsName(d.file, param, name) {
			return true
		}
	}
	return false
}

// declares reports whether a direct child statement of scope declares name.
func (d *DeclarationScope) declares(scope *sitter.Node, name string) bool {
	for _, statement := range namedChildren(scope) {
		if declarationBinds(d.file, statement, name) {
			return true
		}
	}
	return false
}

// declaresLexically is declares without `var` statements, which bind in the
// enclosing function instead.
func (d *DeclarationScope) declaresLexically(scope *sitter.Node, name string) bool {
	for _, statement := range namedChildren(scope) {
		if statement.Type() != "variable_declaration" && declarationBinds(d.file, statement, name) {
			return true
		}
	}
	return false
}

// declaresOrHoists reports whether scope declares name directly or through a
// `var` nested in one of its blocks.
func (d *DeclarationScope) declaresOrHoists(scope *sitter.Node, name string) bool {
	return d.declares(scope, name) || d.hoistsVar(scope, name)
}

func (d *DeclarationScope) hoistsVar(n *sitter.Node, name string) bool {
	for _, child := range namedChildren(n) {
		switch child.Type() {
		case "variable_declaration":
			if declarationBinds(d.file, child, name) {
				return true
			}
			continue
		case "method_definition", "class_static_block", "generator_function", "generator_function_declaration":
			continue
		}
		if isFunctionType(child.Type()) {
			continue
		}
		if d.hoistsVar(child, name) {
			return true
		}
	}
	return false
}

func declarationBinds(f *File, statement *sitter.Node, name string) bool {
	switch statement.Type() {
	case "lexical_declaration", "variable_declaration":
		for _, declarator := range namedChildren(statement) {
			if declarator.Type() != "variable_declarator" {
				continue
			}
			if bindsName(f, declarator.ChildByFieldName("name"), name) {
				return true
			}
		}
	case "function_declaration", "generator_function_declaration", "class_declaration":
		if id := statement.ChildByFieldName("name"); id != nil {
			return f.text(id) == name
		}
	case "export_statement":
		if declaration := statement.ChildByFieldName("declaration"); declaration != nil {
			return declarationBinds(f, declaration, name)
		}
	case "import_statement":
		for _, child := range namedChildren(statement) {
			if child.Type() == "import_clause" && importClauseBinds(f, child, name) {
				return true
			}
		}
	}
	return false
}

func importClauseBinds(f *File, clause *sitter.Node, name string) bool {
	for _, child := range namedChildren(clause) {
		switch child.Type() {
		case "identifier":
			if f.text(child) == name {
				return true
			}
		case "namespace_import":
			for _, id := range namedChildren(child) {
				if id.Type() == "identifier" && f.text(id) == name {
					return true
				}
			}
		case "named_imports":
			for _, specifier := range namedChildren(child) {
				if specifier.Type() != "import_specifier" {
					continue
				}
				local := specifier.ChildByFieldName("alias")
				if local == nil {
					local = specifier.ChildByFieldName("name")
				}
				if local != nil && f.text(local) == name {
					return true
				}
			}
		}
	}
	return false
}

// bindsName reports whether a binding pattern introduces name.
func bindsName(f *File, pattern *sitter.Node, name string) bool {
	if pattern == nil {
		return false
	}
	switch pattern.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		return f.text(pattern) == name
	case "assignment_pattern":
		return bindsName(f, pattern.ChildByFieldName("left"), name)
	case "pair_pattern":
		return bindsName(f, pattern.ChildByFieldName("value"), name)
	case "required_parameter", "optional_parameter":
		return bindsName(f, pattern.ChildByFieldName("pattern"), name)
	case "object_pattern", "array_pattern", "rest_pattern", "object_assignment_pattern":
		for _, child := range namedChildren(pattern) {
			if bindsName(f, child, name) {
				return true
			}
		}
	}
	return false
}
