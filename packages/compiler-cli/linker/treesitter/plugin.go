package treesitter

import (
	"context"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/spf13/afero"

	"ngc-linker/packages/compiler-cli/linker"
	"ngc-linker/packages/compiler-cli/linker/environment"
	"ngc-linker/packages/compiler-cli/linker/file_linker"
	"ngc-linker/packages/compiler-cli/logging"
)

// Environment is the linker environment over tree-sitter nodes.
type Environment = environment.LinkerEnvironment[Node, Node]

// NewEnvironment creates an environment using the tree-sitter host and the
// JavaScript printing factory.
func NewEnvironment(fs afero.Fs, logger logging.Logger, options environment.LinkerPartialOptions, opts ...environment.Option) (*Environment, error) {
	return environment.Create[Node, Node](fs, logger, Host{}, Factory{}, options, opts...)
}

// Diagnostic is a failure to link one declaration. Line and Column are
// 1-based.
type Diagnostic struct {
	File    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (d Diagnostic) Error() string {
	return d.Message
}

// Result is the outcome of linking one file.
type Result struct {
	Code        string
	Linked      int
	Diagnostics []Diagnostic
}

// Changed reports whether any declaration was linked.
func (r *Result) Changed() bool {
	return r.Linked > 0
}

type edit struct {
	start, end uint32
	text       string
}

// LinkFile links every partial declaration of source. Declarations that fail
// are left in place and reported as diagnostics; the error return is reserved
// for failures that affect the whole file.
func LinkFile(ctx context.Context, env *Environment, path string, source []byte, dialect Dialect) (*Result, error) {
	file, err := Parse(ctx, path, source, dialect)
	if err != nil {
		return nil, err
	}
	fileLinker, err := file_linker.NewFileLinker[ScopeID](env, path, string(source))
	if err != nil {
		return nil, err
	}

	result := &Result{}
	var edits []edit
	var walk func(n *sitter.Node) error
	walk = func(n *sitter.Node) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if n.Type() == "call_expression" {
			if name, ok := calleeName(file, n); ok && fileLinker.IsPartialDeclaration(name) {
				replacement, err := linkCall(file, fileLinker, name, n)
				if err != nil {
					result.Diagnostics = append(result.Diagnostics, diagnose(file, n, err))
					env.Logger.Debug("failed to link declaration", "file", path, "function", name, "error", err)
				} else {
					edits = append(edits, edit{start: n.StartByte(), end: n.EndByte(), text: replacement})
					result.Linked++
					return nil
				}
			}
		}
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			if err := walk(n.NamedChild(i)); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(file.tree.RootNode()); err != nil {
		return nil, err
	}

	constants, err := fileLinker.GetConstantStatements()
	if err != nil {
		return nil, err
	}
	for _, constant := range constants {
		if len(constant.Statements) == 0 {
			continue
		}
		edits = append(edits, constantsEdit(file, constant.ConstantScope, constant.Statements))
	}

	result.Code = applyEdits(source, edits)
	return result, nil
}

// calleeName returns the name of the called function of call, either a plain
// identifier or the property of a member access such as `i0.ɵɵngDeclarePipe`.
func calleeName(f *File, call *sitter.Node) (string, bool) {
	callee := call.ChildByFieldName("function")
	if callee == nil {
		return "", false
	}
	callee = unparen(callee)
	switch callee.Type() {
	case "identifier":
		return f.text(callee), true
	case "member_expression":
		if property := callee.ChildByFieldName("property"); property != nil {
			return f.text(property), true
		}
	}
	return "", false
}

func linkCall(f *File, fileLinker *file_linker.FileLinker[ScopeID, Node, Node], name string, call *sitter.Node) (string, error) {
	callNode := f.wrap(call)
	args, err := Host{}.ParseArguments(callNode)
	if err != nil {
		return "", err
	}
	replacement, err := fileLinker.LinkPartialDeclaration(name, args, NewDeclarationScope(callNode))
	if err != nil {
		return "", err
	}
	return code(replacement).text, nil
}

func diagnose(f *File, call *sitter.Node, err error) Diagnostic {
	position := call.StartPoint()
	if node, ok := linker.ErrorNode(err).(*SyntaxNode); ok && node != nil {
		position = node.node.StartPoint()
	}
	return Diagnostic{
		File:    f.Path,
		Line:    int(position.Row) + 1,
		Column:  int(position.Column) + 1,
		Message: err.Error(),
		Err:     err,
	}
}

// constantsEdit inserts statements after the imports of a module, or at the
// start of a function body.
func constantsEdit(f *File, scope ScopeID, statements []Node) edit {
	node := f.scopes.nodes[scope]
	parts := make([]string, len(statements))
	for i, statement := range statements {
		parts[i] = code(statement).text
	}
	text := strings.Join(parts, "\n")

	if node.Type() == "program" {
		var offset uint32
		for _, statement := range namedChildren(node) {
			if statement.Type() == "import_statement" {
				offset = statement.EndByte()
			}
		}
		if offset == 0 {
			return edit{start: 0, end: 0, text: text + "\n"}
		}
		return edit{start: offset, end: offset, text: "\n" + text}
	}
	// Insert after the opening brace of the block.
	offset := node.StartByte() + 1
	return edit{start: offset, end: offset, text: "\n" + text}
}

// applyEdits splices edits into source. Edits never overlap. At one offset
// insertions go before the replacement starting there.
func applyEdits(source []byte, edits []edit) string {
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].start != edits[j].start {
			return edits[i].start < edits[j].start
		}
		return edits[i].end-edits[i].start < edits[j].end-edits[j].start
	})
	var out strings.Builder
	out.Grow(len(source))
	var last uint32
	for _, e := range edits {
		out.Write(source[last:e.start])
		out.WriteString(e.text)
		last = e.end
	}
	out.Write(source[last:])
	return out.String()
}
