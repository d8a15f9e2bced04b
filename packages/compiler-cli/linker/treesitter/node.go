// Package treesitter is the concrete AST backend of the linker. Source files
// are parsed with tree-sitter; linked definitions are printed as JavaScript
// text and spliced back into the source.
package treesitter

import (
	"context"

	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Dialect selects the grammar a file is parsed with.
type Dialect string

const (
	JavaScript Dialect = "js"
	TypeScript Dialect = "ts"
)

// ParseDialect maps a flag value to a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch name {
	case "js", "javascript", "":
		return JavaScript, nil
	case "ts", "typescript":
		return TypeScript, nil
	}
	return "", errors.Newf("unknown dialect %q", name)
}

func (d Dialect) language() *sitter.Language {
	if d == TypeScript {
		return typescript.GetLanguage()
	}
	return javascript.GetLanguage()
}

// Node is either a parsed *SyntaxNode or a *Code fragment built by the
// factory.
type Node interface {
	isNode()
}

// SyntaxNode is a node of a parsed File.
type SyntaxNode struct {
	file *File
	node *sitter.Node
}

func (*SyntaxNode) isNode() {}

// Type returns the tree-sitter node type, e.g. `call_expression`.
func (n *SyntaxNode) Type() string {
	return n.node.Type()
}

// Text returns the source text covered by the node.
func (n *SyntaxNode) Text() string {
	return n.file.text(n.node)
}

// File returns the file the node was parsed from.
func (n *SyntaxNode) File() *File {
	return n.file
}

// NamedChildren returns the named children of the node, without comments.
func (n *SyntaxNode) NamedChildren() []*SyntaxNode {
	children := namedChildren(n.node)
	wrapped := make([]*SyntaxNode, len(children))
	for i, child := range children {
		wrapped[i] = n.file.wrap(child)
	}
	return wrapped
}

func (n *SyntaxNode) String() string {
	return n.Text()
}

// Code is printed JavaScript.
type Code struct {
	text string
	prec precedence
	// op is the operator of a binary expression.
	op string
	// function marks function expressions, which cannot start a statement
	// or be called without parentheses.
	function bool
	// object marks object literals, which cannot start a statement or an
	// arrow body.
	object bool
	number bool
}

func (*Code) isNode() {}

// Text returns the printed code.
func (c *Code) Text() string {
	return c.text
}

func (c *Code) String() string {
	return c.text
}

// File is a parsed source file.
type File struct {
	Path    string
	Dialect Dialect
	source  []byte
	tree    *sitter.Tree
	scopes  *scopeArena
}

// Parse parses source with the grammar of dialect.
func Parse(ctx context.Context, path string, source []byte, dialect Dialect) (*File, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(dialect.language())
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return &File{
		Path:    path,
		Dialect: dialect,
		source:  source,
		tree:    tree,
		scopes:  newScopeArena(),
	}, nil
}

// Root returns the program node.
func (f *File) Root() *SyntaxNode {
	return f.wrap(f.tree.RootNode())
}

// Source returns the parsed source.
func (f *File) Source() []byte {
	return f.source
}

func (f *File) wrap(n *sitter.Node) *SyntaxNode {
	return &SyntaxNode{file: f, node: n}
}

func (f *File) text(n *sitter.Node) string {
	return string(f.source[n.StartByte():n.EndByte()])
}

// namedChildren returns the named children of n, skipping comments.
func namedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	children := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		children = append(children, child)
	}
	return children
}

// sameNode compares nodes by position and type.
func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}
