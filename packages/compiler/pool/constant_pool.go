package pool

import (
	"fmt"
	"strconv"
	"strings"

	"ngc-linker/packages/compiler/output"
)

const (
	constantPrefix = "_c"
	// PoolInclusionLengthThresholdForStrings is the length at which string literals
	// stop being inlined and become candidates for sharing.
	PoolInclusionLengthThresholdForStrings = 50
)

// keyContext is passed while producing keys so that fix-ups expose the constant
// rather than the variable that now refers to it.
type keyContext struct{}

// FixupExpression stands in for a literal until the pool knows whether the
// literal is shared. Once shared, it is redirected to the hoisted constant.
type FixupExpression struct {
	original output.OutputExpression
	resolved output.OutputExpression
	shared   bool
}

// NewFixupExpression creates a fix-up initially resolving to resolved
func NewFixupExpression(resolved output.OutputExpression) *FixupExpression {
	return &FixupExpression{original: resolved, resolved: resolved}
}

func (f *FixupExpression) VisitExpression(visitor output.ExpressionVisitor, context interface{}) interface{} {
	if _, ok := context.(keyContext); ok {
		return f.original.VisitExpression(visitor, context)
	}
	return f.resolved.VisitExpression(visitor, context)
}

func (f *FixupExpression) IsConstant() bool {
	return true
}

// Resolved returns the expression the fix-up currently stands for
func (f *FixupExpression) Resolved() output.OutputExpression {
	return f.resolved
}

// Shared reports whether the literal was hoisted into a constant
func (f *FixupExpression) Shared() bool {
	return f.shared
}

// Fixup redirects the fix-up to expression and marks it shared
func (f *FixupExpression) Fixup(expression output.OutputExpression) {
	f.resolved = expression
	f.shared = true
}

// ConstantPool accumulates hoisted constant statements. Lookup is keyed by the
// content of the literal; statements are emitted in insertion order.
type ConstantPool struct {
	statements               []output.OutputStatement
	literals                 map[string]*FixupExpression
	claimedNames             map[string]int
	isClosureCompilerEnabled bool
}

// NewConstantPool creates a new ConstantPool
func NewConstantPool(isClosureCompilerEnabled bool) *ConstantPool {
	return &ConstantPool{
		statements:               []output.OutputStatement{},
		literals:                 make(map[string]*FixupExpression),
		claimedNames:             make(map[string]int),
		isClosureCompilerEnabled: isClosureCompilerEnabled,
	}
}

// GetConstLiteral returns an expression for literal. The literal is hoisted into
// a `_cN` constant the second time it is requested, or immediately when
// forceShared is set. Short primitive literals are never hoisted.
func (cp *ConstantPool) GetConstLiteral(literal output.OutputExpression, forceShared bool) output.OutputExpression {
	if (isLiteralExpr(literal) && !isLongStringLiteral(literal)) || isFixupExpression(literal) {
		return literal
	}
	key := KeyOf(literal)
	fixup, exists := cp.literals[key]
	if !exists {
		fixup = NewFixupExpression(literal)
		cp.literals[key] = fixup
	}

	if (exists && !fixup.shared) || (!exists && forceShared) {
		name := cp.freshName()
		var value, usage output.OutputExpression
		if cp.isClosureCompilerEnabled && isLongStringLiteral(literal) {
			// Closure inlines string literals at every usage but keeps small
			// function calls, so long strings are returned from a function.
			value = output.NewFunctionExpr(
				[]*output.FnParam{},
				[]output.OutputStatement{output.NewReturnStatement(literal)},
				nil,
			)
			usage = output.NewInvokeFunctionExpr(output.NewReadVarExpr(name), []output.OutputExpression{}, false)
		} else {
			value = literal
			usage = output.NewReadVarExpr(name)
		}

		cp.statements = append(cp.statements, output.NewDeclareVarStmt(name, value, output.StmtModifierFinal))
		fixup.Fixup(usage)
	}

	return fixup
}

// UniqueName produces a unique name in the context of this pool.
// The prefix should be a constant string that does not end in a digit.
func (cp *ConstantPool) UniqueName(name string, alwaysIncludeSuffix bool) string {
	count := cp.claimedNames[name]
	result := name
	if count != 0 || alwaysIncludeSuffix {
		result = fmt.Sprintf("%s%d", name, count)
	}
	cp.claimedNames[name] = count + 1
	return result
}

func (cp *ConstantPool) freshName() string {
	return cp.UniqueName(constantPrefix, true)
}

// GetStatements returns all statements in the pool, in insertion order
func (cp *ConstantPool) GetStatements() []output.OutputStatement {
	return cp.statements
}

// AddStatement appends a statement to the pool
func (cp *ConstantPool) AddStatement(stmt output.OutputStatement) {
	cp.statements = append(cp.statements, stmt)
}

// KeyOf produces the content key used to deduplicate literals.
// It panics on expressions that cannot be keyed.
func KeyOf(expr output.OutputExpression) string {
	if fixup, ok := expr.(*FixupExpression); ok {
		return KeyOf(fixup.original)
	}
	switch e := expr.(type) {
	case *output.LiteralExpr:
		switch v := e.Value.(type) {
		case string:
			return strconv.Quote(v)
		case nil:
			return "null"
		default:
			return fmt.Sprintf("%v", v)
		}
	case *output.LiteralArrayExpr:
		entries := make([]string, len(e.Entries))
		for i, entry := range e.Entries {
			entries[i] = KeyOf(entry)
		}
		return "[" + strings.Join(entries, ",") + "]"
	case *output.LiteralMapExpr:
		entries := make([]string, len(e.Entries))
		for i, entry := range e.Entries {
			key := entry.Key
			if entry.Quoted {
				key = strconv.Quote(key)
			}
			entries[i] = key + ":" + KeyOf(entry.Value)
		}
		return "{" + strings.Join(entries, ",") + "}"
	case *output.ExternalExpr:
		moduleName, name := "null", "null"
		if e.Value.ModuleName != nil {
			moduleName = strconv.Quote(*e.Value.ModuleName)
		}
		if e.Value.Name != nil {
			name = strconv.Quote(*e.Value.Name)
		}
		return fmt.Sprintf("import(%s, %s)", moduleName, name)
	case *output.ReadVarExpr:
		return fmt.Sprintf("read(%s)", e.Name)
	case *output.TypeofExpr:
		return fmt.Sprintf("typeof(%s)", KeyOf(e.Expr))
	case *output.WrappedNodeExpr:
		return fmt.Sprintf("wrapped(%p)", e.Node)
	default:
		panic(fmt.Sprintf("KeyOf does not handle expressions of type %T", expr))
	}
}

func isLongStringLiteral(expr output.OutputExpression) bool {
	if lit, ok := expr.(*output.LiteralExpr); ok {
		if str, ok := lit.Value.(string); ok {
			return len(str) >= PoolInclusionLengthThresholdForStrings
		}
	}
	return false
}

func isLiteralExpr(expr output.OutputExpression) bool {
	_, ok := expr.(*output.LiteralExpr)
	return ok
}

func isFixupExpression(expr output.OutputExpression) bool {
	_, ok := expr.(*FixupExpression)
	return ok
}
