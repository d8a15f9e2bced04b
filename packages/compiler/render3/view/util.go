package view

import (
	"regexp"

	"ngc-linker/packages/compiler/core"
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/render3/r3_identifiers"
)

// UNSAFE_OBJECT_KEY_NAME_REGEXP checks whether an object key contains potentially unsafe chars
var UNSAFE_OBJECT_KEY_NAME_REGEXP = regexp.MustCompile(`[-.]`)

// TEMPORARY_NAME is the name of the temporary to use during data binding
const TEMPORARY_NAME = "_t"

// CONTEXT_NAME is the name of the context parameter passed into a template function
const CONTEXT_NAME = "ctx"

// RENDER_FLAGS is the name of the RenderFlag passed into a template function
const RENDER_FLAGS = "rf"

// TemporaryAllocatorFunc is a function that allocates a temporary variable
type TemporaryAllocatorFunc func() *output.ReadVarExpr

// TemporaryAllocator creates an allocator for a temporary variable.
// A variable declaration is added to the statements the first time the allocator is invoked.
func TemporaryAllocator(pushStatement func(output.OutputStatement), name string) TemporaryAllocatorFunc {
	var temp *output.ReadVarExpr
	return func() *output.ReadVarExpr {
		if temp == nil {
			pushStatement(output.NewDeclareVarStmt(name, nil, output.StmtModifierNone))
			temp = output.NewReadVarExpr(name)
		}
		return temp
	}
}

// AsLiteral converts a Go value to a literal expression. Slices become array literals.
func AsLiteral(value interface{}) output.OutputExpression {
	switch v := value.(type) {
	case []string:
		literals := make([]output.OutputExpression, len(v))
		for i, s := range v {
			literals[i] = output.NewLiteralExpr(s)
		}
		return output.NewLiteralArrayExpr(literals)
	case []interface{}:
		literals := make([]output.OutputExpression, len(v))
		for i, item := range v {
			literals[i] = AsLiteral(item)
		}
		return output.NewLiteralArrayExpr(literals)
	case core.R3CssSelector:
		return AsLiteral([]interface{}(v))
	case core.SelectorFlags:
		return output.NewLiteralExpr(int(v))
	}
	return output.NewLiteralExpr(value)
}

// DirectiveBinding describes one input or output of a directive.
type DirectiveBinding struct {
	// Key is the minified (emitted) name of the property.
	Key                 string
	ClassPropertyName   string
	BindingPropertyName string
	TransformFunction   output.OutputExpression
	IsSignal            bool
}

// ConditionallyCreateDirectiveBindingLiteral serializes inputs and outputs for defineDirective and
// defineComponent. Returns nil when there are no bindings.
func ConditionallyCreateDirectiveBindingLiteral(bindings []DirectiveBinding, forInputs bool) output.OutputExpression {
	if len(bindings) == 0 {
		return nil
	}

	entries := make([]*output.LiteralMapEntry, 0, len(bindings))
	for _, binding := range bindings {
		declaredName := binding.ClassPropertyName
		publicName := binding.BindingPropertyName
		differentDeclaringName := publicName != declaredName
		hasDecoratorInputTransform := binding.TransformFunction != nil

		flags := core.InputFlagsNone
		if binding.IsSignal {
			flags |= core.InputFlagsSignalBased
		}
		if hasDecoratorInputTransform {
			flags |= core.InputFlagsHasDecoratorInputTransform
		}

		var expressionValue output.OutputExpression
		// Inputs track their declared name (for `ngOnChanges`), transform functions and flags.
		if forInputs && (differentDeclaringName || hasDecoratorInputTransform || flags != core.InputFlagsNone) {
			result := []output.OutputExpression{
				output.NewLiteralExpr(int(flags)),
				AsLiteral(publicName),
			}
			if differentDeclaringName || hasDecoratorInputTransform {
				result = append(result, AsLiteral(declaredName))
				if hasDecoratorInputTransform {
					result = append(result, binding.TransformFunction)
				}
			}
			expressionValue = output.NewLiteralArrayExpr(result)
		} else {
			expressionValue = AsLiteral(publicName)
		}

		quoted := UNSAFE_OBJECT_KEY_NAME_REGEXP.MatchString(binding.Key)
		entries = append(entries, output.NewLiteralMapEntry(binding.Key, expressionValue, quoted))
	}

	return output.NewLiteralMapExpr(entries)
}

// DefinitionMapEntry represents an entry in a DefinitionMap
type DefinitionMapEntry struct {
	Key    string
	Quoted bool
	Value  output.OutputExpression
}

// DefinitionMap is an ordered object literal under construction.
type DefinitionMap struct {
	Values []DefinitionMapEntry
}

// NewDefinitionMap creates a new DefinitionMap
func NewDefinitionMap() *DefinitionMap {
	return &DefinitionMap{Values: []DefinitionMapEntry{}}
}

// Set sets a key-value pair in the map. If the key already exists, it updates the value.
// If value is nil, the key is not added.
func (dm *DefinitionMap) Set(key string, value output.OutputExpression) {
	if value == nil {
		return
	}
	for i := range dm.Values {
		if dm.Values[i].Key == key {
			dm.Values[i].Value = value
			return
		}
	}
	dm.Values = append(dm.Values, DefinitionMapEntry{Key: key, Value: value})
}

// ToLiteralMap converts the DefinitionMap to a LiteralMapExpr
func (dm *DefinitionMap) ToLiteralMap() *output.LiteralMapExpr {
	entries := make([]*output.LiteralMapEntry, len(dm.Values))
	for i, entry := range dm.Values {
		entries[i] = output.NewLiteralMapEntry(entry.Key, entry.Value, entry.Quoted)
	}
	return output.NewLiteralMapExpr(entries)
}

// ForwardRefHandling says whether an expression was wrapped in `forwardRef()`.
type ForwardRefHandling int

const (
	// ForwardRefHandlingNone means the expression was never wrapped
	ForwardRefHandlingNone ForwardRefHandling = iota
	// ForwardRefHandlingWrapped means the expression must be wrapped again when emitted
	ForwardRefHandlingWrapped
	// ForwardRefHandlingUnwrapped means the wrapper was stripped and must stay stripped
	ForwardRefHandlingUnwrapped
)

// MaybeForwardRefExpression is an expression that may have been declared through `forwardRef()`.
type MaybeForwardRefExpression struct {
	Expression output.OutputExpression
	ForwardRef ForwardRefHandling
}

// ConvertFromMaybeForwardRefExpression re-applies `forwardRef()` to expressions
// whose wrapper was stripped.
func ConvertFromMaybeForwardRefExpression(ref MaybeForwardRefExpression) output.OutputExpression {
	switch ref.ForwardRef {
	case ForwardRefHandlingUnwrapped:
		return GenerateForwardRef(ref.Expression)
	default:
		return ref.Expression
	}
}

// GenerateForwardRef produces `forwardRef(() => expr)`.
func GenerateForwardRef(expr output.OutputExpression) output.OutputExpression {
	return output.ImportExpr(r3_identifiers.ForwardRef).Callable(output.NewArrowFunctionExpr(nil, expr))
}

// RefsToArray builds an array literal of references, wrapped in a closure when any of them
// is a forward declaration.
func RefsToArray(refs []output.OutputExpression, shouldForwardDeclare bool) output.OutputExpression {
	values := output.LiteralArr(refs)
	if shouldForwardDeclare {
		return output.NewArrowFunctionExpr(nil, values)
	}
	return values
}
