package translator

// UnaryOperator is a unary operator of the target language
type UnaryOperator string

const (
	UnaryOperatorPlus  UnaryOperator = "+"
	UnaryOperatorMinus UnaryOperator = "-"
	UnaryOperatorNot   UnaryOperator = "!"
)

// BinaryOperator is a binary operator of the target language
type BinaryOperator string

// VariableDeclarationType is the keyword used to declare a variable
type VariableDeclarationType string

const (
	VariableDeclarationConst VariableDeclarationType = "const"
	VariableDeclarationLet   VariableDeclarationType = "let"
	VariableDeclarationVar   VariableDeclarationType = "var"
)

// ObjectLiteralProperty is a single property of an object literal under construction
type ObjectLiteralProperty[E any] struct {
	PropertyName string
	Value        E
	// Quoted properties are emitted as string literal keys.
	Quoted bool
}

// AstFactory builds nodes of a concrete AST, where S is the statement type and
// E the expression type.
type AstFactory[S, E any] interface {
	CreateArrayLiteral(elements []E) E
	CreateAssignment(target, value E) E
	CreateBinaryExpression(leftOperand E, operator BinaryOperator, rightOperand E) E
	CreateBlock(body []S) S
	// CreateCallExpression builds a call; pure calls are annotated as side-effect free.
	CreateCallExpression(callee E, args []E, pure bool) E
	CreateConditional(condition, whenTrue, whenFalse E) E
	CreateElementAccess(expression, element E) E
	CreateExpressionStatement(expression E) S
	CreateFunctionDeclaration(functionName string, parameters []string, body S) S
	CreateFunctionExpression(functionName *string, parameters []string, body S) E
	CreateArrowFunctionExpression(parameters []string, body E) E
	CreateArrowFunctionBlock(parameters []string, body S) E
	CreateIdentifier(name string) E
	CreateIfStatement(condition E, thenStatement S, elseStatement *S) S
	// CreateLiteral accepts string, bool, int, float64 or nil.
	CreateLiteral(value interface{}) E
	CreateNewExpression(expression E, args []E) E
	CreateObjectLiteral(properties []ObjectLiteralProperty[E]) E
	CreateParenthesizedExpression(expression E) E
	CreatePropertyAccess(expression E, propertyName string) E
	CreateReturnStatement(expression *E) S
	CreateTypeOfExpression(expression E) E
	CreateUnaryExpression(operator UnaryOperator, operand E) E
	CreateVariableDeclaration(variableName string, initializer *E, kind VariableDeclarationType) S
}

// ImportRequest asks for a reference to an exported symbol.
type ImportRequest struct {
	ExportModuleSpecifier string
	// ExportSymbolName is nil for a namespace import.
	ExportSymbolName *string
}

// ImportGenerator resolves external references into expressions.
type ImportGenerator[E any] interface {
	AddImport(request ImportRequest) (E, error)
}
