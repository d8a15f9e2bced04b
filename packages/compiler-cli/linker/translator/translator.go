package translator

import (
	"github.com/cockroachdb/errors"

	"ngc-linker/packages/compiler/output"
)

var binaryOperators = map[output.BinaryOperator]BinaryOperator{
	output.BinaryOperatorAnd:             "&&",
	output.BinaryOperatorBigger:          ">",
	output.BinaryOperatorBiggerEquals:    ">=",
	output.BinaryOperatorBitwiseAnd:      "&",
	output.BinaryOperatorBitwiseOr:       "|",
	output.BinaryOperatorDivide:          "/",
	output.BinaryOperatorEquals:          "==",
	output.BinaryOperatorIdentical:       "===",
	output.BinaryOperatorLower:           "<",
	output.BinaryOperatorLowerEquals:     "<=",
	output.BinaryOperatorMinus:           "-",
	output.BinaryOperatorModulo:          "%",
	output.BinaryOperatorMultiply:        "*",
	output.BinaryOperatorNotEquals:       "!=",
	output.BinaryOperatorNotIdentical:    "!==",
	output.BinaryOperatorOr:              "||",
	output.BinaryOperatorPlus:            "+",
	output.BinaryOperatorNullishCoalesce: "??",
}

// translateError carries an error out of the visitor through a panic.
type translateError struct {
	err error
}

// Translator turns output AST into a concrete AST through an AstFactory.
type Translator[S, E any] struct {
	factory AstFactory[S, E]
}

// NewTranslator creates a Translator over factory
func NewTranslator[S, E any](factory AstFactory[S, E]) *Translator[S, E] {
	return &Translator[S, E]{factory: factory}
}

// TranslateExpression translates an output expression. External references are
// resolved through imports.
func (t *Translator[S, E]) TranslateExpression(expression output.OutputExpression, imports ImportGenerator[E]) (result E, err error) {
	defer recoverTranslateError(&err)
	v := &visitor[S, E]{factory: t.factory, imports: imports}
	return v.expr(expression), nil
}

// TranslateStatement translates an output statement.
func (t *Translator[S, E]) TranslateStatement(statement output.OutputStatement, imports ImportGenerator[E]) (result S, err error) {
	defer recoverTranslateError(&err)
	v := &visitor[S, E]{factory: t.factory, imports: imports}
	return v.stmt(statement), nil
}

// TranslateStatements translates statements in order, stopping at the first error.
func (t *Translator[S, E]) TranslateStatements(statements []output.OutputStatement, imports ImportGenerator[E]) ([]S, error) {
	result := make([]S, 0, len(statements))
	for _, statement := range statements {
		s, err := t.TranslateStatement(statement, imports)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, nil
}

func recoverTranslateError(err *error) {
	if r := recover(); r != nil {
		te, ok := r.(translateError)
		if !ok {
			panic(r)
		}
		*err = te.err
	}
}

type visitor[S, E any] struct {
	factory AstFactory[S, E]
	imports ImportGenerator[E]
}

func (v *visitor[S, E]) fail(err error) {
	panic(translateError{err: err})
}

func (v *visitor[S, E]) expr(expression output.OutputExpression) E {
	return expression.VisitExpression(v, nil).(E)
}

func (v *visitor[S, E]) exprs(expressions []output.OutputExpression) []E {
	result := make([]E, len(expressions))
	for i, e := range expressions {
		result[i] = v.expr(e)
	}
	return result
}

func (v *visitor[S, E]) stmt(statement output.OutputStatement) S {
	return statement.VisitStatement(v, nil).(S)
}

func (v *visitor[S, E]) block(statements []output.OutputStatement) S {
	body := make([]S, len(statements))
	for i, s := range statements {
		body[i] = v.stmt(s)
	}
	return v.factory.CreateBlock(body)
}

func paramNames(params []*output.FnParam) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

func (v *visitor[S, E]) VisitDeclareVarStmt(stmt *output.DeclareVarStmt, _ interface{}) interface{} {
	kind := VariableDeclarationLet
	if stmt.HasModifier(output.StmtModifierFinal) {
		kind = VariableDeclarationConst
	}
	var init *E
	if stmt.Value != nil {
		value := v.expr(stmt.Value)
		init = &value
	}
	return v.factory.CreateVariableDeclaration(stmt.Name, init, kind)
}

func (v *visitor[S, E]) VisitDeclareFunctionStmt(stmt *output.DeclareFunctionStmt, _ interface{}) interface{} {
	return v.factory.CreateFunctionDeclaration(stmt.Name, paramNames(stmt.Params), v.block(stmt.Statements))
}

func (v *visitor[S, E]) VisitExpressionStmt(stmt *output.ExpressionStatement, _ interface{}) interface{} {
	return v.factory.CreateExpressionStatement(v.expr(stmt.Expr))
}

func (v *visitor[S, E]) VisitReturnStmt(stmt *output.ReturnStatement, _ interface{}) interface{} {
	if stmt.Value == nil {
		return v.factory.CreateReturnStatement(nil)
	}
	value := v.expr(stmt.Value)
	return v.factory.CreateReturnStatement(&value)
}

func (v *visitor[S, E]) VisitIfStmt(stmt *output.IfStmt, _ interface{}) interface{} {
	var elseStatement *S
	if len(stmt.FalseCase) > 0 {
		s := v.block(stmt.FalseCase)
		elseStatement = &s
	}
	return v.factory.CreateIfStatement(v.expr(stmt.Condition), v.block(stmt.TrueCase), elseStatement)
}

func (v *visitor[S, E]) VisitReadVarExpr(ast *output.ReadVarExpr, _ interface{}) interface{} {
	return v.factory.CreateIdentifier(ast.Name)
}

func (v *visitor[S, E]) VisitInvokeFunctionExpr(ast *output.InvokeFunctionExpr, _ interface{}) interface{} {
	return v.factory.CreateCallExpression(v.expr(ast.Fn), v.exprs(ast.Args), ast.Pure)
}

func (v *visitor[S, E]) VisitInstantiateExpr(ast *output.InstantiateExpr, _ interface{}) interface{} {
	return v.factory.CreateNewExpression(v.expr(ast.ClassExpr), v.exprs(ast.Args))
}

func (v *visitor[S, E]) VisitLiteralExpr(ast *output.LiteralExpr, _ interface{}) interface{} {
	return v.factory.CreateLiteral(ast.Value)
}

func (v *visitor[S, E]) VisitExternalExpr(ast *output.ExternalExpr, _ interface{}) interface{} {
	ref := ast.Value
	if ref.ModuleName == nil {
		if ref.Name == nil {
			v.fail(errors.New("Invalid import without name nor moduleName"))
		}
		return v.factory.CreateIdentifier(*ref.Name)
	}
	imported, err := v.imports.AddImport(ImportRequest{
		ExportModuleSpecifier: *ref.ModuleName,
		ExportSymbolName:      ref.Name,
	})
	if err != nil {
		v.fail(err)
	}
	return imported
}

func (v *visitor[S, E]) VisitConditionalExpr(ast *output.ConditionalExpr, _ interface{}) interface{} {
	cond := v.expr(ast.Condition)
	// Nested conditionals in the condition position need explicit parentheses.
	if _, ok := ast.Condition.(*output.ConditionalExpr); ok {
		cond = v.factory.CreateParenthesizedExpression(cond)
	}
	return v.factory.CreateConditional(cond, v.expr(ast.TrueCase), v.expr(ast.FalseCase))
}

func (v *visitor[S, E]) VisitNotExpr(ast *output.NotExpr, _ interface{}) interface{} {
	return v.factory.CreateUnaryExpression(UnaryOperatorNot, v.expr(ast.Condition))
}

func (v *visitor[S, E]) VisitFunctionExpr(ast *output.FunctionExpr, _ interface{}) interface{} {
	return v.factory.CreateFunctionExpression(ast.Name, paramNames(ast.Params), v.block(ast.Statements))
}

func (v *visitor[S, E]) VisitArrowFunctionExpr(ast *output.ArrowFunctionExpr, _ interface{}) interface{} {
	switch body := ast.Body.(type) {
	case []output.OutputStatement:
		return v.factory.CreateArrowFunctionBlock(paramNames(ast.Params), v.block(body))
	case output.OutputExpression:
		return v.factory.CreateArrowFunctionExpression(paramNames(ast.Params), v.expr(body))
	}
	v.fail(errors.Newf("Unsupported arrow function body %T", ast.Body))
	return nil
}

func (v *visitor[S, E]) VisitUnaryOperatorExpr(ast *output.UnaryOperatorExpr, _ interface{}) interface{} {
	operator := UnaryOperatorPlus
	if ast.Operator == output.UnaryOperatorMinus {
		operator = UnaryOperatorMinus
	}
	return v.factory.CreateUnaryExpression(operator, v.expr(ast.Expr))
}

func (v *visitor[S, E]) VisitBinaryOperatorExpr(ast *output.BinaryOperatorExpr, _ interface{}) interface{} {
	if ast.IsAssignment() {
		return v.factory.CreateAssignment(v.expr(ast.Lhs), v.expr(ast.Rhs))
	}
	operator, ok := binaryOperators[ast.Operator]
	if !ok {
		v.fail(errors.Newf("Unknown binary operator: %d", ast.Operator))
	}
	return v.factory.CreateBinaryExpression(v.expr(ast.Lhs), operator, v.expr(ast.Rhs))
}

func (v *visitor[S, E]) VisitReadPropExpr(ast *output.ReadPropExpr, _ interface{}) interface{} {
	return v.factory.CreatePropertyAccess(v.expr(ast.Receiver), ast.Name)
}

func (v *visitor[S, E]) VisitReadKeyExpr(ast *output.ReadKeyExpr, _ interface{}) interface{} {
	return v.factory.CreateElementAccess(v.expr(ast.Receiver), v.expr(ast.Index))
}

func (v *visitor[S, E]) VisitLiteralArrayExpr(ast *output.LiteralArrayExpr, _ interface{}) interface{} {
	return v.factory.CreateArrayLiteral(v.exprs(ast.Entries))
}

func (v *visitor[S, E]) VisitLiteralMapExpr(ast *output.LiteralMapExpr, _ interface{}) interface{} {
	properties := make([]ObjectLiteralProperty[E], len(ast.Entries))
	for i, entry := range ast.Entries {
		properties[i] = ObjectLiteralProperty[E]{
			PropertyName: entry.Key,
			Value:        v.expr(entry.Value),
			Quoted:       entry.Quoted,
		}
	}
	return v.factory.CreateObjectLiteral(properties)
}

func (v *visitor[S, E]) VisitWrappedNodeExpr(ast *output.WrappedNodeExpr, _ interface{}) interface{} {
	node, ok := ast.Node.(E)
	if !ok {
		v.fail(errors.Newf("Wrapped node of type %T does not belong to the target AST", ast.Node))
	}
	return node
}

func (v *visitor[S, E]) VisitTypeofExpr(ast *output.TypeofExpr, _ interface{}) interface{} {
	return v.factory.CreateTypeOfExpression(v.expr(ast.Expr))
}

func (v *visitor[S, E]) VisitParenthesizedExpr(ast *output.ParenthesizedExpr, _ interface{}) interface{} {
	return v.factory.CreateParenthesizedExpression(v.expr(ast.Expr))
}

var _ output.ExpressionVisitor = (*visitor[string, string])(nil)
var _ output.StatementVisitor = (*visitor[string, string])(nil)
