package output

// UnaryOperator represents unary operators
type UnaryOperator int

const (
	UnaryOperatorMinus UnaryOperator = iota
	UnaryOperatorPlus
)

// BinaryOperator represents binary operators
type BinaryOperator int

const (
	BinaryOperatorEquals BinaryOperator = iota
	BinaryOperatorNotEquals
	BinaryOperatorAssign
	BinaryOperatorIdentical
	BinaryOperatorNotIdentical
	BinaryOperatorMinus
	BinaryOperatorPlus
	BinaryOperatorDivide
	BinaryOperatorMultiply
	BinaryOperatorModulo
	BinaryOperatorAnd
	BinaryOperatorOr
	BinaryOperatorBitwiseOr
	BinaryOperatorBitwiseAnd
	BinaryOperatorLower
	BinaryOperatorLowerEquals
	BinaryOperatorBigger
	BinaryOperatorBiggerEquals
	BinaryOperatorNullishCoalesce
)

// OutputExpression is the base interface for all output expressions.
// Versioned linkers build these; a translator turns them into a concrete AST.
type OutputExpression interface {
	VisitExpression(visitor ExpressionVisitor, context interface{}) interface{}
	// IsConstant reports whether the expression can be hoisted without changing behavior.
	IsConstant() bool
}

// ExpressionVisitor is the interface for visiting expressions
type ExpressionVisitor interface {
	VisitReadVarExpr(ast *ReadVarExpr, context interface{}) interface{}
	VisitInvokeFunctionExpr(ast *InvokeFunctionExpr, context interface{}) interface{}
	VisitInstantiateExpr(ast *InstantiateExpr, context interface{}) interface{}
	VisitLiteralExpr(ast *LiteralExpr, context interface{}) interface{}
	VisitExternalExpr(ast *ExternalExpr, context interface{}) interface{}
	VisitConditionalExpr(ast *ConditionalExpr, context interface{}) interface{}
	VisitNotExpr(ast *NotExpr, context interface{}) interface{}
	VisitFunctionExpr(ast *FunctionExpr, context interface{}) interface{}
	VisitArrowFunctionExpr(ast *ArrowFunctionExpr, context interface{}) interface{}
	VisitUnaryOperatorExpr(ast *UnaryOperatorExpr, context interface{}) interface{}
	VisitBinaryOperatorExpr(ast *BinaryOperatorExpr, context interface{}) interface{}
	VisitReadPropExpr(ast *ReadPropExpr, context interface{}) interface{}
	VisitReadKeyExpr(ast *ReadKeyExpr, context interface{}) interface{}
	VisitLiteralArrayExpr(ast *LiteralArrayExpr, context interface{}) interface{}
	VisitLiteralMapExpr(ast *LiteralMapExpr, context interface{}) interface{}
	VisitWrappedNodeExpr(ast *WrappedNodeExpr, context interface{}) interface{}
	VisitTypeofExpr(ast *TypeofExpr, context interface{}) interface{}
	VisitParenthesizedExpr(ast *ParenthesizedExpr, context interface{}) interface{}
}

// ReadVarExpr reads a variable by name
type ReadVarExpr struct {
	Name string
}

// NewReadVarExpr creates a new ReadVarExpr
func NewReadVarExpr(name string) *ReadVarExpr {
	return &ReadVarExpr{Name: name}
}

func (r *ReadVarExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitReadVarExpr(r, context)
}

func (r *ReadVarExpr) IsConstant() bool {
	return false
}

// Set creates an assignment to this variable
func (r *ReadVarExpr) Set(value OutputExpression) *BinaryOperatorExpr {
	return NewBinaryOperatorExpr(BinaryOperatorAssign, r, value)
}

// Prop reads a property off this variable
func (r *ReadVarExpr) Prop(name string) *ReadPropExpr {
	return NewReadPropExpr(r, name)
}

// LiteralExpr is a primitive literal. A nil Value is emitted as `null`.
type LiteralExpr struct {
	Value interface{} // string | int | float64 | bool | nil
}

// NewLiteralExpr creates a new LiteralExpr
func NewLiteralExpr(value interface{}) *LiteralExpr {
	return &LiteralExpr{Value: value}
}

func (l *LiteralExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralExpr(l, context)
}

func (l *LiteralExpr) IsConstant() bool {
	return true
}

// NullExpr is the `null` literal
var NullExpr = NewLiteralExpr(nil)

// BinaryOperatorExpr represents a binary operation, including assignment
type BinaryOperatorExpr struct {
	Operator BinaryOperator
	Lhs      OutputExpression
	Rhs      OutputExpression
}

// NewBinaryOperatorExpr creates a new BinaryOperatorExpr
func NewBinaryOperatorExpr(operator BinaryOperator, lhs, rhs OutputExpression) *BinaryOperatorExpr {
	return &BinaryOperatorExpr{Operator: operator, Lhs: lhs, Rhs: rhs}
}

func (b *BinaryOperatorExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitBinaryOperatorExpr(b, context)
}

func (b *BinaryOperatorExpr) IsConstant() bool {
	return false
}

// IsAssignment reports whether the operator is an assignment
func (b *BinaryOperatorExpr) IsAssignment() bool {
	return b.Operator == BinaryOperatorAssign
}

// InvokeFunctionExpr calls a function
type InvokeFunctionExpr struct {
	Fn   OutputExpression
	Args []OutputExpression
	Pure bool
}

// NewInvokeFunctionExpr creates a new InvokeFunctionExpr
func NewInvokeFunctionExpr(fn OutputExpression, args []OutputExpression, pure bool) *InvokeFunctionExpr {
	return &InvokeFunctionExpr{Fn: fn, Args: args, Pure: pure}
}

func (i *InvokeFunctionExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitInvokeFunctionExpr(i, context)
}

func (i *InvokeFunctionExpr) IsConstant() bool {
	return false
}

// InstantiateExpr is a `new` expression
type InstantiateExpr struct {
	ClassExpr OutputExpression
	Args      []OutputExpression
}

// NewInstantiateExpr creates a new InstantiateExpr
func NewInstantiateExpr(classExpr OutputExpression, args []OutputExpression) *InstantiateExpr {
	return &InstantiateExpr{ClassExpr: classExpr, Args: args}
}

func (i *InstantiateExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitInstantiateExpr(i, context)
}

func (i *InstantiateExpr) IsConstant() bool {
	return false
}

// ExternalReference names a symbol exported from a module
type ExternalReference struct {
	ModuleName *string
	Name       *string
}

// ExternalExpr references an external symbol
type ExternalExpr struct {
	Value *ExternalReference
}

// NewExternalExpr creates a new ExternalExpr
func NewExternalExpr(value *ExternalReference) *ExternalExpr {
	return &ExternalExpr{Value: value}
}

func (e *ExternalExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitExternalExpr(e, context)
}

func (e *ExternalExpr) IsConstant() bool {
	return false
}

// Callable invokes the referenced symbol with args
func (e *ExternalExpr) Callable(args ...OutputExpression) *InvokeFunctionExpr {
	return NewInvokeFunctionExpr(e, args, false)
}

// ConditionalExpr is a ternary expression
type ConditionalExpr struct {
	Condition OutputExpression
	TrueCase  OutputExpression
	FalseCase OutputExpression
}

// NewConditionalExpr creates a new ConditionalExpr
func NewConditionalExpr(condition, trueCase, falseCase OutputExpression) *ConditionalExpr {
	return &ConditionalExpr{Condition: condition, TrueCase: trueCase, FalseCase: falseCase}
}

func (c *ConditionalExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitConditionalExpr(c, context)
}

func (c *ConditionalExpr) IsConstant() bool {
	return c.Condition.IsConstant() && c.TrueCase.IsConstant() && c.FalseCase.IsConstant()
}

// NotExpr is a logical negation
type NotExpr struct {
	Condition OutputExpression
}

// NewNotExpr creates a new NotExpr
func NewNotExpr(condition OutputExpression) *NotExpr {
	return &NotExpr{Condition: condition}
}

func (n *NotExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitNotExpr(n, context)
}

func (n *NotExpr) IsConstant() bool {
	return n.Condition.IsConstant()
}

// FnParam is a function parameter
type FnParam struct {
	Name string
}

// NewFnParam creates a new FnParam
func NewFnParam(name string) *FnParam {
	return &FnParam{Name: name}
}

// FunctionExpr is a `function` expression
type FunctionExpr struct {
	Params     []*FnParam
	Statements []OutputStatement
	Name       *string
}

// NewFunctionExpr creates a new FunctionExpr
func NewFunctionExpr(params []*FnParam, statements []OutputStatement, name *string) *FunctionExpr {
	return &FunctionExpr{Params: params, Statements: statements, Name: name}
}

func (f *FunctionExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitFunctionExpr(f, context)
}

func (f *FunctionExpr) IsConstant() bool {
	return false
}

// ToDeclStmt converts the function expression into a declaration named name
func (f *FunctionExpr) ToDeclStmt(name string, modifiers StmtModifier) *DeclareFunctionStmt {
	return NewDeclareFunctionStmt(name, f.Params, f.Statements, modifiers)
}

// ArrowFunctionExpr is an arrow function whose body is either
// a list of statements or a single expression.
type ArrowFunctionExpr struct {
	Params []*FnParam
	Body   interface{} // []OutputStatement | OutputExpression
}

// NewArrowFunctionExpr creates a new ArrowFunctionExpr
func NewArrowFunctionExpr(params []*FnParam, body interface{}) *ArrowFunctionExpr {
	return &ArrowFunctionExpr{Params: params, Body: body}
}

func (a *ArrowFunctionExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitArrowFunctionExpr(a, context)
}

func (a *ArrowFunctionExpr) IsConstant() bool {
	return false
}

// UnaryOperatorExpr applies a unary operator
type UnaryOperatorExpr struct {
	Operator UnaryOperator
	Expr     OutputExpression
}

// NewUnaryOperatorExpr creates a new UnaryOperatorExpr
func NewUnaryOperatorExpr(operator UnaryOperator, expr OutputExpression) *UnaryOperatorExpr {
	return &UnaryOperatorExpr{Operator: operator, Expr: expr}
}

func (u *UnaryOperatorExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitUnaryOperatorExpr(u, context)
}

func (u *UnaryOperatorExpr) IsConstant() bool {
	return u.Expr.IsConstant()
}

// ReadPropExpr reads a named property
type ReadPropExpr struct {
	Receiver OutputExpression
	Name     string
}

// NewReadPropExpr creates a new ReadPropExpr
func NewReadPropExpr(receiver OutputExpression, name string) *ReadPropExpr {
	return &ReadPropExpr{Receiver: receiver, Name: name}
}

func (r *ReadPropExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitReadPropExpr(r, context)
}

func (r *ReadPropExpr) IsConstant() bool {
	return false
}

// Set creates an assignment to this property
func (r *ReadPropExpr) Set(value OutputExpression) *BinaryOperatorExpr {
	return NewBinaryOperatorExpr(BinaryOperatorAssign, r, value)
}

// ReadKeyExpr reads a keyed property
type ReadKeyExpr struct {
	Receiver OutputExpression
	Index    OutputExpression
}

// NewReadKeyExpr creates a new ReadKeyExpr
func NewReadKeyExpr(receiver, index OutputExpression) *ReadKeyExpr {
	return &ReadKeyExpr{Receiver: receiver, Index: index}
}

func (r *ReadKeyExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitReadKeyExpr(r, context)
}

func (r *ReadKeyExpr) IsConstant() bool {
	return false
}

// LiteralArrayExpr is an array literal
type LiteralArrayExpr struct {
	Entries []OutputExpression
}

// NewLiteralArrayExpr creates a new LiteralArrayExpr
func NewLiteralArrayExpr(entries []OutputExpression) *LiteralArrayExpr {
	return &LiteralArrayExpr{Entries: entries}
}

func (l *LiteralArrayExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralArrayExpr(l, context)
}

func (l *LiteralArrayExpr) IsConstant() bool {
	for _, entry := range l.Entries {
		if !entry.IsConstant() {
			return false
		}
	}
	return true
}

// LiteralMapEntry is a single key/value of a LiteralMapExpr
type LiteralMapEntry struct {
	Key    string
	Value  OutputExpression
	Quoted bool
}

// NewLiteralMapEntry creates a new LiteralMapEntry
func NewLiteralMapEntry(key string, value OutputExpression, quoted bool) *LiteralMapEntry {
	return &LiteralMapEntry{Key: key, Value: value, Quoted: quoted}
}

// LiteralMapExpr is an object literal
type LiteralMapExpr struct {
	Entries []*LiteralMapEntry
}

// NewLiteralMapExpr creates a new LiteralMapExpr
func NewLiteralMapExpr(entries []*LiteralMapEntry) *LiteralMapExpr {
	return &LiteralMapExpr{Entries: entries}
}

func (l *LiteralMapExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralMapExpr(l, context)
}

func (l *LiteralMapExpr) IsConstant() bool {
	for _, entry := range l.Entries {
		if !entry.Value.IsConstant() {
			return false
		}
	}
	return true
}

// WrappedNodeExpr carries a node of the concrete host AST through the output AST
// unchanged. The translator hands it back as-is.
type WrappedNodeExpr struct {
	Node interface{}
}

// NewWrappedNodeExpr creates a new WrappedNodeExpr
func NewWrappedNodeExpr(node interface{}) *WrappedNodeExpr {
	return &WrappedNodeExpr{Node: node}
}

func (w *WrappedNodeExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitWrappedNodeExpr(w, context)
}

func (w *WrappedNodeExpr) IsConstant() bool {
	return false
}

// TypeofExpr is a `typeof` expression
type TypeofExpr struct {
	Expr OutputExpression
}

// NewTypeofExpr creates a new TypeofExpr
func NewTypeofExpr(expr OutputExpression) *TypeofExpr {
	return &TypeofExpr{Expr: expr}
}

func (t *TypeofExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitTypeofExpr(t, context)
}

func (t *TypeofExpr) IsConstant() bool {
	return t.Expr.IsConstant()
}

// ParenthesizedExpr forces parentheses around an expression
type ParenthesizedExpr struct {
	Expr OutputExpression
}

// NewParenthesizedExpr creates a new ParenthesizedExpr
func NewParenthesizedExpr(expr OutputExpression) *ParenthesizedExpr {
	return &ParenthesizedExpr{Expr: expr}
}

func (p *ParenthesizedExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitParenthesizedExpr(p, context)
}

func (p *ParenthesizedExpr) IsConstant() bool {
	return p.Expr.IsConstant()
}

// StmtModifier represents statement modifiers
type StmtModifier int

const (
	StmtModifierNone     StmtModifier = 0
	StmtModifierFinal    StmtModifier = 1 << 0
	StmtModifierPrivate  StmtModifier = 1 << 1
	StmtModifierExported StmtModifier = 1 << 2
	StmtModifierStatic   StmtModifier = 1 << 3
)

// StatementVisitor is the interface for visiting statements
type StatementVisitor interface {
	VisitDeclareVarStmt(stmt *DeclareVarStmt, context interface{}) interface{}
	VisitDeclareFunctionStmt(stmt *DeclareFunctionStmt, context interface{}) interface{}
	VisitExpressionStmt(stmt *ExpressionStatement, context interface{}) interface{}
	VisitReturnStmt(stmt *ReturnStatement, context interface{}) interface{}
	VisitIfStmt(stmt *IfStmt, context interface{}) interface{}
}

// OutputStatement is the base interface for all statements
type OutputStatement interface {
	VisitStatement(visitor StatementVisitor, context interface{}) interface{}
	HasModifier(modifier StmtModifier) bool
}

// StatementBase holds the modifiers shared by all statements
type StatementBase struct {
	Modifiers StmtModifier
}

// HasModifier checks if the statement has a modifier
func (s *StatementBase) HasModifier(modifier StmtModifier) bool {
	return (s.Modifiers & modifier) != 0
}

// DeclareVarStmt declares a variable, `const` when final
type DeclareVarStmt struct {
	StatementBase
	Name  string
	Value OutputExpression
}

// NewDeclareVarStmt creates a new DeclareVarStmt
func NewDeclareVarStmt(name string, value OutputExpression, modifiers StmtModifier) *DeclareVarStmt {
	return &DeclareVarStmt{
		StatementBase: StatementBase{Modifiers: modifiers},
		Name:          name,
		Value:         value,
	}
}

func (d *DeclareVarStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitDeclareVarStmt(d, context)
}

// DeclareFunctionStmt declares a named function
type DeclareFunctionStmt struct {
	StatementBase
	Name       string
	Params     []*FnParam
	Statements []OutputStatement
}

// NewDeclareFunctionStmt creates a new DeclareFunctionStmt
func NewDeclareFunctionStmt(name string, params []*FnParam, statements []OutputStatement, modifiers StmtModifier) *DeclareFunctionStmt {
	return &DeclareFunctionStmt{
		StatementBase: StatementBase{Modifiers: modifiers},
		Name:          name,
		Params:        params,
		Statements:    statements,
	}
}

func (d *DeclareFunctionStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitDeclareFunctionStmt(d, context)
}

// ExpressionStatement evaluates an expression for its side effects
type ExpressionStatement struct {
	StatementBase
	Expr OutputExpression
}

// NewExpressionStatement creates a new ExpressionStatement
func NewExpressionStatement(expr OutputExpression) *ExpressionStatement {
	return &ExpressionStatement{Expr: expr}
}

func (e *ExpressionStatement) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitExpressionStmt(e, context)
}

// ReturnStatement returns a value; Value may be nil
type ReturnStatement struct {
	StatementBase
	Value OutputExpression
}

// NewReturnStatement creates a new ReturnStatement
func NewReturnStatement(value OutputExpression) *ReturnStatement {
	return &ReturnStatement{Value: value}
}

func (r *ReturnStatement) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitReturnStmt(r, context)
}

// IfStmt is an if/else statement
type IfStmt struct {
	StatementBase
	Condition OutputExpression
	TrueCase  []OutputStatement
	FalseCase []OutputStatement
}

// NewIfStmt creates a new IfStmt
func NewIfStmt(condition OutputExpression, trueCase, falseCase []OutputStatement) *IfStmt {
	return &IfStmt{Condition: condition, TrueCase: trueCase, FalseCase: falseCase}
}

func (i *IfStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitIfStmt(i, context)
}

// Helpers mirroring the `o.*` shorthands used by compiler code.

// Variable reads a variable
func Variable(name string) *ReadVarExpr {
	return NewReadVarExpr(name)
}

// Literal creates a primitive literal
func Literal(value interface{}) *LiteralExpr {
	return NewLiteralExpr(value)
}

// LiteralArr creates an array literal
func LiteralArr(values []OutputExpression) *LiteralArrayExpr {
	return NewLiteralArrayExpr(values)
}

// ImportExpr references an external symbol
func ImportExpr(ref *ExternalReference) *ExternalExpr {
	return NewExternalExpr(ref)
}

// Not negates an expression
func Not(expr OutputExpression) *NotExpr {
	return NewNotExpr(expr)
}

// And combines two expressions with `&&`
func And(lhs, rhs OutputExpression) *BinaryOperatorExpr {
	return NewBinaryOperatorExpr(BinaryOperatorAnd, lhs, rhs)
}

// Or combines two expressions with `||`
func Or(lhs, rhs OutputExpression) *BinaryOperatorExpr {
	return NewBinaryOperatorExpr(BinaryOperatorOr, lhs, rhs)
}
