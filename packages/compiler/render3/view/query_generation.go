package view

import (
	"strings"

	"ngc-linker/packages/compiler/core"
	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/pool"
	"ngc-linker/packages/compiler/render3/r3_identifiers"
)

// QueryFlags is a set of flags to be used with Queries.
//
// NOTE: Ensure changes here are in sync with `packages/core/src/render3/interfaces/query.ts`
type QueryFlags int

const (
	QueryFlagsNone QueryFlags = 0b0000
	// QueryFlagsDescendants - Whether or not the query should descend into children.
	QueryFlagsDescendants QueryFlags = 0b0001
	// QueryFlagsIsStatic - The query can be computed statically and hence can be assigned eagerly.
	QueryFlagsIsStatic QueryFlags = 0b0010
	// QueryFlagsEmitDistinctChangesOnly - The `QueryList` only fires a change event when the
	// recomputed result differs from the previous one.
	QueryFlagsEmitDistinctChangesOnly QueryFlags = 0b0100
)

// R3QueryMetadata describes a single view or content query.
type R3QueryMetadata struct {
	PropertyName string
	First        bool
	// Predicate is either a []string of template reference names or a MaybeForwardRefExpression.
	Predicate               interface{}
	Descendants             bool
	EmitDistinctChangesOnly bool
	Read                    output.OutputExpression
	Static                  bool
	IsSignal                bool
}

// ToQueryFlags translates query flags into `TQueryFlags`.
func ToQueryFlags(query R3QueryMetadata) int {
	flags := QueryFlagsNone
	if query.Descendants {
		flags |= QueryFlagsDescendants
	}
	if query.Static {
		flags |= QueryFlagsIsStatic
	}
	if query.EmitDistinctChangesOnly {
		flags |= QueryFlagsEmitDistinctChangesOnly
	}
	return int(flags)
}

// GetQueryPredicate gets the query predicate expression. String predicates are
// always hoisted into the constant pool.
func GetQueryPredicate(query R3QueryMetadata, constantPool *pool.ConstantPool) output.OutputExpression {
	switch predicate := query.Predicate.(type) {
	case []string:
		entries := []output.OutputExpression{}
		for _, selector := range predicate {
			// Each item may hold comma-separated refs ('ref, ref1, ..., refN').
			for _, part := range strings.Split(selector, ",") {
				entries = append(entries, output.NewLiteralExpr(strings.TrimSpace(part)))
			}
		}
		return constantPool.GetConstLiteral(output.NewLiteralArrayExpr(entries), true)
	case MaybeForwardRefExpression:
		if predicate.ForwardRef == ForwardRefHandlingWrapped {
			return output.ImportExpr(r3_identifiers.ResolveForwardRef).Callable(predicate.Expression)
		}
		return predicate.Expression
	case output.OutputExpression:
		return predicate
	}
	return output.NullExpr
}

type queryTypeFns struct {
	signalBased *output.ExternalReference
	nonSignal   *output.ExternalReference
}

func createQueryCreateCall(
	query R3QueryMetadata,
	constantPool *pool.ConstantPool,
	fns queryTypeFns,
	prependParams ...output.OutputExpression,
) *output.InvokeFunctionExpr {
	parameters := append([]output.OutputExpression{}, prependParams...)
	if query.IsSignal {
		parameters = append(parameters, output.Variable(CONTEXT_NAME).Prop(query.PropertyName))
	}
	parameters = append(parameters, GetQueryPredicate(query, constantPool), output.Literal(ToQueryFlags(query)))
	if query.Read != nil {
		parameters = append(parameters, query.Read)
	}

	fn := fns.nonSignal
	if query.IsSignal {
		fn = fns.signalBased
	}
	return output.ImportExpr(fn).Callable(parameters...)
}

// queryAdvancePlaceholder marks a signal query whose index only needs advancing.
type queryAdvancePlaceholder struct{}

// collapseAdvanceStatements replaces runs of advance placeholders with a single
// `ɵɵqueryAdvance(n)` call.
func collapseAdvanceStatements(statements []interface{}) []output.OutputStatement {
	result := []output.OutputStatement{}
	advanceCollapseCount := 0

	flushAdvanceCount := func() {
		if advanceCollapseCount == 0 {
			return
		}
		var args []output.OutputExpression
		if advanceCollapseCount > 1 {
			args = []output.OutputExpression{output.Literal(advanceCollapseCount)}
		}
		stmt := output.NewExpressionStatement(output.ImportExpr(r3_identifiers.QueryAdvance).Callable(args...))
		result = append([]output.OutputStatement{stmt}, result...)
		advanceCollapseCount = 0
	}

	for i := len(statements) - 1; i >= 0; i-- {
		switch st := statements[i].(type) {
		case queryAdvancePlaceholder:
			advanceCollapseCount++
		case output.OutputStatement:
			flushAdvanceCount()
			result = append([]output.OutputStatement{st}, result...)
		}
	}
	flushAdvanceCount()
	return result
}

// renderFlagCheckIfStmt creates `if (rf & flags) { .. }`
func renderFlagCheckIfStmt(flags core.RenderFlags, statements []output.OutputStatement) *output.IfStmt {
	condition := output.NewBinaryOperatorExpr(
		output.BinaryOperatorBitwiseAnd,
		output.Variable(RENDER_FLAGS),
		output.Literal(int(flags)),
	)
	return output.NewIfStmt(condition, statements, nil)
}

func createQueriesFunction(
	queries []R3QueryMetadata,
	constantPool *pool.ConstantPool,
	fns queryTypeFns,
	params []*output.FnParam,
	prependParams []output.OutputExpression,
	fnName *string,
) output.OutputExpression {
	createStatements := []output.OutputStatement{}
	updateStatements := []interface{}{}
	tempAllocator := TemporaryAllocator(func(st output.OutputStatement) {
		updateStatements = append(updateStatements, st)
	}, TEMPORARY_NAME)

	for _, query := range queries {
		call := createQueryCreateCall(query, constantPool, fns, prependParams...)
		createStatements = append(createStatements, output.NewExpressionStatement(call))

		// Signal queries update lazily and we just advance the index.
		if query.IsSignal {
			updateStatements = append(updateStatements, queryAdvancePlaceholder{})
			continue
		}

		// (ɵɵqueryRefresh(_t = ɵɵloadQuery()) && (ctx.prop = _t.first))
		temporary := tempAllocator()
		getQueryList := output.ImportExpr(r3_identifiers.LoadQuery).Callable()
		refresh := output.ImportExpr(r3_identifiers.QueryRefresh).Callable(temporary.Set(getQueryList))
		var value output.OutputExpression = temporary
		if query.First {
			value = temporary.Prop("first")
		}
		updateDirective := output.Variable(CONTEXT_NAME).Prop(query.PropertyName).Set(value)
		updateStatements = append(updateStatements, output.NewExpressionStatement(output.And(refresh, updateDirective)))
	}

	return output.NewFunctionExpr(
		params,
		[]output.OutputStatement{
			renderFlagCheckIfStmt(core.RenderFlagsCreate, createStatements),
			renderFlagCheckIfStmt(core.RenderFlagsUpdate, collapseAdvanceStatements(updateStatements)),
		},
		fnName,
	)
}

// CreateViewQueriesFunction defines and updates any view queries
func CreateViewQueriesFunction(viewQueries []R3QueryMetadata, constantPool *pool.ConstantPool, name string) output.OutputExpression {
	var fnName *string
	if name != "" {
		n := name + "_Query"
		fnName = &n
	}
	return createQueriesFunction(
		viewQueries,
		constantPool,
		queryTypeFns{signalBased: r3_identifiers.ViewQuerySignal, nonSignal: r3_identifiers.ViewQuery},
		[]*output.FnParam{output.NewFnParam(RENDER_FLAGS), output.NewFnParam(CONTEXT_NAME)},
		nil,
		fnName,
	)
}

// CreateContentQueriesFunction defines and updates any content queries
func CreateContentQueriesFunction(queries []R3QueryMetadata, constantPool *pool.ConstantPool, name string) output.OutputExpression {
	var fnName *string
	if name != "" {
		n := name + "_ContentQueries"
		fnName = &n
	}
	return createQueriesFunction(
		queries,
		constantPool,
		queryTypeFns{signalBased: r3_identifiers.ContentQuerySignal, nonSignal: r3_identifiers.ContentQuery},
		[]*output.FnParam{output.NewFnParam(RENDER_FLAGS), output.NewFnParam(CONTEXT_NAME), output.NewFnParam("dirIndex")},
		[]output.OutputExpression{output.Variable("dirIndex")},
		fnName,
	)
}
