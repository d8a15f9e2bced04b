package view_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/pool"
	"ngc-linker/packages/compiler/render3/view"
)

func TestDefinitionMap(t *testing.T) {
	t.Run("should keep insertion order and skip nil values", func(t *testing.T) {
		dm := view.NewDefinitionMap()
		dm.Set("b", output.Literal(1))
		dm.Set("skipped", nil)
		dm.Set("a", output.Literal(2))
		dm.Set("b", output.Literal(3))

		var keys []string
		for _, entry := range dm.ToLiteralMap().Entries {
			keys = append(keys, entry.Key)
		}
		if diff := cmp.Diff([]string{"b", "a"}, keys); diff != "" {
			t.Errorf("keys mismatch (-want +got):\n%s", diff)
		}
		if got := dm.Values[0].Value.(*output.LiteralExpr).Value; got != 3 {
			t.Errorf("Expected updated value 3, got %v", got)
		}
	})
}

func TestConditionallyCreateDirectiveBindingLiteral(t *testing.T) {
	t.Run("should return nil for no bindings", func(t *testing.T) {
		if got := view.ConditionallyCreateDirectiveBindingLiteral(nil, true); got != nil {
			t.Errorf("Expected nil, got %#v", got)
		}
	})

	t.Run("should emit flags and declared name for aliased inputs", func(t *testing.T) {
		got := view.ConditionallyCreateDirectiveBindingLiteral([]view.DirectiveBinding{
			{Key: "plain", ClassPropertyName: "plain", BindingPropertyName: "plain"},
			{Key: "aliased", ClassPropertyName: "aliased", BindingPropertyName: "public"},
			{Key: "sig", ClassPropertyName: "sig", BindingPropertyName: "sig", IsSignal: true},
		}, true).(*output.LiteralMapExpr)

		if _, ok := got.Entries[0].Value.(*output.LiteralExpr); !ok {
			t.Errorf("Expected plain input to be a string literal, got %T", got.Entries[0].Value)
		}
		aliased := got.Entries[1].Value.(*output.LiteralArrayExpr)
		if len(aliased.Entries) != 3 {
			t.Errorf("Expected [flags, public, declared], got %d entries", len(aliased.Entries))
		}
		sig := got.Entries[2].Value.(*output.LiteralArrayExpr)
		if flags := sig.Entries[0].(*output.LiteralExpr).Value; flags != 1 {
			t.Errorf("Expected signal flag 1, got %v", flags)
		}
	})

	t.Run("should quote unsafe keys", func(t *testing.T) {
		got := view.ConditionallyCreateDirectiveBindingLiteral([]view.DirectiveBinding{
			{Key: "a-b", ClassPropertyName: "a-b", BindingPropertyName: "a-b"},
		}, false).(*output.LiteralMapExpr)
		if !got.Entries[0].Quoted {
			t.Errorf("Expected key to be quoted")
		}
	})
}

func TestCreateViewQueriesFunction(t *testing.T) {
	t.Run("should hoist string predicates and refresh the first result", func(t *testing.T) {
		cp := pool.NewConstantPool(false)
		fn := view.CreateViewQueriesFunction([]view.R3QueryMetadata{
			{PropertyName: "child", First: true, Predicate: []string{"a, b"}, Descendants: true},
		}, cp, "MyDir").(*output.FunctionExpr)

		if fn.Name == nil || *fn.Name != "MyDir_Query" {
			t.Errorf("Expected function name MyDir_Query, got %v", fn.Name)
		}
		if len(cp.GetStatements()) != 1 {
			t.Fatalf("Expected one hoisted predicate, got %d", len(cp.GetStatements()))
		}
		create := fn.Statements[0].(*output.IfStmt)
		call := create.TrueCase[0].(*output.ExpressionStatement).Expr.(*output.InvokeFunctionExpr)
		if name := *call.Fn.(*output.ExternalExpr).Value.Name; name != "ɵɵviewQuery" {
			t.Errorf("Expected ɵɵviewQuery, got %s", name)
		}
		if flags := call.Args[1].(*output.LiteralExpr).Value; flags != 1 {
			t.Errorf("Expected descendants flag, got %v", flags)
		}
		update := fn.Statements[1].(*output.IfStmt)
		if len(update.TrueCase) != 2 {
			t.Fatalf("Expected temporary declaration and refresh, got %d statements", len(update.TrueCase))
		}
		if decl := update.TrueCase[0].(*output.DeclareVarStmt); decl.Name != "_t" {
			t.Errorf("Expected _t declaration, got %s", decl.Name)
		}
	})

	t.Run("should collapse signal query advances", func(t *testing.T) {
		cp := pool.NewConstantPool(false)
		predicate := view.MaybeForwardRefExpression{Expression: output.Variable("Child")}
		fn := view.CreateContentQueriesFunction([]view.R3QueryMetadata{
			{PropertyName: "a", Predicate: predicate, IsSignal: true},
			{PropertyName: "b", Predicate: predicate, IsSignal: true},
		}, cp, "").(*output.FunctionExpr)

		update := fn.Statements[1].(*output.IfStmt)
		if len(update.TrueCase) != 1 {
			t.Fatalf("Expected a single advance call, got %d", len(update.TrueCase))
		}
		call := update.TrueCase[0].(*output.ExpressionStatement).Expr.(*output.InvokeFunctionExpr)
		if diff := cmp.Diff(2, call.Args[0].(*output.LiteralExpr).Value); diff != "" {
			t.Errorf("advance count mismatch (-want +got):\n%s", diff)
		}
	})
}
