package pool_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ngc-linker/packages/compiler/output"
	"ngc-linker/packages/compiler/pool"
)

func stringArray(values ...string) *output.LiteralArrayExpr {
	entries := make([]output.OutputExpression, len(values))
	for i, v := range values {
		entries[i] = output.NewLiteralExpr(v)
	}
	return output.NewLiteralArrayExpr(entries)
}

func declaredNames(cp *pool.ConstantPool) []string {
	var names []string
	for _, stmt := range cp.GetStatements() {
		if decl, ok := stmt.(*output.DeclareVarStmt); ok {
			names = append(names, decl.Name)
		}
	}
	return names
}

func TestConstantPool(t *testing.T) {
	t.Run("should not pool short primitive literals", func(t *testing.T) {
		cp := pool.NewConstantPool(false)
		lit := output.NewLiteralExpr("short")
		if got := cp.GetConstLiteral(lit, true); got != lit {
			t.Errorf("Expected the literal to be returned unchanged, got %T", got)
		}
		if len(cp.GetStatements()) != 0 {
			t.Errorf("Expected no statements, got %d", len(cp.GetStatements()))
		}
	})

	t.Run("should hoist a forced literal immediately", func(t *testing.T) {
		cp := pool.NewConstantPool(false)
		got := cp.GetConstLiteral(stringArray("a"), true)
		fixup, ok := got.(*pool.FixupExpression)
		if !ok {
			t.Fatalf("Expected a fix-up expression, got %T", got)
		}
		if !fixup.Shared() {
			t.Errorf("Expected the fix-up to be shared")
		}
		if diff := cmp.Diff([]string{"_c0"}, declaredNames(cp)); diff != "" {
			t.Errorf("declared names mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should hoist an unforced literal only on second use", func(t *testing.T) {
		cp := pool.NewConstantPool(false)
		first := cp.GetConstLiteral(stringArray("a", "b"), false).(*pool.FixupExpression)
		if first.Shared() || len(cp.GetStatements()) != 0 {
			t.Fatalf("Expected the first use to stay inline")
		}
		second := cp.GetConstLiteral(stringArray("a", "b"), false)
		if second != first {
			t.Errorf("Expected both uses to share one fix-up")
		}
		if !first.Shared() {
			t.Errorf("Expected the first fix-up to be redirected once shared")
		}
		if read, ok := first.Resolved().(*output.ReadVarExpr); !ok || read.Name != "_c0" {
			t.Errorf("Expected fix-up to resolve to _c0, got %#v", first.Resolved())
		}
	})

	t.Run("should share identical literals across requests", func(t *testing.T) {
		cp := pool.NewConstantPool(false)
		cp.GetConstLiteral(stringArray("x"), true)
		cp.GetConstLiteral(stringArray("x"), true)
		cp.GetConstLiteral(stringArray("y"), true)
		if diff := cmp.Diff([]string{"_c0", "_c1"}, declaredNames(cp)); diff != "" {
			t.Errorf("declared names mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should wrap long strings in a function when closure is enabled", func(t *testing.T) {
		cp := pool.NewConstantPool(true)
		long := output.NewLiteralExpr(strings.Repeat("x", pool.PoolInclusionLengthThresholdForStrings))
		fixup := cp.GetConstLiteral(long, true).(*pool.FixupExpression)
		if _, ok := fixup.Resolved().(*output.InvokeFunctionExpr); !ok {
			t.Errorf("Expected usage to be a call, got %T", fixup.Resolved())
		}
		decl := cp.GetStatements()[0].(*output.DeclareVarStmt)
		if _, ok := decl.Value.(*output.FunctionExpr); !ok {
			t.Errorf("Expected declaration value to be a function, got %T", decl.Value)
		}
	})

	t.Run("should produce unique names", func(t *testing.T) {
		cp := pool.NewConstantPool(false)
		got := []string{cp.UniqueName("_t", false), cp.UniqueName("_t", false), cp.UniqueName("_q", true)}
		if diff := cmp.Diff([]string{"_t", "_t1", "_q0"}, got); diff != "" {
			t.Errorf("names mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestKeyOf(t *testing.T) {
	t.Run("should key nested literals by content", func(t *testing.T) {
		expr := output.NewLiteralMapExpr([]*output.LiteralMapEntry{
			output.NewLiteralMapEntry("a", stringArray("b"), false),
			output.NewLiteralMapEntry("c-d", output.NewLiteralExpr(1), true),
		})
		want := `{a:["b"],"c-d":1}`
		if got := pool.KeyOf(expr); got != want {
			t.Errorf("Expected %q, got %q", want, got)
		}
	})
}
