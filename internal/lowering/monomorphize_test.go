package lowering

import (
	"testing"

	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/errors"
)

func genericPOU(paramName string, nature ast.Nature) *ast.POU {
	return &ast.POU{
		Name:       "Max",
		Kind:       ast.POUFunction,
		IsGeneric:  true,
		TypeParams: []ast.GenericParam{{Name: paramName, Nature: nature}},
		VarBlocks: []*ast.VarBlock{{
			Kind: ast.VarInput,
			Vars: []*ast.Variable{
				{Name: "a", TypeRef: typeRef(paramName)},
				{Name: "b", TypeRef: typeRef(paramName)},
			},
		}},
	}
}

func resolverFor(types map[ast.Expression]string) ArgTypeResolver {
	return func(e ast.Expression) (string, bool) {
		t, ok := types[e]
		return t, ok
	}
}

func TestMonomorphizer_SatisfiedNature_NoDiagnostic(t *testing.T) {
	p := genericPOU("T", ast.NatureNum)
	argA := &ast.Identifier{Name: "x"}
	argB := &ast.Identifier{Name: "y"}
	call := &ast.CallExpr{Args: []ast.Expression{argA, argB}}

	resolve := resolverFor(map[ast.Expression]string{argA: "INT", argB: "INT"})
	bag := &errors.Bag{}
	NewMonomorphizer(resolve, bag).Validate(p, call)

	if bag.HasErrors() {
		t.Fatalf("expected no diagnostics, got %s", bag.Error())
	}
}

func TestMonomorphizer_NatureViolation(t *testing.T) {
	p := genericPOU("T", ast.NatureInt)
	argA := &ast.Identifier{Name: "x"}
	argB := &ast.Identifier{Name: "y"}
	call := &ast.CallExpr{Args: []ast.Expression{argA, argB}}

	// Both args resolve to REAL, which is a distinct leaf from ANY_INT.
	resolve := resolverFor(map[ast.Expression]string{argA: "REAL", argB: "REAL"})
	bag := &errors.Bag{}
	NewMonomorphizer(resolve, bag).Validate(p, call)

	diags := bag.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("expected exactly 1 nature-violation diagnostic, got %d", len(diags))
	}
	if diags[0].Context["type"] != "REAL" || diags[0].Context["nature"] != "Int" {
		t.Fatalf("unexpected diagnostic context: %+v", diags[0].Context)
	}
}

func TestMonomorphizer_UnresolvedTypeParameter(t *testing.T) {
	p := genericPOU("T", ast.NatureNum)
	argA := &ast.Identifier{Name: "x"}
	argB := &ast.Identifier{Name: "y"}
	call := &ast.CallExpr{Args: []ast.Expression{argA, argB}}

	// Neither argument resolves to a concrete type.
	resolve := resolverFor(map[ast.Expression]string{})
	bag := &errors.Bag{}
	NewMonomorphizer(resolve, bag).Validate(p, call)

	diags := bag.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("expected exactly 1 unresolved-parameter diagnostic (deduped per param, not per arg), got %d", len(diags))
	}
	if diags[0].Kind != errors.KindGeneric {
		t.Fatalf("expected KindGeneric, got %s", diags[0].Kind)
	}
}

func TestMonomorphizer_NonGenericPOU_NoOp(t *testing.T) {
	p := &ast.POU{Name: "regular", Kind: ast.POUFunction}
	call := &ast.CallExpr{Args: []ast.Expression{&ast.Identifier{Name: "x"}}}

	bag := &errors.Bag{}
	NewMonomorphizer(resolverFor(nil), bag).Validate(p, call)

	if bag.HasErrors() || len(bag.Diagnostics()) != 0 {
		t.Fatalf("a non-generic POU must never produce generic diagnostics")
	}
}
