package cmd

import (
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/ids"
	"github.com/go-stc/stc/internal/oracle"
)

// smokeTestUnit builds the small fabricated compilation unit SPEC_FULL.md
// §2 describes: a stateful FUNCTION_BLOCK Counter (a Base/Child pair,
// exercising inheritance) plus a stateless helper FUNCTION, wired through
// an oracle.Static — standing in for the real parser/resolver this module
// does not implement (spec §1 "out of scope").
func smokeTestUnit() (*ast.CompilationUnit, oracle.Oracle, *ids.Provider) {
	provider := ids.New()
	o := oracle.NewStatic()

	dint := func() *ast.TypeReference { return &ast.TypeReference{Name: "DINT"} }

	base := &ast.POU{
		Name: "CounterBase",
		Kind: ast.POUFunctionBlock,
		VarBlocks: []*ast.VarBlock{
			{Kind: ast.VarLocal, Vars: []*ast.Variable{{Name: "count", TypeRef: dint()}}},
		},
	}

	increment := &ast.POU{
		Name: "Increment",
		Kind: ast.POUMethod,
		Body: []ast.Statement{
			&ast.AssignStatement{
				Kind: ast.AssignDirect,
				LHS:  &ast.Identifier{Name: "count"},
				RHS: &ast.BinaryExpr{
					Op:    ast.OpAdd,
					Left:  &ast.Identifier{Name: "count"},
					Right: &ast.IntegerLiteral{Value: 1},
				},
			},
		},
	}

	child := &ast.POU{
		Name:    "Counter",
		Kind:    ast.POUFunctionBlock,
		Methods: []*ast.POU{increment},
	}

	add := &ast.POU{
		Name:       "FB_ADD",
		Kind:       ast.POUFunction,
		ReturnType: dint(),
		VarBlocks: []*ast.VarBlock{
			{Kind: ast.VarInput, Vars: []*ast.Variable{
				{Name: "a", TypeRef: dint()},
				{Name: "b", TypeRef: dint()},
			}},
			{Kind: ast.VarReturn, Vars: []*ast.Variable{{Name: "FB_ADD", TypeRef: dint()}}},
		},
		Body: []ast.Statement{
			&ast.AssignStatement{
				Kind: ast.AssignDirect,
				LHS:  &ast.Identifier{Name: "FB_ADD"},
				RHS: &ast.BinaryExpr{
					Op:    ast.OpAdd,
					Left:  &ast.Identifier{Name: "a"},
					Right: &ast.Identifier{Name: "b"},
				},
			},
		},
	}

	o.AddPOU(base)
	o.AddPOU(child)
	o.AddPOU(add)
	o.SetParent("Counter", "CounterBase")
	o.AddMethod("Counter", "Increment")
	o.AddMember("CounterBase", "count")

	unit := &ast.CompilationUnit{
		Name:    "smoke",
		Linkage: ast.LinkageInternal,
		POUs:    []*ast.POU{base, child, add},
	}
	return unit, o, provider
}

// genericMaxFixture builds a generic FUNCTION Max<T: ANY_INT>(a, b : T)
// and a call site that passes two REAL arguments, deliberately violating
// the declared nature (spec §4.5) — exercising the Generic Monomorphizer
// & Nature Validator's diagnostic path the same way spec §8 scenario 5
// does, rather than only its silent-success path.
func genericMaxFixture() (*ast.POU, *ast.CallExpr) {
	t := func() *ast.TypeReference { return &ast.TypeReference{Name: "T"} }
	max := &ast.POU{
		Name:       "Max",
		Kind:       ast.POUFunction,
		IsGeneric:  true,
		TypeParams: []ast.GenericParam{{Name: "T", Nature: ast.NatureInt}},
		VarBlocks: []*ast.VarBlock{
			{Kind: ast.VarInput, Vars: []*ast.Variable{
				{Name: "a", TypeRef: t()},
				{Name: "b", TypeRef: t()},
			}},
		},
	}
	call := &ast.CallExpr{
		Args: []ast.Expression{
			&ast.Identifier{Name: "x"},
			&ast.Identifier{Name: "y"},
		},
	}
	return max, call
}
